package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known job board platform.
type Platform string

const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformInfoJobs   Platform = "infojobs"
	PlatformLinkedIn   Platform = "linkedin"
	PlatformUnknown    Platform = "unknown"
)

// platformHosts maps host suffixes to platforms; the first match wins.
var platformHosts = []struct {
	suffix   string
	platform Platform
}{
	{"greenhouse.io", PlatformGreenhouse},
	{"lever.co", PlatformLever},
	{"myworkdayjobs.com", PlatformWorkday},
	{"workday.com", PlatformWorkday},
	{"infojobs.net", PlatformInfoJobs},
	{"linkedin.com", PlatformLinkedIn},
}

// DetectPlatform identifies the job board platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Hostname())
	for _, h := range platformHosts {
		if host == h.suffix || strings.HasSuffix(host, "."+h.suffix) {
			return h.platform
		}
	}
	return PlatformUnknown
}

var platformContent = map[Platform][]string{
	PlatformGreenhouse: {
		".job__description.body",
		".job__description",
		".job-description__content",
		"#content",
		".job-post-container",
	},
	PlatformLever: {
		".posting-page",
		".section-wrapper.page-full-width",
		".posting-description",
		".content",
	},
	PlatformWorkday: {
		"[data-automation-id='jobPostingDescription']",
		"[data-automation-id='jobDescription']",
		".job-description",
	},
	PlatformInfoJobs: {
		"#prefijoDescripcion1",
		".ij-OfferDetailDescription",
		"[data-testid='offer-description']",
		"main",
	},
	PlatformLinkedIn: {
		".show-more-less-html__markup",
		".description__text",
		".jobs-description__content",
		"main",
	},
}

// PlatformContentSelectors returns content selectors optimized for a specific platform.
func PlatformContentSelectors(platform Platform) []string {
	if selectors, ok := platformContent[platform]; ok {
		return append([]string(nil), selectors...)
	}
	return JobPostingSelectors()
}

// commonNoiseSelectors are application forms, legal notices and share widgets
// found on most job boards.
var commonNoiseSelectors = []string{
	"form",
	"#application-form",
	".application-form",
	".application--container",
	".apply-button-container",
	"[data-testid='application-form']",
	".voluntary-disclosure",
	".eeo-statement",
	".eeo-section",
	"[data-testid='eeo']",
	".legal-disclosure",
	".self-identification",
	".social-share",
	".share-buttons",
	".social-links",
	".cookie-consent",
	".gdpr-notice",
}

var platformNoise = map[Platform][]string{
	PlatformGreenhouse: {
		".application--wrapper",
		".voluntary-self-id",
		".voluntary-self-id-wrapper",
		"#usa_self_id_section",
		".post-apply",
	},
	PlatformLever: {
		".apply-section",
		".lever-application-form",
		".posting-apply",
	},
	PlatformWorkday: {
		"[data-automation-id='applyButton']",
		".application-section",
	},
	PlatformInfoJobs: {
		".ij-OfferDetailHeader-actions",
		".ij-RelatedOffers",
	},
	PlatformLinkedIn: {
		".top-card-layout__cta-container",
		".similar-jobs",
		".join-form",
	},
}

// PlatformNoiseSelectors returns noise exclusion selectors for a specific platform.
func PlatformNoiseSelectors(platform Platform) []string {
	out := make([]string, 0, len(commonNoiseSelectors)+len(platformNoise[platform]))
	out = append(out, commonNoiseSelectors...)
	return append(out, platformNoise[platform]...)
}
