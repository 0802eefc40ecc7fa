package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url      string
		expected Platform
	}{
		{"https://job-boards.greenhouse.io/doordashusa/jobs/7063751", PlatformGreenhouse},
		{"https://boards.greenhouse.io/company/jobs/123", PlatformGreenhouse},
		{"https://jobs.lever.co/company/job-id", PlatformLever},
		{"https://acme.wd5.myworkdayjobs.com/en-US/careers/job/123", PlatformWorkday},
		{"https://www.infojobs.net/madrid/desarrollador-go/of-i123", PlatformInfoJobs},
		{"https://www.linkedin.com/jobs/view/123", PlatformLinkedIn},
		{"https://careers.example.com/job/123", PlatformUnknown},
		{"https://notgreenhouse.io/jobs", PlatformUnknown},
		{"://bad", PlatformUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectPlatform(tt.url))
		})
	}
}

func TestPlatformContentSelectors(t *testing.T) {
	assert.Equal(t, ".job__description.body", PlatformContentSelectors(PlatformGreenhouse)[0])
	assert.Equal(t, "#prefijoDescripcion1", PlatformContentSelectors(PlatformInfoJobs)[0])
	assert.Equal(t, JobPostingSelectors(), PlatformContentSelectors(PlatformUnknown))
}

func TestPlatformContentSelectors_ReturnsCopy(t *testing.T) {
	s := PlatformContentSelectors(PlatformLever)
	s[0] = "changed"
	assert.NotEqual(t, "changed", PlatformContentSelectors(PlatformLever)[0])
}

func TestPlatformNoiseSelectors(t *testing.T) {
	common := PlatformNoiseSelectors(PlatformUnknown)
	assert.Contains(t, common, "form")
	assert.NotContains(t, common, ".post-apply")

	greenhouse := PlatformNoiseSelectors(PlatformGreenhouse)
	assert.Contains(t, greenhouse, "form")
	assert.Contains(t, greenhouse, ".post-apply")
	assert.Len(t, greenhouse, len(common)+5)
}
