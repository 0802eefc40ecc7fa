package parsing

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// isWordRune reports whether r counts as part of a word for boundary checks.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

func boundaryBefore(text string, start int) bool {
	if start == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:start])
	return !isWordRune(r)
}

func boundaryAfter(text string, end int) bool {
	if end >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[end:])
	return !isWordRune(r)
}

// countWholeWord counts non-overlapping occurrences of term in text where the
// characters on both sides of the occurrence are non-word characters or the
// string boundary. Both arguments must already be lowercased. A limit above
// zero stops counting once reached.
func countWholeWord(text, term string, limit int) int {
	if term == "" {
		return 0
	}
	count := 0
	for i := 0; i <= len(text); {
		j := strings.Index(text[i:], term)
		if j < 0 {
			break
		}
		start := i + j
		end := start + len(term)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			count++
			if limit > 0 && count >= limit {
				break
			}
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		i = start + size
	}
	return count
}

// containsWholeWord reports whether term occurs in text as a whole word.
func containsWholeWord(text, term string) bool {
	return countWholeWord(text, term, 1) > 0
}

// matchWholeWords returns the values whose lowercased form occurs in text as a
// whole word, preserving input order and casing.
func matchWholeWords(text string, values []string) []string {
	out := make([]string, 0)
	for _, v := range values {
		if containsWholeWord(text, Normalize(v)) {
			out = append(out, v)
		}
	}
	return out
}

// matchSubstrings returns the values whose lowercased form is contained in text.
func matchSubstrings(text string, values []string) []string {
	out := make([]string, 0)
	for _, v := range values {
		if lv := Normalize(v); lv != "" && strings.Contains(text, lv) {
			out = append(out, v)
		}
	}
	return out
}

// findAll returns every match of re in text: the first capture group when the
// expression has one, the whole match otherwise.
func findAll(re *regexp.Regexp, text string) []string {
	matches := re.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if len(m) > 1 {
			out = append(out, m[1])
		} else {
			out = append(out, m[0])
		}
	}
	return out
}
