// Package ingestion turns uploaded documents, local files and job-board URLs
// into plain text ready for analysis.
package ingestion

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jonathan/cv-analyzer/internal/fetch"
)

var (
	innerWhitespace = regexp.MustCompile(`\s+`)
	excessiveBlanks = regexp.MustCompile(`\n\n\n+`)
)

// CleanText cleans and normalizes text content while preserving structure
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		cleanedLines = append(cleanedLines, cleanLine(line))
	}

	result := strings.Join(cleanedLines, "\n")
	result = excessiveBlanks.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine cleans a single line while preserving structure
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if strings.TrimSpace(line) == "" {
		return ""
	}

	// Markdown headings lose their indentation.
	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	indent := len(line) - len(trimmed)
	if isBulletLine(trimmed) {
		return strings.Repeat(" ", indent) + trimmed
	}

	content := innerWhitespace.ReplaceAllString(strings.TrimSpace(line), " ")
	return strings.Repeat(" ", indent) + content
}

func isBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") ||
		strings.HasPrefix(trimmed, "• ") || strings.HasPrefix(trimmed, "· ")
}

// IngestFromFile reads a job posting from disk. HTML files go through the
// job-board text extractor; anything else is treated as text.
func IngestFromFile(path string) (string, *Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}

	text := string(content)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		text, err = fetch.ExtractMainText(text, fetch.JobPostingSelectors(), fetch.PlatformNoiseSelectors(fetch.PlatformUnknown)...)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
		}
	}

	cleanedText := CleanText(text)
	metadata := NewMetadata(cleanedText, "")
	metadata.Path = path

	return cleanedText, metadata, nil
}

// ReadDocument loads a résumé from disk, picking the extractor from the file extension.
func ReadDocument(path string) (*Document, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, fmt.Errorf("file not found: %w", err)
		}
		return nil, 0, fmt.Errorf("failed to read file: %w", err)
	}

	doc, err := ExtractDocument(filepath.Base(path), "", data)
	if err != nil {
		return nil, 0, err
	}
	return doc, len(data), nil
}
