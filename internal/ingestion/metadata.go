package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Metadata describes where an ingested job posting came from.
type Metadata struct {
	URL       string `json:"url,omitempty"`
	Path      string `json:"path,omitempty"`
	Timestamp string `json:"timestamp"`          // RFC3339
	Hash      string `json:"hash"`               // SHA256 hex digest of the cleaned text
	Platform  string `json:"platform,omitempty"` // job board platform, URL sources only
	Rendered  bool   `json:"rendered,omitempty"` // text came from a headless browser render
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(content string, url string) *Metadata {
	return &Metadata{
		URL:       url,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(content),
	}
}

func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
