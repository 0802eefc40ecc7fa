package ingestion

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_ToJSON(t *testing.T) {
	metadata := &Metadata{
		URL:       "https://boards.greenhouse.io/acme/jobs/1",
		Timestamp: "2024-01-01T00:00:00Z",
		Hash:      "abcd1234",
		Platform:  "greenhouse",
		Rendered:  true,
	}

	jsonBytes, err := metadata.ToJSON()
	require.NoError(t, err)

	var decoded Metadata
	require.NoError(t, json.Unmarshal(jsonBytes, &decoded))
	assert.Equal(t, *metadata, decoded)
}

func TestMetadata_ToJSON_OmitsEmpty(t *testing.T) {
	jsonBytes, err := (&Metadata{Timestamp: "2024-01-01T00:00:00Z", Hash: "x"}).ToJSON()
	require.NoError(t, err)

	assert.NotContains(t, string(jsonBytes), "url")
	assert.NotContains(t, string(jsonBytes), "platform")
	assert.NotContains(t, string(jsonBytes), "rendered")
}

func TestComputeHash(t *testing.T) {
	hash1 := computeHash("test content")
	hash2 := computeHash("different content")

	assert.Len(t, hash1, 64)
	assert.NotEqual(t, hash1, hash2)
	assert.Equal(t, hash1, computeHash("test content"))
}

func TestNewMetadata(t *testing.T) {
	metadata := NewMetadata("test content", "https://example.com/job")

	assert.Equal(t, "https://example.com/job", metadata.URL)
	assert.Equal(t, computeHash("test content"), metadata.Hash)

	_, err := time.Parse(time.RFC3339, metadata.Timestamp)
	assert.NoError(t, err)
}
