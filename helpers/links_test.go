package helpers

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTrackingURL(t *testing.T) {
	got := BuildTrackingURL("https://track.example.com/", "abc123", "john doe", "acme")

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "track.example.com", u.Host)
	assert.Equal(t, "/r/abc123", u.Path)
	assert.Equal(t, "john doe", u.Query().Get("subid"))
	assert.Equal(t, "acme", u.Query().Get("house"))
}

func TestGenerateLinkCode(t *testing.T) {
	a, b := GenerateLinkCode(), GenerateLinkCode()
	assert.Len(t, a, 32)
	assert.NotContains(t, a, "-")
	assert.NotEqual(t, a, b)
}
