package helpers

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
)

func GenerateLinkCode() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

func GenerateAPIKey() string {
	return uuid.New().String()
}

// BuildTrackingURL returns the link an affiliate shares. The subid is echoed
// back by the house in its postbacks.
func BuildTrackingURL(baseURL, code, subID, houseSlug string) string {
	q := url.Values{}
	q.Set("subid", subID)
	q.Set("house", houseSlug)
	return strings.TrimRight(baseURL, "/") + "/r/" + code + "?" + q.Encode()
}
