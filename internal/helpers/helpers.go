package helpers

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// NormalizeUsername returns the canonical lookup form of a username:
// trimmed, lowercased, without a leading "@".
func NormalizeUsername(username string) string {
	u := strings.TrimSpace(username)
	u = strings.TrimPrefix(u, "@")
	return strings.ToLower(u)
}

// ExtractEmail returns the first email-looking substring found in text,
// casing preserved, or "" when there is none.
func ExtractEmail(text string) string {
	if text == "" {
		return ""
	}
	return emailRegex.FindString(text)
}

func ProfileURL(uniqueID string) string {
	return "https://www.tiktok.com/@" + uniqueID
}

func PostURL(uniqueID, postID string) string {
	return "https://www.tiktok.com/@" + uniqueID + "/video/" + postID
}
