package validation

import (
	"net/url"
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://\S+`)

// SupportedDomains lists the platforms the bot downloads from. A URL is
// accepted when its host contains one of these, case-insensitively.
var SupportedDomains = []string{
	"youtube.com", "youtu.be",
	"tiktok.com", "instagram.com",
	"facebook.com", "fb.watch",
}

// ExtractSupportedURL returns the first URL in text whose host belongs to a
// supported platform, skipping any non-matching URLs before it. An empty
// result means no supported URL was found; that is a normal outcome, not an
// error.
func ExtractSupportedURL(text string) string {
	for _, candidate := range urlPattern.FindAllString(text, -1) {
		if IsSupportedURL(candidate) {
			return candidate
		}
	}
	return ""
}

// IsSupportedURL reports whether rawURL parses and its host contains one of
// the supported domains.
func IsSupportedURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return false
	}

	for _, domain := range SupportedDomains {
		if strings.Contains(host, domain) {
			return true
		}
	}
	return false
}
