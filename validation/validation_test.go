package validation

import (
	"testing"
)

func TestExtractSupportedURL(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain text", "hello there", ""},
		{"empty", "", ""},
		{"url inside text", "check this https://youtu.be/abc123 cool", "https://youtu.be/abc123"},
		{"bare supported url", "https://www.youtube.com/watch?v=abc", "https://www.youtube.com/watch?v=abc"},
		{"unsupported domain", "https://vimeo.com/555", ""},
		{"unsupported before supported", "https://vimeo.com/555 and https://youtu.be/abc", "https://youtu.be/abc"},
		{"two supported returns first", "https://youtu.be/first https://tiktok.com/second", "https://youtu.be/first"},
		{"uppercase host", "HTTPS is ignored but https://YouTu.Be/abc works", "https://YouTu.Be/abc"},
		{"tiktok", "https://www.tiktok.com/@user/video/123", "https://www.tiktok.com/@user/video/123"},
		{"instagram", "https://www.instagram.com/reel/xyz/", "https://www.instagram.com/reel/xyz/"},
		{"facebook short link", "https://fb.watch/abcdef/", "https://fb.watch/abcdef/"},
		{"domain in path does not count", "https://example.com/youtube.com", ""},
		{"no scheme", "youtube.com/watch?v=abc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractSupportedURL(tt.text); got != tt.want {
				t.Errorf("ExtractSupportedURL(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsSupportedURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://youtube.com/watch?v=abc", true},
		{"https://m.youtube.com/watch?v=abc", true},
		{"http://youtu.be/abc", true},
		{"https://fb.watch/xyz/", true},
		{"https://vimeo.com/555", false},
		{"https://example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsSupportedURL(tt.url); got != tt.want {
			t.Errorf("IsSupportedURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
