package config

import (
	"testing"
	"time"
)

func validTestConfig() *Config {
	return &Config{
		BotToken:        "123:abc",
		ServerPort:      "8000",
		MaxFileSizeMB:   50,
		DownloadTimeout: 10 * time.Minute,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		RateLimit:       3,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing token", func(c *Config) { c.BotToken = "" }, true},
		{"missing port", func(c *Config) { c.ServerPort = "" }, true},
		{"zero size limit", func(c *Config) { c.MaxFileSizeMB = 0 }, true},
		{"zero download timeout", func(c *Config) { c.DownloadTimeout = 0 }, true},
		{"zero rate limit", func(c *Config) { c.RateLimit = 0 }, true},
	}

	for _, tt := range tests {
		cfg := validTestConfig()
		tt.mutate(cfg)
		err := ValidateConfig(cfg)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: ValidateConfig() error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestWebhookBaseURL(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"none set", nil, ""},
		{"explicit override", map[string]string{"WEBHOOK_URL": "https://bot.example.com"}, "https://bot.example.com"},
		{"railway fallback", map[string]string{"RAILWAY_STATIC_URL": "https://app.up.railway.app"}, "https://app.up.railway.app"},
		{"render fallback", map[string]string{"RENDER_EXTERNAL_URL": "https://app.onrender.com"}, "https://app.onrender.com"},
		{
			"override beats platform",
			map[string]string{
				"WEBHOOK_URL":        "https://bot.example.com",
				"RAILWAY_STATIC_URL": "https://app.up.railway.app",
			},
			"https://bot.example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"WEBHOOK_URL", "RAILWAY_STATIC_URL", "RENDER_EXTERNAL_URL"} {
				t.Setenv(key, "")
			}
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			if got := webhookBaseURL(); got != tt.want {
				t.Errorf("webhookBaseURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
