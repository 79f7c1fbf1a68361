package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/sirupsen/logrus"
)

type Config struct {
	BotToken       string
	ServerPort     string
	WebhookBaseURL string
	SecretToken    string

	LogDir  string
	TempDir string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	DownloadTimeout time.Duration
	MaxFileSizeMB   int64
	AudioBitrate    string
	YTDLPPath       string
	FFmpegPath      string

	RateLimit         int
	RateLimitInterval time.Duration

	JanitorInterval time.Duration
	JanitorMaxAge   time.Duration
}

func LoadConfig() *Config {
	return &Config{
		BotToken:       os.Getenv("TELEGRAM_TOKEN"),
		ServerPort:     GetEnv("PORT", "8000"),
		WebhookBaseURL: webhookBaseURL(),
		SecretToken:    os.Getenv("SECRET_TOKEN"),

		LogDir:  GetEnv("LOG_DIR", "./logs"),
		TempDir: GetEnv("TEMP_DIR", filepath.Join(os.TempDir(), "grabbot")),

		ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:  getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),

		DownloadTimeout: getEnvAsDuration("DOWNLOAD_TIMEOUT", 10*time.Minute),
		MaxFileSizeMB:   getEnvAsInt64("MAX_FILE_SIZE_MB", 50),
		AudioBitrate:    GetEnv("AUDIO_BITRATE", "192K"),
		YTDLPPath:       GetEnv("YTDLP_PATH", "yt-dlp"),
		FFmpegPath:      os.Getenv("FFMPEG_PATH"),

		RateLimit:         getEnvAsInt("RATE_LIMIT", 3),
		RateLimitInterval: getEnvAsDuration("RATE_LIMIT_INTERVAL", 10*time.Second),

		JanitorInterval: getEnvAsDuration("JANITOR_INTERVAL", 15*time.Minute),
		JanitorMaxAge:   getEnvAsDuration("JANITOR_MAX_AGE", time.Hour),
	}
}

// webhookBaseURL resolves the externally reachable base URL for webhook mode.
// An explicit WEBHOOK_URL wins; otherwise the URL published by the hosting
// platform (Railway, then Render) is used. An empty result selects polling
// mode.
func webhookBaseURL() string {
	if value := os.Getenv("WEBHOOK_URL"); value != "" {
		return value
	}
	if value := os.Getenv("RAILWAY_STATIC_URL"); value != "" {
		return value
	}
	if value := os.Getenv("RENDER_EXTERNAL_URL"); value != "" {
		return value
	}
	return ""
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid duration, using default")
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid integer, using default")
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid integer, using default")
	}
	return defaultValue
}

func ValidateConfig(cfg *Config) error {
	if cfg.BotToken == "" {
		return errors.New("TELEGRAM_TOKEN environment variable not set")
	}
	if cfg.ServerPort == "" {
		return errors.New("server port is required")
	}
	if cfg.MaxFileSizeMB <= 0 {
		return errors.New("max file size must be greater than 0")
	}
	if cfg.DownloadTimeout <= 0 {
		return errors.New("download timeout must be greater than 0")
	}
	if cfg.ReadTimeout <= 0 {
		return errors.New("read timeout must be greater than 0")
	}
	if cfg.WriteTimeout <= 0 {
		return errors.New("write timeout must be greater than 0")
	}
	if cfg.IdleTimeout <= 0 {
		return errors.New("idle timeout must be greater than 0")
	}
	if cfg.RateLimit < 1 {
		return errors.New("rate limit must be at least 1")
	}
	return nil
}
