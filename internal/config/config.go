// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	AMQPURL     string
	HTTPAddr    string

	AI       AIConfig
	Mailer   MailerConfig
	Outreach OutreachConfig

	NotifyWebhookURL string
}

type AIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type MailerConfig struct {
	APIKey  string
	BaseURL string
	From    string
}

type OutreachConfig struct {
	DailyCap      int
	DryRun        bool
	HotThreshold  int
	WarmThreshold int
	CooldownDays  []int
	MaxTouches    int
	BatchLimit    int
	AIEmailLookup bool
	CallDelay     time.Duration
}

// Load reads .env (if present) and the process environment. Only
// DATABASE_URL is required here; feature-specific keys are validated by the
// component that needs them.
func Load() (*Config, error) {
	// Missing .env is fine, OS env wins either way.
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		AMQPURL:     os.Getenv("AMQP_URL"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		AI: AIConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
			Model:   os.Getenv("OPENAI_MODEL"),
		},
		Mailer: MailerConfig{
			APIKey:  os.Getenv("MAILER_API_KEY"),
			BaseURL: os.Getenv("MAILER_BASE_URL"),
			From:    getEnv("MAILER_FROM", "outreach@leadforge.dev"),
		},
		Outreach: OutreachConfig{
			DailyCap:      getEnvInt("DAILY_SEND_CAP", 50),
			DryRun:        getEnvBool("DRY_RUN", false),
			HotThreshold:  getEnvInt("HOT_THRESHOLD", 70),
			WarmThreshold: getEnvInt("WARM_THRESHOLD", 40),
			MaxTouches:    getEnvInt("MAX_TOUCHES", 4),
			BatchLimit:    getEnvInt("BATCH_LIMIT", 20),
			AIEmailLookup: getEnvBool("AI_EMAIL_LOOKUP", true),
			CallDelay:     getEnvDuration("AI_CALL_DELAY", 1500*time.Millisecond),
		},
		NotifyWebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
	}

	cooldowns, err := parseCooldowns(getEnv("FOLLOWUP_COOLDOWN_DAYS", "3,7,14"))
	if err != nil {
		return nil, err
	}
	cfg.Outreach.CooldownDays = cooldowns

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func parseCooldowns(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid FOLLOWUP_COOLDOWN_DAYS entry %q", p)
		}
		days = append(days, n)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("FOLLOWUP_COOLDOWN_DAYS must not be empty")
	}
	return days, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
