package config

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	infisical "github.com/infisical/go-sdk"
)

type Config struct {
	Port           string
	FrontendOrigin string

	PollInterval    time.Duration
	BackoffInterval time.Duration
	FetchTimeout    time.Duration
	HistorySize     int
	FeeRate         float64
	StaleAfter      time.Duration
	RecordsKeepFor  time.Duration

	// Failover tunables; the plausibility bound and breaker windows are
	// deliberately configuration, not constants.
	MaxDeviationPct float64
	SourceMaxFails  int
	SourceMuteFor   time.Duration

	EnableJin10 bool

	TelegramToken string
	RedisURL      string
	RedisPassword string
}

func Load() Config {
	cfg := Config{
		Port:           envOr("PORT", "8080"),
		FrontendOrigin: envOr("FRONTEND_ORIGIN", "*"),

		PollInterval:    envDur("GOLD_POLL_INTERVAL", 5*time.Second),
		BackoffInterval: envDur("GOLD_BACKOFF_INTERVAL", 30*time.Second),
		FetchTimeout:    envDur("GOLD_FETCH_TIMEOUT", 5*time.Second),
		HistorySize:     envInt("GOLD_HISTORY_SIZE", 720),
		FeeRate:         envFloat("GOLD_FEE_RATE", 0.005),
		StaleAfter:      envDur("GOLD_STALE_AFTER", 30*time.Second),
		RecordsKeepFor:  envDur("GOLD_RECORDS_KEEP_FOR", 7*24*time.Hour),

		MaxDeviationPct: envFloat("GOLD_MAX_DEVIATION_PCT", 5),
		SourceMaxFails:  envInt("GOLD_SOURCE_MAX_FAILS", 3),
		SourceMuteFor:   envDur("GOLD_SOURCE_MUTE_FOR", 2*time.Minute),

		EnableJin10: envBool("GOLD_ENABLE_JIN10", false),

		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		RedisURL:      envOr("REDIS_URL", "redis://localhost:6379/0"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}

	// If Infisical credentials are available, fetch secrets from Infisical
	clientID := os.Getenv("INFISICAL_CLIENT_ID")
	clientSecret := os.Getenv("INFISICAL_CLIENT_SECRET")
	if clientID != "" && clientSecret != "" {
		loadFromInfisical(&cfg, clientID, clientSecret)
	}

	return cfg
}

func loadFromInfisical(cfg *Config, clientID, clientSecret string) {
	siteURL := envOr("INFISICAL_SITE_URL", "https://app.infisical.com")
	projectID := os.Getenv("INFISICAL_PROJECT_ID")
	envSlug := envOr("INFISICAL_ENV", "prod")

	if projectID == "" {
		slog.Warn("INFISICAL_PROJECT_ID not set, skipping Infisical")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := infisical.NewInfisicalClient(ctx, infisical.Config{
		SiteUrl:          siteURL,
		AutoTokenRefresh: false,
	})

	_, err := client.Auth().UniversalAuthLogin(clientID, clientSecret)
	if err != nil {
		slog.Error("infisical auth failed", "error", err)
		return
	}

	secrets := map[string]*string{
		"TELEGRAM_BOT_TOKEN": &cfg.TelegramToken,
		"REDIS_PASSWORD":     &cfg.RedisPassword,
	}

	for key, target := range secrets {
		if *target != "" {
			continue // env var already set, skip
		}
		secret, err := client.Secrets().Retrieve(infisical.RetrieveSecretOptions{
			SecretKey:   key,
			Environment: envSlug,
			ProjectID:   projectID,
			SecretPath:  "/",
		})
		if err != nil {
			slog.Warn("failed to retrieve secret from infisical", "key", key, "error", err)
			continue
		}
		*target = secret.SecretValue
		slog.Info("loaded secret from infisical", "key", key)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("invalid integer env var, using default", "key", key, "value", v)
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		slog.Warn("invalid float env var, using default", "key", key, "value", v)
	}
	return fallback
}

func envDur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		slog.Warn("invalid duration env var, using default", "key", key, "value", v)
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		slog.Warn("invalid bool env var, using default", "key", key, "value", v)
	}
	return fallback
}
