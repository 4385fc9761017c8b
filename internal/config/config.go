package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	RedisURL        string
	CoinGeckoAPIKey string
	RefreshSecs     int
	TopN            int
	VsCurrency      string

	HTTPPort   int
	HTTPAPIKey string

	SSHPort        int
	SSHHostKeyPath string

	TelegramBotToken string
}

func Load() *Config {
	cfg := &Config{
		RedisURL:         os.Getenv("REDIS_URL"),
		CoinGeckoAPIKey:  strings.TrimSpace(os.Getenv("COINGECKO_API_KEY")),
		HTTPAPIKey:       strings.TrimSpace(os.Getenv("API_KEY")),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.CoinGeckoAPIKey == "" {
		log.Println("Warning: COINGECKO_API_KEY not set, using free tier rate limits")
	}
	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set, bot disabled")
	}

	cfg.RefreshSecs = 120
	if v := os.Getenv("REFRESH_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RefreshSecs = n
		}
	}

	cfg.TopN = 100
	if v := strings.TrimSpace(os.Getenv("TOP_N")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 250 {
			cfg.TopN = n
		}
	}

	cfg.VsCurrency = strings.ToLower(strings.TrimSpace(os.Getenv("VS_CURRENCY")))
	if cfg.VsCurrency == "" {
		cfg.VsCurrency = "usd"
	}

	cfg.HTTPPort = 8080
	if v := strings.TrimSpace(os.Getenv("HTTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPPort = n
		}
	}

	cfg.SSHPort = 23234
	if v := strings.TrimSpace(os.Getenv("SSH_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SSHPort = n
		}
	}

	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/crypto_tracker_host_key"
	}

	return cfg
}
