package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	t.Setenv("COINGECKO_API_KEY", "")
	t.Setenv("REFRESH_SECS", "")
	t.Setenv("TOP_N", "")
	t.Setenv("VS_CURRENCY", "")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("SSH_PORT", "")
	t.Setenv("SSH_HOST_KEY_PATH", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	cfg := Load()
	if cfg.RedisURL != "localhost:6379" {
		t.Fatalf("expected default redis url, got %s", cfg.RedisURL)
	}
	if cfg.RefreshSecs != 120 {
		t.Fatalf("expected default refresh secs 120, got %d", cfg.RefreshSecs)
	}
	if cfg.TopN != 100 || cfg.VsCurrency != "usd" {
		t.Fatalf("unexpected market defaults: %+v", cfg)
	}
	if cfg.HTTPPort != 8080 || cfg.SSHPort != 23234 {
		t.Fatalf("unexpected port defaults: %+v", cfg)
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("COINGECKO_API_KEY", "cg-key")
	t.Setenv("REFRESH_SECS", "30")
	t.Setenv("TOP_N", "50")
	t.Setenv("VS_CURRENCY", "EUR")
	t.Setenv("HTTP_PORT", "9090")

	cfg := Load()
	if cfg.RedisURL != "redis:6379" || cfg.CoinGeckoAPIKey != "cg-key" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.RefreshSecs != 30 || cfg.TopN != 50 || cfg.HTTPPort != 9090 {
		t.Fatalf("unexpected numeric config: %+v", cfg)
	}
	if cfg.VsCurrency != "eur" {
		t.Fatalf("vs currency should lowercase, got %s", cfg.VsCurrency)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("REFRESH_SECS", "bad")
	t.Setenv("TOP_N", "5000")

	cfg := Load()
	if cfg.RefreshSecs != 120 {
		t.Fatalf("invalid refresh secs should fall back to default, got %d", cfg.RefreshSecs)
	}
	if cfg.TopN != 100 {
		t.Fatalf("out-of-range top N should fall back to default, got %d", cfg.TopN)
	}
}
