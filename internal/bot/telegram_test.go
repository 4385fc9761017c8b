package bot

import (
	"strings"
	"testing"

	"crypto-tracker/internal/domain"
)

func TestStartTelegramBotSkipsWithoutToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	StartTelegramBot(nil, nil)
}

func TestFindCoin(t *testing.T) {
	snapshot := &domain.MarketSnapshot{Coins: []domain.Coin{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin"},
		{ID: "ethereum", Symbol: "eth", Name: "Ethereum"},
	}}

	if coin, ok := findCoin(snapshot, "BTC"); !ok || coin.ID != "bitcoin" {
		t.Fatalf("symbol lookup failed: %+v ok=%v", coin, ok)
	}
	if coin, ok := findCoin(snapshot, "ethereum"); !ok || coin.Symbol != "eth" {
		t.Fatalf("id lookup failed: %+v ok=%v", coin, ok)
	}
	if _, ok := findCoin(snapshot, "dogecoin"); ok {
		t.Fatal("unknown coin should not resolve")
	}
	if _, ok := findCoin(nil, "btc"); ok {
		t.Fatal("nil snapshot should not resolve")
	}
}

func TestFormatCoin(t *testing.T) {
	change7d := 5.5
	msg := formatCoin(domain.Coin{
		ID: "bitcoin", Symbol: "btc", Name: "Bitcoin",
		CurrentPrice: 97000, Change24hPct: -1.25, MarketCap: 1.9e12, TotalVolume: 4.5e10,
		Change7dPct: &change7d,
	})
	for _, want := range []string{"Bitcoin (BTC)", "$97000.00", "-1.25%", "7d Change: +5.50%"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}
