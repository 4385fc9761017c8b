package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"crypto-tracker/internal/domain"
	"crypto-tracker/internal/favorites"
	"crypto-tracker/internal/service"

	tele "gopkg.in/telebot.v3"
)

func StartTelegramBot(markets *service.MarketService, favs *favorites.Store) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/price", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send("Usage: /price btc")
		}
		coin, ok := findCoin(markets.Snapshot(), args[0])
		if !ok {
			return c.Send(fmt.Sprintf("Unknown coin: %s\nTry a symbol (btc) or id (bitcoin) from the tracked top list.", args[0]))
		}
		return c.Send(formatCoin(coin))
	})

	b.Handle("/top", func(c tele.Context) error {
		snapshot := markets.Snapshot()
		if snapshot == nil {
			return c.Send("Market data not loaded yet, try again shortly.")
		}
		n := 10
		if len(snapshot.Coins) < n {
			n = len(snapshot.Coins)
		}
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Top %d by market cap:\n", n))
		for _, coin := range snapshot.Coins[:n] {
			sb.WriteString(fmt.Sprintf("%2d. %s (%s) $%.2f %+.2f%%\n",
				coin.MarketCapRank, coin.Name, strings.ToUpper(coin.Symbol),
				coin.CurrentPrice, coin.Change24hPct))
		}
		return c.Send(sb.String())
	})

	b.Handle("/fav", func(c tele.Context) error {
		ids := favs.IDs()
		if len(ids) == 0 {
			return c.Send("No favorites yet. Use /favadd <id> to add one.")
		}
		snapshot := markets.Snapshot()
		var sb strings.Builder
		sb.WriteString("Favorites:\n")
		for _, id := range ids {
			if coin, ok := findCoin(snapshot, id); ok {
				sb.WriteString(fmt.Sprintf("★ %s (%s) $%.2f %+.2f%%\n",
					coin.Name, strings.ToUpper(coin.Symbol), coin.CurrentPrice, coin.Change24hPct))
			} else {
				sb.WriteString(fmt.Sprintf("★ %s\n", id))
			}
		}
		return c.Send(sb.String())
	})

	b.Handle("/favadd", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send("Usage: /favadd bitcoin")
		}
		coin, ok := findCoin(markets.Snapshot(), args[0])
		if !ok {
			return c.Send(fmt.Sprintf("Unknown coin: %s", args[0]))
		}
		member := favs.Toggle(context.Background(), coin.ID)
		if member {
			return c.Send(fmt.Sprintf("Added %s to favorites", coin.Name))
		}
		return c.Send(fmt.Sprintf("Removed %s from favorites", coin.Name))
	})

	log.Println("Telegram bot started")
	go b.Start()
}

// findCoin resolves a user-typed query against the snapshot by id or
// symbol, case-insensitively.
func findCoin(snapshot *domain.MarketSnapshot, query string) (domain.Coin, bool) {
	if snapshot == nil {
		return domain.Coin{}, false
	}
	q := strings.ToLower(strings.TrimSpace(query))
	for _, coin := range snapshot.Coins {
		if strings.ToLower(coin.ID) == q || strings.ToLower(coin.Symbol) == q {
			return coin, true
		}
	}
	return domain.Coin{}, false
}

func formatCoin(coin domain.Coin) string {
	msg := fmt.Sprintf(
		"%s (%s)\nPrice: $%.2f\n24h Change: %+.2f%%\nMarket Cap: $%.0f\n24h Volume: $%.0f",
		coin.Name, strings.ToUpper(coin.Symbol),
		coin.CurrentPrice, coin.Change24hPct, coin.MarketCap, coin.TotalVolume,
	)
	if coin.Change7dPct != nil {
		msg += fmt.Sprintf("\n7d Change: %+.2f%%", *coin.Change7dPct)
	}
	return msg
}
