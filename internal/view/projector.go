// Package view derives the displayed coin rows from the snapshot, the
// search term, the favorites set, and the active tab.
package view

import (
	"strings"

	"crypto-tracker/internal/domain"
)

type Tab string

const (
	TabAll       Tab = "all"
	TabFavorites Tab = "favorites"
)

// Favorites is the read side of the favorites store.
type Favorites interface {
	IsFavorite(id string) bool
}

// Project filters the snapshot's coins by search term and active tab.
// Matching is a case-insensitive substring test against name or symbol.
// Snapshot order (market-cap descending, as fetched) is preserved; no
// independent sort happens here. The favorite flag on each returned row
// is recomputed from favs, never trusted from the snapshot.
func Project(snapshot *domain.MarketSnapshot, term string, favs Favorites, tab Tab) []domain.Coin {
	if snapshot == nil {
		return nil
	}

	needle := strings.ToLower(strings.TrimSpace(term))
	rows := make([]domain.Coin, 0, len(snapshot.Coins))
	for _, coin := range snapshot.Coins {
		if needle != "" && !matches(coin, needle) {
			continue
		}
		fav := favs != nil && favs.IsFavorite(coin.ID)
		if tab == TabFavorites && !fav {
			continue
		}
		coin.Favorite = fav
		rows = append(rows, coin)
	}
	return rows
}

func matches(coin domain.Coin, needle string) bool {
	return strings.Contains(strings.ToLower(coin.Name), needle) ||
		strings.Contains(strings.ToLower(coin.Symbol), needle)
}

// EmptyMessage is the message shown when a projection comes back empty.
func EmptyMessage(tab Tab, term string) string {
	if tab == TabFavorites {
		if term != "" {
			return "No favorites match your search."
		}
		return "No favorites yet. Toggle one from the table."
	}
	if term != "" {
		return "No coins match your search."
	}
	return "No market data available."
}
