package polymarket

// data.go — Data API: trades grandes y leaderboard de traders.
// Ambos endpoints son públicos y sin auth. Los campos de texto que pueden
// acabar en un prompt o en una alerta se sanean aquí, en la frontera.

import (
	"context"
	"fmt"

	"github.com/themvf/PredictionMarkets/internal/llm"
	"github.com/themvf/PredictionMarkets/internal/ports"
)

const maxNameLen = 200

// GetTrades devuelve trades con valor nominal >= minUSDC, los más
// recientes primero.
func (c *Client) GetTrades(ctx context.Context, minUSDC float64, limit int) ([]ports.RawTrade, error) {
	if limit <= 0 {
		limit = 100
	}
	url := fmt.Sprintf("%s/trades?limit=%d&filterType=CASH&filterAmount=%g",
		c.dataBase, limit, minUSDC)

	var raw []dataTrade
	if err := c.get(ctx, c.dataLimiter, url, &raw); err != nil {
		return nil, fmt.Errorf("polymarket.GetTrades: %w", err)
	}

	trades := make([]ports.RawTrade, 0, len(raw))
	for _, t := range raw {
		trades = append(trades, ports.RawTrade{
			ProxyWallet:     llm.SanitizeText(t.ProxyWallet, maxIDLen),
			Pseudonym:       llm.SanitizeText(t.Pseudonym, maxNameLen),
			ProfileImage:    t.ProfileImage,
			ConditionID:     llm.SanitizeText(t.ConditionID, maxIDLen),
			Title:           llm.SanitizeText(t.Title, maxTitleLen),
			Side:            t.Side,
			Size:            asFloat(t.Size),
			Price:           asFloat(t.Price),
			USDCSize:        asFloat(t.USDCSize),
			Outcome:         llm.SanitizeText(t.Outcome, maxNameLen),
			OutcomeIndex:    asInt64(t.OutcomeIndex),
			TransactionHash: llm.SanitizeText(t.TransactionHash, maxIDLen),
			Timestamp:       asInt64(t.Timestamp),
			EventSlug:       llm.SanitizeText(t.EventSlug, maxNameLen),
		})
	}
	return trades, nil
}

// GetLeaderboard devuelve el ranking de traders por PnL para la categoría
// y período dados (OVERALL/POLITICS/..., ALL/MONTH/WEEK).
func (c *Client) GetLeaderboard(ctx context.Context, category, period string, limit int) ([]ports.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 25
	}
	url := fmt.Sprintf("%s/v1/leaderboard?category=%s&timePeriod=%s&orderBy=PNL&limit=%d",
		c.dataBase, category, period, limit)

	var raw []dataLeaderboardEntry
	if err := c.get(ctx, c.dataLimiter, url, &raw); err != nil {
		return nil, fmt.Errorf("polymarket.GetLeaderboard: %s/%s: %w", category, period, err)
	}

	entries := make([]ports.LeaderboardEntry, 0, len(raw))
	for _, e := range raw {
		name := e.UserName
		if name == "" {
			name = e.Name
		}
		entries = append(entries, ports.LeaderboardEntry{
			ProxyWallet:   llm.SanitizeText(e.ProxyWallet, maxIDLen),
			UserName:      llm.SanitizeText(name, maxNameLen),
			ProfileImage:  e.ProfileImage,
			XUsername:     llm.SanitizeText(e.XUsername, maxNameLen),
			VerifiedBadge: e.VerifiedBadge,
			PnL:           asFloat(e.PnL),
			Volume:        asFloat(e.Volume),
		})
	}
	return entries, nil
}
