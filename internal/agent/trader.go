package agent

// trader.go — agente de colección de perfiles de trader.
//
// Recorre el leaderboard de Polymarket por cada combinación
// categoría × período en paralelo, deduplica por wallet (primera
// ocurrencia gana) y hace un único upsert batch.

import (
	"context"
	"fmt"

	"github.com/themvf/PredictionMarkets/internal/domain"
	"github.com/themvf/PredictionMarkets/internal/ports"
)

var (
	leaderboardCategories = []string{"OVERALL", "POLITICS", "SPORTS", "CRYPTO", "ECONOMICS"}
	leaderboardPeriods    = []string{"ALL", "MONTH", "WEEK"}
)

const leaderboardPageSize = 50

// TraderAgent mantiene la tabla de traders al día desde el leaderboard.
type TraderAgent struct{}

// NewTraderAgent crea el agente de traders.
func NewTraderAgent() *TraderAgent { return &TraderAgent{} }

// Name devuelve el identificador del agente.
func (a *TraderAgent) Name() string { return "trader" }

// Execute consulta todas las combinaciones del leaderboard y persiste los
// perfiles nuevos o actualizados en un batch.
func (a *TraderAgent) Execute(ctx context.Context, rc *RunContext) (*Result, error) {
	if rc.Leaderboard == nil {
		return &Result{Summary: "Skipped -- no Polymarket client configured."}, nil
	}

	type combo struct {
		category string
		period   string
	}
	var combos []combo
	for _, c := range leaderboardCategories {
		for _, p := range leaderboardPeriods {
			combos = append(combos, combo{c, p})
		}
	}

	outcomes := FanOut(ctx, combos, rc.Workers, func(ctx context.Context, c combo) ([]ports.LeaderboardEntry, error) {
		return rc.Leaderboard.GetLeaderboard(ctx, c.category, c.period, leaderboardPageSize)
	})

	seen := make(map[string]bool)
	var batch []domain.Trader
	var errs []string

	for _, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Sprintf("Leaderboard %s/%s: %v", o.Item.category, o.Item.period, o.Err))
			continue
		}
		for _, e := range o.Result {
			if e.ProxyWallet == "" || seen[e.ProxyWallet] {
				continue
			}
			seen[e.ProxyWallet] = true
			batch = append(batch, domain.Trader{
				ProxyWallet:   e.ProxyWallet,
				UserName:      e.UserName,
				ProfileImage:  e.ProfileImage,
				XUsername:     e.XUsername,
				VerifiedBadge: e.VerifiedBadge,
				TotalPnL:      e.PnL,
				TotalVolume:   e.Volume,
			})
		}
	}

	upserted := 0
	if len(batch) > 0 {
		n, err := rc.Store.UpsertTradersBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("agent.Trader: upsert batch: %w", err)
		}
		upserted = n
	}

	errSummary := ""
	if len(errs) > 0 {
		errSummary = fmt.Sprintf(" (%d errors)", len(errs))
	}
	return &Result{
		ItemsProcessed: upserted,
		Summary:        fmt.Sprintf("Upserted %d trader profiles%s.", upserted, errSummary),
		Data: map[string]any{
			"traders_upserted": upserted,
			"errors":           capErrors(errs),
		},
	}, nil
}
