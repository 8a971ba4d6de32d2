package agent

// insight.go — agente de briefings de inteligencia de mercado.
//
// Agrega el estado actual (mercados top por volumen, gaps notables,
// alertas recientes), lo baja a texto sanitizado y le pide al LLM un
// briefing en Markdown que se persiste como Insight.

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/themvf/PredictionMarkets/internal/domain"
	"github.com/themvf/PredictionMarkets/internal/llm"
	"github.com/themvf/PredictionMarkets/internal/ports"
)

// InsightAgent genera el briefing periódico.
type InsightAgent struct {
	now func() time.Time
}

// NewInsightAgent crea el agente insight.
func NewInsightAgent() *InsightAgent {
	return &InsightAgent{now: func() time.Time { return time.Now().UTC() }}
}

// Name devuelve el identificador del agente.
func (a *InsightAgent) Name() string { return "insight" }

// Execute arma el briefing y lo persiste. Sin LLM configurado, se salta.
func (a *InsightAgent) Execute(ctx context.Context, rc *RunContext) (*Result, error) {
	if rc.LLM == nil {
		return &Result{Summary: "Skipped -- no LLM client configured."}, nil
	}

	markets, err := rc.Store.GetAllMarkets(ctx, ports.MarketFilter{Status: domain.MarketStatusActive})
	if err != nil {
		return nil, fmt.Errorf("agent.Insight: load markets: %w", err)
	}
	pairs, err := rc.Store.GetAllPairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("agent.Insight: load pairs: %w", err)
	}
	alerts, err := rc.Store.GetAlerts(ctx, ports.AlertFilter{OnlyUnack: true, Limit: 20})
	if err != nil {
		return nil, fmt.Errorf("agent.Insight: load alerts: %w", err)
	}

	kalshiCount := 0
	polyCount := 0
	for _, m := range markets {
		switch m.Platform {
		case domain.PlatformKalshi:
			kalshiCount++
		case domain.PlatformPolymarket:
			polyCount++
		}
	}

	content, err := rc.LLM.Chat(ctx, llm.SystemAnalyst, llm.BriefingPrompt(llm.BriefingData{
		TotalMarkets: len(markets),
		KalshiCount:  kalshiCount,
		PolyCount:    polyCount,
		PairCount:    len(pairs),
		AlertCount:   len(alerts),
		TopMarkets:   a.topMarketLines(markets, 15),
		PriceGaps:    a.gapLines(pairs, 10),
		RecentAlerts: a.alertLines(alerts, 10),
	}))
	if err != nil {
		return nil, fmt.Errorf("agent.Insight: llm briefing: %w", err)
	}

	if _, err := rc.Store.InsertInsight(ctx, domain.Insight{
		ReportType:     "briefing",
		Title:          "Market Intelligence Briefing",
		Content:        content,
		MarketsCovered: len(markets),
		ModelUsed:      rc.LLM.Model(),
		CreatedAt:      a.now(),
	}); err != nil {
		return nil, fmt.Errorf("agent.Insight: insert insight: %w", err)
	}

	return &Result{
		ItemsProcessed: 1,
		Summary:        fmt.Sprintf("Generated briefing covering %d markets.", len(markets)),
		Data: map[string]any{
			"markets_covered": len(markets),
			"pair_count":      len(pairs),
			"alert_count":     len(alerts),
		},
	}, nil
}

// topMarketLines baja los N mercados con más volumen a líneas de prompt,
// enriquecidas con probabilidad implícita y tier.
func (a *InsightAgent) topMarketLines(markets []domain.Market, n int) string {
	sorted := append([]domain.Market(nil), markets...)
	sort.Slice(sorted, func(i, j int) bool {
		return volumeOf(sorted[i]) > volumeOf(sorted[j])
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	var lines []string
	for _, m := range sorted {
		prob := "N/A"
		if p := domain.ImpliedProbability(m.YesPrice); p != nil {
			prob = fmt.Sprintf("%.0f%%", *p*100)
		}
		tier := domain.LiquidityScore(m.Volume, m.Liquidity)
		lines = append(lines, fmt.Sprintf("- %s (%s): %s implied, $%.0f volume [%s]",
			llm.SanitizeForPrompt(m.Title, 120), m.Platform, prob, volumeOf(m), tier))
	}
	if len(lines) == 0 {
		return "No markets available."
	}
	return strings.Join(lines, "\n")
}

// gapLines baja los pares con gap ajustado >= 2c, de mayor a menor.
func (a *InsightAgent) gapLines(pairs []domain.PairView, n int) string {
	var notable []domain.PairView
	for _, p := range pairs {
		if p.PriceGap != nil && *p.PriceGap >= 0.02 {
			notable = append(notable, p)
		}
	}
	sort.Slice(notable, func(i, j int) bool {
		return *notable[i].PriceGap > *notable[j].PriceGap
	})
	if len(notable) > n {
		notable = notable[:n]
	}

	var lines []string
	for _, p := range notable {
		lines = append(lines, fmt.Sprintf("- %s vs %s: $%.2f gap (confidence %.2f)",
			llm.SanitizeForPrompt(p.KalshiTitle, 100),
			llm.SanitizeForPrompt(p.PolyTitle, 100),
			*p.PriceGap, p.MatchConfidence))
	}
	if len(lines) == 0 {
		return "No significant vig-adjusted price gaps detected."
	}
	return strings.Join(lines, "\n")
}

// alertLines baja las alertas sin acknowledge más recientes.
func (a *InsightAgent) alertLines(alerts []domain.Alert, n int) string {
	if len(alerts) > n {
		alerts = alerts[:n]
	}
	var lines []string
	for _, al := range alerts {
		lines = append(lines, fmt.Sprintf("- [%s] %s: %s",
			strings.ToUpper(string(al.Severity)),
			llm.SanitizeForPrompt(al.Title, 100),
			llm.SanitizeForPrompt(al.Message, 200)))
	}
	if len(lines) == 0 {
		return "No recent alerts."
	}
	return strings.Join(lines, "\n")
}

func volumeOf(m domain.Market) float64 {
	if m.Volume == nil {
		return 0
	}
	return *m.Volume
}
