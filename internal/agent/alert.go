package agent

// alert.go — motor de alertas: cinco detectores independientes sobre el
// estado normalizado de mercados y pares.
//
// Cada detector es puro dado su input + marketmath, devuelve cuántas
// alertas creó, y un fallo en uno no bloquea a los demás. Los mercados
// que no cumplen un umbral simplemente se saltan: un skip no es un error.

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/themvf/PredictionMarkets/internal/domain"
	"github.com/themvf/PredictionMarkets/internal/ports"
)

// AlertAgent ejecuta los cinco detectores contra el storage.
type AlertAgent struct {
	now func() time.Time
}

// NewAlertAgent crea el agente de alertas.
func NewAlertAgent() *AlertAgent {
	return &AlertAgent{now: func() time.Time { return time.Now().UTC() }}
}

// Name devuelve el identificador del agente.
func (a *AlertAgent) Name() string { return "alert" }

// Execute corre los cinco detectores en secuencia y suma sus alertas.
// Un detector que falla se anota y se sigue con el resto.
func (a *AlertAgent) Execute(ctx context.Context, rc *RunContext) (*Result, error) {
	type detector struct {
		name string
		run  func(context.Context, *RunContext) (int, error)
	}
	detectors := []detector{
		{"price_move", a.checkPriceMoves},
		{"volume_spike", a.checkVolumeSpikes},
		{"arbitrage", a.checkArbitrageGaps},
		{"closing_soon", a.checkClosingSoon},
		{"keyword", a.checkKeywords},
	}

	total := 0
	counts := make(map[string]any, len(detectors))
	var errs []string

	for _, d := range detectors {
		n, err := d.run(ctx, rc)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", d.name, err))
		}
		counts[d.name] = n
		total += n
	}

	summary := fmt.Sprintf("Generated %d alerts.", total)
	if len(errs) > 0 {
		summary = fmt.Sprintf("Generated %d alerts (%d detectors failed).", total, len(errs))
	}
	counts["errors"] = capErrors(errs)

	return &Result{
		ItemsProcessed: total,
		Summary:        summary,
		Data:           counts,
	}, nil
}

// checkPriceMoves alerta sobre movimientos de precio escalados por tier.
// Un movimiento de 5c en un mercado deep es señal; el mismo movimiento en
// uno micro es ruido, así que el umbral escala 0.8x/1x/1.5x/2.5x.
func (a *AlertAgent) checkPriceMoves(ctx context.Context, rc *RunContext) (int, error) {
	markets, err := rc.Store.GetAllMarkets(ctx, ports.MarketFilter{Status: domain.MarketStatusActive})
	if err != nil {
		return 0, fmt.Errorf("agent.checkPriceMoves: load markets: %w", err)
	}

	var alerts []domain.Alert
	for _, m := range markets {
		history, err := rc.Store.GetPriceHistory(ctx, m.ID, 2)
		if err != nil || len(history) < 2 {
			continue
		}
		latest := history[0].YesPrice
		previous := history[1].YesPrice
		if latest == nil || previous == nil {
			continue
		}

		move := math.Abs(*latest - *previous)
		adjusted := domain.LiquidityAdjustedThreshold(rc.Rules.PriceMoveThreshold, m.Volume, m.Liquidity)
		if move < adjusted {
			continue
		}

		direction := "up"
		if *latest < *previous {
			direction = "down"
		}
		tier := domain.LiquidityScore(m.Volume, m.Liquidity)
		expiryH := m.HoursToClose(a.now())
		urgency := domain.ExpiryUrgency(expiryH)

		var severity domain.Severity
		switch {
		case (urgency == domain.UrgencyImminent || urgency == domain.UrgencySoon) && tier.Liquid():
			severity = domain.SeverityCritical
		case move >= adjusted*2:
			severity = domain.SeverityCritical
		case tier.Liquid():
			severity = domain.SeverityWarning
		default:
			severity = domain.SeverityInfo
		}

		msg := fmt.Sprintf("%s (%s): implied prob moved %s from %.0f%% to %.0f%% ($%.2f) | Liquidity: %s",
			m.Title, m.Platform, direction, *previous*100, *latest*100, move, tier)
		if expiryH != nil {
			msg += fmt.Sprintf(" | Expiry: %s (%.0fh)", urgency, *expiryH)
		}

		marketID := m.ID
		alerts = append(alerts, domain.Alert{
			AlertType: domain.AlertPriceMove,
			Severity:  severity,
			MarketID:  &marketID,
			Title:     fmt.Sprintf("Price %s %.0f%% [%s]", direction, move*100, tier),
			Message:   msg,
			Data: mustJSON(map[string]any{
				"previous":           *previous,
				"latest":             *latest,
				"move":               move,
				"liquidity_tier":     tier,
				"adjusted_threshold": adjusted,
				"expiry_hours":       expiryH,
				"urgency":            urgency,
			}),
		})
	}

	return a.insert(ctx, rc, alerts)
}

// checkVolumeSpikes alerta cuando el último volumen supera en el
// porcentaje configurado la media de los snapshots previos (mínimo 3).
func (a *AlertAgent) checkVolumeSpikes(ctx context.Context, rc *RunContext) (int, error) {
	markets, err := rc.Store.GetAllMarkets(ctx, ports.MarketFilter{Status: domain.MarketStatusActive})
	if err != nil {
		return 0, fmt.Errorf("agent.checkVolumeSpikes: load markets: %w", err)
	}

	var alerts []domain.Alert
	for _, m := range markets {
		history, err := rc.Store.GetPriceHistory(ctx, m.ID, 10)
		if err != nil || len(history) < 3 {
			continue
		}
		latest := history[0].Volume
		if latest == nil {
			continue
		}

		var sum float64
		var n int
		for _, h := range history[1:] {
			if h.Volume != nil && *h.Volume > 0 {
				sum += *h.Volume
				n++
			}
		}
		if n == 0 {
			continue
		}
		avg := sum / float64(n)
		if avg <= 0 {
			continue
		}

		spike := (*latest - avg) / avg
		if spike < rc.Rules.VolumeSpikePct {
			continue
		}

		tier := domain.LiquidityScore(latest, m.Liquidity)
		severity := domain.SeverityInfo
		if tier.Liquid() {
			severity = domain.SeverityWarning
		}

		marketID := m.ID
		alerts = append(alerts, domain.Alert{
			AlertType: domain.AlertVolumeSpike,
			Severity:  severity,
			MarketID:  &marketID,
			Title:     fmt.Sprintf("Volume +%.0f%% [%s]", spike*100, tier),
			Message: fmt.Sprintf("%s (%s): Volume spiked %.0f%% above average ($%.0f vs avg $%.0f) | Liquidity: %s",
				m.Title, m.Platform, spike*100, *latest, avg, tier),
			Data: mustJSON(map[string]any{
				"latest_volume":  *latest,
				"avg_volume":     avg,
				"spike_pct":      spike,
				"liquidity_tier": tier,
			}),
		})
	}

	return a.insert(ctx, rc, alerts)
}

// checkArbitrageGaps alerta sobre gaps cross-platform ajustados por vig.
// Un raw gap de $0.05 con $0.04 de diferencial de vig NO es arbitraje,
// es estructura de mercado: el fair gap filtra la señal real.
func (a *AlertAgent) checkArbitrageGaps(ctx context.Context, rc *RunContext) (int, error) {
	pairs, err := rc.Store.GetAllPairs(ctx)
	if err != nil {
		return 0, fmt.Errorf("agent.checkArbitrageGaps: load pairs: %w", err)
	}

	var alerts []domain.Alert
	for _, p := range pairs {
		if p.KalshiYes == nil || p.PolyYes == nil {
			continue
		}

		gap := domain.CrossPlatformGap(p.KalshiYes, p.KalshiNo, p.PolyYes, p.PolyNo)
		rawGap := 0.0
		if gap.RawGap != nil {
			rawGap = *gap.RawGap
		}
		if rawGap < rc.Rules.ArbGapThreshold {
			continue
		}
		// La detección gatilla sobre el raw gap; la clasificación usa el
		// fair gap cuando existe.
		effective := rawGap
		if gap.FairGap != nil {
			effective = *gap.FairGap
		}

		kalshiTier := domain.LiquidityScore(p.KalshiVolume, p.KalshiLiquidity)
		polyTier := domain.LiquidityScore(p.PolyVolume, p.PolyLiquidity)
		hasLiquidity := kalshiTier.Liquid() || polyTier.Liquid()
		isVigArtifact := gap.FairGap != nil && *gap.FairGap < 0.02 && rawGap >= rc.Rules.ArbGapThreshold

		var severity domain.Severity
		var label string
		switch {
		case isVigArtifact:
			severity, label = domain.SeverityInfo, "vig artifact"
		case hasLiquidity && effective >= rc.Rules.ArbGapThreshold*2:
			severity, label = domain.SeverityCritical, "genuine gap"
		case hasLiquidity:
			severity, label = domain.SeverityWarning, "potential gap"
		default:
			severity, label = domain.SeverityInfo, "thin-market gap"
		}

		direction := "Kalshi higher"
		if *p.PolyYes > *p.KalshiYes {
			direction = "Poly higher"
		}

		fairStr := "N/A"
		if gap.FairGap != nil {
			fairStr = fmt.Sprintf("$%.2f", *gap.FairGap)
		}

		pairID := p.ID
		alerts = append(alerts, domain.Alert{
			AlertType: domain.AlertArbitrage,
			Severity:  severity,
			PairID:    &pairID,
			Title:     fmt.Sprintf("Gap $%.2f (%s)", effective, label),
			Message: fmt.Sprintf("%s vs %s: raw gap $%.2f, fair gap %s (%s)",
				p.KalshiTitle, p.PolyTitle, rawGap, fairStr, direction),
			Data: mustJSON(map[string]any{
				"raw_gap":               gap.RawGap,
				"fair_gap":              gap.FairGap,
				"kalshi_yes":            *p.KalshiYes,
				"poly_yes":              *p.PolyYes,
				"kalshi_vig":            gap.KalshiVig,
				"poly_vig":              gap.PolyVig,
				"kalshi_fair":           gap.KalshiFair,
				"poly_fair":             gap.PolyFair,
				"is_vig_artifact":       isVigArtifact,
				"kalshi_liquidity_tier": kalshiTier,
				"poly_liquidity_tier":   polyTier,
			}),
		})
	}

	return a.insert(ctx, rc, alerts)
}

// checkClosingSoon alerta sobre mercados que cierran dentro de la
// ventana. Los mercados micro se saltan: demasiado ruidosos para ser
// accionables.
func (a *AlertAgent) checkClosingSoon(ctx context.Context, rc *RunContext) (int, error) {
	markets, err := rc.Store.GetAllMarkets(ctx, ports.MarketFilter{Status: domain.MarketStatusActive})
	if err != nil {
		return 0, fmt.Errorf("agent.checkClosingSoon: load markets: %w", err)
	}

	var alerts []domain.Alert
	for _, m := range markets {
		expiryH := m.HoursToClose(a.now())
		if expiryH == nil || *expiryH <= 0 || *expiryH > rc.Rules.CloseHours {
			continue
		}

		tier := domain.LiquidityScore(m.Volume, m.Liquidity)
		if tier == domain.TierMicro {
			continue
		}
		urgency := domain.ExpiryUrgency(expiryH)

		var severity domain.Severity
		switch urgency {
		case domain.UrgencyImminent:
			if tier.Liquid() {
				severity = domain.SeverityCritical
			} else {
				severity = domain.SeverityWarning
			}
		case domain.UrgencySoon:
			severity = domain.SeverityWarning
		default:
			severity = domain.SeverityInfo
		}

		msg := fmt.Sprintf("%s (%s) closing in %.1fh (%s)", m.Title, m.Platform, *expiryH, urgency)
		if m.YesPrice != nil {
			msg += fmt.Sprintf(" | Current: %.0f%% implied prob", *m.YesPrice*100)
		}

		marketID := m.ID
		alerts = append(alerts, domain.Alert{
			AlertType: domain.AlertClosingSoon,
			Severity:  severity,
			MarketID:  &marketID,
			Title:     fmt.Sprintf("Closing %s (%.1fh) [%s]", urgency, *expiryH, tier),
			Message:   msg,
			Data: mustJSON(map[string]any{
				"close_time":     m.CloseTime,
				"hours_left":     *expiryH,
				"urgency":        urgency,
				"liquidity_tier": tier,
			}),
		})
	}

	return a.insert(ctx, rc, alerts)
}

// checkKeywords alerta una única vez por mercado cuando su título matchea
// la watchlist. Idempotente: las alertas keyword previas marcan el
// mercado como ya avisado.
func (a *AlertAgent) checkKeywords(ctx context.Context, rc *RunContext) (int, error) {
	if len(rc.Rules.Keywords) == 0 {
		return 0, nil
	}

	markets, err := rc.Store.GetAllMarkets(ctx, ports.MarketFilter{Status: domain.MarketStatusActive})
	if err != nil {
		return 0, fmt.Errorf("agent.checkKeywords: load markets: %w", err)
	}

	existing, err := rc.Store.GetAlerts(ctx, ports.AlertFilter{AlertType: domain.AlertKeyword, Limit: 1000})
	if err != nil {
		return 0, fmt.Errorf("agent.checkKeywords: load existing alerts: %w", err)
	}
	alerted := make(map[int64]bool, len(existing))
	for _, al := range existing {
		if al.MarketID != nil {
			alerted[*al.MarketID] = true
		}
	}

	var alerts []domain.Alert
	for _, m := range markets {
		if alerted[m.ID] {
			continue
		}
		title := strings.ToLower(m.Title)
		var matched []string
		for _, kw := range rc.Rules.Keywords {
			if strings.Contains(title, strings.ToLower(kw)) {
				matched = append(matched, kw)
			}
		}
		if len(matched) == 0 {
			continue
		}

		tier := domain.LiquidityScore(m.Volume, m.Liquidity)
		marketID := m.ID
		alerts = append(alerts, domain.Alert{
			AlertType: domain.AlertKeyword,
			Severity:  domain.SeverityInfo,
			MarketID:  &marketID,
			Title:     fmt.Sprintf("Keyword: %s [%s]", strings.Join(matched, ", "), tier),
			Message: fmt.Sprintf("New market matches watchlist: %s [%s] | %s | Liquidity: %s",
				m.Title, strings.Join(matched, ", "), m.Platform, tier),
			Data: mustJSON(map[string]any{
				"keywords":       matched,
				"liquidity_tier": tier,
			}),
		})
	}

	return a.insert(ctx, rc, alerts)
}

// insert persiste las alertas de un detector en un único batch.
func (a *AlertAgent) insert(ctx context.Context, rc *RunContext, alerts []domain.Alert) (int, error) {
	if len(alerts) == 0 {
		return 0, nil
	}
	for i := range alerts {
		alerts[i].TriggeredAt = a.now()
	}
	n, err := rc.Store.InsertAlertsBatch(ctx, alerts)
	if err != nil {
		return 0, fmt.Errorf("agent.insert alerts: %w", err)
	}
	return n, nil
}

// mustJSON serializa el detalle de una alerta; un tipo no serializable es
// un bug de programación, no un caso de runtime.
func mustJSON(v map[string]any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// capErrors limita la lista de errores reportada en Data a los primeros 10.
func capErrors(errs []string) []string {
	if len(errs) > 10 {
		return errs[:10]
	}
	return errs
}
