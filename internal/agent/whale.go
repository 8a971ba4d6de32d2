package agent

// whale.go — agente de monitoreo de whale trades.
//
// Baja los trades grandes del Data API, asegura el perfil del trader,
// deduplica por transaction hash dentro del batch y persiste todo en
// escrituras batch. En la misma pasada genera alertas whale_trade para
// los trades que superan múltiplos del umbral.

import (
	"context"
	"fmt"
	"time"

	"github.com/themvf/PredictionMarkets/internal/domain"
	"github.com/themvf/PredictionMarkets/internal/ports"
)

const whaleFetchLimit = 500

// WhaleAgent monitorea trades por encima del umbral configurado.
type WhaleAgent struct {
	now func() time.Time
}

// NewWhaleAgent crea el agente whale.
func NewWhaleAgent() *WhaleAgent {
	return &WhaleAgent{now: func() time.Time { return time.Now().UTC() }}
}

// Name devuelve el identificador del agente.
func (a *WhaleAgent) Name() string { return "whale" }

// Execute almacena los whale trades nuevos y alerta sobre los enormes.
// Severidad escalada por múltiplo del umbral: >=10x critical, >=3x
// warning, resto info; por debajo de 2x no se alerta.
func (a *WhaleAgent) Execute(ctx context.Context, rc *RunContext) (*Result, error) {
	if rc.Trades == nil {
		return &Result{Summary: "Skipped -- no Polymarket client configured."}, nil
	}

	threshold := rc.Rules.WhaleThresholdUSD
	raw, err := rc.Trades.GetTrades(ctx, threshold, whaleFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("agent.Whale: fetch trades: %w", err)
	}

	var trades []domain.WhaleTrade
	var traders []domain.Trader
	alertByTx := make(map[string]domain.Alert)
	seenTx := make(map[string]bool)
	seenWallet := make(map[string]bool)
	var errs []string

	for _, t := range raw {
		if t.ProxyWallet == "" || t.TransactionHash == "" {
			continue
		}
		if seenTx[t.TransactionHash] {
			continue // mismo tx repetido en la página: primera ocurrencia gana
		}
		seenTx[t.TransactionHash] = true

		if !seenWallet[t.ProxyWallet] {
			seenWallet[t.ProxyWallet] = true
			traders = append(traders, domain.Trader{
				ProxyWallet:  t.ProxyWallet,
				UserName:     t.Pseudonym,
				ProfileImage: t.ProfileImage,
			})
		}

		usdc := usdcValue(t)
		trades = append(trades, domain.WhaleTrade{
			ProxyWallet:     t.ProxyWallet,
			ConditionID:     t.ConditionID,
			MarketTitle:     t.Title,
			Side:            t.Side,
			Size:            t.Size,
			Price:           t.Price,
			USDCSize:        usdc,
			Outcome:         t.Outcome,
			OutcomeIndex:    t.OutcomeIndex,
			TransactionHash: t.TransactionHash,
			TradeTimestamp:  t.Timestamp,
			EventSlug:       t.EventSlug,
			RecordedAt:      a.now(),
		})

		if usdc >= threshold*2 {
			alertByTx[t.TransactionHash] = a.buildAlert(t, usdc, threshold)
		}
	}

	// Primero los perfiles (merge no-vacío gana), después los trades
	// (INSERT OR IGNORE por tx hash), después las alertas.
	if len(traders) > 0 {
		if _, err := rc.Store.UpsertTradersBatch(ctx, traders); err != nil {
			errs = append(errs, fmt.Sprintf("Trader upsert: %v", err))
		}
	}

	var insertedTx []string
	if len(trades) > 0 {
		insertedTx, err = rc.Store.InsertWhaleTradesBatch(ctx, trades)
		if err != nil {
			return nil, fmt.Errorf("agent.Whale: insert trades: %w", err)
		}
	}
	stored := len(insertedTx)

	// Solo los trades realmente nuevos alertan: un replay del mismo tx
	// hash es un no-op también a nivel de alertas.
	var alerts []domain.Alert
	for _, tx := range insertedTx {
		if alert, ok := alertByTx[tx]; ok {
			alert.TriggeredAt = a.now()
			alerts = append(alerts, alert)
		}
	}

	alertsCreated := 0
	if len(alerts) > 0 {
		n, err := rc.Store.InsertAlertsBatch(ctx, alerts)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Alert insert: %v", err))
		} else {
			alertsCreated = n
		}
	}

	errSummary := ""
	if len(errs) > 0 {
		errSummary = fmt.Sprintf(" (%d errors)", len(errs))
	}
	return &Result{
		ItemsProcessed: stored,
		Summary: fmt.Sprintf("Stored %d whale trades, generated %d alerts%s.",
			stored, alertsCreated, errSummary),
		Data: map[string]any{
			"trades_stored":  stored,
			"alerts_created": alertsCreated,
			"errors":         capErrors(errs),
		},
	}, nil
}

// buildAlert arma la alerta whale_trade con severidad por múltiplo.
func (a *WhaleAgent) buildAlert(t ports.RawTrade, usdc, threshold float64) domain.Alert {
	severity := domain.SeverityInfo
	switch {
	case usdc >= threshold*10:
		severity = domain.SeverityCritical
	case usdc >= threshold*3:
		severity = domain.SeverityWarning
	}

	display := t.Pseudonym
	if display == "" {
		display = shortWallet(t.ProxyWallet)
	}
	side := t.Side
	if side == "" {
		side = "TRADE"
	}
	price := 0.0
	if t.Price != nil {
		price = *t.Price
	}

	return domain.Alert{
		AlertType: domain.AlertWhaleTrade,
		Severity:  severity,
		Title:     fmt.Sprintf("Whale %s $%.0f", side, usdc),
		Message: fmt.Sprintf("%s %s $%.0f on %s (%s) @ $%.2f",
			display, side, usdc, t.Title, t.Outcome, price),
		Data: mustJSON(map[string]any{
			"wallet":    t.ProxyWallet,
			"usdc_size": usdc,
			"market":    t.Title,
			"side":      t.Side,
			"price":     t.Price,
			"outcome":   t.Outcome,
		}),
	}
}

// usdcValue prefiere el tamaño USD que reporta el API; si falta, cae a
// tokens × precio, y en último término al tamaño en tokens.
func usdcValue(t ports.RawTrade) float64 {
	if t.USDCSize != nil {
		return *t.USDCSize
	}
	if t.Size != nil && t.Price != nil {
		return *t.Size * *t.Price
	}
	if t.Size != nil {
		return *t.Size
	}
	return 0
}

func shortWallet(wallet string) string {
	if len(wallet) <= 10 {
		return wallet
	}
	return wallet[:10] + "..."
}
