package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themvf/PredictionMarkets/internal/domain"
	"github.com/themvf/PredictionMarkets/internal/ports"
)

// fakeTrades devuelve siempre el mismo batch de trades.
type fakeTrades struct {
	trades []ports.RawTrade
	err    error
}

func (f *fakeTrades) GetTrades(context.Context, float64, int) ([]ports.RawTrade, error) {
	return f.trades, f.err
}

func rawTrade(wallet, tx string, usdc float64) ports.RawTrade {
	return ports.RawTrade{
		ProxyWallet:     wallet,
		Pseudonym:       "whale-" + wallet,
		ConditionID:     "0xcond",
		Title:           "Some market",
		Side:            "BUY",
		Size:            domain.Float(usdc / 0.5),
		Price:           domain.Float(0.5),
		USDCSize:        domain.Float(usdc),
		Outcome:         "Yes",
		TransactionHash: tx,
	}
}

func TestWhaleAgent_StoresDedupesAndAlerts(t *testing.T) {
	rc := newTestContext(t)
	rc.Trades = &fakeTrades{trades: []ports.RawTrade{
		rawTrade("0xaaa", "0xtx1", 60_000), // 12x el umbral: crítico
		rawTrade("0xbbb", "0xtx2", 12_000), // 2.4x: info
		rawTrade("0xbbb", "0xtx2", 12_000), // mismo tx en la página: ignorado
		rawTrade("0xccc", "0xtx3", 6_000),  // 1.2x: se guarda sin alertar
		{TransactionHash: "0xtx4"},         // sin wallet: descartado
	}}

	a := NewWhaleAgent()
	a.now = func() time.Time { return testNow }

	result, err := a.Execute(context.Background(), rc)
	require.NoError(t, err)
	assert.Equal(t, 3, result.ItemsProcessed)

	alerts := alertsOfType(t, rc, domain.AlertWhaleTrade)
	require.Len(t, alerts, 2)
	severities := map[domain.Severity]int{}
	for _, al := range alerts {
		severities[al.Severity]++
	}
	assert.Equal(t, 1, severities[domain.SeverityCritical])
	assert.Equal(t, 1, severities[domain.SeverityInfo])

	// El perfil del trader se asegura antes de los trades.
	trader, err := rc.Store.GetTraderByWallet(context.Background(), "0xaaa")
	require.NoError(t, err)
	require.NotNil(t, trader)
	assert.Equal(t, "whale-0xaaa", trader.UserName)
}

func TestWhaleAgent_ReplayIsNoop(t *testing.T) {
	rc := newTestContext(t)
	rc.Trades = &fakeTrades{trades: []ports.RawTrade{
		rawTrade("0xaaa", "0xtx1", 60_000),
	}}

	a := NewWhaleAgent()
	a.now = func() time.Time { return testNow }

	first, err := a.Execute(context.Background(), rc)
	require.NoError(t, err)
	assert.Equal(t, 1, first.ItemsProcessed)

	// Reenviar el mismo batch no duplica ni trades ni alertas.
	second, err := a.Execute(context.Background(), rc)
	require.NoError(t, err)
	assert.Equal(t, 0, second.ItemsProcessed)
	assert.Equal(t, 0, second.Data["alerts_created"])

	alerts := alertsOfType(t, rc, domain.AlertWhaleTrade)
	assert.Len(t, alerts, 1)
}

func TestWhaleAgent_SkipsWithoutClient(t *testing.T) {
	rc := newTestContext(t)
	rc.Trades = nil

	a := NewWhaleAgent()
	result, err := a.Execute(context.Background(), rc)
	require.NoError(t, err)
	assert.Contains(t, result.Summary, "Skipped")
}

func TestWhaleAgent_FetchErrorIsFatalForRun(t *testing.T) {
	rc := newTestContext(t)
	rc.Trades = &fakeTrades{err: errors.New("data api 500")}

	a := NewWhaleAgent()
	_, err := a.Execute(context.Background(), rc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data api 500")
}

func TestUsdcValue_FallbackChain(t *testing.T) {
	assert.Equal(t, 42.0, usdcValue(ports.RawTrade{USDCSize: domain.Float(42)}))
	assert.Equal(t, 50.0, usdcValue(ports.RawTrade{Size: domain.Float(100), Price: domain.Float(0.5)}))
	assert.Equal(t, 100.0, usdcValue(ports.RawTrade{Size: domain.Float(100)}))
	assert.Equal(t, 0.0, usdcValue(ports.RawTrade{}))
}
