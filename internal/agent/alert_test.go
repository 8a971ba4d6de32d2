package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themvf/PredictionMarkets/internal/domain"
	"github.com/themvf/PredictionMarkets/internal/ports"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newAlertAgentAt(now time.Time) *AlertAgent {
	a := NewAlertAgent()
	a.now = func() time.Time { return now }
	return a
}

func seedMarket(t *testing.T, rc *RunContext, title string, volume float64, closeIn *time.Duration) int64 {
	t.Helper()
	m := domain.Market{
		Platform:    domain.PlatformKalshi,
		PlatformID:  "TEST-" + title,
		Title:       title,
		Status:      domain.MarketStatusActive,
		Volume:      domain.Float(volume),
		LastUpdated: testNow,
	}
	if closeIn != nil {
		ct := testNow.Add(*closeIn)
		m.CloseTime = &ct
	}
	id, err := rc.Store.UpsertMarket(context.Background(), m)
	require.NoError(t, err)
	return id
}

func seedSnapshots(t *testing.T, rc *RunContext, marketID int64, yesPrices ...float64) {
	t.Helper()
	// El snapshot más reciente es el último precio de la lista.
	for i, p := range yesPrices {
		_, err := rc.Store.InsertSnapshot(context.Background(), domain.Snapshot{
			MarketID:   marketID,
			YesPrice:   domain.Float(p),
			CapturedAt: testNow.Add(time.Duration(i-len(yesPrices)) * time.Minute),
		})
		require.NoError(t, err)
	}
}

func alertsOfType(t *testing.T, rc *RunContext, alertType string) []domain.Alert {
	t.Helper()
	alerts, err := rc.Store.GetAlerts(context.Background(), ports.AlertFilter{AlertType: alertType, Limit: 100})
	require.NoError(t, err)
	return alerts
}

func TestAlertAgent_PriceMoveScalesWithLiquidity(t *testing.T) {
	rc := newTestContext(t)

	// Mercado deep: umbral ajustado 0.05 * 0.8 = 0.04; un movimiento de
	// 0.045 alerta. El mismo movimiento en un micro (umbral 0.125) es ruido.
	deepID := seedMarket(t, rc, "Deep liquid question", 200_000, nil)
	seedSnapshots(t, rc, deepID, 0.500, 0.545)

	microID := seedMarket(t, rc, "Micro illiquid question", 100, nil)
	seedSnapshots(t, rc, microID, 0.500, 0.545)

	a := newAlertAgentAt(testNow)
	result, err := a.Execute(context.Background(), rc)
	require.NoError(t, err)
	require.NotNil(t, result)

	alerts := alertsOfType(t, rc, domain.AlertPriceMove)
	require.Len(t, alerts, 1)
	require.NotNil(t, alerts[0].MarketID)
	assert.Equal(t, deepID, *alerts[0].MarketID)
	assert.Contains(t, alerts[0].Message, "Deep liquid question")
	assert.Contains(t, alerts[0].Title, "deep")
}

func TestAlertAgent_PriceMoveDirectionDown(t *testing.T) {
	rc := newTestContext(t)
	id := seedMarket(t, rc, "Falling question", 200_000, nil)
	seedSnapshots(t, rc, id, 0.70, 0.60)

	a := newAlertAgentAt(testNow)
	_, err := a.Execute(context.Background(), rc)
	require.NoError(t, err)

	alerts := alertsOfType(t, rc, domain.AlertPriceMove)
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0].Title, "down")
	// 2x el umbral ajustado: crítico aunque no haya expiración cercana.
	assert.Equal(t, domain.SeverityCritical, alerts[0].Severity)
}

func TestAlertAgent_VolumeSpike(t *testing.T) {
	rc := newTestContext(t)
	id := seedMarket(t, rc, "Spiking question", 50_000, nil)

	// Tres snapshots: media previa $10K, último $20K = +100%.
	base := testNow.Add(-time.Hour)
	for i, vol := range []float64{10_000, 10_000, 20_000} {
		_, err := rc.Store.InsertSnapshot(context.Background(), domain.Snapshot{
			MarketID:   id,
			YesPrice:   domain.Float(0.5),
			Volume:     domain.Float(vol),
			CapturedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	a := newAlertAgentAt(testNow)
	_, err := a.Execute(context.Background(), rc)
	require.NoError(t, err)

	alerts := alertsOfType(t, rc, domain.AlertVolumeSpike)
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0].Title, "+100%")
	assert.Equal(t, domain.SeverityWarning, alerts[0].Severity)
}

func TestAlertAgent_ArbitrageVigArtifactVsGenuineGap(t *testing.T) {
	rc := newTestContext(t)

	// Par 1: raw gap $0.07 pero casi todo es diferencial de vig
	// (fair gap ~$0.015): se reporta como info, no como arbitraje real.
	k1 := upsertPriced(t, rc, domain.PlatformKalshi, "K vig", 0.60, 0.50, 200_000)
	p1 := upsertPriced(t, rc, domain.PlatformPolymarket, "P vig", 0.53, 0.47, 200_000)
	_, err := rc.Store.UpsertPair(context.Background(), domain.Pair{
		KalshiMarketID: k1, PolyMarketID: p1, MatchConfidence: 0.9,
		CreatedAt: testNow, LastChecked: testNow,
	})
	require.NoError(t, err)

	// Par 2: gap de $0.15 sin vig y con liquidez: gap genuino, crítico.
	k2 := upsertPriced(t, rc, domain.PlatformKalshi, "K real", 0.30, 0.70, 200_000)
	p2 := upsertPriced(t, rc, domain.PlatformPolymarket, "P real", 0.45, 0.55, 200_000)
	_, err = rc.Store.UpsertPair(context.Background(), domain.Pair{
		KalshiMarketID: k2, PolyMarketID: p2, MatchConfidence: 0.9,
		CreatedAt: testNow, LastChecked: testNow,
	})
	require.NoError(t, err)

	a := newAlertAgentAt(testNow)
	_, err = a.Execute(context.Background(), rc)
	require.NoError(t, err)

	alerts := alertsOfType(t, rc, domain.AlertArbitrage)
	require.Len(t, alerts, 2)

	byTitle := make(map[string]domain.Alert)
	for _, al := range alerts {
		if al.Severity == domain.SeverityInfo {
			byTitle["artifact"] = al
		} else {
			byTitle["genuine"] = al
		}
	}
	require.Contains(t, byTitle, "artifact")
	require.Contains(t, byTitle, "genuine")
	assert.Contains(t, byTitle["artifact"].Title, "vig artifact")
	assert.Equal(t, domain.SeverityCritical, byTitle["genuine"].Severity)
	assert.Contains(t, byTitle["genuine"].Title, "genuine gap")
}

func TestAlertAgent_ClosingSoonSkipsMicroMarkets(t *testing.T) {
	rc := newTestContext(t)

	twoHours := 2 * time.Hour
	deepID := seedMarket(t, rc, "Deep closing question", 200_000, &twoHours)
	seedMarket(t, rc, "Micro closing question", 100, &twoHours)

	a := newAlertAgentAt(testNow)
	_, err := a.Execute(context.Background(), rc)
	require.NoError(t, err)

	alerts := alertsOfType(t, rc, domain.AlertClosingSoon)
	require.Len(t, alerts, 1)
	require.NotNil(t, alerts[0].MarketID)
	assert.Equal(t, deepID, *alerts[0].MarketID)
	// Imminent (<4h) y liquid: crítico.
	assert.Equal(t, domain.SeverityCritical, alerts[0].Severity)
	assert.Contains(t, alerts[0].Title, "imminent")
}

func TestAlertAgent_KeywordAlertsOncePerMarket(t *testing.T) {
	rc := newTestContext(t)
	seedMarket(t, rc, "Will the Fed cut the rate in March?", 50_000, nil)
	seedMarket(t, rc, "Completely unrelated question", 50_000, nil)

	a := newAlertAgentAt(testNow)
	_, err := a.Execute(context.Background(), rc)
	require.NoError(t, err)

	first := alertsOfType(t, rc, domain.AlertKeyword)
	require.Len(t, first, 1)
	assert.Contains(t, first[0].Title, "fed")
	assert.Contains(t, first[0].Title, "rate")

	// Segunda pasada: el mercado ya avisado no re-alerta.
	_, err = a.Execute(context.Background(), rc)
	require.NoError(t, err)
	second := alertsOfType(t, rc, domain.AlertKeyword)
	assert.Len(t, second, 1)
}

func TestAlertAgent_QuietStateProducesNoAlerts(t *testing.T) {
	rc := newTestContext(t)
	seedMarket(t, rc, "Stable quiet question", 50_000, nil)

	a := newAlertAgentAt(testNow)
	result, err := a.Execute(context.Background(), rc)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ItemsProcessed)
	assert.Contains(t, result.Summary, "Generated 0 alerts")
}

func upsertPriced(t *testing.T, rc *RunContext, platform, title string, yes, no, volume float64) int64 {
	t.Helper()
	id, err := rc.Store.UpsertMarket(context.Background(), domain.Market{
		Platform:    platform,
		PlatformID:  "PRICED-" + title,
		Title:       title,
		Status:      domain.MarketStatusActive,
		YesPrice:    domain.Float(yes),
		NoPrice:     domain.Float(no),
		Volume:      domain.Float(volume),
		LastUpdated: testNow,
	})
	require.NoError(t, err)
	return id
}
