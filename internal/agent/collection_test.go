package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themvf/PredictionMarkets/internal/domain"
	"github.com/themvf/PredictionMarkets/internal/ports"
)

func TestCollectionAgent_SnapshotsEveryQuotedMarket(t *testing.T) {
	rc := newTestContext(t)
	kalshiID := seedMarket(t, rc, "kalshi question", 1000, nil)
	polyMarket := discoveredMarket(domain.PlatformPolymarket, "0x1", "poly question")
	polyID, err := rc.Store.UpsertMarket(context.Background(), polyMarket)
	require.NoError(t, err)

	rc.Kalshi = &fakeVenue{quotes: map[string]ports.Quote{
		"TEST-kalshi question": {
			YesPrice: domain.Float(0.62),
			NoPrice:  domain.Float(0.40),
			Volume:   domain.Float(5000),
			BestBid:  domain.Float(0.60),
			BestAsk:  domain.Float(0.63),
		},
	}}
	rc.Polymarket = &fakeVenue{quotes: map[string]ports.Quote{
		"0x1": {YesPrice: domain.Float(0.55)},
	}}

	a := NewCollectionAgent()
	result, err := a.Execute(context.Background(), rc)
	require.NoError(t, err)
	assert.Equal(t, 2, result.ItemsProcessed)

	// El snapshot del mercado Kalshi trae bid/ask y spread derivado.
	history, err := rc.Store.GetPriceHistory(context.Background(), kalshiID, 5)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.NotNil(t, history[0].YesPrice)
	assert.InDelta(t, 0.62, *history[0].YesPrice, 1e-9)
	require.NotNil(t, history[0].Spread)
	assert.InDelta(t, 0.03, *history[0].Spread, 1e-9)
	assert.False(t, history[0].CapturedAt.IsZero())

	// El estado del mercado se refresca con el quote.
	markets, err := rc.Store.GetAllMarkets(context.Background(), ports.MarketFilter{Platform: domain.PlatformPolymarket})
	require.NoError(t, err)
	require.Len(t, markets, 1)
	assert.Equal(t, polyID, markets[0].ID)
	require.NotNil(t, markets[0].YesPrice)
	assert.InDelta(t, 0.55, *markets[0].YesPrice, 1e-9)
}

func TestCollectionAgent_MissingVenueIsSkipNotError(t *testing.T) {
	rc := newTestContext(t)
	seedMarket(t, rc, "orphan kalshi question", 1000, nil)
	// Solo Polymarket configurado: el mercado Kalshi se salta en silencio.
	rc.Polymarket = &fakeVenue{}

	a := NewCollectionAgent()
	result, err := a.Execute(context.Background(), rc)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ItemsProcessed)
	assert.Contains(t, result.Summary, "Collected 0 price snapshots.")
}

func TestCollectionAgent_QuoteFailureCountsAsError(t *testing.T) {
	rc := newTestContext(t)
	seedMarket(t, rc, "failing question", 1000, nil)
	rc.Kalshi = &fakeVenue{quotes: map[string]ports.Quote{}} // GetQuote falla

	a := NewCollectionAgent()
	result, err := a.Execute(context.Background(), rc)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ItemsProcessed)
	assert.Contains(t, result.Summary, "(1 errors)")
}

func TestCollectionAgent_PartialQuoteKeepsStoredValues(t *testing.T) {
	rc := newTestContext(t)
	id, err := rc.Store.UpsertMarket(context.Background(), domain.Market{
		Platform:    domain.PlatformKalshi,
		PlatformID:  "KXPART",
		Title:       "partial quote question",
		Status:      domain.MarketStatusActive,
		YesPrice:    domain.Float(0.50),
		NoPrice:     domain.Float(0.52),
		Volume:      domain.Float(9000),
		LastUpdated: testNow,
	})
	require.NoError(t, err)

	// El quote solo trae el yes price: no price y volumen quedan como estaban.
	rc.Kalshi = &fakeVenue{quotes: map[string]ports.Quote{
		"KXPART": {YesPrice: domain.Float(0.58)},
	}}

	a := NewCollectionAgent()
	_, err = a.Execute(context.Background(), rc)
	require.NoError(t, err)

	markets, err := rc.Store.GetAllMarkets(context.Background(), ports.MarketFilter{})
	require.NoError(t, err)
	require.Len(t, markets, 1)
	assert.Equal(t, id, markets[0].ID)
	assert.InDelta(t, 0.58, *markets[0].YesPrice, 1e-9)
	assert.InDelta(t, 0.52, *markets[0].NoPrice, 1e-9)
	assert.InDelta(t, 9000, *markets[0].Volume, 1e-9)
}
