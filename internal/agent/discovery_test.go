package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themvf/PredictionMarkets/internal/domain"
	"github.com/themvf/PredictionMarkets/internal/ports"
)

// fakeVenue implementa Venue con respuestas fijas.
type fakeVenue struct {
	markets []domain.Market
	err     error
	quotes  map[string]ports.Quote
}

func (f *fakeVenue) GetAllActiveMarkets(context.Context, int) ([]domain.Market, error) {
	return f.markets, f.err
}

func (f *fakeVenue) GetQuote(_ context.Context, m domain.Market) (ports.Quote, error) {
	if f.err != nil {
		return ports.Quote{}, f.err
	}
	q, ok := f.quotes[m.PlatformID]
	if !ok {
		return ports.Quote{}, errors.New("unknown market")
	}
	return q, nil
}

func discoveredMarket(platform, id, title string) domain.Market {
	return domain.Market{
		Platform:    platform,
		PlatformID:  id,
		Title:       title,
		Status:      domain.MarketStatusActive,
		LastUpdated: testNow,
	}
}

func TestDiscoveryAgent_StoresDedupedBatch(t *testing.T) {
	rc := newTestContext(t)
	rc.Kalshi = &fakeVenue{markets: []domain.Market{
		discoveredMarket(domain.PlatformKalshi, "KXA", "question a"),
		discoveredMarket(domain.PlatformKalshi, "KXA", "question a again"), // dup en la página
		discoveredMarket(domain.PlatformKalshi, "KXB", "question b"),
	}}
	rc.Polymarket = &fakeVenue{markets: []domain.Market{
		discoveredMarket(domain.PlatformPolymarket, "0x1", "question c"),
	}}

	a := NewDiscoveryAgent()
	result, err := a.Execute(context.Background(), rc)
	require.NoError(t, err)
	assert.Equal(t, 3, result.ItemsProcessed)

	stored, err := rc.Store.GetAllMarkets(context.Background(), ports.MarketFilter{})
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestDiscoveryAgent_VenueFailureDoesNotAbort(t *testing.T) {
	rc := newTestContext(t)
	rc.Kalshi = &fakeVenue{err: errors.New("kalshi down")}
	rc.Polymarket = &fakeVenue{markets: []domain.Market{
		discoveredMarket(domain.PlatformPolymarket, "0x1", "still works"),
	}}

	a := NewDiscoveryAgent()
	result, err := a.Execute(context.Background(), rc)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ItemsProcessed)
	assert.Contains(t, result.Summary, "(1 errors)")
}

func TestDiscoveryAgent_SkipsWithoutVenues(t *testing.T) {
	rc := newTestContext(t)

	a := NewDiscoveryAgent()
	result, err := a.Execute(context.Background(), rc)
	require.NoError(t, err)
	assert.Contains(t, result.Summary, "Skipped")
	assert.Equal(t, 0, result.ItemsProcessed)
}

func TestDiscoveryAgent_RediscoveryUpdatesInPlace(t *testing.T) {
	rc := newTestContext(t)
	rc.Kalshi = &fakeVenue{markets: []domain.Market{
		discoveredMarket(domain.PlatformKalshi, "KXA", "original title"),
	}}

	a := NewDiscoveryAgent()
	_, err := a.Execute(context.Background(), rc)
	require.NoError(t, err)

	rc.Kalshi = &fakeVenue{markets: []domain.Market{
		discoveredMarket(domain.PlatformKalshi, "KXA", "updated title"),
	}}
	_, err = a.Execute(context.Background(), rc)
	require.NoError(t, err)

	stored, err := rc.Store.GetAllMarkets(context.Background(), ports.MarketFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "updated title", stored[0].Title)
}
