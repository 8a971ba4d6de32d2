package kalshi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themvf/PredictionMarkets/internal/domain"
)

func TestCentsToDollars(t *testing.T) {
	cases := []struct {
		name string
		in   *float64
		want *float64
	}{
		{"nil", nil, nil},
		{"cents", domain.Float(62), domain.Float(0.62)},
		{"already dollars", domain.Float(0.62), domain.Float(0.62)},
		{"boundary one", domain.Float(1), domain.Float(1)},
		{"ninety nine cents", domain.Float(99), domain.Float(0.99)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := centsToDollars(tc.in)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tc.want, *got, 1e-9)
		})
	}
}

func TestNormalizeMarket_FullPayload(t *testing.T) {
	m, ok := normalizeMarket(kalshiMarket{
		Ticker:       "KXFED-26MAR-T4.25",
		EventTicker:  "KXFED",
		Title:        "Fed funds rate after March meeting",
		Subtitle:     "4.25% or below",
		Status:       "active",
		YesAsk:       domain.Float(62),
		NoAsk:        domain.Float(40),
		Volume:       domain.Float(150000),
		OpenInterest: domain.Float(80000),
		CloseTime:    "2026-03-18T18:00:00Z",
		Category:     "Economics",
	})
	require.True(t, ok)

	assert.Equal(t, domain.PlatformKalshi, m.Platform)
	assert.Equal(t, "KXFED-26MAR-T4.25", m.PlatformID)
	assert.Equal(t, "Fed funds rate after March meeting 4.25% or below", m.Title)
	assert.Equal(t, domain.CategoryFinance, m.Category)
	assert.Equal(t, domain.MarketStatusActive, m.Status)
	require.NotNil(t, m.YesPrice)
	assert.InDelta(t, 0.62, *m.YesPrice, 1e-9)
	require.NotNil(t, m.NoPrice)
	assert.InDelta(t, 0.40, *m.NoPrice, 1e-9)
	require.NotNil(t, m.CloseTime)
	assert.Equal(t, "https://kalshi.com/markets/kxfed-26mar-t4.25", m.URL)
}

func TestNormalizeMarket_StatusMapping(t *testing.T) {
	cases := map[string]string{
		"active":     domain.MarketStatusActive,
		"open":       domain.MarketStatusActive,
		"closed":     domain.MarketStatusClosed,
		"determined": domain.MarketStatusClosed,
		"finalized":  domain.MarketStatusSettled,
		"settled":    domain.MarketStatusSettled,
	}
	for raw, want := range cases {
		m, ok := normalizeMarket(kalshiMarket{Ticker: "T", Title: "q", Status: raw})
		require.True(t, ok)
		assert.Equal(t, want, m.Status, "status %q", raw)
	}
}

func TestNormalizeMarket_FallsBackToLastPrice(t *testing.T) {
	m, ok := normalizeMarket(kalshiMarket{
		Ticker:    "T2",
		Title:     "quote without ask",
		LastPrice: domain.Float(55),
	})
	require.True(t, ok)
	require.NotNil(t, m.YesPrice)
	assert.InDelta(t, 0.55, *m.YesPrice, 1e-9)
	assert.Nil(t, m.NoPrice)
}

func TestNormalizeMarket_RejectsWithoutIdentity(t *testing.T) {
	_, ok := normalizeMarket(kalshiMarket{Title: "no ticker"})
	assert.False(t, ok)
	_, ok = normalizeMarket(kalshiMarket{Ticker: "T3"})
	assert.False(t, ok)
}

func TestGetAllActiveMarkets_CursorPagination(t *testing.T) {
	pages := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		if r.URL.Query().Get("cursor") == "" {
			w.Write([]byte(`{"markets": [{"ticker": "A-1", "title": "first", "status": "active"}], "cursor": "next"}`))
			return
		}
		w.Write([]byte(`{"markets": [{"ticker": "B-2", "title": "second", "status": "active"}], "cursor": ""}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	markets, err := c.GetAllActiveMarkets(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	require.Len(t, markets, 2)
	assert.Equal(t, "A-1", markets[0].PlatformID)
	assert.Equal(t, "B-2", markets[1].PlatformID)
}

func TestGetQuote_UsesOrderbookBestLevels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/markets/KXTEST":
			w.Write([]byte(`{"market": {"ticker": "KXTEST", "title": "q", "status": "active",
				"yes_ask": 62, "no_ask": 40, "volume": 1000}}`))
		case "/markets/KXTEST/orderbook":
			w.Write([]byte(`{"orderbook": {"yes": [[60, 100]], "no": [[37, 50]]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	q, err := c.GetQuote(context.Background(), domain.Market{PlatformID: "KXTEST"})
	require.NoError(t, err)

	require.NotNil(t, q.YesPrice)
	assert.InDelta(t, 0.62, *q.YesPrice, 1e-9)
	require.NotNil(t, q.BestBid)
	assert.InDelta(t, 0.60, *q.BestBid, 1e-9)
	// El mejor bid de NO (0.37) implica un ask de YES de 0.63.
	require.NotNil(t, q.BestAsk)
	assert.InDelta(t, 0.63, *q.BestAsk, 1e-9)
}
