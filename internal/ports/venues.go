package ports

import (
	"context"

	"github.com/themvf/PredictionMarkets/internal/domain"
)

// Quote es el estado de precio puntual de un mercado según su venue.
type Quote struct {
	YesPrice     *float64
	NoPrice      *float64
	Volume       *float64
	OpenInterest *float64
	BestBid      *float64
	BestAsk      *float64
}

// RawTrade es un trade del Data API de Polymarket, ya coercionado:
// los campos numéricos ausentes o corruptos llegan como nil, nunca
// como error.
type RawTrade struct {
	ProxyWallet     string
	Pseudonym       string
	ProfileImage    string
	ConditionID     string
	Title           string
	Side            string
	Size            *float64
	Price           *float64
	USDCSize        *float64
	Outcome         string
	OutcomeIndex    *int64
	TransactionHash string
	Timestamp       *int64
	EventSlug       string
}

// LeaderboardEntry es una fila del leaderboard de Polymarket.
type LeaderboardEntry struct {
	ProxyWallet   string
	UserName      string
	ProfileImage  string
	XUsername     string
	VerifiedBadge bool
	PnL           *float64
	Volume        *float64
}

// MarketSource descubre mercados activos de un venue ya normalizados.
// Cualquier error significa "sin update este ciclo", nunca es fatal.
type MarketSource interface {
	GetAllActiveMarkets(ctx context.Context, maxPages int) ([]domain.Market, error)
}

// QuoteSource obtiene el precio actual de un mercado individual.
type QuoteSource interface {
	GetQuote(ctx context.Context, m domain.Market) (Quote, error)
}

// TradeSource obtiene trades grandes del Data API.
type TradeSource interface {
	GetTrades(ctx context.Context, minUSDC float64, limit int) ([]RawTrade, error)
}

// LeaderboardSource obtiene el leaderboard por categoría y período.
type LeaderboardSource interface {
	GetLeaderboard(ctx context.Context, category, period string, limit int) ([]LeaderboardEntry, error)
}
