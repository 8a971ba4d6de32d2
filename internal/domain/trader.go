package domain

import "time"

// Trader es un perfil de trader de Polymarket, clave natural ProxyWallet.
// El upsert hace merge conservador: los campos entrantes vacíos no pisan
// los valores existentes.
type Trader struct {
	ID             int64
	ProxyWallet    string
	UserName       string
	ProfileImage   string
	XUsername      string
	VerifiedBadge  bool
	TotalPnL       *float64
	TotalVolume    *float64
	PortfolioValue *float64
	FirstSeen      time.Time
	LastUpdated    time.Time
}

// WhaleTrade es un trade individual por encima del umbral whale.
// Clave natural TransactionHash: reenviar el mismo trade es un no-op,
// nunca un error ni un overwrite, porque los trades son inmutables.
type WhaleTrade struct {
	ID              int64
	TraderID        *int64
	ProxyWallet     string
	ConditionID     string
	MarketTitle     string
	Side            string // BUY | SELL
	Size            *float64
	Price           *float64
	USDCSize        float64
	Outcome         string
	OutcomeIndex    *int64
	TransactionHash string
	TradeTimestamp  *int64 // epoch seconds del venue
	EventSlug       string
	RecordedAt      time.Time
}
