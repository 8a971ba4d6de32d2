package domain

import "time"

// Plataformas soportadas.
const (
	PlatformKalshi     = "kalshi"
	PlatformPolymarket = "polymarket"
)

// Estados de un mercado.
const (
	MarketStatusActive  = "active"
	MarketStatusClosed  = "closed"
	MarketStatusSettled = "settled"
)

// Market es la proyección normalizada de un mercado binario de cualquier venue.
// La clave natural es (Platform, PlatformID): cada ciclo de discovery hace upsert
// sobre ella sin duplicar filas.
type Market struct {
	ID          int64
	Platform    string // "kalshi" | "polymarket"
	PlatformID  string // ticker (Kalshi) o condition_id (Polymarket)
	Title       string
	Description string
	Category    string
	Status      string // active | closed | settled
	YesPrice    *float64
	NoPrice     *float64
	Volume      *float64
	Liquidity   *float64
	CloseTime   *time.Time
	URL         string
	RawData     string // payload original del API, JSON
	LastUpdated time.Time
}

// HoursToClose devuelve las horas hasta el cierre del mercado, o nil si no
// hay CloseTime.
func (m Market) HoursToClose(now time.Time) *float64 {
	return TimeToExpiryHours(m.CloseTime, now)
}

// Snapshot es una captura puntual de precios de un mercado.
// Append-only: una fila por ciclo de collection.
type Snapshot struct {
	ID           int64
	MarketID     int64
	YesPrice     *float64
	NoPrice      *float64
	Volume       *float64
	OpenInterest *float64
	BestBid      *float64
	BestAsk      *float64
	Spread       *float64
	CapturedAt   time.Time
}

// Pair es un match cross-platform entre un mercado Kalshi y uno Polymarket.
// Único sobre el par ordenado (KalshiMarketID, PolyMarketID); re-matchear
// actualiza confidence y gap in place en vez de insertar duplicados.
type Pair struct {
	ID              int64
	KalshiMarketID  int64
	PolyMarketID    int64
	MatchConfidence float64 // 0.0 – 1.0
	MatchReason     string
	PriceGap        *float64 // |kalshi_yes - poly_yes|
	CreatedAt       time.Time
	LastChecked     time.Time
}

// PairView es un Pair junto con el estado actual de sus dos mercados,
// tal como lo consume el motor de alertas.
type PairView struct {
	Pair
	KalshiTitle     string
	PolyTitle       string
	KalshiYes       *float64
	KalshiNo        *float64
	PolyYes         *float64
	PolyNo          *float64
	KalshiVolume    *float64
	KalshiLiquidity *float64
	PolyVolume      *float64
	PolyLiquidity   *float64
}
