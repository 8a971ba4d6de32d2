package polymarket

import "encoding/json"

// DTOs raw de las APIs de Polymarket. Solo se usan dentro de este paquete;
// la conversión a domain entities se hace en gamma.go y data.go.

// --- Gamma API ---

// gammaMarket es un mercado del Gamma API. Los numéricos llegan como
// strings ("0.62") y los arrays como strings JSON anidados.
type gammaMarket struct {
	ID             string          `json:"id"`
	ConditionID    string          `json:"conditionId"`
	Question       string          `json:"question"`
	Description    string          `json:"description"`
	Slug           string          `json:"slug"`
	Category       string          `json:"category"`
	SeriesSlug     string          `json:"seriesSlug"`
	GroupItemTitle string          `json:"groupItemTitle"`
	Active         bool            `json:"active"`
	Closed         bool            `json:"closed"`
	EndDate        string          `json:"endDate"`
	OutcomePrices  json.RawMessage `json:"outcomePrices"`
	Volume         json.RawMessage `json:"volume"`
	Liquidity      json.RawMessage `json:"liquidity"`
	ClobTokenIDs   json.RawMessage `json:"clobTokenIds"`
}

// --- CLOB API ---

// midpointResponse es la respuesta de GET /midpoint.
type midpointResponse struct {
	Mid string `json:"mid"`
}

// bookResponse es la respuesta de GET /book.
type bookResponse struct {
	Bids []bookLevel `json:"bids"`
	Asks []bookLevel `json:"asks"`
}

// bookLevel es un nivel de precio raw (strings para mayor precisión).
type bookLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// --- Data API ---

// dataTrade es un trade del Data API (/trades).
type dataTrade struct {
	ProxyWallet     string          `json:"proxyWallet"`
	Pseudonym       string          `json:"pseudonym"`
	ProfileImage    string          `json:"profileImage"`
	ConditionID     string          `json:"conditionId"`
	Title           string          `json:"title"`
	Side            string          `json:"side"`
	Size            json.RawMessage `json:"size"`
	Price           json.RawMessage `json:"price"`
	USDCSize        json.RawMessage `json:"usdcSize"`
	Outcome         string          `json:"outcome"`
	OutcomeIndex    json.RawMessage `json:"outcomeIndex"`
	TransactionHash string          `json:"transactionHash"`
	Timestamp       json.RawMessage `json:"timestamp"`
	EventSlug       string          `json:"eventSlug"`
}

// dataLeaderboardEntry es una fila de /v1/leaderboard.
type dataLeaderboardEntry struct {
	ProxyWallet   string          `json:"proxyWallet"`
	UserName      string          `json:"userName"`
	Name          string          `json:"name"`
	ProfileImage  string          `json:"profileImage"`
	XUsername     string          `json:"xUsername"`
	VerifiedBadge bool            `json:"verifiedBadge"`
	PnL           json.RawMessage `json:"pnl"`
	Volume        json.RawMessage `json:"vol"`
}
