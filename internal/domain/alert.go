package domain

import "time"

// Tipos de alerta emitidos por los detectores.
const (
	AlertPriceMove   = "price_move"
	AlertVolumeSpike = "volume_spike"
	AlertArbitrage   = "arbitrage"
	AlertClosingSoon = "closing_soon"
	AlertKeyword     = "keyword"
	AlertWhaleTrade  = "whale_trade"
)

// Severity clasifica la urgencia de una alerta.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert es un evento clasificado generado por los detectores.
// Append-only: la única mutación permitida es el acknowledge.
type Alert struct {
	ID           int64
	AlertType    string
	Severity     Severity
	MarketID     *int64 // nil para alertas de pares o whale trades
	PairID       *int64
	Title        string
	Message      string
	Data         string // detalle en JSON
	Acknowledged bool
	TriggeredAt  time.Time
}

// Insight es un informe de inteligencia generado por el LLM.
type Insight struct {
	ID             int64
	ReportType     string // briefing | deep_dive | alert_summary
	Title          string
	Content        string // Markdown
	MarketsCovered int
	ModelUsed      string
	CreatedAt      time.Time
}
