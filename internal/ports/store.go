package ports

import (
	"context"
	"time"

	"github.com/themvf/PredictionMarkets/internal/domain"
)

// MarketFilter acota las consultas de mercados.
type MarketFilter struct {
	Platform string // vacío = todas
	Status   string // vacío = "active"
}

// AlertFilter acota las consultas de alertas.
type AlertFilter struct {
	AlertType       string // vacío = todos
	Severity        domain.Severity
	OnlyUnack       bool
	TriggeredAfter  time.Time
	Limit           int
}

// Store es el colaborador de persistencia. Todos los upserts operan sobre la
// clave natural documentada del tipo; los inserts en tablas append-only son
// idempotentes frente al replay de la misma clave natural. Las escrituras
// batch son atómicas para el lector: o se ve el batch entero o nada.
type Store interface {
	// Mercados: clave natural (platform, platform_id).
	UpsertMarket(ctx context.Context, m domain.Market) (int64, error)
	UpsertMarketsBatch(ctx context.Context, markets []domain.Market) (int, error)
	GetAllMarkets(ctx context.Context, f MarketFilter) ([]domain.Market, error)

	// Snapshots de precio: append-only.
	InsertSnapshot(ctx context.Context, s domain.Snapshot) (int64, error)
	InsertSnapshotsBatch(ctx context.Context, snapshots []domain.Snapshot) (int, error)
	GetPriceHistory(ctx context.Context, marketID int64, limit int) ([]domain.Snapshot, error)

	// Pares cross-platform: clave natural (kalshi_market_id, poly_market_id).
	UpsertPair(ctx context.Context, p domain.Pair) (int64, error)
	GetAllPairs(ctx context.Context) ([]domain.PairView, error)

	// Alertas: append-only; acknowledge es la única mutación permitida.
	InsertAlert(ctx context.Context, a domain.Alert) (int64, error)
	InsertAlertsBatch(ctx context.Context, alerts []domain.Alert) (int, error)
	GetAlerts(ctx context.Context, f AlertFilter) ([]domain.Alert, error)
	AcknowledgeAlert(ctx context.Context, alertID int64) error

	// Traders: clave natural proxy_wallet, merge "no vacío gana".
	UpsertTrader(ctx context.Context, t domain.Trader) (int64, error)
	UpsertTradersBatch(ctx context.Context, traders []domain.Trader) (int, error)
	GetTraderByWallet(ctx context.Context, wallet string) (*domain.Trader, error)

	// Whale trades: clave natural transaction_hash; duplicado = no-op.
	// El batch devuelve los hashes realmente insertados, para que el
	// caller distinga trades nuevos de replays.
	InsertWhaleTrade(ctx context.Context, t domain.WhaleTrade) (int64, error)
	InsertWhaleTradesBatch(ctx context.Context, trades []domain.WhaleTrade) ([]string, error)

	// Insights y logs de agentes: append-only.
	InsertInsight(ctx context.Context, i domain.Insight) (int64, error)
	InsertAgentLog(ctx context.Context, l domain.AgentLog) (int64, error)

	// Close cierra la conexión limpiamente.
	Close() error
}
