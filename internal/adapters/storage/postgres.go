package storage

// postgres.go — backend Postgres para despliegues con más de un proceso.
// Mismo contrato que SQLiteStore; cambia el dialecto ($n, TIMESTAMPTZ,
// BOOLEAN nativo) y que pgx escanea tiempos como time.Time directamente.

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/themvf/PredictionMarkets/internal/domain"
	"github.com/themvf/PredictionMarkets/internal/ports"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS markets (
    id           BIGSERIAL PRIMARY KEY,
    platform     TEXT NOT NULL,
    platform_id  TEXT NOT NULL,
    title        TEXT NOT NULL DEFAULT '',
    description  TEXT NOT NULL DEFAULT '',
    category     TEXT NOT NULL DEFAULT '',
    status       TEXT NOT NULL DEFAULT 'active',
    yes_price    DOUBLE PRECISION,
    no_price     DOUBLE PRECISION,
    volume       DOUBLE PRECISION,
    liquidity    DOUBLE PRECISION,
    close_time   TIMESTAMPTZ,
    url          TEXT NOT NULL DEFAULT '',
    raw_data     TEXT NOT NULL DEFAULT '',
    last_updated TIMESTAMPTZ NOT NULL,
    UNIQUE(platform, platform_id)
);

CREATE TABLE IF NOT EXISTS snapshots (
    id            BIGSERIAL PRIMARY KEY,
    market_id     BIGINT NOT NULL REFERENCES markets(id),
    yes_price     DOUBLE PRECISION,
    no_price      DOUBLE PRECISION,
    volume        DOUBLE PRECISION,
    open_interest DOUBLE PRECISION,
    best_bid      DOUBLE PRECISION,
    best_ask      DOUBLE PRECISION,
    spread        DOUBLE PRECISION,
    captured_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS pairs (
    id               BIGSERIAL PRIMARY KEY,
    kalshi_market_id BIGINT NOT NULL REFERENCES markets(id),
    poly_market_id   BIGINT NOT NULL REFERENCES markets(id),
    match_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
    match_reason     TEXT NOT NULL DEFAULT '',
    price_gap        DOUBLE PRECISION,
    created_at       TIMESTAMPTZ NOT NULL,
    last_checked     TIMESTAMPTZ NOT NULL,
    UNIQUE(kalshi_market_id, poly_market_id)
);

CREATE TABLE IF NOT EXISTS alerts (
    id           BIGSERIAL PRIMARY KEY,
    alert_type   TEXT NOT NULL,
    severity     TEXT NOT NULL,
    market_id    BIGINT,
    pair_id      BIGINT,
    title        TEXT NOT NULL DEFAULT '',
    message      TEXT NOT NULL DEFAULT '',
    data         TEXT NOT NULL DEFAULT '',
    acknowledged BOOLEAN NOT NULL DEFAULT FALSE,
    triggered_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS traders (
    id              BIGSERIAL PRIMARY KEY,
    proxy_wallet    TEXT NOT NULL UNIQUE,
    user_name       TEXT NOT NULL DEFAULT '',
    profile_image   TEXT NOT NULL DEFAULT '',
    x_username      TEXT NOT NULL DEFAULT '',
    verified_badge  BOOLEAN NOT NULL DEFAULT FALSE,
    total_pnl       DOUBLE PRECISION,
    total_volume    DOUBLE PRECISION,
    portfolio_value DOUBLE PRECISION,
    first_seen      TIMESTAMPTZ NOT NULL,
    last_updated    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS whale_trades (
    id               BIGSERIAL PRIMARY KEY,
    trader_id        BIGINT REFERENCES traders(id),
    proxy_wallet     TEXT NOT NULL,
    condition_id     TEXT NOT NULL DEFAULT '',
    market_title     TEXT NOT NULL DEFAULT '',
    side             TEXT NOT NULL DEFAULT '',
    size             DOUBLE PRECISION,
    price            DOUBLE PRECISION,
    usdc_size        DOUBLE PRECISION NOT NULL DEFAULT 0,
    outcome          TEXT NOT NULL DEFAULT '',
    outcome_index    BIGINT,
    transaction_hash TEXT NOT NULL UNIQUE,
    trade_timestamp  BIGINT,
    event_slug       TEXT NOT NULL DEFAULT '',
    recorded_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS insights (
    id              BIGSERIAL PRIMARY KEY,
    report_type     TEXT NOT NULL,
    title           TEXT NOT NULL DEFAULT '',
    content         TEXT NOT NULL DEFAULT '',
    markets_covered INTEGER NOT NULL DEFAULT 0,
    model_used      TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS agent_logs (
    id               BIGSERIAL PRIMARY KEY,
    run_id           TEXT NOT NULL DEFAULT '',
    agent_name       TEXT NOT NULL,
    status           TEXT NOT NULL,
    started_at       TIMESTAMPTZ NOT NULL,
    completed_at     TIMESTAMPTZ NOT NULL,
    duration_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
    items_processed  INTEGER NOT NULL DEFAULT 0,
    summary          TEXT NOT NULL DEFAULT '',
    error            TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_markets_platform ON markets(platform, status);
CREATE INDEX IF NOT EXISTS idx_snapshots_market ON snapshots(market_id, captured_at DESC);
CREATE INDEX IF NOT EXISTS idx_alerts_triggered ON alerts(triggered_at DESC);
CREATE INDEX IF NOT EXISTS idx_alerts_type      ON alerts(alert_type, acknowledged);
CREATE INDEX IF NOT EXISTS idx_whale_wallet     ON whale_trades(proxy_wallet);
CREATE INDEX IF NOT EXISTS idx_logs_agent       ON agent_logs(agent_name, started_at DESC);
`

// PostgresStore implementa ports.Store sobre un pool pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ ports.Store = (*PostgresStore)(nil)

// NewPostgresStore conecta al DSN dado, verifica la conexión y aplica el schema.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage.NewPostgresStore: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage.NewPostgresStore: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage.NewPostgresStore: apply schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close cierra el pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const pgUpsertMarketSQL = `
	INSERT INTO markets
		(platform, platform_id, title, description, category, status,
		 yes_price, no_price, volume, liquidity, close_time, url, raw_data, last_updated)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (platform, platform_id) DO UPDATE SET
		title        = excluded.title,
		description  = excluded.description,
		category     = excluded.category,
		status       = excluded.status,
		yes_price    = excluded.yes_price,
		no_price     = excluded.no_price,
		volume       = excluded.volume,
		liquidity    = excluded.liquidity,
		close_time   = excluded.close_time,
		url          = excluded.url,
		raw_data     = excluded.raw_data,
		last_updated = excluded.last_updated
	RETURNING id
`

func (s *PostgresStore) UpsertMarket(ctx context.Context, m domain.Market) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, pgUpsertMarketSQL, marketArgs(m)...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("storage.UpsertMarket: %s/%s: %w", m.Platform, m.PlatformID, err)
	}
	return id, nil
}

func (s *PostgresStore) UpsertMarketsBatch(ctx context.Context, markets []domain.Market) (int, error) {
	if len(markets) == 0 {
		return 0, nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("storage.UpsertMarketsBatch: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, m := range markets {
		var id int64
		if err := tx.QueryRow(ctx, pgUpsertMarketSQL, marketArgs(m)...).Scan(&id); err != nil {
			return 0, fmt.Errorf("storage.UpsertMarketsBatch: upsert %s/%s: %w", m.Platform, m.PlatformID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("storage.UpsertMarketsBatch: commit: %w", err)
	}
	return len(markets), nil
}

func (s *PostgresStore) GetAllMarkets(ctx context.Context, f ports.MarketFilter) ([]domain.Market, error) {
	status := orDefault(f.Status, domain.MarketStatusActive)
	query := `
		SELECT id, platform, platform_id, title, description, category, status,
		       yes_price, no_price, volume, liquidity, close_time, url, raw_data, last_updated
		FROM markets
		WHERE status = $1`
	args := []any{status}
	if f.Platform != "" {
		query += ` AND platform = $2`
		args = append(args, f.Platform)
	}
	query += ` ORDER BY id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage.GetAllMarkets: query: %w", err)
	}
	defer rows.Close()

	var markets []domain.Market
	for rows.Next() {
		var m domain.Market
		if err := rows.Scan(
			&m.ID, &m.Platform, &m.PlatformID, &m.Title, &m.Description,
			&m.Category, &m.Status, &m.YesPrice, &m.NoPrice, &m.Volume,
			&m.Liquidity, &m.CloseTime, &m.URL, &m.RawData, &m.LastUpdated,
		); err != nil {
			return nil, fmt.Errorf("storage.GetAllMarkets: scan row: %w", err)
		}
		markets = append(markets, m)
	}
	return markets, rows.Err()
}

const pgInsertSnapshotSQL = `
	INSERT INTO snapshots
		(market_id, yes_price, no_price, volume, open_interest, best_bid, best_ask, spread, captured_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id
`

func (s *PostgresStore) InsertSnapshot(ctx context.Context, snap domain.Snapshot) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, pgInsertSnapshotSQL, snapshotArgs(snap)...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("storage.InsertSnapshot: market %d: %w", snap.MarketID, err)
	}
	return id, nil
}

func (s *PostgresStore) InsertSnapshotsBatch(ctx context.Context, snapshots []domain.Snapshot) (int, error) {
	if len(snapshots) == 0 {
		return 0, nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("storage.InsertSnapshotsBatch: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, snap := range snapshots {
		var id int64
		if err := tx.QueryRow(ctx, pgInsertSnapshotSQL, snapshotArgs(snap)...).Scan(&id); err != nil {
			return 0, fmt.Errorf("storage.InsertSnapshotsBatch: market %d: %w", snap.MarketID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("storage.InsertSnapshotsBatch: commit: %w", err)
	}
	return len(snapshots), nil
}

func (s *PostgresStore) GetPriceHistory(ctx context.Context, marketID int64, limit int) ([]domain.Snapshot, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, market_id, yes_price, no_price, volume, open_interest,
		       best_bid, best_ask, spread, captured_at
		FROM snapshots
		WHERE market_id = $1
		ORDER BY captured_at DESC
		LIMIT $2
	`, marketID, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.GetPriceHistory: query market %d: %w", marketID, err)
	}
	defer rows.Close()

	var snaps []domain.Snapshot
	for rows.Next() {
		var snap domain.Snapshot
		if err := rows.Scan(
			&snap.ID, &snap.MarketID, &snap.YesPrice, &snap.NoPrice,
			&snap.Volume, &snap.OpenInterest, &snap.BestBid, &snap.BestAsk,
			&snap.Spread, &snap.CapturedAt,
		); err != nil {
			return nil, fmt.Errorf("storage.GetPriceHistory: scan row: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

func (s *PostgresStore) UpsertPair(ctx context.Context, p domain.Pair) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO pairs
			(kalshi_market_id, poly_market_id, match_confidence, match_reason,
			 price_gap, created_at, last_checked)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (kalshi_market_id, poly_market_id) DO UPDATE SET
			match_confidence = excluded.match_confidence,
			match_reason     = excluded.match_reason,
			price_gap        = excluded.price_gap,
			last_checked     = excluded.last_checked
		RETURNING id
	`,
		p.KalshiMarketID, p.PolyMarketID, p.MatchConfidence, p.MatchReason,
		p.PriceGap, p.CreatedAt.UTC(), p.LastChecked.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("storage.UpsertPair: %d/%d: %w", p.KalshiMarketID, p.PolyMarketID, err)
	}
	return id, nil
}

func (s *PostgresStore) GetAllPairs(ctx context.Context) ([]domain.PairView, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.kalshi_market_id, p.poly_market_id,
		       p.match_confidence, p.match_reason, p.price_gap,
		       p.created_at, p.last_checked,
		       k.title, m.title,
		       k.yes_price, k.no_price, m.yes_price, m.no_price,
		       k.volume, k.liquidity, m.volume, m.liquidity
		FROM pairs p
		JOIN markets k ON k.id = p.kalshi_market_id
		JOIN markets m ON m.id = p.poly_market_id
		ORDER BY p.id
	`)
	if err != nil {
		return nil, fmt.Errorf("storage.GetAllPairs: query: %w", err)
	}
	defer rows.Close()

	var views []domain.PairView
	for rows.Next() {
		var v domain.PairView
		if err := rows.Scan(
			&v.ID, &v.KalshiMarketID, &v.PolyMarketID,
			&v.MatchConfidence, &v.MatchReason, &v.PriceGap,
			&v.CreatedAt, &v.LastChecked,
			&v.KalshiTitle, &v.PolyTitle,
			&v.KalshiYes, &v.KalshiNo, &v.PolyYes, &v.PolyNo,
			&v.KalshiVolume, &v.KalshiLiquidity, &v.PolyVolume, &v.PolyLiquidity,
		); err != nil {
			return nil, fmt.Errorf("storage.GetAllPairs: scan row: %w", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

const pgInsertAlertSQL = `
	INSERT INTO alerts
		(alert_type, severity, market_id, pair_id, title, message, data, acknowledged, triggered_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8)
	RETURNING id
`

func (s *PostgresStore) InsertAlert(ctx context.Context, a domain.Alert) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, pgInsertAlertSQL, alertArgs(a)...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("storage.InsertAlert: %s: %w", a.AlertType, err)
	}
	return id, nil
}

func (s *PostgresStore) InsertAlertsBatch(ctx context.Context, alerts []domain.Alert) (int, error) {
	if len(alerts) == 0 {
		return 0, nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("storage.InsertAlertsBatch: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, a := range alerts {
		var id int64
		if err := tx.QueryRow(ctx, pgInsertAlertSQL, alertArgs(a)...).Scan(&id); err != nil {
			return 0, fmt.Errorf("storage.InsertAlertsBatch: %s: %w", a.AlertType, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("storage.InsertAlertsBatch: commit: %w", err)
	}
	return len(alerts), nil
}

func (s *PostgresStore) GetAlerts(ctx context.Context, f ports.AlertFilter) ([]domain.Alert, error) {
	query := `
		SELECT id, alert_type, severity, market_id, pair_id, title, message,
		       data, acknowledged, triggered_at
		FROM alerts
		WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.AlertType != "" {
		query += ` AND alert_type = ` + arg(f.AlertType)
	}
	if f.Severity != "" {
		query += ` AND severity = ` + arg(string(f.Severity))
	}
	if f.OnlyUnack {
		query += ` AND acknowledged = FALSE`
	}
	if !f.TriggeredAfter.IsZero() {
		query += ` AND triggered_at > ` + arg(f.TriggeredAfter.UTC())
	}
	query += ` ORDER BY triggered_at DESC`
	if f.Limit > 0 {
		query += ` LIMIT ` + arg(f.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage.GetAlerts: query: %w", err)
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		var a domain.Alert
		var sev string
		if err := rows.Scan(
			&a.ID, &a.AlertType, &sev, &a.MarketID, &a.PairID,
			&a.Title, &a.Message, &a.Data, &a.Acknowledged, &a.TriggeredAt,
		); err != nil {
			return nil, fmt.Errorf("storage.GetAlerts: scan row: %w", err)
		}
		a.Severity = domain.Severity(sev)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (s *PostgresStore) AcknowledgeAlert(ctx context.Context, alertID int64) error {
	tag, err := s.pool.Exec(ctx, `UPDATE alerts SET acknowledged = TRUE WHERE id = $1`, alertID)
	if err != nil {
		return fmt.Errorf("storage.AcknowledgeAlert: %d: %w", alertID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("storage.AcknowledgeAlert: alert %d not found", alertID)
	}
	return nil
}

const pgUpsertTraderSQL = `
	INSERT INTO traders
		(proxy_wallet, user_name, profile_image, x_username, verified_badge,
		 total_pnl, total_volume, portfolio_value, first_seen, last_updated)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (proxy_wallet) DO UPDATE SET
		user_name       = CASE WHEN excluded.user_name <> '' THEN excluded.user_name ELSE traders.user_name END,
		profile_image   = CASE WHEN excluded.profile_image <> '' THEN excluded.profile_image ELSE traders.profile_image END,
		x_username      = CASE WHEN excluded.x_username <> '' THEN excluded.x_username ELSE traders.x_username END,
		verified_badge  = traders.verified_badge OR excluded.verified_badge,
		total_pnl       = COALESCE(excluded.total_pnl, traders.total_pnl),
		total_volume    = COALESCE(excluded.total_volume, traders.total_volume),
		portfolio_value = COALESCE(excluded.portfolio_value, traders.portfolio_value),
		last_updated    = excluded.last_updated
	RETURNING id
`

func (s *PostgresStore) UpsertTrader(ctx context.Context, t domain.Trader) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, pgUpsertTraderSQL, pgTraderArgs(t)...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("storage.UpsertTrader: %s: %w", t.ProxyWallet, err)
	}
	return id, nil
}

func (s *PostgresStore) UpsertTradersBatch(ctx context.Context, traders []domain.Trader) (int, error) {
	if len(traders) == 0 {
		return 0, nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("storage.UpsertTradersBatch: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, t := range traders {
		var id int64
		if err := tx.QueryRow(ctx, pgUpsertTraderSQL, pgTraderArgs(t)...).Scan(&id); err != nil {
			return 0, fmt.Errorf("storage.UpsertTradersBatch: upsert %s: %w", t.ProxyWallet, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("storage.UpsertTradersBatch: commit: %w", err)
	}
	return len(traders), nil
}

func pgTraderArgs(t domain.Trader) []any {
	return []any{
		t.ProxyWallet, t.UserName, t.ProfileImage, t.XUsername, t.VerifiedBadge,
		t.TotalPnL, t.TotalVolume, t.PortfolioValue,
		t.FirstSeen.UTC(), t.LastUpdated.UTC(),
	}
}

func (s *PostgresStore) GetTraderByWallet(ctx context.Context, wallet string) (*domain.Trader, error) {
	var t domain.Trader
	err := s.pool.QueryRow(ctx, `
		SELECT id, proxy_wallet, user_name, profile_image, x_username,
		       verified_badge, total_pnl, total_volume, portfolio_value,
		       first_seen, last_updated
		FROM traders
		WHERE proxy_wallet = $1
	`, wallet).Scan(
		&t.ID, &t.ProxyWallet, &t.UserName, &t.ProfileImage, &t.XUsername,
		&t.VerifiedBadge, &t.TotalPnL, &t.TotalVolume, &t.PortfolioValue,
		&t.FirstSeen, &t.LastUpdated,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage.GetTraderByWallet: %s: %w", wallet, err)
	}
	return &t, nil
}

const pgInsertWhaleTradeSQL = `
	INSERT INTO whale_trades
		(trader_id, proxy_wallet, condition_id, market_title, side, size, price,
		 usdc_size, outcome, outcome_index, transaction_hash, trade_timestamp,
		 event_slug, recorded_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (transaction_hash) DO NOTHING
`

func (s *PostgresStore) InsertWhaleTrade(ctx context.Context, t domain.WhaleTrade) (int64, error) {
	if _, err := s.pool.Exec(ctx, pgInsertWhaleTradeSQL, whaleTradeArgs(t)...); err != nil {
		return 0, fmt.Errorf("storage.InsertWhaleTrade: %s: %w", t.TransactionHash, err)
	}
	var id int64
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM whale_trades WHERE transaction_hash = $1`, t.TransactionHash,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("storage.InsertWhaleTrade: lookup %s: %w", t.TransactionHash, err)
	}
	return id, nil
}

func (s *PostgresStore) InsertWhaleTradesBatch(ctx context.Context, trades []domain.WhaleTrade) ([]string, error) {
	if len(trades) == 0 {
		return nil, nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage.InsertWhaleTradesBatch: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var inserted []string
	for _, t := range trades {
		tag, err := tx.Exec(ctx, pgInsertWhaleTradeSQL, whaleTradeArgs(t)...)
		if err != nil {
			return nil, fmt.Errorf("storage.InsertWhaleTradesBatch: %s: %w", t.TransactionHash, err)
		}
		if tag.RowsAffected() > 0 {
			inserted = append(inserted, t.TransactionHash)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("storage.InsertWhaleTradesBatch: commit: %w", err)
	}
	return inserted, nil
}

func (s *PostgresStore) InsertInsight(ctx context.Context, i domain.Insight) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO insights (report_type, title, content, markets_covered, model_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, i.ReportType, i.Title, i.Content, i.MarketsCovered, i.ModelUsed, i.CreatedAt.UTC()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("storage.InsertInsight: %s: %w", i.ReportType, err)
	}
	return id, nil
}

func (s *PostgresStore) InsertAgentLog(ctx context.Context, l domain.AgentLog) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO agent_logs
			(run_id, agent_name, status, started_at, completed_at,
			 duration_seconds, items_processed, summary, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, l.RunID, l.AgentName, l.Status, l.StartedAt.UTC(), l.CompletedAt.UTC(),
		l.DurationSeconds, l.ItemsProcessed, l.Summary, l.Error).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("storage.InsertAgentLog: %s: %w", l.AgentName, err)
	}
	return id, nil
}
