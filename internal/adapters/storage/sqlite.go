package storage

// sqlite.go — backend SQLite puro Go (sin CGo) para ports.Store.
//
// Estrategia:
//   - Upserts por clave natural con ON CONFLICT ... DO UPDATE: re-descubrir
//     el mismo mercado, par o trader actualiza in place, nunca duplica.
//   - Tablas append-only (snapshots, alerts, whale_trades, insights,
//     agent_logs) solo reciben INSERT; whale_trades hace DO NOTHING sobre
//     transaction_hash para que el replay de un trade sea un no-op.
//   - Los batch van en una transacción con statement preparado: el lector
//     ve el batch entero o nada.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/themvf/PredictionMarkets/internal/domain"
	"github.com/themvf/PredictionMarkets/internal/ports"
	_ "modernc.org/sqlite"
)

const schema = `
-- Mercados normalizados de todos los venues
CREATE TABLE IF NOT EXISTS markets (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    platform     TEXT NOT NULL,
    platform_id  TEXT NOT NULL,
    title        TEXT NOT NULL DEFAULT '',
    description  TEXT NOT NULL DEFAULT '',
    category     TEXT NOT NULL DEFAULT '',
    status       TEXT NOT NULL DEFAULT 'active',
    yes_price    REAL,
    no_price     REAL,
    volume       REAL,
    liquidity    REAL,
    close_time   DATETIME,
    url          TEXT NOT NULL DEFAULT '',
    raw_data     TEXT NOT NULL DEFAULT '',
    last_updated DATETIME NOT NULL,
    UNIQUE(platform, platform_id)
);

-- Capturas de precio, una fila por mercado y ciclo de collection
CREATE TABLE IF NOT EXISTS snapshots (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    market_id     INTEGER NOT NULL REFERENCES markets(id),
    yes_price     REAL,
    no_price      REAL,
    volume        REAL,
    open_interest REAL,
    best_bid      REAL,
    best_ask      REAL,
    spread        REAL,
    captured_at   DATETIME NOT NULL
);

-- Matches cross-platform Kalshi <-> Polymarket
CREATE TABLE IF NOT EXISTS pairs (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    kalshi_market_id INTEGER NOT NULL REFERENCES markets(id),
    poly_market_id   INTEGER NOT NULL REFERENCES markets(id),
    match_confidence REAL NOT NULL DEFAULT 0,
    match_reason     TEXT NOT NULL DEFAULT '',
    price_gap        REAL,
    created_at       DATETIME NOT NULL,
    last_checked     DATETIME NOT NULL,
    UNIQUE(kalshi_market_id, poly_market_id)
);

CREATE TABLE IF NOT EXISTS alerts (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    alert_type   TEXT NOT NULL,
    severity     TEXT NOT NULL,
    market_id    INTEGER,
    pair_id      INTEGER,
    title        TEXT NOT NULL DEFAULT '',
    message      TEXT NOT NULL DEFAULT '',
    data         TEXT NOT NULL DEFAULT '',
    acknowledged INTEGER NOT NULL DEFAULT 0,
    triggered_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS traders (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    proxy_wallet    TEXT NOT NULL UNIQUE,
    user_name       TEXT NOT NULL DEFAULT '',
    profile_image   TEXT NOT NULL DEFAULT '',
    x_username      TEXT NOT NULL DEFAULT '',
    verified_badge  INTEGER NOT NULL DEFAULT 0,
    total_pnl       REAL,
    total_volume    REAL,
    portfolio_value REAL,
    first_seen      DATETIME NOT NULL,
    last_updated    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS whale_trades (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    trader_id        INTEGER REFERENCES traders(id),
    proxy_wallet     TEXT NOT NULL,
    condition_id     TEXT NOT NULL DEFAULT '',
    market_title     TEXT NOT NULL DEFAULT '',
    side             TEXT NOT NULL DEFAULT '',
    size             REAL,
    price            REAL,
    usdc_size        REAL NOT NULL DEFAULT 0,
    outcome          TEXT NOT NULL DEFAULT '',
    outcome_index    INTEGER,
    transaction_hash TEXT NOT NULL UNIQUE,
    trade_timestamp  INTEGER,
    event_slug       TEXT NOT NULL DEFAULT '',
    recorded_at      DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS insights (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    report_type     TEXT NOT NULL,
    title           TEXT NOT NULL DEFAULT '',
    content         TEXT NOT NULL DEFAULT '',
    markets_covered INTEGER NOT NULL DEFAULT 0,
    model_used      TEXT NOT NULL DEFAULT '',
    created_at      DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS agent_logs (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id           TEXT NOT NULL DEFAULT '',
    agent_name       TEXT NOT NULL,
    status           TEXT NOT NULL,
    started_at       DATETIME NOT NULL,
    completed_at     DATETIME NOT NULL,
    duration_seconds REAL NOT NULL DEFAULT 0,
    items_processed  INTEGER NOT NULL DEFAULT 0,
    summary          TEXT NOT NULL DEFAULT '',
    error            TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_markets_platform  ON markets(platform, status);
CREATE INDEX IF NOT EXISTS idx_snapshots_market  ON snapshots(market_id, captured_at DESC);
CREATE INDEX IF NOT EXISTS idx_alerts_triggered  ON alerts(triggered_at DESC);
CREATE INDEX IF NOT EXISTS idx_alerts_type       ON alerts(alert_type, acknowledged);
CREATE INDEX IF NOT EXISTS idx_whale_wallet      ON whale_trades(proxy_wallet);
CREATE INDEX IF NOT EXISTS idx_logs_agent        ON agent_logs(agent_name, started_at DESC);
`

// SQLiteStore implementa ports.Store usando SQLite (pure Go, sin CGo).
type SQLiteStore struct {
	db *sql.DB
}

var _ ports.Store = (*SQLiteStore)(nil)

// NewSQLiteStore abre (o crea) la base de datos en la ruta dada y aplica el schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close cierra la conexión.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const upsertMarketSQL = `
	INSERT INTO markets
		(platform, platform_id, title, description, category, status,
		 yes_price, no_price, volume, liquidity, close_time, url, raw_data, last_updated)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(platform, platform_id) DO UPDATE SET
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

// UpsertMarket inserta o actualiza un mercado por (platform, platform_id).
// Devuelve el id estable de la fila.
func (s *SQLiteStore) UpsertMarket(ctx context.Context, m domain.Market) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, upsertMarketSQL, marketArgs(m)...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("storage.UpsertMarket: %s/%s: %w", m.Platform, m.PlatformID, err)
	}
	return id, nil
}

// UpsertMarketsBatch hace upsert de todos los mercados en una sola transacción.
func (s *SQLiteStore) UpsertMarketsBatch(ctx context.Context, markets []domain.Market) (int, error) {
	if len(markets) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("storage.UpsertMarketsBatch: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertMarketSQL)
	if err != nil {
		return 0, fmt.Errorf("storage.UpsertMarketsBatch: prepare: %w", err)
	}
	defer stmt.Close()

	for _, m := range markets {
		var id int64
		if err := stmt.QueryRowContext(ctx, marketArgs(m)...).Scan(&id); err != nil {
			return 0, fmt.Errorf("storage.UpsertMarketsBatch: upsert %s/%s: %w", m.Platform, m.PlatformID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage.UpsertMarketsBatch: commit: %w", err)
	}
	return len(markets), nil
}

func marketArgs(m domain.Market) []any {
	return []any{
		m.Platform, m.PlatformID, m.Title, m.Description, m.Category,
		orDefault(m.Status, domain.MarketStatusActive),
		m.YesPrice, m.NoPrice, m.Volume, m.Liquidity,
		utcPtr(m.CloseTime), m.URL, m.RawData, m.LastUpdated.UTC(),
	}
}

// GetAllMarkets devuelve los mercados que pasan el filtro. Status vacío
// equivale a "active"; Platform vacía trae todas las plataformas.
func (s *SQLiteStore) GetAllMarkets(ctx context.Context, f ports.MarketFilter) ([]domain.Market, error) {
	status := orDefault(f.Status, domain.MarketStatusActive)
	query := `
		SELECT id, platform, platform_id, title, description, category, status,
		       yes_price, no_price, volume, liquidity, close_time, url, raw_data, last_updated
		FROM markets
		WHERE status = ?`
	args := []any{status}
	if f.Platform != "" {
		query += ` AND platform = ?`
		args = append(args, f.Platform)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage.GetAllMarkets: query: %w", err)
	}
	defer rows.Close()

	var markets []domain.Market
	for rows.Next() {
		var m domain.Market
		var closeTime, lastUpdated sql.NullString
		if err := rows.Scan(
			&m.ID, &m.Platform, &m.PlatformID, &m.Title, &m.Description,
			&m.Category, &m.Status, &m.YesPrice, &m.NoPrice, &m.Volume,
			&m.Liquidity, &closeTime, &m.URL, &m.RawData, &lastUpdated,
		); err != nil {
			return nil, fmt.Errorf("storage.GetAllMarkets: scan row: %w", err)
		}
		m.CloseTime = parseTimePtr(closeTime)
		m.LastUpdated = parseTime(lastUpdated.String)
		markets = append(markets, m)
	}
	return markets, rows.Err()
}

const insertSnapshotSQL = `
	INSERT INTO snapshots
		(market_id, yes_price, no_price, volume, open_interest, best_bid, best_ask, spread, captured_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// InsertSnapshot añade una captura de precio. Append-only.
func (s *SQLiteStore) InsertSnapshot(ctx context.Context, snap domain.Snapshot) (int64, error) {
	res, err := s.db.ExecContext(ctx, insertSnapshotSQL, snapshotArgs(snap)...)
	if err != nil {
		return 0, fmt.Errorf("storage.InsertSnapshot: market %d: %w", snap.MarketID, err)
	}
	return res.LastInsertId()
}

// InsertSnapshotsBatch inserta todas las capturas en una transacción.
func (s *SQLiteStore) InsertSnapshotsBatch(ctx context.Context, snapshots []domain.Snapshot) (int, error) {
	if len(snapshots) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("storage.InsertSnapshotsBatch: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSnapshotSQL)
	if err != nil {
		return 0, fmt.Errorf("storage.InsertSnapshotsBatch: prepare: %w", err)
	}
	defer stmt.Close()

	for _, snap := range snapshots {
		if _, err := stmt.ExecContext(ctx, snapshotArgs(snap)...); err != nil {
			return 0, fmt.Errorf("storage.InsertSnapshotsBatch: market %d: %w", snap.MarketID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage.InsertSnapshotsBatch: commit: %w", err)
	}
	return len(snapshots), nil
}

func snapshotArgs(snap domain.Snapshot) []any {
	return []any{
		snap.MarketID, snap.YesPrice, snap.NoPrice, snap.Volume,
		snap.OpenInterest, snap.BestBid, snap.BestAsk, snap.Spread,
		snap.CapturedAt.UTC(),
	}
}

// GetPriceHistory devuelve hasta limit capturas del mercado, la más reciente primero.
func (s *SQLiteStore) GetPriceHistory(ctx context.Context, marketID int64, limit int) ([]domain.Snapshot, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, market_id, yes_price, no_price, volume, open_interest,
		       best_bid, best_ask, spread, captured_at
		FROM snapshots
		WHERE market_id = ?
		ORDER BY captured_at DESC
		LIMIT ?
	`, marketID, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.GetPriceHistory: query market %d: %w", marketID, err)
	}
	defer rows.Close()

	var snaps []domain.Snapshot
	for rows.Next() {
		var snap domain.Snapshot
		var capturedAt string
		if err := rows.Scan(
			&snap.ID, &snap.MarketID, &snap.YesPrice, &snap.NoPrice,
			&snap.Volume, &snap.OpenInterest, &snap.BestBid, &snap.BestAsk,
			&snap.Spread, &capturedAt,
		); err != nil {
			return nil, fmt.Errorf("storage.GetPriceHistory: scan row: %w", err)
		}
		snap.CapturedAt = parseTime(capturedAt)
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// UpsertPair inserta o actualiza un par por (kalshi_market_id, poly_market_id).
// created_at se conserva de la primera inserción.
func (s *SQLiteStore) UpsertPair(ctx context.Context, p domain.Pair) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO pairs
			(kalshi_market_id, poly_market_id, match_confidence, match_reason,
			 price_gap, created_at, last_checked)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(kalshi_market_id, poly_market_id) DO UPDATE SET
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

// GetAllPairs devuelve todos los pares junto con el estado actual de sus
// dos mercados, listo para el motor de alertas.
func (s *SQLiteStore) GetAllPairs(ctx context.Context) ([]domain.PairView, error) {
	rows, err := s.db.QueryContext(ctx, `
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
		var createdAt, lastChecked string
		if err := rows.Scan(
			&v.ID, &v.KalshiMarketID, &v.PolyMarketID,
			&v.MatchConfidence, &v.MatchReason, &v.PriceGap,
			&createdAt, &lastChecked,
			&v.KalshiTitle, &v.PolyTitle,
			&v.KalshiYes, &v.KalshiNo, &v.PolyYes, &v.PolyNo,
			&v.KalshiVolume, &v.KalshiLiquidity, &v.PolyVolume, &v.PolyLiquidity,
		); err != nil {
			return nil, fmt.Errorf("storage.GetAllPairs: scan row: %w", err)
		}
		v.CreatedAt = parseTime(createdAt)
		v.LastChecked = parseTime(lastChecked)
		views = append(views, v)
	}
	return views, rows.Err()
}

const insertAlertSQL = `
	INSERT INTO alerts
		(alert_type, severity, market_id, pair_id, title, message, data, acknowledged, triggered_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)
`

// InsertAlert añade una alerta. Append-only.
func (s *SQLiteStore) InsertAlert(ctx context.Context, a domain.Alert) (int64, error) {
	res, err := s.db.ExecContext(ctx, insertAlertSQL, alertArgs(a)...)
	if err != nil {
		return 0, fmt.Errorf("storage.InsertAlert: %s: %w", a.AlertType, err)
	}
	return res.LastInsertId()
}

// InsertAlertsBatch inserta todas las alertas en una transacción.
func (s *SQLiteStore) InsertAlertsBatch(ctx context.Context, alerts []domain.Alert) (int, error) {
	if len(alerts) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("storage.InsertAlertsBatch: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertAlertSQL)
	if err != nil {
		return 0, fmt.Errorf("storage.InsertAlertsBatch: prepare: %w", err)
	}
	defer stmt.Close()

	for _, a := range alerts {
		if _, err := stmt.ExecContext(ctx, alertArgs(a)...); err != nil {
			return 0, fmt.Errorf("storage.InsertAlertsBatch: %s: %w", a.AlertType, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage.InsertAlertsBatch: commit: %w", err)
	}
	return len(alerts), nil
}

func alertArgs(a domain.Alert) []any {
	return []any{
		a.AlertType, string(a.Severity), a.MarketID, a.PairID,
		a.Title, a.Message, a.Data, a.TriggeredAt.UTC(),
	}
}

// GetAlerts devuelve alertas que pasan el filtro, la más reciente primero.
func (s *SQLiteStore) GetAlerts(ctx context.Context, f ports.AlertFilter) ([]domain.Alert, error) {
	query := `
		SELECT id, alert_type, severity, market_id, pair_id, title, message,
		       data, acknowledged, triggered_at
		FROM alerts
		WHERE 1=1`
	var args []any
	if f.AlertType != "" {
		query += ` AND alert_type = ?`
		args = append(args, f.AlertType)
	}
	if f.Severity != "" {
		query += ` AND severity = ?`
		args = append(args, string(f.Severity))
	}
	if f.OnlyUnack {
		query += ` AND acknowledged = 0`
	}
	if !f.TriggeredAfter.IsZero() {
		query += ` AND triggered_at > ?`
		args = append(args, f.TriggeredAfter.UTC())
	}
	query += ` ORDER BY triggered_at DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage.GetAlerts: query: %w", err)
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		var a domain.Alert
		var sev, triggeredAt string
		var ack int
		if err := rows.Scan(
			&a.ID, &a.AlertType, &sev, &a.MarketID, &a.PairID,
			&a.Title, &a.Message, &a.Data, &ack, &triggeredAt,
		); err != nil {
			return nil, fmt.Errorf("storage.GetAlerts: scan row: %w", err)
		}
		a.Severity = domain.Severity(sev)
		a.Acknowledged = ack == 1
		a.TriggeredAt = parseTime(triggeredAt)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// AcknowledgeAlert marca una alerta como reconocida. La única mutación
// permitida sobre alerts.
func (s *SQLiteStore) AcknowledgeAlert(ctx context.Context, alertID int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE alerts SET acknowledged = 1 WHERE id = ?`, alertID)
	if err != nil {
		return fmt.Errorf("storage.AcknowledgeAlert: %d: %w", alertID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage.AcknowledgeAlert: %d: %w", alertID, err)
	}
	if n == 0 {
		return fmt.Errorf("storage.AcknowledgeAlert: alert %d not found", alertID)
	}
	return nil
}

// Merge conservador: un campo entrante vacío o nil nunca pisa un valor
// existente. first_seen se conserva de la primera inserción.
const upsertTraderSQL = `
	INSERT INTO traders
		(proxy_wallet, user_name, profile_image, x_username, verified_badge,
		 total_pnl, total_volume, portfolio_value, first_seen, last_updated)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(proxy_wallet) DO UPDATE SET
		user_name       = CASE WHEN excluded.user_name <> '' THEN excluded.user_name ELSE traders.user_name END,
		profile_image   = CASE WHEN excluded.profile_image <> '' THEN excluded.profile_image ELSE traders.profile_image END,
		x_username      = CASE WHEN excluded.x_username <> '' THEN excluded.x_username ELSE traders.x_username END,
		verified_badge  = MAX(traders.verified_badge, excluded.verified_badge),
		total_pnl       = COALESCE(excluded.total_pnl, traders.total_pnl),
		total_volume    = COALESCE(excluded.total_volume, traders.total_volume),
		portfolio_value = COALESCE(excluded.portfolio_value, traders.portfolio_value),
		last_updated    = excluded.last_updated
	RETURNING id
`

// UpsertTrader inserta o actualiza un trader por proxy_wallet.
func (s *SQLiteStore) UpsertTrader(ctx context.Context, t domain.Trader) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, upsertTraderSQL, traderArgs(t)...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("storage.UpsertTrader: %s: %w", t.ProxyWallet, err)
	}
	return id, nil
}

// UpsertTradersBatch hace upsert de todos los traders en una transacción.
func (s *SQLiteStore) UpsertTradersBatch(ctx context.Context, traders []domain.Trader) (int, error) {
	if len(traders) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("storage.UpsertTradersBatch: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertTraderSQL)
	if err != nil {
		return 0, fmt.Errorf("storage.UpsertTradersBatch: prepare: %w", err)
	}
	defer stmt.Close()

	for _, t := range traders {
		var id int64
		if err := stmt.QueryRowContext(ctx, traderArgs(t)...).Scan(&id); err != nil {
			return 0, fmt.Errorf("storage.UpsertTradersBatch: upsert %s: %w", t.ProxyWallet, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage.UpsertTradersBatch: commit: %w", err)
	}
	return len(traders), nil
}

func traderArgs(t domain.Trader) []any {
	verified := 0
	if t.VerifiedBadge {
		verified = 1
	}
	return []any{
		t.ProxyWallet, t.UserName, t.ProfileImage, t.XUsername, verified,
		t.TotalPnL, t.TotalVolume, t.PortfolioValue,
		t.FirstSeen.UTC(), t.LastUpdated.UTC(),
	}
}

// GetTraderByWallet devuelve el trader con esa wallet, o (nil, nil) si no existe.
func (s *SQLiteStore) GetTraderByWallet(ctx context.Context, wallet string) (*domain.Trader, error) {
	var t domain.Trader
	var verified int
	var firstSeen, lastUpdated string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, proxy_wallet, user_name, profile_image, x_username,
		       verified_badge, total_pnl, total_volume, portfolio_value,
		       first_seen, last_updated
		FROM traders
		WHERE proxy_wallet = ?
	`, wallet).Scan(
		&t.ID, &t.ProxyWallet, &t.UserName, &t.ProfileImage, &t.XUsername,
		&verified, &t.TotalPnL, &t.TotalVolume, &t.PortfolioValue,
		&firstSeen, &lastUpdated,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage.GetTraderByWallet: %s: %w", wallet, err)
	}
	t.VerifiedBadge = verified == 1
	t.FirstSeen = parseTime(firstSeen)
	t.LastUpdated = parseTime(lastUpdated)
	return &t, nil
}

const insertWhaleTradeSQL = `
	INSERT INTO whale_trades
		(trader_id, proxy_wallet, condition_id, market_title, side, size, price,
		 usdc_size, outcome, outcome_index, transaction_hash, trade_timestamp,
		 event_slug, recorded_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(transaction_hash) DO NOTHING
`

// InsertWhaleTrade inserta un trade por transaction_hash. Reenviar el mismo
// trade es un no-op que devuelve el id existente, nunca un error.
func (s *SQLiteStore) InsertWhaleTrade(ctx context.Context, t domain.WhaleTrade) (int64, error) {
	res, err := s.db.ExecContext(ctx, insertWhaleTradeSQL, whaleTradeArgs(t)...)
	if err != nil {
		return 0, fmt.Errorf("storage.InsertWhaleTrade: %s: %w", t.TransactionHash, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return res.LastInsertId()
	}
	// Duplicado: recuperar el id de la fila ya existente.
	var id int64
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM whale_trades WHERE transaction_hash = ?`, t.TransactionHash,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("storage.InsertWhaleTrade: lookup %s: %w", t.TransactionHash, err)
	}
	return id, nil
}

// InsertWhaleTradesBatch inserta los trades en una transacción y devuelve
// los transaction hashes que eran realmente nuevos.
func (s *SQLiteStore) InsertWhaleTradesBatch(ctx context.Context, trades []domain.WhaleTrade) ([]string, error) {
	if len(trades) == 0 {
		return nil, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("storage.InsertWhaleTradesBatch: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertWhaleTradeSQL)
	if err != nil {
		return nil, fmt.Errorf("storage.InsertWhaleTradesBatch: prepare: %w", err)
	}
	defer stmt.Close()

	var inserted []string
	for _, t := range trades {
		res, err := stmt.ExecContext(ctx, whaleTradeArgs(t)...)
		if err != nil {
			return nil, fmt.Errorf("storage.InsertWhaleTradesBatch: %s: %w", t.TransactionHash, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted = append(inserted, t.TransactionHash)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("storage.InsertWhaleTradesBatch: commit: %w", err)
	}
	return inserted, nil
}

func whaleTradeArgs(t domain.WhaleTrade) []any {
	return []any{
		t.TraderID, t.ProxyWallet, t.ConditionID, t.MarketTitle, t.Side,
		t.Size, t.Price, t.USDCSize, t.Outcome, t.OutcomeIndex,
		t.TransactionHash, t.TradeTimestamp, t.EventSlug, t.RecordedAt.UTC(),
	}
}

// InsertInsight añade un informe generado por el LLM.
func (s *SQLiteStore) InsertInsight(ctx context.Context, i domain.Insight) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO insights (report_type, title, content, markets_covered, model_used, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, i.ReportType, i.Title, i.Content, i.MarketsCovered, i.ModelUsed, i.CreatedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("storage.InsertInsight: %s: %w", i.ReportType, err)
	}
	return res.LastInsertId()
}

// InsertAgentLog añade el registro de una invocación de agente.
func (s *SQLiteStore) InsertAgentLog(ctx context.Context, l domain.AgentLog) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO agent_logs
			(run_id, agent_name, status, started_at, completed_at,
			 duration_seconds, items_processed, summary, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, l.RunID, l.AgentName, l.Status, l.StartedAt.UTC(), l.CompletedAt.UTC(),
		l.DurationSeconds, l.ItemsProcessed, l.Summary, l.Error)
	if err != nil {
		return 0, fmt.Errorf("storage.InsertAgentLog: %s: %w", l.AgentName, err)
	}
	return res.LastInsertId()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// El driver devuelve los DATETIME como texto RFC3339; un timestamp no
// parseable queda en zero value en vez de romper la lectura.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}
