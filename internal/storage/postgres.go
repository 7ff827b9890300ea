package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/huyndao/robux-exchange/internal/models"
)

// PostgresPersister stores each shop's ledger document as one JSONB row,
// keyed by shop id. The document is small enough that whole-snapshot
// upserts stay cheap, and the single-row upsert keeps the write atomic on
// the database side too.
type PostgresPersister struct {
	pool   *pgxpool.Pool
	shopID string
}

const createSnapshotTable = `
	CREATE TABLE IF NOT EXISTS ledger_snapshots (
		shop_id    TEXT PRIMARY KEY,
		document   JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// NewPostgresPersister connects to Postgres and ensures the snapshot
// table exists.
func NewPostgresPersister(ctx context.Context, databaseURL, shopID string) (*PostgresPersister, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(connectCtx, createSnapshotTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure snapshot table: %w", err)
	}

	return &PostgresPersister{pool: pool, shopID: shopID}, nil
}

func (p *PostgresPersister) Load(ctx context.Context) (*models.Ledger, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx,
		`SELECT document FROM ledger_snapshots WHERE shop_id = $1`, p.shopID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load ledger snapshot: %w", err)
	}

	ledger := models.NewLedger()
	if err := json.Unmarshal(raw, ledger); err != nil {
		return nil, fmt.Errorf("decode ledger snapshot: %w", err)
	}
	if ledger.Users == nil {
		ledger.Users = make(map[string]*models.User)
	}
	return ledger, nil
}

func (p *PostgresPersister) Save(ctx context.Context, ledger *models.Ledger) error {
	raw, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("encode ledger snapshot: %w", err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO ledger_snapshots (shop_id, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (shop_id) DO UPDATE
		SET document = EXCLUDED.document, updated_at = NOW()
	`, p.shopID, raw)
	if err != nil {
		return fmt.Errorf("save ledger snapshot: %w", err)
	}
	return nil
}

func (p *PostgresPersister) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresPersister) Close() {
	p.pool.Close()
}
