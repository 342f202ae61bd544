package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cottonscout/cotton-scraper/internal/models"
)

// PostgresStorage keeps snapshots in a single table with the product list as
// a JSONB payload. It shares naming with the file backend so the API serves
// snapshots identically regardless of backend.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresStorage(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	ps := &PostgresStorage{pool: pool}
	if err := ps.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return ps, nil
}

func (ps *PostgresStorage) migrate(ctx context.Context) error {
	_, err := ps.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS snapshots (
			name           TEXT PRIMARY KEY,
			scraped_at     TIMESTAMPTZ NOT NULL,
			total_products INTEGER NOT NULL,
			payload        JSONB NOT NULL,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("create snapshots table: %w", err)
	}
	return nil
}

func (ps *PostgresStorage) Save(ctx context.Context, snap *models.Snapshot) (string, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	name := SnapshotName(snap)
	_, err = ps.pool.Exec(ctx, `
		INSERT INTO snapshots (name, scraped_at, total_products, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE
		SET scraped_at = EXCLUDED.scraped_at,
		    total_products = EXCLUDED.total_products,
		    payload = EXCLUDED.payload`,
		name, snap.ScrapedAt, snap.TotalProducts, payload)
	if err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}
	return name, nil
}

func (ps *PostgresStorage) List(ctx context.Context) ([]models.SnapshotInfo, error) {
	rows, err := ps.pool.Query(ctx, `
		SELECT name, octet_length(payload::text), created_at
		FROM snapshots
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var infos []models.SnapshotInfo
	for rows.Next() {
		var info models.SnapshotInfo
		var size int
		if err := rows.Scan(&info.Name, &size, &info.ModifiedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		info.Size = int64(size)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

func (ps *PostgresStorage) Load(ctx context.Context, name string) (*models.Snapshot, error) {
	var payload []byte
	err := ps.pool.QueryRow(ctx,
		`SELECT payload FROM snapshots WHERE name = $1`, name).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", name, err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", name, err)
	}
	return &snap, nil
}

func (ps *PostgresStorage) Close() {
	ps.pool.Close()
}
