// Package store persists uploaded spreadsheet blobs in Postgres, keyed by
// client, period and kind, with hash-based deduplication. The extraction
// core never touches this package; it only ever sees raw bytes.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"opsdiary/internal/config"
	"opsdiary/internal/errors"
)

// UploadKind distinguishes the three operational sources a client uploads.
type UploadKind string

const (
	KindBooking    UploadKind = "booking"
	KindMultimodal UploadKind = "multi"
	KindTransport  UploadKind = "transp"
)

// Kinds lists every upload kind in its canonical order.
var Kinds = []UploadKind{KindBooking, KindMultimodal, KindTransport}

// SaveResult reports what happened to one (period, kind) save.
type SaveResult struct {
	Period   string `json:"ym"`
	Kind     string `json:"kind"`
	Inserted bool   `json:"inserted"`
	Reason   string `json:"reason,omitempty"`
}

// UploadStore wraps the uploads table.
type UploadStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New connects to Postgres with retry and ensures the schema exists. The
// retry loop covers managed databases that wake up slower than the app.
func New(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*UploadStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, errors.NewConfigError("invalid database url", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.NewStorageError("failed to create connection pool", err)
	}

	s := &UploadStore{
		pool:   pool,
		logger: logger.With(slog.String("component", "upload_store")),
	}

	delay := time.Second
	attempts := cfg.StartupAttempts
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 1; ; attempt++ {
		err = s.ensureSchema(ctx)
		if err == nil {
			s.logger.InfoContext(ctx, "schema ensured", slog.Int("attempt", attempt))
			break
		}
		if attempt >= attempts {
			pool.Close()
			return nil, errors.NewStorageError("failed to ensure schema", err)
		}
		s.logger.WarnContext(ctx, "schema init failed, retrying",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			pool.Close()
			return nil, errors.NewStorageError("schema init cancelled", ctx.Err())
		}
		if delay *= 2; delay > 15*time.Second {
			delay = 15 * time.Second
		}
	}

	return s, nil
}

func (s *UploadStore) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS uploads (
			id SERIAL PRIMARY KEY,
			client TEXT NOT NULL,
			ym TEXT NOT NULL,
			kind TEXT NOT NULL,
			data BYTEA NOT NULL,
			hash TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_uploads_client_ym_kind ON uploads (client, ym, kind)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_uploads_client_ym_kind_hash ON uploads (client, ym, kind, hash)`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Save stores a blob for (client, period, kind). A blob whose hash already
// exists under that key is skipped; otherwise older rows under the key are
// replaced so the latest upload wins.
func (s *UploadStore) Save(ctx context.Context, client, period string, kind UploadKind, data []byte, hash string) (SaveResult, error) {
	result := SaveResult{Period: period, Kind: string(kind)}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return result, errors.NewStorageError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM uploads WHERE client=$1 AND ym=$2 AND kind=$3 AND hash=$4)`,
		client, period, kind, hash).Scan(&exists)
	if err != nil {
		return result, errors.NewStorageError("failed to check existing upload", err)
	}
	if exists {
		result.Reason = "hash_igual"
		return result, nil
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM uploads WHERE client=$1 AND ym=$2 AND kind=$3`,
		client, period, kind); err != nil {
		return result, errors.NewStorageError("failed to replace upload", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO uploads (client, ym, kind, data, hash) VALUES ($1, $2, $3, $4, $5)`,
		client, period, kind, data, hash); err != nil {
		return result, errors.NewStorageError("failed to insert upload", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return result, errors.NewStorageError("failed to commit upload", err)
	}

	result.Inserted = true
	return result, nil
}

// LatestBlob returns the most recent blob stored under (client, period, kind).
func (s *UploadStore) LatestBlob(ctx context.Context, client, period string, kind UploadKind) ([]byte, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM uploads WHERE client=$1 AND ym=$2 AND kind=$3 ORDER BY id DESC LIMIT 1`,
		client, period, kind).Scan(&data)
	if err == pgx.ErrNoRows {
		return nil, errors.NewNotFoundError("no upload stored", err).
			WithContext("client", client).
			WithContext("ym", period).
			WithContext("kind", string(kind))
	}
	if err != nil {
		return nil, errors.NewStorageError("failed to load upload", err)
	}
	return data, nil
}

// CompletePeriods returns the periods for which the client has all three
// kinds stored, newest first.
func (s *UploadStore) CompletePeriods(ctx context.Context, client string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ym FROM uploads WHERE client = $1 AND kind = 'booking'
		INTERSECT
		SELECT ym FROM uploads WHERE client = $1 AND kind = 'multi'
		INTERSECT
		SELECT ym FROM uploads WHERE client = $1 AND kind = 'transp'
		ORDER BY ym DESC`, client)
	if err != nil {
		return nil, errors.NewStorageError("failed to query periods", err)
	}
	defer rows.Close()

	var periods []string
	for rows.Next() {
		var ym string
		if err := rows.Scan(&ym); err != nil {
			return nil, errors.NewStorageError("failed to scan period", err)
		}
		periods = append(periods, ym)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("failed to iterate periods", err)
	}
	return periods, nil
}

// Flush deletes a client's uploads, optionally restricted to one period.
// It returns the number of rows removed.
func (s *UploadStore) Flush(ctx context.Context, client, period string) (int64, error) {
	query := `DELETE FROM uploads WHERE client=$1`
	args := []any{client}
	if period != "" {
		query = `DELETE FROM uploads WHERE client=$1 AND ym=$2`
		args = append(args, period)
	}
	ct, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, errors.NewStorageError("failed to flush uploads", err).WithContext("client", client)
	}
	return ct.RowsAffected(), nil
}

// Ping checks database liveness for the health endpoint.
func (s *UploadStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *UploadStore) Close() {
	s.pool.Close()
}
