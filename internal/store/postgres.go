package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	apperrors "github.com/avekrivov/warden-bot/internal/errors"
	"github.com/avekrivov/warden-bot/pkg/metrics"
)

// PostgresStore keeps every collection in a single documents table, one
// jsonb row per collection key.
type PostgresStore struct {
	db  *sql.DB
	log *slog.Logger
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB, log *slog.Logger) *PostgresStore {
	if log == nil {
		log = slog.Default()
	}

	return &PostgresStore{
		db:  db,
		log: log,
	}
}

func (s *PostgresStore) Load(ctx context.Context, key string) (json.RawMessage, error) {
	const query = `SELECT doc FROM documents WHERE key = $1`

	var raw []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			metrics.RecordStoreOperation("load", nil)
			return normalizeDoc(nil), nil
		}

		s.log.Error("failed to load document", slog.String("key", key), slog.Any("error", err))
		metrics.RecordStoreOperation("load", err)
		return nil, apperrors.NewStoreError(fmt.Errorf("select document %q: %w", key, err))
	}
	metrics.RecordStoreOperation("load", nil)

	if !json.Valid(raw) {
		// A corrupt row reads as empty, same as a missing file would.
		s.log.Warn("stored document is not valid json, treating as empty", slog.String("key", key))
	}

	return normalizeDoc(raw), nil
}

func (s *PostgresStore) Save(ctx context.Context, key string, doc json.RawMessage) error {
	const query = `
		INSERT INTO documents (key, doc, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
	`

	if _, err := s.db.ExecContext(ctx, query, key, []byte(doc)); err != nil {
		s.log.Error("failed to save document", slog.String("key", key), slog.Any("error", err))
		metrics.RecordStoreOperation("save", err)
		return apperrors.NewStoreError(fmt.Errorf("upsert document %q: %w", key, err))
	}
	metrics.RecordStoreOperation("save", nil)

	return nil
}

// Update runs mutate inside a transaction holding a row lock on the
// collection, so concurrent updates of the same key serialize instead of
// overwriting each other.
func (s *PostgresStore) Update(ctx context.Context, key string, mutate func(json.RawMessage) (json.RawMessage, error)) error {
	err := s.update(ctx, key, mutate)
	metrics.RecordStoreOperation("update", err)
	return err
}

func (s *PostgresStore) update(ctx context.Context, key string, mutate func(json.RawMessage) (json.RawMessage, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStoreError(fmt.Errorf("begin update of %q: %w", key, err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const selectQuery = `SELECT doc FROM documents WHERE key = $1 FOR UPDATE`

	var raw []byte
	if err := tx.QueryRowContext(ctx, selectQuery, key).Scan(&raw); err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.log.Error("failed to lock document", slog.String("key", key), slog.Any("error", err))
		return apperrors.NewStoreError(fmt.Errorf("lock document %q: %w", key, err))
	}

	next, err := mutate(normalizeDoc(raw))
	if err != nil {
		return err
	}

	const upsertQuery = `
		INSERT INTO documents (key, doc, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
	`

	if _, err := tx.ExecContext(ctx, upsertQuery, key, []byte(next)); err != nil {
		s.log.Error("failed to write document", slog.String("key", key), slog.Any("error", err))
		return apperrors.NewStoreError(fmt.Errorf("write document %q: %w", key, err))
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStoreError(fmt.Errorf("commit update of %q: %w", key, err))
	}

	return nil
}

// HealthCheck verifies database connectivity.
func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
