package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"imsse/internal/entitlement/models"
	"imsse/internal/entitlement/store/migrations"
	"imsse/internal/platform/sqlitemigrate"
	"imsse/pkg/domain"
	dErrors "imsse/pkg/domain-errors"
	"imsse/pkg/platform/tx"
	"imsse/pkg/requestcontext"
)

// dbtx is satisfied by both the pool and a transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists state in PostgreSQL. Calls join a transaction found
// in the context via pkg/platform/tx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a PostgreSQL-backed store.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema applies the embedded schema. Statements are idempotent.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	entries, err := fs.Glob(migrations.Postgres, "postgres/*.sql")
	if err != nil {
		return fmt.Errorf("list postgres migrations: %w", err)
	}
	for _, name := range entries {
		content, err := fs.ReadFile(migrations.Postgres, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := s.pool.Exec(ctx, sqlitemigrate.ExtractUpMigration(string(content))); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}

// RunInTx runs fn with a transaction stored in its context.
func (s *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(t pgx.Tx) error {
		return fn(tx.WithTx(ctx, t))
	})
}

func (s *PostgresStore) conn(ctx context.Context) dbtx {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.pool
}

func (s *PostgresStore) Get(ctx context.Context, sub domain.SubID) (models.Record, error) {
	var (
		version    int
		rawXML     *string
		validUntil *time.Time
		updatedAt  time.Time
	)
	err := s.conn(ctx).QueryRow(ctx,
		`SELECT entitlement_version, raw_xml, valid_until, updated_at
		   FROM entitlement_records WHERE sub_id = $1`, int(sub),
	).Scan(&version, &rawXML, &validUntil, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.EmptyRecord(sub), nil
	}
	if err != nil {
		return models.Record{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "read entitlement record")
	}
	rec := models.Record{
		SubID:     sub,
		Version:   domain.EntitlementVersion(version),
		UpdatedAt: updatedAt.UTC(),
	}
	if rawXML != nil {
		rec.RawXML = *rawXML
	}
	if validUntil != nil {
		rec.ValidUntil = validUntil.UTC()
	}
	return rec, nil
}

func (s *PostgresStore) Update(ctx context.Context, sub domain.SubID, version domain.EntitlementVersion, rawXML string) (models.Record, error) {
	rec, err := buildRecord(sub, version, rawXML, requestcontext.Now(ctx))
	if err != nil {
		return models.Record{}, err
	}
	_, err = s.conn(ctx).Exec(ctx,
		`INSERT INTO entitlement_records (sub_id, entitlement_version, raw_xml, valid_until, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (sub_id) DO UPDATE SET
		   entitlement_version = EXCLUDED.entitlement_version,
		   raw_xml = EXCLUDED.raw_xml,
		   valid_until = EXCLUDED.valid_until,
		   updated_at = EXCLUDED.updated_at`,
		int(sub), int(rec.Version), optionalString(rec.RawXML), optionalTime(rec.ValidUntil), rec.UpdatedAt,
	)
	if err != nil {
		return models.Record{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "write entitlement record")
	}
	return rec, nil
}

func (s *PostgresStore) Reset(ctx context.Context, sub domain.SubID) error {
	if _, err := s.conn(ctx).Exec(ctx, `DELETE FROM entitlement_records WHERE sub_id = $1`, int(sub)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "reset entitlement record")
	}
	return nil
}

func (s *PostgresStore) Slot(ctx context.Context, slot domain.SlotID) (models.SlotState, error) {
	if !slot.IsValid() {
		return models.SlotState{}, dErrors.New(dErrors.CodeInvalidInput, "invalid slot id")
	}
	st := models.EmptySlot(slot)
	var sub int
	err := s.conn(ctx).QueryRow(ctx,
		`SELECT last_sub_id, last_boot_count FROM slot_bindings WHERE slot_id = $1`, int(slot),
	).Scan(&sub, &st.LastBootCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return st, nil
	}
	if err != nil {
		return models.SlotState{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "read slot binding")
	}
	st.SubID = domain.SubID(sub)
	return st, nil
}

func (s *PostgresStore) BindSubscription(ctx context.Context, slot domain.SlotID, sub domain.SubID) error {
	if !slot.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid slot id")
	}
	_, err := s.conn(ctx).Exec(ctx,
		`INSERT INTO slot_bindings (slot_id, last_sub_id) VALUES ($1, $2)
		 ON CONFLICT (slot_id) DO UPDATE SET last_sub_id = EXCLUDED.last_sub_id`,
		int(slot), int(sub),
	)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "write slot binding")
	}
	return nil
}

func (s *PostgresStore) RecordBootCount(ctx context.Context, slot domain.SlotID, count int) error {
	if !slot.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid slot id")
	}
	_, err := s.conn(ctx).Exec(ctx,
		`INSERT INTO slot_bindings (slot_id, last_boot_count) VALUES ($1, $2)
		 ON CONFLICT (slot_id) DO UPDATE SET last_boot_count = EXCLUDED.last_boot_count`,
		int(slot), count,
	)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "write boot count")
	}
	return nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
