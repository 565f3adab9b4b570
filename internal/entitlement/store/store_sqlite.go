package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"imsse/internal/entitlement/models"
	"imsse/internal/entitlement/store/migrations"
	"imsse/internal/platform/sqlitemigrate"
	"imsse/pkg/domain"
	dErrors "imsse/pkg/domain-errors"
	"imsse/pkg/platform/tx"
	"imsse/pkg/requestcontext"
)

// sqlConn is satisfied by both the database handle and a transaction.
type sqlConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore persists state in a device-local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens path (":memory:" for a private in-memory database) and
// applies the embedded schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	schema, err := fs.Sub(migrations.SQLite, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("load sqlite migrations: %w", err)
	}
	db, err := sqlitemigrate.Open(ctx, path, schema)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RunInTx runs fn with a transaction stored in its context. A nested call joins
// the outer transaction.
func (s *SQLiteStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := tx.SQLFrom(ctx); ok {
		return fn(ctx)
	}
	t, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "begin transaction")
	}
	if err := fn(tx.WithSQLTx(ctx, t)); err != nil {
		if rbErr := t.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := t.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "commit transaction")
	}
	return nil
}

func (s *SQLiteStore) conn(ctx context.Context) sqlConn {
	if t, ok := tx.SQLFrom(ctx); ok {
		return t
	}
	return s.db
}

func (s *SQLiteStore) Get(ctx context.Context, sub domain.SubID) (models.Record, error) {
	var (
		version    int
		rawXML     sql.NullString
		validUntil sql.NullInt64
		updatedAt  int64
	)
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT entitlement_version, raw_xml, valid_until, updated_at
		   FROM entitlement_records WHERE sub_id = ?`, int(sub),
	).Scan(&version, &rawXML, &validUntil, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.EmptyRecord(sub), nil
	}
	if err != nil {
		return models.Record{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "read entitlement record")
	}
	rec := models.Record{
		SubID:     sub,
		Version:   domain.EntitlementVersion(version),
		RawXML:    rawXML.String,
		UpdatedAt: fromMillis(updatedAt),
	}
	if validUntil.Valid {
		rec.ValidUntil = fromMillis(validUntil.Int64)
	}
	return rec, nil
}

func (s *SQLiteStore) Update(ctx context.Context, sub domain.SubID, version domain.EntitlementVersion, rawXML string) (models.Record, error) {
	rec, err := buildRecord(sub, version, rawXML, requestcontext.Now(ctx))
	if err != nil {
		return models.Record{}, err
	}
	_, err = s.conn(ctx).ExecContext(ctx,
		`INSERT INTO entitlement_records (sub_id, entitlement_version, raw_xml, valid_until, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(sub_id) DO UPDATE SET
		   entitlement_version = excluded.entitlement_version,
		   raw_xml = excluded.raw_xml,
		   valid_until = excluded.valid_until,
		   updated_at = excluded.updated_at`,
		int(sub), int(rec.Version), nullString(rec.RawXML), nullMillis(rec.ValidUntil), toMillis(rec.UpdatedAt),
	)
	if err != nil {
		return models.Record{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "write entitlement record")
	}
	return rec, nil
}

func (s *SQLiteStore) Reset(ctx context.Context, sub domain.SubID) error {
	if _, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM entitlement_records WHERE sub_id = ?`, int(sub)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "reset entitlement record")
	}
	return nil
}

func (s *SQLiteStore) Slot(ctx context.Context, slot domain.SlotID) (models.SlotState, error) {
	if !slot.IsValid() {
		return models.SlotState{}, dErrors.New(dErrors.CodeInvalidInput, "invalid slot id")
	}
	st := models.EmptySlot(slot)
	var sub int
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT last_sub_id, last_boot_count FROM slot_bindings WHERE slot_id = ?`, int(slot),
	).Scan(&sub, &st.LastBootCount)
	if errors.Is(err, sql.ErrNoRows) {
		return st, nil
	}
	if err != nil {
		return models.SlotState{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "read slot binding")
	}
	st.SubID = domain.SubID(sub)
	return st, nil
}

func (s *SQLiteStore) BindSubscription(ctx context.Context, slot domain.SlotID, sub domain.SubID) error {
	if !slot.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid slot id")
	}
	_, err := s.conn(ctx).ExecContext(ctx,
		`INSERT INTO slot_bindings (slot_id, last_sub_id) VALUES (?, ?)
		 ON CONFLICT(slot_id) DO UPDATE SET last_sub_id = excluded.last_sub_id`,
		int(slot), int(sub),
	)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "write slot binding")
	}
	return nil
}

func (s *SQLiteStore) RecordBootCount(ctx context.Context, slot domain.SlotID, count int) error {
	if !slot.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid slot id")
	}
	_, err := s.conn(ctx).ExecContext(ctx,
		`INSERT INTO slot_bindings (slot_id, last_boot_count) VALUES (?, ?)
		 ON CONFLICT(slot_id) DO UPDATE SET last_boot_count = excluded.last_boot_count`,
		int(slot), count,
	)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "write boot count")
	}
	return nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

func nullMillis(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(t), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
