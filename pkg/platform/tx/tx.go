package tx

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"
)

type ctxKey struct{}

type sqlCtxKey struct{}

var (
	txKey    = ctxKey{}
	sqlTxKey = sqlCtxKey{}
)

// WithTx stores a pgx transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a pgx transaction from context if present.
func From(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey).(pgx.Tx)
	return tx, ok
}

// WithSQLTx stores a database/sql transaction in context.
func WithSQLTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, sqlTxKey, tx)
}

// SQLFrom extracts a database/sql transaction from context if present.
func SQLFrom(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(sqlTxKey).(*sql.Tx)
	return tx, ok
}
