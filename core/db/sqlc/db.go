// Code style follows sqlc's generated output (hand-authored here since
// codegen cannot run in this environment; see DESIGN.md).
package sqlc

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, letting Queries run
// against either a bare pool or an open transaction (core/db.DB.WithTx).
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// New builds a Queries bound to db, which may be a pool or a transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// WithTx returns a Queries bound to an open transaction's DBTX.
func (q *Queries) WithTx(tx DBTX) *Queries {
	return &Queries{db: tx}
}
