// AngelaMos | 2026
// tx.go

package tag

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/tagback/internal/core"
)

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(repo Repository) error) error
}

type pgTxRunner struct {
	db *sqlx.DB
}

func NewTxRunner(db *sqlx.DB) TxRunner {
	return &pgTxRunner{db: db}
}

func (p *pgTxRunner) RunInTx(
	ctx context.Context,
	fn func(repo Repository) error,
) error {
	return core.InTx(ctx, p.db, func(tx *sqlx.Tx) error {
		return fn(NewRepository(tx))
	})
}

// MemoryTxRunner hands the shared repository to fn. Atomicity comes from
// the repository's own insert-if-absent, not from rollback.
type MemoryTxRunner struct {
	Repo Repository
}

func (m MemoryTxRunner) RunInTx(
	_ context.Context,
	fn func(repo Repository) error,
) error {
	return fn(m.Repo)
}
