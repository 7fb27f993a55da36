// AngelaMos | 2026
// repository.go

package tag

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/tagback/internal/core"
)

// Uniqueness is the read side the allocator needs from a store.
type Uniqueness interface {
	ExistsByDisplayID(ctx context.Context, displayID string) (bool, error)
	ExistsByToken(ctx context.Context, token string) (bool, error)
}

type Repository interface {
	Uniqueness
	Create(ctx context.Context, rec *Record) error
	GetByDisplayID(ctx context.Context, displayID string) (*Record, error)
	GetByToken(ctx context.Context, token string) (*Record, error)
	GetByOwnerID(ctx context.Context, ownerID string) (*Record, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const recordColumns = `id, owner_id, display_id, token, status, created_at, updated_at`

// Create inserts rec only if no row shares its owner, display id or token.
// Any such conflict is reported as core.ErrDuplicateKey.
func (r *repository) Create(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO tags (id, owner_id, display_id, token, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING
		RETURNING created_at, updated_at`

	row := struct {
		CreatedAt sql.NullTime `db:"created_at"`
		UpdatedAt sql.NullTime `db:"updated_at"`
	}{}

	err := r.db.GetContext(ctx, &row, query,
		rec.ID,
		rec.OwnerID,
		rec.DisplayID,
		rec.Token,
		rec.Status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("create tag: %w", core.ErrDuplicateKey)
	}
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create tag: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create tag: %w", err)
	}

	rec.CreatedAt = row.CreatedAt.Time
	rec.UpdatedAt = row.UpdatedAt.Time

	return nil
}

func (r *repository) GetByDisplayID(
	ctx context.Context,
	displayID string,
) (*Record, error) {
	return r.getOne(ctx, "get tag by display id",
		`SELECT `+recordColumns+` FROM tags WHERE display_id = $1`, displayID)
}

func (r *repository) GetByToken(
	ctx context.Context,
	token string,
) (*Record, error) {
	return r.getOne(ctx, "get tag by token",
		`SELECT `+recordColumns+` FROM tags WHERE token = $1`, token)
}

func (r *repository) GetByOwnerID(
	ctx context.Context,
	ownerID string,
) (*Record, error) {
	return r.getOne(ctx, "get tag by owner",
		`SELECT `+recordColumns+` FROM tags WHERE owner_id = $1`, ownerID)
}

func (r *repository) getOne(
	ctx context.Context,
	op, query string,
	arg string,
) (*Record, error) {
	var rec Record
	err := r.db.GetContext(ctx, &rec, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &rec, nil
}

func (r *repository) UpdateStatus(
	ctx context.Context,
	id, status string,
) error {
	query := `
		UPDATE tags
		SET status = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update tag status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tag status: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update tag status: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ExistsByDisplayID(
	ctx context.Context,
	displayID string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM tags WHERE display_id = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, displayID); err != nil {
		return false, fmt.Errorf("check display id exists: %w", err)
	}

	return exists, nil
}

func (r *repository) ExistsByToken(
	ctx context.Context,
	token string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM tags WHERE token = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, token); err != nil {
		return false, fmt.Errorf("check token exists: %w", err)
	}

	return exists, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM tags`); err != nil {
		return 0, fmt.Errorf("count tags: %w", err)
	}

	return total, nil
}
