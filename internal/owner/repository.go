// AngelaMos | 2026
// repository.go

package owner

import (
	"context"
	"fmt"
	"time"

	"github.com/carterperez-dev/tagback/internal/core"
)

type Checker interface {
	Eligibility(ctx context.Context, ownerID string) (Snapshot, error)
}

type repository struct {
	db  core.DBTX
	now func() time.Time
}

// NewRepository reads standing from the users and subscriptions tables,
// which belong to the account and billing services.
func NewRepository(db core.DBTX) Checker {
	return &repository{db: db, now: time.Now}
}

func (r *repository) Eligibility(
	ctx context.Context,
	ownerID string,
) (Snapshot, error) {
	query := `
		SELECT
			EXISTS(
				SELECT 1 FROM users
				WHERE id = $1 AND status = $2 AND deleted_at IS NULL
			) AS account_active,
			EXISTS(
				SELECT 1 FROM subscriptions
				WHERE user_id = $1
				  AND status IN ($3, $4)
				  AND (current_period_end IS NULL OR current_period_end > NOW())
			) AS subscription_active`

	var snap Snapshot
	err := r.db.GetContext(ctx, &snap, query,
		ownerID,
		AccountStatusActive,
		SubscriptionStatusActive,
		SubscriptionStatusTrialing,
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("check owner eligibility: %w", err)
	}

	snap.CheckedAt = r.now()
	return snap, nil
}
