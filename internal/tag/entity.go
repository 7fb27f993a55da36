// AngelaMos | 2026
// entity.go

package tag

import (
	"time"
)

// Record binds one owner to a permanent display identifier and token.
// Only Status changes after creation.
type Record struct {
	ID        string    `db:"id"`
	OwnerID   string    `db:"owner_id"`
	DisplayID string    `db:"display_id"`
	Token     string    `db:"token"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *Record) IsActive() bool {
	return r.Status == StatusActive
}

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Pair struct {
	DisplayID string
	Token     string
}
