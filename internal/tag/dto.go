// AngelaMos | 2026
// dto.go

package tag

import (
	"time"
)

type OwnerParams struct {
	OwnerID string `validate:"required,uuid"`
}

type TagResponse struct {
	DisplayID string    `json:"display_id"`
	Token     string    `json:"token"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type ActivationResponse struct {
	Tag     TagResponse `json:"tag"`
	Created bool        `json:"created"`
}

func ToTagResponse(r *Record) TagResponse {
	return TagResponse{
		DisplayID: r.DisplayID,
		Token:     r.Token,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
}
