package permissions

import (
	"time"

	"github.com/mechanix-app/mechanix-backend/pkg/db/models"
	"github.com/mechanix-app/mechanix-backend/pkg/pagination"
)

// IssueInput holds the fields an admin supplies when minting an admission key.
type IssueInput struct {
	UserID    int64
	ExpiresAt *time.Time
}

// ListParams bounds the list window.
type ListParams struct {
	UserID     int64
	Pagination pagination.Params
}

// Permission is the wire representation of an admission key. The raw key is
// only revealed on issuance.
type Permission struct {
	ID        int64      `json:"id"`
	Key       string     `json:"key,omitempty"`
	UserID    int64      `json:"user_id"`
	IsUsed    bool       `json:"is_used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func toPermission(row *models.MechanicPermission, includeKey bool) *Permission {
	if row == nil {
		return nil
	}
	out := &Permission{
		ID:        row.ID,
		UserID:    row.UserID,
		IsUsed:    row.IsUsed,
		UsedAt:    row.UsedAt,
		ExpiresAt: row.ExpiresAt,
		CreatedAt: row.CreatedAt,
	}
	if includeKey {
		out.Key = row.Key
	}
	return out
}

func toPermissions(rows []models.MechanicPermission) []Permission {
	out := make([]Permission, len(rows))
	for i := range rows {
		out[i] = *toPermission(&rows[i], false)
	}
	return out
}
