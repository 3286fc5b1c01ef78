package models

import (
	"time"
)

// MechanicPermission is a single-use admission key an admin issues to a
// specific user so they can open a mechanic profile.
type MechanicPermission struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Key       string     `gorm:"column:key;size:100;not null;uniqueIndex"`
	UserID    int64      `gorm:"column:user_id;not null;index"`
	IsUsed    bool       `gorm:"column:is_used;not null;default:false"`
	UsedAt    *time.Time `gorm:"column:used_at"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
