package models

import (
	"time"
)

// RevokedToken blacklists a refresh token jti after rotation or logout.
type RevokedToken struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64     `gorm:"column:user_id;not null;index"`
	JTI       string    `gorm:"column:jti;size:128;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
