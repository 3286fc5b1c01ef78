package models

import (
	"time"
)

// MechanicComment is feedback left on a delivered request. Replies keep an
// id-only back-reference to their parent; deleting a parent nulls the link.
type MechanicComment struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Body      string    `gorm:"column:body;type:text;not null"`
	Rate      int       `gorm:"column:rate;not null"`
	Anonymous bool      `gorm:"column:anonymous;not null;default:false"`
	UserID    int64     `gorm:"column:user_id;not null;index"`
	RequestID int64     `gorm:"column:request_id;not null;index"`
	ParentID  *int64    `gorm:"column:parent_id;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
