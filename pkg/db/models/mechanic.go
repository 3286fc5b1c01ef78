package models

import (
	"time"

	"github.com/mechanix-app/mechanix-backend/pkg/types"
)

// Mechanic is the workshop profile a user unlocks with a permission key.
// At most one mechanic exists per user.
type Mechanic struct {
	ID          int64                 `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string                `gorm:"column:name;size:150;not null"`
	Description *string               `gorm:"column:description;type:text"`
	Location    *types.GeographyPoint `gorm:"column:location;type:geography(point,4326)"`
	UserID      int64                 `gorm:"column:user_id;not null;uniqueIndex"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`

	Requests []MechanicCarRequest `gorm:"foreignKey:MechanicID;constraint:OnDelete:CASCADE"`
}
