package models

import (
	"time"
)

// Car belongs to exactly one user. Deleting the car cascades to its
// mechanic requests.
type Car struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Title        string    `gorm:"column:title;size:100;not null"`
	Category     string    `gorm:"column:category;size:100;not null"`
	Color        *string   `gorm:"column:color;size:50"`
	Trim         string    `gorm:"column:trim;size:100;not null"`
	ModelDate    time.Time `gorm:"column:model_date;type:date;not null"`
	Description  *string   `gorm:"column:description;type:text"`
	LicensePlate string    `gorm:"column:license_plate;size:8;not null"`
	UserID       int64     `gorm:"column:user_id;not null;index"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`

	MechanicRequests []MechanicCarRequest `gorm:"foreignKey:CarID;constraint:OnDelete:CASCADE"`
}
