package models

import (
	"time"

	"github.com/mechanix-app/mechanix-backend/pkg/enums"
)

// MechanicCarRequest ties a car to a mechanic for one repair cycle. The
// partial unique index mcr_one_open_request_per_car (see migrations) keeps at
// most one non-delivered request per car.
type MechanicCarRequest struct {
	ID          int64               `gorm:"column:id;primaryKey;autoIncrement"`
	Status      enums.RequestStatus `gorm:"column:status;type:mechanic_car_request_status;not null;default:'pending'"`
	Issue       enums.RequestIssue  `gorm:"column:issue;type:mechanic_car_request_issue;not null"`
	Description string              `gorm:"column:description;type:text;not null"`
	CarID       int64               `gorm:"column:car_id;not null;index"`
	MechanicID  int64               `gorm:"column:mechanic_id;not null;index"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`

	Car      *Car              `gorm:"foreignKey:CarID"`
	Mechanic *Mechanic         `gorm:"foreignKey:MechanicID"`
	Comments []MechanicComment `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
}
