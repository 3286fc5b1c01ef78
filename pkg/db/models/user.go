package models

import (
	"time"

	"github.com/mechanix-app/mechanix-backend/pkg/enums"
)

// User represents the canonical identity entity. Accounts start inactive and
// become active once the signup OTP is verified.
type User struct {
	ID           int64          `gorm:"column:id;primaryKey;autoIncrement"`
	PhoneNumber  string         `gorm:"column:phone_number;size:15;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	FirstName    string         `gorm:"column:first_name;size:100;not null"`
	LastName     string         `gorm:"column:last_name;size:100;not null"`
	Avatar       *string        `gorm:"column:avatar;size:200"`
	Role         enums.UserRole `gorm:"column:role;type:user_role;not null;default:'user'"`
	IsActive     bool           `gorm:"column:is_active;not null;default:false"`
	IsDeleted    bool           `gorm:"column:is_deleted;not null;default:false"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`

	Cars     []Car     `gorm:"foreignKey:UserID"`
	Mechanic *Mechanic `gorm:"foreignKey:UserID"`
}
