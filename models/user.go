package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User submits practices (plant_user) or curates benchmarks (hq_admin).
// Authentication and password handling live in the surrounding API layer.
type User struct {
	Id        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	FullName  string    `gorm:"size:255;not null" json:"full_name"`
	Role      UserRole  `gorm:"size:50;not null;default:plant_user" json:"role"`
	PlantId   *string   `gorm:"type:uuid;index" json:"plant_id"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Plant *Plant `gorm:"foreignKey:PlantId" json:"plant,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Id == "" {
		u.Id = uuid.NewString()
	}
	return nil
}
