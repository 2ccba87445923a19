package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Plant is a manufacturing site: the organizational unit that owns practices
// and accrues leaderboard points.
type Plant struct {
	Id        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	ShortName string    `gorm:"size:100;not null" json:"short_name"`
	Division  string    `gorm:"size:100;not null" json:"division"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Plant) BeforeCreate(tx *gorm.DB) error {
	if p.Id == "" {
		p.Id = uuid.NewString()
	}
	return nil
}

func GetPlant(ctx context.Context, db *gorm.DB, id string) (*Plant, error) {
	var plant Plant
	if err := db.WithContext(ctx).Where("id = ?", id).First(&plant).Error; err != nil {
		return nil, err
	}
	return &plant, nil
}

func ActivePlants(ctx context.Context, db *gorm.DB) ([]Plant, error) {
	var plants []Plant
	if err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name asc").
		Find(&plants).Error; err != nil {
		return nil, err
	}
	return plants, nil
}
