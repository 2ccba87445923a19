package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MonthlySavings is the per-plant-per-month rollup read by dashboards.
//
// Grain: (plant_id, year, month). Amounts are stored normalized to lakhs.
//
// NOTE: This table is derived data; it is upserted only by the savings
// aggregator and can be rebuilt from best_practices at any time.
type MonthlySavings struct {
	Id              string          `gorm:"type:uuid;primaryKey" json:"id"`
	PlantId         string          `gorm:"type:uuid;not null;uniqueIndex:uq_monthly_savings_plant_year_month" json:"plant_id"`
	Year            int             `gorm:"not null;uniqueIndex:uq_monthly_savings_plant_year_month" json:"year"`
	Month           int             `gorm:"not null;uniqueIndex:uq_monthly_savings_plant_year_month" json:"month"`
	TotalSavings    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_savings"`
	SavingsCurrency SavingsCurrency `gorm:"size:20;not null;default:lakhs" json:"savings_currency"`
	PracticeCount   int             `gorm:"not null;default:0" json:"practice_count"`
	Stars           int             `gorm:"not null;default:0" json:"stars"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m *MonthlySavings) BeforeCreate(tx *gorm.DB) error {
	if m.Id == "" {
		m.Id = uuid.NewString()
	}
	return nil
}
