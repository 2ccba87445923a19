package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LeaderboardEntry is the per-plant-per-year point ledger.
//
// TotalPoints = OriginPoints + CopierPoints at all times. Entries are created
// lazily on first award and only ever incremented by normal operation;
// the recalculation workflow rebuilds the whole year from the
// benchmark/copy log and must land on identical totals.
type LeaderboardEntry struct {
	Id           string    `gorm:"type:uuid;primaryKey" json:"id"`
	PlantId      string    `gorm:"type:uuid;not null;uniqueIndex:uq_leaderboard_plant_year" json:"plant_id"`
	Year         int       `gorm:"not null;uniqueIndex:uq_leaderboard_plant_year;index:idx_leaderboard_year_points,priority:1" json:"year"`
	TotalPoints  int       `gorm:"not null;default:0;index:idx_leaderboard_year_points,priority:2,sort:desc" json:"total_points"`
	OriginPoints int       `gorm:"not null;default:0" json:"origin_points"`
	CopierPoints int       `gorm:"not null;default:0" json:"copier_points"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Plant *Plant `gorm:"foreignKey:PlantId" json:"plant,omitempty"`
}

func (e *LeaderboardEntry) BeforeCreate(tx *gorm.DB) error {
	if e.Id == "" {
		e.Id = uuid.NewString()
	}
	return nil
}
