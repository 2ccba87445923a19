package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BenchmarkedPractice marks a practice as exemplary and copy-eligible.
// At most one benchmark per practice; removal is guarded by copy count.
type BenchmarkedPractice struct {
	Id                  string    `gorm:"type:uuid;primaryKey" json:"id"`
	PracticeId          string    `gorm:"type:uuid;not null;uniqueIndex" json:"practice_id"`
	BenchmarkedByUserId string    `gorm:"type:uuid;not null" json:"benchmarked_by_user_id"`
	BenchmarkedDate     time.Time `gorm:"type:date;not null;index:,sort:desc" json:"benchmarked_date"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`

	Practice *BestPractice `gorm:"foreignKey:PracticeId" json:"practice,omitempty"`
}

func (b *BenchmarkedPractice) BeforeCreate(tx *gorm.DB) error {
	if b.Id == "" {
		b.Id = uuid.NewString()
	}
	return nil
}
