package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CopiedPractice records one plant's adoption of a benchmarked practice:
// original practice -> newly created derivative practice -> copying plant.
//
// A plant copies a given original at most once; the composite unique index
// backs the Conflict check in the copy workflow. Rows are immutable after
// creation except for ImplementationStatus.
type CopiedPractice struct {
	Id                   string               `gorm:"type:uuid;primaryKey" json:"id"`
	OriginalPracticeId   string               `gorm:"type:uuid;not null;uniqueIndex:uq_copied_original_plant" json:"original_practice_id"`
	CopiedPracticeId     string               `gorm:"type:uuid;not null" json:"copied_practice_id"`
	CopyingPlantId       string               `gorm:"type:uuid;not null;uniqueIndex:uq_copied_original_plant" json:"copying_plant_id"`
	CopiedDate           time.Time            `gorm:"type:date;not null;index:,sort:desc" json:"copied_date"`
	ImplementationStatus ImplementationStatus `gorm:"size:50;not null;default:planning" json:"implementation_status"`
	CreatedAt            time.Time            `gorm:"autoCreateTime" json:"created_at"`

	OriginalPractice *BestPractice `gorm:"foreignKey:OriginalPracticeId" json:"original_practice,omitempty"`
	DerivedPractice  *BestPractice `gorm:"foreignKey:CopiedPracticeId" json:"derived_practice,omitempty"`
	CopyingPlant     *Plant        `gorm:"foreignKey:CopyingPlantId" json:"copying_plant,omitempty"`
}

func (c *CopiedPractice) BeforeCreate(tx *gorm.DB) error {
	if c.Id == "" {
		c.Id = uuid.NewString()
	}
	return nil
}
