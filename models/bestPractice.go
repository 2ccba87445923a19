package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BestPractice is an improvement submission, the core business entity.
//
// Savings count toward aggregation only when Status is approved and
// IsDeleted is false. Rows are never hard-deleted; IsDeleted is the only
// delete path so copy provenance stays intact.
type BestPractice struct {
	Id                string `gorm:"type:uuid;primaryKey" json:"id"`
	Title             string `gorm:"size:255;not null;index" json:"title"`
	Description       string `gorm:"type:text;not null" json:"description"`
	CategoryId        string `gorm:"type:uuid;not null;index" json:"category_id"`
	SubmittedByUserId string `gorm:"type:uuid;not null" json:"submitted_by_user_id"`
	PlantId           string `gorm:"type:uuid;not null;index:idx_best_practices_plant_date" json:"plant_id"`
	ProblemStatement  string `gorm:"type:text;not null" json:"problem_statement"`
	Solution          string `gorm:"type:text;not null" json:"solution"`
	Benefits          []byte `gorm:"type:jsonb" json:"benefits"`
	Metrics           string `gorm:"type:text" json:"metrics"`
	Implementation    string `gorm:"type:text" json:"implementation"`
	Investment        string `gorm:"type:text" json:"investment"`

	SavingsAmount   *decimal.Decimal `gorm:"type:decimal(12,2)" json:"savings_amount"`
	SavingsCurrency SavingsCurrency  `gorm:"size:20" json:"savings_currency"`
	SavingsPeriod   SavingsPeriod    `gorm:"size:20" json:"savings_period"`
	AreaImplemented string           `gorm:"size:255" json:"area_implemented"`

	Status        PracticeStatus `gorm:"size:50;not null;default:draft;index" json:"status"`
	SubmittedDate *time.Time     `gorm:"type:date;index:idx_best_practices_plant_date" json:"submitted_date"`
	IsDeleted     bool           `gorm:"not null;default:false" json:"is_deleted"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryId" json:"category,omitempty"`
	Plant    *Plant    `gorm:"foreignKey:PlantId" json:"plant,omitempty"`
}

func (p *BestPractice) BeforeCreate(tx *gorm.DB) error {
	if p.Id == "" {
		p.Id = uuid.NewString()
	}
	return nil
}

// DeriveForCopy builds the derivative practice another plant creates when it
// copies this one. Title and solution are overridable; everything else is
// carried over. The derivative starts life as submitted.
func (p *BestPractice) DeriveForCopy(copyingPlantId, copiedByUserId string, customizedTitle, customizedSolution *string) *BestPractice {
	now := time.Now().UTC()
	submitted := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	derived := &BestPractice{
		Title:             p.Title,
		Description:       p.Description,
		CategoryId:        p.CategoryId,
		SubmittedByUserId: copiedByUserId,
		PlantId:           copyingPlantId,
		ProblemStatement:  p.ProblemStatement,
		Solution:          p.Solution,
		Benefits:          p.Benefits,
		Metrics:           p.Metrics,
		Implementation:    p.Implementation,
		Investment:        p.Investment,
		SavingsAmount:     p.SavingsAmount,
		SavingsCurrency:   p.SavingsCurrency,
		SavingsPeriod:     p.SavingsPeriod,
		AreaImplemented:   p.AreaImplemented,
		Status:            PracticeStatusSubmitted,
		SubmittedDate:     &submitted,
	}
	if customizedTitle != nil && *customizedTitle != "" {
		derived.Title = *customizedTitle
	}
	if customizedSolution != nil && *customizedSolution != "" {
		derived.Solution = *customizedSolution
	}
	return derived
}
