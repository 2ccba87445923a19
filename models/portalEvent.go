package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/amberworks/bestflow_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PortalEventRecord implements the transactional outbox for domain events:
// the row is written inside the caller's DB transaction and published to
// Pub/Sub asynchronously by the outbox dispatcher after commit. The external
// notification service (WebSocket fan-out, e-mail) subscribes to the topic.
type PortalEventRecord struct {
	Id        string          `gorm:"type:uuid;primaryKey" json:"id"`
	EventType PortalEventType `gorm:"size:50;not null;index" json:"event_type"`
	// PracticeId is the practice the event is about (the original, for copy
	// events); nil for events about no single practice, like
	// leaderboard.updated.
	PracticeId *string   `gorm:"type:uuid;index" json:"practice_id"`
	PlantId    *string   `gorm:"type:uuid" json:"plant_id"`
	OccurredAt time.Time `gorm:"not null;index" json:"occurred_at"`
	Payload    []byte    `gorm:"type:jsonb" json:"payload"`

	// Outbox metadata (publish happens after commit via dispatcher).
	PublishStatus    OutboxPublishStatus `gorm:"size:20;not null;default:'PENDING';index:idx_portal_events_dispatch,priority:1" json:"publish_status"`
	PublishedAt      *time.Time          `gorm:"index" json:"published_at"`
	PubSubMessageId  *string             `gorm:"size:255" json:"pubsub_message_id"`
	PublishAttempts  int                 `gorm:"not null;default:0" json:"publish_attempts"`
	NextAttemptAt    *time.Time          `gorm:"index:idx_portal_events_dispatch,priority:2" json:"next_attempt_at"`
	LockedAt         *time.Time          `gorm:"index" json:"locked_at"`
	LockedBy         *string             `gorm:"size:100" json:"locked_by"`
	LastPublishError *string             `gorm:"type:text" json:"last_publish_error"`
	CorrelationId    string              `gorm:"size:64;index" json:"correlation_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *PortalEventRecord) BeforeCreate(tx *gorm.DB) error {
	if r.Id == "" {
		r.Id = uuid.NewString()
	}
	return nil
}

// EmitPortalEvent writes an outbox row inside the caller's transaction.
// It does NOT publish; the dispatcher picks the row up after commit, so a
// rolled-back mutation never leaks an event.
func EmitPortalEvent(ctx context.Context, db *gorm.DB, eventType PortalEventType, practiceId, plantId string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	record := PortalEventRecord{
		EventType:     eventType,
		PracticeId:    uuidOrNil(practiceId),
		PlantId:       uuidOrNil(plantId),
		OccurredAt:    time.Now().UTC(),
		Payload:       body,
		PublishStatus: OutboxPublishStatusPending,
		CorrelationId: correlationIdFromContextOrNew(ctx),
	}
	return db.WithContext(ctx).Create(&record).Error
}

func uuidOrNil(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}
