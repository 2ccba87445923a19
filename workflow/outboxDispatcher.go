package workflow

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/amberworks/bestflow_backend/config"
	"github.com/amberworks/bestflow_backend/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventPublisher delivers one outbox row to the event transport and returns
// the transport's message id.
type EventPublisher interface {
	Publish(ctx context.Context, record models.PortalEventRecord) (string, error)
}

// PubSubEventPublisher publishes portal events to the Google Pub/Sub topic
// the notification dispatcher subscribes to.
type PubSubEventPublisher struct {
	topic *pubsub.Topic
}

func NewPubSubEventPublisher(ctx context.Context) (*PubSubEventPublisher, error) {
	client, err := config.GetPubSubClient(ctx)
	if err != nil {
		return nil, err
	}
	topic, err := config.CreateTopicIfNotExists(client, config.PortalEventTopicName())
	if err != nil {
		return nil, err
	}
	return &PubSubEventPublisher{topic: topic}, nil
}

func (p *PubSubEventPublisher) Publish(ctx context.Context, record models.PortalEventRecord) (string, error) {
	attributes := map[string]string{
		"event_type":     string(record.EventType),
		"correlation_id": record.CorrelationId,
		"occurred_at":    record.OccurredAt.Format(time.RFC3339Nano),
	}
	if record.PracticeId != nil {
		attributes["practice_id"] = *record.PracticeId
	}
	if record.PlantId != nil {
		attributes["plant_id"] = *record.PlantId
	}
	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       record.Payload,
		Attributes: attributes,
	})
	return result.Get(ctx)
}

// OutboxDispatcher drains portal_event_records: it claims due rows, publishes
// them, and records the outcome. Multiple dispatchers can run at once; SKIP
// LOCKED keeps their batches disjoint and stale-lock reclaim covers a
// dispatcher dying mid-batch.
type OutboxDispatcher struct {
	DB           *gorm.DB
	Publisher    EventPublisher
	Logger       *logrus.Logger
	DispatcherID string

	BatchSize      int
	PollInterval   time.Duration
	LockTimeout    time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func NewOutboxDispatcher(db *gorm.DB, publisher EventPublisher, logger *logrus.Logger) *OutboxDispatcher {
	return &OutboxDispatcher{
		DB:             db,
		Publisher:      publisher,
		Logger:         logger,
		DispatcherID:   uuid.NewString(),
		BatchSize:      50,
		PollInterval:   500 * time.Millisecond,
		LockTimeout:    30 * time.Second,
		MaxAttempts:    20,
		InitialBackoff: 5 * time.Second,
		MaxBackoff:     10 * time.Minute,
	}
}

func (d *OutboxDispatcher) Run(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		d.DispatchOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.PollInterval):
		}
	}
}

// DispatchOnce claims one batch and publishes it.
func (d *OutboxDispatcher) DispatchOnce(ctx context.Context) {
	if d.DB == nil || d.Publisher == nil {
		return
	}
	now := time.Now().UTC()
	staleBefore := now.Add(-d.LockTimeout)

	var claimed []models.PortalEventRecord
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Eligible:
		// - PENDING / FAILED and due for (re)try
		// - PROCESSING with a stale lock (dispatcher crashed mid-batch)
		q := tx.
			Where(`
				(
					publish_status IN ? AND (next_attempt_at IS NULL OR next_attempt_at <= ?)
				)
				OR
				(
					publish_status = ? AND locked_at IS NOT NULL AND locked_at <= ?
				)
			`, []models.OutboxPublishStatus{models.OutboxPublishStatusPending, models.OutboxPublishStatusFailed}, now, models.OutboxPublishStatusProcessing, staleBefore).
			Order("created_at ASC").
			Limit(d.BatchSize).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		if err := q.Find(&claimed).Error; err != nil {
			return err
		}

		for i := range claimed {
			// Poison messages go terminal after MaxAttempts.
			if d.MaxAttempts > 0 && claimed[i].PublishAttempts >= d.MaxAttempts {
				msg := fmt.Sprintf("max publish attempts exceeded (%d)", d.MaxAttempts)
				claimed[i].PublishStatus = models.OutboxPublishStatusDead
				if err := tx.Model(&models.PortalEventRecord{}).Where("id = ?", claimed[i].Id).Updates(map[string]interface{}{
					"publish_status":     models.OutboxPublishStatusDead,
					"last_publish_error": &msg,
					"next_attempt_at":    nil,
					"locked_at":          nil,
					"locked_by":          nil,
				}).Error; err != nil {
					return err
				}
				continue
			}

			claimed[i].PublishStatus = models.OutboxPublishStatusProcessing
			claimed[i].LockedAt = &now
			claimed[i].LockedBy = &d.DispatcherID
			claimed[i].PublishAttempts++
			claimed[i].LastPublishError = nil
			if err := tx.Model(&models.PortalEventRecord{}).Where("id = ?", claimed[i].Id).Updates(map[string]interface{}{
				"publish_status":     claimed[i].PublishStatus,
				"locked_at":          claimed[i].LockedAt,
				"locked_by":          claimed[i].LockedBy,
				"publish_attempts":   gorm.Expr("publish_attempts + 1"),
				"last_publish_error": nil,
				"next_attempt_at":    nil,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil || len(claimed) == 0 {
		return
	}

	for _, rec := range claimed {
		if rec.PublishStatus == models.OutboxPublishStatusDead {
			continue
		}
		msgId, pubErr := d.Publisher.Publish(ctx, rec)
		if pubErr != nil {
			d.markPublishFailed(ctx, rec.Id, pubErr, rec.PublishAttempts)
			continue
		}
		d.markPublished(ctx, rec.Id, msgId, now)
	}
}

func (d *OutboxDispatcher) markPublished(ctx context.Context, recordId, pubsubMsgId string, now time.Time) {
	_ = d.DB.WithContext(ctx).Model(&models.PortalEventRecord{}).
		Where("id = ?", recordId).
		Updates(map[string]interface{}{
			"publish_status":     models.OutboxPublishStatusPublished,
			"published_at":       &now,
			"pub_sub_message_id": &pubsubMsgId,
			"locked_at":          nil,
			"locked_by":          nil,
			"next_attempt_at":    nil,
		}).Error
}

func (d *OutboxDispatcher) markPublishFailed(ctx context.Context, recordId string, err error, attempt int) {
	now := time.Now().UTC()
	msg := err.Error()

	if d.MaxAttempts > 0 && attempt >= d.MaxAttempts {
		_ = d.DB.WithContext(ctx).Model(&models.PortalEventRecord{}).
			Where("id = ?", recordId).
			Updates(map[string]interface{}{
				"publish_status":     models.OutboxPublishStatusDead,
				"last_publish_error": &msg,
				"next_attempt_at":    nil,
				"locked_at":          nil,
				"locked_by":          nil,
			}).Error

		if d.Logger != nil {
			d.Logger.WithFields(logrus.Fields{
				"record_id": recordId,
				"attempt":   attempt,
			}).Error("portal event moved to DEAD after max attempts: " + msg)
		}
		return
	}

	next := now.Add(d.backoff(attempt))
	_ = d.DB.WithContext(ctx).Model(&models.PortalEventRecord{}).
		Where("id = ?", recordId).
		Updates(map[string]interface{}{
			"publish_status":     models.OutboxPublishStatusFailed,
			"last_publish_error": &msg,
			"next_attempt_at":    &next,
			"locked_at":          nil,
			"locked_by":          nil,
		}).Error

	if d.Logger != nil {
		d.Logger.WithFields(logrus.Fields{
			"record_id":       recordId,
			"attempt":         attempt,
			"next_attempt_at": next.Format(time.RFC3339Nano),
		}).Error("portal event publish failed: " + msg)
	}
}

func (d *OutboxDispatcher) backoff(attempt int) time.Duration {
	backoff := d.InitialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
		if backoff >= d.MaxBackoff {
			return d.MaxBackoff
		}
	}
	return backoff
}
