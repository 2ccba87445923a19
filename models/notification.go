package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is a per-user inbox row. Delivery (WebSocket push) is done by
// the external dispatcher consuming portal events; this table is the durable
// record behind the bell icon.
type Notification struct {
	Id                string           `gorm:"type:uuid;primaryKey" json:"id"`
	UserId            string           `gorm:"type:uuid;not null;index:idx_notifications_user_read,priority:1" json:"user_id"`
	Type              NotificationType `gorm:"size:50;not null" json:"type"`
	Title             string           `gorm:"size:255;not null" json:"title"`
	Message           string           `gorm:"type:text;not null" json:"message"`
	RelatedPracticeId string           `gorm:"type:uuid;not null" json:"related_practice_id"`
	IsRead            bool             `gorm:"not null;default:false;index:idx_notifications_user_read,priority:2" json:"is_read"`
	CreatedAt         time.Time        `gorm:"autoCreateTime;index:,sort:desc" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.Id == "" {
		n.Id = uuid.NewString()
	}
	return nil
}

func UnreadNotificationCount(ctx context.Context, db *gorm.DB, userId string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userId, false).
		Count(&count).Error
	return count, err
}

func MarkNotificationRead(ctx context.Context, db *gorm.DB, userId, notificationId string) error {
	return db.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND user_id = ?", notificationId, userId).
		Update("is_read", true).Error
}
