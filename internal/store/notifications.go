package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"stockroom/internal/models"
)

type NotificationInput struct {
	Recipient string                  `json:"recipient"`
	Type      models.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Link      string                  `json:"link"`
}

func (in *NotificationInput) normalize() error {
	in.Recipient = strings.TrimSpace(in.Recipient)
	if in.Type == "" {
		in.Type = models.NotifySystem
	}
	switch {
	case in.Recipient == "":
		return invalid("recipient", "required")
	case in.Title == "":
		return invalid("title", "required")
	case !in.Type.Valid():
		return invalid("type", fmt.Sprintf("unknown notification type %q", in.Type))
	}
	return nil
}

// Notify always appends a new notification; there is no deduplication.
func (s *Store) Notify(ctx context.Context, in NotificationInput) (models.Notification, error) {
	var n models.Notification
	err := s.write(ctx, func(tx *gorm.DB) error {
		var err error
		n, err = s.notify(tx, in)
		return err
	})
	return n, err
}

func (s *Store) notify(tx *gorm.DB, in NotificationInput) (models.Notification, error) {
	if err := in.normalize(); err != nil {
		return models.Notification{}, err
	}
	id, err := s.newKey(tx, &models.Notification{}, "notification_id", "NTF")
	if err != nil {
		return models.Notification{}, err
	}
	n := models.Notification{
		NotificationID: id,
		CreatedAt:      s.now(),
		Recipient:      in.Recipient,
		Type:           in.Type,
		Title:          in.Title,
		Message:        in.Message,
		Link:           in.Link,
	}
	if err := tx.Create(&n).Error; err != nil {
		return models.Notification{}, fmt.Errorf("append notification: %w", err)
	}
	s.lg.Debugw("notification queued", "id", id, "recipient", in.Recipient, "type", in.Type)
	return n, nil
}

// ListNotifications returns the user's own and broadcast notifications,
// newest first.
func (s *Store) ListNotifications(ctx context.Context, username string) ([]models.Notification, error) {
	var out []models.Notification
	err := s.read(ctx).Where("recipient IN ?", []string{username, models.Broadcast}).Order("id desc").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (s *Store) UnreadCount(ctx context.Context, username string) (int64, error) {
	var n int64
	err := s.read(ctx).Model(&models.Notification{}).
		Where("recipient IN ? AND read = ?", []string{username, models.Broadcast}, false).
		Count(&n).Error
	return n, err
}

// MarkRead is idempotent; it reports false when the id is unknown or, for a
// non-empty username, addressed to someone else. Broadcasts belong to all.
func (s *Store) MarkRead(ctx context.Context, id, username string) (bool, error) {
	var found bool
	err := s.write(ctx, func(tx *gorm.DB) error {
		q := tx.Model(&models.Notification{}).Where("notification_id = ?", id)
		if username != "" {
			q = q.Where("recipient IN ?", []string{username, models.Broadcast})
		}
		var n int64
		if err := q.Count(&n).Error; err != nil || n == 0 {
			return err
		}
		found = true
		return tx.Model(&models.Notification{}).Where("notification_id = ?", id).Update("read", true).Error
	})
	return found, err
}
