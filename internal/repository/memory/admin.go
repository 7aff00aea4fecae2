package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/javajoker/marketplace-catalog/internal/models"
)

type auditLogRepository struct {
	s *Store
}

func (r *auditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.stamp(&entry.BaseModel, true)
	c := *entry
	r.s.auditLogs = append(r.s.auditLogs, &c)
	return nil
}

func (r *auditLogRepository) ListByResource(ctx context.Context, resourceType string, resourceID uuid.UUID) ([]*models.AuditLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var entries []*models.AuditLog
	for _, e := range r.s.auditLogs {
		if e.ResourceType == resourceType && e.ResourceID != nil && *e.ResourceID == resourceID {
			c := *e
			entries = append(entries, &c)
		}
	}
	return entries, nil
}

type notificationRepository struct {
	s *Store
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.stamp(&notification.BaseModel, true)
	if notification.Status == "" {
		notification.Status = models.NotificationStatusUnread
	}
	c := *notification
	r.s.notifications = append(r.s.notifications, &c)
	return nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*models.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*models.Notification
	for _, n := range r.s.notifications {
		if n.RecipientID == recipientID {
			c := *n
			out = append(out, &c)
		}
	}
	return out, nil
}
