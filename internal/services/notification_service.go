// internal/services/notification_service.go
package services

import (
	"bytes"
	"context"
	"text/template"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/marketplace-catalog/internal/models"
	"github.com/javajoker/marketplace-catalog/internal/repository"
)

// Notifier queues a message for the party affected by a decision.
type Notifier interface {
	Notify(ctx context.Context, req NotificationRequest) error
}

type NotificationRequest struct {
	RecipientID  uuid.UUID
	Type         string
	ResourceType string
	ResourceID   uuid.UUID
	Data         map[string]interface{}
}

type notificationTemplate struct {
	Title string
	Body  string
}

var notificationTemplates = map[string]notificationTemplate{
	models.NotificationVendorApproved: {
		Title: "Your vendor account was approved",
		Body:  "{{.BusinessName}} can now list products.{{if .Feedback}} Feedback: {{.Feedback}}{{end}}",
	},
	models.NotificationVendorRejected: {
		Title: "Your vendor application was rejected",
		Body:  "{{.BusinessName}} was not approved. Reason: {{.Reason}}",
	},
	models.NotificationVendorSuspended: {
		Title: "Your vendor account was suspended",
		Body:  "{{.BusinessName}} has been suspended and its products are hidden. Reason: {{.Reason}}",
	},
	models.NotificationProductApproved: {
		Title: "Product approved",
		Body:  "{{.ProductName}} was approved.{{if .Feedback}} Feedback: {{.Feedback}}{{end}}",
	},
	models.NotificationProductRejected: {
		Title: "Product rejected",
		Body:  "{{.ProductName}} was rejected. Reason: {{.Reason}}",
	},
}

type NotificationService struct {
	notifications repository.NotificationRepository
	templates     map[string]*template.Template
	log           logrus.FieldLogger
}

func NewNotificationService(notifications repository.NotificationRepository, log logrus.FieldLogger) *NotificationService {
	templates := make(map[string]*template.Template, len(notificationTemplates))
	for name, tpl := range notificationTemplates {
		templates[name] = template.Must(template.New(name).Parse(tpl.Body))
	}
	return &NotificationService{notifications: notifications, templates: templates, log: log}
}

func (s *NotificationService) Notify(ctx context.Context, req NotificationRequest) error {
	tpl, ok := notificationTemplates[req.Type]
	if !ok {
		return errors.Errorf("unknown notification type %q", req.Type)
	}

	var body bytes.Buffer
	if err := s.templates[req.Type].Execute(&body, req.Data); err != nil {
		return errors.Wrap(err, "failed to render notification")
	}

	resourceID := req.ResourceID
	notification := &models.Notification{
		RecipientID:  req.RecipientID,
		Type:         req.Type,
		Title:        tpl.Title,
		Message:      body.String(),
		ResourceType: req.ResourceType,
		ResourceID:   &resourceID,
		Status:       models.NotificationStatusUnread,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"recipient_id": req.RecipientID,
		"type":         req.Type,
	}).Info("notification queued")
	return nil
}
