// internal/models/admin.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	BaseModel
	ActorID      *uuid.UUID `json:"actor_id" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:100;not null;index"`
	ResourceType string     `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   *uuid.UUID `json:"resource_id" gorm:"type:uuid;index"`
	OldValues    JSONB      `json:"old_values" gorm:"type:jsonb"`
	NewValues    JSONB      `json:"new_values" gorm:"type:jsonb"`
	Reason       string     `json:"reason,omitempty" gorm:"type:text"`
}

// Notification is a message queued for the affected party. Delivery happens elsewhere.
type Notification struct {
	BaseModel
	RecipientID  uuid.UUID          `json:"recipient_id" gorm:"type:uuid;not null;index"`
	Type         string             `json:"type" gorm:"type:varchar(50);not null;index"`
	Title        string             `json:"title" gorm:"size:255;not null"`
	Message      string             `json:"message" gorm:"type:text;not null"`
	ResourceType string             `json:"resource_type,omitempty" gorm:"size:50"`
	ResourceID   *uuid.UUID         `json:"resource_id" gorm:"type:uuid"`
	Status       NotificationStatus `json:"status" gorm:"type:varchar(20);default:'unread';index"`
	ReadAt       *time.Time         `json:"read_at"`
}

const (
	NotificationVendorApproved  = "vendor_approved"
	NotificationVendorRejected  = "vendor_rejected"
	NotificationVendorSuspended = "vendor_suspended"
	NotificationProductApproved = "product_approved"
	NotificationProductRejected = "product_rejected"
)
