// internal/models/vendor.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Vendor struct {
	BaseModel
	UserID           uuid.UUID    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	BusinessName     string       `json:"business_name" gorm:"size:255;not null"`
	ContactEmail     string       `json:"contact_email" gorm:"size:255;not null"`
	ContactPhone     string       `json:"contact_phone,omitempty" gorm:"size:50"`
	Description      string       `json:"description,omitempty" gorm:"type:text"`
	Status           VendorStatus `json:"status" gorm:"type:varchar(20);default:'pending';not null;index"`
	RejectionReason  string       `json:"rejection_reason,omitempty" gorm:"type:text"`
	ApprovalFeedback string       `json:"approval_feedback,omitempty" gorm:"type:text"`
	SuspensionReason string       `json:"suspension_reason,omitempty" gorm:"type:text"`
	ApprovedAt       *time.Time   `json:"approved_at,omitempty"`
	ReviewedAt       *time.Time   `json:"reviewed_at,omitempty"`
}

func (v *Vendor) IsApproved() bool {
	return v != nil && v.Status == VendorStatusApproved
}

func (v *Vendor) Clone() *Vendor {
	if v == nil {
		return nil
	}
	c := *v
	if v.ApprovedAt != nil {
		t := *v.ApprovedAt
		c.ApprovedAt = &t
	}
	if v.ReviewedAt != nil {
		t := *v.ReviewedAt
		c.ReviewedAt = &t
	}
	return &c
}
