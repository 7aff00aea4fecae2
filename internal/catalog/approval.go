package catalog

import (
	"strings"
	"time"

	"github.com/javajoker/marketplace-catalog/internal/apperrors"
	"github.com/javajoker/marketplace-catalog/internal/models"
)

// Vendor transitions. Re-applying the current terminal decision is accepted and
// re-stamps the decision time; only edges outside the lifecycle graph fail.

func ApproveVendor(v *models.Vendor, now time.Time, feedback string) error {
	switch v.Status {
	case models.VendorStatusPending, models.VendorStatusRejected, models.VendorStatusApproved:
	default:
		return apperrors.InvalidTransition("vendor", string(v.Status), string(models.VendorStatusApproved))
	}
	v.Status = models.VendorStatusApproved
	v.RejectionReason = ""
	v.SuspensionReason = ""
	v.ApprovalFeedback = strings.TrimSpace(feedback)
	v.ApprovedAt = &now
	v.ReviewedAt = &now
	return nil
}

func RejectVendor(v *models.Vendor, now time.Time, reason string) error {
	reason, err := requireReason(reason)
	if err != nil {
		return err
	}
	switch v.Status {
	case models.VendorStatusPending, models.VendorStatusRejected:
	default:
		return apperrors.InvalidTransition("vendor", string(v.Status), string(models.VendorStatusRejected))
	}
	v.Status = models.VendorStatusRejected
	v.RejectionReason = reason
	v.ApprovalFeedback = ""
	v.ApprovedAt = nil
	v.ReviewedAt = &now
	return nil
}

func SuspendVendor(v *models.Vendor, now time.Time, reason string) error {
	reason, err := requireReason(reason)
	if err != nil {
		return err
	}
	switch v.Status {
	case models.VendorStatusApproved, models.VendorStatusSuspended:
	default:
		return apperrors.InvalidTransition("vendor", string(v.Status), string(models.VendorStatusSuspended))
	}
	v.Status = models.VendorStatusSuspended
	v.SuspensionReason = reason
	v.ReviewedAt = &now
	return nil
}

// ReapplyVendor moves a rejected vendor back into the review queue.
func ReapplyVendor(v *models.Vendor) error {
	switch v.Status {
	case models.VendorStatusRejected, models.VendorStatusPending:
	default:
		return apperrors.InvalidTransition("vendor", string(v.Status), string(models.VendorStatusPending))
	}
	v.Status = models.VendorStatusPending
	v.RejectionReason = ""
	return nil
}

// RequireActiveVendor gates every vendor-initiated catalog write.
func RequireActiveVendor(v *models.Vendor) error {
	if v == nil {
		return apperrors.PreconditionFailed("no vendor profile for this account")
	}
	if !v.IsApproved() {
		return apperrors.PreconditionFailed("vendor is %s, only approved vendors may manage products", v.Status).
			WithDetail("vendor_status", string(v.Status))
	}
	return nil
}

// ApproveProduct approves p. The owning vendor must be approved; first-party
// products skip that check. p is left untouched on failure.
func ApproveProduct(p *models.Product, vendor *models.Vendor, now time.Time, feedback string) error {
	if !p.IsFirstParty() {
		if vendor == nil || vendor.ID != *p.VendorID {
			return apperrors.PreconditionFailed("owning vendor of product %s not found", p.ID)
		}
		if !vendor.IsApproved() {
			return apperrors.PreconditionFailed("owning vendor is %s", vendor.Status).
				WithDetail("vendor_status", string(vendor.Status))
		}
	}
	p.Approval = models.ApprovedAt(now, strings.TrimSpace(feedback))
	return nil
}

func RejectProduct(p *models.Product, now time.Time, reason string) error {
	reason, err := requireReason(reason)
	if err != nil {
		return err
	}
	p.Approval = models.RejectedAt(now, reason)
	return nil
}

func requireReason(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", apperrors.Validation("a reason is required").WithDetail("field", "reason")
	}
	return reason, nil
}
