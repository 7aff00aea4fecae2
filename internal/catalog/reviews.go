package catalog

import (
	"github.com/javajoker/marketplace-catalog/internal/apperrors"
	"github.com/javajoker/marketplace-catalog/internal/models"
)

func CheckReviewAuthor(r *models.Review, actor models.Actor) error {
	if actor.IsAnonymous() || r.ReviewerID != actor.ID {
		return apperrors.Forbidden("only the author may change this review")
	}
	return nil
}

func CheckReviewActive(r *models.Review) error {
	if !r.IsActive {
		return apperrors.PreconditionFailed("review %s has been deleted", r.ID)
	}
	return nil
}

// CheckVendorResponse enforces the vendor reply rules: the author acts for the
// product's owning vendor, that vendor is approved, and no vendor reply exists yet.
func CheckVendorResponse(p *models.Product, vendor *models.Vendor, actor models.Actor, existing int64) error {
	if p.IsFirstParty() || vendor == nil || vendor.ID != *p.VendorID || vendor.UserID != actor.ID {
		return apperrors.Forbidden("only the owning vendor may post a vendor response")
	}
	if !vendor.IsApproved() {
		return apperrors.PreconditionFailed("vendor is %s", vendor.Status).
			WithDetail("vendor_status", string(vendor.Status))
	}
	if existing > 0 {
		return apperrors.Duplicate("review already has a vendor response")
	}
	return nil
}

func CheckResponseAuthor(resp *models.ReviewResponse, actor models.Actor) error {
	if actor.IsAnonymous() || resp.AuthorID != actor.ID {
		return apperrors.Forbidden("only the author may change this response")
	}
	return nil
}
