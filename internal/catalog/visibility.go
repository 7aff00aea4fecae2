package catalog

import (
	"github.com/javajoker/marketplace-catalog/internal/models"
)

// IsPubliclyVisible is the single shopper visibility rule. Inventory is
// re-resolved here so stale stored stock never leaks an unavailable product.
// vendor must be the product's owner; it is ignored for first-party products.
func IsPubliclyVisible(p *models.Product, vendor *models.Vendor) bool {
	if p == nil || p.Status != models.ProductStatusActive {
		return false
	}
	if !Resolve(p.ColorVariants, p.Images, p.Stock).Available {
		return false
	}
	if p.IsFirstParty() {
		return true
	}
	if vendor == nil || vendor.ID != *p.VendorID || !vendor.IsApproved() {
		return false
	}
	return p.Approval.Kind == models.ApprovalApproved
}

// CanView reports whether the actor may read the product regardless of public visibility.
func CanView(p *models.Product, vendor *models.Vendor, actor models.Actor) bool {
	if IsPubliclyVisible(p, vendor) {
		return true
	}
	return CanManage(p, vendor, actor)
}

// CanManage reports whether the actor owns the product or is an admin.
func CanManage(p *models.Product, vendor *models.Vendor, actor models.Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	if actor.IsAnonymous() || p.IsFirstParty() || vendor == nil {
		return false
	}
	return vendor.ID == *p.VendorID && vendor.UserID == actor.ID
}
