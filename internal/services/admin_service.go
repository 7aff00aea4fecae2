// internal/services/admin_service.go
package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/marketplace-catalog/internal/apperrors"
	"github.com/javajoker/marketplace-catalog/internal/catalog"
	"github.com/javajoker/marketplace-catalog/internal/models"
	"github.com/javajoker/marketplace-catalog/internal/repository"
	"github.com/javajoker/marketplace-catalog/internal/utils"
)

const (
	AuditApproveVendor  = "APPROVE_VENDOR"
	AuditRejectVendor   = "REJECT_VENDOR"
	AuditSuspendVendor  = "SUSPEND_VENDOR"
	AuditApproveProduct = "APPROVE_PRODUCT"
	AuditRejectProduct  = "REJECT_PRODUCT"
)

// AdminService applies admin decisions to vendors and products. Every
// decision writes an audit entry and queues a notification for the owner;
// failures of either are logged and never undo the decision.
type AdminService struct {
	vendors   repository.VendorRepository
	products  repository.ProductRepository
	auditLogs repository.AuditLogRepository
	notifier  Notifier
	log       logrus.FieldLogger
	now       func() time.Time
}

type ApprovalQueueStats struct {
	PendingVendors   int64 `json:"pending_vendors"`
	ApprovedVendors  int64 `json:"approved_vendors"`
	SuspendedVendors int64 `json:"suspended_vendors"`
	PendingProducts  int64 `json:"pending_products"`
	RejectedProducts int64 `json:"rejected_products"`
	PublicProducts   int64 `json:"public_products"`
}

type AdminVendorFilter struct {
	utils.PaginationParams
	Status models.VendorStatus
	Search string
}

type AdminProductFilter struct {
	utils.PaginationParams
	ApprovalKind models.ApprovalKind
	VendorID     *uuid.UUID
	Status       models.ProductStatus
	Search       string
}

func NewAdminService(repos *repository.Repositories, notifier Notifier, log logrus.FieldLogger) *AdminService {
	return &AdminService{
		vendors:   repos.Vendors,
		products:  repos.Products,
		auditLogs: repos.AuditLogs,
		notifier:  notifier,
		log:       log,
		now:       time.Now,
	}
}

func requireAdmin(actor models.Actor) error {
	if !actor.IsAdmin() {
		return apperrors.Forbidden("admin access required")
	}
	return nil
}

// Queue statistics
func (s *AdminService) GetQueueStats(ctx context.Context, admin models.Actor) (*ApprovalQueueStats, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	var stats ApprovalQueueStats
	vendorCounts := []struct {
		status models.VendorStatus
		dst    *int64
	}{
		{models.VendorStatusPending, &stats.PendingVendors},
		{models.VendorStatusApproved, &stats.ApprovedVendors},
		{models.VendorStatusSuspended, &stats.SuspendedVendors},
	}
	for _, vc := range vendorCounts {
		_, total, err := s.vendors.List(ctx, repository.VendorFilter{
			Status:           vc.status,
			PaginationParams: utils.PaginationParams{Page: 1, Limit: 1},
		})
		if err != nil {
			return nil, err
		}
		*vc.dst = total
	}

	productCounts := []struct {
		filter repository.ProductFilter
		dst    *int64
	}{
		{repository.ProductFilter{ApprovalKind: models.ApprovalPending}, &stats.PendingProducts},
		{repository.ProductFilter{ApprovalKind: models.ApprovalRejected}, &stats.RejectedProducts},
		{repository.ProductFilter{PublicOnly: true}, &stats.PublicProducts},
	}
	for _, pc := range productCounts {
		total, err := s.products.Count(ctx, pc.filter)
		if err != nil {
			return nil, err
		}
		*pc.dst = total
	}

	return &stats, nil
}

// Vendor management
func (s *AdminService) ListVendors(ctx context.Context, admin models.Actor, filter AdminVendorFilter) ([]*models.Vendor, int64, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, 0, err
	}
	return s.vendors.List(ctx, repository.VendorFilter{
		Status:           filter.Status,
		Search:           filter.Search,
		PaginationParams: filter.PaginationParams,
	})
}

func (s *AdminService) GetVendor(ctx context.Context, admin models.Actor, vendorID uuid.UUID) (*models.Vendor, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	return s.vendors.FindByID(ctx, vendorID)
}

func (s *AdminService) ApproveVendor(ctx context.Context, admin models.Actor, vendorID uuid.UUID, feedback string) (*models.Vendor, error) {
	return s.decideVendor(ctx, admin, vendorID, AuditApproveVendor, func(v *models.Vendor, now time.Time) error {
		return catalog.ApproveVendor(v, now, feedback)
	})
}

func (s *AdminService) RejectVendor(ctx context.Context, admin models.Actor, vendorID uuid.UUID, reason string) (*models.Vendor, error) {
	return s.decideVendor(ctx, admin, vendorID, AuditRejectVendor, func(v *models.Vendor, now time.Time) error {
		return catalog.RejectVendor(v, now, reason)
	})
}

// SuspendVendor hides every product of the vendor from shoppers without
// touching the products themselves.
func (s *AdminService) SuspendVendor(ctx context.Context, admin models.Actor, vendorID uuid.UUID, reason string) (*models.Vendor, error) {
	return s.decideVendor(ctx, admin, vendorID, AuditSuspendVendor, func(v *models.Vendor, now time.Time) error {
		return catalog.SuspendVendor(v, now, reason)
	})
}

func (s *AdminService) decideVendor(ctx context.Context, admin models.Actor, vendorID uuid.UUID, action string, apply func(*models.Vendor, time.Time) error) (*models.Vendor, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	vendor, err := s.vendors.FindByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	oldStatus := vendor.Status

	if err := apply(vendor, s.now()); err != nil {
		return nil, err
	}
	if err := s.vendors.Save(ctx, vendor); err != nil {
		return nil, err
	}

	s.createAuditLog(ctx, admin.ID, action, "vendor", vendor.ID,
		map[string]interface{}{"status": oldStatus},
		map[string]interface{}{"status": vendor.Status},
		vendorReason(vendor))

	s.sendVendorNotification(ctx, vendor)
	return vendor, nil
}

// Product management
func (s *AdminService) ListProducts(ctx context.Context, admin models.Actor, filter AdminProductFilter) ([]*models.Product, int64, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, 0, err
	}
	products, total, err := s.products.List(ctx, repository.ProductFilter{
		ApprovalKind:     filter.ApprovalKind,
		VendorID:         filter.VendorID,
		Status:           filter.Status,
		Search:           filter.Search,
		PaginationParams: filter.PaginationParams,
	})
	if err != nil {
		return nil, 0, err
	}
	for _, p := range products {
		catalog.ApplyInventory(p)
	}
	return products, total, nil
}

// ApproveProduct requires the owning vendor to be approved at decision time.
func (s *AdminService) ApproveProduct(ctx context.Context, admin models.Actor, productID uuid.UUID, feedback string) (*models.Product, error) {
	return s.decideProduct(ctx, admin, productID, AuditApproveProduct, func(p *models.Product, now time.Time) error {
		return catalog.ApproveProduct(p, p.Vendor, now, feedback)
	})
}

func (s *AdminService) RejectProduct(ctx context.Context, admin models.Actor, productID uuid.UUID, reason string) (*models.Product, error) {
	return s.decideProduct(ctx, admin, productID, AuditRejectProduct, func(p *models.Product, now time.Time) error {
		return catalog.RejectProduct(p, now, reason)
	})
}

func (s *AdminService) decideProduct(ctx context.Context, admin models.Actor, productID uuid.UUID, action string, apply func(*models.Product, time.Time) error) (*models.Product, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	oldKind := product.Approval.Kind

	if err := apply(product, s.now()); err != nil {
		return nil, err
	}
	catalog.ApplyInventory(product)
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	s.createAuditLog(ctx, admin.ID, action, "product", product.ID,
		map[string]interface{}{"approval": oldKind},
		map[string]interface{}{"approval": product.Approval.Kind},
		product.Approval.Reason)

	s.sendProductNotification(ctx, product)
	return product, nil
}

// Helper methods
func (s *AdminService) createAuditLog(ctx context.Context, actorID uuid.UUID, action, resourceType string, resourceID uuid.UUID, oldValues, newValues map[string]interface{}, reason string) {
	entry := &models.AuditLog{
		ActorID:      &actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   &resourceID,
		OldValues:    models.JSONB(oldValues),
		NewValues:    models.JSONB(newValues),
		Reason:       reason,
	}
	if err := s.auditLogs.Create(ctx, entry); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"action":      action,
			"resource_id": resourceID,
		}).Error("failed to write audit log")
	}
}

func (s *AdminService) sendVendorNotification(ctx context.Context, vendor *models.Vendor) {
	var notificationType string
	switch vendor.Status {
	case models.VendorStatusApproved:
		notificationType = models.NotificationVendorApproved
	case models.VendorStatusRejected:
		notificationType = models.NotificationVendorRejected
	case models.VendorStatusSuspended:
		notificationType = models.NotificationVendorSuspended
	default:
		return
	}
	s.notify(ctx, NotificationRequest{
		RecipientID:  vendor.UserID,
		Type:         notificationType,
		ResourceType: "vendor",
		ResourceID:   vendor.ID,
		Data: map[string]interface{}{
			"BusinessName": vendor.BusinessName,
			"Feedback":     vendor.ApprovalFeedback,
			"Reason":       vendorReason(vendor),
		},
	})
}

func (s *AdminService) sendProductNotification(ctx context.Context, product *models.Product) {
	// First-party products have nobody to notify.
	if product.IsFirstParty() || product.Vendor == nil {
		return
	}
	notificationType := models.NotificationProductApproved
	if product.Approval.Kind == models.ApprovalRejected {
		notificationType = models.NotificationProductRejected
	}
	s.notify(ctx, NotificationRequest{
		RecipientID:  product.Vendor.UserID,
		Type:         notificationType,
		ResourceType: "product",
		ResourceID:   product.ID,
		Data: map[string]interface{}{
			"ProductName": product.Name,
			"Feedback":    product.Approval.Feedback,
			"Reason":      product.Approval.Reason,
		},
	})
}

func vendorReason(v *models.Vendor) string {
	switch v.Status {
	case models.VendorStatusRejected:
		return v.RejectionReason
	case models.VendorStatusSuspended:
		return v.SuspensionReason
	}
	return ""
}

func (s *AdminService) notify(ctx context.Context, req NotificationRequest) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, req); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"recipient_id": req.RecipientID,
			"type":         req.Type,
		}).Error("failed to queue notification")
	}
}
