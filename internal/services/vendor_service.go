// internal/services/vendor_service.go
package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/marketplace-catalog/internal/apperrors"
	"github.com/javajoker/marketplace-catalog/internal/catalog"
	"github.com/javajoker/marketplace-catalog/internal/models"
	"github.com/javajoker/marketplace-catalog/internal/repository"
	"github.com/javajoker/marketplace-catalog/internal/utils"
)

type VendorService struct {
	vendors  repository.VendorRepository
	products repository.ProductRepository
	log      logrus.FieldLogger
}

type VendorRegistrationRequest struct {
	BusinessName string `json:"business_name" validate:"required,min=2,max=255"`
	ContactEmail string `json:"contact_email" validate:"required,email"`
	ContactPhone string `json:"contact_phone" validate:"omitempty,max=50"`
	Description  string `json:"description" validate:"omitempty,max=5000"`
}

// VendorReapplyRequest optionally revises the application before it re-enters the queue.
type VendorReapplyRequest struct {
	BusinessName *string `json:"business_name" validate:"omitempty,min=2,max=255"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone *string `json:"contact_phone" validate:"omitempty,max=50"`
	Description  *string `json:"description" validate:"omitempty,max=5000"`
}

func NewVendorService(repos *repository.Repositories, log logrus.FieldLogger) *VendorService {
	return &VendorService{
		vendors:  repos.Vendors,
		products: repos.Products,
		log:      log,
	}
}

// Register creates the caller's vendor profile in the pending state.
func (s *VendorService) Register(ctx context.Context, actor models.Actor, req VendorRegistrationRequest) (*models.Vendor, error) {
	if actor.IsAnonymous() {
		return nil, apperrors.Forbidden("authentication required")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	vendor := &models.Vendor{
		UserID:       actor.ID,
		BusinessName: strings.TrimSpace(req.BusinessName),
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		ContactPhone: strings.TrimSpace(req.ContactPhone),
		Description:  strings.TrimSpace(req.Description),
		Status:       models.VendorStatusPending,
	}
	if err := s.vendors.Create(ctx, vendor); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"vendor_id": vendor.ID,
		"user_id":   actor.ID,
	}).Info("vendor registered")
	return vendor, nil
}

func (s *VendorService) GetByUser(ctx context.Context, actor models.Actor) (*models.Vendor, error) {
	if actor.IsAnonymous() {
		return nil, apperrors.Forbidden("authentication required")
	}
	return s.vendors.FindByUserID(ctx, actor.ID)
}

// Reapply returns a rejected vendor to the pending queue.
func (s *VendorService) Reapply(ctx context.Context, actor models.Actor, req VendorReapplyRequest) (*models.Vendor, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}
	vendor, err := s.GetByUser(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := catalog.ReapplyVendor(vendor); err != nil {
		return nil, err
	}

	if req.BusinessName != nil {
		vendor.BusinessName = strings.TrimSpace(*req.BusinessName)
	}
	if req.ContactEmail != nil {
		vendor.ContactEmail = strings.TrimSpace(*req.ContactEmail)
	}
	if req.ContactPhone != nil {
		vendor.ContactPhone = strings.TrimSpace(*req.ContactPhone)
	}
	if req.Description != nil {
		vendor.Description = strings.TrimSpace(*req.Description)
	}

	if err := s.vendors.Save(ctx, vendor); err != nil {
		return nil, err
	}
	s.log.WithField("vendor_id", vendor.ID).Info("vendor reapplied")
	return vendor, nil
}

// ListOwnProducts lists every product of the caller's vendor, whatever its visibility.
func (s *VendorService) ListOwnProducts(ctx context.Context, actor models.Actor, params utils.PaginationParams) ([]*models.Product, int64, error) {
	vendor, err := s.GetByUser(ctx, actor)
	if err != nil {
		return nil, 0, err
	}
	products, total, err := s.products.List(ctx, repository.ProductFilter{
		VendorID:         &vendor.ID,
		PaginationParams: params,
	})
	if err != nil {
		return nil, 0, err
	}
	for _, p := range products {
		catalog.ApplyInventory(p)
	}
	return products, total, nil
}

// validationError turns validator output into an apperrors Validation error
// carrying the per-field messages.
func validationError(err error) error {
	fields := utils.GetValidationErrors(err)
	if len(fields) == 0 {
		return apperrors.Validation("%s", err.Error())
	}
	return apperrors.Validation("%s", fields[0].Message).WithDetail("fields", fields)
}
