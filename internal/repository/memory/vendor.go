package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/marketplace-catalog/internal/apperrors"
	"github.com/javajoker/marketplace-catalog/internal/models"
	"github.com/javajoker/marketplace-catalog/internal/repository"
)

type vendorRepository struct {
	s *Store
}

func (r *vendorRepository) Create(ctx context.Context, vendor *models.Vendor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.vendors {
		if existing.UserID == vendor.UserID {
			return apperrors.Duplicate("account already has a vendor profile")
		}
	}
	r.s.stamp(&vendor.BaseModel, true)
	r.s.vendors[vendor.ID] = vendor.Clone()
	return nil
}

func (r *vendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	v, ok := r.s.vendors[id]
	if !ok {
		return nil, apperrors.NotFound("vendor %s not found", id)
	}
	return v.Clone(), nil
}

func (r *vendorRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Vendor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, v := range r.s.vendors {
		if v.UserID == userID {
			return v.Clone(), nil
		}
	}
	return nil, apperrors.NotFound("no vendor profile for this account")
}

func (r *vendorRepository) Save(ctx context.Context, vendor *models.Vendor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.vendors[vendor.ID]; !ok {
		return apperrors.NotFound("vendor %s not found", vendor.ID)
	}
	r.s.stamp(&vendor.BaseModel, false)
	r.s.vendors[vendor.ID] = vendor.Clone()
	return nil
}

func (r *vendorRepository) List(ctx context.Context, filter repository.VendorFilter) ([]*models.Vendor, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []*models.Vendor
	for _, v := range r.s.vendors {
		if filter.Status != "" && v.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !containsFold(v.BusinessName, filter.Search) {
			continue
		}
		matched = append(matched, v.Clone())
	}

	params := filter.PaginationParams.Normalize()
	sortByCreated(matched, func(v *models.Vendor) time.Time { return v.CreatedAt }, params.Order)
	start, end := params.Window(len(matched))
	return matched[start:end], int64(len(matched)), nil
}
