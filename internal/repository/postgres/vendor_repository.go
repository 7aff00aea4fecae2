package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/javajoker/marketplace-catalog/internal/apperrors"
	"github.com/javajoker/marketplace-catalog/internal/models"
	"github.com/javajoker/marketplace-catalog/internal/repository"
	"github.com/javajoker/marketplace-catalog/internal/utils"
)

type vendorRepository struct {
	db *gorm.DB
}

func NewVendorRepository(db *gorm.DB) repository.VendorRepository {
	return &vendorRepository{db: db}
}

func (r *vendorRepository) Create(ctx context.Context, vendor *models.Vendor) error {
	if err := r.db.WithContext(ctx).Create(vendor).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return apperrors.Duplicate("account already has a vendor profile")
		}
		return errors.Wrap(err, "failed to create vendor")
	}
	return nil
}

func (r *vendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("vendor %s not found", id)
		}
		return nil, errors.Wrap(err, "failed to find vendor by ID")
	}
	return &vendor, nil
}

func (r *vendorRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, "user_id = ?", userID).Error; err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("no vendor profile for this account")
		}
		return nil, errors.Wrap(err, "failed to find vendor by user")
	}
	return &vendor, nil
}

func (r *vendorRepository) Save(ctx context.Context, vendor *models.Vendor) error {
	result := r.db.WithContext(ctx).Model(vendor).Select("*").Omit("created_at").Updates(vendor)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update vendor")
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("vendor %s not found", vendor.ID)
	}
	return nil
}

func (r *vendorRepository) List(ctx context.Context, filter repository.VendorFilter) ([]*models.Vendor, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Vendor{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("business_name ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count vendors")
	}

	params := filter.PaginationParams.Normalize()
	query = utils.ApplySort(query, params, []string{"created_at", "updated_at", "business_name"})
	query = utils.ApplyPagination(query, params)

	var vendors []*models.Vendor
	if err := query.Find(&vendors).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to list vendors")
	}
	return vendors, total, nil
}
