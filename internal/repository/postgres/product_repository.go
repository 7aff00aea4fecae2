package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/marketplace-catalog/internal/apperrors"
	"github.com/javajoker/marketplace-catalog/internal/catalog"
	"github.com/javajoker/marketplace-catalog/internal/models"
	"github.com/javajoker/marketplace-catalog/internal/repository"
	"github.com/javajoker/marketplace-catalog/internal/utils"
)

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return apperrors.Duplicate("slug %q is already in use", product.Slug)
		}
		return errors.Wrap(err, "failed to create product")
	}
	return nil
}

func (r *productRepository) find(ctx context.Context, query string, arg interface{}) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Preload("Vendor").Where(query, arg).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := r.find(ctx, "id = ?", id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("product %s not found", id)
		}
		return nil, errors.Wrap(err, "failed to find product by ID")
	}
	return product, nil
}

func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	product, err := r.find(ctx, "slug = ?", slug)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("product %q not found", slug)
		}
		return nil, errors.Wrap(err, "failed to find product by slug")
	}
	return product, nil
}

// Save writes every column except the rating summary, which only
// UpdateRatingSummary may change.
func (r *productRepository) Save(ctx context.Context, product *models.Product) error {
	result := r.db.WithContext(ctx).Model(product).
		Select("*").
		Omit(clause.Associations, "created_at", "average_rating", "total_reviews", "rating_distribution").
		Updates(product)
	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return apperrors.Duplicate("slug %q is already in use", product.Slug)
		}
		return errors.Wrap(result.Error, "failed to update product")
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("product %s not found", product.ID)
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete product")
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("product %s not found", id)
	}
	return nil
}

func (r *productRepository) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Unscoped().Model(&models.Product{}).Where("slug = ?", slug)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "failed to check slug")
	}
	return count > 0, nil
}

// applyFilter mirrors catalog.IsPubliclyVisible on the stored columns for PublicOnly.
func (r *productRepository) applyFilter(query *gorm.DB, filter repository.ProductFilter) *gorm.DB {
	if filter.VendorID != nil {
		query = query.Where("products.vendor_id = ?", *filter.VendorID)
	}
	if filter.Category != "" {
		query = query.Where("products.category_slug = ?", catalog.Slugify(filter.Category))
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("(products.name ILIKE ? OR products.description ILIKE ?)", like, like)
	}
	if filter.Status != "" {
		query = query.Where("products.status = ?", filter.Status)
	}
	if filter.ApprovalKind != "" {
		query = query.Where("products.approval_kind = ?", filter.ApprovalKind)
	}
	if filter.InStockOnly {
		query = query.Where("products.available = ?", true)
	}
	if filter.MinPrice != nil {
		query = query.Where("products.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("products.price <= ?", *filter.MaxPrice)
	}
	if filter.MinRating > 0 {
		query = query.Where("products.average_rating >= ?", filter.MinRating)
	}
	if filter.PublicOnly {
		query = query.
			Where("products.status = ? AND products.available = ?", models.ProductStatusActive, true).
			Where(
				r.db.Where("products.vendor_id IS NULL").
					Or("products.approval_kind = ? AND EXISTS (SELECT 1 FROM vendors v WHERE v.id = products.vendor_id AND v.status = ? AND v.deleted_at IS NULL)",
						models.ApprovalApproved, models.VendorStatusApproved),
			)
	}
	return query
}

func (r *productRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*models.Product, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.Product{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count products")
	}

	params := filter.PaginationParams.Normalize()
	query = utils.ApplySort(query, params, repository.ProductSortFields)
	query = utils.ApplyPagination(query, params)

	var products []*models.Product
	if err := query.Preload("Vendor").Find(&products).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to list products")
	}
	return products, total, nil
}

func (r *productRepository) Count(ctx context.Context, filter repository.ProductFilter) (int64, error) {
	var total int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.Product{}), filter)
	if err := query.Count(&total).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count products")
	}
	return total, nil
}

func (r *productRepository) UpdateRatingSummary(ctx context.Context, productID uuid.UUID, summary catalog.RatingSummary) error {
	result := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumns(map[string]interface{}{
			"average_rating":      summary.AverageRating,
			"total_reviews":       summary.TotalReviews,
			"rating_distribution": datatypes.NewJSONType(summary.Distribution),
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update rating summary")
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("product %s not found", productID)
	}
	return nil
}
