// Package repository defines the persistence contracts used by the services.
// Lookups that miss return an apperrors NotFound; unique key clashes return an
// apperrors Duplicate. Any other error is an infrastructure failure.
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/javajoker/marketplace-catalog/internal/catalog"
	"github.com/javajoker/marketplace-catalog/internal/models"
	"github.com/javajoker/marketplace-catalog/internal/utils"
)

type VendorFilter struct {
	Status models.VendorStatus
	Search string
	utils.PaginationParams
}

type VendorRepository interface {
	Create(ctx context.Context, vendor *models.Vendor) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Vendor, error)
	Save(ctx context.Context, vendor *models.Vendor) error
	List(ctx context.Context, filter VendorFilter) ([]*models.Vendor, int64, error)
}

// ProductFilter narrows product listings. PublicOnly pre-filters on the stored
// visibility columns; callers still re-check catalog.IsPubliclyVisible.
type ProductFilter struct {
	VendorID     *uuid.UUID
	Category     string
	Search       string
	Status       models.ProductStatus
	ApprovalKind models.ApprovalKind
	PublicOnly   bool
	InStockOnly  bool
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	MinRating    float64
	utils.PaginationParams
}

// ProductSortFields are the columns a listing may be ordered by.
var ProductSortFields = []string{"created_at", "updated_at", "price", "name", "average_rating", "total_reviews"}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	// FindByID loads the product with its owning vendor.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	Save(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
	List(ctx context.Context, filter ProductFilter) ([]*models.Product, int64, error)
	Count(ctx context.Context, filter ProductFilter) (int64, error)
	// UpdateRatingSummary writes only the aggregate columns.
	UpdateRatingSummary(ctx context.Context, productID uuid.UUID, summary catalog.RatingSummary) error
}

type ReviewFilter struct {
	ProductID  uuid.UUID
	ActiveOnly bool
	utils.PaginationParams
}

type ReviewRepository interface {
	// Create fails with Duplicate when the reviewer already has an active review of the product.
	Create(ctx context.Context, review *models.Review) error
	// FindByID loads the review with its non-deleted responses.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	Save(ctx context.Context, review *models.Review) error
	FindActiveByReviewerAndProduct(ctx context.Context, reviewerID, productID uuid.UUID) (*models.Review, error)
	List(ctx context.Context, filter ReviewFilter) ([]*models.Review, int64, error)
	// ListActiveByProduct returns every active review of the product, without responses.
	ListActiveByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error)

	// CreateResponse fails with Duplicate on a second vendor response to the same review.
	CreateResponse(ctx context.Context, response *models.ReviewResponse) error
	FindResponseByID(ctx context.Context, id uuid.UUID) (*models.ReviewResponse, error)
	SaveResponse(ctx context.Context, response *models.ReviewResponse) error
	DeleteResponse(ctx context.Context, id uuid.UUID) error
	CountVendorResponses(ctx context.Context, reviewID uuid.UUID) (int64, error)
}

type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	ListByResource(ctx context.Context, resourceType string, resourceID uuid.UUID) ([]*models.AuditLog, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*models.Notification, error)
}

// Repositories bundles every repository so drivers can be swapped as a unit.
type Repositories struct {
	Vendors       VendorRepository
	Products      ProductRepository
	Reviews       ReviewRepository
	AuditLogs     AuditLogRepository
	Notifications NotificationRepository
}
