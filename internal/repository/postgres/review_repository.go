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

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

func preloadResponses(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Omit("Responses").Create(review).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return apperrors.Duplicate("reviewer already has an active review for this product")
		}
		return errors.Wrap(err, "failed to create review")
	}
	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).Preload("Responses", preloadResponses).First(&review, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("review %s not found", id)
		}
		return nil, errors.Wrap(err, "failed to find review by ID")
	}
	return &review, nil
}

func (r *reviewRepository) Save(ctx context.Context, review *models.Review) error {
	result := r.db.WithContext(ctx).Model(review).
		Select("*").
		Omit("Responses", "created_at").
		Updates(review)
	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return apperrors.Duplicate("reviewer already has an active review for this product")
		}
		return errors.Wrap(result.Error, "failed to update review")
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("review %s not found", review.ID)
	}
	return nil
}

func (r *reviewRepository) FindActiveByReviewerAndProduct(ctx context.Context, reviewerID, productID uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Preload("Responses", preloadResponses).
		Where("reviewer_id = ? AND product_id = ? AND is_active = ?", reviewerID, productID, true).
		First(&review).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("no active review for this product")
		}
		return nil, errors.Wrap(err, "failed to find review")
	}
	return &review, nil
}

func (r *reviewRepository) List(ctx context.Context, filter repository.ReviewFilter) ([]*models.Review, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Review{}).Where("product_id = ?", filter.ProductID)
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count reviews")
	}

	params := filter.PaginationParams.Normalize()
	query = utils.ApplySort(query, params, []string{"created_at", "updated_at"})
	query = utils.ApplyPagination(query, params)

	var reviews []*models.Review
	if err := query.Preload("Responses", preloadResponses).Find(&reviews).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to list reviews")
	}
	return reviews, total, nil
}

func (r *reviewRepository) ListActiveByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Select("id", "product_id", "reviewer_id", "stars", "is_active").
		Where("product_id = ? AND is_active = ?", productID, true).
		Find(&reviews).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list active reviews")
	}
	return reviews, nil
}

func (r *reviewRepository) CreateResponse(ctx context.Context, response *models.ReviewResponse) error {
	if err := r.db.WithContext(ctx).Create(response).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return apperrors.Duplicate("review already has a vendor response")
		}
		return errors.Wrap(err, "failed to create review response")
	}
	return nil
}

func (r *reviewRepository) FindResponseByID(ctx context.Context, id uuid.UUID) (*models.ReviewResponse, error) {
	var response models.ReviewResponse
	if err := r.db.WithContext(ctx).First(&response, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("response %s not found", id)
		}
		return nil, errors.Wrap(err, "failed to find review response")
	}
	return &response, nil
}

func (r *reviewRepository) SaveResponse(ctx context.Context, response *models.ReviewResponse) error {
	result := r.db.WithContext(ctx).Model(response).Select("content", "updated_at").Updates(response)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update review response")
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("response %s not found", response.ID)
	}
	return nil
}

func (r *reviewRepository) DeleteResponse(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ReviewResponse{}, "id = ?", id)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete review response")
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("response %s not found", id)
	}
	return nil
}

func (r *reviewRepository) CountVendorResponses(ctx context.Context, reviewID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ReviewResponse{}).
		Where("review_id = ? AND is_vendor_response = ?", reviewID, true).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count vendor responses")
	}
	return count, nil
}
