package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/marketplace-catalog/internal/apperrors"
	"github.com/javajoker/marketplace-catalog/internal/models"
	"github.com/javajoker/marketplace-catalog/internal/repository"
)

type reviewRepository struct {
	s *Store
}

func (r *reviewRepository) withResponses(review *models.Review) *models.Review {
	c := review.Clone()
	c.Responses = nil
	for _, resp := range r.s.responses {
		if resp.ReviewID == review.ID && !resp.DeletedAt.Valid {
			c.Responses = append(c.Responses, *resp)
		}
	}
	sortByCreated(c.Responses, func(resp models.ReviewResponse) time.Time { return resp.CreatedAt }, "asc")
	return c
}

func (r *reviewRepository) activeFor(reviewerID, productID, excludeID uuid.UUID) *models.Review {
	for id, existing := range r.s.reviews {
		if id != excludeID && existing.IsActive && existing.ReviewerID == reviewerID && existing.ProductID == productID {
			return existing
		}
	}
	return nil
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if review.IsActive && r.activeFor(review.ReviewerID, review.ProductID, uuid.Nil) != nil {
		return apperrors.Duplicate("reviewer already has an active review for this product")
	}
	r.s.stamp(&review.BaseModel, true)
	row := review.Clone()
	row.Responses = nil
	r.s.reviews[review.ID] = row
	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	review, ok := r.s.reviews[id]
	if !ok {
		return nil, apperrors.NotFound("review %s not found", id)
	}
	return r.withResponses(review), nil
}

func (r *reviewRepository) Save(ctx context.Context, review *models.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.reviews[review.ID]; !ok {
		return apperrors.NotFound("review %s not found", review.ID)
	}
	if review.IsActive && r.activeFor(review.ReviewerID, review.ProductID, review.ID) != nil {
		return apperrors.Duplicate("reviewer already has an active review for this product")
	}
	r.s.stamp(&review.BaseModel, false)
	row := review.Clone()
	row.Responses = nil
	r.s.reviews[review.ID] = row
	return nil
}

func (r *reviewRepository) FindActiveByReviewerAndProduct(ctx context.Context, reviewerID, productID uuid.UUID) (*models.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if existing := r.activeFor(reviewerID, productID, uuid.Nil); existing != nil {
		return r.withResponses(existing), nil
	}
	return nil, apperrors.NotFound("no active review for this product")
}

func (r *reviewRepository) List(ctx context.Context, filter repository.ReviewFilter) ([]*models.Review, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []*models.Review
	for _, review := range r.s.reviews {
		if review.ProductID != filter.ProductID {
			continue
		}
		if filter.ActiveOnly && !review.IsActive {
			continue
		}
		matched = append(matched, review)
	}

	params := filter.PaginationParams.Normalize()
	sortByCreated(matched, func(review *models.Review) time.Time { return review.CreatedAt }, params.Order)
	start, end := params.Window(len(matched))

	page := make([]*models.Review, 0, end-start)
	for _, review := range matched[start:end] {
		page = append(page, r.withResponses(review))
	}
	return page, int64(len(matched)), nil
}

func (r *reviewRepository) ListActiveByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var reviews []models.Review
	for _, review := range r.s.reviews {
		if review.ProductID == productID && review.IsActive {
			c := review.Clone()
			c.Responses = nil
			reviews = append(reviews, *c)
		}
	}
	return reviews, nil
}

func (r *reviewRepository) vendorResponses(reviewID uuid.UUID) int64 {
	var n int64
	for _, resp := range r.s.responses {
		if resp.ReviewID == reviewID && resp.IsVendorResponse && !resp.DeletedAt.Valid {
			n++
		}
	}
	return n
}

func (r *reviewRepository) CreateResponse(ctx context.Context, response *models.ReviewResponse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.reviews[response.ReviewID]; !ok {
		return apperrors.NotFound("review %s not found", response.ReviewID)
	}
	if response.IsVendorResponse && r.vendorResponses(response.ReviewID) > 0 {
		return apperrors.Duplicate("review already has a vendor response")
	}
	r.s.stamp(&response.BaseModel, true)
	c := *response
	r.s.responses[response.ID] = &c
	return nil
}

func (r *reviewRepository) FindResponseByID(ctx context.Context, id uuid.UUID) (*models.ReviewResponse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	resp, ok := r.s.responses[id]
	if !ok || resp.DeletedAt.Valid {
		return nil, apperrors.NotFound("response %s not found", id)
	}
	c := *resp
	return &c, nil
}

func (r *reviewRepository) SaveResponse(ctx context.Context, response *models.ReviewResponse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.responses[response.ID]
	if !ok || existing.DeletedAt.Valid {
		return apperrors.NotFound("response %s not found", response.ID)
	}
	r.s.stamp(&response.BaseModel, false)
	c := *response
	r.s.responses[response.ID] = &c
	return nil
}

func (r *reviewRepository) DeleteResponse(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	resp, ok := r.s.responses[id]
	if !ok || resp.DeletedAt.Valid {
		return apperrors.NotFound("response %s not found", id)
	}
	resp.DeletedAt = gorm.DeletedAt{Time: r.s.now(), Valid: true}
	return nil
}

func (r *reviewRepository) CountVendorResponses(ctx context.Context, reviewID uuid.UUID) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.vendorResponses(reviewID), nil
}
