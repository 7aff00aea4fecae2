// internal/services/review_service.go
package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/marketplace-catalog/internal/apperrors"
	"github.com/javajoker/marketplace-catalog/internal/catalog"
	"github.com/javajoker/marketplace-catalog/internal/models"
	"github.com/javajoker/marketplace-catalog/internal/repository"
	"github.com/javajoker/marketplace-catalog/internal/utils"
)

// PurchaseVerifier answers whether a user bought a product. It lives outside
// the catalog; without one, reviews are never marked verified.
type PurchaseVerifier interface {
	HasPurchased(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

type ReviewService struct {
	products  repository.ProductRepository
	reviews   repository.ReviewRepository
	purchases PurchaseVerifier
	log       logrus.FieldLogger
}

type CreateReviewRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Stars     string    `json:"stars" validate:"required,star_rating"`
	Title     string    `json:"title" validate:"omitempty,max=255"`
	Body      string    `json:"body" validate:"omitempty,max=5000"`
}

type UpdateReviewRequest struct {
	Stars *string `json:"stars" validate:"omitempty,star_rating"`
	Title *string `json:"title" validate:"omitempty,max=255"`
	Body  *string `json:"body" validate:"omitempty,max=5000"`
}

type ResponseRequest struct {
	Content          string `json:"content" validate:"required,min=1,max=5000"`
	IsVendorResponse bool   `json:"is_vendor_response"`
}

func NewReviewService(repos *repository.Repositories, purchases PurchaseVerifier, log logrus.FieldLogger) *ReviewService {
	return &ReviewService{
		products:  repos.Products,
		reviews:   repos.Reviews,
		purchases: purchases,
		log:       log,
	}
}

// CreateReview adds the actor's review of a publicly visible product. A
// reviewer holds at most one active review per product.
func (s *ReviewService) CreateReview(ctx context.Context, actor models.Actor, req CreateReviewRequest) (*models.Review, error) {
	if actor.IsAnonymous() {
		return nil, apperrors.Forbidden("authentication required")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}
	stars, err := models.ParseStarRating(req.Stars)
	if err != nil {
		return nil, apperrors.Validation("%s", err.Error()).WithDetail("field", "stars")
	}

	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !catalog.IsPubliclyVisible(product, product.Vendor) {
		return nil, apperrors.NotFound("product %s not found", req.ProductID)
	}

	_, err = s.reviews.FindActiveByReviewerAndProduct(ctx, actor.ID, product.ID)
	switch {
	case err == nil:
		return nil, apperrors.Duplicate("you have already reviewed this product")
	case !apperrors.Is(err, apperrors.KindNotFound):
		return nil, err
	}

	review := &models.Review{
		ReviewerID: actor.ID,
		ProductID:  product.ID,
		Stars:      stars,
		Title:      strings.TrimSpace(req.Title),
		Body:       strings.TrimSpace(req.Body),
		IsVerified: s.hasPurchased(ctx, actor.ID, product.ID),
		IsActive:   true,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"review_id":  review.ID,
		"product_id": product.ID,
	}).Info("review created")
	s.refreshRating(ctx, product.ID)
	return review, nil
}

func (s *ReviewService) EditReview(ctx context.Context, actor models.Actor, reviewID uuid.UUID, req UpdateReviewRequest) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if err := catalog.CheckReviewAuthor(review, actor); err != nil {
		return nil, err
	}
	if err := catalog.CheckReviewActive(review); err != nil {
		return nil, err
	}

	if req.Stars != nil {
		stars, err := models.ParseStarRating(*req.Stars)
		if err != nil {
			return nil, apperrors.Validation("%s", err.Error()).WithDetail("field", "stars")
		}
		review.Stars = stars
	}
	if req.Title != nil {
		review.Title = strings.TrimSpace(*req.Title)
	}
	if req.Body != nil {
		review.Body = strings.TrimSpace(*req.Body)
	}

	if err := s.reviews.Save(ctx, review); err != nil {
		return nil, err
	}
	s.refreshRating(ctx, review.ProductID)
	return review, nil
}

// SoftDeleteReview deactivates the review. Deleting an inactive review is a no-op.
func (s *ReviewService) SoftDeleteReview(ctx context.Context, actor models.Actor, reviewID uuid.UUID) error {
	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if err := catalog.CheckReviewAuthor(review, actor); err != nil {
		return err
	}
	if !review.IsActive {
		return nil
	}

	review.IsActive = false
	if err := s.reviews.Save(ctx, review); err != nil {
		return err
	}

	s.log.WithField("review_id", review.ID).Info("review deleted")
	s.refreshRating(ctx, review.ProductID)
	return nil
}

// ListProductReviews returns the active reviews of a product the actor can see.
func (s *ReviewService) ListProductReviews(ctx context.Context, actor models.Actor, productID uuid.UUID, params utils.PaginationParams) ([]*models.Review, int64, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, 0, err
	}
	if !catalog.CanView(product, product.Vendor, actor) {
		return nil, 0, apperrors.NotFound("product %s not found", productID)
	}
	return s.reviews.List(ctx, repository.ReviewFilter{
		ProductID:        productID,
		ActiveOnly:       true,
		PaginationParams: params,
	})
}

func (s *ReviewService) AddResponse(ctx context.Context, actor models.Actor, reviewID uuid.UUID, req ResponseRequest) (*models.ReviewResponse, error) {
	if actor.IsAnonymous() {
		return nil, apperrors.Forbidden("authentication required")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if err := catalog.CheckReviewActive(review); err != nil {
		return nil, err
	}

	if req.IsVendorResponse {
		product, err := s.products.FindByID(ctx, review.ProductID)
		if err != nil {
			return nil, err
		}
		existing, err := s.reviews.CountVendorResponses(ctx, review.ID)
		if err != nil {
			return nil, err
		}
		if err := catalog.CheckVendorResponse(product, product.Vendor, actor, existing); err != nil {
			return nil, err
		}
	}

	response := &models.ReviewResponse{
		ReviewID:         review.ID,
		AuthorID:         actor.ID,
		Content:          strings.TrimSpace(req.Content),
		IsVendorResponse: req.IsVendorResponse,
	}
	if err := s.reviews.CreateResponse(ctx, response); err != nil {
		return nil, err
	}
	return response, nil
}

func (s *ReviewService) EditResponse(ctx context.Context, actor models.Actor, reviewID, responseID uuid.UUID, content string) (*models.ReviewResponse, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.Validation("content is required").WithDetail("field", "content")
	}

	response, err := s.findResponse(ctx, reviewID, responseID)
	if err != nil {
		return nil, err
	}
	if err := catalog.CheckResponseAuthor(response, actor); err != nil {
		return nil, err
	}

	response.Content = content
	if err := s.reviews.SaveResponse(ctx, response); err != nil {
		return nil, err
	}
	return response, nil
}

func (s *ReviewService) DeleteResponse(ctx context.Context, actor models.Actor, reviewID, responseID uuid.UUID) error {
	response, err := s.findResponse(ctx, reviewID, responseID)
	if err != nil {
		return err
	}
	if err := catalog.CheckResponseAuthor(response, actor); err != nil {
		return err
	}
	return s.reviews.DeleteResponse(ctx, response.ID)
}

// RecomputeRating rebuilds the product's rating summary from its active reviews.
func (s *ReviewService) RecomputeRating(ctx context.Context, productID uuid.UUID) (catalog.RatingSummary, error) {
	reviews, err := s.reviews.ListActiveByProduct(ctx, productID)
	if err != nil {
		return catalog.RatingSummary{}, err
	}
	summary := catalog.Aggregate(reviews)
	if err := s.products.UpdateRatingSummary(ctx, productID, summary); err != nil {
		return catalog.RatingSummary{}, err
	}
	return summary, nil
}

// refreshRating runs after every review mutation. The mutation has already
// been committed, so a failure here is logged and left for the next one.
func (s *ReviewService) refreshRating(ctx context.Context, productID uuid.UUID) {
	if _, err := s.RecomputeRating(ctx, productID); err != nil {
		s.log.WithError(err).WithField("product_id", productID).Error("failed to recompute product rating")
	}
}

func (s *ReviewService) findResponse(ctx context.Context, reviewID, responseID uuid.UUID) (*models.ReviewResponse, error) {
	response, err := s.reviews.FindResponseByID(ctx, responseID)
	if err != nil {
		return nil, err
	}
	if response.ReviewID != reviewID {
		return nil, apperrors.NotFound("response %s not found", responseID)
	}
	return response, nil
}

func (s *ReviewService) hasPurchased(ctx context.Context, userID, productID uuid.UUID) bool {
	if s.purchases == nil {
		return false
	}
	ok, err := s.purchases.HasPurchased(ctx, userID, productID)
	if err != nil {
		s.log.WithError(err).WithField("product_id", productID).Warn("purchase check failed")
		return false
	}
	return ok
}
