// internal/handlers/review.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/marketplace-catalog/internal/i18n"
	"github.com/javajoker/marketplace-catalog/internal/services"
	"github.com/javajoker/marketplace-catalog/internal/utils"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// GET /products/:id/reviews
func (h *ReviewHandler) GetProductReviews(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	reviews, total, err := h.reviewService.ListProductReviews(c.Request.Context(), utils.GetActorFromContext(c), productID, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(reviews, total, params))
}

// POST /reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req services.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), utils.GetActorFromContext(c), req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.CreatedResponse(c, i18n.KeyReviewCreated, review)
}

// PUT /reviews/:id
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.EditReview(c.Request.Context(), utils.GetActorFromContext(c), id, req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyReviewUpdated, review)
}

// DELETE /reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.reviewService.SoftDeleteReview(c.Request.Context(), utils.GetActorFromContext(c), id); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyReviewDeleted, nil)
}

// POST /reviews/:id/responses
func (h *ReviewHandler) AddResponse(c *gin.Context) {
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.ResponseRequest
	if !bindJSON(c, &req) {
		return
	}

	response, err := h.reviewService.AddResponse(c.Request.Context(), utils.GetActorFromContext(c), reviewID, req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.CreatedResponse(c, i18n.KeyResponseCreated, response)
}

// PUT /reviews/:id/responses/:rid
func (h *ReviewHandler) UpdateResponse(c *gin.Context) {
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	responseID, ok := parseIDParam(c, "rid")
	if !ok {
		return
	}
	var req responseContentRequest
	if !bindJSON(c, &req) {
		return
	}

	response, err := h.reviewService.EditResponse(c.Request.Context(), utils.GetActorFromContext(c), reviewID, responseID, req.Content)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyResponseUpdated, response)
}

// DELETE /reviews/:id/responses/:rid
func (h *ReviewHandler) DeleteResponse(c *gin.Context) {
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	responseID, ok := parseIDParam(c, "rid")
	if !ok {
		return
	}

	if err := h.reviewService.DeleteResponse(c.Request.Context(), utils.GetActorFromContext(c), reviewID, responseID); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyResponseDeleted, nil)
}
