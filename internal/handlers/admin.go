// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/marketplace-catalog/internal/i18n"
	"github.com/javajoker/marketplace-catalog/internal/models"
	"github.com/javajoker/marketplace-catalog/internal/services"
	"github.com/javajoker/marketplace-catalog/internal/utils"
)

type AdminHandler struct {
	adminService  *services.AdminService
	reviewService *services.ReviewService
}

func NewAdminHandler(adminService *services.AdminService, reviewService *services.ReviewService) *AdminHandler {
	return &AdminHandler{
		adminService:  adminService,
		reviewService: reviewService,
	}
}

// GET /admin/stats
func (h *AdminHandler) GetQueueStats(c *gin.Context) {
	stats, err := h.adminService.GetQueueStats(c.Request.Context(), utils.GetActorFromContext(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, stats)
}

// GET /admin/vendors
func (h *AdminHandler) GetVendors(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	filter := services.AdminVendorFilter{
		PaginationParams: params,
		Status:           models.VendorStatus(c.Query("status")),
		Search:           c.Query("q"),
	}

	vendors, total, err := h.adminService.ListVendors(c.Request.Context(), utils.GetActorFromContext(c), filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(vendors, total, params))
}

// GET /admin/vendors/:id
func (h *AdminHandler) GetVendor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	vendor, err := h.adminService.GetVendor(c.Request.Context(), utils.GetActorFromContext(c), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, vendor)
}

// PUT /admin/vendors/:id/approve
func (h *AdminHandler) ApproveVendor(c *gin.Context) {
	id, req, ok := h.decision(c)
	if !ok {
		return
	}

	vendor, err := h.adminService.ApproveVendor(c.Request.Context(), utils.GetActorFromContext(c), id, req.Feedback)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyVendorApproved, vendor)
}

// PUT /admin/vendors/:id/reject
func (h *AdminHandler) RejectVendor(c *gin.Context) {
	id, req, ok := h.decision(c)
	if !ok {
		return
	}

	vendor, err := h.adminService.RejectVendor(c.Request.Context(), utils.GetActorFromContext(c), id, req.Reason)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyVendorRejected, vendor)
}

// PUT /admin/vendors/:id/suspend
func (h *AdminHandler) SuspendVendor(c *gin.Context) {
	id, req, ok := h.decision(c)
	if !ok {
		return
	}

	vendor, err := h.adminService.SuspendVendor(c.Request.Context(), utils.GetActorFromContext(c), id, req.Reason)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyVendorSuspended, vendor)
}

// GET /admin/products
func (h *AdminHandler) GetProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	filter := services.AdminProductFilter{
		PaginationParams: params,
		ApprovalKind:     models.ApprovalKind(c.Query("approval")),
		Status:           models.ProductStatus(c.Query("status")),
		Search:           c.Query("q"),
	}
	if vendorIDStr := c.Query("vendor_id"); vendorIDStr != "" {
		if vendorID, err := uuid.Parse(vendorIDStr); err == nil {
			filter.VendorID = &vendorID
		}
	}

	products, total, err := h.adminService.ListProducts(c.Request.Context(), utils.GetActorFromContext(c), filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(products, total, params))
}

// PUT /admin/products/:id/approve
func (h *AdminHandler) ApproveProduct(c *gin.Context) {
	id, req, ok := h.decision(c)
	if !ok {
		return
	}

	product, err := h.adminService.ApproveProduct(c.Request.Context(), utils.GetActorFromContext(c), id, req.Feedback)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyProductApproved, product)
}

// PUT /admin/products/:id/reject
func (h *AdminHandler) RejectProduct(c *gin.Context) {
	id, req, ok := h.decision(c)
	if !ok {
		return
	}

	product, err := h.adminService.RejectProduct(c.Request.Context(), utils.GetActorFromContext(c), id, req.Reason)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyProductRejected, product)
}

// POST /admin/products/:id/recompute-rating
func (h *AdminHandler) RecomputeRating(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	summary, err := h.reviewService.RecomputeRating(c.Request.Context(), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyRatingRecomputed, summary)
}

func (h *AdminHandler) decision(c *gin.Context) (uuid.UUID, decisionRequest, bool) {
	var req decisionRequest
	id, ok := parseIDParam(c, "id")
	if !ok {
		return id, req, false
	}
	return id, req, bindOptionalJSON(c, &req)
}
