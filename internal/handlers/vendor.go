// internal/handlers/vendor.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/marketplace-catalog/internal/i18n"
	"github.com/javajoker/marketplace-catalog/internal/services"
	"github.com/javajoker/marketplace-catalog/internal/utils"
)

type VendorHandler struct {
	vendorService *services.VendorService
}

func NewVendorHandler(vendorService *services.VendorService) *VendorHandler {
	return &VendorHandler{vendorService: vendorService}
}

// POST /vendors
func (h *VendorHandler) Register(c *gin.Context) {
	var req services.VendorRegistrationRequest
	if !bindJSON(c, &req) {
		return
	}

	vendor, err := h.vendorService.Register(c.Request.Context(), utils.GetActorFromContext(c), req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.CreatedResponse(c, i18n.KeyVendorRegistered, vendor)
}

// GET /vendors/me
func (h *VendorHandler) GetMine(c *gin.Context) {
	vendor, err := h.vendorService.GetByUser(c.Request.Context(), utils.GetActorFromContext(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, vendor)
}

// POST /vendors/me/reapply
func (h *VendorHandler) Reapply(c *gin.Context) {
	var req services.VendorReapplyRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	vendor, err := h.vendorService.Reapply(c.Request.Context(), utils.GetActorFromContext(c), req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyVendorReapplied, vendor)
}

// GET /vendors/me/products
func (h *VendorHandler) GetMyProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	products, total, err := h.vendorService.ListOwnProducts(c.Request.Context(), utils.GetActorFromContext(c), params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(products, total, params))
}
