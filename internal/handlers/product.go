// internal/handlers/product.go
package handlers

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/javajoker/marketplace-catalog/internal/i18n"
	"github.com/javajoker/marketplace-catalog/internal/services"
	"github.com/javajoker/marketplace-catalog/internal/utils"
)

const (
	payloadField       = "payload"
	imagesField        = "images"
	variantImagePrefix = "variant_images["
)

type ProductHandler struct {
	productService *services.ProductService
	maxUploadBytes int64
}

func NewProductHandler(productService *services.ProductService, maxUploadBytes int64) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		maxUploadBytes: maxUploadBytes,
	}
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	searchParams := services.ProductSearchParams{
		PaginationParams: params,
		Category:         c.Query("category"),
		Search:           c.Query("q"),
	}

	if vendorIDStr := c.Query("vendor_id"); vendorIDStr != "" {
		if vendorID, err := uuid.Parse(vendorIDStr); err == nil {
			searchParams.VendorID = &vendorID
		}
	}

	if priceMinStr := c.Query("price_min"); priceMinStr != "" {
		if priceMin, err := decimal.NewFromString(priceMinStr); err == nil {
			searchParams.PriceMin = &priceMin
		}
	}

	if priceMaxStr := c.Query("price_max"); priceMaxStr != "" {
		if priceMax, err := decimal.NewFromString(priceMaxStr); err == nil {
			searchParams.PriceMax = &priceMax
		}
	}

	if inStockStr := c.Query("in_stock"); inStockStr != "" {
		if inStock, err := strconv.ParseBool(inStockStr); err == nil {
			searchParams.InStock = inStock
		}
	}

	if minRatingStr := c.Query("min_rating"); minRatingStr != "" {
		if minRating, err := strconv.ParseFloat(minRatingStr, 64); err == nil {
			searchParams.MinRating = minRating
		}
	}

	products, total, err := h.productService.GetVisibleProducts(c.Request.Context(), searchParams)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /products/:id accepts an ID or a slug.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetProductDetail(c.Request.Context(), utils.GetActorFromContext(c), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, product)
}

// POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	req, uploads, ok := h.readProductRequest(c)
	if !ok {
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), utils.GetActorFromContext(c), req, uploads)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.CreatedResponse(c, i18n.KeyProductCreated, product)
}

// PUT /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	req, uploads, ok := h.readProductRequest(c)
	if !ok {
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), utils.GetActorFromContext(c), id, req, uploads)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyProductUpdated, product)
}

// DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), utils.GetActorFromContext(c), id); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyProductDeleted, nil)
}

// POST /products/upload-images
func (h *ProductHandler) UploadImages(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return
	}

	files, err := readFiles(form.File[imagesField], h.maxUploadBytes)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	results, err := h.productService.UploadImages(c.Request.Context(), utils.GetActorFromContext(c), files)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyFileUploadSuccess, results)
}

// readProductRequest decodes either a JSON body or a multipart form whose
// payload field carries the JSON and whose file fields carry images.
// Variant images use fields named variant_images[<color name>].
func (h *ProductHandler) readProductRequest(c *gin.Context) (services.ProductRequest, services.ProductUploads, bool) {
	var req services.ProductRequest
	var uploads services.ProductUploads
	lang := utils.GetLangFromContext(c)

	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return req, uploads, bindJSON(c, &req)
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "form"), err.Error())
		return req, uploads, false
	}
	if payload := form.Value[payloadField]; len(payload) > 0 {
		if err := json.Unmarshal([]byte(payload[0]), &req); err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, payloadField), err.Error())
			return req, uploads, false
		}
	}

	for field, headers := range form.File {
		files, err := readFiles(headers, h.maxUploadBytes)
		if err != nil {
			utils.HandleError(c, err)
			return req, uploads, false
		}
		switch {
		case field == imagesField:
			uploads.Images = append(uploads.Images, files...)
		case strings.HasPrefix(field, variantImagePrefix) && strings.HasSuffix(field, "]"):
			color := strings.TrimSuffix(strings.TrimPrefix(field, variantImagePrefix), "]")
			if uploads.VariantImages == nil {
				uploads.VariantImages = make(map[string][]services.FileUpload)
			}
			uploads.VariantImages[color] = append(uploads.VariantImages[color], files...)
		}
	}
	return req, uploads, true
}
