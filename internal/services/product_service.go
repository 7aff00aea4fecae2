// internal/services/product_service.go
package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/marketplace-catalog/internal/apperrors"
	"github.com/javajoker/marketplace-catalog/internal/catalog"
	"github.com/javajoker/marketplace-catalog/internal/config"
	"github.com/javajoker/marketplace-catalog/internal/models"
	"github.com/javajoker/marketplace-catalog/internal/repository"
	"github.com/javajoker/marketplace-catalog/internal/utils"
)

const fallbackSlug = "product"

type ProductService struct {
	vendors  repository.VendorRepository
	products repository.ProductRepository
	assets   AssetStore
	config   config.CatalogConfig
	log      logrus.FieldLogger
}

type ColorVariantRequest struct {
	ColorName string         `json:"color_name" validate:"required,max=50"`
	ColorCode string         `json:"color_code" validate:"hexcolor_or_empty"`
	Stock     int            `json:"stock" validate:"min=0"`
	IsActive  *bool          `json:"is_active"`
	Images    []models.Image `json:"images"`
}

// ProductRequest is the decoded create/update payload. On update, nil fields
// keep their current value.
type ProductRequest struct {
	Name          *string                `json:"name" validate:"omitempty,min=2,max=255"`
	Description   *string                `json:"description" validate:"omitempty,max=10000"`
	Category      *string                `json:"category" validate:"omitempty,max=100"`
	Price         *decimal.Decimal       `json:"price"`
	MRP           *decimal.Decimal       `json:"mrp"`
	Discount      *int                   `json:"discount" validate:"omitempty,min=0,max=100"`
	Status        *models.ProductStatus  `json:"status" validate:"omitempty,oneof=active inactive"`
	Stock         *int                   `json:"stock" validate:"omitempty,min=0"`
	Images        *[]models.Image        `json:"images"`
	ColorVariants *[]ColorVariantRequest `json:"color_variants"`
	// VendorID lets an admin create a product on behalf of a vendor.
	VendorID *uuid.UUID `json:"vendor_id"`
}

// ProductUploads are files sent alongside a product payload. VariantImages is
// keyed by color name.
type ProductUploads struct {
	Images        []FileUpload
	VariantImages map[string][]FileUpload
}

func (u ProductUploads) count() int {
	n := len(u.Images)
	for _, files := range u.VariantImages {
		n += len(files)
	}
	return n
}

type ProductSearchParams struct {
	utils.PaginationParams
	VendorID  *uuid.UUID
	Category  string
	Search    string
	InStock   bool
	PriceMin  *decimal.Decimal
	PriceMax  *decimal.Decimal
	MinRating float64
}

type uploadedMedia struct {
	images   []models.Image
	variants map[string][]models.Image
	ids      []string
}

func NewProductService(repos *repository.Repositories, assets AssetStore, cfg config.CatalogConfig, log logrus.FieldLogger) *ProductService {
	return &ProductService{
		vendors:  repos.Vendors,
		products: repos.Products,
		assets:   assets,
		config:   cfg,
		log:      log,
	}
}

func (s *ProductService) CreateProduct(ctx context.Context, actor models.Actor, req ProductRequest, uploads ProductUploads) (*models.Product, error) {
	if err := validateProductRequest(req); err != nil {
		return nil, err
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, apperrors.Validation("name is required").WithDetail("field", "name")
	}

	vendor, err := s.resolveOwner(ctx, actor, req.VendorID)
	if err != nil {
		return nil, err
	}

	pricing, err := catalog.DerivePricing(req.Price, req.MRP, req.Discount)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:     strings.TrimSpace(*req.Name),
		Status:   models.ProductStatusActive,
		Approval: models.PendingApproval(),
		Price:    pricing.Price,
		MRP:      pricing.MRP,
		Discount: pricing.Discount,
	}
	if vendor != nil {
		product.VendorID = &vendor.ID
	}
	applyProductFields(product, req)

	media, err := s.uploadMedia(ctx, uploads)
	if err != nil {
		return nil, err
	}
	if err := applyMedia(product, req.Images, req.ColorVariants, media); err != nil {
		s.cleanupAssets(ctx, media.ids)
		return nil, err
	}

	product.Slug, err = s.uniqueSlug(ctx, product.Name, uuid.Nil)
	if err != nil {
		s.cleanupAssets(ctx, media.ids)
		return nil, err
	}

	catalog.ApplyInventory(product)
	if err := s.products.Create(ctx, product); err != nil {
		s.cleanupAssets(ctx, media.ids)
		return nil, err
	}
	product.Vendor = vendor

	s.log.WithFields(logrus.Fields{
		"product_id": product.ID,
		"vendor_id":  product.VendorID,
		"actor_id":   actor.ID,
	}).Info("product created")
	return product, nil
}

// UpdateProduct applies a partial update. The approval decision is kept as is.
func (s *ProductService) UpdateProduct(ctx context.Context, actor models.Actor, id uuid.UUID, req ProductRequest, uploads ProductUploads) (*models.Product, error) {
	if err := validateProductRequest(req); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeWrite(product, actor); err != nil {
		return nil, err
	}
	if req.VendorID != nil && (product.IsFirstParty() || *req.VendorID != *product.VendorID) {
		return nil, apperrors.Validation("a product cannot change owner").WithDetail("field", "vendor_id")
	}

	previousAssets := product.AssetIDs()

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.Validation("name must not be empty").WithDetail("field", "name")
		}
		if name != product.Name {
			product.Name = name
			if product.Slug, err = s.uniqueSlug(ctx, name, product.ID); err != nil {
				return nil, err
			}
		}
	}
	applyProductFields(product, req)

	if req.Price != nil || req.MRP != nil || req.Discount != nil {
		pricing, err := updatedPricing(product, req)
		if err != nil {
			return nil, err
		}
		product.Price, product.MRP, product.Discount = pricing.Price, pricing.MRP, pricing.Discount
	}

	media, err := s.uploadMedia(ctx, uploads)
	if err != nil {
		return nil, err
	}
	if err := applyMedia(product, req.Images, req.ColorVariants, media); err != nil {
		s.cleanupAssets(ctx, media.ids)
		return nil, err
	}

	catalog.ApplyInventory(product)
	if err := s.products.Save(ctx, product); err != nil {
		s.cleanupAssets(ctx, media.ids)
		return nil, err
	}

	s.cleanupAssets(ctx, removedAssets(previousAssets, product.AssetIDs()))

	s.log.WithFields(logrus.Fields{
		"product_id": product.ID,
		"actor_id":   actor.ID,
	}).Info("product updated")
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeWrite(product, actor); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, product.ID); err != nil {
		return err
	}

	s.cleanupAssets(ctx, product.AssetIDs())
	s.log.WithFields(logrus.Fields{
		"product_id": product.ID,
		"actor_id":   actor.ID,
	}).Info("product deleted")
	return nil
}

// GetProductDetail loads a product by ID or slug. Products the actor may not
// see are reported as not found.
func (s *ProductService) GetProductDetail(ctx context.Context, actor models.Actor, idOrSlug string) (*models.Product, error) {
	product, err := readWithRetry(ctx, s.log, s.config.ReadRetryDelay, "get_product", func() (*models.Product, error) {
		if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
			return s.products.FindByID(ctx, id)
		}
		return s.products.FindBySlug(ctx, idOrSlug)
	})
	if err != nil {
		return nil, err
	}

	catalog.ApplyInventory(product)
	if !catalog.CanView(product, product.Vendor, actor) {
		return nil, apperrors.NotFound("product %s not found", idOrSlug)
	}
	return product, nil
}

// GetVisibleProducts lists the shopper-visible catalog. The stored pre-filter
// is re-checked against the visibility rule before anything is returned.
func (s *ProductService) GetVisibleProducts(ctx context.Context, params ProductSearchParams) ([]*models.Product, int64, error) {
	filter := repository.ProductFilter{
		VendorID:         params.VendorID,
		Category:         params.Category,
		Search:           params.Search,
		PublicOnly:       true,
		InStockOnly:      params.InStock,
		MinPrice:         params.PriceMin,
		MaxPrice:         params.PriceMax,
		MinRating:        params.MinRating,
		PaginationParams: params.PaginationParams,
	}

	type page struct {
		products []*models.Product
		total    int64
	}
	result, err := readWithRetry(ctx, s.log, s.config.ReadRetryDelay, "list_products", func() (page, error) {
		products, total, err := s.products.List(ctx, filter)
		return page{products, total}, err
	})
	if err != nil {
		return nil, 0, err
	}

	visible := make([]*models.Product, 0, len(result.products))
	for _, p := range result.products {
		catalog.ApplyInventory(p)
		if catalog.IsPubliclyVisible(p, p.Vendor) {
			visible = append(visible, p)
		}
	}

	// The stored count was taken before the re-check; discount what it removed.
	total := result.total
	if dropped := len(result.products) - len(visible); dropped > 0 {
		s.log.WithFields(logrus.Fields{
			"dropped": dropped,
			"listed":  len(result.products),
		}).Warn("visibility re-check removed listed products")
		total -= int64(dropped)
		if total < int64(len(visible)) {
			total = int64(len(visible))
		}
	}
	return visible, total, nil
}

// UploadImages stores files independently of any product, for later reference
// in a product payload.
func (s *ProductService) UploadImages(ctx context.Context, actor models.Actor, files []FileUpload) ([]UploadResult, error) {
	if !actor.IsAdmin() {
		vendor, err := s.vendorForActor(ctx, actor)
		if err != nil {
			return nil, err
		}
		if err := catalog.RequireActiveVendor(vendor); err != nil {
			return nil, err
		}
	}
	if len(files) == 0 {
		return nil, apperrors.Validation("no files were uploaded")
	}
	if s.config.MaxUploadFiles > 0 && len(files) > s.config.MaxUploadFiles {
		return nil, apperrors.Validation("at most %d files may be uploaded at once", s.config.MaxUploadFiles)
	}
	if s.assets == nil {
		return nil, apperrors.Internal(nil, "asset store is not configured")
	}
	return UploadBatch(ctx, s.assets, files), nil
}

// resolveOwner returns the vendor a new product belongs to, or nil for a
// first-party product created by an admin.
func (s *ProductService) resolveOwner(ctx context.Context, actor models.Actor, vendorID *uuid.UUID) (*models.Vendor, error) {
	if actor.IsAnonymous() {
		return nil, apperrors.Forbidden("authentication required")
	}

	var vendor *models.Vendor
	var err error
	switch {
	case actor.IsAdmin() && vendorID == nil:
		return nil, nil
	case actor.IsAdmin():
		vendor, err = s.vendors.FindByID(ctx, *vendorID)
	default:
		vendor, err = s.vendorForActor(ctx, actor)
		if err == nil && vendorID != nil && *vendorID != vendor.ID {
			return nil, apperrors.Forbidden("cannot create products for another vendor")
		}
	}
	if err != nil {
		return nil, err
	}
	if err := catalog.RequireActiveVendor(vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

func (s *ProductService) vendorForActor(ctx context.Context, actor models.Actor) (*models.Vendor, error) {
	if actor.IsAnonymous() {
		return nil, apperrors.Forbidden("authentication required")
	}
	vendor, err := s.vendors.FindByUserID(ctx, actor.ID)
	if apperrors.Is(err, apperrors.KindNotFound) {
		return nil, apperrors.PreconditionFailed("no vendor profile for this account")
	}
	return vendor, err
}

// authorizeWrite allows the owning vendor while it is approved, and admins always.
func (s *ProductService) authorizeWrite(product *models.Product, actor models.Actor) error {
	if !catalog.CanManage(product, product.Vendor, actor) {
		return apperrors.Forbidden("not allowed to modify this product")
	}
	if actor.IsAdmin() {
		return nil
	}
	return catalog.RequireActiveVendor(product.Vendor)
}

// uniqueSlug derives a slug from name, adding a numeric suffix on collision.
func (s *ProductService) uniqueSlug(ctx context.Context, name string, excludeID uuid.UUID) (string, error) {
	base := catalog.Slugify(name)
	if base == "" {
		base = fallbackSlug
	}
	attempts := s.config.SlugMaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	for n := 1; n <= attempts; n++ {
		candidate := catalog.SlugCandidate(base, n)
		taken, err := s.products.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return base + "-" + uuid.New().String()[:8], nil
}

// uploadMedia stores every uploaded file. It is all or nothing: on failure the
// files already stored are removed again.
func (s *ProductService) uploadMedia(ctx context.Context, uploads ProductUploads) (uploadedMedia, error) {
	media := uploadedMedia{variants: make(map[string][]models.Image)}
	total := uploads.count()
	if total == 0 {
		return media, nil
	}
	if s.config.MaxUploadFiles > 0 && total > s.config.MaxUploadFiles {
		return media, apperrors.Validation("at most %d files may be uploaded at once", s.config.MaxUploadFiles)
	}
	if s.assets == nil {
		return media, apperrors.Internal(nil, "asset store is not configured")
	}

	upload := func(f FileUpload) (models.Image, error) {
		asset, err := s.assets.Upload(ctx, f.Filename, f.Data)
		if err != nil {
			return models.Image{}, err
		}
		media.ids = append(media.ids, asset.ID)
		return models.Image{URL: asset.URL, AssetID: asset.ID}, nil
	}

	for _, f := range uploads.Images {
		img, err := upload(f)
		if err != nil {
			s.cleanupAssets(ctx, media.ids)
			return uploadedMedia{}, err
		}
		media.images = append(media.images, img)
	}
	for color, files := range uploads.VariantImages {
		for _, f := range files {
			img, err := upload(f)
			if err != nil {
				s.cleanupAssets(ctx, media.ids)
				return uploadedMedia{}, err
			}
			media.variants[color] = append(media.variants[color], img)
		}
	}
	return media, nil
}

// cleanupAssets deletes assets best-effort; failures are only logged.
func (s *ProductService) cleanupAssets(ctx context.Context, ids []string) {
	if s.assets == nil {
		return
	}
	for _, id := range ids {
		if err := s.assets.Delete(ctx, id); err != nil {
			s.log.WithError(err).WithField("asset_id", id).Warn("failed to delete asset")
		}
	}
}

func validateProductRequest(req ProductRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return validationError(err)
	}
	if req.ColorVariants != nil {
		for _, v := range *req.ColorVariants {
			if err := utils.ValidateStruct(v); err != nil {
				return validationError(err)
			}
		}
	}
	return nil
}

func applyProductFields(product *models.Product, req ProductRequest) {
	if req.Description != nil {
		product.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		product.Category = strings.TrimSpace(*req.Category)
		product.CategorySlug = catalog.Slugify(product.Category)
	}
	if req.Status != nil {
		product.Status = *req.Status
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
}

// updatedPricing fills the price fields missing from an update from the
// current product, letting the derived field follow the supplied ones.
func updatedPricing(product *models.Product, req ProductRequest) (catalog.Pricing, error) {
	price, mrp, discount := req.Price, req.MRP, req.Discount
	switch {
	case price != nil && mrp != nil, price != nil && discount != nil, mrp != nil && discount != nil:
	case price != nil:
		current := product.MRP
		mrp = &current
	case mrp != nil:
		current := product.Discount
		discount = &current
	case discount != nil:
		current := product.MRP
		mrp = &current
	}
	return catalog.DerivePricing(price, mrp, discount)
}

// applyMedia merges requested and uploaded images into the product. A nil
// request field keeps the current images; uploads are appended.
func applyMedia(product *models.Product, images *[]models.Image, variants *[]ColorVariantRequest, media uploadedMedia) error {
	legacy := []models.Image(product.Images)
	if images != nil {
		legacy = *images
	}
	legacy = append(append([]models.Image(nil), legacy...), media.images...)
	for _, img := range legacy {
		if img.URL == "" {
			return apperrors.Validation("every image needs a url").WithDetail("field", "images")
		}
	}
	legacy, err := catalog.NormalizeImages(legacy)
	if err != nil {
		return err
	}

	current := []models.ColorVariant(product.ColorVariants)
	if variants != nil {
		current = make([]models.ColorVariant, 0, len(*variants))
		for _, v := range *variants {
			active := true
			if v.IsActive != nil {
				active = *v.IsActive
			}
			current = append(current, models.ColorVariant{
				ColorName: strings.TrimSpace(v.ColorName),
				ColorCode: v.ColorCode,
				Stock:     v.Stock,
				IsActive:  active,
				Images:    append([]models.Image(nil), v.Images...),
			})
		}
	} else {
		current = append([]models.ColorVariant(nil), current...)
	}

	for color, uploaded := range media.variants {
		idx := -1
		for i := range current {
			if current[i].ColorName == color {
				idx = i
				break
			}
		}
		if idx < 0 {
			return apperrors.Validation("images uploaded for unknown color %q", color)
		}
		current[idx].Images = append(append([]models.Image(nil), current[idx].Images...), uploaded...)
	}
	if err := catalog.NormalizeVariants(current); err != nil {
		return err
	}

	product.Images = legacy
	product.ColorVariants = current
	if len(current) > 0 {
		product.Colors = catalog.ColorNames(current)
	} else {
		product.Colors = nil
	}
	return nil
}

// removedAssets lists the IDs in before that are no longer referenced in after.
func removedAssets(before, after []string) []string {
	kept := make(map[string]bool, len(after))
	for _, id := range after {
		kept[id] = true
	}
	var removed []string
	for _, id := range before {
		if !kept[id] {
			removed = append(removed, id)
		}
	}
	return removed
}

// readWithRetry retries a failed read once after delay. Expected errors such
// as not found are returned immediately.
func readWithRetry[T any](ctx context.Context, log logrus.FieldLogger, delay time.Duration, op string, read func() (T, error)) (T, error) {
	v, err := read()
	if err == nil || apperrors.IsExpected(err) {
		return v, err
	}

	log.WithError(err).WithField("operation", op).Warn("read failed, retrying")
	select {
	case <-ctx.Done():
		return v, ctx.Err()
	case <-time.After(delay):
	}
	return read()
}
