package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/javajoker/marketplace-catalog/internal/apperrors"
	"github.com/javajoker/marketplace-catalog/internal/catalog"
	"github.com/javajoker/marketplace-catalog/internal/models"
	"github.com/javajoker/marketplace-catalog/internal/repository"
)

type productRepository struct {
	s *Store
}

// stored strips the vendor relation; it is re-attached on read.
func stored(p *models.Product) *models.Product {
	c := p.Clone()
	c.Vendor = nil
	return c
}

func (r *productRepository) withVendor(p *models.Product) *models.Product {
	c := p.Clone()
	if p.VendorID != nil {
		c.Vendor = r.s.vendors[*p.VendorID].Clone()
	}
	return c
}

// slugTaken also counts slugs of deleted products, which stay reserved.
func (r *productRepository) slugTaken(slug string, excludeID uuid.UUID) bool {
	if _, ok := r.s.deletedSlugs[slug]; ok {
		return true
	}
	for id, p := range r.s.products {
		if id != excludeID && p.Slug == slug {
			return true
		}
	}
	return false
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.slugTaken(product.Slug, uuid.Nil) {
		return apperrors.Duplicate("slug %q is already in use", product.Slug)
	}
	r.s.stamp(&product.BaseModel, true)
	r.s.products[product.ID] = stored(product)
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, apperrors.NotFound("product %s not found", id)
	}
	return r.withVendor(p), nil
}

func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.products {
		if p.Slug == slug {
			return r.withVendor(p), nil
		}
	}
	return nil, apperrors.NotFound("product %q not found", slug)
}

func (r *productRepository) Save(ctx context.Context, product *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.products[product.ID]
	if !ok {
		return apperrors.NotFound("product %s not found", product.ID)
	}
	if r.slugTaken(product.Slug, product.ID) {
		return apperrors.Duplicate("slug %q is already in use", product.Slug)
	}
	r.s.stamp(&product.BaseModel, false)

	// The rating summary is owned by UpdateRatingSummary.
	next := stored(product)
	next.AverageRating = current.AverageRating
	next.TotalReviews = current.TotalReviews
	next.RatingDistribution = current.RatingDistribution
	r.s.products[product.ID] = next
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return apperrors.NotFound("product %s not found", id)
	}
	r.s.deletedSlugs[p.Slug] = id
	delete(r.s.products, id)
	return nil
}

func (r *productRepository) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.slugTaken(slug, excludeID), nil
}

func (r *productRepository) matches(p *models.Product, filter repository.ProductFilter) bool {
	if filter.VendorID != nil && (p.VendorID == nil || *p.VendorID != *filter.VendorID) {
		return false
	}
	if filter.Category != "" && p.CategorySlug != catalog.Slugify(filter.Category) {
		return false
	}
	if filter.Search != "" && !containsFold(p.Name, filter.Search) && !containsFold(p.Description, filter.Search) {
		return false
	}
	if filter.Status != "" && p.Status != filter.Status {
		return false
	}
	if filter.ApprovalKind != "" && p.Approval.Kind != filter.ApprovalKind {
		return false
	}
	if filter.InStockOnly && !p.Available {
		return false
	}
	if filter.MinPrice != nil && p.Price.LessThan(*filter.MinPrice) {
		return false
	}
	if filter.MaxPrice != nil && p.Price.GreaterThan(*filter.MaxPrice) {
		return false
	}
	if filter.MinRating > 0 && p.AverageRating < filter.MinRating {
		return false
	}
	if filter.PublicOnly {
		var vendor *models.Vendor
		if p.VendorID != nil {
			vendor = r.s.vendors[*p.VendorID]
		}
		if !catalog.IsPubliclyVisible(p, vendor) {
			return false
		}
	}
	return true
}

func (r *productRepository) filter(filter repository.ProductFilter) []*models.Product {
	var matched []*models.Product
	for _, p := range r.s.products {
		if r.matches(p, filter) {
			matched = append(matched, p)
		}
	}
	return matched
}

func (r *productRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*models.Product, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := r.filter(filter)
	params := filter.PaginationParams.Normalize()
	sortProducts(matched, params.Sort, params.Order)

	start, end := params.Window(len(matched))
	page := make([]*models.Product, 0, end-start)
	for _, p := range matched[start:end] {
		page = append(page, r.withVendor(p))
	}
	return page, int64(len(matched)), nil
}

func (r *productRepository) Count(ctx context.Context, filter repository.ProductFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return int64(len(r.filter(filter))), nil
}

func (r *productRepository) UpdateRatingSummary(ctx context.Context, productID uuid.UUID, summary catalog.RatingSummary) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[productID]
	if !ok {
		return apperrors.NotFound("product %s not found", productID)
	}
	p.AverageRating = summary.AverageRating
	p.TotalReviews = summary.TotalReviews
	p.RatingDistribution = datatypes.NewJSONType(summary.Distribution)
	return nil
}

func sortProducts(items []*models.Product, field, order string) {
	less := func(a, b *models.Product) bool {
		switch field {
		case "price":
			return a.Price.LessThan(b.Price)
		case "name":
			return a.Name < b.Name
		case "average_rating":
			return a.AverageRating < b.AverageRating
		case "total_reviews":
			return a.TotalReviews < b.TotalReviews
		case "updated_at":
			return a.UpdatedAt.Before(b.UpdatedAt)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if order == "asc" {
			return less(items[i], items[j])
		}
		return less(items[j], items[i])
	})
}
