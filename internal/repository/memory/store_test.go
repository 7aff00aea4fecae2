package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/javajoker/marketplace-catalog/internal/apperrors"
	"github.com/javajoker/marketplace-catalog/internal/catalog"
	"github.com/javajoker/marketplace-catalog/internal/models"
	"github.com/javajoker/marketplace-catalog/internal/repository"
	"github.com/javajoker/marketplace-catalog/internal/utils"
)

type StoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	repos *repository.Repositories
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.repos = NewStore().Repositories()
}

func (s *StoreTestSuite) createVendor(status models.VendorStatus) *models.Vendor {
	v := &models.Vendor{UserID: uuid.New(), BusinessName: "Acme Goods", ContactEmail: "ops@acme.test", Status: status}
	s.Require().NoError(s.repos.Vendors.Create(s.ctx, v))
	return v
}

func (s *StoreTestSuite) createProduct(vendor *models.Vendor, name string, price string, approval models.Approval) *models.Product {
	p := &models.Product{
		Name:         name,
		Slug:         catalog.Slugify(name),
		Category:     "Home Decor",
		CategorySlug: "home-decor",
		Price:        decimal.RequireFromString(price),
		MRP:          decimal.RequireFromString(price),
		Status:       models.ProductStatusActive,
		Approval:     approval,
		Stock:        4,
		Available:    true,
	}
	if vendor != nil {
		p.VendorID = &vendor.ID
	}
	s.Require().NoError(s.repos.Products.Create(s.ctx, p))
	return p
}

func (s *StoreTestSuite) TestVendor_UniquePerAccount() {
	v := s.createVendor(models.VendorStatusPending)

	err := s.repos.Vendors.Create(s.ctx, &models.Vendor{UserID: v.UserID, BusinessName: "Again"})
	s.True(apperrors.Is(err, apperrors.KindDuplicate))

	found, err := s.repos.Vendors.FindByUserID(s.ctx, v.UserID)
	s.Require().NoError(err)
	s.Equal(v.ID, found.ID)

	_, err = s.repos.Vendors.FindByID(s.ctx, uuid.New())
	s.True(apperrors.Is(err, apperrors.KindNotFound))
}

func (s *StoreTestSuite) TestVendor_ListByStatus() {
	s.createVendor(models.VendorStatusPending)
	s.createVendor(models.VendorStatusPending)
	s.createVendor(models.VendorStatusApproved)

	vendors, total, err := s.repos.Vendors.List(s.ctx, repository.VendorFilter{Status: models.VendorStatusPending})
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Len(vendors, 2)
}

func (s *StoreTestSuite) TestProduct_ReturnedCopiesAreIsolated() {
	v := s.createVendor(models.VendorStatusApproved)
	p := s.createProduct(v, "Oak Shelf", "40", models.PendingApproval())

	loaded, err := s.repos.Products.FindByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Require().NotNil(loaded.Vendor)
	s.Equal(v.ID, loaded.Vendor.ID)

	loaded.Name = "Changed"
	again, err := s.repos.Products.FindByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("Oak Shelf", again.Name)
}

func (s *StoreTestSuite) TestProduct_SlugUniqueness() {
	p := s.createProduct(nil, "Oak Shelf", "40", models.PendingApproval())

	exists, err := s.repos.Products.SlugExists(s.ctx, "oak-shelf", uuid.Nil)
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.repos.Products.SlugExists(s.ctx, "oak-shelf", p.ID)
	s.Require().NoError(err)
	s.False(exists)

	err = s.repos.Products.Create(s.ctx, &models.Product{Name: "Oak Shelf", Slug: "oak-shelf"})
	s.True(apperrors.Is(err, apperrors.KindDuplicate))
}

func (s *StoreTestSuite) TestProduct_PublicOnlyFilter() {
	approved := s.createVendor(models.VendorStatusApproved)
	suspended := s.createVendor(models.VendorStatusSuspended)

	visible := s.createProduct(approved, "Visible Lamp", "20", models.ApprovedAt(time.Now(), ""))
	s.createProduct(approved, "Pending Lamp", "20", models.PendingApproval())
	s.createProduct(suspended, "Suspended Lamp", "20", models.ApprovedAt(time.Now(), ""))
	firstParty := s.createProduct(nil, "House Lamp", "20", models.PendingApproval())

	products, total, err := s.repos.Products.List(s.ctx, repository.ProductFilter{PublicOnly: true})
	s.Require().NoError(err)
	s.Equal(int64(2), total)

	ids := []uuid.UUID{products[0].ID, products[1].ID}
	s.ElementsMatch([]uuid.UUID{visible.ID, firstParty.ID}, ids)
}

func (s *StoreTestSuite) TestProduct_ListFiltersAndSort() {
	v := s.createVendor(models.VendorStatusApproved)
	s.createProduct(v, "Brass Candle", "12.50", models.PendingApproval())
	s.createProduct(v, "Linen Throw", "89", models.PendingApproval())
	s.createProduct(v, "Brass Bowl", "30", models.PendingApproval())

	minPrice := decimal.NewFromInt(20)
	products, total, err := s.repos.Products.List(s.ctx, repository.ProductFilter{
		VendorID:         &v.ID,
		Search:           "brass",
		MinPrice:         &minPrice,
		PaginationParams: utils.PaginationParams{Sort: "price", Order: "asc"},
	})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal("Brass Bowl", products[0].Name)

	products, _, err = s.repos.Products.List(s.ctx, repository.ProductFilter{
		Category:         "Home Decor",
		PaginationParams: utils.PaginationParams{Sort: "price", Order: "desc", Limit: 2},
	})
	s.Require().NoError(err)
	s.Len(products, 2)
	s.Equal("Linen Throw", products[0].Name)
	s.Equal("Brass Bowl", products[1].Name)
}

func (s *StoreTestSuite) TestProduct_UpdateRatingSummary() {
	p := s.createProduct(nil, "Clay Vase", "15", models.PendingApproval())

	summary := catalog.RatingSummary{AverageRating: 4.5, TotalReviews: 2, Distribution: models.RatingDistribution{Four: 1, Five: 1}}
	s.Require().NoError(s.repos.Products.UpdateRatingSummary(s.ctx, p.ID, summary))

	loaded, err := s.repos.Products.FindByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(4.5, loaded.AverageRating)
	s.Equal(2, loaded.TotalReviews)
	s.Equal(1, loaded.RatingDistribution.Data().Five)
}

func (s *StoreTestSuite) TestProduct_SaveKeepsRatingSummary() {
	p := s.createProduct(nil, "Clay Vase", "15", models.PendingApproval())
	stale, err := s.repos.Products.FindByID(s.ctx, p.ID)
	s.Require().NoError(err)

	summary := catalog.RatingSummary{AverageRating: 3, TotalReviews: 1, Distribution: models.RatingDistribution{Three: 1}}
	s.Require().NoError(s.repos.Products.UpdateRatingSummary(s.ctx, p.ID, summary))

	stale.Name = "Clay Vase XL"
	s.Require().NoError(s.repos.Products.Save(s.ctx, stale))

	loaded, err := s.repos.Products.FindByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("Clay Vase XL", loaded.Name)
	s.Equal(3.0, loaded.AverageRating)
	s.Equal(1, loaded.TotalReviews)
	s.Equal(1, loaded.RatingDistribution.Data().Three)
}

func (s *StoreTestSuite) TestProduct_DeletedSlugStaysReserved() {
	p := s.createProduct(nil, "Oak Shelf", "40", models.PendingApproval())
	s.Require().NoError(s.repos.Products.Delete(s.ctx, p.ID))

	_, err := s.repos.Products.FindByID(s.ctx, p.ID)
	s.True(apperrors.Is(err, apperrors.KindNotFound))

	exists, err := s.repos.Products.SlugExists(s.ctx, "oak-shelf", uuid.Nil)
	s.Require().NoError(err)
	s.True(exists)

	err = s.repos.Products.Create(s.ctx, &models.Product{Name: "Oak Shelf", Slug: "oak-shelf"})
	s.True(apperrors.Is(err, apperrors.KindDuplicate))
}

func (s *StoreTestSuite) TestReview_ActivePairUniqueness() {
	productID, reviewerID := uuid.New(), uuid.New()
	first := &models.Review{ReviewerID: reviewerID, ProductID: productID, Stars: models.StarsFour, IsActive: true}
	s.Require().NoError(s.repos.Reviews.Create(s.ctx, first))

	dup := &models.Review{ReviewerID: reviewerID, ProductID: productID, Stars: models.StarsTwo, IsActive: true}
	s.True(apperrors.Is(s.repos.Reviews.Create(s.ctx, dup), apperrors.KindDuplicate))

	first.IsActive = false
	s.Require().NoError(s.repos.Reviews.Save(s.ctx, first))
	s.Require().NoError(s.repos.Reviews.Create(s.ctx, dup))

	active, err := s.repos.Reviews.ListActiveByProduct(s.ctx, productID)
	s.Require().NoError(err)
	s.Len(active, 1)
	s.Equal(models.StarsTwo, active[0].Stars)
}

func (s *StoreTestSuite) TestReview_ResponsesLifecycle() {
	review := &models.Review{ReviewerID: uuid.New(), ProductID: uuid.New(), Stars: models.StarsFive, IsActive: true}
	s.Require().NoError(s.repos.Reviews.Create(s.ctx, review))

	vendorReply := &models.ReviewResponse{ReviewID: review.ID, AuthorID: uuid.New(), Content: "Thanks!", IsVendorResponse: true}
	s.Require().NoError(s.repos.Reviews.CreateResponse(s.ctx, vendorReply))
	s.Require().NoError(s.repos.Reviews.CreateResponse(s.ctx, &models.ReviewResponse{ReviewID: review.ID, AuthorID: uuid.New(), Content: "Agreed"}))

	second := &models.ReviewResponse{ReviewID: review.ID, AuthorID: vendorReply.AuthorID, Content: "Again", IsVendorResponse: true}
	s.True(apperrors.Is(s.repos.Reviews.CreateResponse(s.ctx, second), apperrors.KindDuplicate))

	loaded, err := s.repos.Reviews.FindByID(s.ctx, review.ID)
	s.Require().NoError(err)
	s.Len(loaded.Responses, 2)
	s.Equal("Thanks!", loaded.Responses[0].Content)

	s.Require().NoError(s.repos.Reviews.DeleteResponse(s.ctx, vendorReply.ID))
	count, err := s.repos.Reviews.CountVendorResponses(s.ctx, review.ID)
	s.Require().NoError(err)
	s.Zero(count)

	_, err = s.repos.Reviews.FindResponseByID(s.ctx, vendorReply.ID)
	s.True(apperrors.Is(err, apperrors.KindNotFound))
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func TestAuditAndNotifications(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()
	resourceID := uuid.New()

	require.NoError(t, repos.AuditLogs.Create(ctx, &models.AuditLog{Action: "approve", ResourceType: "product", ResourceID: &resourceID}))
	entries, err := repos.AuditLogs.ListByResource(ctx, "product", resourceID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	recipient := uuid.New()
	require.NoError(t, repos.Notifications.Create(ctx, &models.Notification{RecipientID: recipient, Type: "t", Title: "x", Message: "y"}))
	notes, err := repos.Notifications.ListByRecipient(ctx, recipient)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationStatusUnread, notes[0].Status)
}
