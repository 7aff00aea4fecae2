package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/javajoker/marketplace-catalog/internal/config"
	"github.com/javajoker/marketplace-catalog/internal/i18n"
	"github.com/javajoker/marketplace-catalog/internal/repository/memory"
	"github.com/javajoker/marketplace-catalog/internal/services"
	"github.com/javajoker/marketplace-catalog/internal/utils"
)

type memoryAssets struct {
	uploaded []string
}

func (m *memoryAssets) Upload(ctx context.Context, filename string, data []byte) (*services.UploadedAsset, error) {
	id := fmt.Sprintf("products/%d-%s", len(m.uploaded), filename)
	m.uploaded = append(m.uploaded, id)
	return &services.UploadedAsset{ID: id, URL: "https://cdn.example.com/" + id, Size: len(data)}, nil
}

func (m *memoryAssets) Delete(ctx context.Context, assetID string) error {
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
	Meta struct {
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	} `json:"meta"`
}

type RouterTestSuite struct {
	suite.Suite
	router *Router
	assets *memoryAssets

	admin    string
	vendor   string
	customer string
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.Require().NoError(i18n.Initialize())
}

func (s *RouterTestSuite) SetupTest() {
	log, _ := test.NewNullLogger()
	cfg := &config.Config{
		JWT: config.JWTConfig{SecretKey: "router-test-secret"},
		RateLimit: config.RateLimitConfig{
			RequestsPerSecond: 1000,
			Burst:             1000,
			UploadPerSecond:   1000,
			UploadBurst:       1000,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Catalog: config.CatalogConfig{
			MaxUploadBytes:  1 << 20,
			MaxUploadFiles:  5,
			SlugMaxAttempts: 3,
			ReadRetryDelay:  time.Millisecond,
		},
	}

	repos := memory.NewStore().Repositories()
	s.assets = &memoryAssets{}
	svc := Services{
		Vendors:  services.NewVendorService(repos, log),
		Products: services.NewProductService(repos, s.assets, cfg.Catalog, log),
		Reviews:  services.NewReviewService(repos, nil, log),
		Admin:    services.NewAdminService(repos, services.NewNotificationService(repos.Notifications, log), log),
	}
	s.router = Initialize(cfg, svc, nil, log)

	s.admin = s.token("admin")
	s.vendor = s.token("vendor")
	s.customer = s.token("customer")
}

func (s *RouterTestSuite) TearDownTest() {
	s.router.Stop()
}

func (s *RouterTestSuite) token(role string) string {
	tok, err := utils.GenerateJWT(uuid.New(), role, time.Hour)
	s.Require().NoError(err)
	return tok
}

func (s *RouterTestSuite) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.serve(req, token)
}

func (s *RouterTestSuite) serve(req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.Engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (s *RouterTestSuite) decode(env envelope, dst interface{}) {
	s.Require().NoError(json.Unmarshal(env.Data, dst))
}

type idBody struct {
	ID     string `json:"id"`
	Slug   string `json:"slug"`
	Status string `json:"status"`
}

func (s *RouterTestSuite) approvedVendor() idBody {
	w, env := s.do(http.MethodPost, "/v1/vendors", s.vendor, gin.H{
		"business_name": "Northwind Textiles",
		"contact_email": "hello@northwind.example",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var vendor idBody
	s.decode(env, &vendor)
	s.Equal("pending", vendor.Status)

	w, _ = s.do(http.MethodPut, "/v1/admin/vendors/"+vendor.ID+"/approve", s.admin, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	return vendor
}

func (s *RouterTestSuite) TestHealth() {
	w, _ := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "healthy")
}

func (s *RouterTestSuite) TestProductApprovalFlow() {
	// A pending vendor cannot list products yet
	w, _ := s.do(http.MethodPost, "/v1/vendors", s.vendor, gin.H{
		"business_name": "Northwind Textiles",
		"contact_email": "hello@northwind.example",
	})
	s.Require().Equal(http.StatusCreated, w.Code)
	var vendor idBody
	_, env := s.do(http.MethodGet, "/v1/vendors/me", s.vendor, nil)
	s.decode(env, &vendor)

	product := gin.H{"name": "Linen Shirt", "price": "80.00", "mrp": "100.00", "stock": 5}
	w, env = s.do(http.MethodPost, "/v1/products", s.vendor, product)
	s.Equal(http.StatusPreconditionFailed, w.Code)
	s.Equal("PRECONDITION_FAILED", env.Error.Code)

	w, _ = s.do(http.MethodPut, "/v1/admin/vendors/"+vendor.ID+"/approve", s.admin, gin.H{"feedback": "welcome"})
	s.Require().Equal(http.StatusOK, w.Code)

	w, env = s.do(http.MethodPost, "/v1/products", s.vendor, product)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created idBody
	s.decode(env, &created)
	s.Equal("linen-shirt", created.Slug)

	// Pending approval: hidden from the public, visible to the owner
	w, env = s.do(http.MethodGet, "/v1/products/"+created.ID, "", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("NOT_FOUND", env.Error.Code)

	w, _ = s.do(http.MethodGet, "/v1/products/"+created.ID, s.vendor, nil)
	s.Equal(http.StatusOK, w.Code)

	_, env = s.do(http.MethodGet, "/v1/products", "", nil)
	s.Equal(int64(0), env.Meta.Pagination.Total)

	w, _ = s.do(http.MethodPut, "/v1/admin/products/"+created.ID+"/approve", s.admin, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w, env = s.do(http.MethodGet, "/v1/products", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(int64(1), env.Meta.Pagination.Total)
	s.Equal("1", w.Header().Get("X-Total-Count"))

	w, _ = s.do(http.MethodGet, "/v1/products/linen-shirt", "", nil)
	s.Equal(http.StatusOK, w.Code)

	// Suspension hides the vendor's catalog again
	w, _ = s.do(http.MethodPut, "/v1/admin/vendors/"+vendor.ID+"/suspend", s.admin, gin.H{"reason": "chargebacks"})
	s.Require().Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodGet, "/v1/products/"+created.ID, "", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterTestSuite) TestReviewsAndResponses() {
	s.approvedVendor()

	w, env := s.do(http.MethodPost, "/v1/products", s.vendor, gin.H{"name": "Wool Scarf", "price": "25", "stock": 3})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var product idBody
	s.decode(env, &product)

	w, _ = s.do(http.MethodPut, "/v1/admin/products/"+product.ID+"/approve", s.admin, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w, env = s.do(http.MethodPost, "/v1/reviews", s.customer, gin.H{"product_id": product.ID, "stars": "four", "title": "Warm"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var review idBody
	s.decode(env, &review)

	w, env = s.do(http.MethodPost, "/v1/reviews", s.customer, gin.H{"product_id": product.ID, "stars": "five"})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("DUPLICATE", env.Error.Code)

	w, env = s.do(http.MethodGet, "/v1/products/"+product.ID+"/reviews", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(int64(1), env.Meta.Pagination.Total)

	var detail struct {
		AverageRating float64 `json:"average_rating"`
		TotalReviews  int     `json:"total_reviews"`
	}
	_, env = s.do(http.MethodGet, "/v1/products/"+product.ID, "", nil)
	s.decode(env, &detail)
	s.Equal(4.0, detail.AverageRating)
	s.Equal(1, detail.TotalReviews)

	w, env = s.do(http.MethodPost, "/v1/reviews/"+review.ID+"/responses", s.vendor, gin.H{"content": "Thank you!", "is_vendor_response": true})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var response idBody
	s.decode(env, &response)

	w, _ = s.do(http.MethodPut, "/v1/reviews/"+review.ID+"/responses/"+response.ID, s.vendor, gin.H{"content": "Thanks again!"})
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodDelete, "/v1/reviews/"+review.ID, s.customer, nil)
	s.Equal(http.StatusOK, w.Code)

	_, env = s.do(http.MethodGet, "/v1/products/"+product.ID, "", nil)
	s.decode(env, &detail)
	s.Equal(0.0, detail.AverageRating)
	s.Equal(0, detail.TotalReviews)

	w, _ = s.do(http.MethodPost, "/v1/admin/products/"+product.ID+"/recompute-rating", s.admin, nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *RouterTestSuite) TestMultipartCreate() {
	s.approvedVendor()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	s.Require().NoError(form.WriteField("payload", `{"name":"Canvas Tote","price":"30","color_variants":[{"color_name":"Red","stock":2}]}`))
	part, err := form.CreateFormFile("images", "front.png")
	s.Require().NoError(err)
	_, _ = part.Write([]byte("front"))
	part, err = form.CreateFormFile("variant_images[Red]", "red.png")
	s.Require().NoError(err)
	_, _ = part.Write([]byte("red"))
	s.Require().NoError(form.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/products", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	w, env := s.serve(req, s.vendor)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var product struct {
		Images        []struct{ URL string } `json:"images"`
		ColorVariants []struct {
			ColorName string                 `json:"color_name"`
			Images    []struct{ URL string } `json:"images"`
		} `json:"color_variants"`
		Stock int `json:"stock"`
	}
	s.decode(env, &product)
	s.Len(product.Images, 1)
	s.Require().Len(product.ColorVariants, 1)
	s.Len(product.ColorVariants[0].Images, 1)
	s.Equal(2, product.Stock)
	s.Len(s.assets.uploaded, 2)
}

func (s *RouterTestSuite) TestAccessControl() {
	w, _ := s.do(http.MethodGet, "/v1/admin/stats", s.customer, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w, _ = s.do(http.MethodGet, "/v1/admin/stats", s.admin, nil)
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodPost, "/v1/reviews", "", gin.H{"product_id": uuid.NewString(), "stars": "five"})
	s.Equal(http.StatusUnauthorized, w.Code)

	w, env := s.do(http.MethodPut, "/v1/reviews/not-a-uuid", s.customer, gin.H{"title": "x"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("VALIDATION_ERROR", env.Error.Code)

	w, _ = s.do(http.MethodGet, "/v1/vendors/me", s.customer, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func TestHealthReportsFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	require.NoError(t, i18n.Initialize())
	log, _ := test.NewNullLogger()

	cfg := &config.Config{
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 10, Burst: 10, UploadPerSecond: 1, UploadBurst: 1},
	}
	r := Initialize(cfg, Services{}, func(context.Context) error { return errors.New("connection refused") }, log)
	defer r.Stop()

	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "unhealthy")
}
