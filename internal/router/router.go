// internal/router/router.go
package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/javajoker/marketplace-catalog/internal/config"
	"github.com/javajoker/marketplace-catalog/internal/handlers"
	"github.com/javajoker/marketplace-catalog/internal/middleware"
	"github.com/javajoker/marketplace-catalog/internal/services"
	"github.com/javajoker/marketplace-catalog/internal/utils"
)

// Services is everything the HTTP layer dispatches to.
type Services struct {
	Vendors  *services.VendorService
	Products *services.ProductService
	Reviews  *services.ReviewService
	Admin    *services.AdminService
}

// HealthCheck reports whether a backing store is reachable.
type HealthCheck func(ctx context.Context) error

type Router struct {
	Engine   *gin.Engine
	limiters []*middleware.RateLimiter
}

// Stop releases the rate limiter cleanup goroutines.
func (r *Router) Stop() {
	for _, limiter := range r.limiters {
		limiter.Stop()
	}
}

func Initialize(cfg *config.Config, svc Services, health HealthCheck, log logrus.FieldLogger) *Router {
	productHandler := handlers.NewProductHandler(svc.Products, cfg.Catalog.MaxUploadBytes)
	vendorHandler := handlers.NewVendorHandler(svc.Vendors)
	reviewHandler := handlers.NewReviewHandler(svc.Reviews)
	adminHandler := handlers.NewAdminHandler(svc.Admin, svc.Reviews)

	utils.SetJWTSecret(cfg.JWT.SecretKey)

	generalLimit := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
	uploadLimit := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.UploadPerSecond), cfg.RateLimit.UploadBurst)

	r := gin.New()
	r.MaxMultipartMemory = cfg.Catalog.MaxUploadBytes * int64(cfg.Catalog.MaxUploadFiles)

	// Global middleware
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.I18nMiddleware())
	r.Use(generalLimit.Middleware())

	r.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{"status": "healthy"}
		if health != nil {
			if err := health(c.Request.Context()); err != nil {
				log.WithError(err).Warn("health check failed")
				status = http.StatusServiceUnavailable
				body["status"] = "unhealthy"
			}
		}
		c.JSON(status, body)
	})

	v1 := r.Group("/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", middleware.OptionalAuth(), productHandler.GetProducts)
			products.GET("/:id", middleware.OptionalAuth(), productHandler.GetProduct)
			products.GET("/:id/reviews", middleware.OptionalAuth(), reviewHandler.GetProductReviews)
			products.POST("", middleware.AuthRequired(), productHandler.CreateProduct)
			products.PUT("/:id", middleware.AuthRequired(), productHandler.UpdateProduct)
			products.DELETE("/:id", middleware.AuthRequired(), productHandler.DeleteProduct)
			products.POST("/upload-images", middleware.AuthRequired(), uploadLimit.Middleware(), productHandler.UploadImages)
		}

		vendors := v1.Group("/vendors")
		vendors.Use(middleware.AuthRequired())
		{
			vendors.POST("", vendorHandler.Register)
			vendors.GET("/me", vendorHandler.GetMine)
			vendors.POST("/me/reapply", vendorHandler.Reapply)
			vendors.GET("/me/products", vendorHandler.GetMyProducts)
		}

		reviews := v1.Group("/reviews")
		reviews.Use(middleware.AuthRequired())
		{
			reviews.POST("", reviewHandler.CreateReview)
			reviews.PUT("/:id", reviewHandler.UpdateReview)
			reviews.DELETE("/:id", reviewHandler.DeleteReview)
			reviews.POST("/:id/responses", reviewHandler.AddResponse)
			reviews.PUT("/:id/responses/:rid", reviewHandler.UpdateResponse)
			reviews.DELETE("/:id/responses/:rid", reviewHandler.DeleteResponse)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/stats", adminHandler.GetQueueStats)

			admin.GET("/vendors", adminHandler.GetVendors)
			admin.GET("/vendors/:id", adminHandler.GetVendor)
			admin.PUT("/vendors/:id/approve", adminHandler.ApproveVendor)
			admin.PUT("/vendors/:id/reject", adminHandler.RejectVendor)
			admin.PUT("/vendors/:id/suspend", adminHandler.SuspendVendor)

			admin.GET("/products", adminHandler.GetProducts)
			admin.PUT("/products/:id/approve", adminHandler.ApproveProduct)
			admin.PUT("/products/:id/reject", adminHandler.RejectProduct)
			admin.POST("/products/:id/recompute-rating", adminHandler.RecomputeRating)
		}
	}

	// Local uploads are served directly when S3 is not configured
	if cfg.AWS.AccessKeyID == "" && cfg.AWS.LocalUploadDir != "" {
		r.Static("/uploads", cfg.AWS.LocalUploadDir)
	}

	return &Router{
		Engine:   r,
		limiters: []*middleware.RateLimiter{generalLimit, uploadLimit},
	}
}
