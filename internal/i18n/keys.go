// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired     = "auth.required"
	KeyAuthInvalidToken = "auth.invalid_token"
	KeyAuthTokenExpired = "auth.token_expired"
	KeyAuthRateLimited  = "auth.rate_limited"

	// Vendors
	KeyVendorRegistered = "vendor.registered"
	KeyVendorReapplied  = "vendor.reapplied"
	KeyVendorNotFound   = "vendor.not_found"
	KeyVendorApproved   = "vendor.approved"
	KeyVendorRejected   = "vendor.rejected"
	KeyVendorSuspended  = "vendor.suspended"

	// Products
	KeyProductCreated  = "product.created"
	KeyProductUpdated  = "product.updated"
	KeyProductDeleted  = "product.deleted"
	KeyProductNotFound = "product.not_found"
	KeyProductApproved = "product.approved"
	KeyProductRejected = "product.rejected"

	// Reviews
	KeyReviewCreated    = "review.created"
	KeyReviewUpdated    = "review.updated"
	KeyReviewDeleted    = "review.deleted"
	KeyReviewNotFound   = "review.not_found"
	KeyResponseCreated  = "review.response_created"
	KeyResponseUpdated  = "review.response_updated"
	KeyResponseDeleted  = "review.response_deleted"
	KeyRatingRecomputed = "review.rating_recomputed"

	// Admin
	KeyAdminAccessDenied = "admin.access_denied"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// File Upload
	KeyFileUploadSuccess = "file.upload_success"
	KeyFileUploadFailed  = "file.upload_failed"
	KeyFileInvalidType   = "file.invalid_type"
	KeyFileTooLarge      = "file.too_large"
)
