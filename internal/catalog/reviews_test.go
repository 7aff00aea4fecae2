package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/javajoker/marketplace-catalog/internal/apperrors"
	"github.com/javajoker/marketplace-catalog/internal/models"
)

func TestCheckVendorResponse(t *testing.T) {
	v := approvedVendor()
	p := vendorProduct(v)
	owner := models.Actor{ID: v.UserID, Role: models.UserRoleVendor}

	assert.NoError(t, CheckVendorResponse(p, v, owner, 0))
	assert.True(t, apperrors.Is(CheckVendorResponse(p, v, owner, 1), apperrors.KindDuplicate))

	stranger := models.Actor{ID: uuid.New(), Role: models.UserRoleVendor}
	assert.True(t, apperrors.Is(CheckVendorResponse(p, v, stranger, 0), apperrors.KindForbidden))

	v.Status = models.VendorStatusSuspended
	assert.True(t, apperrors.Is(CheckVendorResponse(p, v, owner, 0), apperrors.KindPreconditionFailed))

	firstParty := &models.Product{}
	assert.True(t, apperrors.Is(CheckVendorResponse(firstParty, nil, owner, 0), apperrors.KindForbidden))
}

func TestCheckReviewRules(t *testing.T) {
	author := uuid.New()
	r := &models.Review{ReviewerID: author, IsActive: true}

	assert.NoError(t, CheckReviewAuthor(r, models.Actor{ID: author}))
	assert.True(t, apperrors.Is(CheckReviewAuthor(r, models.Actor{ID: uuid.New()}), apperrors.KindForbidden))
	assert.True(t, apperrors.Is(CheckReviewAuthor(r, models.Anonymous), apperrors.KindForbidden))

	assert.NoError(t, CheckReviewActive(r))
	r.IsActive = false
	assert.True(t, apperrors.Is(CheckReviewActive(r), apperrors.KindPreconditionFailed))
}
