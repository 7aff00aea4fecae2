package catalog

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/marketplace-catalog/internal/apperrors"
	"github.com/javajoker/marketplace-catalog/internal/models"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestApproveVendor(t *testing.T) {
	for _, from := range []models.VendorStatus{
		models.VendorStatusPending, models.VendorStatusRejected, models.VendorStatusApproved,
	} {
		t.Run(string(from), func(t *testing.T) {
			v := &models.Vendor{Status: from, RejectionReason: "old"}
			require.NoError(t, ApproveVendor(v, now, "welcome"))
			assert.Equal(t, models.VendorStatusApproved, v.Status)
			assert.Empty(t, v.RejectionReason)
			assert.Equal(t, "welcome", v.ApprovalFeedback)
			require.NotNil(t, v.ApprovedAt)
			assert.Equal(t, now, *v.ApprovedAt)
		})
	}

	v := &models.Vendor{Status: models.VendorStatusSuspended}
	err := ApproveVendor(v, now, "")
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidTransition))
	assert.Equal(t, models.VendorStatusSuspended, v.Status)
}

func TestRejectVendor(t *testing.T) {
	v := &models.Vendor{Status: models.VendorStatusPending}
	assert.True(t, apperrors.Is(RejectVendor(v, now, "  "), apperrors.KindValidation))
	assert.Equal(t, models.VendorStatusPending, v.Status)

	require.NoError(t, RejectVendor(v, now, "missing tax id"))
	assert.Equal(t, models.VendorStatusRejected, v.Status)
	assert.Equal(t, "missing tax id", v.RejectionReason)

	require.NoError(t, RejectVendor(v, now.Add(time.Hour), "still missing"))
	assert.Equal(t, "still missing", v.RejectionReason)

	approved := &models.Vendor{Status: models.VendorStatusApproved}
	assert.True(t, apperrors.Is(RejectVendor(approved, now, "late"), apperrors.KindInvalidTransition))
}

func TestSuspendAndReapplyVendor(t *testing.T) {
	v := &models.Vendor{Status: models.VendorStatusPending}
	assert.True(t, apperrors.Is(SuspendVendor(v, now, "fraud"), apperrors.KindInvalidTransition))

	v.Status = models.VendorStatusApproved
	require.NoError(t, SuspendVendor(v, now, "fraud"))
	assert.Equal(t, models.VendorStatusSuspended, v.Status)
	assert.True(t, apperrors.Is(ReapplyVendor(v), apperrors.KindInvalidTransition))

	rejected := &models.Vendor{Status: models.VendorStatusRejected, RejectionReason: "x"}
	require.NoError(t, ReapplyVendor(rejected))
	assert.Equal(t, models.VendorStatusPending, rejected.Status)
	assert.Empty(t, rejected.RejectionReason)
}

func TestApproveProduct_RequiresApprovedVendor(t *testing.T) {
	v := approvedVendor()
	v.Status = models.VendorStatusSuspended
	p := vendorProduct(v)
	p.Approval = models.PendingApproval()

	err := ApproveProduct(p, v, now, "")

	assert.True(t, apperrors.Is(err, apperrors.KindPreconditionFailed))
	assert.Nil(t, p.Approval.AdminApproved())
}

func TestApproveProduct_ClearsRejection(t *testing.T) {
	v := approvedVendor()
	p := vendorProduct(v)
	p.Approval = models.RejectedAt(now, "too expensive")

	require.NoError(t, ApproveProduct(p, v, now, "looks good"))

	assert.Equal(t, models.ApprovalApproved, p.Approval.Kind)
	assert.Empty(t, p.Approval.Reason)
	assert.Equal(t, "looks good", p.Approval.Feedback)
}

func TestApproveProduct_FirstParty(t *testing.T) {
	p := &models.Product{}
	p.ID = uuid.New()

	require.NoError(t, ApproveProduct(p, nil, now, ""))
	assert.Equal(t, models.ApprovalApproved, p.Approval.Kind)
}

func TestRejectProduct_RequiresReason(t *testing.T) {
	p := &models.Product{Approval: models.PendingApproval()}

	assert.True(t, apperrors.Is(RejectProduct(p, now, ""), apperrors.KindValidation))
	assert.True(t, apperrors.Is(RejectProduct(p, now, " \t"), apperrors.KindValidation))
	assert.Equal(t, models.ApprovalPending, p.Approval.Kind)

	require.NoError(t, RejectProduct(p, now, "too expensive"))
	approved := p.Approval.AdminApproved()
	require.NotNil(t, approved)
	assert.False(t, *approved)
	assert.Equal(t, "too expensive", p.Approval.Reason)
}

func TestRequireActiveVendor(t *testing.T) {
	assert.True(t, apperrors.Is(RequireActiveVendor(nil), apperrors.KindPreconditionFailed))
	assert.True(t, apperrors.Is(RequireActiveVendor(&models.Vendor{Status: models.VendorStatusPending}), apperrors.KindPreconditionFailed))
	assert.NoError(t, RequireActiveVendor(&models.Vendor{Status: models.VendorStatusApproved}))
}
