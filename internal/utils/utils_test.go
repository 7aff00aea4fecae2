package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/marketplace-catalog/internal/apperrors"
)

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")
	userID := uuid.New()

	token, err := GenerateJWT(userID, "vendor", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "vendor", claims.Role)

	expired, err := GenerateJWT(userID, "vendor", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateJWT(expired)
	assert.Error(t, err)

	SetJWTSecret("other-secret")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestPaginationParams(t *testing.T) {
	p := PaginationParams{Page: 0, Limit: 500, Order: "sideways"}.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageLimit, p.Limit)
	assert.Equal(t, "desc", p.Order)
	assert.Equal(t, "created_at", p.Sort)

	p = PaginationParams{Page: 3, Limit: 10}.Normalize()
	assert.Equal(t, 20, p.Offset())
	start, end := p.Window(25)
	assert.Equal(t, 20, start)
	assert.Equal(t, 25, end)

	start, end = PaginationParams{Page: 9, Limit: 10}.Normalize().Window(25)
	assert.Equal(t, 25, start)
	assert.Equal(t, 25, end)

	result := CreatePaginationResult([]int{}, 21, PaginationParams{Page: 1, Limit: 10})
	assert.Equal(t, 3, result.TotalPages)
}

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err    error
		status int
		code   string
	}{
		{apperrors.Validation("bad stars"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{pkgerrors.Wrap(apperrors.NotFound("product missing"), "detail"), http.StatusNotFound, "NOT_FOUND"},
		{apperrors.PreconditionFailed("vendor suspended"), http.StatusPreconditionFailed, "PRECONDITION_FAILED"},
		{apperrors.Duplicate("twice"), http.StatusConflict, "DUPLICATE"},
		{apperrors.Upstream(fmt.Errorf("s3 down"), "upload failed"), http.StatusBadGateway, "UPSTREAM_ERROR"},
		{fmt.Errorf("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			HandleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestGetActorFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.True(t, GetActorFromContext(c).IsAnonymous())

	id := uuid.New()
	c.Set("user_id", id.String())
	c.Set("user_role", "admin")
	actor := GetActorFromContext(c)
	assert.Equal(t, id, actor.ID)
	assert.True(t, actor.IsAdmin())
}

func TestValidateStruct_CustomTags(t *testing.T) {
	type input struct {
		Stars string `validate:"required,star_rating"`
		Color string `validate:"hexcolor_or_empty"`
	}

	assert.NoError(t, ValidateStruct(input{Stars: "four", Color: "#fff"}))
	assert.NoError(t, ValidateStruct(input{Stars: "4"}))

	err := ValidateStruct(input{Stars: "six", Color: "red"})
	require.Error(t, err)
	errs := GetValidationErrors(err)
	assert.Len(t, errs, 2)
}
