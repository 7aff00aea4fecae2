// internal/handlers/request.go
package handlers

import (
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/marketplace-catalog/internal/apperrors"
	"github.com/javajoker/marketplace-catalog/internal/i18n"
	"github.com/javajoker/marketplace-catalog/internal/services"
	"github.com/javajoker/marketplace-catalog/internal/utils"
)

// decisionRequest is the body of an admin approve, reject or suspend call.
type decisionRequest struct {
	Feedback string `json:"feedback"`
	Reason   string `json:"reason"`
}

type responseContentRequest struct {
	Content string `json:"content"`
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, name), nil)
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	return true
}

// bindOptionalJSON accepts an empty body.
func bindOptionalJSON(c *gin.Context, dst interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return bindJSON(c, dst)
}

// readFiles loads the uploaded files into memory, rejecting any over maxBytes.
func readFiles(headers []*multipart.FileHeader, maxBytes int64) ([]services.FileUpload, error) {
	files := make([]services.FileUpload, 0, len(headers))
	for _, fh := range headers {
		if maxBytes > 0 && fh.Size > maxBytes {
			return nil, apperrors.Validation("%s exceeds the %d byte limit", fh.Filename, maxBytes).
				WithDetail("max_bytes", maxBytes)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, apperrors.Validation("could not read %s", fh.Filename)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, apperrors.Validation("could not read %s", fh.Filename)
		}
		files = append(files, services.FileUpload{Filename: fh.Filename, Data: data})
	}
	return files, nil
}
