// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/javajoker/marketplace-catalog/internal/models"
)

var validate *validator.Validate

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func init() {
	validate = validator.New()
	validate.RegisterValidation("star_rating", validateStarRating)
	validate.RegisterValidation("hexcolor_or_empty", validateHexColorOrEmpty)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateStarRating(fl validator.FieldLevel) bool {
	_, err := models.ParseStarRating(fl.Field().String())
	return err == nil
}

func validateHexColorOrEmpty(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	return code == "" || hexColorPattern.MatchString(code)
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "star_rating":
		return "Stars must be one of one, two, three, four, five"
	case "hexcolor_or_empty":
		return e.Field() + " must be a hex color such as #ff0000"
	default:
		return e.Field() + " is invalid"
	}
}
