package validator

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator bridges go-playground/validator into echo.Validator
// so request DTO tags are checked on Bind+Validate.
type CustomValidator struct {
	v *validator.Validate
}

// New builds the validator used for request DTOs.
func New() *CustomValidator {
	return &CustomValidator{v: validator.New()}
}

// Validate checks the struct's validate tags.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}
