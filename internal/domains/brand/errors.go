package brand

import (
	"errors"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	CodeNotFound      = "BRAND_NOT_FOUND"
	CodeDuplicateSlug = "BRAND_SLUG_ALREADY_EXISTS"
	CodeHasProducts   = "BRAND_HAS_PRODUCTS"
	CodeInternal      = "BRAND_INTERNAL_ERROR"
)

// BrandError is the coded error of the brand domain. Errors with the same
// Code match under errors.Is.
type BrandError struct {
	Code    string
	Message string
	Err     error
}

func (e *BrandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *BrandError) Unwrap() error {
	return e.Err
}

func (e *BrandError) Is(target error) bool {
	t, ok := target.(*BrandError)
	return ok && t.Code == e.Code
}

var (
	ErrBrandNotFound = &BrandError{Code: CodeNotFound, Message: "Brand not found"}
	ErrDuplicateSlug = &BrandError{Code: CodeDuplicateSlug, Message: "Brand slug already exists"}
	ErrHasProducts   = &BrandError{Code: CodeHasProducts, Message: "Cannot delete a brand that has products"}
)

func NewBrandNotFound(id uuid.UUID) *BrandError {
	return &BrandError{Code: CodeNotFound, Message: fmt.Sprintf("Brand %s not found", id)}
}

func NewDuplicateSlug(slug string) *BrandError {
	return &BrandError{Code: CodeDuplicateSlug, Message: fmt.Sprintf("Brand with slug '%s' already exists", slug)}
}

func NewHasProducts(id uuid.UUID, n int64) *BrandError {
	return &BrandError{Code: CodeHasProducts, Message: fmt.Sprintf("Brand %s is used by %d product(s)", id, n)}
}

func NewInternal(op string, err error) *BrandError {
	return &BrandError{Code: CodeInternal, Message: fmt.Sprintf("Failed to %s", op), Err: err}
}

func GetHTTPStatusCode(err error) int {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return http.StatusBadRequest
	}
	switch {
	case errors.Is(err, ErrBrandNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateSlug), errors.Is(err, ErrHasProducts):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
