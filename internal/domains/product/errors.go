package product

import (
	"errors"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"catalog-backend/internal/domains/hierarchy"
)

const (
	CodeNotFound         = "PRODUCT_NOT_FOUND"
	CodeDuplicateSlug    = "PRODUCT_SLUG_ALREADY_EXISTS"
	CodeDuplicateSKU     = "PRODUCT_SKU_ALREADY_EXISTS"
	CodeCategoryNotFound = "CATEGORY_NOT_FOUND"
	CodeBrandNotFound    = "BRAND_NOT_FOUND"
	CodeUnresolved       = "UNRESOLVED_IDENTIFIERS"
	CodeInvalidImage     = "INVALID_IMAGE"
	CodeTooManyImages    = "TOO_MANY_IMAGES"
	CodeStorageDisabled  = "IMAGE_STORAGE_UNAVAILABLE"
	CodeInternal         = "PRODUCT_INTERNAL_ERROR"
)

type ProductError struct {
	Code    string
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *ProductError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ProductError) Unwrap() error {
	return e.Err
}

func (e *ProductError) Is(target error) bool {
	t, ok := target.(*ProductError)
	return ok && t.Code == e.Code
}

var (
	ErrProductNotFound   = &ProductError{Code: CodeNotFound, Message: "Product not found"}
	ErrDuplicateSlug     = &ProductError{Code: CodeDuplicateSlug, Message: "Product slug already exists"}
	ErrDuplicateSKU      = &ProductError{Code: CodeDuplicateSKU, Message: "Product SKU already exists"}
	ErrCategoryNotFound  = &ProductError{Code: CodeCategoryNotFound, Message: "The specified category does not exist"}
	ErrBrandNotFound     = &ProductError{Code: CodeBrandNotFound, Message: "The specified brand does not exist"}
	ErrUnresolvedOptions = &ProductError{Code: CodeUnresolved, Message: "Some options do not exist"}
	ErrInvalidImage      = &ProductError{Code: CodeInvalidImage, Message: "Invalid image"}
	ErrTooManyImages     = &ProductError{Code: CodeTooManyImages, Message: fmt.Sprintf("A product can have at most %d images", MaxImages)}
	ErrStorageDisabled   = &ProductError{Code: CodeStorageDisabled, Message: "Image storage is not configured"}
)

func NewProductNotFound(id uuid.UUID) *ProductError {
	return &ProductError{Code: CodeNotFound, Message: fmt.Sprintf("Product %s not found", id)}
}

func NewDuplicateSlug(slug string) *ProductError {
	return &ProductError{Code: CodeDuplicateSlug, Message: fmt.Sprintf("Product with slug '%s' already exists", slug)}
}

func NewDuplicateSKU(sku string) *ProductError {
	return &ProductError{Code: CodeDuplicateSKU, Message: fmt.Sprintf("Product with SKU '%s' already exists", sku)}
}

func NewCategoryNotFound(id uuid.UUID) *ProductError {
	return &ProductError{
		Code:    CodeCategoryNotFound,
		Message: ErrCategoryNotFound.Message,
		Details: map[string]interface{}{"category_id": id},
	}
}

func NewBrandNotFound(id uuid.UUID) *ProductError {
	return &ProductError{
		Code:    CodeBrandNotFound,
		Message: ErrBrandNotFound.Message,
		Details: map[string]interface{}{"brand_id": id},
	}
}

func NewUnresolvedOptions(ue *hierarchy.UnresolvedIdentifiersError) *ProductError {
	return &ProductError{
		Code:    CodeUnresolved,
		Message: ue.Error(),
		Details: map[string]interface{}{"ids": ue.IDs},
		Err:     ue,
	}
}

func NewInvalidImage(err error) *ProductError {
	return &ProductError{Code: CodeInvalidImage, Message: err.Error(), Err: err}
}

func NewInternal(op string, err error) *ProductError {
	return &ProductError{Code: CodeInternal, Message: fmt.Sprintf("Failed to %s", op), Err: err}
}

func GetHTTPStatusCode(err error) int {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return http.StatusBadRequest
	}
	switch {
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrUnresolvedOptions):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateSlug), errors.Is(err, ErrDuplicateSKU):
		return http.StatusConflict
	case errors.Is(err, ErrCategoryNotFound), errors.Is(err, ErrBrandNotFound),
		errors.Is(err, ErrInvalidImage), errors.Is(err, ErrTooManyImages):
		return http.StatusBadRequest
	case errors.Is(err, ErrStorageDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
