package attribute

import (
	"errors"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"catalog-backend/internal/domains/hierarchy"
)

const (
	CodeNotFound        = "ATTRIBUTE_NOT_FOUND"
	CodeDuplicateSlug   = "ATTRIBUTE_SLUG_ALREADY_EXISTS"
	CodeUnresolved      = "UNRESOLVED_IDENTIFIERS"
	CodeOptionsDisabled = "ATTRIBUTE_OPTIONS_NOT_SUPPORTED"
	CodeInternal        = "ATTRIBUTE_INTERNAL_ERROR"
)

type AttributeError struct {
	Code    string
	Message string
	Details interface{}
	Err     error
}

func (e *AttributeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AttributeError) Unwrap() error {
	return e.Err
}

func (e *AttributeError) Is(target error) bool {
	t, ok := target.(*AttributeError)
	return ok && t.Code == e.Code
}

var (
	ErrAttributeNotFound = &AttributeError{Code: CodeNotFound, Message: "Attribute not found"}
	ErrDuplicateSlug     = &AttributeError{Code: CodeDuplicateSlug, Message: "Attribute slug already exists"}
	ErrUnresolvedOptions = &AttributeError{Code: CodeUnresolved, Message: "Some options do not exist"}
	ErrOptionsDisabled   = &AttributeError{Code: CodeOptionsDisabled, Message: "Text attributes do not take options"}
)

func NewAttributeNotFound(id uuid.UUID) *AttributeError {
	return &AttributeError{Code: CodeNotFound, Message: fmt.Sprintf("Attribute %s not found", id)}
}

func NewDuplicateSlug(slug string) *AttributeError {
	return &AttributeError{Code: CodeDuplicateSlug, Message: fmt.Sprintf("Attribute with slug '%s' already exists", slug)}
}

func NewUnresolvedOptions(ue *hierarchy.UnresolvedIdentifiersError) *AttributeError {
	return &AttributeError{
		Code:    CodeUnresolved,
		Message: ue.Error(),
		Details: map[string]interface{}{"ids": ue.IDs},
		Err:     ue,
	}
}

func NewInternal(op string, err error) *AttributeError {
	return &AttributeError{Code: CodeInternal, Message: fmt.Sprintf("Failed to %s", op), Err: err}
}

func GetHTTPStatusCode(err error) int {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return http.StatusBadRequest
	}
	switch {
	case errors.Is(err, ErrAttributeNotFound), errors.Is(err, ErrUnresolvedOptions):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateSlug):
		return http.StatusConflict
	case errors.Is(err, ErrOptionsDisabled):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
