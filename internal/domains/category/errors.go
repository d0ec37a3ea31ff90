package category

import (
	"errors"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"catalog-backend/internal/domains/hierarchy"
)

// Error codes.
const (
	CodeNotFound         = "CATEGORY_NOT_FOUND"
	CodeDuplicateSlug    = "CATEGORY_SLUG_ALREADY_EXISTS"
	CodeParentNotFound   = "PARENT_CATEGORY_NOT_FOUND"
	CodeCycle            = "CATEGORY_CYCLE"
	CodeUnresolved       = "UNRESOLVED_IDENTIFIERS"
	CodeMaxDepthExceeded = "MAX_DEPTH_EXCEEDED"
	CodeHasChildren      = "CATEGORY_HAS_CHILDREN"
	CodeHasProducts      = "CATEGORY_HAS_PRODUCTS"
	CodeParentInactive   = "PARENT_CATEGORY_INACTIVE"
	CodeEmptyChildren    = "EMPTY_SUBCATEGORIES"
	CodeDuplicateMove    = "DUPLICATE_MOVE"
	CodeInternal         = "CATEGORY_INTERNAL_ERROR"
)

// CategoryError is the coded error returned by the category service.
// errors.Is matches two CategoryErrors with the same Code, so the sentinels
// below can be compared against errors built by the factory functions.
type CategoryError struct {
	Code    string
	Message string
	Details interface{}
	Err     error
}

func (e *CategoryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *CategoryError) Unwrap() error {
	return e.Err
}

func (e *CategoryError) Is(target error) bool {
	t, ok := target.(*CategoryError)
	return ok && t.Code == e.Code
}

var (
	ErrCategoryNotFound = &CategoryError{Code: CodeNotFound, Message: "Category not found"}
	ErrDuplicateSlug    = &CategoryError{Code: CodeDuplicateSlug, Message: "Category slug already exists"}
	ErrParentNotFound   = &CategoryError{Code: CodeParentNotFound, Message: "Parent category not found"}
	ErrCycle            = &CategoryError{Code: CodeCycle, Message: "Move would create a cycle in the category tree"}
	ErrUnresolved       = &CategoryError{Code: CodeUnresolved, Message: "Some categories do not exist"}
	ErrMaxDepthExceeded = &CategoryError{Code: CodeMaxDepthExceeded, Message: "Maximum category depth exceeded"}
	ErrHasChildren      = &CategoryError{Code: CodeHasChildren, Message: "Cannot delete a category that has subcategories"}
	ErrHasProducts      = &CategoryError{Code: CodeHasProducts, Message: "Cannot delete a category that has products"}
	ErrParentInactive   = &CategoryError{Code: CodeParentInactive, Message: "Parent category is inactive"}
	ErrEmptyChildren    = &CategoryError{Code: CodeEmptyChildren, Message: "subcategory_ids is empty; set allow_empty to detach every subcategory"}
	ErrDuplicateMove    = &CategoryError{Code: CodeDuplicateMove, Message: "A category appears more than once in the move list"}
)

func NewNotFound(id uuid.UUID) *CategoryError {
	return &CategoryError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("Category %s not found", id),
		Details: map[string]interface{}{"id": id},
	}
}

func NewDuplicateSlug(slug string) *CategoryError {
	return &CategoryError{
		Code:    CodeDuplicateSlug,
		Message: fmt.Sprintf("Category with slug '%s' already exists", slug),
		Details: map[string]interface{}{"slug": slug},
	}
}

func NewParentNotFound(id uuid.UUID) *CategoryError {
	return &CategoryError{
		Code:    CodeParentNotFound,
		Message: fmt.Sprintf("Parent category %s not found", id),
		Details: map[string]interface{}{"parent_id": id},
	}
}

// NewCycleError wraps a hierarchy cycle rejection so errors.Is matches both
// ErrCycle and hierarchy.ErrCycle.
func NewCycleError(ce *hierarchy.CycleError) *CategoryError {
	return &CategoryError{
		Code:    CodeCycle,
		Message: ce.Error(),
		Details: map[string]interface{}{"category_id": ce.Child, "parent_id": ce.Parent},
		Err:     ce,
	}
}

// NewUnresolvedError lists every identifier that could not be resolved.
func NewUnresolvedError(ue *hierarchy.UnresolvedIdentifiersError) *CategoryError {
	return &CategoryError{
		Code:    CodeUnresolved,
		Message: ue.Error(),
		Details: map[string]interface{}{"ids": ue.IDs},
		Err:     ue,
	}
}

// NewParentInactive rejects an active category under an inactive parent.
func NewParentInactive(child, parent uuid.UUID) *CategoryError {
	return &CategoryError{
		Code:    CodeParentInactive,
		Message: fmt.Sprintf("Category %s cannot be active under inactive category %s", child, parent),
		Details: map[string]interface{}{"category_id": child, "parent_id": parent},
	}
}

func NewMaxDepthExceeded(max, got int) *CategoryError {
	return &CategoryError{
		Code:    CodeMaxDepthExceeded,
		Message: fmt.Sprintf("Category tree depth would be %d, maximum is %d", got, max),
		Details: map[string]interface{}{"max_depth": max, "depth": got},
	}
}

func NewDuplicateMove(id uuid.UUID) *CategoryError {
	return &CategoryError{
		Code:    CodeDuplicateMove,
		Message: fmt.Sprintf("Category %s appears more than once in the move list", id),
		Details: map[string]interface{}{"category_id": id},
	}
}

// NewMoveError tags a bulk move rejection with the position of the move.
func NewMoveError(index int, err *CategoryError) *CategoryError {
	details := map[string]interface{}{"index": index}
	if m, ok := err.Details.(map[string]interface{}); ok {
		for k, v := range m {
			details[k] = v
		}
	}
	return &CategoryError{
		Code:    err.Code,
		Message: fmt.Sprintf("move %d: %s", index, err.Message),
		Details: details,
		Err:     err.Err,
	}
}

func NewInternal(op string, err error) *CategoryError {
	return &CategoryError{
		Code:    CodeInternal,
		Message: fmt.Sprintf("Failed to %s", op),
		Err:     err,
	}
}

var statusByCode = map[string]int{
	CodeNotFound:         http.StatusNotFound,
	CodeDuplicateSlug:    http.StatusConflict,
	CodeParentNotFound:   http.StatusNotFound,
	CodeCycle:            http.StatusConflict,
	CodeUnresolved:       http.StatusNotFound,
	CodeMaxDepthExceeded: http.StatusUnprocessableEntity,
	CodeHasChildren:      http.StatusConflict,
	CodeHasProducts:      http.StatusConflict,
	CodeParentInactive:   http.StatusConflict,
	CodeEmptyChildren:    http.StatusBadRequest,
	CodeDuplicateMove:    http.StatusBadRequest,
}

// GetHTTPStatusCode maps a service error to an HTTP status.
func GetHTTPStatusCode(err error) int {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return http.StatusBadRequest
	}
	var ce *CategoryError
	if errors.As(err, &ce) {
		if status, ok := statusByCode[ce.Code]; ok {
			return status
		}
		return http.StatusInternalServerError
	}
	switch {
	case errors.Is(err, hierarchy.ErrCycle):
		return http.StatusConflict
	case errors.Is(err, hierarchy.ErrUnresolved):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
