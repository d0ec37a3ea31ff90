package attribute

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"catalog-backend/internal/shared/utils"
)

// InputType says how a storefront renders an attribute.
type InputType string

const (
	InputSelect      InputType = "select"
	InputMultiselect InputType = "multiselect"
	InputText        InputType = "text"
)

func (t InputType) IsValid() bool {
	switch t {
	case InputSelect, InputMultiselect, InputText:
		return true
	}
	return false
}

// HasOptions reports whether the attribute picks from a fixed option list.
func (t InputType) HasOptions() bool {
	return t == InputSelect || t == InputMultiselect
}

type Attribute struct {
	ID        uuid.UUID
	Name      string
	Slug      string
	InputType InputType
	CreatedAt time.Time
	UpdatedAt time.Time

	// Options is filled by GetAttribute only.
	Options []Option
}

// Option is a standalone value row; attributes link to options through
// attribute_option_links.
type Option struct {
	ID        uuid.UUID
	Value     string
	Label     string
	SortOrder int
	CreatedAt time.Time
}

func NewAttribute(name string, inputType InputType) *Attribute {
	now := time.Now()
	name = strings.TrimSpace(name)
	if inputType == "" {
		inputType = InputSelect
	}
	return &Attribute{
		ID:        uuid.New(),
		Name:      name,
		Slug:      utils.GenerateSlug(name),
		InputType: inputType,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func NewOption(value, label string, sortOrder int) *Option {
	value = strings.TrimSpace(value)
	label = strings.TrimSpace(label)
	if label == "" {
		label = value
	}
	return &Option{
		ID:        uuid.New(),
		Value:     value,
		Label:     label,
		SortOrder: sortOrder,
		CreatedAt: time.Now(),
	}
}
