package attribute

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// MaxOptionsPerAttribute caps SetAttributeOptions.
const MaxOptionsPerAttribute = 500

type CreateAttributeReq struct {
	Name      string    `json:"name"`
	InputType InputType `json:"input_type"`
}

func (r CreateAttributeReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(1, 255),
		),
		validation.Field(&r.InputType,
			validation.In(InputSelect, InputMultiselect, InputText).Error("input_type must be select, multiselect or text"),
		),
	)
}

type CreateOptionReq struct {
	Value     string `json:"value"`
	Label     string `json:"label"`
	SortOrder int    `json:"sort_order"`
}

func (r CreateOptionReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Value, validation.Required.Error("value is required"), validation.Length(1, 255)),
		validation.Field(&r.Label, validation.Length(0, 255)),
		validation.Field(&r.SortOrder, validation.Min(0), validation.Max(9999)),
	)
}

// SetOptionsReq is the body of PUT /v1/attributes/{id}/options. The list
// replaces the attribute's options; an empty list unlinks them all.
type SetOptionsReq struct {
	OptionIDs []uuid.UUID `json:"option_ids"`
}

func (r SetOptionsReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OptionIDs,
			validation.Length(0, MaxOptionsPerAttribute),
			validation.Each(validation.NotIn(uuid.Nil).Error("must not be the nil uuid")),
		),
	)
}

type OptionResp struct {
	ID        uuid.UUID `json:"id"`
	Value     string    `json:"value"`
	Label     string    `json:"label"`
	SortOrder int       `json:"sort_order"`
}

type AttributeResp struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	Slug      string       `json:"slug"`
	InputType InputType    `json:"input_type"`
	Options   []OptionResp `json:"options,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

type AttributeListResp struct {
	Attributes []AttributeResp `json:"attributes"`
	Total      int64           `json:"total"`
	Limit      int             `json:"limit"`
	Offset     int             `json:"offset"`
}

type OptionListResp struct {
	Options []OptionResp `json:"options"`
	Total   int64        `json:"total"`
	Limit   int          `json:"limit"`
	Offset  int          `json:"offset"`
}

// SetOptionsResp reports the links SetAttributeOptions changed.
type SetOptionsResp struct {
	Attribute AttributeResp `json:"attribute"`
	Added     []uuid.UUID   `json:"added"`
	Removed   []uuid.UUID   `json:"removed"`
}

func ToOptionResp(o *Option) OptionResp {
	return OptionResp{ID: o.ID, Value: o.Value, Label: o.Label, SortOrder: o.SortOrder}
}

func ToOptionResps(opts []Option) []OptionResp {
	out := make([]OptionResp, len(opts))
	for i := range opts {
		out[i] = ToOptionResp(&opts[i])
	}
	return out
}

func ToAttributeResp(a *Attribute) AttributeResp {
	resp := AttributeResp{
		ID:        a.ID,
		Name:      a.Name,
		Slug:      a.Slug,
		InputType: a.InputType,
		CreatedAt: a.CreatedAt,
	}
	if len(a.Options) > 0 {
		resp.Options = ToOptionResps(a.Options)
	}
	return resp
}
