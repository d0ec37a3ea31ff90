package attribute

import (
	"context"

	"github.com/google/uuid"
)

type Service interface {
	CreateAttribute(ctx context.Context, req CreateAttributeReq) (*AttributeResp, error)
	GetAttribute(ctx context.Context, id uuid.UUID) (*AttributeResp, error)
	ListAttributes(ctx context.Context, limit, offset int) (*AttributeListResp, error)

	CreateOption(ctx context.Context, req CreateOptionReq) (*OptionResp, error)
	ListOptions(ctx context.Context, search string, limit, offset int) (*OptionListResp, error)

	// SetAttributeOptions makes req.OptionIDs exactly the options linked to
	// the attribute. Unknown ids fail the call and nothing is changed.
	SetAttributeOptions(ctx context.Context, id uuid.UUID, req SetOptionsReq) (*SetOptionsResp, error)
}
