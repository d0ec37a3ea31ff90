package brand

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, b *Brand) error
	GetByID(ctx context.Context, id uuid.UUID) (*Brand, error)
	GetBySlug(ctx context.Context, slug string) (*Brand, error)
	List(ctx context.Context, search string, limit, offset int) ([]Brand, int64, error)
	Update(ctx context.Context, b *Brand) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	CountProducts(ctx context.Context, id uuid.UUID) (int64, error)
}
