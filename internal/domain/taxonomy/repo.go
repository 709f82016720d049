package taxonomy

import (
	"context"

	"github.com/google/uuid"
)

type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	GetByName(ctx context.Context, name string) (*Category, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*Category, error)
}

type TestRepository interface {
	Create(ctx context.Context, t *Test) error
	GetByID(ctx context.Context, id uuid.UUID) (*Test, error)
	Update(ctx context.Context, t *Test) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*Test, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*Test, error)
}
