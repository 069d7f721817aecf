package repositories

import (
	"context"

	"github.com/jaykurgat/Nyumba-Finder/domain"
)

// PropertyRepository is the contract every property store backend fulfils.
// Backends return domain.ErrNotFound for missing ids and
// domain.ErrStoreUnavailable when they were built without a connection.
type PropertyRepository interface {
	Get(ctx context.Context, id string) (*domain.Property, error)
	List(ctx context.Context, query PropertyQuery) ([]domain.Property, error)
	Create(ctx context.Context, property *domain.Property) error
	Update(ctx context.Context, id string, patch domain.PropertyPatch) error
	Delete(ctx context.Context, id string) error
	Migrate(ctx context.Context) error
}

// PropertyQuery holds the predicates the store evaluates natively.
// OrderBy is domain.FieldPrice or domain.FieldTitle.
type PropertyQuery struct {
	MinPrice     *float64
	MaxPrice     *float64
	MinBedrooms  *float64
	MinBathrooms *float64
	OrderBy      string
}

func orderField(q PropertyQuery) string {
	if q.OrderBy == domain.FieldPrice {
		return domain.FieldPrice
	}
	return domain.FieldTitle
}
