package decorator

import (
	"context"
	"fmt"
	"strings"

	"github.com/smallbiznis/billcollect/internal/billing/domain"
)

// Decorator enriches a wrapper for one source family.
type Decorator interface {
	FamilyID() string
	Decorate(ctx context.Context, wrapper *domain.Wrapper) error
}

// Registry is an immutable family-id → decorator table built at startup.
type Registry struct {
	decorators map[string]Decorator
}

// NewRegistry indexes the available decorators. Registering two decorators for
// the same family id is a configuration error and fails construction.
func NewRegistry(decorators ...Decorator) (*Registry, error) {
	registry := &Registry{decorators: map[string]Decorator{}}
	for _, d := range decorators {
		if d == nil {
			continue
		}
		familyID := strings.ToLower(strings.TrimSpace(d.FamilyID()))
		if familyID == "" {
			return nil, fmt.Errorf("decorator with empty family id")
		}
		if _, exists := registry.decorators[familyID]; exists {
			return nil, fmt.Errorf("duplicate decorator for family id %q", familyID)
		}
		registry.decorators[familyID] = d
	}
	return registry, nil
}

// Resolve returns the decorator for a family id, or ErrUnsupportedSource.
func (r *Registry) Resolve(familyID string) (Decorator, error) {
	if r == nil {
		return nil, domain.ErrUnsupportedSource
	}
	d, ok := r.decorators[strings.ToLower(strings.TrimSpace(familyID))]
	if !ok {
		return nil, domain.ErrUnsupportedSource
	}
	return d, nil
}

// FamilyIDs lists every registered family id.
func (r *Registry) FamilyIDs() []string {
	ids := make([]string, 0, len(r.decorators))
	for id := range r.decorators {
		ids = append(ids, id)
	}
	return ids
}
