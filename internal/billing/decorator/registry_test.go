package decorator

import (
	"context"
	"testing"

	"github.com/smallbiznis/billcollect/internal/billing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticDecorator struct {
	familyID string
}

func (d staticDecorator) FamilyID() string { return d.familyID }

func (d staticDecorator) Decorate(ctx context.Context, wrapper *domain.Wrapper) error {
	return nil
}

func TestNewRegistry_DuplicateFamilyIDFails(t *testing.T) {
	_, err := NewRegistry(
		staticDecorator{familyID: "customer-invoice-form"},
		staticDecorator{familyID: "Customer-Invoice-Form"},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate decorator")
}

func TestNewRegistry_EmptyFamilyIDFails(t *testing.T) {
	_, err := NewRegistry(staticDecorator{familyID: "  "})
	require.Error(t, err)
}

func TestRegistry_ResolveIsCaseInsensitive(t *testing.T) {
	registry, err := NewRegistry(staticDecorator{familyID: "internal-invoice-form"})
	require.NoError(t, err)

	d, err := registry.Resolve("Internal-Invoice-Form")
	require.NoError(t, err)
	assert.Equal(t, "internal-invoice-form", d.FamilyID())
}

func TestRegistry_UnknownFamilyID(t *testing.T) {
	registry, err := NewRegistry(staticDecorator{familyID: "customer-invoice-form"})
	require.NoError(t, err)

	_, err = registry.Resolve("unknown-form")
	assert.ErrorIs(t, err, domain.ErrUnsupportedSource)
}

func TestRegistry_FamilyIDs(t *testing.T) {
	registry, err := NewRegistry(
		staticDecorator{familyID: "customer-invoice-form"},
		staticDecorator{familyID: "internal-invoice-form"},
	)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"customer-invoice-form", "internal-invoice-form"},
		registry.FamilyIDs(),
	)
}
