package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

func newResolver() *inventory.PartyResolver {
	store := memory.NewStore(memory.Options{})
	store.Catalog().AddParties(entity.PartySupplier, "prov-1")
	store.Catalog().AddParties(entity.PartyUser, "enf-1")
	store.Catalog().AddParties(entity.PartyClient, "cli-1")
	return inventory.NewPartyResolver(store.Catalog())
}

func TestPartyResolver_SinTipoEsUbicacion(t *testing.T) {
	p, err := newResolver().Resolve(context.Background(), "", " Shelf-A ")
	require.NoError(t, err)
	assert.Equal(t, entity.PartyLocation, p.Kind)
	assert.Equal(t, "Shelf-A", p.LocationKey())
}

func TestPartyResolver_TiposDeCatalogo(t *testing.T) {
	r := newResolver()
	cases := []struct {
		kind entity.PartyKind
		id   string
		key  string
	}{
		{entity.PartySupplier, "prov-1", "supplier:prov-1"},
		{entity.PartyUser, "enf-1", "user:enf-1"},
		{entity.PartyClient, "cli-1", "client:cli-1"},
	}
	for _, tc := range cases {
		p, err := r.Resolve(context.Background(), tc.kind, tc.id)
		require.NoError(t, err)
		assert.Equal(t, tc.key, p.LocationKey())
	}
}

func TestPartyResolver_Errores(t *testing.T) {
	r := newResolver()

	_, err := r.Resolve(context.Background(), entity.PartyClient, "cli-404")
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "client", nf.Kind)

	_, err = r.Resolve(context.Background(), "warehouse", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = r.Resolve(context.Background(), entity.PartyLocation, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
