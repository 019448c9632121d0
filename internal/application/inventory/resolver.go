package inventory

import (
	"context"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// KindResolver confirma que una parte de un tipo concreto existe.
type KindResolver interface {
	Resolve(ctx context.Context, id string) (entity.Party, error)
}

// namedLocationResolver ubicaciones nombradas: la clave es la propia identidad.
// Su existencia como fila de saldo la decide el coordinador (get-or-create o NotFound en salidas).
type namedLocationResolver struct{}

func (namedLocationResolver) Resolve(_ context.Context, id string) (entity.Party, error) {
	return entity.Party{Kind: entity.PartyLocation, ID: id}, nil
}

// catalogResolver partes respaldadas por un catálogo externo (proveedor, personal, cliente).
type catalogResolver struct {
	kind   entity.PartyKind
	exists func(ctx context.Context, id string) (bool, error)
}

func (r catalogResolver) Resolve(ctx context.Context, id string) (entity.Party, error) {
	ok, err := r.exists(ctx, id)
	if err != nil {
		return entity.Party{}, err
	}
	if !ok {
		return entity.Party{}, &domain.NotFoundError{Kind: string(r.kind), ID: id}
	}
	return entity.Party{Kind: r.kind, ID: id}, nil
}

// PartyResolver traduce {tipo, id} declarados en la solicitud a una parte confirmada.
type PartyResolver struct {
	byKind map[entity.PartyKind]KindResolver
}

// NewPartyResolver registra un resolvedor por tipo de parte sobre el catálogo.
func NewPartyResolver(catalog repository.CatalogRepository) *PartyResolver {
	return &PartyResolver{byKind: map[entity.PartyKind]KindResolver{
		entity.PartyLocation: namedLocationResolver{},
		entity.PartySupplier: catalogResolver{kind: entity.PartySupplier, exists: catalog.SupplierExists},
		entity.PartyUser:     catalogResolver{kind: entity.PartyUser, exists: catalog.UserExists},
		entity.PartyClient:   catalogResolver{kind: entity.PartyClient, exists: catalog.ClientExists},
	}}
}

// Resolve sin tipo declarado el id se toma como clave de ubicación nombrada.
func (r *PartyResolver) Resolve(ctx context.Context, kind entity.PartyKind, id string) (entity.Party, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entity.Party{}, domain.NewValidationError("party_id", "es obligatorio")
	}
	if kind == "" {
		kind = entity.PartyLocation
	}
	res, ok := r.byKind[kind]
	if !ok {
		return entity.Party{}, domain.NewValidationError("party_kind", "tipo de parte desconocido: "+string(kind))
	}
	return res.Resolve(ctx, id)
}
