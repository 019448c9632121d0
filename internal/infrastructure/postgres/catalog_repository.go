package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

// CatalogRepo consultas de existencia sobre las tablas de la plataforma clínica.
type CatalogRepo struct {
	q Querier
}

// NewCatalogRepository construye el adaptador de catálogos.
func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

func (r *CatalogRepo) ProductExists(ctx context.Context, productID string) (bool, error) {
	return r.exists(ctx, "products", productID)
}

func (r *CatalogRepo) SupplierExists(ctx context.Context, supplierID string) (bool, error) {
	return r.exists(ctx, "suppliers", supplierID)
}

func (r *CatalogRepo) UserExists(ctx context.Context, userID string) (bool, error) {
	return r.exists(ctx, "users", userID)
}

func (r *CatalogRepo) ClientExists(ctx context.Context, clientID string) (bool, error) {
	return r.exists(ctx, "clients", clientID)
}

// exists table es siempre una constante de este archivo, nunca entrada del usuario.
func (r *CatalogRepo) exists(ctx context.Context, table, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	// id::text admite tablas con clave UUID o TEXT.
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id::text = $1)`, table)
	var ok bool
	if err := r.q.QueryRow(ctx, query, id).Scan(&ok); err != nil {
		return false, mapPgError("check "+table, err)
	}
	return ok, nil
}
