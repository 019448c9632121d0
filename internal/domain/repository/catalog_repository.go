package repository

import "context"

// CatalogRepository verificaciones de existencia contra los catálogos externos
// (productos, proveedores, personal y clientes de la clínica).
type CatalogRepository interface {
	ProductExists(ctx context.Context, productID string) (bool, error)
	SupplierExists(ctx context.Context, supplierID string) (bool, error)
	UserExists(ctx context.Context, userID string) (bool, error)
	ClientExists(ctx context.Context, clientID string) (bool, error)
}
