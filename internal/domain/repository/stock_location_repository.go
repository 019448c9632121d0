package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockLocationRepository puerto del almacén de saldos (producto, ubicación).
// Los métodos de escritura y FindForUpdate deben ejecutarse dentro de la unidad atómica
// del TxRunner; las filas que devuelven quedan bloqueadas hasta el commit o rollback.
type StockLocationRepository interface {
	// Find devuelve la fila actual o nil si no existe. Solo lectura, sin bloqueo.
	Find(ctx context.Context, productID, location string) (*entity.StockLocation, error)
	// FindForUpdate devuelve la fila bloqueada en exclusiva o nil si no existe.
	FindForUpdate(ctx context.Context, productID, location string) (*entity.StockLocation, error)
	// GetOrCreate devuelve la fila (bloqueada) o la crea con cantidad 0 y los defaults.
	GetOrCreate(ctx context.Context, productID, location string, defaults entity.LocationDefaults) (*entity.StockLocation, bool, error)
	// AdjustQuantity aplica delta. domain.InsufficientStockError si el resultado sería negativo.
	AdjustQuantity(ctx context.Context, productID, location string, delta int64) (*entity.StockLocation, error)
	// UpdateAttributes persiste precio, lote y vencimiento de la fila.
	UpdateAttributes(ctx context.Context, loc *entity.StockLocation) error
	// ListByProduct lista todos los saldos de un producto.
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockLocation, error)
}
