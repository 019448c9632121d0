package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: si fn devuelve error no queda ninguna escritura.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		locRepo repository.StockLocationRepository,
	) error) error
}

// MovementPublisher notifica movimientos ya confirmados (best effort, fuera de la tx).
type MovementPublisher interface {
	PublishMovement(ctx context.Context, movement *entity.StockMovement) error
}

// BalanceCache caché de lectura de saldos. Nunca participa en la unidad atómica.
// Cada clave lleva una generación: Invalidate la incrementa y Set solo escribe si la
// generación leída antes de consultar el almacén sigue vigente.
type BalanceCache interface {
	Get(ctx context.Context, productID, location string) (*entity.StockLocation, bool, error)
	Generation(ctx context.Context, productID, location string) (int64, error)
	Set(ctx context.Context, loc *entity.StockLocation, generation int64) error
	Invalidate(ctx context.Context, productID string, locations ...string) error
}

// NoopPublisher descarta los eventos. Se usa cuando no hay broker configurado.
type NoopPublisher struct{}

func (NoopPublisher) PublishMovement(context.Context, *entity.StockMovement) error { return nil }

// NoopBalanceCache siempre falla la búsqueda; las lecturas van directo al almacén.
type NoopBalanceCache struct{}

func (NoopBalanceCache) Get(context.Context, string, string) (*entity.StockLocation, bool, error) {
	return nil, false, nil
}

func (NoopBalanceCache) Generation(context.Context, string, string) (int64, error) { return 0, nil }

func (NoopBalanceCache) Set(context.Context, *entity.StockLocation, int64) error { return nil }

func (NoopBalanceCache) Invalidate(context.Context, string, ...string) error { return nil }
