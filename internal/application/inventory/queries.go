package inventory

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// QueryUseCase superficie de solo lectura sobre saldos y libro (reportes, tableros).
// ArchiveMovement es la única escritura: marca de auditoría que no toca saldos.
type QueryUseCase struct {
	locRepo repository.StockLocationRepository
	movRepo repository.StockMovementRepository
	catalog repository.CatalogRepository
	cache   BalanceCache
	group   singleflight.Group
	log     zerolog.Logger
	now     func() time.Time
}

// NewQueryUseCase construye el caso de uso de lectura. cache puede ser nil.
func NewQueryUseCase(
	locRepo repository.StockLocationRepository,
	movRepo repository.StockMovementRepository,
	catalog repository.CatalogRepository,
	cache BalanceCache,
	log zerolog.Logger,
) *QueryUseCase {
	if cache == nil {
		cache = NoopBalanceCache{}
	}
	return &QueryUseCase{
		locRepo: locRepo,
		movRepo: movRepo,
		catalog: catalog,
		cache:   cache,
		log:     log,
		now:     time.Now,
	}
}

// Reconciliation saldo registrado frente al derivado del libro.
type Reconciliation struct {
	ProductID  string
	Location   string
	Recorded   int64
	Derived    int64
	Movements  int
	Consistent bool
}

// ListByProduct movimientos de un producto, más recientes primero.
func (uc *QueryUseCase) ListByProduct(ctx context.Context, productID string, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	if productID == "" {
		return nil, domain.NewValidationError("product_id", "es obligatorio")
	}
	return uc.movRepo.ListByProduct(ctx, productID, normalizeFilter(filter))
}

// ListByLocation movimientos que entran o salen de una ubicación.
func (uc *QueryUseCase) ListByLocation(ctx context.Context, location string, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	if location == "" {
		return nil, domain.NewValidationError("location", "es obligatorio")
	}
	return uc.movRepo.ListByLocation(ctx, location, normalizeFilter(filter))
}

// GetMovement obtiene un movimiento por ID (archivados incluidos).
func (uc *QueryUseCase) GetMovement(ctx context.Context, id string) (*entity.StockMovement, error) {
	mov, err := uc.movRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, &domain.NotFoundError{Kind: "movement", ID: id}
	}
	return mov, nil
}

// GetBalance saldo actual. Un par nunca tocado devuelve cantidad 0 sin escribir nada.
// Las lecturas concurrentes de la misma clave se colapsan en una sola consulta.
func (uc *QueryUseCase) GetBalance(ctx context.Context, productID, location string) (*entity.StockLocation, error) {
	if productID == "" || location == "" {
		return nil, domain.NewValidationError("location", "producto y ubicación son obligatorios")
	}
	if cached, ok, err := uc.cache.Get(ctx, productID, location); err != nil {
		uc.log.Warn().Err(err).Str("product_id", productID).Str("location", location).Msg("leer caché de saldos")
	} else if ok {
		return cached, nil
	}

	v, err, _ := uc.group.Do(productID+"\x00"+location, func() (any, error) {
		exists, err := uc.catalog.ProductExists(ctx, productID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, &domain.NotFoundError{Kind: "product", ID: productID}
		}
		// La generación se lee antes que la fila: si un commit invalida entre medias, Set no escribe.
		gen, genErr := uc.cache.Generation(ctx, productID, location)
		if genErr != nil {
			uc.log.Warn().Err(genErr).Str("product_id", productID).Str("location", location).Msg("leer generación de caché")
		}
		row, err := uc.locRepo.Find(ctx, productID, location)
		if err != nil {
			return nil, err
		}
		if row == nil {
			return &entity.StockLocation{ProductID: productID, Location: location}, nil
		}
		if genErr == nil {
			if err := uc.cache.Set(ctx, row, gen); err != nil {
				uc.log.Warn().Err(err).Str("product_id", productID).Str("location", location).Msg("escribir caché de saldos")
			}
		}
		return row, nil
	})
	if err != nil {
		return nil, err
	}
	row := *v.(*entity.StockLocation)
	return &row, nil
}

// ListBalances todos los saldos de un producto.
func (uc *QueryUseCase) ListBalances(ctx context.Context, productID string) ([]*entity.StockLocation, error) {
	if productID == "" {
		return nil, domain.NewValidationError("product_id", "es obligatorio")
	}
	return uc.locRepo.ListByProduct(ctx, productID)
}

// Reconcile compara el saldo registrado con la suma firmada del libro.
func (uc *QueryUseCase) Reconcile(ctx context.Context, productID, location string) (*Reconciliation, error) {
	if productID == "" || location == "" {
		return nil, domain.NewValidationError("location", "producto y ubicación son obligatorios")
	}
	row, err := uc.locRepo.Find(ctx, productID, location)
	if err != nil {
		return nil, err
	}
	movs, err := uc.movRepo.ListTouching(ctx, productID, location)
	if err != nil {
		return nil, err
	}
	rec := &Reconciliation{
		ProductID: productID,
		Location:  location,
		Derived:   inventory.DeriveBalance(movs, productID, location),
		Movements: len(movs),
	}
	if row != nil {
		rec.Recorded = row.Quantity
	}
	rec.Consistent = rec.Recorded == rec.Derived
	if !rec.Consistent {
		uc.log.Error().
			Str("product_id", productID).
			Str("location", location).
			Int64("recorded", rec.Recorded).
			Int64("derived", rec.Derived).
			Msg("saldo inconsistente con el libro")
	}
	return rec, nil
}

// ArchiveMovement marca un movimiento como archivado (auditoría). No revierte saldos:
// una corrección se registra como un movimiento compensatorio nuevo.
func (uc *QueryUseCase) ArchiveMovement(ctx context.Context, id, userID string) error {
	if userID == "" {
		return domain.NewValidationError("user_id", "es obligatorio")
	}
	mov, err := uc.movRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if mov == nil {
		return &domain.NotFoundError{Kind: "movement", ID: id}
	}
	if mov.DeletedAt != nil {
		return nil
	}
	if err := uc.movRepo.SoftDelete(ctx, id, userID, uc.now().UTC()); err != nil {
		return err
	}
	uc.log.Info().Str("movement_id", id).Str("user_id", userID).Msg("movimiento archivado")
	return nil
}

// ToReconciliationResponse convierte el resultado de Reconcile al DTO.
func ToReconciliationResponse(r *Reconciliation) dto.ReconciliationResponse {
	return dto.ReconciliationResponse{
		ProductID:  r.ProductID,
		Location:   r.Location,
		Recorded:   r.Recorded,
		Derived:    r.Derived,
		Movements:  r.Movements,
		Consistent: r.Consistent,
	}
}

func normalizeFilter(f repository.MovementFilter) repository.MovementFilter {
	page := dto.PageRequest{Limit: f.Limit, Offset: f.Offset}
	page.DefaultPage()
	f.Limit, f.Offset = page.Limit, page.Offset
	return f
}
