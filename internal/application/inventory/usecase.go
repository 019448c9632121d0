package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/validator"
)

// RegisterMovementUseCase registra movimientos de inventario (entry, exit, transfer) de forma
// transaccional: resolver partes → bloquear filas (SELECT FOR UPDATE) → validar → mutar saldos →
// anotar en el libro → Commit. Cualquier fallo hace Rollback completo. No reintenta nada.
type RegisterMovementUseCase struct {
	txRunner  TxRunner
	catalog   repository.CatalogRepository
	resolver  *PartyResolver
	publisher MovementPublisher
	cache     BalanceCache
	log       zerolog.Logger
	now       func() time.Time
}

// NewRegisterMovementUseCase construye el caso de uso. publisher y cache pueden ser nil.
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	catalog repository.CatalogRepository,
	publisher MovementPublisher,
	cache BalanceCache,
	log zerolog.Logger,
) *RegisterMovementUseCase {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	if cache == nil {
		cache = NoopBalanceCache{}
	}
	return &RegisterMovementUseCase{
		txRunner:  txRunner,
		catalog:   catalog,
		resolver:  NewPartyResolver(catalog),
		publisher: publisher,
		cache:     cache,
		log:       log,
		now:       time.Now,
	}
}

// MovementInput entrada para registrar un movimiento.
// entry: destino obligatorio, origen opcional. exit: origen obligatorio, destino opcional.
// transfer: origen y destino obligatorios y distintos.
type MovementInput struct {
	Kind              entity.MovementKind `field:"kind" validate:"required,oneof=entry exit transfer"`
	ProductID         string              `field:"product_id" validate:"required"`
	Quantity          int64               `field:"quantity" validate:"gt=0"`
	OriginID          string              `field:"origin_id"`
	OriginKind        entity.PartyKind    `field:"origin_kind" validate:"omitempty,oneof=location supplier user client"`
	DestinationID     string              `field:"destination_id"`
	DestinationKind   entity.PartyKind    `field:"destination_kind" validate:"omitempty,oneof=location supplier user client"`
	UnitCost          *decimal.Decimal    `field:"unit_cost" validate:"-"`
	BatchIdentifier   string              `field:"batch_identifier" validate:"max=64"`
	ExpiryDate        *time.Time          `field:"expiry_date" validate:"-"`
	Observation       string              `field:"observation" validate:"required,max=1000"`
	UserID            string              `field:"user_id" validate:"required"`
	MovementTimestamp *time.Time          `field:"movement_timestamp" validate:"-"`
}

// movementRun acompaña a una solicitud por la máquina de estados.
type movementRun struct {
	state inventory.MovementState
	log   zerolog.Logger
}

func (r *movementRun) advance(to inventory.MovementState) error {
	next, err := r.state.Transition(to)
	if err != nil {
		return err
	}
	r.log.Debug().Str("from", string(r.state)).Str("to", string(next)).Msg("movimiento: transición")
	r.state = next
	return nil
}

func (r *movementRun) reject(err error) error {
	r.state = inventory.StateRejected
	ev := r.log.Warn()
	if errors.Is(err, domain.ErrPersistence) {
		ev = r.log.Error()
	}
	ev.Err(err).Msg("movimiento rechazado")
	return err
}

// RegisterMovement aplica el movimiento completo o nada. Devuelve el registro confirmado del libro.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInput) (*entity.StockMovement, error) {
	run := &movementRun{
		state: inventory.StateRequested,
		log: uc.log.With().
			Str("kind", string(input.Kind)).
			Str("product_id", input.ProductID).
			Int64("quantity", input.Quantity).
			Logger(),
	}

	if err := validateInput(&input); err != nil {
		return nil, run.reject(err)
	}

	if err := run.advance(inventory.StateResolving); err != nil {
		return nil, run.reject(err)
	}
	exists, err := uc.catalog.ProductExists(ctx, input.ProductID)
	if err != nil {
		return nil, run.reject(classify("verificar producto", err))
	}
	if !exists {
		return nil, run.reject(&domain.NotFoundError{Kind: "product", ID: input.ProductID})
	}
	origin, destination, err := uc.resolveParties(ctx, input)
	if err != nil {
		return nil, run.reject(classify("resolver partes", err))
	}

	now := uc.now().UTC()
	mov := &entity.StockMovement{
		ID:                uuid.New().String(),
		ProductID:         input.ProductID,
		Kind:              input.Kind,
		Quantity:          input.Quantity,
		Origin:            origin,
		Destination:       destination,
		Observation:       inventory.NormalizeObservation(input.Observation),
		UserID:            input.UserID,
		MovementTimestamp: now,
		CreatedAt:         now,
	}
	if input.MovementTimestamp != nil {
		mov.MovementTimestamp = input.MovementTimestamp.UTC()
	}

	// Inicia transacción; Commit si todo ok, Rollback si algo falla (TxRunner.Run lo hace)
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		locRepo repository.StockLocationRepository,
	) error {
		switch input.Kind {
		case entity.MovementEntry:
			return uc.doEntry(ctx, run, movRepo, locRepo, mov, input)
		case entity.MovementExit:
			return uc.doExit(ctx, run, movRepo, locRepo, mov, input)
		case entity.MovementTransfer:
			return uc.doTransfer(ctx, run, movRepo, locRepo, mov, input)
		}
		return domain.NewValidationError("kind", "tipo de movimiento desconocido")
	})
	if err != nil {
		return nil, run.reject(classify("registrar movimiento", err))
	}
	if err := run.advance(inventory.StateCommitted); err != nil {
		return nil, run.reject(err)
	}

	run.log.Info().
		Str("movement_id", mov.ID).
		Str("origin", mov.OriginKey()).
		Str("destination", mov.DestinationKey()).
		Msg("movimiento confirmado")
	uc.afterCommit(ctx, mov)
	return mov, nil
}

// validateInput rechaza la solicitud antes de cualquier lectura o escritura.
func validateInput(in *MovementInput) error {
	in.Observation = strings.TrimSpace(in.Observation)
	in.BatchIdentifier = strings.TrimSpace(in.BatchIdentifier)
	in.ProductID = strings.TrimSpace(in.ProductID)
	in.OriginID = strings.TrimSpace(in.OriginID)
	in.DestinationID = strings.TrimSpace(in.DestinationID)

	if errs := validator.ValidateStruct(in); len(errs) > 0 {
		first := errs[0]
		return domain.NewValidationError(first.Field, "no cumple la regla "+first.Tag)
	}
	if in.UnitCost != nil {
		if in.UnitCost.IsNegative() {
			return domain.NewValidationError("unit_cost", "no puede ser negativo")
		}
		if !inventory.UnitCostStorable(*in.UnitCost) {
			return domain.NewValidationError("unit_cost", "máximo 4 decimales y menor que 10^14")
		}
		if total := inventory.TotalCost(in.UnitCost, in.Quantity); total.Abs().GreaterThanOrEqual(inventory.MaxTotalCost) {
			return domain.NewValidationError("quantity", "el costo total excede el máximo admitido")
		}
	}

	needOrigin := in.Kind == entity.MovementExit || in.Kind == entity.MovementTransfer
	needDestination := in.Kind == entity.MovementEntry || in.Kind == entity.MovementTransfer
	if needOrigin && in.OriginID == "" {
		return domain.NewValidationError("origin_id", "es obligatorio para "+string(in.Kind))
	}
	if needDestination && in.DestinationID == "" {
		return domain.NewValidationError("destination_id", "es obligatorio para "+string(in.Kind))
	}
	if in.OriginKind != "" && in.OriginID == "" {
		return domain.NewValidationError("origin_id", "es obligatorio si se indica origin_kind")
	}
	if in.DestinationKind != "" && in.DestinationID == "" {
		return domain.NewValidationError("destination_id", "es obligatorio si se indica destination_kind")
	}
	if in.OriginID != "" && in.DestinationID != "" {
		origin := entity.Party{Kind: defaultKind(in.OriginKind), ID: in.OriginID}
		dest := entity.Party{Kind: defaultKind(in.DestinationKind), ID: in.DestinationID}
		if origin.Same(dest) {
			return domain.NewValidationError("destination_id", "origen y destino deben ser partes distintas")
		}
	}
	return nil
}

func defaultKind(k entity.PartyKind) entity.PartyKind {
	if k == "" {
		return entity.PartyLocation
	}
	return k
}

func (uc *RegisterMovementUseCase) resolveParties(ctx context.Context, in MovementInput) (*entity.Party, *entity.Party, error) {
	var origin, destination *entity.Party
	if in.OriginID != "" {
		p, err := uc.resolver.Resolve(ctx, in.OriginKind, in.OriginID)
		if err != nil {
			return nil, nil, err
		}
		origin = &p
	}
	if in.DestinationID != "" {
		p, err := uc.resolver.Resolve(ctx, in.DestinationKind, in.DestinationID)
		if err != nil {
			return nil, nil, err
		}
		destination = &p
	}
	return origin, destination, nil
}

// doEntry: get-or-create del destino (bloqueado), fusiona precio/lote/vencimiento del llamador,
// suma cantidad y anota en el libro.
func (uc *RegisterMovementUseCase) doEntry(
	ctx context.Context,
	run *movementRun,
	movRepo repository.StockMovementRepository,
	locRepo repository.StockLocationRepository,
	mov *entity.StockMovement,
	in MovementInput,
) error {
	attrs := entity.LocationDefaults{UnitPrice: in.UnitCost, BatchIdentifier: in.BatchIdentifier, ExpiryDate: in.ExpiryDate}
	key := mov.DestinationKey()

	row, created, err := locRepo.GetOrCreate(ctx, mov.ProductID, key, attrs)
	if err != nil {
		return err
	}
	if err := run.advance(inventory.StateValidating); err != nil {
		return err
	}
	if err := run.advance(inventory.StateApplying); err != nil {
		return err
	}
	// En reposición los valores del llamador ganan: actualizan la base de costo.
	if !created && row.Merge(attrs) {
		if err := locRepo.UpdateAttributes(ctx, row); err != nil {
			return err
		}
	}
	if _, err := locRepo.AdjustQuantity(ctx, mov.ProductID, key, mov.Quantity); err != nil {
		return err
	}

	mov.UnitCost = firstDecimal(in.UnitCost, row.UnitPrice)
	mov.BatchIdentifier = firstString(in.BatchIdentifier, row.BatchIdentifier)
	mov.ExpiryDate = firstTime(in.ExpiryDate, row.ExpiryDate)
	return appendLedger(ctx, movRepo, mov)
}

// doExit: bloquea la fila origen, verifica StockActual >= CantidadSolicitada, resta y anota.
func (uc *RegisterMovementUseCase) doExit(
	ctx context.Context,
	run *movementRun,
	movRepo repository.StockMovementRepository,
	locRepo repository.StockLocationRepository,
	mov *entity.StockMovement,
	in MovementInput,
) error {
	key := mov.OriginKey()
	row, err := locRepo.FindForUpdate(ctx, mov.ProductID, key)
	if err != nil {
		return err
	}
	if row == nil {
		return &domain.NotFoundError{Kind: "stock_location", ID: key}
	}
	if err := run.advance(inventory.StateValidating); err != nil {
		return err
	}
	if row.Quantity < mov.Quantity {
		return &domain.InsufficientStockError{
			ProductID: mov.ProductID, Location: key, Available: row.Quantity, Requested: mov.Quantity,
		}
	}
	if err := run.advance(inventory.StateApplying); err != nil {
		return err
	}
	if _, err := locRepo.AdjustQuantity(ctx, mov.ProductID, key, -mov.Quantity); err != nil {
		return err
	}

	mov.UnitCost = firstDecimal(in.UnitCost, row.UnitPrice)
	mov.BatchIdentifier = firstString(in.BatchIdentifier, row.BatchIdentifier)
	mov.ExpiryDate = firstTime(in.ExpiryDate, row.ExpiryDate)
	return appendLedger(ctx, movRepo, mov)
}

// doTransfer: bloquea origen y destino en orden de clave, verifica saldo del origen, resta del origen,
// get-or-create del destino heredando precio/lote/vencimiento del origen, suma y anota una sola vez.
func (uc *RegisterMovementUseCase) doTransfer(
	ctx context.Context,
	run *movementRun,
	movRepo repository.StockMovementRepository,
	locRepo repository.StockLocationRepository,
	mov *entity.StockMovement,
	in MovementInput,
) error {
	srcKey, dstKey := mov.OriginKey(), mov.DestinationKey()

	// Orden de bloqueo determinista para que dos traslados cruzados no se bloqueen mutuamente.
	order := []string{srcKey, dstKey}
	if dstKey < srcKey {
		order = []string{dstKey, srcKey}
	}
	locked := make(map[string]*entity.StockLocation, 2)
	for _, key := range order {
		row, err := locRepo.FindForUpdate(ctx, mov.ProductID, key)
		if err != nil {
			return err
		}
		locked[key] = row
	}

	src := locked[srcKey]
	if src == nil {
		return &domain.NotFoundError{Kind: "stock_location", ID: srcKey}
	}
	if err := run.advance(inventory.StateValidating); err != nil {
		return err
	}
	if src.Quantity < mov.Quantity {
		return &domain.InsufficientStockError{
			ProductID: mov.ProductID, Location: srcKey, Available: src.Quantity, Requested: mov.Quantity,
		}
	}
	if err := run.advance(inventory.StateApplying); err != nil {
		return err
	}

	if _, err := locRepo.AdjustQuantity(ctx, mov.ProductID, srcKey, -mov.Quantity); err != nil {
		return err
	}
	if _, _, err := locRepo.GetOrCreate(ctx, mov.ProductID, dstKey, src.Defaults()); err != nil {
		return err
	}
	if _, err := locRepo.AdjustQuantity(ctx, mov.ProductID, dstKey, mov.Quantity); err != nil {
		return err
	}

	// Un traslado no cambia la base de costo: manda el origen, el llamador solo rellena huecos.
	mov.UnitCost = firstDecimal(src.UnitPrice, in.UnitCost)
	mov.BatchIdentifier = firstString(src.BatchIdentifier, in.BatchIdentifier)
	mov.ExpiryDate = firstTime(src.ExpiryDate, in.ExpiryDate)
	return appendLedger(ctx, movRepo, mov)
}

// appendLedger deriva el costo total (función pura) y guarda el registro.
func appendLedger(ctx context.Context, movRepo repository.StockMovementRepository, mov *entity.StockMovement) error {
	mov.TotalCost = inventory.TotalCost(mov.UnitCost, mov.Quantity)
	return movRepo.Append(ctx, mov)
}

// afterCommit invalida la caché y publica el evento. Los fallos se registran y no deshacen nada.
func (uc *RegisterMovementUseCase) afterCommit(ctx context.Context, mov *entity.StockMovement) {
	keys := make([]string, 0, 2)
	if k := mov.OriginKey(); k != "" {
		keys = append(keys, k)
	}
	if k := mov.DestinationKey(); k != "" {
		keys = append(keys, k)
	}
	if err := uc.cache.Invalidate(ctx, mov.ProductID, keys...); err != nil {
		uc.log.Warn().Err(err).Str("movement_id", mov.ID).Msg("invalidar caché de saldos")
	}
	if err := uc.publisher.PublishMovement(ctx, mov); err != nil {
		uc.log.Warn().Err(err).Str("movement_id", mov.ID).Msg("publicar movimiento")
	}
}

// classify deja pasar los errores de dominio; el resto es un fallo de persistencia.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrConcurrencyConflict),
		errors.Is(err, domain.ErrPersistence):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return &domain.ConcurrencyConflictError{Op: op, Err: err}
	}
	return &domain.PersistenceError{Op: op, Err: err}
}

func firstDecimal(values ...*decimal.Decimal) *decimal.Decimal {
	for _, v := range values {
		if v != nil {
			d := *v
			return &d
		}
	}
	return nil
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstTime(values ...*time.Time) *time.Time {
	for _, v := range values {
		if v != nil {
			t := *v
			return &t
		}
	}
	return nil
}
