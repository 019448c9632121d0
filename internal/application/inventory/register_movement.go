package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// RegisterMovementFromRequest adapta el request HTTP al caso de uso RegisterMovement(ctx, MovementInput).
// userID viene del middleware de autenticación y se considera ya verificado.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, userID string, in dto.RegisterMovementRequest) (*dto.StockMovementResponse, error) {
	expiry, err := ParseDate(in.ExpiryDate)
	if err != nil {
		return nil, domain.NewValidationError("expiry_date", "formato esperado YYYY-MM-DD o RFC3339")
	}
	input := MovementInput{
		Kind:              entity.MovementKind(strings.ToLower(strings.TrimSpace(in.Kind))),
		ProductID:         in.ProductID,
		Quantity:          in.Quantity,
		OriginID:          in.OriginID,
		OriginKind:        entity.PartyKind(strings.ToLower(strings.TrimSpace(in.OriginKind))),
		DestinationID:     in.DestinationID,
		DestinationKind:   entity.PartyKind(strings.ToLower(strings.TrimSpace(in.DestinationKind))),
		UnitCost:          in.UnitCost,
		BatchIdentifier:   in.BatchIdentifier,
		ExpiryDate:        expiry,
		Observation:       in.Observation,
		UserID:            userID,
		MovementTimestamp: in.MovementTimestamp,
	}
	mov, err := uc.RegisterMovement(ctx, input)
	if err != nil {
		return nil, err
	}
	resp := ToMovementResponse(mov)
	return &resp, nil
}

// ParseDate interpreta una fecha de calendario (vencimientos). Acepta 2006-01-02 o RFC3339;
// de un RFC3339 se toma el día en la zona del llamador, no el de UTC. Cadena vacía = sin fecha.
func ParseDate(s string) (*time.Time, error) {
	t, err := parseTime(s)
	if err != nil || t == nil {
		return nil, err
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d, nil
}

// ParseTimestamp interpreta un instante (filtros from/to). Una fecha corta es medianoche UTC.
func ParseTimestamp(s string) (*time.Time, error) {
	t, err := parseTime(s)
	if err != nil || t == nil {
		return nil, err
	}
	u := t.UTC()
	return &u, nil
}

func parseTime(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	_, err := time.Parse(time.RFC3339, s)
	return nil, err
}
