package inventory

import (
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ToMovementResponse convierte un registro del libro al DTO de respuesta.
func ToMovementResponse(m *entity.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:                m.ID,
		ProductID:         m.ProductID,
		Kind:              string(m.Kind),
		Quantity:          m.Quantity,
		Origin:            toPartyDTO(m.Origin),
		Destination:       toPartyDTO(m.Destination),
		UnitCost:          m.UnitCost,
		TotalCost:         m.TotalCost,
		BatchIdentifier:   m.BatchIdentifier,
		ExpiryDate:        m.ExpiryDate,
		Observation:       m.Observation,
		UserID:            m.UserID,
		MovementTimestamp: m.MovementTimestamp,
		CreatedAt:         m.CreatedAt,
		DeletedAt:         m.DeletedAt,
	}
}

// ToMovementResponses convierte una página del libro.
func ToMovementResponses(list []*entity.StockMovement) []dto.StockMovementResponse {
	out := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToMovementResponse(m))
	}
	return out
}

// ToLocationResponse convierte un saldo al DTO. UpdatedAt se omite en filas nunca creadas.
func ToLocationResponse(l *entity.StockLocation) dto.StockLocationResponse {
	resp := dto.StockLocationResponse{
		ProductID:       l.ProductID,
		Location:        l.Location,
		Quantity:        l.Quantity,
		UnitPrice:       l.UnitPrice,
		BatchIdentifier: l.BatchIdentifier,
		ExpiryDate:      l.ExpiryDate,
	}
	if !l.UpdatedAt.IsZero() {
		u := l.UpdatedAt
		resp.UpdatedAt = &u
	}
	return resp
}

func toPartyDTO(p *entity.Party) *dto.PartyDTO {
	if p == nil {
		return nil
	}
	return &dto.PartyDTO{Kind: string(p.Kind), ID: p.ID, Location: p.LocationKey()}
}
