package inventory

import "github.com/jhoicas/stock-ledger/internal/domain/entity"

// SignedQuantity efecto de un movimiento sobre la ubicación indicada:
// entrada +, salida -, traslado saliente -, traslado entrante +. 0 si no la toca.
func SignedQuantity(m *entity.StockMovement, location string) int64 {
	switch m.Kind {
	case entity.MovementEntry:
		if m.DestinationKey() == location {
			return m.Quantity
		}
	case entity.MovementExit:
		if m.OriginKey() == location {
			return -m.Quantity
		}
	case entity.MovementTransfer:
		var delta int64
		if m.OriginKey() == location {
			delta -= m.Quantity
		}
		if m.DestinationKey() == location {
			delta += m.Quantity
		}
		return delta
	}
	return 0
}

// DeriveBalance reconstruye el saldo de (producto, ubicación) sumando el libro.
// Incluye los movimientos archivados: el archivo no revierte saldos.
func DeriveBalance(movements []*entity.StockMovement, productID, location string) int64 {
	var balance int64
	for _, m := range movements {
		if m.ProductID != productID {
			continue
		}
		balance += SignedQuantity(m, location)
	}
	return balance
}
