package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func loc(id string) *entity.Party { return &entity.Party{Kind: entity.PartyLocation, ID: id} }

func TestSignedQuantity_PorTipo(t *testing.T) {
	entry := &entity.StockMovement{Kind: entity.MovementEntry, Quantity: 50, Destination: loc("Shelf-A")}
	exit := &entity.StockMovement{Kind: entity.MovementExit, Quantity: 5, Origin: loc("Shelf-A")}
	transfer := &entity.StockMovement{Kind: entity.MovementTransfer, Quantity: 30, Origin: loc("Shelf-A"), Destination: loc("Shelf-B")}

	assert.Equal(t, int64(50), inventory.SignedQuantity(entry, "Shelf-A"))
	assert.Equal(t, int64(0), inventory.SignedQuantity(entry, "Shelf-B"))
	assert.Equal(t, int64(-5), inventory.SignedQuantity(exit, "Shelf-A"))
	assert.Equal(t, int64(-30), inventory.SignedQuantity(transfer, "Shelf-A"))
	assert.Equal(t, int64(30), inventory.SignedQuantity(transfer, "Shelf-B"))
}

func TestDeriveBalance_IncluyeArchivados(t *testing.T) {
	movs := []*entity.StockMovement{
		{ProductID: "P", Kind: entity.MovementEntry, Quantity: 50, Destination: loc("Shelf-A")},
		{ProductID: "P", Kind: entity.MovementTransfer, Quantity: 30, Origin: loc("Shelf-A"), Destination: loc("Shelf-B")},
		{ProductID: "Q", Kind: entity.MovementEntry, Quantity: 99, Destination: loc("Shelf-A")},
	}
	archived := &entity.StockMovement{ProductID: "P", Kind: entity.MovementExit, Quantity: 5, Origin: loc("Shelf-A")}
	archived.DeletedBy = "auditor"
	movs = append(movs, archived)

	assert.Equal(t, int64(15), inventory.DeriveBalance(movs, "P", "Shelf-A"))
	assert.Equal(t, int64(30), inventory.DeriveBalance(movs, "P", "Shelf-B"))
}

func TestDeriveBalance_PartesExternas(t *testing.T) {
	supplier := &entity.Party{Kind: entity.PartySupplier, ID: "S1"}
	movs := []*entity.StockMovement{
		{ProductID: "P", Kind: entity.MovementTransfer, Quantity: 4, Origin: loc("Shelf-A"), Destination: supplier},
	}
	assert.Equal(t, int64(4), inventory.DeriveBalance(movs, "P", "supplier:S1"))
}
