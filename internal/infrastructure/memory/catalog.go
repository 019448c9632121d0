package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.CatalogRepository = (*Catalog)(nil)

// Catalog registro en memoria de productos y partes externas.
type Catalog struct {
	open bool

	mu       sync.RWMutex
	products map[string]struct{}
	parties  map[entity.PartyKind]map[string]struct{}
}

func newCatalog(open bool) *Catalog {
	return &Catalog{
		open:     open,
		products: make(map[string]struct{}),
		parties: map[entity.PartyKind]map[string]struct{}{
			entity.PartySupplier: {},
			entity.PartyUser:     {},
			entity.PartyClient:   {},
		},
	}
}

// AddProducts registra productos.
func (c *Catalog) AddProducts(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		c.products[id] = struct{}{}
	}
}

// AddParties registra partes de un tipo (supplier, user, client).
func (c *Catalog) AddParties(kind entity.PartyKind, ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.parties[kind]
	if !ok {
		set = make(map[string]struct{})
		c.parties[kind] = set
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
}

func (c *Catalog) ProductExists(_ context.Context, productID string) (bool, error) {
	return c.has(c.products, productID), nil
}

func (c *Catalog) SupplierExists(_ context.Context, supplierID string) (bool, error) {
	return c.hasParty(entity.PartySupplier, supplierID), nil
}

func (c *Catalog) UserExists(_ context.Context, userID string) (bool, error) {
	return c.hasParty(entity.PartyUser, userID), nil
}

func (c *Catalog) ClientExists(_ context.Context, clientID string) (bool, error) {
	return c.hasParty(entity.PartyClient, clientID), nil
}

func (c *Catalog) hasParty(kind entity.PartyKind, id string) bool {
	c.mu.RLock()
	set := c.parties[kind]
	c.mu.RUnlock()
	return c.has(set, id)
}

func (c *Catalog) has(set map[string]struct{}, id string) bool {
	if id == "" {
		return false
	}
	if c.open {
		return true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := set[id]
	return ok
}
