// Package memory almacén en proceso para desarrollo y pruebas (STOCK_STORE=memory).
// Ejecuta las unidades atómicas de forma serializable: un único bloqueo exclusivo
// por almacén, adquirido con tiempo máximo, y escrituras preparadas que solo se
// aplican en el commit.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

// DefaultLockTimeout tiempo máximo de espera del bloqueo si no se configura otro.
const DefaultLockTimeout = 3 * time.Second

var errLockTimeout = errors.New("tiempo de espera del bloqueo agotado")

type rowKey struct {
	productID string
	location  string
}

// Options configuración del almacén.
type Options struct {
	LockTimeout time.Duration
	// OpenCatalog hace que toda parte o producto con id no vacío exista.
	// Útil cuando no hay catálogo externo (desarrollo local).
	OpenCatalog bool
}

// Store saldos, libro y catálogo en memoria.
type Store struct {
	sem         chan struct{}
	lockTimeout time.Duration
	now         func() time.Time

	mu        sync.RWMutex
	rows      map[rowKey]*entity.StockLocation
	movements []*entity.StockMovement
	byID      map[string]int

	catalog *Catalog
}

// NewStore crea un almacén vacío.
func NewStore(opts Options) *Store {
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = DefaultLockTimeout
	}
	return &Store{
		sem:         make(chan struct{}, 1),
		lockTimeout: opts.LockTimeout,
		now:         time.Now,
		rows:        make(map[rowKey]*entity.StockLocation),
		byID:        make(map[string]int),
		catalog:     newCatalog(opts.OpenCatalog),
	}
}

// Catalog catálogo de productos y partes del almacén.
func (s *Store) Catalog() *Catalog { return s.catalog }

// Locations repositorio de saldos fuera de transacción (autocommit en escrituras).
func (s *Store) Locations() repository.StockLocationRepository {
	return &locationRepo{s: s}
}

// Movements repositorio del libro fuera de transacción (autocommit en escrituras).
func (s *Store) Movements() repository.StockMovementRepository {
	return &movementRepo{s: s}
}

// Run ejecuta fn como unidad atómica. Si fn devuelve error nada de lo preparado se aplica.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	locRepo repository.StockLocationRepository,
) error) error {
	return s.atomic(ctx, func(tx *txState) error {
		return fn(&movementRepo{s: s, tx: tx}, &locationRepo{s: s, tx: tx})
	})
}

func (s *Store) atomic(ctx context.Context, fn func(tx *txState) error) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer func() { <-s.sem }()

	tx := &txState{
		s:       s,
		rows:    make(map[rowKey]*entity.StockLocation),
		deleted: make(map[string]deletion),
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *Store) acquire(ctx context.Context) error {
	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-timer.C:
		return &domain.ConcurrencyConflictError{Op: "adquirir bloqueo del almacén", Err: errLockTimeout}
	case <-ctx.Done():
		return ctx.Err()
	}
}

type deletion struct {
	userID string
	at     time.Time
}

// txState escrituras preparadas de una unidad atómica.
type txState struct {
	s        *Store
	rows     map[rowKey]*entity.StockLocation
	appended []*entity.StockMovement
	deleted  map[string]deletion
}

// row devuelve la versión vigente dentro de la tx (preparada o confirmada).
func (t *txState) row(k rowKey) *entity.StockLocation {
	if r, ok := t.rows[k]; ok {
		return r
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	if r, ok := t.s.rows[k]; ok {
		c := cloneLocation(r)
		t.rows[k] = c
		return c
	}
	return nil
}

func (t *txState) commit() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for k, r := range t.rows {
		t.s.rows[k] = r
	}
	for _, m := range t.appended {
		t.s.byID[m.ID] = len(t.s.movements)
		t.s.movements = append(t.s.movements, m)
	}
	for id, d := range t.deleted {
		if i, ok := t.s.byID[id]; ok {
			at := d.at
			m := cloneMovement(t.s.movements[i])
			m.DeletedAt = &at
			m.DeletedBy = d.userID
			t.s.movements[i] = m
		}
	}
}

func cloneLocation(r *entity.StockLocation) *entity.StockLocation {
	c := *r
	return &c
}

func cloneMovement(m *entity.StockMovement) *entity.StockMovement {
	c := *m
	return &c
}
