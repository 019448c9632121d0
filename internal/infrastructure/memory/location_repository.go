package memory

import (
	"context"
	"math"
	"sort"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockLocationRepository = (*locationRepo)(nil)

// locationRepo con tx nil lee lo confirmado y escribe en autocommit.
type locationRepo struct {
	s  *Store
	tx *txState
}

func (r *locationRepo) Find(_ context.Context, productID, location string) (*entity.StockLocation, error) {
	k := rowKey{productID, location}
	if r.tx != nil {
		if row := r.tx.row(k); row != nil {
			return cloneLocation(row), nil
		}
		return nil, nil
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if row, ok := r.s.rows[k]; ok {
		return cloneLocation(row), nil
	}
	return nil, nil
}

// FindForUpdate dentro de una tx el bloqueo del almacén ya cubre la fila.
func (r *locationRepo) FindForUpdate(ctx context.Context, productID, location string) (*entity.StockLocation, error) {
	return r.Find(ctx, productID, location)
}

func (r *locationRepo) GetOrCreate(ctx context.Context, productID, location string, defaults entity.LocationDefaults) (*entity.StockLocation, bool, error) {
	if r.tx == nil {
		var (
			row     *entity.StockLocation
			created bool
		)
		err := r.s.atomic(ctx, func(tx *txState) error {
			var err error
			row, created, err = (&locationRepo{s: r.s, tx: tx}).GetOrCreate(ctx, productID, location, defaults)
			return err
		})
		return row, created, err
	}

	k := rowKey{productID, location}
	if row := r.tx.row(k); row != nil {
		return cloneLocation(row), false, nil
	}
	now := r.s.now().UTC()
	row := &entity.StockLocation{
		ProductID:       productID,
		Location:        location,
		BatchIdentifier: defaults.BatchIdentifier,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if defaults.UnitPrice != nil {
		p := *defaults.UnitPrice
		row.UnitPrice = &p
	}
	if defaults.ExpiryDate != nil {
		d := *defaults.ExpiryDate
		row.ExpiryDate = &d
	}
	r.tx.rows[k] = row
	return cloneLocation(row), true, nil
}

func (r *locationRepo) AdjustQuantity(ctx context.Context, productID, location string, delta int64) (*entity.StockLocation, error) {
	if r.tx == nil {
		var row *entity.StockLocation
		err := r.s.atomic(ctx, func(tx *txState) error {
			var err error
			row, err = (&locationRepo{s: r.s, tx: tx}).AdjustQuantity(ctx, productID, location, delta)
			return err
		})
		return row, err
	}

	row := r.tx.row(rowKey{productID, location})
	if row == nil {
		return nil, &domain.NotFoundError{Kind: "stock_location", ID: location}
	}
	if delta > 0 && row.Quantity > math.MaxInt64-delta {
		return nil, domain.NewValidationError("quantity", "el saldo resultante excede el máximo admitido")
	}
	if row.Quantity+delta < 0 {
		return nil, &domain.InsufficientStockError{
			ProductID: productID, Location: location, Available: row.Quantity, Requested: -delta,
		}
	}
	row.Quantity += delta
	row.UpdatedAt = r.s.now().UTC()
	return cloneLocation(row), nil
}

func (r *locationRepo) UpdateAttributes(ctx context.Context, loc *entity.StockLocation) error {
	if r.tx == nil {
		return r.s.atomic(ctx, func(tx *txState) error {
			return (&locationRepo{s: r.s, tx: tx}).UpdateAttributes(ctx, loc)
		})
	}
	row := r.tx.row(rowKey{loc.ProductID, loc.Location})
	if row == nil {
		return &domain.NotFoundError{Kind: "stock_location", ID: loc.Location}
	}
	row.UnitPrice = loc.UnitPrice
	row.BatchIdentifier = loc.BatchIdentifier
	row.ExpiryDate = loc.ExpiryDate
	row.UpdatedAt = r.s.now().UTC()
	return nil
}

func (r *locationRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockLocation, error) {
	r.s.mu.RLock()
	list := make([]*entity.StockLocation, 0)
	for k, row := range r.s.rows {
		if k.productID == productID {
			list = append(list, cloneLocation(row))
		}
	}
	r.s.mu.RUnlock()
	if r.tx != nil {
		for k, row := range r.tx.rows {
			if k.productID != productID {
				continue
			}
			replaced := false
			for i, c := range list {
				if c.Location == k.location {
					list[i] = cloneLocation(row)
					replaced = true
				}
			}
			if !replaced {
				list = append(list, cloneLocation(row))
			}
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Location < list[j].Location })
	return list, nil
}
