package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*movementRepo)(nil)

type movementRepo struct {
	s  *Store
	tx *txState
}

func (r *movementRepo) Append(ctx context.Context, movement *entity.StockMovement) error {
	if r.tx == nil {
		return r.s.atomic(ctx, func(tx *txState) error {
			return (&movementRepo{s: r.s, tx: tx}).Append(ctx, movement)
		})
	}
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = r.s.now().UTC()
	}
	r.s.mu.RLock()
	_, exists := r.s.byID[movement.ID]
	r.s.mu.RUnlock()
	for _, m := range r.tx.appended {
		if m.ID == movement.ID {
			exists = true
		}
	}
	if exists {
		return fmt.Errorf("append movement %s: %w", movement.ID, domain.ErrDuplicate)
	}
	r.tx.appended = append(r.tx.appended, cloneMovement(movement))
	return nil
}

func (r *movementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i, ok := r.s.byID[id]
	if !ok {
		return nil, nil
	}
	return cloneMovement(r.s.movements[i]), nil
}

func (r *movementRepo) ListByProduct(_ context.Context, productID string, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	return r.list(filter, func(m *entity.StockMovement) bool {
		return m.ProductID == productID
	}), nil
}

func (r *movementRepo) ListByLocation(_ context.Context, location string, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	return r.list(filter, func(m *entity.StockMovement) bool {
		return m.OriginKey() == location || m.DestinationKey() == location
	}), nil
}

// ListTouching en orden cronológico, archivados incluidos.
func (r *movementRepo) ListTouching(_ context.Context, productID, location string) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.StockMovement, 0)
	for _, m := range r.s.movements {
		if m.ProductID == productID && (m.OriginKey() == location || m.DestinationKey() == location) {
			list = append(list, cloneMovement(m))
		}
	}
	return list, nil
}

func (r *movementRepo) SoftDelete(ctx context.Context, id, userID string, at time.Time) error {
	if r.tx == nil {
		return r.s.atomic(ctx, func(tx *txState) error {
			return (&movementRepo{s: r.s, tx: tx}).SoftDelete(ctx, id, userID, at)
		})
	}
	r.s.mu.RLock()
	_, ok := r.s.byID[id]
	r.s.mu.RUnlock()
	if !ok {
		return &domain.NotFoundError{Kind: "movement", ID: id}
	}
	r.tx.deleted[id] = deletion{userID: userID, at: at}
	return nil
}

func (r *movementRepo) list(filter repository.MovementFilter, match func(*entity.StockMovement) bool) []*entity.StockMovement {
	r.s.mu.RLock()
	list := make([]*entity.StockMovement, 0)
	for _, m := range r.s.movements {
		if !match(m) {
			continue
		}
		if m.DeletedAt != nil && !filter.IncludeDeleted {
			continue
		}
		if filter.From != nil && m.MovementTimestamp.Before(*filter.From) {
			continue
		}
		if filter.To != nil && m.MovementTimestamp.After(*filter.To) {
			continue
		}
		list = append(list, cloneMovement(m))
	}
	r.s.mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].MovementTimestamp.After(list[j].MovementTimestamp)
	})
	if filter.Offset >= len(list) {
		return []*entity.StockMovement{}
	}
	list = list[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(list) {
		list = list[:filter.Limit]
	}
	return list
}
