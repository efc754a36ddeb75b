// Package memory keeps trip expenses and approvals in process memory. It is
// used by tests and by the "memory" database driver.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/garyjia/rendicion/internal/application/port"
	"github.com/garyjia/rendicion/internal/domain/entity"
)

// TripExpenseRepository implements port.TripExpenseRepository
type TripExpenseRepository struct {
	mu       sync.RWMutex
	expenses map[string]*entity.TripExpense
}

// NewTripExpenseRepository creates an empty repository
func NewTripExpenseRepository() *TripExpenseRepository {
	return &TripExpenseRepository{expenses: make(map[string]*entity.TripExpense)}
}

func (r *TripExpenseRepository) Create(_ context.Context, e *entity.TripExpense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.expenses[e.ID] = &cp
	return nil
}

func (r *TripExpenseRepository) GetByID(_ context.Context, id string) (*entity.TripExpense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.expenses[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *TripExpenseRepository) List(_ context.Context) ([]*entity.TripExpense, error) {
	return r.filter(func(*entity.TripExpense) bool { return true }), nil
}

func (r *TripExpenseRepository) ListByTrip(_ context.Context, tripNumber int64) ([]*entity.TripExpense, error) {
	return r.filter(func(e *entity.TripExpense) bool { return e.TripNumber == tripNumber }), nil
}

func (r *TripExpenseRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.expenses, id)
	return nil
}

// filter returns copies of the matching expenses ordered like the SQLite
// repository: creation time, then ID.
func (r *TripExpenseRepository) filter(keep func(*entity.TripExpense) bool) []*entity.TripExpense {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.TripExpense, 0, len(r.expenses))
	for _, e := range r.expenses {
		if keep(e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// TripApprovalRepository implements port.TripApprovalRepository
type TripApprovalRepository struct {
	mu        sync.RWMutex
	approvals map[int64]*entity.TripApproval
}

// NewTripApprovalRepository creates an empty repository
func NewTripApprovalRepository() *TripApprovalRepository {
	return &TripApprovalRepository{approvals: make(map[int64]*entity.TripApproval)}
}

func (r *TripApprovalRepository) Save(_ context.Context, a *entity.TripApproval) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.approvals[a.TripNumber] = &cp
	return nil
}

func (r *TripApprovalRepository) GetByTrip(_ context.Context, tripNumber int64) (*entity.TripApproval, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.approvals[tripNumber]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *TripApprovalRepository) List(_ context.Context) ([]*entity.TripApproval, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.TripApproval, 0, len(r.approvals))
	for _, a := range r.approvals {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TripNumber < out[j].TripNumber })
	return out, nil
}

func (r *TripApprovalRepository) Delete(_ context.Context, tripNumber int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.approvals, tripNumber)
	return nil
}

// TransactionManager runs fn directly; the memory store has no rollback
type TransactionManager struct{}

func (TransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var (
	_ port.TripExpenseRepository  = (*TripExpenseRepository)(nil)
	_ port.TripApprovalRepository = (*TripApprovalRepository)(nil)
	_ port.TransactionManager     = TransactionManager{}
)
