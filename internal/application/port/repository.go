package port

import (
	"context"

	"github.com/garyjia/rendicion/internal/domain/entity"
)

// TripExpenseRepository defines persistence operations for TripExpense
type TripExpenseRepository interface {
	Create(ctx context.Context, expense *entity.TripExpense) error
	GetByID(ctx context.Context, id string) (*entity.TripExpense, error)
	List(ctx context.Context) ([]*entity.TripExpense, error)
	ListByTrip(ctx context.Context, tripNumber int64) ([]*entity.TripExpense, error)
	Delete(ctx context.Context, id string) error
}

// TripApprovalRepository defines persistence operations for TripApproval.
// Save replaces any approval already recorded for the same trip.
type TripApprovalRepository interface {
	Save(ctx context.Context, approval *entity.TripApproval) error
	GetByTrip(ctx context.Context, tripNumber int64) (*entity.TripApproval, error)
	List(ctx context.Context) ([]*entity.TripApproval, error)
	Delete(ctx context.Context, tripNumber int64) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
