package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/garyjia/rendicion/internal/application/port"
	"github.com/garyjia/rendicion/internal/domain/entity"
)

// ApprovalService manages trip approvals
type ApprovalService interface {
	Approve(ctx context.Context, tripNumber int64, approvedBy string) (*entity.TripApproval, error)
	Revoke(ctx context.Context, tripNumber int64) error
	List(ctx context.Context) ([]*entity.TripApproval, error)
}

type approvalServiceImpl struct {
	expenseRepo  port.TripExpenseRepository
	approvalRepo port.TripApprovalRepository
	txManager    port.TransactionManager
	notifier     port.Notifier
	logger       Logger
	now          func() time.Time
}

// NewApprovalService creates a new ApprovalService. notifier may be nil.
func NewApprovalService(
	expenseRepo port.TripExpenseRepository,
	approvalRepo port.TripApprovalRepository,
	txManager port.TransactionManager,
	notifier port.Notifier,
	logger Logger,
) ApprovalService {
	return &approvalServiceImpl{
		expenseRepo:  expenseRepo,
		approvalRepo: approvalRepo,
		txManager:    txManager,
		notifier:     notifier,
		logger:       logger,
		now:          time.Now,
	}
}

// Approve records the approval of a trip with the current expense total,
// replacing any earlier approval. A failed notification is logged only.
func (s *approvalServiceImpl) Approve(ctx context.Context, tripNumber int64, approvedBy string) (*entity.TripApproval, error) {
	approvedBy = strings.TrimSpace(approvedBy)
	if approvedBy == "" {
		approvedBy = entity.DefaultApprover
	}

	var approval *entity.TripApproval
	var count int
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		expenses, err := s.expenseRepo.ListByTrip(txCtx, tripNumber)
		if err != nil {
			return fmt.Errorf("failed to list expenses: %w", err)
		}
		if len(expenses) == 0 {
			return ErrTripHasNoExpenses
		}

		total := decimal.Zero
		for _, e := range expenses {
			total = total.Add(e.Amount)
		}
		approval = &entity.TripApproval{
			TripNumber:  tripNumber,
			ApprovedBy:  approvedBy,
			ApprovedAt:  s.now().UTC(),
			TotalAmount: total,
		}
		count = len(expenses)
		if err := s.approvalRepo.Save(txCtx, approval); err != nil {
			return fmt.Errorf("failed to save approval: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Trip approved",
		"trip_number", tripNumber,
		"approved_by", approvedBy,
		"total", approval.TotalAmount.String(),
		"expenses", count)

	if s.notifier != nil {
		if err := s.notifier.TripApproved(ctx, approval, count); err != nil {
			s.logger.Error("Failed to send approval notification", "trip_number", tripNumber, "error", err)
		}
	}
	return approval, nil
}

// Revoke deletes the approval of a trip
func (s *approvalServiceImpl) Revoke(ctx context.Context, tripNumber int64) error {
	existing, err := s.approvalRepo.GetByTrip(ctx, tripNumber)
	if err != nil {
		return fmt.Errorf("failed to get approval: %w", err)
	}
	if existing == nil {
		return ErrApprovalNotFound
	}
	if err := s.approvalRepo.Delete(ctx, tripNumber); err != nil {
		return fmt.Errorf("failed to delete approval: %w", err)
	}
	s.logger.Info("Trip approval revoked", "trip_number", tripNumber, "approved_by", existing.ApprovedBy)
	return nil
}

// List returns every approval
func (s *approvalServiceImpl) List(ctx context.Context) ([]*entity.TripApproval, error) {
	return s.approvalRepo.List(ctx)
}
