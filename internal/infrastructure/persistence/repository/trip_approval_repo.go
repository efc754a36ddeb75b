package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garyjia/rendicion/internal/application/port"
	"github.com/garyjia/rendicion/internal/domain/entity"
	"github.com/garyjia/rendicion/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// TripApprovalRepository implements port.TripApprovalRepository
type TripApprovalRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewTripApprovalRepository creates a new trip approval repository
func NewTripApprovalRepository(db *sqlite.DB, logger *zap.Logger) port.TripApprovalRepository {
	return &TripApprovalRepository{
		db:     db,
		logger: logger,
	}
}

// Save inserts the approval or replaces the one already recorded for the trip
func (r *TripApprovalRepository) Save(ctx context.Context, a *entity.TripApproval) error {
	query := `
		INSERT INTO trip_approvals (trip_number, approved_by, approved_at, total_amount)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(trip_number) DO UPDATE SET
			approved_by = excluded.approved_by,
			approved_at = excluded.approved_at,
			total_amount = excluded.total_amount
	`
	_, err := r.db.Executor(ctx).ExecContext(ctx, query, a.TripNumber, a.ApprovedBy, a.ApprovedAt, a.TotalAmount.String())
	if err != nil {
		r.logger.Error("Failed to save trip approval", zap.Int64("trip_number", a.TripNumber), zap.Error(err))
		return fmt.Errorf("failed to save trip approval: %w", err)
	}
	return nil
}

// GetByTrip retrieves the approval of a trip
func (r *TripApprovalRepository) GetByTrip(ctx context.Context, tripNumber int64) (*entity.TripApproval, error) {
	query := `SELECT trip_number, approved_by, approved_at, total_amount FROM trip_approvals WHERE trip_number = ?`

	var a entity.TripApproval
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, tripNumber).Scan(
		&a.TripNumber,
		&a.ApprovedBy,
		&a.ApprovedAt,
		&a.TotalAmount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get trip approval", zap.Int64("trip_number", tripNumber), zap.Error(err))
		return nil, fmt.Errorf("failed to get trip approval: %w", err)
	}
	return &a, nil
}

// List returns every approval ordered by trip number
func (r *TripApprovalRepository) List(ctx context.Context) ([]*entity.TripApproval, error) {
	query := `SELECT trip_number, approved_by, approved_at, total_amount FROM trip_approvals ORDER BY trip_number`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list trip approvals", zap.Error(err))
		return nil, fmt.Errorf("failed to list trip approvals: %w", err)
	}
	defer rows.Close()

	approvals := make([]*entity.TripApproval, 0)
	for rows.Next() {
		var a entity.TripApproval
		if err := rows.Scan(&a.TripNumber, &a.ApprovedBy, &a.ApprovedAt, &a.TotalAmount); err != nil {
			return nil, fmt.Errorf("failed to scan trip approval: %w", err)
		}
		approvals = append(approvals, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trip approvals: %w", err)
	}
	return approvals, nil
}

// Delete removes the approval of a trip
func (r *TripApprovalRepository) Delete(ctx context.Context, tripNumber int64) error {
	if _, err := r.db.Executor(ctx).ExecContext(ctx, `DELETE FROM trip_approvals WHERE trip_number = ?`, tripNumber); err != nil {
		r.logger.Error("Failed to delete trip approval", zap.Int64("trip_number", tripNumber), zap.Error(err))
		return fmt.Errorf("failed to delete trip approval: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ port.TripApprovalRepository = (*TripApprovalRepository)(nil)
