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

// TripExpenseRepository implements port.TripExpenseRepository
type TripExpenseRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewTripExpenseRepository creates a new trip expense repository
func NewTripExpenseRepository(db *sqlite.DB, logger *zap.Logger) port.TripExpenseRepository {
	return &TripExpenseRepository{
		db:     db,
		logger: logger,
	}
}

const expenseColumns = `
	id, trip_number, expense_date, country, expense_type, amount,
	description, driver, tractor_plate, type_code, article_code,
	formality, provider, step, receipt_path, created_at`

// Create inserts a new trip expense
func (r *TripExpenseRepository) Create(ctx context.Context, e *entity.TripExpense) error {
	query := `INSERT INTO trip_expenses (` + expenseColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		e.ID,
		e.TripNumber,
		e.Date,
		e.Country,
		e.ExpenseType,
		e.Amount.String(),
		e.Description,
		e.Driver,
		e.TractorPlate,
		e.TypeCode,
		e.ArticleCode,
		e.Formality,
		e.Provider,
		e.Step,
		e.ReceiptPath,
		e.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create trip expense", zap.String("id", e.ID), zap.Error(err))
		return fmt.Errorf("failed to create trip expense: %w", err)
	}
	return nil
}

// GetByID retrieves a trip expense by ID
func (r *TripExpenseRepository) GetByID(ctx context.Context, id string) (*entity.TripExpense, error) {
	query := `SELECT ` + expenseColumns + ` FROM trip_expenses WHERE id = ?`

	e, err := scanExpense(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get trip expense", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get trip expense: %w", err)
	}
	return e, nil
}

// List returns every expense, oldest first
func (r *TripExpenseRepository) List(ctx context.Context) ([]*entity.TripExpense, error) {
	query := `SELECT ` + expenseColumns + ` FROM trip_expenses ORDER BY created_at, id`
	return r.query(ctx, query)
}

// ListByTrip returns the expenses of one trip, oldest first
func (r *TripExpenseRepository) ListByTrip(ctx context.Context, tripNumber int64) ([]*entity.TripExpense, error) {
	query := `SELECT ` + expenseColumns + ` FROM trip_expenses WHERE trip_number = ? ORDER BY created_at, id`
	return r.query(ctx, query, tripNumber)
}

// Delete removes a trip expense. Deleting a missing row is not an error.
func (r *TripExpenseRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Executor(ctx).ExecContext(ctx, `DELETE FROM trip_expenses WHERE id = ?`, id); err != nil {
		r.logger.Error("Failed to delete trip expense", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete trip expense: %w", err)
	}
	return nil
}

func (r *TripExpenseRepository) query(ctx context.Context, query string, args ...interface{}) ([]*entity.TripExpense, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list trip expenses", zap.Error(err))
		return nil, fmt.Errorf("failed to list trip expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]*entity.TripExpense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trip expenses: %w", err)
	}
	return expenses, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanExpense(row rowScanner) (*entity.TripExpense, error) {
	var e entity.TripExpense
	err := row.Scan(
		&e.ID,
		&e.TripNumber,
		&e.Date,
		&e.Country,
		&e.ExpenseType,
		&e.Amount,
		&e.Description,
		&e.Driver,
		&e.TractorPlate,
		&e.TypeCode,
		&e.ArticleCode,
		&e.Formality,
		&e.Provider,
		&e.Step,
		&e.ReceiptPath,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Verify interface compliance
var _ port.TripExpenseRepository = (*TripExpenseRepository)(nil)
