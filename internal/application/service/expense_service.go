package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/garyjia/rendicion/internal/application/port"
	"github.com/garyjia/rendicion/internal/domain/entity"
	"github.com/garyjia/rendicion/internal/domain/receipt"
)

// CreateExpenseInput carries the fields a driver submits for one expense
type CreateExpenseInput struct {
	TripNumber   int64
	Date         string
	Country      string
	ExpenseType  string
	Amount       decimal.Decimal
	Description  string
	Driver       string
	TractorPlate string
	TypeCode     string
	ArticleCode  string
	Formality    string
	Provider     string
	ReceiptPath  string
}

// ExpenseService manages trip expenses
type ExpenseService interface {
	Create(ctx context.Context, in CreateExpenseInput) (*entity.TripExpense, error)
	List(ctx context.Context) ([]*entity.TripExpense, error)
	ListByTrip(ctx context.Context, tripNumber int64) ([]*entity.TripExpense, error)
	Delete(ctx context.Context, id string) error
	SummaryByTrip(ctx context.Context) ([]*entity.TripSummary, error)
	TripSummary(ctx context.Context, tripNumber int64) (*entity.TripSummary, error)
}

type expenseServiceImpl struct {
	expenseRepo  port.TripExpenseRepository
	approvalRepo port.TripApprovalRepository
	catalog      port.CatalogProvider
	logger       Logger
	now          func() time.Time
	newID        func() string
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	expenseRepo port.TripExpenseRepository,
	approvalRepo port.TripApprovalRepository,
	catalog port.CatalogProvider,
	logger Logger,
) ExpenseService {
	return &expenseServiceImpl{
		expenseRepo:  expenseRepo,
		approvalRepo: approvalRepo,
		catalog:      catalog,
		logger:       logger,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// Create validates and stores an expense. The accounting step is always
// computed here, whatever the client showed.
func (s *expenseServiceImpl) Create(ctx context.Context, in CreateExpenseInput) (*entity.TripExpense, error) {
	e, err := s.validate(in)
	if err != nil {
		return nil, err
	}
	e.ID = s.newID()
	e.CreatedAt = s.now().UTC()

	if err := s.expenseRepo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	s.logger.Info("Trip expense created",
		"id", e.ID,
		"trip_number", e.TripNumber,
		"amount", e.Amount.String(),
		"country", e.Country,
		"step", e.Step,
		"driver", e.Driver)
	return e, nil
}

func (s *expenseServiceImpl) validate(in CreateExpenseInput) (*entity.TripExpense, error) {
	if in.TripNumber <= 0 {
		return nil, fmt.Errorf("%w: nroViaje es obligatorio", ErrInvalidExpense)
	}
	date := receipt.NormalizeDate(in.Date)
	if date == "" {
		return nil, fmt.Errorf("%w: fecha inválida %q", ErrInvalidExpense, in.Date)
	}
	country, ok := receipt.ParseCountry(in.Country)
	if !ok {
		return nil, fmt.Errorf("%w: país inválido %q", ErrInvalidExpense, in.Country)
	}
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: el importe debe ser mayor a cero", ErrInvalidExpense)
	}

	expenseType := strings.ToUpper(strings.TrimSpace(in.ExpenseType))
	if expenseType == "" {
		expenseType = entity.DefaultExpenseType
	}
	if !entity.IsValidExpenseType(expenseType) {
		return nil, fmt.Errorf("%w: tipo de gasto desconocido %q", ErrInvalidExpense, in.ExpenseType)
	}

	e := &entity.TripExpense{
		TripNumber:   in.TripNumber,
		Date:         date,
		Country:      string(country),
		ExpenseType:  expenseType,
		Amount:       in.Amount,
		Description:  strings.TrimSpace(in.Description),
		Driver:       strings.TrimSpace(in.Driver),
		TractorPlate: strings.ToUpper(strings.TrimSpace(in.TractorPlate)),
		Provider:     strings.TrimSpace(in.Provider),
		ReceiptPath:  in.ReceiptPath,
		Step:         int(receipt.ClassifyStep(country, in.Amount)),
	}

	if in.TypeCode != "" || in.ArticleCode != "" {
		concept := receipt.NormalizeConcept(in.TypeCode, in.ArticleCode)
		if concept.IsObsolete() {
			return nil, fmt.Errorf("%w: el concepto %s está dado de baja", ErrInvalidExpense, concept)
		}
		if !s.catalog.Catalog().Contains(concept) {
			return nil, fmt.Errorf("%w: concepto desconocido %s", ErrInvalidExpense, concept)
		}
		e.TypeCode, e.ArticleCode = concept.TypeCode, concept.ArticleCode
	}

	if f := strings.ToUpper(strings.TrimSpace(in.Formality)); f != "" {
		if f != string(receipt.FormalityFormal) && f != string(receipt.FormalityInformal) {
			return nil, fmt.Errorf("%w: formalidad inválida %q", ErrInvalidExpense, in.Formality)
		}
		e.Formality = f
	}
	return e, nil
}

// List returns every expense
func (s *expenseServiceImpl) List(ctx context.Context) ([]*entity.TripExpense, error) {
	return s.expenseRepo.List(ctx)
}

// ListByTrip returns the expenses of one trip
func (s *expenseServiceImpl) ListByTrip(ctx context.Context, tripNumber int64) ([]*entity.TripExpense, error) {
	return s.expenseRepo.ListByTrip(ctx, tripNumber)
}

// Delete removes an expense by ID
func (s *expenseServiceImpl) Delete(ctx context.Context, id string) error {
	existing, err := s.expenseRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get expense: %w", err)
	}
	if existing == nil {
		return ErrExpenseNotFound
	}
	if err := s.expenseRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	s.logger.Info("Trip expense deleted", "id", id, "trip_number", existing.TripNumber, "amount", existing.Amount.String())
	return nil
}

// SummaryByTrip groups every expense by trip, ordered by trip number
func (s *expenseServiceImpl) SummaryByTrip(ctx context.Context) ([]*entity.TripSummary, error) {
	expenses, err := s.expenseRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	approvals, err := s.approvalRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list approvals: %w", err)
	}
	byTrip := make(map[int64]*entity.TripApproval, len(approvals))
	for _, a := range approvals {
		byTrip[a.TripNumber] = a
	}

	grouped := make(map[int64][]*entity.TripExpense)
	for _, e := range expenses {
		grouped[e.TripNumber] = append(grouped[e.TripNumber], e)
	}

	summaries := make([]*entity.TripSummary, 0, len(grouped))
	for trip, list := range grouped {
		summaries = append(summaries, Summarize(trip, list, byTrip[trip]))
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].TripNumber < summaries[j].TripNumber })
	return summaries, nil
}

// TripSummary summarizes one trip. It fails with ErrTripHasNoExpenses when
// nothing was reported for the trip.
func (s *expenseServiceImpl) TripSummary(ctx context.Context, tripNumber int64) (*entity.TripSummary, error) {
	expenses, err := s.expenseRepo.ListByTrip(ctx, tripNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	if len(expenses) == 0 {
		return nil, ErrTripHasNoExpenses
	}
	approval, err := s.approvalRepo.GetByTrip(ctx, tripNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get approval: %w", err)
	}
	return Summarize(tripNumber, expenses, approval), nil
}

// Summarize totals a trip's expenses overall and per country
func Summarize(tripNumber int64, expenses []*entity.TripExpense, approval *entity.TripApproval) *entity.TripSummary {
	summary := &entity.TripSummary{
		TripNumber: tripNumber,
		Count:      len(expenses),
		Total:      decimal.Zero,
		ByCountry:  make(map[string]decimal.Decimal),
		Expenses:   expenses,
		Approval:   approval,
	}
	for _, e := range expenses {
		summary.Total = summary.Total.Add(e.Amount)
		summary.ByCountry[e.Country] = summary.ByCountry[e.Country].Add(e.Amount)
	}
	return summary
}
