package service

import (
	"context"
	"fmt"
	"io"

	"github.com/garyjia/rendicion/internal/application/port"
)

// ExportService renders trip reports
type ExportService interface {
	ExportTrip(ctx context.Context, tripNumber int64, w io.Writer) error
}

type exportServiceImpl struct {
	expenses ExpenseService
	writer   port.ReportWriter
	logger   Logger
}

// NewExportService creates a new ExportService
func NewExportService(expenses ExpenseService, writer port.ReportWriter, logger Logger) ExportService {
	return &exportServiceImpl{expenses: expenses, writer: writer, logger: logger}
}

// ExportTrip writes the spreadsheet report of one trip to w
func (s *exportServiceImpl) ExportTrip(ctx context.Context, tripNumber int64, w io.Writer) error {
	summary, err := s.expenses.TripSummary(ctx, tripNumber)
	if err != nil {
		return err
	}
	if err := s.writer.WriteTripReport(w, summary); err != nil {
		s.logger.Error("Failed to write trip report", "trip_number", tripNumber, "error", err)
		return fmt.Errorf("failed to write trip report: %w", err)
	}
	s.logger.Info("Trip report exported", "trip_number", tripNumber, "expenses", summary.Count)
	return nil
}
