package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/rendicion/internal/application/port"
	"github.com/garyjia/rendicion/internal/domain/entity"
	"github.com/garyjia/rendicion/internal/domain/receipt"
)

// Sheet layout
const (
	sheetName = "Rendicion"

	cellTitle      = "A1"
	cellStatus     = "B2"
	cellApprover   = "B3"
	cellApprovedAt = "B4"

	headerRow  = 6
	dataRowMin = 7

	statusApproved = "Aprobado"
	statusPending  = "Pendiente"
)

var columns = []struct {
	title string
	width float64
}{
	{"Fecha", 12},
	{"País", 8},
	{"Tipo", 14},
	{"Concepto", 12},
	{"Descripción", 40},
	{"Proveedor", 30},
	{"Formalidad", 12},
	{"Paso", 6},
	{"Importe", 14},
}

// XLSXWriter implements port.ReportWriter with excelize
type XLSXWriter struct {
	logger *zap.Logger
}

var _ port.ReportWriter = (*XLSXWriter)(nil)

// NewXLSXWriter creates a new XLSXWriter
func NewXLSXWriter(logger *zap.Logger) *XLSXWriter {
	return &XLSXWriter{logger: logger}
}

// WriteTripReport writes the workbook for one trip to w
func (x *XLSXWriter) WriteTripReport(w io.Writer, summary *entity.TripSummary) error {
	if summary == nil {
		return fmt.Errorf("summary cannot be nil")
	}

	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	styles, err := newStyles(file)
	if err != nil {
		return err
	}

	if err := x.fillHeader(file, styles, summary); err != nil {
		return fmt.Errorf("failed to fill header: %w", err)
	}

	next, err := x.fillExpenseRows(file, styles, summary.Expenses)
	if err != nil {
		return fmt.Errorf("failed to fill expenses: %w", err)
	}

	if err := x.fillTotals(file, styles, summary, next+1); err != nil {
		return fmt.Errorf("failed to fill totals: %w", err)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	x.logger.Debug("Trip report written",
		zap.Int64("trip_number", summary.TripNumber),
		zap.Int("rows", len(summary.Expenses)))
	return nil
}

type styles struct {
	bold   int
	amount int
	total  int
}

func newStyles(file *excelize.File) (styles, error) {
	var s styles
	var err error
	if s.bold, err = file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return s, fmt.Errorf("failed to create style: %w", err)
	}
	if s.amount, err = file.NewStyle(&excelize.Style{NumFmt: 4}); err != nil {
		return s, fmt.Errorf("failed to create style: %w", err)
	}
	if s.total, err = file.NewStyle(&excelize.Style{NumFmt: 4, Font: &excelize.Font{Bold: true}}); err != nil {
		return s, fmt.Errorf("failed to create style: %w", err)
	}
	return s, nil
}

func (x *XLSXWriter) fillHeader(file *excelize.File, st styles, summary *entity.TripSummary) error {
	status, approver, approvedAt := statusPending, "", ""
	if summary.Approved() {
		status = statusApproved
		approver = summary.Approval.ApprovedBy
		approvedAt = summary.Approval.ApprovedAt.Format("2006-01-02 15:04")
	}

	cells := []struct {
		cell  string
		value interface{}
	}{
		{cellTitle, fmt.Sprintf("Rendición de gastos - Viaje %d", summary.TripNumber)},
		{"A2", "Estado"},
		{cellStatus, status},
		{"A3", "Aprobado por"},
		{cellApprover, approver},
		{"A4", "Fecha aprobación"},
		{cellApprovedAt, approvedAt},
	}
	for _, c := range cells {
		if err := file.SetCellValue(sheetName, c.cell, c.value); err != nil {
			return err
		}
	}
	if err := file.SetCellStyle(sheetName, cellTitle, cellTitle, st.bold); err != nil {
		return err
	}

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(sheetName, cell, col.title); err != nil {
			return err
		}
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := file.SetColWidth(sheetName, name, name, col.width); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), headerRow)
	return file.SetCellStyle(sheetName, fmt.Sprintf("A%d", headerRow), last, st.bold)
}

// fillExpenseRows writes one row per expense and returns the next free row
func (x *XLSXWriter) fillExpenseRows(file *excelize.File, st styles, expenses []*entity.TripExpense) (int, error) {
	row := dataRowMin
	for _, e := range expenses {
		concept := ""
		if e.TypeCode != "" {
			concept = e.TypeCode + "/" + e.ArticleCode
		}
		values := []interface{}{
			e.Date, e.Country, e.ExpenseType, concept, e.Description, e.Provider, e.Formality, e.Step,
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := file.SetSheetRow(sheetName, cell, &values); err != nil {
			return row, err
		}
		if err := x.setAmount(file, len(columns), row, e.Amount, st.amount); err != nil {
			return row, err
		}
		row++
	}
	return row, nil
}

func (x *XLSXWriter) fillTotals(file *excelize.File, st styles, summary *entity.TripSummary, row int) error {
	labelCol := len(columns) - 1
	for _, country := range sortedCountries(summary.ByCountry) {
		cell, _ := excelize.CoordinatesToCellName(labelCol, row)
		if err := file.SetCellValue(sheetName, cell, "Total "+country); err != nil {
			return err
		}
		if err := x.setAmount(file, len(columns), row, summary.ByCountry[country], st.amount); err != nil {
			return err
		}
		row++
	}

	cell, _ := excelize.CoordinatesToCellName(labelCol, row)
	if err := file.SetCellValue(sheetName, cell, "TOTAL"); err != nil {
		return err
	}
	if err := file.SetCellStyle(sheetName, cell, cell, st.bold); err != nil {
		return err
	}
	return x.setAmount(file, len(columns), row, summary.Total, st.total)
}

func (x *XLSXWriter) setAmount(file *excelize.File, col, row int, amount decimal.Decimal, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := file.SetCellFloat(sheetName, cell, amount.InexactFloat64(), 2, 64); err != nil {
		return err
	}
	return file.SetCellStyle(sheetName, cell, cell, style)
}

// sortedCountries lists supported countries first, in their usual order
func sortedCountries(totals map[string]decimal.Decimal) []string {
	rank := make(map[string]int, len(receipt.Countries))
	for i, c := range receipt.Countries {
		rank[string(c)] = i
	}
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, okI := rank[keys[i]]
		rj, okJ := rank[keys[j]]
		switch {
		case okI && okJ:
			return ri < rj
		case okI != okJ:
			return okI
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}
