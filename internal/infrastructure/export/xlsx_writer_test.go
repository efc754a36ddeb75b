package export

import (
	"bytes"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/rendicion/internal/domain/entity"
)

func cellFloat(t *testing.T, f *excelize.File, cell string) float64 {
	t.Helper()
	raw, err := f.GetCellValue(sheetName, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	v, err := strconv.ParseFloat(raw, 64)
	require.NoError(t, err, cell)
	return v
}

func cellText(t *testing.T, f *excelize.File, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheetName, cell)
	require.NoError(t, err)
	return v
}

func TestXLSXWriter_WriteTripReport(t *testing.T) {
	summary := &entity.TripSummary{
		TripNumber: 4521,
		Count:      3,
		Total:      decimal.RequireFromString("61234.50"),
		ByCountry: map[string]decimal.Decimal{
			"CHL": decimal.RequireFromString("15000"),
			"ARG": decimal.RequireFromString("46234.50"),
		},
		Expenses: []*entity.TripExpense{
			{Date: "2024-03-05", Country: "ARG", ExpenseType: "PEAJE", TypeCode: "TARIFA", ArticleCode: "5", Description: "Peaje Argentino - AUTOPISTAS DEL SOL S.A.", Provider: "AUTOPISTAS DEL SOL S.A.", Formality: "FORMAL", Step: 1, Amount: decimal.RequireFromString("1234.50")},
			{Date: "2024-03-05", Country: "ARG", ExpenseType: "COMBUSTIBLE", Step: 1, Amount: decimal.RequireFromString("45000")},
			{Date: "2024-03-06", Country: "CHL", ExpenseType: "PEAJE", TypeCode: "TARIFA", ArticleCode: "4", Formality: "FORMAL", Step: 2, Amount: decimal.RequireFromString("15000")},
		},
		Approval: &entity.TripApproval{
			TripNumber: 4521,
			ApprovedBy: "Administrador",
			ApprovedAt: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewXLSXWriter(zap.NewNop()).WriteTripReport(&buf, summary))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "Rendición de gastos - Viaje 4521", cellText(t, f, cellTitle))
	assert.Equal(t, statusApproved, cellText(t, f, cellStatus))
	assert.Equal(t, "Administrador", cellText(t, f, cellApprover))
	assert.Equal(t, "2024-03-10 09:00", cellText(t, f, cellApprovedAt))

	assert.Equal(t, "Fecha", cellText(t, f, "A6"))
	assert.Equal(t, "Importe", cellText(t, f, "I6"))

	assert.Equal(t, "2024-03-05", cellText(t, f, "A7"))
	assert.Equal(t, "TARIFA/5", cellText(t, f, "D7"))
	assert.Equal(t, "AUTOPISTAS DEL SOL S.A.", cellText(t, f, "F7"))
	assert.Equal(t, "1", cellText(t, f, "H7"))
	assert.InDelta(t, 1234.5, cellFloat(t, f, "I7"), 0.001)
	assert.Equal(t, "", cellText(t, f, "D8"))
	assert.Equal(t, "CHL", cellText(t, f, "B9"))

	// blank row 10, then per-country totals and the grand total
	assert.Equal(t, "Total ARG", cellText(t, f, "H11"))
	assert.InDelta(t, 46234.5, cellFloat(t, f, "I11"), 0.001)
	assert.Equal(t, "Total CHL", cellText(t, f, "H12"))
	assert.Equal(t, "TOTAL", cellText(t, f, "H13"))
	assert.InDelta(t, 61234.5, cellFloat(t, f, "I13"), 0.001)
}

func TestXLSXWriter_PendingTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewXLSXWriter(zap.NewNop()).WriteTripReport(&buf, &entity.TripSummary{TripNumber: 7}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, statusPending, cellText(t, f, cellStatus))
	assert.Equal(t, "TOTAL", cellText(t, f, "H8"))
	assert.InDelta(t, 0, cellFloat(t, f, "I8"), 0.001)
}

func TestSortedCountries(t *testing.T) {
	got := sortedCountries(map[string]decimal.Decimal{"URY": {}, "BRA": {}, "ARG": {}, "": {}})
	assert.Equal(t, []string{"ARG", "URY", "", "BRA"}, got)
}

func TestXLSXWriter_NilSummary(t *testing.T) {
	assert.Error(t, NewXLSXWriter(zap.NewNop()).WriteTripReport(&bytes.Buffer{}, nil))
}
