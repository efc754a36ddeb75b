package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TripExpense represents one expense a driver reported for a trip
type TripExpense struct {
	ID           string          `json:"id"`
	TripNumber   int64           `json:"nroViaje"`
	Date         string          `json:"fecha"`
	Country      string          `json:"pais"`
	ExpenseType  string          `json:"tipo"`
	Amount       decimal.Decimal `json:"importe"`
	Description  string          `json:"descripcion,omitempty"`
	Driver       string          `json:"chofer"`
	TractorPlate string          `json:"patenteTractor"`
	TypeCode     string          `json:"tipoProducto,omitempty"`
	ArticleCode  string          `json:"codigoArticulo,omitempty"`
	Formality    string          `json:"formalidad,omitempty"`
	Provider     string          `json:"proveedor,omitempty"`
	Step         int             `json:"paso"`
	ReceiptPath  string          `json:"comprobante,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// TripApproval records that an administrator accepted the expense report of
// a trip. There is at most one per trip.
type TripApproval struct {
	TripNumber  int64           `json:"nroViaje"`
	ApprovedBy  string          `json:"aprobadoPor"`
	ApprovedAt  time.Time       `json:"fechaAprobacion"`
	TotalAmount decimal.Decimal `json:"totalImporte"`
}

// TripSummary aggregates the expenses of one trip
type TripSummary struct {
	TripNumber int64                      `json:"nroViaje"`
	Count      int                        `json:"cantidad"`
	Total      decimal.Decimal            `json:"total"`
	ByCountry  map[string]decimal.Decimal `json:"porPais"`
	Expenses   []*TripExpense             `json:"gastos"`
	Approval   *TripApproval              `json:"aprobacion,omitempty"`
}

// Approved reports whether the trip has an approval on record
func (s *TripSummary) Approved() bool {
	return s.Approval != nil
}
