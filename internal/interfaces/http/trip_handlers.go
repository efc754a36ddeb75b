package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/garyjia/rendicion/internal/application/service"
	"github.com/garyjia/rendicion/internal/domain/entity"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// createExpenseRequest accepts the trip number as a number or a numeric string
type createExpenseRequest struct {
	TripNumber   json.Number      `json:"nroViaje"`
	Date         string           `json:"fecha"`
	Country      string           `json:"pais"`
	ExpenseType  string           `json:"tipo"`
	Amount       *decimal.Decimal `json:"importe"`
	Description  string           `json:"descripcion"`
	Driver       string           `json:"chofer"`
	TractorPlate string           `json:"patenteTractor"`
	TypeCode     string           `json:"tipoProducto"`
	ArticleCode  string           `json:"codigoArticulo"`
	Formality    string           `json:"formalidad"`
	Provider     string           `json:"proveedor"`
	ReceiptPath  string           `json:"comprobante"`
}

type approveRequest struct {
	ApprovedBy string `json:"aprobadoPor"`
}

// ListExpenses handles GET /api/gastos-viaje
func (h *Handlers) ListExpenses(c *gin.Context) {
	expenses, err := h.services.Expenses.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	okList(c, expenses)
}

// ListTripExpenses handles GET /api/gastos-viaje/:nroViaje
func (h *Handlers) ListTripExpenses(c *gin.Context) {
	trip, valid := tripParam(c)
	if !valid {
		return
	}
	expenses, err := h.services.Expenses.ListByTrip(c.Request.Context(), trip)
	if err != nil {
		h.writeError(c, err)
		return
	}
	okList(c, expenses)
}

// CreateExpense handles POST /api/gastos-viaje
func (h *Handlers) CreateExpense(c *gin.Context) {
	var req createExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, msgMissingFields)
		return
	}
	if req.TripNumber == "" || strings.TrimSpace(req.Date) == "" || strings.TrimSpace(req.Country) == "" || req.Amount == nil {
		fail(c, http.StatusBadRequest, msgMissingFields)
		return
	}
	trip, err := req.TripNumber.Int64()
	if err != nil {
		fail(c, http.StatusBadRequest, msgInvalidTrip)
		return
	}

	expense, err := h.services.Expenses.Create(c.Request.Context(), service.CreateExpenseInput{
		TripNumber:   trip,
		Date:         req.Date,
		Country:      req.Country,
		ExpenseType:  req.ExpenseType,
		Amount:       *req.Amount,
		Description:  req.Description,
		Driver:       req.Driver,
		TractorPlate: req.TractorPlate,
		TypeCode:     req.TypeCode,
		ArticleCode:  req.ArticleCode,
		Formality:    req.Formality,
		Provider:     req.Provider,
		ReceiptPath:  req.ReceiptPath,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.Info("Trip expense created",
		"trip_number", expense.TripNumber,
		"amount", expense.Amount.String(),
		"driver", expense.Driver,
		"step", expense.Step)
	ok(c, http.StatusCreated, expense)
}

// DeleteExpense handles DELETE /api/gastos-viaje/:id
func (h *Handlers) DeleteExpense(c *gin.Context) {
	if err := h.services.Expenses.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// SummaryByTrip handles GET /api/gastos-viaje/resumen/por-viaje. The data is
// keyed by trip number.
func (h *Handlers) SummaryByTrip(c *gin.Context) {
	summaries, err := h.services.Expenses.SummaryByTrip(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	byTrip := make(map[int64]*entity.TripSummary, len(summaries))
	for _, s := range summaries {
		byTrip[s.TripNumber] = s
	}
	ok(c, http.StatusOK, byTrip)
}

// ListApprovals handles GET /api/gastos-viaje/aprobaciones/todas. The data is
// keyed by trip number.
func (h *Handlers) ListApprovals(c *gin.Context) {
	approvals, err := h.services.Approvals.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	byTrip := make(map[int64]*entity.TripApproval, len(approvals))
	for _, a := range approvals {
		byTrip[a.TripNumber] = a
	}
	ok(c, http.StatusOK, byTrip)
}

// ApproveTrip handles POST /api/gastos-viaje/aprobaciones/:nroViaje
func (h *Handlers) ApproveTrip(c *gin.Context) {
	trip, valid := tripParam(c)
	if !valid {
		return
	}
	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, msgBadBody)
		return
	}

	approval, err := h.services.Approvals.Approve(c.Request.Context(), trip, req.ApprovedBy)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, approval)
}

// RevokeApproval handles DELETE /api/gastos-viaje/aprobaciones/:nroViaje
func (h *Handlers) RevokeApproval(c *gin.Context) {
	trip, valid := tripParam(c)
	if !valid {
		return
	}
	if err := h.services.Approvals.Revoke(c.Request.Context(), trip); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// ExportTrip handles GET /api/gastos-viaje/:nroViaje/export
func (h *Handlers) ExportTrip(c *gin.Context) {
	trip, valid := tripParam(c)
	if !valid {
		return
	}

	var buf bytes.Buffer
	if err := h.services.Exports.ExportTrip(c.Request.Context(), trip, &buf); err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="rendicion-viaje-%d.xlsx"`, trip))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
