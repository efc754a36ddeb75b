package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/garyjia/rendicion/internal/domain/receipt"
)

// ListConcepts handles GET /api/conceptos
func (h *Handlers) ListConcepts(c *gin.Context) {
	okList(c, h.services.Catalog.Catalog().All())
}

// ListConceptTypes handles GET /api/conceptos/tipos
func (h *Handlers) ListConceptTypes(c *gin.Context) {
	ok(c, http.StatusOK, nonNil(h.services.Catalog.Catalog().Types()))
}

// ListConceptsByType handles GET /api/conceptos/:tipoProducto
func (h *Handlers) ListConceptsByType(c *gin.Context) {
	okList(c, h.services.Catalog.Catalog().ByType(c.Param("tipoProducto")))
}

type stepRequest struct {
	Country string           `json:"pais"`
	Amount  *decimal.Decimal `json:"importe"`
}

// ComputeStep handles POST /api/paso
func (h *Handlers) ComputeStep(c *gin.Context) {
	var req stepRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Amount == nil {
		fail(c, http.StatusBadRequest, msgMissingFields)
		return
	}
	country, _ := receipt.ParseCountry(req.Country)
	ok(c, http.StatusOK, gin.H{"paso": int(receipt.ClassifyStep(country, *req.Amount))})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
