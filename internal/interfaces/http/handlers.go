package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/rendicion/internal/application/port"
	"github.com/garyjia/rendicion/internal/application/service"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	services Services
	logger   Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, logger Logger) *Handlers {
	return &Handlers{
		services: services,
		logger:   logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Total   *int        `json:"total,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details string      `json:"details,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Components map[string]string `json:"components,omitempty"`
}

// User-facing error messages
const (
	msgMissingFields = "Faltan campos obligatorios"
	msgInvalidTrip   = "Número de viaje inválido"
	msgBadBody       = "Cuerpo de la solicitud inválido"
	msgRateLimited   = "Demasiadas solicitudes. Esperá un momento e intentá de nuevo."
	msgTimeout       = "El lector de tickets no respondió a tiempo. Intentá de nuevo."
	msgBadImage      = "La imagen no pudo ser procesada. Intentá con otra foto."
	msgUpstream      = "Error al procesar la imagen"
	msgInternal      = "Error interno del servidor"
)

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func okList[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	c.JSON(http.StatusOK, Response{Success: true, Data: items, Total: &n})
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{Success: false, Error: msg})
}

// writeError maps service and boundary errors onto HTTP statuses
func (h *Handlers) writeError(c *gin.Context, err error) {
	var be *port.BoundaryError
	switch {
	case errors.Is(err, service.ErrInvalidExpense), errors.Is(err, service.ErrInvalidUpload):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrExpenseNotFound),
		errors.Is(err, service.ErrTripHasNoExpenses),
		errors.Is(err, service.ErrApprovalNotFound),
		errors.Is(err, service.ErrReceiptNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.As(err, &be):
		status, msg := boundaryStatus(be.Kind)
		h.logger.Error("Receipt reading failed", "kind", string(be.Kind), "error", be.Message)
		c.JSON(status, Response{Success: false, Error: msg, Details: be.Message})
	default:
		h.logger.Error("Request failed", "path", c.FullPath(), "error", err)
		fail(c, http.StatusInternalServerError, msgInternal)
	}
}

func boundaryStatus(kind port.ErrorKind) (int, string) {
	switch kind {
	case port.KindRateLimited:
		return http.StatusTooManyRequests, msgRateLimited
	case port.KindTimeout:
		return http.StatusGatewayTimeout, msgTimeout
	case port.KindInvalidInput:
		return http.StatusBadRequest, msgBadImage
	default:
		return http.StatusBadGateway, msgUpstream
	}
}

func tripParam(c *gin.Context) (int64, bool) {
	trip, err := strconv.ParseInt(c.Param("nroViaje"), 10, 64)
	if err != nil || trip <= 0 {
		fail(c, http.StatusBadRequest, msgInvalidTrip)
		return 0, false
	}
	return trip, true
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK

	if h.services.Health != nil {
		resp.Components = make(map[string]string)
		for name, err := range h.services.Health(c.Request.Context()) {
			if err != nil {
				resp.Components[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Components[name] = "ok"
		}
	}

	c.JSON(status, resp)
}
