package service

import "errors"

var (
	ErrExpenseNotFound   = errors.New("gasto no encontrado")
	ErrTripHasNoExpenses = errors.New("no hay gastos para este viaje")
	ErrApprovalNotFound  = errors.New("aprobación no encontrada")
	ErrInvalidExpense    = errors.New("gasto inválido")
	ErrInvalidUpload     = errors.New("archivo inválido")
	ErrNoReader          = errors.New("no hay lector de comprobantes configurado")
	ErrReceiptNotFound   = errors.New("comprobante no encontrado")
)
