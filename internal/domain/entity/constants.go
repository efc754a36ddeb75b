package entity

// Expense type constants for TripExpense
const (
	ExpenseTypeFuel    = "COMBUSTIBLE"
	ExpenseTypeToll    = "PEAJE"
	ExpenseTypeTyre    = "NEUMATICO"
	ExpenseTypeFee     = "HONORARIO"
	ExpenseTypePerDiem = "VIATICO"
	ExpenseTypeOther   = "OTRO"
)

// Defaults applied when a request leaves a field empty
const (
	DefaultExpenseType = ExpenseTypeFuel
	DefaultApprover    = "Administrador"
)

var expenseTypes = map[string]bool{
	ExpenseTypeFuel:    true,
	ExpenseTypeToll:    true,
	ExpenseTypeTyre:    true,
	ExpenseTypeFee:     true,
	ExpenseTypePerDiem: true,
	ExpenseTypeOther:   true,
}

// IsValidExpenseType reports whether t is one of the known expense types
func IsValidExpenseType(t string) bool {
	return expenseTypes[t]
}
