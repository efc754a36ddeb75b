package receipt

import "github.com/shopspring/decimal"

// Step is the accounting routing bucket of an expense.
type Step int

const (
	StepOne Step = 1
	StepTwo Step = 2
)

var stepOneCeiling = decimal.NewFromInt(100000)

// ClassifyStep routes Argentine expenses below 100000 to step 1 and
// everything else to step 2.
func ClassifyStep(country Country, amount decimal.Decimal) Step {
	if country == CountryARG && amount.LessThan(stepOneCeiling) {
		return StepOne
	}
	return StepTwo
}
