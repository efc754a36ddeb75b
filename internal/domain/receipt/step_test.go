package receipt

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestClassifyStep(t *testing.T) {
	tests := []struct {
		country Country
		amount  string
		want    Step
	}{
		{CountryARG, "99999.99", StepOne},
		{CountryARG, "100000", StepTwo},
		{CountryARG, "0", StepOne},
		{CountryCHL, "1", StepTwo},
		{CountryURY, "50", StepTwo},
		{CountryNone, "10", StepTwo},
	}

	for _, tt := range tests {
		t.Run(string(tt.country)+"/"+tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStep(tt.country, decimal.RequireFromString(tt.amount)))
		})
	}
}
