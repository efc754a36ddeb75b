package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyCountry(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Country
	}{
		{"argentine tax id and vat", "CUIT 30-12345678-9\nIVA 21%", CountryARG},
		{"chilean tax id and vat", "RUT 12.345.678-9\nIVA 19%", CountryCHL},
		{"uruguayan tax id and vat", "RUC 211234560018\nIVA 22%\nMONTEVIDEO", CountryURY},
		{"accents are folded", "Estación de servicio\nCórdoba", CountryARG},
		{"chilean operator", "COPEC\nLos Andes", CountryCHL},
		{"no signals", "GRACIAS POR SU COMPRA", CountryNone},
		{"empty", "", CountryNone},
		{"tie keeps first country", "ARGENTINA CHILE", CountryARG},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyCountry(tt.text))
		})
	}
}

func TestScoreCountries(t *testing.T) {
	scores := ScoreCountries("SII\nBOLETA ELECTRONICA")

	assert.Equal(t, []CountryScore{
		{Country: CountryARG, Score: 0},
		{Country: CountryCHL, Score: 25},
		{Country: CountryURY, Score: 0},
	}, scores)
}

func TestParseCountry(t *testing.T) {
	tests := []struct {
		in   string
		want Country
		ok   bool
	}{
		{"ARG", CountryARG, true},
		{"argentina", CountryARG, true},
		{" cl ", CountryCHL, true},
		{"Uruguay", CountryURY, true},
		{"BRA", CountryNone, false},
		{"", CountryNone, false},
	}

	for _, tt := range tests {
		got, ok := ParseCountry(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}
