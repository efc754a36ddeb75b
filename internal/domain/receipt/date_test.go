package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"labelled date", "FECHA: 05/03/2024", "2024-03-05"},
		{"expiry line ignored", "VTO CAI 31/12/2025\n10/01/2024", "2024-01-10"},
		{"issue line wins over earlier date", "ticket 01/02/2024\nFecha Emisión 03-02-2024", "2024-02-03"},
		{"cae due date ignored", "CAE 71234567890123 Vto: 20/02/2024\n15.02.2024 10:22", "2024-02-15"},
		{"iso date", "2024-07-09 18:30", "2024-07-09"},
		{"two digit year", "05/03/24", "2024-03-05"},
		{"impossible date", "31/02/2024", ""},
		{"no date", "TOTAL 500", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractDate(tt.text))
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "2024-03-05", NormalizeDate("2024-03-05"))
	assert.Equal(t, "2024-03-05", NormalizeDate("2024-03-05T10:00:00Z"))
	assert.Equal(t, "2024-03-05", NormalizeDate("5.3.2024"))
	assert.Equal(t, "2024-12-01", NormalizeDate("01/12/2024"))
	assert.Equal(t, "", NormalizeDate("garbage"))
	assert.Equal(t, "", NormalizeDate(""))
	assert.Equal(t, "", NormalizeDate("2024-13-01"))
}
