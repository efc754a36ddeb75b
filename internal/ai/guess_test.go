package ai

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGuess(t *testing.T) {
	t.Run("plain object", func(t *testing.T) {
		g, err := ParseGuess(`{"importe": 1234.5, "fecha": "2024-03-05", "pais": "ARG", "descripcion": "Peaje", "tipoProducto": "TARIFA", "codigoArticulo": "5", "formalidad": "FORMAL", "proveedor": "AUSOL", "textoCompleto": "PEAJE\nTOTAL 1234,50"}`)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("1234.5").Equal(g.Amount))
		assert.Equal(t, "2024-03-05", g.Date)
		assert.Equal(t, "ARG", g.Country)
		assert.Equal(t, "TARIFA", g.TypeCode)
		assert.Equal(t, "5", g.ArticleCode)
		assert.Equal(t, "FORMAL", g.Formality)
		assert.Equal(t, "AUSOL", g.Provider)
		assert.Equal(t, "PEAJE\nTOTAL 1234,50", g.FullText)
	})

	t.Run("fenced with prose", func(t *testing.T) {
		g, err := ParseGuess("Acá está el resultado:\n```json\n{\"importe\": \"$ 1.234,50\", \"pais\": \" CHL \"}\n```\nSaludos")
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("1234.50").Equal(g.Amount))
		assert.Equal(t, "CHL", g.Country)
	})

	t.Run("synonyms and nulls", func(t *testing.T) {
		g, err := ParseGuess(`{"total": "980", "tipo": "NEUMAT", "articulo": 3, "formality": null, "provider": "Gomería Sur", "confianza": 0.8}`)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(980).Equal(g.Amount))
		assert.Equal(t, "NEUMAT", g.TypeCode)
		assert.Equal(t, "3", g.ArticleCode)
		assert.Empty(t, g.Formality)
		assert.Equal(t, "Gomería Sur", g.Provider)
	})

	t.Run("canonical key wins over synonym", func(t *testing.T) {
		g, err := ParseGuess(`{"importe": 500, "total": 900}`)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(500).Equal(g.Amount))
	})

	t.Run("unreadable amount is dropped", func(t *testing.T) {
		g, err := ParseGuess(`{"importe": "no visible", "pais": "URY"}`)
		require.NoError(t, err)
		assert.True(t, g.Amount.IsZero())
		assert.Equal(t, "URY", g.Country)
	})

	t.Run("no json", func(t *testing.T) {
		_, err := ParseGuess("No pude leer el ticket")
		assert.ErrorIs(t, err, ErrNoJSON)
	})

	t.Run("wrong shape", func(t *testing.T) {
		_, err := ParseGuess(`{"descripcion": {"nombre": "YPF"}}`)
		assert.ErrorIs(t, err, ErrInvalidGuess)
	})
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"surrounded", `text {"a":{"b":2}} more`, `{"a":{"b":2}}`},
		{"braces in strings", `{"a":"}{"}`, `{"a":"}{"}`},
		{"escaped quote", `{"a":"x\"}"}`, `{"a":"x\"}"}`},
		{"unbalanced", `{"a":1`, ""},
		{"none", "plain", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.content))
		})
	}
}
