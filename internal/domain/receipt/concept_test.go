package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveLexical(t *testing.T) {
	catalog := DefaultCatalog()
	tests := []struct {
		name    string
		text    string
		country Country
		want    Concept
	}{
		{"migration", "DIRECCION NACIONAL DE MIGRACIONES\nSALIDA", CountryARG, Concept{"TARIFA", "2"}},
		{"exit stamp", "Comprobante de salida del país", CountryCHL, Concept{"TARIFA", "2"}},
		{"parking with entry and exit times", "PLAYA DE ESTACIONAMIENTO\nENTRADA 10:00\nSALIDA 12:00", CountryARG, Concept{"TARIFA", "13"}},
		{"toll argentina", "Peaje Autopista", CountryARG, Concept{"TARIFA", "5"}},
		{"toll chile", "Peaje Autopista", CountryCHL, Concept{"TARIFA", "4"}},
		{"toll uruguay", "PEAJE", CountryURY, Concept{"TARIFA", "6"}},
		{"toll without country", "TAG", CountryNone, Concept{"TARIFA", "5"}},
		{"tyre", "GOMERIA EL RAYO\nPINCHADURA", CountryARG, Concept{"NEUMAT", "3"}},
		{"accented tyre", "Neumático delantero", CountryARG, Concept{"NEUMAT", "3"}},
		{"urea litres", "ADBLUE 40 LTS", CountryARG, Concept{"COMBLU", "3"}},
		{"oil litres", "ACEITE DEXRON 20 LITROS", CountryARG, Concept{"COMBLU", "9"}},
		{"customs", "ADUANA ARGENTINA", CountryARG, Concept{"TARIFA", "3"}},
		{"disinfection", "Desinfección de unidad", CountryARG, Concept{"TARIFA", "10"}},
		{"per diem", "VIATICOS CHOFER", CountryARG, Concept{"TARIFA", "12"}},
		{"senasa", "SENASA", CountryARG, Concept{"TARIFA", "11"}},
		{"fees", "HONORARIOS PROFESIONALES", CountryARG, Concept{"HONPRO", "6"}},
		{"nothing matches", "KIOSCO EL PASO", CountryARG, FallbackConcept},
		{"empty", "", CountryNone, FallbackConcept},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveLexical(catalog, tt.text, tt.country)
			assert.Equal(t, tt.want, got.Concept)
			assert.Equal(t, ModeLexical, got.Mode)
		})
	}
}

func TestResolveLexical_Formality(t *testing.T) {
	catalog := DefaultCatalog()

	ausol := ResolveLexical(catalog, "AUTOPISTAS DEL SOL S.A.\nPEAJE", CountryARG)
	assert.Equal(t, FormalityFormal, ausol.Formality)
	assert.Equal(t, "AUTOPISTAS DEL SOL S.A.", ausol.Provider)

	marked := ResolveLexical(catalog, "PEAJE\nNO VALIDO COMO FACTURA", CountryARG)
	assert.Equal(t, FormalityInformal, marked.Formality)

	assert.Equal(t, FormalityInformal, ResolveLexical(catalog, "KIOSCO", CountryARG).Formality)
	assert.Equal(t, FormalityFormal, ResolveLexical(catalog, "FACTURA B\nKIOSCO", CountryARG).Formality)
	assert.Empty(t, ResolveLexical(catalog, "KIOSCO", CountryARG).Provider)
}

func TestResolveAI(t *testing.T) {
	catalog := DefaultCatalog()

	t.Run("valid guess is kept", func(t *testing.T) {
		got := ResolveAI(catalog, AIGuess{TypeCode: "neumat", ArticleCode: "1", Formality: "formal", Provider: " Gomeria Sur "}, "", CountryARG)
		assert.Equal(t, Concept{"NEUMAT", "1"}, got.Concept)
		assert.Equal(t, FormalityFormal, got.Formality)
		assert.Equal(t, "Gomeria Sur", got.Provider)
		assert.Equal(t, ModeAI, got.Mode)
	})

	t.Run("obsolete concept is replaced", func(t *testing.T) {
		got := ResolveAI(catalog, AIGuess{TypeCode: "HONPRO", ArticleCode: "01"}, "HONORARIOS", CountryARG)
		assert.Equal(t, FallbackConcept, got.Concept)
	})

	t.Run("unknown concept falls back to text", func(t *testing.T) {
		got := ResolveAI(catalog, AIGuess{TypeCode: "XYZ", ArticleCode: "9"}, "PEAJE", CountryCHL)
		assert.Equal(t, Concept{"TARIFA", "4"}, got.Concept)
	})

	t.Run("formality outside the allowed literals", func(t *testing.T) {
		for _, f := range []string{"", "semi", "Formal?", "N/A"} {
			assert.Equal(t, FormalityInformal, ResolveAI(catalog, AIGuess{Formality: f}, "", CountryNone).Formality, f)
		}
	})

	t.Run("provider is never invented", func(t *testing.T) {
		got := ResolveAI(catalog, AIGuess{TypeCode: "TARIFA", ArticleCode: "5"}, "AUTOPISTAS DEL SOL", CountryARG)
		assert.Empty(t, got.Provider)
	})
}

func TestResolveConcept_GuessWithoutClassificationIsLexical(t *testing.T) {
	got := ResolveConcept(DefaultCatalog(), ConceptSignals{
		FreeText: "AUTOPISTAS DEL SOL S.A.\nPEAJE",
		Country:  CountryARG,
		Guess:    &AIGuess{Country: "ARG", Description: "peaje"},
	})

	assert.Equal(t, ModeLexical, got.Mode)
	assert.Equal(t, Concept{"TARIFA", "5"}, got.Concept)
	assert.Equal(t, FormalityFormal, got.Formality)
	assert.Equal(t, "AUTOPISTAS DEL SOL S.A.", got.Provider)
}

func TestResolveConcept_Totality(t *testing.T) {
	inputs := []ConceptSignals{
		{},
		{FreeText: "HONORARIOS"},
		{FreeText: "???", Country: CountryURY},
		{Guess: &AIGuess{}},
		{Guess: &AIGuess{Country: "ARG"}, FreeText: "PEAJE"},
		{Guess: &AIGuess{TypeCode: "HONPRO", ArticleCode: "1"}},
		{Guess: &AIGuess{TypeCode: "HONPRO"}},
		{Guess: &AIGuess{ArticleCode: "1"}, FreeText: "SENASA"},
	}

	for _, catalog := range []*Catalog{DefaultCatalog(), nil} {
		for _, in := range inputs {
			got := ResolveConcept(catalog, in)
			assert.NotEmpty(t, got.TypeCode)
			assert.NotEmpty(t, got.ArticleCode)
			assert.False(t, got.IsObsolete())
			assert.Contains(t, []Formality{FormalityFormal, FormalityInformal}, got.Formality)
		}
	}
}
