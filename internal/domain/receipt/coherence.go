package receipt

import (
	"fmt"
	"regexp"
	"strings"
)

// Provider is a recognised issuer of receipts.
type Provider struct {
	Name    string
	Formal  bool
	aliases *regexp.Regexp
}

// knownProviders is matched in order against folded text.
var knownProviders = []Provider{
	{Name: "AUTOPISTAS DEL SOL S.A.", Formal: true, aliases: regexp.MustCompile(`AUTOPISTAS? DEL SOL|\bAUSOL\b`)},
	{Name: "AUBASA", Formal: true, aliases: regexp.MustCompile(`\bAUBASA\b|AUTOPISTAS DE BUENOS AIRES`)},
	{Name: "CORREDORES VIALES", Formal: true, aliases: regexp.MustCompile(`CORREDORES VIALES`)},
	{Name: "AUTOPISTAS URBANAS S.A.", Formal: true, aliases: regexp.MustCompile(`\bAUSA\b|AUTOPISTAS URBANAS`)},
	{Name: "DIRECCION NACIONAL DE MIGRACIONES", Formal: true, aliases: regexp.MustCompile(`(?:DIRECCION NACIONAL DE |DIR\.? NAC\.? DE )MIGRACIONES|\bDNM\b`)},
	{Name: "TUNEL CRISTO REDENTOR", Formal: true, aliases: regexp.MustCompile(`CRISTO REDENTOR`)},
	{Name: "SENASA", Formal: true, aliases: regexp.MustCompile(`\bSENASA\b`)},
	{Name: "ISCAMEN", Formal: true, aliases: regexp.MustCompile(`\bISCAMEN\b`)},
	{Name: "SERVICIO NACIONAL DE ADUANAS", Formal: true, aliases: regexp.MustCompile(`SERVICIO NACIONAL DE ADUANAS`)},
	{Name: "RUTA 5 SUR", Formal: true, aliases: regexp.MustCompile(`RUTA DEL MAIPO|AUTOPISTA DEL ACONCAGUA|RUTA 5 SUR`)},
	{Name: "ANCAP", Formal: true, aliases: regexp.MustCompile(`\bANCAP\b`)},
	{Name: "COPEC", Formal: true, aliases: regexp.MustCompile(`\bCOPEC\b`)},
	{Name: "YPF", Formal: true, aliases: regexp.MustCompile(`\bYPF\b`)},
	{Name: "SHELL", Formal: true, aliases: regexp.MustCompile(`\bSHELL\b`)},
}

// DetectProvider returns the first known provider named in text.
func DetectProvider(text string) (Provider, bool) {
	folded := foldText(text)
	for _, p := range knownProviders {
		if p.aliases.MatchString(folded) {
			return p, true
		}
	}
	return Provider{}, false
}

// LookupProvider finds a known provider by canonical name or alias.
func LookupProvider(name string) (Provider, bool) {
	if strings.TrimSpace(name) == "" {
		return Provider{}, false
	}
	folded := foldText(name)
	for _, p := range knownProviders {
		if foldText(p.Name) == folded || p.aliases.MatchString(folded) {
			return p, true
		}
	}
	return Provider{}, false
}

// formalityRates holds the historical share of FORMAL receipts per concept.
var formalityRates = map[Concept]float64{
	{TypeCode: "TARIFA", ArticleCode: "1"}:  0.97,
	{TypeCode: "TARIFA", ArticleCode: "2"}:  0.92,
	{TypeCode: "TARIFA", ArticleCode: "3"}:  0.85,
	{TypeCode: "TARIFA", ArticleCode: "4"}:  0.88,
	{TypeCode: "TARIFA", ArticleCode: "5"}:  0.95,
	{TypeCode: "TARIFA", ArticleCode: "6"}:  0.90,
	{TypeCode: "TARIFA", ArticleCode: "7"}:  0.80,
	{TypeCode: "TARIFA", ArticleCode: "8"}:  0.75,
	{TypeCode: "TARIFA", ArticleCode: "10"}: 0.35,
	{TypeCode: "TARIFA", ArticleCode: "11"}: 0.90,
	{TypeCode: "TARIFA", ArticleCode: "12"}: 0.05,
	{TypeCode: "TARIFA", ArticleCode: "13"}: 0.30,
	{TypeCode: "TARIFA", ArticleCode: "14"}: 0.15,
	{TypeCode: "TARIFA", ArticleCode: "21"}: 0.20,
	{TypeCode: "HONPRO", ArticleCode: "2"}:  0.95,
	{TypeCode: "HONPRO", ArticleCode: "3"}:  0.95,
	{TypeCode: "HONPRO", ArticleCode: "4"}:  0.97,
	{TypeCode: "HONPRO", ArticleCode: "5"}:  0.90,
	{TypeCode: "HONPRO", ArticleCode: "6"}:  0.93,
	{TypeCode: "NEUMAT", ArticleCode: "1"}:  0.25,
	{TypeCode: "NEUMAT", ArticleCode: "2"}:  0.30,
	{TypeCode: "NEUMAT", ArticleCode: "3"}:  0.28,
	{TypeCode: "COMBLU", ArticleCode: "3"}:  0.85,
	{TypeCode: "COMBLU", ArticleCode: "9"}:  0.70,
	{TypeCode: "SERVIC", ArticleCode: "3"}:  0.60,
}

// expectedProviders lists the provider each concept usually comes from.
var expectedProviders = map[Concept]string{
	{TypeCode: "TARIFA", ArticleCode: "1"}:  "TUNEL CRISTO REDENTOR",
	{TypeCode: "TARIFA", ArticleCode: "2"}:  "DIRECCION NACIONAL DE MIGRACIONES",
	{TypeCode: "TARIFA", ArticleCode: "7"}:  "ISCAMEN",
	{TypeCode: "TARIFA", ArticleCode: "11"}: "SENASA",
}

const strongRate = 0.85

// FormalityRate reports the historical FORMAL share of a concept.
func FormalityRate(c Concept) (float64, bool) {
	r, ok := formalityRates[c]
	return r, ok
}

var (
	informalMarkers = regexp.MustCompile(`NO VALIDO COMO FACTURA|DOCUMENTO NO VALIDO|COMPROBANTE NO VALIDO|\bPRESUPUESTO\b|\bREMITO\b|SIN VALOR FISCAL`)
	formalMarkers   = regexp.MustCompile(`\bFACTURA\b|\bCAE\b|BOLETA ELECTRONICA|\bE-?TICKET\b|TIMBRE ELECTRONICO|\bCFE\b|TICKET FACTURA|CONTROLADOR FISCAL`)
)

func inferFormality(folded string, c Concept, provider Provider, known bool) Formality {
	switch {
	case informalMarkers.MatchString(folded):
		return FormalityInformal
	case formalMarkers.MatchString(folded):
		return FormalityFormal
	case known && provider.Formal:
		return FormalityFormal
	}
	if rate, ok := formalityRates[c]; ok && rate >= 0.5 {
		return FormalityFormal
	}
	return FormalityInformal
}

// CheckCoherence returns advisory notes about a resolution whose formality
// or provider disagrees with what is usually seen for its concept. It never
// rejects the resolution.
func CheckCoherence(res Resolution) []string {
	var notes []string
	if want, ok := expectedProviders[res.Concept]; ok && res.Provider != "" {
		if p, known := LookupProvider(res.Provider); !known || p.Name != want {
			notes = append(notes, fmt.Sprintf("proveedor %q inusual para %s (se espera %s)", res.Provider, res.Concept, want))
		}
	}
	if rate, ok := formalityRates[res.Concept]; ok {
		switch {
		case rate >= strongRate && res.Formality == FormalityInformal:
			notes = append(notes, fmt.Sprintf("%s suele ser FORMAL (%.0f%%)", res.Concept, rate*100))
		case rate <= 1-strongRate && res.Formality == FormalityFormal:
			notes = append(notes, fmt.Sprintf("%s suele ser INFORMAL (%.0f%%)", res.Concept, (1-rate)*100))
		}
	}
	if p, known := LookupProvider(res.Provider); known && p.Formal && res.Formality == FormalityInformal {
		notes = append(notes, fmt.Sprintf("%s emite comprobantes formales", p.Name))
	}
	return notes
}
