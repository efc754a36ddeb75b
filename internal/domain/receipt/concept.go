package receipt

import (
	"regexp"
	"strings"
)

// Formality tells whether a receipt carries formal tax documentation.
type Formality string

const (
	FormalityFormal   Formality = "FORMAL"
	FormalityInformal Formality = "INFORMAL"
)

// ParseFormality maps anything other than the two allowed literals to
// INFORMAL.
func ParseFormality(s string) Formality {
	if Formality(foldText(strings.TrimSpace(s))) == FormalityFormal {
		return FormalityFormal
	}
	return FormalityInformal
}

// ResolutionMode records which resolver produced a Resolution.
type ResolutionMode string

const (
	ModeLexical ResolutionMode = "lexical"
	ModeAI      ResolutionMode = "ai"
)

// Resolution is the accounting classification of one receipt. TypeCode and
// ArticleCode are never empty.
type Resolution struct {
	Concept
	Formality Formality      `json:"formalidad"`
	Provider  string         `json:"proveedor"`
	Mode      ResolutionMode `json:"modo"`
}

// ConceptSignals is the input of ResolveConcept. When Guess is nil, or
// carries no classification fields, the lexical rule table is used.
type ConceptSignals struct {
	FreeText string
	Country  Country
	Guess    *AIGuess
}

type conceptRule struct {
	name    string
	pattern *regexp.Regexp
	pick    func(folded string, country Country) Concept
}

func fixed(c Concept) func(string, Country) Concept {
	return func(string, Country) Concept { return c }
}

var (
	tollByCountry = map[Country]Concept{
		CountryARG: {TypeCode: "TARIFA", ArticleCode: "5"},
		CountryCHL: {TypeCode: "TARIFA", ArticleCode: "4"},
		CountryURY: {TypeCode: "TARIFA", ArticleCode: "6"},
	}
	lubricantWords = regexp.MustCompile(`\bACEITE\b|HIDRAULIC|DEXRON|LUBRICANTE`)
)

// conceptRules is scanned top to bottom and the first match wins. Patterns
// run on uppercased text without accents.
var conceptRules = []conceptRule{
	{
		name:    "migration",
		pattern: regexp.MustCompile(`MIGRACION|FRONTERA|CONTROL INTEGRADO|\b(?:ENTRADA|SALIDA) (?:DEL? |AL )?(?:PAIS|TERRITORIO)\b`),
		pick:    fixed(Concept{TypeCode: "TARIFA", ArticleCode: "2"}),
	},
	{
		name:    "toll",
		pattern: regexp.MustCompile(`\bPEAJES?\b|AUTOPISTA|\bTAG\b|TELEPEAJE`),
		pick: func(_ string, country Country) Concept {
			if c, ok := tollByCountry[country]; ok {
				return c
			}
			return tollByCountry[CountryARG]
		},
	},
	{
		name:    "tyre",
		pattern: regexp.MustCompile(`NEUMATICO|\bCUBIERTAS?\b|PINCHADURA|GOMERIA`),
		pick:    fixed(Concept{TypeCode: "NEUMAT", ArticleCode: "3"}),
	},
	{
		name:    "litres",
		pattern: regexp.MustCompile(`\b\d+(?:[.,]\d+)?\s*(?:LTS?|LITROS?|L)\b|\bLITROS?\b|\bLTS\b|\bADBLUE\b|\bUREA\b`),
		pick: func(folded string, _ Country) Concept {
			if lubricantWords.MatchString(folded) {
				return Concept{TypeCode: "COMBLU", ArticleCode: "9"}
			}
			return Concept{TypeCode: "COMBLU", ArticleCode: "3"}
		},
	},
	{
		name:    "customs",
		pattern: regexp.MustCompile(`\bADUANA\b`),
		pick:    fixed(Concept{TypeCode: "TARIFA", ArticleCode: "3"}),
	},
	{
		name:    "disinfection",
		pattern: regexp.MustCompile(`DESINFECC`),
		pick:    fixed(Concept{TypeCode: "TARIFA", ArticleCode: "10"}),
	},
	{
		name:    "tunnel",
		pattern: regexp.MustCompile(`\bTUNEL\b|CRISTO REDENTOR`),
		pick:    fixed(Concept{TypeCode: "TARIFA", ArticleCode: "1"}),
	},
	{
		name:    "sanitary-control",
		pattern: regexp.MustCompile(`ISCAMEN|CONTROL SANITARIO|BARRERA SANITARIA`),
		pick:    fixed(Concept{TypeCode: "TARIFA", ArticleCode: "7"}),
	},
	{
		name:    "senasa",
		pattern: regexp.MustCompile(`\bSENASA\b`),
		pick:    fixed(Concept{TypeCode: "TARIFA", ArticleCode: "11"}),
	},
	{
		name:    "stamps",
		pattern: regexp.MustCompile(`\bSELLADOS?\b`),
		pick:    fixed(Concept{TypeCode: "TARIFA", ArticleCode: "8"}),
	},
	{
		name:    "parking",
		pattern: regexp.MustCompile(`ESTACIONAMIENTO|APARCADERO|PLAYA DE CAMIONES`),
		pick:    fixed(Concept{TypeCode: "TARIFA", ArticleCode: "13"}),
	},
	{
		name:    "per-diem",
		pattern: regexp.MustCompile(`VIATICO`),
		pick:    fixed(Concept{TypeCode: "TARIFA", ArticleCode: "12"}),
	},
	{
		name:    "customs-agent",
		pattern: regexp.MustCompile(`\bATA\b|AGENTE DE TRANSPORTE ADUANERO`),
		pick:    fixed(Concept{TypeCode: "HONPRO", ArticleCode: "4"}),
	},
	{
		name:    "customs-procedures",
		pattern: regexp.MustCompile(`GESTION(?:ES)? ADUANERAS?|DESPACHANTE`),
		pick:    fixed(Concept{TypeCode: "HONPRO", ArticleCode: "2"}),
	},
	{
		name:    "professional-fees",
		pattern: regexp.MustCompile(`HONORARIOS`),
		pick:    fixed(Concept{TypeCode: "HONPRO", ArticleCode: "6"}),
	},
	{
		name:    "tyre-rotation",
		pattern: regexp.MustCompile(`ROTACION`),
		pick:    fixed(Concept{TypeCode: "NEUMAT", ArticleCode: "2"}),
	},
	{
		name:    "false-freight",
		pattern: regexp.MustCompile(`FALSO FLETE`),
		pick:    fixed(Concept{TypeCode: "SERVIC", ArticleCode: "3"}),
	},
}

// ResolveConcept dispatches to the AI-assisted resolver when a guess with
// classification fields is present and to the lexical resolver otherwise.
func ResolveConcept(catalog *Catalog, signals ConceptSignals) Resolution {
	if signals.Guess != nil && signals.Guess.Classifies() {
		return ResolveAI(catalog, *signals.Guess, signals.FreeText, signals.Country)
	}
	return ResolveLexical(catalog, signals.FreeText, signals.Country)
}

// ResolveLexical classifies free text with the rule table. The provider is
// only set when a known provider is named in the text; formality comes from
// explicit markers, then from the provider, then from the concept's
// historical rate.
func ResolveLexical(catalog *Catalog, text string, country Country) Resolution {
	folded := foldText(text)
	concept := lexicalConcept(catalog, folded, country)

	res := Resolution{Concept: concept, Mode: ModeLexical}
	provider, known := DetectProvider(folded)
	if known {
		res.Provider = provider.Name
	}
	res.Formality = inferFormality(folded, concept, provider, known)
	return res
}

// ResolveAI validates and repairs an upstream classification guess:
//   - the obsolete HONPRO/1 is replaced by FallbackConcept
//   - a missing or unknown concept is resolved lexically from text
//   - formality other than FORMAL/INFORMAL becomes INFORMAL
//   - an empty provider stays empty
func ResolveAI(catalog *Catalog, guess AIGuess, text string, country Country) Resolution {
	concept := NormalizeConcept(guess.TypeCode, guess.ArticleCode)
	switch {
	case concept.IsObsolete():
		concept = FallbackConcept
	case concept.IsZero() || (catalog != nil && !catalog.Contains(concept)):
		concept = lexicalConcept(catalog, foldText(text), country)
	}
	return Resolution{
		Concept:   concept,
		Formality: ParseFormality(guess.Formality),
		Provider:  strings.TrimSpace(guess.Provider),
		Mode:      ModeAI,
	}
}

func lexicalConcept(catalog *Catalog, folded string, country Country) Concept {
	for _, rule := range conceptRules {
		if !rule.pattern.MatchString(folded) {
			continue
		}
		c := rule.pick(folded, country)
		if catalog == nil || catalog.Contains(c) {
			return c
		}
	}
	return FallbackConcept
}
