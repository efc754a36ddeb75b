package receipt

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MaxDescriptionRunes bounds ExpenseDraft.Description.
const MaxDescriptionRunes = 120

// AIGuess is the structured reading an upstream model returned for a
// receipt. Every field is untrusted until Analyze validates it.
type AIGuess struct {
	Amount      decimal.Decimal `json:"importe"`
	Date        string          `json:"fecha"`
	Country     string          `json:"pais"`
	Description string          `json:"descripcion"`
	TypeCode    string          `json:"tipoProducto"`
	ArticleCode string          `json:"codigoArticulo"`
	Formality   string          `json:"formalidad"`
	Provider    string          `json:"proveedor"`
	FullText    string          `json:"textoCompleto"`
}

// Classifies reports whether the guess names a concept, a formality or a
// provider. A guess with only amount, date and country does not.
func (g AIGuess) Classifies() bool {
	for _, f := range []string{g.TypeCode, g.ArticleCode, g.Formality, g.Provider} {
		if strings.TrimSpace(f) != "" {
			return true
		}
	}
	return false
}

// ExpenseDraft is the edit-ready result of analysing one receipt.
type ExpenseDraft struct {
	Amount      decimal.Decimal `json:"importe"`
	Date        string          `json:"fecha"`
	Country     Country         `json:"pais"`
	Description string          `json:"descripcion"`
	TypeCode    string          `json:"tipoProducto"`
	ArticleCode string          `json:"codigoArticulo"`
	Formality   Formality       `json:"formalidad"`
	Provider    string          `json:"proveedor"`
	RawText     string          `json:"textoCompleto"`
	Step        Step            `json:"paso"`
	Notes       []string        `json:"observaciones,omitempty"`
}

// Concept returns the draft's accounting concept.
func (d ExpenseDraft) Concept() Concept {
	return Concept{TypeCode: d.TypeCode, ArticleCode: d.ArticleCode}
}

// Analyze runs every stage over recognized text. When guess is non-nil its
// validated fields take precedence over the ones derived from text, and its
// full text is used if text is empty.
func Analyze(catalog *Catalog, text string, guess *AIGuess) ExpenseDraft {
	if guess != nil && strings.TrimSpace(text) == "" {
		text = guess.FullText
	}

	draft := ExpenseDraft{RawText: text, Date: ExtractDate(text)}
	if c, ok := ExtractAmount(text); ok {
		draft.Amount = c.Value
	}
	draft.Country = ClassifyCountry(text)

	if guess != nil {
		if ValidAmount(guess.Amount) {
			draft.Amount = guess.Amount
		}
		if d := NormalizeDate(guess.Date); d != "" {
			draft.Date = d
		}
		if c, ok := ParseCountry(guess.Country); ok {
			draft.Country = c
		}
	}

	res := ResolveConcept(catalog, ConceptSignals{FreeText: text, Country: draft.Country, Guess: guess})
	draft.TypeCode = res.TypeCode
	draft.ArticleCode = res.ArticleCode
	draft.Formality = res.Formality
	draft.Provider = res.Provider
	draft.Description = describe(catalog, guess, res)
	draft.Step = ClassifyStep(draft.Country, draft.Amount)
	draft.Notes = CheckCoherence(res)
	return draft
}

func describe(catalog *Catalog, guess *AIGuess, res Resolution) string {
	if guess != nil {
		if d := strings.Join(strings.Fields(guess.Description), " "); d != "" {
			return truncateRunes(d, MaxDescriptionRunes)
		}
	}
	var desc string
	if entry, ok := catalog.Lookup(res.Concept); ok && (res.Concept != FallbackConcept || res.Provider != "") {
		desc = entry.Description
	}
	if res.Provider != "" {
		if desc == "" {
			desc = res.Provider
		} else {
			desc += " - " + res.Provider
		}
	}
	return truncateRunes(desc, MaxDescriptionRunes)
}
