package receipt

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountCandidate is one number found on a receipt together with the
// priority of the rule that found it.
type AmountCandidate struct {
	Value      decimal.Decimal `json:"value"`
	Priority   int             `json:"priority"`
	SourceLine string          `json:"sourceLine"`
}

// Priorities for the fallback tiers sit below every keyword rule.
const (
	PriorityCurrencyPrefixed = 0
	PriorityBareNumber       = -1
)

// maxBareDigits is the longest digit run accepted by the bare-number tier.
// Longer runs are tax IDs, CAE codes or receipt numbers.
const maxBareDigits = 8

var amountCeiling = decimal.NewFromInt(100_000_000)

const (
	numberGroup    = `(\d[\d.,]*\d|\d)`
	currencySymbol = `(?:US\$|U\$S|\$U|\$|ARS|UYU|CLP)`
)

type amountRule struct {
	pattern  *regexp.Regexp
	priority int
}

// keywordRule builds "<keyword> [separators] [currency] <number>".
func keywordRule(keyword string, priority int) amountRule {
	expr := `\b(?:` + keyword + `)\b[\s:=.\-*]*` + currencySymbol + `?\s*` + numberGroup
	return amountRule{pattern: regexp.MustCompile(expr), priority: priority}
}

// amountRules is ordered by reliability on real receipts. Text is folded to
// uppercase without accents before matching.
var amountRules = []amountRule{
	keywordRule(`TOTAL\s+A\s+PAGAR`, 100),
	keywordRule(`IMPORTE\s+TOTAL|MONTO\s+TOTAL`, 95),
	keywordRule(`TOTAL`, 90),
	keywordRule(`TOT[^A-Z0-9\s]L|T0TAL|TOTA1|TOTAI|T0TA1`, 85),
	keywordRule(`A\s+PAGAR`, 80),
	keywordRule(`IMPORTE`, 75),
	keywordRule(`MONTO`, 70),
	keywordRule(`PEAJE`, 60),
	keywordRule(`TARIFA`, 55),
	keywordRule(`SUBTOTAL`, 40),
	keywordRule(`NETO`, 35),
	keywordRule(`BRUTO`, 30),
	keywordRule(`VALOR`, 20),
	keywordRule(`PRECIO`, 10),
}

var (
	subTotalSpaced  = regexp.MustCompile(`\bSUB[\s\-]+TOTAL\b`)
	currencyAmount  = regexp.MustCompile(currencySymbol + `\s*` + numberGroup)
	bareNumber      = regexp.MustCompile(numberGroup)
	datesAndTimes   = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b|\b\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}\b|\b\d{1,2}:\d{2}(?::\d{2})?\b`)
	identifierLines = regexp.MustCompile(`\b(?:CUIT|CUIL|RUT|RUC|C\.?A\.?E|C\.?A\.?I|AUTORIZ\w*|DOC(?:UMENTO)?|DNI|PUNTO\s+DE\s+VENTA|PTO\.?\s*(?:DE\s*)?VTA|TEL(?:EFONO)?|FONO|CEL(?:ULAR)?|COMPROBANTE|TICKET\s+N|FACTURA\s+N|RECIBO\s+N|NRO|NUMERO)\b|N[°º]`)
)

// ExtractAmount finds the most likely total due on a receipt.
//
// Keyword rules run on every line and on the whole text joined into one
// line, so "TOTAL" and its number may sit on adjacent lines. Dates and
// times are blanked out first so a keyword never captures a day. The highest
// priority wins and, on equal priority, the larger value. When no keyword
// matches, the largest currency-prefixed number is used; failing that, the
// largest bare number outside identifier lines. ok is false when nothing
// plausible was found.
func ExtractAmount(text string) (best AmountCandidate, ok bool) {
	lines := splitLines(foldText(text))
	if len(lines) == 0 {
		return AmountCandidate{}, false
	}
	for i, l := range lines {
		lines[i] = subTotalSpaced.ReplaceAllString(l, "SUBTOTAL")
	}
	blocks := append(append([]string{}, lines...), strings.Join(lines, " "))
	for i, b := range blocks {
		blocks[i] = datesAndTimes.ReplaceAllString(b, " ")
	}

	for _, block := range blocks {
		for _, rule := range amountRules {
			for _, m := range rule.pattern.FindAllStringSubmatch(block, -1) {
				v, valid := plausibleAmount(m[1])
				if !valid {
					continue
				}
				c := AmountCandidate{Value: v, Priority: rule.priority, SourceLine: block}
				if !ok || c.Priority > best.Priority ||
					(c.Priority == best.Priority && c.Value.GreaterThan(best.Value)) {
					best, ok = c, true
				}
			}
		}
	}
	if ok {
		return best, true
	}

	if c, found := largestCurrencyAmount(lines); found {
		return c, true
	}
	return largestBareAmount(lines)
}

func largestCurrencyAmount(lines []string) (best AmountCandidate, ok bool) {
	for _, line := range lines {
		for _, m := range currencyAmount.FindAllStringSubmatch(line, -1) {
			v, valid := plausibleAmount(m[1])
			if !valid {
				continue
			}
			if !ok || v.GreaterThan(best.Value) {
				best = AmountCandidate{Value: v, Priority: PriorityCurrencyPrefixed, SourceLine: line}
				ok = true
			}
		}
	}
	return best, ok
}

func largestBareAmount(lines []string) (best AmountCandidate, ok bool) {
	for _, line := range lines {
		if identifierLines.MatchString(line) {
			continue
		}
		cleaned := datesAndTimes.ReplaceAllString(line, " ")
		for _, tok := range bareNumber.FindAllString(cleaned, -1) {
			if countDigits(tok) > maxBareDigits {
				continue
			}
			v, valid := plausibleAmount(tok)
			if !valid {
				continue
			}
			if !ok || v.GreaterThan(best.Value) {
				best = AmountCandidate{Value: v, Priority: PriorityBareNumber, SourceLine: line}
				ok = true
			}
		}
	}
	return best, ok
}

// plausibleAmount normalizes a token and applies the sanity window (0, 1e8).
func plausibleAmount(token string) (decimal.Decimal, bool) {
	v, ok := NormalizeNumber(token)
	if !ok || !v.IsPositive() || !v.LessThan(amountCeiling) {
		return decimal.Zero, false
	}
	return v, true
}

// ValidAmount reports whether v falls inside the accepted amount window.
func ValidAmount(v decimal.Decimal) bool {
	return v.IsPositive() && v.LessThan(amountCeiling)
}
