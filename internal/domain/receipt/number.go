package receipt

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	currencyPrefix = regexp.MustCompile(`(?i)^(?:US\$|U\$S|\$U|\$|ARS|CLP|UYU|USD)\s*`)
	plainNumber    = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
)

// NormalizeNumber parses a numeric token written in any of the regional
// conventions found on receipts ("1.234,56", "1,234.56", "$ 1.234", "12,5").
// A leading currency symbol is stripped first. ok is false when the token is
// not a non-negative number.
//
// Separator rules, in order:
//   - one '.' and one ',': the rightmost one is the decimal point
//   - a single ',': decimal point when followed by at most two digits,
//     thousands separator otherwise
//   - a single '.': thousands separator when followed by exactly three
//     digits, decimal point otherwise
//   - a separator repeated two or more times is a thousands separator
func NormalizeNumber(token string) (value decimal.Decimal, ok bool) {
	s := currencyPrefix.ReplaceAllString(strings.TrimSpace(token), "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimRight(s, ".,")
	if s == "" {
		return decimal.Zero, false
	}

	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")

	switch {
	case dots == 1 && commas == 1:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case dots == 0 && commas == 1:
		if len(s)-strings.Index(s, ",")-1 <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.Replace(s, ",", "", 1)
		}
	case commas == 0 && dots == 1:
		if len(s)-strings.Index(s, ".")-1 == 3 {
			s = strings.Replace(s, ".", "", 1)
		}
	case dots >= 2 || commas >= 2:
		if dots >= 2 {
			s = strings.ReplaceAll(s, ".", "")
		}
		if commas >= 2 {
			s = strings.ReplaceAll(s, ",", "")
		}
		// whatever single separator is left over marks the decimals
		s = strings.Replace(s, ",", ".", 1)
	}

	if !plainNumber.MatchString(s) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// countDigits returns the number of ASCII digits in s.
func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
