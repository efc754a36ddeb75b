package receipt

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ISODate is the layout of every date the pipeline emits.
const ISODate = "2006-01-02"

var (
	dayFirstDate = regexp.MustCompile(`\b(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4}|\d{2})\b`)
	isoDate      = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	expiryLine   = regexp.MustCompile(`\bVTO\b|\bVENC|\bCAI\b|\bCAE\b|VALIDO HASTA|\bEXPIRA|FECHA LIMITE`)
	issueLine    = regexp.MustCompile(`\bFECHA\b|\bFEC\b|EMISION|\bEMITIDO`)
)

// ExtractDate returns the transaction date of a receipt as YYYY-MM-DD, or ""
// when none is found. Dates on expiry or authorization lines (CAI/CAE due
// dates) are ignored; a date on a line labelled as the issue date wins over
// any other.
func ExtractDate(text string) string {
	first := ""
	for _, line := range splitLines(foldText(text)) {
		if expiryLine.MatchString(line) {
			continue
		}
		d := firstDateIn(line)
		if d == "" {
			continue
		}
		if issueLine.MatchString(line) {
			return d
		}
		if first == "" {
			first = d
		}
	}
	return first
}

// NormalizeDate converts "2024-03-05", "05/03/2024", "5-3-24" and similar
// into ISO form. It returns "" for anything that is not a real calendar date.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(ISODate)
	}
	return firstDateIn(s)
}

func firstDateIn(s string) string {
	for _, m := range isoDate.FindAllStringSubmatch(s, -1) {
		if d, ok := buildDate(m[1], m[2], m[3]); ok {
			return d
		}
	}
	for _, m := range dayFirstDate.FindAllStringSubmatch(s, -1) {
		if d, ok := buildDate(m[3], m[2], m[1]); ok {
			return d
		}
	}
	return ""
}

func buildDate(year, month, day string) (string, bool) {
	y, err1 := strconv.Atoi(year)
	m, err2 := strconv.Atoi(month)
	d, err3 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || err3 != nil {
		return "", false
	}
	if len(year) == 2 {
		y += 2000
	}
	if y < 1990 || y > 2100 || m < 1 || m > 12 || d < 1 {
		return "", false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes 31/02 into March; reject that
	if t.Day() != d || int(t.Month()) != m {
		return "", false
	}
	return t.Format(ISODate), true
}
