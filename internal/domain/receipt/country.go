package receipt

import (
	"regexp"
	"strings"
)

// Country is an ISO-3166 alpha-3 code for the supported countries. The zero
// value means no confident classification.
type Country string

const (
	CountryNone Country = ""
	CountryARG  Country = "ARG"
	CountryCHL  Country = "CHL"
	CountryURY  Country = "URY"
)

// MinCountryScore is the confidence floor below which ClassifyCountry
// reports no country.
const MinCountryScore = 5

// Countries lists the supported countries in scoring order.
var Countries = []Country{CountryARG, CountryCHL, CountryURY}

// ParseCountry accepts codes and common names ("AR", "Argentina", "arg").
func ParseCountry(s string) (Country, bool) {
	switch foldText(strings.TrimSpace(s)) {
	case "ARG", "AR", "ARGENTINA":
		return CountryARG, true
	case "CHL", "CL", "CHILE":
		return CountryCHL, true
	case "URY", "UY", "URU", "URUGUAY":
		return CountryURY, true
	}
	return CountryNone, false
}

// CountryScore is the summed signal weight of one country for one text.
type CountryScore struct {
	Country Country `json:"country"`
	Score   int     `json:"score"`
}

type countrySignal struct {
	pattern *regexp.Regexp
	weight  int
}

func signal(expr string, weight int) countrySignal {
	return countrySignal{pattern: regexp.MustCompile(expr), weight: weight}
}

// Weights: tax authorities and currencies 12-15, tax-ID terms and VAT rates
// 10-12, operators and country names 10, cities 8.
var countrySignals = map[Country][]countrySignal{
	CountryARG: {
		signal(`\bAFIP\b|\bARCA\b`, 15),
		signal(`\bARS\b|PESOS ARGENTINOS`, 12),
		signal(`\bCUIT\b`, 12),
		signal(`\b(?:20|23|24|27|30|33|34)-\d{8}-\d\b`, 10),
		signal(`\b21(?:[.,]00?)?\s*%`, 12),
		signal(`\b10[.,]5\s*%`, 8),
		signal(`\bCUIL\b`, 8),
		signal(`INGRESOS BRUTOS|\bIIBB\b`, 10),
		signal(`RESPONSABLE INSCRIPTO|MONOTRIBUT`, 10),
		signal(`\bCAE\b`, 8),
		signal(`AUTOPISTAS DEL SOL|\bAUSOL\b|\bAUBASA\b|CORREDORES VIALES|\bYPF\b|\bAXION\b|VIALIDAD NACIONAL`, 10),
		signal(`\bARGENTINA\b`, 10),
		signal(`BUENOS AIRES|\bMENDOZA\b|\bROSARIO\b|\bCORDOBA\b|\bUSPALLATA\b|\bNEUQUEN\b|\bSAN LUIS\b|\bCABA\b`, 8),
	},
	CountryCHL: {
		signal(`\bSII\b`, 15),
		signal(`\bCLP\b|PESOS CHILENOS`, 12),
		signal(`\bRUT\b`, 12),
		signal(`\b\d{1,2}\.\d{3}\.\d{3}-[\dK]\b`, 10),
		signal(`\b19(?:[.,]00?)?\s*%`, 12),
		signal(`BOLETA ELECTRONICA|TIMBRE ELECTRONICO`, 10),
		signal(`\bCOPEC\b|\bPETROBRAS\b|AUTOPISTA CENTRAL|COSTANERA NORTE|VESPUCIO|RUTA 68|AUTOPISTA LOS LIBERTADORES`, 10),
		signal(`\bCHILE\b`, 10),
		signal(`\bSANTIAGO\b|VALPARAISO|LOS ANDES|SAN ANTONIO|ANTOFAGASTA|\bCALAMA\b|\bARICA\b`, 8),
	},
	CountryURY: {
		signal(`\bDGI\b`, 15),
		signal(`\bUYU\b|PESOS URUGUAYOS|\$U\b`, 12),
		signal(`\bRUC\b`, 12),
		signal(`\b22(?:[.,]00?)?\s*%`, 12),
		signal(`\bCFE\b|E-TICKET|E-FACTURA`, 10),
		signal(`\bANCAP\b|CORPORACION VIAL|\bCVU\b`, 10),
		signal(`\bURUGUAY\b`, 10),
		signal(`MONTEVIDEO|FRAY BENTOS|PAYSANDU|\bCOLONIA\b|\bSALTO\b|\bRIVERA\b`, 8),
	},
}

// ScoreCountries sums the weights of every matching signal per country.
// Scores are returned in Countries order.
func ScoreCountries(text string) []CountryScore {
	folded := foldText(text)
	scores := make([]CountryScore, 0, len(Countries))
	for _, c := range Countries {
		total := 0
		for _, s := range countrySignals[c] {
			if s.pattern.MatchString(folded) {
				total += s.weight
			}
		}
		scores = append(scores, CountryScore{Country: c, Score: total})
	}
	return scores
}

// ClassifyCountry returns the best-scoring country, or CountryNone when the
// best score is under MinCountryScore. Ties keep the first country in
// Countries order.
func ClassifyCountry(text string) Country {
	best := CountryScore{}
	for _, s := range ScoreCountries(text) {
		if s.Score > best.Score {
			best = s
		}
	}
	if best.Score < MinCountryScore {
		return CountryNone
	}
	return best.Country
}
