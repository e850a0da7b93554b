// Package quantity parses free-text product quantity strings like "2 x 100g",
// "500ml" or "12 pieces" into a numeric value and a canonical unit.
package quantity

import (
	"regexp"
	"strconv"
	"strings"

	"food-scanner/internal/transform/units"
)

// PatternNoMatch is reported when no pattern in the cascade applied.
const PatternNoMatch = "no_pattern_matched"

// Result is the outcome of parsing one quantity string. Value is nil when
// nothing numeric could be extracted; Unit is empty when the string carried
// no recognizable unit. Pattern names the cascade entry that matched.
type Result struct {
	Value   *float64
	Unit    units.Unit
	Pattern string
}

type extractor func(m []string) Result

type pattern struct {
	name    string
	re      *regexp.Regexp
	extract extractor
}

const measureUnits = `g|kg|mg|l|ml|cl|dl|oz|lb`

// patterns is the ordered cascade. The first entry whose regexp matches wins;
// later entries never see the input.
var patterns = []pattern{
	{
		name: "multiply_with_unit",
		re:   regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[×x*]\s*(\d+(?:\.\d+)?)\s*(` + measureUnits + `)\b`),
		extract: func(m []string) Result {
			v1 := mustFloat(m[1])
			v2 := mustFloat(m[2])
			u, _ := units.Normalize(m[3])
			return value(v1*v2, u)
		},
	},
	{
		name: "multiply_simple",
		re:   regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[×x*]\s*(\d+(?:\.\d+)?)\s*$`),
		extract: func(m []string) Result {
			return value(mustFloat(m[1])*mustFloat(m[2]), "")
		},
	},
	{
		// Checked before standard_unit, which would otherwise match the
		// upper bound of "300-400g".
		name: "range_with_unit",
		re:   regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[-–]\s*(\d+(?:\.\d+)?)\s*(` + measureUnits + `)\b`),
		extract: func(m []string) Result {
			// Lower bound of the range is the conservative reading.
			u, _ := units.Normalize(m[3])
			return value(mustFloat(m[1]), u)
		},
	},
	{
		name: "standard_unit",
		re:   regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(` + measureUnits + `)\b`),
		extract: func(m []string) Result {
			u, _ := units.Normalize(m[2])
			return value(mustFloat(m[1]), u)
		},
	},
	{
		name: "count_format",
		re:   regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(pieces?|units?|pcs|count)\b`),
		extract: func(m []string) Result {
			u, _ := units.Normalize(m[2])
			return value(mustFloat(m[1]), u)
		},
	},
	{
		name: "attached_unit",
		re:   regexp.MustCompile(`^(\d+(?:\.\d+)?)([a-zè]+)$`),
		extract: func(m []string) Result {
			v := mustFloat(m[1])
			if u, ok := units.Normalize(m[2]); ok {
				return value(v, u)
			}
			r := value(v, "")
			r.Pattern = "attached_unit_unknown_unit"
			return r
		},
	},
	{
		name: "number_only",
		re:   regexp.MustCompile(`^(\d+(?:\.\d+)?)$`),
		extract: func(m []string) Result {
			return value(mustFloat(m[1]), "")
		},
	},
	{
		name: "localized_unit",
		re:   regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(grammes?|gram(?:me)?s?|gr|kilo(?:gramme)?s?|litres?|liters?|millilitres?|centilitres?|decilitres?|pièces?|unités?|ounces?|pounds?)\b`),
		extract: func(m []string) Result {
			v := mustFloat(m[1])
			if u, ok := units.Normalize(m[2]); ok {
				return value(v, u)
			}
			return value(v, "")
		},
	},
}

// Parse runs the pattern cascade over a raw quantity string. It never fails:
// an unparseable input yields a Result with a nil value and PatternNoMatch.
func Parse(raw string) Result {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return Result{Pattern: PatternNoMatch}
	}

	for _, p := range patterns {
		m := p.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		r := p.extract(m)
		if r.Pattern == "" {
			r.Pattern = p.name
		}
		return r
	}

	return Result{Pattern: PatternNoMatch}
}

// Grams converts a parse result to grams where the unit allows it.
func (r Result) Grams() *float64 {
	if r.Value == nil || r.Unit == "" {
		return nil
	}
	return units.ToGrams(*r.Value, r.Unit)
}

func value(v float64, u units.Unit) Result {
	rounded := units.Round3(v)
	return Result{Value: &rounded, Unit: u}
}

func mustFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
