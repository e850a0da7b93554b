// Package units normalizes measurement unit spellings and converts weights
// and volumes to grams.
package units

import "math"

// Unit is a canonical measurement unit.
type Unit string

const (
	Gram       Unit = "g"
	Kilogram   Unit = "kg"
	Milligram  Unit = "mg"
	Liter      Unit = "l"
	Milliliter Unit = "ml"
	Centiliter Unit = "cl"
	Deciliter  Unit = "dl"
	Ounce      Unit = "oz"
	Pound      Unit = "lb"
	Pieces     Unit = "pieces"
	Units      Unit = "units"
	Count      Unit = "count"
)

// unitAliases maps every accepted spelling (lowercase) to its canonical unit.
// Covers English and French, singular and plural, plus common abbreviations.
var unitAliases = map[string]Unit{
	"g":           Gram,
	"gr":          Gram,
	"gram":        Gram,
	"grams":       Gram,
	"gramme":      Gram,
	"grammes":     Gram,
	"kg":          Kilogram,
	"kilo":        Kilogram,
	"kilos":       Kilogram,
	"kilogram":    Kilogram,
	"kilograms":   Kilogram,
	"kilogramme":  Kilogram,
	"kilogrammes": Kilogram,
	"mg":          Milligram,
	"milligram":   Milligram,
	"milligrams":  Milligram,
	"milligramme": Milligram,
	"l":           Liter,
	"litre":       Liter,
	"litres":      Liter,
	"liter":       Liter,
	"liters":      Liter,
	"ml":          Milliliter,
	"millilitre":  Milliliter,
	"millilitres": Milliliter,
	"milliliter":  Milliliter,
	"milliliters": Milliliter,
	"cl":          Centiliter,
	"centilitre":  Centiliter,
	"centilitres": Centiliter,
	"centiliter":  Centiliter,
	"dl":          Deciliter,
	"decilitre":   Deciliter,
	"decilitres":  Deciliter,
	"deciliter":   Deciliter,
	"oz":          Ounce,
	"ounce":       Ounce,
	"ounces":      Ounce,
	"lb":          Pound,
	"pound":       Pound,
	"pounds":      Pound,
	"piece":       Pieces,
	"pieces":      Pieces,
	"pièce":       Pieces,
	"pièces":      Pieces,
	"pcs":         Pieces,
	"pc":          Pieces,
	"unit":        Units,
	"units":       Units,
	"unité":       Units,
	"unités":      Units,
	"count":       Count,
}

// gramFactors converts a value in the keyed unit to grams. Volume units
// assume water-like density, matching upstream catalog conventions.
// Counting units have no factor.
var gramFactors = map[Unit]float64{
	Gram:       1,
	Kilogram:   1000,
	Milligram:  0.001,
	Ounce:      28.35,
	Pound:      453.59,
	Milliliter: 1,
	Centiliter: 10,
	Deciliter:  100,
	Liter:      1000,
}

// Normalize maps a raw unit spelling to its canonical unit. The input must
// already be lowercased and trimmed.
func Normalize(raw string) (Unit, bool) {
	u, ok := unitAliases[raw]
	return u, ok
}

// IsCounting reports whether the unit counts items rather than measuring
// mass or volume.
func IsCounting(u Unit) bool {
	return u == Pieces || u == Units || u == Count
}

// ToGrams converts a value in the given unit to grams, rounded to 3 decimal
// places. Counting units and unknown units return nil.
func ToGrams(value float64, u Unit) *float64 {
	factor, ok := gramFactors[u]
	if !ok {
		return nil
	}
	grams := Round3(value * factor)
	return &grams
}

// Round3 rounds to 3 decimal places, the precision used for all stored
// numeric fields.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
