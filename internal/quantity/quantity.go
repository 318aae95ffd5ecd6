// Package quantity implements KigaliSim's (value, units) pair and the unit
// string normalization rules shared by the converter and stream keeper.
package quantity

import (
	"fmt"
	"strings"

	"github.com/example/kigalisim/internal/decimalx"
)

// Quantity pairs a decimal value with a unit string. Units are either a bare
// token ("kg", "unit", "tCO2e", "%", ...), a ratio "A/B", or empty.
type Quantity struct {
	Value decimalx.D
	Units string
}

// New constructs a Quantity.
func New(value decimalx.D, units string) Quantity {
	return Quantity{Value: value, Units: units}
}

// Zero returns a zero-valued quantity in the given units.
func Zero(units string) Quantity {
	return Quantity{Value: decimalx.Zero, Units: units}
}

// IsZero reports whether the quantity's value is exactly zero, regardless
// of units.
func (q Quantity) IsZero() bool {
	return decimalx.IsZero(q.Value)
}

// String renders the quantity for diagnostics, e.g. "12.5 kg".
func (q Quantity) String() string {
	return fmt.Sprintf("%s %s", q.Value.String(), q.Units)
}

// =============================================================================
// Unit Normalization
// =============================================================================

// Normalized is the parsed, whitespace-stripped form of a unit string.
type Normalized struct {
	// Numerator is the unit before any "/".
	Numerator string
	// Denominator is the unit after "/", or "" if the source had none.
	Denominator string
	// HasDenominator is true when the source contained a "/".
	HasDenominator bool
	// EachYear records whether the source had an "eachyear" qualifier,
	// which is stripped from the semantic base unit but preserved as a flag.
	EachYear bool
}

// Normalize strips whitespace, drops a trailing "eachyear" qualifier
// (recording it as a flag), and splits at the first "/". It is the single
// place that parses a unit string; callers should intern the result rather
// than re-parsing repeatedly in hot loops.
func Normalize(units string) Normalized {
	stripped := stripWhitespace(units)

	eachYear := false
	if rest, ok := trimSuffixFold(stripped, "eachyear"); ok {
		eachYear = true
		stripped = rest
	}

	numer, denom, hasDenom := splitOnce(stripped, "/")
	return Normalized{
		Numerator:      numer,
		Denominator:    denom,
		HasDenominator: hasDenom,
		EachYear:       eachYear,
	}
}

// String reconstructs a canonical (whitespace-free) unit string.
func (n Normalized) String() string {
	if !n.HasDenominator {
		return n.Numerator
	}
	return n.Numerator + "/" + n.Denominator
}

// SameUnits reports whether two unit strings are equal after normalization.
func SameUnits(a, b string) bool {
	return Normalize(a).String() == Normalize(b).String()
}

// CombineMul returns the unit string for a*b, combined lexically (e.g.
// "kg" * "1/year" -> "kg/year"); normalization of the result into a
// directly usable unit is the Unit Converter's job, not this package's.
func CombineMul(a, b string) string {
	na, nb := Normalize(a), Normalize(b)

	// a is a plain unit, b is a ratio: a * (n/d) => (a*n)/d, with "1"
	// numerators treated as identity.
	switch {
	case !na.HasDenominator && nb.HasDenominator:
		return combineTerm(na.Numerator, nb.Numerator) + "/" + nb.Denominator
	case na.HasDenominator && !nb.HasDenominator:
		return combineTerm(na.Numerator, nb.Numerator) + "/" + na.Denominator
	case !na.HasDenominator && !nb.HasDenominator:
		return combineTerm(na.Numerator, nb.Numerator)
	default:
		// both ratios: (n1/d1)*(n2/d2) => (n1*n2)/(d1*d2)
		return combineTerm(na.Numerator, nb.Numerator) + "/" + combineTerm(na.Denominator, nb.Denominator)
	}
}

// CombineDiv returns the unit string for a/b.
func CombineDiv(a, b string) string {
	nb := Normalize(b)
	inverse := nb.Numerator
	if nb.HasDenominator {
		inverse = nb.Denominator + "/" + nb.Numerator
	} else {
		inverse = "1/" + nb.Numerator
	}
	return CombineMul(a, inverse)
}

func combineTerm(a, b string) string {
	switch {
	case a == "" || a == "1":
		return b
	case b == "" || b == "1":
		return a
	default:
		return a + "*" + b
	}
}

func stripWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func trimSuffixFold(s, suffix string) (string, bool) {
	if len(s) < len(suffix) {
		return s, false
	}
	tail := s[len(s)-len(suffix):]
	if strings.EqualFold(tail, suffix) {
		return s[:len(s)-len(suffix)], true
	}
	return s, false
}

func splitOnce(s, sep string) (before, after string, found bool) {
	idx := strings.Index(s, sep)
	if idx < 0 {
		return s, "", false
	}
	return s[:idx], s[idx+len(sep):], true
}
