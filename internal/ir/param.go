package ir

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Param is a gate parameter: either a bound angle or an unbound symbol.
//
// Unbound parameters flag their node as parameterized; no algebra is ever
// applied to them.
type Param struct {
	Value  float64 `json:"value,omitempty"`
	Symbol string  `json:"symbol,omitempty"`
}

// Angle returns a bound parameter.
func Angle(v float64) Param {
	return Param{Value: v}
}

// Symbol returns an unbound parameter.
func Symbol(name string) Param {
	return Param{Symbol: name}
}

// Angles converts bound values into parameters. No values yields nil.
func Angles(values ...float64) []Param {
	if len(values) == 0 {
		return nil
	}
	params := make([]Param, len(values))
	for i, v := range values {
		params[i] = Angle(v)
	}
	return params
}

// IsBound reports whether the parameter carries a numeric value.
func (p Param) IsBound() bool {
	return p.Symbol == ""
}

// Neg negates the parameter. Symbols toggle a leading minus sign.
func (p Param) Neg() Param {
	if p.IsBound() {
		return Angle(-p.Value)
	}
	if strings.HasPrefix(p.Symbol, "-") {
		return Symbol(p.Symbol[1:])
	}
	return Symbol("-" + p.Symbol)
}

// String formats the parameter, using pi notation for common fractions.
func (p Param) String() string {
	if !p.IsBound() {
		return p.Symbol
	}
	return FormatAngle(p.Value)
}

// piForms lists the pi fractions rendered symbolically.
var piForms = []struct {
	value   float64
	display string
}{
	{2 * math.Pi, "2*pi"},
	{math.Pi, "pi"},
	{math.Pi / 2, "pi/2"},
	{math.Pi / 3, "pi/3"},
	{math.Pi / 4, "pi/4"},
	{math.Pi / 6, "pi/6"},
	{math.Pi / 8, "pi/8"},
	{3 * math.Pi / 4, "3*pi/4"},
	{3 * math.Pi / 2, "3*pi/2"},
	{2 * math.Pi / 3, "2*pi/3"},
}

// FormatAngle renders an angle, recognizing common pi fractions.
func FormatAngle(v float64) string {
	for _, pf := range piForms {
		if math.Abs(v-pf.value) < 1e-10 {
			return pf.display
		}
		if math.Abs(v+pf.value) < 1e-10 {
			return "-" + pf.display
		}
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// piExprRegex matches pi, 2pi, 2*pi, pi/2, 3*pi/4, -pi/2 and similar.
var piExprRegex = regexp.MustCompile(`^(-?)(\d*\.?\d*)\s*\*?\s*pi(?:\s*/\s*(\d+\.?\d*))?$`)

// symbolRegex matches an identifier with an optional leading minus sign.
var symbolRegex = regexp.MustCompile(`^-?[A-Za-z_][A-Za-z0-9_]*$`)

// ParseParam parses a plain number, a pi expression, or a symbol name.
func ParseParam(s string) (Param, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Param{}, fmt.Errorf("empty parameter")
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return Angle(v), nil
	}

	if m := piExprRegex.FindStringSubmatch(strings.ToLower(s)); m != nil {
		coeff := 1.0
		if m[2] != "" {
			c, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				return Param{}, fmt.Errorf("invalid coefficient in %q", s)
			}
			coeff = c
		}
		v := coeff * math.Pi
		if m[3] != "" {
			d, err := strconv.ParseFloat(m[3], 64)
			if err != nil || d == 0 {
				return Param{}, fmt.Errorf("invalid denominator in %q", s)
			}
			v /= d
		}
		if m[1] == "-" {
			v = -v
		}
		return Angle(v), nil
	}

	if symbolRegex.MatchString(s) {
		return Symbol(s), nil
	}
	return Param{}, fmt.Errorf("invalid parameter %q", s)
}
