package theme

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var (
	variableRx     = regexp.MustCompile(`\$([a-z0-9_-]+)`)
	loneVariableRx = regexp.MustCompile(`^\$([a-z0-9_-]+)$`)

	// Operators must be surrounded by spaces, "ten*10" stays a string.
	mulDivOpRx = regexp.MustCompile(`(-?\d+(?:\.\d+)?) +([*/]) +(-?\d+(?:\.\d+)?)`)
	addSubOpRx = regexp.MustCompile(`(-?\d+(?:\.\d+)?) +([+\-]) +(-?\d+(?:\.\d+)?)`)

	precisionFuncRx  = regexp.MustCompile(`^(round|floor|ceil)\((.*)\)$`)
	measurementRx    = regexp.MustCompile(`(^|[ (])(-?\d+(?:\.\d+)?)(in|mm|cm|p[txc])($|[ )])`)
	measurementUnits = map[string]float64{
		"in": 72,
		"mm": 72 / 25.4,
		"cm": 72 / 2.54,
		"pt": 1,
		"pc": 12,
		"px": 0.75,
	}

	errDivisionByZero = errors.New("division by zero")
)

// expandVars substitutes variable references in expr with values resolved so
// far. A lone reference yields referenced value with its type intact.
func (b *builder) expandVars(key, expr string) (any, error) {
	if !strings.Contains(expr, "$") {
		return expr, nil
	}
	if m := loneVariableRx.FindStringSubmatch(expr); m != nil {
		if v, ok := b.lookup(m[1]); ok {
			return v, nil
		}
		return expr, b.unresolved(key, expr)
	}
	var err error
	out := variableRx.ReplaceAllStringFunc(expr, func(ref string) string {
		if v, ok := b.lookup(ref[1:]); ok {
			return formatValue(v)
		}
		if e := b.unresolved(key, ref); e != nil && err == nil {
			err = e
		}
		return ref
	})
	return out, err
}

func (b *builder) lookup(name string) (any, bool) {
	v, ok := b.values[strings.ReplaceAll(name, "-", "_")]
	return v, ok
}

func (b *builder) unresolved(key, ref string) error {
	if b.policy == ReferencesStrict {
		return &UnresolvedReferenceError{Key: key, Ref: ref}
	}
	b.log.Warn("Unknown variable reference in theme", zap.String("key", key), zap.String("reference", ref))
	return nil
}

// evaluate resolves references and arithmetic in strings, recursing into lists.
func (b *builder) evaluate(key string, value any) (any, error) {
	switch v := value.(type) {
	case string:
		expanded, err := b.expandVars(key, v)
		if err != nil {
			return nil, err
		}
		out, err := evaluateMath(expanded)
		if err != nil {
			b.log.Warn("Unable to compute theme value, keeping it as is",
				zap.String("key", key), zap.String("value", fmt.Sprint(expanded)), zap.Error(err))
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			r, err := b.evaluate(key, e)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}
	return value, nil
}

// evaluateMath computes arithmetic expressions and precision functions. Value
// is returned unchanged when there is nothing to compute or computation fails.
func evaluateMath(value any) (any, error) {
	expr, ok := value.(string)
	if !ok {
		return value, nil
	}
	original := expr

	var precision string
	if m := precisionFuncRx.FindStringSubmatch(expr); m != nil {
		precision, expr = m[1], m[2]
	}
	expr, err := computeArithmetic(resolveMeasurements(expr))
	if err != nil {
		return original, err
	}

	if precision != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(expr), 64)
		if err != nil {
			return original, nil
		}
		switch precision {
		case "ceil":
			f = math.Ceil(f)
		case "floor":
			f = math.Floor(f)
		case "round":
			f = math.Round(f)
		}
		return int(f), nil
	}
	if expr == original {
		return original, nil
	}
	if f, err := strconv.ParseFloat(expr, 64); err == nil {
		return numberValue(f), nil
	}
	return expr, nil
}

// resolveMeasurements converts values with absolute units to points (0.5in -> 36).
func resolveMeasurements(expr string) string {
	for {
		out := measurementRx.ReplaceAllStringFunc(expr, func(s string) string {
			m := measurementRx.FindStringSubmatch(s)
			n, _ := strconv.ParseFloat(m[2], 64)
			return m[1] + formatNumber(n*measurementUnits[m[3]]) + m[4]
		})
		if out == expr {
			return out
		}
		expr = out
	}
}

func computeArithmetic(expr string) (string, error) {
	expr, err := reduce(expr, mulDivOpRx)
	if err != nil {
		return expr, err
	}
	return reduce(expr, addSubOpRx)
}

// reduce computes leftmost operation matched by rx until none is left, so
// operators of the same precedence associate to the left.
func reduce(expr string, rx *regexp.Regexp) (string, error) {
	for {
		m := rx.FindStringSubmatchIndex(expr)
		if m == nil {
			return expr, nil
		}
		a, _ := strconv.ParseFloat(expr[m[2]:m[3]], 64)
		c, _ := strconv.ParseFloat(expr[m[6]:m[7]], 64)
		var r float64
		switch expr[m[4]:m[5]] {
		case "*":
			r = a * c
		case "/":
			if c == 0 {
				return expr, errDivisionByZero
			}
			r = a / c
		case "+":
			r = a + c
		case "-":
			r = a - c
		}
		expr = expr[:m[0]] + formatNumber(r) + expr[m[1]:]
	}
}
