package theme

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Color is a resolved colour value. Any key ending in "_color" holds a Color
// (or remains unset) once the theme is resolved.
type Color interface {
	String() string
	isColor()
}

// HexColor is an RGB colour written as 6 upper-case hexadecimal digits.
type HexColor string

func (c HexColor) String() string { return string(c) }
func (HexColor) isColor()         {}

// CMYKColor holds cyan, magenta, yellow and black components in the [0,100] range.
type CMYKColor [4]float64

func (c CMYKColor) String() string {
	parts := make([]string, len(c))
	for i, v := range c {
		parts[i] = formatNumber(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (CMYKColor) isColor() {}

// ParseHexColor normalizes a hex colour literal (optionally prefixed with '#').
// The second return value is false when s is not made of hex digits.
func ParseHexColor(s string) (HexColor, bool) {
	s = strings.TrimPrefix(s, "#")
	if !isHex(s) {
		return "", false
	}
	switch n := len(s); {
	case n == 6:
	case n == 3:
		var b strings.Builder
		for _, c := range s {
			b.WriteRune(c)
			b.WriteRune(c)
		}
		s = b.String()
	case n > 6:
		s = s[:6]
	default:
		s = strings.Repeat("0", 6-n) + s
	}
	return HexColor(strings.ToUpper(s)), true
}

// RGB encodes 8-bit components as a HexColor, clamping out of range values.
func RGB(r, g, b int) HexColor {
	clamp := func(v int) int { return min(max(v, 0), 255) }
	return HexColor(fmt.Sprintf("%02X%02X%02X", clamp(r), clamp(g), clamp(b)))
}

// CMYK builds a CMYKColor clamping each component to [0,100] and rounding to
// 2 decimal places.
func CMYK(c, m, y, k float64) CMYKColor {
	var out CMYKColor
	for i, v := range [4]float64{c, m, y, k} {
		out[i] = math.Round(min(max(v, 0), 100)*100) / 100
	}
	return out
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// toColor coerces a value stored under a "_color" key. Values which do not look
// like any supported notation are returned unchanged.
func toColor(value any, log *zap.Logger) any {
	var s string
	switch v := value.(type) {
	case nil:
		return nil
	case Color:
		return v
	case []any:
		switch len(v) {
		case 4:
			return cmykFromList(v)
		case 3:
			return rgbFromList(v)
		}
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = formatValue(e)
		}
		s = strings.Join(parts, "")
	case string:
		s = v
	case int:
		s = strconv.Itoa(v)
	default:
		s = formatValue(v)
	}
	if c, ok := ParseHexColor(s); ok {
		return c
	}
	log.Debug("Unsupported color format, keeping value as is", zap.Any("value", value))
	return value
}

func cmykFromList(list []any) Color {
	var comps [4]float64
	for i, e := range list {
		switch v := e.(type) {
		case int:
			comps[i] = fractionToPercent(float64(v))
		case float64:
			comps[i] = fractionToPercent(v)
		default:
			comps[i], _ = strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(formatValue(v)), "%"), 64)
		}
	}
	c := CMYK(comps[0], comps[1], comps[2], comps[3])
	switch c {
	case CMYKColor{0, 0, 0, 0}:
		return HexColor("FFFFFF")
	case CMYKColor{100, 100, 100, 100}:
		return HexColor("000000")
	}
	return c
}

// fractionToPercent scales numeric components written as fractions (0..1).
func fractionToPercent(v float64) float64 {
	if v > 1 {
		return v
	}
	return v * 100
}

func rgbFromList(list []any) HexColor {
	var comps [3]int
	for i, e := range list {
		switch v := e.(type) {
		case int:
			comps[i] = v
		case float64:
			comps[i] = int(v)
		default:
			n, _ := strconv.ParseFloat(strings.TrimSpace(formatValue(v)), 64)
			comps[i] = int(n)
		}
	}
	return RGB(comps[0], comps[1], comps[2])
}
