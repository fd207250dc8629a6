package richtext

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"pdfstyle/theme"
)

var (
	roleKeyToProperty = map[string]Property{
		"background_color": PropBackgroundColor,
		"border_color":     PropBorderColor,
		"border_offset":    PropBorderOffset,
		"border_radius":    PropBorderRadius,
		"border_width":     PropBorderWidth,
		"font_color":       PropColor,
		"font_family":      PropFont,
		"font_size":        PropSize,
		"font_style":       PropStyles,
	}

	textDecorations = map[string]Styles{
		"underline":    Underline,
		"line-through": Strikethrough,
	}

	numericSizeRx = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)
)

// packages holds named style packages. Tag packages are merged for button,
// code, key, link and mark elements, class packages for class names.
type packages struct {
	tags    map[string]Style
	classes map[string]Style
}

func fallbackPackages() packages {
	return packages{
		tags: map[string]Style{
			"button": {PropFont: "Courier", PropStyles: Bold},
			"code":   {PropFont: "Courier"},
			"key":    {PropFont: "Courier", PropStyles: Italic},
			"link":   {PropColor: theme.HexColor("0000FF")},
			"mark": {
				PropBackgroundColor: theme.HexColor("FFFF00"),
				PropCallback:        []Callback{TextBackgroundAndBorderRenderer},
			},
		},
		classes: map[string]Style{
			"big":   {PropSize: FontSize{Relative: "1.667em"}},
			"small": {PropSize: FontSize{Relative: "0.8333em"}},
		},
	}
}

func themePackages(th *theme.Theme) packages {
	pkgs := packages{
		tags: map[string]Style{
			"button": boxedPackage(th, "button", ""),
			"code":   boxedPackage(th, "literal", ""),
			"key":    boxedPackage(th, "key", "literal_font_family"),
			"link":   linkPackage(th),
			"mark":   markPackage(th),
		},
		classes: rolePackages(th),
	}
	if _, ok := pkgs.classes["big"]; !ok {
		pkgs.classes["big"] = Style{PropSize: relativeSize(th, "base_font_size_large", "1.1667em")}
	}
	if _, ok := pkgs.classes["small"]; !ok {
		pkgs.classes["small"] = Style{PropSize: relativeSize(th, "base_font_size_small", "0.8333em")}
	}
	return pkgs
}

// boxedPackage builds package for inline elements which may be rendered with
// background and border (button, code, key).
func boxedPackage(th *theme.Theme, prefix, fontFallback string) Style {
	pkg := fontPackage(th, prefix)
	if _, ok := pkg[PropFont]; !ok && fontFallback != "" {
		setString(pkg, PropFont, th, fontFallback)
	}

	bg, hasBg := th.Color(prefix + "_background_color")
	if hasBg {
		pkg[PropBackgroundColor] = bg
	}
	bw, hasBw := th.Number(prefix + "_border_width")
	if hasBw {
		pkg[PropBorderWidth] = bw
		if c, ok := th.Color(prefix + "_border_color"); ok {
			pkg[PropBorderColor] = c
		} else if c, ok := th.Color("base_border_color"); ok {
			pkg[PropBorderColor] = c
		}
	}
	if hasBg || hasBw {
		setNumber(pkg, PropBorderOffset, th, prefix+"_border_offset")
		setNumber(pkg, PropBorderRadius, th, prefix+"_border_radius")
		pkg[PropCallback] = []Callback{TextBackgroundAndBorderRenderer}
	}
	return pkg
}

func linkPackage(th *theme.Theme) Style {
	pkg := fontPackage(th, "link")
	if s := toStyles(th.String("link_font_style"), th.String("link_text_decoration")); s != 0 {
		pkg[PropStyles] = s
	}
	return pkg
}

func markPackage(th *theme.Theme) Style {
	pkg := Style{}
	if c, ok := th.Color("mark_font_color"); ok {
		pkg[PropColor] = c
	}
	if s := toStyles(th.String("mark_font_style"), ""); s != 0 {
		pkg[PropStyles] = s
	}
	if bg, ok := th.Color("mark_background_color"); ok {
		pkg[PropBackgroundColor] = bg
		setNumber(pkg, PropBorderOffset, th, "mark_border_offset")
		pkg[PropCallback] = []Callback{TextBackgroundAndBorderRenderer}
	}
	return pkg
}

// fontPackage picks colour, family, size and style of <prefix>_font_* keys.
func fontPackage(th *theme.Theme, prefix string) Style {
	pkg := Style{}
	if c, ok := th.Color(prefix + "_font_color"); ok {
		pkg[PropColor] = c
	}
	setString(pkg, PropFont, th, prefix+"_font_family")
	if v, ok := th.Get(prefix + "_font_size"); ok {
		pkg[PropSize] = toFontSize(v)
	}
	if s := toStyles(th.String(prefix+"_font_style"), ""); s != 0 {
		pkg[PropStyles] = s
	}
	return pkg
}

// rolePackages collects role_<name>_<key> entries. Role style is kept even when
// empty so that applying role resets inherited styles.
func rolePackages(th *theme.Theme) map[string]Style {
	roles := make(map[string]Style)
	for _, key := range th.KeysWithPrefix("role_") {
		role, prop, ok := strings.Cut(strings.TrimPrefix(key, "role_"), "_")
		if !ok {
			continue
		}
		p, ok := roleKeyToProperty[prop]
		if !ok {
			continue
		}
		v, _ := th.Get(key)
		pkg := roles[role]
		if pkg == nil {
			pkg = Style{}
			roles[role] = pkg
		}
		switch p {
		case PropStyles:
			pkg[p] = toStyles(th.String(key), "")
		case PropSize:
			pkg[p] = toFontSize(v)
		case PropBorderOffset, PropBorderRadius, PropBorderWidth:
			if n, ok := th.Number(key); ok {
				pkg[p] = n
			}
		case PropFont:
			pkg[p] = th.String(key)
		default:
			pkg[p] = v
		}
	}
	return roles
}

// relativeSize derives size relative to base font size, e.g. 13.5 / 12 ->
// "1.125em".
func relativeSize(th *theme.Theme, key, fallback string) FontSize {
	size, ok := th.Number(key)
	base, baseOK := th.Number("base_font_size")
	if !ok || !baseOK || base == 0 {
		return FontSize{Relative: fallback}
	}
	ratio := math.Round(size/base*10000) / 10000
	return FontSize{Relative: formatRatio(ratio) + "em"}
}

func formatRatio(f float64) string {
	if f == math.Trunc(f) {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func toStyles(fontStyle, textDecoration string) Styles {
	var s Styles
	switch fontStyle {
	case "bold":
		s = Bold
	case "italic":
		s = Italic
	case "bold_italic":
		s = Bold | Italic
	}
	return s | textDecorations[textDecoration]
}

func toFontSize(v any) FontSize {
	switch n := v.(type) {
	case int:
		return FontSize{Points: float64(n)}
	case float64:
		return FontSize{Points: n}
	}
	s := fmt.Sprint(v)
	if numericSizeRx.MatchString(s) {
		f, _ := strconv.ParseFloat(s, 64)
		return FontSize{Points: f}
	}
	return FontSize{Relative: s}
}

func setString(pkg Style, p Property, th *theme.Theme, key string) {
	if th.Has(key) {
		pkg[p] = th.String(key)
	}
}

func setNumber(pkg Style, p Property, th *theme.Theme, key string) {
	if n, ok := th.Number(key); ok {
		pkg[p] = n
	}
}
