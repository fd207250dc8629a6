package richtext

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"pdfstyle/theme"
)

var (
	hrefCharRefRx = regexp.MustCompile(`&(?:(amp|apos|gt|lt|nbsp|quot)|#(?:(\d\d\d{0,4})|x([a-f\d][a-f\d][a-f\d]{0,3})));`)
	leadingIntRx  = regexp.MustCompile(`^\s*[-+]?\d+`)
)

var tagStyles = map[string]Styles{
	"strong": Bold,
	"em":     Italic,
	"sub":    Subscript,
	"sup":    Superscript,
	"del":    Strikethrough,
}

// build derives context for children of element from inherited context.
// inherited is never modified.
func (t *Transformer) build(inherited Style, tag string, attrs map[string]string) Style {
	style := inherited.Clone()
	if style == nil {
		style = Style{}
	}
	style[PropStyles] = style.Styles()

	if f, ok := tagStyles[tag]; ok {
		style.addStyles(f)
	}
	switch tag {
	case "button", "code", "key", "mark":
		style.merge(t.pkgs.tags[tag])
	case "color":
		t.applyColor(style, attrs)
	case "font":
		applyFont(style, attrs)
	case "a":
		t.applyAnchor(style, attrs)
	case "span":
		if decl, ok := attrs["style"]; ok {
			t.applySpanStyle(style, decl)
		}
	}
	if classes, ok := attrs["class"]; ok {
		t.applyClasses(style, classes)
	}

	if style.Styles() == 0 {
		delete(style, PropStyles)
	}
	return style
}

func (t *Transformer) applyColor(style Style, attrs map[string]string) {
	if rgb := attrs["rgb"]; rgb != "" {
		switch rgb[0] {
		case '#':
			t.setHexColor(style, rgb[1:])
		case '[':
			parts := strings.Split(strings.TrimSuffix(rgb[1:], "]"), ",")
			if len(parts) != 4 {
				t.log.Debug("Unsupported color list", zap.String("rgb", rgb))
				return
			}
			var c theme.CMYKColor
			for i, p := range parts {
				c[i] = float64(leadingInt(p))
			}
			style[PropColor] = c
		default:
			t.setHexColor(style, rgb)
		}
		return
	}
	if r, g, b, ok := attrTriple(attrs, "r", "g", "b"); ok {
		style[PropColor] = theme.RGB(leadingInt(r), leadingInt(g), leadingInt(b))
		return
	}
	c, cok := attrs["c"]
	m, mok := attrs["m"]
	y, yok := attrs["y"]
	k, kok := attrs["k"]
	if cok && mok && yok && kok {
		style[PropColor] = theme.CMYKColor{
			float64(leadingInt(c)), float64(leadingInt(m)), float64(leadingInt(y)), float64(leadingInt(k)),
		}
	}
}

func (t *Transformer) setHexColor(style Style, s string) {
	c, ok := theme.ParseHexColor(s)
	if !ok {
		t.log.Debug("Ignoring unsupported color", zap.String("color", s))
		return
	}
	style[PropColor] = c
}

func applyFont(style Style, attrs map[string]string) {
	if name, ok := attrs["name"]; ok {
		style[PropFont] = name
	}
	if size, ok := attrs["size"]; ok {
		switch {
		case numericSizeRx.MatchString(size):
			f, _ := strconv.ParseFloat(size, 64)
			style[PropSize] = FontSize{Points: f}
		case size != "1em":
			style[PropSize] = FontSize{Relative: size}
		}
	}
	if width, ok := attrs["width"]; ok {
		style[PropWidth] = width
		if align, ok := attrs["align"]; ok {
			style[PropAlign] = align
			style.addCallback(InlineTextAligner)
		}
	}
}

// applyAnchor handles anchor, href and name attributes which are mutually
// exclusive, checked in that order. Named destinations are invisible and do
// not take link style.
func (t *Transformer) applyAnchor(style Style, attrs map[string]string) {
	visible := true
	if anchor, ok := attrs["anchor"]; ok {
		style[PropAnchor] = anchor
	} else if href, ok := attrs["href"]; ok {
		if strings.Contains(href, ";") {
			href = decodeCharRefs(href)
		}
		style[PropLink] = href
	} else if name, ok := attrs["name"]; ok {
		style[PropName] = name
		if typ, ok := attrs["type"]; ok {
			style[PropType] = typ
		}
		style.addCallback(InlineDestinationMarker)
		visible = false
	}
	if visible {
		style.merge(t.pkgs.tags["link"])
	}
}

func (t *Transformer) applySpanStyle(style Style, decl string) {
	for _, d := range t.css.ParseDeclarations(decl) {
		switch d.Property {
		case "color":
			if _, ok := style[PropColor]; ok {
				continue
			}
			switch {
			case len(d.Value) == 6:
				t.setHexColor(style, d.Value)
			case len(d.Value) == 7 && d.Value[0] == '#':
				t.setHexColor(style, d.Value[1:])
			}
		case "font-weight":
			if d.Value == "bold" {
				style.addStyles(Bold)
			}
		case "font-style":
			if d.Value == "italic" {
				style.addStyles(Italic)
			}
		}
	}
}

func (t *Transformer) applyClasses(style Style, classes string) {
	for _, class := range strings.Fields(classes) {
		if f, ok := textDecorations[class]; ok {
			style.addStyles(f)
			continue
		}
		if pkg, ok := t.pkgs.classes[class]; ok {
			style.merge(pkg)
		}
		_, hasBg := style[PropBackgroundColor]
		_, hasBorderColor := style[PropBorderColor]
		_, hasBorderWidth := style[PropBorderWidth]
		if hasBg || (hasBorderColor && hasBorderWidth) {
			style.addCallback(TextBackgroundAndBorderRenderer)
		}
	}
}

func decodeCharRefs(s string) string {
	return hrefCharRefRx.ReplaceAllStringFunc(s, func(ref string) string {
		m := hrefCharRefRx.FindStringSubmatch(ref)
		var n int64
		switch {
		case m[1] != "":
			return charEntities[m[1]]
		case m[2] != "":
			n, _ = strconv.ParseInt(m[2], 10, 32)
		default:
			n, _ = strconv.ParseInt(m[3], 16, 32)
		}
		return string(rune(n))
	})
}

func attrTriple(attrs map[string]string, a, b, c string) (string, string, string, bool) {
	va, aok := attrs[a]
	vb, bok := attrs[b]
	vc, cok := attrs[c]
	return va, vb, vc, aok && bok && cok
}

// leadingInt parses leading integer of s, anything unparsable is 0.
func leadingInt(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(leadingIntRx.FindString(s)))
	return n
}
