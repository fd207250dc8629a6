package richtext

import (
	"slices"

	"pdfstyle/theme"
)

// Style holds fragment properties. It is used both as inherited context passed
// down the markup tree and as the shape of theme style packages. Values are
// Styles (PropStyles), theme.Color (colours), float64 (border metrics),
// FontSize (PropSize), bool (PropImageTmp), []Callback (PropCallback) or
// string for everything else.
type Style map[Property]any

// Fragment is a single unit of styled output.
type Fragment struct {
	Text  string
	Style Style
}

// Clone returns a copy which can be modified without affecting s. Empty styles
// clone to nil.
func (s Style) Clone() Style {
	if len(s) == 0 {
		return nil
	}
	out := make(Style, len(s))
	for p, v := range s {
		if cbs, ok := v.([]Callback); ok {
			v = slices.Clone(cbs)
		}
		out[p] = v
	}
	return out
}

// Styles returns style flags, zero when none are set.
func (s Style) Styles() Styles {
	v, _ := s[PropStyles].(Styles)
	return v
}

// Callbacks returns render hooks in registration order.
func (s Style) Callbacks() []Callback {
	v, _ := s[PropCallback].([]Callback)
	return v
}

// HasCallback reports whether render hook is registered.
func (s Style) HasCallback(c Callback) bool {
	return slices.Contains(s.Callbacks(), c)
}

// Color returns colour property.
func (s Style) Color(p Property) (theme.Color, bool) {
	c, ok := s[p].(theme.Color)
	return c, ok
}

// String returns string property, empty if not set.
func (s Style) String(p Property) string {
	v, _ := s[p].(string)
	return v
}

// Size returns font size property.
func (s Style) Size() (FontSize, bool) {
	v, ok := s[PropSize].(FontSize)
	return v, ok
}

func (s Style) addStyles(f Styles) {
	s[PropStyles] = s.Styles() | f
}

func (s Style) addCallback(c Callback) {
	if s.HasCallback(c) {
		return
	}
	s[PropCallback] = append(slices.Clone(s.Callbacks()), c)
}

type mergePolicy int

const (
	// overwrite replaces existing value.
	overwrite mergePolicy = iota
	// union adds incoming callbacks missing from existing list.
	union
	// clearOnEmpty unions non-empty style sets, an empty one clears existing styles.
	clearOnEmpty
)

var mergePolicies = map[Property]mergePolicy{
	PropStyles:   clearOnEmpty,
	PropCallback: union,
}

// merge layers style package over s according to per-property policies. The
// package itself is never modified.
func (s Style) merge(pkg Style) {
	for p, incoming := range pkg {
		switch mergePolicies[p] {
		case clearOnEmpty:
			f, _ := incoming.(Styles)
			if f == 0 {
				s[p] = Styles(0)
				continue
			}
			s[p] = s.Styles() | f
		case union:
			cbs, _ := incoming.([]Callback)
			for _, c := range cbs {
				s.addCallback(c)
			}
		default:
			s[p] = incoming
		}
	}
}
