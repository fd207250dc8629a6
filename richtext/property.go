package richtext

import (
	"strconv"
	"strings"
)

// Property identifies a fragment property.
type Property int

const (
	PropStyles Property = iota
	PropColor
	PropBackgroundColor
	PropBorderColor
	PropBorderWidth
	PropBorderOffset
	PropBorderRadius
	PropFont
	PropSize
	PropLink
	PropAnchor
	PropName
	PropType
	PropImagePath
	PropImageFormat
	PropImageWidth
	PropImageTmp
	PropWidth
	PropAlign
	PropCallback

	propCount
)

var propertyNames = [propCount]string{
	PropStyles:          "styles",
	PropColor:           "color",
	PropBackgroundColor: "background_color",
	PropBorderColor:     "border_color",
	PropBorderWidth:     "border_width",
	PropBorderOffset:    "border_offset",
	PropBorderRadius:    "border_radius",
	PropFont:            "font",
	PropSize:            "size",
	PropLink:            "link",
	PropAnchor:          "anchor",
	PropName:            "name",
	PropType:            "type",
	PropImagePath:       "image_path",
	PropImageFormat:     "image_format",
	PropImageWidth:      "image_width",
	PropImageTmp:        "image_tmp",
	PropWidth:           "width",
	PropAlign:           "align",
	PropCallback:        "callback",
}

func (p Property) String() string {
	if p >= 0 && p < propCount {
		return propertyNames[p]
	}
	return "Property(" + strconv.Itoa(int(p)) + ")"
}

// Styles is a set of font style flags.
type Styles uint8

const (
	Bold Styles = 1 << iota
	Italic
	Subscript
	Superscript
	Strikethrough
	Underline
)

var styleNames = []struct {
	flag Styles
	name string
}{
	{Bold, "bold"},
	{Italic, "italic"},
	{Subscript, "subscript"},
	{Superscript, "superscript"},
	{Strikethrough, "strikethrough"},
	{Underline, "underline"},
}

// Has reports whether all flags in f are set.
func (s Styles) Has(f Styles) bool {
	return s&f == f
}

// Names returns flag names in fixed order.
func (s Styles) Names() []string {
	var names []string
	for _, sn := range styleNames {
		if s.Has(sn.flag) {
			names = append(names, sn.name)
		}
	}
	return names
}

func (s Styles) String() string {
	return "{" + strings.Join(s.Names(), ", ") + "}"
}

// Callback is an opaque render hook identifier the renderer dispatches on.
type Callback int

const (
	InlineImageRenderer Callback = iota
	InlineDestinationMarker
	TextBackgroundAndBorderRenderer
	InlineTextAligner
)

func (c Callback) String() string {
	switch c {
	case InlineImageRenderer:
		return "inline_image_renderer"
	case InlineDestinationMarker:
		return "inline_destination_marker"
	case TextBackgroundAndBorderRenderer:
		return "text_background_and_border_renderer"
	case InlineTextAligner:
		return "inline_text_aligner"
	}
	return "Callback(" + strconv.Itoa(int(c)) + ")"
}

// FontSize is either absolute size in points or a relative size literal
// ("0.8333em") left for the renderer to interpret.
type FontSize struct {
	Points   float64
	Relative string
}

// IsRelative reports whether size is a unit-suffixed literal.
func (fs FontSize) IsRelative() bool {
	return fs.Relative != ""
}

func (fs FontSize) String() string {
	if fs.IsRelative() {
		return fs.Relative
	}
	return strconv.FormatFloat(fs.Points, 'f', -1, 64)
}
