package richtext

import (
	"fmt"
	"slices"
	"strings"

	"pdfstyle/theme"
	"pdfstyle/utils/debug"
)

// Dump renders fragments in human readable form, one property per line in
// fixed order.
func Dump(frags []Fragment) string {
	tw := debug.NewTreeWriter()
	for i, f := range frags {
		tw.Line(0, "fragment %d", i)
		tw.TextBlock(1, "text", f.Text)
		props := make([]Property, 0, len(f.Style))
		for p := range f.Style {
			props = append(props, p)
		}
		slices.Sort(props)
		for _, p := range props {
			tw.Field(1, p.String(), formatProperty(f.Style[p]))
		}
	}
	return tw.String()
}

func formatProperty(v any) string {
	switch val := v.(type) {
	case theme.Color:
		return val.String()
	case []Callback:
		names := make([]string, len(val))
		for i, c := range val {
			names[i] = c.String()
		}
		return "[" + strings.Join(names, ", ") + "]"
	case fmt.Stringer:
		return val.String()
	}
	return fmt.Sprint(v)
}
