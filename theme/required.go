package theme

// requiredKey describes value loaded themes always carry. When fallback is not
// empty its value (if present) is used before the default.
type requiredKey struct {
	name     string
	fallback string
	value    any
}

var requiredKeys = []requiredKey{
	{name: "base_align", value: "left"},
	{name: "base_line_height", value: 1},
	{name: "base_font_color", value: HexColor("000000")},
	{name: "code_font_family", fallback: "literal_font_family", value: "Courier"},
	{name: "conum_font_family", fallback: "literal_font_family", value: "Courier"},
}

func ensureRequiredKeys(values map[string]any) {
	for _, rk := range requiredKeys {
		if _, ok := values[rk.name]; ok {
			continue
		}
		if rk.fallback != "" {
			if v, ok := values[rk.fallback]; ok {
				values[rk.name] = v
				continue
			}
		}
		values[rk.name] = rk.value
	}
}
