// Package theme resolves layered YAML theme sources into a flat, typed and
// immutable key/value store.
package theme

import (
	"maps"
	"math"
	"reflect"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/maruel/natural"
	yaml "gopkg.in/yaml.v3"
)

// Theme is a resolved theme. Keys are flattened paths joined by underscores
// (e.g. "base_font_color"). Values are one of string, int, float64, bool, []any,
// map[string]any, HexColor or CMYKColor. A Theme is never modified after it has
// been returned by a Loader and may be shared freely.
type Theme struct {
	values map[string]any
	dir    string
}

func newTheme(values map[string]any, dir string) *Theme {
	if values == nil {
		values = make(map[string]any)
	}
	return &Theme{values: values, dir: dir}
}

// Dir returns directory theme was resolved against, empty for in-memory sources.
func (t *Theme) Dir() string {
	if t == nil {
		return ""
	}
	return t.dir
}

// Len returns number of keys in the theme.
func (t *Theme) Len() int {
	if t == nil {
		return 0
	}
	return len(t.values)
}

// Has reports whether key is set.
func (t *Theme) Has(key string) bool {
	_, ok := t.Get(key)
	return ok
}

// Get returns raw value stored under key.
func (t *Theme) Get(key string) (any, bool) {
	if t == nil {
		return nil, false
	}
	v, ok := t.values[key]
	return v, ok
}

// String returns string representation of the value stored under key or empty
// string if key is not set. Colours are returned in their canonical form.
func (t *Theme) String(key string) string {
	v, ok := t.Get(key)
	if !ok {
		return ""
	}
	return formatValue(v)
}

// Number returns numeric value stored under key.
func (t *Theme) Number(key string) (float64, bool) {
	v, ok := t.Get(key)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// Bool returns boolean value stored under key.
func (t *Theme) Bool(key string) (bool, bool) {
	v, ok := t.Get(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// List returns a copy of list value stored under key.
func (t *Theme) List(key string) ([]any, bool) {
	v, ok := t.Get(key)
	if !ok {
		return nil, false
	}
	l, ok := v.([]any)
	return slices.Clone(l), ok
}

// Map returns a copy of nested map stored under key (font catalog and similar
// sub-trees).
func (t *Theme) Map(key string) (map[string]any, bool) {
	v, ok := t.Get(key)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return maps.Clone(m), ok
}

// Color returns colour value stored under key.
func (t *Theme) Color(key string) (Color, bool) {
	v, ok := t.Get(key)
	if !ok {
		return nil, false
	}
	c, ok := v.(Color)
	return c, ok
}

// Keys returns all keys in natural sort order.
func (t *Theme) Keys() []string {
	if t == nil {
		return nil
	}
	keys := slices.Collect(maps.Keys(t.values))
	sort.Sort(natural.StringSlice(keys))
	return keys
}

// KeysWithPrefix returns keys starting with prefix in natural sort order.
func (t *Theme) KeysWithPrefix(prefix string) []string {
	var keys []string
	for _, k := range t.Keys() {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys
}

// ToMap returns a copy of the flat key/value store.
func (t *Theme) ToMap() map[string]any {
	if t == nil {
		return map[string]any{}
	}
	return maps.Clone(t.values)
}

// Equal reports whether both themes hold the same settings. Directory is not
// compared.
func (t *Theme) Equal(other *Theme) bool {
	return reflect.DeepEqual(t.ToMap(), other.ToMap())
}

// MarshalYAML renders theme as a flat mapping with keys in natural order.
func (t *Theme) MarshalYAML() (any, error) {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range t.Keys() {
		v := t.values[k]
		if c, ok := v.(CMYKColor); ok {
			v = c[:]
		}
		val := &yaml.Node{}
		if err := val.Encode(v); err != nil {
			return nil, err
		}
		root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, val)
	}
	return root, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// numberValue returns int for integral values and float64 otherwise.
func numberValue(f float64) any {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int(f)
	}
	return f
}

// formatNumber writes number in shortest form without exponent.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatValue renders value the way it is interpolated into strings.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case Color:
		return val.String()
	case int:
		return strconv.Itoa(val)
	case float64:
		if val == math.Trunc(val) && !math.IsInf(val, 0) {
			return strconv.FormatFloat(val, 'f', 1, 64)
		}
		return formatNumber(val)
	case bool:
		return strconv.FormatBool(val)
	case []any:
		parts := make([]string, len(val))
		for i, e := range val {
			if s, ok := e.(string); ok {
				parts[i] = strconv.Quote(s)
				continue
			}
			parts[i] = formatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := slices.Collect(maps.Keys(val))
		sort.Sort(natural.StringSlice(keys))
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = strconv.Quote(k) + "=>" + formatValue(val[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return ""
}
