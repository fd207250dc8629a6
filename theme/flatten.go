package theme

import (
	"fmt"
	"maps"
	"strings"

	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"
)

// builder accumulates flattened values for a single theme source layered on top
// of already resolved parent values.
type builder struct {
	values map[string]any
	policy ReferencePolicy
	log    *zap.Logger
}

func (l *Loader) newBuilder(parent map[string]any) *builder {
	values := maps.Clone(parent)
	if values == nil {
		values = make(map[string]any)
	}
	return &builder{values: values, policy: l.policy, log: l.log}
}

// process flattens mapping root into builder values in document order.
func (b *builder) process(root *yaml.Node) error {
	if root == nil || root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		if key == extendsKey {
			b.log.Debug("Ignoring extends outside of theme file")
			continue
		}
		if err := b.processEntry(normalizeSegment(key), root.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) processEntry(key string, node *yaml.Node) error {
	node = resolveAlias(node)

	switch {
	case key == "font_catalog":
		return b.processFontCatalog(key, node)
	case key == "font_fallbacks":
		return b.processFontFallbacks(key, node)
	case strings.HasPrefix(key, "admonition_icon_") && node.Kind == yaml.MappingNode:
		return b.processAdmonitionIcon(key, node)
	case node.Kind == yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			seg := node.Content[i].Value
			// role names are free-form identifiers
			if key != "role" {
				seg = normalizeSegment(seg)
			}
			if err := b.processEntry(key+"_"+seg, node.Content[i+1]); err != nil {
				return err
			}
		}
		return nil
	}

	raw, err := plainValue(node)
	if err != nil {
		return fmt.Errorf("theme key %q: %w", key, err)
	}

	var value any
	switch {
	case strings.HasSuffix(key, "_color"):
		v, err := b.evaluate(key, raw)
		if err != nil {
			return err
		}
		value = toColor(v, b.log)
	case strings.HasSuffix(key, "content"):
		v, err := b.expandVars(key, formatValue(raw))
		if err != nil {
			return err
		}
		value = formatValue(v)
	default:
		if value, err = b.evaluate(key, raw); err != nil {
			return err
		}
	}
	b.set(key, value)
	return nil
}

// set stores value, null values unset the key.
func (b *builder) set(key string, value any) {
	if value == nil {
		delete(b.values, key)
		return
	}
	b.values[key] = value
}

func (b *builder) processFontCatalog(key string, node *yaml.Node) error {
	catalog := make(map[string]any)
	if node.Kind != yaml.MappingNode {
		b.values[key] = catalog
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "merge" && node.Content[i+1].Value == "true" {
			if existing, ok := b.values[key].(map[string]any); ok {
				maps.Copy(catalog, existing)
			}
		}
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		name, styles := node.Content[i].Value, resolveAlias(node.Content[i+1])
		if name == "merge" {
			continue
		}
		if styles.Kind != yaml.MappingNode {
			path, err := b.expandString(key, styles.Value)
			if err != nil {
				return err
			}
			catalog[name] = path
			continue
		}
		entry := make(map[string]any, len(styles.Content)/2)
		for j := 0; j+1 < len(styles.Content); j += 2 {
			path, err := b.expandString(key, resolveAlias(styles.Content[j+1]).Value)
			if err != nil {
				return err
			}
			entry[styles.Content[j].Value] = path
		}
		catalog[name] = entry
	}
	b.values[key] = catalog
	return nil
}

func (b *builder) processFontFallbacks(key string, node *yaml.Node) error {
	fallbacks := []any{}
	if node.Kind == yaml.SequenceNode {
		for _, n := range node.Content {
			name, err := b.expandString(key, resolveAlias(n).Value)
			if err != nil {
				return err
			}
			fallbacks = append(fallbacks, name)
		}
	}
	b.values[key] = fallbacks
	return nil
}

func (b *builder) processAdmonitionIcon(key string, node *yaml.Node) error {
	icon := make(map[string]any, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		sub := normalizeSegment(node.Content[i].Value)
		raw, err := plainValue(resolveAlias(node.Content[i+1]))
		if err != nil {
			return fmt.Errorf("theme key %q: %w", key, err)
		}
		v, err := b.evaluate(key+"_"+sub, raw)
		if err != nil {
			return err
		}
		if sub == "color" {
			v = toColor(v, b.log)
		}
		if v != nil {
			icon[sub] = v
		}
	}
	b.values[key] = icon
	return nil
}

func (b *builder) expandString(key, s string) (string, error) {
	v, err := b.expandVars(key, s)
	if err != nil {
		return "", err
	}
	return formatValue(v), nil
}

func normalizeSegment(seg string) string {
	return strings.ReplaceAll(seg, "-", "_")
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

// plainValue converts YAML node into plain Go values using YAML scalar
// resolution (ints, floats, bools, nulls and strings).
func plainValue(node *yaml.Node) (any, error) {
	node = resolveAlias(node)
	switch node.Kind {
	case yaml.SequenceNode:
		out := make([]any, 0, len(node.Content))
		for _, n := range node.Content {
			v, err := plainValue(n)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		out := make(map[string]any, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			v, err := plainValue(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			out[node.Content[i].Value] = v
		}
		return out, nil
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	switch n := v.(type) {
	case int64:
		return int(n), nil
	case uint64:
		return float64(n), nil
	case string, int, float64, bool, nil:
		return v, nil
	}
	// timestamps and other exotic scalars are kept as written
	return node.Value, nil
}
