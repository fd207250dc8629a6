package theme

import (
	"bytes"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"pdfstyle/theme/themes"
)

const (
	// BuiltinDir is the virtual directory built-in themes are resolved in when
	// no search directory is given.
	BuiltinDir = "@builtin"

	themeFileSuffix = "-theme.yml"
	themeFileExt    = ".yml"
	extendsKey      = "extends"
)

var (
	baseThemePath    = filepath.Join(BuiltinDir, "base"+themeFileSuffix)
	defaultThemePath = filepath.Join(BuiltinDir, "default"+themeFileSuffix)

	hexColorEntryRx = regexp.MustCompile(`^( *\S+?): +(["']?)(#)?([a-fA-F0-9]{3,6})(["']?) *(?:#.*)?$`)
)

// ReferencePolicy controls what happens when a variable reference cannot be
// resolved.
type ReferencePolicy int

const (
	// ReferencesLoose logs a warning and keeps the reference as literal text.
	ReferencesLoose ReferencePolicy = iota
	// ReferencesStrict fails with UnresolvedReferenceError.
	ReferencesStrict
)

func (p ReferencePolicy) String() string {
	if p == ReferencesStrict {
		return "strict"
	}
	return "loose"
}

// ParseReferencePolicy converts configuration value into ReferencePolicy.
func ParseReferencePolicy(s string) (ReferencePolicy, error) {
	switch strings.ToLower(s) {
	case "", "loose":
		return ReferencesLoose, nil
	case "strict":
		return ReferencesStrict, nil
	}
	return ReferencesLoose, fmt.Errorf("unknown reference policy %q", s)
}

// Loader resolves theme sources. Loader itself is stateless between calls,
// but a single load is not meant to be shared between goroutines.
type Loader struct {
	log     *zap.Logger
	policy  ReferencePolicy
	builtin fs.FS
}

// Option configures Loader.
type Option func(*Loader)

// WithReferencePolicy selects how unresolved variable references are handled.
func WithReferencePolicy(p ReferencePolicy) Option {
	return func(l *Loader) { l.policy = p }
}

// WithBuiltinThemes replaces the embedded built-in themes.
func WithBuiltinThemes(fsys fs.FS) Option {
	return func(l *Loader) { l.builtin = fsys }
}

// NewLoader creates theme loader.
func NewLoader(log *zap.Logger, options ...Option) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Loader{log: log.Named("theme"), builtin: themes.FS}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// Load resolves an already parsed theme tree. Empty or non-mapping documents
// produce an empty theme. Required keys are not enforced.
func (l *Loader) Load(doc *yaml.Node) (*Theme, error) {
	values, err := l.process(rootMapping(doc), nil)
	if err != nil {
		return nil, err
	}
	return newTheme(values, ""), nil
}

// LoadBytes parses and resolves theme source.
func (l *Loader) LoadBytes(data []byte) (*Theme, error) {
	doc, err := parseDocument(data, "")
	if err != nil {
		return nil, err
	}
	return l.Load(doc)
}

// LoadFile resolves theme file together with its extends chain. When themeDir
// is empty extends references are resolved relative to the file being loaded,
// which is also reported by Dir() of the result.
func (l *Loader) LoadFile(path, themeDir string) (*Theme, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	values, err := l.loadFile(path, nil, themeDir, nil)
	if err != nil {
		return nil, err
	}
	if themeDir == "" {
		themeDir = filepath.Dir(path)
	}
	return newTheme(values, themeDir), nil
}

// LoadBaseTheme returns built-in base theme.
func (l *Loader) LoadBaseTheme() (*Theme, error) {
	values, err := l.loadFile(baseThemePath, nil, "", nil)
	if err != nil {
		return nil, err
	}
	return newTheme(values, ""), nil
}

// LoadTheme resolves theme by name or path. "base" loads built-in base theme,
// empty name loads built-in default theme, other names are looked up as
// <name>-theme.yml in dir, names ending in .yml are loaded as paths.
func (l *Loader) LoadTheme(name, dir string) (*Theme, error) {
	path, dir := ResolveThemeFile(name, dir)
	if path == baseThemePath {
		return l.LoadBaseTheme()
	}
	l.log.Debug("Loading theme", zap.String("path", path), zap.String("dir", dir))

	values, err := l.loadFile(path, nil, dir, nil)
	if err != nil {
		return nil, err
	}
	ensureRequiredKeys(values)
	return newTheme(values, dir), nil
}

// ResolveThemeFile derives absolute theme file path and its directory from
// theme name and directory hint. Leading "~" is expanded. The file does not
// have to exist.
func ResolveThemeFile(name, dir string) (string, string) {
	if name == "" {
		name = "default"
	}
	dir = expandHome(dir)
	if strings.HasSuffix(name, themeFileExt) {
		path := expandHome(name)
		if !filepath.IsAbs(path) && dir != "" {
			path = filepath.Join(dir, path)
		}
		if !isBuiltin(path) {
			path = absPath(path)
		}
		return path, filepath.Dir(path)
	}
	if dir == "" {
		dir = BuiltinDir
	} else {
		dir = absPath(dir)
	}
	return filepath.Join(dir, name+themeFileSuffix), dir
}

func (l *Loader) loadFile(path string, parent map[string]any, themeDir string, chain []string) (map[string]any, error) {
	if slices.Contains(chain, path) {
		return nil, &CycleError{Chain: append(slices.Clone(chain), path)}
	}
	chain = append(slices.Clone(chain), path)

	builtin := isBuiltin(path)
	data, err := l.read(path, builtin)
	if err != nil {
		return nil, fmt.Errorf("unable to read theme file: %w", err)
	}
	if !builtin {
		data = quoteHexColors(data)
	}
	doc, err := parseDocument(data, path)
	if err != nil {
		return nil, err
	}
	root := rootMapping(doc)

	extends, hasExtends := takeExtends(root)
	switch {
	case hasExtends:
		for _, ref := range extends {
			if parent, err = l.extend(ref, path, parent, themeDir, chain); err != nil {
				return nil, err
			}
		}
	case parent == nil && !builtin:
		if parent, err = l.loadFile(baseThemePath, nil, "", chain); err != nil {
			return nil, err
		}
	}
	return l.process(root, parent)
}

func (l *Loader) extend(ref, path string, parent map[string]any, themeDir string, chain []string) (map[string]any, error) {
	l.log.Debug("Extending theme", zap.String("theme", path), zap.String("extends", ref))

	switch {
	case ref == "base":
		base, err := l.loadFile(baseThemePath, nil, "", chain)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return base, nil
		}
		merged := maps.Clone(parent)
		maps.Copy(merged, base)
		return merged, nil
	case ref == "default":
		return l.loadFile(defaultThemePath, parent, themeDir, chain)
	case strings.HasPrefix(ref, "./"), strings.HasPrefix(ref, "../"):
		return l.loadFile(filepath.Join(filepath.Dir(path), ref), parent, themeDir, chain)
	}
	dir := themeDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	extendPath, _ := ResolveThemeFile(ref, dir)
	return l.loadFile(extendPath, parent, themeDir, chain)
}

func (l *Loader) process(root *yaml.Node, parent map[string]any) (map[string]any, error) {
	b := l.newBuilder(parent)
	if err := b.process(root); err != nil {
		return nil, err
	}
	return b.values, nil
}

func (l *Loader) read(path string, builtin bool) ([]byte, error) {
	if builtin {
		return fs.ReadFile(l.builtin, filepath.Base(path))
	}
	return os.ReadFile(path)
}

// takeExtends removes extends entry from root and returns referenced themes.
// Null and "nil" values mean the theme extends nothing.
func takeExtends(root *yaml.Node) ([]string, bool) {
	if root == nil {
		return nil, false
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != extendsKey {
			continue
		}
		value := resolveAlias(root.Content[i+1])
		root.Content = slices.Delete(slices.Clone(root.Content), i, i+2)

		var nodes []*yaml.Node
		if value.Kind == yaml.SequenceNode {
			nodes = value.Content
		} else {
			nodes = []*yaml.Node{value}
		}
		var refs []string
		for _, n := range nodes {
			n = resolveAlias(n)
			if n.Kind != yaml.ScalarNode || n.Tag == "!!null" || n.Value == "" || n.Value == "nil" {
				continue
			}
			refs = append(refs, n.Value)
		}
		return refs, true
	}
	return nil, false
}

func parseDocument(data []byte, path string) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &doc, nil
}

func rootMapping(doc *yaml.Node) *yaml.Node {
	if doc == nil {
		return nil
	}
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil
		}
		doc = doc.Content[0]
	}
	doc = resolveAlias(doc)
	if doc.Kind != yaml.MappingNode {
		return nil
	}
	return doc
}

// quoteHexColors rewrites lines where a hex colour would otherwise be read as
// a comment ("#fefefe") or as a number (colour keys only) so value stays a string.
func quoteHexColors(data []byte) []byte {
	lines := bytes.SplitAfter(data, []byte("\n"))
	for i, line := range lines {
		body := bytes.TrimRight(line, "\r\n")
		m := hexColorEntryRx.FindSubmatch(body)
		if m == nil || !bytes.Equal(m[2], m[5]) {
			continue
		}
		key, hash, value := m[1], len(m[3]) > 0, m[4]
		if !hash && !bytes.HasSuffix(key, []byte("color")) {
			continue
		}
		var b bytes.Buffer
		b.Write(key)
		b.WriteString(": '")
		b.Write(value)
		b.WriteString("'")
		b.Write(line[len(body):])
		lines[i] = b.Bytes()
	}
	return bytes.Join(lines, nil)
}

func isBuiltin(path string) bool {
	return filepath.Dir(path) == BuiltinDir
}

func expandHome(path string) string {
	if expanded, err := homedir.Expand(path); err == nil {
		return expanded
	}
	return path
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
