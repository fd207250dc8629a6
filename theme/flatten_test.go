package theme

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func mustLoad(t *testing.T, src string, options ...Option) *Theme {
	t.Helper()
	th, err := newTestLoader(t, options...).LoadBytes([]byte(src))
	if err != nil {
		t.Fatalf("LoadBytes() error = %v", err)
	}
	return th
}

func TestLoad_Empty(t *testing.T) {
	for _, src := range []string{"", "false", "~"} {
		th := mustLoad(t, src)
		if th.Len() != 0 {
			t.Errorf("LoadBytes(%q) produced %d keys", src, th.Len())
		}
	}
}

func TestLoad_Malformed(t *testing.T) {
	_, err := newTestLoader(t).LoadBytes([]byte("base: [unclosed"))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("LoadBytes() error = %v, want *ParseError", err)
	}
}

func TestLoad_FlattenKeys(t *testing.T) {
	th := mustLoad(t, `
page:
  size: A4
base:
  font:
    family: Times-Roman
  border_width: 0.5
admonition:
  label:
    font_style: bold
`)
	for _, key := range []string{"page_size", "base_font_family", "base_border_width", "admonition_label_font_style"} {
		if !th.Has(key) {
			t.Errorf("missing key %s", key)
		}
	}
	checkValue(t, th, "base_border_width", 0.5)
}

func TestLoad_Hyphens(t *testing.T) {
	th := mustLoad(t, `
page-size: A4
base:
  font-family: Times-Roman
abstract:
  title-font-size: 20
admonition:
  icon:
    tip:
      stroke-color: FFFF00
`)
	for _, key := range []string{"page_size", "base_font_family", "abstract_title_font_size"} {
		if !th.Has(key) {
			t.Errorf("missing key %s", key)
		}
	}
	icon, ok := th.Map("admonition_icon_tip")
	if !ok {
		t.Fatal("admonition_icon_tip should be a map")
	}
	if icon["stroke_color"] != HexColor("FFFF00") {
		t.Errorf("stroke_color = %#v", icon["stroke_color"])
	}
}

func TestLoad_RoleNames(t *testing.T) {
	th := mustLoad(t, `
role:
  flaming-red:
    font-color: ff0000
  so-very-blue:
    font:
      color: 0000ff
`)
	checkValue(t, th, "role_flaming-red_font_color", HexColor("FF0000"))
	checkValue(t, th, "role_so-very-blue_font_color", HexColor("0000FF"))
}

func TestLoad_ContentKeys(t *testing.T) {
	th := mustLoad(t, `
vars:
  foo: bar
menu:
  caret_content:
  - '>'
ulist:
  marker:
    disc:
      content: 0
footer:
  recto:
    left:
      content: true
    right:
      content: $vars_foo
    center:
      content: 4a4a4a
`)
	checkValue(t, th, "menu_caret_content", `[">"]`)
	checkValue(t, th, "ulist_marker_disc_content", "0")
	checkValue(t, th, "footer_recto_left_content", "true")
	checkValue(t, th, "footer_recto_right_content", "bar")
	checkValue(t, th, "footer_recto_center_content", "4a4a4a")
}

func TestLoad_FontCatalog(t *testing.T) {
	th := mustLoad(t, `
vars:
  serif-font: /path/to/serif-font.ttf
font_catalog:
  Serif:
    normal: $vars-serif-font
  Fallback:
    normal: /path/to/fallback-font.ttf
font_fallbacks:
- Fallback
`)
	catalog, ok := th.Map("font_catalog")
	if !ok {
		t.Fatal("font_catalog should be a map")
	}
	serif, ok := catalog["Serif"].(map[string]any)
	if !ok || serif["normal"] != "/path/to/serif-font.ttf" {
		t.Errorf("font_catalog[Serif] = %#v", catalog["Serif"])
	}
	checkValue(t, th, "font_fallbacks", []any{"Fallback"})
}

func TestLoad_FontCatalogMerge(t *testing.T) {
	th := mustLoad(t, `
font:
  catalog:
    Serif:
      normal: serif.ttf
font_catalog:
  merge: true
  Sans:
    normal: sans.ttf
`)
	catalog, _ := th.Map("font_catalog")
	if len(catalog) != 2 {
		t.Errorf("font_catalog = %#v, want Serif and Sans", catalog)
	}
}

func TestLoad_NullUnsets(t *testing.T) {
	th := mustLoad(t, `
page:
  background_color: ffffff
  size: A4
page_background_color: null
page_size: ~
`)
	if th.Has("page_background_color") || th.Has("page_size") {
		t.Errorf("null values should unset keys, got %v", th.Keys())
	}
}

func TestLoad_IgnoresExtends(t *testing.T) {
	th := mustLoad(t, "extends: base\nbase_font_family: Times-Roman\n")
	if th.Len() != 1 {
		t.Errorf("Len() = %d, want 1", th.Len())
	}
}

func TestLoad_Anchors(t *testing.T) {
	th := mustLoad(t, `
brand: &brand
  color: 428bca
link: *brand
`)
	checkValue(t, th, "link_color", HexColor("428BCA"))
}

func TestLoad_UnresolvedReferenceLoose(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	th, err := NewLoader(zap.New(core)).LoadBytes([]byte("base:\n  font_family: $brand_font\n  title: $nope and more\n"))
	if err != nil {
		t.Fatalf("LoadBytes() error = %v", err)
	}
	checkValue(t, th, "base_font_family", "$brand_font")
	checkValue(t, th, "base_title", "$nope and more")
	if logs.Len() != 2 {
		t.Errorf("expected 2 warnings, got %d", logs.Len())
	}
}

func TestLoad_UnresolvedReferenceStrict(t *testing.T) {
	_, err := newTestLoader(t, WithReferencePolicy(ReferencesStrict)).LoadBytes([]byte("base:\n  font_family: $brand_font\n"))
	var rerr *UnresolvedReferenceError
	if !errors.As(err, &rerr) {
		t.Fatalf("LoadBytes() error = %v, want *UnresolvedReferenceError", err)
	}
	if rerr.Key != "base_font_family" || rerr.Ref != "$brand_font" {
		t.Errorf("UnresolvedReferenceError = %+v", rerr)
	}
}

func TestLoad_ForwardReference(t *testing.T) {
	_, err := newTestLoader(t, WithReferencePolicy(ReferencesStrict)).LoadBytes([]byte(`
heading:
  font_color: $base_font_color
base:
  font_color: 333333
`))
	if err == nil {
		t.Fatal("references are resolved top to bottom, forward reference should fail")
	}
}
