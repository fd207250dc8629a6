package richtext

import (
	"testing"

	"pdfstyle/markup"
	"pdfstyle/theme"
)

const packagesTheme = `
base:
  font_size: 12
  font_size_large: 13.5
  font_size_small: 10.5
  border_color: 'EEEEEE'
literal:
  font_color: b12146
  font_family: Courier
  font_size: 10.5
key:
  background_color: f5f5f5
  border_width: 0.5
  border_offset: 2
  border_radius: 2
button:
  font_style: bold
link:
  font_color: 428bca
  text_decoration: underline
mark:
  background_color: ffff00
  border_offset: 1
role:
  red:
    font_color: ff0000
  plain:
    font_style: normal
  boxed:
    border_color: '333333'
    border_width: 1
  lead:
    font_size: 1.2em
`

func TestThemePackages(t *testing.T) {
	pkgs := themePackages(loadTheme(t, packagesTheme))

	tests := []struct {
		name string
		got  Style
		want Style
	}{
		{"code", pkgs.tags["code"], Style{
			PropColor: theme.HexColor("B12146"),
			PropFont:  "Courier",
			PropSize:  FontSize{Points: 10.5},
		}},
		{"key", pkgs.tags["key"], Style{
			PropFont:            "Courier",
			PropBackgroundColor: theme.HexColor("F5F5F5"),
			PropBorderWidth:     0.5,
			PropBorderColor:     theme.HexColor("EEEEEE"),
			PropBorderOffset:    2.0,
			PropBorderRadius:    2.0,
			PropCallback:        []Callback{TextBackgroundAndBorderRenderer},
		}},
		{"button", pkgs.tags["button"], Style{PropStyles: Bold}},
		{"link", pkgs.tags["link"], Style{PropColor: theme.HexColor("428BCA"), PropStyles: Underline}},
		{"mark", pkgs.tags["mark"], Style{
			PropBackgroundColor: theme.HexColor("FFFF00"),
			PropBorderOffset:    1.0,
			PropCallback:        []Callback{TextBackgroundAndBorderRenderer},
		}},
		{"role red", pkgs.classes["red"], Style{PropColor: theme.HexColor("FF0000")}},
		{"role plain", pkgs.classes["plain"], Style{PropStyles: Styles(0)}},
		{"role lead", pkgs.classes["lead"], Style{PropSize: FontSize{Relative: "1.2em"}}},
		{"big", pkgs.classes["big"], Style{PropSize: FontSize{Relative: "1.125em"}}},
		{"small", pkgs.classes["small"], Style{PropSize: FontSize{Relative: "0.875em"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkFragments(t, []Fragment{{Style: tt.got}}, []Fragment{{Style: tt.want}})
		})
	}
}

func TestThemePackages_Defaults(t *testing.T) {
	pkgs := themePackages(loadTheme(t, "base_font_size: 12\n"))
	if got := pkgs.classes["big"][PropSize]; got != (FontSize{Relative: "1.1667em"}) {
		t.Errorf("big = %v", got)
	}
	if got := pkgs.classes["small"][PropSize]; got != (FontSize{Relative: "0.8333em"}) {
		t.Errorf("small = %v", got)
	}
	if len(pkgs.tags["code"]) != 0 {
		t.Errorf("code = %v, want empty package", pkgs.tags["code"])
	}
}

func TestApply_ThemeRoles(t *testing.T) {
	tr := NewTransformer(loadTheme(t, packagesTheme))

	got := tr.Apply([]markup.Node{
		markup.Element("strong", nil,
			markup.Element("span", attrs("class", "plain red"), markup.Text("x"))),
	})
	checkFragments(t, got, []Fragment{{Text: "x", Style: Style{PropColor: theme.HexColor("FF0000")}}})

	got = tr.Apply([]markup.Node{markup.Element("span", attrs("class", "boxed"), markup.Text("x"))})
	checkFragments(t, got, []Fragment{{Text: "x", Style: Style{
		PropBorderColor: theme.HexColor("333333"),
		PropBorderWidth: 1.0,
		PropCallback:    []Callback{TextBackgroundAndBorderRenderer},
	}}})
}

func TestApply_ThemeLink(t *testing.T) {
	tr := NewTransformer(loadTheme(t, packagesTheme))
	got := tr.Apply([]markup.Node{
		markup.Element("strong", nil,
			markup.Element("a", attrs("href", "https://example.org"), markup.Text("x"))),
	})
	checkFragments(t, got, []Fragment{{Text: "x", Style: Style{
		PropLink:   "https://example.org",
		PropColor:  theme.HexColor("428BCA"),
		PropStyles: Bold | Underline,
	}}})
}

func TestToStyles(t *testing.T) {
	tests := []struct {
		style, decoration string
		want              Styles
	}{
		{"bold", "", Bold},
		{"italic", "", Italic},
		{"bold_italic", "", Bold | Italic},
		{"normal", "", 0},
		{"normal_italic", "", 0},
		{"", "line-through", Strikethrough},
		{"bold", "underline", Bold | Underline},
	}
	for _, tt := range tests {
		if got := toStyles(tt.style, tt.decoration); got != tt.want {
			t.Errorf("toStyles(%q, %q) = %v, want %v", tt.style, tt.decoration, got, tt.want)
		}
	}
}

func TestDump(t *testing.T) {
	got := Dump([]Fragment{{Text: "x", Style: Style{
		PropStyles:   Bold | Italic,
		PropColor:    theme.HexColor("FF0000"),
		PropSize:     FontSize{Points: 10.5},
		PropCallback: []Callback{InlineTextAligner},
	}}})
	want := "fragment 0\n" +
		"  text: \"x\"\n" +
		"  styles: {bold, italic}\n" +
		"  color: FF0000\n" +
		"  size: 10.5\n" +
		"  callback: [inline_text_aligner]\n"
	if got != want {
		t.Errorf("Dump() = %q, want %q", got, want)
	}
}
