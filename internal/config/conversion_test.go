package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConversion_IsValid(t *testing.T) {
	cfg := DefaultConversion()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}

	if cfg.Document.PageSize.Width != 595 || cfg.Document.PageSize.Height != 842 {
		t.Errorf("expected A4 page, got %gx%g", cfg.Document.PageSize.Width, cfg.Document.PageSize.Height)
	}
	if len(cfg.Styles.Headings) != 6 {
		t.Fatalf("expected 6 heading levels, got %d", len(cfg.Styles.Headings))
	}
	if got := cfg.Styles.Headings[1].Font.Size; got != 18 {
		t.Errorf("expected h1 at 18pt, got %g", got)
	}
	if got := cfg.Styles.Headings[6].Font.Size; got != 10 {
		t.Errorf("expected h6 at 10pt, got %g", got)
	}
	if cfg.Styles.Headings[1].Numbering != "" {
		t.Errorf("default config must not number headings, got %q", cfg.Styles.Headings[1].Numbering)
	}
}

func TestConversionValidate_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Conversion)
	}{
		{"negative page width", func(c *Conversion) { c.Document.PageSize.Width = -100 }},
		{"negative margin", func(c *Conversion) { c.Document.Margins.Top = -1 }},
		{"empty font family", func(c *Conversion) { c.Document.DefaultFont.Family = "" }},
		{"zero font size", func(c *Conversion) { c.Styles.Paragraph.Font.Size = 0 }},
		{"heading level out of range", func(c *Conversion) {
			c.Styles.Headings[7] = c.Styles.Headings[1]
		}},
		{"bad alignment", func(c *Conversion) {
			h := c.Styles.Headings[1]
			h.Alignment = "middle"
			c.Styles.Headings[1] = h
		}},
		{"bad link color", func(c *Conversion) { c.Elements.Link.Color = "blue" }},
		{"short hex color", func(c *Conversion) { c.Elements.Link.Color = "#fff" }},
		{"bad numbering template", func(c *Conversion) {
			h := c.Styles.Headings[2]
			h.Numbering = "%7."
			c.Styles.Headings[2] = h
		}},
		{"numbering without placeholder", func(c *Conversion) {
			h := c.Styles.Headings[1]
			h.Numbering = "Section"
			c.Styles.Headings[1] = h
		}},
		{"negative border width", func(c *Conversion) { c.Styles.Table.BorderWidth = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConversion()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation to fail")
			}
		})
	}
}

func TestNumberingTemplates_CollectsConfiguredLevels(t *testing.T) {
	cfg := DefaultConversion()
	h1 := cfg.Styles.Headings[1]
	h1.Numbering = "%1."
	cfg.Styles.Headings[1] = h1
	h3 := cfg.Styles.Headings[3]
	h3.Numbering = "%1.%2.%3"
	cfg.Styles.Headings[3] = h3

	templates := cfg.NumberingTemplates()
	if len(templates) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(templates))
	}
	if templates[1] != "%1." || templates[3] != "%1.%2.%3" {
		t.Errorf("unexpected templates: %v", templates)
	}
}

func TestParseConversion_PartialOverlay(t *testing.T) {
	partial := []byte(`
document:
  default_font:
    size: 14
styles:
  headings:
    2:
      numbering: "%1.%2."
`)

	cfg, err := ParseConversion(partial)
	if err != nil {
		t.Fatalf("ParseConversion failed: %v", err)
	}

	if cfg.Document.DefaultFont.Size != 14 {
		t.Errorf("expected overridden size 14, got %g", cfg.Document.DefaultFont.Size)
	}
	if cfg.Document.DefaultFont.Family != "Times New Roman" {
		t.Errorf("expected default family preserved, got %q", cfg.Document.DefaultFont.Family)
	}
	if got := cfg.Styles.Headings[2].Numbering; got != "%1.%2." {
		t.Errorf("expected numbering on level 2, got %q", got)
	}
	// Other heading levels keep their defaults alongside the override.
	if len(cfg.Styles.Headings) != 6 {
		t.Errorf("expected all 6 heading levels, got %d", len(cfg.Styles.Headings))
	}
	if got := cfg.Styles.Headings[2].Font.Size; got != 16 {
		t.Errorf("expected level 2 font default preserved, got %g", got)
	}
}

func TestParseConversion_RejectsBadTemplate(t *testing.T) {
	bad := []byte(`
styles:
  headings:
    1:
      numbering: "%x"
`)
	if _, err := ParseConversion(bad); err == nil {
		t.Fatal("expected bad numbering template to fail validation")
	}
}

func TestParseConversion_RejectsGarbage(t *testing.T) {
	if _, err := ParseConversion([]byte("document: [unclosed")); err == nil {
		t.Fatal("expected malformed YAML to fail")
	}
}

func TestMergeYAML_OverlayWins(t *testing.T) {
	base := DefaultConversion()
	overlay := []byte(`
styles:
  paragraph:
    line_spacing: 2.0
`)

	merged, err := MergeYAML(base, overlay)
	if err != nil {
		t.Fatalf("MergeYAML failed: %v", err)
	}
	if merged.Styles.Paragraph.LineSpacing != 2.0 {
		t.Errorf("expected line spacing 2.0, got %g", merged.Styles.Paragraph.LineSpacing)
	}
	if base.Styles.Paragraph.LineSpacing != 1.15 {
		t.Errorf("base mutated: line spacing %g", base.Styles.Paragraph.LineSpacing)
	}
}

func TestApplyOverrides_CoercesStrings(t *testing.T) {
	cfg, err := ApplyOverrides(DefaultConversion(), map[string]interface{}{
		"document.default_font.size":  "14",
		"styles.headings.1.numbering": "%1.",
	})
	if err != nil {
		t.Fatalf("ApplyOverrides failed: %v", err)
	}
	if cfg.Document.DefaultFont.Size != 14 {
		t.Errorf("expected size 14, got %g", cfg.Document.DefaultFont.Size)
	}
	if cfg.Styles.Headings[1].Numbering != "%1." {
		t.Errorf("expected numbering set, got %q", cfg.Styles.Headings[1].Numbering)
	}
}

func TestApplyOverrides_RejectsInvalidResult(t *testing.T) {
	_, err := ApplyOverrides(DefaultConversion(), map[string]interface{}{
		"document.page_size.width": "-1",
	})
	if err == nil {
		t.Fatal("expected invalid override to fail validation")
	}
}

func TestConversionYAML_RoundTrip(t *testing.T) {
	cfg := DefaultConversion()
	h1 := cfg.Styles.Headings[1]
	h1.Numbering = "%1."
	cfg.Styles.Headings[1] = h1

	b, err := cfg.YAML()
	if err != nil {
		t.Fatalf("YAML failed: %v", err)
	}
	if !strings.Contains(string(b), "numbering:") {
		t.Error("expected numbering in serialized config")
	}

	back, err := ParseConversion(b)
	if err != nil {
		t.Fatalf("round trip parse failed: %v", err)
	}
	if back.Styles.Headings[1].Numbering != "%1." {
		t.Errorf("numbering lost in round trip: %q", back.Styles.Headings[1].Numbering)
	}
	if back.Document.PageSize.Height != 842 {
		t.Errorf("page height lost in round trip: %g", back.Document.PageSize.Height)
	}
}

func TestWriteDefaultAndLoadConversion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draftmill.yaml")

	if _, err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	cfg, err := LoadConversion(path)
	if err != nil {
		t.Fatalf("LoadConversion failed: %v", err)
	}
	if cfg.Document.DefaultFont.Family != "Times New Roman" {
		t.Errorf("unexpected font family %q", cfg.Document.DefaultFont.Family)
	}
}

func TestLoadConversion_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draftmill.yaml")
	if _, err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	t.Setenv("DRAFTMILL_STYLES__HEADINGS__1__NUMBERING", "%1.")

	cfg, err := LoadConversion(path)
	if err != nil {
		t.Fatalf("LoadConversion failed: %v", err)
	}
	if cfg.Styles.Headings[1].Numbering != "%1." {
		t.Errorf("env override not applied, got %q", cfg.Styles.Headings[1].Numbering)
	}
}

func TestLoadConversion_MissingFile(t *testing.T) {
	if _, err := LoadConversion(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected missing file to error")
	}
}
