package highlight

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/docrender/pkg/style"
)

// themeFile is the YAML layout of a theme file:
//
//	themes:
//	  - name: paper
//	    base: default
//	    plain: {fg: "#333333", bg: "#fffff8"}
//	    classes:
//	      keyword: {fg: "#0000aa", bold: true}
type themeFile struct {
	Themes []themeSpec `yaml:"themes"`
}

type themeSpec struct {
	Name    string               `yaml:"name"`
	Base    string               `yaml:"base,omitempty"`
	Plain   styleSpec            `yaml:"plain,omitempty"`
	Classes map[string]styleSpec `yaml:"classes,omitempty"`
}

type styleSpec struct {
	Fg            string  `yaml:"fg,omitempty"`
	Bg            string  `yaml:"bg,omitempty"`
	Bold          bool    `yaml:"bold,omitempty"`
	Italic        bool    `yaml:"italic,omitempty"`
	Underline     bool    `yaml:"underline,omitempty"`
	Strikethrough bool    `yaml:"strikethrough,omitempty"`
	Monospace     bool    `yaml:"monospace,omitempty"`
	Scale         float64 `yaml:"scale,omitempty"`
}

// LoadThemeYAML parses themes from YAML. A theme's base may name a built-in
// theme or a theme defined earlier in the same document.
func LoadThemeYAML(data []byte) ([]*Theme, error) {
	var file themeFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse theme yaml: %w", err)
	}

	known := make(map[string]*Theme)
	for _, theme := range builtinThemes() {
		known[theme.Name()] = theme
	}

	themes := make([]*Theme, 0, len(file.Themes))
	for i, spec := range file.Themes {
		if spec.Name == "" {
			return nil, fmt.Errorf("theme %d: name is required", i)
		}

		plain, err := spec.Plain.style()
		if err != nil {
			return nil, fmt.Errorf("theme %q plain: %w", spec.Name, err)
		}
		classes := make(map[string]style.Style, len(spec.Classes))
		for class, s := range spec.Classes {
			if classes[class], err = s.style(); err != nil {
				return nil, fmt.Errorf("theme %q class %q: %w", spec.Name, class, err)
			}
		}

		var theme *Theme
		if spec.Base != "" {
			base, ok := known[spec.Base]
			if !ok {
				return nil, fmt.Errorf("theme %q: unknown base theme %q", spec.Name, spec.Base)
			}
			theme = base.With(spec.Name, plain, classes)
		} else {
			theme = NewTheme(spec.Name, plain, classes)
		}

		known[theme.Name()] = theme
		themes = append(themes, theme)
	}
	return themes, nil
}

// LoadThemeFile reads a YAML theme file.
func LoadThemeFile(path string) ([]*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theme file: %w", err)
	}
	themes, err := LoadThemeYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return themes, nil
}

func (s styleSpec) style() (style.Style, error) {
	fg, err := style.ParseColor(s.Fg)
	if err != nil {
		return style.Style{}, err
	}
	bg, err := style.ParseColor(s.Bg)
	if err != nil {
		return style.Style{}, err
	}
	out := style.Style{
		Fg:            fg,
		Bg:            bg,
		Italic:        s.Italic,
		Underline:     s.Underline,
		Strikethrough: s.Strikethrough,
		Monospace:     s.Monospace,
		Scale:         s.Scale,
	}
	if s.Bold {
		out.Weight = style.WeightBold
	}
	return out, nil
}
