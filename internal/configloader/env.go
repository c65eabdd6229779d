package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/yaklabco/docrender/pkg/config"
)

// envVarPrefix is the prefix for all docrender environment variables.
const envVarPrefix = "DOCRENDER_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
	envTypeFloat
	envTypeSlice
)

// envMapping binds one environment variable to a config field.
type envMapping struct {
	typ         envFieldType
	description string
	apply       func(cfg *config.Config, v envValue)
}

// envValue carries a parsed environment value.
type envValue struct {
	s     string
	b     bool
	i     int
	f     float64
	slice []string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"FLAVOR": {envTypeString, "Markdown flavor: gfm or commonmark",
		func(c *config.Config, v envValue) { c.Markdown.Flavor = config.Flavor(v.s) }},
	"LISTS": {envTypeString, "List policy: split-on-marker or split-on-kind",
		func(c *config.Config, v envValue) { c.Markdown.Lists = v.s }},
	"HTML_POLICY": {envTypeString, "Path to an HTML allowlist",
		func(c *config.Config, v envValue) { c.HTML.Policy = v.s }},
	"THEME": {envTypeString, "Theme name",
		func(c *config.Config, v envValue) { c.Theme.Name = v.s }},
	"THEME_FILES": {envTypeSlice, "Comma-separated list of theme files",
		func(c *config.Config, v envValue) { c.Theme.Files = v.slice }},
	"DETECT_LANGUAGE": {envTypeBool, "Detect the language of untagged code: true or false",
		func(c *config.Config, v envValue) { c.Highlight.DetectLanguage = &v.b }},
	"BASE_SIZE": {envTypeFloat, "Body font size",
		func(c *config.Config, v envValue) { c.Layout.BaseSize = v.f }},
	"ASSETS_ROOT": {envTypeString, "Directory image paths resolve against",
		func(c *config.Config, v envValue) { c.Assets.Root = v.s }},
	"DENSITY": {envTypeFloat, "Pixel density for rasterized icons",
		func(c *config.Config, v envValue) { c.Assets.Density = v.f }},
	"LOCALE": {envTypeString, "Calendar locale (BCP 47)",
		func(c *config.Config, v envValue) { c.Calendar.Locale = v.s }},
	"WEEK_START": {envTypeString, "Calendar week start day",
		func(c *config.Config, v envValue) { c.Calendar.WeekStart = v.s }},
	"JOBS": {envTypeInt, "Number of parallel workers (0 = auto)",
		func(c *config.Config, v envValue) { c.Jobs = v.i }},
	"FORMAT": {envTypeString, "Output format: text, ansi or json",
		func(c *config.Config, v envValue) { c.Format = config.OutputFormat(v.s) }},
	"IGNORE": {envTypeSlice, "Comma-separated list of ignore patterns",
		func(c *config.Config, v envValue) { c.Ignore = v.slice }},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with DOCRENDER_ (e.g., DOCRENDER_THEME).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for _, suffix := range sortedEnvSuffixes() {
		envVar := envVarPrefix + suffix
		raw := os.Getenv(envVar)
		if raw == "" {
			continue
		}

		mapping := envMappings[suffix]
		value, err := parseEnvValue(mapping.typ, raw, envVar)
		if err != nil {
			return err
		}
		mapping.apply(cfg, value)
	}

	return nil
}

func parseEnvValue(typ envFieldType, raw, envVar string) (envValue, error) {
	switch typ {
	case envTypeString:
		return envValue{s: raw}, nil
	case envTypeBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return envValue{}, fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, raw)
		}
		return envValue{b: b}, nil
	case envTypeInt:
		i, err := strconv.Atoi(raw)
		if err != nil {
			return envValue{}, fmt.Errorf("invalid integer for %s: %q", envVar, raw)
		}
		return envValue{i: i}, nil
	case envTypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return envValue{}, fmt.Errorf("invalid number for %s: %q", envVar, raw)
		}
		return envValue{f: f}, nil
	case envTypeSlice:
		return envValue{slice: parseSliceValue(raw)}, nil
	default:
		return envValue{}, fmt.Errorf("unknown field type for %s", envVar)
	}
}

// parseSliceValue parses a comma-separated string into a slice.
// Each element is trimmed of whitespace.
func parseSliceValue(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func sortedEnvSuffixes() []string {
	suffixes := make([]string, 0, len(envMappings))
	for suffix := range envMappings {
		suffixes = append(suffixes, suffix)
	}
	sort.Strings(suffixes)
	return suffixes
}

// ListEnvVars returns every supported environment variable with its
// description.
func ListEnvVars() map[string]string {
	out := make(map[string]string, len(envMappings))
	for suffix, mapping := range envMappings {
		out[envVarPrefix+suffix] = mapping.description
	}
	return out
}
