package configloader

import "github.com/yaklabco/docrender/pkg/config"

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Pointer booleans: override overwrites base if set
//   - Slices: override replaces base entirely if override is non-nil
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := base.Clone()

	setString(&result.Markdown.Lists, override.Markdown.Lists)
	if override.Markdown.Flavor != "" {
		result.Markdown.Flavor = override.Markdown.Flavor
	}
	setString(&result.HTML.Policy, override.HTML.Policy)
	setString(&result.Theme.Name, override.Theme.Name)
	setString(&result.Assets.Root, override.Assets.Root)
	setString(&result.Calendar.Locale, override.Calendar.Locale)
	setString(&result.Calendar.WeekStart, override.Calendar.WeekStart)
	if override.Format != "" {
		result.Format = override.Format
	}

	setNumber(&result.Layout.BaseSize, override.Layout.BaseSize)
	setNumber(&result.Assets.Density, override.Assets.Density)
	setNumber(&result.Assets.MaxImageSide, override.Assets.MaxImageSide)
	setNumber(&result.Assets.MaxBytes, override.Assets.MaxBytes)
	setNumber(&result.Jobs, override.Jobs)

	setBool(&result.Highlight.DetectLanguage, override.Highlight.DetectLanguage)
	setBool(&result.Calendar.SixWeeks, override.Calendar.SixWeeks)

	// Watch is CLI-only and can only be switched on.
	if override.Watch {
		result.Watch = true
	}

	if override.Theme.Files != nil {
		result.Theme.Files = append([]string(nil), override.Theme.Files...)
	}
	if override.Ignore != nil {
		result.Ignore = append([]string(nil), override.Ignore...)
	}

	return result
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setNumber[T int | int64 | float64](dst *T, v T) {
	if v != 0 {
		*dst = v
	}
}

func setBool(dst **bool, v *bool) {
	if v != nil {
		b := *v
		*dst = &b
	}
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
