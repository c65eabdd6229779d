package config

// templateHeader introduces a generated configuration file.
const templateHeader = `# docrender configuration
#
# markdown.lists   split-on-marker | split-on-kind
# html.policy      path to a YAML element/attribute allowlist
# theme.name       any built-in chroma style, "default", "dark", or a theme
#                  defined in one of theme.files
# assets.root      directory image paths resolve against (default: the
#                  working directory)
# calendar.locale  BCP 47 tag; calendar.week_start overrides its first day
#
# Environment variables DOCRENDER_* override these values.`

// Template returns a commented configuration file holding the defaults.
func Template() ([]byte, error) {
	return NewConfig().ToYAMLWithHeader(templateHeader)
}
