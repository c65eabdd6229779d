// Package langdetect identifies the language of code blocks. It resolves
// explicit language annotations to canonical identifiers and, when asked,
// guesses the language of untagged code with go-enry.
package langdetect

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Plaintext is the identifier for code that must not be highlighted.
const Plaintext = "plaintext"

// classifierCandidates bounds the go-enry classifier to languages commonly
// found in documentation.
//
//nolint:gochecknoglobals // Read-only lookup table.
var classifierCandidates = []string{
	"Go", "Python", "Shell", "JavaScript", "TypeScript",
	"Ruby", "Rust", "Java", "C", "C++", "SQL", "JSON",
	"YAML", "HTML", "CSS", "Markdown", "Dockerfile",
}

// signature is a highly indicative snippet pattern checked before the classifier.
type signature struct {
	lang    string
	pattern *regexp.Regexp
}

//nolint:gochecknoglobals // Read-only lookup table.
var signatures = []signature{
	{"go", regexp.MustCompile(`\A\s*package\s+\w+`)},
	{"python", regexp.MustCompile(`(?m)^\s*(def\s+\w+\(.*\)\s*:|from\s+[\w.]+\s+import\s|if __name__ == .__main__.)`)},
	{"html", regexp.MustCompile(`(?i)<!doctype html|<html[\s>]|<head>|<body[\s>]`)},
	{"json", regexp.MustCompile(`\A\s*[\[{]\s*"`)},
	{"dockerfile", regexp.MustCompile(`(?m)\A\s*FROM\s+\S+|^WORKDIR\s+\S+`)},
	{"sql", regexp.MustCompile(`(?i)\A\s*(SELECT|INSERT|UPDATE|DELETE|CREATE)\s`)},
	{"rust", regexp.MustCompile(`fn\s+main\(\)|println!|let\s+mut\s`)},
	{"javascript", regexp.MustCompile(`=>|console\.log|\bconst\s+\w+\s*=`)},
}

// Detect guesses the language of code. It returns Plaintext when no
// confident guess can be made.
func Detect(code []byte) string {
	if len(bytes.TrimSpace(code)) == 0 {
		return Plaintext
	}

	if lang, safe := enry.GetLanguageByShebang(code); safe {
		return canonical(lang)
	}

	for _, sig := range signatures {
		if sig.pattern.Match(code) {
			return sig.lang
		}
	}

	if looksLikeYAML(code) {
		return "yaml"
	}

	if lang, safe := enry.GetLanguageByClassifier(code, classifierCandidates); safe && lang != "" {
		return canonical(lang)
	}

	return Plaintext
}

// Normalize turns a language annotation into a canonical identifier.
// It accepts fence info strings ("go {linenos=true}"), HTML class values
// ("language-go") and aliases ("golang", "js"). Unknown identifiers are
// lowercased and kept; an empty annotation yields "".
func Normalize(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}

	if i := strings.IndexAny(tag, " \t,{"); i >= 0 {
		tag = tag[:i]
	}
	for _, prefix := range []string{"language-", "lang-"} {
		if len(tag) > len(prefix) && strings.EqualFold(tag[:len(prefix)], prefix) {
			tag = tag[len(prefix):]
			break
		}
	}
	tag = strings.ToLower(tag)

	switch tag {
	case "", "text", "txt", "plain", "plaintext", "none", "nohighlight", "no-highlight":
		return Plaintext
	}

	if lang, ok := enry.GetLanguageByAlias(tag); ok {
		return canonical(lang)
	}
	return tag
}

// looksLikeYAML counts "key: value" and "- item" lines.
func looksLikeYAML(code []byte) bool {
	keys := 0
	for _, line := range bytes.Split(code, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		switch {
		case bytes.HasPrefix(line, []byte("- ")):
			keys++
		case bytes.Contains(line, []byte(": ")) && !bytes.ContainsAny(line, "({") && line[0] != '"':
			keys++
		}
	}
	return keys >= 2
}

// canonical converts a go-enry language name to an identifier.
func canonical(lang string) string {
	if lang == "Shell" {
		return "bash"
	}
	return strings.ToLower(lang)
}
