package markdown_test

import (
	"testing"

	"github.com/yaklabco/docrender/pkg/content"
	"github.com/yaklabco/docrender/pkg/markdown"
)

func FuzzParse(f *testing.F) {
	seeds := []string{
		"",
		"# Title\n\nSome **bold** text.",
		"- a\n  - b\n* c\n1. d\n",
		"| a |\n|---|\n| b |\n",
		"```\nunterminated",
		"<div><script>x</script></div>\n\ntext <b>bold",
		"[link](<broken",
		"\xff\xfe",
		"e*\u0301*",
		"\U0001F1FA*\U0001F1F8*",
		"a**\u200d**b",
		"x`\u0301`",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, source string) {
		root := markdown.Parse(source)
		if root == nil || root.Kind != content.NodeDocument {
			t.Fatalf("expected a Document root")
		}

		if err := content.ValidateBoundaries(content.Flatten(root)); err != nil {
			t.Fatalf("misaligned spans for %q: %v", source, err)
		}
	})
}
