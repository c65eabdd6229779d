package htmldoc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/docrender/pkg/htmldoc"
)

func TestInspect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       string
		native      bool
		scripted    bool
		unsupported []string
	}{
		{name: "plain document", input: `<h1>Title</h1><p>Body <a href="/x">link</a></p>`, native: true},
		{name: "script element", input: `<p>x</p><script>run()</script>`, scripted: true, unsupported: []string{"script"}},
		{name: "event handler", input: `<p onclick="x()">Hi</p>`, scripted: true, unsupported: []string{"onclick"}},
		{name: "javascript url", input: `<a href=" java	script:alert(1)">x</a>`, scripted: true, unsupported: []string{"href=javascript:"}},
		{name: "iframe", input: `<iframe src="https://example.com"></iframe><iframe></iframe>`, unsupported: []string{"iframe"}},
		{name: "form controls", input: `<form><input><button>Go</button></form>`, unsupported: []string{"button", "form", "input"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			report := htmldoc.Inspect(tt.input)

			assert.Equal(t, tt.native, report.Native())
			assert.Equal(t, tt.scripted, report.Scripted)
			assert.Equal(t, tt.unsupported, report.Unsupported)
		})
	}
}
