package reporter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/docrender/pkg/render"
	"github.com/yaklabco/docrender/pkg/reporter"
	"github.com/yaklabco/docrender/pkg/runner"
	"github.com/yaklabco/docrender/pkg/runs"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    reporter.Format
		wantErr bool
	}{
		{name: "empty defaults to text", input: "", want: reporter.FormatText},
		{name: "text", input: "text", want: reporter.FormatText},
		{name: "ansi", input: "ansi", want: reporter.FormatANSI},
		{name: "json", input: "json", want: reporter.FormatJSON},
		{name: "unknown format", input: "sarif", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := reporter.ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}

	assert.False(t, reporter.Format("").IsValid())
	_, err := reporter.New(reporter.Options{Format: "xml"})
	assert.Error(t, err)
}

// sampleResult renders two documents and one failure under /work.
func sampleResult(t *testing.T) *runner.Result {
	t.Helper()

	r := render.New()
	md, err := r.RenderMarkdown("# Hello\n\nSome **bold** text.\n")
	require.NoError(t, err)
	html, err := r.RenderHTML("<p>From <em>HTML</em></p>")
	require.NoError(t, err)

	root := filepath.FromSlash("/work")
	return &runner.Result{
		Files: []runner.FileOutcome{
			{Path: filepath.Join(root, "a.md"), Format: render.FormatMarkdown, Sequence: md},
			{Path: filepath.Join(root, "b.html"), Format: render.FormatHTML, Sequence: html},
			{Path: filepath.Join(root, "c.md"), Format: render.FormatMarkdown, Error: errors.New("read c.md: permission denied")},
		},
		Stats: runner.Stats{FilesDiscovered: 3, FilesRendered: 2, FilesFailed: 1, Runs: len(md.Runs()) + len(html.Runs())},
	}
}

func TestTextReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep, err := reporter.New(reporter.Options{
		Writer:      &buf,
		Format:      reporter.FormatText,
		ShowSummary: true,
		WorkingDir:  filepath.FromSlash("/work"),
	})
	require.NoError(t, err)

	failed, err := rep.Report(context.Background(), sampleResult(t))
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	out := buf.String()
	assert.Contains(t, out, "a.md\nHello\n\nSome bold text.\n")
	assert.Contains(t, out, "b.html\nFrom HTML\n")
	assert.Contains(t, out, "c.md: error: read c.md: permission denied")
	assert.Contains(t, out, "Rendered 2 files")
	assert.NotContains(t, out, "\x1b[")
}

func TestTextReporter_SingleFile(t *testing.T) {
	t.Parallel()

	result := sampleResult(t)
	result.Files = result.Files[:1]

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{Writer: &buf, ShowSummary: true}, false)
	failed, err := rep.Report(context.Background(), result)
	require.NoError(t, err)
	assert.Zero(t, failed)
	assert.Equal(t, "Hello\n\nSome bold text.\n", buf.String())
}

func TestTextReporter_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{Writer: &buf, ShowSummary: true}, false)
	_, err := rep.Report(context.Background(), &runner.Result{})
	require.NoError(t, err)
	assert.Equal(t, "No files to render.\n", buf.String())
}

func TestANSIReporter(t *testing.T) {
	t.Parallel()

	var colored, plain bytes.Buffer
	result := sampleResult(t)

	rep, err := reporter.New(reporter.Options{Writer: &colored, Format: reporter.FormatANSI, Width: 40})
	require.NoError(t, err)
	_, err = rep.Report(context.Background(), result)
	require.NoError(t, err)
	assert.Contains(t, colored.String(), "\x1b[")

	rep, err = reporter.New(reporter.Options{Writer: &plain, Format: reporter.FormatANSI, Width: 40, Color: "never"})
	require.NoError(t, err)
	_, err = rep.Report(context.Background(), result)
	require.NoError(t, err)
	assert.NotContains(t, plain.String(), "\x1b[")
	assert.Contains(t, plain.String(), "Some bold text.")
}

func TestJSONReporter(t *testing.T) {
	t.Parallel()

	result := sampleResult(t)

	var buf bytes.Buffer
	rep, err := reporter.New(reporter.Options{Writer: &buf, Format: reporter.FormatJSON, WorkingDir: filepath.FromSlash("/work")})
	require.NoError(t, err)
	failed, err := rep.Report(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	// Sequences are decoded raw; their enums only marshal.
	var out struct {
		Files []struct {
			Path     string          `json:"path"`
			Format   string          `json:"format"`
			Digest   string          `json:"digest"`
			Text     string          `json:"text"`
			Sequence json.RawMessage `json:"sequence"`
			Error    string          `json:"error"`
		} `json:"files"`
		Summary reporter.JSONSummary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out.Files, 3)

	first := out.Files[0]
	assert.Equal(t, "a.md", first.Path)
	assert.Equal(t, "markdown", first.Format)
	assert.Equal(t, "Hello\n\nSome bold text.", first.Text)
	assert.NotEmpty(t, first.Digest)
	assert.Contains(t, string(first.Sequence), `"items"`)

	assert.Equal(t, "html", out.Files[1].Format)
	assert.Contains(t, out.Files[2].Error, "permission denied")
	assert.Empty(t, out.Files[2].Digest)
	assert.Equal(t, 2, out.Summary.FilesRendered)
	assert.Equal(t, 1, out.Summary.FilesFailed)
}

func TestJSONReporter_Compact(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf, Compact: true})
	_, err := rep.Report(context.Background(), sampleResult(t))
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.NotContains(t, buf.String(), `"sequence"`)

	buf.Reset()
	_, err = rep.Report(context.Background(), nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"files":[]`)
}

func TestJSONReporter_SequenceKinds(t *testing.T) {
	t.Parallel()

	result := sampleResult(t)
	result.Files = result.Files[:1]

	var buf bytes.Buffer
	_, err := reporter.NewJSONReporter(reporter.Options{Writer: &buf}).Report(context.Background(), result)
	require.NoError(t, err)

	// Item kinds are encoded by name.
	assert.Contains(t, buf.String(), `"kind": "`+runs.ItemBlockBreak.String()+`"`)
}
