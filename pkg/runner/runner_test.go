package runner_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/docrender/pkg/fsutil"
	"github.com/yaklabco/docrender/pkg/render"
	"github.com/yaklabco/docrender/pkg/runner"
	"github.com/yaklabco/docrender/pkg/runs"
)

// fakeRenderer records calls and returns a one-run sequence per document.
type fakeRenderer struct {
	mu      sync.Mutex
	formats map[string]render.Format
	calls   atomic.Int64
	delay   time.Duration
	fail    string
}

func (f *fakeRenderer) Render(source string, format render.Format, _ string) (*runs.Sequence, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	if f.formats == nil {
		f.formats = make(map[string]render.Format)
	}
	f.formats[source] = format
	f.mu.Unlock()

	seq := &runs.Sequence{Items: []runs.Item{{Kind: runs.ItemRun, Run: &runs.StyledRun{Text: source}}}}
	if source == f.fail {
		return seq, errors.New("broken asset")
	}
	return seq, nil
}

func TestRunner_Run_NoFiles(t *testing.T) {
	t.Parallel()

	fake := &fakeRenderer{}
	result, err := runner.New(fake).Run(context.Background(), runner.Options{WorkingDir: tree(t, "notes.txt")})
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.Equal(t, 0, result.Stats.FilesDiscovered)
	assert.False(t, result.HasFailures())
	assert.Zero(t, fake.calls.Load())
}

func TestRunner_Run_OrderAndFormats(t *testing.T) {
	t.Parallel()

	dir := tree(t, "z.md", "a.html", "m/b.md", "m/c.htm")
	fake := &fakeRenderer{delay: time.Millisecond}

	for _, jobs := range []int{1, 4} {
		result, err := runner.New(fake).Run(context.Background(), runner.Options{WorkingDir: dir, Jobs: jobs})
		require.NoError(t, err)

		paths := make([]string, len(result.Files))
		for i, f := range result.Files {
			paths[i] = f.Path
			require.NotNil(t, f.Sequence)
			assert.Equal(t, "# "+filepath.ToSlash(mustRel(t, dir, f.Path)), f.Sequence.Text())
		}
		assert.Equal(t, []string{"a.html", "m/b.md", "m/c.htm", "z.md"}, rel(t, dir, paths))
		assert.Equal(t, render.FormatHTML, result.Files[0].Format)
		assert.Equal(t, render.FormatMarkdown, result.Files[1].Format)
		assert.Equal(t, render.FormatHTML, result.Files[2].Format)
		assert.Equal(t, 4, result.Stats.FilesRendered)
		assert.Equal(t, 4, result.Stats.Runs)
	}
	assert.Equal(t, render.FormatHTML, fake.formats["# a.html"])
}

func TestRunner_Run_Failures(t *testing.T) {
	t.Parallel()

	dir := tree(t, "ok.md", "broken.md")
	fake := &fakeRenderer{fail: "# broken.md"}
	r := runner.New(fake)

	result, err := r.RunFiles(context.Background(), []string{
		filepath.Join(dir, "broken.md"),
		filepath.Join(dir, "missing.md"),
		filepath.Join(dir, "ok.md"),
	}, runner.Options{})
	require.NoError(t, err)
	require.Len(t, result.Files, 3)

	assert.Error(t, result.Files[0].Error)
	assert.False(t, result.Files[0].Failed())
	assert.True(t, result.Files[1].Failed())
	assert.ErrorIs(t, result.Files[1].Error, fsutil.ErrNotFound)
	assert.Nil(t, result.Files[1].Snapshot)
	assert.NoError(t, result.Files[2].Error)
	require.NotNil(t, result.Files[2].Snapshot)
	assert.Equal(t, filepath.Join(dir, "ok.md"), result.Files[2].Snapshot.Path)

	assert.Equal(t, 2, result.Stats.FilesRendered)
	assert.Equal(t, 1, result.Stats.FilesFailed)
	assert.Equal(t, 1, result.Stats.FilesWithAssetErrors)
	assert.True(t, result.HasFailures())
}

func TestRunner_Run_Cancelled(t *testing.T) {
	t.Parallel()

	dir := tree(t, "a.md", "b.md")
	files := []string{filepath.Join(dir, "a.md"), filepath.Join(dir, "b.md")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := runner.New(&fakeRenderer{}).RunFiles(ctx, files, runner.Options{Jobs: 1})
	require.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, result)
}

func TestRunner_Run_RealRenderer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.md"), []byte("# Title\n\nSome *text*.\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.html"), []byte("<h1>Title</h1><p>Some <em>text</em>.</p>"), 0o644))

	renderer := render.New()
	result, err := runner.New(renderer).Run(context.Background(), runner.Options{WorkingDir: dir, Jobs: 2})
	require.NoError(t, err)
	require.Len(t, result.Files, 2)

	for _, f := range result.Files {
		require.NoError(t, f.Error)
		assert.Equal(t, "Title\n\nSome text.", f.Sequence.Text(), f.Path)
	}
}

func mustRel(t *testing.T, dir, path string) string {
	t.Helper()

	r, err := filepath.Rel(dir, path)
	require.NoError(t, err)
	return r
}
