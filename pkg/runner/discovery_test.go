package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/docrender/pkg/runner"
)

// tree writes each file under dir and returns dir.
func tree(t *testing.T, files ...string) string {
	t.Helper()

	dir := t.TempDir()
	for _, f := range files {
		path := filepath.Join(dir, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("# "+f), 0o644))
	}
	return dir
}

// rel strips dir from each discovered path.
func rel(t *testing.T, dir string, files []string) []string {
	t.Helper()

	out := make([]string, len(files))
	for i, f := range files {
		r, err := filepath.Rel(dir, f)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(r)
	}
	return out
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	files := []string{
		"readme.md",
		"index.html",
		"docs/guide.md",
		"docs/api.markdown",
		"docs/legacy.htm",
		"docs/.draft.md",
		"vendor/pkg/doc.md",
		"node_modules/lib/readme.md",
		".git/notes.md",
		"src/main.go",
		"notes.txt",
	}

	tests := []struct {
		name string
		opts runner.Options
		want []string
	}{
		{
			name: "defaults",
			want: []string{
				"docs/api.markdown", "docs/guide.md", "docs/legacy.htm", "index.html",
				"node_modules/lib/readme.md", "readme.md", "vendor/pkg/doc.md",
			},
		},
		{
			name: "exclude directories",
			opts: runner.Options{ExcludeGlobs: []string{"vendor/**", "**/node_modules"}},
			want: []string{"docs/api.markdown", "docs/guide.md", "docs/legacy.htm", "index.html", "readme.md"},
		},
		{
			name: "exclude by name",
			opts: runner.Options{ExcludeGlobs: []string{"*.htm*", "{vendor,node_modules}/**"}},
			want: []string{"docs/api.markdown", "docs/guide.md", "readme.md"},
		},
		{
			name: "include",
			opts: runner.Options{IncludeGlobs: []string{"docs/**"}},
			want: []string{"docs/api.markdown", "docs/guide.md", "docs/legacy.htm"},
		},
		{
			name: "custom extensions",
			opts: runner.Options{Extensions: []string{".txt", ".GO"}},
			want: []string{"notes.txt", "src/main.go"},
		},
		{
			name: "multiple paths deduplicated",
			opts: runner.Options{Paths: []string{"docs", "readme.md", "./readme.md", "docs/guide.md"}},
			want: []string{"docs/api.markdown", "docs/guide.md", "docs/legacy.htm", "readme.md"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := tree(t, files...)
			opts := tt.opts
			opts.WorkingDir = dir

			got, err := runner.Discover(context.Background(), opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rel(t, dir, got))
		})
	}
}

func TestDiscover_Errors(t *testing.T) {
	t.Parallel()

	dir := tree(t, "a.md")

	_, err := runner.Discover(context.Background(), runner.Options{WorkingDir: dir, Paths: []string{"missing"}})
	require.Error(t, err)

	_, err = runner.Discover(context.Background(), runner.Options{WorkingDir: dir, ExcludeGlobs: []string{"[abc"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[abc")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = runner.Discover(ctx, runner.Options{WorkingDir: dir})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDiscover_DirectorySymlinks(t *testing.T) {
	t.Parallel()

	dir := tree(t, "real/doc.md")
	external := tree(t, "external.html")
	if err := os.Symlink(external, filepath.Join(dir, "linked")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	opts := runner.Options{WorkingDir: dir}
	got, err := runner.Discover(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"real/doc.md"}, rel(t, dir, got))

	opts.FollowSymlinks = true
	got, err = runner.Discover(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, strings.HasSuffix(got[0], "external.html") || strings.HasSuffix(got[1], "external.html"), got)
}

func TestDefaultExtensions(t *testing.T) {
	t.Parallel()

	assert.ElementsMatch(t, []string{".md", ".markdown", ".html", ".htm"}, runner.DefaultExtensions())
}
