package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/docrender/internal/logging"
	"github.com/yaklabco/docrender/pkg/runner"
)

func TestPlanRefresh(t *testing.T) {
	t.Parallel()

	exts := runner.DefaultExtensions()
	files := []string{"/docs/a.md", "/docs/b.html", "/docs/c.md"}

	tests := []struct {
		name       string
		changed    []string
		wantFiles  []string
		wantAssets bool
	}{
		{
			name:      "changed document",
			changed:   []string{"/docs/b.html"},
			wantFiles: []string{"/docs/b.html"},
		},
		{
			name:      "removed document",
			changed:   []string{"/docs/gone.md"},
			wantFiles: []string{},
		},
		{
			name:       "changed image re-renders everything",
			changed:    []string{"/docs/a.md", "/docs/logo.svg"},
			wantFiles:  files,
			wantAssets: true,
		},
		{
			name:      "extension case is ignored",
			changed:   []string{"/docs/NOTES.MD"},
			wantFiles: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, assets := planRefresh(tt.changed, files, exts)
			assert.Equal(t, tt.wantFiles, got)
			assert.Equal(t, tt.wantAssets, assets)
		})
	}
}

func TestWatchDirs(t *testing.T) {
	t.Parallel()

	files := []string{"/work/docs/a.md", "/work/docs/b.md", "/work/README.md"}

	t.Run("from paths", func(t *testing.T) {
		t.Parallel()

		dirs := watchDirs(files, runner.Options{
			Paths:      []string{"docs", "README.md"},
			WorkingDir: "/work",
			Extensions: runner.DefaultExtensions(),
		})
		assert.Equal(t, []string{"/work", "/work/docs"}, dirs)
	})

	t.Run("working directory by default", func(t *testing.T) {
		t.Parallel()

		dirs := watchDirs(nil, runner.Options{WorkingDir: filepath.FromSlash("/work")})
		assert.Equal(t, []string{"/work"}, dirs)
	})
}

func TestSessionLogFollowsContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "debug")
	sess := &session{ctx: logging.WithLogger(context.Background(), logger)}

	assert.Same(t, logger, sess.log())

	sess.log().Debug("re-rendering", logging.FieldPaths, []string{"a.md"})
	assert.Contains(t, buf.String(), "re-rendering")
	assert.Contains(t, buf.String(), "a.md")
}
