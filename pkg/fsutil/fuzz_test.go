package fsutil_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/yaklabco/docrender/pkg/fsutil"
)

func FuzzWriteAtomicRoundTrip(f *testing.F) {
	f.Add([]byte(""))
	f.Add([]byte("# Title\n"))
	f.Add([]byte("\x89PNG\r\n\x1a\n"))
	f.Add(make([]byte, 1024))

	f.Fuzz(func(t *testing.T, content []byte) {
		path := filepath.Join(t.TempDir(), "out.bin")
		ctx := context.Background()

		if err := fsutil.WriteAtomic(ctx, path, content, 0); err != nil {
			t.Fatalf("WriteAtomic: %v", err)
		}

		got, snap, err := fsutil.ReadFile(ctx, path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if string(got) != string(content) {
			t.Fatalf("content mismatch: got %d bytes, want %d", len(got), len(content))
		}

		changed, err := fsutil.Changed(ctx, snap)
		if err != nil {
			t.Fatalf("Changed: %v", err)
		}
		if changed {
			t.Fatal("freshly read file reported as changed")
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("stat: %v", err)
		}
	})
}
