package textmetrics_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/docrender/pkg/style"
	"github.com/yaklabco/docrender/pkg/textmetrics"
)

func TestGoFonts_Measure(t *testing.T) {
	t.Parallel()

	fonts, err := textmetrics.NewGoFonts()
	require.NoError(t, err)

	plain := fonts.Measure("Hello", style.Style{}, 16)
	assert.Positive(t, plain.Width)
	assert.Positive(t, plain.Ascent)
	assert.Positive(t, plain.Descent)

	assert.Equal(t, plain, fonts.Measure("Hello", style.Style{}, 16), "measurement is deterministic")

	doubled := fonts.Measure("Hello", style.Style{Scale: 2}, 16)
	assert.InDelta(t, plain.Width*2, doubled.Width, 0.5)
	assert.Greater(t, doubled.Height(), plain.Height())

	assert.Greater(t, fonts.Measure("Hello", style.Style{Weight: style.WeightBold}, 16).Width, plain.Width)

	assert.Zero(t, fonts.Measure("", style.Style{}, 16).Width)
	assert.Equal(t, textmetrics.Metrics{}, fonts.Measure("x", style.Style{}, 0))
}

func TestGoFonts_Monospace(t *testing.T) {
	t.Parallel()

	mono := style.Style{Monospace: true}
	fonts := textmetrics.Default()

	narrow := fonts.Measure("iiii", mono, 12)
	wide := fonts.Measure("WWWW", mono, 12)
	assert.Equal(t, narrow.Width, wide.Width)
}

func TestGoFonts_Concurrent(t *testing.T) {
	t.Parallel()

	fonts := textmetrics.Default()
	want := fonts.Measure("concurrent text", style.Style{Italic: true}, 14)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, fonts.Measure("concurrent text", style.Style{Italic: true}, 14))
		}()
	}
	wg.Wait()
}
