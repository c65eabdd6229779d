package diag_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/docrender/pkg/diag"
)

func TestRenderError_Is(t *testing.T) {
	t.Parallel()

	cause := errors.New("bad viewBox")
	err := fmt.Errorf("render icon: %w", diag.NewInvalidAsset("star.svg", cause))

	assert.ErrorIs(t, err, diag.ErrInvalidAsset)
	assert.NotErrorIs(t, err, diag.ErrAssetRasterizeFailed)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "star.svg")

	var re *diag.RenderError
	assert.ErrorAs(t, err, &re)
	assert.Equal(t, diag.InvalidAsset, re.Kind)
}

func TestRenderError_RasterizeFailed(t *testing.T) {
	t.Parallel()

	err := diag.NewRasterizeFailed("logo", errors.New("panic in scanner"))

	assert.ErrorIs(t, err, diag.ErrAssetRasterizeFailed)
	assert.Equal(t, "rasterize asset logo: panic in scanner", err.Error())
}

func TestCollector_Concurrent(t *testing.T) {
	t.Parallel()

	var (
		c  diag.Collector
		wg sync.WaitGroup
	)

	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			kind := diag.ParseDegraded
			if i%2 == 0 {
				kind = diag.SanitizationRejected
			}
			c.Report(diag.Event{Kind: kind, Message: "x"})
		}(i)
	}
	wg.Wait()

	assert.Len(t, c.Events(), 20)
	assert.Equal(t, 10, c.Count(diag.SanitizationRejected))
}

func TestMulti(t *testing.T) {
	t.Parallel()

	var a, b diag.Collector
	sink := diag.Multi{&a, nil, &b}
	sink.Report(diag.Event{Kind: diag.HighlightUnavailable})

	assert.Equal(t, 1, a.Count(diag.HighlightUnavailable))
	assert.Equal(t, 1, b.Count(diag.HighlightUnavailable))
	assert.Equal(t, diag.Discard, diag.OrDiscard(nil))
}
