package style_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/docrender/pkg/style"
)

func TestParseColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    style.Color
		wantErr bool
	}{
		{name: "empty inherits", input: "", want: style.Color{}},
		{name: "six digits", input: "#0000ee", want: style.RGB(0, 0, 0xee)},
		{name: "three digits", input: "#fff", want: style.RGB(0xff, 0xff, 0xff)},
		{name: "with alpha", input: "#10203080", want: style.Color{R: 0x10, G: 0x20, B: 0x30, A: 0x80}},
		{name: "garbage", input: "blue", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := style.ParseColor(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColorHex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "#e6e6e6", style.RGB(230, 230, 230).Hex())
	assert.Equal(t, "#01020304", style.Color{R: 1, G: 2, B: 3, A: 4}.Hex())
	assert.Empty(t, style.Color{}.Hex())
}

func TestMerge(t *testing.T) {
	t.Parallel()

	parent := style.Style{Fg: style.RGB(1, 1, 1), Italic: true}
	child := style.Style{Weight: style.WeightBold, Bg: style.RGB(9, 9, 9)}

	got := parent.Merge(child)

	assert.True(t, got.Italic)
	assert.True(t, got.Bold())
	assert.Equal(t, style.RGB(1, 1, 1), got.Fg)
	assert.Equal(t, style.RGB(9, 9, 9), got.Bg)
	assert.InDelta(t, 1.0, got.EffectiveScale(), 1e-9)
}

func TestBlendEndpoints(t *testing.T) {
	t.Parallel()

	black := style.RGB(0, 0, 0)
	white := style.RGB(255, 255, 255)

	assert.Equal(t, black, black.Blend(white, 0))
	assert.Equal(t, white, black.Blend(white, 1))
}
