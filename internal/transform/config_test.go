package transform

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	t.Run("KnownTypes", func(t *testing.T) {
		for _, s := range []string{"restore", "fill", "remove", "recolor", "removeBackground"} {
			got, err := ParseType(s)
			require.NoError(t, err)
			assert.Equal(t, Type(s), got)
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := ParseType("sharpen")
		assert.Error(t, err)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := ParseType("")
		assert.Error(t, err)
	})
}

func TestMerge(t *testing.T) {
	t.Run("OverlayWinsOnSharedLeaf", func(t *testing.T) {
		base := Config{Recolor: &RecolorParams{Prompt: "shirt", To: "blue", Multiple: true}}
		overlay := Config{Recolor: &RecolorParams{To: "red"}}

		out := Merge(base, overlay)
		require.NotNil(t, out.Recolor)
		assert.Equal(t, "shirt", out.Recolor.Prompt)
		assert.Equal(t, "red", out.Recolor.To)
		assert.True(t, out.Recolor.Multiple)
	})

	t.Run("DisjointKeysBothRetained", func(t *testing.T) {
		base := Config{Restore: &RestoreParams{Enabled: true}}
		overlay := Config{Fill: &FillParams{AspectRatio: "1:1", Width: 1000, Height: 1000}}

		out := Merge(base, overlay)
		require.NotNil(t, out.Restore)
		assert.True(t, out.Restore.Enabled)
		require.NotNil(t, out.Fill)
		assert.Equal(t, "1:1", out.Fill.AspectRatio)
	})

	t.Run("EmptyOverlayLeafKeepsBase", func(t *testing.T) {
		base := Config{Remove: &RemoveParams{Prompt: "lamp", RemoveShadow: true}}
		overlay := Config{Remove: &RemoveParams{Multiple: true}}

		out := Merge(base, overlay)
		require.NotNil(t, out.Remove)
		assert.Equal(t, "lamp", out.Remove.Prompt)
		assert.True(t, out.Remove.RemoveShadow)
		assert.True(t, out.Remove.Multiple)
	})

	t.Run("DoesNotMutateArguments", func(t *testing.T) {
		base := Config{Fill: &FillParams{AspectRatio: "3:4", Width: 1000, Height: 1334}}
		overlay := Config{Fill: &FillParams{AspectRatio: "9:16"}}

		_ = Merge(base, overlay)
		assert.Equal(t, "3:4", base.Fill.AspectRatio)
		assert.Equal(t, "9:16", overlay.Fill.AspectRatio)
		assert.Equal(t, 0, overlay.Fill.Width)
	})

	t.Run("Associative", func(t *testing.T) {
		a := Config{Recolor: &RecolorParams{Prompt: "shirt"}}
		b := Config{Recolor: &RecolorParams{To: "red"}}
		c := Config{Recolor: &RecolorParams{To: "green", Multiple: true}}

		left := Merge(Merge(a, b), c)
		right := Merge(a, Merge(b, c))
		assert.Equal(t, left, right)
	})
}

func TestConfigIsEmpty(t *testing.T) {
	assert.True(t, Config{}.IsEmpty())
	assert.False(t, Config{Restore: &RestoreParams{}}.IsEmpty())
	assert.False(t, Config{Recolor: &RecolorParams{Prompt: "x"}}.IsEmpty())
}

func TestConfigJSONShape(t *testing.T) {
	cfg := Config{
		Recolor: &RecolorParams{Prompt: "shirt", To: "red", Multiple: true},
	}

	raw, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"recolor":{"prompt":"shirt","to":"red","multiple":true}}`, string(raw))

	var back Config
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, cfg, back)
	assert.Nil(t, back.Fill)
}

func TestDefaultConfig(t *testing.T) {
	t.Run("Restore", func(t *testing.T) {
		cfg := DefaultConfig(TypeRestore)
		require.NotNil(t, cfg.Restore)
		assert.True(t, cfg.Restore.Enabled)
	})

	t.Run("RemoveBackground", func(t *testing.T) {
		cfg := DefaultConfig(TypeRemoveBackground)
		require.NotNil(t, cfg.RemoveBackground)
		assert.True(t, cfg.RemoveBackground.Enabled)
	})

	t.Run("RemoveStartsWithFlags", func(t *testing.T) {
		cfg := DefaultConfig(TypeRemove)
		require.NotNil(t, cfg.Remove)
		assert.True(t, cfg.Remove.RemoveShadow)
		assert.True(t, cfg.Remove.Multiple)
		assert.Empty(t, cfg.Remove.Prompt)
	})

	t.Run("FillWaitsForEdits", func(t *testing.T) {
		assert.True(t, DefaultConfig(TypeFill).IsEmpty())
	})
}

func TestAspectRatioOptions(t *testing.T) {
	want := map[string][2]int{
		"1:1":  {1000, 1000},
		"3:4":  {1000, 1334},
		"9:16": {1000, 1778},
	}
	require.Len(t, AspectRatioOptions, len(want))
	for ratio, dims := range want {
		opt, ok := AspectRatioOptions[ratio]
		require.True(t, ok, ratio)
		assert.Equal(t, ratio, opt.AspectRatio)
		assert.Equal(t, dims[0], opt.Width)
		assert.Equal(t, dims[1], opt.Height)
	}
}
