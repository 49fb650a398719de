package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTo(t *testing.T) {
	tests := []struct {
		v, step, want int64
	}{
		{119, 120, 120},
		{59, 120, 0},
		{60, 120, 120},
		{362, 120, 360},
		{-10, 120, 0},
		{-70, 120, -120},
		{7, 0, 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundTo(tt.v, tt.step), "RoundTo(%d, %d)", tt.v, tt.step)
	}
}

func TestGenericHelpers(t *testing.T) {
	assert.Equal(t, 3, Min(3, 4))
	assert.Equal(t, int64(4), Max(int64(3), int64(4)))
	assert.Equal(t, 2.5, Abs(-2.5))
	assert.Equal(t, int64(6), Sum([]uint8{1, 2, 3}))
	assert.Equal(t, []string{"a", "b"}, GetKeys(map[string]int{"b": 1, "a": 2}))
	assert.Equal(t, []int{2, 1}, GetValues(map[string]int{"b": 1, "a": 2}))
	assert.True(t, IsPowerOfTwo(64))
	assert.False(t, IsPowerOfTwo(6))
}

func TestGatherAllMidiPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mid", "a.MIDI", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte{}, 0644))
	}

	paths, err := GatherAllMidiPaths(dir, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.MIDI"), filepath.Join(dir, "b.mid")}, paths)

	single, err := GatherAllMidiPaths(filepath.Join(dir, "b.mid"), 0)
	require.NoError(t, err)
	assert.Len(t, single, 1)

	_, err = GatherAllMidiPaths(filepath.Join(dir, "missing"), 0)
	assert.Error(t, err)
}
