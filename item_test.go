package appsize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundUp(t *testing.T) {
	tests := []struct {
		size, block, want int64
	}{
		{0, 4096, 0},
		{-10, 4096, 0},
		{1, 4096, 4096},
		{4096, 4096, 4096},
		{4097, 4096, 8192},
		{123, 1, 123},
		{123, 0, 123},
		{1000, 512, 1024},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, roundUp(tt.size, tt.block), "roundUp(%d, %d)", tt.size, tt.block)
	}
}

func TestRoundUp_Saturates(t *testing.T) {
	const block = 4096
	top := int64(math.MaxInt64) / block * block

	assert.Equal(t, top, roundUp(top, block))
	assert.Equal(t, top, roundUp(top-block+1, block))
	assert.Equal(t, int64(math.MaxInt64), roundUp(top+1, block))
	assert.Equal(t, int64(math.MaxInt64), roundUp(math.MaxInt64, block))
	assert.Equal(t, int64(math.MaxInt64), roundUp(math.MaxInt64, 1))
}

func TestNewEntry(t *testing.T) {
	item := Item{Key: "com.example.notes", Label: "Notes", External: true}
	stats := Stats{
		CodeSize:          100,
		DataSize:          5000,
		CacheSize:         0,
		ExternalCodeSize:  1,
		ExternalDataSize:  2,
		ExternalCacheSize: 3,
		ExternalMediaSize: 4,
	}

	t.Run("all components", func(t *testing.T) {
		e := newEntry(item, stats, nil, DefaultSizeFilter(), 4096)
		assert.Equal(t, item, e.Item)
		assert.Equal(t, stats, e.Stats)
		assert.False(t, e.HasSupplementary)
		assert.Equal(t, int64(4096+8192+0+4096), e.Size)
	})

	t.Run("supplementary replaces external", func(t *testing.T) {
		e := newEntry(item, stats, map[string]int64{item.Key: 20000}, DefaultSizeFilter(), 4096)
		assert.True(t, e.HasSupplementary)
		assert.Equal(t, int64(20000), e.Supplementary)
		assert.Equal(t, int64(4096+8192+20480), e.Size)
	})

	t.Run("supplementary for another key", func(t *testing.T) {
		e := newEntry(item, stats, map[string]int64{"other": 20000}, DefaultSizeFilter(), 1)
		assert.False(t, e.HasSupplementary)
		assert.Equal(t, int64(100+5000+10), e.Size)
	})

	t.Run("zero supplementary still counts as present", func(t *testing.T) {
		e := newEntry(item, stats, map[string]int64{item.Key: 0}, SizeFilter{External: true}, 1)
		assert.True(t, e.HasSupplementary)
		assert.Equal(t, int64(0), e.Size)
	})

	t.Run("filter", func(t *testing.T) {
		e := newEntry(item, stats, nil, SizeFilter{Data: true}, 1)
		assert.Equal(t, int64(5000), e.Size)

		e = newEntry(item, stats, nil, SizeFilter{}, 1)
		assert.Equal(t, int64(0), e.Size)
	})
}
