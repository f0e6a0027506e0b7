// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package block

import (
	"maps"
	"slices"

	"github.com/rocketlaunchr/dataframe-go"
)

// Counters is the traffic seen by a cache.
type Counters struct {
	Compiles      int
	Hits          int
	Invalidations int
}

// Cache holds the compiled blocks of one unit, keyed by start address.
type Cache struct {
	window   uint32
	blocks   map[uint32]*Block
	counters Counters
}

// NewCache creates a cache for a micro memory of window bytes.
func NewCache(window uint32) *Cache {
	return &Cache{
		window: window,
		blocks: map[uint32]*Block{},
	}
}

// State returns the cache state of a start address.
func (cache *Cache) State(pc uint32) State {
	blk, ok := cache.blocks[pc]
	if !ok {
		return STATE_NOT_COMPILED
	}
	return blk.State
}

func (cache *Cache) find(pc uint32) *Block {
	blk, ok := cache.blocks[pc]
	if !ok || blk.State != STATE_COMPILED {
		return nil
	}
	return blk
}

// Lookup returns the compiled block at a start address, or nil.
func (cache *Cache) Lookup(pc uint32) (blk *Block) {
	blk = cache.find(pc)
	if blk != nil {
		cache.counters.Hits++
	}
	return
}

// Insert records a newly compiled block, replacing any invalidated one.
func (cache *Cache) Insert(blk *Block) {
	blk.State = STATE_COMPILED
	cache.blocks[blk.Start] = blk
	cache.counters.Compiles++
}

// Clear invalidates every block compiled from a byte of the range.
func (cache *Cache) Clear(addr uint32, size uint32) (count int) {
	addr %= cache.window
	for _, blk := range cache.blocks {
		if blk.State != STATE_COMPILED {
			continue
		}
		if blk.Overlaps(addr, size, cache.window) {
			blk.State = STATE_INVALIDATED
			blk.Ops = nil
			count++
		}
	}
	cache.counters.Invalidations += count
	return
}

// Reset invalidates every block.
func (cache *Cache) Reset() {
	cache.Clear(0, cache.window)
}

// Len returns the number of compiled blocks.
func (cache *Cache) Len() (count int) {
	for _, blk := range cache.blocks {
		if blk.State == STATE_COMPILED {
			count++
		}
	}
	return
}

// Counters returns the cache traffic so far.
func (cache *Cache) Counters() Counters {
	return cache.counters
}

// Stats returns one row per known block, ordered by start address.
func (cache *Cache) Stats() *dataframe.DataFrame {
	var start, end, pairs, native, runs, state []any

	for _, pc := range slices.Sorted(maps.Keys(cache.blocks)) {
		blk := cache.blocks[pc]
		start = append(start, int64(blk.Start))
		end = append(end, int64((blk.Start+blk.Bytes())%cache.window))
		pairs = append(pairs, int64(blk.Pairs))
		native = append(native, int64(blk.Size))
		runs = append(runs, int64(blk.Runs))
		state = append(state, blk.State.String())
	}

	return dataframe.NewDataFrame(
		dataframe.NewSeriesInt64("start", nil, start...),
		dataframe.NewSeriesInt64("end", nil, end...),
		dataframe.NewSeriesInt64("pairs", nil, pairs...),
		dataframe.NewSeriesInt64("native", nil, native...),
		dataframe.NewSeriesInt64("runs", nil, runs...),
		dataframe.NewSeriesString("state", nil, state...),
	)
}
