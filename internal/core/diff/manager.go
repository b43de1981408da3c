// Package diff accumulates the pixel changes of one gesture and turns them
// into a layer-buffer patch.
package diff

import (
	"sort"

	"github.com/bethropolis/pixl/internal/buffer"
	"github.com/bethropolis/pixl/internal/logger"
	"github.com/bethropolis/pixl/internal/patch"
	"github.com/bethropolis/pixl/internal/tile"
	"github.com/bethropolis/pixl/internal/types"
)

// Manager is the working set of one gesture. A position recorded twice
// keeps its first Before and its latest After, so undo always returns to
// the pre-gesture state.
type Manager struct {
	diffs map[types.Position]buffer.PixelDiff
	fills map[patch.TileIndex]patch.TileFill
}

// NewManager creates an empty working set.
func NewManager() *Manager {
	return &Manager{
		diffs: make(map[types.Position]buffer.PixelDiff),
		fills: make(map[patch.TileIndex]patch.TileFill),
	}
}

// Add records one or more pixel diffs.
func (m *Manager) Add(diffs ...buffer.PixelDiff) {
	for _, d := range diffs {
		if prev, ok := m.diffs[d.Position]; ok {
			prev.After = d.After
			m.diffs[d.Position] = prev
			continue
		}
		m.diffs[d.Position] = d
	}
}

// IsDiffExists reports whether pos was already recorded in this gesture.
func (m *Manager) IsDiffExists(pos types.Position) bool {
	_, ok := m.diffs[pos]
	return ok
}

// AddTileFill records that t (uniform before) was painted after. When
// pixels of t were already recorded in this gesture the fill is expanded
// into pixel records so their original Before values survive. Refilling a
// filled tile keeps the first fill's Before and drops the pixel records
// written since, which the new fill overwrites.
func (m *Manager) AddTileFill(t *tile.Tile, before, after types.RGBA) {
	idx := patch.TileIndex{Row: t.Row, Column: t.Column}
	if prev, ok := m.fills[idx]; ok {
		prev.After = patch.Pack(after)
		m.fills[idx] = prev
		b := t.Bounds()
		for pos := range m.diffs {
			if b.Contains(pos) {
				delete(m.diffs, pos)
			}
		}
		return
	}
	if m.hasPixelsIn(t) {
		b := t.Bounds()
		for y := b.Top; y <= b.Bottom; y++ {
			for x := b.Left; x <= b.Right; x++ {
				m.Add(buffer.PixelDiff{Position: types.Position{X: x, Y: y}, Before: before, After: after})
			}
		}
		return
	}
	pb := patch.Pack(before)
	m.fills[idx] = patch.TileFill{Tile: idx, Before: &pb, After: patch.Pack(after)}
}

// IsTileFilled reports whether t has a recorded tile fill.
func (m *Manager) IsTileFilled(t *tile.Tile) bool {
	_, ok := m.fills[patch.TileIndex{Row: t.Row, Column: t.Column}]
	return ok
}

func (m *Manager) hasPixelsIn(t *tile.Tile) bool {
	b := t.Bounds()
	if len(m.diffs) < t.PixelCount() {
		for pos := range m.diffs {
			if b.Contains(pos) {
				return true
			}
		}
		return false
	}
	for y := b.Top; y <= b.Bottom; y++ {
		for x := b.Left; x <= b.Right; x++ {
			if _, ok := m.diffs[types.Position{X: x, Y: y}]; ok {
				return true
			}
		}
	}
	return false
}

// Current returns a copy of the recorded pixel diffs.
func (m *Manager) Current() map[types.Position]buffer.PixelDiff {
	out := make(map[types.Position]buffer.PixelDiff, len(m.diffs))
	for k, v := range m.diffs {
		out[k] = v
	}
	return out
}

// Fills returns the recorded tile fills.
func (m *Manager) Fills() []patch.TileFill {
	out := make([]patch.TileFill, 0, len(m.fills))
	for _, f := range m.fills {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Tile.Row != out[j].Tile.Row {
			return out[i].Tile.Row < out[j].Tile.Row
		}
		return out[i].Tile.Column < out[j].Tile.Column
	})
	return out
}

// PendingPixelCount is the number of recorded pixel diffs.
func (m *Manager) PendingPixelCount() int { return len(m.diffs) }

// Empty reports whether nothing was recorded.
func (m *Manager) Empty() bool { return len(m.diffs) == 0 && len(m.fills) == 0 }

// Reset clears the working set.
func (m *Manager) Reset() {
	m.diffs = make(map[types.Position]buffer.PixelDiff)
	m.fills = make(map[patch.TileIndex]patch.TileFill)
}

// BuildPatch converts the working set into a patch for layerID. Records
// whose Before equals After are dropped. A tile bucket covering every pixel
// of its tile with one Before and one After becomes a TileFill; when more
// than wholeRatio of the buffer's pixels were recorded the gesture becomes a
// Whole patch. It returns nil when nothing changed. buf must be the
// post-gesture buffer the grid was built on.
func (m *Manager) BuildPatch(layerID string, buf *buffer.PixelBuffer, grid *tile.Grid, wholeRatio float64) *patch.LayerBuffer {
	changed := 0
	for _, d := range m.diffs {
		if d.Before != d.After {
			changed++
		}
	}
	if changed == 0 && len(m.fills) == 0 {
		return nil
	}

	if wholeRatio > 0 && float64(changed) > wholeRatio*float64(buf.Size().Area()) {
		logger.DebugTagf("diff", "promoting %d records to whole patch", changed)
		return &patch.LayerBuffer{LayerID: layerID, Whole: m.wholeFrom(buf, grid)}
	}

	buckets := make(map[patch.TileIndex]*patch.PixelList)
	for pos, d := range m.diffs {
		if d.Before == d.After {
			continue
		}
		t := grid.TileAt(pos)
		if t == nil {
			continue
		}
		idx := patch.TileIndex{Row: t.Row, Column: t.Column}
		pl := buckets[idx]
		if pl == nil {
			pl = &patch.PixelList{Tile: idx}
			buckets[idx] = pl
		}
		pl.Indices = append(pl.Indices, uint16(t.LocalIndex(pos)))
		pl.Before = append(pl.Before, patch.Pack(d.Before))
		pl.After = append(pl.After, patch.Pack(d.After))
	}

	out := &patch.LayerBuffer{LayerID: layerID, Fills: m.Fills()}
	keys := make([]patch.TileIndex, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Row != keys[j].Row {
			return keys[i].Row < keys[j].Row
		}
		return keys[i].Column < keys[j].Column
	})
	for _, k := range keys {
		pl := buckets[k]
		sortBucket(pl)
		if _, filled := m.fills[k]; !filled {
			if tf, ok := promote(pl, grid.Tile(k.Row, k.Column)); ok {
				out.Fills = append(out.Fills, tf)
				continue
			}
		}
		out.Pixels = append(out.Pixels, *pl)
	}
	return out
}

// promote turns a bucket into a TileFill when it covers the whole tile with
// a single before and a single after color.
func promote(pl *patch.PixelList, t *tile.Tile) (patch.TileFill, bool) {
	if t == nil || len(pl.Indices) != t.PixelCount() {
		return patch.TileFill{}, false
	}
	for i := 1; i < len(pl.Indices); i++ {
		if pl.Before[i] != pl.Before[0] || pl.After[i] != pl.After[0] {
			return patch.TileFill{}, false
		}
	}
	before := pl.Before[0]
	return patch.TileFill{Tile: pl.Tile, Before: &before, After: pl.After[0]}, true
}

func sortBucket(pl *patch.PixelList) {
	order := make([]int, len(pl.Indices))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return pl.Indices[order[a]] < pl.Indices[order[b]] })
	idx := make([]uint16, len(order))
	before := make([]patch.Packed, len(order))
	after := make([]patch.Packed, len(order))
	for i, o := range order {
		idx[i], before[i], after[i] = pl.Indices[o], pl.Before[o], pl.After[o]
	}
	pl.Indices, pl.Before, pl.After = idx, before, after
}

// wholeFrom reconstructs the pre-gesture bytes by undoing the records on a
// copy of the current buffer.
func (m *Manager) wholeFrom(buf *buffer.PixelBuffer, grid *tile.Grid) *patch.Whole {
	before := buf.Clone()
	for pos, d := range m.diffs {
		before.SetPixel(pos, d.Before)
	}
	for idx, f := range m.fills {
		if f.Before == nil {
			continue
		}
		if t := grid.Tile(idx.Row, idx.Column); t != nil {
			before.FillRect(t.Bounds(), f.Before.Unpack())
		}
	}
	return &patch.Whole{Before: before.Data(), After: buf.Snapshot()}
}
