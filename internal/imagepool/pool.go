// Package imagepool holds reference images placed over the canvas. Entries
// keep a stable id across removal and re-insertion so history can restore
// the same identity.
package imagepool

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/bethropolis/pixl/internal/buffer"
	"github.com/bethropolis/pixl/internal/types"
	"github.com/google/uuid"
)

// ErrEntryNotFound is returned for unknown entry ids.
var ErrEntryNotFound = errors.New("image pool entry not found")

// Props are the placement properties of an entry.
type Props struct {
	X       int
	Y       int
	Scale   float64
	Opacity float64
	Visible bool
}

// Entry is one reference image.
type Entry struct {
	ID           string
	OriginalPath string
	FileName     string
	Image        *buffer.PixelBuffer
	Props        Props
}

// Width is the unscaled image width.
func (e *Entry) Width() int { return e.Image.Width() }

// Height is the unscaled image height.
func (e *Entry) Height() int { return e.Image.Height() }

// ScaledSize is the on-canvas size after applying Scale, at least 1x1.
func (e *Entry) ScaledSize() types.Size {
	s := e.Props.Scale
	if s <= 0 {
		s = 1
	}
	return types.Size{
		Width:  max(1, int(math.Round(float64(e.Width())*s))),
		Height: max(1, int(math.Round(float64(e.Height())*s))),
	}
}

// Clone copies the entry, sharing the immutable image.
func (e *Entry) Clone() *Entry {
	c := *e
	return &c
}

// NewEntry wraps img in an entry scaled to fit canvas.
func NewEntry(name string, img *buffer.PixelBuffer, canvas types.Size) *Entry {
	scale := 1.0
	if img.Width() > 0 && img.Height() > 0 {
		scale = math.Min(float64(canvas.Width)/float64(img.Width()), float64(canvas.Height)/float64(img.Height()))
	}
	return &Entry{
		ID:       uuid.NewString(),
		FileName: name,
		Image:    img,
		Props:    Props{Scale: scale, Opacity: 1, Visible: true},
	}
}

// LoadEntry decodes the image at path into a new entry.
func LoadEntry(path string, canvas types.Size) (*Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image '%s': %w", path, err)
	}
	defer f.Close()
	img, err := buffer.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("loading image '%s': %w", path, err)
	}
	e := NewEntry(filepath.Base(path), img, canvas)
	e.OriginalPath = path
	return e, nil
}

// Pool is an ordered collection of entries.
type Pool struct {
	entries []*Entry
}

// New creates an empty pool.
func New() *Pool { return &Pool{} }

// Entries returns the entries in insertion order.
func (p *Pool) Entries() []*Entry { return p.entries }

// Len returns the number of entries.
func (p *Pool) Len() int { return len(p.entries) }

// Get looks up id.
func (p *Pool) Get(id string) (*Entry, error) {
	for _, e := range p.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
}

// Insert places e at index (clamped), replacing any entry with the same id.
func (p *Pool) Insert(e *Entry, index int) {
	if _, i := p.find(e.ID); i >= 0 {
		p.entries = append(p.entries[:i], p.entries[i+1:]...)
	}
	if index < 0 || index > len(p.entries) {
		index = len(p.entries)
	}
	p.entries = append(p.entries, nil)
	copy(p.entries[index+1:], p.entries[index:])
	p.entries[index] = e
}

// Remove deletes id, returning the entry and its former index.
func (p *Pool) Remove(id string) (*Entry, int, error) {
	e, i := p.find(id)
	if i < 0 {
		return nil, -1, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	p.entries = append(p.entries[:i], p.entries[i+1:]...)
	return e, i, nil
}

// SetProps replaces the props of id and returns the previous ones.
func (p *Pool) SetProps(id string, props Props) (Props, error) {
	e, err := p.Get(id)
	if err != nil {
		return Props{}, err
	}
	old := e.Props
	e.Props = props
	return old, nil
}

func (p *Pool) find(id string) (*Entry, int) {
	for i, e := range p.entries {
		if e.ID == id {
			return e, i
		}
	}
	return nil, -1
}
