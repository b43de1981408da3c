// Package imgproc holds the built-in whole-buffer pixel processor. Effects
// live in a fixed table indexed by Kind and run over horizontal row bands in
// parallel.
package imgproc

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

var (
	ErrUnknownEffect = errors.New("unknown effect")
	ErrSizeMismatch  = errors.New("pixel data does not match dimensions")
)

// Kind identifies an effect.
type Kind int

const (
	Invert Kind = iota
	Grayscale
	Blur
	Posterize
	BrightnessContrast
	Dither
	DustRemoval
	kindCount
)

var kindNames = [kindCount]string{
	Invert:             "invert",
	Grayscale:          "grayscale",
	Blur:               "blur",
	Posterize:          "posterize",
	BrightnessContrast: "brightness-contrast",
	Dither:             "dither",
	DustRemoval:        "dust-removal",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Valid reports whether k names a table entry.
func (k Kind) Valid() bool { return k >= 0 && k < kindCount }

// ParseKind maps an effect name (case-insensitive) to its Kind.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEffect, name)
}

// Kinds lists every effect in table order.
func Kinds() []Kind {
	out := make([]Kind, kindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// Params carries the knobs of every effect; each effect reads only its own.
type Params struct {
	// Levels per channel for Posterize and Dither.
	Levels int
	// Brightness and Contrast in -100..100.
	Brightness float64
	Contrast   float64
	// Strength of the Dither threshold noise, 0..1.
	Strength float64
	// BlurAlpha also blurs the alpha channel.
	BlurAlpha bool
	// MaxSize is the largest opaque island DustRemoval clears.
	MaxSize int
	// AlphaThreshold separates opaque from transparent for DustRemoval.
	AlphaThreshold uint8
}

// DefaultParams returns parameters that make every effect do something visible.
func DefaultParams() Params {
	return Params{
		Levels:         4,
		Strength:       1,
		MaxSize:        4,
		AlphaThreshold: 128,
	}
}

// Processor transforms a straight-alpha RGBA buffer. Implementations must
// not modify src and must return a buffer of the same length.
type Processor interface {
	Process(ctx context.Context, kind Kind, src []byte, width, height int, p Params) ([]byte, error)
}

// rowFunc writes rows [y0, y1) of dst from src. dst starts as a copy of src.
type rowFunc func(src, dst []byte, width, height, y0, y1 int, p Params)

// wholeFunc rewrites dst in one pass; used by effects that cannot be banded.
type wholeFunc func(dst []byte, width, height int, p Params)

type effect struct {
	rows  rowFunc
	whole wholeFunc
}

var effects = [kindCount]effect{
	Invert:             {rows: invertRows},
	Grayscale:          {rows: grayscaleRows},
	Blur:               {rows: blurRows},
	Posterize:          {rows: posterizeRows},
	BrightnessContrast: {rows: brightnessContrastRows},
	Dither:             {rows: ditherRows},
	DustRemoval:        {whole: dustRemoval},
}

// Native runs effects in-process.
type Native struct {
	// Workers bounds the number of concurrent row bands; zero means GOMAXPROCS.
	Workers int
}

// NewNative returns a processor using all available CPUs.
func NewNative() *Native { return &Native{} }

func (n *Native) workers() int {
	if n != nil && n.Workers > 0 {
		return n.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Process implements Processor.
func (n *Native) Process(ctx context.Context, kind Kind, src []byte, width, height int, p Params) ([]byte, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownEffect, kind)
	}
	if width < 0 || height < 0 || len(src) != width*height*4 {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d", ErrSizeMismatch, len(src), width, height)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dst := make([]byte, len(src))
	copy(dst, src)
	if width == 0 || height == 0 {
		return dst, nil
	}

	e := effects[kind]
	if e.whole != nil {
		e.whole(dst, width, height, p)
		return dst, ctx.Err()
	}

	workers := min(n.workers(), height)
	band := (height + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y0 := 0; y0 < height; y0 += band {
		y1 := min(y0+band, height)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e.rows(src, dst, width, height, y0, y1, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dst, nil
}
