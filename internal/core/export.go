package core

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/bethropolis/pixl/internal/buffer"
	"github.com/bethropolis/pixl/internal/logger"
	"github.com/bethropolis/pixl/internal/types"
)

// Flatten composites the visible layers bottom to top, applying each
// layer's opacity.
func (d *Document) Flatten() *buffer.PixelBuffer {
	out := buffer.New(d.size.Width, d.size.Height)
	for _, a := range d.layers.Layers() {
		if !a.Props.Visible || a.Props.Opacity <= 0 {
			continue
		}
		opacity := math.Min(1, a.Props.Opacity)
		src := a.Buffer()
		for y := 0; y < d.size.Height; y++ {
			for x := 0; x < d.size.Width; x++ {
				pos := types.Position{X: x, Y: y}
				c, _ := src.GetPixel(pos)
				if c.A == 0 {
					continue
				}
				if opacity < 1 {
					c.A = uint8(math.Round(float64(c.A) * opacity))
				}
				under, _ := out.GetPixel(pos)
				out.SetPixel(pos, buffer.Over(under, c))
			}
		}
	}
	return out
}

// Export encodes the active layer, or the flattened image, to w.
func (d *Document) Export(w io.Writer, format buffer.Format, flatten bool) error {
	if flatten {
		return d.Flatten().Encode(w, format)
	}
	agent, err := d.layers.Active()
	if err != nil {
		return err
	}
	return agent.Buffer().Encode(w, format)
}

// ExportFile writes the active layer, or the flattened image, to path in
// the format named by its extension.
func (d *Document) ExportFile(path string, flatten bool) error {
	format, err := buffer.FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating '%s': %w", path, err)
	}
	if err := d.Export(f, format, flatten); err != nil {
		f.Close()
		return fmt.Errorf("exporting '%s': %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing '%s': %w", path, err)
	}
	logger.Infof("Document: exported %v to %s", d.size, path)
	return nil
}
