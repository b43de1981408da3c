package patch

import (
	"testing"

	"github.com/bethropolis/pixl/internal/types"
)

func TestPackLayout(t *testing.T) {
	c := types.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x44}
	if got := Pack(c); got != 0x44112233 {
		t.Fatalf("Pack = %#x", uint32(got))
	}
	if Pack(c).Unpack() != c {
		t.Fatal("Unpack(Pack(c)) != c")
	}
}

func TestShape(t *testing.T) {
	var nilPatch *LayerBuffer
	before := Pack(types.Transparent)
	tests := []struct {
		p    *LayerBuffer
		want string
	}{
		{nilPatch, "empty"},
		{&LayerBuffer{}, "empty"},
		{&LayerBuffer{Whole: &Whole{}}, "whole"},
		{&LayerBuffer{Fills: []TileFill{{Before: &before}}}, "tile-fill"},
		{&LayerBuffer{Pixels: []PixelList{{Indices: []uint16{1}}}}, "pixel-list"},
		{&LayerBuffer{Pixels: []PixelList{{}}, Fills: []TileFill{{}}}, "mixed"},
	}
	for _, tt := range tests {
		if got := tt.p.Shape(); got != tt.want {
			t.Errorf("Shape() = %s, want %s", got, tt.want)
		}
	}
}
