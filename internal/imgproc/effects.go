package imgproc

import "math"

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

func invertRows(_, dst []byte, width, _, y0, y1 int, _ Params) {
	for i := y0 * width * 4; i < y1*width*4; i += 4 {
		dst[i] = 255 - dst[i]
		dst[i+1] = 255 - dst[i+1]
		dst[i+2] = 255 - dst[i+2]
	}
}

// BT.709 luma.
func grayscaleRows(_, dst []byte, width, _, y0, y1 int, _ Params) {
	for i := y0 * width * 4; i < y1*width*4; i += 4 {
		l := 0.2126*float64(dst[i]) + 0.7152*float64(dst[i+1]) + 0.0722*float64(dst[i+2])
		v := clampByte(math.Round(l))
		dst[i], dst[i+1], dst[i+2] = v, v, v
	}
}

var blurKernel = [9]float64{
	1, 2, 1,
	2, 4, 2,
	1, 2, 1,
}

// blurRows applies a 3x3 Gaussian approximation, renormalising the kernel at
// the image edges.
func blurRows(src, dst []byte, width, height, y0, y1 int, p Params) {
	channels := 3
	if p.BlurAlpha {
		channels = 4
	}
	for y := y0; y < y1; y++ {
		for x := 0; x < width; x++ {
			for c := 0; c < channels; c++ {
				var sum, weight float64
				for ky := -1; ky <= 1; ky++ {
					py := y + ky
					if py < 0 || py >= height {
						continue
					}
					for kx := -1; kx <= 1; kx++ {
						px := x + kx
						if px < 0 || px >= width {
							continue
						}
						w := blurKernel[(ky+1)*3+kx+1]
						sum += float64(src[(py*width+px)*4+c]) * w
						weight += w
					}
				}
				dst[(y*width+x)*4+c] = uint8(sum / weight)
			}
		}
	}
}

func posterizeRows(_, dst []byte, width, _, y0, y1 int, p Params) {
	levels := clampInt(p.Levels, 2, 255)
	step := 255 / float64(levels-1)
	for i := y0 * width * 4; i < y1*width*4; i += 4 {
		for c := 0; c < 3; c++ {
			dst[i+c] = clampByte(math.Round(math.Round(float64(dst[i+c])/step) * step))
		}
	}
}

func brightnessContrastRows(_, dst []byte, width, _, y0, y1 int, p Params) {
	offset := clampFloat(p.Brightness, -100, 100) / 100 * 255
	factor := 1 + clampFloat(p.Contrast, -100, 100)/100
	for i := y0 * width * 4; i < y1*width*4; i += 4 {
		for c := 0; c < 3; c++ {
			v := (float64(dst[i+c])-127.5)*factor + 127.5 + offset
			dst[i+c] = clampByte(math.Round(v))
		}
	}
}

var bayer4 = [4][4]float64{
	{0, 8, 2, 10},
	{12, 4, 14, 6},
	{3, 11, 1, 9},
	{15, 7, 13, 5},
}

// ditherRows quantises RGB to Levels steps with 4x4 ordered threshold noise.
func ditherRows(_, dst []byte, width, _, y0, y1 int, p Params) {
	levels := clampInt(p.Levels, 2, 32)
	strength := clampFloat(p.Strength, 0, 1)
	step := 255 / float64(levels-1)
	top := math.Floor(255 / step)
	for y := y0; y < y1; y++ {
		for x := 0; x < width; x++ {
			noise := (bayer4[y%4][x%4]/16 - 0.5) * strength * step
			i := (y*width + x) * 4
			for c := 0; c < 3; c++ {
				level := clampFloat(math.Round((float64(dst[i+c])+noise)/step), 0, top)
				dst[i+c] = clampByte(level * step)
			}
		}
	}
}

var neighbours8 = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// dustRemoval clears the alpha of 8-connected opaque islands no larger than
// MaxSize pixels.
func dustRemoval(dst []byte, width, height int, p Params) {
	maxSize := clampInt(p.MaxSize, 1, 1000)
	seen := make([]bool, width*height)
	var island, queue []int
	for start := range seen {
		if seen[start] {
			continue
		}
		seen[start] = true
		if dst[start*4+3] <= p.AlphaThreshold {
			continue
		}
		island = island[:0]
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			idx := queue[0]
			queue = queue[1:]
			island = append(island, idx)
			x, y := idx%width, idx/width
			for _, d := range neighbours8 {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				n := ny*width + nx
				if seen[n] || dst[n*4+3] <= p.AlphaThreshold {
					continue
				}
				seen[n] = true
				queue = append(queue, n)
			}
		}
		if len(island) <= maxSize {
			for _, idx := range island {
				dst[idx*4+3] = 0
			}
		}
	}
}
