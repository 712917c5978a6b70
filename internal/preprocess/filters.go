package preprocess

import (
	"image"
	"math"
)

// AdaptiveMethod selects how the local threshold is averaged
type AdaptiveMethod int

const (
	AdaptiveMean AdaptiveMethod = iota
	AdaptiveGaussian
)

var sharpenKernel = [][]float64{
	{-1, -1, -1},
	{-1, 9, -1},
	{-1, -1, -1},
}

type borderFunc func(i, n int) int

// reflect101 mirrors indices around the edge pixel without repeating it (gfedcb|abcdefgh|gfedcba)
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

func replicate(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func saturate(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func newGrayLike(src *image.Gray) *image.Gray {
	return image.NewGray(image.Rect(0, 0, src.Rect.Dx(), src.Rect.Dy()))
}

func pixel(g *image.Gray, x, y int) uint8 {
	return g.Pix[y*g.Stride+x]
}

// Bilateral smooths src while keeping edges: each neighbour inside a circle of
// diameter d is weighted by spatial distance and by intensity difference.
func Bilateral(src *image.Gray, d int, sigmaColor, sigmaSpace float64) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := newGrayLike(src)
	radius := d / 2

	type tap struct {
		dx, dy int
		weight float64
	}
	spaceCoeff := -0.5 / (sigmaSpace * sigmaSpace)
	colorCoeff := -0.5 / (sigmaColor * sigmaColor)

	var taps []tap
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			r2 := float64(dx*dx + dy*dy)
			if math.Sqrt(r2) > float64(radius) {
				continue
			}
			taps = append(taps, tap{dx: dx, dy: dy, weight: math.Exp(r2 * spaceCoeff)})
		}
	}

	var colorWeight [256]float64
	for i := range colorWeight {
		colorWeight[i] = math.Exp(float64(i*i) * colorCoeff)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			center := int(pixel(src, x, y))
			var sum, wsum float64
			for _, t := range taps {
				v := int(pixel(src, reflect101(x+t.dx, w), reflect101(y+t.dy, h)))
				diff := v - center
				if diff < 0 {
					diff = -diff
				}
				wt := t.weight * colorWeight[diff]
				sum += wt * float64(v)
				wsum += wt
			}
			dst.Pix[y*dst.Stride+x] = saturate(sum / wsum)
		}
	}
	return dst
}

// CLAHE applies contrast-limited adaptive histogram equalization over a
// grid x grid layout of tiles, blending neighbouring tile mappings bilinearly.
func CLAHE(src *image.Gray, clipLimit float64, grid int) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := newGrayLike(src)
	if w == 0 || h == 0 {
		return dst
	}

	tileW := (w + min(grid, w) - 1) / min(grid, w)
	tileH := (h + min(grid, h) - 1) / min(grid, h)
	tilesX := (w + tileW - 1) / tileW
	tilesY := (h + tileH - 1) / tileH

	luts := make([][256]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			x0, y0 := tx*tileW, ty*tileH
			x1, y1 := min(x0+tileW, w), min(y0+tileH, h)

			var hist [256]int
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					hist[pixel(src, x, y)]++
				}
			}
			area := (x1 - x0) * (y1 - y0)

			clip := int(clipLimit * float64(area) / 256)
			if clip < 1 {
				clip = 1
			}
			excess := 0
			for i := range hist {
				if hist[i] > clip {
					excess += hist[i] - clip
					hist[i] = clip
				}
			}
			bonus, residual := excess/256, excess%256
			for i := range hist {
				hist[i] += bonus
			}
			if residual > 0 {
				step := max(256/residual, 1)
				for i := 0; i < 256 && residual > 0; i += step {
					hist[i]++
					residual--
				}
			}

			lut := &luts[ty*tilesX+tx]
			scale := 255.0 / float64(area)
			cdf := 0
			for i := range hist {
				cdf += hist[i]
				lut[i] = saturate(float64(cdf) * scale)
			}
		}
	}

	for y := 0; y < h; y++ {
		fy := (float64(y)+0.5)/float64(tileH) - 0.5
		ty0 := int(math.Floor(fy))
		wy := fy - float64(ty0)
		ty1 := min(max(ty0+1, 0), tilesY-1)
		ty0 = min(max(ty0, 0), tilesY-1)

		for x := 0; x < w; x++ {
			fx := (float64(x)+0.5)/float64(tileW) - 0.5
			tx0 := int(math.Floor(fx))
			wx := fx - float64(tx0)
			tx1 := min(max(tx0+1, 0), tilesX-1)
			tx0 = min(max(tx0, 0), tilesX-1)

			v := pixel(src, x, y)
			top := (1-wx)*float64(luts[ty0*tilesX+tx0][v]) + wx*float64(luts[ty0*tilesX+tx1][v])
			bottom := (1-wx)*float64(luts[ty1*tilesX+tx0][v]) + wx*float64(luts[ty1*tilesX+tx1][v])
			dst.Pix[y*dst.Stride+x] = saturate((1-wy)*top + wy*bottom)
		}
	}
	return dst
}

// gaussianKernel returns a normalized 1-D kernel. A non-positive sigma is
// derived from the size; sizes up to 7 use the fixed binomial tables.
func gaussianKernel(n int, sigma float64) []float64 {
	if sigma <= 0 {
		switch n {
		case 1:
			return []float64{1}
		case 3:
			return []float64{0.25, 0.5, 0.25}
		case 5:
			return []float64{0.0625, 0.25, 0.375, 0.25, 0.0625}
		case 7:
			return []float64{0.03125, 0.109375, 0.21875, 0.28125, 0.21875, 0.109375, 0.03125}
		}
		sigma = 0.3*((float64(n)-1)*0.5-1) + 0.8
	}

	kernel := make([]float64, n)
	center := float64(n-1) / 2
	var sum float64
	for i := range kernel {
		x := float64(i) - center
		kernel[i] = math.Exp(-(x * x) / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// separable convolves src with kernel horizontally then vertically
func separable(src *image.Gray, kernel []float64, border borderFunc) []float64 {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	half := len(kernel) / 2

	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for k, kv := range kernel {
				acc += kv * float64(pixel(src, border(x+k-half, w), y))
			}
			tmp[y*w+x] = acc
		}
	}

	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for k, kv := range kernel {
				acc += kv * tmp[border(y+k-half, h)*w+x]
			}
			out[y*w+x] = acc
		}
	}
	return out
}

// AdaptiveThreshold binarizes src against the local mean of a block x block
// neighbourhood minus c. Pixels above the threshold become white.
func AdaptiveThreshold(src *image.Gray, block int, c float64, method AdaptiveMethod) *image.Gray {
	var kernel []float64
	switch method {
	case AdaptiveGaussian:
		kernel = gaussianKernel(block, 0)
	default:
		kernel = make([]float64, block)
		for i := range kernel {
			kernel[i] = 1 / float64(block)
		}
	}

	w, h := src.Rect.Dx(), src.Rect.Dy()
	local := separable(src, kernel, replicate)
	dst := newGrayLike(src)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if float64(pixel(src, x, y)) > math.Round(local[y*w+x])-c {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
	return dst
}

// OtsuThreshold returns the level that maximizes between-class variance
func OtsuThreshold(src *image.Gray) uint8 {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	var hist [256]float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			hist[pixel(src, x, y)]++
		}
	}
	total := float64(w * h)
	if total == 0 {
		return 0
	}

	var sumAll float64
	for i, c := range hist {
		sumAll += float64(i) * c
	}

	var (
		best          uint8
		bestVariance  float64
		weightBg, sum float64
	)
	for t := 0; t < 256; t++ {
		weightBg += hist[t]
		if weightBg == 0 {
			continue
		}
		weightFg := total - weightBg
		if weightFg == 0 {
			break
		}
		sum += float64(t) * hist[t]
		meanBg := sum / weightBg
		meanFg := (sumAll - sum) / weightFg
		variance := weightBg * weightFg * (meanBg - meanFg) * (meanBg - meanFg)
		if variance > bestVariance {
			bestVariance = variance
			best = uint8(t)
		}
	}
	return best
}

// Otsu binarizes src at the automatically selected global threshold
func Otsu(src *image.Gray) *image.Gray {
	t := OtsuThreshold(src)
	dst := newGrayLike(src)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if pixel(src, x, y) > t {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
	return dst
}

func morph(src *image.Gray, k int, pick func(a, b uint8) uint8) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := newGrayLike(src)
	lo, hi := -(k / 2), k-k/2-1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := pixel(src, x, y)
			for dy := lo; dy <= hi; dy++ {
				for dx := lo; dx <= hi; dx++ {
					sx, sy := x+dx, y+dy
					if sx < 0 || sy < 0 || sx >= w || sy >= h {
						continue
					}
					v = pick(v, pixel(src, sx, sy))
				}
			}
			dst.Pix[y*dst.Stride+x] = v
		}
	}
	return dst
}

// Dilate takes the maximum over a k x k square
func Dilate(src *image.Gray, k int) *image.Gray {
	return morph(src, k, func(a, b uint8) uint8 { return max(a, b) })
}

// Erode takes the minimum over a k x k square
func Erode(src *image.Gray, k int) *image.Gray {
	return morph(src, k, func(a, b uint8) uint8 { return min(a, b) })
}

// Filter2D correlates src with a square kernel, saturating the result
func Filter2D(src *image.Gray, kernel [][]float64) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := newGrayLike(src)
	half := len(kernel) / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for ky, row := range kernel {
				sy := reflect101(y+ky-half, h)
				for kx, kv := range row {
					acc += kv * float64(pixel(src, reflect101(x+kx-half, w), sy))
				}
			}
			dst.Pix[y*dst.Stride+x] = saturate(acc)
		}
	}
	return dst
}

// GaussianBlur smooths src with an n x n Gaussian whose sigma follows the size
func GaussianBlur(src *image.Gray, n int) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := separable(src, gaussianKernel(n, 0), reflect101)
	dst := newGrayLike(src)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Pix[y*dst.Stride+x] = saturate(out[y*w+x])
		}
	}
	return dst
}
