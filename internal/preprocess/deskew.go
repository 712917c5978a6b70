package preprocess

import (
	"image"
	"math"
	"sort"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

type point struct {
	x, y int64
}

// Deskew straightens a binarized page using the orientation of the
// minimum-area rectangle around its non-zero pixels. It reports false when
// the image has no such pixels.
func Deskew(src *image.Gray) (*image.Gray, bool) {
	hull := convexHull(foregroundExtremes(src))
	if len(hull) == 0 {
		return nil, false
	}

	angle := minAreaRectAngle(hull)
	if angle < -45 {
		angle += 90
	}
	return Rotate(src, angle), true
}

// foregroundExtremes returns the leftmost and rightmost non-zero pixel of
// every row. Their hull equals the hull of all non-zero pixels.
func foregroundExtremes(src *image.Gray) []point {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	var pts []point
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w]
		left := -1
		for x, v := range row {
			if v > 0 {
				left = x
				break
			}
		}
		if left < 0 {
			continue
		}
		right := left
		for x := w - 1; x > left; x-- {
			if row[x] > 0 {
				right = x
				break
			}
		}
		pts = append(pts, point{int64(left), int64(y)})
		if right != left {
			pts = append(pts, point{int64(right), int64(y)})
		}
	}
	return pts
}

func cross(o, a, b point) int64 {
	return (a.x-o.x)*(b.y-o.y) - (a.y-o.y)*(b.x-o.x)
}

// convexHull is Andrew's monotone chain; collinear points are dropped
func convexHull(pts []point) []point {
	if len(pts) < 3 {
		return pts
	}
	sorted := make([]point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].x != sorted[j].x {
			return sorted[i].x < sorted[j].x
		}
		return sorted[i].y < sorted[j].y
	})

	hull := make([]point, 0, 2*len(sorted))
	for _, p := range sorted {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// minAreaRectAngle returns the orientation in degrees, within [-90, 0), of the
// smallest rectangle enclosing the convex polygon hull.
func minAreaRectAngle(hull []point) float64 {
	switch len(hull) {
	case 0, 1:
		return -90
	case 2:
		return normalizeRectAngle(edgeAngle(hull[0], hull[1]))
	}

	bestArea := math.Inf(1)
	bestAngle := 0.0
	for i := range hull {
		a, b := hull[i], hull[(i+1)%len(hull)]
		ex, ey := float64(b.x-a.x), float64(b.y-a.y)
		length := math.Hypot(ex, ey)
		if length == 0 {
			continue
		}
		ex, ey = ex/length, ey/length

		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			px, py := float64(p.x), float64(p.y)
			u := px*ex + py*ey
			v := -px*ey + py*ex
			minU, maxU = math.Min(minU, u), math.Max(maxU, u)
			minV, maxV = math.Min(minV, v), math.Max(maxV, v)
		}
		if area := (maxU - minU) * (maxV - minV); area < bestArea {
			bestArea = area
			bestAngle = edgeAngle(a, b)
		}
	}
	return normalizeRectAngle(bestAngle)
}

func edgeAngle(a, b point) float64 {
	return math.Atan2(float64(b.y-a.y), float64(b.x-a.x)) * 180 / math.Pi
}

// normalizeRectAngle folds an edge direction into [-90, 0); a rectangle looks
// the same every quarter turn.
func normalizeRectAngle(deg float64) float64 {
	a := math.Mod(deg, 90)
	if a >= 0 {
		a -= 90
	}
	return a
}

// Rotate turns src by angle degrees counter-clockwise about its center using
// Catmull-Rom interpolation. Pixels sampled from outside the source repeat the
// nearest edge pixel.
func Rotate(src *image.Gray, angle float64) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	cx, cy := float64(w/2), float64(h/2)
	rad := angle * math.Pi / 180
	alpha, beta := math.Cos(rad), math.Sin(rad)

	m := f64.Aff3{
		alpha, beta, (1-alpha)*cx - beta*cy,
		-beta, alpha, beta*cx + (1-alpha)*cy,
	}

	pad := max(w, h)/2 + 2
	padded := padReplicate(src, pad)
	p := float64(pad)
	m[2] -= (m[0] + m[1]) * p
	m[5] -= (m[3] + m[4]) * p

	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.CatmullRom.Transform(dst, m, padded, padded.Bounds(), draw.Src, nil)
	return dst
}

func padReplicate(src *image.Gray, pad int) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w+2*pad, h+2*pad))
	for y := 0; y < h+2*pad; y++ {
		sy := replicate(y-pad, h)
		for x := 0; x < w+2*pad; x++ {
			out.Pix[y*out.Stride+x] = pixel(src, replicate(x-pad, w), sy)
		}
	}
	return out
}
