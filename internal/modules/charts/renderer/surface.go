package renderer

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Surface is a rasterizable snapshot of a rendered output. It draws a simplified
// preview (series polylines over a white background) used for image export; the
// interactive rendering itself happens in the client.
type Surface struct {
	Output Output
	Width  int
	Height int
}

var palette = []color.RGBA{
	{R: 0x25, G: 0x63, B: 0xeb, A: 0xff},
	{R: 0xf5, G: 0x9e, B: 0x0b, A: 0xff},
	{R: 0x10, G: 0xb9, B: 0x81, A: 0xff},
	{R: 0xef, G: 0x44, B: 0x44, A: 0xff},
}

// Image rasterizes the surface.
func (s *Surface) Image() image.Image {
	w, h := s.Width, s.Height
	if w <= 0 {
		w = 800
	}
	if h <= 0 {
		h = 400
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	for i, values := range seriesValues(s.Output) {
		plot(img, values, palette[i%len(palette)])
	}
	return img
}

func seriesValues(out Output) [][]float64 {
	var all [][]float64
	switch spec := out.Spec.(type) {
	case CandlestickSpec:
		for _, cs := range spec.Series {
			var values []float64
			for _, c := range cs.Candles {
				values = append(values, c.Close)
			}
			for _, p := range cs.Points {
				values = append(values, p.Value)
			}
			all = append(all, values)
		}
	case GenericSpec:
		for _, gs := range spec.Series {
			var values []float64
			for _, row := range spec.Rows {
				if f, ok := row[gs.DataKey].(float64); ok {
					values = append(values, f)
				}
			}
			all = append(all, values)
		}
	}
	return all
}

// plot draws values as a polyline scaled to the image bounds. Non-finite values
// leave a gap in the line.
func plot(img *image.RGBA, values []float64, c color.RGBA) {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if isFinite(v) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return
	}
	b := img.Bounds()
	lo, hi := floats.Min(finite), floats.Max(finite)
	span := hi - lo
	if span == 0 || !isFinite(span) {
		span = 1
	}

	point := func(i int) (int, int) {
		x := 0
		if len(values) > 1 {
			x = i * (b.Dx() - 1) / (len(values) - 1)
		}
		y := b.Dy() - 1 - int((values[i]-lo)/span*float64(b.Dy()-1))
		return x, clamp(y, 0, b.Dy()-1)
	}

	drawn := false
	var x0, y0 int
	for i, v := range values {
		if !isFinite(v) {
			drawn = false
			continue
		}
		x1, y1 := point(i)
		if drawn {
			line(img, x0, y0, x1, y1, c)
		} else {
			img.SetRGBA(x1, y1, c)
		}
		x0, y0, drawn = x1, y1, true
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func line(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		img.SetRGBA(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
