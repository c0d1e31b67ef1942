package charts

import "math"

// Options controls canvas geometry and the graph layout.
type Options struct {
	DPI      float64
	WidthIn  float64
	HeightIn float64
	FontPath string

	Seed       uint64 // layout seed, fixed so the graph image is reproducible
	Iterations int    // force-directed layout iterations
}

func DefaultOptions() Options {
	return Options{
		DPI:        160,
		WidthIn:    6,
		HeightIn:   4,
		Seed:       42,
		Iterations: 50,
	}
}

// size returns the canvas size in pixels.
func (o Options) size() (int, int) {
	return int(math.Round(o.WidthIn * o.DPI)), int(math.Round(o.HeightIn * o.DPI))
}

// px converts typographic points to pixels at the configured DPI.
func (o Options) px(points float64) float64 {
	return points * o.DPI / 72
}
