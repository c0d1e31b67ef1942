package charts

import (
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	chart "github.com/wcharczuk/go-chart/v2"
)

// plotLimit bounds plotted values so ranges, deltas and padding stay finite.
const plotLimit = math.MaxFloat64 / 8

func clampPlot(v float64) float64 {
	return math.Max(-plotLimit, math.Min(plotLimit, v))
}

// paddedRange widens [lo, hi] by frac of its span; a zero span is widened around the value
// since go-chart refuses to draw an empty domain.
func paddedRange(lo, hi, frac float64) (float64, float64) {
	span := hi - lo
	if span > math.MaxFloat64/4 {
		span = math.MaxFloat64 / 4
	}
	if span <= 0 {
		pad := math.Abs(lo) * 0.1
		if pad == 0 {
			pad = 1
		}
		return lo - pad, hi + pad
	}
	return lo - span*frac, hi + span*frac
}

// niceTicks generates up to n tick values between [min, max] on 1, 2, 2.5, 5 steps.
func niceTicks(min, max float64, n int, label func(v, step float64) string) []chart.Tick {
	if n < 2 || math.IsNaN(min) || math.IsNaN(max) || max <= min || math.IsInf(max-min, 0) {
		return nil
	}
	mag := math.Pow(10, math.Floor(math.Log10((max-min)/float64(n-1))))
	bestStep := mag
	bestScore := math.MaxFloat64
	for _, c := range []float64{1, 2, 2.5, 5, 10} {
		step := c * mag
		count := math.Floor((max-min)/step) + 1
		score := math.Abs(count - float64(n))
		if score < bestScore {
			bestScore = score
			bestStep = step
		}
	}

	var ticks []chart.Tick
	start := math.Ceil(min/bestStep) * bestStep
	for i := 0; i <= n+2; i++ {
		v := start + float64(i)*bestStep
		if v > max+bestStep*1e-9 {
			break
		}
		if math.Abs(v) < bestStep*1e-9 {
			v = 0
		}
		ticks = append(ticks, chart.Tick{Value: v, Label: label(v, bestStep)})
	}
	return ticks
}

// decadeTicks returns one tick per power of ten inside [min, max] (log10 units).
func decadeTicks(min, max float64) []chart.Tick {
	lo, hi := int(math.Ceil(min)), int(math.Floor(max))
	step := 1
	for (hi-lo)/step > 8 {
		step++
	}
	var ticks []chart.Tick
	for e := lo; e <= hi; e += step {
		ticks = append(ticks, chart.Tick{Value: float64(e), Label: usdLabel(math.Pow(10, float64(e)))})
	}
	return ticks
}

func numberLabel(v, step float64) string {
	if math.Abs(v) >= 1e9 {
		return fmt.Sprintf("%.3g", v)
	}
	decimals := 0
	if step < 1 {
		decimals = int(math.Ceil(-math.Log10(step) - 1e-9))
		// 2.5 steps need one more digit
		if math.Abs(step*math.Pow(10, float64(decimals))-math.Round(step*math.Pow(10, float64(decimals)))) > 1e-9 {
			decimals++
		}
	}
	return fmt.Sprintf("%.*f", decimals, v)
}

func usdTickLabel(v, _ float64) string {
	return usdLabel(v)
}

// usdLabel formats a whole dollar amount like "$12,500".
func usdLabel(v float64) string {
	cents := math.Round(v * 100)
	if math.Abs(cents) >= math.MaxInt64/10 {
		return fmt.Sprintf("$%.3g", v)
	}
	display := money.New(int64(cents), "USD").Display()
	return strings.TrimSuffix(display, ".00")
}
