// Package correlation computes the per-pixel correlation between a
// temperature time series and a tree-cover time series.
package correlation

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"treecover-tools/rasters"
)

const (
	DefaultMinSamples = 26
	DefaultMinCover   = 10
)

// Status records which rule of the pixel cascade produced the output value.
type Status uint8

const (
	Correlated Status = iota
	AllZero
	NoCover
	LowCover
	Insufficient
	Degenerate
)

func (s Status) String() string {
	switch s {
	case Correlated:
		return "correlated"
	case AllZero:
		return "all-zero"
	case NoCover:
		return "no-cover"
	case LowCover:
		return "low-cover"
	case Insufficient:
		return "insufficient"
	case Degenerate:
		return "degenerate"
	default:
		return "unknown"
	}
}

type Params struct {
	// MinSamples is the fewest valid (temperature, cover) pairs a fit needs.
	MinSamples int
	// MinCover is the tree-cover percentage a pixel must reach in at least
	// one year to count as forest.
	MinCover float64
}

func DefaultParams() Params {
	return Params{MinSamples: DefaultMinSamples, MinCover: DefaultMinCover}
}

// Fit is an ordinary least-squares line of cover against temperature.
type Fit struct {
	Slope     float64
	Intercept float64
	R         float64
	N         int
}

// FitLine regresses y on x. ok is false when either variable is constant,
// in which case R is 0.
func FitLine(x, y []float64) (fit Fit, ok bool) {
	fit.N = len(x)
	if len(x) < 2 || stat.Variance(x, nil) == 0 {
		return fit, false
	}
	fit.Intercept, fit.Slope = stat.LinearRegression(x, y, nil, false)
	if stat.Variance(y, nil) == 0 {
		return fit, false
	}
	fit.R = math.Max(-1, math.Min(1, stat.Correlation(x, y, nil)))
	return fit, true
}

// Result is the output value of one pixel and how it was reached.
type Result struct {
	Value  float64
	Status Status
	Fit    Fit
}

// Evaluate applies the pixel cascade to the aligned temperature and cover
// samples of one pixel, in priority order:
//
//  1. every cover sample is 0: 0
//  2. every cover sample is cover no-data: temperature no-data
//  3. the largest valid cover sample is below MinCover: 0
//  4. fewer than MinSamples pairs with neither value no-data: temperature no-data
//  5. otherwise the correlation coefficient of the pairs
//
// NaN samples count as no-data. When the temperature raster has no no-data
// value, rules 2 and 4 produce NaN.
func Evaluate(temp, cover []float64, tempND, coverND rasters.Sentinel, p Params) Result {
	allZero, allMissing := true, true
	maxCover := math.Inf(-1)
	for _, c := range cover {
		if c != 0 {
			allZero = false
		}
		if coverND.Is(c) || math.IsNaN(c) {
			continue
		}
		allMissing = false
		maxCover = math.Max(maxCover, c)
	}

	switch {
	case allZero:
		return Result{Value: 0, Status: AllZero}
	case allMissing:
		return Result{Value: tempND.Fill(), Status: NoCover}
	case maxCover < p.MinCover:
		return Result{Value: 0, Status: LowCover}
	}

	x := make([]float64, 0, len(cover))
	y := make([]float64, 0, len(cover))
	for k, c := range cover {
		t := temp[k]
		if coverND.Is(c) || tempND.Is(t) || math.IsNaN(c) || math.IsNaN(t) {
			continue
		}
		x = append(x, t)
		y = append(y, c)
	}
	if len(x) < p.MinSamples {
		return Result{Value: tempND.Fill(), Status: Insufficient, Fit: Fit{N: len(x)}}
	}

	fit, ok := FitLine(x, y)
	if !ok {
		return Result{Value: 0, Status: Degenerate, Fit: fit}
	}
	return Result{Value: fit.R, Status: Correlated, Fit: fit}
}
