// Package bandstats computes the mean tree cover within elevation bands of a
// DEM, for every year of a tree-cover time series.
package bandstats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"treecover-tools/rasters"
)

const (
	DefaultBandCount = 16
	DefaultBandWidth = 500
	DefaultDEMNoData = -9999
	DefaultMaxCover  = 100
)

// Band is the half-open elevation interval [Start, End).
type Band struct {
	Start int
	End   int
}

// Bands returns count consecutive bands of the given width starting at 0.
func Bands(count, width int) []Band {
	bands := make([]Band, count)
	for i := range bands {
		bands[i] = Band{Start: i * width, End: (i + 1) * width}
	}
	return bands
}

func (b Band) Contains(elevation float64) bool {
	return float64(b.Start) <= elevation && elevation < float64(b.End)
}

// Name is the "{start}_{end}" stem used for the band's output file.
func (b Band) Name() string {
	return fmt.Sprintf("%d_%d", b.Start, b.End)
}

type Options struct {
	// DEMNoData marks invalid DEM cells, in addition to the DEM band's own
	// no-data value.
	DEMNoData float64
	// MaxCover is the largest valid tree-cover value; anything above it is
	// no-data.
	MaxCover float64
}

func DefaultOptions() Options {
	return Options{DEMNoData: DefaultDEMNoData, MaxCover: DefaultMaxCover}
}

// Summary is the masked mean of one band for one year. Mean is NaN when no
// cell qualified.
type Summary struct {
	Mean  float64
	Count int
}

func (s Summary) Empty() bool {
	return s.Count == 0
}

// MaskedMean averages the tree-cover cells whose DEM elevation lies in band,
// skipping DEM no-data cells and tree-cover values above opts.MaxCover.
func MaskedMean(dem, tcc *rasters.Grid, band Band, opts Options) (Summary, error) {
	if !dem.SameShape(tcc) {
		return Summary{}, fmt.Errorf("%w: dem %dx%d, tree cover %dx%d", rasters.ErrShapeMismatch,
			dem.Width, dem.Height, tcc.Width, tcc.Height)
	}
	var values []float64
	for i, elevation := range dem.Data {
		if elevation == opts.DEMNoData || dem.NoData.Is(elevation) || !band.Contains(elevation) {
			continue
		}
		cover := tcc.Data[i]
		if math.IsNaN(cover) || cover > opts.MaxCover {
			continue
		}
		values = append(values, cover)
	}
	if len(values) == 0 {
		return Summary{Mean: math.NaN()}, nil
	}
	return Summary{Mean: stat.Mean(values, nil), Count: len(values)}, nil
}
