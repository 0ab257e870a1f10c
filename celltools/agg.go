package celltools

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// AggFunc reduces the pixel values falling in one S2 cell. Cells are only
// aggregated once they hold at least one value.
type AggFunc func(...float64) float64

func Mean(values ...float64) float64 { return stat.Mean(values, nil) }

func Sum(values ...float64) float64 { return floats.Sum(values) }

func Max(values ...float64) float64 { return floats.Max(values) }

func Min(values ...float64) float64 { return floats.Min(values) }
