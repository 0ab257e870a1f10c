// Package rasters reads and writes single-band rasters through GDAL and holds
// them in memory as row-major float64 grids.
package rasters

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrShapeMismatch = errors.New("rasters: grid dimensions differ")
	ErrEmptyStack    = errors.New("rasters: no rasters to stack")
)

// Sentinel is a band's no-data value. An unset sentinel matches nothing.
type Sentinel struct {
	Value float64
	Set   bool
}

func NoData(v float64) Sentinel {
	return Sentinel{Value: v, Set: true}
}

func (s Sentinel) Is(v float64) bool {
	return s.Set && v == s.Value
}

// Or returns the sentinel value, or fallback when it is unset.
func (s Sentinel) Or(fallback float64) float64 {
	if s.Set {
		return s.Value
	}
	return fallback
}

// Fill is the value written for "no data" pixels: the sentinel, or NaN.
func (s Sentinel) Fill() float64 {
	return s.Or(math.NaN())
}

// Profile carries what an output raster needs to share the georeferencing of
// an input.
type Profile struct {
	Width        int
	Height       int
	GeoTransform [6]float64
	Projection   string
	NoData       Sentinel
}

// Grid is one raster band read wholesale into memory.
type Grid struct {
	Width  int
	Height int
	Data   []float64
	NoData Sentinel
	// Year from the YEAR metadata item, 0 if absent.
	Year int
}

func NewGrid(width, height int, data []float64, noData Sentinel) (*Grid, error) {
	if width*height != len(data) {
		return nil, fmt.Errorf("rasters: %dx%d grid needs %d values, got %d", width, height, width*height, len(data))
	}
	return &Grid{Width: width, Height: height, Data: data, NoData: noData}, nil
}

// At returns the value at row, col. GDAL buffers are row-major.
func (g *Grid) At(row, col int) float64 {
	return g.Data[row*g.Width+col]
}

func (g *Grid) Len() int {
	return g.Width * g.Height
}

func (g *Grid) SameShape(o *Grid) bool {
	return g.Width == o.Width && g.Height == o.Height
}

// Layer is one grid of a stack and the file it came from.
type Layer struct {
	Path string
	Year int
	Grid *Grid
}

// Stack is a time series of grids with identical dimensions.
type Stack struct {
	Layers  []Layer
	Profile Profile
}

func (s *Stack) Len() int {
	return len(s.Layers)
}

// Pixel copies the time series at flat index i into buf and returns it.
func (s *Stack) Pixel(i int, buf []float64) []float64 {
	buf = buf[:0]
	for _, l := range s.Layers {
		buf = append(buf, l.Grid.Data[i])
	}
	return buf
}

// NoData is the sentinel of the first layer, the one whose profile the stack
// carries.
func (s *Stack) NoData() Sentinel {
	return s.Profile.NoData
}
