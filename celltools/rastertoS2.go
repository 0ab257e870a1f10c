// Package celltools summarises raster grids over S2 cells.
package celltools

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/golang/geo/s2"
	"github.com/sirupsen/logrus"

	"treecover-tools/rasters"
)

type S2CellData struct {
	Cell       s2.CellID
	Data       float64
	GeomString string
}

func (c S2CellData) String() string {
	return fmt.Sprintf("%v;%v;%s", int64(c.Cell), c.Data, c.GeomString)
}

type ConfigOpts struct {
	NumWorkers int
	S2Lvl      int
	AggFunc    AggFunc
}

type cellSample struct {
	cell  s2.CellID
	value float64
}

// IndexGrid groups the valid pixels of grid by the S2 cell of their centre
// and aggregates each group. The geotransform in profile must be geographic
// (degrees). No-data and NaN pixels are skipped. Results are sorted by cell.
func IndexGrid(grid *rasters.Grid, profile rasters.Profile, opts ConfigOpts) ([]S2CellData, error) {
	if opts.NumWorkers <= 0 {
		return nil, errors.New("celltools: NumWorkers must be positive")
	}
	if opts.S2Lvl < 0 || opts.S2Lvl > s2.MaxLevel {
		return nil, fmt.Errorf("celltools: S2 level %d out of range", opts.S2Lvl)
	}
	if opts.AggFunc == nil {
		opts.AggFunc = Mean
	}

	done := make(chan struct{})
	defer close(done)

	rows := genRows(grid.Height, done)
	resCh := processRows(grid, profile.GeoTransform, opts, rows)
	resMap := groupByCell(resCh)

	return aggCellResults(resMap, opts.AggFunc), nil
}

// Produce row indices to be consumed by the workers.
func genRows(height int, done <-chan struct{}) <-chan int {
	rows := make(chan int)
	go func() {
		defer close(rows)
		for row := 0; row < height; row++ {
			select {
			case rows <- row:
			case <-done:
				return
			}
		}
	}()
	return rows
}

func processRows(grid *rasters.Grid, gt [6]float64, opts ConfigOpts, rows <-chan int) <-chan cellSample {
	resCh := make(chan cellSample, grid.Width)
	var wg sync.WaitGroup

	wg.Add(opts.NumWorkers)
	for i := 0; i < opts.NumWorkers; i++ {
		go func() {
			defer wg.Done()
			for row := range rows {
				indexRow(grid, gt, opts.S2Lvl, row, resCh)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resCh)
	}()
	return resCh
}

func indexRow(grid *rasters.Grid, gt [6]float64, level int, row int, resCh chan<- cellSample) {
	logrus.Debugf("Indexing row %d", row)
	for col := 0; col < grid.Width; col++ {
		value := grid.At(row, col)
		if math.IsNaN(value) || grid.NoData.Is(value) {
			continue
		}
		lat, lng := pixelCentre(gt, row, col)
		cell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lng)).Parent(level)
		resCh <- cellSample{cell, value}
	}
}

func pixelCentre(gt [6]float64, row, col int) (lat, lng float64) {
	x := float64(col) + 0.5
	y := float64(row) + 0.5
	lng = gt[0] + x*gt[1] + y*gt[2]
	lat = gt[3] + x*gt[4] + y*gt[5]
	return lat, lng
}

func groupByCell(resCh <-chan cellSample) map[s2.CellID][]float64 {
	outMap := make(map[s2.CellID][]float64)
	for sample := range resCh {
		outMap[sample.cell] = append(outMap[sample.cell], sample.value)
	}
	return outMap
}

func aggCellResults(resMap map[s2.CellID][]float64, aggFunc AggFunc) []S2CellData {
	aggResults := make([]S2CellData, 0, len(resMap))
	for cell, values := range resMap {
		aggResults = append(aggResults, S2CellData{
			Cell:       cell,
			Data:       aggFunc(values...),
			GeomString: cellToWKT(s2.CellFromCellID(cell)),
		})
	}
	sort.Slice(aggResults, func(i, j int) bool { return aggResults[i].Cell < aggResults[j].Cell })
	logrus.Infof("Aggregated %d S2 cells", len(aggResults))
	return aggResults
}

// IndexRaster reads the raster at path and indexes its first band.
func IndexRaster(path string, opts ConfigOpts) ([]S2CellData, error) {
	grid, profile, err := rasters.ReadGrid(path)
	if err != nil {
		return nil, err
	}
	return IndexGrid(grid, profile, opts)
}
