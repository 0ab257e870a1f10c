package correlation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treecover-tools/rasters"
)

func stackOf(t *testing.T, w, h int, nd rasters.Sentinel, layers ...[]float64) *rasters.Stack {
	t.Helper()
	s := &rasters.Stack{Profile: rasters.Profile{Width: w, Height: h, NoData: nd}}
	for i, data := range layers {
		g, err := rasters.NewGrid(w, h, data, nd)
		require.NoError(t, err)
		s.Layers = append(s.Layers, rasters.Layer{Path: fmt.Sprintf("layer_%d.tif", 2000+i), Year: 2000 + i, Grid: g})
	}
	return s
}

func TestComputeTwoYearStack(t *testing.T) {
	temp := stackOf(t, 2, 2, tempND,
		[]float64{1, 2, 3, tempNoData},
		[]float64{2, 4, 6, 8},
	)
	cover := stackOf(t, 2, 2, coverND,
		[]float64{0, 255, 5, 40},
		[]float64{0, 255, 8, 60},
	)
	p := Params{MinSamples: 2, MinCover: 10}

	out, err := Compute(context.Background(), temp, cover, p, 3)
	require.NoError(t, err)

	assert.Equal(t, []Status{AllZero, NoCover, LowCover, Insufficient}, out.Status)
	assert.Equal(t, []float64{0, tempNoData, 0, tempNoData}, out.Values)
	assert.Equal(t, map[Status]int{AllZero: 1, NoCover: 1, LowCover: 1, Insufficient: 1}, out.Counts())
	assert.Equal(t, []byte{1, 2, 3, 4}, out.StatusBytes())
}

func TestComputeCorrelatedPixel(t *testing.T) {
	temp := stackOf(t, 1, 1, tempND, []float64{1}, []float64{2}, []float64{3})
	cover := stackOf(t, 1, 1, coverND, []float64{30}, []float64{20}, []float64{10})

	out, err := Compute(context.Background(), temp, cover, Params{MinSamples: 3, MinCover: 10}, 1)
	require.NoError(t, err)
	assert.Equal(t, Correlated, out.Status[0])
	assert.InDelta(t, -1.0, out.Values[0], 1e-12)
}

func TestComputeStackMismatch(t *testing.T) {
	temp := stackOf(t, 1, 1, tempND, []float64{1}, []float64{2})
	cover := stackOf(t, 1, 1, coverND, []float64{30})
	_, err := Compute(context.Background(), temp, cover, DefaultParams(), 1)
	assert.True(t, errors.Is(err, ErrStackMismatch))

	cover = stackOf(t, 2, 1, coverND, []float64{30, 1}, []float64{30, 1})
	_, err = Compute(context.Background(), temp, cover, DefaultParams(), 1)
	assert.True(t, errors.Is(err, ErrStackMismatch))
}

func TestStatusPath(t *testing.T) {
	assert.Equal(t, "out/corr_status.tif", StatusPath("out/corr.tif"))
}

func TestRunWritesRasters(t *testing.T) {
	dir := t.TempDir()
	tempDir := filepath.Join(dir, "temperatureData")
	coverDir := filepath.Join(dir, "treecoverData")
	require.NoError(t, os.MkdirAll(tempDir, 0o755))
	require.NoError(t, os.MkdirAll(coverDir, 0o755))

	gt := [6]float64{100, 0.25, 0, 40, 0, -0.25}
	tp := rasters.Profile{Width: 2, Height: 1, GeoTransform: gt, NoData: rasters.NoData(-9999)}
	cp := rasters.Profile{Width: 2, Height: 1, GeoTransform: gt, NoData: coverND}
	for k := 0; k < 3; k++ {
		year := 2000 + k
		require.NoError(t, rasters.WriteFloat32(filepath.Join(tempDir, fmt.Sprintf("temp_%d.tif", year)), tp,
			[]float64{float64(k), 5}))
		require.NoError(t, rasters.WriteFloat32(filepath.Join(coverDir, fmt.Sprintf("tcc_%d.tif", year)), cp,
			[]float64{float64(20 + 10*k), 0}))
	}

	cfg := DefaultConfig()
	cfg.TempDir = tempDir
	cfg.CoverDir = coverDir
	cfg.Output = filepath.Join(dir, "corr.tif")
	cfg.Params.MinSamples = 3

	_, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	grid, profile, err := rasters.ReadGrid(cfg.Output)
	require.NoError(t, err)
	assert.Equal(t, gt, profile.GeoTransform)
	assert.True(t, profile.NoData.Is(-9999))
	assert.InDelta(t, 1.0, grid.Data[0], 1e-6)
	assert.Equal(t, 0.0, grid.Data[1])

	status, _, err := rasters.ReadGrid(StatusPath(cfg.Output))
	require.NoError(t, err)
	assert.Equal(t, []float64{float64(Correlated), float64(AllZero)}, status.Data)
}

func TestRunFloat32TemperatureNoData(t *testing.T) {
	dir := t.TempDir()
	tempDir := filepath.Join(dir, "temperatureData")
	coverDir := filepath.Join(dir, "treecoverData")
	require.NoError(t, os.MkdirAll(tempDir, 0o755))
	require.NoError(t, os.MkdirAll(coverDir, 0o755))

	gt := [6]float64{100, 0.25, 0, 40, 0, -0.25}
	tp := rasters.Profile{Width: 2, Height: 1, GeoTransform: gt, NoData: rasters.NoData(tempNoData)}
	cp := rasters.Profile{Width: 2, Height: 1, GeoTransform: gt, NoData: coverND}
	for k := 0; k < 30; k++ {
		year := 1991 + k
		// The first pixel is missing temperature in 10 of 30 years.
		first := float64(k)
		if k%3 == 0 {
			first = tempNoData
		}
		require.NoError(t, rasters.WriteFloat32(filepath.Join(tempDir, fmt.Sprintf("temp_%d.tif", year)), tp,
			[]float64{first, float64(k)}))
		require.NoError(t, rasters.WriteFloat32(filepath.Join(coverDir, fmt.Sprintf("tcc_%d.tif", year)), cp,
			[]float64{float64(60 - k), float64(20 + k)}))
	}

	cfg := DefaultConfig()
	cfg.TempDir = tempDir
	cfg.CoverDir = coverDir
	cfg.Output = filepath.Join(dir, "corr.tif")

	out, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []Status{Insufficient, Correlated}, out.Status)

	grid, profile, err := rasters.ReadGrid(cfg.Output)
	require.NoError(t, err)
	assert.True(t, profile.NoData.Is(grid.Data[0]), "got %v, nodata %v", grid.Data[0], profile.NoData.Value)
	assert.InDelta(t, 1.0, grid.Data[1], 1e-6)
}
