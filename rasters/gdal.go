package rasters

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/sirupsen/logrus"
)

const yearMetadataKey = "YEAR"

var registerOnce sync.Once

// Register registers the GDAL drivers. It is safe to call repeatedly.
func Register() {
	registerOnce.Do(godal.RegisterAll)
}

// ReadGrid reads the first band of the raster at path.
func ReadGrid(path string) (grid *Grid, profile Profile, err error) {
	Register()
	ds, err := godal.Open(path)
	if err != nil {
		return nil, Profile{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, ds.Close())
	}()

	profile, err = profileOf(ds)
	if err != nil {
		return nil, Profile{}, fmt.Errorf("read %s: %w", path, err)
	}

	band := ds.Bands()[0]
	buf := make([]float64, profile.Width*profile.Height)
	if err := band.Read(0, 0, buf, profile.Width, profile.Height); err != nil {
		return nil, Profile{}, fmt.Errorf("read %s: %w", path, err)
	}

	grid = &Grid{
		Width:  profile.Width,
		Height: profile.Height,
		Data:   buf,
		NoData: profile.NoData,
	}
	if y := strings.TrimSpace(ds.Metadata(yearMetadataKey)); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			return nil, Profile{}, fmt.Errorf("read %s: bad %s metadata %q: %w", path, yearMetadataKey, y, err)
		}
		grid.Year = year
	}
	logrus.WithFields(logrus.Fields{"path": path, "width": grid.Width, "height": grid.Height}).Debug("Read raster")
	return grid, profile, nil
}

func profileOf(ds *godal.Dataset) (Profile, error) {
	st := ds.Structure()
	if st.NBands < 1 {
		return Profile{}, errors.New("raster has no bands")
	}
	gt, err := ds.GeoTransform()
	if err != nil {
		// Ungeoreferenced rasters are still readable; keep GDAL's default.
		logrus.Debugf("No geotransform: %v", err)
		gt = [6]float64{0, 1, 0, 0, 0, 1}
	}
	band := ds.Bands()[0]
	var nd Sentinel
	if v, ok := band.NoData(); ok {
		nd = NoData(asStored(v, band.Structure().DataType))
	}
	return Profile{
		Width:        st.SizeX,
		Height:       st.SizeY,
		GeoTransform: gt,
		Projection:   ds.Projection(),
		NoData:       nd,
	}, nil
}

// asStored rounds a no-data value to the precision pixels of dtype are read
// back with, so that it compares equal to them once widened to float64.
func asStored(v float64, dtype godal.DataType) float64 {
	if dtype == godal.Float32 {
		return float64(float32(v))
	}
	return v
}

// ReadStack reads every path in order. All rasters must share the
// dimensions of the first; the stack carries the first raster's profile.
// years gives the year of each path, and may be nil.
func ReadStack(paths []string, years []int) (*Stack, error) {
	if len(paths) == 0 {
		return nil, ErrEmptyStack
	}
	stack := &Stack{Layers: make([]Layer, 0, len(paths))}
	for i, path := range paths {
		grid, profile, err := ReadGrid(path)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			stack.Profile = profile
		} else if grid.Width != stack.Profile.Width || grid.Height != stack.Profile.Height {
			return nil, fmt.Errorf("%w: %s is %dx%d, expected %dx%d", ErrShapeMismatch,
				path, grid.Width, grid.Height, stack.Profile.Width, stack.Profile.Height)
		}
		layer := Layer{Path: path, Grid: grid, Year: grid.Year}
		if years != nil {
			layer.Year = years[i]
		}
		stack.Layers = append(stack.Layers, layer)
	}
	logrus.Infof("Loaded %d rasters of %dx%d", len(paths), stack.Profile.Width, stack.Profile.Height)
	return stack, nil
}

// WriteFloat32 writes values as a single float32 band georeferenced like
// profile. The profile's no-data value, if set, is attached to the band.
func WriteFloat32(path string, profile Profile, values []float64) error {
	buf := make([]float32, len(values))
	for i, v := range values {
		buf[i] = float32(v)
	}
	return write(path, profile, godal.Float32, buf, len(values), profile.NoData)
}

// WriteByte writes values as a single byte band without a no-data value.
func WriteByte(path string, profile Profile, values []byte) error {
	return write(path, profile, godal.Byte, values, len(values), Sentinel{})
}

func write(path string, profile Profile, dtype godal.DataType, buf interface{}, n int, nd Sentinel) (err error) {
	if n != profile.Width*profile.Height {
		return fmt.Errorf("%w: %d values for a %dx%d raster", ErrShapeMismatch, n, profile.Width, profile.Height)
	}
	Register()
	ds, err := godal.Create(godal.GTiff, path, 1, dtype, profile.Width, profile.Height,
		godal.CreationOption("TILED=YES", "COMPRESS=LZW"))
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, ds.Close())
	}()

	if err := ds.SetGeoTransform(profile.GeoTransform); err != nil {
		return err
	}
	if profile.Projection != "" {
		if err := ds.SetProjection(profile.Projection); err != nil {
			return err
		}
	}
	band := ds.Bands()[0]
	if nd.Set {
		if err := band.SetNoData(asStored(nd.Value, dtype)); err != nil {
			return err
		}
	}
	if err := band.Write(0, 0, buf, profile.Width, profile.Height); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logrus.WithField("path", path).Info("Wrote raster")
	return nil
}
