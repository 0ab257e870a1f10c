package bandstats

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"treecover-tools/partition"
	"treecover-tools/rasters"
)

var ErrYearMismatch = errors.New("bandstats: file name year disagrees with raster metadata")

type Config struct {
	DEMPath string
	TCCDir  string

	FirstYear int
	LastYear  int

	BandCount int
	BandWidth int

	// Workers is the number of goroutines sharing this process's bands.
	Workers int
	// Seed orders the bands before partitioning. Processes of one run must
	// use the same seed.
	Seed int64
	// Rank and Size select this process's shard when several processes
	// split the bands between them.
	Rank int
	Size int

	Options Options
}

func DefaultConfig() Config {
	return Config{
		DEMPath:   "./dem.tif",
		TCCDir:    "./treecoverData",
		FirstYear: 1990,
		LastYear:  2020,
		BandCount: DefaultBandCount,
		BandWidth: DefaultBandWidth,
		Workers:   4,
		Size:      1,
		Options:   DefaultOptions(),
	}
}

// Assignment returns the bands this process is responsible for.
func (c Config) Assignment() ([]Band, error) {
	bands := partition.Shuffle(Bands(c.BandCount, c.BandWidth), c.Seed)
	return partition.Shard(bands, c.Rank, c.Size)
}

// Run computes the tables of this process's bands and hands each to sink.
// The DEM is loaded once and shared read-only; each worker reads every
// year's tree-cover raster itself. The first failure cancels the other
// workers.
func Run(ctx context.Context, cfg Config, sink Sink) error {
	paths, err := rasters.ListRasters(cfg.TCCDir)
	if err != nil {
		return err
	}
	files, err := rasters.FilterYears(paths, cfg.FirstYear, cfg.LastYear)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logrus.Warnf("No tree cover rasters for %d-%d in %s", cfg.FirstYear, cfg.LastYear, cfg.TCCDir)
	}

	bands, err := cfg.Assignment()
	if err != nil {
		return err
	}
	if len(bands) == 0 {
		logrus.Infof("Rank %d of %d has no bands assigned", cfg.Rank, cfg.Size)
		return nil
	}

	dem, _, err := rasters.ReadGrid(cfg.DEMPath)
	if err != nil {
		return err
	}

	chunks, err := partition.Divide(bands, cfg.Workers)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		if len(chunk) == 0 {
			continue
		}
		g.Go(func() error {
			return processBands(ctx, i, dem, files, chunk, cfg.Options, sink)
		})
	}
	return g.Wait()
}

func processBands(ctx context.Context, worker int, dem *rasters.Grid, files []rasters.YearFile, bands []Band, opts Options, sink Sink) error {
	log := logrus.WithField("worker", worker)
	log.Debugf("Processing %d bands", len(bands))

	tables := make([]Table, len(bands))
	for i, b := range bands {
		tables[i] = Table{Band: b}
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		tcc, _, err := rasters.ReadGrid(f.Path)
		if err != nil {
			return err
		}
		if tcc.Year != 0 && tcc.Year != f.Year {
			return fmt.Errorf("%w: %s named %d, metadata %d", ErrYearMismatch, f.Path, f.Year, tcc.Year)
		}
		for i := range tables {
			s, err := MaskedMean(dem, tcc, tables[i].Band, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", f.Path, err)
			}
			if s.Empty() {
				log.Debugf("Band %s has no valid cells in %d", tables[i].Band.Name(), f.Year)
			}
			tables[i].Add(f.Year, s)
		}
	}

	for _, t := range tables {
		t.Sort()
		if err := sink(t); err != nil {
			return err
		}
		log.WithField("band", t.Band.Name()).Info("Wrote band statistics")
	}
	return nil
}
