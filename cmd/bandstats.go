package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"treecover-tools/bandstats"
	"treecover-tools/cellsio"
)

var bandstatsCmd = &cobra.Command{
	Use:   "bandstats",
	Short: "Mean tree cover per DEM elevation band and year",
	Long: `Splits the DEM into elevation bands [start, start+width) and writes,
	for every band, a table of the mean tree cover per year to
	{out}/stat/{start}_{end}.csv.

	Bands are shuffled with --seed and divided between --workers goroutines.
	To split one run across several processes, launch each with the same
	--seed and --size and its own --rank.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := bandstatsConfig()
		sink, err := chooseSink(viper.GetString("bandstats.format"), viper.GetString("bandstats.out"))
		if err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"rank":    cfg.Rank,
			"size":    cfg.Size,
			"workers": cfg.Workers,
		}).Info("Computing elevation band statistics")
		return bandstats.Run(cmd.Context(), cfg, sink)
	},
}

func bandstatsConfig() bandstats.Config {
	cfg := bandstats.DefaultConfig()
	cfg.DEMPath = viper.GetString("bandstats.dem")
	cfg.TCCDir = viper.GetString("bandstats.tcc")
	cfg.FirstYear = viper.GetInt("bandstats.first-year")
	cfg.LastYear = viper.GetInt("bandstats.last-year")
	cfg.BandCount = viper.GetInt("bandstats.bands")
	cfg.BandWidth = viper.GetInt("bandstats.band-width")
	cfg.Workers = viper.GetInt("bandstats.workers")
	cfg.Seed = viper.GetInt64("bandstats.seed")
	cfg.Rank = viper.GetInt("bandstats.rank")
	cfg.Size = viper.GetInt("bandstats.size")
	cfg.Options.DEMNoData = viper.GetFloat64("bandstats.dem-nodata")
	cfg.Options.MaxCover = viper.GetFloat64("bandstats.max-cover")
	return cfg
}

func chooseSink(format, outDir string) (bandstats.Sink, error) {
	switch format {
	case "csv":
		return cellsio.CSVSink(outDir), nil
	case "parquet":
		return cellsio.ParquetSink(outDir), nil
	default:
		return nil, fmt.Errorf("unknown output format %q, choose csv or parquet", format)
	}
}

func init() {
	rootCmd.AddCommand(bandstatsCmd)

	def := bandstats.DefaultConfig()
	flags := bandstatsCmd.Flags()
	flags.String("dem", def.DEMPath, "DEM raster")
	flags.String("tcc", def.TCCDir, "Directory of annual tree cover rasters named <prefix>_<year>.tif")
	flags.StringP("out", "o", "./treeCover_DEM_sta", "Output directory")
	flags.String("format", "csv", "Table format: csv or parquet")
	flags.Int("first-year", def.FirstYear, "First year to include")
	flags.Int("last-year", def.LastYear, "Last year to include")
	flags.Int("bands", def.BandCount, "Number of elevation bands")
	flags.Int("band-width", def.BandWidth, "Elevation band width")
	flags.IntP("workers", "n", def.Workers, "Number of workers in this process")
	flags.Int64("seed", def.Seed, "Seed for the band order")
	flags.Int("rank", 0, "Index of this process among --size processes")
	flags.Int("size", 1, "Number of processes sharing the bands")
	flags.Float64("dem-nodata", def.Options.DEMNoData, "DEM no-data value")
	flags.Float64("max-cover", def.Options.MaxCover, "Largest valid tree cover value")

	bindBandstatsFlags()
}

func bindBandstatsFlags() {
	bindFlags(bandstatsCmd.Flags(), "bandstats.", "dem", "tcc", "out", "format", "first-year", "last-year",
		"bands", "band-width", "workers", "seed", "rank", "size", "dem-nodata", "max-cover")
}
