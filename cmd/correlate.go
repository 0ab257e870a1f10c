package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"treecover-tools/correlation"
)

var correlateCmd = &cobra.Command{
	Use:   "correlate",
	Short: "Per-pixel correlation between temperature and tree cover",
	Long: `Loads every .tif of the temperature and tree cover directories (paired
	in name order) and writes a float32 raster of the per-pixel correlation
	coefficient, georeferenced like the first temperature raster.

	Pixels whose tree cover is always 0, or never reaches --min-cover, get 0.
	Pixels without tree cover data, or with fewer than --min-samples valid
	pairs, get the temperature no-data value. The cascade outcome of every
	pixel is written to <out>_status.tif:
		0 correlated, 1 all zero, 2 no cover data, 3 low cover,
		4 insufficient samples, 5 constant input`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := correlation.DefaultConfig()
		cfg.TempDir = viper.GetString("correlate.temp")
		cfg.CoverDir = viper.GetString("correlate.tcc")
		cfg.Output = viper.GetString("correlate.out")
		cfg.WriteStatus = viper.GetBool("correlate.status")
		cfg.Workers = viper.GetInt("correlate.workers")
		cfg.Params.MinSamples = viper.GetInt("correlate.min-samples")
		cfg.Params.MinCover = viper.GetFloat64("correlate.min-cover")

		if _, err := correlation.Run(cmd.Context(), cfg); err != nil {
			return err
		}
		logrus.Infof("Wrote %s", cfg.Output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(correlateCmd)

	def := correlation.DefaultConfig()
	flags := correlateCmd.Flags()
	flags.String("temp", def.TempDir, "Directory of annual temperature rasters")
	flags.String("tcc", def.CoverDir, "Directory of annual tree cover rasters")
	flags.StringP("out", "o", def.Output, "Output correlation raster")
	flags.Bool("status", def.WriteStatus, "Also write the per-pixel status raster")
	flags.IntP("workers", "n", def.Workers, "Number of workers")
	flags.Int("min-samples", def.Params.MinSamples, "Fewest valid samples for a fit")
	flags.Float64("min-cover", def.Params.MinCover, "Tree cover a pixel must reach to be fitted")

	bindCorrelateFlags()
}

func bindCorrelateFlags() {
	bindFlags(correlateCmd.Flags(), "correlate.", "temp", "tcc", "out", "status", "workers", "min-samples", "min-cover")
}
