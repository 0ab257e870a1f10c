package cmd

import (
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"treecover-tools/cellsio"
	"treecover-tools/celltools"
)

var indexrasterCmd = &cobra.Command{
	Use:   "indexraster [tif_file] [output_path]",
	Short: "Aggregate a result raster to S2 cells",
	Long: `Aggregates the valid pixels of a single band raster in geographic
	coordinates (for example the correlation map) into S2 cells. The output
	is Parquet when output_path ends in .parquet, CSV otherwise.

	Options:
		--numWorkers: Number of workers indexing raster rows.
		--s2Lvl:      S2 cell level, essentially the output resolution.
		--aggFunc:    mean, sum, max or min`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := celltools.ConfigOpts{
			NumWorkers: viper.GetInt("numWorkers"),
			S2Lvl:      viper.GetInt("s2Lvl"),
			AggFunc:    chooseAggFunc(viper.GetString("aggFunc")),
		}
		cells, err := celltools.IndexRaster(args[0], opts)
		if err != nil {
			return err
		}
		if filepath.Ext(args[1]) == ".parquet" {
			return cellsio.WriteToParquet(cells, args[1])
		}
		return cellsio.WriteToCSV(cells, args[1])
	},
}

func chooseAggFunc(funcFlag string) celltools.AggFunc {
	switch funcFlag {
	case "mean":
		return celltools.Mean
	case "sum":
		return celltools.Sum
	case "max":
		return celltools.Max
	case "min":
		return celltools.Min
	default:
		logrus.Warnf("Aggregation function %s not recognized, using mean", funcFlag)
		return celltools.Mean
	}
}

func init() {
	rootCmd.AddCommand(indexrasterCmd)

	indexrasterCmd.Flags().IntP("numWorkers", "n", 8, "Number of workers to spawn for parallel processing")
	indexrasterCmd.Flags().IntP("s2Lvl", "l", 11, "S2 cell level to generate results for. Essentially output resolution")
	indexrasterCmd.Flags().StringP("aggFunc", "a", "mean", "Function to use when aggregating to S2 cell: mean, sum, max, min")
	bindIndexrasterFlags()
}

func bindIndexrasterFlags() {
	bindFlags(indexrasterCmd.Flags(), "", "numWorkers", "s2Lvl", "aggFunc")
}
