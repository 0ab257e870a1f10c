// Package cmd /*
package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string
var Verbose bool
var Debug bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "treecover-tools",
	Short: "Tree cover statistics over annual raster stacks",
	Long: `Statistics over annual tree cover rasters:

	./treecover-tools bandstats [opts]       mean tree cover per DEM elevation band and year
	./treecover-tools correlate [opts]       per-pixel temperature / tree cover correlation
	./treecover-tools indexraster [tif] [out] aggregate a result raster to S2 cells`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		setLogLevels()
		return nil
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.Error(err)
		stop()
		os.Exit(1)
	}
}

func initConfig() error {
	viper.SetEnvPrefix("TCC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
	if cfgFile == "" {
		return nil
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		return err
	}
	logrus.Infof("Using config file %s", viper.ConfigFileUsed())
	return nil
}

func setLogLevels() {
	if viper.GetBool("debug") {
		logrus.SetLevel(logrus.DebugLevel)
	} else if viper.GetBool("verbose") {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}
}

// bindFlags binds each named flag to the viper key prefix+name.
func bindFlags(flags *pflag.FlagSet, prefix string, names ...string) {
	for _, name := range names {
		if err := viper.BindPFlag(prefix+name, flags.Lookup(name)); err != nil {
			logrus.Exit(1)
		}
	}
}

func bindRootFlags() {
	bindFlags(rootCmd.PersistentFlags(), "", "verbose", "debug")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&Debug, "debug", "d", false, "Debug output")
	bindRootFlags()
}
