package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treecover-tools/bandstats"
	"treecover-tools/celltools"
)

// resetConfig clears viper and restores the flag bindings made at init.
func resetConfig() {
	viper.Reset()
	bindRootFlags()
	bindBandstatsFlags()
	bindCorrelateFlags()
	bindIndexrasterFlags()
}

func TestChooseAggFunc(t *testing.T) {
	values := []float64{1, 5, 3}
	assert.Equal(t, 3.0, chooseAggFunc("mean")(values...))
	assert.Equal(t, 9.0, chooseAggFunc("sum")(values...))
	assert.Equal(t, 5.0, chooseAggFunc("max")(values...))
	assert.Equal(t, 1.0, chooseAggFunc("min")(values...))
	assert.Equal(t, celltools.Mean(values...), chooseAggFunc("median")(values...))
}

func TestChooseSink(t *testing.T) {
	dir := t.TempDir()
	sink, err := chooseSink("csv", dir)
	require.NoError(t, err)
	require.NoError(t, sink(bandstats.Table{Band: bandstats.Band{Start: 0, End: 500}}))
	_, err = os.Stat(filepath.Join(dir, "stat", "0_500.csv"))
	require.NoError(t, err)

	_, err = chooseSink("xlsx", dir)
	require.Error(t, err)
}

func TestBandstatsConfigDefaults(t *testing.T) {
	cfg := bandstatsConfig()
	assert.Equal(t, bandstats.DefaultConfig(), cfg)
}

func TestBandstatsConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bandstats:\n  dem: /data/dem.tif\n  workers: 2\n  last-year: 2010\n"), 0o644))

	cfgFile = path
	t.Cleanup(func() {
		cfgFile = ""
		resetConfig()
	})
	require.NoError(t, initConfig())

	cfg := bandstatsConfig()
	assert.Equal(t, "/data/dem.tif", cfg.DEMPath)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 2010, cfg.LastYear)
	assert.Equal(t, 1990, cfg.FirstYear)
}

func TestBandstatsConfigAfterReset(t *testing.T) {
	viper.Set("bandstats.workers", 7)
	resetConfig()
	assert.Equal(t, bandstats.DefaultConfig(), bandstatsConfig())
	assert.Equal(t, 8, viper.GetInt("numWorkers"))
}
