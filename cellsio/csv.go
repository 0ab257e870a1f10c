package cellsio

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"

	"treecover-tools/bandstats"
	"treecover-tools/celltools"
)

// StatDir is the subdirectory of the output path that holds band tables.
const StatDir = "stat"

// TablePath is where a band's table is written under outDir.
func TablePath(outDir string, band bandstats.Band, ext string) string {
	return filepath.Join(outDir, StatDir, band.Name()+ext)
}

// formatMean writes NaN, the mean of an empty band, as an empty field.
func formatMean(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CSVSink returns a sink writing each band table to
// {outDir}/stat/{start}_{end}.csv with the columns year,mean.
func CSVSink(outDir string) bandstats.Sink {
	return func(t bandstats.Table) error {
		return WriteTableCSV(TablePath(outDir, t.Band, ".csv"), t)
	}
}

func WriteTableCSV(path string, table bandstats.Table) (err error) {
	// Concurrent workers may race to create the directory; MkdirAll tolerates it.
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"year", "mean"}); err != nil {
		return err
	}
	for _, row := range table.Rows {
		if err := w.Write([]string{strconv.Itoa(row.Year), formatMean(row.Mean)}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Sync()
}

func WriteToCSV(cellData []celltools.S2CellData, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logrus.Error(err)
		}
	}()

	if _, err := f.WriteString("s2_id;value;geom\n"); err != nil {
		return err
	}

	for i, cell := range cellData {
		if i%10000 == 0 {
			logrus.Infof("Writing cell %d", i)
		}
		if _, err := f.WriteString(cell.String() + "\n"); err != nil {
			return err
		}
	}
	if err = f.Sync(); err != nil {
		return err
	}
	return nil
}
