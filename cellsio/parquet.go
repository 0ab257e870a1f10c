package cellsio

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/sirupsen/logrus"

	"treecover-tools/bandstats"
	"treecover-tools/celltools"
)

type CellRow struct {
	S2id  int64   `parquet:"s2_id"`
	Value float64 `parquet:"value"`
	Geom  string  `parquet:"geom"`
}

type StatRow struct {
	Year  int32   `parquet:"year"`
	Mean  float64 `parquet:"mean"`
	Count int64   `parquet:"count"`
}

func writeParquet[T any](path string, rows []T) (err error) {
	output, err := os.Create(path)
	if err != nil {
		return err
	}
	writer := parquet.NewGenericWriter[T](output, parquet.Compression(&parquet.Snappy))
	defer func() {
		err = errors.Join(err, writer.Close(), output.Close())
	}()

	if _, err := writer.Write(rows); err != nil {
		return err
	}
	return nil
}

// ParquetSink returns a sink writing each band table to
// {outDir}/stat/{start}_{end}.parquet.
func ParquetSink(outDir string) bandstats.Sink {
	return func(t bandstats.Table) error {
		path := TablePath(outDir, t.Band, ".parquet")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		return WriteTableParquet(path, t)
	}
}

func WriteTableParquet(path string, table bandstats.Table) error {
	rows := make([]StatRow, len(table.Rows))
	for i, r := range table.Rows {
		rows[i] = StatRow{Year: int32(r.Year), Mean: r.Mean, Count: int64(r.Count)}
	}
	return writeParquet(path, rows)
}

func WriteToParquet(cellData []celltools.S2CellData, path string) error {
	rows := make([]CellRow, len(cellData))
	for i, cell := range cellData {
		rows[i] = CellRow{int64(cell.Cell), cell.Data, cell.GeomString}
	}
	logrus.Infof("Writing %d cells to %s", len(rows), path)
	return writeParquet(path, rows)
}
