package correlation

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"treecover-tools/partition"
	"treecover-tools/rasters"
)

var ErrStackMismatch = errors.New("correlation: temperature and tree cover stacks do not align")

// Output is the correlation grid with the profile of the first temperature
// raster.
type Output struct {
	Profile rasters.Profile
	Values  []float64
	Status  []Status
}

// Counts tallies pixels per status.
func (o *Output) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, s := range o.Status {
		counts[s]++
	}
	return counts
}

func (o *Output) StatusBytes() []byte {
	out := make([]byte, len(o.Status))
	for i, s := range o.Status {
		out[i] = byte(s)
	}
	return out
}

func checkAligned(temp, cover *rasters.Stack) error {
	if temp.Len() != cover.Len() {
		return fmt.Errorf("%w: %d temperature rasters, %d tree cover rasters", ErrStackMismatch, temp.Len(), cover.Len())
	}
	tp, cp := temp.Profile, cover.Profile
	if tp.Width != cp.Width || tp.Height != cp.Height {
		return fmt.Errorf("%w: temperature %dx%d, tree cover %dx%d", ErrStackMismatch, tp.Width, tp.Height, cp.Width, cp.Height)
	}
	for k := range temp.Layers {
		ty, cy := temp.Layers[k].Year, cover.Layers[k].Year
		if ty != 0 && cy != 0 && ty != cy {
			logrus.Warnf("Pairing %s (%d) with %s (%d)", temp.Layers[k].Path, ty, cover.Layers[k].Path, cy)
		}
	}
	return nil
}

// Compute evaluates every pixel. Rows are divided between workers, each of
// which writes only its own rows of the output.
func Compute(ctx context.Context, temp, cover *rasters.Stack, p Params, workers int) (*Output, error) {
	if err := checkAligned(temp, cover); err != nil {
		return nil, err
	}
	profile := temp.Profile
	out := &Output{
		Profile: profile,
		Values:  make([]float64, profile.Width*profile.Height),
		Status:  make([]Status, profile.Width*profile.Height),
	}

	rows := make([]int, profile.Height)
	for i := range rows {
		rows[i] = i
	}
	chunks, err := partition.Divide(rows, workers)
	if err != nil {
		return nil, err
	}

	tempND, coverND := temp.NoData(), cover.NoData()
	g, ctx := errgroup.WithContext(ctx)
	for _, chunk := range chunks {
		chunk := chunk
		if len(chunk) == 0 {
			continue
		}
		g.Go(func() error {
			tbuf := make([]float64, 0, temp.Len())
			cbuf := make([]float64, 0, cover.Len())
			for _, row := range chunk {
				if err := ctx.Err(); err != nil {
					return err
				}
				for col := 0; col < profile.Width; col++ {
					i := row*profile.Width + col
					tbuf = temp.Pixel(i, tbuf)
					cbuf = cover.Pixel(i, cbuf)
					res := Evaluate(tbuf, cbuf, tempND, coverND, p)
					out.Values[i] = res.Value
					out.Status[i] = res.Status
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type Config struct {
	TempDir  string
	CoverDir string
	Output   string
	// WriteStatus also writes the per-pixel status raster next to Output.
	WriteStatus bool
	Workers     int
	Params      Params
}

func DefaultConfig() Config {
	return Config{
		TempDir:     "./temperatureData",
		CoverDir:    "./treecoverData",
		Output:      "./correlation_1990-2020.tif",
		WriteStatus: true,
		Workers:     1,
		Params:      DefaultParams(),
	}
}

// StatusPath is where the status raster of output is written:
// "corr.tif" -> "corr_status.tif".
func StatusPath(output string) string {
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + "_status" + ext
}

func loadStack(dir string) (*rasters.Stack, error) {
	paths, err := rasters.ListRasters(dir)
	if err != nil {
		return nil, err
	}
	years := make([]int, len(paths))
	for i, p := range paths {
		// Years are informational here; pairing is by sorted name.
		if y, err := rasters.ParseYear(p); err == nil {
			years[i] = y
		}
	}
	stack, err := rasters.ReadStack(paths, years)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}
	return stack, nil
}

// Run loads both stacks, computes the correlation grid and writes it.
func Run(ctx context.Context, cfg Config) (*Output, error) {
	temp, err := loadStack(cfg.TempDir)
	if err != nil {
		return nil, err
	}
	cover, err := loadStack(cfg.CoverDir)
	if err != nil {
		return nil, err
	}

	out, err := Compute(ctx, temp, cover, cfg.Params, cfg.Workers)
	if err != nil {
		return nil, err
	}
	for s, n := range out.Counts() {
		logrus.WithField("status", s).Infof("%d pixels", n)
	}

	if err := rasters.WriteFloat32(cfg.Output, out.Profile, out.Values); err != nil {
		return nil, err
	}
	if cfg.WriteStatus {
		if err := rasters.WriteByte(StatusPath(cfg.Output), out.Profile, out.StatusBytes()); err != nil {
			return nil, err
		}
	}
	return out, nil
}
