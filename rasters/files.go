package rasters

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var ErrYearToken = errors.New("rasters: file name has no year token")

// The year is the leading four digits of the second "_"-separated token of
// the base name, e.g. "tcc_2001.tif" or "temp_1995_v2.tif".
var yearToken = regexp.MustCompile(`^(\d{4})(\D.*)?$`)

// ParseYear extracts the year token from a raster file name.
func ParseYear(path string) (int, error) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	parts := strings.Split(base, "_")
	if len(parts) < 2 {
		return 0, fmt.Errorf("%w: %s", ErrYearToken, path)
	}
	m := yearToken.FindStringSubmatch(parts[1])
	if m == nil {
		return 0, fmt.Errorf("%w: %s (token %q)", ErrYearToken, path, parts[1])
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrYearToken, path, err)
	}
	return year, nil
}

func isTif(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".tif")
}

// ListRasters returns the .tif files directly under dir, sorted by name.
func ListRasters(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !isTif(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// YearFile is a raster path and the year parsed from its name.
type YearFile struct {
	Path string
	Year int
}

// FilterYears parses the year of every path and keeps those within
// [first, last], sorted by year. A path without a valid year token is an
// error.
func FilterYears(paths []string, first, last int) ([]YearFile, error) {
	var out []YearFile
	for _, p := range paths {
		year, err := ParseYear(p)
		if err != nil {
			return nil, err
		}
		if year < first || year > last {
			continue
		}
		out = append(out, YearFile{Path: p, Year: year})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}
