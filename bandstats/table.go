package bandstats

import "sort"

// Row is the band mean for one year.
type Row struct {
	Year  int
	Mean  float64
	Count int
}

// Table holds one band's rows.
type Table struct {
	Band Band
	Rows []Row
}

func (t *Table) Add(year int, s Summary) {
	t.Rows = append(t.Rows, Row{Year: year, Mean: s.Mean, Count: s.Count})
}

// Sort orders rows by year ascending.
func (t *Table) Sort() {
	sort.SliceStable(t.Rows, func(i, j int) bool { return t.Rows[i].Year < t.Rows[j].Year })
}

// Sink persists a finished table. Sinks are called from worker goroutines
// and must be safe for concurrent use on distinct bands.
type Sink func(Table) error
