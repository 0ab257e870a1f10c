package celltools

import (
	"strconv"
	"strings"

	"github.com/golang/geo/s2"
)

// cellToWKT renders a cell as a closed lng/lat polygon ring.
func cellToWKT(cell s2.Cell) string {
	var b strings.Builder
	b.WriteString("POLYGON((")
	for k := 0; k <= 4; k++ {
		if k > 0 {
			b.WriteString(", ")
		}
		ll := s2.LatLngFromPoint(cell.Vertex(k % 4))
		b.WriteString(strconv.FormatFloat(ll.Lng.Degrees(), 'g', -1, 64))
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(ll.Lat.Degrees(), 'g', -1, 64))
	}
	b.WriteString("))")
	return b.String()
}
