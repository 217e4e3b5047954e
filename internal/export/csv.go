package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"addition-drill/internal/domain"
)

// Header is the first row of every export.
var Header = []string{"date", "solved", "total", "durationSec", "reason"}

// WriteCSV writes records in the order given, one row each.
func WriteCSV(w io.Writer, records []domain.SessionRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			rec.Date.UTC().Format(time.RFC3339),
			strconv.Itoa(rec.Solved),
			strconv.Itoa(rec.Total),
			strconv.Itoa(rec.DurationSec),
			string(rec.Reason),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
