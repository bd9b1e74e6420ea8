package journal

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// WriteTradesCSV streams a run's fills as CSV, header first.
func WriteTradesCSV(w io.Writer, trades []Trade) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"run_id", "seq", "side", "qty", "price", "time", "commission", "realized"}); err != nil {
		return err
	}
	for _, t := range trades {
		rec := []string{
			t.RunID,
			strconv.Itoa(t.Seq),
			t.Side,
			f(t.Quantity),
			f(t.Price),
			t.Time.Format(time.RFC3339),
			f(t.Commission),
			f(t.Realized),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
