package refdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/suvanzhou/futu-algo/market"
)

// HKEXFile serves the exchange's full equity list from a locally
// downloaded CSV export (columns: code, name, lot_size, sec_type,
// list_date). The download itself happens outside this process; the
// daily sync just re-reads whatever file is current.
type HKEXFile struct {
	Path string
}

func NewHKEXFile(path string) *HKEXFile {
	return &HKEXFile{Path: path}
}

func (h *HKEXFile) FullEquityList(ctx context.Context) ([]market.Instrument, error) {
	f, err := os.Open(h.Path)
	if err != nil {
		return nil, fmt.Errorf("open security list %s: %w", h.Path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read security list %s: %w", h.Path, err)
	}

	var out []market.Instrument
	for i, row := range rows {
		if i == 0 && len(row) > 0 && row[0] == "code" {
			continue
		}
		if len(row) < 4 {
			continue
		}

		code := market.Code(row[0])
		if !code.Valid() {
			continue
		}
		lot, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, fmt.Errorf("security list %s row %d: bad lot size %q", h.Path, i+1, row[2])
		}

		in := market.Instrument{
			Code:    code,
			Name:    row[1],
			LotSize: lot,
			Market:  code.Market(),
			Type:    market.SecurityType(row[3]),
		}
		if len(row) > 4 {
			in.ListDate = row[4]
		}
		out = append(out, in)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("security list %s: no usable rows", h.Path)
	}
	return out, nil
}
