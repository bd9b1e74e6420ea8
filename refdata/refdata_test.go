package refdata

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suvanzhou/futu-algo/market"
	"github.com/suvanzhou/futu-algo/store"
)

func writeSecurityList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ListOfSecurities.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestHKEXFileFullEquityList(t *testing.T) {
	path := writeSecurityList(t, `code,name,lot_size,sec_type,list_date
HK.00700,TENCENT,100,STOCK,2004-06-16
HK.00001,CKH HOLDINGS,500,STOCK,1972-11-01
HK.02800,TRACKER FUND,500,ETF,1999-11-12
badline
,missing code,100,STOCK
`)

	src := NewHKEXFile(path)
	list, err := src.FullEquityList(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, market.Code("HK.00700"), list[0].Code)
	assert.Equal(t, "TENCENT", list[0].Name)
	assert.Equal(t, 100, list[0].LotSize)
	assert.Equal(t, market.HK, list[0].Market)
	assert.Equal(t, market.Stock, list[0].Type)
	assert.Equal(t, "2004-06-16", list[0].ListDate)
	assert.Equal(t, market.ETF, list[2].Type)
}

func TestHKEXFileBadLotSize(t *testing.T) {
	path := writeSecurityList(t, "HK.00700,TENCENT,abc,STOCK\n")
	_, err := NewHKEXFile(path).FullEquityList(context.Background())
	assert.Error(t, err)
}

func TestHKEXFileMissing(t *testing.T) {
	_, err := NewHKEXFile("/no/such/file.csv").FullEquityList(context.Background())
	assert.Error(t, err)
}

func TestStoreQuoter(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	require.NoError(t, s.ReplaceInstruments(ctx, []market.Instrument{
		{Code: "HK.00700", Name: "TENCENT", LotSize: 100, Market: market.HK, Type: market.Stock},
	}))

	day := time.Date(2024, 3, 19, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpsertBars(ctx, "HK.00700", market.KDay, []market.Candle{
		{Open: 100, High: 101, Low: 99, Close: 100, Time: day, Volume: 5000},
		{Open: 100, High: 111, Low: 100, Close: 110, Time: day.AddDate(0, 0, 1), Volume: 8000},
	}))

	details, err := NewStoreQuoter(s).Quote(ctx, []market.Code{"HK.00700", "HK.99999"})
	require.NoError(t, err)
	require.Len(t, details, 2)

	assert.Equal(t, "TENCENT", details[0].Name)
	assert.Equal(t, 110.0, details[0].Price)
	assert.Equal(t, 8000.0, details[0].Volume)
	assert.InDelta(t, 10.0, details[0].ChangeRate, 0.001)

	// Unknown instrument still yields a record with just the code.
	assert.Equal(t, market.Code("HK.99999"), details[1].Code)
	assert.Empty(t, details[1].Name)
	assert.Zero(t, details[1].Price)
}
