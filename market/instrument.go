package market

import (
	"fmt"
	"strings"
)

// Code is a market-qualified instrument identifier, e.g. "HK.00700" or
// "US.AAPL". It is immutable and used as a map key throughout the engines.
type Code string

// Market returns the market prefix of the code ("HK", "US", "SH", "SZ").
func (c Code) Market() Market {
	s := string(c)
	if i := strings.IndexByte(s, '.'); i > 0 {
		return Market(s[:i])
	}
	return ""
}

// Symbol returns the exchange-local part of the code.
func (c Code) Symbol() string {
	s := string(c)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return s
}

func (c Code) Valid() bool {
	return c.Market() != "" && c.Symbol() != ""
}

// Market identifies an exchange or market segment.
type Market string

const (
	HK Market = "HK"
	US Market = "US"
	SH Market = "SH"
	SZ Market = "SZ"
)

// CN groups the mainland markets for screening; it expands to SH+SZ.
const CN Market = "CN"

// ParseMarket validates a market code from the CLI or config.
func ParseMarket(s string) (Market, error) {
	switch m := Market(strings.ToUpper(strings.TrimSpace(s))); m {
	case HK, US, SH, SZ, CN:
		return m, nil
	default:
		return "", fmt.Errorf("unknown market %q", s)
	}
}

// Expand resolves market groups to concrete markets.
func (m Market) Expand() []Market {
	if m == CN {
		return []Market{SH, SZ}
	}
	return []Market{m}
}

// SecurityType narrows metadata queries to one instrument class.
type SecurityType string

const (
	Stock   SecurityType = "STOCK"
	ETF     SecurityType = "ETF"
	Warrant SecurityType = "WARRANT"
	Index   SecurityType = "IDX"
)

// Instrument is the reference record for one tradable security.
type Instrument struct {
	Code     Code
	Name     string
	LotSize  int
	Market   Market
	Type     SecurityType
	ListDate string
}

// Plate is a sector / industry grouping published by the exchange.
type Plate struct {
	Code   string
	Name   string
	Market Market
}

// Detail is the enriched per-instrument record used in screening reports.
type Detail struct {
	Code       Code
	Name       string
	Price      float64
	ChangeRate float64
	Volume     float64
}
