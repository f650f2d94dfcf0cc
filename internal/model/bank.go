package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Column names shared by the file sink header and the relational table.
const (
	ColName   = "Name"
	ColMCUSD  = "MC_USD_Billion"
	ColMCGBP  = "MC_GBP_Billion"
	ColMCEUR  = "MC_EUR_Billion"
	ColMCINR  = "MC_INR_Billion"
	ColMCEGP  = "MC_EGP_Billion"
	precision = 2
)

// RawColumns are the columns produced by extraction, in record order.
var RawColumns = []string{ColName, ColMCUSD}

// EnrichedColumns are the columns of an EnrichedRecord, in record order.
var EnrichedColumns = []string{ColName, ColMCUSD, ColMCGBP, ColMCEUR, ColMCINR, ColMCEGP}

// Amount is a value in billions that may be missing.
// The zero Amount is missing.
type Amount struct {
	decimal.NullDecimal
}

// Missing returns the missing Amount.
func Missing() Amount {
	return Amount{}
}

// NewAmount wraps a known value.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{decimal.NullDecimal{Decimal: d, Valid: true}}
}

// ParseAmount parses trimmed cell text. Anything that is not a plain
// decimal number yields a missing Amount, never an error.
func ParseAmount(s string) Amount {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Missing()
	}
	return NewAmount(d)
}

// IsMissing reports whether the value could not be parsed.
func (a Amount) IsMissing() bool {
	return !a.Valid
}

// Convert multiplies by rate and rounds to two places, half away from zero.
// Missing in, missing out.
func (a Amount) Convert(rate decimal.Decimal) Amount {
	if a.IsMissing() {
		return Missing()
	}
	return NewAmount(a.Decimal.Mul(rate).Round(precision))
}

// String returns the decimal text, or "" when missing.
func (a Amount) String() string {
	if a.IsMissing() {
		return ""
	}
	return a.Decimal.String()
}

// Float returns the value as float64 for storage in a REAL column, or nil
// when missing.
func (a Amount) Float() any {
	if a.IsMissing() {
		return nil
	}
	return a.Decimal.InexactFloat64()
}

// Equal reports whether both are missing or both hold equal values.
func (a Amount) Equal(b Amount) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Decimal.Equal(b.Decimal)
}

// Record is one qualifying row of the source table.
type Record struct {
	Name         string
	MarketCapUSD Amount
}

// EnrichedRecord is a Record plus its converted market caps.
type EnrichedRecord struct {
	Record
	MarketCapGBP Amount
	MarketCapEUR Amount
	MarketCapINR Amount
	MarketCapEGP Amount
}

// Amounts returns the five value fields in column order.
func (r EnrichedRecord) Amounts() []Amount {
	return []Amount{r.MarketCapUSD, r.MarketCapGBP, r.MarketCapEUR, r.MarketCapINR, r.MarketCapEGP}
}
