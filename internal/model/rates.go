package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrMissingCurrency is returned when a required currency has no rate.
var ErrMissingCurrency = errors.New("missing required currency")

// Target currencies, in the order their columns appear.
const (
	GBP = "GBP"
	EUR = "EUR"
	INR = "INR"
	EGP = "EGP"
)

// TargetCurrencies lists every currency the enricher converts into.
var TargetCurrencies = []string{GBP, EUR, INR, EGP}

// RateTable maps a 3-letter currency code to its multiplier against USD.
// It is built once per run and never modified afterwards.
type RateTable map[string]decimal.Decimal

// Rate returns the rate for code.
func (t RateTable) Rate(code string) (decimal.Decimal, bool) {
	r, ok := t[strings.ToUpper(code)]
	return r, ok
}

// Require checks that every code has a rate.
func (t RateTable) Require(codes ...string) error {
	var missing []string
	for _, c := range codes {
		if _, ok := t.Rate(c); !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCurrency, strings.Join(missing, ", "))
	}
	return nil
}
