// Package transform derives converted market caps from extracted records.
package transform

import (
	"fmt"

	"github.com/banketl/banketl/internal/model"
)

// Transform returns a new slice holding each record with its GBP, EUR, INR
// and EGP market caps. Every target currency must have a rate; a missing
// USD value only yields missing conversions for that record.
func Transform(records []model.Record, rates model.RateTable) ([]model.EnrichedRecord, error) {
	if err := rates.Require(model.TargetCurrencies...); err != nil {
		return nil, fmt.Errorf("checking rate table: %w", err)
	}

	gbp, _ := rates.Rate(model.GBP)
	eur, _ := rates.Rate(model.EUR)
	inr, _ := rates.Rate(model.INR)
	egp, _ := rates.Rate(model.EGP)

	out := make([]model.EnrichedRecord, 0, len(records))
	for _, r := range records {
		usd := r.MarketCapUSD
		out = append(out, model.EnrichedRecord{
			Record:       model.Record{Name: r.Name, MarketCapUSD: usd},
			MarketCapGBP: usd.Convert(gbp),
			MarketCapEUR: usd.Convert(eur),
			MarketCapINR: usd.Convert(inr),
			MarketCapEGP: usd.Convert(egp),
		})
	}
	return out, nil
}
