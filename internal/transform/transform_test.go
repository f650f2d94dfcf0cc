package transform

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banketl/banketl/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func amt(s string) model.Amount {
	return model.NewAmount(dec(s))
}

func exampleRates() model.RateTable {
	return model.RateTable{
		"GBP": dec("0.8"),
		"EUR": dec("0.93"),
		"INR": dec("82.0"),
		"EGP": dec("30.0"),
	}
}

func TestTransform_Example(t *testing.T) {
	records := []model.Record{
		{Name: "Bank A", MarketCapUSD: model.ParseAmount("100.00")},
		{Name: "Bank B", MarketCapUSD: model.ParseAmount("not available")},
	}

	got, err := Transform(records, exampleRates())
	require.NoError(t, err)
	require.Len(t, got, 2)

	a := got[0]
	assert.Equal(t, "Bank A", a.Name)
	assert.True(t, a.MarketCapUSD.Equal(amt("100.0")))
	assert.True(t, a.MarketCapGBP.Equal(amt("80.0")), "GBP: %s", a.MarketCapGBP)
	assert.True(t, a.MarketCapEUR.Equal(amt("93.0")), "EUR: %s", a.MarketCapEUR)
	assert.True(t, a.MarketCapINR.Equal(amt("8200.0")), "INR: %s", a.MarketCapINR)
	assert.True(t, a.MarketCapEGP.Equal(amt("3000.0")), "EGP: %s", a.MarketCapEGP)

	b := got[1]
	assert.Equal(t, "Bank B", b.Name)
	for i, v := range b.Amounts() {
		assert.True(t, v.IsMissing(), "field %d should be missing", i)
	}
}

func TestTransform_Rounding(t *testing.T) {
	rates := exampleRates()
	rates["GBP"] = dec("0.8219")

	records := []model.Record{
		{Name: "A", MarketCapUSD: amt("432.92")}, // 355.8169... -> 355.82
		{Name: "B", MarketCapUSD: amt("10.25")},  // 8.424475 -> 8.42
		{Name: "C", MarketCapUSD: amt("50")},     // 41.095 -> 41.10 (half away from zero)
	}
	got, err := Transform(records, rates)
	require.NoError(t, err)

	want := []string{"355.82", "8.42", "41.1"}
	for i, w := range want {
		assert.Equal(t, w, got[i].MarketCapGBP.String(), "record %d", i)
	}
}

func TestTransform_PreservesOrderAndCardinality(t *testing.T) {
	var records []model.Record
	for _, n := range []string{"E", "D", "C", "B", "A"} {
		records = append(records, model.Record{Name: n, MarketCapUSD: amt("1")})
	}
	records[2].MarketCapUSD = model.Missing()

	got, err := Transform(records, exampleRates())
	require.NoError(t, err)
	require.Len(t, got, len(records))
	for i := range records {
		assert.Equal(t, records[i].Name, got[i].Name)
	}
	assert.True(t, got[2].MarketCapEUR.IsMissing())
	assert.False(t, got[3].MarketCapEUR.IsMissing(), "missing value must not leak to neighbours")
}

func TestTransform_DoesNotMutateInput(t *testing.T) {
	records := []model.Record{{Name: "A", MarketCapUSD: amt("1.5")}}
	_, err := Transform(records, exampleRates())
	require.NoError(t, err)
	assert.Equal(t, "1.5", records[0].MarketCapUSD.String())
}

func TestTransform_Idempotent(t *testing.T) {
	records := []model.Record{{Name: "A", MarketCapUSD: amt("123.456")}}
	first, err := Transform(records, exampleRates())
	require.NoError(t, err)

	again, err := Transform([]model.Record{first[0].Record}, exampleRates())
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestTransform_MissingCurrency(t *testing.T) {
	rates := exampleRates()
	delete(rates, "EGP")

	_, err := Transform([]model.Record{{Name: "A", MarketCapUSD: amt("1")}}, rates)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrMissingCurrency)
	assert.Contains(t, err.Error(), "EGP")
}

func TestTransform_Empty(t *testing.T) {
	got, err := Transform(nil, exampleRates())
	require.NoError(t, err)
	assert.Empty(t, got)
}
