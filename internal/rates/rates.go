package rates

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/banketl/banketl/internal/model"
)

// Header is the expected header of an exchange rate file.
const Header = "Currency,Rate"

const (
	numFields   = 2
	colCurrency = 0
	colRate     = 1
	codeLen     = 3
)

// Load reads an exchange rate CSV from disk.
func Load(path string) (model.RateTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening exchange rates: %w", err)
	}
	defer f.Close()

	table, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return table, nil
}

// Read parses "Currency,Rate" rows into a RateTable. Codes are upper-cased.
func Read(r io.Reader) (model.RateTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading exchange rate CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty exchange rate file")
	}
	if err := checkHeader(records[0]); err != nil {
		return nil, err
	}

	table := make(model.RateTable, len(records)-1)
	for i, rec := range records[1:] {
		code, rate, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if _, dup := table[code]; dup {
			return nil, fmt.Errorf("row %d: duplicate currency %s", i+2, code)
		}
		table[code] = rate
	}
	return table, nil
}

// Write serializes a RateTable with codes in the given order.
func Write(w io.Writer, table model.RateTable, codes []string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, code := range codes {
		rate, ok := table.Rate(code)
		if !ok {
			return fmt.Errorf("%w: %s", model.ErrMissingCurrency, code)
		}
		if err := cw.Write([]string{strings.ToUpper(code), rate.String()}); err != nil {
			return fmt.Errorf("writing %s: %w", code, err)
		}
	}
	return cw.Error()
}

func checkHeader(rec []string) error {
	want := strings.Split(Header, ",")
	for i := range want {
		if !strings.EqualFold(strings.TrimSpace(rec[i]), want[i]) {
			return fmt.Errorf("unexpected header %q, want %q", strings.Join(rec, ","), Header)
		}
	}
	return nil
}

func parseRow(rec []string) (string, decimal.Decimal, error) {
	code := strings.ToUpper(strings.TrimSpace(rec[colCurrency]))
	if len(code) != codeLen {
		return "", decimal.Decimal{}, fmt.Errorf("invalid currency code %q", rec[colCurrency])
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return "", decimal.Decimal{}, fmt.Errorf("invalid currency code %q", rec[colCurrency])
		}
	}

	rate, err := decimal.NewFromString(strings.TrimSpace(rec[colRate]))
	if err != nil {
		return "", decimal.Decimal{}, fmt.Errorf("parsing rate %q: %w", rec[colRate], err)
	}
	if !rate.IsPositive() {
		return "", decimal.Decimal{}, fmt.Errorf("rate for %s must be positive, got %s", code, rate)
	}
	return code, rate, nil
}
