// Package extract pulls bank records out of the "largest banks" HTML table.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/banketl/banketl/internal/model"
)

var (
	// ErrTableNotFound is returned when the document has no table body.
	ErrTableNotFound = errors.New("no table body in document")
	// ErrUnknownColumn is returned when the caller asks for a column
	// extraction does not produce.
	ErrUnknownColumn = errors.New("unknown column")
)

const (
	userAgent = "banketl/1.0 (+https://github.com/banketl/banketl)"

	cellName      = 1
	cellMarketCap = 2
	// The name cell holds a flag icon link followed by the bank's link.
	nameAnchor = 1
)

// Extractor fetches and parses the source document.
type Extractor struct {
	client *http.Client
}

// New returns an Extractor using client, or http.DefaultClient when nil.
func New(client *http.Client) *Extractor {
	if client == nil {
		client = http.DefaultClient
	}
	return &Extractor{client: client}
}

// Extract fetches url and returns the qualifying rows in document order.
// columns must name only raw record columns.
func (e *Extractor) Extract(ctx context.Context, url string, columns []string) ([]model.Record, error) {
	if err := checkColumns(columns); err != nil {
		return nil, err
	}

	body, err := e.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching document: %w", err)
	}
	defer body.Close()

	return Parse(body, columns)
}

// Parse reads an HTML document and returns one record per qualifying row
// of the first table body. A row qualifies when its second cell holds at
// least one link; the name comes from the second link in that cell and the
// market cap from the third cell.
func Parse(r io.Reader, columns []string) ([]model.Record, error) {
	if err := checkColumns(columns); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	tbody := doc.Find("tbody").First()
	if tbody.Length() == 0 {
		return nil, ErrTableNotFound
	}

	records := []model.Record{}
	tbody.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if rec, ok := parseRow(row); ok {
			records = append(records, rec)
		}
	})
	return records, nil
}

func parseRow(row *goquery.Selection) (model.Record, bool) {
	cells := row.Find("td")
	if cells.Length() <= cellName {
		return model.Record{}, false
	}

	anchors := cells.Eq(cellName).Find("a")
	if anchors.Length() <= nameAnchor {
		return model.Record{}, false
	}

	name := normalizeSpace(anchors.Eq(nameAnchor).Text())
	if name == "" {
		return model.Record{}, false
	}

	mcap := model.Missing()
	if cells.Length() > cellMarketCap {
		mcap = model.ParseAmount(cells.Eq(cellMarketCap).Text())
	}

	return model.Record{Name: name, MarketCapUSD: mcap}, true
}

func checkColumns(columns []string) error {
	for _, c := range columns {
		if !slices.Contains(model.RawColumns, c) {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
	}
	return nil
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
