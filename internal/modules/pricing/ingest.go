package pricing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// IngestReport summarises one bulk price-sheet run. Malformed rows are
// skipped and counted; only an unreadable file aborts the batch.
type IngestReport struct {
	Processed int      `json:"processed"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors,omitempty"`
}

// Ingestor loads partner price sheets (CSV: sku, price_b2b, price_b2c,
// optional stock_quantity) into the override store.
type Ingestor struct {
	repo   Repository
	logger *zap.Logger
}

func NewIngestor(repo Repository, logger *zap.Logger) *Ingestor {
	return &Ingestor{repo: repo, logger: logger}
}

// Ingest upserts every well-formed row by SKU. A header row (first cell
// not parseable as data with a non-numeric price) is tolerated.
func (in *Ingestor) Ingest(ctx context.Context, r io.Reader) (*IngestReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	report := &IngestReport{}
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return report, fmt.Errorf("reading price sheet: %w", err)
		}
		line++

		o, rowErr := parseRow(record)
		if rowErr != nil {
			if line == 1 && looksLikeHeader(record) {
				continue
			}
			report.Skipped++
			report.Errors = append(report.Errors, fmt.Sprintf("row %d: %v", line, rowErr))
			continue
		}

		if err := in.repo.Upsert(ctx, o); err != nil {
			report.Skipped++
			report.Errors = append(report.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		report.Processed++
	}

	in.logger.Info("price sheet ingested",
		zap.Int("processed", report.Processed),
		zap.Int("skipped", report.Skipped))
	return report, nil
}

func parseRow(record []string) (*PriceOverride, error) {
	if len(record) < 3 {
		return nil, fmt.Errorf("expected at least 3 columns, got %d", len(record))
	}
	sku := strings.TrimSpace(record[0])
	if sku == "" {
		return nil, fmt.Errorf("missing sku")
	}

	o := &PriceOverride{SKU: sku}

	b2b, err := parsePrice(record[1])
	if err != nil {
		return nil, fmt.Errorf("price_b2b: %w", err)
	}
	o.PriceB2B = b2b

	b2c, err := parsePrice(record[2])
	if err != nil {
		return nil, fmt.Errorf("price_b2c: %w", err)
	}
	o.PriceB2C = b2c

	if len(record) > 3 && strings.TrimSpace(record[3]) != "" {
		qty, err := strconv.Atoi(strings.TrimSpace(record[3]))
		if err != nil || qty < 0 {
			return nil, fmt.Errorf("stock_quantity: invalid value %q", record[3])
		}
		o.StockQuantity = &qty
	}
	return o, nil
}

// parsePrice accepts an empty cell (tier has no list price) or a
// non-negative decimal.
func parsePrice(cell string) (*float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", "."), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", cell)
	}
	if v < 0 {
		return nil, fmt.Errorf("negative price %q", cell)
	}
	v = round2(v)
	return &v, nil
}

func looksLikeHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(record[0]))
	return first == "sku" || first == "referencia" || first == "ref"
}
