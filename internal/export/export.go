// Package export renders ledger records as an Excel workbook.
package export

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/xuri/excelize/v2"

	"github.com/edgard/paybot/internal/currency"
	"github.com/edgard/paybot/internal/ledger"
)

// SheetName is the worksheet holding the payment rows.
const SheetName = "Payments"

// Header is the fixed column order.
var Header = []string{"Date", "Reporter", "Source Text", "USD Amount", "KHR Amount", "Created At"}

const (
	createdAtLayout = "2006-01-02 15:04:05"
	usdPlaces       = 2
)

// Option customizes Render.
type Option func(*options)

type options struct {
	loc *time.Location
}

// WithLocation sets the timezone the Created At column is shown in.
// Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// Render builds an .xlsx workbook with one row per record after a header
// row. An empty input yields a header-only workbook. periodLabel is stored
// in the workbook properties.
func Render(records []ledger.PaymentRecord, periodLabel string, opts ...Option) ([]byte, error) {
	o := options{loc: time.UTC}
	for _, opt := range opts {
		opt(&o)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       "Payments - " + periodLabel,
		Subject:     periodLabel,
		Creator:     "paybot",
		Description: fmt.Sprintf("%d payment records", len(records)),
	}); err != nil {
		return nil, fmt.Errorf("failed to set document properties: %w", err)
	}

	if err := writeHeader(f); err != nil {
		return nil, err
	}

	for i, rec := range records {
		if err := writeRecord(f, i+2, rec, o.loc); err != nil {
			return nil, fmt.Errorf("failed to write payment %s: %w", rec.ID, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename returns payments_<period>_<yyyymmdd>.xlsx.
func Filename(period string, date civil.Date) string {
	return fmt.Sprintf("payments_%s_%04d%02d%02d.xlsx", period, date.Year, int(date.Month), date.Day)
}

func writeHeader(f *excelize.File) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	for col, title := range Header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(SheetName, cell, title); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(Header), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	widths := map[string]float64{"A": 12, "B": 18, "C": 48, "D": 14, "E": 16, "F": 20}
	for col, w := range widths {
		if err := f.SetColWidth(SheetName, col, col, w); err != nil {
			return fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}
	return nil
}

func writeRecord(f *excelize.File, row int, rec ledger.PaymentRecord, loc *time.Location) error {
	cell := func(col int) string {
		name, _ := excelize.CoordinatesToCellName(col, row)
		return name
	}

	if err := f.SetCellStr(SheetName, cell(1), rec.CivilDate.String()); err != nil {
		return err
	}
	if err := f.SetCellStr(SheetName, cell(2), rec.ReporterName); err != nil {
		return err
	}
	if err := f.SetCellStr(SheetName, cell(3), rec.SourceText); err != nil {
		return err
	}
	if err := f.SetCellFloat(SheetName, cell(4), rec.AmountUSD.InexactFloat64(), usdPlaces, 64); err != nil {
		return err
	}
	places := int(currency.Places(rec.AmountKHR))
	if err := f.SetCellFloat(SheetName, cell(5), rec.AmountKHR.InexactFloat64(), places, 64); err != nil {
		return err
	}
	return f.SetCellStr(SheetName, cell(6), rec.CreatedAt.In(loc).Format(createdAtLayout))
}
