// Package export renders batch recognition results as XLSX workbooks
// for hand-off to bookkeeping tools.
package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/receipt-recognizer/internal/fields"
	"github.com/joseph-ayodele/receipt-recognizer/internal/pipeline"
)

// Row statuses written to the workbook.
const (
	StatusOK      = "ok"
	StatusInvalid = "invalid"
	StatusFailed  = "failed"
)

const notesLimit = 140

// Service produces XLSX bytes from processed results. Failed runs still
// get a row so a batch report accounts for every input file.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ReceiptsXLSX returns an XLSX workbook (as bytes) with one row per result.
// Records that fail the output schema keep their row; the violation lands
// in the notes column.
func (s *Service) ReceiptsXLSX(results []pipeline.Result) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Receipts"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Transaction Date",
		"Store",
		"Invoice",
		"Amount",
		"Currency",
		"Payment Method",
		"Confidence",
		"Status",
		"Notes",
		"Source File",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	failures := 0
	row := 2
	for _, res := range results {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		if !res.Success || res.Record == nil {
			failures++
			write(8, StatusFailed)
			write(9, truncate(res.Error, notesLimit))
			write(10, res.Source)
			row++
			continue
		}

		rec := res.Record
		var notes []string
		if res.Validation != nil {
			// Validation already ran the schema layer; its report is
			// the single source of notes.
			notes = append(notes, res.Validation.Errors...)
			notes = append(notes, res.Validation.Warnings...)
		} else if err := fields.CheckRecordSchema(*rec); err != nil {
			notes = append(notes, fmt.Sprintf("schema: %v", err))
		}

		status := StatusOK
		if res.Validation != nil && !res.Validation.IsValid {
			status = StatusInvalid
		}

		if !rec.Date.IsZero() {
			write(1, rec.Date.Format("2006-01-02"))
		} else {
			write(1, "")
		}
		write(2, rec.StoreName)
		write(3, rec.InvoiceNumber)
		write(4, rec.Amount)
		write(5, rec.Currency)
		write(6, string(rec.PaymentMethod))
		write(7, res.Confidence)
		write(8, status)
		write(9, truncate(strings.Join(notes, "; "), notesLimit))
		write(10, res.Source)

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 14) // date
	_ = f.SetColWidth(sheet, "B", "B", 28) // store
	_ = f.SetColWidth(sheet, "C", "C", 16) // invoice
	_ = f.SetColWidth(sheet, "D", "E", 12) // amount, currency
	_ = f.SetColWidth(sheet, "F", "H", 14) // payment, confidence, status
	_ = f.SetColWidth(sheet, "I", "I", 48) // notes
	_ = f.SetColWidth(sheet, "J", "J", 60) // path

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(results),
		"failed", failures,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
