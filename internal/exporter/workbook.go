package exporter

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/xuri/excelize/v2"

	"dashcsv/internal/config"
)

// WorkbookExporter copies written reports into one XLSX workbook, one sheet
// per report named by its id
type WorkbookExporter struct {
	paths *config.Paths
}

// NewWorkbookExporter creates a workbook exporter writing to the output
// directory
func NewWorkbookExporter(paths *config.Paths) *WorkbookExporter {
	return &WorkbookExporter{paths: paths}
}

// Export builds the workbook from the CSV files of reports and returns its
// path. Every report must have been written already.
func (e *WorkbookExporter) Export(ctx context.Context, reports []Report) (string, error) {
	if len(reports) == 0 {
		return "", fmt.Errorf("no reports to add to workbook")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, r := range reports {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		sheet := r.ID()
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return "", fmt.Errorf("failed to name sheet %s: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return "", fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}

		rows, err := e.copySheet(f, sheet, e.paths.GetReportPath(r.FileName()))
		if err != nil {
			return "", err
		}
		slog.DebugContext(ctx, "Added workbook sheet",
			slog.String("sheet", sheet),
			slog.Int("rows", rows))
	}
	f.SetActiveSheet(0)

	path := e.paths.WorkbookPath()
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	slog.InfoContext(ctx, "Workbook written",
		slog.String("path", path),
		slog.Int("sheets", len(reports)))
	return path, nil
}

// copySheet streams one CSV file into sheet. Cells are kept as text.
func (e *WorkbookExporter) copySheet(f *excelize.File, sheet, csvPath string) (int, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", csvPath, err)
	}
	defer file.Close()

	reader := csv.NewReader(skipBOM(file))
	reader.FieldsPerRecord = -1

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return 0, fmt.Errorf("failed to create stream writer for %s: %w", sheet, err)
	}

	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return row, fmt.Errorf("failed to read %s: %w", csvPath, err)
		}
		row++

		values := make([]interface{}, len(record))
		for i, v := range record {
			values[i] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return row, err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return row, fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return row, fmt.Errorf("failed to flush sheet %s: %w", sheet, err)
	}
	return row, nil
}

// skipBOM drops a leading UTF-8 byte order mark
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}
