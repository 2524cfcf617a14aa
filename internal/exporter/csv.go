package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"

	"dashcsv/internal/config"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options configures CSV writing behavior
type Options struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
	UseCRLF   bool // Terminate lines with \r\n
}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths *config.Paths
	opts  Options
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths, opts Options) *CSVWriter {
	return &CSVWriter{paths: paths, opts: opts}
}

// RowFunc produces positional records by calling emit once per row
type RowFunc func(emit func(record []string) error) error

// MapRowFunc produces rows keyed by header name
type MapRowFunc func(emit func(row map[string]string) error) error

// WriteRows writes the header and every record produced by rows. Each
// record must have exactly one field per header. The file is closed on
// every path; a failed write leaves the partial file on disk.
func (w *CSVWriter) WriteRows(ctx context.Context, filePath string, headers []string, rows RowFunc) (n int, err error) {
	stream, err := w.CreateStreamWriter(filePath, headers)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := stream.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", stream.Path(), cerr)
		}
		if err == nil {
			slog.InfoContext(ctx, "CSV file written",
				slog.String("full_path", stream.Path()),
				slog.Int("record_count", stream.Rows()),
				slog.String("size", humanize.Bytes(uint64(stream.Bytes()))))
		}
	}()

	err = rows(func(record []string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(record) != len(headers) {
			return fmt.Errorf("record %d has %d fields, expected %d", stream.Rows()+1, len(record), len(headers))
		}
		return stream.WriteRecord(record)
	})
	return stream.Rows(), err
}

// WriteMaps writes rows keyed by header name. A row missing a header, or
// carrying a key that is not a header, is an error.
func (w *CSVWriter) WriteMaps(ctx context.Context, filePath string, headers []string, rows MapRowFunc) (int, error) {
	known := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		known[h] = struct{}{}
	}

	return w.WriteRows(ctx, filePath, headers, func(emit func([]string) error) error {
		n := 0
		return rows(func(row map[string]string) error {
			n++
			record := make([]string, len(headers))
			for i, h := range headers {
				v, ok := row[h]
				if !ok {
					return fmt.Errorf("row %d: missing column %q", n, h)
				}
				record[i] = v
			}
			if len(row) > len(headers) {
				return fmt.Errorf("row %d: unexpected column %q", n, firstUnknown(row, known))
			}
			return emit(record)
		})
	})
}

func firstUnknown(row map[string]string, known map[string]struct{}) string {
	var extra []string
	for k := range row {
		if _, ok := known[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	if len(extra) == 0 {
		return ""
	}
	return extra[0]
}

// countingWriter counts the bytes written through it
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// StreamWriter provides streaming CSV writing for large datasets
type StreamWriter struct {
	path    string
	file    *os.File
	counter *countingWriter
	writer  *csv.Writer
	rows    int
	closed  bool
}

// CreateStreamWriter creates the file, writes the optional BOM and the
// header row
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string) (*StreamWriter, error) {
	fullPath := w.resolvePath(filePath)

	slog.Debug("Creating CSV stream writer",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("header_count", len(headers)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	counter := &countingWriter{w: file}

	if w.opts.BOMPrefix {
		if _, err := counter.Write(utf8BOM); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(counter)
	writer.UseCRLF = w.opts.UseCRLF

	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return &StreamWriter{
		path:    fullPath,
		file:    file,
		counter: counter,
		writer:  writer,
	}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	if err := s.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record %d: %w", s.rows+1, err)
	}
	s.rows++
	return nil
}

// Rows returns the number of data records written
func (s *StreamWriter) Rows() int {
	return s.rows
}

// Bytes returns the number of bytes flushed to the file so far
func (s *StreamWriter) Bytes() int64 {
	return s.counter.n
}

// Path returns the full path of the file
func (s *StreamWriter) Path() string {
	return s.path
}

// Close flushes and closes the stream writer. Closing twice is a no-op.
func (s *StreamWriter) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// resolvePath places relative paths in the output directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	return w.paths.GetReportPath(filePath)
}
