package algoseek

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"github.com/xuri/excelize/v2"
)

// OutputFormat selects the file format for SaveResult.
type OutputFormat int

const (
	// OutputFormatCSV writes comma-separated values with a header row.
	OutputFormatCSV OutputFormat = iota
	// OutputFormatTSV writes tab-separated values with a header row.
	OutputFormatTSV
	// OutputFormatXLSX writes an Excel workbook with a single sheet.
	OutputFormatXLSX
)

// String returns the format name.
func (f OutputFormat) String() string {
	switch f {
	case OutputFormatTSV:
		return "tsv"
	case OutputFormatXLSX:
		return "xlsx"
	default:
		return "csv"
	}
}

// Extension returns the file extension for the format.
func (f OutputFormat) Extension() string {
	return "." + f.String()
}

// CompressionType selects the compression applied to text formats.
type CompressionType int

const (
	// CompressionNone writes the file uncompressed.
	CompressionNone CompressionType = iota
	// CompressionGZ applies gzip compression.
	CompressionGZ
	// CompressionXZ applies xz compression.
	CompressionXZ
	// CompressionZSTD applies zstd compression.
	CompressionZSTD
)

// String returns the compression name.
func (c CompressionType) String() string {
	switch c {
	case CompressionGZ:
		return "gz"
	case CompressionXZ:
		return "xz"
	case CompressionZSTD:
		return "zstd"
	default:
		return "none"
	}
}

// Extension returns the file extension for the compression type, or ""
// for no compression.
func (c CompressionType) Extension() string {
	switch c {
	case CompressionGZ:
		return ".gz"
	case CompressionXZ:
		return ".xz"
	case CompressionZSTD:
		return ".zst"
	default:
		return ""
	}
}

// SaveOptions configures SaveResult.
//
// Example:
//
//	options := NewSaveOptions().
//		WithFormat(OutputFormatTSV).
//		WithCompression(CompressionGZ)
//
//	err := SaveResult(result, "./prices.tsv.gz", options)
type SaveOptions struct {
	// Format specifies the output file format
	Format OutputFormat
	// Compression specifies the compression type
	Compression CompressionType
}

// NewSaveOptions creates default export options (CSV, no compression).
func NewSaveOptions() SaveOptions {
	return SaveOptions{Format: OutputFormatCSV, Compression: CompressionNone}
}

// WithFormat returns options with the format changed.
func (o SaveOptions) WithFormat(format OutputFormat) SaveOptions {
	o.Format = format
	return o
}

// WithCompression returns options with the compression changed.
func (o SaveOptions) WithCompression(compression CompressionType) SaveOptions {
	o.Compression = compression
	return o
}

// FileExtension returns the combined extension for the options, such as
// ".csv.gz".
func (o SaveOptions) FileExtension() string {
	return o.Format.Extension() + o.Compression.Extension()
}

// SaveResult writes a fetched result to path. XLSX output is already a
// compressed container, so combining it with a compression type is a
// usage error.
func SaveResult(result *Result, path string, opts SaveOptions) error {
	if result == nil {
		return usageErrorf("nil result")
	}
	if opts.Format == OutputFormatXLSX {
		if opts.Compression != CompressionNone {
			return usageErrorf("XLSX output cannot be combined with %s compression", opts.Compression)
		}
		return saveXLSX(result, path)
	}

	f, err := os.Create(path) //nolint:gosec // destination is caller-chosen
	if err != nil {
		return fmt.Errorf("algoseek: create %s: %w", path, err)
	}
	writer, closeWriter, err := newCompressedWriter(f, opts.Compression)
	if err != nil {
		_ = f.Close()
		return err
	}

	saveErr := writeDelimited(result, writer, opts.Format)
	if err := closeWriter(); err != nil && saveErr == nil {
		saveErr = fmt.Errorf("algoseek: close %s writer: %w", opts.Compression, err)
	}
	if err := f.Close(); err != nil && saveErr == nil {
		saveErr = fmt.Errorf("algoseek: close %s: %w", path, err)
	}
	if saveErr != nil {
		_ = os.Remove(path)
	}
	return saveErr
}

func newCompressedWriter(w io.Writer, compression CompressionType) (io.Writer, func() error, error) {
	switch compression {
	case CompressionNone:
		return w, func() error { return nil }, nil
	case CompressionGZ:
		gw := gzip.NewWriter(w)
		return gw, gw.Close, nil
	case CompressionXZ:
		xw, err := xz.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("algoseek: create xz writer: %w", err)
		}
		return xw, xw.Close, nil
	case CompressionZSTD:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("algoseek: create zstd writer: %w", err)
		}
		return zw, zw.Close, nil
	default:
		return nil, nil, usageErrorf("unsupported compression type %d", compression)
	}
}

func writeDelimited(result *Result, w io.Writer, format OutputFormat) error {
	cw := csv.NewWriter(w)
	if format == OutputFormatTSV {
		cw.Comma = '\t'
	}
	if err := cw.Write(result.Columns()); err != nil {
		return fmt.Errorf("algoseek: write header: %w", err)
	}
	record := make([]string, len(result.Columns()))
	for i := 0; i < result.Len(); i++ {
		for j, v := range result.Row(i) {
			record[j] = formatCellValue(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("algoseek: write row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("algoseek: flush output: %w", err)
	}
	return nil
}

func saveXLSX(result *Result, path string) error {
	wb := excelize.NewFile()
	defer wb.Close() //nolint:errcheck

	const sheet = "Sheet1"
	for j, name := range result.Columns() {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return fmt.Errorf("algoseek: resolve header cell: %w", err)
		}
		if err := wb.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("algoseek: write header cell: %w", err)
		}
	}
	for i := 0; i < result.Len(); i++ {
		for j, v := range result.Row(i) {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return fmt.Errorf("algoseek: resolve cell: %w", err)
			}
			if err := wb.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("algoseek: write cell: %w", err)
			}
		}
	}
	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("algoseek: save %s: %w", path, err)
	}
	return nil
}

// formatCellValue renders a column value for text output. Nil values
// become empty fields.
func formatCellValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(t)
	}
}
