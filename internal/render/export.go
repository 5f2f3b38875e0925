package render

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
	"github.com/xuri/excelize/v2"
)

// Format is a table download format.
type Format string

const (
	CSV     Format = "csv"
	XLSX    Format = "xlsx"
	Parquet Format = "parquet"
)

// Formats lists the supported download formats.
var Formats = []Format{CSV, XLSX, Parquet}

var ErrUnknownFormat = errors.New("unknown table format")

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case Parquet:
		return "application/vnd.apache.parquet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Export writes t to w in format f.
func Export(w io.Writer, t *Table, f Format) error {
	switch f {
	case CSV:
		return writeCSV(w, t)
	case XLSX:
		return writeXLSX(w, t)
	case Parquet:
		return writeParquet(w, t)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

func writeCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("csv %s: %w", t.ID, err)
	}
	return nil
}

func sheetName(t *Table) string {
	name := t.ID
	if name == "" {
		name = "Sheet1"
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

func writeXLSX(w io.Writer, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(t)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("xlsx %s: %w", t.ID, err)
	}
	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx %s: %w", t.ID, err)
	}
	for i, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				cells[j] = n
			} else {
				cells[j] = v
			}
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx %s: %w", t.ID, err)
		}
		if err := f.SetSheetRow(sheet, addr, &cells); err != nil {
			return fmt.Errorf("xlsx %s: %w", t.ID, err)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx %s: %w", t.ID, err)
	}
	return nil
}

// cell is one table value in long format.
type cell struct {
	Table  string `parquet:"name=table,type=BYTE_ARRAY,convertedtype=UTF8"`
	Row    int32  `parquet:"name=row,type=INT32"`
	Column string `parquet:"name=column,type=BYTE_ARRAY,convertedtype=UTF8"`
	Value  string `parquet:"name=value,type=BYTE_ARRAY,convertedtype=UTF8"`
}

// writeParquet stores the table in long format, one record per cell, so that
// every table shares a single schema.
func writeParquet(w io.Writer, t *Table) (err error) {
	buf := new(bytes.Buffer)
	pw, err := writer.NewParquetWriterFromWriter(buf, new(cell), 1)
	if err != nil {
		return fmt.Errorf("parquet %s: %w", t.ID, err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for i, row := range t.Rows {
		for j, v := range row {
			name := ""
			if j < len(t.Columns) {
				name = t.Columns[j]
			}
			if err := pw.Write(cell{Table: t.ID, Row: int32(i), Column: name, Value: v}); err != nil {
				return fmt.Errorf("parquet %s: %w", t.ID, err)
			}
		}
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parquet %s: writer panicked: %v", t.ID, r)
		}
	}()
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("parquet %s: %w", t.ID, err)
	}
	_, err = buf.WriteTo(w)
	return err
}
