package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"epireport/domain/core"
	"epireport/domain/table"

	"github.com/paulmach/orb/geojson"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// File is one input held fully in memory, whether it arrived as an
// upload or was read from disk by the CLI.
type File struct {
	Name string
	Data []byte
}

// Ext returns the lower-cased file extension
func (f File) Ext() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

// IsGeometry reports whether the file carries boundary geometry
// rather than tabular data
func (f File) IsGeometry() bool {
	ext := f.Ext()
	return ext == ".json" || ext == ".geojson"
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadTable decodes an .xlsx or .csv payload into a Table. The first
// row becomes the header row; ragged data rows are padded to header
// width by the table constructor.
func ReadTable(f File) (*table.Table, error) {
	switch f.Ext() {
	case ".csv":
		return readCSV(f)
	case ".xlsx", ".xlsm":
		return readWorkbook(f)
	default:
		return nil, fmt.Errorf("unsupported table format %q: %w", f.Ext(), core.ErrUnrecognizedFile)
	}
}

// readWorkbook reads the first sheet of an Excel workbook
func readWorkbook(f File) (*table.Table, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(f.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", f.Name, err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", f.Name)
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s of %s: %w", sheets[0], f.Name, err)
	}
	return tableFromRows(f.Name, rows)
}

// readCSV parses a CSV payload. Exports from the reporting systems are
// UTF-8 (often with a BOM) or GBK; anything that is not valid UTF-8 is
// retried as GBK before parsing.
func readCSV(f File) (*table.Table, error) {
	data := bytes.TrimPrefix(f.Data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s as GBK: %w", f.Name, err)
		}
		data = decoded
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV %s: %w", f.Name, err)
	}
	return tableFromRows(f.Name, records)
}

// ReadGeometry decodes a GeoJSON payload into a feature collection
func ReadGeometry(f File) (*geojson.FeatureCollection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(f.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode geometry %s: %w", f.Name, err)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("geometry %s has no features", f.Name)
	}
	return fc, nil
}

func tableFromRows(name string, rows [][]string) (*table.Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", name, core.ErrEmptyTable)
	}
	return table.New(name, rows[0], rows[1:]), nil
}
