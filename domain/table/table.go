package table

import (
	"strings"

	"github.com/paulmach/orb/geojson"
)

// Role is the semantic slot a classified table fills
type Role string

const (
	RoleSummary    Role = "summary"
	RoleTime       Role = "time"
	RoleAge        Role = "age"
	RolePopulation Role = "population"
	RoleArea       Role = "area"
	RoleGeometry   Role = "geometry"
)

// Table is a parsed tabular file: ordered headers and rows of string cells.
// Rows are padded to header width on construction so cell access never
// depends on how ragged the source file was.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// New builds a table, trimming header whitespace and padding short rows
func New(name string, headers []string, rows [][]string) *Table {
	trimmed := make([]string, len(headers))
	for i, h := range headers {
		trimmed[i] = strings.TrimSpace(h)
	}
	padded := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) >= len(trimmed) {
			padded[i] = row[:len(trimmed)]
			continue
		}
		p := make([]string, len(trimmed))
		copy(p, row)
		padded[i] = p
	}
	return &Table{Name: name, Headers: trimmed, Rows: padded}
}

// RowCount returns the number of data rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColumnCount returns the number of columns
func (t *Table) ColumnCount() int {
	return len(t.Headers)
}

// Cell returns the cell at (row, col), or "" when out of range
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Column returns a copy of column i's cells
func (t *Table) Column(i int) []string {
	if i < 0 || i >= len(t.Headers) {
		return nil
	}
	cells := make([]string, len(t.Rows))
	for r := range t.Rows {
		cells[r] = t.Cell(r, i)
	}
	return cells
}

// HeaderBlob concatenates all headers into one probe string. Routing
// substring checks run against this blob, so a token may span two
// adjacent headers; that matches the upstream export conventions.
func (t *Table) HeaderBlob() string {
	return strings.Join(t.Headers, "")
}

// HeaderContaining returns the index of the first header containing
// substr, or -1 when no header matches
func (t *Table) HeaderContaining(substr string) int {
	for i, h := range t.Headers {
		if strings.Contains(h, substr) {
			return i
		}
	}
	return -1
}

// Clone deep-copies the table
func (t *Table) Clone() *Table {
	headers := make([]string, len(t.Headers))
	copy(headers, t.Headers)
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]string, len(row))
		copy(r, row)
		rows[i] = r
	}
	return &Table{Name: t.Name, Headers: headers, Rows: rows}
}

// DataMap is the per-session assembly of classified inputs: at most one
// table per role plus at most one boundary geometry. Later files of the
// same role overwrite earlier ones. The orchestrator owns the map for
// the session's lifetime; consumers treat it as read-only.
type DataMap struct {
	Summary    *Table
	Time       *Table
	Age        *Table
	Population *Table
	Area       *Table
	Geometry   *geojson.FeatureCollection
}

// Store places a table into its role slot, replacing any earlier table
func (m *DataMap) Store(role Role, t *Table) {
	switch role {
	case RoleSummary:
		m.Summary = t
	case RoleTime:
		m.Time = t
	case RoleAge:
		m.Age = t
	case RolePopulation:
		m.Population = t
	case RoleArea:
		m.Area = t
	}
}

// Get returns the table stored for a role, or nil
func (m *DataMap) Get(role Role) *Table {
	switch role {
	case RoleSummary:
		return m.Summary
	case RoleTime:
		return m.Time
	case RoleAge:
		return m.Age
	case RolePopulation:
		return m.Population
	case RoleArea:
		return m.Area
	default:
		return nil
	}
}

// StoreGeometry places the boundary collection, replacing any earlier one
func (m *DataMap) StoreGeometry(fc *geojson.FeatureCollection) {
	m.Geometry = fc
}
