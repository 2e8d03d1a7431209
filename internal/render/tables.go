package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"epireport/domain/table"
)

// threeLineSrc renders a statistical table in the three-line style
// used by epidemiology publications: a heavy rule above and below the
// header and a heavy closing rule, nothing vertical.
const threeLineSrc = `<style>
    .three-line-table { border-collapse: collapse; width: 100%; margin: 20px 0; font-family: 'Times New Roman', 'SimSun', serif; font-size: 14px; text-align: center; }
    .three-line-table thead th { border-top: 2px solid #000; border-bottom: 1px solid #000; padding: 8px; font-weight: bold; }
    .three-line-table tbody td { padding: 6px; border: none; }
    .three-line-table tbody tr:last-child td { border-bottom: 2px solid #000; }
    .caption { font-weight: bold; margin-bottom: 5px; text-align: center; }
</style>
{{if .Title}}<div class="caption">{{.Title}}</div>
{{end}}<table class="three-line-table">
    <thead><tr>{{range .Table.Headers}}<th>{{.}}</th>{{end}}</tr></thead>
    <tbody>{{range .Table.Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}</tbody>
</table>
`

var threeLineTmpl = template.Must(template.New("threeline").Parse(threeLineSrc))

// ThreeLineTable writes a captioned three-line HTML table. Cells are
// escaped by the template engine so upload content cannot inject
// markup.
func ThreeLineTable(w io.Writer, title string, t *table.Table) error {
	if t == nil {
		return fmt.Errorf("no table to render")
	}
	data := struct {
		Title string
		Table *table.Table
	}{Title: title, Table: t}
	if err := threeLineTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render table %s: %w", t.Name, err)
	}
	return nil
}

// ThreeLineTableHTML renders to a template-safe fragment for embedding
// in page templates
func ThreeLineTableHTML(title string, t *table.Table) (template.HTML, error) {
	var buf bytes.Buffer
	if err := ThreeLineTable(&buf, title, t); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
