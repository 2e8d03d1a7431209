package ui

import (
	"bytes"
	"html/template"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"epireport/app"
	"epireport/domain/table"
	"epireport/internal/errors"
	"epireport/internal/ingest"
	"epireport/internal/render"
)

// roleLabels maps stored roles to the display names on the results page.
var roleLabels = map[table.Role]string{
	table.RoleSummary:    "疫情报表",
	table.RoleTime:       "时间分布",
	table.RoleAge:        "年龄性别分布",
	table.RolePopulation: "人群分布",
	table.RoleArea:       "地区分布",
	table.RoleGeometry:   "辖区边界",
}

// ingestRow is one line of the results page's ingestion log.
type ingestRow struct {
	File   string
	Role   string
	Rows   int
	Hash   string
	Status string
	OK     bool
}

// statTableView pairs a caption with rendered three-line table HTML.
type statTableView struct {
	Title string
	HTML  template.HTML
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, "index.html", map[string]interface{}{
		"Title":          "传染病疫情分析",
		"MaxUploadBytes": a.cfg.MaxUploadBytes,
	})
}

func (a *App) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// handleAnalyze runs one full session: parse the upload, classify every
// file, and render the results page. The semaphore queues requests
// beyond the configured concurrency instead of rejecting them.
func (a *App) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := a.analyses.Acquire(ctx, 1); err != nil {
		http.Error(w, "analysis cancelled while queued", http.StatusServiceUnavailable)
		return
	}
	defer a.analyses.Release(1)

	r.Body = http.MaxBytesReader(w, r.Body, a.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(a.cfg.MaxUploadBytes); err != nil {
		appErr := errors.InvalidInput("upload rejected: " + err.Error())
		a.log.WithError(appErr).WithField("code", errors.GetCode(appErr)).Warn("multipart parse failed")
		http.Error(w, "upload too large or malformed", http.StatusRequestEntityTooLarge)
		return
	}

	files, err := uploadedFiles(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session := a.analyzer.NewSession()
	records := session.ProcessFiles(ctx, files)
	a.log.WithFields(logrus.Fields{
		"session": session.ID.String(),
		"files":   len(records),
	}).Info("analysis session processed")

	a.renderTemplate(w, "report.html", a.resultsView(session, records))
}

// handleReportDownload echoes the narrative source back as a file
// download. The page posts the text it already holds; the server keeps
// no session state to look it up from.
func (a *App) handleReportDownload(w http.ResponseWriter, r *http.Request) {
	body := postedField(w, r, "report")
	if body == "" {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="report.md"`)
	io.WriteString(w, body)
}

// handleGeoJSONDownload echoes the joined boundary collection back as
// a GeoJSON download, same contract as the report download.
func (a *App) handleGeoJSONDownload(w http.ResponseWriter, r *http.Request) {
	body := postedField(w, r, "geojson")
	if body == "" {
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Content-Disposition", `attachment; filename="area_cases.geojson"`)
	io.WriteString(w, body)
}

// postedField returns the named form value, writing the error response
// itself when the field is missing or the form is malformed.
func postedField(w http.ResponseWriter, r *http.Request, name string) string {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return ""
	}
	body := r.PostFormValue(name)
	if body == "" {
		http.Error(w, "nothing to download", http.StatusBadRequest)
	}
	return body
}

// uploadedFiles reads the "files" form field in upload order. Order
// matters: a later file of an already-stored role replaces the
// earlier table.
func uploadedFiles(r *http.Request) ([]ingest.File, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		return nil, errors.InvalidInput("no files uploaded")
	}
	files := make([]ingest.File, 0, len(r.MultipartForm.File["files"]))
	for _, fh := range r.MultipartForm.File["files"] {
		f, err := fh.Open()
		if err != nil {
			return nil, errors.ParseFailed(fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, errors.ParseFailed(fh.Filename, err)
		}
		files = append(files, ingest.File{Name: fh.Filename, Data: data})
	}
	return files, nil
}

// resultsView assembles the template data for one finished session.
// Sections whose inputs were never uploaded are simply absent; a
// section that fails to render is logged and dropped so the rest of
// the page still appears.
func (a *App) resultsView(session *app.Session, records []app.IngestRecord) map[string]interface{} {
	rows := make([]ingestRow, 0, len(records))
	for _, rec := range records {
		row := ingestRow{File: rec.File, Hash: rec.Hash.Short(), OK: rec.Accepted()}
		if rec.Accepted() {
			row.Role = roleLabels[rec.Role]
			row.Rows = rec.Rows
			row.Status = "已读入"
		} else {
			row.Status = rec.Err.Error()
		}
		rows = append(rows, row)
	}

	reportMD := session.Report()

	var statTables []statTableView
	for _, st := range session.StatTables() {
		html, err := render.ThreeLineTableHTML(st.Title, st.Table)
		if err != nil {
			a.log.WithError(err).Warn("stat table render failed")
			continue
		}
		statTables = append(statTables, statTableView{Title: st.Title, HTML: html})
	}

	var timeTrend string
	if session.HasTimeTrend() {
		var buf bytes.Buffer
		if err := session.TimeTrend(&buf); err != nil {
			a.log.WithError(err).Warn("time trend render failed")
		} else {
			timeTrend = buf.String()
		}
	}

	data := map[string]interface{}{
		"Title":        "疫情分析结果",
		"SessionID":    session.ID.String(),
		"Records":      rows,
		"ReportHTML":   render.MarkdownHTML(reportMD),
		"ReportSource": reportMD,
		"StatTables":   statTables,
		"TimeTrend":    timeTrend,
	}

	if session.HasChoropleth() {
		result, err := session.Choropleth()
		if err != nil {
			a.log.WithError(err).Warn("choropleth join failed")
		} else if payload, err := result.Collection.MarshalJSON(); err == nil {
			data["Choropleth"] = map[string]interface{}{
				"Matched":   result.Matched,
				"Total":     len(result.Collection.Features),
				"Unmatched": result.Unmatched,
				"GeoJSON":   string(payload),
			}
		}
	}

	return data
}
