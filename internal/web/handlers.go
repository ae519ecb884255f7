package web

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/JonMunkholm/sweeper/internal/core"
	"github.com/JonMunkholm/sweeper/internal/table"
	"github.com/JonMunkholm/sweeper/internal/web/templates"
)

const pageTitle = "Data Sweeper"

// handleDashboard renders every stored file with its cleaning forms.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ws, err := workspaceFrom(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	rows := parseRowsParam(r, s.service.DefaultPreviewRows())
	data := templates.DashboardData{
		Notice:           r.URL.Query().Get("notice"),
		Error:            r.URL.Query().Get("error"),
		PreviewRows:      rows,
		DefaultThreshold: s.service.DefaultThreshold(),
		MaxFileSizeMB:    s.cfg.Upload.MaxFileSize >> 20,
	}
	for _, info := range ws.Files() {
		t, err := ws.Get(info.Name)
		if err != nil {
			continue // removed concurrently
		}
		data.Files = append(data.Files, fileView(info, t, rows))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Layout(pageTitle, templates.Dashboard(data)).Render(r.Context(), w); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
	}
}

// fileView flattens t for the dashboard, previewing its first rows.
func fileView(info core.FileInfo, t *table.Table, rows int) templates.FileView {
	head := t.Head(rows)
	fv := templates.FileView{
		Info:           info,
		Columns:        t.Columns,
		NumericColumns: t.NumericColumns(),
		Preview:        make([][]string, 0, head.NumRows()),
		Missing:        make([]bool, 0, head.NumRows()*head.NumColumns()),
	}
	for _, row := range head.Rows {
		rec := make([]string, len(row))
		for j, c := range row {
			rec[j] = c.String()
			fv.Missing = append(fv.Missing, c.IsMissing())
		}
		fv.Preview = append(fv.Preview, rec)
	}
	return fv
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status   string                   `json:"status"`
	Sessions int                      `json:"sessions"`
	Uploads  core.UploadLimiterStatus `json:"uploads"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{
		Status:   "ok",
		Sessions: s.service.Sessions().Len(),
		Uploads:  s.service.UploadLimiterStatus(),
	})
}

// fileParam returns the {name} URL parameter. chi matches on the decoded
// path unless the request carried a non-canonical encoding, in which case
// the parameter is still escaped.
func fileParam(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return raw
	}
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

// respondOK redirects browser forms home with a notice and writes v as JSON
// for everyone else.
func respondOK(w http.ResponseWriter, r *http.Request, notice string, v any) {
	if isBrowserForm(r) {
		redirectHome(w, r, "notice", notice)
		return
	}
	render.JSON(w, r, v)
}

// redirectHome sends the browser back to the dashboard with one message.
func redirectHome(w http.ResponseWriter, r *http.Request, key, msg string) {
	http.Redirect(w, r, "/?"+url.Values{key: {msg}}.Encode(), http.StatusSeeOther)
}
