package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/JonMunkholm/sweeper/internal/chart"
	"github.com/JonMunkholm/sweeper/internal/core"
)

// chartCSP loosens the page policy for chart pages, which load ECharts from
// its CDN and initialise it with an inline script.
const chartCSP = "default-src 'self'; " +
	"script-src 'self' 'unsafe-inline' https://go-echarts.github.io; " +
	"style-src 'self' 'unsafe-inline'; " +
	"img-src 'self' data:; " +
	"frame-ancestors 'none'"

// DuplicatesResponse reports a duplicate pass.
type DuplicatesResponse struct {
	File     string `json:"file"`
	Behavior string `json:"behavior"`
	core.DuplicateReport
}

func (s *Server) handleDuplicates(w http.ResponseWriter, r *http.Request) {
	ws, err := workspaceFrom(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	var req duplicatesRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	behavior, err := core.ParseDuplicateBehavior(req.Behavior)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	name := fileParam(r)
	report, err := s.service.HandleDuplicates(r.Context(), ws, name, req.Columns, behavior)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	notice := fmt.Sprintf("%s: %d duplicate row(s) handled, %d rows remain", name, report.Duplicates, report.RowsAfter)
	respondOK(w, r, notice, DuplicatesResponse{File: name, Behavior: behavior.String(), DuplicateReport: report})
}

// DropMissingResponse lists the removed columns.
type DropMissingResponse struct {
	File    string   `json:"file"`
	Dropped []string `json:"dropped"`
}

func (s *Server) handleDropMissing(w http.ResponseWriter, r *http.Request) {
	ws, err := workspaceFrom(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	var req dropMissingRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	name := fileParam(r)
	dropped, err := s.service.DropMissingColumns(r.Context(), ws, name, req.Threshold)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if dropped == nil {
		dropped = []string{}
	}

	notice := fmt.Sprintf("%s: no columns dropped", name)
	if len(dropped) > 0 {
		notice = fmt.Sprintf("%s: dropped %s", name, strings.Join(dropped, ", "))
	}
	respondOK(w, r, notice, DropMissingResponse{File: name, Dropped: dropped})
}

// FillResponse reports a fill pass.
type FillResponse struct {
	File   string `json:"file"`
	Method string `json:"method"`
	Filled int    `json:"filled"`
	core.FillReport
}

func (s *Server) handleFill(w http.ResponseWriter, r *http.Request) {
	ws, err := workspaceFrom(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	var req fillRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	method, err := core.ParseFillMethod(req.Method)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	name := fileParam(r)
	report, err := s.service.FillMissing(r.Context(), ws, name, req.Columns, method, req.Value)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	notice := fmt.Sprintf("%s: filled %d missing value(s) using %s", name, report.Filled(), method)
	respondOK(w, r, notice, FillResponse{File: name, Method: method.String(), Filled: report.Filled(), FillReport: report})
}

// ColumnsResponse lists the columns kept by a projection.
type ColumnsResponse struct {
	File    string   `json:"file"`
	Columns []string `json:"columns"`
	Rows    int      `json:"rows"`
}

func (s *Server) handleSelectColumns(w http.ResponseWriter, r *http.Request) {
	ws, err := workspaceFrom(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	var req columnsRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	name := fileParam(r)
	t, err := s.service.SelectColumns(r.Context(), ws, name, req.selection())
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	notice := fmt.Sprintf("%s: kept %d column(s)", name, t.NumColumns())
	respondOK(w, r, notice, ColumnsResponse{File: name, Columns: t.Columns, Rows: t.NumRows()})
}

// handleChart renders a chart page. Query parameters: type (bar, line or
// scatter), repeated columns for bar and line, x and y for scatter.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	ws, err := workspaceFrom(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	kind, err := chart.ParseKind(q.Get("type"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	req := chart.Request{
		Kind:    kind,
		Columns: queryList(q, "columns"),
		X:       q.Get("x"),
		Y:       q.Get("y"),
	}

	page, err := s.service.Chart(r.Context(), ws, fileParam(r), req)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	if s.cfg.Security.EnableCSP {
		w.Header().Set("Content-Security-Policy", chartCSP)
	}
	render.HTML(w, r, string(page))
}
