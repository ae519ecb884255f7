package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/sweeper/internal/core"
)

// FileView is everything the dashboard shows for one stored file.
type FileView struct {
	Info           core.FileInfo
	Columns        []string
	NumericColumns []string
	Preview        [][]string // rows without header
	Missing        []bool     // parallel to Preview cells, flattened row-major
}

// DashboardData feeds the dashboard page.
type DashboardData struct {
	Files            []FileView
	Notice           string
	Error            string
	PreviewRows      int
	DefaultThreshold float64
	MaxFileSizeMB    int64
}

// Dashboard renders the upload form and one card per stored file.
func Dashboard(d DashboardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		if d.Error != "" {
			h.component(ctx, ErrorAlert(d.Error, "", ""))
		}
		if d.Notice != "" {
			h.component(ctx, Notice(d.Notice))
		}

		h.raw(`<section><h2>Upload files</h2>`)
		h.raw(`<form method="post" action="/api/files" enctype="multipart/form-data">`)
		h.raw(`<input type="file" name="files" accept=".csv,.xlsx" multiple required> `)
		h.raw(`<button type="submit">Upload</button>`)
		h.raw(`<div class="meta">CSV or Excel (.xlsx), up to `)
		h.text(strconv.FormatInt(d.MaxFileSizeMB, 10))
		h.raw(` MB each.</div></form></section>`)

		if len(d.Files) == 0 {
			h.raw(`<section><p>No files loaded yet.</p></section>`)
			return h.err
		}

		h.raw(`<section><form method="get" action="/">Preview rows: <select name="rows">`)
		for _, opt := range []struct {
			label string
			n     int
		}{{"Head (5)", core.PreviewHead}, {"First 100", core.PreviewHundred}, {"Full data", core.PreviewFullData}} {
			h.raw(`<option value="`)
			h.text(strconv.Itoa(opt.n))
			h.raw(`"`)
			if opt.n == d.PreviewRows {
				h.raw(" selected")
			}
			h.raw(">")
			h.text(opt.label)
			h.raw("</option>")
		}
		h.raw(`</select> <button type="submit">Show</button></form>`)
		h.raw(`<form method="get" action="/api/archive"><button type="submit">Download all as ZIP</button></form>`)
		h.raw(`<form method="post" action="/api/reset"><button type="submit">Clear all files</button></form></section>`)

		for _, f := range d.Files {
			h.component(ctx, FileCard(f, d.DefaultThreshold))
		}
		return h.err
	})
}

// FileCard renders one file: info, preview and the cleaning forms.
func FileCard(f FileView, threshold float64) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		name := f.Info.Name

		h.raw(`<section><h2>`)
		h.text(name)
		h.raw(`</h2><div class="meta">`)
		h.text(fmt.Sprintf("%d rows, %d columns, %.2f KB", f.Info.Rows, f.Info.Columns, f.Info.SizeKB))
		if f.Info.Encoding != "" {
			h.text(", encoding " + f.Info.Encoding)
		}
		h.raw(`</div>`)

		previewTable(h, f)

		h.raw(`<h3>Data cleaning</h3>`)

		// Duplicates
		h.raw(`<form method="post" action="`)
		h.text(FilePath(name, "/duplicates"))
		h.raw(`"><fieldset><legend>Handle duplicates</legend>`)
		columnChecks(h, f.Columns, nil)
		h.raw(`<label><input type="radio" name="behavior" value="replace" checked> Replace with missing</label> `)
		h.raw(`<label><input type="radio" name="behavior" value="drop"> Drop row</label> `)
		h.raw(`<button type="submit">Apply</button></fieldset></form>`)

		// Missing-value columns
		h.raw(`<form method="post" action="`)
		h.text(FilePath(name, "/drop-missing"))
		h.raw(`"><fieldset><legend>Drop columns with too many missing values</legend>`)
		h.raw(`Threshold (%): <input type="number" name="threshold" min="0" max="100" step="any" value="`)
		h.text(strconv.FormatFloat(threshold, 'f', -1, 64))
		h.raw(`"> <button type="submit">Drop columns</button></fieldset></form>`)

		// Fill
		h.raw(`<form method="post" action="`)
		h.text(FilePath(name, "/fill"))
		h.raw(`"><fieldset><legend>Fill missing values</legend>`)
		columnChecks(h, f.Columns, nil)
		h.raw(`<select name="method"><option value="mean">Mean</option><option value="median">Median</option>`)
		h.raw(`<option value="mode">Mode</option><option value="custom">Custom value</option></select> `)
		h.raw(`<input type="text" name="value" placeholder="Custom value"> `)
		h.raw(`<button type="submit">Fill</button></fieldset></form>`)

		// Projection
		h.raw(`<form method="post" action="`)
		h.text(FilePath(name, "/columns"))
		h.raw(`"><fieldset><legend>Select columns to keep</legend>`)
		columnChecks(h, f.Columns, f.Columns)
		h.raw(`<button type="submit">Keep selected</button></fieldset></form>`)

		// Charts
		h.raw(`<h3>Visualization</h3>`)
		if len(f.NumericColumns) == 0 {
			h.raw(`<p class="meta">No numeric columns found for visualization.</p>`)
		} else {
			h.raw(`<form method="get" target="_blank" action="`)
			h.text(FilePath(name, "/chart"))
			h.raw(`"><fieldset><legend>Chart</legend>`)
			columnChecks(h, f.NumericColumns, f.NumericColumns[:min(2, len(f.NumericColumns))])
			h.raw(`<select name="type"><option value="bar">Bar</option><option value="line">Line</option>`)
			h.raw(`<option value="scatter">Scatter</option></select> X: <select name="x">`)
			options(h, f.NumericColumns)
			h.raw(`</select> Y: <select name="y">`)
			options(h, f.NumericColumns)
			h.raw(`</select> <button type="submit">Draw</button></fieldset></form>`)
		}

		// Export
		h.raw(`<h3>Conversion</h3><form method="get" action="`)
		h.text(FilePath(name, "/export"))
		h.raw(`"><label><input type="radio" name="format" value="csv" checked> CSV</label> `)
		h.raw(`<label><input type="radio" name="format" value="xlsx"> Excel</label> `)
		h.raw(`<button type="submit">Download</button></form>`)

		h.raw(`<form method="post" action="`)
		h.text(FilePath(name, "/remove"))
		h.raw(`"><button type="submit">Remove file</button></form></section>`)
		return h.err
	})
}

func previewTable(h *htmlWriter, f FileView) {
	if len(f.Columns) == 0 {
		h.raw(`<p class="meta">No columns selected.</p>`)
		return
	}
	h.raw("<table><thead><tr>")
	for _, c := range f.Columns {
		h.raw("<th>")
		h.text(c)
		h.raw("</th>")
	}
	h.raw("</tr></thead><tbody>")
	k := 0
	for _, row := range f.Preview {
		h.raw("<tr>")
		for _, v := range row {
			if k < len(f.Missing) && f.Missing[k] {
				h.raw(`<td class="missing">None</td>`)
			} else {
				h.raw("<td>")
				h.text(v)
				h.raw("</td>")
			}
			k++
		}
		h.raw("</tr>")
	}
	h.raw("</tbody></table>")
}

func columnChecks(h *htmlWriter, columns, checked []string) {
	on := make(map[string]bool, len(checked))
	for _, c := range checked {
		on[c] = true
	}
	h.raw("<div>")
	for _, c := range columns {
		h.raw(`<label><input type="checkbox" name="columns" value="`)
		h.text(c)
		h.raw(`"`)
		if on[c] {
			h.raw(" checked")
		}
		h.raw("> ")
		h.text(c)
		h.raw("</label> ")
	}
	h.raw("</div>")
}

func options(h *htmlWriter, values []string) {
	for _, v := range values {
		h.raw(`<option value="`)
		h.text(v)
		h.raw(`">`)
		h.text(v)
		h.raw("</option>")
	}
}
