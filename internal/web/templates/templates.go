// Package templates holds the HTML components of the web UI.
//
// Components are plain templ.Component values built with templ.ComponentFunc,
// so handlers render them the same way as generated templ components.
package templates

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"
)

// htmlWriter accumulates the first write error so components can emit
// markup without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

// text writes s HTML-escaped. The escaping also covers quotes, so it is safe
// inside attribute values.
func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) component(ctx context.Context, c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

// FilePath returns the escaped API path for a stored file name.
func FilePath(name, suffix string) string {
	return "/api/files/" + url.PathEscape(name) + suffix
}

const styles = `
body{font-family:system-ui,sans-serif;margin:0;background:#f6f7f9;color:#1f2933}
header{background:#1f2933;color:#fff;padding:1rem 2rem}
main{max-width:1100px;margin:0 auto;padding:1.5rem}
section{background:#fff;border:1px solid #d9dee5;border-radius:6px;padding:1rem 1.25rem;margin-bottom:1.25rem}
table{border-collapse:collapse;font-size:.85rem;margin:.5rem 0;display:block;overflow-x:auto}
th,td{border:1px solid #d9dee5;padding:.25rem .5rem;text-align:left;white-space:nowrap}
td.missing{color:#9aa5b1;font-style:italic}
form{margin:.5rem 0}
fieldset{border:1px solid #e4e7eb;border-radius:4px;margin:.5rem 0}
.alert{padding:.75rem 1rem;border-radius:4px;margin-bottom:1rem}
.alert-error{background:#fde8e8;border:1px solid #f8b4b4}
.alert-notice{background:#def7ec;border:1px solid #84e1bc}
.meta{color:#52606d;font-size:.9rem}
.code{font-family:monospace;font-size:.8rem;color:#7b8794}
`

// Layout wraps body in the page shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw("<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\">")
		h.raw("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">")
		h.raw("<title>")
		h.text(title)
		h.raw("</title><style>")
		h.raw(styles)
		h.raw("</style></head><body><header><h1>")
		h.text(title)
		h.raw("</h1><div>Transform CSV and Excel files with built-in cleaning and visualization.</div></header><main>")
		h.component(ctx, body)
		h.raw("</main></body></html>")
		return h.err
	})
}

// ErrorAlert renders a user-facing error with its suggested action and code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="alert alert-error" role="alert"><strong>`)
		h.text(message)
		h.raw("</strong>")
		if action != "" {
			h.raw("<div>")
			h.text(action)
			h.raw("</div>")
		}
		if code != "" {
			h.raw(`<div class="code">Code: `)
			h.text(code)
			h.raw("</div>")
		}
		h.raw("</div>")
		return h.err
	})
}

// Notice renders a success message.
func Notice(message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="alert alert-notice" role="status">`)
		h.text(message)
		h.raw("</div>")
		return h.err
	})
}

// ErrorPage is a full page for errors on plain browser navigation.
func ErrorPage(message, action, code string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.component(ctx, ErrorAlert(message, action, code))
		h.raw(`<p><a href="/">Back to files</a></p>`)
		return h.err
	})
	return Layout("Data Sweeper", body)
}
