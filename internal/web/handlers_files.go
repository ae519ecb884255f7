package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/render"

	"github.com/JonMunkholm/sweeper/internal/core"
)

// multipartMemory is how much of an upload form is held in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

// UploadResponse lists the outcome for every uploaded file.
type UploadResponse struct {
	Files []core.UploadResult `json:"files"`
}

// handleUpload loads one or more files from the "files" form field.
// Each file succeeds or fails on its own. This is the only route that starts
// a session.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r, ws, err := s.ensureWorkspace(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	maxFile := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxFile*int64(s.cfg.Upload.MaxFiles))

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			err = fmt.Errorf("%w: request exceeds %d bytes", core.ErrFileTooLarge, tooBig.Limit)
		} else {
			err = fmt.Errorf("%w: %v", errInvalidRequest, err)
		}
		s.respondError(w, r, err, statusFor(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		s.respondError(w, r, core.ErrNoFile, http.StatusBadRequest)
		return
	}
	if len(headers) > s.cfg.Upload.MaxFiles {
		err := fmt.Errorf("%w: %d files, at most %d allowed", errInvalidRequest, len(headers), s.cfg.Upload.MaxFiles)
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	results := make([]core.UploadResult, len(headers))
	var (
		pending []core.UploadFile
		slots   []int
	)
	for i, fh := range headers {
		name := filepath.Base(fh.Filename)
		if fh.Size > maxFile {
			results[i] = core.RejectedUpload(name, fmt.Errorf("%w: %d bytes", core.ErrFileTooLarge, fh.Size))
			continue
		}
		data, err := readPart(fh)
		if err != nil {
			s.respondError(w, r, fmt.Errorf("read %s: %w", name, err), http.StatusInternalServerError)
			return
		}
		pending = append(pending, core.UploadFile{Name: name, Data: data})
		slots = append(slots, i)
	}

	if len(pending) > 0 {
		loaded, err := s.service.Upload(r.Context(), ws, pending)
		if err != nil {
			s.respondError(w, r, err, statusFor(err))
			return
		}
		for k, res := range loaded {
			results[slots[k]] = res
		}
	}

	respondOK(w, r, uploadNotice(results), UploadResponse{Files: results})
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// uploadNotice summarises an upload for the dashboard.
func uploadNotice(results []core.UploadResult) string {
	var loaded, kept int
	var failed []string
	for _, res := range results {
		switch {
		case res.Error != "":
			failed = append(failed, fmt.Sprintf("%s: %s (Code: %s)", res.Name, res.Error, res.Code))
		case res.Loaded:
			loaded++
		default:
			kept++
		}
	}
	parts := []string{fmt.Sprintf("Loaded %d file(s)", loaded)}
	if kept > 0 {
		parts = append(parts, fmt.Sprintf("%d already loaded", kept))
	}
	if len(failed) > 0 {
		parts = append(parts, "failed: "+strings.Join(failed, "; "))
	}
	return strings.Join(parts, ", ")
}

// FilesResponse lists the stored files.
type FilesResponse struct {
	Files []core.FileInfo `json:"files"`
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	ws, err := workspaceFrom(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	render.JSON(w, r, FilesResponse{Files: ws.Files()})
}

func (s *Server) handleRemoveFile(w http.ResponseWriter, r *http.Request) {
	ws, err := workspaceFrom(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	name := fileParam(r)
	if err := s.service.RemoveFile(r.Context(), ws, name); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	respondOK(w, r, "Removed "+name, FilesResponse{Files: ws.Files()})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ws, err := workspaceFrom(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	s.service.ResetWorkspace(r.Context(), ws)
	respondOK(w, r, "All files cleared", FilesResponse{Files: []core.FileInfo{}})
}

// PreviewResponse carries the first rows of a file.
type PreviewResponse struct {
	File      string   `json:"file"`
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	TotalRows int      `json:"total_rows"`
	Numeric   []string `json:"numeric_columns"`
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	ws, err := workspaceFrom(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	name := fileParam(r)
	full, err := ws.Get(name)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	head, err := s.service.Preview(ws, name, parseRowsParam(r, s.service.DefaultPreviewRows()))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	rows := make([][]any, len(head.Rows))
	for i, row := range head.Rows {
		vals := make([]any, len(row))
		for j, c := range row {
			vals[j] = c.Value()
		}
		rows[i] = vals
	}
	render.JSON(w, r, PreviewResponse{
		File:      name,
		Columns:   head.Columns,
		Rows:      rows,
		TotalRows: full.NumRows(),
		Numeric:   full.NumericColumns(),
	})
}

// SummaryResponse carries per-column statistics.
type SummaryResponse struct {
	File    string               `json:"file"`
	Columns []core.ColumnSummary `json:"columns"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ws, err := workspaceFrom(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	name := fileParam(r)
	summary, err := s.service.Describe(ws, name)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	render.JSON(w, r, SummaryResponse{File: name, Columns: summary})
}
