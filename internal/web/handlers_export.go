package web

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/sweeper/internal/core"
)

// handleExport downloads one file. The format query parameter picks csv or
// xlsx; without it the file keeps its own format.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ws, err := workspaceFrom(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	name := fileParam(r)
	format := core.FormatForName(name)
	if raw := r.URL.Query().Get("format"); raw != "" {
		if format, err = core.ParseFormat(raw); err != nil {
			s.respondError(w, r, err, statusFor(err))
			return
		}
	}

	art, err := s.service.Export(r.Context(), ws, name, format)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeArtifact(w, art)
}

// handleArchive downloads every stored file as one ZIP.
func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	ws, err := workspaceFrom(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	art, err := s.service.Archive(r.Context(), ws)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeArtifact(w, art)
}

func writeArtifact(w http.ResponseWriter, art core.Artifact) {
	h := w.Header()
	h.Set("Content-Type", art.MIME)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": art.Name}))
	h.Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Data)
}
