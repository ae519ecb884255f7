package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/sweeper/internal/chart"
	"github.com/JonMunkholm/sweeper/internal/config"
	"github.com/JonMunkholm/sweeper/internal/logging"
	"github.com/JonMunkholm/sweeper/internal/metrics"
	"github.com/JonMunkholm/sweeper/internal/table"
)

// Operation names used in logs and metrics.
const (
	OpUpload     = "upload"
	OpDuplicates = "duplicates"
	OpDropSparse = "drop_missing"
	OpFill       = "fill"
	OpSelect     = "select_columns"
	OpChart      = "chart"
	OpExport     = "export"
	OpArchive    = "archive"
)

// Service runs cleaning operations against session workspaces and writes
// their results back. The pure functions do the work; Service adds upload
// throttling, logging and metrics.
type Service struct {
	sessions      *Sessions
	uploadLimiter *UploadLimiter
	metrics       *metrics.Metrics

	missingThreshold float64
	previewRows      int
}

// NewService creates a Service from configuration. m may be nil.
func NewService(cfg *config.Config, m *metrics.Metrics) *Service {
	return &Service{
		sessions:         NewSessions(cfg.Session.TTL, cfg.Session.MaxSessions),
		uploadLimiter:    NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		metrics:          m,
		missingThreshold: cfg.Cleaning.MissingThreshold,
		previewRows:      cfg.Cleaning.PreviewRows,
	}
}

// Sessions returns the session table.
func (s *Service) Sessions() *Sessions {
	return s.sessions
}

// NewSession starts a session and updates the session gauge.
func (s *Service) NewSession() (string, *Workspace, error) {
	id, ws, err := s.sessions.Create()
	if err != nil {
		return "", nil, err
	}
	s.metrics.SetSessions(s.sessions.Len())
	return id, ws, nil
}

// DefaultThreshold is the configured missing-value threshold percentage.
func (s *Service) DefaultThreshold() float64 {
	return s.missingThreshold
}

// DefaultPreviewRows is the configured preview size.
func (s *Service) DefaultPreviewRows() int {
	return s.previewRows
}

// UploadLimiterStatus returns the current upload slot usage.
func (s *Service) UploadLimiterStatus() UploadLimiterStatus {
	return s.uploadLimiter.Status()
}

// WaitForUploads blocks until in-flight uploads finish or ctx is done.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.uploadLimiter.WaitForDrain(ctx)
}

// UploadFile is one file from an upload request.
type UploadFile struct {
	Name string
	Data []byte
}

// UploadResult reports what happened to one uploaded file.
type UploadResult struct {
	Name   string    `json:"name"`
	Loaded bool      `json:"loaded"`
	File   *FileInfo `json:"file,omitempty"`
	Error  string    `json:"error,omitempty"`
	Code   string    `json:"code,omitempty"`

	err error
}

// Err returns the ingestion error for a failed file.
func (r UploadResult) Err() error {
	return r.err
}

// RejectedUpload reports a file refused before ingestion, such as one over
// the size limit.
func RejectedUpload(name string, err error) UploadResult {
	msg := MapError(err)
	return UploadResult{Name: name, Error: msg.Message, Code: msg.Code, err: err}
}

// Upload ingests files into ws. Each file fails independently: a bad file is
// reported in its result and the rest still load. Files already in the
// workspace are not re-parsed. The only returned error is failing to get an
// upload slot.
func (s *Service) Upload(ctx context.Context, ws *Workspace, files []UploadFile) ([]UploadResult, error) {
	if err := s.uploadLimiter.Acquire(ctx); err != nil {
		s.metrics.Operation(OpUpload, metrics.OutcomeRejected)
		return nil, err
	}
	defer s.uploadLimiter.Release()

	logger := logging.FromContext(ctx)
	results := make([]UploadResult, 0, len(files))
	for _, f := range files {
		start := time.Now()
		t, info, loaded, err := ws.Load(f.Name, f.Data)
		if err != nil {
			logger.Warn("file rejected", "file", f.Name, "size", len(f.Data), "error", err, "code", MapError(err).Code)
			s.metrics.Operation(OpUpload, outcome(err))
			results = append(results, RejectedUpload(f.Name, err))
			continue
		}

		if loaded {
			logger.Info("file loaded",
				"file", f.Name,
				"format", info.Format,
				"encoding", info.Encoding,
				"rows", t.NumRows(),
				"columns", t.NumColumns(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
			s.metrics.FileIngested(info.Format, info.Encoding == EncodingLatin1)
		} else {
			logger.Debug("file already loaded", "file", f.Name)
		}
		s.metrics.Operation(OpUpload, metrics.OutcomeOK)

		fi := fileInfo(f.Name, t, info)
		results = append(results, UploadResult{Name: f.Name, Loaded: loaded, File: &fi})
	}
	return results, nil
}

func fileInfo(name string, t *table.Table, info IngestInfo) FileInfo {
	return FileInfo{
		Name:     name,
		Format:   info.Format,
		Encoding: info.Encoding,
		SizeKB:   roundKB(info.Size),
		Rows:     t.NumRows(),
		Columns:  t.NumColumns(),
	}
}

// Preview returns the first rows of a file. rows <= 0 returns every row.
func (s *Service) Preview(ws *Workspace, name string, rows int) (*table.Table, error) {
	t, err := ws.Get(name)
	if err != nil {
		return nil, err
	}
	return t.Head(rows), nil
}

// Describe summarises every column of a file.
func (s *Service) Describe(ws *Workspace, name string) ([]ColumnSummary, error) {
	t, err := ws.Get(name)
	if err != nil {
		return nil, err
	}
	return Describe(t), nil
}

// HandleDuplicates applies the duplicate policy to a file and stores the result.
func (s *Service) HandleDuplicates(ctx context.Context, ws *Workspace, name string, columns []string, behavior DuplicateBehavior) (DuplicateReport, error) {
	var report DuplicateReport
	err := s.mutate(ctx, ws, name, OpDuplicates, func(t *table.Table) (*table.Table, error) {
		out, r, err := ApplyDuplicatePolicy(t, columns, behavior)
		report = r
		return out, err
	})
	if err != nil {
		return DuplicateReport{}, err
	}
	logging.FromContext(ctx).Info("duplicates handled",
		"file", name,
		"behavior", behavior.String(),
		"duplicates", report.Duplicates,
		"rows_after", report.RowsAfter,
	)
	return report, nil
}

// DropMissingColumns removes sparse columns from a file. A nil threshold
// uses the configured default.
func (s *Service) DropMissingColumns(ctx context.Context, ws *Workspace, name string, threshold *float64) ([]string, error) {
	pct := s.missingThreshold
	if threshold != nil {
		pct = *threshold
	}

	var dropped []string
	err := s.mutate(ctx, ws, name, OpDropSparse, func(t *table.Table) (*table.Table, error) {
		out, d, err := DropSparseColumns(t, pct)
		dropped = d
		return out, err
	})
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("sparse columns dropped",
		"file", name,
		"threshold", pct,
		"dropped", dropped,
	)
	return dropped, nil
}

// FillMissing fills missing values in the given columns and stores the result.
func (s *Service) FillMissing(ctx context.Context, ws *Workspace, name string, columns []string, method FillMethod, custom string) (FillReport, error) {
	var report FillReport
	err := s.mutate(ctx, ws, name, OpFill, func(t *table.Table) (*table.Table, error) {
		out, r, err := FillMissing(t, columns, method, custom)
		report = r
		return out, err
	})
	if err != nil {
		return FillReport{}, err
	}
	logging.FromContext(ctx).Info("missing values filled",
		"file", name,
		"method", method.String(),
		"cells", report.Filled(),
	)
	return report, nil
}

// SelectColumns keeps only the given columns of a file; nil keeps them all.
func (s *Service) SelectColumns(ctx context.Context, ws *Workspace, name string, columns []string) (*table.Table, error) {
	var result *table.Table
	err := s.mutate(ctx, ws, name, OpSelect, func(t *table.Table) (*table.Table, error) {
		out, err := SelectColumns(t, columns)
		result = out
		return out, err
	})
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("columns selected", "file", name, "columns", result.NumColumns())
	return result, nil
}

// mutate loads a file, applies fn and stores its result. Nothing is stored
// when fn fails.
func (s *Service) mutate(ctx context.Context, ws *Workspace, name, op string, fn func(*table.Table) (*table.Table, error)) error {
	t, err := ws.Get(name)
	if err != nil {
		s.metrics.Operation(op, metrics.OutcomeRejected)
		return err
	}
	out, err := fn(t)
	if err != nil {
		s.metrics.Operation(op, outcome(err))
		logging.WithFields(ctx, "operation", op, "file", name).Warn("operation refused", "error", err)
		return err
	}
	if err := ws.Put(name, out); err != nil {
		s.metrics.Operation(op, metrics.OutcomeFailed)
		return fmt.Errorf("%s %s: %w", op, name, err)
	}
	s.metrics.Operation(op, metrics.OutcomeOK)
	return nil
}

// Chart renders a file as an HTML chart. The file is not modified.
func (s *Service) Chart(ctx context.Context, ws *Workspace, name string, req chart.Request) ([]byte, error) {
	t, err := ws.Get(name)
	if err != nil {
		s.metrics.Operation(OpChart, metrics.OutcomeRejected)
		return nil, err
	}
	html, err := chart.Render(t, req)
	if err != nil {
		s.metrics.Operation(OpChart, metrics.OutcomeRejected)
		logging.FromContext(ctx).Warn("chart refused", "file", name, "kind", req.Kind.String(), "error", err)
		return nil, err
	}
	s.metrics.Operation(OpChart, metrics.OutcomeOK)
	return html, nil
}

// Export serializes one file in the requested format.
func (s *Service) Export(ctx context.Context, ws *Workspace, name string, format Format) (Artifact, error) {
	t, err := ws.Get(name)
	if err != nil {
		s.metrics.Operation(OpExport, metrics.OutcomeRejected)
		return Artifact{}, err
	}
	art, err := Export(name, t, format)
	if err != nil {
		s.metrics.Operation(OpExport, metrics.OutcomeFailed)
		logging.FromContext(ctx).Error("export failed", "file", name, "format", format.String(), "error", err)
		return Artifact{}, err
	}
	s.metrics.Operation(OpExport, metrics.OutcomeOK)
	s.metrics.Exported(format.String())
	logging.FromContext(ctx).Info("file exported", "file", name, "output", art.Name, "bytes", len(art.Data))
	return art, nil
}

// Archive packages every file in ws into one ZIP.
func (s *Service) Archive(ctx context.Context, ws *Workspace) (Artifact, error) {
	entries := ws.Entries()
	art, err := BuildArchive(entries)
	if err != nil {
		s.metrics.Operation(OpArchive, metrics.OutcomeFailed)
		logging.FromContext(ctx).Error("archive failed", "files", len(entries), "error", err)
		return Artifact{}, err
	}
	s.metrics.Operation(OpArchive, metrics.OutcomeOK)
	s.metrics.ArchiveBuilt(len(entries))
	logging.FromContext(ctx).Info("archive built", "files", len(entries), "bytes", len(art.Data))
	return art, nil
}

// RemoveFile forgets one file.
func (s *Service) RemoveFile(ctx context.Context, ws *Workspace, name string) error {
	if err := ws.Remove(name); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("file removed", "file", name)
	return nil
}

// ResetWorkspace forgets every file.
func (s *Service) ResetWorkspace(ctx context.Context, ws *Workspace) {
	n := ws.Len()
	ws.Reset()
	logging.FromContext(ctx).Info("workspace reset", "files", n)
}

// outcome classifies an error for metrics: errors with a user-facing
// message are rejections, everything else is a failure.
func outcome(err error) string {
	if errors.Is(err, context.Canceled) || IsUserFacing(err) {
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeFailed
}
