package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/geowise/station-healthcheck/internal/detect"
	"github.com/geowise/station-healthcheck/internal/domain"
	"github.com/geowise/station-healthcheck/internal/ingest"
	"github.com/geowise/station-healthcheck/internal/report"
	"github.com/geowise/station-healthcheck/internal/service"
)

const uploadField = "files"

// AnalysisHandler handles file upload analysis endpoints.
type AnalysisHandler struct {
	log       *slog.Logger
	svc       *service.AnalysisService
	reports   *service.ReportService
	maxUpload int64
}

// NewAnalysisHandler creates a new AnalysisHandler. maxUpload bounds the in-memory
// part of a multipart upload, in bytes.
func NewAnalysisHandler(log *slog.Logger, svc *service.AnalysisService, reports *service.ReportService, maxUpload int64) *AnalysisHandler {
	return &AnalysisHandler{log: log, svc: svc, reports: reports, maxUpload: maxUpload}
}

// Analyze handles POST /v1/analyze
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	tables, cfg, err := h.prepare(r)
	if err != nil {
		writeError(w, err)
		return
	}
	results, err := h.svc.AnalyzeAll(r.Context(), tables, cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"files": results})
}

// Report handles POST /v1/report
func (h *AnalysisHandler) Report(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	tables, cfg, err := h.prepare(r)
	if err != nil {
		writeError(w, err)
		return
	}
	results, err := h.svc.AnalyzeAll(r.Context(), tables, cfg)
	if err != nil {
		writeError(w, err)
		return
	}

	doc := h.reports.Build(results)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	w.WriteHeader(http.StatusOK)
	if err := report.WriteText(w, doc); err != nil {
		h.log.Warn("Failed to write report", "file", doc.FileName, "error", err)
	}
}

// SignalView handles POST /v1/signal-view
func (h *AnalysisHandler) SignalView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	tables, cfg, err := h.prepare(r)
	if err != nil {
		writeError(w, err)
		return
	}
	views, err := h.svc.SignalViews(tables, cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"views": views})
}

func (h *AnalysisHandler) prepare(r *http.Request) ([]*domain.Table, detect.Config, error) {
	cfg, err := configFromQuery(r, h.svc.Config())
	if err != nil {
		return nil, detect.Config{}, err
	}
	tables, err := h.readUploads(r)
	if err != nil {
		return nil, detect.Config{}, err
	}
	return tables, cfg, nil
}

func (h *AnalysisHandler) readUploads(r *http.Request) ([]*domain.Table, error) {
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		return nil, badRequest(fmt.Errorf("invalid multipart body: %w", err))
	}
	files := r.MultipartForm.File[uploadField]
	if len(files) == 0 {
		return nil, badRequest(errors.New("no files uploaded"))
	}
	tables := make([]*domain.Table, 0, len(files))
	for _, fh := range files {
		t, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func readUpload(fh *multipart.FileHeader) (*domain.Table, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return ingest.ReadCSV(fh.Filename, f)
}

// configFromQuery applies the per-request overrides threshold, signal_threshold,
// min_run and detectors to base.
func configFromQuery(r *http.Request, base detect.Config) (detect.Config, error) {
	q := r.URL.Query()
	cfg := base
	if v := q.Get("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, badRequest(fmt.Errorf("invalid threshold %q", v))
		}
		cfg.LevelShiftThreshold = f
	}
	if v := q.Get("signal_threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, badRequest(fmt.Errorf("invalid signal_threshold %q", v))
		}
		cfg.SignalThreshold = f
	}
	if v := q.Get("min_run"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, badRequest(fmt.Errorf("invalid min_run %q", v))
		}
		cfg.MinFrozenRun = n
	}
	if v := q.Get("detectors"); v != "" {
		toggles, err := detect.ParseToggles(strings.Split(v, ","))
		if err != nil {
			return cfg, err
		}
		cfg.Detectors = toggles
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
