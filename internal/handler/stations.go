package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/geowise/station-healthcheck/internal/service"
)

// StationHandler handles stored station endpoints.
type StationHandler struct {
	svc       *service.AnalysisService
	maxUpload int64
}

// NewStationHandler creates a new StationHandler.
func NewStationHandler(svc *service.AnalysisService, maxUpload int64) *StationHandler {
	return &StationHandler{svc: svc, maxUpload: maxUpload}
}

// List handles GET /v1/stations
func (h *StationHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	stations, err := h.svc.ListStations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"stations": stations})
}

// Analysis handles GET /v1/stations/{id}/analysis
func (h *StationHandler) Analysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	id, ok := stationID(r.URL.Path)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing station_id"})
		return
	}
	cfg, err := configFromQuery(r, h.svc.Config())
	if err != nil {
		writeError(w, err)
		return
	}
	fr, err := h.svc.AnalyzeStation(r.Context(), id, cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fr)
}

// Import handles PUT /v1/stations/{id}/readings with a single uploaded file.
func (h *StationHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	id, ok := stationID(r.URL.Path)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing station_id"})
		return
	}
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeError(w, badRequest(err))
		return
	}
	files := r.MultipartForm.File[uploadField]
	if len(files) != 1 {
		writeError(w, badRequest(errors.New("expected exactly one file")))
		return
	}
	t, err := readUpload(files[0])
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.ImportStation(r.Context(), id, t); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"station_id": id, "rows": len(t.Rows)})
}

// stationID extracts the id from /v1/stations/{id}/...
func stationID(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 4 || parts[2] == "" {
		return "", false
	}
	return parts[2], true
}
