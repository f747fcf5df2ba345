package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/himanishpuri/AcousticSpot/internal/config"
	"github.com/himanishpuri/AcousticSpot/internal/interval"
	"github.com/himanishpuri/AcousticSpot/internal/matchlog"
	"github.com/himanishpuri/AcousticSpot/pkg/acousticspot"
	"github.com/himanishpuri/AcousticSpot/pkg/logger"
	"github.com/himanishpuri/AcousticSpot/pkg/models"
	"github.com/himanishpuri/AcousticSpot/pkg/utils"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	cfg    *config.Config
	config *ServerConfig
	extra  []acousticspot.Option
	log    *logger.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	AllowedOrigins []string
}

// NewServer creates a new server instance. extra is appended to the options
// of every per-request service.
func NewServer(cfg *config.Config, sc *ServerConfig, extra ...acousticspot.Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		config: sc,
		extra:  extra,
		log:    logger.GetLogger(),
	}
	if _, err := s.newService(); err != nil {
		return nil, err
	}
	return s, nil
}

// newService builds a service from the server config plus per-request overrides.
func (s *Server) newService(opts ...acousticspot.Option) (acousticspot.Service, error) {
	all := append(s.cfg.Options(), acousticspot.WithLogger(s.log))
	all = append(all, s.extra...)
	return acousticspot.NewService(append(all, opts...)...)
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "AcousticSpot API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health": "GET /health",
			"scan":   "POST /api/scan",
			"merge":  "POST /api/merge",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":      "healthy",
		"time":        time.Now().Format(time.RFC3339),
		"sample_rate": s.cfg.Audio.SampleRate,
	})
}

// handleScan handles POST /api/scan. The form carries two files, input and
// reference, plus similarity (percent) and optional step_ms and gap_ms.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.log.Errorf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}
	defer r.MultipartForm.RemoveAll()

	params, err := parseScanParams(
		r.FormValue("similarity"),
		r.FormValue("step_ms"),
		r.FormValue("gap_ms"),
		ScanParams{
			ThresholdPercent: s.cfg.Scan.ThresholdPercent,
			StepMs:           s.cfg.Scan.StepMs,
			GapMs:            s.cfg.Merge.GapMs,
		},
	)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	runID := utils.NewRunID()
	dir, err := os.MkdirTemp(s.cfg.Audio.TempDir, "scan_"+utils.ShortID(runID)+"_")
	if err != nil {
		s.log.Errorf("Failed to create work dir: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to process upload")
		return
	}
	defer os.RemoveAll(dir)

	inputPath, err := saveUpload(r, "input", dir)
	if err != nil {
		s.log.Errorf("Failed to save input: %v", err)
		s.respondError(w, http.StatusBadRequest, "input audio file is required")
		return
	}
	referencePath, err := saveUpload(r, "reference", dir)
	if err != nil {
		s.log.Errorf("Failed to save reference: %v", err)
		s.respondError(w, http.StatusBadRequest, "reference audio file is required")
		return
	}

	svc, err := s.newService(
		acousticspot.WithThresholdPercent(params.ThresholdPercent),
		acousticspot.WithStepMs(params.StepMs),
		acousticspot.WithGapMs(params.GapMs),
	)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.log.Infof("Scan %s: similarity > %g%%, step %d ms", utils.ShortID(runID), params.ThresholdPercent, params.StepMs)
	detections, err := svc.FindMatches(ctx, inputPath, referencePath)
	if err != nil {
		s.log.Errorf("Scan %s failed: %v", utils.ShortID(runID), err)
		s.respondError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Scan failed: %v", err))
		return
	}
	intervals := svc.Consolidate(detections)

	resp := ScanResponse{
		RunID:            runID,
		ThresholdPercent: params.ThresholdPercent,
		StepMs:           params.StepMs,
		GapMs:            params.GapMs,
		Detections:       make([]MatchDTO, len(detections)),
		Intervals:        make([]MatchDTO, len(intervals)),
		Count:            len(detections),
	}
	for i, d := range detections {
		resp.Detections[i] = toMatchDTO(d.Interval())
	}
	for i, m := range intervals {
		resp.Intervals[i] = toMatchDTO(m)
	}

	s.log.Infof("Scan %s complete: %d detections, %d intervals", utils.ShortID(runID), len(detections), len(intervals))
	s.respondJSON(w, http.StatusOK, resp)
}

// saveUpload copies the multipart file field into dir, keeping its extension
// so ffmpeg can recognise the container.
func saveUpload(r *http.Request, field, dir string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", err
	}
	defer file.Close()

	path := filepath.Join(dir, field+filepath.Ext(header.Filename))
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		return "", err
	}
	return path, out.Close()
}

// handleMerge handles POST /api/merge. The body is a match log, the response
// is the consolidated log in the same grammar.
func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	gap := s.cfg.Merge.GapMs
	if q := r.URL.Query().Get("gap_ms"); q != "" {
		var err error
		if gap, err = parseGap(q); err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	intervals, err := matchlog.Read(http.MaxBytesReader(w, r.Body, MaxLogBytes))
	if err != nil {
		s.log.Errorf("Failed to read match log: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to read match log")
		return
	}

	svc, err := s.newService(acousticspot.WithGapMs(gap))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	merged := svc.Consolidate(interval.Detections(intervals))

	s.log.Infof("Merged %d entries into %d intervals (gap: %d ms)", len(intervals), len(merged), gap)
	writeLog(w, merged, s.log)
}

func writeLog(w http.ResponseWriter, intervals []models.MatchInterval, log *logger.Logger) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := matchlog.Write(w, intervals); err != nil {
		log.Errorf("Failed to write merged log: %v", err)
	}
}
