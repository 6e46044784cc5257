package service

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/alitto/pond/v2"
	"github.com/jonboulle/clockwork"

	"github.com/geowise/station-healthcheck/internal/detect"
	"github.com/geowise/station-healthcheck/internal/domain"
	"github.com/geowise/station-healthcheck/internal/monitor"
	"github.com/geowise/station-healthcheck/internal/storage"
)

// AnalysisConfig wires an AnalysisService.
type AnalysisConfig struct {
	Logger   *slog.Logger
	Detect   detect.Config
	Workers  int
	Metrics  *monitor.Metrics
	Clock    clockwork.Clock
	Stations storage.Repository // optional
}

func (c *AnalysisConfig) validate() error {
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if err := c.Detect.Validate(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Metrics == nil {
		c.Metrics = monitor.NewMetrics(c.Clock)
	}
	return nil
}

// AnalysisService runs the detectors over batches of tables on a bounded worker pool.
type AnalysisService struct {
	log      *slog.Logger
	cfg      detect.Config
	metrics  *monitor.Metrics
	clock    clockwork.Clock
	stations storage.Repository
	pool     pond.ResultPool[domain.FileResult]
}

// NewAnalysisService creates a new AnalysisService.
func NewAnalysisService(cfg AnalysisConfig) (*AnalysisService, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis config: %w", err)
	}
	return &AnalysisService{
		log:      cfg.Logger,
		cfg:      cfg.Detect,
		metrics:  cfg.Metrics,
		clock:    cfg.Clock,
		stations: cfg.Stations,
		pool:     pond.NewResultPool[domain.FileResult](cfg.Workers),
	}, nil
}

// Config returns the default detector configuration.
func (s *AnalysisService) Config() detect.Config {
	return s.cfg
}

// Close waits for running tasks and releases the worker pool.
func (s *AnalysisService) Close() {
	s.pool.StopAndWait()
}

// Analyze runs the detectors over one table.
func (s *AnalysisService) Analyze(t *domain.Table, cfg detect.Config) (domain.FileResult, error) {
	start := s.clock.Now()
	res, err := detect.Run(t, cfg)
	if err != nil {
		s.metrics.RecordFailure()
		return domain.FileResult{}, err
	}
	fr := domain.FileResult{File: t.Name, Rows: len(t.Rows), Results: res}
	elapsed := s.clock.Since(start)
	s.metrics.RecordAnalysis(fr, elapsed)
	s.log.Debug("Analyzed table", "file", t.Name, "rows", len(t.Rows), "anomalies", res.AnomalyCount(), "duration", elapsed)
	return fr, nil
}

// AnalyzeAll runs the detectors over every table concurrently. Results keep the order of
// tables. The first failing table aborts the batch and pending tables are not analyzed.
func (s *AnalysisService) AnalyzeAll(ctx context.Context, tables []*domain.Table, cfg detect.Config) ([]domain.FileResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	group := s.pool.NewGroupContext(ctx)
	for _, t := range tables {
		t := t
		group.SubmitErr(func() (domain.FileResult, error) {
			if err := ctx.Err(); err != nil {
				return domain.FileResult{}, err
			}
			return s.Analyze(t, cfg)
		})
	}

	results, err := group.Wait()
	if err != nil {
		return nil, fmt.Errorf("failed to analyze batch: %w", err)
	}

	var anomalies int
	for _, r := range results {
		anomalies += r.Results.AnomalyCount()
	}
	s.log.Info("Analyzed batch", "tables", len(tables), "anomalies", anomalies)
	return results, nil
}

// SignalViews builds the signal view of every table in order.
func (s *AnalysisService) SignalViews(tables []*domain.Table, cfg detect.Config) ([]detect.SignalView, error) {
	views := make([]detect.SignalView, 0, len(tables))
	for _, t := range tables {
		v, err := detect.BuildSignalView(t, cfg)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// ListStations returns the stations of the configured station source.
func (s *AnalysisService) ListStations(ctx context.Context) ([]domain.Station, error) {
	if s.stations == nil {
		return nil, domain.ErrNoStationSource
	}
	return s.stations.ListStations(ctx)
}

// AnalyzeStation loads a stored station and runs the detectors over it.
func (s *AnalysisService) AnalyzeStation(ctx context.Context, stationID string, cfg detect.Config) (domain.FileResult, error) {
	if s.stations == nil {
		return domain.FileResult{}, domain.ErrNoStationSource
	}
	t, err := s.stations.LoadTable(ctx, stationID)
	if err != nil {
		return domain.FileResult{}, err
	}
	fr, err := s.Analyze(t, cfg)
	if err != nil {
		return domain.FileResult{}, err
	}
	fr.File = stationID
	return fr, nil
}

// ImportStation stores t as the samples of a station.
func (s *AnalysisService) ImportStation(ctx context.Context, stationID string, t *domain.Table) error {
	if s.stations == nil {
		return domain.ErrNoStationSource
	}
	if err := s.stations.SaveTable(ctx, stationID, t); err != nil {
		return err
	}
	s.log.Info("Imported station", "station", stationID, "file", t.Name, "rows", len(t.Rows))
	return nil
}
