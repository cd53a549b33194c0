// Package service runs the vessel ranking pipeline and implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/softprocon/ShipTracker/internal/domain/annotate"
	"github.com/softprocon/ShipTracker/internal/domain/model"
	"github.com/softprocon/ShipTracker/internal/domain/proximity"
	"github.com/softprocon/ShipTracker/internal/domain/ranking"
	"github.com/softprocon/ShipTracker/internal/domain/scoring"
	"github.com/softprocon/ShipTracker/internal/domain/spatial"
	"github.com/softprocon/ShipTracker/internal/domain/trajectory"
	"github.com/softprocon/ShipTracker/internal/domain/window"
	"github.com/softprocon/ShipTracker/pkg/logger"
	"github.com/softprocon/ShipTracker/pkg/metrics"
)

// Stage names used in logs and metrics.
const (
	stageProximity = "proximity"
	stageWindow    = "window"
	stageAnnotate  = "annotate"
	stageRank      = "rank"
)

// Request is a complete ranking run input.
type Request struct {
	Trajectory    []model.TrajectoryPoint
	Observations  []model.ShipObservation
	Params        Params
	SelectedDay   *model.Day // optional day focus
	IncludeBuffer bool       // also return the proximity buffer rings
}

// StageCounts reports how many rows each stage retained or dropped.
type StageCounts struct {
	Input         int `json:"input"`
	Proximity     int `json:"proximity"`
	Window        int `json:"window"`
	UnmatchedDay  int `json:"unmatched_day"`
	OutsideWindow int `json:"outside_window"`
	Duplicates    int `json:"duplicates"`
	Annotated     int `json:"annotated"`
	Vessels       int `json:"vessels"`
}

// Result is the output of a ranking run.
type Result struct {
	RunID   string
	Params  Params
	Vessels []model.RankedVessel
	Summary trajectory.Summary
	Focus   *trajectory.Focus
	Buffer  [][]model.Position
	Stages  StageCounts
}

// Service ranks vessels against a spill trajectory. It holds configuration
// only; every run is independent.
type Service struct {
	logger       logger.Logger
	queryWorkers int
	quadSegs     int
	location     *time.Location
	defaults     Params

	runs     atomic.Int64
	failures atomic.Int64

	logOnce sync.Once
	mu      sync.RWMutex
	lastRun lastRun
}

type lastRun struct {
	id       string
	at       time.Time
	duration time.Duration
	vessels  int
	err      string
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		queryWorkers: runtime.NumCPU(),
		quadSegs:     spatial.DefaultQuadSegments,
		defaults: Params{
			BufferSizeKM:        10,
			TimeIntervalMinutes: 30,
			Policy:              proximity.PolicyThreshold,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) log() logger.Logger {
	s.logOnce.Do(func() {
		if s.logger == nil {
			s.logger = logger.Named("service")
		}
	})
	return s.logger
}

// Defaults returns the parameters applied when a request leaves them unset.
func (s *Service) Defaults() Params {
	return s.defaults
}

// RankVessels runs the ranking pipeline and returns only the ranked vessels.
func (s *Service) RankVessels(ctx context.Context, traj []model.TrajectoryPoint, observations []model.ShipObservation, p Params) ([]model.RankedVessel, error) {
	res, err := s.Run(ctx, Request{Trajectory: traj, Observations: observations, Params: p})
	if err != nil {
		return nil, err
	}
	return res.Vessels, nil
}

// Run executes Proximity -> Temporal -> Annotate -> Score -> Rank. On
// model.ErrEmptyResultSet the returned Result still carries the run id,
// trajectory summary and stage counts.
func (s *Service) Run(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	res := Result{RunID: uuid.NewString(), Params: req.Params}
	log := s.log()
	metrics.RecordRun()
	s.runs.Add(1)

	log.Info(ctx, "ranking run started",
		logger.String("run_id", res.RunID),
		logger.Int("trajectory_points", len(req.Trajectory)),
		logger.Int("observations", len(req.Observations)),
		logger.Float64("buffer_size_km", req.Params.BufferSizeKM),
		logger.Float64("time_interval_minutes", req.Params.TimeIntervalMinutes),
		logger.String("policy", req.Params.Policy.String()),
	)

	err := s.run(ctx, req, &res)
	elapsed := time.Since(start)
	metrics.RecordRunLatency(float64(elapsed.Microseconds()) / 1000)
	s.remember(res, elapsed, err)

	if err != nil {
		kind := kindOf(err)
		metrics.RecordRunFailure(kind)
		s.failures.Add(1)
		log.Warn(ctx, "ranking run failed",
			logger.String("run_id", res.RunID),
			logger.String("kind", kind),
			logger.Any("stages", res.Stages),
			logger.Duration("took", elapsed),
			logger.Error(err),
		)
		return res, err
	}
	metrics.RecordVesselsRanked(len(res.Vessels))
	log.Info(ctx, "ranking run finished",
		logger.String("run_id", res.RunID),
		logger.Int("vessels", len(res.Vessels)),
		logger.Any("stages", res.Stages),
		logger.Duration("took", elapsed),
	)
	return res, nil
}

func (s *Service) run(ctx context.Context, req Request, res *Result) error {
	if err := req.Params.Validate(); err != nil {
		return err
	}
	// the core never mutates or retains caller slices
	traj := slices.Clone(req.Trajectory)
	observations := slices.Clone(req.Observations)
	res.Stages.Input = len(observations)

	idx, err := s.buildIndex(traj)
	if err != nil {
		return err
	}
	anchors, err := window.Anchors(traj, s.location)
	if err != nil {
		return err
	}
	if res.Summary, err = trajectory.Summarize(traj, s.location); err != nil {
		return err
	}
	if req.IncludeBuffer {
		union, err := proximity.Buffer(traj, req.Params.BufferSizeKM, s.quadSegs)
		if err != nil {
			return err
		}
		res.Buffer = union.Polygons()
	}

	near, err := proximity.Filter(ctx, idx, traj, observations, req.Params.BufferSizeKM, req.Params.Policy,
		proximity.WithQuadSegments(s.quadSegs))
	if err != nil {
		return fmt.Errorf("proximity filter: %w", err)
	}
	res.Stages.Proximity = len(near)
	metrics.RecordStageRetained(stageProximity, len(near))
	metrics.RecordDropped("outside_buffer", len(observations)-len(near))

	win := window.Filter(near, anchors, req.Params.TimeIntervalMinutes, s.location)
	res.Stages.Window = len(win.Kept)
	res.Stages.UnmatchedDay = win.UnmatchedDay
	res.Stages.OutsideWindow = win.OutsideSpan
	metrics.RecordStageRetained(stageWindow, len(win.Kept))
	metrics.RecordDropped("unmatched_day", win.UnmatchedDay)
	metrics.RecordDropped("outside_window", win.OutsideSpan)

	ann, err := annotate.Annotate(ctx, idx, traj, anchors, win.Kept, s.location)
	if err != nil {
		return fmt.Errorf("annotate: %w", err)
	}
	res.Stages.Annotated = len(ann.Rows)
	res.Stages.Duplicates = ann.Duplicates
	metrics.RecordStageRetained(stageAnnotate, len(ann.Rows))
	metrics.RecordDropped("duplicate", ann.Duplicates)

	scored, err := scoring.Score(ann.Rows)
	if err != nil {
		return err
	}
	res.Vessels = ranking.Rank(scored)
	res.Stages.Vessels = len(res.Vessels)
	metrics.RecordStageRetained(stageRank, len(res.Vessels))

	if req.SelectedDay != nil {
		focus, err := trajectory.DayFocus(res.Summary, *req.SelectedDay, res.Vessels, req.Params.BufferSizeKM, s.quadSegs)
		if err != nil {
			return fmt.Errorf("day focus: %w", err)
		}
		res.Focus = &focus
	}
	return nil
}

func (s *Service) buildIndex(traj []model.TrajectoryPoint) (*spatial.Index, error) {
	start := time.Now()
	points := make([]model.Position, len(traj))
	for i, tp := range traj {
		points[i] = tp.Position
	}
	idx, err := spatial.NewIndex(points, spatial.WithWorkers(s.queryWorkers))
	if err != nil {
		return nil, err
	}
	metrics.RecordIndexBuild(float64(time.Since(start).Microseconds()) / 1000)
	return idx, nil
}

// ProximityBuffer returns the union-of-buffers rings around the trajectory
// for rendering.
func (s *Service) ProximityBuffer(_ context.Context, traj []model.TrajectoryPoint, bufferKM float64) ([][]model.Position, error) {
	if !positive(bufferKM) {
		return nil, fmt.Errorf("%w: buffer_size_km %v", model.ErrInvalidParameters, bufferKM)
	}
	union, err := proximity.Buffer(slices.Clone(traj), bufferKM, s.quadSegs)
	if err != nil {
		return nil, err
	}
	return union.Polygons(), nil
}

func (s *Service) remember(res Result, took time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun = lastRun{
		id:       res.RunID,
		at:       time.Now(),
		duration: took,
		vessels:  len(res.Vessels),
	}
	if err != nil {
		s.lastRun.err = err.Error()
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"runs":                s.runs.Load(),
		"failures":            s.failures.Load(),
		"queryWorkers":        s.queryWorkers,
		"quadSegments":        s.quadSegs,
		"bufferSizeKm":        s.defaults.BufferSizeKM,
		"timeIntervalMinutes": s.defaults.TimeIntervalMinutes,
		"proximityPolicy":     s.defaults.Policy.String(),
		"dayLocation":         locationName(s.location),
	}
	if s.lastRun.id != "" {
		stats["lastRunId"] = s.lastRun.id
		stats["lastRunAt"] = s.lastRun.at.UTC().Format(time.RFC3339)
		stats["lastRunMs"] = float64(s.lastRun.duration.Microseconds()) / 1000
		stats["lastRunVessels"] = s.lastRun.vessels
		if s.lastRun.err != "" {
			stats["lastRunError"] = s.lastRun.err
		}
	}
	return stats
}

func locationName(loc *time.Location) string {
	if loc == nil {
		return "observation"
	}
	return loc.String()
}

// kindOf maps an error to a metrics label.
func kindOf(err error) string {
	switch {
	case errors.Is(err, model.ErrEmptyTrajectoryInput):
		return "empty_trajectory_input"
	case errors.Is(err, model.ErrEmptyResultSet):
		return "empty_result_set"
	case errors.Is(err, model.ErrDegenerateScoringInput):
		return "degenerate_scoring_input"
	case errors.Is(err, model.ErrInvalidParameters):
		return "invalid_parameters"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "internal"
	}
}
