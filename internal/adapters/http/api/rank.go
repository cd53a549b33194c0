package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	service "github.com/softprocon/ShipTracker/internal/app"
	"github.com/softprocon/ShipTracker/internal/domain/model"
	"github.com/softprocon/ShipTracker/internal/domain/proximity"
	"github.com/softprocon/ShipTracker/internal/domain/trajectory"
	"github.com/softprocon/ShipTracker/internal/domain/types"
)

// rankRequest is the body of POST /rank. Omitted parameters fall back to
// the service defaults.
type rankRequest struct {
	Trajectory          []types.TrajectoryPoint `json:"trajectory"`
	Observations        []types.Observation     `json:"observations"`
	BufferSizeKM        *float64                `json:"buffer_size_km,omitempty"`
	TimeIntervalMinutes *float64                `json:"time_interval_minutes,omitempty"`
	ProximityPolicy     string                  `json:"proximity_policy,omitempty"`
	SelectedDay         string                  `json:"selected_day,omitempty"`
	IncludeBuffer       bool                    `json:"include_buffer,omitempty"`
}

func (r rankRequest) validate(l limits) error {
	switch {
	case len(r.Trajectory) > l.maxTrajectoryPoints:
		return fmt.Errorf("%w: %d trajectory points exceed the limit of %d", ErrTooLarge, len(r.Trajectory), l.maxTrajectoryPoints)
	case len(r.Observations) > l.maxObservations:
		return fmt.Errorf("%w: %d observations exceed the limit of %d", ErrTooLarge, len(r.Observations), l.maxObservations)
	}
	for i, p := range r.Trajectory {
		if p.Timestamp.IsZero() {
			return fmt.Errorf("trajectory[%d]: missing timestamp", i)
		}
	}
	for i, o := range r.Observations {
		switch {
		case strings.TrimSpace(string(o.MMSI)) == "":
			return fmt.Errorf("observations[%d]: missing mmsi", i)
		case o.Timestamp.IsZero():
			return fmt.Errorf("observations[%d]: missing timestamp", i)
		}
	}
	return nil
}

// params resolves request parameters against defaults.
func (r rankRequest) params(defaults service.Params) (service.Params, error) {
	p := defaults
	if r.BufferSizeKM != nil {
		p.BufferSizeKM = *r.BufferSizeKM
	}
	if r.TimeIntervalMinutes != nil {
		p.TimeIntervalMinutes = *r.TimeIntervalMinutes
	}
	if r.ProximityPolicy != "" {
		policy, err := proximity.ParsePolicy(r.ProximityPolicy)
		if err != nil {
			return p, err
		}
		p.Policy = policy
	}
	return p, p.Validate()
}

type paramsResponse struct {
	BufferSizeKM        float64 `json:"buffer_size_km"`
	TimeIntervalMinutes float64 `json:"time_interval_minutes"`
	ProximityPolicy     string  `json:"proximity_policy"`
}

type anchorResponse struct {
	Day    string    `json:"day"`
	Anchor time.Time `json:"anchor"`
}

type centroidResponse struct {
	Day    string      `json:"day"`
	Point  types.Point `json:"point"`
	Points int         `json:"points"`
}

type summaryResponse struct {
	Start     time.Time          `json:"start"`
	End       time.Time          `json:"end"`
	Points    int                `json:"points"`
	Anchors   []anchorResponse   `json:"anchors"`
	Centroids []centroidResponse `json:"centroids"`
}

type focusResponse struct {
	Day     string        `json:"day"`
	Found   bool          `json:"found"`
	Center  *types.Point  `json:"center,omitempty"`
	Ring    []types.Point `json:"ring,omitempty"`
	Vessels []types.Entry `json:"vessels"`
}

type rankResponse struct {
	RunID   string              `json:"run_id"`
	Empty   bool                `json:"empty"`
	Params  paramsResponse      `json:"params"`
	Summary summaryResponse     `json:"summary"`
	Stages  service.StageCounts `json:"stages"`
	Vessels []types.Entry       `json:"vessels"`
	Focus   *focusResponse      `json:"focus,omitempty"`
	Buffer  [][]types.Point     `json:"buffer,omitempty"`
}

// RankHandler handles ranking requests.
type RankHandler struct {
	deps   Dependencies
	limits limits
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps Dependencies, l limits) *RankHandler {
	return &RankHandler{deps: deps, limits: l}
}

// HandlePostRank handles POST /rank requests.
func (h *RankHandler) HandlePostRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_rank"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req rankRequest
	if err := decodeBody(w, r, h.limits.maxBodyBytes, &req); err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, NewKind(op, err))
		return
	}
	if err := req.validate(h.limits); err != nil {
		if errors.Is(err, ErrTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", NewKind(op, err))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	params, err := req.params(h.deps.Defaults())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	sreq := service.Request{
		Trajectory:    make([]model.TrajectoryPoint, len(req.Trajectory)),
		Observations:  make([]model.ShipObservation, len(req.Observations)),
		Params:        params,
		IncludeBuffer: req.IncludeBuffer,
	}
	for i, p := range req.Trajectory {
		sreq.Trajectory[i] = p.Model()
	}
	for i, o := range req.Observations {
		sreq.Observations[i] = o.Model()
	}
	if req.SelectedDay != "" {
		day, err := model.ParseDay(req.SelectedDay)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		sreq.SelectedDay = &day
	}

	res, err := h.deps.Run(r.Context(), sreq)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, toRankResponse(res, false))
	case errors.Is(err, model.ErrEmptyResultSet):
		writeJSON(w, http.StatusOK, toRankResponse(res, true))
	default:
		status, code := statusFor(err)
		kind := ErrUnprocessable
		if status >= http.StatusInternalServerError {
			kind = ErrInternal
		}
		writeError(w, status, code, WrapKind(op, kind, err))
	}
}

func toRankResponse(res service.Result, empty bool) rankResponse {
	out := rankResponse{
		RunID: res.RunID,
		Empty: empty,
		Params: paramsResponse{
			BufferSizeKM:        res.Params.BufferSizeKM,
			TimeIntervalMinutes: res.Params.TimeIntervalMinutes,
			ProximityPolicy:     res.Params.Policy.String(),
		},
		Summary: toSummaryResponse(res.Summary),
		Stages:  res.Stages,
		Vessels: types.FromRankedList(res.Vessels),
	}
	if res.Focus != nil {
		out.Focus = toFocusResponse(*res.Focus)
	}
	if len(res.Buffer) > 0 {
		out.Buffer = make([][]types.Point, len(res.Buffer))
		for i, ring := range res.Buffer {
			out.Buffer[i] = types.FromPositions(ring)
		}
	}
	return out
}

func toSummaryResponse(s trajectory.Summary) summaryResponse {
	out := summaryResponse{
		Start:     s.Start,
		End:       s.End,
		Points:    s.Points,
		Anchors:   make([]anchorResponse, len(s.Anchors)),
		Centroids: make([]centroidResponse, len(s.Centroids)),
	}
	for i, a := range s.Anchors {
		out.Anchors[i] = anchorResponse{Day: a.Day.String(), Anchor: a.Time}
	}
	for i, c := range s.Centroids {
		out.Centroids[i] = centroidResponse{Day: c.Day.String(), Point: types.FromPosition(c.Position), Points: c.Points}
	}
	return out
}

func toFocusResponse(f trajectory.Focus) *focusResponse {
	out := &focusResponse{
		Day:     f.Day.String(),
		Found:   f.Found,
		Vessels: types.FromRankedList(f.Vessels),
	}
	if f.Found {
		c := types.FromPosition(f.Center)
		out.Center = &c
		out.Ring = types.FromPositions(f.Ring)
	}
	return out
}
