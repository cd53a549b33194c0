package api

import (
	"net/http"

	"github.com/softprocon/ShipTracker/internal/domain/model"
	"github.com/softprocon/ShipTracker/internal/domain/types"
)

type bufferRequest struct {
	Trajectory   []types.TrajectoryPoint `json:"trajectory"`
	BufferSizeKM *float64                `json:"buffer_size_km,omitempty"`
}

type bufferResponse struct {
	BufferSizeKM float64         `json:"buffer_size_km"`
	Polygons     [][]types.Point `json:"polygons"`
}

// BufferHandler serves the proximity buffer geometry for rendering.
type BufferHandler struct {
	deps   Dependencies
	limits limits
}

// NewBufferHandler creates a new buffer handler.
func NewBufferHandler(deps Dependencies, l limits) *BufferHandler {
	return &BufferHandler{deps: deps, limits: l}
}

// HandlePostBuffer handles POST /buffer requests.
func (h *BufferHandler) HandlePostBuffer(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_buffer"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req bufferRequest
	if err := decodeBody(w, r, h.limits.maxBodyBytes, &req); err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, NewKind(op, err))
		return
	}
	if len(req.Trajectory) > h.limits.maxTrajectoryPoints {
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", NewKind(op, ErrTooLarge))
		return
	}
	bufferKM := h.deps.Defaults().BufferSizeKM
	if req.BufferSizeKM != nil {
		bufferKM = *req.BufferSizeKM
	}

	traj := make([]model.TrajectoryPoint, len(req.Trajectory))
	for i, p := range req.Trajectory {
		traj[i] = p.Model()
	}
	rings, err := h.deps.ProximityBuffer(r.Context(), traj, bufferKM)
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, WrapKind(op, ErrUnprocessable, err))
		return
	}

	out := bufferResponse{BufferSizeKM: bufferKM, Polygons: make([][]types.Point, len(rings))}
	for i, ring := range rings {
		out.Polygons[i] = types.FromPositions(ring)
	}
	writeJSON(w, http.StatusOK, out)
}
