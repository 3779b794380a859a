package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/eugenenazirov/packing-assistant/internal/packing"
	"github.com/eugenenazirov/packing-assistant/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const maxRequestBytes = 1 << 20

// Handler wires the packing engine, tuning storage and saved lists into HTTP handlers.
type Handler struct {
	storage storage.Storage
	lists   storage.ListStore

	classification packing.ClassificationTable
	clock          func() time.Time

	mu              sync.RWMutex
	tuningUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithClassification overrides the security keyword table used for every request.
func WithClassification(table packing.ClassificationTable) HandlerOption {
	return func(h *Handler) {
		h.classification = table
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(store storage.Storage, lists storage.ListStore, opts ...HandlerOption) *Handler {
	h := &Handler{
		storage:        store,
		lists:          lists,
		classification: packing.DefaultClassification(),
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.tuningUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetTuning(w http.ResponseWriter, r *http.Request) {
	_ = r
	tuning, err := h.storage.GetTuning()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := tuningResponse{
		Tuning:    tuning,
		UpdatedAt: h.currentTuningUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutTuning(w http.ResponseWriter, r *http.Request) {
	var req packing.Tuning
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if len(req.PriorityScores) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid tuning", "priority_scores must score every priority")
		return
	}

	if err := h.storage.SetTuning(req); err != nil {
		if errors.Is(err, storage.ErrInvalidTuning) {
			writeError(w, http.StatusBadRequest, "Invalid tuning", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markTuningUpdated()

	tuning, err := h.storage.GetTuning()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := tuningResponse{
		Tuning:    tuning,
		UpdatedAt: h.currentTuningUpdatedAt(),
		Message:   "Tuning updated successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodePackingRequest(w, r)
	if !ok {
		return
	}

	engine, err := h.engine()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	start := time.Now()
	result, genErr := engine.Generate(req)
	elapsed := time.Since(start)
	if genErr != nil {
		writeGenerationError(w, genErr)
		return
	}

	resp := packingListResponse{
		Response:         result,
		GenerationTimeMs: elapsed.Milliseconds(),
	}

	if save, _ := strconv.ParseBool(r.URL.Query().Get("save")); save {
		saved := storage.NewSavedList(req, result, h.clock())
		if err := h.lists.Save(r.Context(), saved); err != nil {
			writeInternalError(w, err)
			return
		}
		resp.ID = saved.ID
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleChecklist(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodePackingRequest(w, r)
	if !ok {
		return
	}

	engine, err := h.engine()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	checklist, err := engine.Checklist(req)
	if err != nil {
		writeGenerationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checklist)
}

func (h *Handler) handleListSaved(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.lists.List(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, savedListsResponse{Lists: summaries, Count: len(summaries)})
}

func (h *Handler) handleGetSaved(w http.ResponseWriter, r *http.Request) {
	list, err := h.lists.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeListError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleDeleteSaved(w http.ResponseWriter, r *http.Request) {
	if err := h.lists.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeListError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// engine builds an engine from the current tuning so updates apply to the next request.
func (h *Handler) engine() (packing.Engine, error) {
	tuning, err := h.storage.GetTuning()
	if err != nil {
		return nil, err
	}
	return packing.New(packing.WithTuning(tuning), packing.WithClassification(h.classification)), nil
}

func (h *Handler) decodePackingRequest(w http.ResponseWriter, r *http.Request) (packing.Request, bool) {
	req := packing.Request{Constraints: packing.DefaultConstraints()}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return packing.Request{}, false
	}
	return req, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(dst)
}

func writeGenerationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, packing.ErrInvalidDestination):
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error(), "Set trip_parameters.destination to the city or region you are visiting")
	case errors.Is(err, packing.ErrInvalidTripLength):
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error(), "Set trip_parameters.trip_length_days to at least 1")
	case errors.Is(err, packing.ErrInvalidConstraints), errors.Is(err, packing.ErrInvalidItem):
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.Is(err, packing.ErrInvalidTuning):
		writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
	default:
		writeInternalError(w, err)
	}
}

func writeListError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrListNotFound) {
		writeError(w, http.StatusNotFound, "Not found", err.Error())
		return
	}
	writeInternalError(w, err)
}

func (h *Handler) currentTuningUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.tuningUpdatedAt
}

func (h *Handler) markTuningUpdated() {
	h.mu.Lock()
	h.tuningUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type tuningResponse struct {
	packing.Tuning
	UpdatedAt time.Time `json:"updated_at"`
	Message   string    `json:"message,omitempty"`
}

type packingListResponse struct {
	ID string `json:"id,omitempty"`
	packing.Response
	GenerationTimeMs int64 `json:"generation_time_ms"`
}

type savedListsResponse struct {
	Lists []storage.SavedListSummary `json:"lists"`
	Count int                        `json:"count"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
