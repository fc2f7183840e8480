package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/flipt-io/flipt-engine-go/engine"
)

// status mirrors the Rust FFI crate's status/result/error_message envelope
// (sdk/client/engine/src/lib.rs's FFIResponse<T>) for non-Go callers
// crossing this HTTP boundary instead of a C ABI.
type status string

const (
	statusSuccess status = "success"
	statusFailure status = "failure"
)

type envelope struct {
	Status       status      `json:"status"`
	Result       interface{} `json:"result,omitempty"`
	ErrorMessage string      `json:"errorMessage,omitempty"`
}

// EvaluationHandler exposes engine.Engine's variant/boolean/batch methods
// over JSON-over-HTTP, the Go-idiomatic substitute for the Rust crate's C
// FFI boundary.
type EvaluationHandler struct {
	eng    *engine.Engine
	logger zerolog.Logger
}

func NewEvaluationHandler(eng *engine.Engine, logger zerolog.Logger) *EvaluationHandler {
	return &EvaluationHandler{eng: eng, logger: logger.With().Str("component", "evaluation_handler").Logger()}
}

func (h *EvaluationHandler) EvaluateVariant(w http.ResponseWriter, r *http.Request) {
	var req engine.EvaluationRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.eng.Variant(req)
	if err != nil {
		h.logError(r, err)
		writeEnvelope(w, http.StatusOK, envelope{Status: statusFailure, ErrorMessage: err.Error()})
		return
	}

	writeEnvelope(w, http.StatusOK, envelope{Status: statusSuccess, Result: resp})
}

func (h *EvaluationHandler) EvaluateBoolean(w http.ResponseWriter, r *http.Request) {
	var req engine.EvaluationRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.eng.Boolean(req)
	if err != nil {
		h.logError(r, err)
		writeEnvelope(w, http.StatusOK, envelope{Status: statusFailure, ErrorMessage: err.Error()})
		return
	}

	writeEnvelope(w, http.StatusOK, envelope{Status: statusSuccess, Result: resp})
}

func (h *EvaluationHandler) EvaluateBatch(w http.ResponseWriter, r *http.Request) {
	var reqs []engine.EvaluationRequest
	if !h.decode(w, r, &reqs) {
		return
	}

	resp, err := h.eng.Batch(reqs)
	if err != nil {
		h.logError(r, err)
		writeEnvelope(w, http.StatusOK, envelope{Status: statusFailure, ErrorMessage: err.Error()})
		return
	}

	writeEnvelope(w, http.StatusOK, envelope{Status: statusSuccess, Result: resp})
}

func (h *EvaluationHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, http.StatusOK, envelope{Status: statusSuccess, Result: map[string]string{"status": "healthy"}})
}

func (h *EvaluationHandler) decode(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (h *EvaluationHandler) logError(r *http.Request, err error) {
	h.logger.Warn().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("evaluation failed")
}

func writeEnvelope(w http.ResponseWriter, httpStatus int, e envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(e)
}

func writeError(w http.ResponseWriter, httpStatus int, message string) {
	writeEnvelope(w, httpStatus, envelope{Status: statusFailure, ErrorMessage: message})
}
