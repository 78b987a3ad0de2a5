package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pronounce/backend/internal/models"
	"go.uber.org/zap"
)

// CallbackPath is the fixed path the validation pipeline posts verdicts to
const CallbackPath = "/api/log-audio"

// VerdictService applies verdicts delivered by the validation pipeline
type VerdictService interface {
	// ApplyVerdict records the verdict of the audio record keyed by the verdict's file key
	//
	// Delivering the same verdict twice leaves a single audio record.
	ApplyVerdict(ctx context.Context, verdict models.VerdictRequest) error
}

// CallbackHandler handles verdict callbacks from the validation pipeline
type CallbackHandler struct {
	BaseHandler
	service VerdictService
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(svc VerdictService, logger *zap.Logger) *CallbackHandler {
	return &CallbackHandler{
		service:     svc,
		BaseHandler: BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers the callback route guarded by apiKeyAuth
func (h *CallbackHandler) RegisterRoutes(r chi.Router, apiKeyAuth func(http.Handler) http.Handler) {
	r.With(apiKeyAuth).Post(CallbackPath, h.LogAudio)
}

// LogAudio handles POST /api/log-audio.
// It answers with the literal text OK once the verdict is stored; any other body
// tells the pipeline the delivery failed.
func (h *CallbackHandler) LogAudio(w http.ResponseWriter, r *http.Request) {
	var verdict models.VerdictRequest
	if err := json.NewDecoder(r.Body).Decode(&verdict); err != nil {
		h.respondText(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if verdict.RecordCookie == "" || verdict.GraphID == "" || verdict.FileKey == "" {
		h.respondText(w, http.StatusBadRequest, "record-cookie, graph-id and file-key are required")
		return
	}

	if err := h.service.ApplyVerdict(r.Context(), verdict); err != nil {
		status := statusFor(err)
		log := h.Logger.Warn
		if status == http.StatusInternalServerError {
			log = h.Logger.Error
		}
		log("failed to apply verdict", zap.String("file_key", verdict.FileKey), zap.Error(err))
		h.respondText(w, status, publicMessage(err))
		return
	}

	h.Logger.Info("verdict applied",
		zap.String("file_key", verdict.FileKey),
		zap.Bool("passed_validation", verdict.PassedValidation),
	)
	h.respondText(w, http.StatusOK, models.VerdictAcknowledgement)
}

func (h *CallbackHandler) respondText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		h.Logger.Error("failed to write response", zap.Error(err))
	}
}
