package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pronounce/backend/internal/middleware"
	"github.com/pronounce/backend/internal/models"
	"go.uber.org/zap"
)

// BaseHandler holds helpers shared by all handlers
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, map[string]string{"error": message})
}

// RespondServiceError maps a service error to a status code and sends it.
// Unexpected errors are logged and hidden behind a generic message.
func (h *BaseHandler) RespondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error("request failed",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		h.RespondError(w, status, "internal server error")
		return
	}
	h.RespondError(w, status, publicMessage(err))
}

// userID returns the authenticated user, answering 401 when it is missing
func (h *BaseHandler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.Logger.Error("user ID not found in context")
		h.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
	}
	return userID, ok
}

// int64Param parses a positive integer URL parameter, answering 400 when it is invalid
func (h *BaseHandler) int64Param(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	value, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || value <= 0 {
		h.RespondError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return value, true
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{models.ErrInvalidToken, http.StatusUnauthorized},
	{models.ErrRecordNotOwned, http.StatusForbidden},
	{models.ErrRecordNotFound, http.StatusNotFound},
	{models.ErrPromptNotFound, http.StatusNotFound},
	{models.ErrLessonHasNoPrompts, http.StatusNotFound},
	{models.ErrNothingToReview, http.StatusNotFound},
	{models.ErrNotFound, http.StatusNotFound},
	{models.ErrDuplicateRequest, http.StatusConflict},
	{models.ErrAlignmentMismatch, http.StatusUnprocessableEntity},
}

func statusFor(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

func publicMessage(err error) string {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.err.Error()
		}
	}
	return "internal server error"
}
