package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pronounce/backend/internal/models"
	"go.uber.org/zap"
)

// ReviewService is the interface that wraps methods for teacher review operations
type ReviewService interface {
	// ListCompleteRecords lists the complete lesson records of a lesson, most recently modified first
	//
	// "ctx" is the context for the request.
	// "lessonID" is the ID of the lesson.
	//
	// Returns the records, each with a fresh token, and an error if any.
	ListCompleteRecords(ctx context.Context, lessonID int64) ([]models.ReviewRecordItem, error)
	// NextForReview returns the next validated audio record the reviewer has not reviewed
	//
	// Returns models.ErrNothingToReview when everything is reviewed and
	// models.ErrAlignmentMismatch when the stored alignment does not fit the prompt.
	NextForReview(ctx context.Context, reviewerID int64, recordToken string) (*models.ReviewItem, error)
	// CreateReview stores a review of the audio record with the given file key
	CreateReview(ctx context.Context, reviewerID int64, fileKey, comment string) error
}

// ReferenceService resolves authoritative reference audio
type ReferenceService interface {
	// ReferenceFor returns the most recently appended passing audio of a prompt in a reference record
	ReferenceFor(ctx context.Context, recordToken string, promptID int64) (*models.AudioRecord, error)
}

// ReviewHandler handles HTTP requests for the teacher review surface
type ReviewHandler struct {
	BaseHandler
	service    ReviewService
	references ReferenceService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(svc ReviewService, references ReferenceService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		service:     svc,
		references:  references,
		BaseHandler: BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all review routes behind teacherAuth
func (h *ReviewHandler) RegisterRoutes(r chi.Router, teacherAuth func(http.Handler) http.Handler) {
	r.Route("/review", func(r chi.Router) {
		r.Use(teacherAuth)
		r.Get("/lessons/{lessonID}/records", h.ListRecords)
		r.Get("/records/{token}/next", h.NextAudio)
		r.Post("/audio/{fileKey}", h.CreateReview)
		r.Get("/references/{token}/prompts/{promptID}", h.GetReference)
	})
}

// ListRecords handles GET /review/lessons/{lessonID}/records
// @Summary List complete attempts of a lesson
// @Tags review
// @Produce json
// @Security BearerAuth
// @Param lessonID path int true "Lesson ID"
// @Success 200 {array} models.ReviewRecordItem "Complete attempts"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /review/lessons/{lessonID}/records [get]
func (h *ReviewHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	lessonID, ok := h.int64Param(w, r, "lessonID")
	if !ok {
		return
	}

	items, err := h.service.ListCompleteRecords(r.Context(), lessonID)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, items)
}

// NextAudio handles GET /review/records/{token}/next
// @Summary Next audio to review
// @Description Returns the next validated audio of the record the caller has not reviewed, with word timings
// @Tags review
// @Produce json
// @Security BearerAuth
// @Param token path string true "Record token"
// @Success 200 {object} models.ReviewItem "Audio to review"
// @Failure 401 {object} map[string]string "Invalid or expired token"
// @Failure 404 {object} map[string]string "All reviews completed"
// @Failure 422 {object} map[string]string "Prompt and alignment do not match"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /review/records/{token}/next [get]
func (h *ReviewHandler) NextAudio(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := h.userID(w, r)
	if !ok {
		return
	}

	item, err := h.service.NextForReview(r.Context(), reviewerID, chi.URLParam(r, "token"))
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, item)
}

// CreateReview handles POST /review/audio/{fileKey}
// @Summary Mark an audio record as reviewed
// @Tags review
// @Accept json
// @Security BearerAuth
// @Param fileKey path string true "File key"
// @Param request body models.CreateReviewRequest false "Review"
// @Success 204 "Reviewed"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Audio record not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /review/audio/{fileKey} [post]
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req models.CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.CreateReview(r.Context(), reviewerID, chi.URLParam(r, "fileKey"), req.Comment); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetReference handles GET /review/references/{token}/prompts/{promptID}
// @Summary Authoritative reference audio of a prompt
// @Tags review
// @Produce json
// @Security BearerAuth
// @Param token path string true "Reference record token"
// @Param promptID path int true "Prompt ID"
// @Success 200 {object} models.AudioRecord "Reference audio"
// @Failure 401 {object} map[string]string "Invalid or expired token"
// @Failure 404 {object} map[string]string "No reference audio"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /review/references/{token}/prompts/{promptID} [get]
func (h *ReviewHandler) GetReference(w http.ResponseWriter, r *http.Request) {
	promptID, ok := h.int64Param(w, r, "promptID")
	if !ok {
		return
	}

	audio, err := h.references.ReferenceFor(r.Context(), chi.URLParam(r, "token"), promptID)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, audio)
}
