package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pronounce/backend/internal/models"
	"go.uber.org/zap"
)

// RecordService is the interface that wraps methods for record lifecycle operations
type RecordService interface {
	// AllocateAttempt returns the latest incomplete attempt of a user or creates the next one
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the learner.
	// "lessonID" is the ID of the lesson.
	//
	// Returns models.ErrDuplicateRequest when a concurrent request created the same attempt.
	AllocateAttempt(ctx context.Context, userID, lessonID int64) (*models.AttemptResponse, error)
	// GetOrCreateReference returns the reference record of a user and lesson, creating it if absent
	GetOrCreateReference(ctx context.Context, userID, lessonID int64) (*models.AttemptResponse, error)
	// RecordProgress reports the progress of the record named by a token
	RecordProgress(ctx context.Context, recordToken string) (*models.AttemptResponse, error)
	// RegisterSubmission creates a pending audio record and returns its file key
	//
	// "userID" must own the record named by "recordToken".
	RegisterSubmission(ctx context.Context, userID int64, recordToken string, promptID int64) (*models.SubmissionResponse, error)
}

// RecordHandler handles HTTP requests for attempts, reference records and submissions
type RecordHandler struct {
	BaseHandler
	service RecordService
}

// NewRecordHandler creates a new record handler
func NewRecordHandler(svc RecordService, logger *zap.Logger) *RecordHandler {
	return &RecordHandler{
		service:     svc,
		BaseHandler: BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all record handler routes
func (h *RecordHandler) RegisterRoutes(r chi.Router, learnerAuth, teacherAuth func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(learnerAuth)
		r.Post("/lessons/{lessonID}/attempts", h.AllocateAttempt)
		r.Get("/records/{token}", h.GetRecord)
		r.Post("/submissions", h.CreateSubmission)
	})
	r.Group(func(r chi.Router) {
		r.Use(teacherAuth)
		r.Post("/lessons/{lessonID}/reference", h.GetOrCreateReference)
	})
}

// AllocateAttempt handles POST /lessons/{lessonID}/attempts
// @Summary Start or resume an attempt
// @Description Returns the latest incomplete attempt of the caller, or creates the next one once it is complete
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param lessonID path int true "Lesson ID"
// @Success 200 {object} models.AttemptResponse "Attempt"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Lesson has no prompts"
// @Failure 409 {object} map[string]string "Duplicate request"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /lessons/{lessonID}/attempts [post]
func (h *RecordHandler) AllocateAttempt(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	lessonID, ok := h.int64Param(w, r, "lessonID")
	if !ok {
		return
	}

	attempt, err := h.service.AllocateAttempt(r.Context(), userID, lessonID)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, attempt)
}

// GetOrCreateReference handles POST /lessons/{lessonID}/reference
// @Summary Get or create the caller's reference record
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param lessonID path int true "Lesson ID"
// @Success 200 {object} models.AttemptResponse "Reference record"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 409 {object} map[string]string "Duplicate request"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /lessons/{lessonID}/reference [post]
func (h *RecordHandler) GetOrCreateReference(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	lessonID, ok := h.int64Param(w, r, "lessonID")
	if !ok {
		return
	}

	reference, err := h.service.GetOrCreateReference(r.Context(), userID, lessonID)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, reference)
}

// GetRecord handles GET /records/{token}
// @Summary Get record progress
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param token path string true "Record token"
// @Success 200 {object} models.AttemptResponse "Record progress"
// @Failure 401 {object} map[string]string "Invalid or expired token"
// @Failure 404 {object} map[string]string "Record not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /records/{token} [get]
func (h *RecordHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	progress, err := h.service.RecordProgress(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}

// CreateSubmission handles POST /submissions
// @Summary Register an audio submission
// @Description Creates a pending audio record and returns the file key the upload must be tagged with
// @Tags records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateSubmissionRequest true "Submission"
// @Success 201 {object} models.SubmissionResponse "File key"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Invalid or expired token"
// @Failure 403 {object} map[string]string "Record belongs to another user"
// @Failure 404 {object} map[string]string "Prompt not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /submissions [post]
func (h *RecordHandler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req models.CreateSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.RecordToken) == "" || req.PromptID <= 0 {
		h.RespondError(w, http.StatusBadRequest, "recordToken and promptId are required")
		return
	}

	submission, err := h.service.RegisterSubmission(r.Context(), userID, req.RecordToken, req.PromptID)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, submission)
}
