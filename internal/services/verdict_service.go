package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pronounce/backend/internal/models"
)

type verdictService struct {
	audioRepo  AudioRecordRepository
	promptRepo PromptRepository
	resolver   tokenResolver
	now        func() time.Time
}

// NewVerdictService creates a new verdict service
func NewVerdictService(
	lessonRepo LessonRecordRepository,
	referenceRepo ReferenceRecordRepository,
	audioRepo AudioRecordRepository,
	promptRepo PromptRepository,
	codec TokenCodec,
	tokenMaxAge time.Duration,
) *verdictService {
	return &verdictService{
		audioRepo:  audioRepo,
		promptRepo: promptRepo,
		resolver:   newTokenResolver(codec, lessonRepo, referenceRepo, tokenMaxAge),
		now:        time.Now,
	}
}

// ApplyVerdict records a validation verdict delivered by the pipeline.
// The audio record keyed by the file key is created or updated, then appended to the
// record named by the token if it is not listed yet. The first verdict stored for a file key
// is final, so redeliveries never change it.
func (s *verdictService) ApplyVerdict(ctx context.Context, verdict models.VerdictRequest) error {
	record, err := s.resolver.resolve(ctx, verdict.RecordCookie)
	if err != nil {
		return err
	}

	prompt, err := s.promptRepo.GetByGraphID(ctx, verdict.GraphID)
	if err != nil {
		return err
	}
	if prompt.LessonID != record.LessonID() {
		return models.ErrPromptNotFound
	}

	now := s.now()
	passed := verdict.PassedValidation
	if err := s.audioRepo.UpsertVerdict(ctx, &models.AudioRecord{
		ID:               uuid.New().String(),
		UserID:           record.UserID(),
		PromptID:         prompt.ID,
		FileKey:          verdict.FileKey,
		PassedValidation: &passed,
		CreatedAt:        now,
		ModifiedAt:       now,
	}); err != nil {
		return err
	}

	audio, err := s.audioRepo.GetByFileKey(ctx, verdict.FileKey)
	if err != nil {
		return fmt.Errorf("failed to reload audio record: %w", err)
	}

	if _, err := s.audioRepo.Attach(ctx, record.Kind, record.ID(), audio.ID); err != nil {
		return err
	}

	return nil
}
