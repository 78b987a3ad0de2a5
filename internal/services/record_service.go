package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pronounce/backend/internal/models"
	"github.com/pronounce/backend/internal/storage"
)

type recordService struct {
	lessonRepo    LessonRecordRepository
	referenceRepo ReferenceRecordRepository
	audioRepo     AudioRecordRepository
	promptRepo    PromptRepository
	codec         TokenCodec
	resolver      tokenResolver
	now           func() time.Time
}

// NewRecordService creates a new record service
func NewRecordService(
	lessonRepo LessonRecordRepository,
	referenceRepo ReferenceRecordRepository,
	audioRepo AudioRecordRepository,
	promptRepo PromptRepository,
	codec TokenCodec,
	tokenMaxAge time.Duration,
) *recordService {
	return &recordService{
		lessonRepo:    lessonRepo,
		referenceRepo: referenceRepo,
		audioRepo:     audioRepo,
		promptRepo:    promptRepo,
		codec:         codec,
		resolver:      newTokenResolver(codec, lessonRepo, referenceRepo, tokenMaxAge),
		now:           time.Now,
	}
}

// AllocateAttempt returns the latest incomplete lesson record of a user or creates the next one.
// A concurrent request that created the same sequence id first yields models.ErrDuplicateRequest.
func (s *recordService) AllocateAttempt(ctx context.Context, userID, lessonID int64) (*models.AttemptResponse, error) {
	prompts, err := s.lessonPrompts(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	nextSequence := 1
	latest, err := s.lessonRepo.GetLatest(ctx, userID, lessonID)
	switch {
	case errors.Is(err, models.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to get latest attempt: %w", err)
	default:
		audio, err := s.audioRepo.ListByRecord(ctx, latest.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get attempt audio: %w", err)
		}
		if !IsComplete(prompts, audio) {
			return s.attemptResponse(models.RecordKindLesson, latest.ID, latest.SequenceID, prompts, audio)
		}
		nextSequence = latest.SequenceID + 1
	}

	now := s.now()
	record := &models.LessonRecord{
		ID:         uuid.New().String(),
		UserID:     userID,
		LessonID:   lessonID,
		SequenceID: nextSequence,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	inserted, err := s.lessonRepo.InsertIfAbsent(ctx, record)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, models.ErrDuplicateRequest
	}

	return s.attemptResponse(models.RecordKindLesson, record.ID, record.SequenceID, prompts, nil)
}

// GetOrCreateReference returns the reference record of a user and lesson, creating it if absent
func (s *recordService) GetOrCreateReference(ctx context.Context, userID, lessonID int64) (*models.AttemptResponse, error) {
	prompts, err := s.lessonPrompts(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	reference, err := s.referenceRepo.GetByUserLesson(ctx, userID, lessonID)
	if err == nil {
		audio, err := s.audioRepo.ListByRecord(ctx, reference.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get reference audio: %w", err)
		}
		return s.attemptResponse(models.RecordKindReference, reference.ID, 0, prompts, audio)
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to get reference record: %w", err)
	}

	now := s.now()
	reference = &models.ReferenceRecord{
		ID:         uuid.New().String(),
		UserID:     userID,
		LessonID:   lessonID,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	inserted, err := s.referenceRepo.InsertIfAbsent(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, models.ErrDuplicateRequest
	}

	return s.attemptResponse(models.RecordKindReference, reference.ID, 0, prompts, nil)
}

// Progress computes how far a resolved record advanced through its lesson prompts
func (s *recordService) Progress(ctx context.Context, record models.ResolvedRecord) (*models.Progress, error) {
	prompts, err := s.promptRepo.ListByLesson(ctx, record.LessonID())
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson prompts: %w", err)
	}
	audio, err := s.audioRepo.ListByRecord(ctx, record.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to get record audio: %w", err)
	}

	completed := PromptsCompleted(prompts, audio)
	return &models.Progress{
		PromptsCompleted: completed,
		PromptCount:      len(prompts),
		Complete:         completed == len(prompts),
	}, nil
}

// RecordProgress resolves a record token and reports the progress of the record it names
func (s *recordService) RecordProgress(ctx context.Context, recordToken string) (*models.AttemptResponse, error) {
	record, err := s.resolver.resolve(ctx, recordToken)
	if err != nil {
		return nil, err
	}

	progress, err := s.Progress(ctx, record)
	if err != nil {
		return nil, err
	}

	response := &models.AttemptResponse{
		RecordToken:      recordToken,
		Kind:             record.Kind.String(),
		PromptsCompleted: progress.PromptsCompleted,
		PromptCount:      progress.PromptCount,
		Complete:         progress.Complete,
	}
	if record.Kind == models.RecordKindLesson {
		response.SequenceID = record.Lesson.SequenceID
	}
	return response, nil
}

// ValidatedAudioRecords returns the passing audio records of a record in append order
func (s *recordService) ValidatedAudioRecords(ctx context.Context, recordID string) ([]models.AudioRecord, error) {
	audio, err := s.audioRepo.ListByRecord(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get record audio: %w", err)
	}
	return passingOnly(audio), nil
}

// ReferenceFor returns the authoritative reference audio of a prompt in the record named by a token.
// Returns models.ErrNotFound when the record holds no passing audio for the prompt.
func (s *recordService) ReferenceFor(ctx context.Context, recordToken string, promptID int64) (*models.AudioRecord, error) {
	record, err := s.resolver.resolve(ctx, recordToken)
	if err != nil {
		return nil, err
	}
	if record.Kind != models.RecordKindReference {
		return nil, models.ErrRecordNotFound
	}

	audio, err := s.audioRepo.ListByRecord(ctx, record.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to get reference audio: %w", err)
	}

	reference := SelectReference(audio, promptID)
	if reference == nil {
		return nil, models.ErrNotFound
	}
	return reference, nil
}

// ReferenceExists reports whether a reference record holds passing audio for a prompt
func (s *recordService) ReferenceExists(ctx context.Context, referenceID string, promptID int64) (bool, error) {
	audio, err := s.audioRepo.ListByRecord(ctx, referenceID)
	if err != nil {
		return false, fmt.Errorf("failed to get reference audio: %w", err)
	}
	return SelectReference(audio, promptID) != nil, nil
}

// RegisterSubmission creates a pending audio record in the record named by a token.
// It returns the fresh file key the client tags its upload with.
func (s *recordService) RegisterSubmission(ctx context.Context, userID int64, recordToken string, promptID int64) (*models.SubmissionResponse, error) {
	record, err := s.resolver.resolve(ctx, recordToken)
	if err != nil {
		return nil, err
	}
	if record.UserID() != userID {
		return nil, models.ErrRecordNotOwned
	}

	prompt, err := s.promptRepo.GetByID(ctx, promptID)
	if err != nil {
		return nil, err
	}
	if prompt.LessonID != record.LessonID() {
		return nil, models.ErrPromptNotFound
	}

	now := s.now()
	audio := &models.AudioRecord{
		ID:         uuid.New().String(),
		UserID:     record.UserID(),
		PromptID:   prompt.ID,
		FileKey:    storage.GenerateFileKey(),
		CreatedAt:  now,
		ModifiedAt: now,
	}
	inserted, err := s.audioRepo.CreatePending(ctx, audio)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, models.ErrDuplicateRequest
	}

	return &models.SubmissionResponse{FileKey: audio.FileKey}, nil
}

func (s *recordService) lessonPrompts(ctx context.Context, lessonID int64) ([]models.Prompt, error) {
	prompts, err := s.promptRepo.ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson prompts: %w", err)
	}
	if len(prompts) == 0 {
		return nil, models.ErrLessonHasNoPrompts
	}
	return prompts, nil
}

func (s *recordService) attemptResponse(kind models.RecordKind, recordID string, sequenceID int, prompts []models.Prompt, audio []models.AudioRecord) (*models.AttemptResponse, error) {
	recordToken, err := s.codec.Issue(recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue record token: %w", err)
	}

	completed := PromptsCompleted(prompts, audio)
	return &models.AttemptResponse{
		RecordToken:      recordToken,
		Kind:             kind.String(),
		SequenceID:       sequenceID,
		PromptsCompleted: completed,
		PromptCount:      len(prompts),
		Complete:         completed == len(prompts),
	}, nil
}
