package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pronounce/backend/internal/alignment"
	"github.com/pronounce/backend/internal/models"
	"github.com/pronounce/backend/internal/storage"
)

type reviewService struct {
	lessonRepo LessonRecordRepository
	audioRepo  AudioRecordRepository
	promptRepo PromptRepository
	reviewRepo ReviewRepository
	store      storage.ArtifactStore
	codec      TokenCodec
	resolver   tokenResolver
	now        func() time.Time
}

// NewReviewService creates a new review service
func NewReviewService(
	lessonRepo LessonRecordRepository,
	referenceRepo ReferenceRecordRepository,
	audioRepo AudioRecordRepository,
	promptRepo PromptRepository,
	reviewRepo ReviewRepository,
	store storage.ArtifactStore,
	codec TokenCodec,
	tokenMaxAge time.Duration,
) *reviewService {
	return &reviewService{
		lessonRepo: lessonRepo,
		audioRepo:  audioRepo,
		promptRepo: promptRepo,
		reviewRepo: reviewRepo,
		store:      store,
		codec:      codec,
		resolver:   newTokenResolver(codec, lessonRepo, referenceRepo, tokenMaxAge),
		now:        time.Now,
	}
}

// ListCompleteRecords lists the complete lesson records of a lesson, most recently modified first.
// Each item carries a fresh token and whether every validated audio record has a review.
func (s *reviewService) ListCompleteRecords(ctx context.Context, lessonID int64) ([]models.ReviewRecordItem, error) {
	prompts, err := s.promptRepo.ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson prompts: %w", err)
	}

	records, err := s.lessonRepo.ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson records: %w", err)
	}

	items := make([]models.ReviewRecordItem, 0, len(records))
	for _, record := range records {
		audio, err := s.audioRepo.ListByRecord(ctx, record.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get record audio: %w", err)
		}
		if !IsComplete(prompts, audio) {
			continue
		}

		reviewed, err := s.reviewRepo.ListReviewedAudioIDs(ctx, record.ID, nil)
		if err != nil {
			return nil, err
		}

		recordToken, err := s.codec.Issue(record.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to issue record token: %w", err)
		}

		items = append(items, models.ReviewRecordItem{
			RecordToken: recordToken,
			UserID:      record.UserID,
			SequenceID:  record.SequenceID,
			ModifiedAt:  record.ModifiedAt.UTC().Format(time.RFC3339),
			Reviewed:    allReviewed(passingOnly(audio), reviewed),
		})
	}

	return items, nil
}

// NextForReview returns the first validated audio record of a record the reviewer has not reviewed.
// Returns models.ErrNothingToReview once every validated audio record has the reviewer's review.
func (s *reviewService) NextForReview(ctx context.Context, reviewerID int64, recordToken string) (*models.ReviewItem, error) {
	record, err := s.resolver.resolve(ctx, recordToken)
	if err != nil {
		return nil, err
	}

	audio, err := s.audioRepo.ListByRecord(ctx, record.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to get record audio: %w", err)
	}

	reviewed, err := s.reviewRepo.ListReviewedAudioIDs(ctx, record.ID(), &reviewerID)
	if err != nil {
		return nil, err
	}

	var next *models.AudioRecord
	for _, a := range passingOnly(audio) {
		if !reviewed[a.ID] {
			next = &a
			break
		}
	}
	if next == nil {
		return nil, models.ErrNothingToReview
	}

	prompt, err := s.promptRepo.GetByID(ctx, next.PromptID)
	if err != nil {
		return nil, err
	}

	item := &models.ReviewItem{
		AudioRecord: *next,
		Prompt:      *prompt,
		WordTimings: []models.WordTiming{},
	}

	item.FilesPresent, err = storage.SubmissionFilesPresent(ctx, s.store, next.FileKey)
	if err != nil {
		return nil, err
	}
	if !item.FilesPresent {
		return item, nil
	}

	raw, err := storage.FetchWordAlignment(ctx, s.store, next.FileKey)
	if err != nil {
		return nil, err
	}
	item.WordTimings, err = alignment.WordTimings(prompt.Text, raw)
	if err != nil {
		return nil, err
	}

	return item, nil
}

// CreateReview records a reviewer's review of the audio record with the given file key.
// Reviewing the same audio record twice keeps the first review.
func (s *reviewService) CreateReview(ctx context.Context, reviewerID int64, fileKey, comment string) error {
	audio, err := s.audioRepo.GetByFileKey(ctx, fileKey)
	if errors.Is(err, models.ErrNotFound) {
		return models.ErrNotFound
	}
	if err != nil {
		return err
	}

	_, err = s.reviewRepo.Create(ctx, &models.AudioReview{
		ReviewerID:    reviewerID,
		AudioRecordID: audio.ID,
		Comment:       comment,
		CreatedAt:     s.now(),
	})
	return err
}

func allReviewed(validated []models.AudioRecord, reviewed map[string]bool) bool {
	for _, a := range validated {
		if !reviewed[a.ID] {
			return false
		}
	}
	return true
}
