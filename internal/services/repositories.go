package services

import (
	"context"
	"time"

	"github.com/pronounce/backend/internal/models"
	"github.com/pronounce/backend/internal/token"
)

// LessonRecordRepository defines methods for lesson record data access
type LessonRecordRepository interface {
	// GetByID retrieves a lesson record by id
	//
	// Returns models.ErrNotFound when no record matches.
	GetByID(ctx context.Context, id string) (*models.LessonRecord, error)
	// GetLatest retrieves the lesson record with the highest sequence id
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "lessonID" is the ID of the lesson.
	//
	// Returns models.ErrNotFound when the user has no record for the lesson.
	GetLatest(ctx context.Context, userID, lessonID int64) (*models.LessonRecord, error)
	// InsertIfAbsent inserts a lesson record
	//
	// Returns false without an error when (user, lesson, sequence id) is already taken.
	InsertIfAbsent(ctx context.Context, record *models.LessonRecord) (bool, error)
	// ListByLesson retrieves every lesson record of a lesson, most recently modified first
	ListByLesson(ctx context.Context, lessonID int64) ([]models.LessonRecord, error)
}

// ReferenceRecordRepository defines methods for reference record data access
type ReferenceRecordRepository interface {
	// GetByID retrieves a reference record by id
	//
	// Returns models.ErrNotFound when no record matches.
	GetByID(ctx context.Context, id string) (*models.ReferenceRecord, error)
	// GetByUserLesson retrieves the reference record of a user and lesson
	//
	// Returns models.ErrNotFound when none exists.
	GetByUserLesson(ctx context.Context, userID, lessonID int64) (*models.ReferenceRecord, error)
	// InsertIfAbsent inserts a reference record
	//
	// Returns false without an error when the user already has one for the lesson.
	InsertIfAbsent(ctx context.Context, record *models.ReferenceRecord) (bool, error)
}

// AudioRecordRepository defines methods for audio record data access
type AudioRecordRepository interface {
	// CreatePending inserts an audio record without a verdict
	//
	// Returns false without an error when the file key is already taken.
	CreatePending(ctx context.Context, record *models.AudioRecord) (bool, error)
	// UpsertVerdict creates the audio record keyed by file key or sets its verdict
	UpsertVerdict(ctx context.Context, record *models.AudioRecord) error
	// GetByFileKey retrieves an audio record by file key
	//
	// Returns models.ErrNotFound when no record matches.
	GetByFileKey(ctx context.Context, fileKey string) (*models.AudioRecord, error)
	// ListByRecord retrieves the audio records attached to a record in append order
	ListByRecord(ctx context.Context, recordID string) ([]models.AudioRecord, error)
	// Attach appends an audio record to a record unless already listed
	//
	// "kind" selects the owning record type.
	//
	// Returns whether a row was appended and an error if any.
	Attach(ctx context.Context, kind models.RecordKind, recordID, audioRecordID string) (bool, error)
}

// PromptRepository defines methods for prompt data access
type PromptRepository interface {
	// GetByID retrieves a prompt by id
	//
	// Returns models.ErrPromptNotFound when no prompt matches.
	GetByID(ctx context.Context, id int64) (*models.Prompt, error)
	// GetByGraphID retrieves the prompt a decode graph was compiled for
	//
	// Returns models.ErrPromptNotFound when no prompt matches.
	GetByGraphID(ctx context.Context, graphID string) (*models.Prompt, error)
	// ListByLesson retrieves the ordered prompt list of a lesson
	ListByLesson(ctx context.Context, lessonID int64) ([]models.Prompt, error)
}

// ReviewRepository defines methods for review data access
type ReviewRepository interface {
	// Create stores a review
	//
	// Returns false without an error when the reviewer already reviewed the audio record.
	Create(ctx context.Context, review *models.AudioReview) (bool, error)
	// ListReviewedAudioIDs returns the reviewed audio record ids of a record
	//
	// "reviewerID" restricts the reviews to one reviewer when not nil.
	ListReviewedAudioIDs(ctx context.Context, recordID string, reviewerID *int64) (map[string]bool, error)
}

// TokenCodec issues and resolves opaque record tokens
type TokenCodec interface {
	// Issue signs a record identifier into a token
	Issue(recordID string) (string, error)
	// Resolve verifies a token and looks up the record it names
	Resolve(ctx context.Context, token string, maxAge time.Duration, lookup token.RecordLookup) (models.ResolvedRecord, error)
}
