package services

import (
	"context"
	"sort"

	"github.com/pronounce/backend/internal/models"
	"github.com/pronounce/backend/internal/token"
)

const testSecret = "3f1d0c8e5b7a49e2a6c4d8f0b2e4a6c8"

// fakeLessonRecordRepository is an in-memory LessonRecordRepository
type fakeLessonRecordRepository struct {
	records  map[string]*models.LessonRecord
	conflict bool
	err      error
}

func (f *fakeLessonRecordRepository) GetByID(ctx context.Context, id string) (*models.LessonRecord, error) {
	if rec, ok := f.records[id]; ok {
		return rec, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeLessonRecordRepository) GetLatest(ctx context.Context, userID, lessonID int64) (*models.LessonRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var latest *models.LessonRecord
	for _, rec := range f.records {
		if rec.UserID == userID && rec.LessonID == lessonID && (latest == nil || rec.SequenceID > latest.SequenceID) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, models.ErrNotFound
	}
	return latest, nil
}

func (f *fakeLessonRecordRepository) InsertIfAbsent(ctx context.Context, record *models.LessonRecord) (bool, error) {
	if f.conflict {
		return false, nil
	}
	for _, rec := range f.records {
		if rec.UserID == record.UserID && rec.LessonID == record.LessonID && rec.SequenceID == record.SequenceID {
			return false, nil
		}
	}
	f.records[record.ID] = record
	return true, nil
}

func (f *fakeLessonRecordRepository) ListByLesson(ctx context.Context, lessonID int64) ([]models.LessonRecord, error) {
	var records []models.LessonRecord
	for _, rec := range f.records {
		if rec.LessonID == lessonID {
			records = append(records, *rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ModifiedAt.After(records[j].ModifiedAt) })
	return records, nil
}

// fakeReferenceRecordRepository is an in-memory ReferenceRecordRepository
type fakeReferenceRecordRepository struct {
	records  map[string]*models.ReferenceRecord
	conflict bool
}

func (f *fakeReferenceRecordRepository) GetByID(ctx context.Context, id string) (*models.ReferenceRecord, error) {
	if rec, ok := f.records[id]; ok {
		return rec, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeReferenceRecordRepository) GetByUserLesson(ctx context.Context, userID, lessonID int64) (*models.ReferenceRecord, error) {
	for _, rec := range f.records {
		if rec.UserID == userID && rec.LessonID == lessonID {
			return rec, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeReferenceRecordRepository) InsertIfAbsent(ctx context.Context, record *models.ReferenceRecord) (bool, error) {
	if f.conflict {
		return false, nil
	}
	if _, err := f.GetByUserLesson(ctx, record.UserID, record.LessonID); err == nil {
		return false, nil
	}
	f.records[record.ID] = record
	return true, nil
}

// fakeAudioRecordRepository is an in-memory AudioRecordRepository
type fakeAudioRecordRepository struct {
	byFileKey map[string]*models.AudioRecord
	attached  map[string][]string
}

func (f *fakeAudioRecordRepository) CreatePending(ctx context.Context, record *models.AudioRecord) (bool, error) {
	if _, ok := f.byFileKey[record.FileKey]; ok {
		return false, nil
	}
	f.byFileKey[record.FileKey] = record
	return true, nil
}

func (f *fakeAudioRecordRepository) UpsertVerdict(ctx context.Context, record *models.AudioRecord) error {
	if existing, ok := f.byFileKey[record.FileKey]; ok {
		if existing.PassedValidation == nil {
			existing.PassedValidation = record.PassedValidation
		}
		existing.ModifiedAt = record.ModifiedAt
		return nil
	}
	f.byFileKey[record.FileKey] = record
	return nil
}

func (f *fakeAudioRecordRepository) GetByFileKey(ctx context.Context, fileKey string) (*models.AudioRecord, error) {
	if rec, ok := f.byFileKey[fileKey]; ok {
		return rec, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeAudioRecordRepository) ListByRecord(ctx context.Context, recordID string) ([]models.AudioRecord, error) {
	var records []models.AudioRecord
	for _, id := range f.attached[recordID] {
		for _, rec := range f.byFileKey {
			if rec.ID == id {
				records = append(records, *rec)
			}
		}
	}
	return records, nil
}

func (f *fakeAudioRecordRepository) Attach(ctx context.Context, kind models.RecordKind, recordID, audioRecordID string) (bool, error) {
	for _, id := range f.attached[recordID] {
		if id == audioRecordID {
			return false, nil
		}
	}
	f.attached[recordID] = append(f.attached[recordID], audioRecordID)
	return true, nil
}

// add stores and attaches an audio record directly
func (f *fakeAudioRecordRepository) add(recordID string, audio models.AudioRecord) {
	f.byFileKey[audio.FileKey] = &audio
	f.attached[recordID] = append(f.attached[recordID], audio.ID)
}

// fakePromptRepository is an in-memory PromptRepository
type fakePromptRepository struct {
	prompts []models.Prompt
}

func (f *fakePromptRepository) GetByID(ctx context.Context, id int64) (*models.Prompt, error) {
	for i := range f.prompts {
		if f.prompts[i].ID == id {
			return &f.prompts[i], nil
		}
	}
	return nil, models.ErrPromptNotFound
}

func (f *fakePromptRepository) GetByGraphID(ctx context.Context, graphID string) (*models.Prompt, error) {
	for i := range f.prompts {
		if f.prompts[i].GraphID == graphID {
			return &f.prompts[i], nil
		}
	}
	return nil, models.ErrPromptNotFound
}

func (f *fakePromptRepository) ListByLesson(ctx context.Context, lessonID int64) ([]models.Prompt, error) {
	var prompts []models.Prompt
	for _, p := range f.prompts {
		if p.LessonID == lessonID {
			prompts = append(prompts, p)
		}
	}
	return prompts, nil
}

// fakeReviewRepository is an in-memory ReviewRepository
type fakeReviewRepository struct {
	reviews []models.AudioReview
	audio   *fakeAudioRecordRepository
}

func (f *fakeReviewRepository) Create(ctx context.Context, review *models.AudioReview) (bool, error) {
	for _, r := range f.reviews {
		if r.ReviewerID == review.ReviewerID && r.AudioRecordID == review.AudioRecordID {
			return false, nil
		}
	}
	review.ID = int64(len(f.reviews) + 1)
	f.reviews = append(f.reviews, *review)
	return true, nil
}

func (f *fakeReviewRepository) ListReviewedAudioIDs(ctx context.Context, recordID string, reviewerID *int64) (map[string]bool, error) {
	attached := make(map[string]bool)
	for _, id := range f.audio.attached[recordID] {
		attached[id] = true
	}
	reviewed := make(map[string]bool)
	for _, r := range f.reviews {
		if attached[r.AudioRecordID] && (reviewerID == nil || *reviewerID == r.ReviewerID) {
			reviewed[r.AudioRecordID] = true
		}
	}
	return reviewed, nil
}

// fixture wires fakes shared by the service tests
type fixture struct {
	lessons    *fakeLessonRecordRepository
	references *fakeReferenceRecordRepository
	audio      *fakeAudioRecordRepository
	prompts    *fakePromptRepository
	reviews    *fakeReviewRepository
	codec      *token.Codec
}

func newFixture() *fixture {
	audio := &fakeAudioRecordRepository{
		byFileKey: make(map[string]*models.AudioRecord),
		attached:  make(map[string][]string),
	}
	return &fixture{
		lessons:    &fakeLessonRecordRepository{records: make(map[string]*models.LessonRecord)},
		references: &fakeReferenceRecordRepository{records: make(map[string]*models.ReferenceRecord)},
		audio:      audio,
		prompts: &fakePromptRepository{prompts: []models.Prompt{
			{ID: 11, LessonID: 3, Position: 1, Text: "the cat sat", GraphID: "g-11"},
			{ID: 12, LessonID: 3, Position: 2, Text: "on the mat", GraphID: "g-12"},
			{ID: 21, LessonID: 4, Position: 1, Text: "hello", GraphID: "g-21"},
		}},
		reviews: &fakeReviewRepository{audio: audio},
		codec:   token.NewCodec(testSecret),
	}
}

func boolPtr(v bool) *bool {
	return &v
}
