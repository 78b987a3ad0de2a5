package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pronounce/backend/internal/models"
	"github.com/pronounce/backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) reviewService(store storage.ArtifactStore) *reviewService {
	return NewReviewService(f.lessons, f.references, f.audio, f.prompts, f.reviews, store, f.codec, time.Hour)
}

// writeSubmission stores the raw audio and alignment artifacts of a file key
func writeSubmission(t *testing.T, store storage.ArtifactStore, fileKey string, words ...string) {
	t.Helper()
	ctx := context.Background()
	entries := make([]models.WordAlignment, len(words))
	for i, w := range words {
		entries[i] = models.WordAlignment{Word: w, Start: float64(i) * 0.5, Length: 0.25}
	}
	raw, err := json.Marshal(entries)
	require.NoError(t, err)
	require.NoError(t, store.Write(ctx, storage.AudioKey(fileKey), []byte("pcm")))
	require.NoError(t, storage.SaveAlignment(ctx, store, fileKey, raw))
}

func TestReviewService_NextForReview(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	store := storage.NewLocalStore(t.TempDir())
	svc := f.reviewService(store)

	attempt, err := f.recordService().AllocateAttempt(ctx, 7, 3)
	require.NoError(t, err)
	recordID := f.recordID(t, attempt.RecordToken)

	f.audio.add(recordID, models.AudioRecord{ID: "audio-rejected", PromptID: 11, FileKey: "fk-0", PassedValidation: boolPtr(false)})
	f.pass(recordID, 11, "fk-1")
	f.pass(recordID, 12, "fk-2")
	writeSubmission(t, store, "fk-1", "the@0", "<UNK>", "cat@1", "sat@2")

	item, err := svc.NextForReview(ctx, 5, attempt.RecordToken)
	require.NoError(t, err)
	assert.Equal(t, "fk-1", item.AudioRecord.FileKey)
	assert.Equal(t, "the cat sat", item.Prompt.Text)
	assert.True(t, item.FilesPresent)
	require.Len(t, item.WordTimings, 3)
	assert.Equal(t, "cat", item.WordTimings[1].Word)
	assert.Equal(t, 1000, item.WordTimings[1].Alignment.Start)
	assert.Equal(t, 1500, item.WordTimings[2].Alignment.Start)
	assert.Equal(t, 250, item.WordTimings[2].Alignment.Length)

	require.NoError(t, svc.CreateReview(ctx, 5, "fk-1", "clear"))

	item, err = svc.NextForReview(ctx, 5, attempt.RecordToken)
	require.NoError(t, err)
	assert.Equal(t, "fk-2", item.AudioRecord.FileKey)
	assert.False(t, item.FilesPresent)
	assert.Empty(t, item.WordTimings)

	other, err := svc.NextForReview(ctx, 6, attempt.RecordToken)
	require.NoError(t, err)
	assert.Equal(t, "fk-1", other.AudioRecord.FileKey, "reviews are tracked per reviewer")

	require.NoError(t, svc.CreateReview(ctx, 5, "fk-2", ""))
	_, err = svc.NextForReview(ctx, 5, attempt.RecordToken)
	assert.ErrorIs(t, err, models.ErrNothingToReview)
}

func TestReviewService_NextForReview_Mismatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	store := storage.NewLocalStore(t.TempDir())
	svc := f.reviewService(store)

	attempt, err := f.recordService().AllocateAttempt(ctx, 7, 3)
	require.NoError(t, err)
	f.pass(f.recordID(t, attempt.RecordToken), 11, "fk-1")
	writeSubmission(t, store, "fk-1", "the@0", "cat@1")

	_, err = svc.NextForReview(ctx, 5, attempt.RecordToken)

	assert.ErrorIs(t, err, models.ErrAlignmentMismatch)
}

func TestReviewService_CreateReview(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := f.reviewService(storage.NewLocalStore(t.TempDir()))
	f.pass("rec-1", 11, "fk-1")

	require.NoError(t, svc.CreateReview(ctx, 5, "fk-1", "first"))
	require.NoError(t, svc.CreateReview(ctx, 5, "fk-1", "second"))
	require.Len(t, f.reviews.reviews, 1)
	assert.Equal(t, "first", f.reviews.reviews[0].Comment)

	assert.ErrorIs(t, svc.CreateReview(ctx, 5, "missing", ""), models.ErrNotFound)
}

func TestReviewService_ListCompleteRecords(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := f.reviewService(storage.NewLocalStore(t.TempDir()))
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	f.lessons.records["complete-old"] = &models.LessonRecord{ID: "complete-old", UserID: 7, LessonID: 3, SequenceID: 1, ModifiedAt: base}
	f.lessons.records["complete-new"] = &models.LessonRecord{ID: "complete-new", UserID: 8, LessonID: 3, SequenceID: 1, ModifiedAt: base.Add(time.Hour)}
	f.lessons.records["incomplete"] = &models.LessonRecord{ID: "incomplete", UserID: 9, LessonID: 3, SequenceID: 1, ModifiedAt: base.Add(2 * time.Hour)}
	for _, id := range []string{"complete-old", "complete-new"} {
		f.pass(id, 11, id+"-11")
		f.pass(id, 12, id+"-12")
	}
	f.pass("incomplete", 11, "incomplete-11")

	require.NoError(t, svc.CreateReview(ctx, 5, "complete-old-11", ""))
	require.NoError(t, svc.CreateReview(ctx, 6, "complete-old-12", ""))

	items, err := svc.ListCompleteRecords(ctx, 3)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(8), items[0].UserID)
	assert.False(t, items[0].Reviewed)
	assert.Equal(t, int64(7), items[1].UserID)
	assert.True(t, items[1].Reviewed)
	assert.Equal(t, "2026-05-01T12:00:00Z", items[1].ModifiedAt)
	assert.Equal(t, "complete-old", f.recordID(t, items[1].RecordToken))
}
