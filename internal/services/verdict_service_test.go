package services

import (
	"context"
	"testing"
	"time"

	"github.com/pronounce/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerdictService_ApplyVerdict(t *testing.T) {
	ctx := context.Background()

	t.Run("redelivery is idempotent", func(t *testing.T) {
		f := newFixture()
		records := f.recordService()
		svc := NewVerdictService(f.lessons, f.references, f.audio, f.prompts, f.codec, time.Hour)

		attempt, err := records.AllocateAttempt(ctx, 7, 3)
		require.NoError(t, err)
		verdict := models.VerdictRequest{
			RecordCookie:     attempt.RecordToken,
			GraphID:          "g-11",
			FileKey:          "fk-1",
			PassedValidation: true,
		}

		require.NoError(t, svc.ApplyVerdict(ctx, verdict))
		require.NoError(t, svc.ApplyVerdict(ctx, verdict))

		assert.Len(t, f.audio.byFileKey, 1)
		recordID := f.recordID(t, attempt.RecordToken)
		assert.Len(t, f.audio.attached[recordID], 1)

		stored, err := f.audio.GetByFileKey(ctx, "fk-1")
		require.NoError(t, err)
		assert.True(t, stored.Passed())
		assert.Equal(t, int64(7), stored.UserID)
		assert.Equal(t, int64(11), stored.PromptID)

		progress, err := records.RecordProgress(ctx, attempt.RecordToken)
		require.NoError(t, err)
		assert.Equal(t, 1, progress.PromptsCompleted)
	})

	t.Run("first verdict is final", func(t *testing.T) {
		f := newFixture()
		records := f.recordService()
		svc := NewVerdictService(f.lessons, f.references, f.audio, f.prompts, f.codec, time.Hour)

		attempt, err := records.AllocateAttempt(ctx, 7, 3)
		require.NoError(t, err)
		verdict := models.VerdictRequest{
			RecordCookie:     attempt.RecordToken,
			GraphID:          "g-11",
			FileKey:          "fk-1",
			PassedValidation: true,
		}
		require.NoError(t, svc.ApplyVerdict(ctx, verdict))

		verdict.PassedValidation = false
		require.NoError(t, svc.ApplyVerdict(ctx, verdict))

		stored, err := f.audio.GetByFileKey(ctx, "fk-1")
		require.NoError(t, err)
		assert.True(t, stored.Passed())
		assert.Len(t, f.audio.attached[f.recordID(t, attempt.RecordToken)], 1)
	})

	t.Run("sets verdict of pending submission", func(t *testing.T) {
		f := newFixture()
		records := f.recordService()
		svc := NewVerdictService(f.lessons, f.references, f.audio, f.prompts, f.codec, time.Hour)

		ref, err := records.GetOrCreateReference(ctx, 2, 3)
		require.NoError(t, err)
		submission, err := records.RegisterSubmission(ctx, 2, ref.RecordToken, 12)
		require.NoError(t, err)
		pending, err := f.audio.GetByFileKey(ctx, submission.FileKey)
		require.NoError(t, err)

		err = svc.ApplyVerdict(ctx, models.VerdictRequest{
			RecordCookie: ref.RecordToken,
			GraphID:      "g-12",
			FileKey:      submission.FileKey,
		})
		require.NoError(t, err)

		stored, err := f.audio.GetByFileKey(ctx, submission.FileKey)
		require.NoError(t, err)
		assert.Equal(t, pending.ID, stored.ID)
		require.NotNil(t, stored.PassedValidation)
		assert.False(t, *stored.PassedValidation)
		assert.Equal(t, []string{pending.ID}, f.audio.attached[f.recordID(t, ref.RecordToken)])
	})

	t.Run("rejections", func(t *testing.T) {
		f := newFixture()
		records := f.recordService()
		svc := NewVerdictService(f.lessons, f.references, f.audio, f.prompts, f.codec, time.Hour)
		attempt, err := records.AllocateAttempt(ctx, 7, 3)
		require.NoError(t, err)

		err = svc.ApplyVerdict(ctx, models.VerdictRequest{RecordCookie: "forged", GraphID: "g-11", FileKey: "fk"})
		assert.ErrorIs(t, err, models.ErrInvalidToken)

		err = svc.ApplyVerdict(ctx, models.VerdictRequest{RecordCookie: attempt.RecordToken, GraphID: "g-unknown", FileKey: "fk"})
		assert.ErrorIs(t, err, models.ErrPromptNotFound)
		assert.Empty(t, f.audio.byFileKey)

		err = svc.ApplyVerdict(ctx, models.VerdictRequest{RecordCookie: attempt.RecordToken, GraphID: "g-21", FileKey: "fk"})
		assert.ErrorIs(t, err, models.ErrPromptNotFound)
		assert.Empty(t, f.audio.byFileKey)
		assert.Empty(t, f.audio.attached[f.recordID(t, attempt.RecordToken)])
	})
}
