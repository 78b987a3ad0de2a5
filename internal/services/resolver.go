package services

import (
	"context"
	"time"

	"github.com/pronounce/backend/internal/models"
)

// recordLookup adapts the record repositories to token.RecordLookup
type recordLookup struct {
	lessonRepo    LessonRecordRepository
	referenceRepo ReferenceRecordRepository
}

func (l recordLookup) GetLessonRecordByID(ctx context.Context, id string) (*models.LessonRecord, error) {
	return l.lessonRepo.GetByID(ctx, id)
}

func (l recordLookup) GetReferenceRecordByID(ctx context.Context, id string) (*models.ReferenceRecord, error) {
	return l.referenceRepo.GetByID(ctx, id)
}

// tokenResolver resolves record tokens against the record repositories
type tokenResolver struct {
	codec  TokenCodec
	lookup recordLookup
	maxAge time.Duration
}

func newTokenResolver(codec TokenCodec, lessonRepo LessonRecordRepository, referenceRepo ReferenceRecordRepository, maxAge time.Duration) tokenResolver {
	return tokenResolver{
		codec:  codec,
		lookup: recordLookup{lessonRepo: lessonRepo, referenceRepo: referenceRepo},
		maxAge: maxAge,
	}
}

func (r tokenResolver) resolve(ctx context.Context, recordToken string) (models.ResolvedRecord, error) {
	return r.codec.Resolve(ctx, recordToken, r.maxAge, r.lookup)
}
