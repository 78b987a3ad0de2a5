package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pronounce/backend/internal/models"
)

const referenceRecordColumns = `id, user_id, lesson_id, created_at, modified_at`

type referenceRecordRepository struct {
	db *sql.DB
}

// NewReferenceRecordRepository creates a new reference record repository
func NewReferenceRecordRepository(db *sql.DB) *referenceRecordRepository {
	return &referenceRecordRepository{
		db: db,
	}
}

func scanReferenceRecord(row *sql.Row) (*models.ReferenceRecord, error) {
	var record models.ReferenceRecord
	err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.LessonID,
		&record.CreatedAt,
		&record.ModifiedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reference record: %w", err)
	}
	return &record, nil
}

// GetByID retrieves a reference record by its identifier
func (r *referenceRecordRepository) GetByID(ctx context.Context, id string) (*models.ReferenceRecord, error) {
	query := `SELECT ` + referenceRecordColumns + ` FROM reference_records WHERE id = ?`
	return scanReferenceRecord(r.db.QueryRowContext(ctx, query, id))
}

// GetByUserLesson retrieves the reference record of a user and lesson
func (r *referenceRecordRepository) GetByUserLesson(ctx context.Context, userID, lessonID int64) (*models.ReferenceRecord, error) {
	query := `SELECT ` + referenceRecordColumns + ` FROM reference_records WHERE user_id = ? AND lesson_id = ?`
	return scanReferenceRecord(r.db.QueryRowContext(ctx, query, userID, lessonID))
}

// InsertIfAbsent inserts a new reference record.
// It returns false without an error when the user already has one for the lesson.
func (r *referenceRecordRepository) InsertIfAbsent(ctx context.Context, record *models.ReferenceRecord) (bool, error) {
	query := `
		INSERT INTO reference_records (id, user_id, lesson_id, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.LessonID,
		record.CreatedAt,
		record.ModifiedAt,
	)
	if isDuplicateKey(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create reference record: %w", err)
	}

	return true, nil
}
