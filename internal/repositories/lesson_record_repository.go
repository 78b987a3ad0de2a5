package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pronounce/backend/internal/models"
)

const lessonRecordColumns = `id, user_id, lesson_id, sequence_id, created_at, modified_at`

type lessonRecordRepository struct {
	db *sql.DB
}

// NewLessonRecordRepository creates a new lesson record repository
func NewLessonRecordRepository(db *sql.DB) *lessonRecordRepository {
	return &lessonRecordRepository{
		db: db,
	}
}

func scanLessonRecord(row interface{ Scan(...any) error }) (*models.LessonRecord, error) {
	var record models.LessonRecord
	err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.LessonID,
		&record.SequenceID,
		&record.CreatedAt,
		&record.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetByID retrieves a lesson record by its identifier
func (r *lessonRecordRepository) GetByID(ctx context.Context, id string) (*models.LessonRecord, error) {
	query := `SELECT ` + lessonRecordColumns + ` FROM lesson_records WHERE id = ?`

	record, err := scanLessonRecord(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson record: %w", err)
	}

	return record, nil
}

// GetLatest retrieves the lesson record with the highest sequence id of a user and lesson
func (r *lessonRecordRepository) GetLatest(ctx context.Context, userID, lessonID int64) (*models.LessonRecord, error) {
	query := `
		SELECT ` + lessonRecordColumns + `
		FROM lesson_records
		WHERE user_id = ? AND lesson_id = ?
		ORDER BY sequence_id DESC
		LIMIT 1
	`

	record, err := scanLessonRecord(r.db.QueryRowContext(ctx, query, userID, lessonID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest lesson record: %w", err)
	}

	return record, nil
}

// InsertIfAbsent inserts a new lesson record.
// It returns false without an error when (user, lesson, sequence id) is already taken.
func (r *lessonRecordRepository) InsertIfAbsent(ctx context.Context, record *models.LessonRecord) (bool, error) {
	query := `
		INSERT INTO lesson_records (id, user_id, lesson_id, sequence_id, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.LessonID,
		record.SequenceID,
		record.CreatedAt,
		record.ModifiedAt,
	)
	if isDuplicateKey(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create lesson record: %w", err)
	}

	return true, nil
}

// ListByLesson retrieves all lesson records of a lesson, most recently modified first
func (r *lessonRecordRepository) ListByLesson(ctx context.Context, lessonID int64) ([]models.LessonRecord, error) {
	query := `
		SELECT ` + lessonRecordColumns + `
		FROM lesson_records
		WHERE lesson_id = ?
		ORDER BY modified_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lesson records: %w", err)
	}
	defer rows.Close()

	var records []models.LessonRecord
	for rows.Next() {
		record, err := scanLessonRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lesson record: %w", err)
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lesson records: %w", err)
	}

	return records, nil
}
