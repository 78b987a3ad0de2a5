package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pronounce/backend/internal/models"
)

const audioRecordColumns = `id, user_id, prompt_id, file_key, passed_validation, created_at, modified_at`

// recordTables maps a record kind to the table holding its modified timestamp
var recordTables = map[models.RecordKind]string{
	models.RecordKindLesson:    "lesson_records",
	models.RecordKindReference: "reference_records",
}

type audioRecordRepository struct {
	db *sql.DB
}

// NewAudioRecordRepository creates a new audio record repository
func NewAudioRecordRepository(db *sql.DB) *audioRecordRepository {
	return &audioRecordRepository{
		db: db,
	}
}

func scanAudioRecord(row interface{ Scan(...any) error }) (*models.AudioRecord, error) {
	var (
		record models.AudioRecord
		passed sql.NullBool
	)
	err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.PromptID,
		&record.FileKey,
		&passed,
		&record.CreatedAt,
		&record.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}
	if passed.Valid {
		value := passed.Bool
		record.PassedValidation = &value
	}
	return &record, nil
}

// CreatePending inserts an audio record without a verdict.
// It returns false without an error when the file key is already taken.
func (r *audioRecordRepository) CreatePending(ctx context.Context, record *models.AudioRecord) (bool, error) {
	query := `
		INSERT INTO audio_records (id, user_id, prompt_id, file_key, passed_validation, created_at, modified_at)
		VALUES (?, ?, ?, ?, NULL, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.PromptID,
		record.FileKey,
		record.CreatedAt,
		record.ModifiedAt,
	)
	if isDuplicateKey(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create audio record: %w", err)
	}

	return true, nil
}

// UpsertVerdict creates the audio record keyed by file key or sets the verdict of the existing one.
// A verdict already stored for the file key is never replaced.
func (r *audioRecordRepository) UpsertVerdict(ctx context.Context, record *models.AudioRecord) error {
	if record.PassedValidation == nil {
		return fmt.Errorf("audio record %s has no verdict", record.FileKey)
	}

	query := `
		INSERT INTO audio_records (id, user_id, prompt_id, file_key, passed_validation, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			passed_validation = COALESCE(passed_validation, VALUES(passed_validation)),
			modified_at = VALUES(modified_at)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.PromptID,
		record.FileKey,
		*record.PassedValidation,
		record.CreatedAt,
		record.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save verdict: %w", err)
	}

	return nil
}

// GetByFileKey retrieves an audio record by its file key
func (r *audioRecordRepository) GetByFileKey(ctx context.Context, fileKey string) (*models.AudioRecord, error) {
	query := `SELECT ` + audioRecordColumns + ` FROM audio_records WHERE file_key = ?`

	record, err := scanAudioRecord(r.db.QueryRowContext(ctx, query, fileKey))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audio record: %w", err)
	}

	return record, nil
}

// ListByRecord retrieves the audio records attached to a lesson or reference record in append order
func (r *audioRecordRepository) ListByRecord(ctx context.Context, recordID string) ([]models.AudioRecord, error) {
	query := `
		SELECT a.id, a.user_id, a.prompt_id, a.file_key, a.passed_validation, a.created_at, a.modified_at
		FROM record_audio ra
		INNER JOIN audio_records a ON a.id = ra.audio_record_id
		WHERE ra.record_id = ?
		ORDER BY ra.id
	`

	rows, err := r.db.QueryContext(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audio records: %w", err)
	}
	defer rows.Close()

	var records []models.AudioRecord
	for rows.Next() {
		record, err := scanAudioRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audio record: %w", err)
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audio records: %w", err)
	}

	return records, nil
}

// Attach appends an audio record to a lesson or reference record unless it is already listed.
// The owning record's modified timestamp is bumped only when a row was appended.
func (r *audioRecordRepository) Attach(ctx context.Context, kind models.RecordKind, recordID, audioRecordID string) (bool, error) {
	table, ok := recordTables[kind]
	if !ok {
		return false, fmt.Errorf("cannot attach audio to record kind %s", kind)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT IGNORE INTO record_audio (record_id, audio_record_id) VALUES (?, ?)`,
		recordID, audioRecordID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to attach audio record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return false, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `UPDATE `+table+` SET modified_at = CURRENT_TIMESTAMP WHERE id = ?`, recordID); err != nil {
		return false, fmt.Errorf("failed to touch %s: %w", table, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}
