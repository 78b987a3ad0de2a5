package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pronounce/backend/internal/models"
)

type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *sql.DB) *reviewRepository {
	return &reviewRepository{
		db: db,
	}
}

// Create stores a review. It returns false without an error when the reviewer already reviewed the audio record.
func (r *reviewRepository) Create(ctx context.Context, review *models.AudioReview) (bool, error) {
	query := `
		INSERT INTO audio_reviews (reviewer_id, audio_record_id, comment, created_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		review.ReviewerID,
		review.AudioRecordID,
		review.Comment,
		review.CreatedAt,
	)
	if isDuplicateKey(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create review: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("failed to get last insert id: %w", err)
	}
	review.ID = id

	return true, nil
}

// ListReviewedAudioIDs returns the ids of audio records attached to a record that have a review.
// When reviewerID is nil reviews by any reviewer count.
func (r *reviewRepository) ListReviewedAudioIDs(ctx context.Context, recordID string, reviewerID *int64) (map[string]bool, error) {
	query := `
		SELECT DISTINCT rv.audio_record_id
		FROM audio_reviews rv
		INNER JOIN record_audio ra ON ra.audio_record_id = rv.audio_record_id
		WHERE ra.record_id = ?
	`
	args := []any{recordID}
	if reviewerID != nil {
		query += ` AND rv.reviewer_id = ?`
		args = append(args, *reviewerID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviewed := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviewed[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviewed, nil
}
