package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pronounce/backend/internal/models"
)

type promptRepository struct {
	db *sql.DB
}

// NewPromptRepository creates a new prompt repository
func NewPromptRepository(db *sql.DB) *promptRepository {
	return &promptRepository{
		db: db,
	}
}

func (r *promptRepository) getOne(ctx context.Context, where string, arg any) (*models.Prompt, error) {
	query := `SELECT id, lesson_id, position, text, graph_id FROM prompts WHERE ` + where

	var prompt models.Prompt
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&prompt.ID,
		&prompt.LessonID,
		&prompt.Position,
		&prompt.Text,
		&prompt.GraphID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrPromptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prompt: %w", err)
	}

	return &prompt, nil
}

// GetByID retrieves a prompt by its identifier
func (r *promptRepository) GetByID(ctx context.Context, id int64) (*models.Prompt, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByGraphID retrieves the prompt a decode graph was compiled for
func (r *promptRepository) GetByGraphID(ctx context.Context, graphID string) (*models.Prompt, error) {
	return r.getOne(ctx, "graph_id = ?", graphID)
}

// ListByLesson retrieves the ordered prompt list of a lesson
func (r *promptRepository) ListByLesson(ctx context.Context, lessonID int64) ([]models.Prompt, error) {
	query := `
		SELECT id, lesson_id, position, text, graph_id
		FROM prompts
		WHERE lesson_id = ?
		ORDER BY position, id
	`

	rows, err := r.db.QueryContext(ctx, query, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query prompts: %w", err)
	}
	defer rows.Close()

	var prompts []models.Prompt
	for rows.Next() {
		var prompt models.Prompt
		if err := rows.Scan(&prompt.ID, &prompt.LessonID, &prompt.Position, &prompt.Text, &prompt.GraphID); err != nil {
			return nil, fmt.Errorf("failed to scan prompt: %w", err)
		}
		prompts = append(prompts, prompt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prompts: %w", err)
	}

	return prompts, nil
}
