// Package storage persists audio and alignment artifacts keyed by file key
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"github.com/google/uuid"
	"github.com/pronounce/backend/internal/models"
)

const (
	// AudioSuffix is appended to a file key to name the raw audio artifact
	AudioSuffix = ".raw"
	// AlignmentSuffix is appended to a file key to name the alignment artifact
	AlignmentSuffix = ".ali.json"
	// ReferenceFileName is the per-graph file holding the expected word sequence
	ReferenceFileName = "uniqued_prompt.txt"
)

// ErrArtifactNotFound is returned when an artifact does not exist in the store
var ErrArtifactNotFound = errors.New("artifact not found")

// ArtifactStore is a flat key/value store of artifact files
type ArtifactStore interface {
	// Read returns the content stored under key, or ErrArtifactNotFound
	Read(ctx context.Context, key string) ([]byte, error)
	// Write stores data under key, replacing any previous content
	Write(ctx context.Context, key string, data []byte) error
	// Exists reports whether key is present
	Exists(ctx context.Context, key string) (bool, error)
}

// AudioKey returns the raw audio artifact key of a file key
func AudioKey(fileKey string) string {
	return fileKey + AudioSuffix
}

// AlignmentKey returns the alignment artifact key of a file key
func AlignmentKey(fileKey string) string {
	return fileKey + AlignmentSuffix
}

// ReferenceKey returns the reference word list key of a decode graph
func ReferenceKey(graphID string) string {
	return path.Join(graphID, ReferenceFileName)
}

// GenerateFileKey generates a new globally unique file key
func GenerateFileKey() string {
	return uuid.New().String()
}

// SaveAlignment persists a raw alignment array as {"word-alignment": [...]}
func SaveAlignment(ctx context.Context, store ArtifactStore, fileKey string, rawAlignment json.RawMessage) error {
	if len(rawAlignment) == 0 {
		rawAlignment = json.RawMessage("[]")
	}
	data, err := json.Marshal(map[string]json.RawMessage{"word-alignment": rawAlignment})
	if err != nil {
		return fmt.Errorf("failed to encode alignment: %w", err)
	}
	if err := store.Write(ctx, AlignmentKey(fileKey), data); err != nil {
		return fmt.Errorf("failed to save alignment: %w", err)
	}
	return nil
}

// FetchWordAlignment loads the raw word alignment saved for a file key
func FetchWordAlignment(ctx context.Context, store ArtifactStore, fileKey string) ([]models.WordAlignment, error) {
	data, err := store.Read(ctx, AlignmentKey(fileKey))
	if err != nil {
		return nil, fmt.Errorf("failed to read alignment: %w", err)
	}

	var artifact models.AlignmentArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to decode alignment: %w", err)
	}
	return artifact.WordAlignment, nil
}

// SubmissionFilesPresent reports whether both the raw audio and the alignment of a file key exist
func SubmissionFilesPresent(ctx context.Context, store ArtifactStore, fileKey string) (bool, error) {
	for _, key := range []string{AudioKey(fileKey), AlignmentKey(fileKey)} {
		exists, err := store.Exists(ctx, key)
		if err != nil {
			return false, fmt.Errorf("failed to check %s: %w", key, err)
		}
		if !exists {
			return false, nil
		}
	}
	return true, nil
}

// Open returns a MinIO backed store when minioCfg is set and a local store rooted at localPath otherwise
func Open(ctx context.Context, localPath string, minioCfg *MinIOConfig) (ArtifactStore, error) {
	if minioCfg == nil {
		return NewLocalStore(localPath), nil
	}
	return NewMinIOStore(ctx, *minioCfg)
}
