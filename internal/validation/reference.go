package validation

import (
	"context"
	"fmt"
	"strings"

	"github.com/pronounce/backend/internal/storage"
)

// ReferenceLoader reads the expected word sequence of a decode graph from the graph store
type ReferenceLoader struct {
	graphs storage.ArtifactStore
}

// NewReferenceLoader creates a reference loader over a graph store
func NewReferenceLoader(graphs storage.ArtifactStore) *ReferenceLoader {
	return &ReferenceLoader{
		graphs: graphs,
	}
}

// Load returns the whitespace separated words of the graph's reference file
func (l *ReferenceLoader) Load(ctx context.Context, graphID string) ([]string, error) {
	if graphID == "" || graphID == "." || graphID == ".." || strings.ContainsAny(graphID, `/\`) {
		return nil, fmt.Errorf("invalid graph id %q", graphID)
	}

	data, err := l.graphs.Read(ctx, storage.ReferenceKey(graphID))
	if err != nil {
		return nil, fmt.Errorf("failed to read reference of graph %s: %w", graphID, err)
	}
	return strings.Fields(string(data)), nil
}
