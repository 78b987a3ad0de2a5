package validation

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pronounce/backend/internal/models"
	"github.com/pronounce/backend/internal/storage"
	"go.uber.org/zap"
)

// Notifier delivers a verdict to the backend
type Notifier interface {
	Notify(ctx context.Context, verdict models.VerdictRequest) error
}

// ReferenceSource returns the reference words of a decode graph
type ReferenceSource interface {
	Load(ctx context.Context, graphID string) ([]string, error)
}

// Pipeline validates result blocks one at a time, in arrival order
type Pipeline struct {
	references ReferenceSource
	artifacts  storage.ArtifactStore
	notifier   Notifier
	maxMiscues int
	metrics    *Metrics
	logger     *zap.Logger
}

// NewPipeline creates a validation pipeline.
// Alignment artifacts are written to artifacts; verdicts are delivered through notifier.
func NewPipeline(references ReferenceSource, artifacts storage.ArtifactStore, notifier Notifier, maxMiscues int, metrics *Metrics, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		references: references,
		artifacts:  artifacts,
		notifier:   notifier,
		maxMiscues: maxMiscues,
		metrics:    metrics,
		logger:     logger,
	}
}

// Process handles one result block and returns its output document.
// Failures are contained to the block and produce {"status": "error"}.
func (p *Pipeline) Process(ctx context.Context, block []byte) []byte {
	p.metrics.blocks.Inc()

	result, err := ParseResult(block)
	if err != nil {
		p.metrics.parseFailures.Inc()
		p.logger.Error("failed to parse result", zap.Error(err))
		return errorOutput
	}

	log := p.logger.With(zap.String("file_key", result.FileKey), zap.String("graph_id", result.GraphID))

	ref, err := p.references.Load(ctx, result.GraphID)
	if err != nil {
		log.Error("failed to load reference", zap.Error(err))
		return errorOutput
	}

	log.Debug("validating", zap.Strings("hyp", result.Hypothesis), zap.Strings("ref", ref))
	passed := Validate(result.Hypothesis, ref, p.maxMiscues)
	p.metrics.verdicts.WithLabelValues(outcome(passed)).Inc()
	log.Info("validation verdict", zap.String("verdict", outcome(passed)))

	if err := storage.SaveAlignment(ctx, p.artifacts, result.FileKey, result.Alignment); err != nil {
		log.Error("failed to save alignment", zap.Error(err))
		return errorOutput
	}

	err = p.notifier.Notify(ctx, models.VerdictRequest{
		RecordCookie:     result.RecordCookie,
		GraphID:          result.GraphID,
		FileKey:          result.FileKey,
		PassedValidation: passed,
	})
	if err != nil {
		p.metrics.deliveryFailures.Inc()
		log.Warn("verdict not delivered", zap.Error(err))
	} else {
		log.Info("verdict delivered")
	}

	out, err := result.Annotate(passed)
	if err != nil {
		log.Error("failed to encode output", zap.Error(err))
		return errorOutput
	}
	return out
}

// Run processes blocks from in until the stream ends or ctx is cancelled.
// Each output document is written to out followed by a blank line.
func (p *Pipeline) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	reader := NewBlockReader(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		block, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read result stream: %w", err)
		}

		if _, err := fmt.Fprintf(out, "%s\n\n", p.Process(ctx, block)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
}
