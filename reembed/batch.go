package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/ecoinsight/ecoinsight/ai"
	"github.com/ecoinsight/ecoinsight/core"
	"github.com/ecoinsight/ecoinsight/storage"
)

// BatchProcessor handles embedding generation for batches of artifacts.
type BatchProcessor struct {
	repo           storage.ArtifactRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.ArtifactRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process generates embeddings for a batch of artifacts and updates them in
// the store. Vectors are normalized after embedding so dot products remain
// equivalent to cosine similarity.
func (bp *BatchProcessor) Process(ctx context.Context, artifacts []*core.Artifact) error {
	if len(artifacts) == 0 {
		return nil
	}

	texts := make([]string, len(artifacts))
	for i, artifact := range artifacts {
		texts[i] = artifact.Text
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(artifacts) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(artifacts), len(embeddings))
	}

	for i := range artifacts {
		artifacts[i].Vector = NormalizeVector(embeddings[i])
	}

	if _, err := bp.repo.UpdateArtifacts(ctx, artifacts...); err != nil {
		return fmt.Errorf("failed to update artifacts: %w", err)
	}

	return nil
}
