// Copyright 2025 EcoInsight Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package search

import (
	"context"
	"log/slog"

	"github.com/ecoinsight/ecoinsight/ai"
	"github.com/ecoinsight/ecoinsight/core"
	"github.com/ecoinsight/ecoinsight/storage"
)

// Retriever provides hybrid semantic and lexical retrieval over stored artifacts.
//
// Retrieval always prefers the similarity path. Any failure along that path
// (embedding failure, an unindexed collection, a similarity-search error, or
// zero similarity hits) degrades to a lexical substring scan rather than
// failing the request. Only a failure of the lexical fallback itself is
// returned as an error.
type Retriever struct {
	artifacts storage.ArtifactRepository
	embedder  ai.Embedder
	logger    *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a new hybrid retriever.
func NewRetriever(artifacts storage.ArtifactRepository, embedder ai.Embedder, opts ...Option) (*Retriever, error) {
	if artifacts == nil {
		return nil, ErrArtifactRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Retriever{
		artifacts: artifacts,
		embedder:  embedder,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Search retrieves up to k artifacts relevant to the query.
func (r *Retriever) Search(ctx context.Context, query string, k int) (*core.RetrievalOutcome, error) {
	return r.SearchWithMonitor(ctx, query, k, nil)
}

// SearchWithMonitor retrieves up to k artifacts relevant to the query, with
// monitoring. The monitor receives callbacks at each stage of retrieval.
func (r *Retriever) SearchWithMonitor(ctx context.Context, query string, k int, monitor RetrievalMonitor) (*core.RetrievalOutcome, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	if k <= 0 {
		outcome := emptyOutcome()
		monitor.Finish(outcome)
		return outcome, nil
	}

	vector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Warn("embedding failed, degrading to lexical search", "query", query, "err", err)
		return r.fallback(ctx, query, k, monitor, "embedding failed")
	}
	monitor.AfterEmbedding(vector)

	count, err := r.artifacts.CountArtifacts(ctx)
	if err != nil {
		r.logger.Warn("artifact count probe failed, degrading to lexical search", "err", err)
		return r.fallback(ctx, query, k, monitor, "eligibility probe failed")
	}
	if count == 0 {
		// An empty collection is a distinct terminal state, not a
		// fallback: there is nothing for either path to find.
		outcome := emptyOutcome()
		monitor.Finish(outcome)
		return outcome, nil
	}

	sample, err := r.artifacts.SampleArtifact(ctx)
	if err != nil {
		r.logger.Warn("artifact sample probe failed, degrading to lexical search", "err", err)
		return r.fallback(ctx, query, k, monitor, "eligibility probe failed")
	}
	if sample == nil || len(sample.Vector) == 0 {
		r.logger.Debug("collection not semantically indexed, degrading to lexical search")
		return r.fallback(ctx, query, k, monitor, "collection not semantically indexed")
	}

	scored, err := r.artifacts.FindSimilar(ctx, vector, k)
	if err != nil {
		r.logger.Warn("similarity search failed, degrading to lexical search", "err", err)
		return r.fallback(ctx, query, k, monitor, "similarity search failed")
	}
	monitor.AfterSimilaritySearch(len(scored))
	if len(scored) == 0 {
		return r.fallback(ctx, query, k, monitor, "no similarity hits")
	}

	results := make([]core.RetrievalResult, 0, len(scored))
	for _, hit := range scored {
		score := hit.Score
		results = append(results, core.RetrievalResult{
			Location: hit.Artifact.Location,
			Text:     hit.Artifact.Text,
			Summary:  hit.Artifact.Summary,
			Score:    &score,
			Mode:     core.ModeSimilarity,
		})
	}

	outcome := &core.RetrievalOutcome{
		Results: results,
		Mode:    core.ModeSimilarity,
	}
	monitor.Finish(outcome)
	return outcome, nil
}

// fallback runs the lexical path. Unlike the similarity path, an error here
// is terminal.
func (r *Retriever) fallback(ctx context.Context, query string, k int, monitor RetrievalMonitor, reason string) (*core.RetrievalOutcome, error) {
	monitor.FallbackTriggered(reason)

	artifacts, err := r.artifacts.FindLexical(ctx, query, k)
	if err != nil {
		r.logger.Error("lexical search failed", "query", query, "err", err)
		return nil, err
	}

	results := make([]core.RetrievalResult, 0, len(artifacts))
	for _, artifact := range artifacts {
		results = append(results, core.RetrievalResult{
			Location: artifact.Location,
			Text:     artifact.Text,
			Summary:  artifact.Summary,
			Mode:     core.ModeLexical,
		})
	}

	outcome := &core.RetrievalOutcome{
		Results: results,
		Mode:    core.ModeLexical,
	}
	monitor.Finish(outcome)
	return outcome, nil
}

func emptyOutcome() *core.RetrievalOutcome {
	return &core.RetrievalOutcome{
		Results: []core.RetrievalResult{},
		Mode:    core.ModeEmpty,
	}
}
