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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoinsight/ecoinsight/ai/mock"
	"github.com/ecoinsight/ecoinsight/core"
	"github.com/ecoinsight/ecoinsight/storage"
	"github.com/ecoinsight/ecoinsight/storage/badger"
)

// flakyArtifacts wraps an ArtifactRepository with injectable failures and
// call counters for exercising the degradation paths.
type flakyArtifacts struct {
	storage.ArtifactRepository

	findSimilarErr   error
	findSimilarEmpty bool
	findLexicalErr   error
	countErr         error

	countCalls       int
	sampleCalls      int
	findSimilarCalls int
	findLexicalCalls int
}

func (f *flakyArtifacts) CountArtifacts(ctx context.Context) (int, error) {
	f.countCalls++
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.ArtifactRepository.CountArtifacts(ctx)
}

func (f *flakyArtifacts) SampleArtifact(ctx context.Context) (*core.Artifact, error) {
	f.sampleCalls++
	return f.ArtifactRepository.SampleArtifact(ctx)
}

func (f *flakyArtifacts) FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.ScoredArtifact, error) {
	f.findSimilarCalls++
	if f.findSimilarErr != nil {
		return nil, f.findSimilarErr
	}
	if f.findSimilarEmpty {
		return []*core.ScoredArtifact{}, nil
	}
	return f.ArtifactRepository.FindSimilar(ctx, vector, limit)
}

func (f *flakyArtifacts) FindLexical(ctx context.Context, query string, limit int) ([]*core.Artifact, error) {
	f.findLexicalCalls++
	if f.findLexicalErr != nil {
		return nil, f.findLexicalErr
	}
	return f.ArtifactRepository.FindLexical(ctx, query, limit)
}

// countingMonitor records which retrieval hooks fired.
type countingMonitor struct {
	started         bool
	embeddings      int
	similarityHits  int
	fallbackReasons []string
	finished        *core.RetrievalOutcome
}

func (m *countingMonitor) Start(_ string)                 { m.started = true }
func (m *countingMonitor) AfterEmbedding(_ []float32)     { m.embeddings++ }
func (m *countingMonitor) AfterSimilaritySearch(hits int) { m.similarityHits = hits }
func (m *countingMonitor) FallbackTriggered(reason string) {
	m.fallbackReasons = append(m.fallbackReasons, reason)
}
func (m *countingMonitor) Finish(outcome *core.RetrievalOutcome) { m.finished = outcome }

func newTestRepositories(t *testing.T) (storage.ArtifactRepository, *mock.MockEmbedder) {
	t.Helper()

	artifacts, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	return artifacts, mock.NewMockEmbedder()
}

// seedArtifacts stores one artifact per text, embedded with the mock embedder
// so a query with the identical text scores 1.0 against it.
func seedArtifacts(t *testing.T, artifacts storage.ArtifactRepository, embedder *mock.MockEmbedder, embedded bool, texts ...string) {
	t.Helper()
	ctx := context.Background()

	for _, text := range texts {
		artifact := &core.Artifact{
			Location: "Lisbon",
			Text:     text,
			Summary:  "summary of " + text,
		}
		if embedded {
			vector, err := embedder.EmbedText(ctx, text)
			require.NoError(t, err)
			artifact.Vector = vector
		}
		_, err := artifacts.AddArtifacts(ctx, artifact)
		require.NoError(t, err)
	}
}

func TestNewRetrieverValidation(t *testing.T) {
	artifacts, embedder := newTestRepositories(t)

	_, err := NewRetriever(nil, embedder)
	assert.ErrorIs(t, err, ErrArtifactRepositoryRequired)

	_, err = NewRetriever(artifacts, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestSearchNonPositiveK(t *testing.T) {
	artifacts, embedder := newTestRepositories(t)
	seedArtifacts(t, artifacts, embedder, true, "hot and dry in Lisbon")

	flaky := &flakyArtifacts{ArtifactRepository: artifacts}
	retriever, err := NewRetriever(flaky, embedder)
	require.NoError(t, err)

	outcome, err := retriever.Search(context.Background(), "Lisbon", 0)
	require.NoError(t, err)
	assert.Equal(t, core.ModeEmpty, outcome.Mode)
	assert.Empty(t, outcome.Results)
	assert.Zero(t, flaky.countCalls)
	assert.Zero(t, flaky.findSimilarCalls)
	assert.Zero(t, flaky.findLexicalCalls)
}

func TestSearchEmptyCollection(t *testing.T) {
	artifacts, embedder := newTestRepositories(t)

	retriever, err := NewRetriever(artifacts, embedder)
	require.NoError(t, err)

	monitor := &countingMonitor{}
	outcome, err := retriever.SearchWithMonitor(context.Background(), "anything", 5, monitor)
	require.NoError(t, err)

	assert.Equal(t, core.ModeEmpty, outcome.Mode)
	assert.Empty(t, outcome.Results)
	assert.Empty(t, monitor.fallbackReasons)
	assert.NotNil(t, monitor.finished)
}

func TestSearchSimilarityPath(t *testing.T) {
	artifacts, embedder := newTestRepositories(t)
	seedArtifacts(t, artifacts, embedder, true,
		"heatwave warnings across the Alentejo",
		"steady Atlantic drizzle over Porto",
		"clear skies and low pollen in Faro",
	)

	retriever, err := NewRetriever(artifacts, embedder)
	require.NoError(t, err)

	monitor := &countingMonitor{}
	outcome, err := retriever.SearchWithMonitor(context.Background(), "heatwave warnings across the Alentejo", 2, monitor)
	require.NoError(t, err)

	assert.Equal(t, core.ModeSimilarity, outcome.Mode)
	require.Len(t, outcome.Results, 2)

	// Exact text match embeds to the identical vector: top score is 1.0.
	top := outcome.Results[0]
	assert.Equal(t, "heatwave warnings across the Alentejo", top.Text)
	assert.Equal(t, core.ModeSimilarity, top.Mode)
	require.NotNil(t, top.Score)
	assert.InDelta(t, 1.0, float64(*top.Score), 0.001)

	// Scores present on every result and ranked descending.
	require.NotNil(t, outcome.Results[1].Score)
	assert.GreaterOrEqual(t, *top.Score, *outcome.Results[1].Score)

	assert.Equal(t, 1, monitor.embeddings)
	assert.Equal(t, 2, monitor.similarityHits)
	assert.Empty(t, monitor.fallbackReasons)
}

func TestSearchFallsBackWhenUnindexed(t *testing.T) {
	artifacts, embedder := newTestRepositories(t)
	seedArtifacts(t, artifacts, embedder, false,
		"dense smog settled over the river valley",
		"air quality improving after the rain",
	)

	retriever, err := NewRetriever(artifacts, embedder)
	require.NoError(t, err)

	monitor := &countingMonitor{}
	outcome, err := retriever.SearchWithMonitor(context.Background(), "smog", 5, monitor)
	require.NoError(t, err)

	assert.Equal(t, core.ModeLexical, outcome.Mode)
	require.Len(t, outcome.Results, 1)
	assert.Equal(t, "dense smog settled over the river valley", outcome.Results[0].Text)
	assert.Equal(t, core.ModeLexical, outcome.Results[0].Mode)
	assert.Nil(t, outcome.Results[0].Score)
	assert.Equal(t, []string{"collection not semantically indexed"}, monitor.fallbackReasons)
}

func TestSearchFallsBackOnEmbeddingError(t *testing.T) {
	artifacts, embedder := newTestRepositories(t)
	seedArtifacts(t, artifacts, embedder, true, "pollen counts rising in the north")

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}

	retriever, err := NewRetriever(artifacts, embedder)
	require.NoError(t, err)

	monitor := &countingMonitor{}
	outcome, err := retriever.SearchWithMonitor(context.Background(), "pollen", 5, monitor)
	require.NoError(t, err)

	assert.Equal(t, core.ModeLexical, outcome.Mode)
	require.Len(t, outcome.Results, 1)
	assert.Equal(t, []string{"embedding failed"}, monitor.fallbackReasons)
}

func TestSearchFallsBackOnSimilarityError(t *testing.T) {
	artifacts, embedder := newTestRepositories(t)
	seedArtifacts(t, artifacts, embedder, true, "wind picking up along the coast")

	flaky := &flakyArtifacts{
		ArtifactRepository: artifacts,
		findSimilarErr:     errors.New("index unavailable"),
	}
	retriever, err := NewRetriever(flaky, embedder)
	require.NoError(t, err)

	monitor := &countingMonitor{}
	outcome, err := retriever.SearchWithMonitor(context.Background(), "coast", 5, monitor)
	require.NoError(t, err)

	assert.Equal(t, core.ModeLexical, outcome.Mode)
	require.Len(t, outcome.Results, 1)
	assert.Equal(t, []string{"similarity search failed"}, monitor.fallbackReasons)
	assert.Equal(t, 1, flaky.findLexicalCalls)
}

func TestSearchFallsBackOnZeroSimilarityHits(t *testing.T) {
	artifacts, embedder := newTestRepositories(t)
	seedArtifacts(t, artifacts, embedder, true, "fog lifting over the estuary")

	flaky := &flakyArtifacts{
		ArtifactRepository: artifacts,
		findSimilarEmpty:   true,
	}
	retriever, err := NewRetriever(flaky, embedder)
	require.NoError(t, err)

	monitor := &countingMonitor{}
	outcome, err := retriever.SearchWithMonitor(context.Background(), "estuary", 5, monitor)
	require.NoError(t, err)

	assert.Equal(t, core.ModeLexical, outcome.Mode)
	require.Len(t, outcome.Results, 1)
	assert.Equal(t, []string{"no similarity hits"}, monitor.fallbackReasons)
}

func TestSearchLexicalErrorIsTerminal(t *testing.T) {
	artifacts, embedder := newTestRepositories(t)
	seedArtifacts(t, artifacts, embedder, false, "rain expected through the weekend")

	lexicalErr := errors.New("store unreachable")
	flaky := &flakyArtifacts{
		ArtifactRepository: artifacts,
		findLexicalErr:     lexicalErr,
	}
	retriever, err := NewRetriever(flaky, embedder)
	require.NoError(t, err)

	outcome, err := retriever.Search(context.Background(), "rain", 5)
	assert.ErrorIs(t, err, lexicalErr)
	assert.Nil(t, outcome)
}

func TestSearchNoMatchesInEitherPath(t *testing.T) {
	artifacts, embedder := newTestRepositories(t)
	seedArtifacts(t, artifacts, embedder, false, "calm conditions inland")

	retriever, err := NewRetriever(artifacts, embedder)
	require.NoError(t, err)

	outcome, err := retriever.Search(context.Background(), "blizzard", 5)
	require.NoError(t, err)

	assert.Equal(t, core.ModeLexical, outcome.Mode)
	assert.Empty(t, outcome.Results)
}
