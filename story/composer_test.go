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


package story

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoinsight/ecoinsight/ai/mock"
	"github.com/ecoinsight/ecoinsight/core"
	"github.com/ecoinsight/ecoinsight/storage"
	"github.com/ecoinsight/ecoinsight/storage/badger"
)

func newComposerFixture(t *testing.T) (*Composer, storage.ObservationRepository, storage.ArtifactRepository, *mock.MockEmbedder, *mock.MockStoryGenerator) {
	t.Helper()

	artifacts, observations, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	embedder := mock.NewMockEmbedder()
	generator := mock.NewMockStoryGenerator()

	composer, err := NewComposer(observations, artifacts, generator, embedder)
	require.NoError(t, err)

	return composer, observations, artifacts, embedder, generator
}

func seedObservation(t *testing.T, observations storage.ObservationRepository, city string, observedAt time.Time) {
	t.Helper()

	added, rejected, err := observations.AddObservations(context.Background(), &core.Observation{
		City:        city,
		Temperature: 24.5,
		Condition:   "few clouds",
		Humidity:    48,
		WindSpeed:   2.8,
		AQI:         2,
		PM25:        6.4,
		PM10:        11.9,
		ObservedAt:  observedAt,
	})
	require.NoError(t, err)
	require.Zero(t, rejected)
	require.Len(t, added, 1)
}

func TestNewComposerValidation(t *testing.T) {
	artifacts, observations, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	embedder := mock.NewMockEmbedder()
	generator := mock.NewMockStoryGenerator()

	_, err = NewComposer(nil, artifacts, generator, embedder)
	assert.ErrorIs(t, err, ErrObservationRepositoryRequired)
	_, err = NewComposer(observations, nil, generator, embedder)
	assert.ErrorIs(t, err, ErrArtifactRepositoryRequired)
	_, err = NewComposer(observations, artifacts, nil, embedder)
	assert.ErrorIs(t, err, ErrGeneratorRequired)
	_, err = NewComposer(observations, artifacts, generator, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestComposeStoresEmbeddedArtifact(t *testing.T) {
	composer, observations, artifacts, _, _ := newComposerFixture(t)
	seedObservation(t, observations, "Lisbon", time.Now().Add(-time.Hour))

	artifact, err := composer.Compose(context.Background(), "Lisbon")
	require.NoError(t, err)

	assert.Equal(t, "Lisbon", artifact.Location)
	assert.NotEmpty(t, artifact.Text)
	assert.Contains(t, artifact.Summary, "few clouds")
	assert.NotZero(t, artifact.Id)
	assert.NotEmpty(t, artifact.Vector)
	assert.NotEmpty(t, artifact.DataSource)
	assert.NotEmpty(t, artifact.ModelUsed)

	stored, err := artifacts.GetArtifactsByLocation(context.Background(), "Lisbon")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, artifact.Id, stored[0].Id)
}

func TestComposeUsesLatestObservation(t *testing.T) {
	composer, observations, _, _, generator := newComposerFixture(t)

	base := time.Now().Add(-24 * time.Hour)
	seedObservation(t, observations, "Porto", base)

	// A fresher reading with distinct conditions.
	added, rejected, err := observations.AddObservations(context.Background(), &core.Observation{
		City:        "Porto",
		Temperature: 17.0,
		Condition:   "heavy rain",
		Humidity:    91,
		WindSpeed:   9.5,
		AQI:         1,
		ObservedAt:  base.Add(12 * time.Hour),
	})
	require.NoError(t, err)
	require.Zero(t, rejected)
	require.Len(t, added, 1)

	var capturedPrompt string
	generator.GenerateStoryFunc = func(ctx context.Context, prompt string) (string, error) {
		capturedPrompt = prompt
		return "a rainy day story", nil
	}

	_, err = composer.Compose(context.Background(), "Porto")
	require.NoError(t, err)

	assert.Contains(t, capturedPrompt, "heavy rain")
	assert.NotContains(t, capturedPrompt, "few clouds")
	assert.Contains(t, capturedPrompt, "residents of Porto")
}

func TestComposeUnknownCity(t *testing.T) {
	composer, _, _, _, _ := newComposerFixture(t)

	_, err := composer.Compose(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, core.ErrNoObservations)
}

func TestComposeGenerationFailure(t *testing.T) {
	composer, observations, artifacts, _, generator := newComposerFixture(t)
	seedObservation(t, observations, "Faro", time.Now().Add(-time.Hour))

	wantErr := errors.New("model overloaded")
	generator.GenerateStoryFunc = func(ctx context.Context, prompt string) (string, error) {
		return "", wantErr
	}

	_, err := composer.Compose(context.Background(), "Faro")
	assert.ErrorIs(t, err, wantErr)

	count, err := artifacts.CountArtifacts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count, "failed generation must not persist an artifact")
}

func TestComposeEmbeddingFailureStoresUnembedded(t *testing.T) {
	composer, observations, artifacts, embedder, _ := newComposerFixture(t)
	seedObservation(t, observations, "Braga", time.Now().Add(-time.Hour))

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}

	artifact, err := composer.Compose(context.Background(), "Braga")
	require.NoError(t, err)
	assert.Empty(t, artifact.Vector)

	stored, err := artifacts.GetArtifact(context.Background(), artifact.Id)
	require.NoError(t, err)
	assert.Empty(t, stored.Vector)
	assert.Equal(t, artifact.Text, stored.Text)
}

func TestClimatePromptShape(t *testing.T) {
	prompt := ClimatePrompt("Lisbon", "- Temperature: 24.5°C")

	assert.True(t, strings.Contains(prompt, "climate communication expert"))
	assert.True(t, strings.Contains(prompt, "- Temperature: 24.5°C"))
	assert.True(t, strings.Contains(prompt, "under 300 words"))
	assert.Equal(t, 2, strings.Count(prompt, "Lisbon"))
}
