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
	"log/slog"

	"github.com/ecoinsight/ecoinsight/ai"
	"github.com/ecoinsight/ecoinsight/core"
	"github.com/ecoinsight/ecoinsight/storage"
)

const (
	defaultDataSource = "OpenAI-compatible LLM + OpenWeatherMap"
	defaultModelUsed  = "qwen2.5:3b"
)

// Composer turns a city's latest observation into a stored narrative artifact.
type Composer struct {
	observations storage.ObservationRepository
	artifacts    storage.ArtifactRepository
	generator    ai.StoryGenerator
	embedder     ai.Embedder
	dataSource   string
	modelUsed    string
	logger       *slog.Logger
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithComposerLogger sets a custom logger.
// Default is slog.Default().
func WithComposerLogger(logger *slog.Logger) ComposerOption {
	return func(c *Composer) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// WithDataSource sets the provenance string recorded on composed artifacts.
func WithDataSource(dataSource string) ComposerOption {
	return func(c *Composer) {
		c.dataSource = dataSource
	}
}

// WithModelUsed sets the model identifier recorded on composed artifacts.
func WithModelUsed(modelUsed string) ComposerOption {
	return func(c *Composer) {
		c.modelUsed = modelUsed
	}
}

// NewComposer creates a new story composer.
func NewComposer(
	observations storage.ObservationRepository,
	artifacts storage.ArtifactRepository,
	generator ai.StoryGenerator,
	embedder ai.Embedder,
	opts ...ComposerOption,
) (*Composer, error) {
	if observations == nil {
		return nil, ErrObservationRepositoryRequired
	}
	if artifacts == nil {
		return nil, ErrArtifactRepositoryRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	c := &Composer{
		observations: observations,
		artifacts:    artifacts,
		generator:    generator,
		embedder:     embedder,
		dataSource:   defaultDataSource,
		modelUsed:    defaultModelUsed,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Compose generates a climate narrative for the city from its most recent
// observation and persists it as an artifact.
//
// A missing observation or a generation failure fails the call. An embedding
// failure does not discard the story: the artifact is stored without a
// vector, leaving it reachable through the lexical path until re-embedded.
func (c *Composer) Compose(ctx context.Context, city string) (*core.Artifact, error) {
	obs, err := c.observations.GetLatestObservation(ctx, city)
	if err != nil {
		return nil, err
	}

	summary := ClimateSummary(obs)
	prompt := ClimatePrompt(city, summary)

	text, err := c.generator.GenerateStory(ctx, prompt)
	if err != nil {
		c.logger.Error("story generation failed", "city", city, "err", err)
		return nil, err
	}

	artifact := &core.Artifact{
		Location:   city,
		Text:       text,
		Summary:    summary,
		DataSource: c.dataSource,
		ModelUsed:  c.modelUsed,
	}

	vector, err := c.embedder.EmbedText(ctx, text)
	if err != nil {
		c.logger.Warn("embedding failed, storing story without vector", "city", city, "err", err)
	} else {
		artifact.Vector = vector
	}

	added, err := c.artifacts.AddArtifacts(ctx, artifact)
	if err != nil {
		c.logger.Error("failed to persist story artifact", "city", city, "err", err)
		return nil, err
	}

	c.logger.Info("story composed",
		"city", city,
		"artifact", added[0].Id,
		"embedded", len(added[0].Vector) > 0)

	return added[0], nil
}
