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


package openai

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ecoinsight/ecoinsight/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrEmptyGeneration indicates the model returned no usable output.
var ErrEmptyGeneration = errors.New("model returned empty generation")

// StoryGenerator implements ai.StoryGenerator using OpenAI-compatible chat APIs.
type StoryGenerator struct {
	client      llms.Model
	temperature float64
	logger      *slog.Logger
}

// newStoryGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newStoryGenerator(config *ai.Config) (*StoryGenerator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't
	// require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.GeneratorHost),
		openai.WithToken("none"),
		openai.WithModel(config.GeneratorModel),
	)
	if err != nil {
		return nil, err
	}

	return &StoryGenerator{
		client:      client,
		temperature: config.Temperature,
		logger:      slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewStoryGenerator creates a new story generator using the provided configuration.
//
// Returns ai.StoryGenerator interface to enforce abstraction.
func NewStoryGenerator(config *ai.Config) (ai.StoryGenerator, error) {
	return newStoryGenerator(config)
}

// GenerateStory sends the prompt to the model and returns the generated text.
// The prompt carries all instructions; no system message is added here.
func (g *StoryGenerator) GenerateStory(ctx context.Context, prompt string) (string, error) {
	g.logger.Debug("generating story", "prompt_length", len(prompt))

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
			},
		},
	}

	response, err := g.client.GenerateContent(ctx, content, llms.WithTemperature(g.temperature))
	if err != nil {
		g.logger.Error("failed to generate story", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		g.logger.Warn("no choices returned from model")
		return "", ErrEmptyGeneration
	}

	story := strings.TrimSpace(response.Choices[0].Content)
	if story == "" {
		return "", ErrEmptyGeneration
	}

	return story, nil
}
