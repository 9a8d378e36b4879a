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


// Package ai provides abstractions for AI services used in EcoInsight.
//
// This package defines interfaces for AI operations including text embeddings
// and narrative generation. It follows the dependency inversion principle,
// allowing the retrieval and composition logic to depend on abstractions
// rather than concrete implementations.
//
// The package is designed around three interfaces:
//
//   - Embedder: generates vector embeddings from text
//   - StoryGenerator: produces narrative text from a rendered prompt
//   - Provider: aggregates AI services for convenient initialization
//
// Two implementation sub-packages exist:
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external dependencies
//
// Public production constructors (openai.NewProvider, openai.NewEmbedder)
// return interface types to enforce abstraction. Mock constructors return
// concrete types so tests can inject behavior and assert call counts.
//
// Usage:
//
//	config := ai.NewConfig(ai.WithHost("http://localhost:11434"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "heat index in Lisbon")
//	story, err := provider.StoryGenerator().GenerateStory(ctx, prompt)
package ai
