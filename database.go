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


package ecoinsight

import (
	"log/slog"

	"github.com/ecoinsight/ecoinsight/ai"
	"github.com/ecoinsight/ecoinsight/ai/openai"
	"github.com/ecoinsight/ecoinsight/ingestion"
	"github.com/ecoinsight/ecoinsight/search"
	"github.com/ecoinsight/ecoinsight/storage"
	"github.com/ecoinsight/ecoinsight/storage/badger"
	"github.com/ecoinsight/ecoinsight/story"
	"github.com/ecoinsight/ecoinsight/upstream"
)

// Database bundles the storage backend, repositories, and AI provider, and
// acts as the factory for the ingestion, retrieval, and composition services.
type Database struct {
	backend         *badger.Backend
	artifactRepo    storage.ArtifactRepository
	observationRepo storage.ObservationRepository
	provider        ai.Provider
	logger          *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
	inMemory bool
}

// WithAIConfig sets the AI service configuration used to build the provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithAIProvider injects a prebuilt AI provider instead of constructing the
// OpenAI-compatible one. Used by tests to supply mocks.
func WithAIProvider(provider ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemoryStorage opens the backend without disk persistence.
func WithInMemoryStorage() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens the storage backend at filePath and wires repositories
// and the AI provider.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	artifactRepo, err := badger.NewArtifactRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	observationRepo, err := badger.NewObservationRepository(backend)
	if err != nil {
		artifactRepo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			observationRepo.Close()
			artifactRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:         backend,
		artifactRepo:    artifactRepo,
		observationRepo: observationRepo,
		provider:        provider,
		logger:          slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.observationRepo.Close(); err != nil {
		db.logger.Error("error closing observation repository", "err", err)
		return err
	}
	if err := db.artifactRepo.Close(); err != nil {
		db.logger.Error("error closing artifact repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) ArtifactRepository() storage.ArtifactRepository {
	return db.artifactRepo
}

func (db *Database) ObservationRepository() storage.ObservationRepository {
	return db.observationRepo
}

// NewIngestor builds a city ingestor over the given upstream source.
func (db *Database) NewIngestor(source ingestion.ConditionsSource, opts ...ingestion.IngestorOption) (*ingestion.CityIngestor, error) {
	return ingestion.NewCityIngestor(source, opts...)
}

// NewCoordinator builds a batch coordinator for the given upstream API key.
func (db *Database) NewCoordinator(apiKey string, opts ...ingestion.CoordinatorOption) (*ingestion.Coordinator, error) {
	client, err := upstream.NewClient(apiKey)
	if err != nil {
		return nil, err
	}
	ingestor, err := ingestion.NewCityIngestor(client)
	if err != nil {
		return nil, err
	}
	return ingestion.NewCoordinator(ingestor, db.observationRepo, opts...)
}

// NewRetriever builds a hybrid retriever over the artifact store.
func (db *Database) NewRetriever(opts ...search.Option) (*search.Retriever, error) {
	return search.NewRetriever(db.artifactRepo, db.provider.Embedder(), opts...)
}

// NewComposer builds a story composer over both repositories.
func (db *Database) NewComposer(opts ...story.ComposerOption) (*story.Composer, error) {
	return story.NewComposer(db.observationRepo, db.artifactRepo, db.provider.StoryGenerator(), db.provider.Embedder(), opts...)
}
