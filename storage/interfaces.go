package storage

import (
	"context"

	"github.com/ecoinsight/ecoinsight/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ArtifactRepository provides operations for managing generated artifacts.
// The artifact collection is append-only: inserts never overwrite an
// existing artifact with the same identifier.
type ArtifactRepository interface {
	Repository

	// AddArtifacts persists one or more artifacts.
	// Assigns a content-based ID to artifacts with ID=0 and sets CreatedAt
	// if not already set. An artifact whose ID already exists is left
	// untouched (append-only semantics).
	// Returns the artifacts with IDs and timestamps populated.
	AddArtifacts(ctx context.Context, artifacts ...*core.Artifact) ([]*core.Artifact, error)

	// GetArtifact retrieves a single artifact by ID.
	// Returns ErrNotFound if the artifact doesn't exist.
	GetArtifact(ctx context.Context, id core.ID) (*core.Artifact, error)

	// GetArtifactsByLocation retrieves all artifacts for an exact location match.
	GetArtifactsByLocation(ctx context.Context, location string) ([]*core.Artifact, error)

	// GetAllArtifacts retrieves every stored artifact in iteration order.
	// Used by maintenance tooling such as re-embedding.
	GetAllArtifacts(ctx context.Context) ([]*core.Artifact, error)

	// UpdateArtifacts overwrites existing artifacts in place, keyed by ID.
	// The append-only insert rule applies to AddArtifacts; updates are the
	// explicit exception for maintenance operations (re-embedding). Every
	// artifact must already exist; ErrNotFound fails the call.
	UpdateArtifacts(ctx context.Context, artifacts ...*core.Artifact) ([]*core.Artifact, error)

	// FindSimilar finds artifacts similar to the given vector, ranked by
	// descending score, up to limit results. Only artifacts with a non-empty
	// embedding are considered. Returns an empty slice (not an error) when
	// limit <= 0 or no eligible artifact exists.
	//
	// The similarity metric is the dot product over unit-normalized vectors,
	// which is equivalent to cosine similarity for the embedders in this
	// repository.
	FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.ScoredArtifact, error)

	// FindLexical finds artifacts whose Text or Location contains query as a
	// case-insensitive substring, in store iteration order, up to limit
	// results. Returns an empty slice when limit <= 0.
	FindLexical(ctx context.Context, query string, limit int) ([]*core.Artifact, error)

	// CountArtifacts returns the number of stored artifacts.
	CountArtifacts(ctx context.Context) (int, error)

	// SampleArtifact returns one stored artifact in iteration order, or nil
	// if the collection is empty. Used to probe whether the collection has
	// been semantically indexed.
	SampleArtifact(ctx context.Context) (*core.Artifact, error)
}

// ObservationRepository provides operations for managing weather observations.
type ObservationRepository interface {
	Repository

	// AddObservations persists one or more observations in a single call.
	// For observations with ID=0, generates new IDs from sequence and sets
	// InsertedAt. Each observation is validated individually: malformed
	// records are skipped and counted in rejected while valid siblings
	// commit. A storage-level failure fails the whole call.
	AddObservations(ctx context.Context, observations ...*core.Observation) (added []*core.Observation, rejected int, err error)

	// GetObservation retrieves a single observation by ID.
	// Returns ErrNotFound if the observation doesn't exist.
	GetObservation(ctx context.Context, id core.ID) (*core.Observation, error)

	// GetObservationsByCity retrieves all observations for a city,
	// ordered by observation time ascending.
	GetObservationsByCity(ctx context.Context, city string) ([]*core.Observation, error)

	// GetLatestObservation retrieves the most recent observation for a city.
	// Returns core.ErrNoObservations if the city has no observations.
	GetLatestObservation(ctx context.Context, city string) (*core.Observation, error)
}
