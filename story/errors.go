package story

import "errors"

var (
	// ErrObservationRepositoryRequired is returned when an observation repository is not provided.
	ErrObservationRepositoryRequired = errors.New("observation repository required")

	// ErrArtifactRepositoryRequired is returned when an artifact repository is not provided.
	ErrArtifactRepositoryRequired = errors.New("artifact repository required")

	// ErrGeneratorRequired is returned when a story generator is not provided.
	ErrGeneratorRequired = errors.New("story generator required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")
)
