package ingestion

import "errors"

var (
	// ErrConditionsSourceRequired is returned when a conditions source is not provided.
	ErrConditionsSourceRequired = errors.New("conditions source required")

	// ErrIngestorRequired is returned when a city ingestor is not provided.
	ErrIngestorRequired = errors.New("city ingestor required")

	// ErrObservationRepositoryRequired is returned when an observation repository is not provided.
	ErrObservationRepositoryRequired = errors.New("observation repository required")
)
