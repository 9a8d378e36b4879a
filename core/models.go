package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Observation is one normalized weather and air-quality snapshot for a city
// at a point in time. Observations are append-only and never mutated.
type Observation struct {
	Id          ID
	City        string
	Temperature float64 // degrees Celsius
	Condition   string  // e.g. "scattered clouds"
	Humidity    int     // percent
	WindSpeed   float64 // m/s
	AQI         int     // air quality index, 1 (Good) to 5 (Very Poor)
	PM25        float64
	PM10        float64
	CO          float64
	NO2         float64
	O3          float64
	ObservedAt  time.Time // when the upstream API produced the reading
	InsertedAt  time.Time // when the record was inserted into the database
}

// Artifact is a generated, embeddable unit of text plus its metadata, stored
// for later retrieval. An artifact with an empty Vector is a legal record that
// is simply ineligible for similarity search.
type Artifact struct {
	Id         ID
	Location   string
	Text       string
	Summary    string // observation-shaped snapshot the text was derived from
	DataSource string
	ModelUsed  string
	CreatedAt  time.Time
	Vector     []float32 // embedding for semantic search, may be empty
}

// ContentID returns the deterministic content-based ID for the artifact.
func (a *Artifact) ContentID() ID {
	return IDFromContent(a.Location + "\x00" + a.Text + "\x00" + a.CreatedAt.UTC().Format(time.RFC3339Nano))
}

// IngestionStage identifies which upstream call failed during city ingestion.
type IngestionStage int

const (
	// StageGeocode is the city-to-coordinates lookup.
	StageGeocode IngestionStage = iota + 1
	// StageWeather is the current-conditions call.
	StageWeather
	// StageAirQuality is the air-pollution call.
	StageAirQuality
	// StageTransport covers failures with no attributable endpoint,
	// such as connection errors before any stage produced a response.
	StageTransport
)

// String returns the stage name used in failure reports.
func (s IngestionStage) String() string {
	switch s {
	case StageGeocode:
		return "geocode"
	case StageWeather:
		return "weather"
	case StageAirQuality:
		return "air_quality"
	case StageTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// IngestionFailure describes why one city failed to produce an Observation.
// Failures exist only for the duration of one coordinator run and are never
// persisted alongside successful data.
type IngestionFailure struct {
	City  string
	Stage IngestionStage
	Cause string
}

// SearchMode identifies which retrieval strategy produced a result.
type SearchMode int

const (
	// ModeSimilarity means the result came from vector similarity search.
	ModeSimilarity SearchMode = iota + 1
	// ModeLexical means the result came from the lexical fallback.
	ModeLexical
	// ModeEmpty marks an outcome produced without running either search,
	// such as an empty index or a non-positive result cap.
	ModeEmpty
)

// String returns the mode name used in retrieval outcomes.
func (m SearchMode) String() string {
	switch m {
	case ModeSimilarity:
		return "similarity"
	case ModeLexical:
		return "lexical"
	case ModeEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// RetrievalResult is one normalized hit from either retrieval path.
// Score is non-nil only for similarity-mode results.
type RetrievalResult struct {
	Location string
	Text     string
	Summary  string
	Score    *float32
	Mode     SearchMode
}

// RetrievalOutcome is the terminal state of one hybrid retrieval request.
// Mode records which strategy produced the results; ModeEmpty marks an
// explicit empty outcome rather than an error.
type RetrievalOutcome struct {
	Results []RetrievalResult
	Mode    SearchMode
}

// ScoredArtifact is an artifact match from vector similarity search.
type ScoredArtifact struct {
	Artifact *Artifact
	Score    float32
}
