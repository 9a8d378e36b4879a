package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/ecoinsight/ecoinsight/core"
)

// Key prefixes for different data types
const (
	artifactPrefix         = "artrec"
	artifactLocationPrefix = "artloc"
	observationPrefix      = "obsrec"
	observationCityPrefix  = "obscity"
	observationIDSeq       = "obsseq"
)

// makeArtifactKey generates a key for an artifact by ID.
func makeArtifactKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", artifactPrefix, id))
}

// makeArtifactLocationKey generates a composite key for the location index.
// Format: prefix:location\x00id
func makeArtifactLocationKey(location string, id core.ID) []byte {
	prefix := artifactLocationPrefix + ":"
	totalSize := len(prefix) + len(location) + 1 + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefix)
	offset += copy(buf[offset:], location)
	offset++ // NUL separator keeps "Paris" from matching "Parisot"
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialArtifactLocationKey generates a partial key for location queries.
func makePartialArtifactLocationKey(location string) []byte {
	prefix := artifactLocationPrefix + ":"
	totalSize := len(prefix) + len(location) + 1
	buf := make([]byte, totalSize)
	offset := copy(buf, prefix)
	copy(buf[offset:], location)
	return buf
}

// makeObservationKey generates a key for an observation by ID.
func makeObservationKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", observationPrefix, id))
}

// makeObservationCityKey generates a composite key for the city index.
// Format: prefix:city\x00timestamp:id
func makeObservationCityKey(city string, observedAt time.Time, id core.ID) []byte {
	prefix := observationCityPrefix + ":"
	totalSize := len(prefix) + len(city) + 1 + 16
	buf := make([]byte, totalSize)
	offset := copy(buf, prefix)
	offset += copy(buf[offset:], city)
	offset++ // NUL separator
	// BigEndian so lexicographic iteration follows observation time
	binary.BigEndian.PutUint64(buf[offset:], uint64(observedAt.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialObservationCityKey generates a partial key for city queries.
func makePartialObservationCityKey(city string) []byte {
	prefix := observationCityPrefix + ":"
	totalSize := len(prefix) + len(city) + 1
	buf := make([]byte, totalSize)
	offset := copy(buf, prefix)
	copy(buf[offset:], city)
	return buf
}
