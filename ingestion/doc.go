// Package ingestion fetches per-city environmental observations from the
// upstream weather APIs and persists them.
//
// The CityIngestor orchestrates the three dependent upstream calls for one
// city (geocode, then current conditions and air quality concurrently) and
// yields either a normalized Observation or a tagged IngestionFailure. The
// Coordinator fans the ingestor out over a city list on a bounded worker
// pool, collects successes by city slot, and bulk-persists them in one store
// call. One city's failure never aborts the batch: failures are counted and
// logged, never raised.
package ingestion
