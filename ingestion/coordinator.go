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


package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/ecoinsight/ecoinsight/core"
	"github.com/ecoinsight/ecoinsight/storage"
)

// IngestReport summarizes one coordinator run.
type IngestReport struct {
	// Stored is the number of observations committed to the store.
	Stored int
	// Rejected is the number of observations the store refused individually
	// (malformed records); their siblings still commit.
	Rejected int
	// Failures lists the cities that produced no observation, tagged with
	// the upstream stage that failed.
	Failures []core.IngestionFailure
}

// Coordinator fans a CityIngestor out over a city list on a bounded worker
// pool and bulk-persists the successful subset in one store call.
//
// Per-city failures are isolated: they are logged and reported in the
// IngestReport but never returned as an error. Only a store-level failure of
// the final bulk insert fails the batch, in which case nothing was committed
// and the whole run may safely be repeated (append-only, duplicate-tolerant).
type Coordinator struct {
	ingestor     *CityIngestor
	observations storage.ObservationRepository
	pool         *ants.Pool
	logger       *slog.Logger
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator) error

// WithPoolSize sets the worker pool size for concurrent city ingestion.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithPoolSize(size int) CoordinatorOption {
	return func(c *Coordinator) error {
		if size < 1 {
			size = 1
		}
		if c.pool != nil {
			c.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		c.pool = pool
		return nil
	}
}

// WithCoordinatorLogger sets a custom logger.
// Default is slog.Default().
func WithCoordinatorLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCoordinator creates a new batch ingestion coordinator.
func NewCoordinator(ingestor *CityIngestor, observations storage.ObservationRepository, opts ...CoordinatorOption) (*Coordinator, error) {
	if ingestor == nil {
		return nil, ErrIngestorRequired
	}
	if observations == nil {
		return nil, ErrObservationRepositoryRequired
	}

	poolSize := runtime.NumCPU()
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	c := &Coordinator{
		ingestor:     ingestor,
		observations: observations,
		pool:         pool,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if optErr := opt(c); optErr != nil {
			c.Release()
			return nil, optErr
		}
	}
	return c, nil
}

// IngestAll runs one ingestion batch over the given city list. Duplicates are
// permitted and treated independently. The call waits for every city to
// complete; a slow or failing city does not abort faster-completing peers.
//
// Results are accumulated by city slot, not completion order, so failure
// reporting stays unambiguous per city.
func (c *Coordinator) IngestAll(ctx context.Context, cities []string) (*IngestReport, error) {
	observations := make([]*core.Observation, len(cities))
	failures := make([]*core.IngestionFailure, len(cities))

	var wg sync.WaitGroup
	for i, city := range cities {
		wg.Add(1)
		err := c.pool.Submit(func() {
			defer wg.Done()
			observations[i], failures[i] = c.ingestor.Ingest(ctx, city)
		})
		if err != nil {
			wg.Done()
			failures[i] = &core.IngestionFailure{
				City:  city,
				Stage: core.StageTransport,
				Cause: err.Error(),
			}
		}
	}
	wg.Wait()

	report := &IngestReport{}
	succeeded := make([]*core.Observation, 0, len(cities))
	for i := range cities {
		if failures[i] != nil {
			c.logger.Warn("city ingestion failed",
				"city", failures[i].City,
				"stage", failures[i].Stage.String(),
				"cause", failures[i].Cause)
			report.Failures = append(report.Failures, *failures[i])
			continue
		}
		succeeded = append(succeeded, observations[i])
	}

	// With zero successes the store call is skipped entirely; the batch
	// still completes from the caller's perspective.
	if len(succeeded) > 0 {
		added, rejected, err := c.observations.AddObservations(ctx, succeeded...)
		if err != nil {
			return nil, err
		}
		report.Stored = len(added)
		report.Rejected = rejected
	}

	c.logger.Info("ingestion batch complete",
		"cities", len(cities),
		"stored", report.Stored,
		"rejected", report.Rejected,
		"failed", len(report.Failures))

	return report, nil
}

// Release releases the worker pool.
// The coordinator should not be used after calling Release.
func (c *Coordinator) Release() {
	if c.pool != nil {
		c.pool.Release()
	}
}
