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


package reembed

import (
	"context"

	"github.com/ecoinsight/ecoinsight/core"
	"github.com/ecoinsight/ecoinsight/storage"
)

const (
	// DefaultBatchSize is the default number of artifacts to process per batch
	DefaultBatchSize = 100
)

// ArtifactIterator iterates over stored artifacts in batches.
type ArtifactIterator struct {
	repo        storage.ArtifactRepository
	batchSize   int
	onlyMissing bool
}

// NewArtifactIterator creates a new artifact iterator.
// When onlyMissing is true, only artifacts without a vector are visited;
// otherwise every artifact is visited.
func NewArtifactIterator(repo storage.ArtifactRepository, batchSize int, onlyMissing bool) *ArtifactIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &ArtifactIterator{
		repo:        repo,
		batchSize:   batchSize,
		onlyMissing: onlyMissing,
	}
}

// Count returns the number of artifacts the iterator will visit.
func (it *ArtifactIterator) Count(ctx context.Context) (int, error) {
	artifacts, err := it.eligible(ctx)
	if err != nil {
		return 0, err
	}
	return len(artifacts), nil
}

// ForEach visits eligible artifacts, calling fn for each batch.
// Iteration stops on first error from fn or when all artifacts are visited.
// Context cancellation is checked between batches.
func (it *ArtifactIterator) ForEach(ctx context.Context, fn func([]*core.Artifact) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	artifacts, err := it.eligible(ctx)
	if err != nil {
		return err
	}

	for i := 0; i < len(artifacts); i += it.batchSize {
		end := i + it.batchSize
		if end > len(artifacts) {
			end = len(artifacts)
		}

		if err := fn(artifacts[i:end]); err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	return nil
}

func (it *ArtifactIterator) eligible(ctx context.Context) ([]*core.Artifact, error) {
	artifacts, err := it.repo.GetAllArtifacts(ctx)
	if err != nil {
		return nil, err
	}
	if !it.onlyMissing {
		return artifacts, nil
	}

	missing := make([]*core.Artifact, 0, len(artifacts))
	for _, artifact := range artifacts {
		if len(artifact.Vector) == 0 {
			missing = append(missing, artifact)
		}
	}
	return missing, nil
}
