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


package core

import (
	"fmt"
	"time"
)

// ValidateObservation validates an Observation according to domain rules.
//
// Validation rules:
//   - City must not be empty
//   - AQI must be on the 1..5 scale
//   - ObservedAt must not be in the future
//
// NOT validated (populated by storage):
//   - ID (0 is valid from database sequences)
//   - InsertedAt (set at insert time)
func ValidateObservation(obs *Observation) error {
	if obs == nil {
		return fmt.Errorf("%w: observation is nil", ErrInvalidObservation)
	}

	if obs.City == "" {
		return fmt.Errorf("%w: %w", ErrInvalidObservation, ErrEmptyCity)
	}

	if obs.AQI < 1 || obs.AQI > 5 {
		return fmt.Errorf("%w: %w (got %d)", ErrInvalidObservation, ErrInvalidAQI, obs.AQI)
	}

	if !IsValidTimestamp(obs.ObservedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidObservation, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateArtifact validates an Artifact according to domain rules.
//
// Validation rules:
//   - Location must not be empty
//   - Text must not be empty
//
// NOT validated:
//   - Vector (can be empty; such artifacts are similarity-ineligible)
//   - ID (0 is valid; content IDs are assigned at insert time)
func ValidateArtifact(artifact *Artifact) error {
	if artifact == nil {
		return fmt.Errorf("%w: artifact is nil", ErrInvalidArtifact)
	}

	if artifact.Location == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArtifact, ErrEmptyLocation)
	}

	if artifact.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArtifact, ErrEmptyText)
	}

	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
