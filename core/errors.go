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

import "errors"

// Domain validation errors
var (
	// ErrInvalidObservation indicates an Observation failed validation.
	ErrInvalidObservation = errors.New("invalid observation")

	// ErrInvalidArtifact indicates an Artifact failed validation.
	ErrInvalidArtifact = errors.New("invalid artifact")

	// ErrEmptyCity indicates the City field is empty.
	ErrEmptyCity = errors.New("city cannot be empty")

	// ErrEmptyLocation indicates the Location field is empty.
	ErrEmptyLocation = errors.New("location cannot be empty")

	// ErrEmptyText indicates the Text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrInvalidAQI indicates the AQI value is outside the 1..5 scale.
	ErrInvalidAQI = errors.New("aqi must be between 1 and 5")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrNoObservations indicates no observation exists for the requested city.
	ErrNoObservations = errors.New("no observations for city")
)
