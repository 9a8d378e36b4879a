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


package upstream

import "errors"

var (
	// ErrAPIKeyRequired is returned when a client is created without an API key.
	ErrAPIKeyRequired = errors.New("api key required")

	// ErrCityNotFound indicates the upstream geocoder could not resolve the city.
	ErrCityNotFound = errors.New("city not found")

	// ErrUpstreamStatus indicates a non-success status from the upstream API.
	ErrUpstreamStatus = errors.New("upstream returned non-success status")

	// ErrMalformedResponse indicates a response missing required fields.
	ErrMalformedResponse = errors.New("malformed upstream response")
)
