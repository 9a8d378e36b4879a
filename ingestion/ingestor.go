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
	"errors"
	"log/slog"

	"github.com/ecoinsight/ecoinsight/core"
	"github.com/ecoinsight/ecoinsight/upstream"
	"golang.org/x/sync/errgroup"
)

// ConditionsSource provides the three upstream readings a city observation is
// built from. *upstream.Client satisfies this interface.
type ConditionsSource interface {
	Geocode(ctx context.Context, city string) (upstream.Coordinates, error)
	CurrentConditions(ctx context.Context, city string) (upstream.WeatherSnapshot, error)
	AirQuality(ctx context.Context, lat, lon float64) (upstream.AirSnapshot, error)
}

// CityIngestor orchestrates the dependent upstream calls for one city.
// All three calls must succeed for the city to yield an Observation; any
// single failure short-circuits the remaining calls and yields a failure
// tagged with the stage that failed. The ingestor never touches the store
// and never panics on upstream errors.
type CityIngestor struct {
	source ConditionsSource
	logger *slog.Logger
}

// IngestorOption configures a CityIngestor.
type IngestorOption func(*CityIngestor)

// WithIngestorLogger sets a custom logger.
// Default is slog.Default().
func WithIngestorLogger(logger *slog.Logger) IngestorOption {
	return func(ci *CityIngestor) {
		if logger == nil {
			logger = slog.Default()
		}
		ci.logger = logger
	}
}

// NewCityIngestor creates a new city ingestor.
func NewCityIngestor(source ConditionsSource, opts ...IngestorOption) (*CityIngestor, error) {
	if source == nil {
		return nil, ErrConditionsSourceRequired
	}

	ci := &CityIngestor{
		source: source,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(ci)
	}
	return ci, nil
}

// Ingest fetches geocode, weather, and air-quality readings for one city and
// assembles an Observation. Exactly one of the two returns is non-nil.
//
// Geocoding runs first; once coordinates are known, the weather and
// air-quality calls run concurrently since neither depends on the other.
func (ci *CityIngestor) Ingest(ctx context.Context, city string) (*core.Observation, *core.IngestionFailure) {
	if city == "" {
		return nil, &core.IngestionFailure{
			City:  city,
			Stage: core.StageTransport,
			Cause: "empty city name",
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, &core.IngestionFailure{
			City:  city,
			Stage: core.StageTransport,
			Cause: err.Error(),
		}
	}

	coords, err := ci.source.Geocode(ctx, city)
	if err != nil {
		return nil, &core.IngestionFailure{
			City:  city,
			Stage: core.StageGeocode,
			Cause: err.Error(),
		}
	}

	var (
		weather    upstream.WeatherSnapshot
		air        upstream.AirSnapshot
		weatherErr error
		airErr     error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		weather, weatherErr = ci.source.CurrentConditions(gctx, city)
		return weatherErr
	})
	g.Go(func() error {
		air, airErr = ci.source.AirQuality(gctx, coords.Lat, coords.Lon)
		return airErr
	})

	if err := g.Wait(); err != nil {
		// Attribute the failure to the call that actually failed; the
		// sibling's cancellation error is a side effect, not the cause.
		var stage core.IngestionStage
		var cause error
		switch {
		case weatherErr != nil && !errors.Is(weatherErr, context.Canceled):
			stage, cause = core.StageWeather, weatherErr
		case airErr != nil && !errors.Is(airErr, context.Canceled):
			stage, cause = core.StageAirQuality, airErr
		case weatherErr != nil:
			stage, cause = core.StageWeather, weatherErr
		default:
			stage, cause = core.StageAirQuality, airErr
		}
		return nil, &core.IngestionFailure{
			City:  city,
			Stage: stage,
			Cause: cause.Error(),
		}
	}

	return &core.Observation{
		City:        city,
		Temperature: weather.Temperature,
		Condition:   weather.Condition,
		Humidity:    weather.Humidity,
		WindSpeed:   weather.WindSpeed,
		AQI:         air.AQI,
		PM25:        air.PM25,
		PM10:        air.PM10,
		CO:          air.CO,
		NO2:         air.NO2,
		O3:          air.O3,
		ObservedAt:  weather.ObservedAt,
	}, nil
}
