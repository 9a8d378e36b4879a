package storage

import (
	"testing"
	"time"

	"github.com/ecoinsight/ecoinsight/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("air quality in Paris")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalObservation(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	obs := &core.Observation{
		Id:          core.ID(7),
		City:        "São Paulo",
		Temperature: 24.3,
		Condition:   "broken clouds",
		Humidity:    71,
		WindSpeed:   4.2,
		AQI:         3,
		PM25:        19.7,
		PM10:        31.2,
		CO:          310.4,
		NO2:         22.1,
		O3:          48.6,
		ObservedAt:  now.Add(-5 * time.Minute),
		InsertedAt:  now,
	}

	data := MarshalObservation(obs)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalObservation(data)
	require.NoError(t, err)
	assert.Equal(t, obs, decoded)
}

func TestMarshalUnmarshalArtifact(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name     string
		artifact *core.Artifact
	}{
		{
			name: "artifact with embedding",
			artifact: &core.Artifact{
				Id:         core.ID(11),
				Location:   "Paris",
				Text:       "Paris is warming faster than the global average.",
				Summary:    "- Temperature: 21.5°C\n- Weather: scattered clouds",
				DataSource: "openweathermap",
				ModelUsed:  "gemini-2.0-flash-001",
				CreatedAt:  now,
				Vector:     []float32{0.1, -0.2, 0.3},
			},
		},
		{
			name: "artifact without embedding",
			artifact: &core.Artifact{
				Id:        core.ID(12),
				Location:  "Cairo",
				Text:      "Dust days are becoming more frequent.",
				CreatedAt: now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalArtifact(tt.artifact)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalArtifact(data)
			require.NoError(t, err)
			assert.Equal(t, tt.artifact, decoded)
		})
	}
}

func TestUnmarshalArtifact_Truncated(t *testing.T) {
	artifact := &core.Artifact{
		Id:        core.ID(1),
		Location:  "Tokyo",
		Text:      "story",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	data := MarshalArtifact(artifact)

	_, err := UnmarshalArtifact(data[:len(data)/2])
	assert.Error(t, err)
}
