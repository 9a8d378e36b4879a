package core

import (
	"errors"
	"testing"
	"time"
)

func validObservation() *Observation {
	return &Observation{
		City:        "Paris",
		Temperature: 21.5,
		Condition:   "scattered clouds",
		Humidity:    55,
		WindSpeed:   3.1,
		AQI:         2,
		PM25:        12.4,
		PM10:        18.0,
		CO:          220.3,
		NO2:         14.9,
		O3:          61.2,
		ObservedAt:  time.Now().UTC().Add(-time.Minute),
	}
}

func TestValidateObservation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Observation)
		wantErr error
	}{
		{
			name:    "valid observation",
			mutate:  func(*Observation) {},
			wantErr: nil,
		},
		{
			name:    "empty city",
			mutate:  func(o *Observation) { o.City = "" },
			wantErr: ErrEmptyCity,
		},
		{
			name:    "aqi below scale",
			mutate:  func(o *Observation) { o.AQI = 0 },
			wantErr: ErrInvalidAQI,
		},
		{
			name:    "aqi above scale",
			mutate:  func(o *Observation) { o.AQI = 6 },
			wantErr: ErrInvalidAQI,
		},
		{
			name:    "future timestamp",
			mutate:  func(o *Observation) { o.ObservedAt = time.Now().Add(time.Hour) },
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := validObservation()
			tt.mutate(obs)

			err := ValidateObservation(obs)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateObservation() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateObservation() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidObservation) {
				t.Errorf("ValidateObservation() error %v does not wrap ErrInvalidObservation", err)
			}
		})
	}
}

func TestValidateObservation_Nil(t *testing.T) {
	if err := ValidateObservation(nil); !errors.Is(err, ErrInvalidObservation) {
		t.Errorf("ValidateObservation(nil) = %v, want ErrInvalidObservation", err)
	}
}

func TestValidateArtifact(t *testing.T) {
	tests := []struct {
		name     string
		artifact *Artifact
		wantErr  error
	}{
		{
			name:     "valid artifact",
			artifact: &Artifact{Location: "Paris", Text: "a climate story"},
			wantErr:  nil,
		},
		{
			name:     "valid artifact without vector",
			artifact: &Artifact{Location: "Paris", Text: "unembedded story"},
			wantErr:  nil,
		},
		{
			name:     "empty location",
			artifact: &Artifact{Text: "a climate story"},
			wantErr:  ErrEmptyLocation,
		},
		{
			name:     "empty text",
			artifact: &Artifact{Location: "Paris"},
			wantErr:  ErrEmptyText,
		},
		{
			name:     "nil artifact",
			artifact: nil,
			wantErr:  ErrInvalidArtifact,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArtifact(tt.artifact)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateArtifact() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateArtifact() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
