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


package storage

import (
	"time"

	"github.com/ecoinsight/ecoinsight/core"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Records are serialized with the MUS format. Serializers are written by hand
// on the mus-go primitives; field order is part of the stored format and must
// not change. Timestamps are stored as UnixMicro int64 values.

// vectorSer serializes embedding vectors as length-prefixed float32 slices.
var vectorSer = ord.NewSliceSer[float32](varint.Float32)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	return core.ID(v), err
}

// MarshalObservation serializes an Observation to bytes.
func MarshalObservation(obs *core.Observation) []byte {
	size := varint.Uint64.Size(uint64(obs.Id)) +
		ord.String.Size(obs.City) +
		varint.Float64.Size(obs.Temperature) +
		ord.String.Size(obs.Condition) +
		varint.Int.Size(obs.Humidity) +
		varint.Float64.Size(obs.WindSpeed) +
		varint.Int.Size(obs.AQI) +
		varint.Float64.Size(obs.PM25) +
		varint.Float64.Size(obs.PM10) +
		varint.Float64.Size(obs.CO) +
		varint.Float64.Size(obs.NO2) +
		varint.Float64.Size(obs.O3) +
		varint.Int64.Size(obs.ObservedAt.UnixMicro()) +
		varint.Int64.Size(obs.InsertedAt.UnixMicro())

	buf := make([]byte, size)
	n := varint.Uint64.Marshal(uint64(obs.Id), buf)
	n += ord.String.Marshal(obs.City, buf[n:])
	n += varint.Float64.Marshal(obs.Temperature, buf[n:])
	n += ord.String.Marshal(obs.Condition, buf[n:])
	n += varint.Int.Marshal(obs.Humidity, buf[n:])
	n += varint.Float64.Marshal(obs.WindSpeed, buf[n:])
	n += varint.Int.Marshal(obs.AQI, buf[n:])
	n += varint.Float64.Marshal(obs.PM25, buf[n:])
	n += varint.Float64.Marshal(obs.PM10, buf[n:])
	n += varint.Float64.Marshal(obs.CO, buf[n:])
	n += varint.Float64.Marshal(obs.NO2, buf[n:])
	n += varint.Float64.Marshal(obs.O3, buf[n:])
	n += varint.Int64.Marshal(obs.ObservedAt.UnixMicro(), buf[n:])
	varint.Int64.Marshal(obs.InsertedAt.UnixMicro(), buf[n:])
	return buf
}

// UnmarshalObservation deserializes an Observation from bytes.
func UnmarshalObservation(data []byte) (*core.Observation, error) {
	obs := &core.Observation{}
	offset := 0

	id, n, err := varint.Uint64.Unmarshal(data[offset:])
	if err != nil {
		return nil, err
	}
	obs.Id = core.ID(id)
	offset += n

	if obs.City, n, err = ord.String.Unmarshal(data[offset:]); err != nil {
		return nil, err
	}
	offset += n

	if obs.Temperature, n, err = varint.Float64.Unmarshal(data[offset:]); err != nil {
		return nil, err
	}
	offset += n

	if obs.Condition, n, err = ord.String.Unmarshal(data[offset:]); err != nil {
		return nil, err
	}
	offset += n

	if obs.Humidity, n, err = varint.Int.Unmarshal(data[offset:]); err != nil {
		return nil, err
	}
	offset += n

	if obs.WindSpeed, n, err = varint.Float64.Unmarshal(data[offset:]); err != nil {
		return nil, err
	}
	offset += n

	if obs.AQI, n, err = varint.Int.Unmarshal(data[offset:]); err != nil {
		return nil, err
	}
	offset += n

	if obs.PM25, n, err = varint.Float64.Unmarshal(data[offset:]); err != nil {
		return nil, err
	}
	offset += n

	if obs.PM10, n, err = varint.Float64.Unmarshal(data[offset:]); err != nil {
		return nil, err
	}
	offset += n

	if obs.CO, n, err = varint.Float64.Unmarshal(data[offset:]); err != nil {
		return nil, err
	}
	offset += n

	if obs.NO2, n, err = varint.Float64.Unmarshal(data[offset:]); err != nil {
		return nil, err
	}
	offset += n

	if obs.O3, n, err = varint.Float64.Unmarshal(data[offset:]); err != nil {
		return nil, err
	}
	offset += n

	observedAt, n, err := varint.Int64.Unmarshal(data[offset:])
	if err != nil {
		return nil, err
	}
	obs.ObservedAt = time.UnixMicro(observedAt).UTC()
	offset += n

	insertedAt, _, err := varint.Int64.Unmarshal(data[offset:])
	if err != nil {
		return nil, err
	}
	obs.InsertedAt = time.UnixMicro(insertedAt).UTC()

	return obs, nil
}

// MarshalArtifact serializes an Artifact to bytes.
func MarshalArtifact(artifact *core.Artifact) []byte {
	size := varint.Uint64.Size(uint64(artifact.Id)) +
		ord.String.Size(artifact.Location) +
		ord.String.Size(artifact.Text) +
		ord.String.Size(artifact.Summary) +
		ord.String.Size(artifact.DataSource) +
		ord.String.Size(artifact.ModelUsed) +
		varint.Int64.Size(artifact.CreatedAt.UnixMicro()) +
		vectorSer.Size(artifact.Vector)

	buf := make([]byte, size)
	n := varint.Uint64.Marshal(uint64(artifact.Id), buf)
	n += ord.String.Marshal(artifact.Location, buf[n:])
	n += ord.String.Marshal(artifact.Text, buf[n:])
	n += ord.String.Marshal(artifact.Summary, buf[n:])
	n += ord.String.Marshal(artifact.DataSource, buf[n:])
	n += ord.String.Marshal(artifact.ModelUsed, buf[n:])
	n += varint.Int64.Marshal(artifact.CreatedAt.UnixMicro(), buf[n:])
	vectorSer.Marshal(artifact.Vector, buf[n:])
	return buf
}

// UnmarshalArtifact deserializes an Artifact from bytes.
func UnmarshalArtifact(data []byte) (*core.Artifact, error) {
	artifact := &core.Artifact{}
	offset := 0

	id, n, err := varint.Uint64.Unmarshal(data[offset:])
	if err != nil {
		return nil, err
	}
	artifact.Id = core.ID(id)
	offset += n

	if artifact.Location, n, err = ord.String.Unmarshal(data[offset:]); err != nil {
		return nil, err
	}
	offset += n

	if artifact.Text, n, err = ord.String.Unmarshal(data[offset:]); err != nil {
		return nil, err
	}
	offset += n

	if artifact.Summary, n, err = ord.String.Unmarshal(data[offset:]); err != nil {
		return nil, err
	}
	offset += n

	if artifact.DataSource, n, err = ord.String.Unmarshal(data[offset:]); err != nil {
		return nil, err
	}
	offset += n

	if artifact.ModelUsed, n, err = ord.String.Unmarshal(data[offset:]); err != nil {
		return nil, err
	}
	offset += n

	createdAt, n, err := varint.Int64.Unmarshal(data[offset:])
	if err != nil {
		return nil, err
	}
	artifact.CreatedAt = time.UnixMicro(createdAt).UTC()
	offset += n

	if artifact.Vector, _, err = vectorSer.Unmarshal(data[offset:]); err != nil {
		return nil, err
	}
	if len(artifact.Vector) == 0 {
		artifact.Vector = nil
	}

	return artifact, nil
}
