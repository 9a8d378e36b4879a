package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/ecoinsight/ecoinsight/core"
	"github.com/ecoinsight/ecoinsight/storage"
)

// ObservationRepository implements storage.ObservationRepository for BadgerDB.
type ObservationRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ObservationRepository = (*ObservationRepository)(nil)

// NewObservationRepository creates a new ObservationRepository.
func NewObservationRepository(backend *Backend) (*ObservationRepository, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}

	idSeq, err := backend.GetSequence(observationIDSeq)
	if err != nil {
		return nil, err
	}

	return &ObservationRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ObservationRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *ObservationRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddObservations persists observations in a single call. Each observation is
// validated individually: malformed records are skipped and counted while
// valid siblings commit. IDs come from the badger sequence, so repeated
// ingestion runs append new records (duplicate-tolerant by design).
func (r *ObservationRepository) AddObservations(ctx context.Context, observations ...*core.Observation) ([]*core.Observation, int, error) {
	added := []*core.Observation{}
	rejected := 0

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, obs := range observations {
			if err := core.ValidateObservation(obs); err != nil {
				r.backend.logger.Warn("skipping malformed observation", "err", err)
				rejected++
				continue
			}

			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			obs.Id = core.ID(nextID)
			obs.InsertedAt = time.Now().UTC()

			key := makeObservationKey(obs.Id)
			if err := tx.Set(key, storage.MarshalObservation(obs)); err != nil {
				return err
			}

			cityKey := makeObservationCityKey(obs.City, obs.ObservedAt, obs.Id)
			if err := tx.Set(cityKey, storage.MarshalID(obs.Id)); err != nil {
				return err
			}

			added = append(added, obs)
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, 0, err
	}
	return added, rejected, nil
}

// GetObservation retrieves a single observation by ID.
func (r *ObservationRepository) GetObservation(ctx context.Context, id core.ID) (*core.Observation, error) {
	var obs *core.Observation
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeObservationKey(id))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			obs, err = storage.UnmarshalObservation(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return obs, nil
}

// GetObservationsByCity retrieves all observations for a city, ordered by
// observation time ascending (index iteration order).
func (r *ObservationRepository) GetObservationsByCity(ctx context.Context, city string) ([]*core.Observation, error) {
	observations := []*core.Observation{}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialObservationCityKey(city)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}

			item, err := tx.Get(makeObservationKey(id))
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			err = item.Value(func(val []byte) error {
				obs, err := storage.UnmarshalObservation(val)
				if err != nil {
					return err
				}
				observations = append(observations, obs)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return observations, nil
}

// GetLatestObservation retrieves the most recent observation for a city by
// iterating the city index in reverse.
func (r *ObservationRepository) GetLatestObservation(ctx context.Context, city string) (*core.Observation, error) {
	var obs *core.Observation

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := makePartialObservationCityKey(city)
		opts.Prefix = prefix
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// In reverse mode, seek to the last possible key under the prefix.
		seek := append(append([]byte{}, prefix...), 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
			0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF)
		iter.Seek(seek)
		if !iter.Valid() {
			return core.ErrNoObservations
		}

		var id core.ID
		err := iter.Item().Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return err
		}

		item, err := tx.Get(makeObservationKey(id))
		if err == badger.ErrKeyNotFound {
			return core.ErrNoObservations
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			obs, err = storage.UnmarshalObservation(val)
			return err
		})
	}, false)

	if err != nil {
		return nil, err
	}
	return obs, nil
}
