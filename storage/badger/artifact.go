package badger

import (
	"context"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/ecoinsight/ecoinsight/core"
	"github.com/ecoinsight/ecoinsight/storage"
)

// ArtifactRepository implements storage.ArtifactRepository for BadgerDB.
type ArtifactRepository struct {
	backend *Backend
}

var _ storage.ArtifactRepository = (*ArtifactRepository)(nil)

// NewArtifactRepository creates a new ArtifactRepository.
func NewArtifactRepository(backend *Backend) (*ArtifactRepository, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	return &ArtifactRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *ArtifactRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ArtifactRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// FindSimilar delegates to the backend.
func (r *ArtifactRepository) FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.ScoredArtifact, error) {
	return r.backend.FindSimilarArtifacts(ctx, vector, limit)
}

// AddArtifacts persists one or more artifacts. Artifacts with ID=0 get a
// content-based ID, and CreatedAt is set when zero. The collection is
// append-only: an artifact whose key already exists is left untouched.
func (r *ArtifactRepository) AddArtifacts(ctx context.Context, artifacts ...*core.Artifact) ([]*core.Artifact, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, artifact := range artifacts {
			if err := core.ValidateArtifact(artifact); err != nil {
				return err
			}

			if artifact.CreatedAt.IsZero() {
				artifact.CreatedAt = time.Now().UTC()
			}
			if artifact.Id == 0 {
				artifact.Id = artifact.ContentID()
			}

			key := makeArtifactKey(artifact.Id)

			// Never overwrite an existing artifact with the same identifier.
			if _, err := tx.Get(key); err == nil {
				continue
			} else if err != badger.ErrKeyNotFound {
				return err
			}

			if err := tx.Set(key, storage.MarshalArtifact(artifact)); err != nil {
				return err
			}

			locationKey := makeArtifactLocationKey(artifact.Location, artifact.Id)
			if err := tx.Set(locationKey, storage.MarshalID(artifact.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

// UpdateArtifacts overwrites existing artifacts in place, keyed by ID.
// Every artifact must already exist; a missing key fails the whole call
// with storage.ErrNotFound and nothing is committed. The location index is
// not rewritten, so an update must not change Location.
func (r *ArtifactRepository) UpdateArtifacts(ctx context.Context, artifacts ...*core.Artifact) ([]*core.Artifact, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, artifact := range artifacts {
			if err := core.ValidateArtifact(artifact); err != nil {
				return err
			}

			key := makeArtifactKey(artifact.Id)
			if _, err := tx.Get(key); err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			} else if err != nil {
				return err
			}

			if err := tx.Set(key, storage.MarshalArtifact(artifact)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

// GetArtifact retrieves a single artifact by ID.
func (r *ArtifactRepository) GetArtifact(ctx context.Context, id core.ID) (*core.Artifact, error) {
	var artifact *core.Artifact
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		artifact, err = r.readArtifact(tx, makeArtifactKey(id))
		if err != nil {
			return err
		}
		if artifact == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return artifact, nil
}

// GetArtifactsByLocation retrieves all artifacts for an exact location match,
// using the location index.
func (r *ArtifactRepository) GetArtifactsByLocation(ctx context.Context, location string) ([]*core.Artifact, error) {
	artifacts := []*core.Artifact{}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialArtifactLocationKey(location)
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

			artifact, err := r.readArtifact(tx, makeArtifactKey(id))
			if err != nil {
				return err
			}
			if artifact != nil {
				artifacts = append(artifacts, artifact)
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

// GetAllArtifacts retrieves every stored artifact in iteration order.
func (r *ArtifactRepository) GetAllArtifacts(ctx context.Context) ([]*core.Artifact, error) {
	artifacts := []*core.Artifact{}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(artifactPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				artifact, err := storage.UnmarshalArtifact(val)
				if err != nil {
					return err
				}
				artifacts = append(artifacts, artifact)
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
	return artifacts, nil
}

// FindLexical finds artifacts whose Text or Location contains query as a
// case-insensitive substring, in store iteration order, up to limit results.
func (r *ArtifactRepository) FindLexical(ctx context.Context, query string, limit int) ([]*core.Artifact, error) {
	matches := []*core.Artifact{}
	if limit <= 0 {
		return matches, nil
	}

	needle := strings.ToLower(query)

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(artifactPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid() && len(matches) < limit; iter.Next() {
			var artifact *core.Artifact
			err := iter.Item().Value(func(val []byte) error {
				var err error
				artifact, err = storage.UnmarshalArtifact(val)
				return err
			})
			if err != nil {
				return err
			}
			if artifact == nil {
				continue
			}

			if strings.Contains(strings.ToLower(artifact.Text), needle) ||
				strings.Contains(strings.ToLower(artifact.Location), needle) {
				matches = append(matches, artifact)
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return matches, nil
}

// CountArtifacts returns the number of stored artifacts.
func (r *ArtifactRepository) CountArtifacts(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(artifactPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// SampleArtifact returns one stored artifact in iteration order, or nil if
// the collection is empty.
func (r *ArtifactRepository) SampleArtifact(ctx context.Context) (*core.Artifact, error) {
	var artifact *core.Artifact
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(artifactPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		iter.Rewind()
		if !iter.Valid() {
			return nil
		}
		return iter.Item().Value(func(val []byte) error {
			var err error
			artifact, err = storage.UnmarshalArtifact(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return artifact, nil
}

// readArtifact reads an artifact by key within a transaction.
// Returns nil (no error) when the key does not exist.
func (r *ArtifactRepository) readArtifact(tx *badger.Txn, key []byte) (*core.Artifact, error) {
	item, err := tx.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var artifact *core.Artifact
	err = item.Value(func(val []byte) error {
		var err error
		artifact, err = storage.UnmarshalArtifact(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return artifact, nil
}
