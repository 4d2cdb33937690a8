package patient

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/hospicetrack/hospicetrack/internal/platform/kvstore"
)

const (
	activeKey   = "patients:active"
	archivedKey = "patients:archived"
)

type repoKV struct {
	store  kvstore.Store
	logger zerolog.Logger
}

func NewRepoKV(store kvstore.Store, logger zerolog.Logger) Repository {
	return &repoKV{store: store, logger: logger}
}

// load reads a whole collection. A missing key or corrupted document
// degrades to the empty collection rather than failing the operation.
func (r *repoKV) load(ctx context.Context, key string) ([]*Patient, error) {
	raw, err := r.store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return []*Patient{}, nil
	}
	if err != nil {
		return nil, err
	}

	var patients []*Patient
	if err := json.Unmarshal(raw, &patients); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("stored patient collection is malformed, starting empty")
		return []*Patient{}, nil
	}
	if patients == nil {
		patients = []*Patient{}
	}
	return patients, nil
}

func (r *repoKV) save(ctx context.Context, key string, patients []*Patient) error {
	raw, err := json.Marshal(patients)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, key, raw)
}

func (r *repoKV) GetActivePatients(ctx context.Context) ([]*Patient, error) {
	return r.load(ctx, activeKey)
}

func (r *repoKV) SaveActivePatients(ctx context.Context, patients []*Patient) error {
	return r.save(ctx, activeKey, patients)
}

func (r *repoKV) GetArchivedPatients(ctx context.Context) ([]*Patient, error) {
	return r.load(ctx, archivedKey)
}

func (r *repoKV) SaveArchivedPatients(ctx context.Context, patients []*Patient) error {
	return r.save(ctx, archivedKey, patients)
}
