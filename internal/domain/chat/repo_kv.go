package chat

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/hospicetrack/hospicetrack/internal/platform/kvstore"
)

func threadKey(patientID string) string {
	return "chat:" + patientID
}

type repoKV struct {
	store  kvstore.Store
	logger zerolog.Logger
}

func NewRepoKV(store kvstore.Store, logger zerolog.Logger) Repository {
	return &repoKV{store: store, logger: logger}
}

func (r *repoKV) GetThread(ctx context.Context, patientID string) ([]*Message, error) {
	raw, err := r.store.Get(ctx, threadKey(patientID))
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return []*Message{}, nil
	}
	if err != nil {
		return nil, err
	}

	var msgs []*Message
	if err := json.Unmarshal(raw, &msgs); err != nil {
		r.logger.Warn().Err(err).Str("patient_id", patientID).Msg("stored thread is malformed, starting empty")
		return []*Message{}, nil
	}
	if msgs == nil {
		msgs = []*Message{}
	}
	return msgs, nil
}

func (r *repoKV) SaveThread(ctx context.Context, patientID string, msgs []*Message) error {
	raw, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, threadKey(patientID), raw)
}

func (r *repoKV) DeleteThread(ctx context.Context, patientID string) error {
	err := r.store.Delete(ctx, threadKey(patientID))
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil
	}
	return err
}
