package checklist

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/hospicetrack/hospicetrack/internal/platform/kvstore"
)

const taskDataKey = "taskdata"

type repoKV struct {
	store  kvstore.Store
	logger zerolog.Logger
}

func NewRepoKV(store kvstore.Store, logger zerolog.Logger) Repository {
	return &repoKV{store: store, logger: logger}
}

func (r *repoKV) GetTaskCompletionData(ctx context.Context) (TaskCompletionData, error) {
	raw, err := r.store.Get(ctx, taskDataKey)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return TaskCompletionData{}, nil
	}
	if err != nil {
		return nil, err
	}

	var data TaskCompletionData
	if err := json.Unmarshal(raw, &data); err != nil {
		r.logger.Warn().Err(err).Msg("stored task data is malformed, starting empty")
		return TaskCompletionData{}, nil
	}
	if data == nil {
		data = TaskCompletionData{}
	}
	return data, nil
}

func (r *repoKV) SaveTaskCompletionData(ctx context.Context, data TaskCompletionData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, taskDataKey, raw)
}
