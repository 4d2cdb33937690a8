package checklist

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hospicetrack/hospicetrack/internal/platform/kvstore"
)

func TestRepoKV_EmptyOnMissingKey(t *testing.T) {
	repo := NewRepoKV(kvstore.NewMemoryStore(), zerolog.Nop())

	data, err := repo.GetTaskCompletionData(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("expected empty map, got %d entries", len(data))
	}
}

func TestRepoKV_RoundTrip(t *testing.T) {
	repo := NewRepoKV(kvstore.NewMemoryStore(), zerolog.Nop())
	ctx := context.Background()

	tasks := NewTaskList()
	tasks[0].Subtasks[0].SubSubtasks[0].Complete = true
	refreshTask(&tasks[0])

	if err := repo.SaveTaskCompletionData(ctx, TaskCompletionData{"p1": tasks}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.GetTaskCompletionData(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if !got["p1"][0].Subtasks[0].SubSubtasks[0].Complete {
		t.Error("expected completion flag to survive the round trip")
	}
	if got["p1"][0].Status != StatusPartial {
		t.Errorf("expected partial status to survive, got %s", got["p1"][0].Status)
	}
}

func TestRepoKV_MalformedDataFallsBackEmpty(t *testing.T) {
	store := kvstore.NewMemoryStore()
	ctx := context.Background()
	if err := store.Set(ctx, "taskdata", []byte("{corrupt")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo := NewRepoKV(store, zerolog.Nop())
	data, err := repo.GetTaskCompletionData(ctx)
	if err != nil {
		t.Fatalf("expected fallback, got error: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("expected empty map on corrupt data, got %d entries", len(data))
	}
}
