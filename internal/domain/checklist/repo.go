package checklist

import "context"

// Repository is the persistence adapter for the task-completion map.
// The map is read and written whole, keyed storage underneath.
type Repository interface {
	GetTaskCompletionData(ctx context.Context) (TaskCompletionData, error)
	SaveTaskCompletionData(ctx context.Context, data TaskCompletionData) error
}
