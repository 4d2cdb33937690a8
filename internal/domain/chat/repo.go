package chat

import "context"

// Repository persists one message thread per patient, whole.
type Repository interface {
	GetThread(ctx context.Context, patientID string) ([]*Message, error)
	SaveThread(ctx context.Context, patientID string, msgs []*Message) error
	DeleteThread(ctx context.Context, patientID string) error
}
