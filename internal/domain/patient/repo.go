package patient

import "context"

// Repository is the persistence adapter for the two patient collections.
// Collections are read and written whole; the backing store only needs
// get/set semantics on a key.
type Repository interface {
	GetActivePatients(ctx context.Context) ([]*Patient, error)
	SaveActivePatients(ctx context.Context, patients []*Patient) error
	GetArchivedPatients(ctx context.Context) ([]*Patient, error)
	SaveArchivedPatients(ctx context.Context, patients []*Patient) error
}
