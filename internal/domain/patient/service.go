package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned when a referenced patient does not exist in
// either collection. Callers treat it as a no-op with a user notice,
// never a hard failure.
var ErrNotFound = errors.New("patient not found")

// Listener is notified when a patient leaves a collection, so dependent
// state (task trees, chat threads) can be cleaned up without this package
// importing its consumers.
type Listener interface {
	PatientArchived(ctx context.Context, patientID string)
	PatientDeleted(ctx context.Context, patientID string)
}

type Service struct {
	repo      Repository
	logger    zerolog.Logger
	listeners []Listener
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// AddListener attaches a cleanup listener. Not safe for concurrent use;
// call during wiring only.
func (s *Service) AddListener(l Listener) {
	s.listeners = append(s.listeners, l)
}

// persist writes a collection back, degrading storage failures to a
// warning: the request that caused the change still succeeds, the change
// just may not survive a reload.
func (s *Service) persist(err error, collection string) {
	if err != nil {
		s.logger.Warn().Err(err).Str("collection", collection).Msg("failed to persist patient collection")
	}
}

// Intake creates a new active patient record with a generated id.
func (s *Service) Intake(ctx context.Context, p *Patient) error {
	if p.FullName() == "" {
		return fmt.Errorf("patient name is required")
	}

	active, err := s.repo.GetActivePatients(ctx)
	if err != nil {
		return err
	}

	p.ID = uuid.NewString()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.ArchivedAt = nil
	p.ArchiveReason = nil

	s.persist(s.repo.SaveActivePatients(ctx, append(active, p)), "active")
	return nil
}

// Get returns the patient with the given id from either collection.
func (s *Service) Get(ctx context.Context, id string) (*Patient, error) {
	active, err := s.repo.GetActivePatients(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range active {
		if p.ID == id {
			return p, nil
		}
	}

	archived, err := s.repo.GetArchivedPatients(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range archived {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Service) ListActive(ctx context.Context) ([]*Patient, error) {
	return s.repo.GetActivePatients(ctx)
}

func (s *Service) ListArchived(ctx context.Context) ([]*Patient, error) {
	return s.repo.GetArchivedPatients(ctx)
}

// FindActiveByName returns the first active patient whose full name
// contains the query, case-insensitively.
func (s *Service) FindActiveByName(ctx context.Context, name string) (*Patient, error) {
	active, err := s.repo.GetActivePatients(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range active {
		if p.NameMatches(name) {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

// Update replaces an existing record's fields in whichever collection it
// lives in. The id, creation time and archive stamp are preserved.
func (s *Service) Update(ctx context.Context, upd *Patient) error {
	if upd.ID == "" {
		return ErrNotFound
	}

	active, err := s.repo.GetActivePatients(ctx)
	if err != nil {
		return err
	}
	for i, p := range active {
		if p.ID == upd.ID {
			applyUpdate(p, upd)
			active[i] = p
			s.persist(s.repo.SaveActivePatients(ctx, active), "active")
			return nil
		}
	}

	archived, err := s.repo.GetArchivedPatients(ctx)
	if err != nil {
		return err
	}
	for i, p := range archived {
		if p.ID == upd.ID {
			applyUpdate(p, upd)
			archived[i] = p
			s.persist(s.repo.SaveArchivedPatients(ctx, archived), "archived")
			return nil
		}
	}
	return ErrNotFound
}

func applyUpdate(dst, src *Patient) {
	id, created := dst.ID, dst.CreatedAt
	archivedAt, reason := dst.ArchivedAt, dst.ArchiveReason
	*dst = *src
	dst.ID = id
	dst.CreatedAt = created
	dst.ArchivedAt = archivedAt
	dst.ArchiveReason = reason
	dst.UpdatedAt = time.Now().UTC()
}

// Archive moves a patient from the active to the archived collection,
// stamping the archive date and reason. One-way; see Restore.
func (s *Service) Archive(ctx context.Context, id, reason string) error {
	active, err := s.repo.GetActivePatients(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i, p := range active {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	archived, err := s.repo.GetArchivedPatients(ctx)
	if err != nil {
		return err
	}

	p := active[idx]
	now := time.Now().UTC()
	p.ArchivedAt = &now
	if reason != "" {
		p.ArchiveReason = &reason
	}

	s.persist(s.repo.SaveActivePatients(ctx, append(active[:idx], active[idx+1:]...)), "active")
	s.persist(s.repo.SaveArchivedPatients(ctx, append(archived, p)), "archived")

	for _, l := range s.listeners {
		l.PatientArchived(ctx, id)
	}

	s.logger.Info().Str("patient_id", id).Str("reason", reason).Msg("patient archived")
	return nil
}

// Restore moves an archived patient back to the active collection. Task
// data is not restored; the checklist is re-initialized fresh on next
// view.
func (s *Service) Restore(ctx context.Context, id string) error {
	archived, err := s.repo.GetArchivedPatients(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i, p := range archived {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	active, err := s.repo.GetActivePatients(ctx)
	if err != nil {
		return err
	}

	p := archived[idx]
	p.ArchivedAt = nil
	p.ArchiveReason = nil
	p.UpdatedAt = time.Now().UTC()

	s.persist(s.repo.SaveArchivedPatients(ctx, append(archived[:idx], archived[idx+1:]...)), "archived")
	s.persist(s.repo.SaveActivePatients(ctx, append(active, p)), "active")

	s.logger.Info().Str("patient_id", id).Msg("patient restored")
	return nil
}

// Delete removes a patient from whichever collection holds it. This is
// the only hard-delete path and is always an explicit user action.
func (s *Service) Delete(ctx context.Context, id string) error {
	active, err := s.repo.GetActivePatients(ctx)
	if err != nil {
		return err
	}
	for i, p := range active {
		if p.ID == id {
			s.persist(s.repo.SaveActivePatients(ctx, append(active[:i], active[i+1:]...)), "active")
			s.notifyDeleted(ctx, id)
			return nil
		}
	}

	archived, err := s.repo.GetArchivedPatients(ctx)
	if err != nil {
		return err
	}
	for i, p := range archived {
		if p.ID == id {
			s.persist(s.repo.SaveArchivedPatients(ctx, append(archived[:i], archived[i+1:]...)), "archived")
			s.notifyDeleted(ctx, id)
			return nil
		}
	}
	return ErrNotFound
}

func (s *Service) notifyDeleted(ctx context.Context, id string) {
	for _, l := range s.listeners {
		l.PatientDeleted(ctx, id)
	}
	s.logger.Info().Str("patient_id", id).Msg("patient deleted")
}
