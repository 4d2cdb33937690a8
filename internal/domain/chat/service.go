package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hospicetrack/hospicetrack/internal/domain/patient"
)

var (
	// ErrNotFound is returned when a thread operation references a
	// patient that does not exist.
	ErrNotFound = errors.New("chat target not found")

	// ErrInvalidMessage is returned for an empty body or unknown kind.
	ErrInvalidMessage = errors.New("invalid message")
)

// PatientDirectory is the slice of the patient service the chat needs:
// existence checks before posting to a thread.
type PatientDirectory interface {
	Get(ctx context.Context, id string) (*patient.Patient, error)
}

type Service struct {
	repo     Repository
	patients PatientDirectory
	logger   zerolog.Logger
}

func NewService(repo Repository, patients PatientDirectory, logger zerolog.Logger) *Service {
	return &Service{repo: repo, patients: patients, logger: logger}
}

// Post appends a message to the patient's thread. Threads belong to
// active and archived patients alike; only deletion removes them.
func (s *Service) Post(ctx context.Context, patientID, author, kind, body string) (*Message, error) {
	if kind != KindChat && kind != KindNote {
		return nil, ErrInvalidMessage
	}
	if strings.TrimSpace(body) == "" {
		return nil, ErrInvalidMessage
	}
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	msgs, err := s.repo.GetThread(ctx, patientID)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		ID:        uuid.NewString(),
		Author:    author,
		Kind:      kind,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	msgs = append(msgs, msg)

	if err := s.repo.SaveThread(ctx, patientID, msgs); err != nil {
		s.logger.Warn().Err(err).Str("patient_id", patientID).Msg("failed to persist thread")
	}
	return msg, nil
}

// List returns the patient's thread, oldest first.
func (s *Service) List(ctx context.Context, patientID string) ([]*Message, error) {
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.repo.GetThread(ctx, patientID)
}

// Clear empties the patient's thread.
func (s *Service) Clear(ctx context.Context, patientID string) error {
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.repo.DeleteThread(ctx, patientID)
}

// PatientArchived implements patient.Listener. Archived patients keep
// their thread so case notes stay reviewable.
func (s *Service) PatientArchived(_ context.Context, _ string) {}

// PatientDeleted implements patient.Listener: a hard delete takes the
// thread with it.
func (s *Service) PatientDeleted(ctx context.Context, patientID string) {
	if err := s.repo.DeleteThread(ctx, patientID); err != nil {
		s.logger.Warn().Err(err).Str("patient_id", patientID).Msg("failed to delete thread")
	}
}
