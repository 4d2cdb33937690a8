package sync

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/hospicetrack/hospicetrack/internal/domain/patient"
)

// SnapshotSource is the sheet-backend client.
type SnapshotSource interface {
	FetchSnapshot(ctx context.Context) ([]*patient.Patient, error)
}

// PatientDirectory is the slice of the patient service the sync layer
// needs: collection reads for export and intake for import.
type PatientDirectory interface {
	ListActive(ctx context.Context) ([]*patient.Patient, error)
	ListArchived(ctx context.Context) ([]*patient.Patient, error)
	Intake(ctx context.Context, p *patient.Patient) error
}

// ProgressReader reports a patient's checklist percentage for the
// export's progress column.
type ProgressReader interface {
	Progress(ctx context.Context, patientID string) (int, error)
}

type Service struct {
	source   SnapshotSource
	repo     patient.Repository
	patients PatientDirectory
	progress ProgressReader
	logger   zerolog.Logger
}

func NewService(source SnapshotSource, repo patient.Repository, patients PatientDirectory, progress ProgressReader, logger zerolog.Logger) *Service {
	return &Service{source: source, repo: repo, patients: patients, progress: progress, logger: logger}
}

// FetchActivePatients pulls the backend snapshot and replaces the
// stored active collection with it. When the backend is unreachable the
// stored collection is served instead, so the dashboard keeps working
// offline.
func (s *Service) FetchActivePatients(ctx context.Context) ([]*patient.Patient, error) {
	snapshot, err := s.source.FetchSnapshot(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("snapshot fetch failed, serving stored collection")
		return s.repo.GetActivePatients(ctx)
	}

	if err := s.repo.SaveActivePatients(ctx, snapshot); err != nil {
		s.logger.Warn().Err(err).Msg("failed to persist snapshot")
	}
	return snapshot, nil
}

// ExportWorkbook renders both patient collections into an xlsx
// document, active patients with their checklist percentage.
func (s *Service) ExportWorkbook(ctx context.Context) ([]byte, error) {
	active, err := s.patients.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	archived, err := s.patients.ListArchived(ctx)
	if err != nil {
		return nil, err
	}

	activeRows := make([][]any, 0, len(active))
	for _, p := range active {
		pct, err := s.progress.Progress(ctx, p.ID)
		if err != nil {
			s.logger.Warn().Err(err).Str("patient_id", p.ID).Msg("progress unavailable for export")
			pct = 0
		}
		activeRows = append(activeRows, activeRow(p, pct))
	}

	archivedRows := make([][]any, 0, len(archived))
	for _, p := range archived {
		archivedRows = append(archivedRows, archivedRow(p))
	}

	return buildWorkbook(activeRows, archivedRows)
}

// ImportWorkbook intakes patients from an uploaded workbook and returns
// how many rows were imported. Rows without a name are skipped; a row
// that fails intake validation stops the import with the count so far.
func (s *Service) ImportWorkbook(ctx context.Context, r io.Reader) (int, error) {
	patients, err := parseWorkbook(r)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, p := range patients {
		if err := s.patients.Intake(ctx, p); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
