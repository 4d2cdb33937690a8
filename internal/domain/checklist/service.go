package checklist

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/hospicetrack/hospicetrack/internal/domain/patient"
)

// ErrNotFound is returned when a checklist mutation references a patient,
// task, or subtask that does not exist. Callers surface it as a notice;
// state is never changed on a miss.
var ErrNotFound = errors.New("checklist target not found")

// archiveReason stamps records auto-archived on checklist completion.
const archiveReason = "checklist complete"

// PatientDirectory is the slice of the patient service the checklist
// needs: id and name lookup, and the archive transition it triggers at
// 100% progress.
type PatientDirectory interface {
	Get(ctx context.Context, id string) (*patient.Patient, error)
	FindActiveByName(ctx context.Context, name string) (*patient.Patient, error)
	Archive(ctx context.Context, id, reason string) error
}

type Service struct {
	repo     Repository
	patients PatientDirectory
	logger   zerolog.Logger
}

func NewService(repo Repository, patients PatientDirectory, logger zerolog.Logger) *Service {
	return &Service{repo: repo, patients: patients, logger: logger}
}

func (s *Service) persist(ctx context.Context, data TaskCompletionData) {
	if err := s.repo.SaveTaskCompletionData(ctx, data); err != nil {
		s.logger.Warn().Err(err).Msg("failed to persist task data")
	}
}

// Tasks returns the patient's checklist, materializing a fresh template
// copy the first time a patient is viewed (and after a restore, which
// discards task data).
func (s *Service) Tasks(ctx context.Context, patientID string) (TaskList, error) {
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	data, err := s.repo.GetTaskCompletionData(ctx)
	if err != nil {
		return nil, err
	}

	tasks, ok := data[patientID]
	if !ok {
		tasks = NewTaskList()
		data[patientID] = tasks
		s.persist(ctx, data)
	}
	return tasks, nil
}

// Progress computes the patient's completion percentage. A patient with
// no stored tree reads as a fresh template: 0%. An unknown patient is a
// lookup miss, same as Tasks.
func (s *Service) Progress(ctx context.Context, patientID string) (int, error) {
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	data, err := s.repo.GetTaskCompletionData(ctx)
	if err != nil {
		return 0, err
	}
	tasks, ok := data[patientID]
	if !ok {
		tasks = NewTaskList()
	}
	return progressOf(tasks), nil
}

// mutate loads the patient's tree, applies fn to it, refreshes the
// enclosing task's derived state, persists, and runs the auto-archive
// check. fn returning false means the indexes missed.
func (s *Service) mutate(ctx context.Context, patientID string, taskIdx int, fn func(t *Task) bool) error {
	data, err := s.repo.GetTaskCompletionData(ctx)
	if err != nil {
		return err
	}
	tasks, ok := data[patientID]
	if !ok {
		return ErrNotFound
	}
	if taskIdx < 0 || taskIdx >= len(tasks) {
		return ErrNotFound
	}

	t := &tasks[taskIdx]
	if !fn(t) {
		return ErrNotFound
	}
	refreshTask(t)

	data[patientID] = tasks
	s.persist(ctx, data)

	s.checkAutoArchive(ctx, patientID, tasks)
	return nil
}

// ToggleSubtask flips one subtask's completion flag.
func (s *Service) ToggleSubtask(ctx context.Context, patientID string, taskIdx, subIdx int) error {
	return s.mutate(ctx, patientID, taskIdx, func(t *Task) bool {
		if subIdx < 0 || subIdx >= len(t.Subtasks) {
			return false
		}
		t.Subtasks[subIdx].Complete = !t.Subtasks[subIdx].Complete
		return true
	})
}

// ToggleSubSubtask flips one leaf checkbox and re-derives the parent
// subtask's completion.
func (s *Service) ToggleSubSubtask(ctx context.Context, patientID string, taskIdx, subIdx, subSubIdx int) error {
	return s.mutate(ctx, patientID, taskIdx, func(t *Task) bool {
		if subIdx < 0 || subIdx >= len(t.Subtasks) {
			return false
		}
		sub := &t.Subtasks[subIdx]
		if subSubIdx < 0 || subSubIdx >= len(sub.SubSubtasks) {
			return false
		}
		sub.SubSubtasks[subSubIdx].Complete = !sub.SubSubtasks[subSubIdx].Complete
		return true
	})
}

// UpdateSubSubtaskInput sets a free-text leaf's value; the leaf is
// complete exactly when the trimmed value is non-empty.
func (s *Service) UpdateSubSubtaskInput(ctx context.Context, patientID string, taskIdx, subIdx, subSubIdx int, value string) error {
	return s.mutate(ctx, patientID, taskIdx, func(t *Task) bool {
		if subIdx < 0 || subIdx >= len(t.Subtasks) {
			return false
		}
		sub := &t.Subtasks[subIdx]
		if subSubIdx < 0 || subSubIdx >= len(sub.SubSubtasks) {
			return false
		}
		setInputValue(&sub.SubSubtasks[subSubIdx], value)
		return true
	})
}

// MarkAllComplete looks an active patient up by case-insensitive
// substring match on name and marks every item on their checklist
// complete. Reaching 100% archives the patient like any other mutation.
func (s *Service) MarkAllComplete(ctx context.Context, patientName string) error {
	p, err := s.patients.FindActiveByName(ctx, patientName)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	data, err := s.repo.GetTaskCompletionData(ctx)
	if err != nil {
		return err
	}
	tasks, ok := data[p.ID]
	if !ok {
		tasks = NewTaskList()
	}

	for ti := range tasks {
		t := &tasks[ti]
		for si := range t.Subtasks {
			sub := &t.Subtasks[si]
			sub.Complete = true
			for ssi := range sub.SubSubtasks {
				sub.SubSubtasks[ssi].Complete = true
			}
		}
		refreshTask(t)
	}

	data[p.ID] = tasks
	s.persist(ctx, data)

	s.checkAutoArchive(ctx, p.ID, tasks)
	return nil
}

// checkAutoArchive moves the patient to the archived collection once
// every checklist item is complete. The patient service notifies this
// service back (PatientArchived) to drop the task-tree entry.
func (s *Service) checkAutoArchive(ctx context.Context, patientID string, tasks TaskList) {
	if progressOf(tasks) != 100 {
		return
	}
	if err := s.patients.Archive(ctx, patientID, archiveReason); err != nil {
		s.logger.Warn().Err(err).Str("patient_id", patientID).Msg("auto-archive failed")
		return
	}
	s.logger.Info().Str("patient_id", patientID).Msg("checklist complete, patient auto-archived")
}

// dropTaskData deletes a patient's tree from the stored map.
func (s *Service) dropTaskData(ctx context.Context, patientID string) {
	data, err := s.repo.GetTaskCompletionData(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("patient_id", patientID).Msg("failed to load task data for cleanup")
		return
	}
	if _, ok := data[patientID]; !ok {
		return
	}
	delete(data, patientID)
	s.persist(ctx, data)
}

// PatientArchived implements patient.Listener: archived patients lose
// their task data; a restore re-initializes it fresh on next view.
func (s *Service) PatientArchived(ctx context.Context, patientID string) {
	s.dropTaskData(ctx, patientID)
}

// PatientDeleted implements patient.Listener.
func (s *Service) PatientDeleted(ctx context.Context, patientID string) {
	s.dropTaskData(ctx, patientID)
}
