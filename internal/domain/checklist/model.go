package checklist

import "strings"

// Task status values derived from subtask completion counts. Status is
// recomputed on every mutation, never set directly.
const (
	StatusNotStarted = "not-started"
	StatusPartial    = "partial"
	StatusComplete   = "complete"
)

// SubSubtask is a leaf: either a checkbox or a free-text field. A text
// leaf is complete exactly when its trimmed value is non-empty.
type SubSubtask struct {
	Name     string `json:"name"`
	Input    bool   `json:"input,omitempty"`
	Value    string `json:"value,omitempty"`
	Complete bool   `json:"complete"`
}

// Subtask is one checklist item under a task. When it has sub-subtasks
// its effective completion is derived from them; the Complete flag is
// kept in sync on mutation.
type Subtask struct {
	Name        string       `json:"name"`
	Complete    bool         `json:"complete"`
	SubSubtasks []SubSubtask `json:"sub_subtasks,omitempty"`
}

// EffectiveComplete is the completion used for counting: AND over
// sub-subtasks when present, otherwise the subtask's own flag.
func (s *Subtask) EffectiveComplete() bool {
	if len(s.SubSubtasks) == 0 {
		return s.Complete
	}
	for _, ss := range s.SubSubtasks {
		if !ss.Complete {
			return false
		}
	}
	return true
}

// Task is one of the eleven fixed workflow steps instantiated per
// patient from the template.
type Task struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Status   string    `json:"status"`
	Subtasks []Subtask `json:"subtasks"`
}

// Subtask returns the subtask with the given display name, or nil.
func (t *Task) Subtask(name string) *Subtask {
	for i := range t.Subtasks {
		if t.Subtasks[i].Name == name {
			return &t.Subtasks[i]
		}
	}
	return nil
}

// TaskList is a patient's full checklist.
type TaskList []Task

// TaskCompletionData maps patient ids to their checklists. It is
// persisted whole.
type TaskCompletionData map[string]TaskList

func setInputValue(ss *SubSubtask, value string) {
	ss.Value = value
	ss.Complete = strings.TrimSpace(value) != ""
}
