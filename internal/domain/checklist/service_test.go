package checklist

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hospicetrack/hospicetrack/internal/domain/patient"
)

// -- Mocks --

type mockRepo struct {
	data  TaskCompletionData
	saves int
}

func newMockRepo() *mockRepo {
	return &mockRepo{data: TaskCompletionData{}}
}

func (m *mockRepo) GetTaskCompletionData(_ context.Context) (TaskCompletionData, error) {
	return m.data, nil
}

func (m *mockRepo) SaveTaskCompletionData(_ context.Context, data TaskCompletionData) error {
	m.data = data
	m.saves++
	return nil
}

type mockPatientRepo struct {
	active   []*patient.Patient
	archived []*patient.Patient
}

func (m *mockPatientRepo) GetActivePatients(_ context.Context) ([]*patient.Patient, error) {
	return append([]*patient.Patient{}, m.active...), nil
}

func (m *mockPatientRepo) SaveActivePatients(_ context.Context, ps []*patient.Patient) error {
	m.active = ps
	return nil
}

func (m *mockPatientRepo) GetArchivedPatients(_ context.Context) ([]*patient.Patient, error) {
	return append([]*patient.Patient{}, m.archived...), nil
}

func (m *mockPatientRepo) SaveArchivedPatients(_ context.Context, ps []*patient.Patient) error {
	m.archived = ps
	return nil
}

// newTestService wires the checklist service to a real patient service the
// same way the server does, including the archive-cleanup listener.
func newTestService(t *testing.T) (*Service, *mockRepo, *mockPatientRepo, *patient.Patient) {
	t.Helper()
	repo := newMockRepo()
	prepo := &mockPatientRepo{}
	psvc := patient.NewService(prepo, zerolog.Nop())

	svc := NewService(repo, psvc, zerolog.Nop())
	psvc.AddListener(svc)

	p := &patient.Patient{FirstName: "Rosalind", LastName: "Franklin"}
	if err := psvc.Intake(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc, repo, prepo, p
}

// completeAll marks every item on a checklist done.
func completeAll(tasks TaskList) {
	for ti := range tasks {
		t := &tasks[ti]
		for si := range t.Subtasks {
			t.Subtasks[si].Complete = true
			for ssi := range t.Subtasks[si].SubSubtasks {
				t.Subtasks[si].SubSubtasks[ssi].Complete = true
			}
		}
		refreshTask(t)
	}
}

// taskIndex returns the position of a task id in the template.
func taskIndex(t *testing.T, tasks TaskList, id string) int {
	t.Helper()
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	t.Fatalf("task %q not in template", id)
	return -1
}

// -- Template --

func TestNewTaskList_Shape(t *testing.T) {
	tasks := NewTaskList()
	if len(tasks) != 11 {
		t.Fatalf("expected 11 tasks, got %d", len(tasks))
	}

	wantItems := map[string]int{
		TaskWrittenRequest: 2,
		TaskInvoice:        2,
		TaskRecords:        3,
		TaskVisit1:         3,
		TaskVisit2:         3,
		TaskAttending:      2,
		TaskConsulting:     3,
		TaskRxnt:           2,
		TaskPharmacy:       3,
		TaskIngestion:      3,
		TaskFollowup:       3,
	}
	for i := range tasks {
		done, total := countTask(&tasks[i])
		if done != 0 {
			t.Errorf("task %s: expected 0 done on fresh template, got %d", tasks[i].ID, done)
		}
		if total != wantItems[tasks[i].ID] {
			t.Errorf("task %s: expected %d items, got %d", tasks[i].ID, wantItems[tasks[i].ID], total)
		}
		if tasks[i].Status != StatusNotStarted {
			t.Errorf("task %s: expected not-started, got %s", tasks[i].ID, tasks[i].Status)
		}
	}
}

func TestNewTaskList_FreshProgressIsZero(t *testing.T) {
	if got := progressOf(NewTaskList()); got != 0 {
		t.Errorf("expected 0%% on fresh template, got %d", got)
	}
}

func TestNewTaskList_DeepCopy(t *testing.T) {
	a := NewTaskList()
	a[0].Subtasks[0].SubSubtasks[0].Complete = true
	a[0].Subtasks[1].Complete = true

	b := NewTaskList()
	if b[0].Subtasks[0].SubSubtasks[0].Complete || b[0].Subtasks[1].Complete {
		t.Error("template instances must not share state")
	}
}

func TestProgressOf_EmptyListIsZero(t *testing.T) {
	if got := progressOf(TaskList{}); got != 0 {
		t.Errorf("expected 0%% for empty list (no division by zero), got %d", got)
	}
}

// -- Rules --

func TestInvoiceRule(t *testing.T) {
	cases := []struct {
		name                  string
		sent, paidQB, paidChk bool
		wantDone              int
	}{
		{"nothing", false, false, false, 0},
		{"payment without invoice", false, true, true, 0},
		{"sent only", true, false, false, 1},
		{"sent and quickbooks", true, true, false, 2},
		{"sent and check", true, false, true, 2},
		{"sent and both", true, true, true, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tasks := NewTaskList()
			inv := &tasks[taskIndex(t, tasks, TaskInvoice)]
			inv.Subtask(SubSentInvoice).Complete = tc.sent
			pay := inv.Subtask(SubPaymentReceived)
			pay.SubSubtasks[0].Complete = tc.paidQB
			pay.SubSubtasks[1].Complete = tc.paidChk

			done, total := countTask(inv)
			if total != 2 {
				t.Fatalf("invoice task must always be 2 items, got %d", total)
			}
			if done != tc.wantDone {
				t.Errorf("expected %d done, got %d", tc.wantDone, done)
			}
		})
	}
}

func TestDefaultRule_SubSubtasksAreAllOrNothing(t *testing.T) {
	tasks := NewTaskList()
	ph := &tasks[taskIndex(t, tasks, TaskPharmacy)]
	delivery := ph.Subtask("Delivery Coordinated")

	delivery.SubSubtasks[0].Complete = true
	if done, _ := countTask(ph); done != 0 {
		t.Errorf("partial sub-subtasks must not count, got %d done", done)
	}

	delivery.SubSubtasks[1].Complete = true
	if done, _ := countTask(ph); done != 1 {
		t.Errorf("all sub-subtasks complete should count once, got %d done", done)
	}
}

func TestDeriveStatus(t *testing.T) {
	tasks := NewTaskList()
	rec := &tasks[taskIndex(t, tasks, TaskRecords)]

	if deriveStatus(rec) != StatusNotStarted {
		t.Error("fresh task should be not-started")
	}

	rec.Subtasks[0].Complete = true
	if deriveStatus(rec) != StatusPartial {
		t.Error("one of three complete should be partial")
	}

	rec.Subtasks[1].Complete = true
	rec.Subtasks[2].Complete = true
	if deriveStatus(rec) != StatusComplete {
		t.Error("all complete should be complete")
	}
}

func TestDeriveStatus_InvoiceUsesItsRule(t *testing.T) {
	tasks := NewTaskList()
	inv := &tasks[taskIndex(t, tasks, TaskInvoice)]

	// Payment flags without a sent invoice count for nothing.
	pay := inv.Subtask(SubPaymentReceived)
	pay.SubSubtasks[0].Complete = true
	pay.SubSubtasks[1].Complete = true
	if deriveStatus(inv) != StatusNotStarted {
		t.Error("payment without sent invoice should be not-started")
	}

	inv.Subtask(SubSentInvoice).Complete = true
	if deriveStatus(inv) != StatusComplete {
		t.Error("sent plus either payment should be complete")
	}
}

// -- Service reads --

func TestTasks_MaterializesFreshTree(t *testing.T) {
	svc, repo, _, p := newTestService(t)

	tasks, err := svc.Tasks(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 11 {
		t.Fatalf("expected 11 tasks, got %d", len(tasks))
	}
	if _, ok := repo.data[p.ID]; !ok {
		t.Error("expected materialized tree to be persisted")
	}
}

func TestTasks_UnknownPatient(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	if _, err := svc.Tasks(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProgress_UnknownPatient(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	if _, err := svc.Progress(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProgress_UnknownTreeIsZero(t *testing.T) {
	svc, _, _, p := newTestService(t)
	got, err := svc.Progress(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("expected 0%%, got %d", got)
	}
}

// Fixture from the template enumeration: 29 items total. With every task
// fully complete except one wr subtask, progress is round(100*28/29) = 97.
func TestProgress_AllButOneItem(t *testing.T) {
	svc, repo, _, p := newTestService(t)

	tasks := NewTaskList()
	completeAll(tasks)
	wr := &tasks[taskIndex(t, tasks, TaskWrittenRequest)]
	wr.Subtask("Payment Schedule Form").Complete = false
	refreshTask(wr)
	repo.data[p.ID] = tasks

	got, err := svc.Progress(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 97 {
		t.Errorf("expected 97%%, got %d", got)
	}
}

// -- Mutations --

func TestToggleSubtask_FlipsAndDerivesStatus(t *testing.T) {
	svc, repo, _, p := newTestService(t)
	svc.Tasks(context.Background(), p.ID)

	ti := taskIndex(t, repo.data[p.ID], TaskRecords)
	if err := svc.ToggleSubtask(context.Background(), p.ID, ti, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	task := repo.data[p.ID][ti]
	if !task.Subtasks[0].Complete {
		t.Error("expected subtask flipped on")
	}
	if task.Status != StatusPartial {
		t.Errorf("expected partial status, got %s", task.Status)
	}

	if err := svc.ToggleSubtask(context.Background(), p.ID, ti, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	task = repo.data[p.ID][ti]
	if task.Subtasks[0].Complete || task.Status != StatusNotStarted {
		t.Error("expected toggle back to incomplete / not-started")
	}
}

func TestToggleSubSubtask_DerivesParent(t *testing.T) {
	svc, repo, _, p := newTestService(t)
	svc.Tasks(context.Background(), p.ID)

	ti := taskIndex(t, repo.data[p.ID], TaskWrittenRequest)

	// Written Request has two sub-subtasks; completing one is not enough.
	if err := svc.ToggleSubSubtask(context.Background(), p.ID, ti, 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.data[p.ID][ti].Subtasks[0].Complete {
		t.Error("parent must not complete with one of two children")
	}

	if err := svc.ToggleSubSubtask(context.Background(), p.ID, ti, 0, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.data[p.ID][ti].Subtasks[0].Complete {
		t.Error("parent must complete when all children are complete")
	}

	// And back off again.
	if err := svc.ToggleSubSubtask(context.Background(), p.ID, ti, 0, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.data[p.ID][ti].Subtasks[0].Complete {
		t.Error("parent must un-complete when a child is cleared")
	}
}

func TestUpdateSubSubtaskInput_CompletionFollowsText(t *testing.T) {
	svc, repo, _, p := newTestService(t)
	svc.Tasks(context.Background(), p.ID)

	ti := taskIndex(t, repo.data[p.ID], TaskIngestion)
	record := 2 // Ingestion Record subtask

	set := func(value string) {
		t.Helper()
		if err := svc.UpdateSubSubtaskInput(context.Background(), p.ID, ti, record, 0, value); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	leaf := func() SubSubtask { return repo.data[p.ID][ti].Subtasks[record].SubSubtasks[0] }

	set("10:42 AM")
	if got := leaf(); !got.Complete || got.Value != "10:42 AM" {
		t.Errorf("expected complete with value, got %+v", got)
	}

	set("")
	if got := leaf(); got.Complete {
		t.Error("clearing the text must clear completion, regardless of prior value")
	}

	set("   ")
	if got := leaf(); got.Complete {
		t.Error("whitespace-only text must not count as complete")
	}

	set("10:42 AM")
	if got := leaf(); !got.Complete {
		t.Error("setting text again must re-complete")
	}
}

func TestMutations_LookupMissesAreNoOps(t *testing.T) {
	svc, repo, _, p := newTestService(t)
	svc.Tasks(context.Background(), p.ID)
	saves := repo.saves

	cases := []error{
		svc.ToggleSubtask(context.Background(), "missing", 0, 0),
		svc.ToggleSubtask(context.Background(), p.ID, 99, 0),
		svc.ToggleSubtask(context.Background(), p.ID, 0, 99),
		svc.ToggleSubSubtask(context.Background(), p.ID, 0, 0, 99),
		svc.ToggleSubSubtask(context.Background(), p.ID, 0, 99, 0),
		svc.UpdateSubSubtaskInput(context.Background(), p.ID, 0, 1, 0, "x"), // Payment Schedule Form has no children
		svc.MarkAllComplete(context.Background(), "nobody of that name"),
	}
	for i, err := range cases {
		if err != ErrNotFound {
			t.Errorf("case %d: expected ErrNotFound, got %v", i, err)
		}
	}
	if repo.saves != saves {
		t.Error("lookup misses must not persist anything")
	}
}

// -- Auto-archive --

func TestAutoArchive_OnFinalToggle(t *testing.T) {
	svc, repo, prepo, p := newTestService(t)

	tasks := NewTaskList()
	completeAll(tasks)
	ti := taskIndex(t, tasks, TaskFollowup)
	tasks[ti].Subtasks[0].Complete = false
	refreshTask(&tasks[ti])
	repo.data[p.ID] = tasks

	if err := svc.ToggleSubtask(context.Background(), p.ID, ti, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(prepo.active) != 0 {
		t.Error("expected patient gone from active collection")
	}
	if len(prepo.archived) != 1 {
		t.Fatal("expected patient in archived collection")
	}
	got := prepo.archived[0]
	if got.ArchivedAt == nil {
		t.Error("expected archive date stamped")
	}
	if got.ArchiveReason == nil || *got.ArchiveReason != "checklist complete" {
		t.Error("expected auto-archive reason stamped")
	}
	if _, ok := repo.data[p.ID]; ok {
		t.Error("expected task tree deleted on archive")
	}
}

func TestAutoArchive_NotAtPartialProgress(t *testing.T) {
	svc, repo, prepo, p := newTestService(t)
	svc.Tasks(context.Background(), p.ID)

	if err := svc.ToggleSubtask(context.Background(), p.ID, taskIndex(t, repo.data[p.ID], TaskRecords), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prepo.active) != 1 || len(prepo.archived) != 0 {
		t.Error("patient must stay active below 100%")
	}
}

func TestRestore_ReinitializesTaskTree(t *testing.T) {
	svc, repo, prepo, p := newTestService(t)

	tasks := NewTaskList()
	completeAll(tasks)
	ti := taskIndex(t, tasks, TaskFollowup)
	tasks[ti].Subtasks[0].Complete = false
	refreshTask(&tasks[ti])
	repo.data[p.ID] = tasks

	svc.ToggleSubtask(context.Background(), p.ID, ti, 0)
	if len(prepo.archived) != 1 {
		t.Fatal("expected patient archived")
	}

	psvc := patient.NewService(prepo, zerolog.Nop())
	if err := psvc.Restore(context.Background(), p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Restored patients start over: a fresh all-incomplete tree on next view.
	restored, err := svc.Tasks(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := progressOf(restored); got != 0 {
		t.Errorf("expected fresh tree at 0%%, got %d%%", got)
	}
}

func TestMarkAllComplete_ArchivesPatient(t *testing.T) {
	svc, repo, prepo, p := newTestService(t)
	svc.Tasks(context.Background(), p.ID)

	if err := svc.MarkAllComplete(context.Background(), "frank"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(prepo.archived) != 1 || prepo.archived[0].ID != p.ID {
		t.Fatal("expected case-insensitive substring match to archive Franklin")
	}
	if _, ok := repo.data[p.ID]; ok {
		t.Error("expected task tree deleted after mark-all-complete archive")
	}
}

func TestMarkAllComplete_WithoutExistingTree(t *testing.T) {
	svc, _, prepo, _ := newTestService(t)

	// No Tasks() call first: the tree is materialized by the bulk op itself.
	if err := svc.MarkAllComplete(context.Background(), "Rosalind"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prepo.archived) != 1 {
		t.Error("expected patient archived")
	}
}

func TestPatientDeleted_DropsTaskData(t *testing.T) {
	svc, repo, _, p := newTestService(t)
	svc.Tasks(context.Background(), p.ID)

	svc.PatientDeleted(context.Background(), p.ID)
	if _, ok := repo.data[p.ID]; ok {
		t.Error("expected task tree deleted with patient")
	}
}
