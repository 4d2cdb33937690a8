package checklist

import "math"

// A completionRule counts a task's completed and total checklist items.
// Every call site — progress calculation, status derivation, all
// mutation paths — goes through the same rule, so the per-task logic
// cannot drift between copies.
type completionRule func(t *Task) (done, total int)

// defaultRule: each subtask is one item, complete per its effective
// completion (AND over sub-subtasks when present).
func defaultRule(t *Task) (int, int) {
	done := 0
	for i := range t.Subtasks {
		if t.Subtasks[i].EffectiveComplete() {
			done++
		}
	}
	return done, len(t.Subtasks)
}

// invoiceRule: the invoice task is two items. Payment only counts once
// the invoice has gone out, and either payment method satisfies it.
func invoiceRule(t *Task) (int, int) {
	const total = 2

	sent := false
	if s := t.Subtask(SubSentInvoice); s != nil {
		sent = s.Complete
	}
	if !sent {
		return 0, total
	}

	paid := false
	if s := t.Subtask(SubPaymentReceived); s != nil {
		for _, ss := range s.SubSubtasks {
			if (ss.Name == SubPaidQuickbooks || ss.Name == SubPaidCheck) && ss.Complete {
				paid = true
				break
			}
		}
	}
	if paid {
		return 2, total
	}
	return 1, total
}

var completionRules = map[string]completionRule{
	TaskInvoice: invoiceRule,
}

func ruleFor(t *Task) completionRule {
	if r, ok := completionRules[t.ID]; ok {
		return r
	}
	return defaultRule
}

// countTask returns the task's completed and total item counts under its
// rule.
func countTask(t *Task) (int, int) {
	return ruleFor(t)(t)
}

// deriveStatus recomputes a task's status from its item counts.
func deriveStatus(t *Task) string {
	done, total := countTask(t)
	switch {
	case total == 0 || done == 0:
		return StatusNotStarted
	case done == total:
		return StatusComplete
	default:
		return StatusPartial
	}
}

// refreshTask syncs a task's derived state after a mutation: parent
// subtask flags follow their sub-subtasks, and the status follows the
// counts.
func refreshTask(t *Task) {
	for i := range t.Subtasks {
		if len(t.Subtasks[i].SubSubtasks) > 0 {
			t.Subtasks[i].Complete = t.Subtasks[i].EffectiveComplete()
		}
	}
	t.Status = deriveStatus(t)
}

// progressOf computes the whole-checklist percentage: completed items
// over total items across all tasks, rounded. An empty list is 0%.
func progressOf(tasks TaskList) int {
	done, total := 0, 0
	for i := range tasks {
		d, tt := countTask(&tasks[i])
		done += d
		total += tt
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}
