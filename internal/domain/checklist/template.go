package checklist

// Task ids. The set is fixed; tasks are never created or destroyed at
// runtime, only instantiated per patient from the template below.
const (
	TaskWrittenRequest = "wr"
	TaskInvoice        = "invoice"
	TaskRecords        = "records"
	TaskVisit1         = "visit1"
	TaskVisit2         = "visit2"
	TaskAttending      = "attending"
	TaskConsulting     = "consulting"
	TaskRxnt           = "rxnt"
	TaskPharmacy       = "pharmacy"
	TaskIngestion      = "ingestion"
	TaskFollowup       = "followup"
)

// Subtask and sub-subtask names used by the invoice completion rule.
// Lookups are by these constants, never by scanning display strings.
const (
	SubSentInvoice     = "Sent Invoice"
	SubPaymentReceived = "Payment Received"
	SubPaidQuickbooks  = "Paid via Quickbooks"
	SubPaidCheck       = "Paid via Check"
)

// NewTaskList returns a fresh copy of the eleven-task template with all
// completion flags false and all free-text values empty.
func NewTaskList() TaskList {
	return TaskList{
		{
			ID: TaskWrittenRequest, Name: "Send Adobe Forms", Status: StatusNotStarted,
			Subtasks: []Subtask{
				{Name: "Written Request", SubSubtasks: []SubSubtask{
					{Name: "Completed by Patient"},
					{Name: "Signed by Two Witnesses"},
				}},
				{Name: "Payment Schedule Form"},
			},
		},
		{
			ID: TaskInvoice, Name: "Send Invoice", Status: StatusNotStarted,
			Subtasks: []Subtask{
				{Name: SubSentInvoice},
				{Name: SubPaymentReceived, SubSubtasks: []SubSubtask{
					{Name: SubPaidQuickbooks},
					{Name: SubPaidCheck},
				}},
			},
		},
		{
			ID: TaskRecords, Name: "Medical Records", Status: StatusNotStarted,
			Subtasks: []Subtask{
				{Name: "Requested Records"},
				{Name: "Received Records"},
				{Name: "Uploaded to Chart"},
			},
		},
		{
			ID: TaskVisit1, Name: "First Visit", Status: StatusNotStarted,
			Subtasks: []Subtask{
				{Name: "Scheduled Visit"},
				{Name: "Completed Visit"},
				{Name: "Visit Note Written"},
			},
		},
		{
			ID: TaskVisit2, Name: "Second Visit", Status: StatusNotStarted,
			Subtasks: []Subtask{
				{Name: "Scheduled Visit"},
				{Name: "Completed Visit"},
				{Name: "Visit Note Written"},
			},
		},
		{
			ID: TaskAttending, Name: "Attending Physician", Status: StatusNotStarted,
			Subtasks: []Subtask{
				{Name: "Completed Attending Form"},
				{Name: "Uploaded to Chart"},
			},
		},
		{
			ID: TaskConsulting, Name: "Consulting Physician", Status: StatusNotStarted,
			Subtasks: []Subtask{
				{Name: "Referral Sent"},
				{Name: "Consult Completed"},
				{Name: "Consulting Form Received"},
			},
		},
		{
			ID: TaskRxnt, Name: "RXNT", Status: StatusNotStarted,
			Subtasks: []Subtask{
				{Name: "Patient Added to RXNT"},
				{Name: "Prescription Sent"},
			},
		},
		{
			ID: TaskPharmacy, Name: "Pharmacy", Status: StatusNotStarted,
			Subtasks: []Subtask{
				{Name: "Pharmacy Notified"},
				{Name: "Medication Ready"},
				{Name: "Delivery Coordinated", SubSubtasks: []SubSubtask{
					{Name: "Date Confirmed"},
					{Name: "Address Confirmed"},
				}},
			},
		},
		{
			ID: TaskIngestion, Name: "Ingestion Day", Status: StatusNotStarted,
			Subtasks: []Subtask{
				{Name: "Scheduled Ingestion"},
				{Name: "Attended Ingestion"},
				{Name: "Ingestion Record", SubSubtasks: []SubSubtask{
					{Name: "Time of Death", Input: true},
					{Name: "Medication Lot Number", Input: true},
				}},
			},
		},
		{
			ID: TaskFollowup, Name: "Follow Up", Status: StatusNotStarted,
			Subtasks: []Subtask{
				{Name: "Follow Up Call"},
				{Name: "Death Certificate Filed"},
				{Name: "State Report Submitted"},
			},
		},
	}
}
