package chat

import "time"

// Message kinds. Chat messages and case notes share one thread per
// patient; the kind tells the dashboard which pane to render them in.
const (
	KindChat = "chat"
	KindNote = "note"
)

// Message is one entry in a patient's thread.
type Message struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Kind      string    `json:"kind"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
