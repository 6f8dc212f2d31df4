package domain

import "time"

// Turn is one user/assistant exchange in a session.
type Turn struct {
	// User is the question text.
	User string

	// Assistant is the generated answer.
	Assistant string

	// CreatedAt is when the exchange completed.
	CreatedAt time.Time
}

// ChatState tracks the progress of a single ask request.
type ChatState string

// Ask request states.
const (
	ChatStateReceived  ChatState = "received"
	ChatStateRetrieved ChatState = "retrieved"
	ChatStatePrompted  ChatState = "prompted"
	ChatStateCompleted ChatState = "completed"
	ChatStateFailed    ChatState = "failed"
)

// String returns the string representation.
func (s ChatState) String() string {
	return string(s)
}

// IsTerminal returns true for states that end a request.
func (s ChatState) IsTerminal() bool {
	return s == ChatStateCompleted || s == ChatStateFailed
}

// Answer is the result of asking a question.
type Answer struct {
	// Text is the generated answer, or an apology when the completion failed.
	Text string

	// Sources are the document names the answer draws on, most relevant first.
	Sources []string

	// State is the terminal state of the request.
	State ChatState
}
