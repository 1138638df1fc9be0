// internal/models/chat.go
package models

import (
	"time"
)

type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type CallStatus string

const (
	CallSucceeded CallStatus = "ok"
	CallFailed    CallStatus = "error"
)

// CallRecord describes one outbound request to the AI service. It never
// carries prompt text or profile data.
type CallRecord struct {
	ID        string        `json:"id"`
	Operation string        `json:"operation"`
	Model     string        `json:"model"`
	Status    CallStatus    `json:"status"`
	ErrorKind string        `json:"error_kind,omitempty"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

type CallSummary struct {
	Operation string        `json:"operation"`
	Calls     int           `json:"calls"`
	Failures  int           `json:"failures"`
	Average   time.Duration `json:"average"`
}
