// internal/flow/transcript.go
package flow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"nutrifacil/internal/models"
)

const (
	ChatGreeting = "Olá! Sou seu assistente nutricional. Como posso ajudar na sua dieta hoje? 🥗"
	ChatApology  = "Desculpe, tive um problema de conexão. Tente novamente."
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrChatBusy     = errors.New("a chat reply is still pending")
)

// Chatter answers one chat turn given every prior turn.
type Chatter interface {
	ChatWithNutritionist(ctx context.Context, history []models.ChatMessage, message string) (string, error)
}

// Transcript is the ordered chat history of one session. It accepts one send
// at a time.
type Transcript struct {
	mu       sync.Mutex
	messages []models.ChatMessage
	pending  bool
	now      func() time.Time
}

func NewTranscript() *Transcript {
	t := &Transcript{now: time.Now}
	t.messages = append(t.messages, t.message(models.RoleAssistant, ChatGreeting))
	return t
}

func (t *Transcript) message(role models.ChatRole, text string) models.ChatMessage {
	return models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: t.now(),
	}
}

// Messages returns a copy of the history.
func (t *Transcript) Messages() []models.ChatMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.ChatMessage(nil), t.messages...)
}

func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

func (t *Transcript) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

// Send appends the user turn, asks chatter for a reply and appends it. When
// chatter fails the apology is appended instead and the error is returned,
// so a send that gets past validation always grows the transcript by two.
func (t *Transcript) Send(ctx context.Context, chatter Chatter, text string) (models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ChatMessage{}, ErrEmptyMessage
	}

	t.mu.Lock()
	if t.pending {
		t.mu.Unlock()
		return models.ChatMessage{}, ErrChatBusy
	}
	history := append([]models.ChatMessage(nil), t.messages...)
	t.messages = append(t.messages, t.message(models.RoleUser, text))
	t.pending = true
	t.mu.Unlock()

	reply, err := chatter.ChatWithNutritionist(ctx, history, text)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = false

	answer := t.message(models.RoleAssistant, reply)
	if err != nil {
		answer.Text = ChatApology
	}
	t.messages = append(t.messages, answer)

	return answer, err
}
