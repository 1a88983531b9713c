package service

import (
	"context"
	"errors"
	"strings"

	"github.com/lescale-paris/escale-backend/internal/domain"
	"github.com/lescale-paris/escale-backend/internal/repository/ports"
)

var ErrEmptyMessage = errors.New("message is required")

// maxHistoryTurns bounds the conversation context forwarded to the backend;
// the client keeps the full transcript.
const maxHistoryTurns = 20

// AssistantService fronts the chat persona. Conversations are stateless on
// the server: the client sends its transcript with every turn.
type AssistantService struct {
	assistant ports.Assistant
}

func NewAssistantService(assistant ports.Assistant) *AssistantService {
	return &AssistantService{assistant: assistant}
}

func (s *AssistantService) Reply(ctx context.Context, message string, history []domain.ChatTurn) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}
	return s.assistant.Chat(ctx, message, history)
}
