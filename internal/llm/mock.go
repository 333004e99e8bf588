package llm

import (
	"context"
	"sync"

	"lunchbox/internal/domain"
)

// MockClient permite tests sin llamar a un LLM real.
type MockClient struct {
	mu       sync.Mutex
	Response string
	Calls    [][]domain.ChatMessage
}

func (m *MockClient) Chat(_ context.Context, history []domain.ChatMessage) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, append([]domain.ChatMessage(nil), history...))
	return m.Response
}

// LastCall devuelve el historial del ultimo Chat recibido.
func (m *MockClient) LastCall() []domain.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return nil
	}
	return m.Calls[len(m.Calls)-1]
}
