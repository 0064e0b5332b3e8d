package services

import (
	"context"
	"sync"

	"github.com/Subteran/DunGen-sub001/pkg/chat"
)

// MockGenerator is a scriptable GeneratorService for testing.
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, messages []chat.ChatMessage) (string, error)

	// Responses is consumed in order when GenerateFunc is nil. After
	// the queue drains the mock keeps returning the last entry.
	Responses []string

	// Track calls for testing
	GenerateCalls []GenerateCall

	mu sync.Mutex // protects all fields above
}

type GenerateCall struct {
	Messages []chat.ChatMessage
}

// NewMockGenerator creates a new mock generator service.
func NewMockGenerator(responses ...string) *MockGenerator {
	return &MockGenerator{
		Responses:     responses,
		GenerateCalls: make([]GenerateCall, 0),
	}
}

// Generate records the call and returns the scripted response.
func (m *MockGenerator) Generate(ctx context.Context, messages []chat.ChatMessage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateCalls = append(m.GenerateCalls, GenerateCall{Messages: messages})

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, messages)
	}

	if len(m.Responses) == 0 {
		return `{"narrative":"Mock narrative.","suggested_actions":["Look around","Press on"],"quest_completed":false}`, nil
	}
	resp := m.Responses[0]
	if len(m.Responses) > 1 {
		m.Responses = m.Responses[1:]
	}
	return resp, nil
}

// SetGenerateError sets up the mock to fail every call with err.
func (m *MockGenerator) SetGenerateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateFunc = func(ctx context.Context, messages []chat.ChatMessage) (string, error) {
		return "", err
	}
}

// CallCount returns the number of Generate calls so far.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.GenerateCalls)
}

// GetCalls returns a copy of the call tracking data.
func (m *MockGenerator) GetCalls() []GenerateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]GenerateCall, len(m.GenerateCalls))
	copy(calls, m.GenerateCalls)
	return calls
}

// Reset clears all call tracking.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateCalls = make([]GenerateCall, 0)
}
