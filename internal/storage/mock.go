package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Subteran/DunGen-sub001/pkg/actor"
	"github.com/Subteran/DunGen-sub001/pkg/procgen"
	"github.com/Subteran/DunGen-sub001/pkg/state"
)

// MockStorage is an in-memory Storage implementation for testing.
type MockStorage struct {
	PCSpecs map[string]*actor.PCSpec
	Tables  *procgen.Tables

	// Error overrides
	PingErr error
	SaveErr error
	LoadErr error

	gameStates map[uuid.UUID]*state.GameState
	saveCalls  int
	mu         sync.Mutex
}

var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		PCSpecs:    make(map[string]*actor.PCSpec),
		gameStates: make(map[uuid.UUID]*state.GameState),
	}
}

func (m *MockStorage) Ping(ctx context.Context) error {
	return m.PingErr
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	cp, err := gs.DeepCopy()
	if err != nil {
		return err
	}
	m.gameStates[id] = cp
	m.saveCalls++
	return nil
}

func (m *MockStorage) LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	gs, ok := m.gameStates[id]
	if !ok {
		return nil, nil
	}
	return gs.DeepCopy()
}

func (m *MockStorage) DeleteGameState(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.gameStates, id)
	return nil
}

func (m *MockStorage) LoadTables(ctx context.Context) (*procgen.Tables, error) {
	if m.Tables != nil {
		return m.Tables, nil
	}
	return procgen.DefaultTables(), nil
}

func (m *MockStorage) GetPCSpec(ctx context.Context, pcID string) (*actor.PCSpec, error) {
	spec, ok := m.PCSpecs[pcID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPCNotFound, pcID)
	}
	return spec, nil
}

func (m *MockStorage) ListPCs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.PCSpecs))
	for id := range m.PCSpecs {
		ids = append(ids, id)
	}
	return ids, nil
}

// SaveCalls returns the number of successful SaveGameState calls.
func (m *MockStorage) SaveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveCalls
}
