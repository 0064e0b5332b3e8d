package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Subteran/DunGen-sub001/pkg/actor"
	"github.com/Subteran/DunGen-sub001/pkg/procgen"
	"github.com/Subteran/DunGen-sub001/pkg/state"
)

// ErrPCNotFound is returned by GetPCSpec when no spec exists for the
// requested ID.
var ErrPCNotFound = errors.New("pc not found")

// Storage combines game state persistence (Redis) with static resource
// loading (filesystem): generation tables and character specs.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// GameState operations (Redis-backed)
	SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error
	LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	DeleteGameState(ctx context.Context, id uuid.UUID) error

	// Generation table operations (filesystem-backed). LoadTables
	// falls back to the built-in defaults when no file is present.
	LoadTables(ctx context.Context) (*procgen.Tables, error)

	// PC operations (filesystem-backed, returns PCSpec not PC).
	// Use actor.NewPCFromSpec to build the full PC from the spec.
	GetPCSpec(ctx context.Context, pcID string) (*actor.PCSpec, error)
	ListPCs(ctx context.Context) ([]string, error)
}
