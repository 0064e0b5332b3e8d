package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Subteran/DunGen-sub001/pkg/actor"
	"github.com/Subteran/DunGen-sub001/pkg/procgen"
)

// Generation table operations (filesystem-backed)

// LoadTables reads the generation tables from <dataDir>/tables.json.
// A missing file is not an error; the built-in defaults are returned.
func (r *RedisStorage) LoadTables(ctx context.Context) (*procgen.Tables, error) {
	path := filepath.Join(r.dataDir, "tables.json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Info("No generation tables file, using defaults", "path", path)
			return procgen.DefaultTables(), nil
		}
		return nil, fmt.Errorf("failed to read tables file: %w", err)
	}

	var tables procgen.Tables
	if err := json.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tables: %w", err)
	}
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generation tables: %w", err)
	}

	return &tables, nil
}

// PC operations (filesystem-backed, returns PCSpec only)

func (r *RedisStorage) GetPCSpec(ctx context.Context, pcID string) (*actor.PCSpec, error) {
	path := filepath.Join(r.dataDir, "pcs", pcID+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrPCNotFound, pcID)
		}
		return nil, fmt.Errorf("failed to read PC file: %w", err)
	}

	var spec actor.PCSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal PC spec: %w", err)
	}

	// Filename overrides any ID in the JSON
	spec.ID = pcID

	return &spec, nil
}

func (r *RedisStorage) ListPCs(ctx context.Context) ([]string, error) {
	pcsPath := filepath.Join(r.dataDir, "pcs")

	entries, err := os.ReadDir(pcsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read PCs directory: %w", err)
	}

	var pcIDs []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			pcIDs = append(pcIDs, strings.TrimSuffix(entry.Name(), ".json"))
		}
	}

	return pcIDs, nil
}
