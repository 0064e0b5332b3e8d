package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"github.com/Subteran/DunGen-sub001/pkg/actor"
	"github.com/Subteran/DunGen-sub001/pkg/encounter"
	"github.com/Subteran/DunGen-sub001/pkg/procgen"
	"github.com/Subteran/DunGen-sub001/pkg/state"
)

func setupTestStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	rs, err := NewRedisStorage("redis://"+mr.Addr(), t.TempDir(), logger)
	if err != nil {
		t.Fatalf("NewRedisStorage: %v", err)
	}
	t.Cleanup(func() { _ = rs.Close() })
	return rs, mr
}

func testGameState(t *testing.T) *state.GameState {
	t.Helper()
	pc, err := actor.NewPCFromSpec(&actor.PCSpec{Name: "Tharn", Class: "Ranger"})
	if err != nil {
		t.Fatalf("NewPCFromSpec: %v", err)
	}
	gs := state.NewGameState(pc, "Blackmire Caverns")
	gs.StartQuest("Defeat the bandit leader", 6)
	gs.RecordEncounter(encounter.TypeCombat)
	gs.AffixHistory.Record("Venomous")
	return gs
}

func TestRedisStorage_SaveLoadGameState(t *testing.T) {
	rs, _ := setupTestStorage(t)
	ctx := context.Background()
	gs := testGameState(t)

	if err := rs.SaveGameState(ctx, gs.ID, gs); err != nil {
		t.Fatalf("SaveGameState: %v", err)
	}

	loaded, err := rs.LoadGameState(ctx, gs.ID)
	if err != nil {
		t.Fatalf("LoadGameState: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected game state, got nil")
	}
	if loaded.ID != gs.ID {
		t.Errorf("ID = %s, want %s", loaded.ID, gs.ID)
	}
	if loaded.Quest == nil || loaded.Quest.Goal != "Defeat the bandit leader" {
		t.Errorf("quest not preserved: %+v", loaded.Quest)
	}
	if !loaded.AffixHistory.Contains("Venomous") {
		t.Error("affix ring not preserved")
	}
	if loaded.PC == nil || loaded.PC.Spec.Name != "Tharn" {
		t.Error("PC not preserved")
	}
	if loaded.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set on save")
	}
}

func TestRedisStorage_LoadGameState_NotFound(t *testing.T) {
	rs, _ := setupTestStorage(t)

	gs, err := rs.LoadGameState(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("LoadGameState: %v", err)
	}
	if gs != nil {
		t.Errorf("expected nil for missing state, got %+v", gs)
	}
}

func TestRedisStorage_DeleteGameState(t *testing.T) {
	rs, _ := setupTestStorage(t)
	ctx := context.Background()
	gs := testGameState(t)

	if err := rs.SaveGameState(ctx, gs.ID, gs); err != nil {
		t.Fatalf("SaveGameState: %v", err)
	}
	if err := rs.DeleteGameState(ctx, gs.ID); err != nil {
		t.Fatalf("DeleteGameState: %v", err)
	}

	loaded, err := rs.LoadGameState(ctx, gs.ID)
	if err != nil {
		t.Fatalf("LoadGameState: %v", err)
	}
	if loaded != nil {
		t.Error("expected state to be deleted")
	}
}

func TestRedisStorage_SaveSetsTTL(t *testing.T) {
	rs, mr := setupTestStorage(t)
	gs := testGameState(t)

	if err := rs.SaveGameState(context.Background(), gs.ID, gs); err != nil {
		t.Fatalf("SaveGameState: %v", err)
	}
	if mr.TTL("gamestate:"+gs.ID.String()) != GameStateTTL {
		t.Errorf("TTL = %v, want %v", mr.TTL("gamestate:"+gs.ID.String()), GameStateTTL)
	}
}

func TestRedisStorage_Ping(t *testing.T) {
	rs, mr := setupTestStorage(t)
	if err := rs.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	mr.Close()
	if err := rs.Ping(context.Background()); err == nil {
		t.Error("expected ping failure after close")
	}
}

func TestNewRedisStorage_BadURL(t *testing.T) {
	_, err := NewRedisStorage("not a url", "", nil)
	if err == nil {
		t.Error("expected error for invalid redis url")
	}
}

func TestRedisStorage_LoadTables_Defaults(t *testing.T) {
	rs, _ := setupTestStorage(t)

	tables, err := rs.LoadTables(context.Background())
	if err != nil {
		t.Fatalf("LoadTables: %v", err)
	}
	if len(tables.Monsters) == 0 {
		t.Error("default tables should carry a monster catalog")
	}
}

func TestRedisStorage_LoadTables_FromFile(t *testing.T) {
	dir := t.TempDir()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	rs, err := NewRedisStorage("redis://"+mr.Addr(), dir, logger)
	if err != nil {
		t.Fatalf("NewRedisStorage: %v", err)
	}

	custom := procgen.DefaultTables()
	custom.Monsters = custom.Monsters[:4]
	data, err := json.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal tables: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "tables.json"), data, 0o644); err != nil {
		t.Fatalf("write tables: %v", err)
	}

	tables, err := rs.LoadTables(context.Background())
	if err != nil {
		t.Fatalf("LoadTables: %v", err)
	}
	if len(tables.Monsters) != len(custom.Monsters) {
		t.Errorf("monsters = %d, want %d", len(tables.Monsters), len(custom.Monsters))
	}
}

func TestRedisStorage_GetPCSpec(t *testing.T) {
	dir := t.TempDir()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rs, err := NewRedisStorage("redis://"+mr.Addr(), dir, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err != nil {
		t.Fatalf("NewRedisStorage: %v", err)
	}

	pcsDir := filepath.Join(dir, "pcs")
	if err := os.MkdirAll(pcsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	spec := actor.PCSpec{Name: "Tharn", Class: "Ranger", Level: 2}
	data, _ := json.Marshal(spec)
	if err := os.WriteFile(filepath.Join(pcsDir, "tharn.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := rs.GetPCSpec(context.Background(), "tharn")
	if err != nil {
		t.Fatalf("GetPCSpec: %v", err)
	}
	if got.ID != "tharn" {
		t.Errorf("ID = %q, want filename-derived id", got.ID)
	}
	if got.Name != "Tharn" || got.Level != 2 {
		t.Errorf("spec = %+v", got)
	}

	ids, err := rs.ListPCs(context.Background())
	if err != nil {
		t.Fatalf("ListPCs: %v", err)
	}
	if len(ids) != 1 || ids[0] != "tharn" {
		t.Errorf("ids = %v", ids)
	}

	if _, err := rs.GetPCSpec(context.Background(), "missing"); err == nil {
		t.Error("expected error for missing pc")
	}
}
