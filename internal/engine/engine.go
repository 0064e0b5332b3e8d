package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Subteran/DunGen-sub001/internal/services"
	"github.com/Subteran/DunGen-sub001/internal/storage"
	"github.com/Subteran/DunGen-sub001/pkg/actor"
	"github.com/Subteran/DunGen-sub001/pkg/chat"
	"github.com/Subteran/DunGen-sub001/pkg/encounter"
	"github.com/Subteran/DunGen-sub001/pkg/procgen"
	"github.com/Subteran/DunGen-sub001/pkg/prompts"
	"github.com/Subteran/DunGen-sub001/pkg/quest"
	"github.com/Subteran/DunGen-sub001/pkg/session"
	"github.com/Subteran/DunGen-sub001/pkg/state"
	"github.com/Subteran/DunGen-sub001/pkg/textfilter"
)

// ErrNoActiveQuest is returned when a turn is advanced on a session
// without a quest.
var ErrNoActiveQuest = errors.New("no active quest")

const (
	DefaultSocialTurnCap = 3
	DefaultQuestLength   = 6
)

// Config carries the engine's externally supplied tuning.
type Config struct {
	// MaxPromptChars bounds each generator prompt.
	MaxPromptChars int
	// SocialTurnCap bounds how many turns one social exchange absorbs.
	SocialTurnCap int
	// QuestLength is the encounter count for a new quest.
	QuestLength int
	// NoConsecutiveCombat keeps combat from being derived twice in a row.
	NoConsecutiveCombat bool
	// Rating gates the profanity filter.
	Rating string
	// Seed drives the deterministic generation engine; 0 means time-based.
	Seed int64
	// Sessions configures per-role reset thresholds.
	Sessions session.Config
}

// Engine is the turn orchestrator. It owns the active turn's state copy
// and sequences quest progression, encounter determination, procedural
// generation, the generator calls, sanitization, and the atomic commit.
// Generator sessions and locks are held per game: exactly one turn is in
// flight per game, and conversation history never crosses games.
type Engine struct {
	generator services.GeneratorService
	store     storage.Storage
	gen       *procgen.Generator
	sanitizer *textfilter.Sanitizer
	logger    *slog.Logger
	cfg       Config
	rng       *rand.Rand

	mu       sync.Mutex
	sessions map[uuid.UUID]*session.Manager
	locks    map[uuid.UUID]*sync.Mutex
}

// New creates an engine from its collaborators.
func New(generator services.GeneratorService, store storage.Storage, tables *procgen.Tables, cfg Config, logger *slog.Logger) *Engine {
	if cfg.MaxPromptChars <= 0 {
		cfg.MaxPromptChars = prompts.DefaultMaxChars
	}
	if cfg.SocialTurnCap <= 0 {
		cfg.SocialTurnCap = DefaultSocialTurnCap
	}
	if cfg.QuestLength <= 0 {
		cfg.QuestLength = DefaultQuestLength
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		generator: generator,
		store:     store,
		gen:       procgen.New(tables, seed),
		sanitizer: textfilter.NewSanitizer(tables.MonsterNames(), cfg.Rating),
		logger:    logger,
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(seed + 1)),
		sessions:  make(map[uuid.UUID]*session.Manager),
		locks:     make(map[uuid.UUID]*sync.Mutex),
	}
}

// sessionsFor returns the game's session manager, creating it on first
// use. Sessions are runtime conversation caches, not persisted state; a
// resumed game starts with fresh seeded sessions.
func (e *Engine) sessionsFor(id uuid.UUID) *session.Manager {
	e.mu.Lock()
	defer e.mu.Unlock()
	sm, ok := e.sessions[id]
	if !ok {
		sm = session.NewManager(e.cfg.Sessions, e.logger)
		e.sessions[id] = sm
	}
	return sm
}

// lockFor returns the game's turn lock.
func (e *Engine) lockFor(id uuid.UUID) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	return l
}

// Forget drops a finished game's runtime sessions and lock.
func (e *Engine) Forget(id uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, id)
	delete(e.locks, id)
}

// NewAdventure creates a game session with an active quest. For combat
// quests a boss anchor is committed now, so affix rolls at the finale
// can never change the objective's identity.
func (e *Engine) NewAdventure(ctx context.Context, spec *actor.PCSpec, location, goal string) (*state.GameState, error) {
	pc, err := actor.NewPCFromSpec(spec)
	if err != nil {
		return nil, fmt.Errorf("building pc: %w", err)
	}

	gs := state.NewGameState(pc, location)
	q := gs.StartQuest(goal, e.cfg.QuestLength)
	if q.Type == quest.TypeCombat {
		q.BossAnchor = e.gen.PickBossAnchor(pc.Spec.Level)
	}

	if err := e.store.SaveGameState(ctx, gs.ID, gs); err != nil {
		return nil, err
	}

	e.logger.Info("Adventure started",
		"game_id", gs.ID,
		"quest_type", string(q.Type),
		"boss_anchor", q.BossAnchor)
	return gs, nil
}

// AdvanceTurn runs the full turn pipeline against a copy of gs and
// commits the copy only if every step succeeds. On error the passed-in
// state remains authoritative and nothing is persisted.
func (e *Engine) AdvanceTurn(ctx context.Context, gs *state.GameState, action string) (*state.TurnResult, error) {
	if gs.Quest == nil {
		return nil, ErrNoActiveQuest
	}

	lock := e.lockFor(gs.ID)
	lock.Lock()
	defer lock.Unlock()

	work, err := gs.DeepCopy()
	if err != nil {
		return nil, fmt.Errorf("copying game state: %w", err)
	}
	q := work.Quest

	// A quest already flagged finished gets a summary, not a turn.
	if q.Completed || q.Failed {
		return e.finishAdventure(ctx, work)
	}

	// Out of extension window: deterministic failure.
	if q.ForceFailIfExpired() {
		return e.finishAdventure(ctx, work)
	}

	sm := e.sessionsFor(work.ID)
	sm.IncrementTurn()
	if sm.GlobalResetIfNeeded() {
		e.logger.Debug("Global session reset", "game_id", work.ID)
	}

	work.TurnCount++
	work.RecordAction(action)

	// Encounter determination.
	enc, err := e.determineEncounter(ctx, sm, work, action)
	if err != nil {
		return nil, err
	}

	// Entity generation per encounter type.
	var opponent, partner string
	var pcDefeated, victory bool
	switch enc.Type {
	case encounter.TypeCombat, encounter.TypeFinal:
		victory, pcDefeated = e.resolveCombat(work, enc)
		if work.PendingMonster != nil {
			opponent = work.PendingMonster.Name
		}
	case encounter.TypeSocial:
		partner = e.socialPartner(work)
	}

	// Narrative generation.
	tc := e.turnContext(work, action, enc.Type, opponent, partner)
	result, err := e.narrativeCall(ctx, sm, tc, enc.Type)
	if err != nil {
		return nil, err
	}

	combat := enc.Type == encounter.TypeCombat || enc.Type == encounter.TypeFinal
	narrative := e.sanitizer.Sanitize(result.Narrative, combat, opponent)
	actions := e.sanitizer.SanitizeActions(result.SuggestedActions, combat)

	// Completion gating.
	turnReward := e.applyOutcome(work, enc, action, victory, pcDefeated, result.QuestCompleted)

	if err := e.store.SaveGameState(ctx, work.ID, work); err != nil {
		return nil, fmt.Errorf("committing turn: %w", err)
	}

	tr := &state.TurnResult{
		Narrative:        narrative,
		SuggestedActions: padActions(actions),
		Pending:          pendingEntity(work, enc.Type),
		EncounterType:    enc.Type,
		Reward:           turnReward,
		QuestCompleted:   q.Completed,
		QuestFailed:      q.Failed,
		GameState:        work,
	}
	return tr, nil
}

// finishAdventure archives the quest, commits, and emits the summary.
func (e *Engine) finishAdventure(ctx context.Context, work *state.GameState) (*state.TurnResult, error) {
	q := work.Quest
	completed := q.Completed
	failed := q.Failed || !q.Completed

	var narrative string
	if completed {
		narrative = fmt.Sprintf("Your adventure in %s is over: %q is done, settled across %d encounters. Word of the deed travels ahead of you.",
			work.Location, q.Goal, q.CurrentEncounter)
	} else {
		work.Quest.Failed = true
		narrative = fmt.Sprintf("Your adventure in %s has ended in failure. %q slipped beyond reach after %d encounters.",
			work.Location, q.Goal, q.CurrentEncounter)
	}

	work.ArchiveQuest()
	if err := e.store.SaveGameState(ctx, work.ID, work); err != nil {
		return nil, fmt.Errorf("committing summary: %w", err)
	}
	e.Forget(work.ID)

	return &state.TurnResult{
		Narrative:        narrative,
		SuggestedActions: []string{"Begin a new adventure", "Reflect on the journey"},
		QuestCompleted:   completed,
		QuestFailed:      failed,
		GameState:        work,
	}, nil
}

// determineEncounter picks this turn's encounter. Open social exchanges
// and live opponents are reused; otherwise the candidate set is derived
// from variety history and one bounded generator call picks among them.
func (e *Engine) determineEncounter(ctx context.Context, sm *session.Manager, work *state.GameState, action string) (*encounter.Encounter, error) {
	q := work.Quest

	// An open exchange absorbs the turn without re-deriving.
	if work.Exchange.Open() {
		work.Exchange.Turns++
		return &encounter.Encounter{
			Type:       encounter.TypeSocial,
			Difficulty: encounter.DifficultyFor(q.Stage()),
		}, nil
	}
	work.Exchange = nil

	// A live opponent keeps the fight going.
	if work.PendingMonster != nil && !work.PendingMonster.IsDefeated() {
		return &encounter.Encounter{
			Type:       encounter.TypeCombat,
			Difficulty: encounter.DifficultyFor(q.Stage()),
		}, nil
	}

	q.Advance()
	stage := q.Stage()
	difficulty := encounter.DifficultyFor(stage)
	candidates := encounter.Candidates(work.EncounterHistory, q.InFinalStage(), e.cfg.NoConsecutiveCombat)

	var encType encounter.Type
	if len(candidates) == 1 {
		encType = candidates[0]
	} else {
		picked, err := e.encounterCall(ctx, sm, candidates, work, action)
		if err != nil {
			return nil, err
		}
		encType = picked
	}

	work.RecordEncounter(encType)
	return &encounter.Encounter{Type: encType, Difficulty: difficulty}, nil
}

// encounterCall asks the encounter generator to pick among candidates,
// with one reduced-prompt retry on a malformed result. A valid but
// off-candidate pick falls back to the least recently used candidate.
func (e *Engine) encounterCall(ctx context.Context, sm *session.Manager, candidates []encounter.Type, work *state.GameState, action string) (encounter.Type, error) {
	tc := e.turnContext(work, action, "", "", "")

	raw, err := e.roleGenerate(ctx, sm, prompts.RoleEncounter,
		prompts.EncounterPrompt(candidates, tc, e.cfg.MaxPromptChars))
	var result *services.EncounterResult
	if err == nil {
		result, err = services.ParseEncounterResult(raw)
	}
	if err != nil && services.IsKind(err, services.ErrMalformed) {
		e.logger.Warn("Malformed encounter result, retrying with reduced prompt", "error", err)
		raw, err = e.roleGenerate(ctx, sm, prompts.RoleEncounter,
			prompts.EncounterPrompt(candidates, tc, e.cfg.MaxPromptChars/2))
		if err == nil {
			result, err = services.ParseEncounterResult(raw)
		}
		if err != nil && services.IsKind(err, services.ErrMalformed) {
			err = services.Unavailable(err)
		}
	}
	if err != nil {
		return "", fmt.Errorf("encounter generation: %w", err)
	}

	t, ok := encounter.ParseType(result.EncounterType)
	if !ok || !encounter.Allowed(candidates, t) {
		fallback := encounter.Fallback(work.EncounterHistory, candidates)
		e.logger.Debug("Encounter pick outside candidate set",
			"picked", result.EncounterType, "fallback", string(fallback))
		return fallback, nil
	}
	return t, nil
}

// narrativeCall invokes the narrative generator with one reduced-prompt
// retry on a malformed result.
func (e *Engine) narrativeCall(ctx context.Context, sm *session.Manager, tc prompts.TurnContext, encType encounter.Type) (*services.NarrativeResult, error) {
	raw, err := e.roleGenerate(ctx, sm, prompts.RoleNarrative,
		prompts.NarrativePrompt(tc, e.cfg.MaxPromptChars))
	var result *services.NarrativeResult
	if err == nil {
		result, err = services.ParseNarrativeResult(raw)
	}
	if err != nil && services.IsKind(err, services.ErrMalformed) {
		e.logger.Warn("Malformed narrative result, retrying with reduced prompt", "error", err)
		raw, err = e.roleGenerate(ctx, sm, prompts.RoleNarrative,
			prompts.ReducePrompt(tc, encType, e.cfg.MaxPromptChars))
		if err == nil {
			result, err = services.ParseNarrativeResult(raw)
		}
		if err != nil && services.IsKind(err, services.ErrMalformed) {
			err = services.Unavailable(err)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("narrative generation: %w", err)
	}
	return result, nil
}

// roleGenerate runs one generator call inside the role's session and
// applies the session lifecycle bookkeeping.
func (e *Engine) roleGenerate(ctx context.Context, sm *session.Manager, role prompts.Role, prompt string) (string, error) {
	sess := sm.Get(role)
	messages := append(sess.Messages(), chat.ChatMessage{
		Role:    chat.ChatRoleUser,
		Content: prompt,
	})

	raw, err := e.generator.Generate(ctx, messages)
	sm.RecordUse(role)
	if err != nil {
		return "", err
	}

	sess.Append(
		chat.ChatMessage{Role: chat.ChatRoleUser, Content: prompt},
		chat.ChatMessage{Role: chat.ChatRoleAgent, Content: raw},
	)
	sm.ResetIfNeeded(role)
	return raw, nil
}

// resolveCombat generates the opponent if the fight is fresh and runs
// one deterministic exchange. Returns whether the opponent fell and
// whether the player did.
func (e *Engine) resolveCombat(work *state.GameState, enc *encounter.Encounter) (victory, pcDefeated bool) {
	q := work.Quest
	pc := work.PC

	if work.PendingMonster == nil || work.PendingMonster.IsDefeated() {
		anchor := ""
		if q.Type == quest.TypeCombat && q.InFinalStage() {
			anchor = q.BossAnchor
		}
		work.PendingMonster = e.gen.GenerateMonster(pc.Spec.Level, enc.Difficulty, anchor, work.AffixHistory)
	}

	m := work.PendingMonster
	m.TakeDamage(pc.Spec.Attack + e.rng.Intn(4))
	if m.IsDefeated() {
		return true, false
	}

	// Counterattack. Armor soaks a third of incoming damage.
	dmg := m.Attack - pc.Spec.AC/3
	if dmg < 1 {
		dmg = 1
	}
	hp := pc.Actor.HP() - dmg
	if hp <= 0 {
		_ = pc.Actor.SetHP(0)
		return false, true
	}
	_ = pc.Actor.SetHP(hp)
	return false, false
}

// socialPartner reuses the open exchange's partner or picks a fresh NPC
// deterministically from the tables.
func (e *Engine) socialPartner(work *state.GameState) string {
	if work.Exchange != nil && work.Exchange.Partner != "" {
		return work.Exchange.Partner
	}
	npc := e.gen.PickNPC(work.NPCHistory)
	if work.NPCs == nil {
		work.NPCs = make(map[string]actor.NPC)
	}
	work.NPCs[npc.Name] = npc
	work.Exchange = &state.SocialExchange{
		Partner: npc.Name,
		Turns:   1,
		TurnCap: e.cfg.SocialTurnCap,
	}
	return npc.Name
}

// applyOutcome applies completion gating and deterministic rewards to
// the working copy and returns the turn's reward, if any.
func (e *Engine) applyOutcome(work *state.GameState, enc *encounter.Encounter, action string, victory, pcDefeated, narrativeCompleted bool) *state.TurnReward {
	q := work.Quest
	pc := work.PC

	if pcDefeated {
		q.Failed = true
		return nil
	}

	var reward *state.TurnReward
	if victory && work.PendingMonster != nil {
		base := e.gen.Reward(enc.Difficulty, pc.Spec.Level)
		levels, err := pc.AddXP(base.XP)
		if err != nil {
			e.logger.Error("Failed to apply XP", "error", err)
		}
		pc.AddGold(base.Gold)
		reward = &state.TurnReward{XP: base.XP, Gold: base.Gold, LevelsUp: levels}

		if loot, ok := e.gen.RollLoot(enc.Difficulty, work.AffixHistory); ok {
			pc.AcquireItem(loot.Name)
			reward.Loot = loot
		}

		if q.RecordVictory(work.PendingMonster.BaseName) && q.Type == quest.TypeCombat && q.InFinalStage() {
			if err := q.CompleteCombat(); err != nil {
				e.logger.Error("Combat completion rejected", "error", err)
			}
		}
		work.PendingMonster = nil
	}

	if q.Type == quest.TypeRetrieval && q.InFinalStage() && q.MatchesRetrieval(action) {
		if err := q.CompleteRetrieval(action); err != nil {
			e.logger.Error("Retrieval completion rejected", "error", err)
		} else {
			pc.AcquireItem(q.ObjectiveKeyword)
		}
	}

	if narrativeCompleted && !q.Completed {
		if err := q.CompleteFromNarrative(); err != nil {
			// Proposed outside the allowed window; reject and log.
			e.logger.Warn("Narrative completion rejected", "error", err)
		}
	}

	return reward
}

func (e *Engine) turnContext(work *state.GameState, action string, encType encounter.Type, opponent, partner string) prompts.TurnContext {
	q := work.Quest
	return prompts.TurnContext{
		PlayerAction:    action,
		QuestStageLabel: q.StageLabel(),
		QuestGoal:       q.Goal,
		EncounterType:   encType,
		OpponentName:    opponent,
		PartnerName:     partner,
		Location:        work.Location,
		PCSummary:       actor.BuildSummary(work.PC),
		RecentLog:       work.RecentActions,
		EncounterCounts: work.EncounterCounts,
	}
}

// pendingEntity derives what the player must react to next turn.
func pendingEntity(work *state.GameState, encType encounter.Type) *state.PendingEntity {
	if work.PendingMonster != nil && !work.PendingMonster.IsDefeated() {
		return &state.PendingEntity{Kind: state.PendingOpponent, Name: work.PendingMonster.Name}
	}
	if work.Exchange.Open() {
		return &state.PendingEntity{Kind: state.PendingPartner, Name: work.Exchange.Partner}
	}
	if encType == encounter.TypeTrap {
		return &state.PendingEntity{Kind: state.PendingHazard, Name: "trap"}
	}
	return nil
}

// padActions guarantees the player always has at least two options.
func padActions(actions []string) []string {
	defaults := []string{"Press on", "Take stock of your surroundings"}
	for _, d := range defaults {
		if len(actions) >= 2 {
			break
		}
		actions = append(actions, d)
	}
	return actions
}
