package session

import (
	"log/slog"

	"github.com/Subteran/DunGen-sub001/pkg/chat"
	"github.com/Subteran/DunGen-sub001/pkg/prompts"
)

const (
	// DefaultResetThreshold is the per-role use count after which a
	// role's conversational session is discarded and re-seeded.
	DefaultResetThreshold = 10
	// DefaultGlobalResetTurns is the turn count after which every
	// role's session is reset regardless of individual counters. This
	// bounds worst-case context growth for rarely used roles.
	DefaultGlobalResetTurns = 30
)

// Config carries the externally supplied reset thresholds.
type Config struct {
	ResetThresholds  map[prompts.Role]int
	GlobalResetTurns int
}

// Session is one role's conversation with its generator. The history is
// seeded with the role's static instructions and grows with use until a
// reset discards it.
type Session struct {
	role           prompts.Role
	useCount       int
	resetThreshold int
	messages       []chat.ChatMessage
}

// UseCount returns the number of uses since the last reset.
func (s *Session) UseCount() int {
	return s.useCount
}

// Messages returns a copy of the session's conversation history.
func (s *Session) Messages() []chat.ChatMessage {
	out := make([]chat.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Append records an exchange into the session history.
func (s *Session) Append(msgs ...chat.ChatMessage) {
	s.messages = append(s.messages, msgs...)
}

func (s *Session) seed() {
	s.messages = s.messages[:0]
	if instr := prompts.Instructions(s.role); instr != "" {
		s.messages = append(s.messages, chat.ChatMessage{
			Role:    chat.ChatRoleSystem,
			Content: instr,
		})
	}
}

// Manager owns one session per generator role and enforces the reset
// discipline: per-role use thresholds plus a global turn-count reset.
// After any reset a role's use counter is exactly 0.
type Manager struct {
	cfg       Config
	logger    *slog.Logger
	roles     map[prompts.Role]*Session
	turnCount int
}

// NewManager creates a session manager.
func NewManager(cfg Config, logger *slog.Logger) *Manager {
	if cfg.GlobalResetTurns <= 0 {
		cfg.GlobalResetTurns = DefaultGlobalResetTurns
	}
	return &Manager{
		cfg:    cfg,
		logger: logger,
		roles:  make(map[prompts.Role]*Session),
	}
}

func (m *Manager) threshold(role prompts.Role) int {
	if t, ok := m.cfg.ResetThresholds[role]; ok && t > 0 {
		return t
	}
	return DefaultResetThreshold
}

// Get returns the session for a role, creating and seeding it on first
// use.
func (m *Manager) Get(role prompts.Role) *Session {
	s, ok := m.roles[role]
	if !ok {
		s = &Session{role: role, resetThreshold: m.threshold(role)}
		s.seed()
		m.roles[role] = s
	}
	return s
}

// RecordUse increments a role's use counter after a generator call.
func (m *Manager) RecordUse(role prompts.Role) {
	m.Get(role).useCount++
}

// ResetIfNeeded discards and re-seeds a role's session when its use
// counter has crossed the threshold. Returns true if a reset happened.
func (m *Manager) ResetIfNeeded(role prompts.Role) bool {
	s := m.Get(role)
	if s.useCount < s.resetThreshold {
		return false
	}
	m.reset(s)
	return true
}

// IncrementTurn advances the global turn counter.
func (m *Manager) IncrementTurn() {
	m.turnCount++
}

// TurnCount returns the global turn counter.
func (m *Manager) TurnCount() int {
	return m.turnCount
}

// GlobalResetIfNeeded resets every role's session when the global turn
// counter crosses its threshold, then rewinds the counter. Returns true
// if a reset happened.
func (m *Manager) GlobalResetIfNeeded() bool {
	if m.turnCount < m.cfg.GlobalResetTurns {
		return false
	}
	for _, s := range m.roles {
		m.reset(s)
	}
	m.turnCount = 0
	return true
}

func (m *Manager) reset(s *Session) {
	if m.logger != nil {
		m.logger.Debug("Resetting generator session",
			"role", string(s.role),
			"use_count", s.useCount)
	}
	s.useCount = 0
	s.seed()
}
