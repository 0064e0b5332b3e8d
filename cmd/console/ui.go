package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/Subteran/DunGen-sub001/pkg/actor"
	"github.com/Subteran/DunGen-sub001/pkg/state"
)

const (
	AgentName       = "Narrator"
	PlaceHolderText = "What do you do?"
)

// transcriptEntry is one line of the local adventure log. The server
// keeps no chat history, so the console keeps its own.
type transcriptEntry struct {
	role    string // "narrator", "player", "system"
	content string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	gameState    *state.GameState
	transcript   []transcriptEntry
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	goalInput    textinput.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Character selection state
	showSetupModal bool
	enteringGoal   bool
	pcs            []string
	pcMap          map[string]string
	selectedPC     int
	loadingPCs     bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type turnResponseMsg struct {
	result *state.TurnResult
	err    error
}

type gameStateMsg struct {
	gameState *state.GameState
	err       error
}

type pcsLoadedMsg struct {
	pcs   []string
	pcMap map[string]string
	err   error
}

type gameCreatedMsg struct {
	gameState *state.GameState
	err       error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	rewardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")) // gold

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	gi := textinput.New()
	gi.Placeholder = "Slay the bandit leader of Blackmire"
	gi.CharLimit = 200
	gi.Width = 50

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:         cfg,
		client:         client,
		textarea:       ta,
		goalInput:      gi,
		chatViewport:   chatVp,
		metaViewport:   metaVp,
		ready:          false,
		showSetupModal: true,
		loadingPCs:     true,
		selectedPC:     0,
	}
}

func writeMetadata(gs *state.GameState) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("ADVENTURE") + "\n\n")

	content.WriteString("Game ID:\n")
	content.WriteString(gs.ID.String()[:8] + "...\n\n")

	if gs.PC != nil {
		content.WriteString("Character:\n")
		content.WriteString(actor.BuildSummary(gs.PC) + "\n")
		content.WriteString(fmt.Sprintf("Gold: %d  XP: %d\n\n", gs.PC.Spec.Gold, gs.PC.Spec.XP))
	}

	if q := gs.Quest; q != nil {
		content.WriteString("Quest:\n")
		content.WriteString(q.Goal + "\n")
		content.WriteString(fmt.Sprintf("%s (%d/%d)\n\n", q.StageLabel(), q.CurrentEncounter, q.TotalEncounters))
	} else {
		content.WriteString("Quest:\nNone active\n\n")
	}

	if gs.PendingMonster != nil && !gs.PendingMonster.IsDefeated() {
		content.WriteString("Facing:\n")
		content.WriteString(fmt.Sprintf("%s (HP %d/%d)\n\n", gs.PendingMonster.Name, gs.PendingMonster.HP, gs.PendingMonster.MaxHP))
	}

	if gs.PC != nil && len(gs.PC.Spec.Inventory) > 0 {
		content.WriteString("Inventory:\n")
		for _, item := range gs.PC.Spec.Inventory {
			content.WriteString("• " + item + "\n")
		}
		content.WriteString("\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Act\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /sheet: Character\n")

	return content.String()
}

// writeChatContent rebuilds the adventure log for the current viewport width
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding

	var content strings.Builder
	content.WriteString(titleStyle.Render("DUNGEN") + "\n\n")
	content.WriteString("Describe your actions below to play.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 1))) + "\n\n")

	for _, entry := range m.transcript {
		switch entry.role {
		case "narrator":
			prefix := narratorStyle.Render(AgentName + ": ")
			content.WriteString(prefix + wordwrap.String(entry.content, max(chatWidth-len(AgentName)-2, 20)) + "\n\n")
		case "player":
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(entry.content, max(chatWidth-6, 20)) + "\n\n")
		case "system":
			content.WriteString(rewardStyle.Render(wordwrap.String(entry.content, max(chatWidth-2, 20))) + "\n\n")
		}
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.showSetupModal {
		return m.loadPCs()
	}
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showSetupModal {
		return m.updateSetupModal(msg)
	}

	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.writeChatContent()
		if m.gameState != nil {
			m.metaViewport.SetContent(writeMetadata(m.gameState))
		}
		m.ready = true

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0

			m.transcript = append(m.transcript, transcriptEntry{role: "player", content: input})
			m.writeChatContent()

			return m, tea.Batch(m.sendTurnAction(input), progressTick())
		}

	case turnResponseMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.writeChatContent()
			currentContent := m.chatViewport.View()
			errorMsg := errorStyle.Render("Error: "+msg.err.Error()) + "\n\n"
			m.chatViewport.SetContent(currentContent + errorMsg)
			m.chatViewport.GotoBottom()
			return m, nil
		}
		m.applyTurnResult(msg.result)
		m.writeChatContent()
		return m, nil

	case gameStateMsg:
		if msg.err == nil && msg.gameState != nil {
			m.gameState = msg.gameState
			m.metaViewport.SetContent(writeMetadata(m.gameState))
		}

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m *ConsoleUI) layout() {
	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

// applyTurnResult folds a committed turn into the transcript and the
// cached game state.
func (m *ConsoleUI) applyTurnResult(result *state.TurnResult) {
	m.transcript = append(m.transcript, transcriptEntry{role: "narrator", content: result.Narrative})

	if r := result.Reward; r != nil && (r.XP > 0 || r.Gold > 0 || r.Loot != nil) {
		var parts []string
		if r.XP > 0 {
			parts = append(parts, fmt.Sprintf("+%d XP", r.XP))
		}
		if r.Gold > 0 {
			parts = append(parts, fmt.Sprintf("+%d gold", r.Gold))
		}
		if r.Loot != nil {
			parts = append(parts, "found "+r.Loot.Name)
		}
		if r.LevelsUp > 0 {
			parts = append(parts, fmt.Sprintf("LEVEL UP x%d", r.LevelsUp))
		}
		m.transcript = append(m.transcript, transcriptEntry{role: "system", content: strings.Join(parts, ", ")})
	}

	if result.QuestCompleted {
		m.transcript = append(m.transcript, transcriptEntry{role: "system", content: "Quest complete! Press Enter with any action to hear the epilogue."})
	}
	if result.QuestFailed {
		m.transcript = append(m.transcript, transcriptEntry{role: "system", content: "Quest failed. Press Enter with any action to hear how it ends."})
	}

	if len(result.SuggestedActions) > 0 {
		m.transcript = append(m.transcript, transcriptEntry{
			role:    "system",
			content: "Suggestions: " + strings.Join(result.SuggestedActions, " | "),
		})
	}

	if result.GameState != nil {
		m.gameState = result.GameState
		m.metaViewport.SetContent(writeMetadata(m.gameState))
	}
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))

	switch cmd {
	case "/help":
		helpText := `
Commands:
• /help - Show this help
• /sheet - Show your character sheet
• Ctrl+C - Quit game

How to play:
• Type your actions and press Enter
• The narrator describes each encounter
• Combat and rewards are resolved by the engine
`
		currentContent := m.chatViewport.View()
		m.chatViewport.SetContent(currentContent + titleStyle.Render("Help:") + helpText + "\n")
		m.chatViewport.GotoBottom()

	case "/sheet":
		var sheet strings.Builder
		sheet.WriteString(titleStyle.Render("Character:") + "\n")
		if m.gameState != nil && m.gameState.PC != nil {
			pc := m.gameState.PC
			sheet.WriteString(actor.BuildSummary(pc) + "\n")
			sheet.WriteString(fmt.Sprintf("Gold: %d  XP: %d  Attack: %d\n", pc.Spec.Gold, pc.Spec.XP, pc.Spec.Attack))
			if len(pc.Spec.Inventory) > 0 {
				sheet.WriteString("Carrying: " + strings.Join(pc.Spec.Inventory, ", ") + "\n")
			}
		} else {
			sheet.WriteString("No character loaded.\n")
		}
		sheet.WriteString("\n")

		currentContent := m.chatViewport.View()
		m.chatViewport.SetContent(currentContent + sheet.String())
		m.chatViewport.GotoBottom()
	}

	m.textarea.Reset()
	return m, nil
}

func (m ConsoleUI) sendTurnAction(action string) tea.Cmd {
	return func() tea.Msg {
		result, err := sendTurn(m.client, m.config.APIBaseURL, m.gameState.ID, action)
		return turnResponseMsg{result, err}
	}
}

func (m ConsoleUI) loadPCs() tea.Cmd {
	return func() tea.Msg {
		names, pcMap, err := listPCs(m.client, m.config.APIBaseURL)
		return pcsLoadedMsg{names, pcMap, err}
	}
}

func (m ConsoleUI) createGameForPC(pcID, goal string) tea.Cmd {
	return func() tea.Msg {
		gs, err := createGame(m.client, m.config.APIBaseURL, pcID, goal)
		return gameCreatedMsg{gs, err}
	}
}

func (m ConsoleUI) updateSetupModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case pcsLoadedMsg:
		m.loadingPCs = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.pcs = msg.pcs
			m.pcMap = msg.pcMap
		}

	case gameCreatedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.gameState = msg.gameState
			m.showSetupModal = false
			m.enteringGoal = false
			if m.width > 0 && m.height > 0 {
				m.layout()
			}
			if m.gameState.Quest != nil {
				m.transcript = append(m.transcript, transcriptEntry{
					role:    "system",
					content: "Your quest: " + m.gameState.Quest.Goal,
				})
			}
			m.writeChatContent()
			m.metaViewport.SetContent(writeMetadata(m.gameState))
			m.textarea.Focus()
			m.ready = true
		}
		return m, textarea.Blink

	case tea.KeyMsg:
		if m.loadingPCs {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		if m.err != nil {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		if m.enteringGoal {
			switch msg.Type {
			case tea.KeyCtrlC, tea.KeyEsc:
				m.enteringGoal = false
				m.goalInput.Blur()
				return m, nil
			case tea.KeyEnter:
				goal := strings.TrimSpace(m.goalInput.Value())
				if goal == "" {
					goal = m.goalInput.Placeholder
				}
				pcName := m.pcs[m.selectedPC]
				m.loading = true
				return m, m.createGameForPC(m.pcMap[pcName], goal)
			}
			var cmd tea.Cmd
			m.goalInput, cmd = m.goalInput.Update(msg)
			return m, cmd
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.selectedPC > 0 {
				m.selectedPC--
			}
		case tea.KeyDown:
			if m.selectedPC < len(m.pcs)-1 {
				m.selectedPC++
			}
		case tea.KeyEnter:
			if len(m.pcs) > 0 {
				m.enteringGoal = true
				m.goalInput.Focus()
				return m, textinput.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to abandon your adventure?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderSetupModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	if m.loadingPCs {
		content.WriteString(modalTitleStyle.Render("Loading Characters..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Fetching available characters..."))
	} else if m.err != nil {
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Setup failed: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	} else if m.loading {
		content.WriteString(modalTitleStyle.Render("Creating Adventure..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Rolling up your quest..."))
	} else if m.enteringGoal {
		content.WriteString(modalTitleStyle.Render("Name Your Quest"))
		content.WriteString("\n\n")
		content.WriteString("What do you set out to do?\n\n")
		content.WriteString(m.goalInput.View())
		content.WriteString("\n\n")
		content.WriteString(promptStyle.Render("Enter to begin, Esc to go back"))
	} else {
		content.WriteString(modalTitleStyle.Render("Choose Your Character"))
		content.WriteString("\n\n")

		for i, pc := range m.pcs {
			if i == m.selectedPC {
				content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", pc)))
			} else {
				content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", pc)))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showSetupModal {
		return m.renderSetupModal()
	}

	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}

	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
