package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/keepsake-labs/recall-cli/internal/adapters/driving/tui/styles"
	"github.com/keepsake-labs/recall-cli/internal/core/domain"
)

// historyLoadedMsg delivers the stored chat history at startup.
type historyLoadedMsg struct {
	messages []domain.ChatMessage
	err      error
}

// answerMsg delivers the outcome of one Ask call.
type answerMsg struct {
	reply *domain.ChatMessage
	err   error
}

// budgetMsg delivers a refreshed budget status for the status bar.
type budgetMsg struct {
	status *domain.BudgetStatus
}

// App is the chat TUI following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// projectID scopes the session.
	projectID string

	// styles holds the TUI styles.
	styles *styles.Styles

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// transcript is the rendered conversation, oldest first.
	transcript []domain.ChatMessage

	// budget is the latest budget status, nil until first refresh.
	budget *domain.BudgetStatus

	// waiting is true while an Ask call is in flight.
	waiting bool

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates the first WindowSizeMsg has arrived.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new chat TUI scoped to one project.
func NewApp(ports *Ports, projectID string) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()

	ti := textinput.New()
	ti.Placeholder = "Ask a question..."
	ti.Focus()
	ti.CharLimit = 1024

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &App{
		ports:     ports,
		ctx:       context.Background(),
		projectID: projectID,
		styles:    s,
		input:     ti,
		spinner:   sp,
	}, nil
}

// WithContext sets the context used for service calls.
func (a *App) WithContext(ctx context.Context) *App {
	if ctx != nil {
		a.ctx = ctx
	}
	return a
}

// Init loads the stored history and starts the cursor blink.
func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.loadHistory(), a.refreshBudget())
}

// Update handles messages following the Elm architecture.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		a.ready = true
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case historyLoadedMsg:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.transcript = msg.messages
		a.refreshViewport()
		return a, nil

	case answerMsg:
		a.waiting = false
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.err = nil
		a.transcript = append(a.transcript, *msg.reply)
		a.refreshViewport()
		return a, a.refreshBudget()

	case budgetMsg:
		a.budget = msg.status
		return a, nil

	case spinner.TickMsg:
		if !a.waiting {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return a, tea.Quit

	case tea.KeyEnter:
		if a.waiting {
			return a, nil
		}
		question := strings.TrimSpace(a.input.Value())
		if question == "" {
			return a, nil
		}
		a.input.SetValue("")
		a.waiting = true
		a.err = nil
		a.transcript = append(a.transcript, domain.ChatMessage{
			ProjectID: a.projectID,
			Role:      domain.RoleUser,
			Content:   question,
		})
		a.refreshViewport()
		return a, tea.Batch(a.ask(question), a.spinner.Tick)

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// View renders the chat interface.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Recall — " + a.projectID))
	b.WriteString("\n")
	b.WriteString(a.viewport.View())
	b.WriteString("\n")
	b.WriteString(a.styles.InputField.Width(a.width - 2).Render(a.input.View()))
	b.WriteString("\n")
	b.WriteString(a.statusLine())
	return b.String()
}

func (a *App) statusLine() string {
	if a.waiting {
		return a.styles.StatusBar.Render(a.spinner.View() + " Generating...")
	}
	if a.err != nil {
		return a.styles.Error.Render("Error: " + a.err.Error())
	}

	help := "enter: ask  pgup/pgdn: scroll  esc: quit"
	if a.budget != nil && a.budget.Limit > 0 {
		spend := fmt.Sprintf("spend %.4f/%.4f", a.budget.Spend, a.budget.Limit)
		if !a.budget.WithinBudget {
			spend = a.styles.Warning.Render(spend + " (exhausted)")
		}
		return a.styles.StatusBar.Render(spend + "  " + help)
	}
	return a.styles.Help.Render(help)
}

// resize lays the viewport out for the current terminal size. The
// header, input box and status line take five rows.
func (a *App) resize() {
	height := a.height - 5
	if height < 1 {
		height = 1
	}
	if a.viewport.Width == 0 {
		a.viewport = viewport.New(a.width, height)
	} else {
		a.viewport.Width = a.width
		a.viewport.Height = height
	}
	a.input.Width = a.width - 6
	a.refreshViewport()
}

func (a *App) refreshViewport() {
	a.viewport.SetContent(a.renderTranscript())
	a.viewport.GotoBottom()
}

func (a *App) renderTranscript() string {
	if len(a.transcript) == 0 {
		return a.styles.Muted.Render("No messages yet. Ask something about your documents.")
	}

	var b strings.Builder
	for i, msg := range a.transcript {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch msg.Role {
		case domain.RoleUser:
			b.WriteString(a.styles.UserLabel.Render("You: "))
		default:
			b.WriteString(a.styles.AssistantLabel.Render("Recall: "))
		}
		b.WriteString(a.styles.Normal.Render(msg.Content))

		for _, src := range msg.Sources {
			b.WriteString("\n")
			b.WriteString(a.styles.Muted.Render(
				fmt.Sprintf("  · %s #%d (%.2f)", src.DocumentName, src.Chunk.Index, src.Score)))
		}
		if msg.Usage != nil {
			b.WriteString("\n")
			b.WriteString(a.styles.Muted.Render(
				fmt.Sprintf("  %d tokens, %.4f", msg.Usage.TokensUsed, msg.Usage.Cost)))
		}
	}
	return b.String()
}

// ==================== Commands ====================

func (a *App) loadHistory() tea.Cmd {
	return func() tea.Msg {
		messages, err := a.ports.Query.History(a.ctx, a.projectID)
		return historyLoadedMsg{messages: messages, err: err}
	}
}

func (a *App) ask(question string) tea.Cmd {
	return func() tea.Msg {
		reply, err := a.ports.Query.Ask(a.ctx, a.projectID, question)
		return answerMsg{reply: reply, err: err}
	}
}

func (a *App) refreshBudget() tea.Cmd {
	if a.ports.Budget == nil {
		return nil
	}
	return func() tea.Msg {
		status, err := a.ports.Budget.Status(a.ctx, a.projectID)
		if err != nil {
			// The status bar is informational; a failed refresh keeps
			// the previous value.
			return budgetMsg{status: a.budget}
		}
		return budgetMsg{status: status}
	}
}
