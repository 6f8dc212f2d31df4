// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docent/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docent/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docent/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docent/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docent/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docent/internal/core/domain"
	"github.com/custodia-labs/docent/internal/core/ports/driving"
)

// ErrNoChatService indicates that no chat service was provided.
var ErrNoChatService = errors.New("chat service is required")

// Exchange is one rendered question and answer.
type Exchange struct {
	Question string
	Answer   string
	Sources  []string
	Failed   bool
}

// View shows the conversation transcript above a question input.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.Prompt
	transcript viewport.Model
	statusbar  *status.Bar

	chatService driving.ChatService
	ctx         context.Context
	session     string

	exchanges []Exchange
	pending   string
	waiting   bool

	width  int
	height int
	ready  bool
	err    error
}

// NewView creates a new chat view bound to a session.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	chatService driving.ChatService,
	session string,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetBindings(km.ChatHelp())

	return &View{
		styles:      s,
		keymap:      km,
		input:       input.NewPrompt(s),
		transcript:  viewport.New(80, 14),
		statusbar:   bar,
		chatService: chatService,
		ctx:         context.Background(),
		session:     session,
		width:       80,
		height:      24,
	}
}

// WithContext sets the context for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Init(), v.loadHistory())
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case historyLoaded:
		if msg.err == nil && len(v.exchanges) == 0 {
			v.exchanges = msg.exchanges
			v.refresh()
		}
		return v, nil

	case messages.SessionReset:
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.exchanges = nil
		v.err = nil
		v.statusbar.Clear()
		v.statusbar.SetMessage("Started a new conversation")
		v.refresh()
		return v, nil

	case messages.ErrorOccurred:
		v.waiting = false
		v.pending = ""
		v.setError(msg.Err)
		v.refresh()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case keymap.Matches(msg.String(), v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case keymap.Matches(msg.String(), v.keymap.Reset):
		if v.waiting {
			return v, nil
		}
		return v, v.resetSession()

	case keymap.Matches(msg.String(), v.keymap.ScrollUp),
		keymap.Matches(msg.String(), v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd

	case keymap.Matches(msg.String(), v.keymap.Send):
		question := v.input.Question()
		if question == "" || v.waiting {
			return v, nil
		}
		v.pending = question
		v.waiting = true
		v.err = nil
		v.input.Reset()
		v.statusbar.SetState(status.StateThinking)
		v.refresh()
		return v, v.ask(question)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) ask(question string) tea.Cmd {
	return func() tea.Msg {
		if v.chatService == nil {
			return messages.ErrorOccurred{Err: ErrNoChatService}
		}
		answer, err := v.chatService.Ask(v.ctx, v.session, question)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

func (v *View) resetSession() tea.Cmd {
	return func() tea.Msg {
		if v.chatService == nil {
			return messages.ErrorOccurred{Err: ErrNoChatService}
		}
		err := v.chatService.ResetSession(v.ctx, v.session)
		return messages.SessionReset{SessionID: v.session, Err: err}
	}
}

type historyLoaded struct {
	exchanges []Exchange
	err       error
}

func (v *View) loadHistory() tea.Cmd {
	return func() tea.Msg {
		if v.chatService == nil {
			return historyLoaded{}
		}
		turns, err := v.chatService.History(v.ctx, v.session)
		if err != nil {
			return historyLoaded{err: err}
		}
		exchanges := make([]Exchange, len(turns))
		for i, t := range turns {
			exchanges[i] = Exchange{Question: t.User, Answer: t.Assistant}
		}
		return historyLoaded{exchanges: exchanges}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.waiting = false
	v.pending = ""

	if msg.Err != nil {
		v.setError(msg.Err)
		v.refresh()
		return
	}

	v.err = nil
	v.exchanges = append(v.exchanges, Exchange{
		Question: msg.Question,
		Answer:   msg.Answer.Text,
		Sources:  msg.Answer.Sources,
		Failed:   msg.Answer.State == domain.ChatStateFailed,
	})
	v.statusbar.SetMessage("")
	if msg.Answer.State == domain.ChatStateFailed {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage("the model did not answer")
	} else {
		v.statusbar.SetState(status.StateAnswered)
		v.statusbar.SetSourceCount(len(msg.Answer.Sources))
	}
	v.refresh()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// refresh re-renders the transcript and scrolls to the newest exchange.
func (v *View) refresh() {
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.exchanges) == 0 && v.pending == "" {
		return v.styles.Muted.Render("Ask anything about the indexed documents.")
	}

	wrap := lipgloss.NewStyle().Width(max(v.width-10, 20))
	blocks := make([]string, 0, len(v.exchanges)+1)

	for _, ex := range v.exchanges {
		var b strings.Builder
		b.WriteString(v.styles.Question.Render("You: "))
		b.WriteString(wrap.Render(ex.Question))
		b.WriteString("\n")
		b.WriteString(v.styles.Answer.Render("Docent: "))
		if ex.Failed {
			b.WriteString(v.styles.Error.Render(wrap.Render(ex.Answer)))
		} else {
			b.WriteString(wrap.Render(ex.Answer))
		}
		if len(ex.Sources) > 0 {
			b.WriteString("\n")
			b.WriteString(v.styles.Source.Render("Sources: " + strings.Join(ex.Sources, ", ")))
		}
		blocks = append(blocks, b.String())
	}

	if v.pending != "" {
		blocks = append(blocks,
			v.styles.Question.Render("You: ")+wrap.Render(v.pending)+"\n"+v.styles.Muted.Render("Thinking..."))
	}

	return strings.Join(blocks, "\n\n")
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	header := v.styles.Title.Render("Docent") + "  " + v.styles.Muted.Render("session "+v.session)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		v.transcript.View(),
		"",
		v.input.View(),
		v.statusbar.View(),
	)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	// Header, spacing, bordered input and status bar take eight rows.
	v.transcript.Width = width
	v.transcript.Height = max(height-8, 3)
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.refresh()
}

// Reset clears the draft question and error state without touching history.
func (v *View) Reset() {
	v.input.Reset()
	v.input.Focus()
	v.err = nil
	v.statusbar.Clear()
}

// SetSession switches the view to another session.
func (v *View) SetSession(session string) {
	v.session = session
	v.exchanges = nil
	v.refresh()
}

// Session returns the current session id.
func (v *View) Session() string {
	return v.session
}

// Exchanges returns the rendered conversation.
func (v *View) Exchanges() []Exchange {
	return v.exchanges
}

// Waiting reports whether a question is in flight.
func (v *View) Waiting() bool {
	return v.waiting
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}
