package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	MenuView ViewState = iota
	AnalyzeView
	ReviewView
	ConfirmView
	ApplyView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	view   ViewState
	engine tasks.SyncEngine
	width  int
	height int

	menu   list.Model
	review list.Model
	kind   models.RunKind
	run    *tasks.RunResult
	errors []tasks.SyncError

	progressChan chan tasks.ProgressUpdate
	doneChan     chan Msg
	progress     tasks.ProgressUpdate

	results []tasks.ActionResult
	err     error
	help    help.Model
	keys    keyMap
}

// NewModel creates a new TUI model driven by engine.
func NewModel(ctx context.Context, engine tasks.SyncEngine) *Model {
	menu := list.New(menuItems(), list.NewDefaultDelegate(), 0, 0)
	menu.Title = "tunesync"
	menu.SetFilteringEnabled(false)

	return &Model{
		ctx:    ctx,
		view:   MenuView,
		engine: engine,
		menu:   menu,
		review: newReviewList(nil, "", 0, 0),
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

func newReviewList(actions []tasks.ProposedAction, title string, width, height int) list.Model {
	items := make([]list.Item, len(actions))
	for i, a := range actions {
		items[i] = actionItem{action: a, selected: true}
	}
	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = title
	return l
}

// Init implements [tea.Model]; nothing is fetched until an analysis is chosen.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := max(msg.Width-4, 0), max(msg.Height-8, 0)
		m.menu.SetSize(w, h)
		m.review.SetSize(w, h)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case MenuView:
			return m.handleMenuKeys(msg)
		case ReviewView:
			return m.handleReviewKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		default:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgAnalysisDone:
		m.stopWaiting()
		data := msg.data.(analysis)
		if data.err != nil {
			m.err = data.err
			m.view = ResultView
			return m, nil
		}
		m.run = data.result
		m.errors = data.result.Errors()
		m.review = newReviewList(data.result.Actions(), fmt.Sprintf("Proposed %s actions", m.kind), max(m.width-4, 0), max(m.height-8, 0))
		m.view = ReviewView
		return m, nil

	case MsgApplyDone:
		m.stopWaiting()
		data := msg.data.(applied)
		m.results = data.results
		m.err = data.err
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case MenuView:
		return m.renderMenu()
	case AnalyzeView, ApplyView:
		return m.renderProgress()
	case ReviewView:
		return m.renderReview()
	case ConfirmView:
		return m.renderConfirm()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

// Selected returns the actions currently marked for execution, in review order.
func (m *Model) Selected() []tasks.ProposedAction {
	var actions []tasks.ProposedAction
	for _, item := range m.review.Items() {
		if a, ok := item.(actionItem); ok && a.selected {
			actions = append(actions, a.action)
		}
	}
	return actions
}

func (m *Model) handleMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.menu.SelectedItem().(menuItem); ok {
			return m, m.startAnalysis(item.kind)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

func (m *Model) handleReviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.review.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.review, cmd = m.review.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.reset()
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		if item, ok := m.review.SelectedItem().(actionItem); ok {
			item.selected = !item.selected
			return m, m.review.SetItem(m.review.GlobalIndex(), item)
		}
		return m, nil
	case key.Matches(msg, m.keys.all):
		return m, m.toggleAll()
	case key.Matches(msg, m.keys.enter):
		if len(m.Selected()) > 0 {
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.review, cmd = m.review.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
		m.view = ReviewView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		return m, m.startApply(m.Selected())
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.reset()
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case MenuView:
		m.menu, cmd = m.menu.Update(msg)
	case ReviewView:
		m.review, cmd = m.review.Update(msg)
	}
	return m, cmd
}

// toggleAll selects every action unless all are already selected, in which case it clears them.
func (m *Model) toggleAll() tea.Cmd {
	items := m.review.Items()
	target := len(m.Selected()) != len(items)
	for i, item := range items {
		if a, ok := item.(actionItem); ok {
			a.selected = target
			items[i] = a
		}
	}
	return m.review.SetItems(items)
}

func (m *Model) reset() {
	m.view = MenuView
	m.review = newReviewList(nil, "", max(m.width-4, 0), max(m.height-8, 0))
	m.run = nil
	m.errors = nil
	m.results = nil
	m.err = nil
	m.progress = tasks.ProgressUpdate{}
}

func (m *Model) startAnalysis(kind models.RunKind) tea.Cmd {
	m.kind = kind
	m.view = AnalyzeView
	progress, done := m.startWaiting()

	go func() {
		result, err := m.engine.Analyze(m.ctx, kind, progress)
		done <- analysisDoneMsg(result, err)
	}()

	return m.waitForProgress()
}

func (m *Model) startApply(actions []tasks.ProposedAction) tea.Cmd {
	m.view = ApplyView
	m.progress = tasks.ProgressUpdate{}
	progress, done := m.startWaiting()
	run := m.run

	go func() {
		results, err := m.engine.ApplySelected(m.ctx, run, actions, progress)
		done <- applyDoneMsg(results, err)
	}()

	return m.waitForProgress()
}

func (m *Model) startWaiting() (chan tasks.ProgressUpdate, chan Msg) {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.doneChan = make(chan Msg, 1)
	return m.progressChan, m.doneChan
}

func (m *Model) stopWaiting() {
	m.progressChan = nil
	m.doneChan = nil
}

// waitForProgress returns the next progress update, or the completion message once the operation ends.
func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.doneChan
	if done == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case update := <-progress:
			return progressUpdateMsg(update)
		case msg := <-done:
			return msg
		}
	}
}

func (m *Model) renderMenu() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.menu.View(), helpView)
}

func (m *Model) renderProgress() string {
	title := "Analyzing " + string(m.kind)
	if m.view == ApplyView {
		title = "Applying actions"
	}

	status := m.progress.Message
	if status == "" {
		status = "Starting..."
	}
	if m.progress.Total > 0 {
		status = fmt.Sprintf("%s (%d/%d)", status, m.progress.Step, m.progress.Total)
	}

	return fmt.Sprintf("%s\n\n%s\n%s", styles.title.Render(title), styles.muted.Render(m.progress.Phase.String()), status)
}

func (m *Model) renderReview() string {
	if len(m.review.Items()) == 0 {
		body := styles.ok.Render("✓ Everything is in sync")
		return fmt.Sprintf("%s%s\n\n%s", body, m.renderErrors(), m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit}))
	}

	applyKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply"))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.toggle, m.keys.all, applyKey, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s%s\n\n%s", m.review.View(), m.renderErrors(), helpView)
}

func (m *Model) renderErrors() string {
	if len(m.errors) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(styles.warn.Render(fmt.Sprintf("%d errors during analysis:", len(m.errors))))
	for _, e := range m.errors {
		b.WriteString("\n  • " + e.Error())
	}
	return b.String()
}

func (m *Model) renderConfirm() string {
	selected := m.Selected()
	title := styles.title.Render(fmt.Sprintf("Apply %d of %d actions?", len(selected), len(m.review.Items())))

	counts := make(map[tasks.ActionKind]int)
	for _, a := range selected {
		counts[a.Kind]++
	}
	info := fmt.Sprintf("\nPlaylists to create: %d\nTracks to add: %d\nSongs to like: %d\n",
		counts[tasks.CreatePlaylistAction], counts[tasks.AddTrackAction], counts[tasks.AddLikedAction])

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Failed: %v", m.err)), helpView)
	}

	counts := tasks.Summarize(m.results)
	title := styles.ok.Render(fmt.Sprintf("✓ Applied %d of %d actions", counts[tasks.StatusApplied], len(m.results)))

	var details strings.Builder
	for _, r := range m.results {
		if r.Status == tasks.StatusApplied {
			continue
		}
		line := fmt.Sprintf("\n  • [%s] %s", r.Status, r.Action)
		if r.Message != "" {
			line += ": " + r.Message
		}
		details.WriteString(line)
	}

	body := title
	if details.Len() > 0 {
		body += "\n\n" + styles.warn.Render("Not applied:") + details.String()
	}
	return fmt.Sprintf("%s\n\n%s", body, helpView)
}
