// Package tui is the terminal front end of the intake workflow: one tab per
// intake path over a shared intake.Page.
package tui

import (
	"context"
	"errors"

	"github.com/bilgisen/addconnect/internal/intake"
	"github.com/bilgisen/addconnect/internal/models"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// formEvent is a state or progress change reported by a form observer
type formEvent struct {
	kind     models.SourceType
	state    intake.State
	progress int
}

type submitDoneMsg struct {
	kind models.SourceType
	err  error
}

type previewDoneMsg struct {
	err error
}

// Model is the bubbletea model of the Add & Connect screen
type Model struct {
	ctx  context.Context
	page *intake.Page

	tabs   []*tab
	active int

	spinner  spinner.Model
	progress progress.Model
	events   chan formEvent

	width int
}

// New builds the model. ctx bounds every request the UI starts.
func New(ctx context.Context, page *intake.Page) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	m := Model{
		ctx:      ctx,
		page:     page,
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		events:   make(chan formEvent, 64),
	}
	for _, kind := range intake.Kinds() {
		m.tabs = append(m.tabs, newTab(kind))
	}
	m.observe(page.Manual.SetObserver, models.SourceManual)
	m.observe(page.URL.SetObserver, models.SourceURL)
	m.observe(page.File.SetObserver, models.SourceFile)

	m.tabs[0].current().focus()
	return m
}

// observe forwards form changes into the event channel without blocking
func (m Model) observe(set func(intake.Observer), kind models.SourceType) {
	events := m.events
	set(func(state intake.State, progress int) {
		select {
		case events <- formEvent{kind: kind, state: state, progress: progress}:
		default:
		}
	})
}

func waitForEvent(events <-chan formEvent) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForEvent(m.events))
}

func (m Model) tab() *tab {
	return m.tabs[m.active]
}

func (m Model) form() intake.Form {
	return m.page.Active()
}

func (m Model) switchTab(i int) (Model, tea.Cmd) {
	if i < 0 || i >= len(m.tabs) || i == m.active {
		return m, nil
	}
	m.tab().current().blur()
	m.active = i
	m.page.Switch(m.tab().kind)
	return m, m.tab().current().focus()
}

func (m Model) submit() tea.Cmd {
	t := m.tab()
	t.store(m.page)
	form := m.form()
	if form.Busy() {
		return nil
	}
	ctx, kind := m.ctx, t.kind
	return func() tea.Msg {
		return submitDoneMsg{kind: kind, err: form.Submit(ctx)}
	}
}

func (m Model) loadPreview() tea.Cmd {
	t := m.tab()
	if t.kind != models.SourceURL {
		return nil
	}
	t.store(m.page)
	ctx, form := m.ctx, m.page.URL
	return func() tea.Msg {
		return previewDoneMsg{err: form.FetchPreview(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 8; w > 10 && w < 60 {
			m.progress.Width = w
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case formEvent:
		return m, waitForEvent(m.events)

	case submitDoneMsg:
		t := m.tabs[kindIndex(msg.kind)]
		if msg.err == nil {
			t.load(m.page)
		}
		return m, nil

	case previewDoneMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		if p, ok := pm.(progress.Model); ok {
			m.progress = p
		}
		return m, cmd
	}

	return m, m.tab().current().update(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.tab()
	cur := t.current()

	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "f1":
		return m.switchTab(0)
	case "f2":
		return m.switchTab(1)
	case "f3":
		return m.switchTab(2)
	case "ctrl+right":
		return m.switchTab((m.active + 1) % len(m.tabs))
	case "ctrl+left":
		return m.switchTab((m.active + len(m.tabs) - 1) % len(m.tabs))
	case "tab", "down":
		if msg.String() == "down" && cur.kind == areaField {
			break
		}
		return m, t.moveFocus(1)
	case "shift+tab", "up":
		if msg.String() == "up" && cur.kind == areaField {
			break
		}
		return m, t.moveFocus(-1)
	case "ctrl+s":
		return m, m.submit()
	case "ctrl+l":
		return m, m.loadPreview()
	case "ctrl+r":
		m.form().Reset()
		t.load(m.page)
		return m, nil
	case "left", "right":
		if cur.kind == typeField {
			if msg.String() == "left" {
				t.cycleType(-1)
			} else {
				t.cycleType(1)
			}
			return m, nil
		}
	case "enter":
		if cur.kind != areaField {
			if t.focus == len(t.fields)-1 {
				return m, m.submit()
			}
			return m, t.moveFocus(1)
		}
	}

	cmd := cur.update(msg)
	if msg.Paste && cur.name == "file" {
		m.dropPath(cur)
	}
	return m, cmd
}

// dropPath selects a pasted or dropped path and shows it normalized
func (m Model) dropPath(f *field) {
	if err := m.page.File.DropFile(f.value()); err != nil {
		return
	}
	if sel := m.page.File.Values().File; sel != nil {
		f.setValue(sel.Path)
	}
}

func kindIndex(kind models.SourceType) int {
	for i, k := range intake.Kinds() {
		if k == kind {
			return i
		}
	}
	return 0
}

// Run starts the full screen program and blocks until the user quits
func Run(ctx context.Context, page *intake.Page) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	_, err := tea.NewProgram(New(ctx, page), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
