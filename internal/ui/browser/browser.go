// Package browser is the interactive invite list. A listing.Controller owns
// search, sort, paging and fetching; the bubbletea model renders its
// snapshots and turns keys and clicks into controller calls.
//
// Snapshots reach the program asynchronously and possibly out of order.
// The model keeps the one with the highest Version.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/imgajeed76/pinvite/internal/i18n"
	"github.com/imgajeed76/pinvite/internal/invite"
	"github.com/imgajeed76/pinvite/internal/listing"
	"github.com/imgajeed76/pinvite/internal/logutil"
	"go.uber.org/zap"
)

// Actions mutates an invite from the browser. Both calls block; the
// browser runs them off the UI goroutine.
type Actions interface {
	Revoke(ctx context.Context, rec invite.Record) error
	Resend(ctx context.Context, rec invite.Record) error
}

// Options configures Run.
type Options struct {
	Fetcher    listing.Fetcher
	Actions    Actions
	Translator i18n.Translator

	PageSize int
	Debounce time.Duration
	Sort     listing.SortSpec
	Search   string

	// Reload is shared with whoever else needs to refresh the list.
	Reload *listing.ReloadBridge
	Logger *zap.Logger
}

// Run shows the browser until the user quits.
func Run(ctx context.Context, opts Options) error {
	if opts.Translator == nil {
		opts.Translator = i18n.KeyTranslator{}
	}
	if opts.Logger == nil {
		opts.Logger = logutil.L()
	}
	if opts.Reload == nil {
		opts.Reload = listing.NewReloadBridge()
	}

	var prog *tea.Program
	// send must not block: the controller calls back from inside Update.
	send := func(msg tea.Msg) {
		if prog != nil {
			go prog.Send(msg)
		}
	}

	ctrl := listing.New(opts.Fetcher, listing.Options{
		Debounce: opts.Debounce,
		PageSize: opts.PageSize,
		Sort:     opts.Sort,
		Search:   opts.Search,
		Reload:   opts.Reload,
		Router:   listing.RouterFunc(func(i listing.Intent) { send(navigateMsg(i)) }),
		OnChange: func(s listing.Snapshot) { send(snapshotMsg(s)) },
		Logger:   opts.Logger,
	})
	defer ctrl.Close()

	m := newModel(ctx, ctrl, opts.Actions, opts.Translator)
	prog = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Messages
// ═══════════════════════════════════════════════════════════════════════════

type snapshotMsg listing.Snapshot

type navigateMsg listing.Intent

type actionKind int

const (
	actionRevoke actionKind = iota
	actionResend
)

type actionDoneMsg struct {
	kind actionKind
	rec  invite.Record
	err  error
}

type statusClearMsg struct{}

const statusDuration = 2 * time.Second

// ═══════════════════════════════════════════════════════════════════════════
// Model
// ═══════════════════════════════════════════════════════════════════════════

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeInfo
)

type model struct {
	ctx     context.Context
	ctrl    *listing.Controller
	actions Actions
	tr      i18n.Translator
	now     func() time.Time
	clip    func(string) error

	snap    listing.Snapshot
	records []invite.Record // last successful page, kept while reloading
	pending int             // -1 until the first result
	params  listing.QueryParams

	cursor  int
	scrollY int
	width   int
	height  int
	ready   bool
	mode    mode
	search  textinput.Model
	spin    spinner.Model
	info    *invite.Record

	statusMsg   string
	statusErr   bool
	statusUntil time.Time
}

func newModel(ctx context.Context, ctrl *listing.Controller, actions Actions, tr i18n.Translator) model {
	ti := textinput.New()
	ti.Placeholder = tr.T("Search_Users")
	ti.CharLimit = 100
	ti.Width = 30

	snap := ctrl.Snapshot()
	ti.SetValue(snap.RawSearch)

	return model{
		ctx:     ctx,
		ctrl:    ctrl,
		actions: actions,
		tr:      tr,
		now:     time.Now,
		clip:    clipboard.WriteAll,
		snap:    snap,
		pending: -1,
		params:  snap.Params(),
		search:  ti,
		spin:    spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (m model) Init() tea.Cmd {
	ctrl := m.ctrl
	return tea.Batch(
		func() tea.Msg {
			ctrl.Start()
			return nil
		},
		m.spin.Tick,
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.ensureRowVisible()

	case snapshotMsg:
		m.applySnapshot(listing.Snapshot(msg))

	case navigateMsg:
		if msg.Context == listing.InfoContext {
			if rec, ok := m.recordByID(msg.ID); ok {
				m.info = &rec
				m.mode = modeInfo
			}
		}

	case actionDoneMsg:
		cmd := m.finishAction(msg)
		return m, cmd

	case statusClearMsg:
		if !m.statusUntil.IsZero() && !m.now().Before(m.statusUntil) {
			m.statusMsg = ""
			m.statusUntil = time.Time{}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		cmd := m.updateMouse(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeInfo:
			return m.updateInfo(msg)
		}
		return m.updateNormal(msg)
	}

	return m, nil
}

// applySnapshot keeps s unless a newer snapshot was already applied.
func (m *model) applySnapshot(s listing.Snapshot) {
	if s.Version < m.snap.Version {
		return
	}
	m.snap = s
	if s.Pending >= 0 {
		m.pending = s.Pending
	}
	switch {
	case s.State.IsSuccess():
		m.records = s.State.Records()
	case s.State.IsError():
		// The error screen hides the rows, so nothing may act on them.
		m.records = nil
		m.cursor = 0
		m.scrollY = 0
		if m.mode == modeInfo {
			m.closeInfo()
		}
	}
	if p := s.Params(); p != m.params {
		m.params = p
		m.cursor = 0
		m.scrollY = 0
	}
	if m.cursor >= len(m.records) {
		m.cursor = max(len(m.records)-1, 0)
	}
	m.ensureRowVisible()
}

// sync pulls the controller state after a call made from Update, so the
// screen does not wait for the asynchronous copy.
func (m *model) sync() {
	m.applySnapshot(m.ctrl.Snapshot())
}

func (m model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Search):
		m.mode = modeSearch
		m.search.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.Back):
		if m.snap.RawSearch != "" {
			m.search.SetValue("")
			m.ctrl.SetSearch("")
			m.ctrl.SubmitSearch()
			m.sync()
		}

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.ensureRowVisible()
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.records)-1 {
			m.cursor++
			m.ensureRowVisible()
		}

	case key.Matches(msg, keys.Sort):
		i := int(msg.Runes[0] - '1')
		m.ctrl.ToggleSort(invite.SortFields[i])
		m.sync()

	case key.Matches(msg, keys.NextPage):
		m.ctrl.NextPage()
		m.sync()

	case key.Matches(msg, keys.PrevPage):
		m.ctrl.PrevPage()
		m.sync()

	case key.Matches(msg, keys.Bigger):
		m.ctrl.SetPageSize(stepPageSize(m.snap.Page.Size, 1))
		m.sync()

	case key.Matches(msg, keys.Smaller):
		m.ctrl.SetPageSize(stepPageSize(m.snap.Page.Size, -1))
		m.sync()

	case key.Matches(msg, keys.Reload):
		m.ctrl.Reloader().Invoke()
		m.sync()

	case key.Matches(msg, keys.Retry):
		m.ctrl.Retry()
		m.sync()

	case key.Matches(msg, keys.Open), key.Matches(msg, keys.Select):
		if rec, ok := m.selected(); ok {
			m.ctrl.Activate(rec.ID, &listing.KeyActivation{Key: msg.String()})
		}

	case key.Matches(msg, keys.Revoke):
		if rec, ok := m.selected(); ok {
			return m, m.runAction(actionRevoke, rec)
		}

	case key.Matches(msg, keys.Resend):
		if rec, ok := m.selected(); ok {
			return m, m.runAction(actionResend, rec)
		}

	case key.Matches(msg, keys.Yank):
		if rec, ok := m.selected(); ok {
			cmd := m.yank(rec.Email)
			return m, cmd
		}
	}

	return m, nil
}

func (m model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
		m.search.Blur()
		m.search.SetValue("")
		m.ctrl.SetSearch("")
		m.ctrl.SubmitSearch()
		m.sync()
		return m, nil
	case tea.KeyEnter:
		m.mode = modeNormal
		m.search.Blur()
		m.ctrl.SubmitSearch()
		m.sync()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.ctrl.SetSearch(m.search.Value())
	m.sync()
	return m, cmd
}

func (m model) updateInfo(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit) && msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Quit), key.Matches(msg, keys.Open):
		m.closeInfo()
	case key.Matches(msg, keys.Revoke):
		return m, m.runAction(actionRevoke, *m.info)
	case key.Matches(msg, keys.Resend):
		return m, m.runAction(actionResend, *m.info)
	case key.Matches(msg, keys.Yank):
		cmd := m.yank(m.info.Email)
		return m, cmd
	}
	return m, nil
}

func (m *model) closeInfo() {
	m.mode = modeNormal
	m.info = nil
}

// updateMouse handles left clicks: a header cell toggles its sort, a row
// opens its details.
func (m *model) updateMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft || m.mode != modeNormal {
		return nil
	}

	switch {
	case msg.Y == headerLine:
		col, ok := m.columnAt(msg.X)
		if ok && col.field != "" {
			m.ctrl.ToggleSort(col.field)
			m.sync()
		}
	case msg.Y >= firstRowLine:
		idx := m.scrollY + msg.Y - firstRowLine
		if idx < len(m.records) && idx < m.scrollY+m.visibleRowCount() {
			m.cursor = idx
			m.ctrl.Activate(m.records[idx].ID, &listing.PointerActivation{})
		}
	}
	return nil
}

func (m model) selected() (invite.Record, bool) {
	if m.cursor < 0 || m.cursor >= len(m.records) {
		return invite.Record{}, false
	}
	return m.records[m.cursor], true
}

func (m model) recordByID(id string) (invite.Record, bool) {
	for _, r := range m.records {
		if r.ID == id {
			return r, true
		}
	}
	return invite.Record{}, false
}

// stepPageSize moves one step through listing.PageSizes.
func stepPageSize(current, dir int) int {
	sizes := listing.PageSizes
	for i, s := range sizes {
		if s == current {
			j := min(max(i+dir, 0), len(sizes)-1)
			return sizes[j]
		}
	}
	if dir > 0 {
		for _, s := range sizes {
			if s > current {
				return s
			}
		}
		return sizes[len(sizes)-1]
	}
	for i := len(sizes) - 1; i >= 0; i-- {
		if sizes[i] < current {
			return sizes[i]
		}
	}
	return sizes[0]
}

// ═══════════════════════════════════════════════════════════════════════════
// Actions
// ═══════════════════════════════════════════════════════════════════════════

func (m model) runAction(kind actionKind, rec invite.Record) tea.Cmd {
	if m.actions == nil {
		return nil
	}
	ctx, actions := m.ctx, m.actions
	return func() tea.Msg {
		var err error
		switch kind {
		case actionRevoke:
			err = actions.Revoke(ctx, rec)
		case actionResend:
			err = actions.Resend(ctx, rec)
		}
		return actionDoneMsg{kind: kind, rec: rec, err: err}
	}
}

// finishAction reports the outcome and refreshes the list through the
// reload bridge.
func (m *model) finishAction(msg actionDoneMsg) tea.Cmd {
	if msg.err != nil {
		logutil.L().Warn("invite action failed", zap.String("invite", msg.rec.ID), zap.Error(msg.err))
		return m.setError(msg.err.Error())
	}

	var text string
	switch msg.kind {
	case actionRevoke:
		text = m.tr.T("Invite_revoked", msg.rec.Email)
		if m.info != nil && m.info.ID == msg.rec.ID {
			m.closeInfo()
		}
	case actionResend:
		text = m.tr.T("Invite_resent", msg.rec.Email)
	}

	m.ctrl.Reloader().Invoke()
	m.sync()
	return m.setStatus(text)
}

// yank copies text to the system clipboard.
func (m *model) yank(text string) tea.Cmd {
	if err := m.clip(text); err != nil {
		return m.setError(fmt.Sprintf("clipboard error: %s", err))
	}
	return m.setStatus(m.tr.T("Copied", text))
}

// setStatus sets a temporary status message that auto-clears.
func (m *model) setStatus(msg string) tea.Cmd {
	m.statusMsg = msg
	m.statusErr = false
	m.statusUntil = m.now().Add(statusDuration)
	return tea.Tick(statusDuration, func(time.Time) tea.Msg {
		return statusClearMsg{}
	})
}

func (m *model) setError(msg string) tea.Cmd {
	cmd := m.setStatus(strings.TrimSpace(msg))
	m.statusErr = true
	return cmd
}
