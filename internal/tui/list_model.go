package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/rshade/feedlist/internal/dispatch"
	"github.com/rshade/feedlist/internal/expansion"
	"github.com/rshade/feedlist/internal/logging"
	"github.com/rshade/feedlist/internal/paging"
	"github.com/rshade/feedlist/internal/registry"
	"github.com/rshade/feedlist/internal/rows"
	"github.com/rshade/feedlist/internal/scroll"
	"github.com/rshade/feedlist/internal/shift"
	"github.com/rshade/feedlist/internal/tui/list"
)

// FrameInterval is the delay before a scheduled bottom correction runs.
const FrameInterval = time.Second / 60

// wheelStep is the number of rows one mouse wheel notch scrolls.
const wheelStep = 3

// Names under which RegisterAPIs publishes a list's scroll operations.
const (
	APIScrollToTop    = "scrollToTop"
	APIScrollToBottom = "scrollToBottom"
)

// ErrListClosed is returned when registering the APIs of a closed list.
var ErrListClosed = errors.New("list is closed")

//nolint:gochecknoglobals // Immutable style shared by all lists.
var cursorStyle = lipgloss.NewStyle().Reverse(true)

// ListConfig configures a ListModel.
type ListConfig struct {
	// Name identifies the list in messages and API names.
	Name    string
	Options rows.Options
	Anchor  scroll.Anchor
	// Inset is the scroll padding applied by scroll-to operations.
	Inset      int
	StuckSlack float64
	Overscan   int
	Threshold  int
	FetchPrev  paging.FetchFunc
	FetchNext  paging.FetchFunc
	// Renderer may implement any subset of the dispatch renderer interfaces.
	Renderer any
	Keys     *ListKeyMap
	Width    int
	Height   int
	Logger   zerolog.Logger
}

// ListModel is the list engine. All of its state is mutated from Update and
// the methods it calls; fetch callbacks run in commands and report back with
// FetchDoneMsg.
type ListModel struct {
	name   string
	ctx    context.Context
	cancel context.CancelFunc
	logger zerolog.Logger

	opts       rows.Options
	items      []any
	seq        *rows.Sequence
	store      *expansion.Store
	detector   *shift.Detector
	trigger    *paging.Trigger
	scroller   *scroll.Controller
	window     *list.Window
	dispatcher *dispatch.Dispatcher
	keys       ListKeyMap

	pageInfo paging.PageInfo
	cursor   int
	loaded   bool
	closed   bool
	focused  bool
	lastErr  error

	// cache holds rendered rows of the current sequence at the current width.
	cache map[int]string

	apis     *registry.APIs
	apiNames []string
}

// NewListModel creates a list. ctx bounds every fetch the list starts and is
// cancelled by Close.
func NewListModel(ctx context.Context, cfg ListConfig) *ListModel {
	logger := logging.ComponentLogger(cfg.Logger, "list").With().Str("list", cfg.Name).Logger()
	ctx, cancel := context.WithCancel(ctx)

	store := expansion.New(cfg.Options.GroupsInitiallyExpanded)
	opts := cfg.Options
	opts.Expansion = store

	window := list.NewWindow(cfg.Height, cfg.Width)
	if cfg.Overscan > 0 {
		window.SetOverscan(cfg.Overscan)
	}

	anchor := cfg.Anchor
	if anchor == "" {
		anchor = scroll.AnchorTop
	}
	scrollOpts := []scroll.Option{scroll.WithInset(cfg.Inset), scroll.WithLogger(logger)}
	if cfg.StuckSlack > 0 {
		scrollOpts = append(scrollOpts, scroll.WithStuckSlack(cfg.StuckSlack))
	}

	keys := DefaultListKeyMap()
	if cfg.Keys != nil {
		keys = *cfg.Keys
	}

	m := &ListModel{
		name:       cfg.Name,
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger,
		opts:       opts,
		store:      store,
		detector:   &shift.Detector{},
		trigger:    paging.NewTrigger(cfg.FetchPrev, cfg.FetchNext, paging.WithThreshold(cfg.Threshold), paging.WithLogger(logger)),
		scroller:   scroll.NewController(window, anchor, scrollOpts...),
		window:     window,
		dispatcher: dispatch.New(cfg.Renderer),
		keys:       keys,
		focused:    true,
		cache:      make(map[int]string),
	}
	m.seq = &rows.Sequence{}
	return m
}

// Init implements tea.Model.
func (m *ListModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.closed {
		return m, nil
	}

	switch msg := msg.(type) {
	case ItemsMsg:
		m.items = msg.Items
		m.loaded = true
		return m, m.recompute()

	case PageInfoMsg:
		m.pageInfo = msg.Info
		return m, m.checkPaging()

	case OptionsMsg:
		return m, m.SetOptions(msg.Options)

	case ToggleGroupMsg:
		return m, m.ToggleGroup(msg.GroupID)

	case FetchDoneMsg:
		if msg.List != m.name {
			return m, nil
		}
		return m, m.handleFetchDone(msg)

	case ScrollMsg:
		if msg.List != "" && msg.List != m.name {
			return m, nil
		}
		return m, m.handleScroll(msg)

	case frameMsg:
		if msg.list != m {
			return m, nil
		}
		if m.scroller.Frame() {
			m.cursorIntoView()
			return m, m.afterScroll()
		}
		return m, nil

	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	}

	return m, nil
}

// View implements tea.Model.
func (m *ListModel) View() string {
	if m.seq.Len() == 0 {
		if !m.loaded {
			return m.dispatcher.RenderLoading()
		}
		return m.dispatcher.RenderEmpty()
	}
	return m.window.Render(m.renderRow, m.warm)
}

// Close tears the list down: in-flight fetches are cancelled, their results
// are absorbed and registered APIs are removed. Close is idempotent.
func (m *ListModel) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.cancel()
	if m.apis != nil {
		for _, name := range m.apiNames {
			m.apis.Unregister(name)
		}
		m.apiNames = nil
	}
}

// RegisterAPIs publishes scrollToTop and scrollToBottom under "<name>.<op>".
// The operations post a ScrollMsg through send, usually tea.Program.Send, so
// that they run on the event loop.
func (m *ListModel) RegisterAPIs(apis *registry.APIs, send func(tea.Msg)) error {
	if m.closed {
		return ErrListClosed
	}
	ops := map[string]ScrollOp{
		APIScrollToTop:    ScrollOpTop,
		APIScrollToBottom: ScrollOpBottom,
	}
	for _, op := range []string{APIScrollToTop, APIScrollToBottom} {
		name := APIName(m.name, op)
		scrollOp := ops[op]
		if err := apis.Register(name, func() { send(ScrollMsg{List: m.name, Op: scrollOp}) }); err != nil {
			for _, registered := range m.apiNames {
				apis.Unregister(registered)
			}
			m.apiNames = nil
			return err
		}
		m.apiNames = append(m.apiNames, name)
	}
	m.apis = apis
	return nil
}

// APIName returns the registry name of op on the named list.
func APIName(listName, op string) string {
	return listName + "." + op
}

// SetSize sets the viewport size in cells. A stuck bottom-anchored list stays
// pinned to its last row.
func (m *ListModel) SetSize(width, height int) tea.Cmd {
	if width != m.window.Width() {
		clear(m.cache)
	}
	m.window.SetSize(width, height)
	if m.scroller.Anchor() == scroll.AnchorBottom && m.scroller.Stuck() {
		m.scroller.ScrollToBottom()
	}
	return m.afterScroll()
}

// SetFocused enables or disables key handling.
func (m *ListModel) SetFocused(focused bool) {
	m.focused = focused
}

// SetOptions replaces the projection options and recomputes the rows.
// The expansion store is kept.
func (m *ListModel) SetOptions(opts rows.Options) tea.Cmd {
	opts.Expansion = m.store
	m.opts = opts
	return m.recompute()
}

// ToggleGroup flips the expansion of groupID.
func (m *ListModel) ToggleGroup(groupID any) tea.Cmd {
	m.store.Toggle(groupID, !m.store.IsExpanded(groupID))
	m.logger.Debug().Interface("group", groupID).Bool("expanded", m.store.IsExpanded(groupID)).Msg("group toggled")
	return m.recompute()
}

// ScrollToTop scrolls to the first row and moves the cursor there.
func (m *ListModel) ScrollToTop() tea.Cmd {
	m.scroller.ScrollToTop()
	m.cursor = 0
	return m.afterScroll()
}

// ScrollToBottom scrolls to the last row and moves the cursor there.
func (m *ListModel) ScrollToBottom() tea.Cmd {
	m.scroller.ScrollToBottom()
	m.cursor = max(m.seq.Len()-1, 0)
	return m.afterScroll()
}

// ScrollToIndex scrolls row i to the top of the viewport.
func (m *ListModel) ScrollToIndex(i int) tea.Cmd {
	m.scroller.ScrollToIndex(i)
	m.cursor = m.clampIndex(i)
	return m.afterScroll()
}

// ScrollToID scrolls to the item whose key is id. It reports false and does
// nothing when no item row has that key.
func (m *ListModel) ScrollToID(id any) (bool, tea.Cmd) {
	if !m.scroller.ScrollToID(id) {
		return false, nil
	}
	m.cursor = m.seq.IndexOfItem(id)
	return true, m.afterScroll()
}

// Name returns the list name.
func (m *ListModel) Name() string { return m.name }

// Sequence returns the current row sequence. Callers must not modify it.
func (m *ListModel) Sequence() *rows.Sequence { return m.seq }

// Cursor returns the index of the selected row.
func (m *ListModel) Cursor() int { return m.cursor }

// Selected returns the selected row, or nil when the list is empty.
func (m *ListModel) Selected() rows.Row { return m.seq.At(m.cursor) }

// Stuck reports whether a bottom-anchored list is pinned to its last row.
func (m *ListModel) Stuck() bool { return m.scroller.Stuck() }

// Window returns the virtualization window.
func (m *ListModel) Window() *list.Window { return m.window }

// Err returns the error of the last failed fetch, if any.
func (m *ListModel) Err() error { return m.lastErr }

// PageInfo returns the last pagination state received.
func (m *ListModel) PageInfo() paging.PageInfo { return m.pageInfo }

// State returns the lifecycle state of the list.
func (m *ListModel) State() State {
	if m.seq.Len() == 0 {
		return StateIdle
	}
	prev := m.pageInfo.IsFetchingPrevPage || m.trigger.InFlight(paging.DirectionPrev)
	next := m.pageInfo.IsFetchingNextPage || m.trigger.InFlight(paging.DirectionNext)
	switch {
	case prev && next:
		return StateFetchingBoth
	case prev:
		return StateFetchingPrev
	case next:
		return StateFetchingNext
	default:
		return StatePopulated
	}
}

// recompute projects the items and hands the new row count to the window.
// The shift decision is taken in the same pass, before the window sees the
// new count.
func (m *ListModel) recompute() tea.Cmd {
	prevRow := m.seq.At(m.cursor)
	wasEmpty := m.seq.Len() == 0

	seq := rows.Project(m.items, m.opts)
	shifted := m.detector.Evaluate(seq)
	m.window.SetCount(seq.Len(), shifted)
	m.seq = seq
	clear(m.cache)

	m.cursor = m.followRow(prevRow)

	m.logger.Debug().
		Int("row_count", seq.Len()).
		Bool("shift", shifted).
		Msg("rows projected")

	var cmds []tea.Cmd
	if m.scroller.Update(seq) {
		target := m
		cmds = append(cmds, tea.Tick(FrameInterval, func(time.Time) tea.Msg {
			return frameMsg{list: target}
		}))
	}
	if wasEmpty && m.scroller.Anchor() == scroll.AnchorBottom {
		m.cursor = m.clampIndex(seq.Len() - 1)
	}
	cmds = append(cmds, m.checkPaging())
	return tea.Batch(cmds...)
}

// followRow returns the index of row in the current sequence, or the clamped
// cursor when the row is gone.
func (m *ListModel) followRow(row rows.Row) int {
	if row != nil {
		for i, r := range m.seq.Rows {
			if r.Kind() == row.Kind() && r.Key() == row.Key() {
				return i
			}
		}
	}
	return m.clampIndex(m.cursor)
}

func (m *ListModel) clampIndex(i int) int {
	return min(max(i, 0), max(m.seq.Len()-1, 0))
}

// afterScroll runs after any change of the scroll position.
func (m *ListModel) afterScroll() tea.Cmd {
	m.scroller.OnScroll()
	return m.checkPaging()
}

// checkPaging starts the fetches the trigger claims for the visible range.
func (m *ListModel) checkPaging() tea.Cmd {
	count := m.seq.Len()
	if count == 0 {
		return nil
	}
	first, end := m.window.Range()
	if end <= first {
		return nil
	}

	fetches := m.trigger.Check(first, end-1, count, m.pageInfo)
	if len(fetches) == 0 {
		return nil
	}

	cmds := make([]tea.Cmd, 0, len(fetches))
	ctx, name := m.ctx, m.name
	for _, f := range fetches {
		cmds = append(cmds, func() tea.Msg {
			return FetchDoneMsg{List: name, Direction: f.Direction, Err: f.Run(ctx)}
		})
	}
	return tea.Batch(cmds...)
}

func (m *ListModel) handleFetchDone(msg FetchDoneMsg) tea.Cmd {
	if msg.Err != nil {
		m.lastErr = msg.Err
		m.logger.Warn().Err(msg.Err).Str("direction", msg.Direction.String()).Msg("page fetch failed")
		return nil
	}
	m.lastErr = nil
	return m.checkPaging()
}

func (m *ListModel) handleScroll(msg ScrollMsg) tea.Cmd {
	switch msg.Op {
	case ScrollOpTop:
		return m.ScrollToTop()
	case ScrollOpBottom:
		return m.ScrollToBottom()
	case ScrollOpIndex:
		return m.ScrollToIndex(msg.Index)
	case ScrollOpID:
		_, cmd := m.ScrollToID(msg.ID)
		return cmd
	default:
		return nil
	}
}

func (m *ListModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.seq.Len() == 0 {
		return nil
	}
	page := max(m.window.ViewportSize(), 1)

	switch {
	case key.Matches(msg, m.keys.Up):
		return m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		return m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.window.ScrollBy(-page)
		return m.moveCursor(-page)
	case key.Matches(msg, m.keys.PageDown):
		m.window.ScrollBy(page)
		return m.moveCursor(page)
	case key.Matches(msg, m.keys.Home), key.Matches(msg, m.keys.Top):
		return m.ScrollToTop()
	case key.Matches(msg, m.keys.End), key.Matches(msg, m.keys.Bottom):
		return m.ScrollToBottom()
	case key.Matches(msg, m.keys.Toggle):
		return m.toggleAtCursor()
	}
	return nil
}

func (m *ListModel) moveCursor(delta int) tea.Cmd {
	m.cursor = m.clampIndex(m.cursor + delta)
	m.window.EnsureVisible(m.cursor)
	return m.afterScroll()
}

// toggleAtCursor flips the group of the selected row. Collapsing from an item
// or footer moves the cursor to the group's header.
func (m *ListModel) toggleAtCursor() tea.Cmd {
	switch r := m.Selected().(type) {
	case rows.SectionHeaderRow:
		return m.ToggleGroup(r.GroupID)
	case rows.SectionFooterRow:
		return m.collapseTo(r.GroupID)
	case rows.ItemRow:
		if r.Grouped {
			return m.collapseTo(r.GroupID)
		}
	}
	return nil
}

func (m *ListModel) collapseTo(groupID any) tea.Cmd {
	for i := m.cursor; i >= 0; i-- {
		if h, ok := m.seq.At(i).(rows.SectionHeaderRow); ok && h.GroupID == groupID {
			m.cursor = i
			break
		}
	}
	cmd := m.ToggleGroup(groupID)
	m.window.EnsureVisible(m.cursor)
	return tea.Batch(cmd, m.afterScroll())
}

func (m *ListModel) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress {
		return nil
	}
	var delta int
	switch msg.Button { //nolint:exhaustive // Only wheel buttons scroll the list.
	case tea.MouseButtonWheelUp:
		delta = -wheelStep
	case tea.MouseButtonWheelDown:
		delta = wheelStep
	default:
		return nil
	}
	if !m.window.ScrollBy(delta) {
		return nil
	}
	m.cursorIntoView()
	return m.afterScroll()
}

// cursorIntoView moves the cursor to the nearest visible row.
func (m *ListModel) cursorIntoView() {
	start, end := m.window.Range()
	if end > start {
		m.cursor = min(max(m.cursor, start), end-1)
	}
}

// renderRow returns the rendered row at index, highlighting the cursor.
func (m *ListModel) renderRow(index int) string {
	m.warm(index)
	line := m.cache[index]
	if index == m.cursor && m.focused {
		return cursorStyle.Render(line)
	}
	return line
}

// warm renders row index into the cache if it is not there yet.
func (m *ListModel) warm(index int) {
	if _, ok := m.cache[index]; ok {
		return
	}
	m.cache[index] = m.dispatcher.Render(m.seq, index)
}
