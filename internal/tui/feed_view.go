package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/sahilm/fuzzy"

	"github.com/rshade/feedlist/internal/dispatch"
	"github.com/rshade/feedlist/internal/feed"
	"github.com/rshade/feedlist/internal/rows"
)

// Default dimensions used until the first tea.WindowSizeMsg.
const (
	defaultWidth  = 80
	defaultHeight = 24
)

//nolint:gochecknoglobals // Immutable styles shared by all views.
var (
	statusStyle = lipgloss.NewStyle().Foreground(dispatch.ColorMuted)
	stuckStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// feedChangedMsg is sent when the watched feed file changed on disk.
type feedChangedMsg struct{}

// feedReloadedMsg carries the items read after a change.
type feedReloadedMsg struct {
	items []any
	err   error
}

// FeedViewConfig configures a FeedView.
type FeedViewConfig struct {
	Source *feed.Source
	List   ListConfig
	// FilterFields are the item fields matched by the fuzzy filter. Empty
	// matches the text the default renderer shows.
	FilterFields []string
	TextField    string
	// Changes, when set, signals that the feed file changed; Reload then reads it.
	Changes <-chan struct{}
	Reload  func() ([]any, error)
	Logger  zerolog.Logger
}

// FeedView hosts a ListModel over a feed.Source with a fuzzy filter and a
// status line.
type FeedView struct {
	source *feed.Source
	list   *ListModel
	logger zerolog.Logger

	filter       textinput.Model
	filtering    bool
	filterFields []string
	textField    string
	keyField     string

	changes <-chan struct{}
	reload  func() ([]any, error)

	width  int
	height int
	err    error
}

// NewFeedView creates the view. The list's fetch callbacks are bound to the source.
func NewFeedView(ctx context.Context, cfg FeedViewConfig) *FeedView {
	listCfg := cfg.List
	listCfg.FetchPrev = cfg.Source.FetchPrev
	listCfg.FetchNext = cfg.Source.FetchNext
	if listCfg.Renderer == nil {
		listCfg.Renderer = dispatch.Default{TextField: cfg.TextField}
	}

	input := textinput.New()
	input.Prompt = "/"
	input.Placeholder = "filter"

	v := &FeedView{
		source:       cfg.Source,
		list:         NewListModel(ctx, listCfg),
		logger:       cfg.Logger,
		filter:       input,
		filterFields: cfg.FilterFields,
		textField:    cfg.TextField,
		keyField:     cfg.List.Options.KeyField,
		changes:      cfg.Changes,
		reload:       cfg.Reload,
		width:        defaultWidth,
		height:       defaultHeight,
	}
	v.list.SetSize(v.width, v.listHeight())
	return v
}

// List returns the hosted list.
func (v *FeedView) List() *ListModel {
	return v.list
}

// Init implements tea.Model.
func (v *FeedView) Init() tea.Cmd {
	return tea.Batch(v.push(), v.waitForChange())
}

// Update implements tea.Model.
func (v *FeedView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width, v.height = msg.Width, msg.Height
		return v, v.list.SetSize(v.width, v.listHeight())

	case FetchDoneMsg:
		refresh := v.push()
		_, cmd := v.list.Update(msg)
		v.err = v.list.Err()
		return v, tea.Batch(refresh, cmd)

	case feedChangedMsg:
		return v, v.reloadCmd()

	case feedReloadedMsg:
		if msg.err != nil {
			v.err = msg.err
			v.logger.Warn().Err(msg.err).Msg("feed reload failed")
			return v, v.waitForChange()
		}
		v.err = nil
		v.source.Replace(msg.items)
		return v, tea.Batch(v.push(), v.waitForChange())

	case tea.KeyMsg:
		return v.handleKey(msg)
	}

	_, cmd := v.list.Update(msg)
	return v, cmd
}

// View implements tea.Model.
func (v *FeedView) View() string {
	var sb strings.Builder
	sb.WriteString(v.list.View())
	sb.WriteString("\n")
	if v.filtering || v.filter.Value() != "" {
		sb.WriteString(v.filter.View())
		sb.WriteString("\n")
	}
	sb.WriteString(v.statusLine())
	return sb.String()
}

// Close releases the list.
func (v *FeedView) Close() {
	v.list.Close()
}

func (v *FeedView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return v, tea.Quit
	}

	if v.filtering {
		switch msg.Type { //nolint:exhaustive // Other keys edit the filter.
		case tea.KeyEsc:
			v.filter.SetValue("")
			return v, v.closeFilter()
		case tea.KeyEnter:
			return v, v.closeFilter()
		}
		before := v.filter.Value()
		var cmd tea.Cmd
		v.filter, cmd = v.filter.Update(msg)
		if v.filter.Value() != before {
			return v, tea.Batch(cmd, v.push())
		}
		return v, cmd
	}

	switch msg.String() {
	case "q":
		return v, tea.Quit
	case "/":
		v.filtering = true
		v.list.SetFocused(false)
		return v, tea.Batch(v.filter.Focus(), v.list.SetSize(v.width, v.listHeight()))
	case "esc":
		if v.filter.Value() != "" {
			v.filter.SetValue("")
			return v, tea.Batch(v.push(), v.list.SetSize(v.width, v.listHeight()))
		}
		return v, nil
	}

	_, cmd := v.list.Update(msg)
	return v, cmd
}

func (v *FeedView) closeFilter() tea.Cmd {
	v.filtering = false
	v.filter.Blur()
	v.list.SetFocused(true)
	return tea.Batch(v.push(), v.list.SetSize(v.width, v.listHeight()))
}

// push hands the filtered items and the page info of the source to the list.
func (v *FeedView) push() tea.Cmd {
	items := FilterItems(v.source.Items(), v.filter.Value(), v.filterText)
	_, itemsCmd := v.list.Update(ItemsMsg{Items: items})
	_, infoCmd := v.list.Update(PageInfoMsg{Info: v.source.PageInfo()})
	return tea.Batch(itemsCmd, infoCmd)
}

func (v *FeedView) filterText(item any) string {
	if len(v.filterFields) == 0 {
		keyField := v.keyField
		if keyField == "" {
			keyField = rows.DefaultKeyField
		}
		return dispatch.ItemText(item, rows.Lookup(item, keyField), v.textField)
	}
	parts := make([]string, 0, len(v.filterFields))
	for _, field := range v.filterFields {
		if val := rows.Lookup(item, field); val != nil {
			parts = append(parts, fmt.Sprint(val))
		}
	}
	return strings.Join(parts, " ")
}

func (v *FeedView) waitForChange() tea.Cmd {
	if v.changes == nil || v.reload == nil {
		return nil
	}
	changes := v.changes
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return feedChangedMsg{}
	}
}

func (v *FeedView) reloadCmd() tea.Cmd {
	reload := v.reload
	return func() tea.Msg {
		items, err := reload()
		return feedReloadedMsg{items: items, err: err}
	}
}

func (v *FeedView) listHeight() int {
	chrome := 1
	if v.filtering || v.filter.Value() != "" {
		chrome++
	}
	return max(v.height-chrome, 1)
}

func (v *FeedView) statusLine() string {
	meta := v.source.Meta()
	parts := []string{
		v.list.State().String(),
		fmt.Sprintf("%d rows", v.list.Sequence().Len()),
		fmt.Sprintf("pages %d-%d/%d", meta.FirstPage+1, meta.LastPage+1, max(meta.TotalPages, 1)),
	}
	line := statusStyle.Render(strings.Join(parts, " · "))
	if v.list.Stuck() {
		line += " " + stuckStyle.Render("● live")
	}
	if v.err != nil {
		line += " " + errorStyle.Render(v.err.Error())
	}

	help := make([]string, 0, len(v.list.keys.ShortHelp()))
	for _, b := range v.list.keys.ShortHelp() {
		h := b.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	help = append(help, "/ filter", "q quit")
	return line + "  " + statusStyle.Render(strings.Join(help, "  "))
}

// FilterItems keeps the items whose text fuzzily matches query, in their
// original order. An empty query keeps every item.
func FilterItems(items []any, query string, text func(any) string) []any {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}

	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = text(it)
	}

	matched := make(map[int]struct{})
	for _, match := range fuzzy.Find(query, texts) {
		matched[match.Index] = struct{}{}
	}

	out := make([]any, 0, len(matched))
	for i, it := range items {
		if _, ok := matched[i]; ok {
			out = append(out, it)
		}
	}
	return out
}
