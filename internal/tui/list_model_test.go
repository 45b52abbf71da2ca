package tui

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/feedlist/internal/paging"
	"github.com/rshade/feedlist/internal/registry"
	"github.com/rshade/feedlist/internal/rows"
	"github.com/rshade/feedlist/internal/scroll"
)

// drain runs cmd and every command it batches, returning the produced messages.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, drain(c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}

func idItems(from, to int) []any {
	items := make([]any, 0, to-from)
	for i := from; i < to; i++ {
		items = append(items, map[string]any{"id": i, "title": "message"})
	}
	return items
}

func firstVisibleKey(m *ListModel) any {
	start, _ := m.Window().Range()
	return m.Sequence().At(start).Key()
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// TestListModel_StateTransitions tests the idle and populated states.
func TestListModel_StateTransitions(t *testing.T) {
	m := NewListModel(context.Background(), ListConfig{Name: "feed", Height: 5, Width: 40})

	assert.Equal(t, StateIdle, m.State())
	assert.Contains(t, m.View(), "Loading")

	m.Update(ItemsMsg{Items: []any{}})
	assert.Equal(t, StateIdle, m.State())
	assert.Contains(t, m.View(), "No items")

	m.Update(ItemsMsg{Items: idItems(0, 3)})
	assert.Equal(t, StatePopulated, m.State())
	assert.Equal(t, 3, m.Sequence().Len())

	m.Update(ItemsMsg{Items: nil})
	assert.Equal(t, StateIdle, m.State())
}

// TestListModel_View tests that only the visible rows are rendered, one line each.
func TestListModel_View(t *testing.T) {
	m := NewListModel(context.Background(), ListConfig{Name: "feed", Height: 3, Width: 12})
	items := []any{
		map[string]any{"id": 1, "title": "a very long first title"},
		map[string]any{"id": 2, "title": "second\nwith a newline"},
		map[string]any{"id": 3, "title": "third"},
		map[string]any{"id": 4, "title": "fourth"},
	}
	m.Update(ItemsMsg{Items: items})

	lines := strings.Split(m.View(), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "second")
	assert.NotContains(t, m.View(), "fourth")
	assert.NotContains(t, m.View(), "newline")
}

// TestListModel_PrependKeepsViewport tests that a prepend shifts the window in
// the same update, so the first visible row does not change.
func TestListModel_PrependKeepsViewport(t *testing.T) {
	m := NewListModel(context.Background(), ListConfig{Name: "feed", Height: 10})
	m.Update(ItemsMsg{Items: idItems(0, 50)})
	m.ScrollToIndex(20)
	require.Equal(t, 20, firstVisibleKey(m))
	require.Equal(t, 20, m.Cursor())

	m.Update(ItemsMsg{Items: idItems(-5, 50)})

	assert.Equal(t, 25, m.Window().ScrollOffset())
	assert.Equal(t, 20, firstVisibleKey(m))
	assert.Equal(t, 25, m.Cursor(), "cursor follows its row")

	m.Update(ItemsMsg{Items: idItems(-5, 60)})
	assert.Equal(t, 20, firstVisibleKey(m), "append does not shift")
}

// TestListModel_BottomAnchor tests the initial scroll and the coalesced
// correction after appends while stuck.
func TestListModel_BottomAnchor(t *testing.T) {
	m := NewListModel(context.Background(), ListConfig{
		Name:       "chat",
		Height:     5,
		Anchor:     scroll.AnchorBottom,
		StuckSlack: 0.5,
	})

	_, cmd := m.Update(ItemsMsg{Items: idItems(0, 20)})
	assert.Empty(t, drain(cmd))
	assert.Equal(t, 15, m.Window().ScrollOffset())
	assert.Equal(t, 19, m.Cursor())
	assert.True(t, m.Stuck())

	_, first := m.Update(ItemsMsg{Items: idItems(0, 21)})
	_, second := m.Update(ItemsMsg{Items: idItems(0, 22)})
	assert.Nil(t, second, "correction already scheduled")

	msgs := drain(first)
	require.Len(t, msgs, 1)
	frame, ok := msgs[0].(frameMsg)
	require.True(t, ok)

	m.Update(frame)
	assert.Equal(t, 17, m.Window().ScrollOffset())
	assert.True(t, m.Stuck())
}

// TestListModel_ResizeKeepsBottom tests that a stuck list follows viewport
// resizes and an unstuck one keeps its offset.
func TestListModel_ResizeKeepsBottom(t *testing.T) {
	m := NewListModel(context.Background(), ListConfig{
		Name:       "chat",
		Height:     24,
		Anchor:     scroll.AnchorBottom,
		StuckSlack: 0.5,
	})
	m.Update(ItemsMsg{Items: idItems(0, 100)})
	require.Equal(t, 76, m.Window().ScrollOffset())

	tests := []struct {
		height     int
		wantOffset int
	}{
		{height: 10, wantOffset: 90},
		{height: 30, wantOffset: 70},
		{height: 5, wantOffset: 95},
	}
	for _, tt := range tests {
		m.SetSize(40, tt.height)
		assert.Equal(t, tt.wantOffset, m.Window().ScrollOffset(), "height %d", tt.height)
		assert.True(t, m.Stuck(), "height %d", tt.height)
	}

	m.ScrollToTop()
	require.False(t, m.Stuck())
	m.SetSize(40, 12)
	assert.Equal(t, 0, m.Window().ScrollOffset())
	assert.False(t, m.Stuck())
}

// TestListModel_BottomAnchorNotStuck tests that appends leave a scrolled-up view alone.
func TestListModel_BottomAnchorNotStuck(t *testing.T) {
	m := NewListModel(context.Background(), ListConfig{Name: "chat", Height: 5, Anchor: scroll.AnchorBottom})
	m.Update(ItemsMsg{Items: idItems(0, 20)})

	m.ScrollToTop()
	require.False(t, m.Stuck())

	_, cmd := m.Update(ItemsMsg{Items: idItems(0, 21)})
	assert.Nil(t, cmd)
	assert.Equal(t, 0, m.Window().ScrollOffset())
}

// TestListModel_FetchNextOnce tests that scrolling near the end fetches once
// while the fetch is in flight and again after it settles.
func TestListModel_FetchNextOnce(t *testing.T) {
	var calls atomic.Int32
	m := NewListModel(context.Background(), ListConfig{
		Name:      "feed",
		Height:    10,
		Threshold: 5,
		FetchNext: func(context.Context) error {
			calls.Add(1)
			return nil
		},
	})
	m.Update(ItemsMsg{Items: idItems(0, 30)})
	_, cmd := m.Update(PageInfoMsg{Info: paging.PageInfo{HasNextPage: true}})
	require.Nil(t, cmd, "top of the list is far from the end")

	fetch := m.ScrollToBottom()
	require.NotNil(t, fetch)
	assert.Equal(t, StateFetchingNext, m.State())

	assert.Nil(t, m.moveCursor(-1))
	assert.Nil(t, m.ScrollToBottom())

	msgs := drain(fetch)
	require.Len(t, msgs, 1)
	done, ok := msgs[0].(FetchDoneMsg)
	require.True(t, ok)
	assert.Equal(t, paging.DirectionNext, done.Direction)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, StatePopulated, m.State())

	_, again := m.Update(done)
	require.NotNil(t, again, "still near the end with more pages")
	drain(again)
	assert.Equal(t, int32(2), calls.Load())

	m.Update(PageInfoMsg{Info: paging.PageInfo{HasNextPage: false}})
	assert.Nil(t, m.ScrollToBottom())
}

// TestListModel_FetchPrevNearTop tests the prev direction and host fetching flags.
func TestListModel_FetchPrevNearTop(t *testing.T) {
	var calls atomic.Int32
	m := NewListModel(context.Background(), ListConfig{
		Name:      "feed",
		Height:    10,
		FetchPrev: func(context.Context) error { calls.Add(1); return nil },
	})
	m.Update(ItemsMsg{Items: idItems(0, 100)})

	_, cmd := m.Update(PageInfoMsg{Info: paging.PageInfo{HasPrevPage: true, IsFetchingPrevPage: true}})
	assert.Nil(t, cmd, "host reports a prev fetch already running")
	assert.Equal(t, StateFetchingPrev, m.State())

	_, cmd = m.Update(PageInfoMsg{Info: paging.PageInfo{HasPrevPage: true}})
	drain(cmd)
	assert.Equal(t, int32(1), calls.Load())
}

// TestListModel_FetchError tests that a failed fetch is recorded and released.
func TestListModel_FetchError(t *testing.T) {
	boom := errors.New("backend down")
	m := NewListModel(context.Background(), ListConfig{
		Name:      "feed",
		Height:    10,
		FetchNext: func(context.Context) error { return boom },
	})
	m.Update(ItemsMsg{Items: idItems(0, 5)})
	_, cmd := m.Update(PageInfoMsg{Info: paging.PageInfo{HasNextPage: true}})

	msgs := drain(cmd)
	require.Len(t, msgs, 1)
	m.Update(msgs[0])

	require.ErrorIs(t, m.Err(), boom)
	assert.False(t, m.trigger.InFlight(paging.DirectionNext))
}

// TestListModel_Close tests that a closed list absorbs late results.
func TestListModel_Close(t *testing.T) {
	var sawCancel atomic.Bool
	m := NewListModel(context.Background(), ListConfig{
		Name:   "feed",
		Height: 10,
		FetchNext: func(ctx context.Context) error {
			sawCancel.Store(ctx.Err() != nil)
			return ctx.Err()
		},
	})
	m.Update(ItemsMsg{Items: idItems(0, 5)})
	_, fetch := m.Update(PageInfoMsg{Info: paging.PageInfo{HasNextPage: true}})
	require.NotNil(t, fetch)

	m.Close()
	m.Close()

	msgs := drain(fetch)
	assert.True(t, sawCancel.Load())
	_, cmd := m.Update(msgs[0])
	assert.Nil(t, cmd)

	m.Update(ItemsMsg{Items: idItems(0, 50)})
	assert.Equal(t, 5, m.Sequence().Len())
}

// TestListModel_ToggleKeys tests collapsing from a header and from an item.
func TestListModel_ToggleKeys(t *testing.T) {
	m := NewListModel(context.Background(), ListConfig{
		Name:   "feed",
		Height: 10,
		Options: rows.Options{
			GroupBy:                 "g",
			GroupsInitiallyExpanded: true,
		},
	})
	m.Update(ItemsMsg{Items: []any{
		map[string]any{"id": 1, "g": "A"},
		map[string]any{"id": 2, "g": "B"},
	}})
	require.Equal(t, 6, m.Sequence().Len())

	m.Update(keyMsg("enter"))
	assert.Equal(t, 4, m.Sequence().Len())
	assert.Equal(t, 0, m.Cursor())

	m.Update(keyMsg("down"))
	m.Update(keyMsg("down"))
	item, ok := m.Selected().(rows.ItemRow)
	require.True(t, ok)
	require.Equal(t, 2, item.ItemKey)

	m.Update(keyMsg("enter"))
	assert.Equal(t, 2, m.Sequence().Len())
	header, ok := m.Selected().(rows.SectionHeaderRow)
	require.True(t, ok)
	assert.Equal(t, "B", header.GroupID)

	m.Update(ToggleGroupMsg{GroupID: "A"})
	assert.Equal(t, 4, m.Sequence().Len())
}

// TestListModel_ScrollKeys tests g, G and the mouse wheel.
func TestListModel_ScrollKeys(t *testing.T) {
	m := NewListModel(context.Background(), ListConfig{Name: "feed", Height: 4})
	m.Update(ItemsMsg{Items: idItems(0, 20)})

	m.Update(keyMsg("G"))
	assert.Equal(t, 16, m.Window().ScrollOffset())
	assert.Equal(t, 19, m.Cursor())

	m.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	assert.Equal(t, 13, m.Window().ScrollOffset())
	assert.Equal(t, 16, m.Cursor(), "cursor stays in view")

	m.Update(keyMsg("g"))
	assert.Equal(t, 0, m.Window().ScrollOffset())
	assert.Equal(t, 0, m.Cursor())

	m.SetFocused(false)
	m.Update(keyMsg("G"))
	assert.Equal(t, 0, m.Window().ScrollOffset(), "unfocused lists ignore keys")
}

// TestListModel_ScrollToID tests the id round trip and the absent id no-op.
func TestListModel_ScrollToID(t *testing.T) {
	m := NewListModel(context.Background(), ListConfig{Name: "feed", Height: 5, Inset: 1})
	m.Update(ItemsMsg{Items: idItems(0, 30)})

	found, _ := m.ScrollToID(12)
	require.True(t, found)
	assert.Equal(t, 12, m.Cursor())
	byID := m.Window().ScrollOffset()

	m.ScrollToTop()
	m.ScrollToIndex(12)
	assert.Equal(t, byID, m.Window().ScrollOffset())
	assert.Equal(t, 11, byID, "inset keeps one row above")

	m.ScrollToTop()
	found, cmd := m.ScrollToID("missing")
	assert.False(t, found)
	assert.Nil(t, cmd)
	assert.Equal(t, 0, m.Window().ScrollOffset())

	m.Update(ScrollMsg{Op: ScrollOpID, ID: 25})
	assert.Equal(t, 25, m.Cursor())
	m.Update(ScrollMsg{List: "other", Op: ScrollOpTop})
	assert.Equal(t, 25, m.Cursor(), "messages for other lists are ignored")
}

// TestListModel_RegisterAPIs tests publishing scroll operations in a registry.
func TestListModel_RegisterAPIs(t *testing.T) {
	apis := registry.NewAPIs()
	m := NewListModel(context.Background(), ListConfig{Name: "feed", Height: 5})
	m.Update(ItemsMsg{Items: idItems(0, 30)})

	var sent []tea.Msg
	require.NoError(t, m.RegisterAPIs(apis, func(msg tea.Msg) { sent = append(sent, msg) }))
	assert.Equal(t, []string{"feed.scrollToBottom", "feed.scrollToTop"}, apis.Names())

	require.NoError(t, apis.Call(APIName("feed", APIScrollToBottom)))
	require.Len(t, sent, 1)
	assert.Equal(t, ScrollMsg{List: "feed", Op: ScrollOpBottom}, sent[0])

	m.Update(sent[0])
	assert.Equal(t, 25, m.Window().ScrollOffset())

	twin := NewListModel(context.Background(), ListConfig{Name: "feed"})
	require.ErrorIs(t, twin.RegisterAPIs(apis, func(tea.Msg) {}), registry.ErrAPIRegistered)
	assert.Len(t, apis.Names(), 2)

	m.Close()
	assert.Empty(t, apis.Names())
	require.ErrorIs(t, m.RegisterAPIs(apis, func(tea.Msg) {}), ErrListClosed)
}

// TestListModel_SetOptions tests that option changes keep the expansion store.
func TestListModel_SetOptions(t *testing.T) {
	m := NewListModel(context.Background(), ListConfig{
		Name:    "feed",
		Height:  10,
		Options: rows.Options{GroupBy: "g", GroupsInitiallyExpanded: true},
	})
	m.Update(ItemsMsg{Items: []any{
		map[string]any{"id": 1, "g": "A", "v": 2},
		map[string]any{"id": 2, "g": "A", "v": 1},
	}})
	m.ToggleGroup("A")
	require.Equal(t, 1, m.Sequence().Len())

	m.Update(OptionsMsg{Options: rows.Options{
		GroupBy:                 "g",
		GroupsInitiallyExpanded: true,
		OrderBy:                 []rows.OrderKey{{Field: "v"}},
	}})
	assert.Equal(t, 1, m.Sequence().Len(), "A stays collapsed")

	m.ToggleGroup("A")
	item, ok := m.Sequence().At(1).(rows.ItemRow)
	require.True(t, ok)
	assert.Equal(t, 2, item.ItemKey)
}

// TestState_String tests the status names.
func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "fetching both", StateFetchingBoth.String())
	assert.Equal(t, "unknown", State(99).String())
	assert.True(t, StateFetchingNext.Fetching())
	assert.False(t, StatePopulated.Fetching())
}
