package tui

import (
	"github.com/rshade/feedlist/internal/paging"
	"github.com/rshade/feedlist/internal/rows"
)

// ItemsMsg replaces the items of a ListModel.
type ItemsMsg struct {
	Items []any
}

// PageInfoMsg updates the pagination state of a ListModel.
type PageInfoMsg struct {
	Info paging.PageInfo
}

// OptionsMsg replaces the projection options of a ListModel.
// The Expansion field is ignored; the list keeps its own store.
type OptionsMsg struct {
	Options rows.Options
}

// ToggleGroupMsg flips the expansion of one group.
type ToggleGroupMsg struct {
	GroupID any
}

// FetchDoneMsg reports the end of a page fetch started by a ListModel.
type FetchDoneMsg struct {
	List      string
	Direction paging.Direction
	Err       error
}

// ScrollOp is an imperative scroll operation.
type ScrollOp int

// Scroll operations.
const (
	ScrollOpTop ScrollOp = iota
	ScrollOpBottom
	ScrollOpIndex
	ScrollOpID
)

// ScrollMsg asks a ListModel to scroll. Index is used by ScrollOpIndex and
// ID by ScrollOpID.
type ScrollMsg struct {
	List  string
	Op    ScrollOp
	Index int
	ID    any
}

// frameMsg runs a pending bottom correction on the list it was scheduled by.
type frameMsg struct {
	list *ListModel
}
