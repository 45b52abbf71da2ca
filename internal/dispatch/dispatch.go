// Package dispatch maps each row variant to the renderer registered for it.
//
// Renderers form a capability set: a value passed to New may implement any
// subset of ItemRenderer, SectionHeaderRenderer, SectionFooterRenderer,
// EmptyRenderer and LoadingRenderer. Missing capabilities fall back to the
// Default renderers, and a row the dispatcher cannot render becomes an empty
// placeholder line so that index math in the window stays intact.
package dispatch

import (
	"fmt"

	"github.com/rshade/feedlist/internal/rows"
)

// Placeholder is rendered for rows without a usable renderer.
const Placeholder = ""

// ItemRenderer renders an item row. index and count let the renderer compute first/last flags.
type ItemRenderer interface {
	RenderItem(item any, key any, index, count int) string
}

// SectionHeaderRenderer renders the header row of a group.
type SectionHeaderRenderer interface {
	RenderSectionHeader(group Group, key any) string
}

// SectionFooterRenderer renders the footer row of an expanded group.
type SectionFooterRenderer interface {
	RenderSectionFooter(group Group, key any) string
}

// EmptyRenderer renders the list when it has no rows.
type EmptyRenderer interface {
	RenderEmpty() string
}

// LoadingRenderer renders the list while the first page is loading.
type LoadingRenderer interface {
	RenderLoading() string
}

// Group describes the group behind a section row.
type Group struct {
	ID       any
	Items    []any
	Expanded bool
}

// Dispatcher resolves renderers once and dispatches rows to them.
type Dispatcher struct {
	item    ItemRenderer
	header  SectionHeaderRenderer
	footer  SectionFooterRenderer
	empty   EmptyRenderer
	loading LoadingRenderer
}

// New builds a Dispatcher from the capabilities r implements. r may be nil.
func New(r any) *Dispatcher {
	d := &Dispatcher{
		item:    Default{},
		header:  Default{},
		footer:  Default{},
		empty:   Default{},
		loading: Default{},
	}
	if v, ok := r.(ItemRenderer); ok {
		d.item = v
	}
	if v, ok := r.(SectionHeaderRenderer); ok {
		d.header = v
	}
	if v, ok := r.(SectionFooterRenderer); ok {
		d.footer = v
	}
	if v, ok := r.(EmptyRenderer); ok {
		d.empty = v
	}
	if v, ok := r.(LoadingRenderer); ok {
		d.loading = v
	}
	return d
}

// Render renders the row at index of seq. Out-of-range indices render the placeholder.
func (d *Dispatcher) Render(seq *rows.Sequence, index int) string {
	count := seq.Len()
	switch r := seq.At(index).(type) {
	case rows.ItemRow:
		return d.item.RenderItem(r.Item, r.ItemKey, index, count)
	case rows.SectionHeaderRow:
		group := Group{ID: r.GroupID, Items: r.Items, Expanded: headerExpanded(seq, index)}
		return d.header.RenderSectionHeader(group, r.GroupID)
	case rows.SectionFooterRow:
		return d.footer.RenderSectionFooter(Group{ID: r.GroupID, Items: r.Items, Expanded: true}, r.GroupID)
	default:
		return Placeholder
	}
}

// headerExpanded reports whether the header at index opens an expanded group.
// Expanded groups always end with a footer, so the next row is never a header.
func headerExpanded(seq *rows.Sequence, index int) bool {
	next := seq.At(index + 1)
	return next != nil && next.Kind() != rows.KindSectionHeader
}

// RenderEmpty renders the empty-list placeholder.
func (d *Dispatcher) RenderEmpty() string {
	return d.empty.RenderEmpty()
}

// RenderLoading renders the loading placeholder.
func (d *Dispatcher) RenderLoading() string {
	return d.loading.RenderLoading()
}

// Key returns a stable render key for row. Header and footer of one group
// share the group id and are told apart by their prefix.
func Key(row rows.Row) string {
	if row == nil {
		return ""
	}
	return fmt.Sprintf("%s:%v", row.Kind(), row.Key())
}
