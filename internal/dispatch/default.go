package dispatch

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/feedlist/internal/rows"
)

// Colors used by the default renderers.
const (
	ColorHeader = lipgloss.Color("39")
	ColorMuted  = lipgloss.Color("245")
	ColorItem   = lipgloss.Color("252")
)

// Header markers.
const (
	markerExpanded  = "▾"
	markerCollapsed = "▸"
	ungroupedLabel  = "Ungrouped"
)

// defaultTextFields are tried in order when Default.TextField is empty.
//
//nolint:gochecknoglobals // Read-only lookup table.
var defaultTextFields = []string{"title", "text", "name", "body"}

//nolint:gochecknoglobals // Styles are immutable values shared by all renders.
var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorHeader)
	footerStyle = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
	itemStyle   = lipgloss.NewStyle().Foreground(ColorItem)
	mutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
)

// Default implements every renderer capability with plain, styled text.
type Default struct {
	// TextField is the dotted path rendered for items. Empty tries title, text, name and body.
	TextField string
}

// RenderItem renders the item's text field, or its key when no text is found.
func (d Default) RenderItem(item any, key any, _, _ int) string {
	return itemStyle.Render("  " + ItemText(item, key, d.TextField))
}

// RenderSectionHeader renders "▾ Title (n items)".
func (Default) RenderSectionHeader(group Group, _ any) string {
	marker := markerCollapsed
	if group.Expanded {
		marker = markerExpanded
	}
	return headerStyle.Render(fmt.Sprintf("%s %s", marker, GroupTitle(group.ID))) +
		" " + mutedStyle.Render("("+CountLabel(len(group.Items))+")")
}

// RenderSectionFooter renders the item count of the group.
func (Default) RenderSectionFooter(group Group, _ any) string {
	return footerStyle.Render("  └ " + CountLabel(len(group.Items)))
}

// RenderEmpty renders the empty-list text.
func (Default) RenderEmpty() string {
	return mutedStyle.Render("No items")
}

// RenderLoading renders the loading text.
func (Default) RenderLoading() string {
	return mutedStyle.Render("Loading…")
}

// ItemText returns the text shown for an item.
func ItemText(item any, key any, field string) string {
	if field != "" {
		if v := rows.Lookup(item, field); v != nil {
			return fmt.Sprint(v)
		}
	} else {
		for _, f := range defaultTextFields {
			if v := rows.Lookup(item, f); v != nil {
				return fmt.Sprint(v)
			}
		}
	}
	if key != nil {
		return fmt.Sprint(key)
	}
	return fmt.Sprint(item)
}

// GroupTitle returns a display title for a group id. The nil group is "Ungrouped".
func GroupTitle(id any) string {
	if id == nil {
		return ungroupedLabel
	}
	return cases.Title(language.English).String(fmt.Sprint(id))
}

// CountLabel formats n with grouping separators, e.g. "1,234 items".
func CountLabel(n int) string {
	p := message.NewPrinter(language.English)
	if n == 1 {
		return p.Sprintf("%d item", n)
	}
	return p.Sprintf("%d items", n)
}
