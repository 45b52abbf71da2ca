package list

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/rshade/feedlist/internal/scroll"
)

// DefaultOverscan is the number of extra rows kept warm above and below the viewport.
const DefaultOverscan = 5

// Window is the virtualization window of one list.
// It implements scroll.Virtualizer.
type Window struct {
	// count is the total number of rows.
	count int

	// offset is the index of the first visible row.
	offset int

	// height is the viewport height in rows.
	height int

	// width is the viewport width in columns; 0 disables truncation.
	width int

	// overscan is the number of extra rows beyond each viewport edge.
	overscan int
}

// NewWindow creates an empty window with the given viewport size.
func NewWindow(height, width int) *Window {
	return &Window{
		height:   max(height, 0),
		width:    max(width, 0),
		overscan: DefaultOverscan,
	}
}

// SetOverscan sets the overscan buffer size. Negative values are treated as 0.
func (w *Window) SetOverscan(n int) {
	w.overscan = max(n, 0)
}

// SetSize changes the viewport size and re-clamps the offset.
func (w *Window) SetSize(width, height int) {
	w.width = max(width, 0)
	w.height = max(height, 0)
	w.clamp()
}

// SetCount sets the total row count. When shift is true the count change is
// attributed to the head of the list and the offset moves by the same amount,
// so the rows on screen stay on screen.
func (w *Window) SetCount(n int, shift bool) {
	n = max(n, 0)
	if shift {
		w.offset += n - w.count
	}
	w.count = n
	w.clamp()
}

// ScrollBy moves the offset by delta rows and reports whether it changed.
func (w *Window) ScrollBy(delta int) bool {
	before := w.offset
	w.offset += delta
	w.clamp()
	return w.offset != before
}

// ScrollToIndex scrolls so that row index meets the viewport edge selected by
// opts.Align, then applies opts.Offset. Out-of-range indices are clamped.
func (w *Window) ScrollToIndex(index int, opts scroll.Options) {
	if w.count == 0 {
		w.offset = 0
		return
	}
	index = min(max(index, 0), w.count-1)

	switch opts.Align {
	case scroll.AlignEnd:
		w.offset = index + 1 - w.height + opts.Offset
	default:
		w.offset = index + opts.Offset
	}
	w.clamp()
}

// EnsureVisible scrolls the minimum amount needed to show row index.
func (w *Window) EnsureVisible(index int) {
	switch {
	case index < w.offset:
		w.ScrollToIndex(index, scroll.Options{Align: scroll.AlignStart})
	case index >= w.offset+w.height:
		w.ScrollToIndex(index, scroll.Options{Align: scroll.AlignEnd})
	}
}

// ScrollOffset returns the index of the first visible row.
func (w *Window) ScrollOffset() int {
	return w.offset
}

// ScrollSize returns the total scrollable size in rows.
func (w *Window) ScrollSize() int {
	return w.count
}

// ViewportSize returns the viewport height in rows.
func (w *Window) ViewportSize() int {
	return w.height
}

// Width returns the viewport width.
func (w *Window) Width() int {
	return w.width
}

// Count returns the total row count.
func (w *Window) Count() int {
	return w.count
}

// Range returns the visible rows as [start, end).
func (w *Window) Range() (int, int) {
	return w.offset, min(w.offset+w.height, w.count)
}

// RenderRange returns the visible rows plus overscan as [start, end).
func (w *Window) RenderRange() (int, int) {
	start, end := w.Range()
	return max(start-w.overscan, 0), min(end+w.overscan, w.count)
}

// Render draws the visible rows with renderRow, one line per row, each cut to
// the viewport width. Overscan rows are passed to warm when it is non-nil.
func (w *Window) Render(renderRow func(index int) string, warm func(index int)) string {
	start, end := w.Range()
	if warm != nil {
		from, to := w.RenderRange()
		for i := from; i < to; i++ {
			if i < start || i >= end {
				warm(i)
			}
		}
	}

	var sb strings.Builder
	for i := start; i < end; i++ {
		if i > start {
			sb.WriteString("\n")
		}
		line := renderRow(i)
		// Rows render on exactly one line.
		line, _, _ = strings.Cut(line, "\n")
		if w.width > 0 {
			line = ansi.Truncate(line, w.width, "…")
		}
		sb.WriteString(line)
	}
	return sb.String()
}

func (w *Window) maxOffset() int {
	return max(w.count-w.height, 0)
}

func (w *Window) clamp() {
	w.offset = min(max(w.offset, 0), w.maxOffset())
}
