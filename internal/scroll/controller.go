// Package scroll translates imperative scroll requests into virtualizer calls
// and keeps bottom-anchored lists pinned to their newest row.
package scroll

import (
	"github.com/rs/zerolog"

	"github.com/rshade/feedlist/internal/rows"
)

// DefaultStuckSlack absorbs rounding in scroll measurements when deciding
// whether the view sits at the bottom.
const DefaultStuckSlack = 1.5

// Anchor is the end of the list the view defaults to.
type Anchor string

// Scroll anchors.
const (
	AnchorTop    Anchor = "top"
	AnchorBottom Anchor = "bottom"
)

// Align selects which edge of the target row meets the same edge of the viewport.
type Align int

// Alignments.
const (
	AlignStart Align = iota
	AlignEnd
)

// Options are passed through to Virtualizer.ScrollToIndex.
type Options struct {
	Align Align
	// Offset is added to the aligned scroll position.
	Offset int
}

// Virtualizer is the windowing collaborator. It clamps out-of-range targets itself,
// but the controller never relies on that.
type Virtualizer interface {
	ScrollToIndex(index int, opts Options)
	ScrollOffset() int
	ScrollSize() int
	ViewportSize() int
}

// Controller owns the stuck-to-bottom state of one list.
type Controller struct {
	v      Virtualizer
	anchor Anchor
	inset  int
	slack  float64
	logger zerolog.Logger

	seq      *rows.Sequence
	rowCount int
	mounted  bool

	stuck          bool
	pendingBottom  bool
	frameScheduled bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithInset sets the reserved top inset applied to every scroll target.
func WithInset(inset int) Option {
	return func(c *Controller) {
		c.inset = inset
	}
}

// WithStuckSlack overrides DefaultStuckSlack.
func WithStuckSlack(slack float64) Option {
	return func(c *Controller) {
		c.slack = slack
	}
}

// WithLogger sets the logger used for debug events.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates a controller over v. A bottom anchor starts stuck.
func NewController(v Virtualizer, anchor Anchor, opts ...Option) *Controller {
	c := &Controller{
		v:      v,
		anchor: anchor,
		slack:  DefaultStuckSlack,
		logger: zerolog.Nop(),
		stuck:  anchor == AnchorBottom,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Anchor returns the configured anchor.
func (c *Controller) Anchor() Anchor {
	return c.anchor
}

// Stuck reports whether a bottom-anchored view currently sits at the bottom.
func (c *Controller) Stuck() bool {
	return c.stuck
}

// ScrollToTop aligns row 0 with the top of the viewport, below the inset.
func (c *Controller) ScrollToTop() {
	c.v.ScrollToIndex(0, Options{Align: AlignStart, Offset: -c.inset})
}

// ScrollToBottom aligns the last row with the bottom of the viewport.
func (c *Controller) ScrollToBottom() {
	last := max(c.rowCount-1, 0)
	c.v.ScrollToIndex(last, Options{Align: AlignEnd, Offset: c.inset})
}

// ScrollToIndex aligns row i with the top of the viewport, below the inset.
func (c *Controller) ScrollToIndex(i int) {
	c.v.ScrollToIndex(i, Options{Align: AlignStart, Offset: -c.inset})
}

// ScrollToID scrolls to the item row whose key is id.
// It reports false, without touching the virtualizer, when no such row exists.
func (c *Controller) ScrollToID(id any) bool {
	idx := c.seq.IndexOfItem(id)
	if idx < 0 {
		return false
	}
	c.ScrollToIndex(idx)
	return true
}

// OnScroll recomputes stuck-ness after any change of the scroll position.
func (c *Controller) OnScroll() {
	if c.anchor != AnchorBottom {
		return
	}
	distance := float64(c.v.ScrollOffset() - c.v.ScrollSize() + c.v.ViewportSize())
	c.stuck = distance >= -c.slack
}

// Update records the current row sequence. It must run after the virtualizer
// has received the new row count.
//
// The first non-empty sequence of a bottom-anchored list scrolls to the bottom
// immediately. Later length changes while stuck schedule a correction for the
// next frame; Update returns true when the caller must schedule that frame.
// Corrections requested before the frame runs are coalesced.
func (c *Controller) Update(seq *rows.Sequence) bool {
	prevCount := c.rowCount
	c.seq = seq
	c.rowCount = seq.Len()

	if !c.mounted {
		if c.rowCount == 0 {
			return false
		}
		c.mounted = true
		if c.anchor == AnchorBottom {
			c.ScrollToBottom()
			c.stuck = true
		}
		return false
	}

	if c.anchor != AnchorBottom || c.rowCount == prevCount || !c.stuck {
		return false
	}

	c.pendingBottom = true
	if c.frameScheduled {
		return false
	}
	c.frameScheduled = true
	c.logger.Debug().
		Int("row_count", c.rowCount).
		Int("previous_count", prevCount).
		Msg("bottom correction scheduled")
	return true
}

// Pending reports whether a bottom correction waits for the next frame.
func (c *Controller) Pending() bool {
	return c.pendingBottom
}

// Frame runs the pending bottom correction, if any, and reports whether it scrolled.
func (c *Controller) Frame() bool {
	c.frameScheduled = false
	if !c.pendingBottom {
		return false
	}
	c.pendingBottom = false
	c.ScrollToBottom()
	return true
}
