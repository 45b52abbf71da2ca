package paging

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultThreshold is the number of rows from either end at which a fetch is triggered.
const DefaultThreshold = 10

// Direction identifies which end of the list a fetch extends.
type Direction int

// Fetch directions.
const (
	DirectionPrev Direction = iota
	DirectionNext
)

// String returns "prev" or "next".
func (d Direction) String() string {
	if d == DirectionPrev {
		return "prev"
	}
	return "next"
}

// PageInfo is the caller's view of pagination. The trigger only reads it.
type PageInfo struct {
	HasPrevPage        bool `json:"has_prev_page"         yaml:"has_prev_page"`
	HasNextPage        bool `json:"has_next_page"         yaml:"has_next_page"`
	IsFetchingPrevPage bool `json:"is_fetching_prev_page" yaml:"is_fetching_prev_page"`
	IsFetchingNextPage bool `json:"is_fetching_next_page" yaml:"is_fetching_next_page"`
}

// FetchFunc requests one more page in a direction.
type FetchFunc func(ctx context.Context) error

// Trigger decides when to call the fetch callbacks.
// Check is called from the UI loop; Fetch.Run may run on any goroutine.
type Trigger struct {
	threshold int
	fetchPrev FetchFunc
	fetchNext FetchFunc
	logger    zerolog.Logger

	mu           sync.Mutex
	prevInFlight bool
	nextInFlight bool
}

// Option configures a Trigger.
type Option func(*Trigger)

// WithThreshold overrides DefaultThreshold. Values below 1 are ignored.
func WithThreshold(n int) Option {
	return func(t *Trigger) {
		if n > 0 {
			t.threshold = n
		}
	}
}

// WithLogger sets the logger used for debug events.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Trigger) {
		t.logger = logger
	}
}

// NewTrigger creates a trigger. Either callback may be nil, which disables that direction.
func NewTrigger(fetchPrev, fetchNext FetchFunc, opts ...Option) *Trigger {
	t := &Trigger{
		threshold: DefaultThreshold,
		fetchPrev: fetchPrev,
		fetchNext: fetchNext,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Threshold returns the near-edge distance in rows.
func (t *Trigger) Threshold() int {
	return t.threshold
}

// Check evaluates both directions against the visible window.
// first and last are the inclusive indices of the first and last visible rows.
// Every returned Fetch has already claimed its in-flight guard and must be Run
// exactly once. Both directions may be returned together.
func (t *Trigger) Check(first, last, rowCount int, info PageInfo) []Fetch {
	t.mu.Lock()
	defer t.mu.Unlock()

	var fetches []Fetch

	if t.fetchPrev != nil &&
		first < t.threshold &&
		info.HasPrevPage &&
		!info.IsFetchingPrevPage &&
		!t.prevInFlight {
		t.prevInFlight = true
		fetches = append(fetches, Fetch{Direction: DirectionPrev, trigger: t, fn: t.fetchPrev})
	}

	if t.fetchNext != nil &&
		last >= rowCount-t.threshold &&
		info.HasNextPage &&
		!info.IsFetchingNextPage &&
		!t.nextInFlight {
		t.nextInFlight = true
		fetches = append(fetches, Fetch{Direction: DirectionNext, trigger: t, fn: t.fetchNext})
	}

	for _, f := range fetches {
		t.logger.Debug().
			Str("direction", f.Direction.String()).
			Int("first", first).
			Int("last", last).
			Int("row_count", rowCount).
			Msg("page fetch triggered")
	}

	return fetches
}

// InFlight reports whether this trigger has a fetch running in direction d.
func (t *Trigger) InFlight(d Direction) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if d == DirectionPrev {
		return t.prevInFlight
	}
	return t.nextInFlight
}

func (t *Trigger) release(d Direction) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if d == DirectionPrev {
		t.prevInFlight = false
	} else {
		t.nextInFlight = false
	}
}

// Fetch is one claimed page request.
type Fetch struct {
	Direction Direction

	trigger *Trigger
	fn      FetchFunc
}

// Run calls the fetch callback and releases the direction's guard when it
// returns or panics. The callback's error is returned as is.
func (f Fetch) Run(ctx context.Context) error {
	defer f.trigger.release(f.Direction)
	return f.fn(ctx)
}
