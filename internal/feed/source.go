package feed

import (
	"context"
	"errors"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/feedlist/internal/paging"
)

// DefaultPageSize is used when Options.PageSize is not positive.
const DefaultPageSize = 50

// ErrFetchInProgress is returned when a fetch in the same direction is running.
var ErrFetchInProgress = errors.New("fetch already in progress")

// Options configures a Source.
type Options struct {
	PageSize int
	// InitialPage is the zero-based page loaded first; negative selects the last page.
	InitialPage int
	// Latency delays every fetch, simulating a remote backend.
	Latency time.Duration
	Logger  zerolog.Logger
}

// Meta describes the loaded window in page terms.
type Meta struct {
	FirstPage   int  `json:"first_page"   yaml:"first_page"`
	LastPage    int  `json:"last_page"    yaml:"last_page"`
	PageSize    int  `json:"page_size"    yaml:"page_size"`
	TotalPages  int  `json:"total_pages"  yaml:"total_pages"`
	TotalItems  int  `json:"total_items"  yaml:"total_items"`
	LoadedItems int  `json:"loaded_items" yaml:"loaded_items"`
	HasPrevious bool `json:"has_previous" yaml:"has_previous"`
	HasNext     bool `json:"has_next"     yaml:"has_next"`
}

// Source pages through an in-memory item list. It is safe for concurrent use.
type Source struct {
	pageSize int
	latency  time.Duration
	logger   zerolog.Logger

	mu       sync.Mutex
	all      []any
	start    int
	end      int
	fetching [2]bool
	version  uint64
}

// NewSource creates a Source with the initial page loaded.
func NewSource(items []any, opts Options) *Source {
	s := &Source{
		pageSize: opts.PageSize,
		latency:  opts.Latency,
		logger:   opts.Logger,
		all:      slices.Clone(items),
	}
	if s.pageSize <= 0 {
		s.pageSize = DefaultPageSize
	}

	pages := s.totalPagesLocked()
	page := opts.InitialPage
	if page < 0 || page >= pages {
		page = max(pages-1, 0)
	}
	s.start = min(page*s.pageSize, len(s.all))
	s.end = min(s.start+s.pageSize, len(s.all))
	return s
}

// Items returns a copy of the loaded window.
func (s *Source) Items() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.all[s.start:s.end])
}

// Version increments every time the loaded window changes.
func (s *Source) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// PageInfo reports the pagination state for the list engine.
func (s *Source) PageInfo() paging.PageInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return paging.PageInfo{
		HasPrevPage:        s.start > 0,
		HasNextPage:        s.end < len(s.all),
		IsFetchingPrevPage: s.fetching[paging.DirectionPrev],
		IsFetchingNextPage: s.fetching[paging.DirectionNext],
	}
}

// Meta reports the loaded window in page terms.
func (s *Source) Meta() Meta {
	s.mu.Lock()
	defer s.mu.Unlock()

	lastPage := 0
	if s.end > s.start {
		lastPage = (s.end - 1) / s.pageSize
	}
	return Meta{
		FirstPage:   s.start / s.pageSize,
		LastPage:    lastPage,
		PageSize:    s.pageSize,
		TotalPages:  s.totalPagesLocked(),
		TotalItems:  len(s.all),
		LoadedItems: s.end - s.start,
		HasPrevious: s.start > 0,
		HasNext:     s.end < len(s.all),
	}
}

// FetchPrev loads the page before the window. It is a no-op at the start.
func (s *Source) FetchPrev(ctx context.Context) error {
	return s.fetch(ctx, paging.DirectionPrev)
}

// FetchNext loads the page after the window. It is a no-op at the end.
func (s *Source) FetchNext(ctx context.Context) error {
	return s.fetch(ctx, paging.DirectionNext)
}

func (s *Source) fetch(ctx context.Context, dir paging.Direction) error {
	s.mu.Lock()
	if s.fetching[dir] {
		s.mu.Unlock()
		return ErrFetchInProgress
	}
	s.fetching[dir] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.fetching[dir] = false
		s.mu.Unlock()
	}()

	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.end - s.start
	if dir == paging.DirectionPrev {
		s.start = max(s.start-s.pageSize, 0)
	} else {
		s.end = min(s.end+s.pageSize, len(s.all))
	}
	if added := s.end - s.start - before; added > 0 {
		s.version++
		s.logger.Debug().
			Str("direction", dir.String()).
			Int("added", added).
			Int("loaded", s.end-s.start).
			Msg("page loaded")
	}
	return nil
}

// Replace swaps in a new item list, keeping the window's bounds. A window that
// reached the end of the old list grows to the end of the new one.
func (s *Source) Replace(items []any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	atEnd := s.end == len(s.all)
	s.all = slices.Clone(items)
	s.start = min(s.start, len(s.all))
	s.end = min(s.end, len(s.all))
	if atEnd {
		s.end = len(s.all)
	}
	if s.end == s.start && len(s.all) > 0 {
		s.start = max(len(s.all)-s.pageSize, 0)
		s.end = len(s.all)
	}
	s.version++
}

func (s *Source) totalPagesLocked() int {
	return int(math.Ceil(float64(len(s.all)) / float64(s.pageSize)))
}
