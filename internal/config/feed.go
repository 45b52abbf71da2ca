package config

import (
	"errors"
	"fmt"
	"time"
)

// Feed defaults.
const (
	DefaultPageSize     = 50
	DefaultPreloadPages = 0
)

// ErrInvalidPageSize is returned when page_size is not positive.
var ErrInvalidPageSize = errors.New("page_size must be positive")

// FeedConfig controls how a feed file is paged into the list.
type FeedConfig struct {
	PageSize int `yaml:"page_size"`
	// InitialPage is the zero-based page shown first. A negative value selects
	// the last page, which suits bottom-anchored chat-style feeds.
	InitialPage  int           `yaml:"initial_page"`
	PreloadPages int           `yaml:"preload_pages"`
	Latency      time.Duration `yaml:"latency"`
	Watch        bool          `yaml:"watch"`
}

// DefaultFeedConfig returns the feed defaults.
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		PageSize:     DefaultPageSize,
		PreloadPages: DefaultPreloadPages,
	}
}

// Validate checks the paging settings.
func (fc *FeedConfig) Validate() error {
	if fc.PageSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, fc.PageSize)
	}
	if fc.PreloadPages < 0 {
		return fmt.Errorf("preload_pages: %w", ErrNegativeSetting)
	}
	if fc.Latency < 0 {
		return fmt.Errorf("latency: %w", ErrNegativeSetting)
	}
	return nil
}
