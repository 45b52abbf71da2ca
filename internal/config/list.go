package config

import (
	"errors"
	"fmt"

	"github.com/rshade/feedlist/internal/paging"
	"github.com/rshade/feedlist/internal/rows"
	"github.com/rshade/feedlist/internal/scroll"
)

// List defaults.
const (
	DefaultScrollPadding = 1
	DefaultOverscan      = 5
	// DefaultStuckSlack is tighter than scroll.DefaultStuckSlack because
	// terminal rows are whole cells.
	DefaultStuckSlack = 0.5
)

// Common list configuration errors.
var (
	ErrInvalidAnchor   = errors.New("anchor must be 'top' or 'bottom'")
	ErrNegativeSetting = errors.New("setting must not be negative")
)

// ListConfig shapes the row projection and the viewport behavior.
type ListConfig struct {
	KeyField                string   `yaml:"key_field"`
	GroupBy                 string   `yaml:"group_by"`
	OrderBy                 string   `yaml:"order_by"`
	Limit                   int      `yaml:"limit"`
	DefaultGroups           []any    `yaml:"default_groups,omitempty"`
	AvailableGroups         []any    `yaml:"available_groups,omitempty"`
	HideEmptyGroups         bool     `yaml:"hide_empty_groups"`
	GroupsInitiallyExpanded bool     `yaml:"groups_initially_expanded"`
	Anchor                  string   `yaml:"anchor"`
	ScrollPadding           int      `yaml:"scroll_padding"`
	StuckSlack              float64  `yaml:"stuck_slack"`
	Overscan                int      `yaml:"overscan"`
	Threshold               int      `yaml:"threshold"`
	TextField               string   `yaml:"text_field"`
	FilterFields            []string `yaml:"filter_fields,omitempty"`
}

// DefaultListConfig returns an ungrouped, top-anchored list keyed by "id".
func DefaultListConfig() ListConfig {
	return ListConfig{
		KeyField:                rows.DefaultKeyField,
		GroupsInitiallyExpanded: true,
		Anchor:                  string(scroll.AnchorTop),
		ScrollPadding:           DefaultScrollPadding,
		StuckSlack:              DefaultStuckSlack,
		Overscan:                DefaultOverscan,
		Threshold:               paging.DefaultThreshold,
	}
}

// Validate checks the anchor, the order expression and the numeric settings.
func (lc *ListConfig) Validate() error {
	if _, err := lc.ScrollAnchor(); err != nil {
		return err
	}
	if _, err := rows.ParseOrder(lc.OrderBy); err != nil {
		return fmt.Errorf("order_by: %w", err)
	}
	for name, v := range map[string]int{
		"scroll_padding": lc.ScrollPadding,
		"overscan":       lc.Overscan,
		"threshold":      lc.Threshold,
	} {
		if v < 0 {
			return fmt.Errorf("%s: %w", name, ErrNegativeSetting)
		}
	}
	if lc.StuckSlack < 0 {
		return fmt.Errorf("stuck_slack: %w", ErrNegativeSetting)
	}
	return nil
}

// ScrollAnchor parses Anchor. An empty anchor means top.
func (lc *ListConfig) ScrollAnchor() (scroll.Anchor, error) {
	switch scroll.Anchor(lc.Anchor) {
	case "", scroll.AnchorTop:
		return scroll.AnchorTop, nil
	case scroll.AnchorBottom:
		return scroll.AnchorBottom, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidAnchor, lc.Anchor)
	}
}

// ProjectOptions converts the config into projection options bound to expansion.
func (lc *ListConfig) ProjectOptions(expansion rows.Expansion) (rows.Options, error) {
	order, err := rows.ParseOrder(lc.OrderBy)
	if err != nil {
		return rows.Options{}, fmt.Errorf("order_by: %w", err)
	}
	return rows.Options{
		KeyField:                lc.KeyField,
		Limit:                   lc.Limit,
		GroupBy:                 lc.GroupBy,
		OrderBy:                 order,
		DefaultGroups:           lc.DefaultGroups,
		AvailableGroups:         lc.AvailableGroups,
		HideEmptyGroups:         lc.HideEmptyGroups,
		GroupsInitiallyExpanded: lc.GroupsInitiallyExpanded,
		Expansion:               expansion,
	}, nil
}
