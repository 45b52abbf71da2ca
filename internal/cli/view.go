package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/feedlist/internal/config"
	"github.com/rshade/feedlist/internal/dispatch"
	"github.com/rshade/feedlist/internal/expansion"
	"github.com/rshade/feedlist/internal/feed"
	"github.com/rshade/feedlist/internal/registry"
	"github.com/rshade/feedlist/internal/rows"
	"github.com/rshade/feedlist/internal/tui"
)

// viewListName names the list hosted by the view command in API names.
const viewListName = "feed"

type viewOptions struct {
	list        listFlags
	anchor      string
	pageSize    int
	initialPage int
	preload     int
	latency     time.Duration
	threshold   int
	watch       bool
	plain       bool
	jump        string
}

// NewViewCmd creates the view command, which browses a feed interactively.
func NewViewCmd() *cobra.Command {
	var opts viewOptions

	cmd := &cobra.Command{
		Use:   "view <feed-file>",
		Short: "Browse a feed as an interactive list",
		Long: `Opens a YAML or JSON feed in a scrollable list. Pages are loaded on demand
as the viewport nears either end of the loaded window; with --anchor bottom the
list follows new items while scrolled to the end.

When stdout is not a terminal, or with --plain, the loaded rows are printed instead.`,
		Example: `  # Chat-style: newest page first, stick to the bottom
  feedlist view messages.yaml --anchor bottom --initial-page -1

  # Grouped by channel, ordered by time, with simulated fetch latency
  feedlist view messages.yaml --group-by channel --order-by time --latency 300ms

  # Reload when the file changes and start at the bottom
  feedlist view messages.yaml --watch --jump bottom`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, args[0], &opts)
		},
	}

	addListFlags(cmd, &opts.list)
	fs := cmd.Flags()
	fs.StringVar(&opts.anchor, "anchor", "", "scroll anchor: top or bottom")
	fs.IntVar(&opts.pageSize, "page-size", 0, "items per feed page")
	fs.IntVar(&opts.initialPage, "initial-page", 0, "zero-based page loaded first (-1 = last page)")
	fs.IntVar(&opts.preload, "preload", 0, "pages to load in each direction before the first render")
	fs.DurationVar(&opts.latency, "latency", 0, "simulated delay for every page fetch")
	fs.IntVar(&opts.threshold, "threshold", 0, "rows from either end that trigger a page fetch")
	fs.BoolVar(&opts.watch, "watch", false, "reload the feed when the file changes")
	fs.BoolVar(&opts.plain, "plain", false, "print the rows instead of opening the interactive view")
	fs.StringVar(&opts.jump, "jump", "", "scroll to top or bottom once the view opens")

	return cmd
}

// apply copies the flags the user set onto the list and feed sections.
func (o *viewOptions) apply(cmd *cobra.Command, lc *config.ListConfig, fc *config.FeedConfig) {
	o.list.apply(cmd, lc)
	fs := cmd.Flags()
	if fs.Changed("anchor") {
		lc.Anchor = o.anchor
	}
	if fs.Changed("threshold") {
		lc.Threshold = o.threshold
	}
	if fs.Changed("page-size") {
		fc.PageSize = o.pageSize
	}
	if fs.Changed("initial-page") {
		fc.InitialPage = o.initialPage
	}
	if fs.Changed("preload") {
		fc.PreloadPages = o.preload
	}
	if fs.Changed("latency") {
		fc.Latency = o.latency
	}
	if fs.Changed("watch") {
		fc.Watch = o.watch
	}
}

func runView(cmd *cobra.Command, path string, opts *viewOptions) error {
	cfg := config.GetGlobalConfig()
	listCfg, feedCfg := cfg.List, cfg.Feed
	opts.apply(cmd, &listCfg, &feedCfg)

	if err := listCfg.Validate(); err != nil {
		return invalidInput(err)
	}
	if err := feedCfg.Validate(); err != nil {
		return invalidInput(err)
	}
	jumpOp, err := parseJump(opts.jump)
	if err != nil {
		return invalidInput(err)
	}

	items, err := feed.Load(path)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	interactive := !opts.plain && isTerminal(os.Stdout)
	sourceLogger := logger
	if interactive {
		sourceLogger = screenLogger()
	}
	src := feed.NewSource(items, feed.Options{
		PageSize:    feedCfg.PageSize,
		InitialPage: feedCfg.InitialPage,
		Latency:     feedCfg.Latency,
		Logger:      sourceLogger,
	})
	if feedCfg.PreloadPages > 0 {
		if err = src.Preload(ctx, feedCfg.PreloadPages); err != nil {
			return fmt.Errorf("preloading feed: %w", err)
		}
	}

	if !interactive {
		return renderPlain(cmd.OutOrStdout(), src.Items(), &listCfg)
	}
	return runInteractive(ctx, path, src, &listCfg, &feedCfg, jumpOp)
}

// parseJump maps the --jump value to a list API operation; "" means none.
func parseJump(jump string) (string, error) {
	switch strings.ToLower(jump) {
	case "":
		return "", nil
	case "top":
		return tui.APIScrollToTop, nil
	case "bottom":
		return tui.APIScrollToBottom, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidJump, jump)
	}
}

// renderPlain writes the rendered rows of the loaded items, one per line.
func renderPlain(w io.Writer, items []any, lc *config.ListConfig) error {
	opts, err := lc.ProjectOptions(expansion.New(lc.GroupsInitiallyExpanded))
	if err != nil {
		return invalidInput(err)
	}
	seq := rows.Project(items, opts)
	d := dispatch.New(dispatch.Default{TextField: lc.TextField})

	if seq.Len() == 0 {
		_, err = fmt.Fprintln(w, d.RenderEmpty())
		return err
	}
	for i := range seq.Len() {
		if _, err = fmt.Fprintln(w, d.Render(seq, i)); err != nil {
			return err
		}
	}
	return nil
}

func runInteractive(
	ctx context.Context,
	path string,
	src *feed.Source,
	lc *config.ListConfig,
	fc *config.FeedConfig,
	jumpOp string,
) error {
	anchor, err := lc.ScrollAnchor()
	if err != nil {
		return invalidInput(err)
	}
	// The list model binds its own expansion store.
	projectOpts, err := lc.ProjectOptions(nil)
	if err != nil {
		return invalidInput(err)
	}

	viewCfg := tui.FeedViewConfig{
		Source: src,
		List: tui.ListConfig{
			Name:       viewListName,
			Options:    projectOpts,
			Anchor:     anchor,
			Inset:      lc.ScrollPadding,
			StuckSlack: lc.StuckSlack,
			Overscan:   lc.Overscan,
			Threshold:  lc.Threshold,
			Logger:     screenLogger(),
		},
		FilterFields: lc.FilterFields,
		TextField:    lc.TextField,
		Logger:       screenLogger(),
	}

	if fc.Watch {
		watchers := feed.NewWatchers(screenLogger())
		watcher, release, watchErr := feed.Watch(ctx, watchers, path)
		if watchErr != nil {
			return fmt.Errorf("watching feed: %w", watchErr)
		}
		defer release()
		changes, stop := watcher.Listen()
		defer stop()
		viewCfg.Changes = changes
		viewCfg.Reload = func() ([]any, error) { return feed.Load(path) }
	}

	view := tui.NewFeedView(ctx, viewCfg)
	defer view.Close()

	p := tea.NewProgram(view, tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseCellMotion())

	apis := registry.NewAPIs()
	if err = view.List().RegisterAPIs(apis, p.Send); err != nil {
		return err
	}
	if jumpOp != "" {
		go func() {
			if callErr := apis.Call(tui.APIName(viewListName, jumpOp)); callErr != nil {
				lg := screenLogger()
				lg.Warn().Err(callErr).Str("op", jumpOp).Msg("initial jump failed")
			}
		}()
	}

	if _, err = p.Run(); err != nil {
		return fmt.Errorf("running list view: %w", err)
	}
	return nil
}
