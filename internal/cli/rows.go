package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/feedlist/internal/cli/pagination"
	"github.com/rshade/feedlist/internal/config"
	"github.com/rshade/feedlist/internal/dispatch"
	"github.com/rshade/feedlist/internal/expansion"
	"github.com/rshade/feedlist/internal/feed"
	"github.com/rshade/feedlist/internal/rows"
)

const tabPadding = 2

// Output formats supported by the rows command.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// RowRecord is one projected row in command output.
type RowRecord struct {
	Index int    `json:"index"           yaml:"index"`
	Kind  string `json:"kind"            yaml:"kind"`
	Key   any    `json:"key"             yaml:"key"`
	Group any    `json:"group,omitempty" yaml:"group,omitempty"`
	Text  string `json:"text,omitempty"  yaml:"text,omitempty"`
	// Count is the number of items in the group, for headers and footers.
	Count int `json:"count,omitempty" yaml:"count,omitempty"`
	Item  any `json:"item,omitempty"  yaml:"item,omitempty"`
}

// RowsOutput is the JSON and YAML document printed by the rows command.
type RowsOutput struct {
	Rows       []RowRecord      `json:"rows"                 yaml:"rows"`
	Pagination *pagination.Meta `json:"pagination,omitempty" yaml:"pagination,omitempty"`
	Feed       feed.Meta        `json:"feed"                 yaml:"feed"`
}

type rowsOptions struct {
	list     listFlags
	output   string
	all      bool
	collapse []string
	pages    pagination.Params
}

// NewRowsCmd creates the rows command, which prints the projected row sequence of a feed.
func NewRowsCmd() *cobra.Command {
	var opts rowsOptions

	cmd := &cobra.Command{
		Use:   "rows <feed-file>",
		Short: "Print the projected rows of a feed",
		Long: `Projects a YAML or JSON feed into the flattened row sequence shown by
"feedlist view" (items, group headers and group footers) and prints it.

Only the pages loaded by the feed configuration are projected unless --all is set.`,
		Example: `  # Print every row as a table
  feedlist rows messages.yaml --all

  # Group by channel with the "ops" group collapsed, as JSON
  feedlist rows messages.yaml --group-by channel --collapse ops --output json

  # Third page of ten rows, as YAML
  feedlist rows messages.yaml --all --page 3 --page-size 10 --output yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRows(cmd, args[0], &opts)
		},
	}

	addListFlags(cmd, &opts.list)
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputTable, "output format: table, json or yaml")
	cmd.Flags().BoolVar(&opts.all, "all", false, "load every page of the feed before projecting")
	cmd.Flags().StringSliceVar(&opts.collapse, "collapse", nil, "group ids to collapse (repeatable)")
	cmd.Flags().IntVar(&opts.pages.Limit, "limit", 0, "maximum number of rows to print (0 = all)")
	cmd.Flags().IntVar(&opts.pages.Offset, "offset", 0, "number of rows to skip")
	cmd.Flags().IntVar(&opts.pages.Page, "page", 0, "1-based page of rows to print (requires --page-size)")
	cmd.Flags().IntVar(&opts.pages.PageSize, "page-size", 0, "rows per page")

	return cmd
}

func runRows(cmd *cobra.Command, path string, opts *rowsOptions) error {
	cfg := config.GetGlobalConfig()
	listCfg := cfg.List
	opts.list.apply(cmd, &listCfg)

	format := strings.ToLower(opts.output)
	if format != outputTable && format != outputJSON && format != outputYAML {
		return invalidInput(fmt.Errorf("%w: %q", ErrUnsupportedFormat, opts.output))
	}
	if err := opts.pages.Validate(); err != nil {
		return invalidInput(err)
	}
	if err := listCfg.Validate(); err != nil {
		return invalidInput(err)
	}

	items, err := feed.Load(path)
	if err != nil {
		return err
	}
	src := feed.NewSource(items, feed.Options{
		PageSize:    cfg.Feed.PageSize,
		InitialPage: cfg.Feed.InitialPage,
		Logger:      logger,
	})
	ctx := cmd.Context()
	if opts.all {
		err = loadAll(ctx, src)
	} else if cfg.Feed.PreloadPages > 0 {
		err = src.Preload(ctx, cfg.Feed.PreloadPages)
	}
	if err != nil {
		return fmt.Errorf("loading feed pages: %w", err)
	}

	store := expansion.New(listCfg.GroupsInitiallyExpanded)
	for _, id := range opts.collapse {
		store.Toggle(id, false)
	}
	projectOpts, err := listCfg.ProjectOptions(store)
	if err != nil {
		return invalidInput(err)
	}

	seq := rows.Project(src.Items(), projectOpts)
	records := RowRecords(seq, listCfg.TextField)
	logger.Debug().Ctx(ctx).
		Int("items", len(src.Items())).
		Int("rows", len(records)).
		Msg("projected feed")

	out := RowsOutput{
		Rows: pagination.Apply(opts.pages, records),
		Feed: src.Meta(),
	}
	if opts.pages.IsEnabled() {
		meta := pagination.NewMeta(opts.pages, len(records))
		out.Pagination = &meta
	}

	w := cmd.OutOrStdout()
	switch format {
	case outputJSON:
		return renderRowsJSON(w, out)
	case outputYAML:
		return renderRowsYAML(w, out)
	default:
		return renderRowsTable(w, out)
	}
}

// loadAll fetches pages in both directions until the source is exhausted.
func loadAll(ctx context.Context, src *feed.Source) error {
	for src.PageInfo().HasPrevPage {
		if err := src.FetchPrev(ctx); err != nil {
			return err
		}
	}
	for src.PageInfo().HasNextPage {
		if err := src.FetchNext(ctx); err != nil {
			return err
		}
	}
	return nil
}

// RowRecords converts a sequence into output records. textField selects the
// item text as in the default renderer.
func RowRecords(seq *rows.Sequence, textField string) []RowRecord {
	records := make([]RowRecord, 0, seq.Len())
	for i := range seq.Len() {
		rec := RowRecord{Index: i, Kind: seq.At(i).Kind().String(), Key: seq.At(i).Key()}
		switch r := seq.At(i).(type) {
		case rows.ItemRow:
			rec.Item = r.Item
			rec.Text = dispatch.ItemText(r.Item, r.ItemKey, textField)
			if r.Grouped {
				rec.Group = r.GroupID
			}
		case rows.SectionHeaderRow:
			rec.Group = r.GroupID
			rec.Text = dispatch.GroupTitle(r.GroupID)
			rec.Count = len(r.Items)
		case rows.SectionFooterRow:
			rec.Group = r.GroupID
			rec.Count = len(r.Items)
		}
		records = append(records, rec)
	}
	return records
}

func renderRowsJSON(w io.Writer, out RowsOutput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func renderRowsYAML(w io.Writer, out RowsOutput) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2) //nolint:mnd // Conventional YAML indentation.
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

func renderRowsTable(w io.Writer, out RowsOutput) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(tw, "Index\tKind\tKey\tGroup\tText")
	fmt.Fprintln(tw, "-----\t----\t---\t-----\t----")
	for _, rec := range out.Rows {
		group := ""
		if rec.Group != nil {
			group = fmt.Sprint(rec.Group)
		}
		text := rec.Text
		if rec.Kind != rows.KindItem.String() {
			text = strings.TrimSpace(text + " (" + dispatch.CountLabel(rec.Count) + ")")
		}
		fmt.Fprintf(tw, "%d\t%s\t%v\t%s\t%s\n", rec.Index, rec.Kind, rec.Key, group, text)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if p := out.Pagination; p != nil {
		_, err := fmt.Fprintf(w, "\nPage %d of %d (%d rows)\n", p.CurrentPage, p.TotalPages, p.TotalItems)
		return err
	}
	return nil
}
