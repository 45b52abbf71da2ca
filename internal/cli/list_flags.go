package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/feedlist/internal/config"
)

// listFlags override the list section of the configuration.
type listFlags struct {
	keyField  string
	groupBy   string
	orderBy   string
	textField string
	limit     int
	hideEmpty bool
	collapsed bool
}

// addListFlags registers the projection flags shared by view and rows.
func addListFlags(cmd *cobra.Command, f *listFlags) {
	fs := cmd.Flags()
	fs.StringVar(&f.keyField, "key", "", "dotted path of the item identity field (default \"id\")")
	fs.StringVar(&f.groupBy, "group-by", "", "dotted path of the grouping field")
	fs.StringVar(&f.orderBy, "order-by", "", `comma-separated sort keys, e.g. "time:desc,id"`)
	fs.StringVar(&f.textField, "text", "", "dotted path of the field shown for items")
	fs.IntVar(&f.limit, "item-limit", 0, "keep only the first N items after ordering (0 = all)")
	fs.BoolVar(&f.hideEmpty, "hide-empty", false, "hide groups that have no items")
	fs.BoolVar(&f.collapsed, "collapsed", false, "start with every group collapsed")
}

// apply copies the flags the user set onto lc.
func (f *listFlags) apply(cmd *cobra.Command, lc *config.ListConfig) {
	fs := cmd.Flags()
	if fs.Changed("key") {
		lc.KeyField = f.keyField
	}
	if fs.Changed("group-by") {
		lc.GroupBy = f.groupBy
	}
	if fs.Changed("order-by") {
		lc.OrderBy = f.orderBy
	}
	if fs.Changed("text") {
		lc.TextField = f.textField
	}
	if fs.Changed("item-limit") {
		lc.Limit = f.limit
	}
	if fs.Changed("hide-empty") {
		lc.HideEmptyGroups = f.hideEmpty
	}
	if fs.Changed("collapsed") {
		lc.GroupsInitiallyExpanded = !f.collapsed
	}
}
