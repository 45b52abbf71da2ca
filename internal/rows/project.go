package rows

import "slices"

// Expansion answers whether a group is expanded.
// expansion.Store implements it; a nil Expansion falls back to Options.GroupsInitiallyExpanded.
type Expansion interface {
	IsExpanded(groupID any) bool
}

// Options configures one projection.
type Options struct {
	// KeyField is the dotted path of the identity key. Empty means DefaultKeyField.
	KeyField string
	// Limit truncates the ordered items before grouping. Zero or negative means no limit.
	Limit int
	// GroupBy is the dotted path of the grouping field. Empty disables grouping.
	GroupBy string
	OrderBy []OrderKey
	// DefaultGroups are always emitted first, in this order, even without items.
	DefaultGroups []any
	// AvailableGroups, when set, orders every group by its position in this list.
	// Groups absent from it keep their relative order after the listed ones.
	AvailableGroups []any
	// HideEmptyGroups drops the header and footer of groups with no items.
	HideEmptyGroups         bool
	GroupsInitiallyExpanded bool
	Expansion               Expansion
}

func (o Options) keyAccessor() Accessor {
	if o.KeyField == "" {
		return Field(DefaultKeyField)
	}
	return Field(o.KeyField)
}

func (o Options) isExpanded(groupID any) bool {
	if o.Expansion == nil {
		return o.GroupsInitiallyExpanded
	}
	return o.Expansion.IsExpanded(groupID)
}

// Project derives the flat row sequence. It never panics on malformed items and
// never mutates items. Two calls with equal inputs yield structurally equal sequences.
func Project(items []any, opts Options) *Sequence {
	ordered := SortItems(items, opts.OrderBy)
	if opts.Limit > 0 && len(ordered) > opts.Limit {
		ordered = ordered[:opts.Limit]
	}

	keyOf := opts.keyAccessor()

	if opts.GroupBy == "" {
		out := make([]Row, 0, len(ordered))
		for _, item := range ordered {
			out = append(out, ItemRow{Item: item, ItemKey: NormalizeKey(keyOf(item))})
		}
		return &Sequence{Rows: out}
	}

	groupOf := Field(opts.GroupBy)
	partition := make(map[any][]any)
	discovered := make([]any, 0)
	for _, item := range ordered {
		gid := NormalizeKey(groupOf(item))
		if _, seen := partition[gid]; !seen {
			discovered = append(discovered, gid)
		}
		partition[gid] = append(partition[gid], item)
	}

	order := groupOrder(opts.DefaultGroups, discovered, opts.AvailableGroups)

	out := make([]Row, 0, len(ordered)+2*len(order))
	for _, gid := range order {
		members := partition[gid]
		if opts.HideEmptyGroups && len(members) == 0 {
			continue
		}

		out = append(out, SectionHeaderRow{GroupID: gid, Items: members})
		if !opts.isExpanded(gid) {
			continue
		}
		for _, item := range members {
			out = append(out, ItemRow{
				Item:    item,
				ItemKey: NormalizeKey(keyOf(item)),
				GroupID: gid,
				Grouped: true,
			})
		}
		out = append(out, SectionFooterRow{GroupID: gid, Items: members})
	}

	return &Sequence{Rows: out}
}

// groupOrder unions the default groups with the discovered ones, first occurrence
// winning, then applies the optional available-groups hint as a stable re-sort.
func groupOrder(defaults, discovered, available []any) []any {
	seen := make(map[any]struct{}, len(defaults)+len(discovered))
	order := make([]any, 0, len(defaults)+len(discovered))
	for _, list := range [][]any{defaults, discovered} {
		for _, g := range list {
			gid := NormalizeKey(g)
			if _, dup := seen[gid]; dup {
				continue
			}
			seen[gid] = struct{}{}
			order = append(order, gid)
		}
	}

	if len(available) == 0 {
		return order
	}

	position := make(map[any]int, len(available))
	for i, g := range available {
		gid := NormalizeKey(g)
		if _, dup := position[gid]; !dup {
			position[gid] = i
		}
	}
	rank := func(gid any) int {
		if p, ok := position[gid]; ok {
			return p
		}
		return len(available)
	}

	slices.SortStableFunc(order, func(a, b any) int {
		return rank(a) - rank(b)
	})
	return order
}
