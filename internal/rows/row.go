package rows

import (
	"fmt"
	"math"
	"reflect"
)

// Kind identifies the variant of a Row.
type Kind int

// Row kinds.
const (
	KindItem Kind = iota
	KindSectionHeader
	KindSectionFooter
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindSectionHeader:
		return "header"
	case KindSectionFooter:
		return "footer"
	default:
		return "unknown"
	}
}

// Row is one renderable unit of the flattened list.
// The set of implementations is closed: ItemRow, SectionHeaderRow and SectionFooterRow.
type Row interface {
	// Key is the render identity: the item key for item rows, the group id for section rows.
	Key() any
	// Kind reports the variant.
	Kind() Kind

	sealed()
}

// ItemRow wraps a caller item.
type ItemRow struct {
	Item any
	// ItemKey is the normalised identity key of Item.
	ItemKey any
	// GroupID is the group the item belongs to. Only meaningful when Grouped is true.
	GroupID any
	Grouped bool
}

// SectionHeaderRow opens a group.
type SectionHeaderRow struct {
	GroupID any
	// Items are the group's items after ordering and limiting, even when the group is collapsed.
	Items []any
}

// SectionFooterRow closes an expanded group.
type SectionFooterRow struct {
	GroupID any
	Items   []any
}

func (r ItemRow) Key() any { return r.ItemKey }

func (r ItemRow) Kind() Kind { return KindItem }

func (ItemRow) sealed() {}

func (r SectionHeaderRow) Key() any { return r.GroupID }

func (r SectionHeaderRow) Kind() Kind { return KindSectionHeader }

func (SectionHeaderRow) sealed() {}

func (r SectionFooterRow) Key() any { return r.GroupID }

func (r SectionFooterRow) Kind() Kind { return KindSectionFooter }

func (SectionFooterRow) sealed() {}

// Sequence is one projection result. Each call to Project returns a new
// Sequence, so pointer identity tells two projections apart.
type Sequence struct {
	Rows []Row
}

// Len returns the number of rows, treating a nil sequence as empty.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}

// At returns the row at index i, or nil when i is out of range.
func (s *Sequence) At(i int) Row {
	if s == nil || i < 0 || i >= len(s.Rows) {
		return nil
	}
	return s.Rows[i]
}

// First returns the first row, or nil for an empty sequence.
func (s *Sequence) First() Row {
	return s.At(0)
}

// IndexOfItem returns the index of the item row whose identity key equals key, or -1.
// Section rows are skipped.
func (s *Sequence) IndexOfItem(key any) int {
	if s == nil {
		return -1
	}
	want := NormalizeKey(key)
	for i, r := range s.Rows {
		if ir, ok := r.(ItemRow); ok && ir.ItemKey == want {
			return i
		}
	}
	return -1
}

// NaNKey replaces NaN keys, which never equal themselves, so that all NaN
// values share one group.
type NaNKey struct{}

// String implements fmt.Stringer.
func (NaNKey) String() string { return "NaN" }

// NormalizeKey makes v usable as a map key and with ==.
// Comparable values are returned unchanged, NaN becomes NaNKey and anything
// else is formatted with fmt.
func NormalizeKey(v any) any {
	if v == nil {
		return nil
	}
	if reflect.TypeOf(v).Comparable() {
		rv := reflect.ValueOf(v)
		if isNaN(rv) {
			return NaNKey{}
		}
		// Interface-typed struct fields can still hold non-comparable values.
		if rv.Kind() != reflect.Struct && rv.Kind() != reflect.Array {
			return v
		}
		if isDeepComparable(rv) {
			return v
		}
	}
	return fmt.Sprint(v)
}

func isDeepComparable(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Struct:
		for i := range rv.NumField() {
			if !isDeepComparable(rv.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Array:
		for i := range rv.Len() {
			if !isDeepComparable(rv.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return rv.Elem().Type().Comparable() && isDeepComparable(rv.Elem())
	case reflect.Slice, reflect.Map, reflect.Func:
		return false
	default:
		return !isNaN(rv)
	}
}

func isNaN(rv reflect.Value) bool {
	switch rv.Kind() { //nolint:exhaustive // Only float kinds can hold NaN.
	case reflect.Float32, reflect.Float64:
		return math.IsNaN(rv.Float())
	case reflect.Complex64, reflect.Complex128:
		c := rv.Complex()
		return math.IsNaN(real(c)) || math.IsNaN(imag(c))
	default:
		return false
	}
}
