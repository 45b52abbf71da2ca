package rows

import (
	"cmp"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"
)

// Sort directions.
const (
	DirectionAsc  = "asc"
	DirectionDesc = "desc"
)

// orderPartsMax is the maximum number of colon-separated parts in one order term.
const orderPartsMax = 2

// Common ordering errors.
var (
	ErrEmptyOrderExpression = errors.New("empty order expression")
	ErrInvalidDirection     = errors.New("order direction must be 'asc' or 'desc'")
)

// OrderKey is one (field, direction) pair of an ordering configuration.
type OrderKey struct {
	Field     string `json:"field"     yaml:"field"`
	Direction string `json:"direction" yaml:"direction"`
}

// Descending reports whether the key sorts high to low.
func (k OrderKey) Descending() bool {
	return strings.EqualFold(k.Direction, DirectionDesc)
}

// ParseOrder parses a comma-separated order expression such as "v:asc,author.name:desc".
// A term without a direction sorts ascending. An empty expression yields no keys.
func ParseOrder(expr string) ([]OrderKey, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}

	terms := strings.Split(expr, ",")
	keys := make([]OrderKey, 0, len(terms))
	for _, term := range terms {
		key, err := parseOrderTerm(term)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func parseOrderTerm(term string) (OrderKey, error) {
	if strings.TrimSpace(term) == "" {
		return OrderKey{}, ErrEmptyOrderExpression
	}

	parts := strings.Split(term, ":")
	if len(parts) > orderPartsMax {
		return OrderKey{}, fmt.Errorf("invalid format: too many colons in %q", term)
	}

	field := strings.TrimSpace(parts[0])
	if field == "" {
		return OrderKey{}, ErrEmptyOrderExpression
	}

	direction := DirectionAsc
	if len(parts) == orderPartsMax {
		direction = strings.ToLower(strings.TrimSpace(parts[1]))
	}
	if direction != DirectionAsc && direction != DirectionDesc {
		return OrderKey{}, fmt.Errorf("%w: got %q", ErrInvalidDirection, direction)
	}

	return OrderKey{Field: field, Direction: direction}, nil
}

// SortItems returns a stably sorted copy of items. Earlier keys dominate ties.
// The input slice is not modified.
func SortItems(items []any, keys []OrderKey) []any {
	sorted := slices.Clone(items)
	if len(keys) == 0 {
		return sorted
	}

	accessors := make([]Accessor, len(keys))
	for i, k := range keys {
		accessors[i] = Field(k.Field)
	}

	slices.SortStableFunc(sorted, func(a, b any) int {
		for i, k := range keys {
			c := CompareValues(accessors[i](a), accessors[i](b))
			if k.Descending() {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
	return sorted
}

// value ranks used when two values have different kinds.
const (
	rankBool = iota
	rankNumber
	rankString
	rankTime
	rankOther
	rankNil
)

// CompareValues orders two field values. Numbers compare numerically across
// int, uint and float kinds, strings lexically, bools false before true and
// times chronologically. nil sorts after every other value. Values of
// different kinds compare by kind rank; unknown kinds compare by their
// formatted text so the result is always deterministic.
func CompareValues(a, b any) int {
	ra, rb := valueRank(a), valueRank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}

	switch ra {
	case rankNil:
		return 0
	case rankBool:
		return compareBool(reflect.ValueOf(a).Bool(), reflect.ValueOf(b).Bool())
	case rankNumber:
		return compareNumbers(reflect.ValueOf(a), reflect.ValueOf(b))
	case rankString:
		return strings.Compare(reflect.ValueOf(a).String(), reflect.ValueOf(b).String())
	case rankTime:
		return a.(time.Time).Compare(b.(time.Time)) //nolint:forcetypeassert // rankTime guarantees time.Time.
	default:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

func valueRank(v any) int {
	if v == nil {
		return rankNil
	}
	if _, ok := v.(time.Time); ok {
		return rankTime
	}
	switch reflect.ValueOf(v).Kind() { //nolint:exhaustive // Remaining kinds share rankOther.
	case reflect.Bool:
		return rankBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return rankNumber
	case reflect.String:
		return rankString
	default:
		return rankOther
	}
}

// compareNumbers keeps integers exact; floats take over as soon as one side is one.
func compareNumbers(a, b reflect.Value) int {
	ca, cb := numberClass(a), numberClass(b)
	switch {
	case ca == classFloat || cb == classFloat:
		return cmp.Compare(toFloat(a), toFloat(b))
	case ca == classInt && cb == classInt:
		return cmp.Compare(a.Int(), b.Int())
	case ca == classUint && cb == classUint:
		return cmp.Compare(a.Uint(), b.Uint())
	case ca == classInt:
		if a.Int() < 0 {
			return -1
		}
		return cmp.Compare(uint64(a.Int()), b.Uint())
	default:
		if b.Int() < 0 {
			return 1
		}
		return cmp.Compare(a.Uint(), uint64(b.Int()))
	}
}

// number classes.
const (
	classInt = iota
	classUint
	classFloat
)

func numberClass(rv reflect.Value) int {
	switch rv.Kind() { //nolint:exhaustive // Only numeric kinds reach here.
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return classInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return classUint
	default:
		return classFloat
	}
}

func toFloat(rv reflect.Value) float64 {
	switch rv.Kind() { //nolint:exhaustive // Only numeric kinds reach here.
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	default:
		return rv.Float()
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
