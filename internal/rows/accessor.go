package rows

import (
	"reflect"
	"strings"
)

// DefaultKeyField is the field used as item identity when none is configured.
const DefaultKeyField = "id"

// Accessor extracts a value from an item. It returns nil when the value is absent.
type Accessor func(item any) any

// Field returns an Accessor resolving a dotted path such as "author.name".
// Each segment is looked up in maps with string keys, or in struct fields by
// name, json tag or yaml tag (case-insensitive). Pointers and interfaces are
// followed. Any miss along the path yields nil.
func Field(path string) Accessor {
	if path == "" {
		return func(any) any { return nil }
	}
	segments := strings.Split(path, ".")
	return func(item any) any {
		return lookupPath(item, segments)
	}
}

// Lookup resolves a dotted path on item. It is Field(path)(item) without the closure.
func Lookup(item any, path string) any {
	if path == "" {
		return nil
	}
	return lookupPath(item, strings.Split(path, "."))
}

func lookupPath(item any, segments []string) any {
	cur := item
	for _, seg := range segments {
		next, ok := lookupSegment(cur, seg)
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

func lookupSegment(v any, name string) (any, bool) {
	if name == "" {
		return nil, false
	}
	switch m := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		val, ok := m[name]
		return val, ok
	case map[string]string:
		val, ok := m[name]
		return val, ok
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() { //nolint:exhaustive // Only maps and structs have named members.
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		val := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !val.IsValid() {
			return nil, false
		}
		return val.Interface(), true
	case reflect.Struct:
		return structField(rv, name)
	default:
		return nil, false
	}
}

func structField(rv reflect.Value, name string) (any, bool) {
	t := rv.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if strings.EqualFold(sf.Name, name) ||
			tagName(sf.Tag.Get("json")) == name ||
			tagName(sf.Tag.Get("yaml")) == name {
			return rv.Field(i).Interface(), true
		}
	}
	return nil, false
}

func tagName(tag string) string {
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}
