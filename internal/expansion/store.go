// Package expansion holds the per-group expanded/collapsed state of one list.
package expansion

import "github.com/rshade/feedlist/internal/rows"

// Store maps group ids to an explicit expansion flag.
// Groups without an entry use the default supplied at construction.
// Entries are never removed: once toggled, a group keeps its explicit value
// for the lifetime of the store.
//
// A Store is owned by a single list and is not safe for concurrent use.
type Store struct {
	initiallyExpanded bool
	explicit          map[any]bool
}

// New creates an empty store whose groups default to initiallyExpanded.
func New(initiallyExpanded bool) *Store {
	return &Store{
		initiallyExpanded: initiallyExpanded,
		explicit:          make(map[any]bool),
	}
}

// IsExpanded returns the stored value for groupID, else the default.
func (s *Store) IsExpanded(groupID any) bool {
	if v, ok := s.explicit[rows.NormalizeKey(groupID)]; ok {
		return v
	}
	return s.initiallyExpanded
}

// Toggle sets an explicit value for groupID, overriding the default permanently.
func (s *Store) Toggle(groupID any, next bool) {
	s.explicit[rows.NormalizeKey(groupID)] = next
}

// InitiallyExpanded returns the default used for groups without an entry.
func (s *Store) InitiallyExpanded() bool {
	return s.initiallyExpanded
}

// Len returns the number of groups with an explicit entry.
func (s *Store) Len() int {
	return len(s.explicit)
}
