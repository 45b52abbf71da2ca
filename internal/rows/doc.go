// Package rows turns caller-supplied items into the flat row sequence a list renders.
//
// The projector is a pure function of (items, options, expansion state):
//   - Stable multi-key ordering over dotted-path fields
//   - Limit applied to the ordered items before grouping
//   - Grouping with explicit default groups and an optional ordering hint
//   - Collapsed groups contribute only their header row
//   - Empty groups can be dropped before the sequence reaches the window
//
// Malformed items never cause an error: a missing key, group or order field
// resolves to nil and is handled like any other value.
package rows
