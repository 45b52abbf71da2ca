// Package pagination windows command output.
//
// Two mutually exclusive modes are supported:
//   - Offset-based: --limit and --offset
//   - Page-based: --page and --page-size
//
// Meta describes the window that was applied so JSON and YAML output can
// carry it next to the rows.
package pagination
