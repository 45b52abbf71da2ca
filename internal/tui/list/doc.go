// Package list provides the virtualized window over a flat row sequence.
//
// The window tracks only counts and offsets; it never sees row content. Key features:
//   - O(viewport height) rendering: only rows inside the viewport are drawn
//   - An overscan buffer above and below the viewport for render-cache warming
//   - Start/end aligned scroll-to-index with an extra offset, always clamped
//   - Shift-aware count changes that keep the same rows in view after a prepend
//
// One terminal line is one row, so scroll offset and size are measured in rows.
package list
