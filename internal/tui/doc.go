// Package tui provides the Bubble Tea models of feedlist.
//
// ListModel is the list engine: it projects items into rows, keeps the
// virtualization window in step with prepends, anchors the view, triggers
// page fetches near either edge and renders the visible rows through a
// dispatch.Dispatcher. FeedView hosts a ListModel over a feed.Source with a
// fuzzy filter and a status line.
package tui
