// Package feed serves items from a YAML or JSON file one page at a time.
//
// A Source holds the whole file in memory but exposes only the loaded window,
// which grows a page at a time at either end through FetchPrev and FetchNext.
// A Watcher reloads the file when it changes on disk; watchers for the same
// path are shared through a registry.Subscriptions.
package feed
