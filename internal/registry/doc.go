// Package registry holds host-wide registries shared between list instances.
//
//   - APIs: named imperative component operations such as "feed.scrollToBottom"
//   - Subscriptions: reference-counted shared resources, started by the first
//     subscriber and stopped by the last
//
// Both registries are safe for concurrent use.
package registry
