// Package playback sequences stories grouped by author for one open viewer.
//
// A Controller owns one viewer session. All of its state lives on a single
// Loop goroutine: raw input, timer completions, preload results and deletion
// reconciliation are posted to the loop as tasks and applied one at a time,
// so a cursor transition always finishes before the next input is seen.
//
// Navigation (navigator.go) and gesture classification (gesture.go) are pure
// and synchronous. The ProgressTimer and Preloader hand their asynchronous
// results back to the loop; stale timer completions are filtered by
// generation.
package playback
