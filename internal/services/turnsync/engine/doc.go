// Package engine keeps one game's client-held snapshot in step with the
// authority and drives provisional move composition, preview and commit.
//
// One Engine serves one game id. A mutex guards the snapshot, the
// provisional move, the preview and the submission lock; authority calls
// run outside it. Timers come from an injected Clock so tests control time.
package engine
