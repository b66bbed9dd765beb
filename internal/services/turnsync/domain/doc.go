// Package domain defines the variant-neutral shapes the turnsync engine
// works on: the authoritative GameSession snapshot, the provisional Move a
// player composes against it, and the preview, legality and presentation
// values derived from both.
//
// Values in this package are immutable from the caller's point of view:
// Move operations return a new Move so a snapshot taken for a commit can
// never be changed by a later edit.
package domain
