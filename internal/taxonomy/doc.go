// Package taxonomy keeps the work-log schema free of duplicate and
// near-duplicate tags.
//
// Key pieces:
//   - Normalize: canonicalizes free text before it reaches a collection
//   - FindSimilar: exact, containment, and bounded edit-distance matching
//   - Add / Remove: pure schema mutations over a domain.Target
//   - Flow: the confirm step that suspends an add when a similar item exists
//
// Nothing in this package performs I/O or holds shared state.
package taxonomy
