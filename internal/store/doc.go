// Package store provides SQLite-backed storage for compiled IR snapshots.
//
// A snapshot is one compiled ProtoSpec together with the descriptor sources
// it was built from. Snapshots are content addressed: the spec hash
// (ir.SpecHash) is unique, so recording the same IR twice is a no-op that
// returns the existing snapshot.
//
// # Ordering
//
// All listings use the seq column (insertion order), never timestamps:
//
//	ORDER BY seq ASC
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// The spec column holds RFC 8785 canonical JSON (ir.MarshalCanonical).
package store
