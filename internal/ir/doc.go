// Package ir provides the serializable intermediate representation of a
// compiled protobuf schema.
//
// This package contains type definitions, their JSON encoding and the
// invariant checks only. All other internal packages import ir; ir imports
// nothing internal.
//
// Key design constraints:
//   - Every sequence in a ProtoSpec is sorted by fullname (byte order) so
//     backends can emit deterministic output without re-sorting
//   - Type and Field are sealed unions; the JSON shape of each variant is the
//     boundary contract consumed by every renderer
//   - IR values are immutable once built; no stage mutates them
//   - comments always encode as an array, never null
package ir
