// Package ast wraps the IR and the scope tree in a closed set of node kinds
// that the traversal engine walks.
//
// Every node computes its ordered children on demand through Children; no
// node caches them. Message fields, package members and service methods
// are ordered by name (byte order, stable), so backends render
// deterministically regardless of declaration order.
//
// Each kind also has a fixed table of named child accessors (see Field and
// FieldList) built once at package initialization.
package ast
