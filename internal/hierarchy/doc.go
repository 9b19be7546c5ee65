// Package hierarchy provides a thread-safe, in-memory index of inheritance
// edges between classes, keyed by qualified class name.
//
// Edges are stored in both directions: every class points at its declared
// base, and every base keeps the set of its direct derived classes. Edges
// are keyed by name rather than by class handle, so a class can point at a
// base that has not been registered yet; when that base appears, the
// reverse edge is already in place for invalidation walks.
//
// The graph does not reject cycles. A cyclic base chain is a configuration
// error that the registry reports when it aggregates a class; the walks in
// this package only guarantee that they terminate.
package hierarchy
