// Package hierarchy maintains the nested-tree projection of a lesson's
// flat, parent-pointer-addressed sequence list.
//
// The flat list is the system of record. The tree returned by Build is
// a derived, disposable view: callers rebuild it per operation, edit it
// with MoveItem or Reorder, then Flatten it back into the list that gets
// persisted. Nothing in this package ever holds on to a tree between
// operations.
package hierarchy
