// Package partreg is the static registry of part-type capabilities.
//
// The authoring runtime used to probe part web components at runtime
// for optional methods. Here every part type is registered up front
// with an explicit Definition, so capability lookups are plain map
// reads and the validator set can be resolved without any runtime
// duck-typing.
package partreg
