// SPDX-License-Identifier: MIT
//
// Package model provides the Go struct representation of an adaptive
// lesson. Its core purpose is to give the rest of the engine a
// strongly-typed, in-memory view of the JSON documents the authoring
// and delivery layers exchange.
//
// # Core Concepts
//
// The model is built around a few key structures:
//
//   - Lesson: The root container for one authored page: the page record
//     itself, the deck layout group holding the ordered sequence, and
//     every activity the sequence references.
//
//   - SequenceEntry: One node of the lesson's navigation order. Entries
//     form a flat, ordered list; each carries a layerRef parent pointer
//     in its Custom block. The flat list is the system of record; the
//     nested hierarchy is always a derived view (see internal/hierarchy).
//
//   - Activity: One authored screen, with its parts layout (the widgets
//     placed on it), its init facts, and its adaptivity rules.
//
//   - Rule / Condition / Action: The adaptivity constructs. Conditions
//     are evaluated against the scripting environment; matching rules
//     fire actions such as navigation or state mutation.
//
// The JSON field names mirror the persisted lesson documents, so a
// lesson exported by the authoring tools round-trips through this model
// unchanged.
package model
