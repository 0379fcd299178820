// SPDX-License-Identifier: MIT
//
// Package diagnostics runs a fixed battery of independent validators
// over every activity in a lesson and assembles structured, per-activity
// problem reports for the authoring UI.
//
// Validators are pure functions over the activity content, the full
// sequence list, and a deduplicated pool of known ids (every part id
// across all activities, plus ever-apps and lesson variable names).
// They return zero or more findings and never fail just because
// optional data is absent; only a completely missing required
// collaborator (no sequence, no parts layout) is an error, which aborts
// the whole diagnostic pass for that activity.
//
// Reports are ephemeral: every pass produces fresh problem objects and
// nothing here mutates the lesson. Suggested fixes are advisory text.
package diagnostics
