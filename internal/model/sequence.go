// SPDX-License-Identifier: MIT
//
// This file defines the SequenceEntry structure, one node in the flat,
// ordered list that backs a lesson's navigation order.
package model

// SequenceEntryType is the discriminator for sequence entries. Lessons
// currently only produce activity references.
const SequenceEntryType = "activity-reference"

// SequenceCustom holds the authoring metadata of a sequence entry.
//
// SequenceID is globally unique within one lesson. LayerRef points at
// the parent entry's SequenceID; empty means the entry is a root. An
// entry must never be (transitively) its own ancestor.
type SequenceCustom struct {
	SequenceID   string `json:"sequenceId"`
	SequenceName string `json:"sequenceName"`
	LayerRef     string `json:"layerRef,omitempty"`
	IsLayer      bool   `json:"isLayer,omitempty"`
	IsBank       bool   `json:"isBank,omitempty"`

	// Question-bank settings, only meaningful when IsBank is set.
	BankShowCount int    `json:"bankShowCount,omitempty"`
	BankEndTarget string `json:"bankEndTarget,omitempty"`
}

// SequenceEntry is one screen, layer, or question bank in a lesson's
// navigation order.
type SequenceEntry struct {
	Type         string         `json:"type"`
	ResourceID   int            `json:"resourceId"`
	ActivitySlug string         `json:"activitySlug"`
	Custom       SequenceCustom `json:"custom"`
}

// IsRoot reports whether the entry sits at the top level of the lesson.
func (e *SequenceEntry) IsRoot() bool {
	return e.Custom.LayerRef == ""
}
