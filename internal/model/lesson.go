// SPDX-License-Identifier: MIT
//
// This file defines the Lesson structure, the root container for one
// authored page and everything it references.
package model

// LessonVariable is a page-level computed variable. Expressions may
// reference sibling variables by bare {name}; the scripting layer
// rewrites those to the variables namespace before evaluation.
type LessonVariable struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
}

// EverApp is a page-wide companion app whose id participates in the
// known-ids pool used by target validation.
type EverApp struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	IconURL string `json:"iconUrl,omitempty"`
}

// PageCustom holds page-level adaptivity settings.
type PageCustom struct {
	Variables []LessonVariable `json:"variables,omitempty"`
	EverApps  []EverApp        `json:"everApps,omitempty"`
}

// Page is the lesson's page record.
type Page struct {
	Title  string     `json:"title"`
	Custom PageCustom `json:"custom"`
}

// Group is the deck layout group; Children is the flat, ordered
// sequence list and the single source of truth for lesson structure.
type Group struct {
	ID       int             `json:"id,omitempty"`
	Type     string          `json:"type"`
	Layout   string          `json:"layout,omitempty"`
	Children []SequenceEntry `json:"children"`
}

// Lesson aggregates one page, its deck group, and all referenced
// activities into a single loadable unit.
type Lesson struct {
	Page       Page       `json:"page"`
	Group      Group      `json:"group"`
	Activities []Activity `json:"activities"`
}

// Sequence returns the flat sequence list.
func (l *Lesson) Sequence() []SequenceEntry {
	return l.Group.Children
}

// ActivityByResourceID returns the activity a sequence entry points at,
// or nil when no such activity exists.
func (l *Lesson) ActivityByResourceID(resourceID int) *Activity {
	for i := range l.Activities {
		if l.Activities[i].ID == resourceID {
			return &l.Activities[i]
		}
	}
	return nil
}

// EntryBySequenceID returns the sequence entry with the given id, or
// nil when absent.
func (l *Lesson) EntryBySequenceID(sequenceID string) *SequenceEntry {
	for i := range l.Group.Children {
		if l.Group.Children[i].Custom.SequenceID == sequenceID {
			return &l.Group.Children[i]
		}
	}
	return nil
}

// EntryByResourceID returns the sequence entry referencing the given
// activity resource, or nil when absent.
func (l *Lesson) EntryByResourceID(resourceID int) *SequenceEntry {
	for i := range l.Group.Children {
		if l.Group.Children[i].ResourceID == resourceID {
			return &l.Group.Children[i]
		}
	}
	return nil
}
