// Package testutil provides shared lesson fixtures for tests.
package testutil

import "github.com/courseforge/adaptivity/internal/model"

// ScreenEntry builds a plain screen sequence entry.
func ScreenEntry(sequenceID, name, parent string, resourceID int) model.SequenceEntry {
	return model.SequenceEntry{
		Type:       model.SequenceEntryType,
		ResourceID: resourceID,
		Custom: model.SequenceCustom{
			SequenceID:   sequenceID,
			SequenceName: name,
			LayerRef:     parent,
		},
	}
}

// LayerEntry builds a layer sequence entry.
func LayerEntry(sequenceID, name, parent string, resourceID int) model.SequenceEntry {
	e := ScreenEntry(sequenceID, name, parent, resourceID)
	e.Custom.IsLayer = true
	return e
}

// BankEntry builds a question-bank sequence entry.
func BankEntry(sequenceID, name, parent string, resourceID int) model.SequenceEntry {
	e := ScreenEntry(sequenceID, name, parent, resourceID)
	e.Custom.IsBank = true
	e.Custom.BankShowCount = 3
	e.Custom.BankEndTarget = "next"
	return e
}

// ActivityWithParts builds an activity whose layout holds one
// janus-text-flow part per id.
func ActivityWithParts(id int, title string, partIDs ...string) model.Activity {
	parts := make([]model.Part, 0, len(partIDs))
	for _, pid := range partIDs {
		parts = append(parts, model.Part{ID: pid, Type: "janus-text-flow"})
	}
	return model.Activity{
		ID:         id,
		ResourceID: id,
		Title:      title,
		Content:    &model.ActivityContent{PartsLayout: parts},
		Authoring:  &model.ActivityAuthoring{Rules: []model.Rule{}},
	}
}

// NewLesson assembles a three-screen lesson: a root screen, a layer,
// and a child screen under the layer. Each entry has a backing activity
// with a single part named after the screen.
func NewLesson() *model.Lesson {
	return &model.Lesson{
		Page: model.Page{Title: "Test Lesson"},
		Group: model.Group{
			Type:   "group",
			Layout: "deck",
			Children: []model.SequenceEntry{
				ScreenEntry("seq-welcome", "Welcome", "", 1),
				LayerEntry("seq-layer", "Layer", "", 2),
				ScreenEntry("seq-child", "Child", "seq-layer", 3),
			},
		},
		Activities: []model.Activity{
			ActivityWithParts(1, "Welcome", "welcome_text"),
			ActivityWithParts(2, "Layer", "layer_text"),
			ActivityWithParts(3, "Child", "child_text"),
		},
	}
}
