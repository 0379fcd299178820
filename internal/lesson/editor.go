package lesson

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/courseforge/adaptivity/internal/bus"
	"github.com/courseforge/adaptivity/internal/ctxlog"
	"github.com/courseforge/adaptivity/internal/hierarchy"
	"github.com/courseforge/adaptivity/internal/model"
)

// Kind selects what AddEntry creates.
type Kind int

const (
	// Screen is a plain lesson screen.
	Screen Kind = iota
	// Layer is a nesting container for child entries.
	Layer
	// Bank is a question bank drawing child questions at delivery time.
	Bank
)

func (k Kind) label() string {
	switch k {
	case Layer:
		return "Layer"
	case Bank:
		return "Question Bank"
	default:
		return "Screen"
	}
}

// Editor performs structural edits on one lesson. All edits operate on
// the flat sequence list (the system of record), rebuilding the
// hierarchy projection per operation and flattening it back.
type Editor struct {
	lesson      *model.Lesson
	events      *bus.Bus
	currentID   string
	currentRule string
}

// NewEditor wraps a lesson for editing. events may be nil.
func NewEditor(l *model.Lesson, events *bus.Bus) *Editor {
	return &Editor{lesson: l, events: events}
}

// Lesson returns the lesson under edit.
func (e *Editor) Lesson() *model.Lesson { return e.lesson }

// Current returns the currently selected sequence entry, or nil.
func (e *Editor) Current() *model.SequenceEntry {
	if e.currentID == "" {
		return nil
	}
	return e.lesson.EntryBySequenceID(e.currentID)
}

// SetCurrent selects a sequence entry.
func (e *Editor) SetCurrent(sequenceID string) error {
	if e.lesson.EntryBySequenceID(sequenceID) == nil {
		return fmt.Errorf("%w: %q", hierarchy.ErrNotFound, sequenceID)
	}
	e.currentID = sequenceID
	return nil
}

// SetCurrentRule tracks the rule selected in the adaptivity editor; it
// is cleared when the owning entry is deleted.
func (e *Editor) SetCurrentRule(ruleID string) { e.currentRule = ruleID }

// CurrentRule returns the selected rule id, empty when none.
func (e *Editor) CurrentRule() string { return e.currentRule }

// AddEntry creates a new screen, layer, or bank together with its
// backing activity. parentID nests the new entry under an existing
// layer; empty adds at root level. In the flat list the new entry lands
// directly after the current selection when one is set, otherwise at
// the end, and becomes the current selection.
func (e *Editor) AddEntry(ctx context.Context, parentID string, kind Kind) (*model.SequenceEntry, error) {
	logger := ctxlog.FromContext(ctx)

	if parentID != "" && e.lesson.EntryBySequenceID(parentID) == nil {
		return nil, fmt.Errorf("%w: parent %q", hierarchy.ErrNotFound, parentID)
	}

	title := "New " + kind.label()
	if parentID != "" {
		title = "New Child " + kind.label()
	}

	activity := e.newActivity(title)
	entry := model.SequenceEntry{
		Type:         model.SequenceEntryType,
		ResourceID:   activity.ID,
		ActivitySlug: activity.ActivitySlug,
		Custom: model.SequenceCustom{
			SequenceID:   newSequenceID(activity.ActivitySlug),
			SequenceName: title,
			LayerRef:     parentID,
			IsLayer:      kind == Layer,
			IsBank:       kind == Bank,
		},
	}
	if kind == Bank {
		entry.Custom.BankShowCount = 3
		entry.Custom.BankEndTarget = "next"
	}

	e.lesson.Activities = append(e.lesson.Activities, *activity)
	e.insertAfterCurrent(entry)
	e.currentID = entry.Custom.SequenceID

	logger.Debug("Added sequence entry.", "sequenceId", entry.Custom.SequenceID, "kind", kind.label())
	e.publishChange()
	return e.lesson.EntryBySequenceID(entry.Custom.SequenceID), nil
}

// Clone duplicates an entry and its backing activity. The copy keeps
// the source's custom settings (including its parent), gets a fresh
// sequence id, and is titled "Copy of <name>". Children are not cloned.
func (e *Editor) Clone(ctx context.Context, sequenceID string) (*model.SequenceEntry, error) {
	logger := ctxlog.FromContext(ctx)

	source := e.lesson.EntryBySequenceID(sequenceID)
	if source == nil {
		logger.Warn("Item not cloned, not found in sequence.", "sequenceId", sequenceID)
		return nil, fmt.Errorf("%w: %q", hierarchy.ErrNotFound, sequenceID)
	}
	sourceActivity := e.lesson.ActivityByResourceID(source.ResourceID)
	if sourceActivity == nil {
		logger.Warn("Item not cloned, activity missing.", "sequenceId", sequenceID)
		return nil, fmt.Errorf("%w: activity %d", hierarchy.ErrNotFound, source.ResourceID)
	}

	title := "Copy of " + source.Custom.SequenceName
	copied, err := copyActivity(sourceActivity)
	if err != nil {
		return nil, fmt.Errorf("clone %q: %w", sequenceID, err)
	}
	copied.ID = e.nextResourceID()
	copied.ResourceID = copied.ID
	copied.ActivitySlug = newActivitySlug()
	copied.Title = title

	entry := *source
	entry.ResourceID = copied.ID
	entry.ActivitySlug = copied.ActivitySlug
	entry.Custom.SequenceID = newSequenceID(copied.ActivitySlug)
	entry.Custom.SequenceName = title

	e.lesson.Activities = append(e.lesson.Activities, *copied)
	e.insertAfter(entry, sequenceID)

	logger.Debug("Cloned sequence entry.", "source", sequenceID, "clone", entry.Custom.SequenceID)
	e.publishChange()
	return e.lesson.EntryBySequenceID(entry.Custom.SequenceID), nil
}

// Rename updates both the entry's display name and the owning
// activity's title. An empty (or whitespace-only) name, or a name equal
// to the current one, is a no-op.
func (e *Editor) Rename(ctx context.Context, sequenceID, name string) error {
	logger := ctxlog.FromContext(ctx)

	if strings.TrimSpace(name) == "" {
		return nil
	}
	entry := e.lesson.EntryBySequenceID(sequenceID)
	if entry == nil {
		logger.Warn("Item not renamed, not found in sequence.", "sequenceId", sequenceID)
		return fmt.Errorf("%w: %q", hierarchy.ErrNotFound, sequenceID)
	}
	if entry.Custom.SequenceName == name {
		return nil
	}
	entry.Custom.SequenceName = name
	if activity := e.lesson.ActivityByResourceID(entry.ResourceID); activity != nil {
		activity.Title = name
	}
	e.publishChange()
	return nil
}

// ConvertToLayer toggles an entry between plain screen and layer.
func (e *Editor) ConvertToLayer(ctx context.Context, sequenceID string) error {
	logger := ctxlog.FromContext(ctx)
	entry := e.lesson.EntryBySequenceID(sequenceID)
	if entry == nil {
		logger.Warn("Item not converted, not found in sequence.", "sequenceId", sequenceID)
		return fmt.Errorf("%w: %q", hierarchy.ErrNotFound, sequenceID)
	}
	entry.Custom.IsLayer = !entry.Custom.IsLayer
	e.publishChange()
	return nil
}

// Delete removes an entry and, cascading, its full subtree from the
// flat list. When the deleted entry (or any descendant) was the current
// selection, the selection and current-rule state are cleared. Returns
// the number of entries removed.
func (e *Editor) Delete(ctx context.Context, sequenceID string) (int, error) {
	logger := ctxlog.FromContext(ctx)

	tree := hierarchy.Build(e.lesson.Sequence())
	item := hierarchy.Find(tree, sequenceID)
	if item == nil {
		logger.Warn("Item not deleted, not found in sequence.", "sequenceId", sequenceID)
		return 0, fmt.Errorf("%w: %q", hierarchy.ErrNotFound, sequenceID)
	}

	doomed := map[string]bool{sequenceID: true}
	for _, entry := range hierarchy.Flatten(item.Children) {
		doomed[entry.Custom.SequenceID] = true
	}

	kept := e.lesson.Group.Children[:0:0]
	removed := 0
	for _, entry := range e.lesson.Group.Children {
		if doomed[entry.Custom.SequenceID] {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	e.lesson.Group.Children = kept

	if doomed[e.currentID] {
		e.currentID = ""
		e.currentRule = ""
	}

	logger.Debug("Deleted sequence entries.", "root", sequenceID, "removed", removed)
	e.publishChange()
	return removed, nil
}

// Move relocates an entry (with its subtree) under a new parent at the
// given index, then writes the flattened result back to the flat list.
func (e *Editor) Move(ctx context.Context, itemID, targetParentID string, targetIndex int) error {
	tree := hierarchy.Build(e.lesson.Sequence())
	tree, err := hierarchy.MoveItem(tree, itemID, targetParentID, targetIndex)
	if err != nil {
		return err
	}
	e.lesson.Group.Children = hierarchy.Flatten(tree)
	e.publishChange()
	return nil
}

// Reorder applies an up/down/in/out operation to an entry and writes
// the flattened result back to the flat list.
func (e *Editor) Reorder(ctx context.Context, itemID string, dir hierarchy.Direction) error {
	tree := hierarchy.Build(e.lesson.Sequence())
	tree, err := hierarchy.Reorder(tree, itemID, dir)
	if err != nil {
		return err
	}
	e.lesson.Group.Children = hierarchy.Flatten(tree)
	e.publishChange()
	return nil
}

func (e *Editor) publishChange() {
	if e.events != nil {
		e.events.Publish(bus.Event{Name: bus.EventSequenceChanged, Payload: len(e.lesson.Group.Children)})
	}
}

func (e *Editor) insertAfterCurrent(entry model.SequenceEntry) {
	e.insertAfter(entry, e.currentID)
}

// insertAfter places the entry directly after the sibling with the
// given sequence id, falling back to appending at the end.
func (e *Editor) insertAfter(entry model.SequenceEntry, siblingID string) {
	children := e.lesson.Group.Children
	if siblingID != "" {
		for i := range children {
			if children[i].Custom.SequenceID == siblingID {
				children = append(children[:i+1:i+1], append([]model.SequenceEntry{entry}, children[i+1:]...)...)
				e.lesson.Group.Children = children
				return
			}
		}
	}
	e.lesson.Group.Children = append(children, entry)
}

func (e *Editor) newActivity(title string) *model.Activity {
	id := e.nextResourceID()
	return &model.Activity{
		ID:           id,
		ResourceID:   id,
		ActivitySlug: newActivitySlug(),
		Title:        title,
		Content:      &model.ActivityContent{PartsLayout: []model.Part{}},
		Authoring:    &model.ActivityAuthoring{Rules: []model.Rule{}},
	}
}

func (e *Editor) nextResourceID() int {
	next := 1
	for i := range e.lesson.Activities {
		if e.lesson.Activities[i].ID >= next {
			next = e.lesson.Activities[i].ID + 1
		}
	}
	return next
}

func copyActivity(a *model.Activity) (*model.Activity, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	var out model.Activity
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func newActivitySlug() string {
	return "activity_" + strings.Split(uuid.NewString(), "-")[0]
}

func newSequenceID(slug string) string {
	return slug + "_" + uuid.NewString()
}
