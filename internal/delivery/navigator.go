// Package delivery implements lesson navigation for a delivery session:
// resolving navigation targets against the sequence, tracking the
// current screen and its layer lineage, and recording visits in both
// the scripting environment and the persistent history store.
package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/courseforge/adaptivity/internal/bus"
	"github.com/courseforge/adaptivity/internal/ctxlog"
	"github.com/courseforge/adaptivity/internal/hierarchy"
	"github.com/courseforge/adaptivity/internal/history"
	"github.com/courseforge/adaptivity/internal/model"
	"github.com/courseforge/adaptivity/internal/scripting"
)

// NextTarget is the relative navigation target meaning "the screen
// after the current one in flattened order".
const NextTarget = "next"

// ErrEndOfLesson is returned when a "next" navigation runs past the
// last navigable screen.
var ErrEndOfLesson = fmt.Errorf("delivery: no screen after the current one")

// Navigator resolves navigation targets for one delivery session.
// history may be nil when the session should not persist visits.
type Navigator struct {
	lesson    *model.Lesson
	env       *scripting.Env
	history   *history.Store
	events    *bus.Bus
	currentID string
}

// NewNavigator creates a navigator positioned before the first screen.
func NewNavigator(lesson *model.Lesson, env *scripting.Env, hist *history.Store, events *bus.Bus) *Navigator {
	return &Navigator{lesson: lesson, env: env, history: hist, events: events}
}

// Current returns the sequence entry being delivered, or nil before the
// first navigation.
func (n *Navigator) Current() *model.SequenceEntry {
	if n.currentID == "" {
		return nil
	}
	return n.lesson.EntryBySequenceID(n.currentID)
}

// CurrentTree returns the activities of the current entry's lineage,
// root layer first and the current screen last. Lineage entries without
// a backing activity are skipped.
func (n *Navigator) CurrentTree() []*model.Activity {
	if n.currentID == "" {
		return nil
	}
	lineage := hierarchy.Lineage(n.lesson.Sequence(), n.currentID)
	tree := make([]*model.Activity, 0, len(lineage))
	for _, entry := range lineage {
		if activity := n.lesson.ActivityByResourceID(entry.ResourceID); activity != nil {
			tree = append(tree, activity)
		}
	}
	return tree
}

// Start navigates to the first navigable screen of the lesson.
func (n *Navigator) Start(ctx context.Context) (*model.SequenceEntry, error) {
	for _, entry := range hierarchy.Flatten(hierarchy.Build(n.lesson.Sequence())) {
		if navigable(entry) {
			return n.NavigateTo(ctx, entry.Custom.SequenceID)
		}
	}
	return nil, ErrEndOfLesson
}

// NavigateTo moves the session to the given target: either a sequence
// id or the relative target "next". The visit is timestamped in the
// scripting environment and, when a history store is attached, recorded
// there as well.
func (n *Navigator) NavigateTo(ctx context.Context, target string) (*model.SequenceEntry, error) {
	logger := ctxlog.FromContext(ctx)

	var entry *model.SequenceEntry
	if target == NextTarget {
		next, err := n.nextEntry()
		if err != nil {
			return nil, err
		}
		entry = next
	} else {
		entry = n.lesson.EntryBySequenceID(target)
		if entry == nil {
			return nil, fmt.Errorf("%w: navigation target %q", hierarchy.ErrNotFound, target)
		}
	}

	now := time.Now()
	n.currentID = entry.Custom.SequenceID
	n.env.MarkVisit(entry.Custom.SequenceID, now)
	if n.history != nil {
		if err := n.history.AddVisit(entry.Custom.SequenceID, now); err != nil {
			logger.Warn("Failed to persist visit.", "sequenceId", entry.Custom.SequenceID, "error", err)
		}
	}

	logger.Debug("Navigated.", "sequenceId", entry.Custom.SequenceID, "name", entry.Custom.SequenceName)
	if n.events != nil {
		n.events.Publish(bus.Event{Name: bus.EventNavigated, Payload: entry.Custom.SequenceID})
	}
	return entry, nil
}

// nextEntry finds the first navigable screen after the current one in
// the flattened tree order. Before any navigation "next" resolves to
// the first navigable screen.
func (n *Navigator) nextEntry() (*model.SequenceEntry, error) {
	flat := hierarchy.Flatten(hierarchy.Build(n.lesson.Sequence()))
	passed := n.currentID == ""
	for i := range flat {
		if passed && navigable(flat[i]) {
			return n.lesson.EntryBySequenceID(flat[i].Custom.SequenceID), nil
		}
		if flat[i].Custom.SequenceID == n.currentID {
			passed = true
		}
	}
	return nil, ErrEndOfLesson
}

// navigable reports whether an entry is a deliverable screen. Layers
// and question banks structure the sequence but are never delivered
// directly.
func navigable(e model.SequenceEntry) bool {
	return !e.Custom.IsLayer && !e.Custom.IsBank
}
