package hierarchy

import (
	"github.com/courseforge/adaptivity/internal/model"
)

// Item is one node of the derived tree: a sequence entry plus its
// ordered children.
type Item struct {
	model.SequenceEntry
	Children []*Item
}

// Build groups a flat sequence list into a tree by layerRef. Entries
// with an empty layerRef become roots; a node's children are the
// entries whose layerRef equals its sequenceId, in flat-list order.
// Entries whose layerRef points at a missing entry are kept as roots so
// that no entry is ever silently dropped from the projection.
func Build(entries []model.SequenceEntry) []*Item {
	items := make([]*Item, len(entries))
	byID := make(map[string]*Item, len(entries))
	for i := range entries {
		item := &Item{SequenceEntry: entries[i]}
		items[i] = item
		byID[item.Custom.SequenceID] = item
	}

	var roots []*Item
	for _, item := range items {
		ref := item.Custom.LayerRef
		if ref == "" {
			roots = append(roots, item)
			continue
		}
		parent, ok := byID[ref]
		if !ok || parent == item {
			roots = append(roots, item)
			continue
		}
		parent.Children = append(parent.Children, item)
	}
	return roots
}

// Find performs a depth-first search of the tree for the entry with the
// given sequenceId. Returns nil when no such entry exists.
func Find(items []*Item, sequenceID string) *Item {
	for _, item := range items {
		if item.Custom.SequenceID == sequenceID {
			return item
		}
		if found := Find(item.Children, sequenceID); found != nil {
			return found
		}
	}
	return nil
}

// Flatten emits the tree in pre-order as a flat sequence list. Each
// entry's own fields are untouched; only the derived Children are
// stripped. Flatten(Build(L)) reproduces L's entries grouped pre-order
// by parent.
func Flatten(items []*Item) []model.SequenceEntry {
	var out []model.SequenceEntry
	for _, item := range items {
		out = append(out, item.SequenceEntry)
		out = append(out, Flatten(item.Children)...)
	}
	return out
}

// Lineage returns the chain of entries from the root down to (and
// including) the entry with the given sequenceId, walking layerRef
// pointers on the flat list. A broken or cyclic pointer chain ends the
// walk rather than looping.
func Lineage(entries []model.SequenceEntry, sequenceID string) []model.SequenceEntry {
	byID := make(map[string]*model.SequenceEntry, len(entries))
	for i := range entries {
		byID[entries[i].Custom.SequenceID] = &entries[i]
	}

	var lineage []model.SequenceEntry
	seen := make(map[string]bool)
	for id := sequenceID; id != "" && !seen[id]; {
		seen[id] = true
		entry, ok := byID[id]
		if !ok {
			break
		}
		lineage = append([]model.SequenceEntry{*entry}, lineage...)
		id = entry.Custom.LayerRef
	}
	return lineage
}

// Descendants returns the pre-order flattening of the subtree below the
// entry with the given sequenceId, not including the entry itself.
func Descendants(items []*Item, sequenceID string) []model.SequenceEntry {
	item := Find(items, sequenceID)
	if item == nil {
		return nil
	}
	return Flatten(item.Children)
}
