package hierarchy

import (
	"errors"
	"fmt"
)

// Sentinel errors for structural edits.
var (
	// ErrNotFound means the item (or its target parent) is not in the tree.
	ErrNotFound = errors.New("hierarchy: item not found")

	// ErrCyclicMove means the requested move would make an entry its own
	// ancestor (target parent inside the moved item's subtree).
	ErrCyclicMove = errors.New("hierarchy: move would create a cycle")
)

// Direction enumerates sibling/nesting reorder operations.
type Direction int

const (
	// Up swaps the item with its previous sibling.
	Up Direction = iota
	// Down swaps the item with its next sibling.
	Down
	// In nests the item as the last child of its previous sibling.
	In
	// Out promotes the item to be a sibling of its current parent,
	// positioned immediately after it.
	Out
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case In:
		return "in"
	case Out:
		return "out"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// MoveItem relocates the entry with itemID (together with its whole
// subtree) under targetParentID at targetIndex among its new siblings.
// An empty targetParentID moves the item to the root level. The moved
// item's layerRef is updated to the new parent's sequenceId, or cleared
// for root. The index is clamped to the valid range.
//
// The move is rejected with ErrCyclicMove when the target parent is the
// item itself or any of its descendants; the tree is left unmodified in
// every error case.
func MoveItem(items []*Item, itemID, targetParentID string, targetIndex int) ([]*Item, error) {
	item := Find(items, itemID)
	if item == nil {
		return items, fmt.Errorf("%w: %q", ErrNotFound, itemID)
	}

	if targetParentID != "" {
		if itemID == targetParentID || Find(item.Children, targetParentID) != nil {
			return items, fmt.Errorf("%w: %q into %q", ErrCyclicMove, itemID, targetParentID)
		}
		if Find(items, targetParentID) == nil {
			return items, fmt.Errorf("%w: target parent %q", ErrNotFound, targetParentID)
		}
	}

	items = removeItem(items, itemID)

	if targetParentID == "" {
		item.Custom.LayerRef = ""
		return insertAt(items, item, targetIndex), nil
	}

	parent := Find(items, targetParentID)
	item.Custom.LayerRef = parent.Custom.SequenceID
	parent.Children = insertAt(parent.Children, item, targetIndex)
	return items, nil
}

// Reorder applies one of the four sibling/nesting operations to the
// entry with itemID. Up at the first position and Down at the last are
// no-ops, as are In without a preceding sibling and Out at root level.
func Reorder(items []*Item, itemID string, dir Direction) ([]*Item, error) {
	item := Find(items, itemID)
	if item == nil {
		return items, fmt.Errorf("%w: %q", ErrNotFound, itemID)
	}

	parentID := item.Custom.LayerRef
	siblings := items
	var parent *Item
	if parentID != "" {
		parent = Find(items, parentID)
		if parent == nil {
			return items, fmt.Errorf("%w: parent %q", ErrNotFound, parentID)
		}
		siblings = parent.Children
	}
	idx := indexOf(siblings, itemID)
	if idx < 0 {
		return items, fmt.Errorf("%w: %q not among its parent's children", ErrNotFound, itemID)
	}

	switch dir {
	case Up, Down:
		newIdx := idx - 1
		if dir == Down {
			newIdx = idx + 1
		}
		if newIdx < 0 || newIdx >= len(siblings) || newIdx == idx {
			return items, nil
		}
		siblings[idx], siblings[newIdx] = siblings[newIdx], siblings[idx]
		return items, nil

	case In:
		if idx == 0 {
			return items, nil
		}
		above := siblings[idx-1]
		return MoveItem(items, itemID, above.Custom.SequenceID, len(above.Children))

	case Out:
		if parent == nil {
			return items, nil
		}
		grandparentID := parent.Custom.LayerRef
		var targetIndex int
		if grandparentID == "" {
			targetIndex = indexOf(items, parent.Custom.SequenceID) + 1
		} else {
			grandparent := Find(items, grandparentID)
			if grandparent == nil {
				return items, fmt.Errorf("%w: grandparent %q", ErrNotFound, grandparentID)
			}
			targetIndex = indexOf(grandparent.Children, parent.Custom.SequenceID) + 1
		}
		return MoveItem(items, itemID, grandparentID, targetIndex)
	}

	return items, fmt.Errorf("hierarchy: unknown direction %v", dir)
}

// removeItem detaches the item with the given id from wherever it sits,
// returning the (possibly reduced) root slice. The item keeps its
// subtree.
func removeItem(items []*Item, itemID string) []*Item {
	for i, item := range items {
		if item.Custom.SequenceID == itemID {
			return append(items[:i:i], items[i+1:]...)
		}
	}
	var walk func(nodes []*Item) bool
	walk = func(nodes []*Item) bool {
		for _, n := range nodes {
			for i, child := range n.Children {
				if child.Custom.SequenceID == itemID {
					n.Children = append(n.Children[:i:i], n.Children[i+1:]...)
					return true
				}
			}
			if walk(n.Children) {
				return true
			}
		}
		return false
	}
	walk(items)
	return items
}

// insertAt inserts item into list at idx, clamped to [0, len].
func insertAt(list []*Item, item *Item, idx int) []*Item {
	if idx < 0 {
		idx = 0
	}
	if idx > len(list) {
		idx = len(list)
	}
	out := make([]*Item, 0, len(list)+1)
	out = append(out, list[:idx]...)
	out = append(out, item)
	out = append(out, list[idx:]...)
	return out
}

func indexOf(list []*Item, sequenceID string) int {
	for i, item := range list {
		if item.Custom.SequenceID == sequenceID {
			return i
		}
	}
	return -1
}
