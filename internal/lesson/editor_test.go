package lesson

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseforge/adaptivity/internal/hierarchy"
	"github.com/courseforge/adaptivity/internal/testutil"
)

func newEditor(t *testing.T) *Editor {
	t.Helper()
	return NewEditor(testutil.NewLesson(), nil)
}

func TestAddEntry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("adds a root screen with a backing activity", func(t *testing.T) {
		t.Parallel()
		ed := newEditor(t)

		entry, err := ed.AddEntry(ctx, "", Screen)

		require.NoError(t, err)
		assert.Equal(t, "New Screen", entry.Custom.SequenceName)
		assert.True(t, entry.IsRoot())
		assert.False(t, entry.Custom.IsLayer)

		activity := ed.Lesson().ActivityByResourceID(entry.ResourceID)
		require.NotNil(t, activity)
		assert.Equal(t, "New Screen", activity.Title)
		assert.Equal(t, entry, ed.Current())
	})

	t.Run("adds a child under a layer", func(t *testing.T) {
		t.Parallel()
		ed := newEditor(t)

		entry, err := ed.AddEntry(ctx, "seq-layer", Screen)

		require.NoError(t, err)
		assert.Equal(t, "New Child Screen", entry.Custom.SequenceName)
		assert.Equal(t, "seq-layer", entry.Custom.LayerRef)
	})

	t.Run("bank defaults", func(t *testing.T) {
		t.Parallel()
		ed := newEditor(t)

		entry, err := ed.AddEntry(ctx, "", Bank)

		require.NoError(t, err)
		assert.Equal(t, "New Question Bank", entry.Custom.SequenceName)
		assert.True(t, entry.Custom.IsBank)
		assert.Equal(t, 3, entry.Custom.BankShowCount)
		assert.Equal(t, "next", entry.Custom.BankEndTarget)
	})

	t.Run("inserts after the current selection", func(t *testing.T) {
		t.Parallel()
		ed := newEditor(t)
		require.NoError(t, ed.SetCurrent("seq-welcome"))

		entry, err := ed.AddEntry(ctx, "", Screen)

		require.NoError(t, err)
		children := ed.Lesson().Group.Children
		assert.Equal(t, entry.Custom.SequenceID, children[1].Custom.SequenceID)
	})

	t.Run("unknown parent", func(t *testing.T) {
		t.Parallel()
		_, err := newEditor(t).AddEntry(ctx, "seq-ghost", Screen)
		require.ErrorIs(t, err, hierarchy.ErrNotFound)
	})
}

func TestClone(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("copies entry and activity with fresh identity", func(t *testing.T) {
		t.Parallel()
		ed := newEditor(t)

		clone, err := ed.Clone(ctx, "seq-child")

		require.NoError(t, err)
		assert.Equal(t, "Copy of Child", clone.Custom.SequenceName)
		assert.Equal(t, "seq-layer", clone.Custom.LayerRef, "clone keeps the source's parent")
		assert.NotEqual(t, "seq-child", clone.Custom.SequenceID)

		source := ed.Lesson().ActivityByResourceID(3)
		copied := ed.Lesson().ActivityByResourceID(clone.ResourceID)
		require.NotNil(t, copied)
		assert.NotEqual(t, source.ID, copied.ID)
		assert.Equal(t, "Copy of Child", copied.Title)
		// Content is deep-copied, not shared.
		require.Len(t, copied.Content.PartsLayout, 1)
		copied.Content.PartsLayout[0].ID = "mutated"
		assert.Equal(t, "child_text", source.Content.PartsLayout[0].ID)
	})

	t.Run("clone lands right after its source", func(t *testing.T) {
		t.Parallel()
		ed := newEditor(t)

		clone, err := ed.Clone(ctx, "seq-welcome")

		require.NoError(t, err)
		children := ed.Lesson().Group.Children
		assert.Equal(t, clone.Custom.SequenceID, children[1].Custom.SequenceID)
	})

	t.Run("unknown entry", func(t *testing.T) {
		t.Parallel()
		_, err := newEditor(t).Clone(ctx, "seq-ghost")
		require.ErrorIs(t, err, hierarchy.ErrNotFound)
	})
}

func TestRename(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("updates entry name and activity title", func(t *testing.T) {
		t.Parallel()
		ed := newEditor(t)

		require.NoError(t, ed.Rename(ctx, "seq-welcome", "Greeting"))

		assert.Equal(t, "Greeting", ed.Lesson().EntryBySequenceID("seq-welcome").Custom.SequenceName)
		assert.Equal(t, "Greeting", ed.Lesson().ActivityByResourceID(1).Title)
	})

	t.Run("whitespace-only name is a no-op", func(t *testing.T) {
		t.Parallel()
		ed := newEditor(t)

		require.NoError(t, ed.Rename(ctx, "seq-welcome", "   "))

		assert.Equal(t, "Welcome", ed.Lesson().EntryBySequenceID("seq-welcome").Custom.SequenceName)
	})

	t.Run("unknown entry", func(t *testing.T) {
		t.Parallel()
		require.ErrorIs(t, newEditor(t).Rename(ctx, "seq-ghost", "X"), hierarchy.ErrNotFound)
	})
}

func TestConvertToLayer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ed := newEditor(t)

	require.NoError(t, ed.ConvertToLayer(ctx, "seq-welcome"))
	assert.True(t, ed.Lesson().EntryBySequenceID("seq-welcome").Custom.IsLayer)

	require.NoError(t, ed.ConvertToLayer(ctx, "seq-welcome"))
	assert.False(t, ed.Lesson().EntryBySequenceID("seq-welcome").Custom.IsLayer)
}

func TestDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("cascades to the whole subtree", func(t *testing.T) {
		t.Parallel()
		ed := newEditor(t)

		removed, err := ed.Delete(ctx, "seq-layer")

		require.NoError(t, err)
		assert.Equal(t, 2, removed)
		assert.Nil(t, ed.Lesson().EntryBySequenceID("seq-layer"))
		assert.Nil(t, ed.Lesson().EntryBySequenceID("seq-child"))
		assert.NotNil(t, ed.Lesson().EntryBySequenceID("seq-welcome"))
	})

	t.Run("clears the selection when it was inside the subtree", func(t *testing.T) {
		t.Parallel()
		ed := newEditor(t)
		require.NoError(t, ed.SetCurrent("seq-child"))
		ed.SetCurrentRule("rule-1")

		_, err := ed.Delete(ctx, "seq-layer")

		require.NoError(t, err)
		assert.Nil(t, ed.Current())
		assert.Empty(t, ed.CurrentRule())
	})

	t.Run("unknown entry", func(t *testing.T) {
		t.Parallel()
		_, err := newEditor(t).Delete(ctx, "seq-ghost")
		require.ErrorIs(t, err, hierarchy.ErrNotFound)
	})
}

func TestMoveAndReorder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("move writes the flattened tree back to the flat list", func(t *testing.T) {
		t.Parallel()
		ed := newEditor(t)

		require.NoError(t, ed.Move(ctx, "seq-welcome", "seq-layer", 0))

		entry := ed.Lesson().EntryBySequenceID("seq-welcome")
		assert.Equal(t, "seq-layer", entry.Custom.LayerRef)
		// Flat list is regrouped pre-order: layer first, then its children.
		assert.Equal(t, "seq-layer", ed.Lesson().Group.Children[0].Custom.SequenceID)
	})

	t.Run("cyclic move is rejected", func(t *testing.T) {
		t.Parallel()
		ed := newEditor(t)
		err := ed.Move(ctx, "seq-layer", "seq-child", 0)
		require.ErrorIs(t, err, hierarchy.ErrCyclicMove)
	})

	t.Run("reorder up", func(t *testing.T) {
		t.Parallel()
		ed := newEditor(t)

		require.NoError(t, ed.Reorder(ctx, "seq-layer", hierarchy.Up))

		assert.Equal(t, "seq-layer", ed.Lesson().Group.Children[0].Custom.SequenceID)
	})
}
