package delivery

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseforge/adaptivity/internal/bus"
	"github.com/courseforge/adaptivity/internal/hierarchy"
	"github.com/courseforge/adaptivity/internal/history"
	"github.com/courseforge/adaptivity/internal/scripting"
	"github.com/courseforge/adaptivity/internal/testutil"
)

func newNavigator(t *testing.T) (*Navigator, *scripting.Env) {
	t.Helper()
	env := scripting.NewEnv()
	env.Bootstrap(scripting.SessionInfo{UserID: "u", UserName: "u"})
	return NewNavigator(testutil.NewLesson(), env, nil, nil), env
}

func TestStart(t *testing.T) {
	t.Parallel()
	nav, env := newNavigator(t)

	entry, err := nav.Start(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "seq-welcome", entry.Custom.SequenceID)
	assert.Equal(t, entry, nav.Current())
	_, ok := env.Get("session.visitTimestamps.seq-welcome")
	assert.True(t, ok)
}

func TestNavigateTo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("jumps to a sequence id", func(t *testing.T) {
		t.Parallel()
		nav, _ := newNavigator(t)

		entry, err := nav.NavigateTo(ctx, "seq-child")

		require.NoError(t, err)
		assert.Equal(t, "seq-child", entry.Custom.SequenceID)
	})

	t.Run("next skips layers", func(t *testing.T) {
		t.Parallel()
		nav, _ := newNavigator(t)
		_, err := nav.Start(ctx)
		require.NoError(t, err)

		entry, err := nav.NavigateTo(ctx, NextTarget)

		require.NoError(t, err)
		// seq-layer sits between but is not deliverable.
		assert.Equal(t, "seq-child", entry.Custom.SequenceID)
	})

	t.Run("next past the last screen", func(t *testing.T) {
		t.Parallel()
		nav, _ := newNavigator(t)
		_, err := nav.NavigateTo(ctx, "seq-child")
		require.NoError(t, err)

		_, err = nav.NavigateTo(ctx, NextTarget)
		require.ErrorIs(t, err, ErrEndOfLesson)
	})

	t.Run("unknown target", func(t *testing.T) {
		t.Parallel()
		nav, _ := newNavigator(t)
		_, err := nav.NavigateTo(ctx, "seq-ghost")
		require.ErrorIs(t, err, hierarchy.ErrNotFound)
	})

	t.Run("publishes a navigated event", func(t *testing.T) {
		t.Parallel()
		events := bus.New()
		ch, cancel := events.Subscribe(bus.EventNavigated)
		defer cancel()
		env := scripting.NewEnv()
		nav := NewNavigator(testutil.NewLesson(), env, nil, events)

		_, err := nav.NavigateTo(ctx, "seq-welcome")

		require.NoError(t, err)
		select {
		case ev := <-ch:
			assert.Equal(t, "seq-welcome", ev.Payload)
		default:
			t.Fatal("expected a navigated event")
		}
	})
}

func TestCurrentTree(t *testing.T) {
	t.Parallel()
	nav, _ := newNavigator(t)
	_, err := nav.NavigateTo(context.Background(), "seq-child")
	require.NoError(t, err)

	tree := nav.CurrentTree()

	require.Len(t, tree, 2)
	assert.Equal(t, 2, tree[0].ID, "layer first")
	assert.Equal(t, 3, tree[1].ID, "delivered screen last")
}

func TestNavigatePersistsVisits(t *testing.T) {
	t.Parallel()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	store, err := history.NewStoreDB(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	env := scripting.NewEnv()
	nav := NewNavigator(testutil.NewLesson(), env, store, nil)

	_, err = nav.NavigateTo(context.Background(), "seq-welcome")
	require.NoError(t, err)

	_, found, err := store.LastVisit("seq-welcome")
	require.NoError(t, err)
	assert.True(t, found)
}
