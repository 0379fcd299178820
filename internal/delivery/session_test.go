package delivery

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseforge/adaptivity/internal/bus"
	"github.com/courseforge/adaptivity/internal/model"
	"github.com/courseforge/adaptivity/internal/scripting"
	"github.com/courseforge/adaptivity/internal/testutil"
)

func TestNewSession(t *testing.T) {
	t.Parallel()

	t.Run("seeds one attempt record per activity", func(t *testing.T) {
		t.Parallel()
		session := NewSession(testutil.NewLesson(), SessionConfig{Preview: true})

		for _, id := range []int{1, 2, 3} {
			record, ok := session.Store().ByActivity(id)
			require.True(t, ok, "activity %d should have an attempt record", id)
			assert.NotEmpty(t, record.AttemptGuid)
			require.Len(t, record.Parts, 1)
			assert.NotEmpty(t, record.Parts[0].AttemptGuid)
		}
	})

	t.Run("bootstraps the session identity", func(t *testing.T) {
		t.Parallel()
		session := NewSession(testutil.NewLesson(), SessionConfig{
			Preview: true,
			Session: scripting.SessionInfo{UserID: "u-1", UserName: "Ada"},
		})

		v, ok := session.Env().Get("session.userId")
		require.True(t, ok)
		assert.Equal(t, "u-1", v.AsString())
	})
}

func TestSessionReplay(t *testing.T) {
	t.Parallel()

	t.Run("visits every screen and applies init facts", func(t *testing.T) {
		t.Parallel()
		l := testutil.NewLesson()
		l.Activities[2].Content.Custom.Facts = []model.InitFact{
			{Target: "stage.greeting", Value: json.RawMessage(`"hello"`)},
		}
		events := bus.New()
		saved, cancel := events.Subscribe(bus.EventPartSaved)
		defer cancel()
		session := NewSession(l, SessionConfig{
			Events:  events,
			Preview: true,
			Session: scripting.SessionInfo{UserID: "u", UserName: "u"},
		})

		visited, err := session.Replay(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, visited, "the layer is not deliverable")
		v, ok := session.Env().Get("stage.greeting")
		require.True(t, ok, "the child screen's init fact should be in the environment")
		assert.Equal(t, "hello", v.AsString())
		select {
		case ev := <-saved:
			assert.Equal(t, bus.EventPartSaved, ev.Name)
		default:
			t.Fatal("expected the init facts to go through the save pipeline")
		}
	})

	t.Run("bad init fact is logged, not fatal", func(t *testing.T) {
		t.Parallel()
		l := testutil.NewLesson()
		l.Activities[0].Content.Custom.Facts = []model.InitFact{
			{Target: "stage.bad{brace", Value: json.RawMessage(`1`)},
		}
		session := NewSession(l, SessionConfig{Preview: true})

		visited, err := session.Replay(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, visited)
	})

	t.Run("lesson variables evaluate before the first screen", func(t *testing.T) {
		t.Parallel()
		l := testutil.NewLesson()
		l.Page.Custom.Variables = []model.LessonVariable{
			{Name: "score", Expression: "40 + 2"},
		}
		session := NewSession(l, SessionConfig{Preview: true})

		_, err := session.Replay(context.Background())

		require.NoError(t, err)
		v, ok := session.Env().Get("variables.score")
		require.True(t, ok)
		f, _ := v.AsBigFloat().Float64()
		assert.Equal(t, 42.0, f)
	})
}
