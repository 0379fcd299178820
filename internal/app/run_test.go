package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseforge/adaptivity/internal/bus"
)

const cleanLesson = `{
	"page": {"title": "Intro", "custom": {"variables": []}},
	"group": {"type": "group", "layout": "deck", "children": [
		{"type": "activity-reference", "resourceId": 1, "activitySlug": "a1",
		 "custom": {"sequenceId": "seq-1", "sequenceName": "One"}}
	]},
	"activities": [
		{"id": 1, "resourceId": 1, "activitySlug": "a1", "title": "One",
		 "content": {"partsLayout": [{"id": "p1", "type": "janus-text-flow"}], "custom": {"facts": []}},
		 "authoring": {"rules": []}}
	]
}`

const brokenLesson = `{
	"page": {"title": "Broken", "custom": {"variables": []}},
	"group": {"type": "group", "layout": "deck", "children": [
		{"type": "activity-reference", "resourceId": 1, "activitySlug": "a1",
		 "custom": {"sequenceId": "seq-1", "sequenceName": "One"}}
	]},
	"activities": [
		{"id": 1, "resourceId": 1, "activitySlug": "a1", "title": "One",
		 "content": {"partsLayout": [
			{"id": "dup", "type": "janus-text-flow"},
			{"id": "dup", "type": "janus-slider"}
		 ], "custom": {"facts": []}},
		 "authoring": {"rules": []}}
	]
}`

func quietConfig(path string) *Config {
	cfg, _ := NewConfig(Config{LessonPath: path, LogFormat: "text", LogLevel: "error"})
	return cfg
}

func writeLesson(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lesson.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	_, err := NewConfig(Config{})
	require.Error(t, err)

	cfg, err := NewConfig(Config{LessonPath: "x.json"})
	require.NoError(t, err)
	assert.Equal(t, "x.json", cfg.LessonPath)
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("clean lesson produces an empty report", func(t *testing.T) {
		t.Parallel()
		out := &bytes.Buffer{}
		a := NewApp(out, quietConfig(writeLesson(t, cleanLesson)))

		require.NoError(t, a.Run(context.Background()))

		var reports []LessonReport
		require.NoError(t, json.Unmarshal(out.Bytes(), &reports))
		require.Len(t, reports, 1)
		assert.Equal(t, "Intro", reports[0].Title)
		assert.Empty(t, reports[0].Activities)
		assert.Empty(t, reports[0].VariableProblems)
	})

	t.Run("duplicate part ids surface in the report", func(t *testing.T) {
		t.Parallel()
		out := &bytes.Buffer{}
		a := NewApp(out, quietConfig(writeLesson(t, brokenLesson)))

		require.NoError(t, a.Run(context.Background()))

		var reports []LessonReport
		require.NoError(t, json.Unmarshal(out.Bytes(), &reports))
		require.Len(t, reports, 1)
		require.Len(t, reports[0].Activities, 1)
		assert.Len(t, reports[0].Activities[0].Problems, 2)
	})

	t.Run("missing path is an error", func(t *testing.T) {
		t.Parallel()
		out := &bytes.Buffer{}
		a := NewApp(out, quietConfig(filepath.Join(t.TempDir(), "nope")))

		require.Error(t, a.Run(context.Background()))
	})

	t.Run("preview replays the lesson and persists visits", func(t *testing.T) {
		t.Parallel()
		out := &bytes.Buffer{}
		dataDir := t.TempDir()
		cfg, err := NewConfig(Config{
			LessonPath: writeLesson(t, cleanLesson),
			DataDir:    dataDir,
			Preview:    true,
			LogFormat:  "text",
			LogLevel:   "error",
		})
		require.NoError(t, err)
		a := NewApp(out, cfg)
		navigated, cancel := a.Events().Subscribe(bus.EventNavigated)
		defer cancel()

		require.NoError(t, a.Run(context.Background()))

		select {
		case ev := <-navigated:
			assert.Equal(t, "seq-1", ev.Payload)
		default:
			t.Fatal("expected the preview session to navigate")
		}
		_, err = os.Stat(filepath.Join(dataDir, "history.db"))
		assert.NoError(t, err, "visit history should live under the data dir")

		var reports []LessonReport
		require.NoError(t, json.Unmarshal(out.Bytes(), &reports), "diagnostics output should still be written")
		require.Len(t, reports, 1)
	})

	t.Run("directory without lessons is fine", func(t *testing.T) {
		t.Parallel()
		out := &bytes.Buffer{}
		a := NewApp(out, quietConfig(t.TempDir()))

		require.NoError(t, a.Run(context.Background()))
		assert.Empty(t, out.String())
	})
}
