package diagnostics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseforge/adaptivity/internal/model"
	"github.com/courseforge/adaptivity/internal/partreg"
	"github.com/courseforge/adaptivity/internal/scripting"
	"github.com/courseforge/adaptivity/internal/testutil"
)

func builtinRegistry() *partreg.Registry {
	reg := partreg.New()
	partreg.RegisterBuiltins(reg)
	return reg
}

func TestDiagnosePage(t *testing.T) {
	t.Parallel()

	t.Run("clean lesson yields no reports", func(t *testing.T) {
		t.Parallel()
		reports, err := DiagnosePage(context.Background(), testutil.NewLesson(), builtinRegistry())
		require.NoError(t, err)
		assert.Empty(t, reports)
	})

	t.Run("duplicate part ids produce one report with derived fixes", func(t *testing.T) {
		t.Parallel()
		lesson := testutil.NewLesson()
		lesson.Activities[0].Content.PartsLayout = []model.Part{
			{ID: "x", Type: "janus-text-flow"},
			{ID: "x", Type: "janus-slider"},
		}

		reports, err := DiagnosePage(context.Background(), lesson, builtinRegistry())

		require.NoError(t, err)
		require.Len(t, reports, 1)
		report := reports[0]
		require.NotNil(t, report.Activity)
		assert.Equal(t, "seq-welcome", report.Activity.Custom.SequenceID)
		require.Len(t, report.Problems, 2)
		for _, p := range report.Problems {
			assert.Equal(t, TypeDuplicate, p.Type)
			// "x" collides with itself in the visibility blacklist, so
			// the derived fix appends a digit.
			assert.Equal(t, "x1", p.SuggestedFix)
		}
	})

	t.Run("validator error aborts the whole pass", func(t *testing.T) {
		t.Parallel()
		lesson := testutil.NewLesson()
		lesson.Activities[1].Content = nil

		_, err := DiagnosePage(context.Background(), lesson, builtinRegistry())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "diagnose activity 2")
	})

	t.Run("activity without a sequence entry is an error", func(t *testing.T) {
		t.Parallel()
		lesson := testutil.NewLesson()
		lesson.Activities = append(lesson.Activities, testutil.ActivityWithParts(99, "Stray", "dup", "dup"))

		_, err := DiagnosePage(context.Background(), lesson, builtinRegistry())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no sequence entry")
	})
}

func TestKnownIDPool(t *testing.T) {
	t.Parallel()

	lesson := testutil.NewLesson()
	lesson.Page.Custom.EverApps = []model.EverApp{{ID: "calculator"}}
	lesson.Page.Custom.Variables = []model.LessonVariable{
		{Name: "score", Expression: "0"},
		{Name: "welcome_text", Expression: "0"}, // collides with a part id
	}

	pool := KnownIDPool(lesson)

	ids := make([]string, 0, len(pool))
	for _, p := range pool {
		ids = append(ids, p.ID)
	}
	// Part ids first, then ever apps, then variables; first wins on
	// collision.
	assert.Equal(t, []string{"welcome_text", "layer_text", "child_text", "calculator", "score"}, ids)
}

func TestValidateLessonVariables(t *testing.T) {
	t.Parallel()

	page := &model.Page{
		Custom: model.PageCustom{Variables: []model.LessonVariable{
			{Name: "base", Expression: "10"},
			{Name: "bad", Expression: "{variables.missing} + 1"},
			{Name: "total", Expression: "{base} * 3"},
		}},
	}
	env := scripting.NewEnv()
	env.Bootstrap(scripting.SessionInfo{UserID: "u", UserName: "u"})

	problems := ValidateLessonVariables(context.Background(), page, env)

	require.Len(t, problems, 1)
	assert.Equal(t, "bad", problems[0].Name)
	assert.Contains(t, problems[0].Message, "unknown variable")

	// Independent variables still evaluated and stored.
	_, ok := env.Get("variables.total")
	assert.True(t, ok)
}
