package scripting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestEval(t *testing.T) {
	t.Parallel()

	t.Run("assigns a literal", func(t *testing.T) {
		t.Parallel()
		env := NewEnv()

		res := env.Eval(`let {stage.score} = 42;`)

		require.True(t, res.OK())
		v, ok := env.Get("stage.score")
		require.True(t, ok)
		assert.True(t, v.RawEquals(cty.NumberIntVal(42)))
	})

	t.Run("path may contain pipes and spaces", func(t *testing.T) {
		t.Parallel()
		env := NewEnv()

		res := env.Eval(`let {123|stage.my input.value} = "hi";`)

		require.True(t, res.OK())
		v, ok := env.Get("123|stage.my input.value")
		require.True(t, ok)
		assert.Equal(t, "hi", v.AsString())
	})

	t.Run("resolves references to existing state", func(t *testing.T) {
		t.Parallel()
		env := NewEnv()
		require.True(t, env.Eval(`let {stage.a} = 2;`).OK())
		require.True(t, env.Eval(`let {stage.b} = 3;`).OK())

		res := env.Eval(`let {stage.sum} = {stage.a} + {stage.b};`)

		require.True(t, res.OK())
		v, _ := env.Get("stage.sum")
		assert.True(t, v.RawEquals(cty.NumberIntVal(5)))
	})

	t.Run("unknown reference fails and leaves the env untouched", func(t *testing.T) {
		t.Parallel()
		env := NewEnv()

		res := env.Eval(`let {stage.out} = {stage.ghost} + 1;`)

		require.False(t, res.OK())
		assert.Contains(t, *res.Result, "unknown variable: stage.ghost")
		_, ok := env.Get("stage.out")
		assert.False(t, ok)
	})

	t.Run("malformed statement", func(t *testing.T) {
		t.Parallel()
		env := NewEnv()
		res := env.Eval(`stage.x = 1`)
		require.False(t, res.OK())
		assert.Contains(t, *res.Result, "malformed statement")
	})

	t.Run("calls library functions", func(t *testing.T) {
		t.Parallel()
		env := NewEnv()

		require.True(t, env.Eval(`let {stage.r} = round(2.5);`).OK())
		require.True(t, env.Eval(`let {stage.m} = max(1, 7, 3);`).OK())
		require.True(t, env.Eval(`let {stage.u} = upper("abc");`).OK())

		r, _ := env.Get("stage.r")
		assert.True(t, r.RawEquals(cty.NumberFloatVal(3)))
		m, _ := env.Get("stage.m")
		assert.True(t, m.RawEquals(cty.NumberIntVal(7)))
		u, _ := env.Get("stage.u")
		assert.Equal(t, "ABC", u.AsString())
	})
}

func TestEvalAll(t *testing.T) {
	t.Parallel()

	// One failing statement must not block the independent ones around
	// it, and earlier assignments keep their effect.
	env := NewEnv()
	failures := env.EvalAll([]string{
		`let {stage.a} = 1;`,
		`let {stage.b} = {stage.nope};`,
		`let {stage.c} = {stage.a} + 10;`,
	})

	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "unknown variable")

	a, ok := env.Get("stage.a")
	require.True(t, ok)
	assert.True(t, a.RawEquals(cty.NumberIntVal(1)))
	_, ok = env.Get("stage.b")
	assert.False(t, ok)
	c, ok := env.Get("stage.c")
	require.True(t, ok)
	assert.True(t, c.RawEquals(cty.NumberIntVal(11)))
}

func TestRewriteVariableRefs(t *testing.T) {
	t.Parallel()

	got := RewriteVariableRefs("{score} + {variables.bonus} + {score}", []string{"score", "bonus"})

	assert.Equal(t, "{variables.score} + {variables.bonus} + {variables.score}", got)
}

func TestBuildVariableStatements(t *testing.T) {
	t.Parallel()

	stmts := BuildVariableStatements([]VariableSpec{
		{Name: "base", Expression: "10"},
		{Name: "", Expression: "ignored"},
		{Name: "total", Expression: "{base} * 2"},
	})

	require.Len(t, stmts, 2)
	assert.Equal(t, "let {variables.base} = 10;", stmts[0].Expression)
	assert.Equal(t, "let {variables.total} = {variables.base} * 2;", stmts[1].Expression)

	// The statements evaluate in order against a fresh environment.
	env := NewEnv()
	for _, s := range stmts {
		require.True(t, env.Eval(s.Expression).OK(), "statement %q", s.Expression)
	}
	total, ok := env.Get("variables.total")
	require.True(t, ok)
	assert.True(t, total.RawEquals(cty.NumberIntVal(20)))
}
