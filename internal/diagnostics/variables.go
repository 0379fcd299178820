package diagnostics

import (
	"context"

	"github.com/courseforge/adaptivity/internal/ctxlog"
	"github.com/courseforge/adaptivity/internal/model"
	"github.com/courseforge/adaptivity/internal/scripting"
)

// VariableProblem is one lesson variable whose assignment failed to
// evaluate.
type VariableProblem struct {
	Name      string `json:"name"`
	Statement string `json:"statement"`
	Message   string `json:"message"`
}

// ValidateLessonVariables evaluates every page-level variable
// assignment against the environment, sequentially, so one failing
// expression (a missing function, a bad reference) does not block the
// independent ones around it. Each failure becomes a problem; the
// successful assignments keep their effect on the environment.
func ValidateLessonVariables(ctx context.Context, page *model.Page, env *scripting.Env) []VariableProblem {
	logger := ctxlog.FromContext(ctx)

	specs := make([]scripting.VariableSpec, 0, len(page.Custom.Variables))
	for _, v := range page.Custom.Variables {
		specs = append(specs, scripting.VariableSpec{Name: v.Name, Expression: v.Expression})
	}

	var problems []VariableProblem
	for _, stmt := range scripting.BuildVariableStatements(specs) {
		res := env.Eval(stmt.Expression)
		if res.OK() {
			continue
		}
		logger.Debug("Lesson variable failed to evaluate.", "name", stmt.Name, "error", *res.Result)
		problems = append(problems, VariableProblem{
			Name:      stmt.Name,
			Statement: stmt.Expression,
			Message:   *res.Result,
		})
	}
	return problems
}
