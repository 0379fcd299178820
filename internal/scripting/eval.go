// SPDX-License-Identifier: MIT
package scripting

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// Result is the outcome of evaluating one statement. Result is nil on
// success and holds the failure message otherwise; a failed statement
// never mutates the environment.
type Result struct {
	Result *string
}

// OK reports whether the statement succeeded.
func (r Result) OK() bool { return r.Result == nil }

func failure(format string, args ...any) Result {
	msg := fmt.Sprintf(format, args...)
	return Result{Result: &msg}
}

// statementRe matches `let <path> = <expr>;` with an optional brace
// wrapper around the path and an optional trailing semicolon.
var statementRe = regexp.MustCompile(`(?s)^\s*let\s+(\{[^{}]+\}|[^\s=]+)\s*=\s*(.+?)\s*;?\s*$`)

// referenceRe matches a {path} state reference inside an expression.
var referenceRe = regexp.MustCompile(`\{([^{}]+)\}`)

// Eval parses and evaluates a single assignment statement against the
// environment. On success the assigned value is stored and the zero
// Result is returned; on any failure (malformed statement, unknown
// reference, expression error) the environment is untouched and the
// Result carries the message.
func (e *Env) Eval(stmt string) Result {
	m := statementRe.FindStringSubmatch(stmt)
	if m == nil {
		return failure("malformed statement: %q", strings.TrimSpace(stmt))
	}
	target := strings.TrimSpace(strings.Trim(m[1], "{}"))
	if err := validatePath(target); err != nil {
		return failure("%v", err)
	}

	value, res := e.evalExpression(m[2])
	if !res.OK() {
		return res
	}
	e.mu.Lock()
	e.values[target] = value
	e.mu.Unlock()
	return Result{}
}

// EvalAll evaluates statements strictly one at a time, in order,
// collecting the failure message of every statement that does not
// succeed. Earlier successful assignments keep their effect regardless
// of later failures.
func (e *Env) EvalAll(stmts []string) []string {
	var failures []string
	for _, stmt := range stmts {
		if res := e.Eval(stmt); !res.OK() {
			failures = append(failures, *res.Result)
		}
	}
	return failures
}

// evalExpression substitutes {path} references with synthetic variables
// bound to their current values, then parses and evaluates the result
// as an HCL expression.
func (e *Env) evalExpression(src string) (cty.Value, Result) {
	vars := map[string]cty.Value{}
	var missing []string

	i := 0
	rewritten := referenceRe.ReplaceAllStringFunc(src, func(ref string) string {
		path := strings.TrimSpace(ref[1 : len(ref)-1])
		v, ok := e.Get(path)
		if !ok {
			missing = append(missing, path)
			return ref
		}
		name := fmt.Sprintf("__ref%d", i)
		i++
		vars[name] = v
		return name
	})
	if len(missing) > 0 {
		return cty.NilVal, failure("unknown variable: %s", strings.Join(missing, ", "))
	}

	expr, diags := hclsyntax.ParseExpression([]byte(rewritten), "statement", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.NilVal, failure("parse error: %s", diags.Error())
	}

	val, diags := expr.Value(&hcl.EvalContext{
		Variables: vars,
		Functions: Functions(),
	})
	if diags.HasErrors() {
		return cty.NilVal, failure("eval error: %s", diags.Error())
	}
	if !val.IsKnown() {
		return cty.NilVal, failure("expression did not produce a known value")
	}
	return val, Result{}
}

// RewriteVariableRefs rewrites bare lesson-variable references to their
// namespaced form: {name} becomes {variables.name} for every supplied
// name. References already carrying a namespace are left alone because
// their text never equals a bare name.
func RewriteVariableRefs(expr string, names []string) string {
	for _, name := range names {
		if name == "" {
			continue
		}
		expr = strings.ReplaceAll(expr, "{"+name+"}", "{variables."+name+"}")
	}
	return expr
}

// VariableStatement is one lesson-variable assignment ready for
// sequential evaluation.
type VariableStatement struct {
	Name       string
	Expression string
}

// BuildVariableStatements converts page-level variables into namespaced
// assignment statements. Cross-variable references are rewritten first
// so they resolve against the single global namespace. Variables
// without a name or expression are skipped.
func BuildVariableStatements(vars []VariableSpec) []VariableStatement {
	names := make([]string, 0, len(vars))
	for _, v := range vars {
		names = append(names, v.Name)
	}
	var out []VariableStatement
	for _, v := range vars {
		if v.Name == "" || v.Expression == "" {
			continue
		}
		expr := RewriteVariableRefs(v.Expression, names)
		out = append(out, VariableStatement{
			Name:       v.Name,
			Expression: fmt.Sprintf("let {variables.%s} = %s;", strings.TrimSpace(v.Name), expr),
		})
	}
	return out
}

// VariableSpec is the name/expression pair of one page-level variable.
// It mirrors model.LessonVariable without importing the model package.
type VariableSpec struct {
	Name       string
	Expression string
}
