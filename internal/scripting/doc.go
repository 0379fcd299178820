// SPDX-License-Identifier: MIT
//
// Package scripting implements the adaptivity statement language and
// its variable environment.
//
// # The statement language
//
// A statement has the form
//
//	let {<path>} = <expression>;
//
// where <path> is a dot-namespaced state path such as variables.score,
// session.userId, or q:1234|stage.slider.value, and <expression> is an
// ordinary expression over numbers, strings, booleans, operators, the
// built-in function library, and {path} references to other state.
//
// Paths may contain characters (spaces, the |stage. activity marker)
// that no expression-language identifier could carry, so references are
// written in braces. Before evaluation every {path} reference is
// substituted with a synthetic variable bound to the referenced value,
// and the remaining right-hand side is parsed and evaluated as an HCL
// expression against that binding plus the function library.
//
// # The environment
//
// Env is an explicitly constructed, passed-by-reference object with a
// documented lifecycle: create it at lesson-session start, Bootstrap it
// with session variables, mutate it through Eval/Set during delivery,
// and discard it when the session ends. There is deliberately no
// package-level default environment.
//
// # Failure semantics
//
// Evaluation of one statement failing never aborts a batch: EvalAll
// runs statements one by one and collects each failure message, so an
// error-free assignment earlier in the batch keeps its effect even when
// a later statement references a missing function or variable.
package scripting
