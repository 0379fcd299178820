// SPDX-License-Identifier: MIT
package scripting

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zclconf/go-cty/cty"
)

// stageMarker separates an activity id from the stage-scoped remainder
// of a state path. The split is an exact string match on this literal.
const stageMarker = "|stage."

// SessionInfo carries the delivery-session identity injected into a
// fresh environment.
type SessionInfo struct {
	UserID   string
	UserName string
}

// Env is a path-keyed variable environment. Paths are globally unique
// within one Env; the namespace prefix (session, variables, stage, app)
// determines visibility scope. Values are scalars.
//
// Statement evaluation is serialized by the embedded lock: a statement
// completes before the next one observes the environment.
type Env struct {
	mu     sync.RWMutex
	values map[string]cty.Value
}

// NewEnv creates an empty environment. Callers normally Bootstrap it
// before first use.
func NewEnv() *Env {
	return &Env{values: make(map[string]cty.Value)}
}

// Bootstrap injects the session variables every lesson script may rely
// on. It is idempotent and overwrites any previous session identity.
func (e *Env) Bootstrap(s SessionInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.values["session.userId"] = cty.StringVal(s.UserID)
	e.values["session.userName"] = cty.StringVal(s.UserName)
	e.values["app.active"] = cty.True
}

// Set stores a value at path, replacing any previous value.
func (e *Env) Set(path string, v cty.Value) error {
	if err := validatePath(path); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.values[path] = v
	return nil
}

// Get returns the value at path and whether it exists.
func (e *Env) Get(path string) (cty.Value, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.values[path]
	return v, ok
}

// Delete removes the value at path, if present.
func (e *Env) Delete(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.values, path)
}

// MarkVisit records a navigation visit timestamp for a sequence entry
// under session.visitTimestamps.<sequenceId>, in Unix milliseconds.
func (e *Env) MarkVisit(sequenceID string, ts time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.values["session.visitTimestamps."+sequenceID] = cty.NumberIntVal(ts.UnixMilli())
}

// State returns a point-in-time plain mapping of every environment path
// to its native Go value. The snapshot is detached: later mutations do
// not affect it.
func (e *Env) State() map[string]any {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]any, len(e.values))
	for path, v := range e.values {
		out[path] = nativeValue(v)
	}
	return out
}

// LocalizedSnapshot returns the environment state filtered and
// localized for the given activity ids. Activity-scoped paths
// (<activityId>|stage.<rest>) belonging to one of the ids are emitted
// as stage.<rest>; scoped paths of other activities are omitted;
// unscoped paths pass through unchanged.
func (e *Env) LocalizedSnapshot(activityIDs []string) map[string]any {
	ids := make(map[string]bool, len(activityIDs))
	for _, id := range activityIDs {
		ids[id] = true
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]any, len(e.values))
	for path, v := range e.values {
		owner, rest, scoped := strings.Cut(path, stageMarker)
		if !scoped {
			out[path] = nativeValue(v)
			continue
		}
		if ids[owner] {
			out["stage."+rest] = nativeValue(v)
		}
	}
	return out
}

// Paths returns every known path in sorted order. Mostly useful for
// tests and debug logging.
func (e *Env) Paths() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	paths := make([]string, 0, len(e.values))
	for p := range e.values {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// RePrefixResponsePath rewrites an activity-scoped response path so the
// state shows up under the tree-root activity's scope: everything up to
// the literal |stage. marker is replaced with rootActivityID. Paths
// without the marker are returned unchanged.
func RePrefixResponsePath(path, rootActivityID string) string {
	_, rest, ok := strings.Cut(path, stageMarker)
	if !ok {
		return path
	}
	return rootActivityID + stageMarker + rest
}

func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("scripting: empty path")
	}
	if strings.ContainsAny(path, "{}") {
		return fmt.Errorf("scripting: path %q must not contain braces", path)
	}
	return nil
}

// nativeValue converts a cty scalar to its plain Go representation:
// string, bool, float64, or nil for null/unknown values.
func nativeValue(v cty.Value) any {
	if v.IsNull() || !v.IsKnown() {
		return nil
	}
	switch v.Type() {
	case cty.String:
		return v.AsString()
	case cty.Bool:
		return v.True()
	case cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return f
	}
	return nil
}
