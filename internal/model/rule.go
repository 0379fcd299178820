// SPDX-License-Identifier: MIT
//
// This file defines the adaptivity rule constructs: rules, their
// condition trees, the actions they fire, and init facts.
//
// Why json.RawMessage for condition and fact values?
//
// The validators must distinguish "value key absent" from "value key
// present but null"; the latter is a diagnostic, the former is fine.
// Decoding into `any` collapses both to nil, so the raw bytes are kept
// and interpreted on demand.
package model

import (
	"bytes"
	"encoding/json"
)

// ActionParams carries the parameters of a rule action. Target is the
// namespaced state path for mutate actions, or a sequence id (or the
// literal "next") for navigation actions.
type ActionParams struct {
	Target string          `json:"target,omitempty"`
	Value  json.RawMessage `json:"value,omitempty"`
}

// Action is one effect fired when a rule's conditions match.
type Action struct {
	Type   string       `json:"type"`
	Params ActionParams `json:"params"`
}

// ActionNavigation and ActionMutateState are the action types the
// engine inspects; other types pass through untouched.
const (
	ActionNavigation  = "navigation"
	ActionMutateState = "mutateState"
)

// Condition is one node of a rule's condition tree. A node is either a
// leaf (Fact/Operator/Value) or a nested group (All/Any populated).
type Condition struct {
	ID       string          `json:"id,omitempty"`
	Fact     string          `json:"fact,omitempty"`
	Operator string          `json:"operator,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`

	All []*Condition `json:"all,omitempty"`
	Any []*Condition `json:"any,omitempty"`
}

// IsGroup reports whether the condition is a nested group rather than a
// leaf.
func (c *Condition) IsGroup() bool {
	return c.All != nil || c.Any != nil
}

// HasValue reports whether the condition declares a value key at all.
func (c *Condition) HasValue() bool {
	return c.Value != nil
}

// ValueIsNull reports whether the declared value is JSON null.
func (c *Condition) ValueIsNull() bool {
	return c.Value != nil && bytes.Equal(bytes.TrimSpace(c.Value), []byte("null"))
}

// StringValue returns the condition's value as a string. The second
// result is false when the value is absent or not a JSON string.
func (c *Condition) StringValue() (string, bool) {
	if c.Value == nil {
		return "", false
	}
	var s string
	if err := json.Unmarshal(c.Value, &s); err != nil {
		return "", false
	}
	return s, true
}

// RuleEventParams holds the actions a rule fires.
type RuleEventParams struct {
	Actions []Action `json:"actions"`
}

// RuleEvent is the effect side of a rule.
type RuleEvent struct {
	Type   string          `json:"type"`
	Params RuleEventParams `json:"params"`
}

// ConditionSet is the root of a rule's condition tree. All and Any are
// combined; the original authoring tools only ever populate one.
type ConditionSet struct {
	ID  string       `json:"id,omitempty"`
	All []*Condition `json:"all,omitempty"`
	Any []*Condition `json:"any,omitempty"`
}

// Rule is one adaptivity rule: conditions evaluated against the
// scripting environment, actions fired on match.
type Rule struct {
	ID         string        `json:"id"`
	Name       string        `json:"name,omitempty"`
	Correct    bool          `json:"correct,omitempty"`
	Default    bool          `json:"default,omitempty"`
	Priority   int           `json:"priority,omitempty"`
	Conditions *ConditionSet `json:"conditions,omitempty"`
	Event      RuleEvent     `json:"event"`
}

// AllConditions returns the rule's top-level conditions, all-group
// first, matching the original evaluation order.
func (r *Rule) AllConditions() []*Condition {
	if r.Conditions == nil {
		return nil
	}
	out := make([]*Condition, 0, len(r.Conditions.All)+len(r.Conditions.Any))
	out = append(out, r.Conditions.All...)
	out = append(out, r.Conditions.Any...)
	return out
}

// WalkConditions calls fn for every leaf condition in the tree rooted
// at conds, descending into nested all/any groups depth-first.
func WalkConditions(conds []*Condition, fn func(*Condition)) {
	for _, c := range conds {
		if c == nil {
			continue
		}
		if c.IsGroup() {
			WalkConditions(c.All, fn)
			WalkConditions(c.Any, fn)
			continue
		}
		fn(c)
	}
}

// InitFact is one state assignment applied when a screen is entered.
type InitFact struct {
	ID       string          `json:"id,omitempty"`
	Target   string          `json:"target"`
	Operator string          `json:"operator,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
}

// StringValue returns the fact's value as a string. The second result
// is false when the value is absent or not a JSON string.
func (f *InitFact) StringValue() (string, bool) {
	if f.Value == nil {
		return "", false
	}
	var s string
	if err := json.Unmarshal(f.Value, &s); err != nil {
		return "", false
	}
	return s, true
}
