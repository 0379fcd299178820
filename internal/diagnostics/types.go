package diagnostics

import "github.com/courseforge/adaptivity/internal/model"

// Type identifies one kind of diagnostic problem.
type Type string

// The validator battery, in execution order.
const (
	TypeInvalidExpression      Type = "invalid_expression"
	TypeDuplicate              Type = "duplicate"
	TypePattern                Type = "pattern"
	TypeBroken                 Type = "broken"
	TypeInvalidTargetMutate    Type = "invalid_target_mutate"
	TypeInvalidTargetInit      Type = "invalid_target_init"
	TypeInvalidTargetCond      Type = "invalid_target_cond"
	TypeInvalidValue           Type = "invalid_value"
	TypeInvalidExpressionValue Type = "invalid_expression_value"
)

// KnownPart is one entry of the known-ids pool handed to validators.
type KnownPart struct {
	ID string `json:"id"`
}

// Problem is one fully-annotated diagnostic: the offending construct,
// the sequence entry that owns it, and an advisory fix.
type Problem struct {
	Owner        *model.SequenceEntry `json:"owner"`
	Type         Type                 `json:"type"`
	Item         any                  `json:"item"`
	SuggestedFix string               `json:"suggestedFix"`
}

// Report groups every problem found on one activity.
type Report struct {
	Activity *model.SequenceEntry `json:"activity"`
	Problems []Problem            `json:"problems"`
}

// Finding is a validator's raw result before owner/fix annotation. When
// SuggestedFix is nil the assembly step derives one from ID and the
// visibility blacklist.
type Finding struct {
	ID           string
	Item         any
	SuggestedFix *string
}

// Validator pairs a diagnostic type with its check.
type Validator struct {
	Type     Type
	Validate func(activity *model.Activity, sequence []model.SequenceEntry, parts []KnownPart) ([]Finding, error)
}

// Item payloads attached to findings, one per construct kind.

// PartItem is a part-level finding (duplicate or bad-pattern id).
type PartItem struct {
	Part model.Part `json:"part"`
}

// RuleItem is a rule-level finding, optionally pinpointing an action.
type RuleItem struct {
	Rule   model.Rule    `json:"rule"`
	Action *model.Action `json:"action,omitempty"`
}

// ConditionItem is a condition-level finding within a rule.
type ConditionItem struct {
	Condition *model.Condition `json:"condition"`
	Rule      model.Rule       `json:"rule"`
}

// FactItem is an init-fact finding.
type FactItem struct {
	Fact model.InitFact `json:"fact"`
}
