package diagnostics

import (
	"fmt"
	"regexp"

	"github.com/courseforge/adaptivity/internal/hierarchy"
	"github.com/courseforge/adaptivity/internal/model"
	"github.com/courseforge/adaptivity/internal/partreg"
	"github.com/courseforge/adaptivity/internal/scripting"
)

// partIDPattern is the allowed-character set for authored part ids.
var partIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_\-: ]+$`)

const brokenNavigationFix = "Screen does not exist, fix navigate to."

// Validators returns the full battery in its fixed execution order. The
// part registry powers the expression validator; all other checks are
// self-contained.
func Validators(reg *partreg.Registry) []Validator {
	return []Validator{
		{Type: TypeInvalidExpression, Validate: validateExpressions(reg)},
		{Type: TypeDuplicate, Validate: validateDuplicates},
		{Type: TypePattern, Validate: validatePatterns},
		{Type: TypeBroken, Validate: validateNavigation},
		{Type: TypeInvalidTargetMutate, Validate: validateMutateTargets},
		{Type: TypeInvalidTargetInit, Validate: validateInitTargets},
		{Type: TypeInvalidTargetCond, Validate: validateConditionTargets},
		{Type: TypeInvalidValue, Validate: validateValues},
		{Type: TypeInvalidExpressionValue, Validate: validateExpressionValues},
	}
}

func requireParts(kind string, activity *model.Activity) ([]model.Part, error) {
	if activity.Content == nil || activity.Content.PartsLayout == nil {
		return nil, fmt.Errorf("%s validation: activity %d parts layout is missing", kind, activity.ID)
	}
	return activity.Content.PartsLayout, nil
}

func requireRules(kind string, activity *model.Activity) ([]model.Rule, error) {
	if activity.Authoring == nil {
		return nil, fmt.Errorf("%s validation: activity %d authoring rules are missing", kind, activity.ID)
	}
	return activity.Authoring.Rules, nil
}

// validateExpressions delegates to each expression-capable part type's
// own config checker.
func validateExpressions(reg *partreg.Registry) func(*model.Activity, []model.SequenceEntry, []KnownPart) ([]Finding, error) {
	return func(activity *model.Activity, sequence []model.SequenceEntry, parts []KnownPart) ([]Finding, error) {
		layout, err := requireParts("invalid_expression", activity)
		if err != nil {
			return nil, err
		}
		var findings []Finding
		for _, part := range layout {
			def := reg.Lookup(part.Type)
			if def == nil || !def.CanUseExpression || def.ValidateUserConfig == nil {
				continue
			}
			for _, broken := range def.ValidateUserConfig(part) {
				fix := broken.SuggestedFix
				findings = append(findings, Finding{
					ID:           broken.PartID,
					Item:         broken,
					SuggestedFix: &fix,
				})
			}
		}
		return findings, nil
	}
}

// validateDuplicates flags every occurrence of a part id used more than
// once within one activity's layout: two occurrences yield two
// findings, one per part.
func validateDuplicates(activity *model.Activity, sequence []model.SequenceEntry, parts []KnownPart) ([]Finding, error) {
	layout, err := requireParts("duplicate", activity)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(layout))
	for _, p := range layout {
		counts[p.ID]++
	}
	var findings []Finding
	for _, p := range layout {
		if counts[p.ID] > 1 {
			findings = append(findings, Finding{ID: p.ID, Item: PartItem{Part: p}})
		}
	}
	return findings, nil
}

// validatePatterns flags non-inherited part ids that fail the allowed
// character pattern.
func validatePatterns(activity *model.Activity, sequence []model.SequenceEntry, parts []KnownPart) ([]Finding, error) {
	layout, err := requireParts("pattern", activity)
	if err != nil {
		return nil, err
	}
	var findings []Finding
	for _, p := range layout {
		if !p.Inherited && !partIDPattern.MatchString(p.ID) {
			findings = append(findings, Finding{ID: p.ID, Item: PartItem{Part: p}})
		}
	}
	return findings, nil
}

// validateNavigation flags rules whose navigation action targets a
// sequence id absent from the hierarchy. The target "next" is always
// valid.
func validateNavigation(activity *model.Activity, sequence []model.SequenceEntry, parts []KnownPart) ([]Finding, error) {
	if sequence == nil {
		return nil, fmt.Errorf("broken navigation validation: sequence is missing")
	}
	rules, err := requireRules("broken navigation", activity)
	if err != nil {
		return nil, err
	}
	tree := hierarchy.Build(sequence)
	var findings []Finding
	for _, rule := range rules {
		for i := range rule.Event.Params.Actions {
			action := rule.Event.Params.Actions[i]
			if action.Type != model.ActionNavigation {
				continue
			}
			target := action.Params.Target
			if target == "" || target == "next" {
				continue
			}
			if hierarchy.Find(tree, target) == nil {
				fix := brokenNavigationFix
				findings = append(findings, Finding{
					ID:           rule.ID,
					Item:         RuleItem{Rule: rule, Action: &action},
					SuggestedFix: &fix,
				})
			}
		}
	}
	return findings, nil
}

// validateMutateTargets flags mutate-state actions whose target does
// not resolve against the known-ids pool.
func validateMutateTargets(activity *model.Activity, sequence []model.SequenceEntry, parts []KnownPart) ([]Finding, error) {
	if parts == nil {
		return nil, fmt.Errorf("invalid_target_mutate validation: parts pool is missing")
	}
	rules, err := requireRules("invalid_target_mutate", activity)
	if err != nil {
		return nil, err
	}
	fix := ""
	var findings []Finding
	for _, rule := range rules {
		for i := range rule.Event.Params.Actions {
			action := rule.Event.Params.Actions[i]
			if action.Type != model.ActionMutateState {
				continue
			}
			if !validTarget(action.Params.Target, parts) {
				findings = append(findings, Finding{
					ID:           rule.ID,
					Item:         RuleItem{Rule: rule, Action: &action},
					SuggestedFix: &fix,
				})
			}
		}
	}
	return findings, nil
}

// validateInitTargets flags init facts whose target does not resolve.
func validateInitTargets(activity *model.Activity, sequence []model.SequenceEntry, parts []KnownPart) ([]Finding, error) {
	if parts == nil {
		return nil, fmt.Errorf("invalid_target_init validation: parts pool is missing")
	}
	if activity.Content == nil {
		return nil, fmt.Errorf("invalid_target_init validation: activity %d content is missing", activity.ID)
	}
	fix := ""
	var findings []Finding
	for _, fact := range activity.Content.Custom.Facts {
		if !validTarget(fact.Target, parts) {
			findings = append(findings, Finding{
				ID:           fact.Target,
				Item:         FactItem{Fact: fact},
				SuggestedFix: &fix,
			})
		}
	}
	return findings, nil
}

// validateConditionTargets flags rule conditions whose fact does not
// resolve, descending into nested all/any groups.
func validateConditionTargets(activity *model.Activity, sequence []model.SequenceEntry, parts []KnownPart) ([]Finding, error) {
	if parts == nil {
		return nil, fmt.Errorf("invalid_target_cond validation: parts pool is missing")
	}
	rules, err := requireRules("invalid_target_cond", activity)
	if err != nil {
		return nil, err
	}
	fix := ""
	var findings []Finding
	for _, rule := range rules {
		rule := rule
		model.WalkConditions(rule.AllConditions(), func(c *model.Condition) {
			if !validTarget(c.Fact, parts) {
				findings = append(findings, Finding{
					ID:           rule.ID,
					Item:         ConditionItem{Condition: c, Rule: rule},
					SuggestedFix: &fix,
				})
			}
		})
	}
	return findings, nil
}

// validateValues flags conditions that declare a value key holding JSON
// null.
func validateValues(activity *model.Activity, sequence []model.SequenceEntry, parts []KnownPart) ([]Finding, error) {
	rules, err := requireRules("invalid_value", activity)
	if err != nil {
		return nil, err
	}
	fix := ""
	var findings []Finding
	for _, rule := range rules {
		rule := rule
		model.WalkConditions(rule.AllConditions(), func(c *model.Condition) {
			if c.HasValue() && c.ValueIsNull() {
				findings = append(findings, Finding{
					ID:           rule.ID,
					Item:         ConditionItem{Condition: c, Rule: rule},
					SuggestedFix: &fix,
				})
			}
		})
	}
	return findings, nil
}

// validateExpressionValues flags conditions and init facts whose string
// value changes under the bracket-mismatch repair, offering the
// repaired text as the fix.
func validateExpressionValues(activity *model.Activity, sequence []model.SequenceEntry, parts []KnownPart) ([]Finding, error) {
	if activity.Content == nil {
		return nil, fmt.Errorf("invalid_expression_value validation: activity %d content is missing", activity.ID)
	}
	rules, err := requireRules("invalid_expression_value", activity)
	if err != nil {
		return nil, err
	}

	var findings []Finding
	for _, fact := range activity.Content.Custom.Facts {
		raw, ok := fact.StringValue()
		if !ok {
			continue
		}
		if repaired := scripting.CheckExpressionsWithWrongBrackets(raw); repaired != raw {
			fix := repaired
			findings = append(findings, Finding{
				ID:           fact.Target,
				Item:         FactItem{Fact: fact},
				SuggestedFix: &fix,
			})
		}
	}
	for _, rule := range rules {
		rule := rule
		model.WalkConditions(rule.AllConditions(), func(c *model.Condition) {
			raw, ok := c.StringValue()
			if !ok {
				return
			}
			if repaired := scripting.CheckExpressionsWithWrongBrackets(raw); repaired != raw {
				fix := repaired
				findings = append(findings, Finding{
					ID:           rule.ID,
					Item:         ConditionItem{Condition: c, Rule: rule},
					SuggestedFix: &fix,
				})
			}
		})
	}
	return findings, nil
}
