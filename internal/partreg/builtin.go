package partreg

import (
	"sort"
	"strings"

	"github.com/courseforge/adaptivity/internal/model"
	"github.com/courseforge/adaptivity/internal/scripting"
)

// expressionProps are the custom-config keys that commonly carry state
// expressions across the janus part families.
var expressionProps = []string{
	"expression",
	"formula",
	"label",
	"text",
	"tooltip",
	"visible",
}

// checkConfiguredExpressions runs the bracket repair over every
// expression-bearing string in the part's custom config and reports
// each property whose repaired text differs from the original.
func checkConfiguredExpressions(part model.Part) []BrokenExpression {
	if part.Custom == nil {
		return nil
	}

	props := make([]string, 0, len(part.Custom))
	for key := range part.Custom {
		props = append(props, key)
	}
	sort.Strings(props)

	var broken []BrokenExpression
	for _, key := range props {
		raw, ok := part.Custom[key].(string)
		if !ok || !strings.Contains(raw, "{") {
			continue
		}
		if !knownExpressionProp(key) {
			continue
		}
		repaired := scripting.CheckExpressionsWithWrongBrackets(raw)
		if repaired != raw {
			broken = append(broken, BrokenExpression{
				PartID:       part.ID,
				Property:     key,
				Expression:   raw,
				SuggestedFix: repaired,
			})
		}
	}
	return broken
}

func knownExpressionProp(key string) bool {
	for _, p := range expressionProps {
		if p == key {
			return true
		}
	}
	return false
}

// RegisterBuiltins registers the janus part families the engine ships
// with. Expression-capable parts all share the generic config checker;
// the rest are registered purely so their type tags are known.
func RegisterBuiltins(r *Registry) {
	expressionCapable := []string{
		"janus-slider",
		"janus-text-slider",
		"janus-text-flow",
		"janus-input-number",
		"janus-capi-iframe",
	}
	for _, t := range expressionCapable {
		r.Register(&Definition{
			Type:               t,
			CanUseExpression:   true,
			ValidateUserConfig: checkConfiguredExpressions,
		})
	}

	inert := []string{
		"janus-image",
		"janus-flashcard",
		"janus-audio",
		"janus-video",
		"janus-popup",
		"janus-mcq",
	}
	for _, t := range inert {
		r.Register(&Definition{Type: t})
	}
}
