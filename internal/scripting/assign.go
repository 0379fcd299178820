// SPDX-License-Identifier: MIT
package scripting

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ResponseItem is one part-response entry: the state path the value
// belongs at plus the value itself.
type ResponseItem struct {
	Key   string `json:"key,omitempty"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// ResponseMap is a part's full response, keyed by response key.
type ResponseMap map[string]ResponseItem

// GetAssignStatements converts a response map into one assignment
// statement per entry, in deterministic (sorted-key) order. Values are
// embedded as literals: strings JSON-quoted, numbers and booleans bare,
// anything else serialized as JSON text.
func GetAssignStatements(responses ResponseMap) []string {
	keys := make([]string, 0, len(responses))
	for k := range responses {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	stmts := make([]string, 0, len(responses))
	for _, k := range keys {
		item := responses[k]
		if item.Path == "" {
			continue
		}
		stmts = append(stmts, fmt.Sprintf("let {%s} = %s;", item.Path, literal(item.Value)))
	}
	return stmts
}

// RePrefixResponses returns a copy of the response map with every path
// rewritten into the given activity's scope (see RePrefixResponsePath).
func RePrefixResponses(responses ResponseMap, activityID string) ResponseMap {
	out := make(ResponseMap, len(responses))
	for k, item := range responses {
		item.Path = RePrefixResponsePath(item.Path, activityID)
		out[k] = item
	}
	return out
}

func literal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return `""`
	}
	return string(b)
}
