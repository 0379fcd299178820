package diagnostics

import (
	"regexp"
	"strings"
)

// namespaceRe locates the namespace prefix inside a target string. A
// target is `<namespace>.<id>[...]` with namespace one of app,
// variables, stage, or session; anything not matching this shape is not
// a recognized target.
var namespaceRe = regexp.MustCompile(`app|variables|stage|session`)

// validTarget reports whether a rule action, condition fact, or init
// fact target resolves under the namespace-specific rules:
//
//	app       - "active" is always valid, otherwise the id must be known
//	variables - the id must be a known part/variable id
//	stage     - the id must be a known part id
//	session   - any non-empty id is valid
func validTarget(target string, parts []KnownPart) bool {
	loc := namespaceRe.FindStringIndex(target)
	if loc == nil {
		return false
	}
	split := strings.Split(target[loc[0]:], ".")
	if len(split) < 2 {
		return false
	}
	namespace, targetID := split[0], split[1]
	if targetID == "" {
		return false
	}
	switch namespace {
	case "app":
		return targetID == "active" || knownID(parts, targetID)
	case "variables", "stage":
		return knownID(parts, targetID)
	case "session":
		return true
	default:
		return false
	}
}

func knownID(parts []KnownPart, id string) bool {
	for _, p := range parts {
		if p.ID == id {
			return true
		}
	}
	return false
}
