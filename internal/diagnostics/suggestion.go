package diagnostics

import (
	"regexp"
	"strconv"
)

var illegalIDChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// GenerateSuggestion derives a replacement for a broken or colliding
// id. Illegal characters are stripped first; while the result still
// collides with the blacklist, a trailing digit is incremented (or a
// "1" appended when there is none) until the id is unique. Pure and
// deterministic; never mutates the model.
func GenerateSuggestion(id string, blacklist []string) string {
	newID := illegalIDChars.ReplaceAllString(id, "")
	if !contains(blacklist, newID) {
		return newID
	}
	last := ""
	if len(newID) > 0 {
		last = newID[len(newID)-1:]
	}
	if n, err := strconv.Atoi(last); err == nil {
		newID = newID[:len(newID)-1] + strconv.Itoa(n+1)
	} else {
		newID += "1"
	}
	return GenerateSuggestion(newID, blacklist)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
