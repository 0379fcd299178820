// SPDX-License-Identifier: MIT
package scripting

import "strings"

// CheckExpressionsWithWrongBrackets repairs bracket mismatches in a
// condition or init-fact value. Unmatched closing braces/parentheses
// are dropped, and any still-open ones are closed at the end of the
// text, innermost first. The repair is pure and deterministic: callers
// compare the result against the input and treat a difference as a
// suggested fix, never applying it silently.
func CheckExpressionsWithWrongBrackets(text string) string {
	var out strings.Builder
	out.Grow(len(text))

	// Stack of open brackets awaiting their closer.
	var open []byte

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '{', '(':
			open = append(open, c)
			out.WriteByte(c)
		case '}':
			if len(open) == 0 || open[len(open)-1] != '{' {
				continue // unmatched closer, drop it
			}
			open = open[:len(open)-1]
			out.WriteByte(c)
		case ')':
			if len(open) == 0 || open[len(open)-1] != '(' {
				continue
			}
			open = open[:len(open)-1]
			out.WriteByte(c)
		default:
			out.WriteByte(c)
		}
	}

	for i := len(open) - 1; i >= 0; i-- {
		if open[i] == '{' {
			out.WriteByte('}')
		} else {
			out.WriteByte(')')
		}
	}
	return out.String()
}
