// extract.go - One-shot Extraktion von JSON-Literalen aus fertigem Text
// Enthaelt: Extract, ExtractFrom
package fence

import (
	"encoding/json"

	"github.com/emirpasic/gods/v2/stacks/arraystack"
)

// Extract gibt das erste balancierte und parsebare JSON-Literal in s zurueck.
func Extract(s string) (string, bool) {
	value, _, ok := ExtractFrom(s, 0)
	return value, ok
}

// ExtractFrom sucht ab Offset from nach dem naechsten gueltigen JSON-Literal
// und gibt es zusammen mit dem Index direkt dahinter zurueck. Kandidaten mit
// falsch gepaarten Klammern oder ungueltigem JSON werden verworfen; die Suche
// geht direkt hinter der Fehlerstelle weiter, nie zurueck in den verworfenen
// Bereich. Ohne Treffer ist end == len(s).
func ExtractFrom(s string, from int) (value string, end int, ok bool) {
	stack := arraystack.New[byte]()
	start := -1
	var inString, escaped bool

	for i := max(from, 0); i < len(s); i++ {
		c := s[i]

		if start == -1 {
			if c == '{' || c == '[' {
				start = i
				stack.Push(c)
			}
			continue
		}

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack.Push(c)
		case '}', ']':
			open, _ := stack.Pop()
			if family(open) != family(c) {
				// falsche Klammerfamilie: Kandidat verwerfen
				start = -1
				stack.Clear()
				continue
			}
			if !stack.Empty() {
				continue
			}

			candidate := s[start : i+1]
			if json.Valid([]byte(candidate)) {
				return candidate, i + 1, true
			}
			start = -1
		}
	}

	return "", len(s), false
}
