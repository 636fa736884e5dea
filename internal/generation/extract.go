package generation

import (
	"encoding/json"
	"errors"
)

var errNoJSON = errors.New("no valid JSON value found")

// ExtractObject returns the first balanced {...} span of text that is valid
// JSON. Braces inside JSON strings are ignored.
func ExtractObject(text string) (string, error) {
	return extractFirst(text, '{', '}')
}

// ExtractArray returns the first balanced [...] span of text that is valid
// JSON.
func ExtractArray(text string) (string, error) {
	return extractFirst(text, '[', ']')
}

func extractFirst(text string, left, right byte) (string, error) {
	var found string
	eachCandidate(text, left, right, func(candidate string) bool {
		found = candidate
		return true
	})
	if found == "" {
		return "", errNoJSON
	}
	return found, nil
}

// eachCandidate calls fn with every balanced span of text delimited by
// left/right that is valid JSON, in order of their start, until fn returns
// true.
func eachCandidate(text string, left, right byte, fn func(candidate string) bool) {
	for start := 0; start < len(text); start++ {
		if text[start] != left {
			continue
		}
		end, ok := balancedEnd(text, start, left, right)
		if !ok {
			// A stray opener in prose can precede a complete value.
			continue
		}
		candidate := text[start : end+1]
		if json.Valid([]byte(candidate)) && fn(candidate) {
			return
		}
	}
}

// balancedEnd returns the index of the delimiter closing the one at start.
func balancedEnd(text string, start int, left, right byte) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
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
		case left:
			depth++
		case right:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
