package ai

import "encoding/json"

// ExtractJSONBlock returns the first balanced {...} block in s, which models
// embed their structured payload in alongside prose. Brace balancing skips
// braces inside string literals.
func ExtractJSONBlock(s string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}

// UnmarshalBlock extracts the first JSON block from content and decodes it
// into v. It returns false when no block exists or the block does not decode.
func UnmarshalBlock(content string, v any) bool {
	block, ok := ExtractJSONBlock(content)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(block), v) == nil
}
