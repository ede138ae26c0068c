package gemini

import "strings"

// ExtractJSON strips the formatting noise models wrap around structured
// responses (code fences, prose before or after the object) and returns the
// first balanced JSON object. When no object is found the cleaned text is
// returned as-is and the parse decides.
func ExtractJSON(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return trimmed
	}
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		// language tag on the opening fence, e.g. ```json
		if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 && !strings.ContainsAny(trimmed[:idx], "{[") {
			trimmed = trimmed[idx+1:]
		}
		trimmed = strings.TrimSpace(trimmed)
	}
	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "```"))
	}
	if obj, ok := balancedObject(trimmed); ok {
		return obj
	}
	return trimmed
}

// balancedObject scans for the first top-level {...}, respecting strings and
// escapes so braces inside values don't end the object early.
func balancedObject(text string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false
	for i, r := range text {
		if start == -1 {
			if r == '{' {
				start = i
				depth = 1
			}
			continue
		}
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
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
