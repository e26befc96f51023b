package document

import "strings"

// RepairJSON rewrites common defects found in hand-edited or legacy template
// JSON so that a strict parse can succeed: line and block comments, single
// quoted strings, unquoted object keys and trailing commas. The repair is
// best-effort; the caller re-parses the result and decides what to do on
// failure.
func RepairJSON(input string) string {
	repaired := stripComments(input)
	repaired = normalizeQuotes(repaired)
	repaired = quoteBareKeys(repaired)
	repaired = removeTrailingCommas(repaired)
	return repaired
}

// stripComments removes // line comments and /* */ block comments outside of
// string literals.
func stripComments(input string) string {
	var sb strings.Builder
	sb.Grow(len(input))

	inString := false
	escaped := false
	for i := 0; i < len(input); i++ {
		ch := input[i]

		if inString {
			sb.WriteByte(ch)
			if escaped {
				escaped = false
			} else if ch == '\\' {
				escaped = true
			} else if ch == '"' {
				inString = false
			}
			continue
		}

		switch {
		case ch == '"':
			inString = true
			sb.WriteByte(ch)
		case ch == '/' && i+1 < len(input) && input[i+1] == '/':
			for i < len(input) && input[i] != '\n' {
				i++
			}
			if i < len(input) {
				sb.WriteByte('\n')
			}
		case ch == '/' && i+1 < len(input) && input[i+1] == '*':
			i += 2
			for i+1 < len(input) && !(input[i] == '*' && input[i+1] == '/') {
				i++
			}
			i++ // skip the closing slash; loop increment skips the star
		default:
			sb.WriteByte(ch)
		}
	}

	return sb.String()
}

// normalizeQuotes converts single-quoted strings to double-quoted strings,
// escaping any embedded double quotes and unescaping \' sequences.
func normalizeQuotes(input string) string {
	var sb strings.Builder
	sb.Grow(len(input))

	inDouble := false
	inSingle := false
	escaped := false
	for i := 0; i < len(input); i++ {
		ch := input[i]

		if inDouble {
			sb.WriteByte(ch)
			if escaped {
				escaped = false
			} else if ch == '\\' {
				escaped = true
			} else if ch == '"' {
				inDouble = false
			}
			continue
		}

		if inSingle {
			if escaped {
				// \' inside a single-quoted string needs no escape once the
				// string is double-quoted.
				if ch != '\'' {
					sb.WriteByte('\\')
				}
				sb.WriteByte(ch)
				escaped = false
				continue
			}
			switch ch {
			case '\\':
				escaped = true
			case '\'':
				sb.WriteByte('"')
				inSingle = false
			case '"':
				sb.WriteString(`\"`)
			default:
				sb.WriteByte(ch)
			}
			continue
		}

		switch ch {
		case '"':
			inDouble = true
			sb.WriteByte(ch)
		case '\'':
			inSingle = true
			sb.WriteByte('"')
		default:
			sb.WriteByte(ch)
		}
	}

	return sb.String()
}

// quoteBareKeys wraps unquoted object keys in double quotes.
func quoteBareKeys(input string) string {
	var sb strings.Builder
	sb.Grow(len(input))

	inString := false
	escaped := false
	// Last significant (non-whitespace) character seen outside strings; a
	// bare key can only follow '{' or ','.
	lastSignificant := byte(0)

	for i := 0; i < len(input); i++ {
		ch := input[i]

		if inString {
			sb.WriteByte(ch)
			if escaped {
				escaped = false
			} else if ch == '\\' {
				escaped = true
			} else if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			lastSignificant = ch
			sb.WriteByte(ch)
			continue
		}

		if isIdentStart(ch) && (lastSignificant == '{' || lastSignificant == ',') {
			end := i
			for end < len(input) && isIdentChar(input[end]) {
				end++
			}
			rest := end
			for rest < len(input) && isSpace(input[rest]) {
				rest++
			}
			word := input[i:end]
			if rest < len(input) && input[rest] == ':' && !isJSONLiteral(word) {
				sb.WriteByte('"')
				sb.WriteString(word)
				sb.WriteByte('"')
				i = end - 1
				lastSignificant = '"'
				continue
			}
		}

		if !isSpace(ch) {
			lastSignificant = ch
		}
		sb.WriteByte(ch)
	}

	return sb.String()
}

// removeTrailingCommas drops commas immediately preceding a closing brace or
// bracket.
func removeTrailingCommas(input string) string {
	var sb strings.Builder
	sb.Grow(len(input))

	inString := false
	escaped := false
	for i := 0; i < len(input); i++ {
		ch := input[i]

		if inString {
			sb.WriteByte(ch)
			if escaped {
				escaped = false
			} else if ch == '\\' {
				escaped = true
			} else if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			sb.WriteByte(ch)
			continue
		}

		if ch == ',' {
			next := i + 1
			for next < len(input) && isSpace(input[next]) {
				next++
			}
			if next < len(input) && (input[next] == '}' || input[next] == ']') {
				continue
			}
		}

		sb.WriteByte(ch)
	}

	return sb.String()
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '$' ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isJSONLiteral(word string) bool {
	return word == "true" || word == "false" || word == "null"
}
