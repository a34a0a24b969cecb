package engine

import "strings"

// preprocessSource rewrites n0de script source into something zygomys reads.
//
//   - :label becomes the string "__kw_label", so keywords never collide with
//     script variables.
//   - num-socket becomes num_socket. zygomys reads a hyphen as subtraction.
//   - ; and ;; comments become // comments.
//
// String literals and comments are copied through untouched.
func preprocessSource(source string) string {
	var out strings.Builder
	out.Grow(len(source) + len(source)/4)

	for i := 0; i < len(source); {
		c := source[i]
		switch {
		case c == '"':
			end := stringEnd(source, i)
			out.WriteString(source[i:end])
			i = end

		case c == ';':
			for i < len(source) && source[i] == ';' {
				i++
			}
			end := strings.IndexByte(source[i:], '\n')
			if end < 0 {
				end = len(source) - i
			}
			out.WriteString("//")
			out.WriteString(source[i : i+end])
			i += end

		case c == ':' && i+1 < len(source) && isLetter(source[i+1]):
			end := i + 1
			for end < len(source) && isKeywordChar(source[end]) {
				end++
			}
			out.WriteByte('"')
			out.WriteString(kwPrefix)
			out.WriteString(source[i+1 : end])
			out.WriteByte('"')
			i = end

		case c == '-' && i > 0 && i+1 < len(source) &&
			isNameChar(source[i-1]) && isLetter(source[i+1]):
			out.WriteByte('_')
			i++

		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// stringEnd returns the index just past the string literal opened at start.
// An unterminated literal runs to the end of the source.
func stringEnd(source string, start int) int {
	for i := start + 1; i < len(source); i++ {
		switch source[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}
	return len(source)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// Keywords may keep their hyphens since they end up inside a string.
func isKeywordChar(c byte) bool {
	return isNameChar(c) || c == '-'
}
