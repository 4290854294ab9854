package patterns

import "strings"

// EditLine applies edit to the 1-based line number in text, leaving other
// lines untouched. Out-of-range line numbers are a no-op; diagnostics may
// reference lines that earlier transforms already removed.
func EditLine(text string, line int, edit func(string) string) string {
	lines := strings.Split(text, "\n")
	if line < 1 || line > len(lines) {
		return text
	}

	lines[line-1] = edit(lines[line-1])

	return strings.Join(lines, "\n")
}

// InsertAfterColumn inserts insertion into line content after the identifier
// starting at the 1-based column. The identifier end is the first byte that
// is not a word character.
func InsertAfterColumn(content string, column int, insertion string) string {
	if column < 1 || column > len(content) {
		return content
	}

	end := column - 1
	for end < len(content) && isWordByte(content[end]) {
		end++
	}

	return content[:end] + insertion + content[end:]
}

// HasLine reports whether text contains a line whose trimmed content equals want.
func HasLine(text, want string) bool {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == want {
			return true
		}
	}

	return false
}

// PrependLine inserts line at the top of text, after any leading comment
// block, so synthesized imports land with the file's other imports.
func PrependLine(text, line string) string {
	lines := strings.Split(text, "\n")

	insert := 0
	for insert < len(lines) {
		trimmed := strings.TrimSpace(lines[insert])
		if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "*") {
			insert++

			continue
		}

		break
	}

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:insert]...)
	out = append(out, line)
	out = append(out, lines[insert:]...)

	return strings.Join(out, "\n")
}

func isWordByte(b byte) bool {
	return b == '_' || b == '$' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
