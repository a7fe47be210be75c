package bindgen

import "strings"

// formatDocComment renders s (a WIT doc comment, which may be empty) as a
// block of "// "-prefixed C++-style comment lines, or "" if s is empty.
func formatDocComment(s string) string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return ""
	}
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		b.WriteString("// ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
