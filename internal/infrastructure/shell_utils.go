package infrastructure

import "strings"

// ShellEscape quotes a string for display in a shell command line.
// Used for logging only: exec.Command never goes through a shell.
func ShellEscape(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, isShellSpecialChar) < 0 {
		return s
	}
	// ' becomes '"'"' (close quote, quoted quote, reopen quote)
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// ShellEscapeCommand renders a binary and its arguments as one loggable command line
func ShellEscapeCommand(binary string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, ShellEscape(binary))
	for _, arg := range args {
		parts = append(parts, ShellEscape(arg))
	}
	return strings.Join(parts, " ")
}

// isShellSpecialChar returns true if the character has special meaning in shell
func isShellSpecialChar(c rune) bool {
	switch c {
	case ' ', '\t', '\'', '"', '$', '`', '\\', '!', '*', '?', '[', ']',
		'(', ')', '{', '}', '|', ';', '<', '>', '&', '~', '#', '%', '\n', '\r':
		return true
	default:
		return false
	}
}
