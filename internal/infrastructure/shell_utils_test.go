package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShellEscape(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple word", "notify-send", "notify-send"},
		{"empty string", "", "''"},
		{"spaces", "Dump Ready", "'Dump Ready'"},
		{"single quote", "it's", `'it'"'"'s'`},
		{"dollar", "$HOME/wikidump", "'$HOME/wikidump'"},
		{"parentheses", "enwiktionary (remote, 1.2 GiB)", "'enwiktionary (remote, 1.2 GiB)'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShellEscape(tt.input))
		})
	}
}

func TestShellEscapeCommand(t *testing.T) {
	assert.Equal(t, "notify-send", ShellEscapeCommand("notify-send"))
	assert.Equal(t,
		"notify-send 'Dump Ready' enwiktionary-NS0.tar.gz",
		ShellEscapeCommand("notify-send", "Dump Ready", "enwiktionary-NS0.tar.gz"))
	assert.Equal(t,
		`osascript -e 'display notification "x" with title "y"'`,
		ShellEscapeCommand("osascript", "-e", `display notification "x" with title "y"`))
}

func TestIsShellSpecialChar(t *testing.T) {
	for _, c := range " \t'\"$`\\!*?[](){}|;<>&~#%\n\r" {
		assert.True(t, isShellSpecialChar(c), "Expected '%c' to be a special char", c)
	}
	for _, c := range "abcABC123_-./:@=+" {
		assert.False(t, isShellSpecialChar(c), "Expected '%c' to NOT be a special char", c)
	}
}
