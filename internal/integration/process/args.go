package process

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Argument errors.
var (
	// ErrEmptyCommand is returned when a binding names no command.
	ErrEmptyCommand = errors.New("empty command")

	// ErrUnterminatedQuote is returned when an argument string ends inside
	// a quoted section.
	ErrUnterminatedQuote = errors.New("unterminated quote in arguments")
)

// SplitArgs splits an argument string into words the way a POSIX shell does
// for plain words, single quotes, double quotes and backslash escapes. No
// expansion of any kind is performed.
func SplitArgs(s string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)

	for _, r := range s {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case quote == '\'':
			if r == '\'' {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case quote == '"':
			switch r {
			case '"':
				quote = 0
			case '\\':
				escaped = true
			default:
				current.WriteRune(r)
			}
		case r == '\\':
			escaped = true
			inWord = true
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case r == ' ' || r == '\t' || r == '\n':
			if inWord {
				args = append(args, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 || escaped {
		return nil, fmt.Errorf("%w: %q", ErrUnterminatedQuote, s)
	}
	if inWord {
		args = append(args, current.String())
	}
	return args, nil
}

// Command builds the command for a RunCommand binding. The command itself is
// a single program name or path; arguments are split with SplitArgs.
func Command(command, arguments string) (*exec.Cmd, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return nil, ErrEmptyCommand
	}

	args, err := SplitArgs(arguments)
	if err != nil {
		return nil, err
	}
	return exec.Command(command, args...), nil
}
