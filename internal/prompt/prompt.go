// Package prompt turns the single line a user types into a cleanup choice.
package prompt

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Choice is the removal scope picked at the prompt
type Choice int

const (
	Invalid Choice = iota
	All
	None
	LogsOnly
	OutputsOnly
)

const (
	MsgNothingFound = "No logs or output files found. Nothing to clean up."
	MsgAll          = "Logs and output files have been removed."
	MsgNone         = "No files have been removed."
	MsgLogsOnly     = "Logs have been removed."
	MsgOutputsOnly  = "Output files have been removed."
	MsgInvalid      = "Invalid input. Please enter 'y', 'n', 'l', or 'o'."
)

func (c Choice) String() string {
	switch c {
	case All:
		return "all"
	case None:
		return "none"
	case LogsOnly:
		return "logs"
	case OutputsOnly:
		return "outputs"
	default:
		return "invalid"
	}
}

// Message is the one result line printed after the choice is carried out
func (c Choice) Message() string {
	switch c {
	case All:
		return MsgAll
	case None:
		return MsgNone
	case LogsOnly:
		return MsgLogsOnly
	case OutputsOnly:
		return MsgOutputsOnly
	default:
		return MsgInvalid
	}
}

// Removes reports which file sets the choice deletes
func (c Choice) Removes() (logs, outputs bool) {
	switch c {
	case All:
		return true, true
	case LogsOnly:
		return true, false
	case OutputsOnly:
		return false, true
	default:
		return false, false
	}
}

// Parse maps a raw input line to a Choice using the first character of the
// trimmed line, case-insensitively. An empty line means All.
func Parse(line string) Choice {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return All
	}

	r, _ := utf8.DecodeRuneInString(trimmed)
	switch unicode.ToLower(r) {
	case 'y':
		return All
	case 'n':
		return None
	case 'l':
		return LogsOnly
	case 'o':
		return OutputsOnly
	default:
		return Invalid
	}
}

// ReadChoice reads one line and parses it. End of input before any byte is
// read yields Invalid with io.EOF, so a closed stdin never deletes anything.
// A final line without a newline is parsed normally.
func ReadChoice(r *bufio.Reader) (Choice, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return Parse(line), nil
		}
		return Invalid, err
	}
	return Parse(line), nil
}
