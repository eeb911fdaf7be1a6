package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// GetPassword prints prompt to w and reads a password from the user's
// terminal without echo. A newline is printed after the read to keep the UI
// tidy. When stdin is not a terminal (piped input) the password is read as a
// plain line from reader instead.
//
// The returned byte slice should be wiped by the caller when no longer needed.
func GetPassword(reader *bufio.Reader, prompt string, w io.Writer) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		line, err := GetSimpleText(reader, prompt, w)
		if err != nil {
			return nil, err
		}
		return []byte(line), nil
	}

	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return nil, err
	}
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// GetConfirmation asks a yes/no question. Only "y" and "yes" (any case)
// count as yes; EOF counts as no.
func GetConfirmation(reader *bufio.Reader, prompt string, w io.Writer) (bool, error) {
	answer, err := GetSimpleText(reader, prompt+" [y/N]", w)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// GetOptionalText reads a line for an edit form. An empty answer keeps the
// current value and reports changed=false. A single "-" clears the field.
func GetOptionalText(reader *bufio.Reader, label, current string, w io.Writer) (value string, changed bool, err error) {
	prompt := fmt.Sprintf("%s [%s] (Enter keeps, '-' clears)", label, current)
	answer, err := GetSimpleText(reader, prompt, w)
	if err != nil {
		return "", false, err
	}
	switch answer {
	case "":
		return current, false, nil
	case "-":
		return "", current != "", nil
	default:
		return answer, answer != current, nil
	}
}

// GetOptionalBool reads y/n for an edit form; an empty answer keeps current.
func GetOptionalBool(reader *bufio.Reader, label string, current bool, w io.Writer) (value bool, changed bool, err error) {
	def := "n"
	if current {
		def = "y"
	}
	answer, err := GetSimpleText(reader, fmt.Sprintf("%s (y/n) [%s]", label, def), w)
	if err != nil {
		return current, false, err
	}
	switch strings.ToLower(answer) {
	case "":
		return current, false, nil
	case "y", "yes":
		return true, !current, nil
	case "n", "no":
		return false, current, nil
	default:
		return current, false, fmt.Errorf("%q is not y or n", answer)
	}
}
