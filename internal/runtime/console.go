package runtime

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// DefaultPausePrompt is shown by pause unless configured otherwise.
const DefaultPausePrompt = "Press Enter to continue..."

// Console is the collaborator behind `input` and `pause`. Both calls block
// the run until they return.
type Console interface {
	// ReadLine returns one line of user input without its line ending.
	ReadLine() (string, error)
	// Pause waits for a single acknowledgment.
	Pause() error
}

// StreamConsole is a Console over plain reader/writer streams.
type StreamConsole struct {
	in  *bufio.Reader
	out io.Writer

	InputPrompt string // printed before each input, may be empty
	PausePrompt string
}

// NewStreamConsole creates a console reading from r and printing prompts to w.
func NewStreamConsole(r io.Reader, w io.Writer) *StreamConsole {
	return &StreamConsole{
		in:          bufio.NewReader(r),
		out:         w,
		PausePrompt: DefaultPausePrompt,
	}
}

func (c *StreamConsole) ReadLine() (string, error) {
	if c.InputPrompt != "" {
		fmt.Fprint(c.out, c.InputPrompt)
	}
	line, err := c.in.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	return strings.TrimRight(line, "\r\n"), err
}

func (c *StreamConsole) Pause() error {
	if c.PausePrompt != "" {
		fmt.Fprint(c.out, c.PausePrompt)
	}
	_, err := c.in.ReadString('\n')
	return err
}
