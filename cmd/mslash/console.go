package main

import (
	"mslash/internal/config"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
)

// lineConsole serves `input` and `pause` from the terminal through
// readline. The readline instance is opened on first use, so scripts that
// never read input leave the terminal alone.
type lineConsole struct {
	cfg config.Config
	rl  *readline.Instance
}

func newLineConsole(cfg config.Config) *lineConsole {
	return &lineConsole{cfg: cfg}
}

func (c *lineConsole) open() (*readline.Instance, error) {
	if c.rl != nil {
		return c.rl, nil
	}
	rl, err := readline.NewEx(&readline.Config{
		HistoryFile:       c.cfg.HistoryFile,
		InterruptPrompt:   "^C",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "readline init failed")
	}
	c.rl = rl
	return rl, nil
}

// prompt shows text and returns the line typed in response.
func (c *lineConsole) prompt(text string) (string, error) {
	rl, err := c.open()
	if err != nil {
		return "", err
	}
	rl.SetPrompt(text)
	line, err := rl.Readline()
	if err == readline.ErrInterrupt {
		return "", errors.New("interrupted")
	}
	return line, err
}

func (c *lineConsole) ReadLine() (string, error) {
	return c.prompt(c.cfg.InputPrompt)
}

func (c *lineConsole) Pause() error {
	_, err := c.prompt(c.cfg.PausePrompt)
	return err
}

func (c *lineConsole) Close() {
	if c.rl != nil {
		c.rl.Close()
	}
}
