package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/chzyer/readline"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
)

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "error: JSON encoding failed: %v\n", err)
		os.Exit(1)
	}
}

// printError reports err on stderr, in red when stderr is a terminal.
func printError(err error) {
	if readline.IsTerminal(int(os.Stderr.Fd())) {
		fmt.Fprintf(os.Stderr, "%serror: %s%s\n", colorRed, err, colorReset)
		return
	}
	fmt.Fprintf(os.Stderr, "error: %s\n", err)
}
