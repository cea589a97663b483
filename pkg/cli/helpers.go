package cli

import "fmt"

const clearSequence = "\x1b[H\x1b[2J"

// ClearScreen moves the cursor home and wipes the terminal.
func ClearScreen() {
	_, _ = fmt.Fprint(Output, clearSequence)
}
