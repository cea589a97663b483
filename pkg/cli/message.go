package cli

import (
	"fmt"
	"io"
	"os"
)

// Output receives everything the panel prints.
var Output io.Writer = os.Stdout

func line(colour, message string) {
	_, _ = fmt.Fprintln(Output, Paint(colour, message))
}

func Errorln(message string)   { line(RedColour, message) }
func Successln(message string) { line(GreenColour, message) }
func Warningln(message string) { line(YellowColour, message) }
func Blueln(message string)    { line(BlueColour, message) }
func Magentaln(message string) { line(MagentaColour, message) }
func Cyanln(message string)    { line(CyanColour, message) }
func Grayln(message string)    { line(GrayColour, message) }
