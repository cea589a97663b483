package panel

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/oullin/profilesync/pkg/cli"
	"github.com/oullin/profilesync/pkg/portal"
	"golang.org/x/term"
)

// Options lists the menu entries in display order. The number before the
// parenthesis is the choice the operator types.
var Options = []string{
	"1) Show profile",
	"2) Add address",
	"3) Remove address",
	"4) Add education",
	"5) Remove education",
	"6) Add social network",
	"7) Remove social network",
	"8) Set phone",
	"9) Remove phone",
	"10) Upload gallery images",
	"11) Remove gallery image",
	"12) Clear gallery",
	"13) Upload avatar",
	"14) Leave a review",
	"15) Recompute rating",
	"16) Show last snapshot",
	"17) Clear snapshot history",
	"0) Exit",
}

type Menu struct {
	Choice    *int
	Reader    *bufio.Reader
	Validator *portal.Validator
}

func MakeMenu() Menu {
	menu := Menu{
		Reader:    bufio.NewReader(os.Stdin),
		Validator: portal.GetDefaultValidator(),
	}

	menu.Print()

	return menu
}

func (p *Menu) PrintLine() {
	_, _ = p.Reader.ReadString('\n')
}

func (p *Menu) GetChoice() int {
	if p.Choice == nil {
		return 0
	}

	return *p.Choice
}

func (p *Menu) CaptureInput() error {
	fmt.Print(cli.YellowColour + "Select an option: " + cli.Reset)
	input, err := p.Reader.ReadString('\n')

	if err != nil {
		return fmt.Errorf("%s error reading input: %v %s", cli.RedColour, err, cli.Reset)
	}

	input = strings.TrimSpace(input)
	choice, err := strconv.Atoi(input)

	if err != nil {
		return fmt.Errorf("%s Please enter a valid number. %s", cli.RedColour, cli.Reset)
	}

	p.Choice = &choice

	return nil
}

func (p *Menu) Print() {
	// Try to get the terminal width; default to 80 if it fails
	width, _, err := term.GetSize(int(os.Stdout.Fd()))

	if err != nil || width < 20 {
		width = 80
	}

	inner := width - 2

	border := "╔" + strings.Repeat("═", inner) + "╗"
	title := "║" + p.CenterText(" Profile Sync ", inner) + "║"
	divider := "╠" + strings.Repeat("═", inner) + "╣"
	footer := "╚" + strings.Repeat("═", inner) + "╝"

	fmt.Println()
	fmt.Println(cli.CyanColour + border)
	fmt.Println(title)
	fmt.Println(divider)

	for _, option := range Options {
		p.PrintOption(option, inner)
	}

	fmt.Println(footer + cli.Reset)
}

// PrintOption left-pads a space, writes the text, then fills to the full inner width.
func (p *Menu) PrintOption(text string, inner int) {
	content := " " + text

	if len(content) > inner {
		content = content[:inner]
	}

	padding := inner - len(content)
	fmt.Printf("║%s%s║\n", content, strings.Repeat(" ", padding))
}

// CenterText centers s within width, padding with spaces.
func (p *Menu) CenterText(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}

	pad := width - len(s)
	left := pad / 2
	right := pad - left

	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// CaptureText reads one trimmed line. Empty answers are refused unless
// optional is set.
func (p *Menu) CaptureText(label string, optional bool) (string, error) {
	fmt.Print(label + ": ")

	value, err := p.Reader.ReadString('\n')
	if err != nil && value == "" {
		return "", fmt.Errorf("%sError reading %s: %v %s", cli.RedColour, strings.ToLower(label), err, cli.Reset)
	}

	value = strings.TrimSpace(value)
	if value == "" && !optional {
		return "", fmt.Errorf("%sError: no %s provided %s", cli.RedColour, strings.ToLower(label), cli.Reset)
	}

	return value, nil
}

// CaptureNumber reads a positive integer. Optional numbers yield nil when
// left blank.
func (p *Menu) CaptureNumber(label string, optional bool) (*int, error) {
	raw, err := p.CaptureText(label, optional)
	if err != nil {
		return nil, err
	}

	if raw == "" {
		return nil, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return nil, fmt.Errorf("%sError: %s must be a positive number %s", cli.RedColour, strings.ToLower(label), cli.Reset)
	}

	return &value, nil
}

// CaptureNumbers reads a comma separated list of positive integers.
func (p *Menu) CaptureNumbers(label string) ([]int, error) {
	raw, err := p.CaptureText(label, true)
	if err != nil {
		return nil, err
	}

	var out []int

	for _, item := range portal.FilterNonEmpty(strings.Split(raw, ",")) {
		value, err := strconv.Atoi(item)
		if err != nil || value <= 0 {
			return nil, fmt.Errorf("%sError: %q is not a valid id %s", cli.RedColour, item, cli.Reset)
		}

		out = append(out, value)
	}

	return out, nil
}

// CaptureFiles reads a comma separated list of file paths.
func (p *Menu) CaptureFiles(label string) ([]string, error) {
	raw, err := p.CaptureText(label, false)
	if err != nil {
		return nil, err
	}

	return portal.FilterNonEmpty(strings.Split(raw, ",")), nil
}

// Confirm asks a yes/no question; anything but y or yes means no.
func (p *Menu) Confirm(question string) bool {
	answer, err := p.CaptureText(question+" [y/N]", true)
	if err != nil {
		return false
	}

	answer = strings.ToLower(answer)

	return answer == "y" || answer == "yes"
}
