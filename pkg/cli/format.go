package cli

import (
	"fmt"
	"math"
	"strings"
)

// Stars renders a 0-5 rating as filled and empty stars followed by the value.
func Stars(rating float64) string {
	if rating < 0 {
		rating = 0
	}

	if rating > 5 {
		rating = 5
	}

	filled := int(math.Round(rating))

	return fmt.Sprintf("%s%s %.1f", strings.Repeat("★", filled), strings.Repeat("☆", 5-filled), rating)
}

// Pairln prints a gray label followed by its value.
func Pairln(label, value string) {
	if strings.TrimSpace(value) == "" {
		value = "-"
	}

	_, _ = fmt.Fprintln(Output, Paint(GrayColour, label+": ")+value)
}
