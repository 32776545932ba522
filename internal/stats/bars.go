package stats

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	defaultBarWidth     = 40
	minBarWidth         = 10
	terminalWidthBackup = 80
	barFilled           = "█"
	barEmpty            = "░"
)

// RenderSuccessBars prints one horizontal bar per bucket, scaled so a 100%
// success rate fills the available width.
func RenderSuccessBars(w io.Writer, title string, buckets []Bucket, totalWidth int) error {
	if len(buckets) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}

	labelWidth := 0
	for _, b := range buckets {
		if len(b.Label) > labelWidth {
			labelWidth = len(b.Label)
		}
	}
	barWidth := barWidthFor(totalWidth, labelWidth)

	for _, b := range buckets {
		filled := int(b.SuccessRate*float64(barWidth) + 0.5)
		if filled > barWidth {
			filled = barWidth
		}
		bar := strings.Repeat(barFilled, filled) + strings.Repeat(barEmpty, barWidth-filled)
		if _, err := fmt.Fprintf(w, "%-*s %s %5.1f%% (%d/%d)\n",
			labelWidth, b.Label, bar, b.SuccessRate*100, b.Correct, b.Total); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// barWidthFor derives the bar width from the total line budget, leaving
// room for the label and the trailing rate annotation.
func barWidthFor(totalWidth, labelWidth int) int {
	if totalWidth <= 0 {
		totalWidth = autoTotalWidth()
	}
	width := totalWidth - labelWidth - 18
	if width < minBarWidth {
		width = minBarWidth
	}
	if width > defaultBarWidth*2 {
		width = defaultBarWidth * 2
	}
	return width
}

func autoTotalWidth() int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
