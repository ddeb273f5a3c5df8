package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress renders a ratio bar like [████░░░░]  45%.
// The bar is colored by level: green >66%, yellow 33-66%, red <33%.
func RenderProgress(ratio float64, width int) string {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	if width < 2 {
		width = 2
	}

	filled := int(ratio * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	if ratio < 0.33 {
		style = StyleRed
	} else if ratio < 0.66 {
		style = StyleYellow
	}

	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), ratio*100)
}

// RenderPercentBar is RenderProgress for values already expressed in percent.
func RenderPercentBar(pct float64, width int) string {
	return RenderProgress(pct/100, width)
}
