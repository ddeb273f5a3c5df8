package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// RelativeDays renders a signed day count like "in 3d", "today" or "2d late".
func RelativeDays(days int) string {
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days > 0 && days < 60:
		return fmt.Sprintf("in %dd", days)
	case days > 0:
		return fmt.Sprintf("in %dmo", days/30)
	case days == -1:
		return "1d late"
	default:
		return fmt.Sprintf("%dd late", -days)
	}
}

// DeadlineStyled colors a days-until-deadline value by urgency. A nil value
// means the project has no delivery date.
func DeadlineStyled(days *int) string {
	if days == nil {
		return StyleDim.Render("no date")
	}
	text := RelativeDays(*days)
	switch {
	case *days <= 3:
		return StyleRed.Render(text)
	case *days <= 7:
		return StyleYellow.Render(text)
	default:
		return StyleFg.Render(text)
	}
}

// ShortDate formats a date as "Mar 17".
func ShortDate(t time.Time) string {
	return t.Format("Jan 2")
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// FormatMinutes converts raw minutes into human-friendly format.
func FormatMinutes(min int) string {
	if min <= 0 {
		return "0m"
	}
	h := min / 60
	m := min % 60
	if h > 0 && m > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if h > 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dm", m)
}

// FormatHours renders fractional hours with one decimal, "-" when negative.
func FormatHours(h float64) string {
	if h < 0 || math.IsNaN(h) {
		return "-"
	}
	return fmt.Sprintf("%.1fh", h)
}

// FormatMoney renders a whole-dollar amount with thousands separators and a
// K/M suffix above a million.
func FormatMoney(d decimal.Decimal) string {
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1_000_000)) {
		return "$" + d.Div(decimal.NewFromInt(1_000_000)).StringFixed(2) + "M"
	}
	whole := d.Round(0).IntPart()
	sign := ""
	if whole < 0 {
		sign, whole = "-", -whole
	}
	s := fmt.Sprintf("%d", whole)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String()
}
