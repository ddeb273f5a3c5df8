package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/modbuild/pulse/internal/domain"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// HealthColor returns the style for a health state.
func HealthColor(state domain.HealthState) lipgloss.Style {
	switch state {
	case domain.HealthCritical:
		return StyleRed
	case domain.HealthAtRisk:
		return StyleYellow
	case domain.HealthOnTrack:
		return StyleGreen
	default:
		return StyleDim
	}
}

// HealthIndicator returns a colored indicator such as "● CRITICAL".
func HealthIndicator(state domain.HealthState) string {
	switch state {
	case domain.HealthCritical:
		return StyleRed.Render("● CRITICAL")
	case domain.HealthAtRisk:
		return StyleYellow.Render("● AT RISK")
	case domain.HealthOnTrack:
		return StyleGreen.Render("● ON TRACK")
	default:
		return StyleDim.Render("● UNKNOWN")
	}
}

// PaceIndicator colors the load-board pace verdict.
func PaceIndicator(status domain.PaceStatus) string {
	switch status {
	case domain.PaceOnTrack:
		return StyleGreen.Render("▲ ON PACE")
	case domain.PaceBehind:
		return StyleYellow.Render("▼ BEHIND")
	case domain.PaceAtRisk:
		return StyleRed.Render("▼ AT RISK")
	default:
		return StyleDim.Render(string(status))
	}
}

// CapacityBadge colors a PM capacity label.
func CapacityBadge(label domain.CapacityLabel) string {
	switch label {
	case domain.CapacityAvailable:
		return StyleGreen.Render(string(label))
	case domain.CapacityBusy:
		return StyleYellow.Render(string(label))
	case domain.CapacityOverloaded:
		return StyleRed.Render(string(label))
	default:
		return StyleDim.Render(string(label))
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}

// Warning renders a one-line notice that a metric fell back to its default.
func Warning(text string) string {
	return StyleYellow.Render("! " + text)
}
