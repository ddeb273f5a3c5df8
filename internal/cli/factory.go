package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/modbuild/pulse/internal/cli/formatter"
	"github.com/modbuild/pulse/internal/domain"
	"github.com/modbuild/pulse/internal/service"
)

// pickFactory asks which factory to use. It is a variable so tests can
// replace the interactive form.
var pickFactory = func(ctx context.Context, factories []*domain.Factory) (string, error) {
	var code string
	options := make([]huh.Option[string], 0, len(factories))
	for _, f := range factories {
		options = append(options, huh.NewOption(fmt.Sprintf("%s  %s", f.Code, f.Name), f.Code))
	}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Factory").
				Options(options...).
				Value(&code),
		),
	).WithTheme(pulseHuhTheme()).WithShowHelp(false)
	if err := form.RunWithContext(ctx); err != nil {
		return "", err
	}
	return code, nil
}

// factory resolves the configured factory. With no code set and several
// factories on record, an interactive terminal is offered a picker.
func (s *session) factory(ctx context.Context) (*domain.Factory, error) {
	f, err := s.app.Factories.Resolve(ctx, s.app.Config.Factory)
	if !errors.Is(err, service.ErrFactoryRequired) {
		return f, err
	}
	if !s.app.interactive() {
		return nil, fmt.Errorf("%w: pass --factory or set PULSE_FACTORY", err)
	}

	all, err := s.app.Factories.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: no factories on record, run `pulse seed` first", service.ErrFactoryRequired)
	}
	code, err := pickFactory(ctx, all)
	if err != nil {
		return nil, err
	}
	return s.app.Factories.Resolve(ctx, code)
}

func pulseHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}
