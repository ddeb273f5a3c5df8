package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/modbuild/pulse/internal/cli/formatter"
	"github.com/modbuild/pulse/internal/domain"
	"github.com/modbuild/pulse/internal/service"
	"github.com/spf13/cobra"
)

func newDashboardCmd(s *session) *cobra.Command {
	var days int
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Live terminal dashboard that refreshes on an interval",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := s.factory(cmd.Context())
			if err != nil {
				return err
			}
			load := func(ctx context.Context) service.Snapshot {
				now := s.app.now()
				return s.app.Snapshot.Snapshot(ctx, service.SnapshotRequest{
					Now:                   &now,
					FactoryID:             f.ID,
					FactoryCode:           f.Code,
					OEEDays:               days,
					IncludeBackupProjects: s.app.Config.IncludeBackupProjects,
				})
			}
			model := newDashboardModel(cmd.Context(), load, s.app.Config.RefreshInterval.Duration)
			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

// ── messages ─────────────────────────────────────────────────────────────────

type snapshotLoadedMsg struct {
	snap service.Snapshot
	gen  int
}

type refreshTickMsg struct{ gen int }

// ── keys ─────────────────────────────────────────────────────────────────────

type dashboardKeys struct {
	Next    key.Binding
	Prev    key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func (k dashboardKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Refresh, k.Quit}
}

func (k dashboardKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func newDashboardKeys() dashboardKeys {
	return dashboardKeys{
		Next:    key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next")),
		Prev:    key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab", "prev")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ── model ────────────────────────────────────────────────────────────────────

var dashboardTabs = []string{"Overview", "Portfolio", "Floor", "Quality", "Crew", "Sales"}

type dashboardModel struct {
	ctx      context.Context
	load     func(context.Context) service.Snapshot
	interval time.Duration

	keys    dashboardKeys
	help    help.Model
	spinner spinner.Model

	tab     int
	snap    *service.Snapshot
	loading bool
	// gen ties refresh ticks to the load that scheduled them, so a manual
	// refresh does not start a second tick chain.
	gen   int
	width int

	// after schedules the next refresh; tea.Tick outside tests.
	after func(time.Duration, func(time.Time) tea.Msg) tea.Cmd
}

func newDashboardModel(ctx context.Context, load func(context.Context) service.Snapshot, interval time.Duration) *dashboardModel {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &dashboardModel{
		ctx:      ctx,
		load:     load,
		interval: interval,
		keys:     newDashboardKeys(),
		help:     help.New(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(formatter.StylePurple)),
		loading:  true,
		after:    tea.Tick,
	}
}

func (m *dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.spinner.Tick)
}

func (m *dashboardModel) fetch() tea.Cmd {
	m.gen++
	gen, ctx, load := m.gen, m.ctx, m.load
	return func() tea.Msg {
		return snapshotLoadedMsg{snap: load(ctx), gen: gen}
	}
}

func (m *dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.tab = (m.tab + 1) % len(dashboardTabs)
		case key.Matches(msg, m.keys.Prev):
			m.tab = (m.tab + len(dashboardTabs) - 1) % len(dashboardTabs)
		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			return m, tea.Batch(m.fetch(), m.spinner.Tick)
		}
		return m, nil

	case snapshotLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.snap = &msg.snap
		m.loading = false
		gen := m.gen
		return m, m.after(m.interval, func(time.Time) tea.Msg { return refreshTickMsg{gen: gen} })

	case refreshTickMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.fetch(), m.spinner.Tick)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *dashboardModel) View() string {
	var b strings.Builder
	b.WriteString(m.headerLine())
	b.WriteString("\n")
	b.WriteString(m.tabBar())
	b.WriteString("\n\n")

	if m.snap == nil {
		b.WriteString(m.spinner.View() + " " + formatter.Dim("Loading metrics..."))
		b.WriteString("\n")
	} else {
		for _, err := range m.snap.Errors() {
			b.WriteString(formatter.Warning(err.Error()))
			b.WriteString("\n")
		}
		b.WriteString(m.body())
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *dashboardModel) headerLine() string {
	title := formatter.StyleHeader.Render("PULSE")
	if m.snap == nil {
		return title
	}
	status := formatter.Dim("updated " + m.snap.GeneratedAt.Format("15:04:05"))
	if m.loading {
		status = m.spinner.View() + " " + formatter.Dim("refreshing")
	}
	return fmt.Sprintf("%s  %s  %s", title, formatter.Bold(m.snap.FactoryCode), status)
}

func (m *dashboardModel) tabBar() string {
	active := lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true).Underline(true)
	parts := make([]string, len(dashboardTabs))
	for i, name := range dashboardTabs {
		if i == m.tab {
			parts[i] = active.Render(name)
		} else {
			parts[i] = formatter.Dim(name)
		}
	}
	return strings.Join(parts, "  ")
}

func (m *dashboardModel) body() string {
	s := m.snap
	switch dashboardTabs[m.tab] {
	case "Portfolio":
		return formatter.FormatPortfolio(s.Portfolio.Data)
	case "Floor":
		return formatter.FormatLoadBoard(s.LoadBoard.Data) + "\n" + formatter.FormatOEE(s.OEE.Data)
	case "Quality":
		return formatter.FormatDefectStats(s.Defects.Data, nil)
	case "Crew":
		return formatter.FormatUtilization(s.Utilization.Data) + "\n" + formatter.FormatCrossTraining(s.CrossTraining.Data)
	case "Sales":
		return formatter.FormatCapacity(s.Capacity.Data) + "\n" + formatter.FormatPipeline(s.Pipeline.Data)
	}
	return m.overview()
}

// overview is one line per scorer.
func (m *dashboardModel) overview() string {
	s := m.snap
	p := s.Portfolio.Data
	lb := s.LoadBoard.Data
	d := s.Defects.Data
	pipe := s.Pipeline.Data

	overloaded := 0
	for _, c := range s.Capacity.Data {
		if c.Label == domain.CapacityOverloaded {
			overloaded++
		}
	}

	rows := [][]string{
		{"Portfolio", fmt.Sprintf("%d projects · %s · %s", p.CountsTotal,
			formatter.StyleRed.Render(fmt.Sprintf("%d critical", p.CountsCritical)),
			formatter.StyleYellow.Render(fmt.Sprintf("%d at risk", p.CountsAtRisk)))},
		{"Load board", fmt.Sprintf("%s  %d of %d expected", formatter.PaceIndicator(lb.PaceStatus), lb.ActualCompleted, lb.ExpectedByNow)},
		{"OEE", formatter.RenderProgress(s.OEE.Data.OEE, 20)},
		{"Defects", fmt.Sprintf("%d ongoing · avg fix %s", d.Ongoing, formatter.FormatHours(d.AvgDurationHours))},
		{"PM capacity", fmt.Sprintf("%d member(s) · %d overloaded", len(s.Capacity.Data), overloaded)},
		{"Pipeline", fmt.Sprintf("%s weighted · %.1f%% win rate", formatter.FormatMoney(pipe.WeightedPipelineValue), pipe.WinRate)},
	}
	return formatter.RenderTable([]string{"METRIC", "NOW"}, rows)
}
