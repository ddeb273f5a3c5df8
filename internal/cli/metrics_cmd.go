package cli

import (
	"fmt"
	"time"

	"github.com/modbuild/pulse/internal/cli/formatter"
	"github.com/modbuild/pulse/internal/contract"
	"github.com/modbuild/pulse/internal/metrics"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

func newHealthCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "health <project-id>",
		Short: "Classify one project's delivery health",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := s.app.now()
			res := s.app.Health.ProjectHealth(cmd.Context(), contract.HealthRequest{Now: &now, ProjectID: args[0]})
			return emit(s, res, formatter.FormatProjectHealth)
		},
	}
}

func newPortfolioCmd(s *session) *cobra.Command {
	req := contract.NewPortfolioRequest()
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Summarize health across the project portfolio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := s.app.now()
			req.Now = &now
			req.FactoryCode = s.app.Config.Factory
			return emit(s, s.app.Health.Portfolio(cmd.Context(), req), formatter.FormatPortfolio)
		},
	}
	cmd.Flags().StringVar(&req.PMID, "pm", "", "Only projects managed by this team member ID")
	cmd.Flags().BoolVar(&req.IncludeBackup, "backup", false, "With --pm, also include projects they back up")
	cmd.Flags().BoolVar(&req.IncludeInactive, "all", false, "Include completed, cancelled and warranty projects")
	return cmd
}

func newOEECmd(s *session) *cobra.Command {
	var (
		days     int
		from, to string
	)
	cmd := &cobra.Command{
		Use:   "oee",
		Short: "Compute overall equipment effectiveness",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := s.factory(cmd.Context())
			if err != nil {
				return err
			}
			req := contract.NewOEERequest(f.ID, s.app.now(), days)
			start, end, err := parseRange(from, to)
			if err != nil {
				return err
			}
			if start != nil {
				req.From = *start
			}
			if end != nil {
				req.To = *end
			}
			return emit(s, s.app.Production.OEE(cmd.Context(), req), formatter.FormatOEE)
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "Trailing calendar days ending today")
	cmd.Flags().StringVar(&from, "from", "", "Range start (YYYY-MM-DD), overrides --days")
	cmd.Flags().StringVar(&to, "to", "", "Range end (YYYY-MM-DD), inclusive")
	return cmd
}

func newDefectsCmd(s *session) *cobra.Command {
	var station, from, to string
	request := func(cmd *cobra.Command) (contract.DefectRequest, error) {
		f, err := s.factory(cmd.Context())
		if err != nil {
			return contract.DefectRequest{}, err
		}
		start, end, err := parseRange(from, to)
		if err != nil {
			return contract.DefectRequest{}, err
		}
		now := s.app.now()
		return contract.DefectRequest{Now: &now, FactoryID: f.ID, StationID: station, From: start, To: end}, nil
	}

	cmd := &cobra.Command{
		Use:   "defects",
		Short: "List QC hold-to-pass cycles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := request(cmd)
			if err != nil {
				return err
			}
			return emit(s, s.app.Production.DefectCycles(cmd.Context(), req), func(c []metrics.DefectCycle) string {
				return formatter.FormatDefectCycles(c, nil)
			})
		},
	}
	stats := &cobra.Command{
		Use:   "stats",
		Short: "Aggregate fix-cycle statistics by station and category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := request(cmd)
			if err != nil {
				return err
			}
			return emit(s, s.app.Production.DefectStats(cmd.Context(), req), func(st metrics.DefectFixStats) string {
				return formatter.FormatDefectStats(st, nil)
			})
		},
	}
	cmd.AddCommand(stats)

	cmd.PersistentFlags().StringVar(&station, "station", "", "Only defects found at this station ID")
	cmd.PersistentFlags().StringVar(&from, "from", "", "Held on or after (YYYY-MM-DD)")
	cmd.PersistentFlags().StringVar(&to, "to", "", "Held on or before (YYYY-MM-DD)")
	return cmd
}

func newUtilizationCmd(s *session) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "utilization",
		Short: "Show minutes per worker and station for one day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := s.factory(cmd.Context())
			if err != nil {
				return err
			}
			now := s.app.now()
			day := now
			if date != "" {
				if day, err = time.ParseInLocation(dateLayout, date, now.Location()); err != nil {
					return fmt.Errorf("--date: %w", err)
				}
			}
			res := s.app.Workforce.Utilization(cmd.Context(), contract.UtilizationRequest{Now: &now, FactoryID: f.ID, Date: day})
			return emit(s, res, formatter.FormatUtilization)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day to show (YYYY-MM-DD), default today")
	return cmd
}

func newCrossTrainCmd(s *session) *cobra.Command {
	var expiring int
	cmd := &cobra.Command{
		Use:     "crosstrain",
		Aliases: []string{"cross-training"},
		Short:   "Show the certification matrix and station flex",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := s.factory(cmd.Context())
			if err != nil {
				return err
			}
			req := contract.NewCrossTrainingRequest(f.ID)
			now := s.app.now()
			req.Now = &now
			if cmd.Flags().Changed("expiring-days") {
				req.ExpiringWithinDays = expiring
			}
			return emit(s, s.app.Workforce.CrossTraining(cmd.Context(), req), formatter.FormatCrossTraining)
		},
	}
	cmd.Flags().IntVar(&expiring, "expiring-days", 30, "List certifications expiring within this many days")
	return cmd
}

func newLoadBoardCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "loadboard",
		Aliases: []string{"load-board"},
		Short:   "Compare today's completions with the takt target",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := s.factory(cmd.Context())
			if err != nil {
				return err
			}
			now := s.app.now()
			res := s.app.Production.LoadBoard(cmd.Context(), contract.LoadBoardRequest{Now: &now, FactoryID: f.ID})
			return emit(s, res, formatter.FormatLoadBoard)
		},
	}
}

func newCapacityCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "capacity",
		Short: "Score project manager workload",
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := s.app.now()
			res := s.app.Capacity.Capacity(cmd.Context(), contract.CapacityRequest{
				Now:                   &now,
				IncludeBackupProjects: s.app.Config.IncludeBackupProjects,
			})
			return emit(s, res, formatter.FormatCapacity)
		},
	}
}

func newPipelineCmd(s *session) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Forecast the sales pipeline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := s.app.now()
			req := contract.PipelineRequest{Now: &now, FactoryCode: s.app.Config.Factory}
			if all {
				req.FactoryCode = ""
			}
			return emit(s, s.app.Pipeline.Forecast(cmd.Context(), req), formatter.FormatPipeline)
		},
	}
	cmd.Flags().BoolVar(&all, "all-factories", false, "Ignore --factory and include every quote")
	return cmd
}

// parseRange reads optional YYYY-MM-DD bounds. The end bound covers the
// whole day.
func parseRange(from, to string) (start, end *time.Time, err error) {
	if from != "" {
		t, err := time.Parse(dateLayout, from)
		if err != nil {
			return nil, nil, fmt.Errorf("--from: %w", err)
		}
		start = &t
	}
	if to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			return nil, nil, fmt.Errorf("--to: %w", err)
		}
		t = t.Add(24*time.Hour - time.Second)
		end = &t
	}
	return start, end, nil
}
