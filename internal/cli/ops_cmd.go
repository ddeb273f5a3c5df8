package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/modbuild/pulse/internal/api"
	"github.com/modbuild/pulse/internal/cli/formatter"
	"github.com/modbuild/pulse/internal/service"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
)

func newSeedCmd(s *session) *cobra.Command {
	var code, name string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a demo factory with projects, floor data and quotes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if code == "" {
				code = s.app.Config.Factory
			}
			if code == "" {
				code = "DEMO"
			}
			res, err := s.app.Seed.Seed(cmd.Context(), service.SeedOptions{
				FactoryCode: code,
				FactoryName: name,
				Plant:       s.app.Config.PlantConfig(""),
				Now:         s.app.now(),
			})
			if err != nil {
				return err
			}
			if s.jsonOutput() {
				return writeJSON(s.opts.Stdout, res)
			}
			fmt.Fprintf(s.opts.Stdout, "%s %s\n", formatter.StyleGreen.Render("✔ Seeded"), formatter.Bold(res.Factory.Code+"  "+res.Factory.Name))
			fmt.Fprintln(s.opts.Stdout, formatter.Dim(fmt.Sprintf(
				"%d projects · %d work items · %d stations · %d workers · %d modules · %d inspections · %d quotes",
				res.Projects, res.WorkItems, res.Stations, res.Workers, res.Modules, res.Inspections, res.Quotes)))
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "Factory code, default --factory or DEMO")
	cmd.Flags().StringVar(&name, "name", "", "Factory display name")
	return cmd
}

func newExportCmd(s *session) *cobra.Command {
	var (
		path string
		days int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every metric for one factory as a JSON snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := s.factory(cmd.Context())
			if err != nil {
				return err
			}
			now := s.app.now()
			snap := s.app.Snapshot.Snapshot(cmd.Context(), service.SnapshotRequest{
				Now:                   &now,
				FactoryID:             f.ID,
				FactoryCode:           f.Code,
				OEEDays:               days,
				IncludeBackupProjects: s.app.Config.IncludeBackupProjects,
			})
			for _, e := range snap.Errors() {
				fmt.Fprintln(s.opts.Stderr, formatter.Warning(e.Error()))
			}

			if path == "" {
				return writeJSON(s.opts.Stdout, snap)
			}
			var buf bytes.Buffer
			if err := writeJSON(&buf, snap); err != nil {
				return err
			}
			if err := atomic.WriteFile(path, &buf); err != nil {
				return fmt.Errorf("writing snapshot: %w", err)
			}
			fmt.Fprintf(s.opts.Stderr, "%s %s\n", formatter.StyleGreen.Render("✔ Wrote"), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "Destination file, default stdout")
	cmd.Flags().IntVar(&days, "days", 7, "OEE window in trailing days")
	return cmd
}

func newServeCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve every metric over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := s.app.Config
			srv := api.New(s.app.apiServices(), api.Options{
				DefaultFactory:        cfg.Factory,
				IncludeBackupProjects: cfg.IncludeBackupProjects,
				Now:                   s.app.Now,
			})
			logger := slog.New(slog.NewTextHandler(s.opts.Stderr, nil))
			return serve(cmd.Context(), &http.Server{
				Addr:              cfg.HTTPAddr,
				Handler:           srv.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}, logger)
		},
	}
}

// serve runs httpServer until ctx is cancelled, then shuts it down.
func serve(ctx context.Context, httpServer *http.Server, logger *slog.Logger) error {
	errc := make(chan error, 1)
	logger.Info("api listening", "addr", httpServer.Addr)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("api shutting down")
	return httpServer.Shutdown(shutdownCtx)
}
