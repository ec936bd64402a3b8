package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/BuseDenizH/EssayEval-NLP/internal/models"
	"github.com/BuseDenizH/EssayEval-NLP/internal/orchestration"
	"github.com/BuseDenizH/EssayEval-NLP/internal/projectconfig"
	"github.com/BuseDenizH/EssayEval-NLP/internal/webserver"
)

func newServeCommand() *cobra.Command {
	var (
		port      int
		noBrowser bool
		replay    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the benchmark dashboard API",
		Long: `Start the HTTP dashboard API on 127.0.0.1.

Endpoints:
  GET    /api/health            Health check
  GET    /api/models            Model reference catalog
  POST   /api/benchmark         Score an essay ({"topic","essay","models"})
  POST   /api/benchmark/cancel  Cancel the run in flight
  GET    /api/session           Current session and its projections
  DELETE /api/session           Clear the session
  GET    /api/export/{format}   Download an xlsx or csv report
  POST   /api/export/pdf        Download a PDF report; the body is the results image
  GET    /api/report.md         Markdown summary
  GET    /api/report.html       HTML summary`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := projectconfig.Load(".")
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			client, err := newScoringClient(cfg, replay, false)
			if err != nil {
				return err
			}
			defaults, err := orchestration.ResolveModels(cfg.Scoring.Models, models.KnownModels)
			if err != nil {
				return err
			}
			orch := orchestration.New(client,
				orchestration.WithLogger(slog.Default()),
				orchestration.WithDefaultModels(defaults...),
			)
			orch.OnProgress(func(e orchestration.ProgressEvent) {
				slog.Info("benchmark progress", "event", e.EventType, "session", e.SessionID, "state", e.State, "duration_ms", e.DurationMs)
			})

			srv, err := webserver.New(webserver.Config{
				Port:           cfg.Server.Port,
				AllowedOrigins: cfg.Server.AllowedOrigins,
				RateLimit:      cfg.Server.RateLimit,
				RateBurst:      cfg.Server.RateBurst,
				TrustedProxies: cfg.Server.TrustedProxies,
				Delimiter:      cfg.Export.Delimiter,
				NoBrowser:      noBrowser,
				Logger:         slog.Default(),
			}, orch)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", projectconfig.DefaultServerPort, "Port to listen on")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Do not open the report page in a browser")
	cmd.Flags().StringVar(&replay, "replay", "", "Answer from a recorded /predict response instead of calling the service")
	return cmd
}
