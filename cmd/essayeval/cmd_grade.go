package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/BuseDenizH/EssayEval-NLP/internal/artifacts"
	"github.com/BuseDenizH/EssayEval-NLP/internal/models"
	"github.com/BuseDenizH/EssayEval-NLP/internal/orchestration"
	"github.com/BuseDenizH/EssayEval-NLP/internal/projectconfig"
	"github.com/BuseDenizH/EssayEval-NLP/internal/projection"
	"github.com/BuseDenizH/EssayEval-NLP/internal/reporting"
	"github.com/BuseDenizH/EssayEval-NLP/internal/spinner"
	"github.com/BuseDenizH/EssayEval-NLP/internal/tokens"
	"github.com/BuseDenizH/EssayEval-NLP/internal/wizard"
)

type gradeOptions struct {
	file        string
	topic       string
	models      []string
	interactive bool
	export      []string
	save        bool
	noCache     bool
	outputDir   string
	snapshot    string
	upload      bool
	replay      string
	output      string
}

func newGradeCommand() *cobra.Command {
	var opts gradeOptions

	cmd := &cobra.Command{
		Use:   "grade [essay-file]",
		Short: "Score an essay with every selected model and compare the results",
		Long: `Score an essay with the selected models and print a side-by-side comparison.

The essay is read from --file (or the positional argument); "-" reads stdin.
Use --interactive to enter the topic, essay and models in a form instead.

Models may be given as ids or glob patterns (e.g. "deberta", "*former").
With --export the comparison is also written as xlsx, pdf and/or csv reports
to the output directory (--save writes the configured export.formats), and
uploaded to Azure Blob Storage with --upload.

Fully scored responses are cached under scoring.cache_dir when it is set.

Exit codes: 0 every model scored, 1 one or more models failed, 2 error.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if opts.file != "" {
					return errors.New("give the essay either as an argument or with --file, not both")
				}
				opts.file = args[0]
			}
			return runGrade(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", `Essay file ("-" for stdin)`)
	f.StringVarP(&opts.topic, "topic", "t", "", "Writing prompt the essay answers")
	f.StringSliceVarP(&opts.models, "models", "m", nil, "Model ids or glob patterns (default: configured models, else all)")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "Collect topic, essay and models interactively")
	f.StringSliceVar(&opts.export, "export", nil, "Report formats to write: xlsx, pdf, csv")
	f.BoolVar(&opts.save, "save", false, "Write the report formats configured under export.formats")
	f.BoolVar(&opts.noCache, "no-cache", false, "Always call the scoring service, ignoring scoring.cache_dir")
	f.StringVar(&opts.outputDir, "output-dir", "", "Directory for exported reports (default from config)")
	f.StringVar(&opts.snapshot, "snapshot", "", "PNG or JPEG image of the results, required by the pdf export")
	f.BoolVar(&opts.upload, "upload", false, "Upload exported reports to the configured blob container")
	f.StringVar(&opts.replay, "replay", "", "Answer from a recorded /predict response instead of calling the service")
	f.StringVarP(&opts.output, "output", "o", "text", "Console output: text, markdown or json")

	return cmd
}

func runGrade(cmd *cobra.Command, opts gradeOptions) error {
	cfg, err := projectconfig.Load(".")
	if err != nil {
		return err
	}

	essay, err := readEssay(cmd.InOrStdin(), opts.file)
	if err != nil {
		return err
	}
	topic := opts.topic
	selectors := opts.models
	if len(selectors) == 0 {
		selectors = cfg.Scoring.Models
	}

	if opts.interactive {
		in, err := wizard.RunGradeWizard(cmd.InOrStdin(), cmd.ErrOrStderr(), essay)
		if err != nil {
			return err
		}
		essay = in.Essay
		if in.Topic != "" {
			topic = in.Topic
		}
		if len(in.Models) > 0 {
			selectors = make([]string, len(in.Models))
			for i, id := range in.Models {
				selectors[i] = string(id)
			}
		}
	}

	ids, err := orchestration.ResolveModels(selectors, models.KnownModels)
	if err != nil {
		return err
	}

	// Fail on export misconfiguration before spending a scoring call.
	formats := opts.export
	if len(formats) == 0 && opts.save {
		formats = cfg.Export.Formats
	}
	exporters, err := reporting.ByFormat(formats, cfg.Export.Delimiter)
	if err != nil {
		return err
	}
	var snapshot []byte
	if opts.snapshot != "" {
		if snapshot, err = os.ReadFile(opts.snapshot); err != nil {
			return fmt.Errorf("reading snapshot: %w", err)
		}
	}

	outputDir := cfg.Export.OutputDir
	if opts.outputDir != "" {
		outputDir = opts.outputDir
	}
	sink, err := newSink(cfg, outputDir, opts.upload)
	if err != nil {
		return err
	}

	for _, tr := range tokens.CheckWindows(essay, ids) {
		slog.Debug("essay exceeds model input window", "model", tr.ModelID, "tokens", tr.Tokens, "limit", tr.Limit)
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s reads at most %d tokens; the essay is about %d and will be truncated\n", tr.ModelID, tr.Limit, tr.Tokens) //nolint:errcheck
	}

	client, err := newScoringClient(cfg, opts.replay, opts.noCache)
	if err != nil {
		return err
	}
	orch := orchestration.New(client, orchestration.WithLogger(slog.Default()))
	orch.OnProgress(func(e orchestration.ProgressEvent) {
		slog.Debug("benchmark progress", "event", e.EventType, "session", e.SessionID, "state", e.State, "duration_ms", e.DurationMs)
	})

	ctx, stopSignals := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stopSignals()

	stop := spinner.Start(cmd.ErrOrStderr(), fmt.Sprintf("Scoring essay with %d model(s)...", len(ids)))
	session, err := orch.Run(ctx, orchestration.RunRequest{
		Topic:        topic,
		DocumentText: essay,
		Models:       ids,
	})
	stop()
	if err != nil {
		if session != nil && session.Error != "" {
			return fmt.Errorf("%s: %w", session.Error, err)
		}
		return err
	}

	if err := printSession(cmd.OutOrStdout(), session, opts.output); err != nil {
		return err
	}

	if len(exporters) > 0 {
		if err := exportSession(ctx, cmd.ErrOrStderr(), session, exporters, snapshot, sink); err != nil {
			return err
		}
	}

	if failed := len(session.Results.Failures()); failed > 0 {
		return &ModelFailureError{Failed: failed, Total: session.Results.Len()}
	}
	return nil
}

func readEssay(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	switch path {
	case "":
		return "", nil
	case "-":
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading essay: %w", err)
	}
	return string(data), nil
}

func printSession(w io.Writer, session *models.BenchmarkSession, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Session *models.BenchmarkSession `json:"session"`
			Views   projection.Views         `json:"views"`
		}{session, projection.All(session.Results)})
	case "markdown", "md":
		_, err := io.WriteString(w, reporting.FormatMarkdown(session))
		return err
	case "text", "":
		renderScores(w, session.Results, !isTerminal(w))
		_, err := io.WriteString(w, reporting.FormatSummaryReport(session))
		return err
	default:
		return fmt.Errorf("unknown output format %q (want text, markdown or json)", format)
	}
}

func newSink(cfg *projectconfig.ProjectConfig, outputDir string, upload bool) (artifacts.Sink, error) {
	sinks := artifacts.Multi{artifacts.NewDirSink(outputDir)}
	if upload {
		if !cfg.Upload.Enabled() {
			return nil, errors.New("--upload needs upload.account_url and upload.container in the configuration")
		}
		blob, err := artifacts.NewBlobSink(cfg.Upload.AccountURL, cfg.Upload.Container, cfg.Upload.Prefix, nil)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, blob)
	}
	return sinks, nil
}

// exportSession writes every requested report. A failing format is reported
// and the remaining formats are still written.
func exportSession(ctx context.Context, w io.Writer, session *models.BenchmarkSession, exporters []reporting.Exporter, snapshot []byte, sink artifacts.Sink) error {
	in, err := reporting.NewInput(session, time.Now(), snapshot)
	if err != nil {
		return err
	}

	var errs []error
	for _, res := range reporting.ExportAll(ctx, exporters, in) {
		if res.Err != nil {
			if reporting.IsMissingSnapshot(res.Err) {
				errs = append(errs, fmt.Errorf("%w (pass --snapshot)", res.Err))
			} else {
				errs = append(errs, res.Err)
			}
			continue
		}
		loc, err := sink.Put(ctx, res.Artifact)
		if err != nil {
			errs = append(errs, fmt.Errorf("storing %s report: %w", res.Format, err))
			continue
		}
		fmt.Fprintf(w, "Saved %s report: %s\n", res.Format, loc) //nolint:errcheck
	}
	return errors.Join(errs...)
}
