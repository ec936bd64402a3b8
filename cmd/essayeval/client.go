package main

import (
	"log/slog"

	"github.com/BuseDenizH/EssayEval-NLP/internal/cache"
	"github.com/BuseDenizH/EssayEval-NLP/internal/projectconfig"
	"github.com/BuseDenizH/EssayEval-NLP/internal/scoring"
)

// newScoringClient returns a replay client when a recorded response is
// configured, otherwise an HTTP client for the configured service. The HTTP
// client answers from scoring.cache_dir unless noCache is set.
func newScoringClient(cfg *projectconfig.ProjectConfig, replayFlag string, noCache bool) (scoring.Client, error) {
	replay := cfg.Scoring.ReplayFile
	if replayFlag != "" {
		replay = replayFlag
	}
	if replay != "" {
		slog.Debug("using recorded scoring response", "file", replay)
		return scoring.LoadReplayClient(replay)
	}

	var client scoring.Client = scoring.NewHTTPClient(cfg.Scoring.URL,
		scoring.WithTimeout(cfg.Scoring.Timeout),
		scoring.WithLogger(slog.Default()),
	)
	if cfg.Scoring.CacheDir != "" && !noCache {
		client = cache.NewClient(client, cache.New(cfg.Scoring.CacheDir), slog.Default())
	}
	return client, nil
}
