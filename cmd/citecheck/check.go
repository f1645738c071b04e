package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jackzampolin/citecheck/internal/cache"
	"github.com/jackzampolin/citecheck/internal/config"
	"github.com/jackzampolin/citecheck/internal/document"
	"github.com/jackzampolin/citecheck/internal/extract"
	"github.com/jackzampolin/citecheck/internal/fetch"
	"github.com/jackzampolin/citecheck/internal/home"
	"github.com/jackzampolin/citecheck/internal/providers"
	"github.com/jackzampolin/citecheck/internal/report"
	"github.com/jackzampolin/citecheck/internal/resolve"
)

var checkMode string

var checkCmd = &cobra.Command{
	Use:   "check <manuscript>",
	Short: "Check a manuscript's citations against its reference list",
	Long: `Check extracts citation markers and reference entries from a manuscript,
reports missing citations and unused references, and runs relevance
analysis for every citation through the configured model backend.

The manuscript is read as UTF-8 plain text or markdown; paragraphs are
separated by blank lines and markdown table rows become table cells.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(
		&checkMode, "mode", "", "analysis mode: full, quick or subjective (default from config)",
	)
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	hd, err := home.New(homeDir)
	if err != nil {
		return err
	}
	if err := hd.EnsureExists(); err != nil {
		return err
	}

	cm, err := config.NewManager(cfgFile)
	if err != nil {
		return err
	}
	cfg := cm.Get()
	if checkMode != "" {
		if !config.ValidMode(checkMode) {
			return fmt.Errorf("unsupported analysis mode: %q", checkMode)
		}
		cfg.Analysis.Mode = checkMode
	}

	// An unreadable document is the one fatal input error; everything
	// after this point degrades instead of failing the run.
	doc, err := document.LoadFile(args[0])
	if err != nil {
		return err
	}

	res := extract.Extract(doc)
	validation := extract.Validate(res)
	resolver := resolve.New(doc, res.HeadingIndex)
	logger.Info("document extracted",
		"blocks", len(doc.Blocks), "citations", len(res.Citations), "references", len(res.References))

	store, err := cache.NewFSStore(hd.CachePath(), logger)
	if err != nil {
		return err
	}

	fetcher := fetch.New(fetch.Config{
		Cache: store,
		Policy: &fetch.Policy{
			Attempts: uint(cfg.Fetch.MaxRetries),
			MinDelay: time.Duration(cfg.Fetch.RetryDelayMinSeconds) * time.Second,
			MaxDelay: time.Duration(cfg.Fetch.RetryDelayMaxSeconds) * time.Second,
		},
		Timeout: time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
		Logger:  logger,
	})

	orch := report.New(report.Config{
		Backend:        providers.New(cfg, logger),
		Fetcher:        fetcher,
		Mode:           cfg.Analysis.Mode,
		MaxPromptChars: cfg.Analysis.MaxPromptChars,
		Sink:           &report.FileSink{Path: hd.ProgressPath(), Logger: logger},
		Logger:         logger,
	})

	rep := orch.Run(cmd.Context(), res, validation, resolver)
	return printOutput(cmd, rep)
}

func printOutput(cmd *cobra.Command, v any) error {
	switch outputFormat {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	default:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
	}
	return nil
}
