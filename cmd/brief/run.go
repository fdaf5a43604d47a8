package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/JaimeStill/brief/internal/dispatch"
	"github.com/JaimeStill/brief/internal/extract"
	"github.com/JaimeStill/brief/internal/pipeline"
	"github.com/JaimeStill/brief/internal/summarize"
)

func NewRunCommand() *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Run a graph against a document and print the final state",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "graph",
				Aliases:  []string{"g"},
				Usage:    "Path to the graph JSON file",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "document",
				Aliases:  []string{"d"},
				Usage:    "Path to the PDF or text document",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "recipient",
				Usage: "Dispatch the summary to this address when the graph sends email",
			},
			&cli.StringFlag{
				Name:    "english-url",
				Usage:   "Summarization endpoint for English text",
				Sources: cli.EnvVars("BRIEF_SUMMARIZE_ENGLISH_URL"),
			},
			&cli.StringFlag{
				Name:    "arabic-url",
				Usage:   "Summarization endpoint for Arabic text",
				Sources: cli.EnvVars("BRIEF_SUMMARIZE_ARABIC_URL"),
			},
			&cli.StringFlag{
				Name:     "token",
				Usage:    "Bearer token for the summarization endpoints",
				Required: true,
				Sources:  cli.EnvVars("BRIEF_SUMMARIZE_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "dispatch-url",
				Usage:   "Mail relay URL; dispatch is disabled when empty",
				Sources: cli.EnvVars("BRIEF_DISPATCH_URL"),
			},
			&cli.IntFlag{
				Name:    "workers",
				Usage:   "Concurrent PDF page decoders",
				Value:   4,
				Sources: cli.EnvVars("BRIEF_PIPELINE_EXTRACT_WORKERS"),
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "Timeout for each outbound request",
				Value:   2 * time.Minute,
				Sources: cli.EnvVars("BRIEF_PIPELINE_REQUEST_TIMEOUT"),
			},
		},
		Action: run,
	}
}

func run(ctx context.Context, command *cli.Command) error {
	logger := newLogger(command.String("log-level"))

	g, err := readGraph(command.String("graph"))
	if err != nil {
		return err
	}

	path := command.String("document")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	summarizeCfg := &summarize.Config{
		EnglishURL: command.String("english-url"),
		ArabicURL:  command.String("arabic-url"),
		Token:      command.String("token"),
	}
	if err := summarizeCfg.Finalize(nil); err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	dispatchCfg := &dispatch.Config{URL: command.String("dispatch-url")}
	if err := dispatchCfg.Finalize(nil); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}

	client := &http.Client{Timeout: command.Duration("timeout")}

	var dispatcher pipeline.Dispatcher
	if dispatchCfg.Enabled() {
		dispatcher = dispatch.New(dispatchCfg, client, logger)
	}

	engine := pipeline.New(
		extract.NewDefaultRegistry(logger, int(command.Int("workers"))),
		summarize.New(summarizeCfg, client, logger),
		dispatcher,
		logger,
	)

	sess := pipeline.NewSession()
	sess.Select(&extract.Document{
		Name:        filepath.Base(path),
		ContentType: extract.Detect(data),
		Data:        data,
	})

	state := engine.Run(ctx, g, sess, printTransition)

	if recipient := command.String("recipient"); recipient != "" && state.DispatchEnabled {
		state, err = engine.Dispatch(ctx, sess, recipient, printTransition)
		if err != nil {
			return err
		}
	}

	if err := writeJSON(state); err != nil {
		return err
	}
	if state.Phase == pipeline.PhaseFailed {
		return cli.Exit(state.Error, 1)
	}
	return nil
}

func printTransition(s pipeline.State) {
	line := fmt.Sprintf("phase=%s", s.Phase)
	if s.Outcome != "" {
		line += fmt.Sprintf(" outcome=%s", s.Outcome)
	}
	if s.DispatchStatus != dispatch.StatusIdle {
		line += fmt.Sprintf(" dispatch=%s", s.DispatchStatus)
	}
	fmt.Fprintln(os.Stderr, line)
}
