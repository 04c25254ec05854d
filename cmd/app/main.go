package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yanqian/doc-summarizer/internal/domain/summarizer"
	"github.com/yanqian/doc-summarizer/internal/infra/config"
	"github.com/yanqian/doc-summarizer/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "docsum",
		Short:         "Summarize PDF, DOCX, text and markdown documents with Gemini",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newSummarizeCommand())
	cmd.AddCommand(newLogsCommand())
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	app, cleanup, err := initializeApp(cfg)
	if err != nil {
		return fmt.Errorf("failed to wire application: %w", err)
	}
	defer cleanup()

	if err := app.Run(cmd.Context()); err != nil {
		return fmt.Errorf("application stopped with error: %w", err)
	}
	return nil
}

func newSummarizeCommand() *cobra.Command {
	var (
		chunkSize    int
		chunkOverlap int
		outDir       string
	)
	cmd := &cobra.Command{
		Use:   "summarize <file>",
		Short: "Summarize one document and write <stem>_summary.txt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cli, cleanup, err := initializeCLI(cfg)
			if err != nil {
				return fmt.Errorf("failed to wire application: %w", err)
			}
			defer cleanup()

			processing := summarizer.ProcessingConfig{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap}
			_, err = cli.SummarizeFile(cmd.Context(), args[0], outDir, processing, cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "characters per chunk (2000-6000, default from config)")
	cmd.Flags().IntVar(&chunkOverlap, "chunk-overlap", 0, "characters shared by neighbouring chunks (200-1000, default from config)")
	cmd.Flags().StringVar(&outDir, "out", ".", "directory for the summary file")
	return cmd
}

func newLogsCommand() *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the tail of today's log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			entries, err := logger.RecentLines(cfg.Log.Dir, cfg.Log.FilePrefix, time.Now(), lines)
			if err != nil {
				return err
			}
			for _, line := range entries {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&lines, "lines", 50, "number of trailing lines to print")
	return cmd
}
