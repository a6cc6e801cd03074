package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	analyzeOpts   runOptions
	analyzeFormat string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score every valid sales call in an export and summarize per rep",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("analyze"); err != nil {
			return err
		}
		if err := checkFormat(analyzeFormat); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv()
		if err != nil {
			return err
		}

		data, err := loadExport(ctx, analyzeOpts.file)
		if err != nil {
			return err
		}

		p, err := env.pipeline(analyzeOpts)
		if err != nil {
			return eris.Wrap(err, "configure provider")
		}

		result, err := p.Analyze(ctx, data, logSink)
		if err != nil {
			return eris.Wrap(err, "analyze")
		}

		zap.L().Info("analysis complete",
			zap.Int("scored_calls", result.OverallStats.TotalCalls),
			zap.Int("reps", len(result.RepSummaries)),
		)

		if analyzeFormat == "table" {
			_, err := fmt.Fprint(cmd.OutOrStdout(), renderLeaderboard(result))
			return err
		}
		return writeJSON(cmd.OutOrStdout(), analyzeOpts.out, result)
	},
}

func checkFormat(f string) error {
	if f != "json" && f != "table" {
		return eris.Errorf("unknown format %q (want json or table)", f)
	}
	return nil
}

func addRunFlags(cmd *cobra.Command, opts *runOptions, format *string) {
	cmd.Flags().StringVar(&opts.file, "file", "", "call export spreadsheet path or URL (required)")
	cmd.Flags().StringVar(&opts.model, "model", "", "model provider: claude or openai (default from config)")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "provider API key (default from config)")
	cmd.Flags().StringVar(&opts.out, "out", "", "write JSON output to this file instead of stdout")
	cmd.Flags().StringVar(format, "format", "json", "output format: json or table")
	_ = cmd.MarkFlagRequired("file")
}

func init() {
	addRunFlags(analyzeCmd, &analyzeOpts, &analyzeFormat)
	rootCmd.AddCommand(analyzeCmd)
}
