package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	extractOpts   runOptions
	extractFormat string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Triage and extract contact details without scoring",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("extract"); err != nil {
			return err
		}
		if err := checkFormat(extractFormat); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv()
		if err != nil {
			return err
		}

		data, err := loadExport(ctx, extractOpts.file)
		if err != nil {
			return err
		}

		p, err := env.pipeline(extractOpts)
		if err != nil {
			return eris.Wrap(err, "configure provider")
		}

		result, err := p.Extract(ctx, data, logSink)
		if err != nil {
			return eris.Wrap(err, "extract")
		}

		if extractFormat == "table" {
			_, err := fmt.Fprint(cmd.OutOrStdout(), renderExtraction(result))
			return err
		}
		return writeJSON(cmd.OutOrStdout(), extractOpts.out, result)
	},
}

func init() {
	addRunFlags(extractCmd, &extractOpts, &extractFormat)
	rootCmd.AddCommand(extractCmd)
}
