package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rintaro/es6link/internal/clilog"
	"github.com/rintaro/es6link/internal/config"
	"github.com/rintaro/es6link/internal/linkrun"
)

var (
	flagConfig string
	flagRoot   string
	flagOutput string
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "es6link",
		Short: "Static-link a graph of ES2015 modules into one concatenated output",
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to es6link.yaml (default: ./es6link.yaml if present)")
	root.PersistentFlags().StringVar(&flagRoot, "root", "", "directory of *.mod.json module fixtures (default: .)")

	root.AddCommand(newCheckCommand())
	root.AddCommand(newLinkCommand())
	root.AddCommand(newWatchCommand())
	return root
}

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run the linker and report diagnostics without emitting output",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig, flagRoot, "")
			if err != nil {
				return err
			}
			result, err := linkrun.Run(cfg.Root)
			if err != nil {
				return err
			}
			errorCount := clilog.Print(result.Log)
			clilog.Summary(errorCount)
			if errorCount > 0 {
				return fmt.Errorf("%d error(s)", errorCount)
			}
			return nil
		},
	}
}

func newLinkCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Run the linker and write the concatenated, rewritten output",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig, flagRoot, flagOutput)
			if err != nil {
				return err
			}
			result, err := linkrun.Run(cfg.Root)
			if err != nil {
				return err
			}
			errorCount := clilog.Print(result.Log)
			if errorCount > 0 {
				clilog.Summary(errorCount)
				return fmt.Errorf("%d error(s)", errorCount)
			}

			out := result.Concat()
			if cfg.Output == "" {
				fmt.Print(out)
				return nil
			}
			return os.WriteFile(cfg.Output, []byte(out), 0o644)
		},
	}
	cmd.Flags().StringVar(&flagOutput, "out", "", "write the concatenated output here instead of stdout")
	return cmd
}
