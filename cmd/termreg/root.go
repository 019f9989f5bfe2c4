package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/japaniel/termreg/pkg/config"
	"github.com/japaniel/termreg/pkg/logging"
)

var version = "dev"

// app carries what every subcommand needs once the config is loaded.
type app struct {
	cfgFile string
	cfg     config.Config
	cfgUsed string
	logger  *logging.Logger
	stdout  io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout}
	root := &cobra.Command{
		Use:           "termreg",
		Short:         "Merge, review and publish the term and place-name registry",
		Long:          `termreg folds raw glossary, gazetteer and spelling collections into one canonical multi-locale registry, exports translation tables, and promotes reviewed output.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.logger.Sync()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "",
		"config file (default: ./"+config.DefaultFile+")")

	root.AddCommand(
		newInitCmd(a),
		newMergeCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newPromoteCmd(a),
		newLookupCmd(a),
		newHistoryCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if cmd.Name() == "init" {
		return nil
	}
	cfg, used, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	a.cfg, a.cfgUsed, a.logger = cfg, used, logger
	a.logger.Debug("config loaded", "file", used, "sources", len(cfg.Sources), "spelling_sources", len(cfg.SpellingSources))
	return nil
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfgFile
			if path == "" {
				path = config.DefaultFile
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
}
