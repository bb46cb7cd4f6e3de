package main

import (
	"io"
	"os"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Wladim1r/pystyle/internal/config"
	"github.com/Wladim1r/pystyle/internal/driver"
	"github.com/Wladim1r/pystyle/internal/logging"
	"github.com/Wladim1r/pystyle/internal/model"
	"github.com/Wladim1r/pystyle/internal/report"
)

type rootOptions struct {
	configPath string
	format     string
	color      string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "pystyle <location>",
		Short: "Check Python source files for PEP 8 style violations",
		Long: `pystyle reports style violations S001-S012 in a Python file, or in every
.py file directly inside a directory. Findings are printed one per line:

  <path>: Line <n>: <code> <message>`,
		Args:    cobra.ExactArgs(1),
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", config.DefaultFile, "path to pystyle YAML configuration file")
	cmd.Flags().StringVar(&opts.format, "format", "text", "output format (text|json|sarif)")
	cmd.Flags().StringVar(&opts.color, "color", config.ColorAuto, "colorize text output (auto|always|never)")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "enable debug logging on stderr")

	return cmd
}

func runLint(cmd *cobra.Command, opts *rootOptions, location string) (err error) {
	cmd.SilenceUsage = true

	log, err := logging.New(opts.debug)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// From here on failures are reported through the logger.
	cmd.SilenceErrors = true
	defer func() {
		if err != nil {
			log.Errorw("pystyle failed", "location", location, "error", err)
		}
	}()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("format") {
		cfg.Format = opts.format
	}
	if cmd.Flags().Changed("color") {
		cfg.Color = opts.color
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	log.Debugw("configuration", "config", opts.configPath, "extensions", cfg.Extensions, "format", format, "color", cfg.Color)

	out := cmd.OutOrStdout()
	rep, err := report.New(format, out, report.Options{
		Color:       useColor(cfg.Color, out),
		ToolVersion: cmd.Root().Version,
	})
	if err != nil {
		return err
	}

	linter, err := driver.New(osfs.Default,
		driver.WithExtensions(cfg.Extensions...),
		driver.WithLogger(log),
	)
	if err != nil {
		return err
	}

	runErr := linter.Run(cmd.Context(), location, func(_ string, diags []model.Diagnostic) error {
		return rep.Report(diags)
	})
	// Buffered formats still write what was collected before a failure.
	if err := rep.Flush(); err != nil && runErr == nil {
		return err
	}
	return runErr
}

// useColor decides whether text output is colorized. auto enables colors
// only when w is a terminal.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
