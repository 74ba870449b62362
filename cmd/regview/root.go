package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/joshuapare/regview/internal/browser"
	"github.com/joshuapare/regview/internal/config"
	"github.com/joshuapare/regview/internal/logger"
)

var (
	logFiles        []string
	ignoreBaseBlock bool
)

var rootCmd = &cobra.Command{
	Use:   "regview [flags] HIVE_FILE",
	Short: "Browse Windows registry hive files in the terminal",
	Long: `regview opens a registry hive file read-only and shows its keys and
values in two panes. Up to two transaction logs (-L) are replayed in memory
before browsing; the hive file itself is never modified. With -I the base
block is ignored and the root key is found by scanning the hive bins, which
recovers hives whose header was destroyed.

Press / or ctrl+f to search keys, value names and value data with a regular
expression.`,
	Args:          cobra.ExactArgs(1),
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringArrayVarP(&logFiles, "log", "L", nil,
		"transaction log file; may be given twice")
	rootCmd.Flags().BoolVarP(&ignoreBaseBlock, "ignore-base-block", "I", false,
		"ignore the base block and scan for the root key (e.g. after ransomware damage)")
	config.SetupFlags(rootCmd)
	rootCmd.SetVersionTemplate(fmt.Sprintf("regview %s\n  commit: %s\n  built: %s\n", version, commit, date))
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.Options{
		Enabled: cfg.LoggingEnabled(),
		LogDir:  cfg.LogDir,
		Level:   logger.LevelFromVerbosity(cfg.Verbose),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logging: %v\n", err)
	}
	defer logger.Close()
	logger.Info("starting regview", "hive", args[0], "logs", logFiles,
		"ignore_base_block", ignoreBaseBlock, "config", cfg.File)

	h, err := browser.Open(args[0], logFiles, ignoreBaseBlock, browser.WithSearchLimits(cfg.Search))
	if err != nil {
		logger.Error("open failed", "hive", args[0], "error", err)
		return err
	}
	defer h.Close()

	p := tea.NewProgram(NewModel(h), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("running TUI: %w", err)
	}
	logger.Info("regview exited normally")
	return nil
}
