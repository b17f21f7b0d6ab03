package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"trackctl/internal/config"
	"trackctl/internal/naming"
	"trackctl/internal/scaffold"
	"trackctl/internal/toolchain"
)

// Exit codes. Precondition failures (missing folders, unmatched naming,
// absent lattice or parameters files) are distinguished from external tool
// failures, which propagate the child's status when one exists.
const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitUsage        = 2
	ExitPrecondition = 3
)

var (
	verbose    bool
	configPath string

	logger *zap.Logger
	cfg    config.Config
)

var (
	styleOK   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleErr  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	styleDim  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

var rootCmd = &cobra.Command{
	Use:   "trackctl",
	Short: "Orchestrate tracking-simulator studies and their project layout",
	Long: `trackctl drives accelerator tracking studies around an external simulator.

It runs chromaticity sweeps (template substitution, simulation, SDDS
conversion, cleanup) and scaffolds per-measurement projects following the
input_/output_/model_ + HER|LER + YYYY_MM_DD naming convention, including
parameters-file rewriting and file-dictionary generation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}

		cfg, err = config.Load(configPath, cmd.Flags().Changed("config"))
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultFile, "run configuration file")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err}
	})

	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(filedictCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(cleanCmd)
}

// usageError marks an invalid invocation, as opposed to a failed run.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{fmt.Errorf(format, args...)}
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintln(os.Stderr, styleErr.Render("error:")+" "+err.Error())
	return exitCodeFor(err)
}

func exitCodeFor(err error) int {
	var usage *usageError
	if errors.As(err, &usage) {
		return ExitUsage
	}
	if errors.Is(err, scaffold.ErrPrecondition) {
		return ExitPrecondition
	}
	var convErr *naming.ConventionError
	if errors.As(err, &convErr) {
		return ExitPrecondition
	}
	var latErr *naming.LatticeError
	if errors.As(err, &latErr) {
		return ExitPrecondition
	}
	return toolchain.ExitCode(err, ExitFailure)
}

// tool builds the external Command for a configured tool entry.
func tool(tc config.ToolConfig, dir string) *toolchain.Command {
	cmd := toolchain.NewCommand(tc.Program(), tc.Args()...)
	cmd.Dir = dir
	return cmd
}

func statusf(format string, args ...any) {
	fmt.Println(styleOK.Render("•") + " " + fmt.Sprintf(format, args...))
}

func notef(format string, args ...any) {
	fmt.Println(styleDim.Render(fmt.Sprintf(format, args...)))
}
