package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"trackctl/internal/scaffold"
)

var (
	runInputFolder string
	runFlags       []string
	runYes         bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Invoke the analysis entry point with the per-run parameters file",
	Long: `Requires the per-run parameters file written by "setup params". After an
interactive confirmation (skipped with --yes), the entry point is invoked
once per flag, or once with no flag, always passing the parameters file and
the configured fixed option.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := &scaffold.Scaffolder{
			InputDir: runInputFolder,
			RunDir:   ".",
			Log:      logger,
		}
		if _, err := s.Derive(); err != nil {
			return err
		}

		flags := runFlags
		if !runYes {
			confirmed, promptedFlags, err := promptRun(s.ParamsFile(), cmd.Flags().Changed("flags"))
			if err != nil {
				return err
			}
			if !confirmed {
				notef("aborted")
				return nil
			}
			if promptedFlags != nil {
				flags = promptedFlags
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		entry := tool(cfg.Tools.EntryPoint, ".")
		if err := s.RunAnalysis(ctx, entry, cfg.Tools.EntryOption, flags); err != nil {
			return err
		}
		statusf("analysis finished")
		return nil
	},
}

// promptRun asks for confirmation and, unless flags came from the command
// line, for optional analysis flags. It returns nil flags when the
// command-line value should stand.
func promptRun(paramsFile string, flagsGiven bool) (bool, []string, error) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Printf("%s %s? [y/N] ", styleWarn.Render("Run analysis with"), paramsFile)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false, nil, fmt.Errorf("reading confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
	default:
		return false, nil, nil
	}

	if flagsGiven {
		return true, nil, nil
	}

	fmt.Print("Optional flags, space separated (empty for none): ")
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, nil, fmt.Errorf("reading flags: %w", err)
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true, []string{}, nil
	}
	return true, fields, nil
}

func init() {
	runCmd.Flags().StringVarP(&runInputFolder, "input-folder", "i", "", "measurement input folder (required)")
	runCmd.Flags().StringSliceVar(&runFlags, "flags", nil, "analysis flags, one entry-point invocation each")
	runCmd.Flags().BoolVarP(&runYes, "yes", "y", false, "skip the interactive confirmation")
	_ = runCmd.MarkFlagRequired("input-folder")
}
