package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"trackctl/internal/report"
	"trackctl/internal/sweep"
)

var (
	sweepValues   []string
	sweepTemplate string
	sweepWorkdir  string
	sweepReport   string
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the chromaticity sweep: simulate, convert, clean up per value",
	Long: `For each sweep value, substitute the value into the template script,
run the simulator on the rendered script, convert the raw tracking output to
SDDS, and remove the temp script and intermediates. The first failing step
aborts the run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		values := cfg.Sweep.Values
		if cmd.Flags().Changed("values") {
			values = sweepValues
		}
		tmpl := cfg.Sweep.Template
		if cmd.Flags().Changed("template") {
			tmpl = sweepTemplate
		}
		if len(values) == 0 {
			return usagef("no sweep values configured; pass --values or set sweep.values")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rec := report.NewRecorder("sweep")
		driver := &sweep.Driver{
			WorkDir:       sweepWorkdir,
			Template:      tmpl,
			Placeholder:   cfg.Sweep.Placeholder,
			OutputPattern: cfg.Sweep.OutputPattern,
			Intermediates: cfg.Sweep.Intermediates,
			Simulator:     tool(cfg.Tools.Simulator, sweepWorkdir),
			Converter:     tool(cfg.Tools.Converter, sweepWorkdir),
			Recorder:      rec,
			Log:           logger,
		}

		notef("sweeping %d values with template %s", len(values), tmpl)
		runErr := driver.Run(ctx, values)

		if sweepReport != "" {
			if err := rec.Finish().WriteJSON(sweepReport); err != nil {
				logger.Warn("could not write report", zap.Error(err))
			} else {
				notef("report written to %s", sweepReport)
			}
		}
		if runErr != nil {
			return runErr
		}
		statusf("sweep finished: %d values", len(values))
		return nil
	},
}

func init() {
	sweepCmd.Flags().StringSliceVar(&sweepValues, "values", nil, "sweep values (verbatim decimal strings)")
	sweepCmd.Flags().StringVar(&sweepTemplate, "template", "", "simulator script template")
	sweepCmd.Flags().StringVar(&sweepWorkdir, "workdir", ".", "directory to run the sweep in")
	sweepCmd.Flags().StringVar(&sweepReport, "report", "", "write a JSON run report to this path")
}
