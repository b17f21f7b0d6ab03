package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"trackctl/internal/watch"
)

var watchSuffix string

var watchCmd = &cobra.Command{
	Use:   "watch DIR",
	Short: "Convert new tracking output files in DIR as they appear",
	Long: `Watches DIR and invokes the configured converter for each newly written
file with the matching suffix. Runs until interrupted; a failed conversion
is logged and the watch continues.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		w := &watch.Watcher{
			Dir:       args[0],
			Suffix:    watchSuffix,
			Converter: tool(cfg.Tools.Converter, args[0]),
			Log:       logger,
		}

		notef("watching %s (ctrl-c to stop)", args[0])
		err := w.Run(ctx)
		if errors.Is(err, context.Canceled) {
			statusf("watch stopped")
			return nil
		}
		return err
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchSuffix, "suffix", ".sdds", "file suffix to convert")
}
