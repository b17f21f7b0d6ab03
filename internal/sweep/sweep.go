// Package sweep drives a chromaticity parameter study: one simulator run per
// sweep value, each followed by SDDS conversion and intermediate cleanup.
//
// The driver is strictly sequential and fail-fast. The first failing step
// aborts the whole run; files produced so far are left on disk for
// inspection, never rolled back.
package sweep

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"trackctl/internal/report"
	"trackctl/internal/template"
	"trackctl/internal/toolchain"
)

// Driver runs the sweep.
type Driver struct {
	// WorkDir is where temp scripts are written and globs resolved; the
	// external tools also run here.
	WorkDir string

	// Template is the simulator script carrying the placeholder.
	Template string

	// Placeholder is the token substituted per value.
	Placeholder string

	// OutputPattern names the converted SDDS file; %s is the value.
	OutputPattern string

	// Intermediates are glob patterns (relative to WorkDir) for the raw
	// tracking files removed after each conversion.
	Intermediates []string

	// Simulator and Converter are the external programs.
	Simulator toolchain.Tool
	Converter toolchain.Tool

	// Recorder collects the run report; nil disables recording.
	Recorder *report.Recorder

	// Log defaults to a nop logger.
	Log *zap.Logger
}

func (d *Driver) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

// Run executes the sweep over values in order.
func (d *Driver) Run(ctx context.Context, values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("no sweep values given")
	}
	if d.Simulator == nil || d.Converter == nil {
		return fmt.Errorf("simulator and converter tools are required")
	}

	for _, value := range values {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.runValue(ctx, value); err != nil {
			return fmt.Errorf("sweep value %s: %w", value, err)
		}
	}
	return nil
}

// runValue performs one sweep point: render, simulate, convert, clean up.
func (d *Driver) runValue(ctx context.Context, value string) error {
	log := d.logger().With(zap.String("value", value))

	scriptName := fmt.Sprintf("track_%s.sad", value)
	var scriptPath string

	err := d.Recorder.Timed("render", "", value, nil, nil, func() error {
		rendered, err := template.RenderFile(d.templatePath(), d.Placeholder, value)
		if err != nil {
			return err
		}
		scriptPath, err = template.WriteTemp(d.WorkDir, scriptName, rendered)
		return err
	})
	if err != nil {
		return err
	}
	log.Debug("rendered sweep script", zap.String("script", scriptPath))

	simArgs := []string{scriptPath}
	err = d.Recorder.Timed("simulate", d.Simulator.Name(), value, simArgs,
		func(err error) int { return toolchain.ExitCode(err, 1) },
		func() error { return d.Simulator.Invoke(ctx, simArgs...) })
	if err != nil {
		return fmt.Errorf("simulator: %w", err)
	}
	log.Info("simulation finished")

	sddsName := fmt.Sprintf(d.OutputPattern, value)
	convArgs := []string{sddsName}
	err = d.Recorder.Timed("convert", d.Converter.Name(), value, convArgs,
		func(err error) int { return toolchain.ExitCode(err, 1) },
		func() error { return d.Converter.Invoke(ctx, convArgs...) })
	if err != nil {
		return fmt.Errorf("converter: %w", err)
	}
	log.Info("conversion finished", zap.String("sdds", sddsName))

	return d.Recorder.Timed("cleanup", "", value, nil, nil, func() error {
		return d.cleanup(scriptPath)
	})
}

func (d *Driver) templatePath() string {
	if filepath.IsAbs(d.Template) {
		return d.Template
	}
	return filepath.Join(d.WorkDir, d.Template)
}

// cleanup removes the temp script and the raw tracking intermediates for the
// sweep point just finished.
func (d *Driver) cleanup(scriptPath string) error {
	if err := os.Remove(scriptPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing temp script: %w", err)
	}
	for _, pattern := range d.Intermediates {
		full := pattern
		if !filepath.IsAbs(pattern) {
			full = filepath.Join(d.WorkDir, pattern)
		}
		matches, err := filepath.Glob(full)
		if err != nil {
			return fmt.Errorf("bad intermediate pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("removing intermediate %s: %w", m, err)
			}
		}
	}
	return nil
}
