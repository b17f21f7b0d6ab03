package sweep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"trackctl/internal/report"
	"trackctl/internal/toolchain"
)

// fakeTool records invocations and optionally fails, so the driver is
// testable without the real simulator.
type fakeTool struct {
	name    string
	calls   [][]string
	failOn  int // 1-based call index that fails; 0 never fails
	onCall  func(args []string)
}

func (f *fakeTool) Name() string { return f.name }

func (f *fakeTool) Invoke(_ context.Context, args ...string) error {
	f.calls = append(f.calls, args)
	if f.onCall != nil {
		f.onCall(args)
	}
	if f.failOn != 0 && len(f.calls) == f.failOn {
		return &toolchain.ExitError{Tool: f.name, Code: 2}
	}
	return nil
}

func newDriver(t *testing.T) (*Driver, *fakeTool, *fakeTool) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Outputdata"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "track_template.sad"),
		[]byte("chrom = {{zx}};\n"), 0o644))

	sim := &fakeTool{name: "sad"}
	conv := &fakeTool{name: "converter"}
	return &Driver{
		WorkDir:       dir,
		Template:      "track_template.sad",
		Placeholder:   "{{zx}}",
		OutputPattern: "tracking_%s.sdds",
		Intermediates: []string{"Outputdata/tracking_x*", "Outputdata/tracking_y*"},
		Simulator:     sim,
		Converter:     conv,
	}, sim, conv
}

func TestRun_InvokesToolsPerValueInOrder(t *testing.T) {
	d, sim, conv := newDriver(t)

	// The simulator leaves raw tracking files behind; the driver must
	// remove them after conversion.
	sim.onCall = func(args []string) {
		for _, n := range []string{"tracking_x_raw.dat", "tracking_y_raw.dat"} {
			os.WriteFile(filepath.Join(d.WorkDir, "Outputdata", n), []byte("raw"), 0o644)
		}
	}

	require.NoError(t, d.Run(context.Background(), []string{"1.5", "2.2"}))

	require.Len(t, sim.calls, 2)
	require.Len(t, conv.calls, 2)

	// The simulator gets the rendered temp script for its value.
	require.Equal(t, []string{filepath.Join(d.WorkDir, "track_1.5.sad")}, sim.calls[0])
	require.Equal(t, []string{filepath.Join(d.WorkDir, "track_2.2.sad")}, sim.calls[1])

	// The converter gets the per-value SDDS name.
	require.Equal(t, []string{"tracking_1.5.sdds"}, conv.calls[0])
	require.Equal(t, []string{"tracking_2.2.sdds"}, conv.calls[1])

	// Temp scripts and intermediates are gone, the template survives.
	require.NoFileExists(t, filepath.Join(d.WorkDir, "track_1.5.sad"))
	require.NoFileExists(t, filepath.Join(d.WorkDir, "track_2.2.sad"))
	require.NoFileExists(t, filepath.Join(d.WorkDir, "Outputdata", "tracking_x_raw.dat"))
	require.NoFileExists(t, filepath.Join(d.WorkDir, "Outputdata", "tracking_y_raw.dat"))
	require.FileExists(t, filepath.Join(d.WorkDir, "track_template.sad"))
}

func TestRun_TempScriptHasValueSubstituted(t *testing.T) {
	d, sim, _ := newDriver(t)

	var content string
	sim.onCall = func(args []string) {
		b, err := os.ReadFile(args[0])
		if err == nil {
			content = string(b)
		}
	}

	require.NoError(t, d.Run(context.Background(), []string{"2.2"}))
	require.Equal(t, "chrom = 2.2;\n", content)
}

func TestRun_SimulatorFailureAbortsRun(t *testing.T) {
	d, sim, conv := newDriver(t)
	sim.failOn = 1

	err := d.Run(context.Background(), []string{"1.5", "2.2"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "sweep value 1.5")
	require.Equal(t, 2, toolchain.ExitCode(err, 1))

	// Fail fast: the converter never ran and value 2.2 was never started.
	require.Empty(t, conv.calls)
	require.Len(t, sim.calls, 1)

	// No rollback: the temp script for the failed value stays behind.
	require.FileExists(t, filepath.Join(d.WorkDir, "track_1.5.sad"))
}

func TestRun_ConverterFailureAbortsRun(t *testing.T) {
	d, _, conv := newDriver(t)
	conv.failOn = 1

	err := d.Run(context.Background(), []string{"1.5"})
	require.Error(t, err)

	var exitErr *toolchain.ExitError
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, "converter", exitErr.Tool)
}

func TestRun_MissingTemplateFails(t *testing.T) {
	d, _, _ := newDriver(t)
	d.Template = "absent_template.sad"

	err := d.Run(context.Background(), []string{"1.5"})
	require.Error(t, err)
}

func TestRun_NoValuesIsAnError(t *testing.T) {
	d, _, _ := newDriver(t)
	require.Error(t, d.Run(context.Background(), nil))
}

func TestRun_CancelledContextStopsBetweenValues(t *testing.T) {
	d, sim, _ := newDriver(t)

	ctx, cancel := context.WithCancel(context.Background())
	sim.onCall = func([]string) { cancel() }

	err := d.Run(ctx, []string{"1.0", "1.2"})
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, sim.calls, 1)
}

func TestRun_RecordsReportSteps(t *testing.T) {
	d, _, _ := newDriver(t)
	rec := report.NewRecorder("sweep")
	d.Recorder = rec

	require.NoError(t, d.Run(context.Background(), []string{"1.5"}))

	run := rec.Finish()
	require.True(t, run.OK)

	kinds := make([]string, len(run.Steps))
	for i, s := range run.Steps {
		kinds[i] = s.Kind
	}
	require.Equal(t, []string{"render", "simulate", "convert", "cleanup"}, kinds)

	for _, s := range run.Steps {
		require.Equal(t, "1.5", s.Value)
	}
}

func TestRun_ValueFormattingIsVerbatim(t *testing.T) {
	d, _, conv := newDriver(t)

	require.NoError(t, d.Run(context.Background(), []string{"2.20"}))
	require.Equal(t, []string{fmt.Sprintf("tracking_%s.sdds", "2.20")}, conv.calls[0])
}
