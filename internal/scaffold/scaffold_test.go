package scaffold

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"trackctl/internal/naming"
	"trackctl/internal/params"
)

const paramsTemplate = `# base parameters
ringID = LER
lattice = /placeholder/lattice.sad
input_data_path = /placeholder/input
model_path = /placeholder/model
main_output_path = /placeholder/output
file_dict = placeholder.txt
n_turns = 2000
`

// newScaffolder lays out a measurement root with one input folder holding a
// lattice file, plus a base parameters template in the run dir.
func newScaffolder(t *testing.T) *Scaffolder {
	t.Helper()
	root := t.TempDir()
	runDir := t.TempDir()

	inputDir := filepath.Join(root, "input_HER_run_2024_05_01")
	require.NoError(t, os.MkdirAll(inputDir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(inputDir, "sler_HER_optics_2024_05_01.sad"),
		[]byte("MOMENTUM = 7.007 GEV;\n"), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(inputDir, "bpm_HER_2024_05_01_0001.data"),
		[]byte("data"), 0o644))

	tmpl := filepath.Join(runDir, "parameters.txt")
	require.NoError(t, os.WriteFile(tmpl, []byte(paramsTemplate), 0o644))

	return &Scaffolder{
		InputDir:       inputDir,
		RunDir:         runDir,
		ParamsTemplate: tmpl,
	}
}

func TestDerive(t *testing.T) {
	s := newScaffolder(t)
	conv, err := s.Derive()
	require.NoError(t, err)
	require.Equal(t, naming.ModeHER, conv.Mode)
	require.Equal(t, "2024_05_01", conv.Date)
}

func TestDerive_Preconditions(t *testing.T) {
	t.Run("missing folder", func(t *testing.T) {
		s := &Scaffolder{InputDir: filepath.Join(t.TempDir(), "input_HER_x_2024_05_01")}
		_, err := s.Derive()
		require.ErrorIs(t, err, ErrPrecondition)
	})

	t.Run("unset folder", func(t *testing.T) {
		s := &Scaffolder{}
		_, err := s.Derive()
		require.ErrorIs(t, err, ErrPrecondition)
	})

	t.Run("bad naming", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "input_nodate")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		s := &Scaffolder{InputDir: dir}
		_, err := s.Derive()
		require.ErrorIs(t, err, ErrPrecondition)
		require.ErrorIs(t, err, naming.ErrNoMode)
	})
}

func TestCreateOutput_Idempotent(t *testing.T) {
	s := newScaffolder(t)

	out, err := s.CreateOutput()
	require.NoError(t, err)
	require.Equal(t, "output_HER_run_2024_05_01", filepath.Base(out))
	require.DirExists(t, out)

	// Second call succeeds on the pre-existing folder.
	_, err = s.CreateOutput()
	require.NoError(t, err)
}

func TestSeedModel_CopiesLatticeUnchanged(t *testing.T) {
	s := newScaffolder(t)

	dst, err := s.SeedModel()
	require.NoError(t, err)
	require.Equal(t, "model_HER_run_2024_05_01", filepath.Base(filepath.Dir(dst)))

	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "MOMENTUM = 7.007 GEV;\n", string(b))
}

func TestSeedModel_NoLattice(t *testing.T) {
	s := newScaffolder(t)
	require.NoError(t, os.Remove(filepath.Join(s.InputDir, "sler_HER_optics_2024_05_01.sad")))

	_, err := s.SeedModel()
	require.ErrorIs(t, err, ErrPrecondition)
	require.ErrorIs(t, err, naming.ErrLatticeNotFound)
}

func TestWriteParams_RewritesSixKeys(t *testing.T) {
	s := newScaffolder(t)
	_, err := s.SeedModel()
	require.NoError(t, err)

	path, err := s.WriteParams()
	require.NoError(t, err)
	require.Equal(t, "parameters_HER_run_2024_05_01.txt", filepath.Base(path))

	doc, err := params.Load(path)
	require.NoError(t, err)

	get := func(key string) string {
		v, ok := doc.Get(key)
		require.True(t, ok, key)
		return v
	}

	inputAbs, _ := filepath.Abs(s.InputDir)
	modelAbs, _ := filepath.Abs(s.ModelDir())
	outputAbs, _ := filepath.Abs(s.OutputDir())

	require.Equal(t, "HER", get(params.KeyRingID))
	require.Equal(t, filepath.Join(modelAbs, "sler_HER_optics_2024_05_01.sad"), get(params.KeyLattice))
	require.Equal(t, inputAbs, get(params.KeyInputDataPath))
	require.Equal(t, modelAbs, get(params.KeyModelPath))
	require.Equal(t, outputAbs, get(params.KeyMainOutputPath))
	require.Equal(t, "file_dict_HER_run_2024_05_01.txt", get(params.KeyFileDict))

	// Unrelated keys survive.
	require.Equal(t, "2000", get("n_turns"))
}

func TestWriteParams_RequiresSeededModel(t *testing.T) {
	s := newScaffolder(t)

	_, err := s.WriteParams()
	require.ErrorIs(t, err, ErrPrecondition)
	require.ErrorIs(t, err, naming.ErrLatticeNotFound)
}

func TestWriteParams_Idempotent(t *testing.T) {
	s := newScaffolder(t)
	_, err := s.SeedModel()
	require.NoError(t, err)

	path, err := s.WriteParams()
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = s.WriteParams()
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	require.Equal(t, string(first), string(second))
}

func TestRunAnalysis(t *testing.T) {
	s := newScaffolder(t)
	_, err := s.SeedModel()
	require.NoError(t, err)
	paramsFile, err := s.WriteParams()
	require.NoError(t, err)

	t.Run("no flags runs once", func(t *testing.T) {
		entry := &fakeTool{name: "main.py"}
		require.NoError(t, s.RunAnalysis(context.Background(), entry, "--tracking", nil))
		require.Equal(t, [][]string{{paramsFile, "--tracking"}}, entry.calls)
	})

	t.Run("one invocation per flag", func(t *testing.T) {
		entry := &fakeTool{name: "main.py"}
		require.NoError(t, s.RunAnalysis(context.Background(), entry, "--tracking", []string{"--spectra", "--rdt"}))
		require.Equal(t, [][]string{
			{paramsFile, "--tracking", "--spectra"},
			{paramsFile, "--tracking", "--rdt"},
		}, entry.calls)
	})

	t.Run("missing parameters file", func(t *testing.T) {
		bare := newScaffolder(t)
		entry := &fakeTool{name: "main.py"}
		err := bare.RunAnalysis(context.Background(), entry, "--tracking", nil)
		require.ErrorIs(t, err, ErrPrecondition)
		require.Empty(t, entry.calls)
	})
}

func TestClean(t *testing.T) {
	s := newScaffolder(t)
	_, err := s.CreateOutput()
	require.NoError(t, err)
	_, err = s.SeedModel()
	require.NoError(t, err)
	paramsFile, err := s.WriteParams()
	require.NoError(t, err)

	require.NoError(t, s.Clean())

	require.NoDirExists(t, s.OutputDir())
	require.NoDirExists(t, s.ModelDir())

	// Per-run parameter files are kept.
	require.FileExists(t, paramsFile)

	// The input folder is never touched.
	require.DirExists(t, s.InputDir)
}

type fakeTool struct {
	name  string
	calls [][]string
}

func (f *fakeTool) Name() string { return f.name }

func (f *fakeTool) Invoke(_ context.Context, args ...string) error {
	f.calls = append(f.calls, append([]string(nil), args...))
	return nil
}
