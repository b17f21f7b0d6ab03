// Package scaffold prepares the directory layout for one measurement
// analysis: sibling output and model folders derived from the input folder
// name, a seeded lattice file, and a per-run parameters file pointing at all
// of them.
//
// Every operation is independently invocable and fail-fast. Missing
// preconditions (folder, lattice, parameters file) abort with a descriptive
// error wrapping ErrPrecondition; partially created state is deliberately
// left in place.
package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"trackctl/internal/naming"
	"trackctl/internal/params"
	"trackctl/internal/toolchain"
)

// ErrPrecondition marks a missing required input (folder, file, or naming
// token). The CLI maps it to its own exit code, distinct from external tool
// failures.
var ErrPrecondition = errors.New("precondition failed")

func preconditionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}

// Scaffolder operates on one input measurement folder.
type Scaffolder struct {
	// InputDir is the measurement input folder; it must exist.
	InputDir string

	// RunDir is where per-run files (parameters, file dictionary) live,
	// typically the directory trackctl was started in.
	RunDir string

	// ParamsTemplate is the base parameters file copied per run.
	ParamsTemplate string

	// Log defaults to a nop logger.
	Log *zap.Logger
}

func (s *Scaffolder) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// Derive validates the input folder and extracts the naming convention.
func (s *Scaffolder) Derive() (naming.Convention, error) {
	if s.InputDir == "" {
		return naming.Convention{}, preconditionf("input folder not set")
	}
	info, err := os.Stat(s.InputDir)
	if err != nil {
		return naming.Convention{}, preconditionf("input folder %s does not exist", s.InputDir)
	}
	if !info.IsDir() {
		return naming.Convention{}, preconditionf("%s is not a directory", s.InputDir)
	}
	conv, err := naming.Parse(s.InputDir)
	if err != nil {
		return naming.Convention{}, fmt.Errorf("%w: %s", ErrPrecondition, err)
	}
	return conv, nil
}

// OutputDir is the derived sibling output folder path.
func (s *Scaffolder) OutputDir() string { return naming.OutputDirFor(s.InputDir) }

// ModelDir is the derived sibling model folder path.
func (s *Scaffolder) ModelDir() string { return naming.ModelDirFor(s.InputDir) }

// ParamsFile is the per-run parameters file path under RunDir.
func (s *Scaffolder) ParamsFile() string {
	return filepath.Join(s.RunDir, "parameters_"+naming.Strip(s.InputDir)+".txt")
}

// FileDictName is the per-run file dictionary name the parameters refer to.
func (s *Scaffolder) FileDictName() string {
	return "file_dict_" + naming.Strip(s.InputDir) + ".txt"
}

// CreateOutput creates the output folder. Idempotent: a pre-existing folder
// is not an error.
func (s *Scaffolder) CreateOutput() (string, error) {
	if _, err := s.Derive(); err != nil {
		return "", err
	}
	out := s.OutputDir()
	if err := os.MkdirAll(out, 0o755); err != nil {
		return "", fmt.Errorf("creating output folder: %w", err)
	}
	s.logger().Info("output folder ready", zap.String("path", out))
	return out, nil
}

// SeedModel creates the model folder and copies the single lattice file
// matching the naming convention from the input folder into it.
func (s *Scaffolder) SeedModel() (string, error) {
	conv, err := s.Derive()
	if err != nil {
		return "", err
	}

	latticeName, err := naming.FindLattice(s.InputDir, conv)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrPrecondition, err)
	}

	model := s.ModelDir()
	if err := os.MkdirAll(model, 0o755); err != nil {
		return "", fmt.Errorf("creating model folder: %w", err)
	}

	src := filepath.Join(s.InputDir, latticeName)
	dst := filepath.Join(model, latticeName)
	if err := copyFile(src, dst); err != nil {
		return "", fmt.Errorf("copying lattice: %w", err)
	}
	s.logger().Info("model folder seeded",
		zap.String("path", model), zap.String("lattice", latticeName))
	return dst, nil
}

// WriteParams copies the base parameters template to the per-run file and
// rewrites the path keys to the derived layout. The model folder must
// already hold its lattice file (SeedModel runs first).
func (s *Scaffolder) WriteParams() (string, error) {
	conv, err := s.Derive()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(s.ParamsTemplate); err != nil {
		return "", preconditionf("parameters template %s not found", s.ParamsTemplate)
	}

	latticeName, err := naming.FindLattice(s.ModelDir(), conv)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrPrecondition, err)
	}

	doc, err := params.Load(s.ParamsTemplate)
	if err != nil {
		return "", err
	}

	inputAbs, err := filepath.Abs(s.InputDir)
	if err != nil {
		return "", fmt.Errorf("resolving input folder: %w", err)
	}
	modelAbs, err := filepath.Abs(s.ModelDir())
	if err != nil {
		return "", fmt.Errorf("resolving model folder: %w", err)
	}
	outputAbs, err := filepath.Abs(s.OutputDir())
	if err != nil {
		return "", fmt.Errorf("resolving output folder: %w", err)
	}

	doc.Set(params.KeyRingID, string(conv.Mode))
	doc.Set(params.KeyLattice, filepath.Join(modelAbs, latticeName))
	doc.Set(params.KeyInputDataPath, inputAbs)
	doc.Set(params.KeyModelPath, modelAbs)
	doc.Set(params.KeyMainOutputPath, outputAbs)
	doc.Set(params.KeyFileDict, s.FileDictName())

	dst := s.ParamsFile()
	if err := doc.Save(dst); err != nil {
		return "", err
	}
	s.logger().Info("parameters written", zap.String("path", dst))
	return dst, nil
}

// RunAnalysis invokes the analysis entry point once per flag, or once with
// no flag, always passing the per-run parameters file and the fixed option.
// The parameters file must exist (WriteParams runs first).
func (s *Scaffolder) RunAnalysis(ctx context.Context, entry toolchain.Tool, option string, flags []string) error {
	paramsFile := s.ParamsFile()
	if _, err := os.Stat(paramsFile); err != nil {
		return preconditionf("parameters file %s not found, run the params step first", paramsFile)
	}

	invocations := [][]string{}
	if len(flags) == 0 {
		invocations = append(invocations, []string{paramsFile, option})
	}
	for _, flag := range flags {
		invocations = append(invocations, []string{paramsFile, option, flag})
	}

	for _, args := range invocations {
		s.logger().Info("running analysis", zap.Strings("args", args))
		if err := entry.Invoke(ctx, args...); err != nil {
			return fmt.Errorf("analysis: %w", err)
		}
	}
	return nil
}

// Clean removes the derived output folder tree and the model folder. The
// per-run parameters and file dictionary are kept for reference.
func (s *Scaffolder) Clean() error {
	if _, err := s.Derive(); err != nil {
		return err
	}
	for _, dir := range []string{s.OutputDir(), s.ModelDir()} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("removing %s: %w", dir, err)
		}
		s.logger().Info("removed", zap.String("path", dir))
	}
	return nil
}

// copyFile copies src to dst byte for byte, truncating any existing dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
