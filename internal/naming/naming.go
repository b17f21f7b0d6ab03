// Package naming derives the project naming convention from folder and file
// names.
//
// Measurement folders follow the pattern
//
//	input_<RING>_..._<YYYY_MM_DD>
//
// where RING is HER or LER. Sibling output and model folders replace the
// input_ prefix. Lattice files embed the same ring and date tokens in their
// name. All derivations here are pure functions from names to results;
// callers decide what to do on disk.
package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Mode is the ring selector embedded in the naming convention.
type Mode string

const (
	ModeHER Mode = "HER"
	ModeLER Mode = "LER"
)

const (
	inputPrefix  = "input_"
	outputPrefix = "output_"
	modelPrefix  = "model_"
)

var (
	ErrNoMode = errors.New("no ring mode in folder name")
	ErrNoDate = errors.New("no date in folder name")
)

// ConventionError wraps a naming derivation failure with the offending name.
type ConventionError struct {
	Kind error
	Name string
}

func (e *ConventionError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %q (expected ..._HER_... or ..._LER_... with a YYYY_MM_DD date)", e.Kind.Error(), e.Name)
}

func (e *ConventionError) Unwrap() error { return e.Kind }

var datePattern = regexp.MustCompile(`\d{4}_\d{2}_\d{2}`)

// Convention is the pair of tokens every derived name is built from.
type Convention struct {
	// Mode is HER or LER.
	Mode Mode

	// Date is the measurement date in YYYY_MM_DD form.
	Date string
}

// Tag is the "<mode>_<date>" substring shared by measurement data files.
func (c Convention) Tag() string {
	return string(c.Mode) + "_" + c.Date
}

// Parse extracts the Convention from a folder path's base name.
//
// The mode must appear as a delimited _HER_ or _LER_ token and the date must
// match YYYY_MM_DD. Either token missing is an error; there is no fallback.
func Parse(folder string) (Convention, error) {
	name := filepath.Base(filepath.Clean(folder))

	var mode Mode
	switch {
	case strings.Contains(name, "_HER_"):
		mode = ModeHER
	case strings.Contains(name, "_LER_"):
		mode = ModeLER
	default:
		return Convention{}, &ConventionError{Kind: ErrNoMode, Name: name}
	}

	date := datePattern.FindString(name)
	if date == "" {
		return Convention{}, &ConventionError{Kind: ErrNoDate, Name: name}
	}

	return Convention{Mode: mode, Date: date}, nil
}

// OutputDirFor maps an input folder path to its sibling output folder path.
// Only the input_ prefix of the base name is replaced; the rest of the name
// and the parent directory are preserved.
func OutputDirFor(inputDir string) string {
	return siblingWithPrefix(inputDir, outputPrefix)
}

// ModelDirFor maps an input folder path to its sibling model folder path.
func ModelDirFor(inputDir string) string {
	return siblingWithPrefix(inputDir, modelPrefix)
}

// Strip returns the base name with the input_ prefix removed. Per-run files
// (parameters, file dictionaries) are named after this stripped token.
func Strip(folder string) string {
	name := filepath.Base(filepath.Clean(folder))
	return strings.TrimPrefix(name, inputPrefix)
}

func siblingWithPrefix(inputDir, prefix string) string {
	clean := filepath.Clean(inputDir)
	name := filepath.Base(clean)
	derived := prefix + strings.TrimPrefix(name, inputPrefix)
	parent := filepath.Dir(clean)
	if parent == "." {
		return derived
	}
	return filepath.Join(parent, derived)
}
