package naming

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

var (
	ErrLatticeNotFound  = errors.New("no matching lattice file")
	ErrLatticeAmbiguous = errors.New("multiple matching lattice files")
)

// LatticeError reports a failed lattice lookup, including the candidates
// that did match when the lookup was ambiguous.
type LatticeError struct {
	Kind       error
	Dir        string
	Convention Convention
	Candidates []string
}

func (e *LatticeError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s for %s %s in %s", e.Kind.Error(), e.Convention.Mode, e.Convention.Date, e.Dir)
	if len(e.Candidates) > 0 {
		msg += ": " + strings.Join(e.Candidates, ", ")
	}
	return msg
}

func (e *LatticeError) Unwrap() error { return e.Kind }

// IsLatticeFile reports whether name looks like a lattice description for the
// given convention: it must carry the _<mode>_ token, contain the date, and
// end in .sad (which covers .plain.sad).
func IsLatticeFile(name string, conv Convention) bool {
	if !strings.HasSuffix(name, ".sad") {
		return false
	}
	if !strings.Contains(name, "_"+string(conv.Mode)+"_") {
		return false
	}
	return strings.Contains(name, conv.Date)
}

// FindLattice locates the single lattice file for conv inside dir.
//
// The directory scan is sorted, so the error message for an ambiguous lookup
// is stable across runs. Zero matches and more than one match are both
// errors; the scaffolding convention requires exactly one lattice per model
// folder.
func FindLattice(dir string, conv Convention) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", dir, err)
	}

	var matches []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if IsLatticeFile(entry.Name(), conv) {
			matches = append(matches, entry.Name())
		}
	}
	sort.Strings(matches)

	switch len(matches) {
	case 0:
		return "", &LatticeError{Kind: ErrLatticeNotFound, Dir: dir, Convention: conv}
	case 1:
		return matches[0], nil
	default:
		return "", &LatticeError{Kind: ErrLatticeAmbiguous, Dir: dir, Convention: conv, Candidates: matches}
	}
}
