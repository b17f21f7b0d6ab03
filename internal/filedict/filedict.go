// Package filedict generates the file dictionary the analysis entry point
// uses to map measurement .data files to the SDDS files they convert to.
//
// The dictionary is a brace-wrapped list of {"<data path>", "<sdds name>"}
// pairs, one per matching .data file, in sorted name order.
package filedict

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"trackctl/internal/naming"
)

// Generate scans inputDir for .data files carrying the convention's
// "<mode>_<date>" tag and writes the dictionary to
// runDir/file_dict_<stripped input name>.txt. It returns the written path.
func Generate(inputDir, runDir string) (string, error) {
	conv, err := naming.Parse(inputDir)
	if err != nil {
		return "", err
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return "", fmt.Errorf("reading input folder: %w", err)
	}

	tag := conv.Tag()
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".data") && strings.Contains(name, tag) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	pairs := make([]string, len(names))
	for i, name := range names {
		dataPath := filepath.Join(inputDir, name)
		sddsName := strings.TrimSuffix(name, ".data") + ".sdds"
		pairs[i] = fmt.Sprintf("{%q, %q}", dataPath, sddsName)
	}

	out := filepath.Join(runDir, "file_dict_"+naming.Strip(inputDir)+".txt")
	content := "{\n" + strings.Join(pairs, ",\n") + "\n}"
	if err := os.WriteFile(out, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing file dictionary: %w", err)
	}
	return out, nil
}
