// Package params reads and rewrites flat "key = value" parameters files.
//
// The analysis entry point consumes these files, so rewrites must be
// conservative: comments, blank lines, unknown keys, and the original
// spacing around "=" all survive a load/save round trip byte for byte.
// Only values that are explicitly Set change.
package params

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Keys rewritten by the scaffolding driver for every run.
const (
	KeyRingID         = "ringID"
	KeyLattice        = "lattice"
	KeyInputDataPath  = "input_data_path"
	KeyModelPath      = "model_path"
	KeyMainOutputPath = "main_output_path"
	KeyFileDict       = "file_dict"
)

type lineKind int

const (
	lineRaw lineKind = iota // comment, blank, or anything without "="
	lineEntry
)

type line struct {
	kind lineKind

	// raw is the verbatim text for lineRaw lines.
	raw string

	// Entry lines are reassembled as pre + key + sep + value.
	pre   string
	key   string
	sep   string
	value string
}

// Document is an ordered parameters file held in memory.
type Document struct {
	lines []line
}

// Load reads a parameters file into a Document.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening parameters file: %w", err)
	}
	defer f.Close()

	doc := &Document{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		doc.lines = append(doc.lines, parseLine(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading parameters file: %w", err)
	}
	return doc, nil
}

func parseLine(text string) line {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return line{kind: lineRaw, raw: text}
	}
	eq := strings.Index(text, "=")
	if eq < 0 {
		return line{kind: lineRaw, raw: text}
	}

	keyPart := text[:eq]
	valuePart := text[eq+1:]

	key := strings.TrimSpace(keyPart)
	if key == "" {
		return line{kind: lineRaw, raw: text}
	}

	// pre and sep preserve the whitespace around the key and "=" so Save
	// reproduces the file's original formatting.
	pre := keyPart[:len(keyPart)-len(strings.TrimLeft(keyPart, " \t"))]
	trailingWS := keyPart[len(strings.TrimRight(keyPart, " \t")):]
	leadingWS := valuePart[:len(valuePart)-len(strings.TrimLeft(valuePart, " \t"))]

	return line{
		kind:  lineEntry,
		pre:   pre,
		key:   key,
		sep:   trailingWS + "=" + leadingWS,
		value: strings.TrimLeft(valuePart, " \t"),
	}
}

// Get returns the value for key and whether the key exists.
// With duplicate keys the last occurrence wins, matching how the
// downstream reader resolves them.
func (d *Document) Get(key string) (string, bool) {
	value, found := "", false
	for _, l := range d.lines {
		if l.kind == lineEntry && l.key == key {
			value, found = l.value, true
		}
	}
	return value, found
}

// Set overwrites the value of key in place. Every occurrence of an existing
// key is rewritten; a key not present yet is appended as "key = value".
// Repeated Set calls with the same arguments are idempotent.
func (d *Document) Set(key, value string) {
	found := false
	for i := range d.lines {
		if d.lines[i].kind == lineEntry && d.lines[i].key == key {
			d.lines[i].value = value
			found = true
		}
	}
	if !found {
		d.lines = append(d.lines, line{kind: lineEntry, key: key, sep: " = ", value: value})
	}
}

// Keys returns the distinct entry keys in file order.
func (d *Document) Keys() []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, l := range d.lines {
		if l.kind != lineEntry {
			continue
		}
		if _, dup := seen[l.key]; dup {
			continue
		}
		seen[l.key] = struct{}{}
		keys = append(keys, l.key)
	}
	return keys
}

// String renders the document back to text.
func (d *Document) String() string {
	var b strings.Builder
	for _, l := range d.lines {
		switch l.kind {
		case lineEntry:
			b.WriteString(l.pre)
			b.WriteString(l.key)
			b.WriteString(l.sep)
			b.WriteString(l.value)
		default:
			b.WriteString(l.raw)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Save writes the document to path, creating or truncating it.
func (d *Document) Save(path string) error {
	if err := os.WriteFile(path, []byte(d.String()), 0o644); err != nil {
		return fmt.Errorf("writing parameters file: %w", err)
	}
	return nil
}
