// Package template renders per-sweep simulator scripts by substituting a
// numeric value for a placeholder token in a template file.
package template

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPlaceholder is the token the sweep templates carry where the
// chromaticity value goes.
const DefaultPlaceholder = "{{zx}}"

var ErrPlaceholderMissing = errors.New("placeholder not found in template")

// Render replaces every occurrence of placeholder in the template text with
// the literal value string. A template without the placeholder is an error:
// it would make every sweep point run the identical script.
func Render(text, placeholder, value string) (string, error) {
	if placeholder == "" {
		return "", fmt.Errorf("placeholder must not be empty")
	}
	if !strings.Contains(text, placeholder) {
		return "", fmt.Errorf("%w: %q", ErrPlaceholderMissing, placeholder)
	}
	return strings.ReplaceAll(text, placeholder, value), nil
}

// RenderFile reads the template at src and returns its rendered content.
func RenderFile(src, placeholder, value string) (string, error) {
	text, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("reading template: %w", err)
	}
	rendered, err := Render(string(text), placeholder, value)
	if err != nil {
		return "", fmt.Errorf("template %s: %w", src, err)
	}
	return rendered, nil
}

// WriteTemp materializes a rendered script under dir and returns its path.
// The caller is responsible for removing the file once the simulator has
// consumed it.
func WriteTemp(dir, name, content string) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing temp script: %w", err)
	}
	return path, nil
}
