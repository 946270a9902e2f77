// Package transfer moves single capsules in and out of the tool as
// human-readable JSON documents.
package transfer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hollandm/pocketroom/internal/capsule"
	"github.com/hollandm/pocketroom/internal/errors"
)

// nonAlnum matches every character replaced when deriving a filename.
var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Export renders the capsule's full record as an indented JSON document.
func Export(c capsule.Capsule) ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return data, nil
}

// Filename derives the suggested export filename from the capsule title:
// non-alphanumeric characters replaced with underscores, lower-cased.
func Filename(c capsule.Capsule) string {
	return strings.ToLower(nonAlnum.ReplaceAllString(c.Title, "_")) + ".json"
}

// DefaultPath is where an export lands when the user gives no path.
func DefaultPath(baseDir string, c capsule.Capsule) string {
	return filepath.Join(baseDir, "exports", Filename(c))
}

// WriteFile exports the capsule to path. The document is written to a
// temporary file first and renamed into place so a failure preserves any
// existing file.
func WriteFile(c capsule.Capsule, path string) error {
	data, err := Export(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to write export file: %w", err))
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}
	return nil
}
