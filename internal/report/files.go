// Package report writes recommendation results to disk for offline review:
// one JSON file per student, a career-to-content link file and an xlsx
// workbook.
package report

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/goccy/go-json"

	"github.com/p-n-ai/pai-pathways/internal/recommend"
)

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// FileName returns the per-student file name, e.g. "rec_Y3_U1.json".
func FileName(studentID string) string {
	return "rec_" + unsafeFileChars.ReplaceAllString(studentID, "_") + ".json"
}

// Outcome reports what happened to a student's file.
type Outcome string

const (
	OutcomeCreated     Outcome = "created"
	OutcomeUpdated     Outcome = "updated"
	OutcomeOverwritten Outcome = "overwritten" // existing file was not valid JSON
	OutcomeSkipped     Outcome = "skipped"     // update-only and no file yet
)

// FileWriter writes per-student result files into a directory.
type FileWriter struct {
	dir        string
	updateOnly bool
}

// NewFileWriter creates dir if needed. With updateOnly set, only files that
// already exist are touched; unknown fields in them are kept.
func NewFileWriter(dir string, updateOnly bool) (*FileWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	return &FileWriter{dir: dir, updateOnly: updateOnly}, nil
}

// Path returns where a student's file lives.
func (w *FileWriter) Path(studentID string) string {
	return filepath.Join(w.dir, FileName(studentID))
}

// Write stores one result.
func (w *FileWriter) Write(res recommend.Result) (Outcome, error) {
	path := w.Path(res.User.ID)

	existing, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if w.updateOnly {
			slog.Warn("skipping student without existing file", "student_id", res.User.ID, "path", path)
			return OutcomeSkipped, nil
		}
		return OutcomeCreated, writeJSON(path, res)
	case err != nil:
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	if !w.updateOnly {
		return OutcomeUpdated, writeJSON(path, res)
	}

	var doc map[string]any
	if err := json.Unmarshal(existing, &doc); err != nil || doc == nil {
		slog.Warn("existing file is not a JSON object, overwriting", "path", path, "error", err)
		return OutcomeOverwritten, writeJSON(path, res)
	}

	merged, err := mergeResult(doc, res)
	if err != nil {
		return "", err
	}
	return OutcomeUpdated, writeJSON(path, merged)
}

// mergeResult replaces the recommendation lists and generation time of an
// existing document and leaves everything else alone.
func mergeResult(doc map[string]any, res recommend.Result) (map[string]any, error) {
	recs, err := toGeneric(res.Recommendations)
	if err != nil {
		return nil, err
	}
	doc["recommendations"] = recs

	meta, _ := doc["meta"].(map[string]any)
	if meta == nil {
		meta = map[string]any{}
	}
	meta["generatedAt"] = res.Meta.GeneratedAt
	doc["meta"] = meta
	return doc, nil
}

func toGeneric(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding: %w", err)
	}
	return out, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
