// Package lesson loads lesson documents and implements the structural
// edits the sequence editor performs on them: add, clone, convert,
// rename, reorder, and cascading delete.
package lesson

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/courseforge/adaptivity/internal/ctxlog"
	"github.com/courseforge/adaptivity/internal/fsutil"
	"github.com/courseforge/adaptivity/internal/model"
)

// Load reads and decodes a single lesson JSON file.
func Load(path string) (*model.Lesson, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lesson file %s: %w", path, err)
	}
	var lesson model.Lesson
	if err := json.Unmarshal(data, &lesson); err != nil {
		return nil, fmt.Errorf("failed to decode lesson file %s: %w", path, err)
	}
	return &lesson, nil
}

// Loaded pairs a decoded lesson with the file it was read from.
type Loaded struct {
	Path   string
	Lesson *model.Lesson
}

// Discover finds every .json lesson file under path and loads them all.
// A path pointing at a single file loads just that lesson.
func Discover(ctx context.Context, path string) ([]Loaded, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindFilesByExtension(path, ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to find lesson files in %s: %w", path, err)
	}
	if len(files) == 0 {
		logger.Warn("No .json lesson files found at the specified path.", "path", path)
		return nil, nil
	}

	lessons := make([]Loaded, 0, len(files))
	for _, file := range files {
		logger.Debug("Loading lesson file.", "path", file)
		l, err := Load(file)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, Loaded{Path: file, Lesson: l})
	}
	return lessons, nil
}
