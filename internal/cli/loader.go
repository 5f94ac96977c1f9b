package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/roach88/cmdq/internal/harness"
)

// LoadError represents an error that occurred while collecting scenarios.
type LoadError struct {
	Code    string
	Message string
	Path    string // file or directory involved, if any
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadedScenario pairs a scenario with the file it came from.
type LoadedScenario struct {
	Path     string
	Scenario *harness.Scenario
}

// FindScenarioFiles expands paths into scenario files. Directories are
// walked recursively; files are taken as given. filter, when set, is a glob
// matched against the file name without its extension.
//
// The result is sorted and free of duplicates.
func FindScenarioFiles(paths []string, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("invalid filter pattern: %v", err)}
		}
	}

	var files []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: "path not found", Path: root}
		}
		if err != nil {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing path: %v", err), Path: root}
		}

		if !info.IsDir() {
			if matchesFilter(root, filter) {
				files = append(files, root)
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !harness.IsScenarioFile(path) || !matchesFilter(path, filter) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err), Path: root}
		}
	}

	slices.Sort(files)
	return slices.Compact(files), nil
}

func matchesFilter(path, filter string) bool {
	if filter == "" {
		return true
	}
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	matched, _ := filepath.Match(filter, name)
	return matched
}

// LoadScenarioFiles loads every file, collecting one LoadError per file
// that fails instead of stopping at the first.
func LoadScenarioFiles(files []string) ([]LoadedScenario, []error) {
	var (
		loaded []LoadedScenario
		errs   []error
	)
	for _, f := range files {
		s, err := harness.LoadScenario(f)
		if err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error(), Path: f})
			continue
		}
		loaded = append(loaded, LoadedScenario{Path: f, Scenario: s})
	}
	return loaded, errs
}

// goldenFilePath returns the path to the golden file for a scenario file:
// a golden/ directory next to it, named after the file.
func goldenFilePath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}
