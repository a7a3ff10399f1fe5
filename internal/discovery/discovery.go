package discovery

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"calibcat/internal/config"
	"calibcat/internal/fileutil"
	"calibcat/internal/logging"
)

// ErrNoFiles reports that no category produced a single candidate file.
var ErrNoFiles = errors.New("no candidate files found")

// FindFilepathsByCategory returns absolute candidate paths per category
// name. Categories without candidates are present with an empty list and
// are warned about; ErrNoFiles is returned only when every category is
// empty.
func FindFilepathsByCategory(cfg *config.Config, basedir string, logger *slog.Logger) (map[string][]string, error) {
	logger = logging.NewComponentLogger(logger, "discovery")
	if basedir == "" {
		basedir = "."
	}
	base, err := filepath.Abs(basedir)
	if err != nil {
		return nil, fmt.Errorf("resolve base directory %q: %w", basedir, err)
	}

	out := make(map[string][]string, len(cfg.Categories()))
	total := 0
	for _, cat := range cfg.Categories() {
		catLogger := logger.With(logging.Category(cat.Name()))
		paths, err := categoryPaths(cat, base, catLogger)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", cat.Name(), err)
		}
		out[cat.Name()] = paths
		total += len(paths)
		if len(paths) == 0 {
			logging.WarnWithContext(catLogger, "category has no candidate files", "category_empty",
				logging.String("dir", cat.Dir()),
				logging.String(logging.FieldImpact, "category will be empty"),
			)
			continue
		}
		catLogger.Debug("candidate files found", logging.Int("count", len(paths)))
	}

	if total == 0 {
		return nil, fmt.Errorf("%w under base directory %s: check that the base directory is right and that dir, files, suffixes and exclude_files select existing files", ErrNoFiles, base)
	}
	return out, nil
}

// CategoryFilepaths returns the candidate paths of a single category.
func CategoryFilepaths(cat *config.Category, basedir string, logger *slog.Logger) ([]string, error) {
	base, err := filepath.Abs(basedir)
	if err != nil {
		return nil, fmt.Errorf("resolve base directory %q: %w", basedir, err)
	}
	return categoryPaths(cat, base, logging.NewComponentLogger(logger, "discovery"))
}

// CategoryDirectories returns the directories a walk of cat lists: its
// dir and, with include_subdirectories, every subdirectory reached. For an
// explicit files list it returns the parent directory of each file.
func CategoryDirectories(cat *config.Category, basedir string, logger *slog.Logger) ([]string, error) {
	base, err := filepath.Abs(basedir)
	if err != nil {
		return nil, fmt.Errorf("resolve base directory %q: %w", basedir, err)
	}
	if files := cat.Files(); len(files) > 0 {
		seen := map[string]bool{}
		var dirs []string
		for _, f := range files {
			abs, err := fileutil.Resolve(base, f)
			if err != nil {
				return nil, err
			}
			if d := filepath.Dir(abs); !seen[d] {
				seen[d] = true
				dirs = append(dirs, d)
			}
		}
		return dirs, nil
	}
	w, err := walkCategory(cat, base, logging.NewComponentLogger(logger, "discovery"))
	if err != nil {
		return nil, err
	}
	return w.dirs, nil
}

func categoryPaths(cat *config.Category, base string, logger *slog.Logger) ([]string, error) {
	if files := cat.Files(); len(files) > 0 {
		return explicitFiles(files, base, logger)
	}
	w, err := walkCategory(cat, base, logger)
	if err != nil {
		return nil, err
	}
	return w.found, nil
}

func walkCategory(cat *config.Category, base string, logger *slog.Logger) (*walker, error) {
	root, err := fileutil.Resolve(base, cat.Dir())
	if err != nil {
		return nil, err
	}
	w := &walker{
		suffixes: cat.Suffixes(),
		exclude:  cat.ExcludeFiles(),
		recurse:  cat.IncludeSubdirectories(),
		follow:   cat.FollowSymbolicLinks(),
		visited:  map[string]bool{},
		logger:   logger,
	}
	w.markVisited(root)
	w.walk(root)
	return w, nil
}

func explicitFiles(files []string, base string, logger *slog.Logger) ([]string, error) {
	seen := make(map[string]bool, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		abs, err := fileutil.Resolve(base, f)
		if err != nil {
			return nil, err
		}
		if !fileutil.IsRegularFile(abs) {
			logging.WarnWithContext(logger, "listed file does not exist", "file_missing",
				logging.Path(abs),
				logging.String(logging.FieldImpact, "file skipped"),
			)
			continue
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		out = append(out, abs)
	}
	return out, nil
}

type walker struct {
	suffixes []string
	exclude  []string
	recurse  bool
	follow   bool
	visited  map[string]bool
	found    []string
	dirs     []string
	logger   *slog.Logger
}

// markVisited records the real path of dir and reports whether it was new.
func (w *walker) markVisited(dir string) bool {
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		real = dir
	}
	if w.visited[real] {
		return false
	}
	w.visited[real] = true
	return true
}

func (w *walker) walk(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logging.WarnWithContext(w.logger, "cannot list directory", "walk_error",
			logging.Path(dir),
			logging.Error(err),
			logging.String(logging.FieldImpact, "directory skipped"),
		)
		return
	}
	w.dirs = append(w.dirs, dir)

	for _, entry := range entries {
		name := entry.Name()
		full := filepath.Join(dir, name)

		mode := entry.Type()
		linked := mode&os.ModeSymlink != 0
		if linked {
			info, err := os.Stat(full)
			if err != nil {
				w.logger.Debug("skipping dangling link", logging.Path(full), logging.Error(err))
				continue
			}
			mode = info.Mode().Type()
		}

		switch {
		case mode.IsDir():
			if !w.recurse || (linked && !w.follow) {
				continue
			}
			if !w.markVisited(full) {
				continue
			}
			w.walk(full)
		case mode.IsRegular():
			if !fileutil.HasAnySuffix(name, w.suffixes) || fileutil.ContainsAny(name, w.exclude) {
				continue
			}
			w.found = append(w.found, full)
		}
	}
}
