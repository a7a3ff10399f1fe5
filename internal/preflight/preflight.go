package preflight

import (
	"fmt"

	"calibcat/internal/config"
	"calibcat/internal/fileutil"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Path   string
	Passed bool
	Detail string
}

// RunAll checks every category of cfg. Relative paths resolve against
// basedir.
func RunAll(cfg *config.Config, basedir string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, cat := range cfg.Categories() {
		if files := cat.Files(); len(files) > 0 {
			for _, f := range files {
				name := fmt.Sprintf("%s file", cat.Name())
				path, err := fileutil.Resolve(basedir, f)
				if err != nil {
					results = append(results, Result{Name: name, Path: f, Detail: fmt.Sprintf("%s (error: %v)", f, err)})
					continue
				}
				results = append(results, CheckFileAccess(name, path))
			}
			continue
		}

		name := fmt.Sprintf("%s directory", cat.Name())
		path, err := fileutil.Resolve(basedir, cat.Dir())
		if err != nil {
			results = append(results, Result{Name: name, Path: cat.Dir(), Detail: fmt.Sprintf("%s (error: %v)", cat.Dir(), err)})
			continue
		}
		results = append(results, CheckDirectoryAccess(name, path))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
