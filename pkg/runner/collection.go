package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/loykin/apiscript/internal/common"
	"golang.org/x/sync/errgroup"
)

// ListCollection returns the request file paths of a collection directory
// in lexical order. Only .yaml and .yml files are considered.
func ListCollection(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// ExecuteAll executes the given request files. With parallel <= 1 the files
// run sequentially against the shared scopes, so later files observe what
// earlier ones extracted. With parallel > 1 each file runs against its own
// scope copies and at most parallel files are in flight at once; scope
// mutations are not merged back.
//
// Results come back in input order. Execution continues past failed files;
// the returned error joins the individual failures.
func (r *Runner) ExecuteAll(ctx context.Context, paths []string, parallel int) ([]*RunResult, error) {
	logger := common.GetLogger().WithComponent("runner")
	logger.Info("executing collection", "files", len(paths), "parallel", parallel)

	results := make([]*RunResult, len(paths))
	errs := make([]error, len(paths))

	if parallel <= 1 {
		for i, path := range paths {
			results[i], errs[i] = r.ExecuteFile(ctx, path)
			if ctx.Err() != nil {
				break
			}
		}
		return results, errors.Join(errs...)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, path := range paths {
		g.Go(func() error {
			res, err := r.clone().ExecuteFile(gctx, path)
			results[i] = res
			errs[i] = err
			// Failures are collected per file, not used to cancel siblings
			return nil
		})
	}
	_ = g.Wait()
	return results, errors.Join(errs...)
}
