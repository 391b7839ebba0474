package combine

import (
	"fmt"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/programme-lv/ranker/api"
	"github.com/programme-lv/ranker/internal/jsonl"
)

// RunFile is one scored candidate stream. Its position among the sorted run
// files determines the candidate id on every line.
type RunFile struct {
	Path  string
	Lines []*api.TaskRecord
}

// LoadRunFiles reads every exec_*.jsonl (or .jsonl.zst) file under dir, in
// lexical path order, loading the files in parallel.
func LoadRunFiles(dir string) ([]RunFile, error) {
	plain, err := filepath.Glob(filepath.Join(dir, "exec_*.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("failed to list run files in %s: %w", dir, err)
	}
	packed, err := filepath.Glob(filepath.Join(dir, "exec_*.jsonl.zst"))
	if err != nil {
		return nil, fmt.Errorf("failed to list run files in %s: %w", dir, err)
	}
	paths := append(plain, packed...)
	sort.Strings(paths)

	runs := make([]RunFile, len(paths))
	var eg errgroup.Group
	for i, path := range paths {
		i, path := i, path
		eg.Go(func() error {
			lines, err := jsonl.ReadAll[*api.TaskRecord](path)
			if err != nil {
				return err
			}
			runs[i] = RunFile{Path: path, Lines: lines}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return runs, nil
}
