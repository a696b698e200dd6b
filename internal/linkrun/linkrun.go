// Package linkrun wires together every pass this linker implements -
// loading, the Parser Pass, the Registry, the Rewriter Pass, dependency
// ordering and concatenation - into the single pipeline the `check`, `link`
// and `watch` CLI commands all drive.
package linkrun

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rintaro/es6link/internal/ast"
	"github.com/rintaro/es6link/internal/concat"
	"github.com/rintaro/es6link/internal/deporder"
	"github.com/rintaro/es6link/internal/loader"
	"github.com/rintaro/es6link/internal/logger"
	"github.com/rintaro/es6link/internal/module"
	"github.com/rintaro/es6link/internal/moduleio"
	"github.com/rintaro/es6link/internal/modparser"
	"github.com/rintaro/es6link/internal/rewriter"
)

// Result is everything a caller might want out of one pipeline run.
type Result struct {
	Registry *module.Registry
	Order    []string
	Log      *logger.Log
}

// load walks root for every *.mod.json file, decodes it, and registers it.
// It returns the populated, but not yet instantiated or rewritten, pipeline
// state - Run does the rest.
func load(root string, log *logger.Log) (*module.Registry, map[string]*ast.File, error) {
	ld := moduleio.NewLoader(root)
	reg := module.NewRegistry(ld, log)
	trees := make(map[string]*ast.File)

	var paths []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".mod.json") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("linkrun: walking %s: %w", root, err)
	}
	sort.Strings(paths) // deterministic AddModule order

	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("linkrun: reading %s: %w", path, err)
		}
		tree, err := moduleio.Decode(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("linkrun: decoding %s: %w", path, err)
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		source := &logger.Source{KeyPath: path, PrettyPath: filepath.ToSlash(rel), Contents: string(raw)}
		tree.Source = source

		parsed := modparser.Parse(tree, log)
		name := string(ld.Canonicalize(loader.Address(path)))
		reg.AddModule(path, name, source, tree, parsed)
		trees[path] = tree
	}

	return reg, trees, nil
}

// Run executes the full pipeline against root and returns the result. The
// Rewriter Pass runs over every module the Registry still recognizes after
// InstantiateAll - a file demoted to a plain script (spec §4.4) is left
// exactly as the Parser Pass normalized it.
func Run(root string) (*Result, error) {
	log := logger.NewLog()
	reg, _, err := load(root, log)
	if err != nil {
		return nil, err
	}

	reg.InstantiateAll()

	for _, rec := range reg.AllModules() {
		rewriter.Rewrite(reg, rec, log)
	}

	order := deporder.Order(reg)
	return &Result{Registry: reg, Order: order, Log: log}, nil
}

// Concat renders r's registry in dependency order (the `link` command's
// output). Callers should check r.Log.HasErrors() first.
func (r *Result) Concat() string {
	return concat.Modules(r.Registry, r.Order)
}
