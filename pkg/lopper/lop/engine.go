package lop

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cppforlife/go-patch/patch"
	yamlv2 "gopkg.in/yaml.v2"

	"github.com/sdt-tools/lopper/log"
	"github.com/sdt-tools/lopper/pkg/lopper"
	"github.com/sdt-tools/lopper/pkg/lopper/assist/builtin/notify"
	"github.com/sdt-tools/lopper/pkg/lopper/assist/builtin/s3"
	"github.com/sdt-tools/lopper/pkg/lopper/assist/builtin/vault"
	"github.com/sdt-tools/lopper/pkg/lopper/codec/dts"
	"github.com/sdt-tools/lopper/pkg/lopper/codec/yaml"
	"github.com/sdt-tools/lopper/pkg/lopper/merge"
)

// registerBuiltinAssists best-effort-registers every builtin assist;
// one whose ambient credentials are missing (no VAULT_ADDR, no AWS
// session) is just skipped rather than failing the whole run, the
// same best-effort posture `load` lops get under --permissive.
func registerBuiltinAssists(ctx *Context) {
	if a, err := vault.New(); err == nil {
		ctx.Assists.Register(a)
	} else {
		log.DEBUG("auto-assist: vault unavailable: %v", err)
	}
	if a, err := s3.New(); err == nil {
		ctx.Assists.Register(a)
	} else {
		log.DEBUG("auto-assist: s3 unavailable: %v", err)
	}
	if a, err := notify.New("nats://127.0.0.1:4222", "lopper.events"); err == nil {
		ctx.Assists.Register(a)
	} else {
		log.DEBUG("auto-assist: notify unavailable: %v", err)
	}
}

// Options configures a pipeline Run: the CLI flags mapped onto engine
// behavior, independent of how main/lop trees were loaded.
type Options struct {
	Target     string
	Strict     bool
	Permissive bool
	WError     bool
	Dryrun     bool
	Force      bool
	Enhanced   bool
	OutputDir  string
	Verbose    int
	Render     func(*lopper.Tree) ([]byte, error)

	// AutoAssist registers every builtin assist before the run instead
	// of requiring an explicit `load` lop for each (CLI -A/--auto).
	AutoAssist       bool
	AssistSearchPath []string

	// MergeFiles are additional YAML main-tree sources merged,
	// node-by-node and additive, into mainPath's tree before any lop
	// runs.
	MergeFiles []string
	// GoPatchFile, when set, is applied against the merged main tree
	// via github.com/cppforlife/go-patch instead of accepting the
	// additive merge's "last file wins" conflict resolution.
	GoPatchFile string
}

// MergeReport groups the leaf conflicts of a multi-file merge.
// Pipeline.Run does not fill one in; it records a merge's conflicts on
// Context.MergeConflicts.
type MergeReport struct {
	Conflicts []merge.Conflict
}

// LoadTree reads a main or lop tree from path, picking the yaml or
// dts codec by file extension.
func LoadTree(path string) (*lopper.Tree, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml", ".json":
		return yaml.Load(path)
	case ".dts", ".dtsi":
		f, err := os.Open(path)
		if err != nil {
			return nil, lopper.NewError(lopper.MissingInput, path, err.Error(), err)
		}
		defer f.Close()
		return dts.Read(f)
	default:
		return nil, lopper.NewError(lopper.MissingInput, path, "unrecognized tree file extension "+ext, nil)
	}
}

// Pipeline ties a main tree, a set of lop trees, and the interpreter
// together into a single run: load, apply, and leave
// the caller to inspect ctx.Main / ctx.WrittenOutputs.
type Pipeline struct {
	Interp *Interpreter
}

// NewPipeline returns a pipeline wired with the default interpreter.
func NewPipeline() *Pipeline {
	return &Pipeline{Interp: NewInterpreter()}
}

// Run loads mainPath and each of lopPaths, then applies the lop
// runqueue to the main tree, returning the context the run produced so
// callers can inspect written outputs, the final tree, or the subtree
// table.
func (pl *Pipeline) Run(mainPath string, lopPaths []string, opts Options) (*Context, error) {
	var main *lopper.Tree
	var mergeResult *merge.Result
	var err error
	if len(opts.MergeFiles) > 0 {
		main, mergeResult, err = loadMergedTree(mainPath, opts.MergeFiles)
		if err != nil {
			return nil, err
		}
		if opts.GoPatchFile != "" {
			patched, err := applyGoPatchFile(mergeResult.Merged, opts.GoPatchFile)
			if err != nil {
				return nil, err
			}
			main = lopper.NewTree()
			if err := main.Load(patched); err != nil {
				return nil, lopper.NewError(lopper.ParseFailure, opts.GoPatchFile, "loading patched tree: "+err.Error(), err)
			}
		}
	} else {
		main, err = LoadTree(mainPath)
		if err != nil {
			return nil, err
		}
	}
	main.Strict = opts.Strict
	if opts.Target != "" {
		n, ok := main.LookupByPath(opts.Target)
		if !ok {
			return nil, lopper.NewError(lopper.MissingInput, opts.Target, "target node not found in main tree", nil)
		}
		main.SetSelected([]*lopper.Node{n})
	}

	lopper.SetWError(opts.WError)

	var lopTrees []*lopper.Tree
	for _, p := range lopPaths {
		lt, err := LoadTree(p)
		if err != nil {
			return nil, err
		}
		lopTrees = append(lopTrees, lt)
	}

	ctx := NewContext(main)
	ctx.OutputDir = opts.OutputDir
	ctx.Verbose = opts.Verbose
	ctx.Dryrun = opts.Dryrun
	ctx.Permissive = opts.Permissive
	ctx.Force = opts.Force
	ctx.Enhanced = opts.Enhanced
	ctx.Render = opts.Render
	ctx.AssistSearchPath = opts.AssistSearchPath
	if mergeResult != nil {
		ctx.MergeConflicts = mergeResult.Conflicts
	}

	if opts.AutoAssist {
		registerBuiltinAssists(ctx)
	}

	if err := pl.Interp.Run(ctx, lopTrees); err != nil {
		return ctx, err
	}
	return ctx, nil
}

// loadMergedTree folds mainPath and every mergeFiles entry into one
// main tree via merge.Files. Only yaml/yml/json sources are accepted;
// any other extension, .dts included, is rejected with an error.
func loadMergedTree(mainPath string, mergeFiles []string) (*lopper.Tree, *merge.Result, error) {
	var maps []map[string]interface{}
	for _, p := range append([]string{mainPath}, mergeFiles...) {
		if ext := strings.ToLower(filepath.Ext(p)); ext != ".yaml" && ext != ".yml" && ext != ".json" {
			return nil, nil, lopper.NewError(lopper.MissingInput, p, "multi-file merge only supports yaml/json main-tree sources", nil)
		}
		docs, err := yaml.LoadMaps(p)
		if err != nil {
			return nil, nil, err
		}
		maps = append(maps, docs...)
	}

	result := merge.Files(maps)
	t := lopper.NewTree()
	if err := t.Load(result.Merged); err != nil {
		return nil, nil, lopper.NewError(lopper.ParseFailure, mainPath, "loading merged tree: "+err.Error(), err)
	}
	return t, result, nil
}

// applyGoPatchFile reads a go-patch operations document and applies it
// to merged, the escape hatch an operator reaches for with --go-patch
// instead of accepting the additive merge's default conflict resolution.
func applyGoPatchFile(merged map[string]interface{}, path string) (map[string]interface{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, lopper.NewError(lopper.MissingInput, path, err.Error(), err)
	}
	var opdefs []patch.OpDefinition
	if err := yamlv2.Unmarshal(raw, &opdefs); err != nil {
		return nil, lopper.NewError(lopper.ParseFailure, path, "decoding go-patch document: "+err.Error(), err)
	}
	patched, err := merge.ApplyPatch(merged, opdefs)
	if err != nil {
		return nil, lopper.NewError(lopper.ParseFailure, path, "applying go-patch: "+err.Error(), err)
	}
	out, ok := patched.(map[string]interface{})
	if !ok {
		return nil, lopper.NewError(lopper.ParseFailure, path, "go-patch result is not a map at its root", nil)
	}
	return out, nil
}
