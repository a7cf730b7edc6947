package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gonvenience/ytbx"
	"github.com/homeport/dyff/pkg/dyff"
	"github.com/mattn/go-isatty"
	"github.com/starkandwayne/goutils/ansi"
	"github.com/voxelbrain/goptions"

	"github.com/sdt-tools/lopper/internal/config"
	"github.com/sdt-tools/lopper/log"
	"github.com/sdt-tools/lopper/pkg/lopper"
	"github.com/sdt-tools/lopper/pkg/lopper/codec/dts"
	"github.com/sdt-tools/lopper/pkg/lopper/codec/yaml"
	"github.com/sdt-tools/lopper/pkg/lopper/lop"
)

// Version holds the current version of lopper.
var Version = "(development)"

var printfStdOut = func(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, format, args...)
}

var getopts = func(o interface{}) {
	if err := goptions.Parse(o); err != nil {
		usage()
	}
}

var exit = func(code int) {
	os.Exit(code)
}

var usage = func() {
	goptions.PrintHelp()
	exit(1)
}

type options struct {
	Verbose    []bool             `goptions:"-v, description='Increase verbosity (may be given more than once)'"`
	Target     string             `goptions:"-t, description='Restrict the run to the subtree rooted at this node path'"`
	Dryrun     bool               `goptions:"--dryrun, description='Render outputs without writing them to disk'"`
	AssistPath []string           `goptions:"-a, description='Add a directory to the assist search path (may be given more than once)'"`
	AutoAssist bool               `goptions:"-A, --auto, description='Automatically register every builtin assist'"`
	Outfile    string             `goptions:"-o, description='Write the final tree here, overriding any output lop'"`
	Format     string             `goptions:"-O, description='Force an output format (yaml, dts, json) instead of inferring it from -o'"`
	Force      bool               `goptions:"-f, description='Overwrite an existing output file'"`
	WError     bool               `goptions:"--werror, description='Treat every warning as a fatal error'"`
	Strict     bool               `goptions:"-S, --strict, description='Fail on invariant violations instead of warning'"`
	Enhanced   bool               `goptions:"--enhanced, description='Annotate dts output with type/label comments'"`
	Permissive bool               `goptions:"--permissive, description='Downgrade assist-load failures to warnings'"`
	Merge      []string           `goptions:"-m, description='Merge an additional YAML file into the main tree (may be given more than once)'"`
	GoPatch    string             `goptions:"--go-patch, description='Apply this go-patch ops document to the merged main tree instead of last-file-wins'"`
	Dump       string             `goptions:"-x, description='Dump an intermediate representation: TYPE[:LOP]'"`
	Version    bool               `goptions:"--version, description='Display version information'"`
	Help       bool               `goptions:"-h, --help"`
	Files      goptions.Remainder `goptions:"description='<system device tree> [<lop file> ...] [-- <assist args>]'"`
}

func main() {
	var opts options
	getopts(&opts)

	if opts.Help {
		usage()
		return
	}
	if opts.Version {
		printfStdOut("%s - Version %s\n", os.Args[0], Version)
		return
	}

	ansi.Color(isatty.IsTerminal(os.Stderr.Fd()))

	verbosity := len(opts.Verbose)
	log.DebugOn = verbosity > 0
	log.TraceOn = verbosity > 1

	mainPath, lopPaths, assistArgs := splitArgs(opts.Files)
	if mainPath == "" {
		log.PrintfStdErr("missing <system device tree> argument\n")
		usage()
		return
	}

	cfg, err := config.Load(config.DefaultSearchPath())
	if err != nil {
		log.PrintfStdErr("loading config: %s\n", err.Error())
		exit(1)
		return
	}
	cfg.ApplyFlags(config.Overrides{
		Strict:     opts.Strict,
		Permissive: opts.Permissive,
		WError:     opts.WError,
	})
	cfg.AssistSearchPath = append(cfg.AssistSearchPath, opts.AssistPath...)

	render := rendererFor(opts.Format, opts.Outfile, opts.Enhanced)

	runOpts := lop.Options{
		Target:           opts.Target,
		Strict:           cfg.Strict,
		Permissive:       cfg.Permissive,
		WError:           cfg.WError,
		Dryrun:           opts.Dryrun,
		Force:            opts.Force,
		Enhanced:         opts.Enhanced,
		Verbose:          verbosity,
		Render:           render,
		AutoAssist:       opts.AutoAssist,
		AssistSearchPath: cfg.AssistSearchPath,
		MergeFiles:       opts.Merge,
		GoPatchFile:      opts.GoPatch,
	}

	pl := lop.NewPipeline()
	ctx, runErr := pl.Run(mainPath, lopPaths, runOpts)
	if runErr != nil {
		log.PrintfStdErr(ansi.Sprintf("@R{error:} %s\n", runErr.Error()))
		exit(2)
		return
	}
	for _, c := range ctx.MergeConflicts {
		log.DEBUG("merge conflict at %s: %v -> %v", c.Path, c.Old, c.New)
	}

	if opts.Outfile != "" {
		payload, err := render(ctx.Main)
		if err != nil {
			log.PrintfStdErr("rendering -o output: %s\n", err.Error())
			exit(2)
			return
		}
		if opts.Dryrun {
			reportDiff(opts.Outfile, payload)
		} else {
			if !opts.Force {
				if _, err := os.Stat(opts.Outfile); err == nil {
					log.PrintfStdErr("%s exists, use -f to overwrite\n", opts.Outfile)
					exit(2)
					return
				}
			}
			if err := os.WriteFile(opts.Outfile, payload, 0644); err != nil {
				log.PrintfStdErr("writing %s: %s\n", opts.Outfile, err.Error())
				exit(2)
				return
			}
		}
	}

	if opts.Dump != "" {
		dumpIntermediate(ctx, opts.Dump)
	}

	for _, assistArg := range assistArgs {
		log.TRACE("assist argument carried through: %s", assistArg)
	}
}

// splitArgs separates the remainder into the main tree, zero or more
// lop files, and (after a literal "--") arguments meant for assists
//.
func splitArgs(remainder goptions.Remainder) (mainPath string, lopPaths []string, assistArgs []string) {
	args := make([]string, len(remainder))
	for i, r := range remainder {
		args[i] = string(r)
	}

	for i, a := range args {
		if a == "--" {
			assistArgs = args[i+1:]
			args = args[:i]
			break
		}
	}
	if len(args) == 0 {
		return "", nil, assistArgs
	}
	return args[0], args[1:], assistArgs
}

// rendererFor picks the output codec: an explicit -O format wins,
// otherwise it's inferred from -o's extension, defaulting to yaml
//.
func rendererFor(format, outfile string, enhanced bool) func(*lopper.Tree) ([]byte, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(outfile)), ".")
	}
	switch format {
	case "dts", "dtsi":
		return func(t *lopper.Tree) ([]byte, error) {
			var buf bytes.Buffer
			if err := dts.Write(&buf, t, enhanced); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		}
	case "json":
		return func(t *lopper.Tree) ([]byte, error) {
			return json.MarshalIndent(t.Export(), "", "  ")
		}
	default:
		return yaml.Dump
	}
}

// reportDiff renders a dyff summary of what a non-dryrun write to
// outfile would have changed, comparing against the file's current
// content on disk if it exists.
func reportDiff(outfile string, payload []byte) {
	before, err := os.ReadFile(outfile)
	if err != nil {
		printfStdOut("--dryrun: %s would be created\n", outfile)
		return
	}

	fromFile, err := ytbx.LoadDocuments(before)
	if err != nil {
		printfStdOut("--dryrun: %s would change (unable to diff: %s)\n", outfile, err.Error())
		return
	}
	toFile, err := ytbx.LoadDocuments(payload)
	if err != nil {
		printfStdOut("--dryrun: %s would change (unable to diff: %s)\n", outfile, err.Error())
		return
	}

	report, err := dyff.CompareInputFiles(
		ytbx.InputFile{Location: outfile, Documents: fromFile},
		ytbx.InputFile{Location: outfile + " (pending)", Documents: toFile},
	)
	if err != nil {
		printfStdOut("--dryrun: %s would change (diff failed: %s)\n", outfile, err.Error())
		return
	}
	if len(report.Diffs) == 0 {
		printfStdOut("--dryrun: %s unchanged\n", outfile)
		return
	}
	reporter := dyff.HumanReport{Report: report}
	if err := reporter.WriteReport(os.Stdout); err != nil {
		printfStdOut("--dryrun: %s would change (%d diffs, report failed: %s)\n", outfile, len(report.Diffs), err.Error())
	}
}

func dumpIntermediate(ctx *lop.Context, spec string) {
	kind, _, _ := strings.Cut(spec, ":")
	switch kind {
	case "subtrees":
		for _, name := range ctx.Subtrees.Names() {
			printfStdOut("subtree: %s\n", name)
		}
	case "selected":
		for _, n := range ctx.Main.Selected() {
			printfStdOut("selected: %s\n", n.AbsPath())
		}
	default:
		printfStdOut("unknown -x dump type %q\n", kind)
	}
}
