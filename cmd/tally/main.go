package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"tally/internal/ast"
	"tally/internal/checker"
	"tally/internal/codegen"
	"tally/internal/config"
	"tally/internal/interpreter"
	"tally/internal/parser"
	"tally/internal/runtime"
	"tally/internal/utils"
)

const appName = "tally"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	showAST bool
	check   bool
	emitGo  bool
	jit     bool
	cfg     config.Config
}

func usage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(fs.Output(), `Usage:
  %s [flags] <file>    Run a program.
  %s [flags]           Start the REPL.

Flags:
`, appName, appName)
		fs.PrintDefaults()
	}
}

// run is main without the process exit, so tests can drive it. It returns
// 0 on success, 1 when the program fails and 2 on bad usage.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = usage(fs)

	var opts options
	fs.BoolVar(&opts.showAST, "ast", false, "print the syntax tree before running")
	fs.BoolVar(&opts.check, "check", false, "report static warnings before running")
	fs.BoolVar(&opts.emitGo, "emit-go", false, "print the program as Go source instead of running it")
	fs.BoolVar(&opts.jit, "jit", false, "run the numeric compiler instead of the interpreter")
	scope := fs.String("scope", "", "function scoping: dynamic or lexical")
	maxDepth := fs.Int("max-depth", 0, "maximum nested calls, 0 for unlimited")
	trace := fs.Bool("trace", false, "log every executed statement to stderr")
	configPath := fs.String("config", "", "settings file (default ./"+config.DefaultFile+" when present)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}

	var err error
	if *configPath != "" {
		opts.cfg, err = config.Load(*configPath)
	} else {
		opts.cfg, err = config.LoadOptional(config.DefaultFile)
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 2
	}

	// Flags given explicitly override the settings file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "scope":
			opts.cfg.Scope = *scope
		case "max-depth":
			opts.cfg.MaxCallDepth = *maxDepth
		case "trace":
			opts.cfg.Trace = *trace
		}
	})
	if err := opts.cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 2
	}

	if fs.NArg() == 0 {
		return cmdRepl(opts, stdout, stderr)
	}
	return cmdRun(fs.Arg(0), opts, stdout, stderr)
}

func cmdRun(path string, opts options, stdout, stderr io.Writer) int {
	src, err := os.ReadFile(path)
	if err != nil {
		utils.NewReporter(stderr, path, "").Error(fmt.Sprintf("reading file: %v", err))
		return 1
	}
	rep := utils.NewReporter(stderr, path, string(src))

	program, err := parser.Parse(string(src))
	if err != nil {
		rep.Report(err)
		return 1
	}

	if opts.showAST {
		if err := ast.Print(stdout, program); err != nil {
			rep.Error(err.Error())
			return 1
		}
	}
	if opts.check {
		for _, w := range checker.New().Check(program) {
			rep.Warning(w.Msg, w.Line, w.Column)
		}
	}

	switch {
	case opts.emitGo:
		out, err := codegen.GenerateGo(program)
		if err != nil {
			rep.Report(err)
			return 1
		}
		fmt.Fprint(stdout, out)
		return 0
	case opts.jit:
		m, err := codegen.Compile(program)
		if err != nil {
			rep.Report(err)
			return 1
		}
		m.Stdout = stdout
		v, err := m.Run()
		if err != nil {
			rep.Report(err)
			return 1
		}
		fmt.Fprintf(stdout, "result: %s\n", runtime.FormatNumber(v))
		return 0
	}

	iopts, err := opts.cfg.InterpreterOptions(stdout, stderr)
	if err != nil {
		rep.Error(err.Error())
		return 1
	}
	if err := interpreter.New(iopts).Execute(program); err != nil {
		rep.Report(err)
		return 1
	}
	return 0
}
