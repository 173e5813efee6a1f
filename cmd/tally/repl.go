package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"tally/internal/ast"
	"tally/internal/interpreter"
	"tally/internal/parser"
	"tally/internal/utils"
)

const (
	promptMain = "tally> "
	promptCont = "  ...> "
)

const replHelp = `REPL commands:
  :ast       Toggle printing the syntax tree of each input
  :globals   List global bindings
  :help      Show this help
  :quit      Exit the REPL
`

// session is the state the REPL keeps between inputs.
type session struct {
	in      *interpreter.Interpreter
	showAST bool
	stdout  io.Writer
	stderr  io.Writer
}

func cmdRepl(opts options, stdout, stderr io.Writer) int {
	fmt.Fprintf(stdout, "%s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :help for commands.\n", appName)

	histPath := historyPath(opts.cfg.HistoryFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	iopts, err := opts.cfg.InterpreterOptions(stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 1
	}
	s := &session{
		in:      interpreter.New(iopts),
		showAST: opts.showAST,
		stdout:  stdout,
		stderr:  stderr,
	}

	for {
		code, ok := readInput(ln)
		if !ok {
			fmt.Fprintln(stdout)
			return 0
		}
		if strings.TrimSpace(code) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		if s.eval(code) {
			return 0
		}
	}
}

// eval handles one complete input and reports whether the REPL should exit.
func (s *session) eval(code string) (exit bool) {
	trimmed := strings.TrimSpace(code)
	if strings.HasPrefix(trimmed, ":") {
		switch strings.ToLower(trimmed) {
		case ":quit", ":q":
			return true
		case ":ast":
			s.showAST = !s.showAST
			fmt.Fprintf(s.stdout, "syntax tree printing %s\n", onOff(s.showAST))
		case ":globals":
			for _, name := range s.in.Globals() {
				v, _ := s.in.Global(name)
				fmt.Fprintf(s.stdout, "%s = %s\n", name, v)
			}
		case ":help":
			fmt.Fprint(s.stdout, replHelp)
		default:
			fmt.Fprintf(s.stdout, "unknown command %s. Type :help for commands.\n", trimmed)
		}
		return false
	}

	rep := utils.NewReporter(s.stderr, "<repl>", code)
	program, err := parser.Parse(code)
	if err != nil {
		rep.Report(err)
		return false
	}
	if s.showAST {
		_ = ast.Print(s.stdout, program)
	}
	if err := s.in.Execute(program); err != nil {
		rep.Report(err)
	}
	return false
}

// readInput keeps prompting while the text read so far parses as an
// unfinished program. ok is false at end of input.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !needsMore(b.String()) {
			return b.String(), true
		}
	}
}

// needsMore reports whether src is a prefix of a valid program that more
// lines could complete.
func needsMore(src string) bool {
	if strings.HasPrefix(strings.TrimSpace(src), ":") {
		return false
	}
	_, err := parser.Parse(src)
	return err != nil && parser.IsIncomplete(err)
}

// historyPath resolves a relative history file against the home directory.
// An empty name disables history.
func historyPath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, name)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
