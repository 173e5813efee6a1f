package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"tally/internal/codegen"
	"tally/internal/interpreter"
	"tally/internal/lexer"
	"tally/internal/parser"
)

// ErrorInfo is a diagnostic tied to a source position.
type ErrorInfo struct {
	Message  string
	Line     int
	Column   int
	Filename string
	Context  string
}

// Reporter writes compiler-style diagnostics. The zero value writes to
// os.Stderr.
type Reporter struct {
	W      io.Writer
	Source string
	File   string
}

func NewReporter(w io.Writer, file, source string) *Reporter {
	return &Reporter{W: w, File: file, Source: source}
}

func (r *Reporter) out() io.Writer {
	if r.W == nil {
		return os.Stderr
	}
	return r.W
}

func (r *Reporter) filename() string {
	if r.File == "" {
		return "<input>"
	}
	return r.File
}

func (r *Reporter) Error(msg string) {
	fmt.Fprintf(r.out(), "error: %s\n", msg)
}

func (r *Reporter) ErrorWithLocation(msg string, line, column int) {
	fmt.Fprintf(r.out(), "%s:%d:%d: error: %s\n", r.filename(), line, column, msg)
}

// ErrorWithContext prints the location line followed by the offending source
// line and a caret under column.
func (r *Reporter) ErrorWithContext(msg string, line, column int) {
	r.ErrorWithLocation(msg, line, column)
	r.context(line, column)
}

func (r *Reporter) Warning(msg string, line, column int) {
	fmt.Fprintf(r.out(), "%s:%d:%d: warning: %s\n", r.filename(), line, column, msg)
}

func (r *Reporter) context(line, column int) {
	src := SourceLine(r.Source, line)
	if src == "" {
		return
	}
	gutter := fmt.Sprintf("%d", line)
	fmt.Fprintf(r.out(), "  %s | %s\n", gutter, src)
	fmt.Fprintf(r.out(), "  %s | %s^\n", strings.Repeat(" ", len(gutter)), strings.Repeat(" ", max(column-1, 0)))
}

// Report prints err with as much position information as it carries.
func (r *Reporter) Report(err error) {
	if info, ok := Locate(err); ok {
		r.ErrorWithContext(info.Message, info.Line, info.Column)
		return
	}
	r.Error(err.Error())
}

// Locate extracts the position from a lexer, parser, runtime or codegen
// error. ok is false for errors without one.
func Locate(err error) (ErrorInfo, bool) {
	var le *lexer.Error
	if errors.As(err, &le) {
		return ErrorInfo{Message: fmt.Sprintf("unexpected character %q", le.Char), Line: le.Line, Column: le.Column}, true
	}
	var pe *parser.Error
	if errors.As(err, &pe) {
		return ErrorInfo{Message: pe.Msg, Line: pe.Token.Line, Column: pe.Token.Column}, true
	}
	var re *interpreter.RuntimeError
	if errors.As(err, &re) && re.Line > 0 {
		return ErrorInfo{Message: re.Msg, Line: re.Line, Column: re.Column}, true
	}
	var ue *codegen.UnsupportedError
	if errors.As(err, &ue) {
		return ErrorInfo{Message: ue.What, Line: ue.Line, Column: ue.Column}, true
	}
	return ErrorInfo{}, false
}

// SourceLine returns line n (1-based) of src without its newline, or "" when
// out of range.
func SourceLine(src string, n int) string {
	if n < 1 {
		return ""
	}
	lines := strings.Split(src, "\n")
	if n > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[n-1], "\r")
}
