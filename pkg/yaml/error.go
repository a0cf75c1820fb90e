package yaml

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"
)

// DefaultSourceLines is the number of lines shown on each side of an error.
const DefaultSourceLines = 2

func NewPathBuilder() *yaml.PathBuilder {
	// Use the goccy/go-yaml PathBuilder to create a new YAMLPath.
	return &yaml.PathBuilder{}
}

// PathFor returns the [*yaml.Path] of a top-level key, optionally followed by
// child keys.
func PathFor(keys ...string) *yaml.Path {
	pb := NewPathBuilder().Root()
	for _, k := range keys {
		pb = pb.Child(k)
	}

	return pb.Build()
}

type ErrorWrapper struct {
	Opts []ErrorOpt
}

func NewErrorWrapper(opts ...ErrorOpt) *ErrorWrapper {
	return &ErrorWrapper{
		Opts: opts,
	}
}

// Wrap applies the wrapper's options (and opts) to err if it is an [*Error].
// Any other error is returned unmodified.
func (ew *ErrorWrapper) Wrap(err error, opts ...ErrorOpt) error {
	if err == nil {
		return nil
	}

	var yamlErr *Error
	if errors.As(err, &yamlErr) {
		for _, opt := range ew.Opts {
			opt(yamlErr)
		}

		for _, opt := range opts {
			opt(yamlErr)
		}

		return yamlErr
	}

	return err
}

// Error represents a YAML error. It includes the original error, and the
// [*token.Token] or [*yaml.Path] where the error occurred.
type Error struct {
	Err         error
	Path        *yaml.Path
	Token       *token.Token
	Location    []string // Keys and indices leading to the error, from the root.
	Source      []byte
	SourceLines int // Number of lines to show around the error in the source.
}

func NewError(err error, opts ...ErrorOpt) *Error {
	e := &Error{
		Err:         err,
		SourceLines: DefaultSourceLines,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

type ErrorOpt func(e *Error)

func WithSourceLines(lines int) ErrorOpt {
	return func(e *Error) {
		e.SourceLines = lines
	}
}

func WithPath(path *yaml.Path) ErrorOpt {
	return func(e *Error) {
		e.Path = path
	}
}

func WithToken(tk *token.Token) ErrorOpt {
	return func(e *Error) {
		e.Token = tk
	}
}

func WithLocation(location ...string) ErrorOpt {
	return func(e *Error) {
		e.Location = location
	}
}

func WithSource(source []byte) ErrorOpt {
	return func(e *Error) {
		e.Source = source
	}
}

func (e Error) Error() string {
	if e.Err == nil {
		return ""
	}
	if e.Path == nil && e.Token == nil && e.Location == nil {
		return e.Err.Error()
	}

	tk := e.Token
	if tk == nil && len(e.Source) > 0 {
		if e.Location != nil {
			tk, _ = findToken(e.Source, e.Location)
		} else {
			tk, _ = getTokenFromPath(e.Source, e.Path)
		}
	}

	if tk == nil {
		return fmt.Sprintf("error at %s: %v", e.where(), e.Err)
	}

	line, col := tk.Position.Line, tk.Position.Column
	errMsg := fmt.Sprintf("[%d:%d] %v", line, col, e.Err)

	if len(e.Source) == 0 {
		return errMsg
	}

	return fmt.Sprintf("%s:\n%s", errMsg, excerpt(e.Source, line, col, e.SourceLines))
}

// where describes the error position without source.
func (e Error) where() string {
	if e.Path != nil {
		return e.Path.String()
	}

	return "$" + strings.Join(quoteAll(e.Location), "")
}

func quoteAll(location []string) []string {
	out := make([]string, 0, len(location))
	for _, l := range location {
		if _, err := strconv.Atoi(l); err == nil {
			out = append(out, "["+l+"]")
		} else {
			out = append(out, fmt.Sprintf(".%q", l))
		}
	}

	return out
}

func (e Error) Unwrap() error {
	return e.Err
}

// excerpt renders the lines of source surrounding line (1-based), with a
// marker on the error line and a caret under col.
func excerpt(source []byte, line, col, context int) string {
	lines := strings.Split(strings.TrimRight(string(source), "\n"), "\n")
	if line < 1 || line > len(lines) {
		return ""
	}

	first := max(1, line-context)
	last := min(len(lines), line+context)
	width := len(fmt.Sprint(last))

	var sb strings.Builder

	for n := first; n <= last; n++ {
		marker := " "
		if n == line {
			marker = ">"
		}

		fmt.Fprintf(&sb, "%s %*d | %s\n", marker, width, n, lines[n-1])

		if n == line && col > 0 {
			fmt.Fprintf(&sb, "  %s | %s^\n", strings.Repeat(" ", width), strings.Repeat(" ", col-1))
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// findToken returns the token at location, a list of mapping keys and
// sequence indices starting at the document root. When location cannot be
// followed to the end, the token of the deepest node reached is returned.
func findToken(source []byte, location []string) (*token.Token, error) {
	file, err := parser.ParseBytes(source, 0)
	if err != nil {
		return nil, fmt.Errorf("parse source bytes into ast.File: %w", err)
	}

	if len(file.Docs) == 0 || file.Docs[0].Body == nil {
		return nil, errors.New("empty document")
	}

	node := file.Docs[0].Body
	tk := node.GetToken()

	for _, seg := range location {
		var next ast.Node

		switch n := node.(type) {
		case *ast.MappingNode:
			for _, kv := range n.Values {
				if kv.Key.GetToken().Value == seg {
					tk, next = kv.Key.GetToken(), kv.Value
					break
				}
			}

		case *ast.MappingValueNode:
			if n.Key.GetToken().Value == seg {
				tk, next = n.Key.GetToken(), n.Value
			}

		case *ast.SequenceNode:
			i, err := strconv.Atoi(seg)
			if err == nil && i >= 0 && i < len(n.Values) {
				next = n.Values[i]
				tk = next.GetToken()
			}
		}

		if next == nil {
			break
		}

		node = next
	}

	return tk, nil
}

func getTokenFromPath(source []byte, path *yaml.Path) (*token.Token, error) {
	file, err := parser.ParseBytes(source, 0)
	if err != nil {
		return nil, fmt.Errorf("parse source bytes into ast.File: %w", err)
	}

	node, err := path.FilterFile(file)
	if err != nil {
		return nil, fmt.Errorf("filter from ast.File by YAMLPath: %w", err)
	}

	return node.GetToken(), nil
}
