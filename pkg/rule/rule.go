package rule

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/macropower/declutter/pkg/expr"
)

// Rule is a predicate over an [Entry]. The set of implementations is closed:
// [AllowType], [AllowName], [MinSize], [MaxSize] and [AllowExpr].
type Rule interface {
	// Match reports whether the entry satisfies the rule. The only error
	// returned is [ErrMetadataUnavailable].
	Match(e *Entry) (bool, error)
	String() string

	sealed()
}

// TypeKind is the kind of an [EntryType].
type TypeKind int

const (
	// KindDirectory matches directories.
	KindDirectory TypeKind = iota
	// KindRegularFile matches regular files.
	KindRegularFile
	// KindExtension matches entries with a given extension.
	KindExtension
)

// EntryType is one allowed type in an [AllowType] rule.
type EntryType struct {
	// Ext is the extension without the leading dot, for [KindExtension].
	Ext  string
	Kind TypeKind
}

var (
	// Directory is the [EntryType] matching directories.
	Directory = EntryType{Kind: KindDirectory}
	// RegularFile is the [EntryType] matching regular files.
	RegularFile = EntryType{Kind: KindRegularFile}
)

// ExtensionType returns the [EntryType] matching entries with extension ext.
// The leading dot, if any, is stripped.
func ExtensionType(ext string) EntryType {
	return EntryType{Kind: KindExtension, Ext: strings.TrimPrefix(ext, ".")}
}

// Check reports whether the entry is of this type.
func (t EntryType) Check(e *Entry) (bool, error) {
	switch t.Kind {
	case KindDirectory:
		return e.IsDir()
	case KindRegularFile:
		return e.IsRegular()
	case KindExtension:
		ext, ok := e.Ext()
		return ok && ext == t.Ext, nil
	}

	return false, nil
}

// String returns the configuration form of the type.
func (t EntryType) String() string {
	switch t.Kind {
	case KindDirectory:
		return "dir"
	case KindRegularFile:
		return "file"
	case KindExtension:
		return "." + t.Ext
	}

	return "unknown"
}

// AllowType matches entries satisfying any of its types.
type AllowType struct {
	Types []EntryType
}

// Match implements [Rule].
func (r *AllowType) Match(e *Entry) (bool, error) {
	for _, t := range r.Types {
		ok, err := t.Check(e)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}

	return false, nil
}

// Has reports whether t is one of the rule's types.
func (r *AllowType) Has(t EntryType) bool {
	for _, typ := range r.Types {
		if typ == t {
			return true
		}
	}

	return false
}

func (r *AllowType) String() string {
	types := make([]string, 0, len(r.Types))
	for _, t := range r.Types {
		types = append(types, t.String())
	}

	return fmt.Sprintf("allow-type: [%s]", strings.Join(types, ", "))
}

func (*AllowType) sealed() {}

// AllowName matches entries whose file name equals any of its names exactly.
type AllowName struct {
	Names []string
}

// Match implements [Rule].
func (r *AllowName) Match(e *Entry) (bool, error) {
	for _, name := range r.Names {
		if e.Name() == name {
			return true, nil
		}
	}

	return false, nil
}

func (r *AllowName) String() string {
	return fmt.Sprintf("allow-name: [%s]", strings.Join(r.Names, ", "))
}

func (*AllowName) sealed() {}

// MinSize matches entries of at least Bytes bytes.
type MinSize struct {
	Bytes uint64
}

// Match implements [Rule].
func (r *MinSize) Match(e *Entry) (bool, error) {
	size, err := e.Size()
	if err != nil {
		return false, err
	}

	return size >= r.Bytes, nil
}

func (r *MinSize) String() string {
	return fmt.Sprintf("min-size: %d", r.Bytes)
}

func (*MinSize) sealed() {}

// MaxSize matches entries of at most Bytes bytes.
type MaxSize struct {
	Bytes uint64
}

// Match implements [Rule].
func (r *MaxSize) Match(e *Entry) (bool, error) {
	size, err := e.Size()
	if err != nil {
		return false, err
	}

	return size <= r.Bytes, nil
}

func (r *MaxSize) String() string {
	return fmt.Sprintf("max-size: %d", r.Bytes)
}

func (*MaxSize) sealed() {}

// AllowExpr matches entries for which a CEL expression evaluates to true.
// See package [expr] for the available variables and functions.
type AllowExpr struct {
	program cel.Program

	// Expression is the CEL source.
	Expression string
}

// NewAllowExpr compiles expression into an [AllowExpr] rule.
func NewAllowExpr(expression string) (*AllowExpr, error) {
	env, err := expr.NewEntryEnvironment()
	if err != nil {
		return nil, err //nolint:wrapcheck // Already wrapped.
	}

	program, err := env.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("expression %q: %w", expression, err)
	}

	return &AllowExpr{Expression: expression, program: program}, nil
}

// MustNewAllowExpr creates a new [AllowExpr] and panics if there's an error.
func MustNewAllowExpr(expression string) *AllowExpr {
	r, err := NewAllowExpr(expression)
	if err != nil {
		panic(err)
	}

	return r
}

// Match implements [Rule]. Evaluation failures and non-boolean results are
// treated as a non-match.
func (r *AllowExpr) Match(e *Entry) (bool, error) {
	info, err := e.Info()
	if err != nil {
		return false, err
	}

	isDir, err := e.IsDir()
	if err != nil {
		return false, err
	}

	isFile, err := e.IsRegular()
	if err != nil {
		return false, err
	}

	ext, _ := e.Ext()

	result, _, err := r.program.Eval(map[string]any{
		expr.VarName:      e.Name(),
		expr.VarExt:       ext,
		expr.VarPath:      e.Path(),
		expr.VarDir:       filepath.Dir(e.Path()),
		expr.VarSize:      info.Size(),
		expr.VarIsDir:     isDir,
		expr.VarIsFile:    isFile,
		expr.VarIsSymlink: info.Mode()&fs.ModeSymlink != 0,
		expr.VarModTime:   info.ModTime(),
	})
	if err != nil {
		return false, nil //nolint:nilerr // Evaluation errors are non-matches.
	}

	boolVal, ok := result.Value().(bool)

	return ok && boolVal, nil
}

func (r *AllowExpr) String() string {
	return fmt.Sprintf("allow-expr: %s", r.Expression)
}

func (*AllowExpr) sealed() {}
