package expr

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// Names of the variables declared by [NewEntryEnvironment].
const (
	VarName      = "name"
	VarExt       = "ext"
	VarPath      = "path"
	VarDir       = "dir"
	VarSize      = "size"
	VarIsDir     = "isDir"
	VarIsFile    = "isFile"
	VarIsSymlink = "isSymlink"
	VarModTime   = "mtime"
)

// Protect CEL environment creation and compilation from concurrent access.
var celMutex sync.Mutex

// Environment provides a thread-safe wrapper around a [*cel.Env].
type Environment struct {
	env *cel.Env
}

// NewEnvironment creates a new [Environment].
func NewEnvironment(opts ...cel.EnvOption) (*Environment, error) {
	env, err := createEnvironment(opts...)
	if err != nil {
		return nil, err
	}

	return &Environment{env: env}, nil
}

// MustNewEnvironment creates a new [Environment] and panics on error.
func MustNewEnvironment(opts ...cel.EnvOption) *Environment {
	env, err := NewEnvironment(opts...)
	if err != nil {
		panic(err)
	}

	return env
}

// NewEntryEnvironment creates an [Environment] declaring the entry variables.
func NewEntryEnvironment() (*Environment, error) {
	return NewEnvironment(
		cel.Variable(VarName, cel.StringType),
		cel.Variable(VarExt, cel.StringType),
		cel.Variable(VarPath, cel.StringType),
		cel.Variable(VarDir, cel.StringType),
		cel.Variable(VarSize, cel.IntType),
		cel.Variable(VarIsDir, cel.BoolType),
		cel.Variable(VarIsFile, cel.BoolType),
		cel.Variable(VarIsSymlink, cel.BoolType),
		cel.Variable(VarModTime, cel.TimestampType),
	)
}

// createEnvironment creates the [*cel.Env] using the global mutex.
func createEnvironment(opts ...cel.EnvOption) (*cel.Env, error) {
	celMutex.Lock()
	defer celMutex.Unlock()

	opts = append(opts, cel.Lib(&lib{}))

	celEnv, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	return celEnv, nil
}

// Compile compiles a CEL expression and returns a program.
//
//nolint:ireturn // Following CEL's function signature.
func (e *Environment) Compile(expression string) (cel.Program, error) {
	celMutex.Lock()
	defer celMutex.Unlock()

	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile expression: %w", issues.Err())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("create program: %w", err)
	}

	return program, nil
}

// Env returns the underlying [*cel.Env].
func (e *Environment) Env() *cel.Env {
	return e.env
}
