package expr

import (
	"math"
	"os"
	"path/filepath"
	"reflect"

	"github.com/goccy/go-yaml"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"

	"github.com/macropower/declutter/pkg/filename"
)

// lib adds path helpers and file inspection functions to entry
// expressions.
type lib struct{}

func (lib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		ext.Math(),
		ext.Strings(),
		ext.Lists(),

		// pathBase(dir) == "node_modules"
		stringFunc("pathBase", filepath.Base),

		// pathDir(path).endsWith("/.cache")
		stringFunc("pathDir", filepath.Dir),

		// pathExt(path) in ["log", "tmp"]
		// Same rules as `ext`: no leading dot, and "" for ".bashrc".
		stringFunc("pathExt", func(path string) string {
			e, _ := filename.Ext(path)
			return e
		}),

		// glob("*.sw?", name)
		cel.Function("glob",
			cel.Overload("glob_string_string", []*cel.Type{cel.StringType, cel.StringType}, cel.BoolType,
				cel.BinaryBinding(func(pattern, name ref.Val) ref.Val {
					p, ok := pattern.Value().(string)
					if !ok {
						return types.NewErr("glob: invalid pattern")
					}

					n, ok := name.Value().(string)
					if !ok {
						return types.NewErr("glob: invalid name")
					}

					matched, err := filepath.Match(p, n)
					if err != nil {
						return types.NewErr("glob: %s: %v", p, err)
					}

					return types.Bool(matched)
				}),
			),
		),

		// yamlPath(path, "$.declutter.keep") == true
		// Null unless path is a readable YAML file containing the value.
		cel.Function("yamlPath",
			cel.Overload("yaml_path", []*cel.Type{cel.StringType, cel.StringType}, cel.DynType,
				cel.BinaryBinding(func(path, query ref.Val) ref.Val {
					p, ok := path.Value().(string)
					if !ok {
						return types.NewErr("yamlPath: invalid file path")
					}

					q, ok := query.Value().(string)
					if !ok {
						return types.NewErr("yamlPath: invalid yaml path")
					}

					return readYAMLPath(p, q)
				}),
			),
		),
	}
}

func (lib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}

// stringFunc declares a unary string function named name.
func stringFunc(name string, fn func(string) string) cel.EnvOption {
	return cel.Function(name,
		cel.Overload(name+"_string", []*cel.Type{cel.StringType}, cel.StringType,
			cel.UnaryBinding(func(arg ref.Val) ref.Val {
				s, ok := arg.Value().(string)
				if !ok {
					return types.NewErr("%s: invalid string value", name)
				}

				return types.String(fn(s))
			}),
		),
	)
}

//nolint:ireturn // Following CEL's function signature.
func readYAMLPath(path, query string) ref.Val {
	yp, err := yaml.PathString(query)
	if err != nil {
		return types.NullValue
	}

	f, err := os.Open(path) //nolint:gosec // G304: Path comes from the expression.
	if err != nil {
		return types.NullValue
	}
	defer f.Close() //nolint:errcheck // Read-only handle.

	var value any

	err = yp.Read(f, &value)
	if err != nil {
		return types.NullValue
	}

	return ConvertToCELValue(value)
}

// ConvertToCELValue converts a decoded YAML value to a CEL value. Integers
// that do not fit in an int become doubles. Values of any other kind
// become null.
//
//nolint:ireturn // Following CEL's function signature.
func ConvertToCELValue(value any) ref.Val {
	if value == nil {
		return types.NullValue
	}

	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.Bool:
		return types.Bool(rv.Bool())

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return types.Int(rv.Int())

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return types.Double(float64(u))
		}

		return types.Int(int64(u))

	case reflect.Float32, reflect.Float64:
		return types.Double(rv.Float())

	case reflect.String:
		return types.String(rv.String())

	case reflect.Slice, reflect.Array:
		items := make([]ref.Val, rv.Len())
		for i := range items {
			items[i] = ConvertToCELValue(rv.Index(i).Interface())
		}

		return types.NewDynamicList(types.DefaultTypeAdapter, items)

	case reflect.Map:
		m := make(map[ref.Val]ref.Val, rv.Len())

		iter := rv.MapRange()
		for iter.Next() {
			m[ConvertToCELValue(iter.Key().Interface())] = ConvertToCELValue(iter.Value().Interface())
		}

		return types.NewDynamicMap(types.DefaultTypeAdapter, m)

	default:
		return types.NullValue
	}
}
