package yaml_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/declutter/pkg/yaml"
)

var errTest = errors.New("test error")

const source = `a: b
b: c
foo: "bar"
key: value
baz: 5
c: d
e: f`

func TestError_Error(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		err  *yaml.Error
		want string
	}{
		"no position": {
			err:  yaml.NewError(errTest),
			want: "test error",
		},
		"path without source": {
			err:  yaml.NewError(errTest, yaml.WithPath(yaml.PathFor("field", "subfield"))),
			want: "error at $.field.subfield: test error",
		},
		"location without source": {
			err:  yaml.NewError(errTest, yaml.WithLocation("./src", "allow-type", "0")),
			want: `error at $."./src"."allow-type"[0]: test error`,
		},
		"path with source": {
			err: yaml.NewError(errTest,
				yaml.WithPath(yaml.PathFor("key")),
				yaml.WithSource([]byte(source)),
				yaml.WithSourceLines(1),
			),
			want: "[4:6] test error:\n" +
				"  3 | foo: \"bar\"\n" +
				"> 4 | key: value\n" +
				"    |      ^\n" +
				"  5 | baz: 5",
		},
		"location with source": {
			err: yaml.NewError(errTest,
				yaml.WithLocation("key"),
				yaml.WithSource([]byte(source)),
				yaml.WithSourceLines(1),
			),
			want: "[4:1] test error:\n" +
				"  3 | foo: \"bar\"\n" +
				"> 4 | key: value\n" +
				"    | ^\n" +
				"  5 | baz: 5",
		},
		"nil error": {
			err:  &yaml.Error{},
			want: "",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestError_LocationWithQuotedKeys(t *testing.T) {
	t.Parallel()

	src := []byte(`"~/projects/a.b":
  allow-type: [.go]
./build:
  allow-name:
    - out
    - 42
`)

	err := yaml.NewError(errTest,
		yaml.WithLocation("./build", "allow-name", "1"),
		yaml.WithSource(src),
	)
	assert.Contains(t, err.Error(), "[6:7] test error")

	err = yaml.NewError(errTest,
		yaml.WithLocation("~/projects/a.b", "allow-type"),
		yaml.WithSource(src),
	)
	assert.Contains(t, err.Error(), "[2:3] test error")

	// Unknown keys resolve to the deepest known node.
	err = yaml.NewError(errTest,
		yaml.WithLocation("./build", "missing"),
		yaml.WithSource(src),
	)
	assert.Contains(t, err.Error(), "[3:1] test error")
}

func TestErrorWrapper_Wrap(t *testing.T) {
	t.Parallel()

	ew := yaml.NewErrorWrapper(yaml.WithSource([]byte(source)))

	assert.NoError(t, ew.Wrap(nil))
	assert.Equal(t, errTest, ew.Wrap(errTest))

	wrapped := ew.Wrap(yaml.NewError(errTest), yaml.WithLocation("baz"))

	var yamlErr *yaml.Error
	require.ErrorAs(t, wrapped, &yamlErr)
	assert.Equal(t, []byte(source), yamlErr.Source)
	assert.Equal(t, []string{"baz"}, yamlErr.Location)
	require.ErrorIs(t, wrapped, errTest)
}
