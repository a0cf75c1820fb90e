package rule_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/declutter/pkg/rule"
)

// writeFile creates a file of the given size under dir and returns its path.
func writeFile(t *testing.T, dir, name string, size int) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", size)), 0o644))

	return path
}

func TestAllowType(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	filePath := writeFile(t, dir, "notes.txt", 3)
	subDir := filepath.Join(dir, "src")
	require.NoError(t, os.Mkdir(subDir, 0o755))

	tcs := map[string]struct {
		path  string
		types []rule.EntryType
		want  bool
	}{
		"dir matches directory": {
			path:  subDir,
			types: []rule.EntryType{rule.Directory},
			want:  true,
		},
		"dir does not match file": {
			path:  filePath,
			types: []rule.EntryType{rule.Directory},
			want:  false,
		},
		"file matches file": {
			path:  filePath,
			types: []rule.EntryType{rule.RegularFile},
			want:  true,
		},
		"file does not match directory": {
			path:  subDir,
			types: []rule.EntryType{rule.RegularFile},
			want:  false,
		},
		"extension matches": {
			path:  filePath,
			types: []rule.EntryType{rule.ExtensionType(".txt")},
			want:  true,
		},
		"extension is case sensitive": {
			path:  filePath,
			types: []rule.EntryType{rule.ExtensionType("TXT")},
			want:  false,
		},
		"any of several types": {
			path:  filePath,
			types: []rule.EntryType{rule.Directory, rule.ExtensionType("md"), rule.ExtensionType("txt")},
			want:  true,
		},
		"no types": {
			path: filePath,
			want: false,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := &rule.AllowType{Types: tc.types}

			got, err := r.Match(rule.NewEntry(tc.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAllowType_Symlinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	require.NoError(t, os.Mkdir(target, 0o755))

	dirLink := filepath.Join(dir, "dir-link")
	require.NoError(t, os.Symlink(target, dirLink))

	dangling := filepath.Join(dir, "dangling")
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing"), dangling))

	allowDir := &rule.AllowType{Types: []rule.EntryType{rule.Directory}}
	allowFile := &rule.AllowType{Types: []rule.EntryType{rule.RegularFile}}

	got, err := allowDir.Match(rule.NewEntry(dirLink, nil))
	require.NoError(t, err)
	assert.True(t, got, "a link to a directory is a directory")

	got, err = allowDir.Match(rule.NewEntry(dangling, nil))
	require.NoError(t, err)
	assert.False(t, got)

	got, err = allowFile.Match(rule.NewEntry(dangling, nil))
	require.NoError(t, err)
	assert.False(t, got, "a dangling link is neither a directory nor a file")
}

func TestAllowName(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	readme := writeFile(t, dir, "README.md", 1)

	tcs := map[string]struct {
		names []string
		want  bool
	}{
		"exact name":               {names: []string{"README.md"}, want: true},
		"one of several":           {names: []string{"LICENSE", "README.md"}, want: true},
		"case sensitive":           {names: []string{"readme.md"}, want: false},
		"name without extension":   {names: []string{"README"}, want: false},
		"no names":                 {names: nil, want: false},
		"full path is not a name":  {names: []string{readme}, want: false},
		"extension is not a name":  {names: []string{".md"}, want: false},
		"prefix does not match":    {names: []string{"READ"}, want: false},
		"trailing space is exact":  {names: []string{"README.md "}, want: false},
		"duplicate names are fine": {names: []string{"README.md", "README.md"}, want: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := &rule.AllowName{Names: tc.names}

			got, err := r.Match(rule.NewEntry(readme, nil))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSizeRules_BoundsAreInclusive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "data.bin", 100)

	tcs := map[string]struct {
		r    rule.Rule
		want bool
	}{
		"min-size equal":   {r: &rule.MinSize{Bytes: 100}, want: true},
		"min-size below":   {r: &rule.MinSize{Bytes: 99}, want: true},
		"min-size above":   {r: &rule.MinSize{Bytes: 101}, want: false},
		"max-size equal":   {r: &rule.MaxSize{Bytes: 100}, want: true},
		"max-size above":   {r: &rule.MaxSize{Bytes: 101}, want: true},
		"max-size below":   {r: &rule.MaxSize{Bytes: 99}, want: false},
		"min-size of zero": {r: &rule.MinSize{Bytes: 0}, want: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := tc.r.Match(rule.NewEntry(path, nil))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRules_MetadataUnavailable(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "vanished.log")

	for name, r := range map[string]rule.Rule{
		"min-size":   &rule.MinSize{Bytes: 1},
		"max-size":   &rule.MaxSize{Bytes: 1},
		"allow-type": &rule.AllowType{Types: []rule.EntryType{rule.Directory}},
		"allow-expr": rule.MustNewAllowExpr(`size > 0`),
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := r.Match(rule.NewEntry(missing, nil))
			require.ErrorIs(t, err, rule.ErrMetadataUnavailable)
			assert.False(t, got)
		})
	}

	t.Run("allow-name needs no metadata", func(t *testing.T) {
		t.Parallel()

		r := &rule.AllowName{Names: []string{"vanished.log"}}

		got, err := r.Match(rule.NewEntry(missing, nil))
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("extension needs no metadata", func(t *testing.T) {
		t.Parallel()

		r := &rule.AllowType{Types: []rule.EntryType{rule.ExtensionType("log")}}

		got, err := r.Match(rule.NewEntry(missing, nil))
		require.NoError(t, err)
		assert.True(t, got)
	})
}

func TestRules_EvaluationIsIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "app.log", 10)

	rules := []rule.Rule{
		&rule.AllowType{Types: []rule.EntryType{rule.RegularFile}},
		&rule.AllowName{Names: []string{"app.log"}},
		&rule.MinSize{Bytes: 11},
		&rule.MaxSize{Bytes: 9},
		rule.MustNewAllowExpr(`ext == "log"`),
	}

	for _, r := range rules {
		entry := rule.NewEntry(path, nil)

		first, err := r.Match(entry)
		require.NoError(t, err)

		second, err := r.Match(entry)
		require.NoError(t, err)

		third, err := r.Match(rule.NewEntry(path, nil))
		require.NoError(t, err)

		assert.Equal(t, first, second, r.String())
		assert.Equal(t, first, third, r.String())
	}
}

func TestAllowExpr(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	small := writeFile(t, dir, "small.log", 10)
	large := writeFile(t, dir, "large.log", 2000)

	r := rule.MustNewAllowExpr(`ext == "log" && size <= 1000`)

	got, err := r.Match(rule.NewEntry(small, nil))
	require.NoError(t, err)
	assert.True(t, got)

	got, err = r.Match(rule.NewEntry(large, nil))
	require.NoError(t, err)
	assert.False(t, got)

	nonBool := rule.MustNewAllowExpr(`name`)

	got, err = nonBool.Match(rule.NewEntry(small, nil))
	require.NoError(t, err)
	assert.False(t, got, "non-boolean results are non-matches")
}

func TestNewAllowExpr_Invalid(t *testing.T) {
	t.Parallel()

	_, err := rule.NewAllowExpr(`name ==`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name ==")

	assert.Panics(t, func() {
		rule.MustNewAllowExpr(`files.exists(f, true)`)
	})
}

func TestRule_String(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		r    rule.Rule
		want string
	}{
		"allow-type": {
			r:    &rule.AllowType{Types: []rule.EntryType{rule.Directory, rule.RegularFile, rule.ExtensionType("go")}},
			want: "allow-type: [dir, file, .go]",
		},
		"allow-name": {
			r:    &rule.AllowName{Names: []string{"go.mod", "go.sum"}},
			want: "allow-name: [go.mod, go.sum]",
		},
		"min-size": {r: &rule.MinSize{Bytes: 10}, want: "min-size: 10"},
		"max-size": {r: &rule.MaxSize{Bytes: 20}, want: "max-size: 20"},
		"allow-expr": {
			r:    rule.MustNewAllowExpr(`isDir`),
			want: "allow-expr: isDir",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tc.r.String())
		})
	}
}
