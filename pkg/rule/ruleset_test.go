package rule_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/declutter/pkg/rule"
)

func TestNewRuleSet_Empty(t *testing.T) {
	t.Parallel()

	_, err := rule.NewRuleSet(true)
	require.ErrorIs(t, err, rule.ErrEmptyRuleSet)

	_, err = rule.NewRuleSet(false)
	require.ErrorIs(t, err, rule.ErrEmptyRuleSet)

	assert.Panics(t, func() {
		rule.MustNewRuleSet(true)
	})
}

func TestNewRuleSet_Normalization(t *testing.T) {
	t.Parallel()

	txt := rule.ExtensionType("txt")

	tcs := map[string]struct {
		rules     []rule.Rule
		want      []string
		recursive bool
	}{
		"recursive adds directory to allow-type": {
			recursive: true,
			rules:     []rule.Rule{&rule.AllowType{Types: []rule.EntryType{txt}}},
			want:      []string{"allow-type: [.txt, dir]"},
		},
		"recursive keeps existing directory": {
			recursive: true,
			rules:     []rule.Rule{&rule.AllowType{Types: []rule.EntryType{rule.Directory, txt}}},
			want:      []string{"allow-type: [dir, .txt]"},
		},
		"recursive updates every allow-type": {
			recursive: true,
			rules: []rule.Rule{
				&rule.AllowType{Types: []rule.EntryType{txt}},
				&rule.AllowName{Names: []string{"Makefile"}},
				&rule.AllowType{Types: []rule.EntryType{rule.RegularFile}},
			},
			want: []string{
				"allow-type: [.txt, dir]",
				"allow-name: [Makefile]",
				"allow-type: [file, dir]",
			},
		},
		"recursive appends allow-type when missing": {
			recursive: true,
			rules:     []rule.Rule{&rule.AllowName{Names: []string{"a"}}, &rule.MaxSize{Bytes: 10}},
			want:      []string{"allow-name: [a]", "max-size: 10", "allow-type: [dir]"},
		},
		"non-recursive leaves rules alone": {
			recursive: false,
			rules:     []rule.Rule{&rule.AllowType{Types: []rule.EntryType{txt}}},
			want:      []string{"allow-type: [.txt]"},
		},
		"non-recursive does not append": {
			recursive: false,
			rules:     []rule.Rule{&rule.AllowName{Names: []string{"a"}}},
			want:      []string{"allow-name: [a]"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rs, err := rule.NewRuleSet(tc.recursive, tc.rules...)
			require.NoError(t, err)
			assert.Equal(t, tc.recursive, rs.Recursive)

			got := make([]string, 0, len(rs.Rules))
			for _, r := range rs.Rules {
				got = append(got, r.String())
			}

			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewRuleSet_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := &rule.AllowType{Types: []rule.EntryType{rule.ExtensionType("md")}}

	rs := rule.MustNewRuleSet(true, in)
	require.Len(t, rs.Rules, 1)

	assert.Equal(t, []rule.EntryType{rule.ExtensionType("md")}, in.Types)
	assert.Equal(t, "allow-type: [.md, dir]", rs.Rules[0].String())
}

func TestRuleSet_RecursiveAlwaysAllowsDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))

	sets := []*rule.RuleSet{
		rule.MustNewRuleSet(true, &rule.AllowType{Types: []rule.EntryType{rule.ExtensionType("go")}}),
		rule.MustNewRuleSet(true, &rule.AllowName{Names: []string{"go.mod"}}),
		rule.MustNewRuleSet(true, &rule.MaxSize{Bytes: 0}),
		rule.MustNewRuleSet(true, &rule.MinSize{Bytes: 1 << 40}),
	}

	for _, rs := range sets {
		ok, err := rs.Allows(rule.NewEntry(sub, nil))
		require.NoError(t, err)
		assert.True(t, ok, rs.String())
	}
}

func TestRuleSet_AnyRuleAllows(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	big := writeFile(t, dir, "big.txt", 2000)
	small := writeFile(t, dir, "small.txt", 10)
	readme := writeFile(t, dir, "README", 5000)

	rs := rule.MustNewRuleSet(false,
		&rule.MaxSize{Bytes: 1000},
		&rule.AllowName{Names: []string{"README"}},
	)

	tcs := map[string]struct {
		path      string
		wantIndex int
	}{
		"first rule matches":  {path: small, wantIndex: 0},
		"second rule matches": {path: readme, wantIndex: 1},
		"no rule matches":     {path: big, wantIndex: -1},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			i, err := rs.Match(rule.NewEntry(tc.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tc.wantIndex, i)

			ok, err := rs.Allows(rule.NewEntry(tc.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tc.wantIndex >= 0, ok)
		})
	}
}

func TestRuleSet_MatchError(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "gone")
	rs := rule.MustNewRuleSet(false, &rule.MinSize{Bytes: 1})

	i, err := rs.Match(rule.NewEntry(missing, nil))
	require.ErrorIs(t, err, rule.ErrMetadataUnavailable)
	assert.Contains(t, err.Error(), "min-size: 1")
	assert.Equal(t, -1, i)
}

func TestRuleSet_String(t *testing.T) {
	t.Parallel()

	rs := rule.MustNewRuleSet(true, &rule.AllowName{Names: []string{"x"}})
	assert.Equal(t, "recursive: true; allow-name: [x]; allow-type: [dir]", rs.String())
}
