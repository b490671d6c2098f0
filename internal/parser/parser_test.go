package parser

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mcncl/sidmtools/internal/errors"
	"github.com/mcncl/sidmtools/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseString_Mapping(t *testing.T) {
	v, err := ParseString(`
path: /store/group/
samples:
  ttbar: {path: TTJets/, files: [a.root]}
`)
	require.NoError(t, err)

	m, ok := v.(models.Map)
	require.True(t, ok, "root should be a mapping, got %T", v)
	assert.Equal(t, []any{"path", "samples"}, m.Keys())

	path, ok := m.Lookup("path")
	require.True(t, ok)
	assert.Equal(t, models.Leaf{V: "/store/group/"}, path)
}

func TestParseString_Sequence(t *testing.T) {
	v, err := ParseString(`[1, "test", true, null, 3.14]`)
	require.NoError(t, err)
	assert.Equal(t, models.Seq{
		models.Leaf{V: 1},
		models.Leaf{V: "test"},
		models.Leaf{V: true},
		models.Leaf{V: nil},
		models.Leaf{V: 3.14},
	}, v)
}

func TestParseString_Empty(t *testing.T) {
	for _, input := range []string{"", "   \n", "# only a comment\n"} {
		v, err := ParseString(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, models.Leaf{}, v)
	}
}

func TestParseString_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "unclosed flow sequence",
			input:   "a: [1, 2",
			wantErr: errors.ErrInvalidYAML,
		},
		{
			name:    "nested mapping on one line",
			input:   "a: b: c\n",
			wantErr: errors.ErrInvalidYAML,
		},
		{
			name:    "multiple documents",
			input:   "a: 1\n---\nb: 2\n",
			wantErr: errors.ErrMultipleDocs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.input)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, tt.wantErr), "got %v", err)
			assert.True(t, stderrors.Is(err, errors.NewParsingError("", nil)))
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: v7\n"), 0644))

	v, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, models.Map{{Key: "version", Value: models.Leaf{V: "v7"}}}, v)
}

func TestParseFile_Errors(t *testing.T) {
	_, err := ParseFile("")
	assert.ErrorIs(t, err, errors.ErrInvalidFilePath)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, errors.ErrFileNotFound)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("key: [unclosed\n"), 0644))
	_, err = ParseFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)
	assert.ErrorIs(t, err, errors.ErrInvalidYAML)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("a: 1\nb: [2, 3]\n"), 0644))
	m, err := LoadYAML(good)
	require.NoError(t, err)
	assert.Len(t, m, 2)

	list := filepath.Join(dir, "list.yaml")
	require.NoError(t, os.WriteFile(list, []byte("- 1\n- 2\n"), 0644))
	_, err = LoadYAML(list)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnexpectedType)
	assert.Contains(t, err.Error(), "holds a sequence")
}
