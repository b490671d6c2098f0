package fileset

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mcncl/sidmtools/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const locationCfg = "testdata/ntuple_locations.yaml"

func TestMakeFileset(t *testing.T) {
	fs, err := MakeFileset([]string{"2Mu2E_500GeV_5p0GeV_80p0mm", "4Mu_500GeV_5p0GeV_8p0mm"}, "llpNanoAOD_v2", locationCfg)
	require.NoError(t, err)

	base := "root://xcache//store/group/lpcmetx/SIDM/ULSignalSamples/2018/"
	assert.Equal(t, Fileset{
		"2Mu2E_500GeV_5p0GeV_80p0mm": {
			base + "SIDM_XXTo2ATo2Mu2E_mXX-500_mA-5p0_ctau-80p0/part-0.root",
			base + "SIDM_XXTo2ATo2Mu2E_mXX-500_mA-5p0_ctau-80p0/part-1.root",
		},
		"4Mu_500GeV_5p0GeV_8p0mm": {
			base + "SIDM_XXTo2ATo4Mu_mXX-500_mA-5p0_ctau-8p0/part-0.root",
		},
	}, fs)
	assert.Equal(t, 3, fs.NumFiles())
	assert.Equal(t, []string{"2Mu2E_500GeV_5p0GeV_80p0mm", "4Mu_500GeV_5p0GeV_8p0mm"}, fs.Samples())
}

func TestMakeFileset_NoSamples(t *testing.T) {
	fs, err := MakeFileset(nil, "llpNanoAOD_v2", locationCfg)
	require.NoError(t, err)
	assert.Empty(t, fs)
}

func TestMakeFileset_Errors(t *testing.T) {
	tests := []struct {
		name     string
		samples  []string
		version  string
		wantErr  error
		contains string
	}{
		{
			name:     "unknown version",
			samples:  []string{"x"},
			version:  "v99",
			wantErr:  errors.ErrKeyNotFound,
			contains: "key 'v99' not found",
		},
		{
			name:     "unknown sample",
			samples:  []string{"nope"},
			version:  "llpNanoAOD_v2",
			wantErr:  errors.ErrKeyNotFound,
			contains: "key 'llpNanoAOD_v2.samples.nope' not found",
		},
		{
			name:     "files is not a list",
			samples:  []string{"broken"},
			version:  "v8",
			wantErr:  errors.ErrUnexpectedType,
			contains: "v8.samples.broken.files",
		},
		{
			name:     "path is not a string",
			samples:  []string{"numeric"},
			version:  "v8",
			wantErr:  errors.ErrUnexpectedType,
			contains: "v8.samples.numeric.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MakeFileset(tt.samples, tt.version, locationCfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, errors.NewLookupError("", nil))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestMakeFileset_MissingConfig(t *testing.T) {
	_, err := MakeFileset([]string{"a"}, "v1", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, errors.ErrFileNotFound)
}

func TestMakeFileset_MissingTopLevelKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations.yaml")
	require.NoError(t, os.WriteFile(path, []byte("v1:\n  samples: {}\n"), 0644))

	_, err := MakeFileset([]string{"a"}, "v1", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key 'v1.path' not found")
}

func TestMakeFileset_SharedBaseViaMergeKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations.yaml")
	content := `
common: &common {path: "root://host//store/"}
v1:
  <<: *common
  samples:
    s: {path: s/, files: [a.root]}
v2:
  <<: *common
  path: /eos/
  samples:
    s: {path: s/, files: [b.root]}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	fs, err := MakeFileset([]string{"s"}, "v1", path)
	require.NoError(t, err)
	assert.Equal(t, Fileset{"s": {"root://host//store/s/a.root"}}, fs)

	fs, err = MakeFileset([]string{"s"}, "v2", path)
	require.NoError(t, err)
	assert.Equal(t, Fileset{"s": {"/eos/s/b.root"}}, fs)
}

func TestLocations_Listing(t *testing.T) {
	locs, err := LoadLocations(locationCfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"llpNanoAOD_v2", "v8"}, locs.Versions())

	samples, err := locs.Samples("llpNanoAOD_v2")
	require.NoError(t, err)
	assert.Equal(t, []string{"2Mu2E_500GeV_5p0GeV_80p0mm", "4Mu_500GeV_5p0GeV_8p0mm"}, samples)

	_, err = locs.Samples("v99")
	assert.ErrorIs(t, err, errors.ErrKeyNotFound)
}

func TestFileset_WriteYAML(t *testing.T) {
	fs := Fileset{"b": {"/x/b0.root"}, "a": {"/x/a0.root", "/x/a1.root"}}

	var buf bytes.Buffer
	require.NoError(t, fs.WriteYAML(&buf))

	var decoded map[string][]string
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, map[string][]string(fs), decoded)
	assert.True(t, bytes.Index(buf.Bytes(), []byte("a:")) < bytes.Index(buf.Bytes(), []byte("b:")))
}
