package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mcncl/sidmtools/internal/config"
	"github.com/mcncl/sidmtools/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(stdin string) (*Context, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	cfg := config.NewConfig()
	cfg.Plot.Color = false
	return &Context{
		Config: cfg,
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &stderr,
	}, &stdout, &stderr
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFlattenCmd_File(t *testing.T) {
	path := writeFile(t, "nested.yaml", "[1, [2, 3], {a: 4, b: [5, 6]}]\n")
	ctx, stdout, _ := newTestContext("")

	require.NoError(t, (&FlattenCmd{File: path}).Run(ctx))
	assert.Equal(t, "1\n2\n3\n4\n5\n6\n", stdout.String())
}

func TestFlattenCmd_Stdin(t *testing.T) {
	ctx, stdout, _ := newTestContext(`{"z": [[["deep"]]], "a": "shallow"}`)

	require.NoError(t, (&FlattenCmd{}).Run(ctx))
	assert.Equal(t, "deep\nshallow\n", stdout.String())
}

func TestFlattenCmd_EmptyContainers(t *testing.T) {
	for _, input := range []string{"[]", "{}"} {
		ctx, stdout, _ := newTestContext(input)
		require.NoError(t, (&FlattenCmd{}).Run(ctx))
		assert.Empty(t, stdout.String())
	}
}

func TestFlattenCmd_Count(t *testing.T) {
	ctx, stdout, _ := newTestContext("a: [1, [2]]\nb: 3\n")

	require.NoError(t, (&FlattenCmd{Count: true}).Run(ctx))
	assert.Equal(t, "leaves: 3\ndepth: 3\n", stdout.String())
}

func TestFlattenCmd_Debug(t *testing.T) {
	ctx, _, stderr := newTestContext("[1]")
	ctx.Debug = true

	require.NoError(t, (&FlattenCmd{}).Run(ctx))
	assert.Contains(t, stderr.String(), "debug: root: sequence")
	assert.Contains(t, stderr.String(), "debug: leaves: 1")
}

func TestFlattenCmd_MissingFile(t *testing.T) {
	ctx, _, _ := newTestContext("")
	err := (&FlattenCmd{File: "/non/existent.yaml"}).Run(ctx)
	assert.ErrorIs(t, err, errors.ErrFileNotFound)
}

func TestFlattenCmd_SelfReferencingAlias(t *testing.T) {
	ctx, stdout, _ := newTestContext("&loop [1, *loop]\n")

	err := (&FlattenCmd{}).Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrCycle)
	assert.ErrorIs(t, err, errors.NewInputError("", nil))
	assert.Equal(t, "Input error: document contains itself through an alias and cannot be flattened", errors.UserFriendlyError(err))
	assert.Empty(t, stdout.String())
}

func TestPartitionCmd(t *testing.T) {
	ctx, stdout, _ := newTestContext("")

	cmd := &PartitionCmd{Where: "v % 2 == 0", Values: []string{"1", "2", "3", "4"}}
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "passes:\n  2\n  4\nfails:\n  1\n  3\n", stdout.String())
}

func TestPartitionCmd_FromFile(t *testing.T) {
	path := writeFile(t, "samples.yaml", "signal: [2Mu2E_100GeV, 4Mu_100GeV]\nbackground: [ttbar]\n")
	ctx, stdout, _ := newTestContext("")

	cmd := &PartitionCmd{Where: `v contains "Mu"`, File: path}
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "passes:\n  2Mu2E_100GeV\n  4Mu_100GeV\nfails:\n  ttbar\n", stdout.String())
}

func TestPartitionCmd_Errors(t *testing.T) {
	ctx, _, _ := newTestContext("")
	assert.Error(t, (&PartitionCmd{Where: "v %%"}).Run(ctx))
	assert.Error(t, (&PartitionCmd{Where: "v % 2 == 0", Values: []string{"abc"}}).Run(ctx))
}

func TestScalar(t *testing.T) {
	assert.Equal(t, 3, scalar("3"))
	assert.Equal(t, 2.5, scalar("2.5"))
	assert.Equal(t, true, scalar("true"))
	assert.Equal(t, "ttbar", scalar("ttbar"))
}

const locations = `
v7:
  path: /store/
  samples:
    ttbar:
      path: TTJets/
      files: [a.root, b.root]
    wjets:
      path: WJets/
      files: [c.root]
`

func TestFilesetCmd(t *testing.T) {
	path := writeFile(t, "locations.yaml", locations)
	ctx, stdout, _ := newTestContext("")

	cmd := &FilesetCmd{Samples: []string{"ttbar"}, NtupleVersion: "v7", LocationConfig: path}
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "ttbar:\n  - /store/TTJets/a.root\n  - /store/TTJets/b.root\n", stdout.String())
}

func TestFilesetCmd_FromConfig(t *testing.T) {
	path := writeFile(t, "locations.yaml", locations)
	ctx, _, stderr := newTestContext("")
	ctx.Config.Fileset.LocationConfig = path
	ctx.Config.Fileset.Version = "v7"
	ctx.Config.Fileset.Samples = []string{"ttbar", "wjets"}

	out := filepath.Join(t.TempDir(), "fileset.yaml")
	require.NoError(t, (&FilesetCmd{Output: out}).Run(ctx))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "/store/WJets/c.root")
	assert.Contains(t, stderr.String(), "Fileset with 3 files written to")
}

func TestFilesetCmd_List(t *testing.T) {
	path := writeFile(t, "locations.yaml", locations)

	ctx, stdout, _ := newTestContext("")
	require.NoError(t, (&FilesetCmd{List: true, LocationConfig: path}).Run(ctx))
	assert.Equal(t, "v7\n", stdout.String())

	ctx, stdout, _ = newTestContext("")
	require.NoError(t, (&FilesetCmd{List: true, NtupleVersion: "v7", LocationConfig: path}).Run(ctx))
	assert.Equal(t, "ttbar\nwjets\n", stdout.String())
}

func TestFilesetCmd_Errors(t *testing.T) {
	path := writeFile(t, "locations.yaml", locations)
	ctx, _, _ := newTestContext("")

	err := (&FilesetCmd{Samples: []string{"ttbar"}, LocationConfig: path}).Run(ctx)
	assert.ErrorIs(t, err, errors.NewInputError("", nil))

	err = (&FilesetCmd{NtupleVersion: "v7", LocationConfig: path}).Run(ctx)
	assert.ErrorIs(t, err, errors.NewInputError("", nil))

	err = (&FilesetCmd{Samples: []string{"qcd"}, NtupleVersion: "v7", LocationConfig: path}).Run(ctx)
	assert.ErrorIs(t, err, errors.ErrKeyNotFound)
}

func TestDRCmd(t *testing.T) {
	ctx, stdout, _ := newTestContext("")

	cmd := &DRCmd{Eta: 0, Phi: 0, Candidates: []string{"3,4", "0.3, 0.4"}}
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "0.5\n", stdout.String())

	err := (&DRCmd{}).Run(ctx)
	assert.ErrorIs(t, err, errors.ErrNoCandidates)

	err = (&DRCmd{Candidates: []string{"1;2"}}).Run(ctx)
	assert.Error(t, err)
}

func TestDRCmd_DebugLogsNearestMatch(t *testing.T) {
	ctx, stdout, stderr := newTestContext("")
	cmd := &DRCmd{Eta: 0, Phi: 0, Candidates: []string{"3,4", "0.3,0.4"}}

	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "0.5\n", stdout.String())
	assert.Empty(t, stderr.String())

	ctx, stdout, stderr = newTestContext("")
	ctx.Debug = true
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "0.5\n", stdout.String())
	assert.Equal(t, "debug: nearest: (0.3, 0.4)\n", stderr.String())
}

func TestDRCmd_SeveralObjects(t *testing.T) {
	ctx, stdout, _ := newTestContext("")
	cmd := &DRCmd{Eta: 0, Phi: 0, Objects: []string{"3,0", "0,-2"}, Candidates: []string{"0,0"}}

	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "0\n3\n2\n", stdout.String())

	err := (&DRCmd{Objects: []string{"1,1"}}).Run(ctx)
	assert.ErrorIs(t, err, errors.ErrNoCandidates)
	assert.ErrorIs(t, err, errors.NewInputError("", nil))

	err = (&DRCmd{Objects: []string{"x"}, Candidates: []string{"0,0"}}).Run(ctx)
	assert.Error(t, err)
}

func TestPlotCmd(t *testing.T) {
	path := writeFile(t, "hists.yaml", `
hists:
  - title: mass
    axes: [{name: m, bins: 2, start: 0, stop: 2}]
    values: [1, 2]
`)
	ctx, stdout, _ := newTestContext("")

	require.NoError(t, (&PlotCmd{File: path, DPI: 90}).Run(ctx))
	assert.Contains(t, stdout.String(), "mass [m]")
	assert.Contains(t, stdout.String(), "CMS (cms, 90 dpi)")
}

func TestPlotCmd_UnsupportedStyle(t *testing.T) {
	ctx, _, _ := newTestContext("")
	err := (&PlotCmd{File: "unused.yaml", Style: "atlas"}).Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNotImplemented)
	assert.Equal(t, "Not implemented: plot style 'atlas'", errors.UserFriendlyError(err))
}

func TestPlotCmd_ThreeDimensions(t *testing.T) {
	path := writeFile(t, "cube.yaml", `
hists:
  - axes:
      - {name: x, bins: 1, start: 0, stop: 1}
      - {name: y, bins: 1, start: 0, stop: 1}
      - {name: z, bins: 1, start: 0, stop: 1}
`)
	ctx, _, _ := newTestContext("")
	err := (&PlotCmd{File: path}).Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot plot 3-dimensional hist")
}

func TestVersionCmd(t *testing.T) {
	ctx, stdout, _ := newTestContext("")
	require.NoError(t, (&VersionCmd{}).Run(ctx))
	assert.Equal(t, "sidmtools version "+Version+"\n", stdout.String())
}
