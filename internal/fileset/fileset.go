// Package fileset resolves sample names to ntuple file paths using a YAML
// location config of the form
//
//	<version>:
//	  path: <base path>
//	  samples:
//	    <sample>:
//	      path: <sample directory>
//	      files: [<file>, ...]
package fileset

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mcncl/sidmtools/internal/errors"
	"github.com/mcncl/sidmtools/internal/models"
	"github.com/mcncl/sidmtools/internal/parser"
	"gopkg.in/yaml.v3"
)

// DefaultLocationConfig is used when no location config path is given.
const DefaultLocationConfig = "../configs/ntuple_locations.yaml"

// Fileset maps a sample name to its resolved file paths.
type Fileset map[string][]string

// Samples returns the sample names in sorted order.
func (f Fileset) Samples() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NumFiles counts the files across all samples.
func (f Fileset) NumFiles() int {
	n := 0
	for _, files := range f {
		n += len(files)
	}
	return n
}

// WriteYAML encodes the fileset as a YAML mapping.
func (f Fileset) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string][]string(f)); err != nil {
		return errors.NewOutputError("failed to encode fileset", err)
	}
	return enc.Close()
}

// Locations is a parsed location config.
type Locations struct {
	source string
	root   models.Map
}

// LoadLocations reads the location config at path.
func LoadLocations(path string) (*Locations, error) {
	if path == "" {
		path = DefaultLocationConfig
	}
	root, err := parser.LoadYAML(path)
	if err != nil {
		return nil, err
	}
	return &Locations{source: path, root: root}, nil
}

// Versions lists the ntuple versions in config order.
func (l *Locations) Versions() []string {
	keys := l.root.Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = fmt.Sprint(k)
	}
	return out
}

// Samples lists the samples defined for version in config order.
func (l *Locations) Samples(version string) ([]string, error) {
	v, err := l.mapping(l.root, version)
	if err != nil {
		return nil, err
	}
	samples, err := l.mapping(v, version, "samples")
	if err != nil {
		return nil, err
	}
	keys := samples.Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = fmt.Sprint(k)
	}
	return out, nil
}

// Fileset resolves samples for version. Each file path is the version's base
// path, the sample's path and the file name joined by plain concatenation.
func (l *Locations) Fileset(samples []string, version string) (Fileset, error) {
	v, err := l.mapping(l.root, version)
	if err != nil {
		return nil, err
	}
	base, err := l.str(v, version, "path")
	if err != nil {
		return nil, err
	}
	defs, err := l.mapping(v, version, "samples")
	if err != nil {
		return nil, err
	}

	fs := make(Fileset, len(samples))
	for _, sample := range samples {
		def, err := l.mapping(defs, version, "samples", sample)
		if err != nil {
			return nil, err
		}
		samplePath, err := l.str(def, version, "samples", sample, "path")
		if err != nil {
			return nil, err
		}
		files, err := l.strs(def, version, "samples", sample, "files")
		if err != nil {
			return nil, err
		}

		basePath := base + samplePath
		list := make([]string, len(files))
		for i, f := range files {
			list[i] = basePath + f
		}
		fs[sample] = list
	}
	return fs, nil
}

// MakeFileset loads the location config at locationCfg and resolves samples
// for version.
func MakeFileset(samples []string, version, locationCfg string) (Fileset, error) {
	locs, err := LoadLocations(locationCfg)
	if err != nil {
		return nil, err
	}
	return locs.Fileset(samples, version)
}

// mapping resolves the last key of path in m and requires a mapping there.
// path is the full key path from the config root.
func (l *Locations) mapping(m models.Map, path ...string) (models.Map, error) {
	v, err := l.walk(m, path)
	if err != nil {
		return nil, err
	}
	mm, ok := v.(models.Map)
	if !ok {
		return nil, l.typeError(path, "mapping", v)
	}
	return mm, nil
}

func (l *Locations) str(m models.Map, path ...string) (string, error) {
	v, err := l.walk(m, path)
	if err != nil {
		return "", err
	}
	leaf, ok := v.(models.Leaf)
	if !ok {
		return "", l.typeError(path, "string", v)
	}
	s, ok := leaf.V.(string)
	if !ok {
		return "", l.typeError(path, "string", v)
	}
	return s, nil
}

func (l *Locations) strs(m models.Map, path ...string) ([]string, error) {
	v, err := l.walk(m, path)
	if err != nil {
		return nil, err
	}
	seq, ok := v.(models.Seq)
	if !ok {
		return nil, l.typeError(path, "list of strings", v)
	}
	out := make([]string, len(seq))
	for i, item := range seq {
		leaf, ok := item.(models.Leaf)
		if !ok {
			return nil, l.typeError(path, "list of strings", v)
		}
		s, ok := leaf.V.(string)
		if !ok {
			return nil, l.typeError(path, "list of strings", v)
		}
		out[i] = s
	}
	return out, nil
}

// walk looks up the last key of path in m. The full path only appears in
// error messages.
func (l *Locations) walk(m models.Map, path []string) (models.Value, error) {
	if len(path) == 0 {
		return m, nil
	}
	next, ok := m.Lookup(path[len(path)-1])
	if !ok {
		return nil, errors.NewLookupError(
			fmt.Sprintf("key '%s' not found in '%s'", strings.Join(path, "."), l.source),
			errors.ErrKeyNotFound,
		)
	}
	return next, nil
}

func (l *Locations) typeError(path []string, want string, got models.Value) error {
	return errors.NewLookupError(
		fmt.Sprintf("key '%s' in '%s' is a %s, expected a %s", strings.Join(path, "."), l.source, models.Kind(got), want),
		errors.ErrUnexpectedType,
	)
}
