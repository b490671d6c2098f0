package plot

import (
	"fmt"
	"os"

	"github.com/mcncl/sidmtools/internal/errors"
	"gopkg.in/yaml.v3"
)

// Histogram is anything with binned axes and per-bin values. The number of
// axes decides how it is drawn.
type Histogram interface {
	Axes() []Axis
	Values() []float64
}

// Axis is a regularly binned axis.
type Axis struct {
	Name  string  `yaml:"name"`
	Label string  `yaml:"label"`
	Bins  int     `yaml:"bins"`
	Start float64 `yaml:"start"`
	Stop  float64 `yaml:"stop"`
}

// Regular creates an axis with bins equal-width bins over [start, stop).
func Regular(bins int, start, stop float64, name, label string) Axis {
	return Axis{Name: name, Label: label, Bins: bins, Start: start, Stop: stop}
}

// Edges returns the bins+1 bin edges.
func (a Axis) Edges() []float64 {
	edges := make([]float64, a.Bins+1)
	width := (a.Stop - a.Start) / float64(a.Bins)
	for i := range edges {
		edges[i] = a.Start + float64(i)*width
	}
	return edges
}

// Index returns the bin holding x, or -1 when x is outside the axis.
func (a Axis) Index(x float64) int {
	if x < a.Start || x >= a.Stop {
		return -1
	}
	i := int((x - a.Start) / (a.Stop - a.Start) * float64(a.Bins))
	if i >= a.Bins {
		i = a.Bins - 1
	}
	return i
}

func (a Axis) validate() error {
	if a.Bins <= 0 {
		return fmt.Errorf("axis %q: bins must be positive, got %d", a.Name, a.Bins)
	}
	if !(a.Stop > a.Start) {
		return fmt.Errorf("axis %q: stop %v must be greater than start %v", a.Name, a.Stop, a.Start)
	}
	return nil
}

// Hist is a weighted histogram over any number of regular axes. Values are
// stored row-major: the last axis varies fastest.
type Hist struct {
	Title  string
	axes   []Axis
	values []float64
}

// NewHist creates an empty histogram over axes.
func NewHist(axes ...Axis) (*Hist, error) {
	size := 1
	for _, a := range axes {
		if err := a.validate(); err != nil {
			return nil, errors.NewInputError("invalid histogram axis", err)
		}
		size *= a.Bins
	}
	return &Hist{axes: axes, values: make([]float64, size)}, nil
}

// Axes implements Histogram.
func (h *Hist) Axes() []Axis { return h.axes }

// Values implements Histogram.
func (h *Hist) Values() []float64 { return h.values }

// Fill adds weight to the bin holding coords. Entries outside the axes are
// dropped; a wrong number of coordinates is an error.
func (h *Hist) Fill(weight float64, coords ...float64) error {
	if len(coords) != len(h.axes) {
		return fmt.Errorf("fill: got %d coordinates for a %d-dimensional histogram", len(coords), len(h.axes))
	}
	idx := 0
	for i, a := range h.axes {
		bin := a.Index(coords[i])
		if bin < 0 {
			return nil
		}
		idx = idx*a.Bins + bin
	}
	h.values[idx] += weight
	return nil
}

// At returns the value of the bin addressed by one index per axis.
func (h *Hist) At(bins ...int) float64 {
	idx := 0
	for i, a := range h.axes {
		idx = idx*a.Bins + bins[i]
	}
	return h.values[idx]
}

// Sum returns the total of all bins.
func (h *Hist) Sum() float64 {
	total := 0.0
	for _, v := range h.values {
		total += v
	}
	return total
}

// histFile is the on-disk layout read by LoadHistograms.
type histFile struct {
	Hists []struct {
		Title   string      `yaml:"title"`
		Axes    []Axis      `yaml:"axes"`
		Values  []float64   `yaml:"values"`
		Entries [][]float64 `yaml:"entries"`
	} `yaml:"hists"`
}

// LoadHistograms reads histograms from a YAML file. Each histogram lists its
// axes and either its bin values (row-major) or raw entries to fill, one
// coordinate per axis with an optional trailing weight.
func LoadHistograms(path string) ([]Histogram, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(fmt.Sprintf("file '%s' not found", path), errors.ErrFileNotFound)
		}
		return nil, errors.NewInputError(fmt.Sprintf("failed to read file '%s'", path), err)
	}

	var f histFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to parse histogram file '%s'", path), err)
	}

	hists := make([]Histogram, 0, len(f.Hists))
	for i, spec := range f.Hists {
		h, err := NewHist(spec.Axes...)
		if err != nil {
			return nil, err
		}
		h.Title = spec.Title
		if spec.Values != nil {
			if len(spec.Values) != len(h.values) {
				return nil, errors.NewInputError(
					fmt.Sprintf("histogram %d: got %d values for %d bins", i, len(spec.Values), len(h.values)), nil)
			}
			copy(h.values, spec.Values)
		}
		for _, entry := range spec.Entries {
			weight := 1.0
			coords := entry
			if len(entry) == len(h.axes)+1 {
				coords, weight = entry[:len(h.axes)], entry[len(h.axes)]
			}
			if err := h.Fill(weight, coords...); err != nil {
				return nil, errors.NewInputError(fmt.Sprintf("histogram %d", i), err)
			}
		}
		hists = append(hists, h)
	}
	return hists, nil
}
