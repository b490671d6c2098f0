// Package geom computes angular separations between physics objects.
package geom

import (
	"fmt"
	"math"

	"github.com/mcncl/sidmtools/internal/errors"
	"golang.org/x/exp/constraints"
)

// Candidate is an object located in (eta, phi) space.
type Candidate struct {
	Eta float64 `yaml:"eta" json:"eta"`
	Phi float64 `yaml:"phi" json:"phi"`
}

// Nearer finds its closest match among a set of candidates and reports the
// distance metric to it. The bool is false when nothing could be matched.
type Nearer interface {
	Nearest(others []Candidate) (Candidate, float64, bool)
}

// DeltaPhi returns a-b wrapped into (-pi, pi].
func DeltaPhi[T constraints.Float](a, b T) T {
	d := math.Mod(float64(a-b), 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d <= -math.Pi {
		d += 2 * math.Pi
	}
	return T(d)
}

// DeltaR returns sqrt(deta^2 + dphi^2) between two candidates.
func DeltaR(a, b Candidate) float64 {
	return math.Hypot(a.Eta-b.Eta, DeltaPhi(a.Phi, b.Phi))
}

// Nearest implements Nearer using DeltaR as the metric. Ties keep the first
// candidate.
func (c Candidate) Nearest(others []Candidate) (Candidate, float64, bool) {
	if len(others) == 0 {
		return Candidate{}, 0, false
	}
	best, bestDR := others[0], DeltaR(c, others[0])
	for _, o := range others[1:] {
		if d := DeltaR(c, o); d < bestDR {
			best, bestDR = o, d
		}
	}
	return best, bestDR, true
}

// DR returns the metric between obj and its nearest match in others.
func DR(obj Nearer, others []Candidate) (float64, error) {
	_, metric, ok := obj.Nearest(others)
	if !ok {
		return 0, errors.ErrNoCandidates
	}
	return metric, nil
}

// DRAll applies DR to every object in objs.
func DRAll[N Nearer](objs []N, others []Candidate) ([]float64, error) {
	out := make([]float64, len(objs))
	for i, obj := range objs {
		d, err := DR(obj, others)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		out[i] = d
	}
	return out, nil
}
