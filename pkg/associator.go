package chanselect

import (
	"math"
	"strconv"
)

type ConeMetric int

const (
	MetricEllipse ConeMetric = iota
	MetricEuclidean
)

var coneMetricStrings = []string{
	"ellipse",
	"euclidean",
}

func (m ConeMetric) String() string {
	if m < MetricEllipse || m > MetricEuclidean {
		return "UNKNOWN"
	}
	return coneMetricStrings[m]
}

func ParseConeMetric(s string) (ConeMetric, error) {
	for i, v := range coneMetricStrings {
		if v == s {
			return ConeMetric(i), nil
		}
	}
	return MetricEllipse, &ErrUnsupportedConfiguration{Option: "cone_metric", Value: s}
}

// Cone decides which jet, if any, a channel belongs to.
//
// With the ellipse metric the cone axes are Radius*sqrt(r) in eta and
// Radius/sqrt(r) in phi, r being EtaToPhiRatio, so that their geometric
// mean is Radius. For r = 1 both metrics coincide. Radius and r must be
// positive; NewCone checks them.
type Cone struct {
	Radius        float64
	EtaToPhiRatio float64
	Metric        ConeMetric
}

func NewCone(radius float64, etaToPhiRatio float64, metric ConeMetric) (Cone, error) {
	if !(radius > 0) {
		return Cone{}, &ErrUnsupportedConfiguration{Option: "cone_size", Value: strconv.FormatFloat(radius, 'g', -1, 64)}
	}
	if !(etaToPhiRatio > 0) {
		return Cone{}, &ErrUnsupportedConfiguration{
			Option: "eta_to_phi_bandwidth_ratio",
			Value:  strconv.FormatFloat(etaToPhiRatio, 'g', -1, 64),
		}
	}
	if metric != MetricEllipse && metric != MetricEuclidean {
		return Cone{}, &ErrUnsupportedConfiguration{Option: "cone_metric", Value: metric.String()}
	}
	return Cone{Radius: radius, EtaToPhiRatio: etaToPhiRatio, Metric: metric}, nil
}

func (c Cone) Distance(eta1, phi1, eta2, phi2 float64) float64 {
	dEta := eta1 - eta2
	dPhi := deltaPhi(phi1, phi2)
	if c.Metric == MetricEllipse {
		return math.Sqrt(dEta*dEta/c.EtaToPhiRatio + dPhi*dPhi*c.EtaToPhiRatio)
	}
	return math.Hypot(dEta, dPhi)
}

// deltaPhi returns phi1 - phi2 folded into [-pi, pi].
func deltaPhi(phi1, phi2 float64) float64 {
	return math.Remainder(phi1-phi2, 2*math.Pi)
}

// Association links one channel to a jet. Jet is the position of the jet
// in the candidate list, or -1.
type Association struct {
	Jet    int
	Energy float64
}

// Associate assigns every channel to the nearest jet within the cone.
// When two jets are at the same distance the one with the lower candidate
// index wins.
func (c Cone) Associate(eta []float64, phi []float64, energy []float64, jets []JetCandidate) []Association {
	result := make([]Association, len(eta))
	for i := range eta {
		best := -1
		bestDistance := math.Inf(1)
		for j, jet := range jets {
			d := c.Distance(eta[i], phi[i], jet.Eta, jet.Phi)
			if d > c.Radius {
				continue
			}
			if d < bestDistance || (best >= 0 && d == bestDistance && jet.Index < jets[best].Index) {
				best = j
				bestDistance = d
			}
		}
		result[i] = Association{Jet: best, Energy: energy[i]}
	}
	return result
}
