package chanselect

import "fmt"

// RawEvent is the per-pulse content of one event. All slices are indexed
// by pulse occurrence; a channel occurs at most once.
type RawEvent struct {
	RunNumber uint32
	EventID   uint32
	Depth     []int
	Ieta      []int
	Iphi      []int
	Charge    [][]float64
	Pedestal  [][]float64
	Gain      [][]float64
}

func (e *RawEvent) PulseCount() int {
	return len(e.Depth)
}

// Validate checks that the per-pulse arrays are parallel and that every
// pulse has at least minSamples time slices.
func (e *RawEvent) Validate(minSamples int) error {
	n := e.PulseCount()
	if len(e.Ieta) != n || len(e.Iphi) != n || len(e.Charge) != n ||
		len(e.Pedestal) != n || len(e.Gain) != n {
		return fmt.Errorf("event %d: per-pulse arrays have different lengths", e.EventID)
	}
	for i := 0; i < n; i++ {
		if len(e.Charge[i]) < minSamples || len(e.Pedestal[i]) < minSamples || len(e.Gain[i]) < minSamples {
			return fmt.Errorf("event %d, pulse %d: fewer than %d time slices", e.EventID, i, minSamples)
		}
	}
	return nil
}

// JetCandidate is a jet found by the clustering engine.
type JetCandidate struct {
	Index int
	Eta   float64
	Phi   float64
	Pt    float64
	Et    float64
}

// ClusteringResult is what the clustering engine reports for one event.
type ClusteringResult struct {
	Jets          []JetCandidate
	SumEt         float64
	UnclusteredEt float64
}

// SelectionResult has one entry per pulse of the event.
type SelectionResult struct {
	Selected []bool
	JetPt    []float64
}

func NewSelectionResult(nPulses int) SelectionResult {
	return SelectionResult{
		Selected: make([]bool, nPulses),
		JetPt:    make([]float64, nPulses),
	}
}

func (r SelectionResult) NumSelected() int {
	n := 0
	for _, s := range r.Selected {
		if s {
			n++
		}
	}
	return n
}
