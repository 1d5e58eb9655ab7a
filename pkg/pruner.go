package chanselect

import (
	"cmp"

	"golang.org/x/exp/slices"
)

const (
	DefaultEtFractionCutoff = 0.02
	DefaultJetPtCutoff      = 20.0
)

// Pruner drops, for every jet, the softest associated channels as long as
// their summed energy stays within EtFraction of the jet Et. Channels of
// jets softer than JetPtCutoff are dropped altogether.
type Pruner struct {
	EtFraction  float64
	JetPtCutoff float64
}

// PruneSummary counts what the pruner did in one event.
type PruneSummary struct {
	Unassociated  int
	BudgetDropped int
	PtDropped     int
	GoodJets      []int
}

func (p Pruner) Prune(associations []Association, jets []JetCandidate) (SelectionResult, PruneSummary) {
	result := NewSelectionResult(len(associations))
	summary := PruneSummary{GoodJets: make([]int, 0, len(jets))}

	jetChannels := make([][]int, len(jets))
	for i, a := range associations {
		if a.Jet < 0 {
			summary.Unassociated++
			continue
		}
		jetChannels[a.Jet] = append(jetChannels[a.Jet], i)
	}

	for j, jet := range jets {
		channels := jetChannels[j]
		goodJet := jet.Pt >= p.JetPtCutoff
		if goodJet {
			summary.GoodJets = append(summary.GoodJets, j)
		}
		if len(channels) == 0 {
			continue
		}

		slices.SortStableFunc(channels, func(a, b int) int {
			return cmp.Compare(associations[a].Energy, associations[b].Energy)
		})

		var kept []int
		if jet.Et > 0 {
			budget := p.EtFraction * jet.Et
			discarded := 0.0
			first := len(channels)
			for k, ch := range channels {
				if discarded+associations[ch].Energy > budget {
					first = k
					break
				}
				discarded += associations[ch].Energy
			}
			kept = channels[first:]
		}
		summary.BudgetDropped += len(channels) - len(kept)

		if !goodJet {
			summary.PtDropped += len(kept)
			continue
		}
		for _, ch := range kept {
			result.Selected[ch] = true
			result.JetPt[ch] = jet.Pt
		}
	}
	return result, summary
}
