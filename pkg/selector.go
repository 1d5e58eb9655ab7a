package chanselect

import (
	"fmt"
	"math"
)

const (
	JetSelectorName = "JetChannelSelector"
	AllSelectorName = "AllChannelSelector"
)

// ChannelSelector marks the pulses of an event which are kept for the
// analysis.
type ChannelSelector interface {
	Select(event *RawEvent, clusters ClusteringResult) (SelectionResult, error)
}

// NewChannelSelector builds the selector named in the configuration.
func NewChannelSelector(config Configuration, topology *Topology, geometry *ChannelGeometry) (ChannelSelector, error) {
	switch config.ChannelSelector {
	case AllSelectorName:
		return AllChannelSelector{}, nil
	case JetSelectorName:
		return NewJetChannelSelector(config, topology, geometry)
	default:
		return nil, &ErrUnsupportedConfiguration{Option: "channel_selector", Value: config.ChannelSelector}
	}
}

// AllChannelSelector keeps every pulse.
type AllChannelSelector struct{}

func (AllChannelSelector) Select(event *RawEvent, _ ClusteringResult) (SelectionResult, error) {
	result := NewSelectionResult(event.PulseCount())
	for i := range result.Selected {
		result.Selected[i] = true
	}
	return result, nil
}

// JetChannelSelector keeps the channels which carry the bulk of the energy
// of the jets found in the event.
type JetChannelSelector struct {
	topology *Topology
	geometry *ChannelGeometry
	window   EnergyWindow
	cone     Cone
	pruner   Pruner

	// Per-event results, refilled by every call to Select
	goodJets      []JetCandidate
	sumEt         float64
	unclusteredEt float64
	summary       PruneSummary
}

func NewJetChannelSelector(config Configuration, topology *Topology, geometry *ChannelGeometry) (*JetChannelSelector, error) {
	window, err := NewEnergyWindow(config.MinResponseTS, config.MaxResponseTS, config.TimeSlices)
	if err != nil {
		return nil, err
	}
	metric, err := ParseConeMetric(config.ConeMetric)
	if err != nil {
		return nil, err
	}
	cone, err := NewCone(config.ConeSize, config.EtaToPhiBandwidthRatio, metric)
	if err != nil {
		return nil, err
	}
	return &JetChannelSelector{
		topology: topology,
		geometry: geometry,
		window:   window,
		cone:     cone,
		pruner: Pruner{
			EtFraction:  config.EtFractionCutoff,
			JetPtCutoff: config.JetPtCutoff,
		},
	}, nil
}

func (s *JetChannelSelector) Select(event *RawEvent, clusters ClusteringResult) (SelectionResult, error) {
	energies, err := s.window.EventEnergies(event)
	if err != nil {
		return SelectionResult{}, err
	}

	n := event.PulseCount()
	eta := make([]float64, n)
	phi := make([]float64, n)
	et := make([]float64, n)
	seen := make(map[int]struct{}, n)
	for i := 0; i < n; i++ {
		index, err := s.topology.LinearIndex(event.Depth[i], event.Ieta[i], event.Iphi[i])
		if err != nil {
			return SelectionResult{}, fmt.Errorf("event %d, pulse %d: %w", event.EventID, i, err)
		}
		if _, ok := seen[index]; ok {
			id, _ := s.topology.TripleOf(index)
			return SelectionResult{}, fmt.Errorf("event %d: %w", event.EventID, &ErrDuplicateChannel{Channel: id})
		}
		seen[index] = struct{}{}

		eta[i] = s.geometry.Eta(index)
		phi[i] = s.geometry.Phi(index)
		et[i] = energies[i] / math.Cosh(eta[i])
	}

	associations := s.cone.Associate(eta, phi, et, clusters.Jets)
	result, summary := s.pruner.Prune(associations, clusters.Jets)

	s.summary = summary
	s.goodJets = s.goodJets[:0]
	for _, j := range summary.GoodJets {
		s.goodJets = append(s.goodJets, clusters.Jets[j])
	}
	s.sumEt = clusters.SumEt
	s.unclusteredEt = clusters.UnclusteredEt

	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Event %d: %d pulses, %d jets, %d good jets, %d selected",
			event.EventID, n, len(clusters.Jets), len(s.goodJets), result.NumSelected())
		logger.Info(message, "selector")
	}
	return result, nil
}

// GoodJets returns the jets of the last event which passed the Pt cutoff.
func (s *JetChannelSelector) GoodJets() []JetCandidate { return s.goodJets }
func (s *JetChannelSelector) SumEt() float64           { return s.sumEt }
func (s *JetChannelSelector) UnclusteredEt() float64   { return s.unclusteredEt }
func (s *JetChannelSelector) Summary() PruneSummary    { return s.summary }
