package chanselect

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pulse struct {
	id     ChannelID
	energy float64
}

// newTestEvent builds an event whose pulses integrate to the given
// energies over the default response window.
func newTestEvent(pulses ...pulse) *RawEvent {
	event := &RawEvent{RunNumber: 1, EventID: 17}
	width := float64(DefaultMaxResponse - DefaultMinResponse)
	for _, p := range pulses {
		event.Depth = append(event.Depth, p.id.Depth)
		event.Ieta = append(event.Ieta, p.id.Ieta)
		event.Iphi = append(event.Iphi, p.id.Iphi)
		event.Charge = append(event.Charge, constantSamples(DefaultTimeSlices, 1+p.energy/width))
		event.Pedestal = append(event.Pedestal, constantSamples(DefaultTimeSlices, 1))
		event.Gain = append(event.Gain, constantSamples(DefaultTimeSlices, 1))
	}
	return event
}

func newTestSelector(t *testing.T, config Configuration) (*JetChannelSelector, *Topology) {
	t.Helper()
	topology := newDefaultTopology(t)
	geometry := newSyntheticGeometry(t, topology)
	selector, err := NewJetChannelSelector(config, topology, geometry)
	require.NoError(t, err)
	return selector, topology
}

func TestJetChannelSelector_Select(t *testing.T) {
	selector, _ := newTestSelector(t, DefaultConfiguration())

	core := ChannelID{Depth: 1, Ieta: 3, Iphi: 10}
	soft := ChannelID{Depth: 1, Ieta: -10, Iphi: 40}
	coreEta, corePhi := syntheticEtaPhi(core)
	softEta, softPhi := syntheticEtaPhi(soft)

	event := newTestEvent(
		pulse{core, 40},
		pulse{ChannelID{Depth: 1, Ieta: 4, Iphi: 10}, 0.5},
		pulse{ChannelID{Depth: 1, Ieta: 3, Iphi: 11}, 0.6},
		pulse{soft, 20},
		pulse{ChannelID{Depth: 2, Ieta: 25, Iphi: 61}, 3},
	)
	clusters := ClusteringResult{
		Jets: []JetCandidate{
			{Index: 0, Eta: coreEta, Phi: corePhi, Pt: 50, Et: 50},
			{Index: 1, Eta: softEta, Phi: softPhi, Pt: 10, Et: 10},
		},
		SumEt:         75,
		UnclusteredEt: 4,
	}

	result, err := selector.Select(event, clusters)
	require.NoError(t, err)

	// The 2% budget of the hard jet absorbs the 0.5 GeV pulse but not the
	// next one as well. The soft jet is below the Pt cutoff.
	assert.Equal(t, []bool{true, false, true, false, false}, result.Selected)
	assert.Equal(t, []float64{50, 0, 50, 0, 0}, result.JetPt)

	summary := selector.Summary()
	assert.Equal(t, 1, summary.Unassociated)
	assert.Equal(t, 1, summary.BudgetDropped)
	assert.Equal(t, 1, summary.PtDropped)
	require.Len(t, selector.GoodJets(), 1)
	assert.Equal(t, 0, selector.GoodJets()[0].Index)
	assert.Equal(t, 75.0, selector.SumEt())
	assert.Equal(t, 4.0, selector.UnclusteredEt())
}

func TestJetChannelSelector_UsesTransverseEnergy(t *testing.T) {
	config := DefaultConfiguration()
	config.EtFractionCutoff = 0.1
	selector, _ := newTestSelector(t, config)

	// At ieta 20 cosh(eta) is about 2.8, so 12 GeV is about 4 GeV of Et,
	// which fits in the 5 GeV budget of the jet.
	id := ChannelID{Depth: 1, Ieta: 20, Iphi: 30}
	eta, phi := syntheticEtaPhi(id)
	require.Less(t, 12/math.Cosh(eta), 5.0)

	event := newTestEvent(pulse{id, 12})
	clusters := ClusteringResult{Jets: []JetCandidate{{Index: 0, Eta: eta, Phi: phi, Pt: 50, Et: 50}}}

	result, err := selector.Select(event, clusters)
	require.NoError(t, err)
	assert.False(t, result.Selected[0])
}

func TestJetChannelSelector_NoJets(t *testing.T) {
	selector, _ := newTestSelector(t, DefaultConfiguration())
	event := newTestEvent(pulse{ChannelID{Depth: 1, Ieta: 1, Iphi: 1}, 100})

	result, err := selector.Select(event, ClusteringResult{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.NumSelected())
	assert.Empty(t, selector.GoodJets())
}

func TestJetChannelSelector_Errors(t *testing.T) {
	selector, _ := newTestSelector(t, DefaultConfiguration())

	event := newTestEvent(pulse{ChannelID{Depth: 1, Ieta: 0, Iphi: 1}, 1})
	_, err := selector.Select(event, ClusteringResult{})
	var invalid *ErrInvalidChannel
	assert.True(t, errors.As(err, &invalid))

	id := ChannelID{Depth: 1, Ieta: 5, Iphi: 5}
	event = newTestEvent(pulse{id, 1}, pulse{id, 2})
	_, err = selector.Select(event, ClusteringResult{})
	var duplicate *ErrDuplicateChannel
	require.True(t, errors.As(err, &duplicate))
	assert.Equal(t, id, duplicate.Channel)

	event = newTestEvent(pulse{id, 1})
	event.Gain[0] = event.Gain[0][:5]
	_, err = selector.Select(event, ClusteringResult{})
	assert.Error(t, err)
}

func TestNewChannelSelector(t *testing.T) {
	topology := newDefaultTopology(t)
	geometry := newSyntheticGeometry(t, topology)

	config := DefaultConfiguration()
	selector, err := NewChannelSelector(config, topology, geometry)
	require.NoError(t, err)
	assert.IsType(t, &JetChannelSelector{}, selector)

	config.ChannelSelector = AllSelectorName
	selector, err = NewChannelSelector(config, topology, geometry)
	require.NoError(t, err)
	result, err := selector.Select(newTestEvent(
		pulse{ChannelID{Depth: 1, Ieta: 1, Iphi: 1}, 1},
		pulse{ChannelID{Depth: 1, Ieta: 2, Iphi: 1}, 1},
	), ClusteringResult{})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true}, result.Selected)

	config.ChannelSelector = "TrackChannelSelector"
	_, err = NewChannelSelector(config, topology, geometry)
	var unsupported *ErrUnsupportedConfiguration
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "channel_selector", unsupported.Option)

	config = DefaultConfiguration()
	config.MaxResponseTS = 12
	_, err = NewChannelSelector(config, topology, geometry)
	var window *ErrInvalidWindow
	assert.True(t, errors.As(err, &window))

	config = DefaultConfiguration()
	config.EtaToPhiBandwidthRatio = 0
	_, err = NewChannelSelector(config, topology, geometry)
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "eta_to_phi_bandwidth_ratio", unsupported.Option)

	config = DefaultConfiguration()
	config.ConeMetric = "square"
	_, err = NewChannelSelector(config, topology, geometry)
	assert.True(t, errors.As(err, &unsupported))
}
