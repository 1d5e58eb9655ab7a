package chanselect

import (
	"fmt"
	"sync"

	"golang.org/x/exp/slices"
)

// ChannelCount is the number of HB/HE read-out channels.
const ChannelCount = 5184

type etaBlock struct {
	etaMin   int
	etaMax   int
	iphiStep int
}

// Tower layout per depth. Rings beyond |ieta| = 20 have 10 degree towers
// which are read out at odd iphi only.
var channelLayout = [MaxDepth][]etaBlock{
	{
		{-29, -21, 2},
		{-20, 20, 1},
		{21, 29, 2},
	},
	{
		{-29, -21, 2},
		{-20, -18, 1},
		{-16, -15, 1},
		{15, 16, 1},
		{18, 20, 1},
		{21, 29, 2},
	},
	{
		{-28, -27, 2},
		{-16, -16, 1},
		{16, 16, 1},
		{27, 28, 2},
	},
}

// EnumerateChannels returns the canonical channel ordering. The position of
// a channel in the returned slice is its linear index.
func EnumerateChannels() []ChannelID {
	channels := make([]ChannelID, 0, ChannelCount)
	for d, blocks := range channelLayout {
		depth := d + 1
		for _, block := range blocks {
			for ieta := block.etaMin; ieta <= block.etaMax; ieta++ {
				if ieta == 0 {
					continue
				}
				for iphi := 1; iphi <= NumIphi; iphi += block.iphiStep {
					channels = append(channels, ChannelID{Depth: depth, Ieta: ieta, Iphi: iphi})
				}
			}
		}
	}
	return channels
}

// Topology is the channel index of the calorimeter. It is immutable once
// built, apart from the neighbor tables which are filled on first use.
type Topology struct {
	channels []ChannelID
	inverse  map[ChannelID]int

	module           []int
	rack             []int
	positionInModule []int
	positionInRack   []int
	moduleChannels   [][]int
	rackChannels     [][]int

	neighborsOnce    sync.Once
	channelNeighbors [][]int
	moduleNeighbors  [][]int
	moduleNeighChans [][]int
}

// BuildTopology enumerates the channels and assigns them to modules and
// racks with the given hardware map.
func BuildTopology(hw HardwareMap) (*Topology, error) {
	channels := EnumerateChannels()
	if len(channels) != ChannelCount {
		return nil, fmt.Errorf("enumerated %d channels, expected %d", len(channels), ChannelCount)
	}

	nModules := hw.NumModules()
	nRacks := hw.NumRacks()
	t := &Topology{
		channels:         channels,
		inverse:          make(map[ChannelID]int, ChannelCount),
		module:           make([]int, ChannelCount),
		rack:             make([]int, ChannelCount),
		positionInModule: make([]int, ChannelCount),
		positionInRack:   make([]int, ChannelCount),
		moduleChannels:   make([][]int, nModules),
		rackChannels:     make([][]int, nRacks),
	}

	for i, id := range channels {
		t.inverse[id] = i

		sub, err := Classify(id.Depth, id.Ieta)
		if err != nil {
			return nil, err
		}
		module, err := hw.Module(sub, id.Ieta, id.Iphi, id.Depth)
		if err != nil {
			return nil, fmt.Errorf("error mapping channel %v to a module: %w", id, err)
		}
		if module < 0 || module >= nModules {
			return nil, &ErrIndexOutOfRange{What: "module", Index: module, Count: nModules}
		}
		rack, err := hw.Rack(module)
		if err != nil {
			return nil, fmt.Errorf("error mapping module %d to a rack: %w", module, err)
		}
		if rack < 0 || rack >= nRacks {
			return nil, &ErrIndexOutOfRange{What: "rack", Index: rack, Count: nRacks}
		}

		t.module[i] = module
		t.positionInModule[i] = len(t.moduleChannels[module])
		t.moduleChannels[module] = append(t.moduleChannels[module], i)

		t.rack[i] = rack
		t.positionInRack[i] = len(t.rackChannels[rack])
		t.rackChannels[rack] = append(t.rackChannels[rack], i)
	}
	return t, nil
}

func (t *Topology) ChannelCount() int { return len(t.channels) }
func (t *Topology) NumModules() int   { return len(t.moduleChannels) }
func (t *Topology) NumRacks() int     { return len(t.rackChannels) }

func (t *Topology) IsValidTriple(depth int, ieta int, iphi int) bool {
	_, ok := t.inverse[ChannelID{Depth: depth, Ieta: ieta, Iphi: iphi}]
	return ok
}

func (t *Topology) LinearIndex(depth int, ieta int, iphi int) (int, error) {
	index, ok := t.inverse[ChannelID{Depth: depth, Ieta: ieta, Iphi: iphi}]
	if !ok {
		return 0, &ErrInvalidChannel{Depth: depth, Ieta: ieta, Iphi: iphi}
	}
	return index, nil
}

func (t *Topology) checkIndex(index int) error {
	if index < 0 || index >= len(t.channels) {
		return &ErrIndexOutOfRange{What: "channel", Index: index, Count: len(t.channels)}
	}
	return nil
}

func (t *Topology) TripleOf(index int) (ChannelID, error) {
	if err := t.checkIndex(index); err != nil {
		return ChannelID{}, err
	}
	return t.channels[index], nil
}

func (t *Topology) ModuleOf(index int) (int, error) {
	if err := t.checkIndex(index); err != nil {
		return 0, err
	}
	return t.module[index], nil
}

func (t *Topology) RackOf(index int) (int, error) {
	if err := t.checkIndex(index); err != nil {
		return 0, err
	}
	return t.rack[index], nil
}

// PositionInModule is the ordinal of the channel among the members of its
// module, in the order the channels were enumerated.
func (t *Topology) PositionInModule(index int) (int, error) {
	if err := t.checkIndex(index); err != nil {
		return 0, err
	}
	return t.positionInModule[index], nil
}

func (t *Topology) PositionInRack(index int) (int, error) {
	if err := t.checkIndex(index); err != nil {
		return 0, err
	}
	return t.positionInRack[index], nil
}

// ModuleChannels returns a copy of the channels read out by the module,
// in enumeration order.
func (t *Topology) ModuleChannels(module int) ([]int, error) {
	if module < 0 || module >= len(t.moduleChannels) {
		return nil, &ErrIndexOutOfRange{What: "module", Index: module, Count: len(t.moduleChannels)}
	}
	return slices.Clone(t.moduleChannels[module]), nil
}

func (t *Topology) RackChannels(rack int) ([]int, error) {
	if rack < 0 || rack >= len(t.rackChannels) {
		return nil, &ErrIndexOutOfRange{What: "rack", Index: rack, Count: len(t.rackChannels)}
	}
	return slices.Clone(t.rackChannels[rack]), nil
}

func (t *Topology) MaxChannelsPerModule() int {
	return maxBucketSize(t.moduleChannels)
}

func (t *Topology) MaxChannelsPerRack() int {
	return maxBucketSize(t.rackChannels)
}

func maxBucketSize(buckets [][]int) int {
	maxcount := 0
	for _, b := range buckets {
		if len(b) > maxcount {
			maxcount = len(b)
		}
	}
	return maxcount
}
