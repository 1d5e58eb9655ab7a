package chanselect

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// EnsureNeighborsComputed fills the channel and module neighbor tables.
// It is idempotent and is called by every neighbor query. Worker pools
// call it once before fanning out so that no worker pays for it.
func (t *Topology) EnsureNeighborsComputed() {
	t.neighborsOnce.Do(func() {
		n := len(t.channels)
		t.channelNeighbors = make([][]int, n)
		for i := 0; i < n; i++ {
			t.channelNeighbors[i] = t.calculateNeighborList(i)
		}

		nModules := len(t.moduleChannels)
		t.moduleNeighbors = make([][]int, nModules)
		t.moduleNeighChans = make([][]int, nModules)
		for m := 0; m < nModules; m++ {
			t.moduleNeighbors[m], t.moduleNeighChans[m] = t.calculateModuleNeighbors(m)
		}
	})
}

// calculateNeighborList finds the 8-connected neighbors of a channel at the
// same depth which are read out by a different module.
func (t *Topology) calculateNeighborList(index int) []int {
	id := t.channels[index]
	myModule := t.module[index]
	neighbors := make([]int, 0, 8)

	for etaShift := -1; etaShift <= 1; etaShift++ {
		ieta := id.Ieta + etaShift
		// there is no ring at ieta 0
		if ieta == 0 {
			ieta += etaShift
		}
		for phiShift := -1; phiShift <= 1; phiShift++ {
			if etaShift == 0 && phiShift == 0 {
				continue
			}
			iphi := wrapIphi(id.Iphi + phiShift)
			neighbor, ok := t.inverse[ChannelID{Depth: id.Depth, Ieta: ieta, Iphi: iphi}]
			if !ok {
				continue
			}
			if t.module[neighbor] != myModule {
				neighbors = append(neighbors, neighbor)
			}
		}
	}
	slices.Sort(neighbors)
	return neighbors
}

func (t *Topology) calculateModuleNeighbors(module int) ([]int, []int) {
	modules := make(map[int]struct{})
	channels := make(map[int]struct{})
	for _, ch := range t.moduleChannels[module] {
		for _, neighbor := range t.channelNeighbors[ch] {
			channels[neighbor] = struct{}{}
			modules[t.module[neighbor]] = struct{}{}
		}
	}

	moduleList := maps.Keys(modules)
	slices.Sort(moduleList)
	channelList := maps.Keys(channels)
	slices.Sort(channelList)
	return moduleList, channelList
}

// ChannelNeighbors returns the sorted indices of the channels adjacent to
// the given one which belong to other modules. The slice is a copy.
func (t *Topology) ChannelNeighbors(index int) ([]int, error) {
	if err := t.checkIndex(index); err != nil {
		return nil, err
	}
	t.EnsureNeighborsComputed()
	return slices.Clone(t.channelNeighbors[index]), nil
}

// ModuleNeighbors returns the sorted modules which own a cross-module
// neighbor of any channel of the given module.
func (t *Topology) ModuleNeighbors(module int) ([]int, error) {
	if module < 0 || module >= len(t.moduleChannels) {
		return nil, &ErrIndexOutOfRange{What: "module", Index: module, Count: len(t.moduleChannels)}
	}
	t.EnsureNeighborsComputed()
	return slices.Clone(t.moduleNeighbors[module]), nil
}

// ModuleNeighborChannels returns the sorted channels, outside the module,
// adjacent to any channel of the module.
func (t *Topology) ModuleNeighborChannels(module int) ([]int, error) {
	if module < 0 || module >= len(t.moduleChannels) {
		return nil, &ErrIndexOutOfRange{What: "module", Index: module, Count: len(t.moduleChannels)}
	}
	t.EnsureNeighborsComputed()
	return slices.Clone(t.moduleNeighChans[module]), nil
}

// ChannelSetNeighbors merges the cross-module neighbors of a set of
// channels into one sorted list without duplicates.
func (t *Topology) ChannelSetNeighbors(indices []int) ([]int, error) {
	t.EnsureNeighborsComputed()
	candidates := make([]int, 0, 8*len(indices))
	for _, index := range indices {
		if err := t.checkIndex(index); err != nil {
			return nil, err
		}
		candidates = append(candidates, t.channelNeighbors[index]...)
	}
	slices.Sort(candidates)
	return slices.Compact(candidates), nil
}
