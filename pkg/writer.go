package chanselect

import (
	"errors"
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
)

// SelectedEvent bundles an event with the outcome of its selection.
type SelectedEvent struct {
	Event    RawEvent
	Clusters ClusteringResult
	Result   SelectionResult
	// Linear channel index per pulse
	Channels []int
	GoodJets []JetCandidate
	Summary  PruneSummary
}

type Writer struct {
	File                *hdf5.File
	Filename            string
	RunGroup            *hdf5.Group
	SelectionGroup      *hdf5.Group
	TopologyGroup       *hdf5.Group
	EventTable          *hdf5.Dataset
	ChannelTable        *hdf5.Dataset
	JetTable            *hdf5.Dataset
	ChannelMapTable     *hdf5.Dataset
	ModuleNeighborTable *hdf5.Dataset
	StoreSelectedOnly   bool
	EvtCounter          int
	ChannelCounter      int
	JetCounter          int
}

func NewWriter(filename string) (*Writer, error) {
	var err error
	writer := &Writer{Filename: filename, StoreSelectedOnly: configuration.StoreSelectedOnly}
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Creating file: %s", filename), "writer")
	}

	if writer.File, err = openFile(filename); err != nil {
		return nil, err
	}
	if writer.RunGroup, err = createGroup(writer.File, "Run"); err != nil {
		return nil, errors.Join(err, writer.Close())
	}
	if writer.SelectionGroup, err = createGroup(writer.File, "Selection"); err != nil {
		return nil, errors.Join(err, writer.Close())
	}
	if writer.TopologyGroup, err = createGroup(writer.File, "Topology"); err != nil {
		return nil, errors.Join(err, writer.Close())
	}
	if writer.EventTable, err = createTable(writer.RunGroup, "events", EventDataHDF5{}); err != nil {
		return nil, errors.Join(err, writer.Close())
	}
	if writer.ChannelTable, err = createTable(writer.SelectionGroup, "channels", SelectedChannelHDF5{}); err != nil {
		return nil, errors.Join(err, writer.Close())
	}
	if writer.JetTable, err = createTable(writer.SelectionGroup, "jets", JetHDF5{}); err != nil {
		return nil, errors.Join(err, writer.Close())
	}
	if writer.ChannelMapTable, err = createTable(writer.TopologyGroup, "channels", ChannelMapHDF5{}); err != nil {
		return nil, errors.Join(err, writer.Close())
	}
	if writer.ModuleNeighborTable, err = createTable(writer.TopologyGroup, "moduleNeighbors", ModuleNeighborHDF5{}); err != nil {
		return nil, errors.Join(err, writer.Close())
	}
	return writer, nil
}

// WriteTopology stores the channel map and the module adjacency so that
// noise correlation studies can be done from the output file alone.
func (w *Writer) WriteTopology(t *Topology) error {
	channels := make([]ChannelMapHDF5, t.ChannelCount())
	for i := range channels {
		id, _ := t.TripleOf(i)
		module, _ := t.ModuleOf(i)
		rack, _ := t.RackOf(i)
		posInModule, _ := t.PositionInModule(i)
		posInRack, _ := t.PositionInRack(i)
		channels[i] = ChannelMapHDF5{
			channel:     int32(i),
			depth:       int32(id.Depth),
			ieta:        int32(id.Ieta),
			iphi:        int32(id.Iphi),
			module:      int32(module),
			rack:        int32(rack),
			posInModule: int32(posInModule),
			posInRack:   int32(posInRack),
		}
	}
	if err := writeArrayToTable(w.ChannelMapTable, &channels, 0); err != nil {
		return fmt.Errorf("error writing channel map: %w", err)
	}

	neighbors := make([]ModuleNeighborHDF5, 0)
	for m := 0; m < t.NumModules(); m++ {
		moduleNeighbors, err := t.ModuleNeighbors(m)
		if err != nil {
			return err
		}
		for _, n := range moduleNeighbors {
			neighbors = append(neighbors, ModuleNeighborHDF5{module: int32(m), neighbor: int32(n)})
		}
	}
	if err := writeArrayToTable(w.ModuleNeighborTable, &neighbors, 0); err != nil {
		return fmt.Errorf("error writing module neighbors: %w", err)
	}
	return nil
}

func (w *Writer) WriteEvent(selected *SelectedEvent) error {
	event := &selected.Event
	evtData := EventDataHDF5{
		evt_number:     int32(event.EventID),
		run_number:     int32(event.RunNumber),
		n_pulses:       int32(event.PulseCount()),
		n_selected:     int32(selected.Result.NumSelected()),
		sum_et:         selected.Clusters.SumEt,
		unclustered_et: selected.Clusters.UnclusteredEt,
	}
	if err := writeEntryToTable(w.EventTable, evtData, w.EvtCounter); err != nil {
		return fmt.Errorf("error writing event %d: %w", event.EventID, err)
	}

	channels := make([]SelectedChannelHDF5, 0, event.PulseCount())
	for i, isSelected := range selected.Result.Selected {
		if w.StoreSelectedOnly && !isSelected {
			continue
		}
		var flag int8
		if isSelected {
			flag = 1
		}
		channels = append(channels, SelectedChannelHDF5{
			evt_number: int32(event.EventID),
			pulse:      int32(i),
			channel:    int32(selected.Channels[i]),
			selected:   flag,
			jet_pt:     selected.Result.JetPt[i],
		})
	}
	if err := writeArrayToTable(w.ChannelTable, &channels, w.ChannelCounter); err != nil {
		return fmt.Errorf("error writing channels of event %d: %w", event.EventID, err)
	}
	w.ChannelCounter += len(channels)

	good := make(map[int]bool, len(selected.GoodJets))
	for _, jet := range selected.GoodJets {
		good[jet.Index] = true
	}
	jets := make([]JetHDF5, len(selected.Clusters.Jets))
	for i, jet := range selected.Clusters.Jets {
		var flag int8
		if good[jet.Index] {
			flag = 1
		}
		jets[i] = JetHDF5{
			evt_number: int32(event.EventID),
			index:      int32(jet.Index),
			eta:        jet.Eta,
			phi:        jet.Phi,
			pt:         jet.Pt,
			et:         jet.Et,
			good:       flag,
		}
	}
	if err := writeArrayToTable(w.JetTable, &jets, w.JetCounter); err != nil {
		return fmt.Errorf("error writing jets of event %d: %w", event.EventID, err)
	}
	w.JetCounter += len(jets)

	w.EvtCounter++
	return nil
}

func (w *Writer) Close() error {
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Closing file %s", w.Filename), "writer")
	}
	var errs []error

	datasets := []struct {
		name string
		dset *hdf5.Dataset
	}{
		{"event table", w.EventTable},
		{"channel table", w.ChannelTable},
		{"jet table", w.JetTable},
		{"channel map table", w.ChannelMapTable},
		{"module neighbor table", w.ModuleNeighborTable},
	}
	for _, d := range datasets {
		if d.dset == nil {
			continue
		}
		if err := d.dset.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing %s: %w", d.name, err))
		}
	}

	groups := []struct {
		name  string
		group *hdf5.Group
	}{
		{"run group", w.RunGroup},
		{"selection group", w.SelectionGroup},
		{"topology group", w.TopologyGroup},
	}
	for _, g := range groups {
		if g.group == nil {
			continue
		}
		if err := g.group.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing %s: %w", g.name, err))
		}
	}

	if w.File != nil {
		if err := w.File.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing file: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
