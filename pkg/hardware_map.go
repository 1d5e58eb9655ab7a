package chanselect

import "fmt"

const (
	NumModules     = 288
	NumRacks       = 72
	ModulesPerRack = NumModules / NumRacks
	racksPerSide   = 18
	iphiPerRack    = NumIphi / racksPerSide
)

// HardwareMap assigns channels to read-out modules (HPDs) and modules to
// racks (RBXs). Implementations must be pure functions of their arguments.
type HardwareMap interface {
	Module(sub Subdetector, ieta int, iphi int, depth int) (int, error)
	Rack(module int) (int, error)
	NumModules() int
	NumRacks() int
}

// DefaultHardwareMap reproduces the HB/HE read-out layout without a
// conditions database. Each rack serves 20 degrees in azimuth on one side
// of one subdetector, starting at iphi 71. Barrel modules serve a single
// iphi column. In the endcap the 10 degree towers (odd iphi) are split
// between two modules by depth.
type DefaultHardwareMap struct{}

func (DefaultHardwareMap) NumModules() int { return NumModules }
func (DefaultHardwareMap) NumRacks() int   { return NumRacks }

func (DefaultHardwareMap) Module(sub Subdetector, ieta int, iphi int, depth int) (int, error) {
	if ieta == 0 || iphi < 1 || iphi > NumIphi || depth < 1 || depth > MaxDepth {
		return 0, &ErrInvalidChannel{Depth: depth, Ieta: ieta, Iphi: iphi}
	}

	// iphi 71 starts the first rack
	shifted := (iphi + 1) % NumIphi
	rack := shifted / iphiPerRack
	if ieta < 0 {
		rack += racksPerSide
	}
	if sub == Endcap {
		rack += 2 * racksPerSide
	}

	position := shifted % iphiPerRack
	abseta := ieta
	if abseta < 0 {
		abseta = -abseta
	}
	if sub == Endcap && abseta > 20 && depth == 2 {
		position++
	}
	return rack*ModulesPerRack + position, nil
}

func (DefaultHardwareMap) Rack(module int) (int, error) {
	if module < 0 || module >= NumModules {
		return 0, &ErrIndexOutOfRange{What: "module", Index: module, Count: NumModules}
	}
	return module / ModulesPerRack, nil
}

// TableHardwareMap is a hardware map read from an external table, usually
// the conditions database.
type TableHardwareMap struct {
	modules  map[ChannelID]int
	racks    map[int]int
	nModules int
	nRacks   int
}

func NewTableHardwareMap() *TableHardwareMap {
	return &TableHardwareMap{
		modules: make(map[ChannelID]int),
		racks:   make(map[int]int),
	}
}

// Add registers one channel. A module must always be assigned to the same
// rack.
func (m *TableHardwareMap) Add(id ChannelID, module int, rack int) error {
	if module < 0 || rack < 0 {
		return fmt.Errorf("negative module %d or rack %d for channel %v", module, rack, id)
	}
	if prev, ok := m.racks[module]; ok && prev != rack {
		return fmt.Errorf("module %d assigned to racks %d and %d", module, prev, rack)
	}
	if _, ok := m.modules[id]; ok {
		return &ErrDuplicateChannel{Channel: id}
	}
	m.modules[id] = module
	m.racks[module] = rack
	if module >= m.nModules {
		m.nModules = module + 1
	}
	if rack >= m.nRacks {
		m.nRacks = rack + 1
	}
	return nil
}

func (m *TableHardwareMap) NumModules() int { return m.nModules }
func (m *TableHardwareMap) NumRacks() int   { return m.nRacks }

func (m *TableHardwareMap) Module(_ Subdetector, ieta int, iphi int, depth int) (int, error) {
	module, ok := m.modules[ChannelID{Depth: depth, Ieta: ieta, Iphi: iphi}]
	if !ok {
		return 0, &ErrInvalidChannel{Depth: depth, Ieta: ieta, Iphi: iphi}
	}
	return module, nil
}

func (m *TableHardwareMap) Rack(module int) (int, error) {
	rack, ok := m.racks[module]
	if !ok {
		return 0, &ErrIndexOutOfRange{What: "module", Index: module, Count: m.nModules}
	}
	return rack, nil
}
