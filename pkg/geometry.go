package chanselect

import (
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
)

// ChannelGeometry holds the unit direction of every channel, keyed by the
// linear channel index of a topology.
type ChannelGeometry struct {
	directions []r3.Vec
	eta        []float64
	phi        []float64
}

// NewChannelGeometry builds the geometry from one direction per channel.
// Directions are normalised; a zero vector counts as a missing entry.
func NewChannelGeometry(topology *Topology, directions []r3.Vec) (*ChannelGeometry, error) {
	if len(directions) != topology.ChannelCount() {
		return nil, fmt.Errorf("got %d directions for %d channels", len(directions), topology.ChannelCount())
	}
	g := &ChannelGeometry{
		directions: make([]r3.Vec, len(directions)),
		eta:        make([]float64, len(directions)),
		phi:        make([]float64, len(directions)),
	}
	for i, dir := range directions {
		if r3.Norm(dir) == 0 {
			id, _ := topology.TripleOf(i)
			return nil, &ErrMissingGeometryEntry{Channel: id}
		}
		unit := r3.Unit(dir)
		g.directions[i] = unit
		g.eta[i], g.phi[i] = etaPhi(unit)
	}
	return g, nil
}

// LoadChannelGeometry reads the geometry from text files with rows
// "ieta iphi depth x y z". Together the files must cover every channel
// exactly once.
func LoadChannelGeometry(topology *Topology, filenames ...string) (*ChannelGeometry, error) {
	directions := make([]r3.Vec, topology.ChannelCount())
	filled := make([]bool, topology.ChannelCount())

	for _, filename := range filenames {
		if configuration.Verbosity > 0 {
			logger.Info(fmt.Sprintf("Reading channel geometry from %s", filename), "geometry")
		}
		if err := loadGeometryFile(topology, filename, directions, filled); err != nil {
			return nil, err
		}
	}
	return NewChannelGeometry(topology, directions)
}

func loadGeometryFile(topology *Topology, filename string, directions []r3.Vec, filled []bool) error {
	file, err := os.Open(filename)
	if err != nil {
		return &ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()

	rows, err := ReadTextTable(file, filename, 6, 3)
	if err != nil {
		return err
	}
	for _, row := range rows {
		ieta, iphi, depth := int(row[0]), int(row[1]), int(row[2])
		index, err := topology.LinearIndex(depth, ieta, iphi)
		if err != nil {
			return fmt.Errorf("error in geometry file %s: %w", filename, err)
		}
		if filled[index] {
			return &ErrDuplicateChannel{Channel: ChannelID{Depth: depth, Ieta: ieta, Iphi: iphi}}
		}
		directions[index] = r3.Vec{X: row[3], Y: row[4], Z: row[5]}
		filled[index] = true
	}
	return nil
}

func etaPhi(unit r3.Vec) (float64, float64) {
	rho := math.Hypot(unit.X, unit.Y)
	return math.Asinh(unit.Z / rho), math.Atan2(unit.Y, unit.X)
}

func (g *ChannelGeometry) Direction(index int) r3.Vec { return g.directions[index] }
func (g *ChannelGeometry) Eta(index int) float64      { return g.eta[index] }
func (g *ChannelGeometry) Phi(index int) float64      { return g.phi[index] }
