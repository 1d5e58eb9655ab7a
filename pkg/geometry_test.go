package chanselect

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// syntheticEtaPhi places every tower at the centre of its nominal
// 0.087 x 5 degree cell.
func syntheticEtaPhi(id ChannelID) (float64, float64) {
	sign := 1.0
	if id.Ieta < 0 {
		sign = -1.0
	}
	eta := sign * (math.Abs(float64(id.Ieta)) - 0.5) * 0.087
	phi := (float64(id.Iphi) - 0.5) * 2 * math.Pi / NumIphi
	return eta, phi
}

func syntheticDirection(id ChannelID) r3.Vec {
	eta, phi := syntheticEtaPhi(id)
	return r3.Vec{X: math.Cos(phi), Y: math.Sin(phi), Z: math.Sinh(eta)}
}

func newSyntheticGeometry(t *testing.T, topology *Topology) *ChannelGeometry {
	t.Helper()
	directions := make([]r3.Vec, topology.ChannelCount())
	for i := range directions {
		id, err := topology.TripleOf(i)
		require.NoError(t, err)
		directions[i] = syntheticDirection(id)
	}
	geometry, err := NewChannelGeometry(topology, directions)
	require.NoError(t, err)
	return geometry
}

// writeGeometryFiles writes the synthetic geometry split in a barrel and
// an endcap file, the first one white space separated and the second one
// comma separated. Rows for which skip returns true are left out.
func writeGeometryFiles(t *testing.T, skip func(ChannelID) bool) (string, string) {
	t.Helper()
	var hb, he strings.Builder
	hb.WriteString("# ieta iphi depth x y z\n")
	he.WriteString("# ieta, iphi, depth, x, y, z\n\n")
	for _, id := range EnumerateChannels() {
		if skip != nil && skip(id) {
			continue
		}
		dir := syntheticDirection(id)
		sub, err := Classify(id.Depth, id.Ieta)
		require.NoError(t, err)
		// Arbitrary scale, only the direction matters
		dir = r3.Scale(400, dir)
		if sub == Barrel {
			fmt.Fprintf(&hb, "%d %d %d %.17g %.17g %.17g\n", id.Ieta, id.Iphi, id.Depth, dir.X, dir.Y, dir.Z)
		} else {
			fmt.Fprintf(&he, "%d, %d, %d, %.17g, %.17g, %.17g\n", id.Ieta, id.Iphi, id.Depth, dir.X, dir.Y, dir.Z)
		}
	}

	dir := t.TempDir()
	hbFile := filepath.Join(dir, "hb.ctr")
	heFile := filepath.Join(dir, "he.ctr")
	require.NoError(t, os.WriteFile(hbFile, []byte(hb.String()), 0o644))
	require.NoError(t, os.WriteFile(heFile, []byte(he.String()), 0o644))
	return hbFile, heFile
}

func TestNewChannelGeometry(t *testing.T) {
	topology := newDefaultTopology(t)
	geometry := newSyntheticGeometry(t, topology)

	for _, index := range []int{0, 100, 2500, ChannelCount - 1} {
		id, _ := topology.TripleOf(index)
		eta, phi := syntheticEtaPhi(id)
		assert.InDelta(t, eta, geometry.Eta(index), 1e-9, "eta of %v", id)
		assert.InDelta(t, 0, deltaPhi(phi, geometry.Phi(index)), 1e-9, "phi of %v", id)
		assert.InDelta(t, 1, r3.Norm(geometry.Direction(index)), 1e-12)
	}
}

func TestNewChannelGeometry_Missing(t *testing.T) {
	topology := newDefaultTopology(t)
	directions := make([]r3.Vec, topology.ChannelCount())
	for i := range directions {
		id, _ := topology.TripleOf(i)
		directions[i] = syntheticDirection(id)
	}
	directions[42] = r3.Vec{}

	_, err := NewChannelGeometry(topology, directions)
	var missing *ErrMissingGeometryEntry
	require.True(t, errors.As(err, &missing))
	id, _ := topology.TripleOf(42)
	assert.Equal(t, id, missing.Channel)

	_, err = NewChannelGeometry(topology, directions[:10])
	assert.Error(t, err)
}

func TestLoadChannelGeometry(t *testing.T) {
	topology := newDefaultTopology(t)
	hbFile, heFile := writeGeometryFiles(t, nil)

	geometry, err := LoadChannelGeometry(topology, hbFile, heFile)
	require.NoError(t, err)

	reference := newSyntheticGeometry(t, topology)
	for i := 0; i < topology.ChannelCount(); i++ {
		assert.InDelta(t, reference.Eta(i), geometry.Eta(i), 1e-9)
		assert.InDelta(t, 0, deltaPhi(reference.Phi(i), geometry.Phi(i)), 1e-9)
	}
}

func TestLoadChannelGeometry_MissingChannel(t *testing.T) {
	topology := newDefaultTopology(t)
	missingID := ChannelID{Depth: 3, Ieta: -16, Iphi: 7}
	hbFile, heFile := writeGeometryFiles(t, func(id ChannelID) bool { return id == missingID })

	_, err := LoadChannelGeometry(topology, hbFile, heFile)
	var missing *ErrMissingGeometryEntry
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, missingID, missing.Channel)

	// Without the endcap file the first endcap channel is reported
	_, err = LoadChannelGeometry(topology, hbFile)
	assert.True(t, errors.As(err, &missing))
}

func TestLoadChannelGeometry_Duplicate(t *testing.T) {
	topology := newDefaultTopology(t)
	hbFile, _ := writeGeometryFiles(t, nil)

	_, err := LoadChannelGeometry(topology, hbFile, hbFile)
	var duplicate *ErrDuplicateChannel
	assert.True(t, errors.As(err, &duplicate))
}

func TestLoadChannelGeometry_BadFiles(t *testing.T) {
	topology := newDefaultTopology(t)
	dir := t.TempDir()

	_, err := LoadChannelGeometry(topology, filepath.Join(dir, "nothere.ctr"))
	var openErr *ErrOpenFile
	assert.True(t, errors.As(err, &openErr))

	bad := filepath.Join(dir, "bad.ctr")
	require.NoError(t, os.WriteFile(bad, []byte("1 1 1 0.5 0.5 abc\n"), 0o644))
	_, err = LoadChannelGeometry(topology, bad)
	var parseErr *ErrParseTable
	assert.True(t, errors.As(err, &parseErr))

	fractional := filepath.Join(dir, "fractional.ctr")
	require.NoError(t, os.WriteFile(fractional, []byte("5.9 10.7 1.2 0.5 0.5 0.5\n"), 0o644))
	_, err = LoadChannelGeometry(topology, fractional)
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, fractional, parseErr.Source)

	unknown := filepath.Join(dir, "unknown.ctr")
	require.NoError(t, os.WriteFile(unknown, []byte("0 1 1 0.5 0.5 0.5\n"), 0o644))
	_, err = LoadChannelGeometry(topology, unknown)
	var invalid *ErrInvalidChannel
	assert.True(t, errors.As(err, &invalid))
}
