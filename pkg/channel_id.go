package chanselect

import "fmt"

const (
	MaxDepth = 3
	MaxIeta  = 29
	NumIphi  = 72
)

// ChannelID identifies one read-out channel of the barrel/endcap calorimeter.
type ChannelID struct {
	Depth int
	Ieta  int
	Iphi  int
}

func (c ChannelID) String() string {
	return fmt.Sprintf("(depth %d, ieta %d, iphi %d)", c.Depth, c.Ieta, c.Iphi)
}

type Subdetector int

const (
	Barrel Subdetector = iota
	Endcap
)

func (s Subdetector) String() string {
	switch s {
	case Barrel:
		return "HB"
	case Endcap:
		return "HE"
	default:
		return "Unknown"
	}
}

// Classify tells which subdetector reads out the given depth and ieta.
// The |ieta| = 16 ring is shared: depths 1 and 2 belong to the barrel,
// depth 3 to the endcap.
func Classify(depth int, ieta int) (Subdetector, error) {
	abseta := ieta
	if abseta < 0 {
		abseta = -abseta
	}
	if abseta == 0 || abseta > MaxIeta || depth < 1 || depth > MaxDepth ||
		(abseta == MaxIeta && depth > 2) {
		return Barrel, &ErrInvalidChannel{Depth: depth, Ieta: ieta}
	}

	switch {
	case abseta <= 15:
		return Barrel, nil
	case abseta == 16:
		if depth <= 2 {
			return Barrel, nil
		}
		return Endcap, nil
	default:
		return Endcap, nil
	}
}

// wrapIphi maps the azimuth index onto 1..72.
func wrapIphi(iphi int) int {
	iphi = (iphi - 1) % NumIphi
	if iphi < 0 {
		iphi += NumIphi
	}
	return iphi + 1
}
