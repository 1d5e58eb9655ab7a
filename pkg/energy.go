package chanselect

const (
	DefaultTimeSlices  = 10
	DefaultMinResponse = 3
	DefaultMaxResponse = 8
)

// EnergyWindow integrates pedestal-subtracted, gain-corrected charge over
// the time slices [Start, End).
type EnergyWindow struct {
	Start int
	End   int
}

func NewEnergyWindow(start int, end int, nSamples int) (EnergyWindow, error) {
	if start < 0 || start >= end || end > nSamples {
		return EnergyWindow{}, &ErrInvalidWindow{Start: start, End: end, NSamples: nSamples}
	}
	return EnergyWindow{Start: start, End: end}, nil
}

func (w EnergyWindow) Energy(charge []float64, pedestal []float64, gain []float64) float64 {
	e := 0.0
	for t := w.Start; t < w.End; t++ {
		e += (charge[t] - pedestal[t]) * gain[t]
	}
	return e
}

// EventEnergies computes the energy of every pulse in the event.
func (w EnergyWindow) EventEnergies(event *RawEvent) ([]float64, error) {
	if err := event.Validate(w.End); err != nil {
		return nil, err
	}
	energies := make([]float64, event.PulseCount())
	for i := range energies {
		energies[i] = w.Energy(event.Charge[i], event.Pedestal[i], event.Gain[i])
	}
	return energies, nil
}
