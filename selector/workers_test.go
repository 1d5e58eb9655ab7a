package main

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	chanselect "github.com/hcalnoise/chanselect_go/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventLine(eventID int, ieta int) string {
	samples := "[1,1,1,1,1,1,1,1,1,1]"
	return fmt.Sprintf(`{"run": 3, "event": %d, "depth": [1], "ieta": [%d], "iphi": [1], "charge": [%s], "pedestal": [%s], "gain": [%s]}`,
		eventID, ieta, samples, samples, samples)
}

func setTestConfiguration(t *testing.T, skip int, maxEvents int) {
	t.Helper()
	previous := configuration
	t.Cleanup(func() { configuration = previous })
	configuration = chanselect.DefaultConfiguration()
	configuration.Skip = skip
	configuration.MaxEvents = maxEvents
}

func newTestTopology(t *testing.T) *chanselect.Topology {
	t.Helper()
	topology, err := chanselect.BuildTopology(chanselect.DefaultHardwareMap{})
	require.NoError(t, err)
	return topology
}

func TestFileReader_SkipAndMaxEvents(t *testing.T) {
	setTestConfiguration(t, 2, 4)

	lines := make([]string, 0, 6)
	for i := 1; i <= 6; i++ {
		lines = append(lines, eventLine(i, 1))
	}
	reader := NewFileReader(strings.NewReader(strings.Join(lines, "\n")))

	var ids []uint32
	for {
		event, _, err := reader.getNextEvent()
		if err != nil {
			break
		}
		ids = append(ids, event.EventID)
	}
	assert.Equal(t, []uint32{3, 4}, ids)
}

func TestRunWorkers(t *testing.T) {
	setTestConfiguration(t, 0, 1000)
	topology := newTestTopology(t)

	lines := make([]string, 0, 20)
	for i := 1; i <= 20; i++ {
		lines = append(lines, eventLine(i, (i%10)+1))
	}
	reader := NewFileReader(strings.NewReader(strings.Join(lines, "\n")))
	selectors := []chanselect.ChannelSelector{
		chanselect.AllChannelSelector{},
		chanselect.AllChannelSelector{},
		chanselect.AllChannelSelector{},
	}

	seen := make(map[uint32]bool)
	err := runWorkers(reader, selectors, topology, func(selected *chanselect.SelectedEvent) error {
		seen[selected.Event.EventID] = true
		assert.Equal(t, []bool{true}, selected.Result.Selected)
		require.Len(t, selected.Channels, 1)
		index, err := topology.LinearIndex(1, selected.Event.Ieta[0], 1)
		require.NoError(t, err)
		assert.Equal(t, index, selected.Channels[0])
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 20)
}

type failingSelector struct{}

func (failingSelector) Select(event *chanselect.RawEvent, _ chanselect.ClusteringResult) (chanselect.SelectionResult, error) {
	if event.EventID == 3 {
		return chanselect.SelectionResult{}, errors.New("bad event")
	}
	if event.EventID == 4 {
		panic("corrupted pulse")
	}
	return chanselect.AllChannelSelector{}.Select(event, chanselect.ClusteringResult{})
}

func TestRunWorkers_Errors(t *testing.T) {
	setTestConfiguration(t, 0, 1000)
	topology := newTestTopology(t)

	lines := []string{eventLine(1, 1), eventLine(2, 1), eventLine(3, 1)}
	reader := NewFileReader(strings.NewReader(strings.Join(lines, "\n")))
	err := runWorkers(reader, []chanselect.ChannelSelector{failingSelector{}}, topology,
		func(*chanselect.SelectedEvent) error { return nil })
	assert.ErrorContains(t, err, "bad event")

	reader = NewFileReader(strings.NewReader(eventLine(4, 1)))
	err = runWorkers(reader, []chanselect.ChannelSelector{failingSelector{}}, topology,
		func(*chanselect.SelectedEvent) error { return nil })
	assert.ErrorContains(t, err, "selector panic on event 4")

	reader = NewFileReader(strings.NewReader(eventLine(1, 1) + "\nnot json\n"))
	err = runWorkers(reader, []chanselect.ChannelSelector{chanselect.AllChannelSelector{}}, topology,
		func(*chanselect.SelectedEvent) error { return nil })
	var parseErr *chanselect.ErrParseTable
	assert.True(t, errors.As(err, &parseErr))

	reader = NewFileReader(strings.NewReader(eventLine(1, 1)))
	err = runWorkers(reader, []chanselect.ChannelSelector{chanselect.AllChannelSelector{}}, topology,
		func(*chanselect.SelectedEvent) error { return errors.New("disk full") })
	assert.ErrorContains(t, err, "disk full")
}

type countingSelector struct {
	calls atomic.Int64
}

func (s *countingSelector) Select(event *chanselect.RawEvent, clusters chanselect.ClusteringResult) (chanselect.SelectionResult, error) {
	s.calls.Add(1)
	if event.EventID == 1 {
		return chanselect.SelectionResult{}, &chanselect.ErrInvalidChannel{Depth: 1, Ieta: 0, Iphi: 1}
	}
	return chanselect.AllChannelSelector{}.Select(event, clusters)
}

func TestRunWorkers_StopsAfterFirstError(t *testing.T) {
	setTestConfiguration(t, 0, 1000000)
	topology := newTestTopology(t)

	const nEvents = 5000
	lines := make([]string, 0, nEvents)
	for i := 1; i <= nEvents; i++ {
		lines = append(lines, eventLine(i, 1))
	}
	reader := NewFileReader(strings.NewReader(strings.Join(lines, "\n")))
	selector := &countingSelector{}

	err := runWorkers(reader, []chanselect.ChannelSelector{selector, selector}, topology,
		func(*chanselect.SelectedEvent) error { return nil })
	var invalid *chanselect.ErrInvalidChannel
	require.True(t, errors.As(err, &invalid))

	// Only what fits in the job and result buffers may still be selected
	assert.Less(t, selector.calls.Load(), int64(500))
	assert.Less(t, reader.EvtCount, 500)
}

func TestRunWorkers_UnknownChannelFails(t *testing.T) {
	setTestConfiguration(t, 0, 1000)
	topology := newTestTopology(t)

	reader := NewFileReader(strings.NewReader(eventLine(1, 1) + "\n" + eventLine(2, 0)))
	err := runWorkers(reader, []chanselect.ChannelSelector{chanselect.AllChannelSelector{}}, topology,
		func(*chanselect.SelectedEvent) error { return nil })

	var invalid *chanselect.ErrInvalidChannel
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, 0, invalid.Ieta)
	assert.ErrorContains(t, err, "event 2, pulse 0")
}
