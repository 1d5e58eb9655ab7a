package main

import (
	"fmt"
	"io"
	"sync"

	chanselect "github.com/hcalnoise/chanselect_go/pkg"
)

type WorkerData struct {
	Event    chanselect.RawEvent
	Clusters chanselect.ClusteringResult
}

type WorkerResult struct {
	Selected chanselect.SelectedEvent
	Err      error
}

// worker runs its own selector; the topology and geometry it reads are
// shared and must be fully built before the workers start. It returns when
// jobs is drained or stop is closed.
func worker(id int, selector chanselect.ChannelSelector, topology *chanselect.Topology,
	jobs <-chan WorkerData, results chan<- WorkerResult, stop <-chan struct{}) {
	for {
		var data WorkerData
		select {
		case <-stop:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			data = job
		}
		// a job and stop may be ready together
		select {
		case <-stop:
			return
		default:
		}
		if VerbosityLevel > 2 {
			logger.Info(fmt.Sprintf("Worker %d processing event %d", id, data.Event.EventID), "worker")
		}
		results <- selectEvent(selector, topology, data)
	}
}

func selectEvent(selector chanselect.ChannelSelector, topology *chanselect.Topology, data WorkerData) (res WorkerResult) {
	defer func() {
		if r := recover(); r != nil {
			res = WorkerResult{Err: fmt.Errorf("selector panic on event %d: %v", data.Event.EventID, r)}
		}
	}()

	result, err := selector.Select(&data.Event, data.Clusters)
	if err != nil {
		return WorkerResult{Err: err}
	}

	selected := chanselect.SelectedEvent{
		Event:    data.Event,
		Clusters: data.Clusters,
		Result:   result,
		Channels: make([]int, data.Event.PulseCount()),
	}
	for i := range selected.Channels {
		index, err := topology.LinearIndex(data.Event.Depth[i], data.Event.Ieta[i], data.Event.Iphi[i])
		if err != nil {
			return WorkerResult{Err: fmt.Errorf("event %d, pulse %d: %w", data.Event.EventID, i, err)}
		}
		selected.Channels[i] = index
	}
	if jetSelector, ok := selector.(*chanselect.JetChannelSelector); ok {
		selected.GoodJets = append([]chanselect.JetCandidate(nil), jetSelector.GoodJets()...)
		selected.Summary = jetSelector.Summary()
	}
	return WorkerResult{Selected: selected}
}

func sendEventsToWorkers(fileReader *FileReader, jobs chan<- WorkerData, readErr chan<- error, stop <-chan struct{}) {
	defer close(jobs)
	for {
		select {
		case <-stop:
			return
		default:
		}
		event, clusters, err := fileReader.getNextEvent()
		if err != nil {
			if err != io.EOF {
				readErr <- err
			}
			return
		}
		select {
		case <-stop:
			return
		case jobs <- WorkerData{Event: event, Clusters: clusters}:
		}
	}
}

// runWorkers fans the events out to the configured number of selectors
// and hands every result to process, in completion order. The first error
// stops the reader and the workers; results already in flight are drained.
func runWorkers(fileReader *FileReader, selectors []chanselect.ChannelSelector, topology *chanselect.Topology,
	process func(*chanselect.SelectedEvent) error) error {
	jobs := make(chan WorkerData, 100)
	results := make(chan WorkerResult, 100)
	readErr := make(chan error, 1)
	stop := make(chan struct{})

	var wg sync.WaitGroup
	for w, selector := range selectors {
		wg.Add(1)
		go func(id int, selector chanselect.ChannelSelector) {
			defer wg.Done()
			worker(id, selector, topology, jobs, results, stop)
		}(w+1, selector)
	}
	go sendEventsToWorkers(fileReader, jobs, readErr, stop)
	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error
	for result := range results {
		if firstErr != nil {
			continue
		}
		if result.Err != nil {
			firstErr = result.Err
			close(stop)
			continue
		}
		if err := process(&result.Selected); err != nil {
			firstErr = err
			close(stop)
		}
	}
	if firstErr != nil {
		return firstErr
	}

	select {
	case err := <-readErr:
		return fmt.Errorf("error reading events: %w", err)
	default:
		return nil
	}
}
