package chanselect

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type jetRecord struct {
	Eta float64  `json:"eta"`
	Phi float64  `json:"phi"`
	Pt  float64  `json:"pt"`
	Et  *float64 `json:"et"`
}

type eventRecord struct {
	Run           uint32      `json:"run"`
	Event         uint32      `json:"event"`
	Depth         []int       `json:"depth"`
	Ieta          []int       `json:"ieta"`
	Iphi          []int       `json:"iphi"`
	Charge        [][]float64 `json:"charge"`
	Pedestal      [][]float64 `json:"pedestal"`
	Gain          [][]float64 `json:"gain"`
	Jets          []jetRecord `json:"jets"`
	SumEt         float64     `json:"sum_et"`
	UnclusteredEt float64     `json:"unclustered_et"`
}

// EventReader decodes a stream of events, one JSON document per line,
// each carrying the raw pulses and the clustering result of one event.
type EventReader struct {
	scanner *bufio.Scanner
	line    int
}

func NewEventReader(r io.Reader) *EventReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 256*1024*1024)
	return &EventReader{scanner: scanner}
}

// Next returns io.EOF once the stream is exhausted.
func (r *EventReader) Next() (RawEvent, ClusteringResult, error) {
	for r.scanner.Scan() {
		r.line++
		data := r.scanner.Bytes()
		if len(bytes.TrimSpace(data)) == 0 {
			continue
		}

		var record eventRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return RawEvent{}, ClusteringResult{}, &ErrParseTable{Source: "event stream", Line: r.line, Err: err}
		}
		event, clusters := record.toEvent()
		return event, clusters, nil
	}
	if err := r.scanner.Err(); err != nil {
		return RawEvent{}, ClusteringResult{}, fmt.Errorf("error reading event stream: %w", err)
	}
	return RawEvent{}, ClusteringResult{}, io.EOF
}

func (rec *eventRecord) toEvent() (RawEvent, ClusteringResult) {
	event := RawEvent{
		RunNumber: rec.Run,
		EventID:   rec.Event,
		Depth:     rec.Depth,
		Ieta:      rec.Ieta,
		Iphi:      rec.Iphi,
		Charge:    rec.Charge,
		Pedestal:  rec.Pedestal,
		Gain:      rec.Gain,
	}

	clusters := ClusteringResult{
		Jets:          make([]JetCandidate, len(rec.Jets)),
		SumEt:         rec.SumEt,
		UnclusteredEt: rec.UnclusteredEt,
	}
	for i, jet := range rec.Jets {
		et := jet.Pt
		if jet.Et != nil {
			et = *jet.Et
		}
		clusters.Jets[i] = JetCandidate{Index: i, Eta: jet.Eta, Phi: jet.Phi, Pt: jet.Pt, Et: et}
	}
	return event, clusters
}
