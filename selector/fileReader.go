package main

import (
	"fmt"
	"io"

	chanselect "github.com/hcalnoise/chanselect_go/pkg"
)

type FileReader struct {
	Reader   *chanselect.EventReader
	EvtCount int
}

func NewFileReader(r io.Reader) *FileReader {
	return &FileReader{Reader: chanselect.NewEventReader(r), EvtCount: -1}
}

// getNextEvent honours the skip and max_events options.
func (f *FileReader) getNextEvent() (chanselect.RawEvent, chanselect.ClusteringResult, error) {
	for {
		event, clusters, err := f.Reader.Next()
		if err != nil {
			return event, clusters, err
		}
		f.EvtCount++
		if f.EvtCount >= configuration.MaxEvents {
			if VerbosityLevel > 0 {
				logger.Info("Max events reached", "fileReader")
			}
			return event, clusters, io.EOF
		}
		if f.EvtCount < configuration.Skip {
			if VerbosityLevel > 1 {
				message := fmt.Sprintf("Skipping event %d with ID %d", f.EvtCount, event.EventID)
				logger.Info(message, "fileReader")
			}
			continue
		}
		if VerbosityLevel > 1 {
			message := fmt.Sprintf("Reading event %d with ID %d", f.EvtCount, event.EventID)
			logger.Info(message, "fileReader")
		}
		return event, clusters, nil
	}
}
