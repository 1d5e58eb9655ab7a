package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	chanselect "github.com/hcalnoise/chanselect_go/pkg"
	"gopkg.in/yaml.v3"
)

// LoadConfiguration reads a JSON or YAML configuration file on top of the
// default values.
func LoadConfiguration(filename string) (chanselect.Configuration, error) {
	config := chanselect.DefaultConfiguration()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return config, err
	}
	return config, config.Validate()
}

func printConfiguration(config chanselect.Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("HB geometry: %s", config.HBGeometryFile), "config")
	logger.Info(fmt.Sprintf("HE geometry: %s", config.HEGeometryFile), "config")
	logger.Info(fmt.Sprintf("Channel selector: %s", config.ChannelSelector), "config")
	logger.Info(fmt.Sprintf("Cone size: %g", config.ConeSize), "config")
	logger.Info(fmt.Sprintf("Eta to phi bandwidth ratio: %g", config.EtaToPhiBandwidthRatio), "config")
	logger.Info(fmt.Sprintf("Cone metric: %s", config.ConeMetric), "config")
	logger.Info(fmt.Sprintf("Jet pt cutoff: %g", config.JetPtCutoff), "config")
	logger.Info(fmt.Sprintf("Et fraction cutoff: %g", config.EtFractionCutoff), "config")
	logger.Info(fmt.Sprintf("Response time slices: [%d, %d) of %d", config.MinResponseTS, config.MaxResponseTS, config.TimeSlices), "config")
	logger.Info(fmt.Sprintf("Store selected only: %t", config.StoreSelectedOnly), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Run number: %d", config.RunNumber), "config")
	logger.Info(fmt.Sprintf("Skip: %d", config.Skip), "config")
	logger.Info(fmt.Sprintf("Max events: %d", config.MaxEvents), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Write data: %t", config.WriteData), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("Metrics file: %s", config.MetricsFile), "config")
}
