package chanselect

import (
	"errors"
	"fmt"
)

type Configuration struct {
	MaxEvents              int     `json:"max_events" yaml:"max_events"`
	Skip                   int     `json:"skip" yaml:"skip"`
	Verbosity              int     `json:"verbosity" yaml:"verbosity"`
	FileIn                 string  `json:"file_in" yaml:"file_in"`
	FileOut                string  `json:"file_out" yaml:"file_out"`
	HBGeometryFile         string  `json:"hb_geometry_file" yaml:"hb_geometry_file"`
	HEGeometryFile         string  `json:"he_geometry_file" yaml:"he_geometry_file"`
	ChannelSelector        string  `json:"channel_selector" yaml:"channel_selector"`
	ConeSize               float64 `json:"cone_size" yaml:"cone_size"`
	EtaToPhiBandwidthRatio float64 `json:"eta_to_phi_bandwidth_ratio" yaml:"eta_to_phi_bandwidth_ratio"`
	ConeMetric             string  `json:"cone_metric" yaml:"cone_metric"`
	JetPtCutoff            float64 `json:"jet_pt_cutoff" yaml:"jet_pt_cutoff"`
	EtFractionCutoff       float64 `json:"et_fraction_cutoff" yaml:"et_fraction_cutoff"`
	MinResponseTS          int     `json:"min_response_ts" yaml:"min_response_ts"`
	MaxResponseTS          int     `json:"max_response_ts" yaml:"max_response_ts"`
	TimeSlices             int     `json:"time_slices" yaml:"time_slices"`
	StoreSelectedOnly      bool    `json:"store_selected_only" yaml:"store_selected_only"`
	NoDB                   bool    `json:"no_db" yaml:"no_db"`
	Host                   string  `json:"host" yaml:"host"`
	User                   string  `json:"user" yaml:"user"`
	Passwd                 string  `json:"pass" yaml:"pass"`
	DBName                 string  `json:"dbname" yaml:"dbname"`
	RunNumber              int     `json:"run_number" yaml:"run_number"`
	NumWorkers             int     `json:"num_workers" yaml:"num_workers"`
	WriteData              bool    `json:"write_data" yaml:"write_data"`
	CompressionLevel       int     `json:"compression_level" yaml:"compression_level"`
	MetricsFile            string  `json:"metrics_file" yaml:"metrics_file"`
}

var configuration Configuration

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}

// DefaultConfiguration holds the values used for options missing from the
// configuration file.
func DefaultConfiguration() Configuration {
	return Configuration{
		MaxEvents:              1000000000,
		HBGeometryFile:         "Geometry/hb.ctr",
		HEGeometryFile:         "Geometry/he.ctr",
		ChannelSelector:        JetSelectorName,
		ConeSize:               0.5,
		EtaToPhiBandwidthRatio: 1.0,
		ConeMetric:             MetricEllipse.String(),
		JetPtCutoff:            DefaultJetPtCutoff,
		EtFractionCutoff:       DefaultEtFractionCutoff,
		MinResponseTS:          DefaultMinResponse,
		MaxResponseTS:          DefaultMaxResponse,
		TimeSlices:             DefaultTimeSlices,
		Host:                   "localhost",
		User:                   "hcalreader",
		Passwd:                 "readonly",
		DBName:                 "HCALCOND",
		NumWorkers:             1,
		WriteData:              true,
		CompressionLevel:       4,
	}
}

// Validate reports every inconsistent option at once.
func (c Configuration) Validate() error {
	var errs []error

	if _, err := NewEnergyWindow(c.MinResponseTS, c.MaxResponseTS, c.TimeSlices); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseConeMetric(c.ConeMetric); err != nil {
		errs = append(errs, err)
	}
	if c.ChannelSelector != JetSelectorName && c.ChannelSelector != AllSelectorName {
		errs = append(errs, &ErrUnsupportedConfiguration{Option: "channel_selector", Value: c.ChannelSelector})
	}
	if c.ConeSize <= 0 {
		errs = append(errs, fmt.Errorf("cone_size must be positive, got %g", c.ConeSize))
	}
	if c.EtaToPhiBandwidthRatio <= 0 {
		errs = append(errs, fmt.Errorf("eta_to_phi_bandwidth_ratio must be positive, got %g", c.EtaToPhiBandwidthRatio))
	}
	if c.EtFractionCutoff < 0 || c.EtFractionCutoff >= 1 {
		errs = append(errs, fmt.Errorf("et_fraction_cutoff must be in [0, 1), got %g", c.EtFractionCutoff))
	}
	if c.NumWorkers < 1 {
		errs = append(errs, fmt.Errorf("num_workers must be at least 1, got %d", c.NumWorkers))
	}
	if c.Skip < 0 {
		errs = append(errs, fmt.Errorf("skip must not be negative, got %d", c.Skip))
	}
	if c.CompressionLevel < 0 || c.CompressionLevel > 9 {
		errs = append(errs, fmt.Errorf("compression_level must be in [0, 9], got %d", c.CompressionLevel))
	}
	return errors.Join(errs...)
}
