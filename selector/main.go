package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	chanselect "github.com/hcalnoise/chanselect_go/pkg"
)

var configuration chanselect.Configuration

var (
	logger         Logger
	VerbosityLevel int
)

func init() {
	handlerStdOut := newProgressHandler(os.Stdout, slog.LevelDebug)
	handlerStdErr := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger = Logger{
		InfoLog:  slog.New(handlerStdOut),
		ErrorLog: slog.New(handlerStdErr),
	}
}

func main() {
	if err := run(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	configFilename := flag.String("config", "", "Configuration file path")
	flag.Parse()

	var err error
	configuration, err = LoadConfiguration(*configFilename)
	if err != nil {
		return fmt.Errorf("error reading configuration file: %w", err)
	}
	chanselect.SetConfiguration(configuration)
	chanselect.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		logger.Info(fmt.Sprintf("Reading configuration file: %s", *configFilename), "main")
		printConfiguration(configuration, logger)
	}

	hardwareMap, err := loadHardwareMap()
	if err != nil {
		return err
	}
	topology, err := chanselect.BuildTopology(hardwareMap)
	if err != nil {
		return fmt.Errorf("error building channel topology: %w", err)
	}
	// Warm the neighbor tables before they are shared with the workers
	topology.EnsureNeighborsComputed()
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Topology: %d channels, %d modules (max %d channels), %d racks (max %d channels)",
			topology.ChannelCount(), topology.NumModules(), topology.MaxChannelsPerModule(),
			topology.NumRacks(), topology.MaxChannelsPerRack())
		logger.Info(message, "main")
	}

	geometry, err := chanselect.LoadChannelGeometry(topology, configuration.HBGeometryFile, configuration.HEGeometryFile)
	if err != nil {
		return fmt.Errorf("error loading channel geometry: %w", err)
	}

	selectors := make([]chanselect.ChannelSelector, configuration.NumWorkers)
	for i := range selectors {
		selectors[i], err = chanselect.NewChannelSelector(configuration, topology, geometry)
		if err != nil {
			return fmt.Errorf("error creating channel selector: %w", err)
		}
	}

	file, err := os.Open(configuration.FileIn)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	var writer *chanselect.Writer
	if configuration.WriteData {
		writer, err = chanselect.NewWriter(configuration.FileOut)
		if err != nil {
			return fmt.Errorf("error creating writer: %w", err)
		}
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error(err.Error())
			}
		}()
		if err := writer.WriteTopology(topology); err != nil {
			return err
		}
	}

	metrics := chanselect.NewMetrics()
	start := time.Now()
	fileReader := NewFileReader(file)
	nEvents := 0
	err = runWorkers(fileReader, selectors, topology, func(selected *chanselect.SelectedEvent) error {
		nEvents++
		metrics.Observe(selected.Result, len(selected.Clusters.Jets), selected.Summary)
		if writer == nil {
			return nil
		}
		return writer.WriteEvent(selected)
	})
	if err != nil {
		metrics.EventsFailed.Inc()
	}

	if configuration.MetricsFile != "" {
		if merr := metrics.WriteToFile(configuration.MetricsFile); merr != nil {
			logger.Error(fmt.Sprintf("error writing metrics: %v", merr))
		}
	}
	if err != nil {
		return fmt.Errorf("aborting run: %w", err)
	}

	duration := time.Since(start)
	logger.Info(fmt.Sprintf("Events processed: %d in %d ms", nEvents, duration.Milliseconds()), "main")
	return nil
}

func loadHardwareMap() (chanselect.HardwareMap, error) {
	if configuration.NoDB {
		return chanselect.DefaultHardwareMap{}, nil
	}

	dbConn, err := chanselect.ConnectToDatabase(configuration.User, configuration.Passwd, configuration.Host, configuration.DBName)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	defer dbConn.Close()

	hw, err := chanselect.LoadHardwareMap(dbConn, configuration.RunNumber)
	if err != nil {
		return nil, fmt.Errorf("error reading hardware map: %w", err)
	}
	return hw, nil
}
