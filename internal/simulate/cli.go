package simulate

import (
	"fmt"
	"io"
	"os"

	"github.com/softprocon/ShipTracker/pkg/logger"
)

// SetupLogging configures JSON logging to stdout and, when logFile is set, to
// that file as well. The returned func closes the file.
func SetupLogging(logFile string) (func() error, error) {
	if logFile == "" {
		return func() error { return nil }, logger.Init()
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.Init(logger.WithFormat(logger.FormatJSON), logger.WithWriter(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return file.Close, nil
}

// ShowHelp prints usage information for the scenario simulator.
func ShowHelp() {
	os.Stdout.WriteString(`ShipTracker Scenario Simulator
==============================

Generates a drifting spill trajectory and AIS traffic around it, submits the
scenario to POST /rank and verifies the returned competition ranking.

Usage:
  go run ./cmd/simulate [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -near int
        Vessels crossing the drift inside the buffer (default 40)
  -far int
        Vessels kept far outside the buffer (default 20)
  -pings int
        AIS reports per vessel (default 3)
  -hours int
        Length of the simulated drift in hours (default 48)
  -buffer float
        Buffer size in kilometers (default 10)
  -interval float
        Time window in minutes (default 60)
  -policy string
        Proximity policy, threshold or containment (default "threshold")
  -seed uint
        Scenario seed (default 1)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Write the generated scenario to this file
  -log string
        Also write logs to this file
  -verbose
        Log every ranked vessel
  -help
        Show this help message

Examples:
  # Verify a default scenario
  go run ./cmd/simulate

  # Larger scenario with the containment policy
  go run ./cmd/simulate -near 500 -far 200 -policy containment -seed 7
`)
}
