package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/softprocon/ShipTracker/internal/simulate"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		near     = flag.Int("near", simulate.DefaultNearVessels, "Vessels crossing the drift inside the buffer")
		far      = flag.Int("far", simulate.DefaultFarVessels, "Vessels kept far outside the buffer")
		pings    = flag.Int("pings", simulate.DefaultPingsPerVessel, "AIS reports per vessel")
		hours    = flag.Int("hours", simulate.DefaultTrajectoryHours, "Length of the simulated drift in hours")
		buffer   = flag.Float64("buffer", simulate.DefaultBufferSizeKM, "Buffer size in kilometers")
		interval = flag.Float64("interval", simulate.DefaultTimeIntervalMinutes, "Time window in minutes")
		policy   = flag.String("policy", simulate.DefaultProximityPolicy, "Proximity policy, threshold or containment")
		seed     = flag.Uint64("seed", 1, "Scenario seed")
		timeout  = flag.Duration("timeout", simulate.DefaultTimeout, "HTTP request timeout")
		output   = flag.String("output", "", "Write the generated scenario to this file")
		logFile  = flag.String("log", "", "Also write logs to this file")
		verbose  = flag.Bool("verbose", false, "Log every ranked vessel")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	config := &simulate.Config{
		BaseURL:             *baseURL,
		NearVessels:         *near,
		FarVessels:          *far,
		PingsPerVessel:      *pings,
		TrajectoryHours:     *hours,
		BufferSizeKM:        *buffer,
		TimeIntervalMinutes: *interval,
		ProximityPolicy:     *policy,
		Seed:                *seed,
		Timeout:             *timeout,
		OutputFile:          *output,
		LogFile:             *logFile,
		Verbose:             *verbose,
	}

	if err := run(config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(config *simulate.Config) error {
	closeLog, err := simulate.SetupLogging(config.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	_, err = simulate.Run(ctx, clockwork.NewRealClock(), config)
	return err
}
