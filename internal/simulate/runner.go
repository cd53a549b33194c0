package simulate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jonboulle/clockwork"

	"github.com/softprocon/ShipTracker/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run generates a scenario, submits it to the service and verifies the ranking.
func Run(ctx context.Context, clock clockwork.Clock, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: clock.Now()}
	log := logger.Named("simulate")

	log.Info(ctx, "starting scenario run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("nearVessels", config.NearVessels),
		logger.Int("farVessels", config.FarVessels),
		logger.Int("trajectoryHours", config.TrajectoryHours),
		logger.Float64("bufferSizeKM", config.BufferSizeKM),
		logger.Float64("timeIntervalMinutes", config.TimeIntervalMinutes),
		logger.Any("seed", config.Seed))

	if err := checkServiceHealth(ctx, config); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	scenario, err := Generate(clock, config)
	if err != nil {
		return stats, fmt.Errorf("scenario generation failed: %w", err)
	}
	stats.TrajectoryPoints = len(scenario.Trajectory)
	stats.Observations = len(scenario.Observations)

	if config.OutputFile != "" {
		if err := saveScenario(config.OutputFile, scenario); err != nil {
			log.Warn(ctx, "failed to save scenario", logger.Error(err))
		}
	}

	ranking, err := submitScenario(ctx, config, scenario)
	if err != nil {
		return stats, err
	}
	stats.VesselsRanked = len(ranking.Vessels)
	stats.Ties = countTies(ranking.Vessels)

	if err := VerifyRanking(ranking.Vessels); err != nil {
		return stats, fmt.Errorf("ranking verification failed: %w", err)
	}
	if err := VerifyMembership(ranking.Vessels, scenario); err != nil {
		return stats, fmt.Errorf("membership verification failed: %w", err)
	}

	if config.Verbose {
		for _, v := range ranking.Vessels {
			log.Info(ctx, "ranked vessel",
				logger.Int("rank", v.Rank),
				logger.String("mmsi", v.MMSI),
				logger.Int("score", v.Score),
				logger.Float64("distanceKM", v.DistanceKM),
				logger.Float64("timeDiffMin", v.TimeDiffMin))
		}
	}

	stats.EndTime = clock.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "scenario verified",
		logger.String("runID", ranking.RunID),
		logger.Int("trajectoryPoints", stats.TrajectoryPoints),
		logger.Int("observations", stats.Observations),
		logger.Int("vesselsRanked", stats.VesselsRanked),
		logger.Int("ties", stats.Ties),
		logger.Duration("duration", stats.Duration))
	return stats, nil
}

func checkServiceHealth(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func saveScenario(filename string, scenario Scenario) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(scenario, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write scenario: %w", err)
	}
	return nil
}
