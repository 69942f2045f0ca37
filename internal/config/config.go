// Package config resolves simulator run configuration from a .env file (if
// present) and the environment, following the teacher's cmd/server getEnv
// pattern (_examples/erenceh-delivery-route-api/cmd/server/main.go).
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the resolved set of knobs the simulator composition root needs
// to ingest data and run.
type Config struct {
	PackagesCSV   string
	AddressesCSV  string
	DistancesCSV  string
	HubAddress    string
	TruckCount    int
	MileageBudget float64
	BaseDate      time.Time

	// SimStartTime is the instant the simulated day begins and both
	// trucks become available at the hub (spec.md section 6).
	SimStartTime time.Time

	// DelayedReleaseTime is the instant delayed parcels become eligible
	// for assignment (spec.md section 4, the flight-delay scenario).
	DelayedReleaseTime time.Time

	// CorrectionParcelID, CorrectionAddress/City/State/Zip, and
	// CorrectionTime describe the one wrong-address fix the canonical
	// scenario applies mid-day (spec.md section 4).
	CorrectionParcelID string
	CorrectionAddress  string
	CorrectionCity     string
	CorrectionState    string
	CorrectionZip      string
	CorrectionTime     time.Time
}

// Load reads a .env file if one is present (absence is not an error, only
// logged, matching the teacher's main.go) and resolves Config from the
// environment, applying the canonical-scenario defaults from spec.md
// section 6 where a variable is unset.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	baseDateStr := getEnv("WGUPS_BASE_DATE", "2023-01-01")
	baseDate, err := time.Parse("2006-01-02", baseDateStr)
	if err != nil {
		return Config{}, fmt.Errorf("load config: parse WGUPS_BASE_DATE %q: %w", baseDateStr, err)
	}

	truckCount, err := getEnvInt("WGUPS_TRUCK_COUNT", 2)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	mileageBudget, err := getEnvFloat("WGUPS_MILEAGE_BUDGET", 140)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	simStartStr := getEnv("WGUPS_SIM_START_TIME", "8:00 AM")
	simStartTime, err := parseTimeOfDay(simStartStr, baseDate)
	if err != nil {
		return Config{}, fmt.Errorf("load config: parse WGUPS_SIM_START_TIME %q: %w", simStartStr, err)
	}

	delayedReleaseStr := getEnv("WGUPS_DELAYED_RELEASE_TIME", "9:05 AM")
	delayedReleaseTime, err := parseTimeOfDay(delayedReleaseStr, baseDate)
	if err != nil {
		return Config{}, fmt.Errorf("load config: parse WGUPS_DELAYED_RELEASE_TIME %q: %w", delayedReleaseStr, err)
	}

	correctionTimeStr := getEnv("WGUPS_CORRECTION_TIME", "10:20 AM")
	correctionTime, err := parseTimeOfDay(correctionTimeStr, baseDate)
	if err != nil {
		return Config{}, fmt.Errorf("load config: parse WGUPS_CORRECTION_TIME %q: %w", correctionTimeStr, err)
	}

	return Config{
		PackagesCSV:   getEnv("WGUPS_PACKAGES_CSV", "data/packages.csv"),
		AddressesCSV:  getEnv("WGUPS_ADDRESSES_CSV", "data/addresses.csv"),
		DistancesCSV:  getEnv("WGUPS_DISTANCES_CSV", "data/distances.csv"),
		HubAddress:    getEnv("WGUPS_HUB_ADDRESS", "4001 South 700 East"),
		TruckCount:    truckCount,
		MileageBudget: mileageBudget,
		BaseDate:      baseDate,

		SimStartTime:       simStartTime,
		DelayedReleaseTime: delayedReleaseTime,

		CorrectionParcelID: getEnv("WGUPS_CORRECTION_PARCEL_ID", "9"),
		CorrectionAddress:  getEnv("WGUPS_CORRECTION_ADDRESS", "410 S State St"),
		CorrectionCity:     getEnv("WGUPS_CORRECTION_CITY", "Salt Lake City"),
		CorrectionState:    getEnv("WGUPS_CORRECTION_STATE", "UT"),
		CorrectionZip:      getEnv("WGUPS_CORRECTION_ZIP", "84111"),
		CorrectionTime:     correctionTime,
	}, nil
}

func parseTimeOfDay(raw string, baseDate time.Time) (time.Time, error) {
	t, err := time.Parse("3:04 PM", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time of day: %w", err)
	}
	return time.Date(baseDate.Year(), baseDate.Month(), baseDate.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s=%q as float: %w", key, v, err)
	}
	return f, nil
}
