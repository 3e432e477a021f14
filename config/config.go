// ABOUTME: Configuration loader for the placement planner service
// ABOUTME: Loads settings from environment variables with defaults

package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/markalston/placement-planner/models"
)

type Config struct {
	// Server
	Port     string
	CacheTTL int // seconds, for cached inventory snapshots

	// Overcommit defaults applied to pools discovered from vSphere.
	// Inventories supplied directly over the API carry their own ratios.
	CPUOvercommit     float64
	MemoryOvercommit  float64
	StorageOvercommit float64

	// Utilization tier lower bounds, in percent.
	ThresholdModerate     float64
	ThresholdHigh         float64
	ThresholdCritical     float64
	ThresholdOverCapacity float64

	// vSphere (optional)
	VSphereHost       string
	VSphereUsername   string
	VSpherePassword   string
	VSphereDatacenter string
	VSphereInsecure   bool
}

// VSphereConfigured returns true if vSphere credentials are set
func (c *Config) VSphereConfigured() bool {
	return c.VSphereHost != "" && c.VSphereUsername != "" && c.VSpherePassword != "" && c.VSphereDatacenter != ""
}

// Overcommit returns the default overcommit ratios as a typed value.
func (c *Config) Overcommit() models.OvercommitRatios {
	return models.OvercommitRatios{
		CPU:     c.CPUOvercommit,
		Memory:  c.MemoryOvercommit,
		Storage: c.StorageOvercommit,
	}
}

// Thresholds returns the configured threshold table.
func (c *Config) Thresholds() models.ThresholdTable {
	return models.ThresholdTable{
		Moderate:     c.ThresholdModerate,
		High:         c.ThresholdHigh,
		Critical:     c.ThresholdCritical,
		OverCapacity: c.ThresholdOverCapacity,
	}
}

func Load() (*Config, error) {
	defaults := models.DefaultThresholds()
	overcommit := models.DefaultOvercommitRatios()

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		CacheTTL: getEnvInt("CACHE_TTL", 300),

		CPUOvercommit:     getEnvFloat("CPU_OVERCOMMIT", overcommit.CPU),
		MemoryOvercommit:  getEnvFloat("MEMORY_OVERCOMMIT", overcommit.Memory),
		StorageOvercommit: getEnvFloat("STORAGE_OVERCOMMIT", overcommit.Storage),

		ThresholdModerate:     getEnvFloat("THRESHOLD_MODERATE", defaults.Moderate),
		ThresholdHigh:         getEnvFloat("THRESHOLD_HIGH", defaults.High),
		ThresholdCritical:     getEnvFloat("THRESHOLD_CRITICAL", defaults.Critical),
		ThresholdOverCapacity: getEnvFloat("THRESHOLD_OVER_CAPACITY", defaults.OverCapacity),

		VSphereHost:       os.Getenv("VSPHERE_HOST"),
		VSphereUsername:   os.Getenv("VSPHERE_USERNAME"),
		VSpherePassword:   os.Getenv("VSPHERE_PASSWORD"),
		VSphereDatacenter: os.Getenv("VSPHERE_DATACENTER"),
		VSphereInsecure:   getEnvBool("VSPHERE_INSECURE", false),
	}

	if err := cfg.Overcommit().Validate(); err != nil {
		return nil, fmt.Errorf("overcommit configuration: %w", err)
	}
	if err := cfg.Thresholds().Validate(); err != nil {
		return nil, fmt.Errorf("threshold configuration: %w", err)
	}
	if cfg.CacheTTL < 1 || cfg.CacheTTL > 86400 {
		return nil, fmt.Errorf("CACHE_TTL must be between 1 and 86400, got %d", cfg.CacheTTL)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil && !math.IsNaN(floatVal) {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
