// pkg/config/env.go
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables that override file settings
const (
	EnvSolver     = "COLLIDE_SOLVER"
	EnvBroadPhase = "COLLIDE_BROAD_PHASE"
	EnvCellSize   = "COLLIDE_CELL_SIZE"
	EnvGravityX   = "COLLIDE_GRAVITY_X"
	EnvGravityY   = "COLLIDE_GRAVITY_Y"
)

// ApplyEnvironmentOverrides replaces settings with any COLLIDE_* variables
// that are set. Malformed numbers are reported and leave the config
// unchanged.
func ApplyEnvironmentOverrides(config *Config) error {
	next := *config

	if v, ok := os.LookupEnv(EnvSolver); ok && v != "" {
		next.Physics.Solver = v
	}
	if v, ok := os.LookupEnv(EnvBroadPhase); ok && v != "" {
		next.Physics.BroadPhase = v
	}

	var err error
	if next.Physics.CellSize, err = getEnvFloat(EnvCellSize, next.Physics.CellSize); err != nil {
		return err
	}
	if next.Physics.Gravity.X, err = getEnvFloat(EnvGravityX, next.Physics.Gravity.X); err != nil {
		return err
	}
	if next.Physics.Gravity.Y, err = getEnvFloat(EnvGravityY, next.Physics.Gravity.Y); err != nil {
		return err
	}

	*config = next
	return nil
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return parsed, nil
}
