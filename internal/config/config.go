// Package config resolves runtime settings. Precedence, lowest first:
// defaults, the JSONC config file, PULSE_* environment variables, flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/modbuild/pulse/internal/domain"
	"github.com/modbuild/pulse/internal/metrics"
	"github.com/spf13/pflag"
	"github.com/tailscale/hujson"
)

var (
	ErrConfigInvalid      = errors.New("invalid config")
	ErrConfigFileNotFound = errors.New("config file not found")
)

// Config holds every runtime setting.
type Config struct {
	DBPath                string           `json:"db_path"`
	Factory               string           `json:"factory"`
	HTTPAddr              string           `json:"http_addr"`
	LogCalls              bool             `json:"log_calls"`
	IncludeBackupProjects bool             `json:"include_backup_projects"`
	RefreshInterval       Duration         `json:"refresh_interval"`
	Plant                 PlantSettings    `json:"plant"`
	Capacity              CapacitySettings `json:"capacity"`

	// Source is the config file that was loaded, empty when none was.
	Source string `json:"-"`
}

// PlantSettings is the fallback plant used for factories without a stored
// configuration and for seeding.
type PlantSettings struct {
	ShiftStart            string `json:"shift_start"`
	ShiftEnd              string `json:"shift_end"`
	BreakMinutes          int    `json:"break_minutes"`
	LunchMinutes          int    `json:"lunch_minutes"`
	TargetDailyThroughput int    `json:"target_daily_throughput"`
}

// CapacitySettings overrides the PM capacity heuristic coefficients.
type CapacitySettings struct {
	ProjectWeight float64 `json:"project_weight"`
	TaskWeight    float64 `json:"task_weight"`
	OverdueWeight float64 `json:"overdue_weight"`
	AvailableAt   float64 `json:"available_at"`
	BusyAt        float64 `json:"busy_at"`
}

// Duration reads "30s"-style strings from JSON.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// DefaultConfig returns the built-in settings. home roots the default
// database path; an empty home keeps the database in the working directory.
func DefaultConfig(home string) Config {
	dbPath := "pulse.db"
	if home != "" {
		dbPath = filepath.Join(home, ".pulse", "pulse.db")
	}
	plant := domain.DefaultPlantConfig("")
	weights := metrics.DefaultCapacityWeights()
	return Config{
		DBPath:          dbPath,
		HTTPAddr:        "127.0.0.1:8080",
		RefreshInterval: Duration{30 * time.Second},
		Plant: PlantSettings{
			ShiftStart:            plant.ShiftStart,
			ShiftEnd:              plant.ShiftEnd,
			BreakMinutes:          plant.BreakMinutes,
			LunchMinutes:          plant.LunchMinutes,
			TargetDailyThroughput: plant.TargetDailyThroughput,
		},
		Capacity: CapacitySettings{
			ProjectWeight: weights.Project,
			TaskWeight:    weights.Task,
			OverdueWeight: weights.Overdue,
			AvailableAt:   weights.AvailableAt,
			BusyAt:        weights.BusyAt,
		},
	}
}

// PlantConfig converts the settings into the default plant for factoryID.
func (c Config) PlantConfig(factoryID string) domain.PlantConfig {
	return domain.PlantConfig{
		FactoryID:             factoryID,
		ShiftStart:            c.Plant.ShiftStart,
		ShiftEnd:              c.Plant.ShiftEnd,
		BreakMinutes:          c.Plant.BreakMinutes,
		LunchMinutes:          c.Plant.LunchMinutes,
		TargetDailyThroughput: c.Plant.TargetDailyThroughput,
	}
}

func (c Config) CapacityWeights() metrics.CapacityWeights {
	return metrics.CapacityWeights{
		Project:     c.Capacity.ProjectWeight,
		Task:        c.Capacity.TaskWeight,
		Overdue:     c.Capacity.OverdueWeight,
		AvailableAt: c.Capacity.AvailableAt,
		BusyAt:      c.Capacity.BusyAt,
	}
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	Env   map[string]string // environment variables
	Flags *pflag.FlagSet    // parsed flags registered with RegisterFlags; may be nil
}

// Load resolves the configuration. The file named by --config or
// PULSE_CONFIG must exist; the default user config file is optional.
func Load(input LoadInput) (Config, error) {
	cfg := DefaultConfig(input.Env["HOME"])

	path, mustExist := configPath(input)
	if path != "" {
		loaded, err := loadFile(&cfg, path, mustExist)
		if err != nil {
			return Config{}, err
		}
		if loaded {
			cfg.Source = path
		}
	}

	applyEnv(&cfg, input.Env)
	if input.Flags != nil {
		applyFlags(&cfg, input.Flags)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func configPath(input LoadInput) (string, bool) {
	if input.Flags != nil {
		if p, _ := input.Flags.GetString(flagConfig); p != "" {
			return p, true
		}
	}
	if p := input.Env["PULSE_CONFIG"]; p != "" {
		return p, true
	}
	if xdg := input.Env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "pulse", "config.json"), false
	}
	if home := input.Env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "pulse", "config.json"), false
	}
	return "", false
}

// loadFile overlays the JSONC file at path onto cfg. Keys absent from the
// file keep their current value.
func loadFile(cfg *Config, path string, mustExist bool) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				return false, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
			}
			return false, nil
		}
		return false, fmt.Errorf("reading config %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return false, fmt.Errorf("%w %s: invalid JSONC: %w", ErrConfigInvalid, path, err)
	}
	if err := json.Unmarshal(standardized, cfg); err != nil {
		return false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}
	return true, nil
}

// applyEnv reads PULSE_* variables. Unparseable values are ignored.
func applyEnv(cfg *Config, env map[string]string) {
	setString(&cfg.DBPath, env["PULSE_DB"])
	setString(&cfg.Factory, env["PULSE_FACTORY"])
	setString(&cfg.HTTPAddr, env["PULSE_HTTP_ADDR"])
	setBool(&cfg.LogCalls, env["PULSE_LOG_CALLS"])
	setBool(&cfg.IncludeBackupProjects, env["PULSE_INCLUDE_BACKUP"])
	if v := env["PULSE_REFRESH_INTERVAL"]; v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RefreshInterval = Duration{d}
		}
	}

	setString(&cfg.Plant.ShiftStart, env["PULSE_SHIFT_START"])
	setString(&cfg.Plant.ShiftEnd, env["PULSE_SHIFT_END"])
	setInt(&cfg.Plant.BreakMinutes, env["PULSE_BREAK_MINUTES"])
	setInt(&cfg.Plant.LunchMinutes, env["PULSE_LUNCH_MINUTES"])
	setInt(&cfg.Plant.TargetDailyThroughput, env["PULSE_TARGET_THROUGHPUT"])

	setFloat(&cfg.Capacity.ProjectWeight, env["PULSE_CAPACITY_PROJECT_WEIGHT"])
	setFloat(&cfg.Capacity.TaskWeight, env["PULSE_CAPACITY_TASK_WEIGHT"])
	setFloat(&cfg.Capacity.OverdueWeight, env["PULSE_CAPACITY_OVERDUE_WEIGHT"])
	setFloat(&cfg.Capacity.AvailableAt, env["PULSE_CAPACITY_AVAILABLE_AT"])
	setFloat(&cfg.Capacity.BusyAt, env["PULSE_CAPACITY_BUSY_AT"])
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setBool(dst *bool, v string) {
	if b, err := strconv.ParseBool(v); err == nil {
		*dst = b
	}
}

func setInt(dst *int, v string) {
	if n, err := strconv.Atoi(v); err == nil && n >= 0 {
		*dst = n
	}
}

func setFloat(dst *float64, v string) {
	if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
		*dst = f
	}
}

// Validate rejects settings the scorers cannot work with.
func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.DBPath) == "" {
		problems = append(problems, "db_path is empty")
	}
	if _, err := metrics.ParseClock(c.Plant.ShiftStart); err != nil {
		problems = append(problems, "plant.shift_start: "+err.Error())
	}
	if _, err := metrics.ParseClock(c.Plant.ShiftEnd); err != nil {
		problems = append(problems, "plant.shift_end: "+err.Error())
	}
	if c.Plant.BreakMinutes < 0 || c.Plant.LunchMinutes < 0 {
		problems = append(problems, "plant break and lunch minutes must be non-negative")
	}
	if c.Plant.TargetDailyThroughput < 0 {
		problems = append(problems, "plant.target_daily_throughput must be non-negative")
	}
	w := c.Capacity
	if w.ProjectWeight < 0 || w.TaskWeight < 0 || w.OverdueWeight < 0 {
		problems = append(problems, "capacity weights must be non-negative")
	}
	if w.BusyAt > w.AvailableAt {
		problems = append(problems, "capacity.busy_at exceeds capacity.available_at")
	}
	if c.RefreshInterval.Duration < time.Second {
		problems = append(problems, "refresh_interval must be at least 1s")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// EnvMap converts os.Environ-style pairs into a map.
func EnvMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}
